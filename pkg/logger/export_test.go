package logger

// Reset drops the singleton so the next Init builds a new one.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	instance = nil
}
