package domain

// Document is the result of a constrained file lookup. Path is relative to the
// served base directory, never absolute.
type Document struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}
