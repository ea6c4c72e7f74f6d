package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

const healthTimeout = 5 * time.Second

// newHealthcheckCommand probes /health of a local gateway, for container
// health checks where no shell or curl is available.
func newHealthcheckCommand(envFile *string) *cobra.Command {
	var (
		url     string
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "healthcheck",
		Short: "Exit 0 when the local gateway answers /health with 200",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if url == "" {
				if err := loadEnvFile(*envFile); err != nil {
					return err
				}
				url = defaultHealthURL()
			}
			return runHealthcheck(cmd.Context(), url, timeout)
		},
	}
	cmd.Flags().StringVar(&url, "url", "", "health URL (default http://localhost:$PORT/health)")
	cmd.Flags().DurationVar(&timeout, "timeout", healthTimeout, "request timeout")
	return cmd
}

func defaultHealthURL() string {
	port := os.Getenv("PORT")
	if port == "" {
		port = "4000"
	}
	return fmt.Sprintf("http://localhost:%s/health", port)
}

func runHealthcheck(ctx context.Context, url string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("health check: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}
	return nil
}
