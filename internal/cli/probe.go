package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/appsec-lab/gateway/internal/probe"
	"github.com/appsec-lab/gateway/pkg/logger"
)

// errFindings makes the probe exit non-zero under --fail.
var errFindings = errors.New("probe raised critical or high findings")

type probeFlags struct {
	target  string
	mode    string
	users   []int
	logins  []string
	orders  []int
	rate    float64
	workers int
	timeout time.Duration
	format  string
	output  string
	fail    bool
	verbose bool
}

func newProbeCommand() *cobra.Command {
	var f probeFlags

	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Replay order reads under several identities and report access control gaps",
		Long: `probe requests every order as every identity and once without credentials.
An unprivileged identity reading a foreign order is CRITICAL, an order readable
anonymously is HIGH and a response missing a hardening header is MEDIUM.`,
		Example: `  gateway probe --mode header --users 1,2,3 --orders 1,2,3,4
  gateway probe --mode session --login alice:password123 --login bob:bobsecret1 --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runProbe(cmd.Context(), f, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&f.target, "target", "http://localhost:4000", "gateway base URL")
	fl.StringVar(&f.mode, "mode", probe.ModeHeader, "identity mode: header or session")
	fl.IntSliceVar(&f.users, "users", []int{1, 2, 3}, "user ids sent as X-User-Id in header mode")
	fl.StringArrayVar(&f.logins, "login", nil, "username:password used in session mode (repeatable)")
	fl.IntSliceVar(&f.orders, "orders", []int{1, 2, 3, 4}, "order ids to request")
	fl.Float64Var(&f.rate, "rate", 10, "requests per second, 0 for unlimited")
	fl.IntVar(&f.workers, "workers", 4, "concurrent workers")
	fl.DurationVar(&f.timeout, "timeout", 10*time.Second, "per-request timeout")
	fl.StringVar(&f.format, "format", probe.FormatText, "output format: text or json")
	fl.StringVarP(&f.output, "output", "o", "", "write the report to a file instead of stdout")
	fl.BoolVar(&f.fail, "fail", false, "exit non-zero when critical or high findings are raised")
	fl.BoolVarP(&f.verbose, "verbose", "v", false, "log every probe request")

	return cmd
}

func (f probeFlags) config() (probe.Config, error) {
	creds, err := parseLogins(f.logins)
	if err != nil {
		return probe.Config{}, err
	}
	return probe.Config{
		BaseURL:       f.target,
		Mode:          f.mode,
		UserIDs:       f.users,
		Credentials:   creds,
		OrderIDs:      f.orders,
		RatePerSecond: f.rate,
		Workers:       f.workers,
	}, nil
}

func parseLogins(logins []string) ([]probe.Credential, error) {
	creds := make([]probe.Credential, 0, len(logins))
	for _, l := range logins {
		user, pass, ok := strings.Cut(l, ":")
		if !ok || user == "" {
			return nil, fmt.Errorf("invalid --login %q, want username:password", l)
		}
		creds = append(creds, probe.Credential{Username: user, Password: pass})
	}
	return creds, nil
}

func runProbe(ctx context.Context, f probeFlags, stdout, stderr io.Writer) error {
	cfg, err := f.config()
	if err != nil {
		return err
	}

	level := zerolog.InfoLevel
	if f.verbose {
		level = zerolog.DebugLevel
	}
	log := logger.New(logger.Options{
		Level:   level.String(),
		Pretty:  true,
		Output:  stderr,
		Service: "probe",
	})

	p, err := probe.New(cfg, &http.Client{Timeout: f.timeout}, log)
	if err != nil {
		return err
	}

	report, err := p.Run(ctx)
	if err != nil {
		return err
	}

	out := stdout
	if f.output != "" {
		file, err := os.Create(f.output)
		if err != nil {
			return fmt.Errorf("create report: %w", err)
		}
		defer file.Close()
		out = file
	}
	if err := probe.Write(out, report, f.format); err != nil {
		return err
	}

	if f.fail && report.Failed() {
		return errFindings
	}
	return nil
}
