package cli

import (
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
)

type flags struct {
	cfgPath      string
	isDebug      bool
	quiet        bool
	printMetrics bool
	retries      int
	initialDelay time.Duration
	jitter       bool
	timeout      time.Duration
}

func newRootCmd() *cobra.Command {
	f := &flags{}
	cmd := &cobra.Command{
		Use:   "safecall [flags] -- command [args...]",
		Short: "Run a command with retries, backoff and per-attempt timeouts",
		Long: `safecall runs an external command until it succeeds or the retry budget is spent.
Every failed attempt is logged; the stdout of the successful attempt is printed.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, f, args)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&f.cfgPath, "config", "", "config file (YAML); defaults apply when empty")
	pf.BoolVar(&f.isDebug, "debug", false, "enable debug logging")

	fl := cmd.Flags()
	fl.BoolVarP(&f.quiet, "quiet", "q", false, "do not log failed attempts")
	fl.BoolVar(&f.printMetrics, "metrics", false, "print Prometheus metrics to stderr on exit")
	fl.IntVarP(&f.retries, "retries", "r", 0, "retries after the first attempt (overrides config)")
	fl.DurationVar(&f.initialDelay, "initial-delay", 0, "backoff base delay (overrides config)")
	fl.BoolVar(&f.jitter, "jitter", false, "randomize backoff delays (overrides config)")
	fl.DurationVarP(&f.timeout, "timeout", "t", 0, "per-attempt timeout, 0 disables (overrides config)")

	return cmd
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	slog.SetDefault(newLogger(os.Stderr, "info", false))
	if err := newRootCmd().Execute(); err != nil {
		// Exhaustion has already been logged by run.
		if !errors.Is(err, ErrExhausted) {
			slog.Error("safecall failed", "error", err)
		}
		os.Exit(1)
	}
}
