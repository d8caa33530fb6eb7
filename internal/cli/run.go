package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	"github.com/baxromumarov/safely"
	"github.com/baxromumarov/safely/internal/config"
)

// ErrExhausted is returned when every attempt failed.
var ErrExhausted = errors.New("all attempts failed")

func run(cmd *cobra.Command, f *flags, args []string) error {
	_ = godotenv.Load()
	slog.SetDefault(newLogger(cmd.ErrOrStderr(), "info", f.isDebug))

	cfg, err := config.Load(f.cfgPath)
	if err != nil {
		return err
	}
	applyFlags(cmd, f, cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	logger := newLogger(cmd.ErrOrStderr(), cfg.Logging.Level, f.isDebug)
	slog.SetDefault(logger)

	reg := prometheus.NewRegistry()
	metrics, err := safely.NewMetrics(reg, "safecall")
	if err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}
	if f.printMetrics {
		defer func() {
			if err := writeMetrics(cmd.ErrOrStderr(), reg); err != nil {
				logger.Error("Failed to write metrics", "error", err)
			}
		}()
	}

	ex := safely.New(
		safely.WithSlogLogger(logger),
		safely.WithLogErrors(cfg.Logging.Errors && !f.quiet),
		safely.WithMetrics(metrics),
		safely.WithOnRetry(func(attempt int, err error, delay time.Duration) {
			logger.Debug("Retrying", "attempt", attempt+1, "delay", delay, "error", err)
		}),
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := cfg.Retry.Options()
	logger.Debug("Running command", "command", args, "retries", opts.Retries, "timeout", opts.Timeout)

	r := safely.For[[]byte](ex).SafeWithRetries(ctx, func(ctx context.Context) ([]byte, error) {
		return runCommand(ctx, opts.Timeout, cmd.ErrOrStderr(), args)
	}, opts)

	if safely.IsFailure(r) {
		logger.Error("Command failed", "attempts", opts.Retries+1, "error", r.Err())
		return fmt.Errorf("%w: %w", ErrExhausted, r.Err())
	}

	_, err = cmd.OutOrStdout().Write(r.Value())
	return err
}

// runCommand runs one attempt and returns its captured stdout. The process
// is killed once timeout elapses so a timed-out attempt does not linger.
func runCommand(ctx context.Context, timeout time.Duration, stderr io.Writer, args []string) ([]byte, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	var out bytes.Buffer
	c := exec.CommandContext(ctx, args[0], args[1:]...)
	c.Stdout = &out
	c.Stderr = stderr
	if err := c.Run(); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// applyFlags overrides config values with flags set on the command line.
func applyFlags(cmd *cobra.Command, f *flags, cfg *config.AppConfig) {
	fl := cmd.Flags()
	if fl.Changed("retries") {
		cfg.Retry.Retries = f.retries
	}
	if fl.Changed("initial-delay") {
		cfg.Retry.InitialDelay = f.initialDelay
	}
	if fl.Changed("jitter") {
		cfg.Retry.Jitter = f.jitter
	}
	if fl.Changed("timeout") {
		cfg.Retry.Timeout = f.timeout
	}
}

func newLogger(w io.Writer, level string, debug bool) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	if debug {
		lvl = slog.LevelDebug
	}

	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      lvl,
		TimeFormat: time.RFC3339,
		NoColor:    w != os.Stderr,
	}))
}

func writeMetrics(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return err
	}
	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return err
		}
	}
	return nil
}
