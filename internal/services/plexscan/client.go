package plexscan

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"mvvid/internal/config"
	"mvvid/internal/library"
	"mvvid/internal/logging"
	"mvvid/internal/services"
)

const lockRetryDelay = 250 * time.Millisecond

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string) error
}

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// WithLogger attaches a logger for invocation diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logging.WithComponent(logger, "plexscan")
	}
}

// Client wraps Plex Media Scanner CLI interactions.
type Client struct {
	binary   string
	timeout  time.Duration
	lockPath string
	exec     Executor
	logger   *slog.Logger
}

// New constructs a scanner client.
func New(binary string, timeoutSeconds int, lockPath string, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, services.Wrap(services.ErrConfiguration, "scanner", "construct client", "scanner binary required", nil)
	}
	client := &Client{
		binary:   binary,
		timeout:  time.Duration(timeoutSeconds) * time.Second,
		lockPath: lockPath,
		exec:     commandExecutor{},
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// NewFromConfig constructs a scanner client from application config.
func NewFromConfig(cfg *config.Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, "scanner", "construct client", "configuration not loaded", nil)
	}
	return New(cfg.Scanner.Binary, cfg.Scanner.TimeoutSeconds, cfg.Scanner.LockPath, opts...)
}

// ScanSection requests a recursive scan-and-refresh of an entire section.
func (c *Client) ScanSection(ctx context.Context, section library.Section) error {
	args := []string{"-s", "-r", "-c", strconv.Itoa(section.Key)}
	return c.run(ctx, section, args)
}

// ScanDirectory requests a targeted (partial/priority) scan of dir within
// the section, used after a move so new items appear without a full
// re-index.
func (c *Client) ScanDirectory(ctx context.Context, section library.Section, dir string) error {
	args := []string{"-s", "-r", "-p", "-c", strconv.Itoa(section.Key), "--directory", dir}
	return c.run(ctx, section, args)
}

func (c *Client) run(ctx context.Context, section library.Section, args []string) error {
	unlock, err := c.acquireLock(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	runCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	c.logger.Debug("invoking scanner",
		logging.String("binary", c.binary),
		logging.String("args", strings.Join(args, " ")),
		logging.Int("section_key", section.Key),
	)
	if err := c.exec.Run(runCtx, c.binary, args); err != nil {
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			return services.Wrap(
				services.ErrExternalTool,
				"scanner",
				"run",
				fmt.Sprintf("Plex Media Scanner timed out after %s for section %d", c.timeout, section.Key),
				err,
			)
		}
		return services.Wrap(
			services.ErrExternalTool,
			"scanner",
			"run",
			fmt.Sprintf("Plex Media Scanner failed for section %d", section.Key),
			err,
		)
	}
	c.logger.Debug("scanner finished",
		logging.Int("section_key", section.Key),
		logging.Duration("elapsed", time.Since(start)),
	)
	return nil
}

// acquireLock serializes scanner invocations across mvvid processes so an
// interactive move and a timer-driven refresh cannot stack scanners.
func (c *Client) acquireLock(ctx context.Context) (func(), error) {
	if strings.TrimSpace(c.lockPath) == "" {
		return func() {}, nil
	}
	lock := flock.New(c.lockPath)
	locked, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "scanner", "acquire lock", c.lockPath, err)
	}
	if !locked {
		return nil, services.Wrap(services.ErrExternalTool, "scanner", "acquire lock", fmt.Sprintf("could not lock %s", c.lockPath), nil)
	}
	return func() { _ = lock.Unlock() }, nil
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string) error {
	cmd := exec.CommandContext(ctx, binary, args...)
	var stderr bytes.Buffer
	cmd.Stdout = io.Discard
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		return nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("exit status %d: %s", exitErr.ExitCode(), msg)
		}
		return fmt.Errorf("exit status %d", exitErr.ExitCode())
	}
	return err
}
