package main

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"mvvid/internal/config"
	"mvvid/internal/journal"
	"mvvid/internal/library"
	"mvvid/internal/logging"
	"mvvid/internal/services/plexscan"
)

type commandContext struct {
	configFlag  *string
	verboseFlag *bool
	runID       string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	log        *slog.Logger
}

func newCommandContext(configFlag *string, verboseFlag *bool) *commandContext {
	return &commandContext{
		configFlag:  configFlag,
		verboseFlag: verboseFlag,
		runID:       uuid.NewString(),
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// logger builds the per-run logger once. Every record carries a run_id so
// journal rows and log lines from one invocation correlate.
func (c *commandContext) logger() *slog.Logger {
	c.loggerOnce.Do(func() {
		cfg, _ := c.ensureConfig()
		verbose := c.verboseFlag != nil && *c.verboseFlag
		logger, err := logging.NewFromConfig(cfg, verbose)
		if err != nil {
			logger = logging.NewNop()
		}
		c.log = logger.With(logging.String("run_id", c.runID))
	})
	return c.log
}

func (c *commandContext) catalog() (*library.Catalog, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return library.NewCatalog(cfg)
}

func (c *commandContext) scanner() (*plexscan.Client, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return plexscan.NewFromConfig(cfg, plexscan.WithLogger(c.logger()))
}

// openJournal returns nil when the journal is disabled or unavailable;
// journal trouble never fails a move.
func (c *commandContext) openJournal() *journal.Store {
	cfg, err := c.ensureConfig()
	if err != nil || cfg.Paths.JournalPath == "" {
		return nil
	}
	store, err := journal.Open(cfg.Paths.JournalPath)
	if err != nil {
		c.logger().Warn("journal unavailable; moves will not be recorded", logging.Error(err))
		return nil
	}
	return store
}
