package cli

import (
	"log/slog"
	"sync"

	"github.com/mrlokans/mangashelf/internal/config"
	"github.com/mrlokans/mangashelf/internal/entrypoint"
)

type commandContext struct {
	version string

	configOnce sync.Once
	config     *config.Config
	logger     *slog.Logger
	configErr  error
}

func newCommandContext(version string) *commandContext {
	return &commandContext{version: version}
}

// ensureConfig loads configuration from the environment and sets up logging once.
func (c *commandContext) ensureConfig() (*config.Config, *slog.Logger, error) {
	c.configOnce.Do(func() {
		cfg := config.NewConfig()
		logger, err := entrypoint.SetupLogger(cfg)
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.logger = logger
	})
	return c.config, c.logger, c.configErr
}

// withServices runs fn against freshly wired services and closes them afterwards.
func (c *commandContext) withServices(fn func(*entrypoint.Services) error) (err error) {
	cfg, logger, err := c.ensureConfig()
	if err != nil {
		return err
	}
	svc, err := entrypoint.NewServices(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := svc.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()
	return fn(svc)
}
