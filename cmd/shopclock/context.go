package main

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"shopclock/internal/client"
	"shopclock/internal/config"
	"shopclock/internal/timelog"
	"shopclock/internal/tracker"
)

type commandContext struct {
	serverFlag   *string
	configFlag   *string
	operatorFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(serverFlag, configFlag, operatorFlag *string) *commandContext {
	return &commandContext{
		serverFlag:   serverFlag,
		configFlag:   configFlag,
		operatorFlag: operatorFlag,
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
		c.config = cfg
	})
	return c.config, c.configErr
}

// operator resolves the operator identifier from the --operator flag or the
// configured default. Commands that act on sessions require one.
func (c *commandContext) operator() (string, error) {
	if c.operatorFlag != nil {
		if op := strings.TrimSpace(*c.operatorFlag); op != "" {
			return op, nil
		}
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return "", err
	}
	if op := cfg.Tracker.DefaultOperator; op != "" {
		return op, nil
	}
	return "", fmt.Errorf("no operator given: pass --operator or set tracker.default_operator in the config")
}

func (c *commandContext) serverAddr() string {
	if c.serverFlag == nil {
		return ""
	}
	return strings.TrimSpace(*c.serverFlag)
}

// withSessions hands the command a session facade backed either by a running
// daemon's API (--server) or by direct store access.
func (c *commandContext) withSessions(fn func(*sessionFacade) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}

	if addr := c.serverAddr(); addr != "" {
		remote, err := client.New(addr, cfg.Paths.APIToken)
		if err != nil {
			return fmt.Errorf("dial API server: %w", err)
		}
		return fn(&sessionFacade{remote: remote})
	}

	store, err := timelog.Open(cfg)
	if err != nil {
		return fmt.Errorf("open session database: %w", err)
	}
	defer store.Close()

	trk := tracker.New(store, slog.New(slog.DiscardHandler))
	return fn(&sessionFacade{local: trk})
}
