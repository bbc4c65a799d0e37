package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"ScrapBoard/internal/config"
	"ScrapBoard/internal/logging"
	"ScrapBoard/internal/state"

	"github.com/spf13/cobra"
)

var (
	flags = struct {
		ConfigFile string
		LogLevel   string
	}{}

	root = &cobra.Command{
		Use:           "scrapboard",
		Short:         "ScrapBoard is a whiteboard document engine",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

func init() {
	root.PersistentFlags().StringVarP(&flags.ConfigFile, "config", "c", "", "configuration file (default $XDG_CONFIG_HOME/scrapboard/config.yaml)")
	root.PersistentFlags().StringVar(&flags.LogLevel, "log-level", "", "override the configured log level")
}

func Execute() {
	err := root.ExecuteContext(context.Background())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup loads the configuration and installs the logger every command uses.
func setup() (*config.Config, error) {
	path := flags.ConfigFile
	if path == "" {
		var err error
		if path, err = config.DefaultPath(); err != nil {
			return nil, err
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if flags.LogLevel != "" {
		cfg.LogLevel = flags.LogLevel
	}

	logging.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logging.ParseLevel(cfg.LogLevel),
	})))
	return cfg, nil
}

func parseDocumentID(s string) (state.DocumentID, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid board id %q: %w", s, err)
	}
	return state.DocumentID(n), nil
}
