package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	bgremover "github.com/menta2k/bg-remover"
	"github.com/menta2k/bg-remover/internal/config"
)

// globalOptions are shared by every subcommand.
type globalOptions struct {
	configPath string
	envFile    string
	logLevel   string
	logJSON    bool

	cfg    *config.Config
	logger hclog.Logger
}

func newRootCmd() *cobra.Command {
	g := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "bg-remover",
		Short: "Remove uniform photo backgrounds via vectorizer.ai",
		Long: `bg-remover infers the background colour of product photos by sampling
their four corners, optionally pads them onto a fixed-size canvas filled with
that colour, and uploads them to vectorizer.ai with the colour mapped to
transparent.

Credentials are read from VECTORIZER_API_KEY and VECTORIZER_SECRET, either in
the environment or in a .env file.`,
		Version:      bgremover.GetVersion(),
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return g.init()
		},
	}

	rootCmd.PersistentFlags().StringVar(&g.configPath, "config", config.GetConfigPath(), "config file (YAML)")
	rootCmd.PersistentFlags().StringVar(&g.envFile, "env-file", ".env", "env file with API credentials")
	rootCmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "info", "log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&g.logJSON, "log-json", false, "emit logs as JSON")

	rootCmd.AddCommand(newProcessCmd(g))
	rootCmd.AddCommand(newDetectCmd(g))
	rootCmd.AddCommand(newPadCmd(g))
	rootCmd.AddCommand(newConfigCmd(g))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

func (g *globalOptions) init() error {
	level := hclog.LevelFromString(g.logLevel)
	if level == hclog.NoLevel {
		return fmt.Errorf("unknown log level %q", g.logLevel)
	}
	g.logger = hclog.New(&hclog.LoggerOptions{
		Name:       "bg-remover",
		Output:     os.Stderr,
		Level:      level,
		JSONFormat: g.logJSON,
		Color:      hclog.AutoColor,
	})

	if err := config.LoadEnvFile(g.envFile); err != nil {
		return err
	}

	cfg, err := config.Load(g.configPath)
	if err != nil {
		return err
	}
	g.cfg = cfg
	g.logger.Debug("configuration loaded", "path", g.configPath)
	return nil
}

// validate runs Validate and prints each problem on its own line.
func (g *globalOptions) validate() error {
	if err := g.cfg.Validate(); err != nil {
		var joined interface{ Unwrap() []error }
		if errors.As(err, &joined) {
			msgs := make([]string, 0, len(joined.Unwrap()))
			for _, e := range joined.Unwrap() {
				msgs = append(msgs, "  - "+e.Error())
			}
			return fmt.Errorf("invalid configuration:\n%s", strings.Join(msgs, "\n"))
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
