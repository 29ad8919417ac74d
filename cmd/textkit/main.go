// Command textkit matches patterns in files and drives ropes from edit scripts.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	configFile string
	v          = viper.New()
	cfg        *Config
	logger     = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:           "textkit",
	Short:         "textkit is a small toolbox for ropes and multi-pattern search",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = loadConfig(v, configFile)
		if err != nil {
			return err
		}
		logger, err = newLogger(cfg.Log)
		if err != nil {
			return err
		}
		zap.ReplaceGlobals(logger)
		logger.Debug("loaded config", zap.String("file", v.ConfigFileUsed()))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configFile, "config", "", "config file (default ./textkit.yaml or $HOME/.config/textkit/textkit.yaml)")
	pf.String("log-level", "info", "log level: debug, info, warn, error")
	pf.String("log-format", "console", "log format: console or json")
	_ = v.BindPFlag("log.level", pf.Lookup("log-level"))
	_ = v.BindPFlag("log.format", pf.Lookup("log-format"))

	rootCmd.AddCommand(matchCmd(), ropeCmd(), benchCmd())
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		logger.Error("textkit failed", zap.Error(err))
		rootCmd.PrintErrln("error:", err)
		os.Exit(1)
	}
}
