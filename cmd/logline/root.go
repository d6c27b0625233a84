package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/kavisanghavi/logline/cmd/logline/botcmd"
	"github.com/kavisanghavi/logline/cmd/logline/userscmd"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var version = "dev"

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "logline",
		Short:         "Slack bot that keeps a day-grouped work log in your document",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(cmd)
		},
	}

	cmd.PersistentFlags().String("config", "", "Config file (defaults to ~/.logline/config.yaml).")
	cmd.PersistentFlags().String("log-level", "info", "Log level: debug|info|warn|error.")
	cmd.PersistentFlags().String("log-format", "text", "Log format: text|json.")

	cmd.AddCommand(botcmd.NewCommand(botcmd.Dependencies{
		LoggerFromViper: loggerFromViper,
	}))
	cmd.AddCommand(userscmd.NewCommand())
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	})

	return cmd
}

func initConfig(cmd *cobra.Command) error {
	viper.SetEnvPrefix("LOGLINE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if level, err := cmd.Flags().GetString("log-level"); err == nil && cmd.Flags().Changed("log-level") {
		viper.Set("log.level", level)
	}
	if format, err := cmd.Flags().GetString("log-format"); err == nil && cmd.Flags().Changed("log-format") {
		viper.Set("log.format", format)
	}

	cfgFile, _ := cmd.Flags().GetString("config")
	cfgFile = strings.TrimSpace(cfgFile)
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %q: %w", cfgFile, err)
		}
		return nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(filepath.Join(home, ".logline"))
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func loggerFromViper() (*slog.Logger, error) {
	var level slog.Level
	switch strings.ToLower(strings.TrimSpace(viper.GetString("log.level"))) {
	case "debug":
		level = slog.LevelDebug
	case "", "info":
		level = slog.LevelInfo
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return nil, fmt.Errorf("unknown log level %q", viper.GetString("log.level"))
	}

	opts := &slog.HandlerOptions{Level: level}
	switch strings.ToLower(strings.TrimSpace(viper.GetString("log.format"))) {
	case "json":
		return slog.New(slog.NewJSONHandler(os.Stderr, opts)), nil
	case "", "text":
		return slog.New(slog.NewTextHandler(os.Stderr, opts)), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", viper.GetString("log.format"))
	}
}
