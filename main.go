package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	app "github.com/rocketscienceinc/irene-skills/internal"
	"github.com/rocketscienceinc/irene-skills/internal/config"
	"github.com/rocketscienceinc/irene-skills/internal/entity"
)

var (
	configPath string
	sessionID  string
)

var rootCmd = &cobra.Command{
	Use:          "irene-skills",
	Short:        "Voice assistant skills served over HTTP, WebSocket and Telegram",
	SilenceUsage: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP, WebSocket and Telegram transports",
	RunE: func(_ *cobra.Command, _ []string) error {
		conf := initConfig()
		logger := initLogger(conf)

		if err := app.RunApp(logger, conf); err != nil {
			return fmt.Errorf("app run failed: %w", err)
		}

		return nil
	},
}

var sayCmd = &cobra.Command{
	Use:   "say <utterance>",
	Short: "Deliver one utterance to a session and print the replies",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		conf := initConfig()
		logger := initLogger(conf)
		ctx := cmd.Context()

		skills, err := app.NewApp(ctx, logger, conf)
		if err != nil {
			return fmt.Errorf("app init failed: %w", err)
		}
		// background results end up in the session outbox
		defer skills.Close()

		speaker := entity.SpeakerFunc(func(_ context.Context, text string) error {
			_, writeErr := fmt.Fprintln(cmd.OutOrStdout(), text)
			return writeErr
		})

		return skills.Dispatcher.Handle(ctx, sessionID, strings.Join(args, " "), speaker)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.yml", "path to the config file")
	sayCmd.Flags().StringVar(&sessionID, "session", "cli", "session to deliver the utterance to")

	rootCmd.AddCommand(serveCmd, sayCmd)
}

// main - is the entry point of the application.
func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// initialize config; environment and defaults only when the file is missing.
func initConfig() *config.Config {
	path := configPath
	if !filepath.IsAbs(path) {
		baseDir, err := os.Getwd()
		if err != nil {
			panic(fmt.Errorf("failed to get current directory: %w", err))
		}

		path = filepath.Join(baseDir, path)
	}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return config.MustLoadEnv()
	}

	return config.MustLoad(path)
}

// initialize logger.
func initLogger(conf *config.Config) *slog.Logger {
	var level slog.Level

	switch conf.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
