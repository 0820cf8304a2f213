// Package main is the entry point for the mdclip CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/foomo/mdclip/locate"
	"github.com/foomo/mdclip/persist"
	"github.com/foomo/mdclip/service"
	"github.com/foomo/mdclip/settings"
	"github.com/foomo/mdclip/tags"
)

// version is set at build time via ldflags.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "mdclip",
	Short: "Clip the readable part of web pages as Markdown",
	Long: `mdclip finds the main article of a loaded web page, strips the clutter
around it and converts it to a Markdown document with a title, source line and
tag frontmatter. Pages come from HTML files, a running Chrome, or MCP clients.`,
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./mdclip.yaml or ~/.config/mdclip/mdclip.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("dir", "", "directory for saved documents (default: ~/Downloads)")
	rootCmd.PersistentFlags().String("tags-backend", "file", "tag store backend: file or sqlite")
	rootCmd.PersistentFlags().String("tags-path", "", "tag store location (default: next to the settings file)")
	rootCmd.PersistentFlags().String("settings", "", "settings file (default: ~/.config/mdclip/settings.yaml)")

	for key, flag := range map[string]string{
		"log.level":    "log-level",
		"dir":          "dir",
		"tags.backend": "tags-backend",
		"tags.path":    "tags-path",
		"settings":     "settings",
	} {
		_ = viper.BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag))
	}
	viper.SetDefault("locate.minTextLength", locate.DefaultMinTextLength)
	viper.SetDefault("locate.maxLinkDensity", locate.DefaultMaxLinkDensity)
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("mdclip")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "mdclip"))
		}
	}

	viper.SetEnvPrefix("MDCLIP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// newLogger logs to stderr so stdout stays free for documents and stdio transport
func newLogger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(viper.GetString("log.level"))
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg.Build()
}

func locateOptions() locate.Options {
	return locate.Options{
		MinTextLength:  viper.GetInt("locate.minTextLength"),
		MaxLinkDensity: viper.GetFloat64("locate.maxLinkDensity"),
	}
}

func settingsPath() string {
	if p := viper.GetString("settings"); p != "" {
		return p
	}
	return settings.DefaultPath()
}

// openTagStore returns the configured store and a function releasing it
func openTagStore() (tags.Store, func() error, error) {
	path := viper.GetString("tags.path")
	switch backend := viper.GetString("tags.backend"); backend {
	case "", "file":
		if path == "" {
			path = filepath.Join(filepath.Dir(settingsPath()), "tags.yaml")
		}
		return tags.NewFileStore(path), func() error { return nil }, nil
	case "sqlite":
		if path == "" {
			path = filepath.Join(filepath.Dir(settingsPath()), "tags.db")
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, nil, fmt.Errorf("failed to create tag store directory: %w", err)
		}
		store, err := tags.OpenSQLiteStore(path)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown tag store backend %q", backend)
	}
}

// app is the wiring shared by all commands
type app struct {
	logger  *zap.Logger
	service service.Service
	close   func() error
}

// newApp wires the service. A nil prompter makes saves without autoSave fail
// with persist.ErrNoPrompter.
func newApp(prompter persist.Prompter) (*app, error) {
	logger, err := newLogger()
	if err != nil {
		return nil, err
	}
	store, closeStore, err := openTagStore()
	if err != nil {
		return nil, err
	}
	dir := viper.GetString("dir")
	if dir == "" {
		dir = persist.DefaultDir()
	}
	opts := []persist.Option{persist.WithLogger(logger)}
	if prompter != nil {
		opts = append(opts, persist.WithPrompter(prompter))
	}
	saver := persist.NewSaver(dir, opts...)
	svc := service.NewService(logger, locateOptions(), store, settings.New(settingsPath()), saver)
	return &app{
		logger:  logger,
		service: svc,
		close: func() error {
			_ = logger.Sync()
			return closeStore()
		},
	}, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// terminalPrompter asks on stdin, writing the question to the command's stderr
func terminalPrompter(cmd *cobra.Command) persist.Prompter {
	return &persist.StdinPrompter{In: os.Stdin, Out: cmd.ErrOrStderr()}
}
