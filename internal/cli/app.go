// Package cli wires the formdispatch command tree: the registry server, the
// schema tooling (render, lint) and the dispatch commands.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/goliatone/go-formdispatch/internal/config"
	"github.com/goliatone/go-formdispatch/internal/i18n"
	"github.com/goliatone/go-formdispatch/internal/logger"
	"github.com/goliatone/go-formdispatch/pkg/registry"
	"github.com/goliatone/go-formdispatch/pkg/renderers/tui"
)

const (
	defaultConfigPath = "formdispatch.toml"
	configEnv         = "FORMDISPATCH_CONFIG"
	tokenEnv          = "GITHUB_TOKEN"
)

// Options carries the process surroundings so tests can substitute them.
type Options struct {
	Out        io.Writer
	Err        io.Writer
	Getenv     func(string) string
	Prompter   tui.PromptDriver
	HTTPClient *http.Client
	Version    string
}

type app struct {
	opts Options

	cfg          *config.Config
	logger       *slog.Logger
	translations *i18n.Translations
}

// New builds the root command.
func New(opts Options) *cli.Command {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Err == nil {
		opts.Err = os.Stderr
	}
	if opts.Getenv == nil {
		opts.Getenv = os.Getenv
	}
	if opts.Prompter == nil {
		opts.Prompter = tui.NewSurveyDriver()
	}
	if opts.Version == "" {
		opts.Version = "dev"
	}
	a := &app{opts: opts}

	configPath := opts.Getenv(configEnv)
	if configPath == "" {
		configPath = defaultConfigPath
	}

	return &cli.Command{
		Name:    "formdispatch",
		Usage:   "Build forms from YAML and dispatch them as GitHub repository_dispatch events",
		Version: opts.Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to the TOML config file",
				Value:   configPath,
			},
			&cli.StringFlag{
				Name:  "api-url",
				Usage: "base URL of the form registry",
			},
			&cli.StringFlag{
				Name:  "locale",
				Usage: "language for prompts and messages",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "debug, info, warn or error",
			},
			&cli.StringFlag{
				Name:  "log-format",
				Usage: "pretty, text or json",
			},
		},
		Commands: []*cli.Command{
			a.serveCommand(),
			a.renderCommand(),
			a.lintCommand(),
			a.fillCommand(),
			a.dispatchCommand(),
			a.formsCommand(),
			a.seedCommand(),
			a.configCommand(),
		},
	}
}

// setup loads config once and applies the root flag overrides.
func (a *app) setup(cmd *cli.Command) error {
	if a.cfg != nil {
		return nil
	}

	cfg, err := config.Load(cmd.String("config"), a.opts.Getenv)
	if err != nil {
		return err
	}
	if v := cmd.String("api-url"); v != "" {
		cfg.Client.BaseURL = v
	}
	if v := cmd.String("locale"); v != "" {
		cfg.Locale = v
	}
	if v := cmd.String("log-level"); v != "" {
		cfg.Log.Level = v
	}
	if v := cmd.String("log-format"); v != "" {
		cfg.Log.Format = v
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	translations, err := i18n.NewTranslations()
	if err != nil {
		return fmt.Errorf("load translations: %w", err)
	}
	if !translations.Supports(cfg.Locale) {
		cfg.Locale = "en"
	}

	a.cfg = cfg
	a.translations = translations
	a.logger = logger.New(a.opts.Err, logger.Format(cfg.Log.Format), logger.ParseLevel(cfg.Log.Level))
	return nil
}

// context attaches the app logger so library code logs through it.
func (a *app) context(ctx context.Context) context.Context {
	return logger.WithLogger(ctx, a.logger)
}

func (a *app) registryClient() *registry.Client {
	options := []registry.Option{registry.WithTimeout(a.cfg.Client.Timeout.Duration)}
	if a.opts.HTTPClient != nil {
		options = append(options, registry.WithHTTPClient(a.opts.HTTPClient))
	}
	return registry.New(a.cfg.Client.BaseURL, options...)
}

func (a *app) t(key, fallback string, args ...any) string {
	if a.translations == nil {
		return fallback
	}
	if msg, err := a.translations.Translate(a.cfg.Locale, key, args...); err == nil && msg != "" {
		return msg
	}
	return fallback
}

func (a *app) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(a.opts.Out, format, args...)
}

func (a *app) token(cmd *cli.Command) string {
	if token := strings.TrimSpace(cmd.String("token")); token != "" {
		return token
	}
	return strings.TrimSpace(a.opts.Getenv(tokenEnv))
}
