package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/goliatone/go-formdispatch/internal/server"
	"github.com/goliatone/go-formdispatch/internal/store/seed"
)

func (a *app) serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the form registry and dispatch API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Usage: "listen address",
			},
			&cli.StringFlag{
				Name:  "store",
				Usage: "memory, mongo or sqlite",
			},
			&cli.BoolFlag{
				Name:  "seed",
				Usage: "insert the sample forms before serving",
			},
			&cli.StringSliceFlag{
				Name:  "preset",
				Usage: "YAML preset applied to every rendered page form",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if err := a.setup(cmd); err != nil {
				return err
			}
			cfg := a.cfg
			if addr := cmd.String("addr"); addr != "" {
				cfg.Server.Addr = addr
			}
			if driver := cmd.String("store"); driver != "" {
				cfg.Store.Driver = driver
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(a.context(ctx), os.Interrupt, syscall.SIGTERM)
			defer stop()

			st, err := openStore(ctx, cfg.Store)
			if err != nil {
				return err
			}
			defer func() {
				if err := st.Close(); err != nil {
					a.logger.Warn("close store", "error", err)
				}
			}()

			if cfg.Server.SeedOnStart || cmd.Bool("seed") {
				result, err := seed.Apply(ctx, st)
				if err != nil {
					return err
				}
				a.logger.Info("seeded forms", "created", result.Created, "skipped", result.Skipped)
			}

			presets, err := loadPresets(append(cfg.Presets, cmd.StringSlice("preset")...))
			if err != nil {
				return err
			}

			srv, err := server.New(ctx, st,
				server.WithAddr(cfg.Server.Addr),
				server.WithShutdownTimeout(cfg.Server.ShutdownTimeout.Duration),
				server.WithStoreName(cfg.Store.Driver),
				server.WithDispatcher(a.githubService()),
				server.WithTranslator(a.translations, a.languages()...),
				server.WithLogger(a.logger),
				server.WithTransformers(presets...),
			)
			if err != nil {
				return err
			}
			a.printf("formdispatch listening on %s (%s store)\n", cfg.Server.Addr, cfg.Store.Driver)
			if err := srv.Run(ctx); err != nil {
				return fmt.Errorf("serve: %w", err)
			}
			return nil
		},
	}
}

// languages lists the configured locale first so it is the negotiation
// default.
func (a *app) languages() []string {
	out := []string{a.cfg.Locale}
	for _, lang := range a.translations.Languages() {
		if lang != a.cfg.Locale {
			out = append(out, lang)
		}
	}
	return out
}
