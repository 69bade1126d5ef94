package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/goliatone/go-formdispatch/internal/config"
)

func (a *app) configCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "inspect or create the config file",
		Commands: []*cli.Command{
			{
				Name:  "init",
				Usage: "write a config file with the defaults",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "force", Usage: "overwrite an existing file"},
				},
				Action: func(_ context.Context, cmd *cli.Command) error {
					path := cmd.String("config")
					if _, err := os.Stat(path); err == nil && !cmd.Bool("force") {
						return fmt.Errorf("%s already exists (use --force to overwrite)", path)
					}
					if err := config.Default().Write(path); err != nil {
						return err
					}
					a.printf("Wrote %s\n", path)
					return nil
				},
			},
			{
				Name:  "show",
				Usage: "print the effective configuration",
				Action: func(_ context.Context, cmd *cli.Command) error {
					if err := a.setup(cmd); err != nil {
						return err
					}
					return a.cfg.Encode(a.opts.Out)
				},
			},
		},
	}
}
