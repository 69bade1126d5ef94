package cli

import (
	"context"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/goliatone/go-formdispatch/internal/store/seed"
)

func (a *app) seedCommand() *cli.Command {
	return &cli.Command{
		Name:  "seed",
		Usage: "insert the sample forms into the configured store",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "store", Usage: "memory, mongo or sqlite"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if err := a.setup(cmd); err != nil {
				return err
			}
			if driver := cmd.String("store"); driver != "" {
				a.cfg.Store.Driver = driver
				if err := a.cfg.Validate(); err != nil {
					return err
				}
			}
			ctx = a.context(ctx)

			st, err := openStore(ctx, a.cfg.Store)
			if err != nil {
				return err
			}
			defer func() {
				_ = st.Close()
			}()

			result, err := seed.Apply(ctx, st)
			if err != nil {
				return err
			}
			a.printf("created: %s\n", orNone(result.Created))
			a.printf("skipped: %s\n", orNone(result.Skipped))
			return nil
		},
	}
}

func orNone(names []string) string {
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, ", ")
}
