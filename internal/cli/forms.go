package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/goliatone/go-formdispatch/pkg/session"
)

func (a *app) formsCommand() *cli.Command {
	return &cli.Command{
		Name:  "forms",
		Usage: "manage forms stored in the registry",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "list stored forms",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					if err := a.setup(cmd); err != nil {
						return err
					}
					forms, err := a.registryClient().List(a.context(ctx))
					if err != nil {
						return err
					}
					if len(forms) == 0 {
						a.printf("%s\n", a.t("forms.empty", "No forms stored yet"))
						return nil
					}
					for _, form := range forms {
						a.printf("%-32s %s\n", form.Name, form.Title)
					}
					return nil
				},
			},
			{
				Name:      "get",
				Usage:     "print a form's YAML",
				ArgsUsage: "<name>",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "json", Usage: "print the full record as JSON"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					if err := a.setup(cmd); err != nil {
						return err
					}
					name, err := nameArg(cmd)
					if err != nil {
						return err
					}
					form, err := a.registryClient().Get(a.context(ctx), name)
					if err != nil {
						return err
					}
					if cmd.Bool("json") {
						enc := json.NewEncoder(a.opts.Out)
						enc.SetIndent("", "  ")
						return enc.Encode(form)
					}
					a.printf("%s", form.YAMLContent)
					return nil
				},
			},
			{
				Name:      "create",
				Usage:     "store a new form, from a file or the starter template",
				ArgsUsage: "<name>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Usage: "YAML file to store"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					if err := a.setup(cmd); err != nil {
						return err
					}
					name, err := nameArg(cmd)
					if err != nil {
						return err
					}
					ctx = a.context(ctx)
					sess := session.New(a.registryClient())
					if _, err := sess.Create(ctx, name); err != nil {
						return err
					}
					if path := cmd.String("file"); path != "" {
						if err := a.saveFile(ctx, sess, path); err != nil {
							return err
						}
					}
					a.printf("Created %s\n", name)
					return nil
				},
			},
			{
				Name:      "update",
				Usage:     "replace a stored form's YAML",
				ArgsUsage: "<name>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Usage: "YAML file to store", Required: true},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					if err := a.setup(cmd); err != nil {
						return err
					}
					name, err := nameArg(cmd)
					if err != nil {
						return err
					}
					ctx = a.context(ctx)
					sess := session.New(a.registryClient())
					if _, err := sess.Select(ctx, name); err != nil {
						return err
					}
					if err := a.saveFile(ctx, sess, cmd.String("file")); err != nil {
						return err
					}
					a.printf("Updated %s\n", name)
					return nil
				},
			},
			{
				Name:      "delete",
				Usage:     "remove a stored form",
				ArgsUsage: "<name>",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					if err := a.setup(cmd); err != nil {
						return err
					}
					name, err := nameArg(cmd)
					if err != nil {
						return err
					}
					if err := a.registryClient().Delete(a.context(ctx), name); err != nil {
						return err
					}
					a.printf("Deleted %s\n", name)
					return nil
				},
			},
			{
				Name:  "health",
				Usage: "check the registry and its store",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					if err := a.setup(cmd); err != nil {
						return err
					}
					health, err := a.registryClient().Health(a.context(ctx))
					if err != nil {
						return err
					}
					a.printf("%s (store %s, %s)\n", health.Status, health.MongoDB, health.Timestamp)
					if !health.Healthy() {
						return fmt.Errorf("registry unhealthy: %s", health.Error)
					}
					return nil
				},
			},
		},
	}
}

func (a *app) saveFile(ctx context.Context, sess *session.Session, path string) error {
	text, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	sess.Edit(string(text))
	_, err = sess.Save(ctx)
	return err
}

func nameArg(cmd *cli.Command) (string, error) {
	if cmd.Args().Len() != 1 {
		return "", errors.New("expected exactly one form name")
	}
	return cmd.Args().First(), nil
}
