package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/goliatone/go-formdispatch/pkg/collect"
	"github.com/goliatone/go-formdispatch/pkg/dispatch"
	"github.com/goliatone/go-formdispatch/pkg/model"
	"github.com/goliatone/go-formdispatch/pkg/orchestrator"
	"github.com/goliatone/go-formdispatch/pkg/payload"
	"github.com/goliatone/go-formdispatch/pkg/render"
	"github.com/goliatone/go-formdispatch/pkg/renderers/tui"
	"github.com/goliatone/go-formdispatch/pkg/schema"
	"github.com/goliatone/go-formdispatch/pkg/validation"
)

var (
	tokenFlag = &cli.StringFlag{
		Name:  "token",
		Usage: "GitHub token (defaults to $GITHUB_TOKEN)",
	}
	dryRunFlag = &cli.BoolFlag{
		Name:  "dry-run",
		Usage: "print the payload instead of sending it",
	}
)

func (a *app) fillCommand() *cli.Command {
	return &cli.Command{
		Name:      "fill",
		Usage:     "fill a form interactively, then preview or dispatch it",
		ArgsUsage: "<file|url|registry:name>",
		Flags:     []cli.Flag{tokenFlag, dryRunFlag, presetFlag},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if err := a.setup(cmd); err != nil {
				return err
			}
			ctx = a.context(ctx)
			form, err := a.loadForm(ctx, cmd)
			if err != nil {
				return err
			}

			filler := tui.New(tui.WithPromptDriver(a.opts.Prompter))
			values, err := filler.Fill(ctx, form, a.renderOptions())
			if err != nil {
				return err
			}
			return a.send(ctx, cmd, form, values)
		},
	}
}

func (a *app) dispatchCommand() *cli.Command {
	return &cli.Command{
		Name:      "dispatch",
		Usage:     "dispatch a form with values given on the command line",
		ArgsUsage: "<file|url|registry:name>",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:    "set",
				Aliases: []string{"s"},
				Usage:   "field value as name=value; repeat a checkbox name for each option",
			},
			tokenFlag,
			dryRunFlag,
			presetFlag,
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if err := a.setup(cmd); err != nil {
				return err
			}
			ctx = a.context(ctx)
			form, err := a.loadForm(ctx, cmd)
			if err != nil {
				return err
			}

			surface, rejected := collect.FormSurfaceFromPairs(cmd.StringSlice("set"))
			if len(rejected) > 0 {
				return fmt.Errorf("dispatch: expected name=value, got %s", strings.Join(rejected, ", "))
			}
			values := collect.Collect(form, surface)
			if missing := collect.Missing(form, values); len(missing) > 0 {
				summary := a.t("forms.missing_fields", fmt.Sprintf("%d required fields are empty", len(missing)), len(missing))
				return fmt.Errorf("%s: %s", summary, strings.Join(missing, ", "))
			}
			return a.send(ctx, cmd, form, values)
		},
	}
}

func (a *app) loadForm(ctx context.Context, cmd *cli.Command) (*schema.FormSchema, error) {
	src, err := sourceArg(cmd)
	if err != nil {
		return nil, err
	}
	gen, err := a.orchestrator(cmd)
	if err != nil {
		return nil, err
	}
	return gen.Schema(ctx, orchestrator.Request{Source: src})
}

// send prints the payload on --dry-run, otherwise posts it to the registry's
// dispatch endpoint.
func (a *app) send(ctx context.Context, cmd *cli.Command, form *schema.FormSchema, values *model.FormValues) error {
	invalid, err := validation.ValueErrors(form, values)
	if err != nil {
		return err
	}
	if len(invalid) > 0 {
		mapping := render.MapErrorPayload(form, invalid)
		problems := mapping.Form
		for _, name := range slices.Sorted(maps.Keys(mapping.Fields)) {
			problems = append(problems, name+": "+strings.Join(mapping.Fields[name], "; "))
		}
		return fmt.Errorf("%s: %s", a.t("forms.invalid_values", "Some values are not accepted"), strings.Join(problems, ", "))
	}

	if cmd.Bool("dry-run") {
		enc := json.NewEncoder(a.opts.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(payload.NewAssembler(nil).Assemble(form, values))
	}

	options := []dispatch.Option{dispatch.WithTimeout(a.cfg.Client.Timeout.Duration)}
	if a.opts.HTTPClient != nil {
		options = append(options, dispatch.WithHTTPClient(a.opts.HTTPClient))
	}
	client := dispatch.New(a.cfg.Client.BaseURL, options...)

	token := a.token(cmd)
	if token == "" && dispatch.CheckDispatchable(form) == nil {
		return fmt.Errorf("%s (--token or $%s)", a.t("dispatch.token_required", "A GitHub token is required to dispatch"), tokenEnv)
	}
	result, err := client.Dispatch(ctx, form, values, token)
	if err != nil {
		return err
	}
	a.printf("%s: %s → %s\n", a.t("dispatch.success", result.Message), result.EventType, result.Repository)
	return nil
}
