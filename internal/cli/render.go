package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/urfave/cli/v3"

	formdispatch "github.com/goliatone/go-formdispatch"
	"github.com/goliatone/go-formdispatch/pkg/orchestrator"
	"github.com/goliatone/go-formdispatch/pkg/render"
	"github.com/goliatone/go-formdispatch/pkg/renderers/tui"
	"github.com/goliatone/go-formdispatch/pkg/renderers/vanilla"
	"github.com/goliatone/go-formdispatch/pkg/schema"
	"github.com/goliatone/go-formdispatch/pkg/validation"
)

var presetFlag = &cli.StringSliceFlag{
	Name:  "preset",
	Usage: "YAML preset applied after parsing (repeatable)",
}

// orchestrator builds the pipeline used by every schema command. Registry
// sources resolve through the configured registry API.
func (a *app) orchestrator(cmd *cli.Command, tuiOptions ...tui.Option) (*orchestrator.Orchestrator, error) {
	presets, err := loadPresets(append(append([]string(nil), a.cfg.Presets...), cmd.StringSlice("preset")...))
	if err != nil {
		return nil, err
	}

	loaderOptions := []schema.LoaderOption{
		schema.WithRegistry(a.registryClient()),
		schema.WithHTTPFallback(a.cfg.Client.Timeout.Duration),
	}
	if a.opts.HTTPClient != nil {
		loaderOptions = append(loaderOptions, schema.WithHTTPClient(a.opts.HTTPClient))
	}

	html, err := vanilla.New()
	if err != nil {
		return nil, err
	}
	registry := render.NewRegistry()
	registry.MustRegister(html)
	registry.MustRegister(tui.New(append([]tui.Option{tui.WithPromptDriver(a.opts.Prompter)}, tuiOptions...)...))

	options := []orchestrator.Option{
		orchestrator.WithLoader(formdispatch.NewLoader(loaderOptions...)),
		orchestrator.WithRegistry(registry),
	}
	for _, preset := range presets {
		options = append(options, orchestrator.WithTransformer(preset))
	}
	return formdispatch.NewOrchestrator(options...), nil
}

func (a *app) renderOptions() render.RenderOptions {
	return render.RenderOptions{Locale: a.cfg.Locale, Translator: a.translations}
}

func sourceArg(cmd *cli.Command) (schema.Source, error) {
	if cmd.Args().Len() != 1 {
		return nil, errors.New("expected exactly one source: a file path, URL or registry:<name>")
	}
	return schema.ParseSource(cmd.Args().First())
}

func (a *app) renderCommand() *cli.Command {
	return &cli.Command{
		Name:      "render",
		Usage:     "render a YAML form as HTML (or prompt for it in the terminal)",
		ArgsUsage: "<file|url|registry:name>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "renderer",
				Aliases: []string{"r"},
				Usage:   "vanilla or tui",
				Value:   vanilla.Name,
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "write to a file instead of stdout",
			},
			&cli.StringFlag{
				Name:  "action",
				Usage: "form action attribute",
			},
			&cli.StringFlag{
				Name:  "form-id",
				Usage: "form element id",
			},
			&cli.StringFlag{
				Name:  "format",
				Usage: "tui output: json, form or pretty",
				Value: string(tui.OutputFormatJSON),
			},
			presetFlag,
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if err := a.setup(cmd); err != nil {
				return err
			}
			src, err := sourceArg(cmd)
			if err != nil {
				return err
			}
			gen, err := a.orchestrator(cmd, tui.WithOutputFormat(tui.OutputFormat(cmd.String("format"))))
			if err != nil {
				return err
			}

			opts := a.renderOptions()
			opts.Action = cmd.String("action")
			opts.FormID = cmd.String("form-id")
			out, err := gen.Generate(a.context(ctx), orchestrator.Request{
				Source:        src,
				Renderer:      cmd.String("renderer"),
				RenderOptions: opts,
			})
			if err != nil {
				return err
			}

			if path := cmd.String("output"); path != "" {
				if err := os.WriteFile(path, out, 0o644); err != nil {
					return fmt.Errorf("write %s: %w", path, err)
				}
				a.printf("Form written to %s\n", path)
				return nil
			}
			a.printf("%s\n", out)
			return nil
		},
	}
}

type lintReport struct {
	Source string `json:"source"`
	validation.SchemaValidationResult
}

func (a *app) lintCommand() *cli.Command {
	return &cli.Command{
		Name:      "lint",
		Usage:     "check YAML forms for errors before they are stored or dispatched",
		ArgsUsage: "<source>...",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "print results as JSON",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if err := a.setup(cmd); err != nil {
				return err
			}
			if cmd.Args().Len() == 0 {
				return errors.New("lint: at least one source is required")
			}
			loader := formdispatch.NewLoader(
				schema.WithRegistry(a.registryClient()),
				schema.WithHTTPFallback(a.cfg.Client.Timeout.Duration),
			)

			reports := make([]lintReport, 0, cmd.Args().Len())
			for _, raw := range cmd.Args().Slice() {
				src, err := schema.ParseSource(raw)
				if err != nil {
					return err
				}
				doc, err := loader.Load(a.context(ctx), src)
				if err != nil {
					return err
				}
				reports = append(reports, lintReport{Source: raw, SchemaValidationResult: validation.ValidateText(doc.Text())})
			}

			failed := 0
			for _, report := range reports {
				if !report.Valid {
					failed++
				}
			}

			if cmd.Bool("json") {
				enc := json.NewEncoder(a.opts.Out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(reports); err != nil {
					return err
				}
			} else {
				a.printLint(reports)
			}
			if failed > 0 {
				return fmt.Errorf("lint: %d of %d document(s) have errors", failed, len(reports))
			}
			return nil
		},
	}
}

func (a *app) printLint(reports []lintReport) {
	ok := color.New(color.FgGreen, color.Bold)
	bad := color.New(color.FgRed, color.Bold)
	warn := color.New(color.FgYellow)
	faint := color.New(color.Faint)

	for _, report := range reports {
		if report.Valid {
			_, _ = ok.Fprint(a.opts.Out, "✓ ")
		} else {
			_, _ = bad.Fprint(a.opts.Out, "✗ ")
		}
		a.printf("%s\n", report.Source)

		for _, issue := range report.Issues {
			severity := bad
			if issue.Severity == validation.SeverityWarning {
				severity = warn
			}
			a.printf("  ")
			_, _ = severity.Fprintf(a.opts.Out, "%-7s", issue.Severity)
			if issue.Path != "" {
				_, _ = faint.Fprintf(a.opts.Out, " %s", issue.Path)
			}
			a.printf(" %s\n", issue.Message)
		}
	}
}
