// Package tui is the terminal surface: every field becomes a survey prompt,
// the answers are read back through the same collector the HTML form uses.
package tui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/mail"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-formdispatch/pkg/collect"
	"github.com/goliatone/go-formdispatch/pkg/model"
	"github.com/goliatone/go-formdispatch/pkg/render"
	"github.com/goliatone/go-formdispatch/pkg/schema"
)

// Name is the registry name of this renderer.
const Name = "tui"

// DatetimeLayout is the accepted answer format for datetime fields, the same
// shape a datetime-local input submits.
const DatetimeLayout = "2006-01-02T15:04"

// Renderer implements render.Renderer by prompting on a terminal.
type Renderer struct {
	driver            PromptDriver
	outputFormat      OutputFormat
	submitTransformer SubmitTransformer
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs a TUI renderer (survey driver, JSON output by default).
func New(options ...Option) *Renderer {
	r := &Renderer{outputFormat: OutputFormatJSON}
	for _, opt := range options {
		if opt != nil {
			opt(r)
		}
	}
	if r.driver == nil {
		r.driver = NewSurveyDriver()
	}
	return r
}

func (r *Renderer) Name() string {
	return Name
}

func (r *Renderer) ContentType() string {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return "application/x-www-form-urlencoded"
	case OutputFormatPrettyText:
		return "text/plain; charset=utf-8"
	default:
		return "application/json"
	}
}

// Render prompts for every field and serializes the collected values.
func (r *Renderer) Render(ctx context.Context, form *schema.FormSchema, opts render.RenderOptions) ([]byte, error) {
	values, err := r.Fill(ctx, form, opts)
	if err != nil {
		return nil, err
	}
	return r.serialize(form, values)
}

// Fill prompts for every field and returns the collected record. Values in
// opts pre-populate the prompts' defaults.
func (r *Renderer) Fill(ctx context.Context, form *schema.FormSchema, opts render.RenderOptions) (*model.FormValues, error) {
	if ctx == nil {
		return nil, errors.New("tui: context is required")
	}
	if form == nil {
		return nil, ErrNoSchema
	}
	if r.driver == nil {
		return nil, errors.New("tui: prompt driver is nil")
	}

	descriptor := opts.Apply(render.DescribeForm(form))
	if title := strings.TrimSpace(descriptor.Title); title != "" {
		if err := r.driver.Info(ctx, title); err != nil {
			return nil, err
		}
	}

	answers := url.Values{}
	for _, field := range descriptor.Fields {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := r.prompt(ctx, field, answers, opts); err != nil {
			return nil, fmt.Errorf("tui: field %q: %w", field.Name, err)
		}
	}

	values := collect.Collect(form, collect.FormSurface(answers))
	if r.submitTransformer != nil {
		var err error
		values, err = r.submitTransformer(values)
		if err != nil {
			return nil, fmt.Errorf("tui: submit transformer: %w", err)
		}
	}
	return values, nil
}

func (r *Renderer) prompt(ctx context.Context, field render.Descriptor, answers url.Values, opts render.RenderOptions) error {
	message := field.Label
	if field.Required {
		message += " *"
	}

	switch field.Control {
	case render.ControlInput:
		answer, err := r.driver.Input(ctx, InputConfig{
			Message:   message,
			Default:   field.Value,
			Help:      helpText(field),
			Validator: inputValidator(field),
		})
		if err != nil {
			return err
		}
		answers.Set(field.Name, answer)

	case render.ControlTextarea:
		answer, err := r.driver.TextArea(ctx, TextAreaConfig{
			Message:   message,
			Default:   field.Value,
			Help:      helpText(field),
			Validator: requiredValidator(field.Required),
		})
		if err != nil {
			return err
		}
		answers.Set(field.Name, answer)

	case render.ControlSelect:
		labels := make([]string, len(field.Choices))
		selected := 0
		for i, choice := range field.Choices {
			labels[i] = choice.Label
			if choice.Selected {
				selected = i
			}
		}
		idx, err := r.driver.Select(ctx, SelectConfig{
			Message:      message,
			Options:      labels,
			DefaultIndex: selected,
			Help:         helpText(field),
		})
		if err != nil {
			return err
		}
		if idx < 0 || idx >= len(field.Choices) {
			return fmt.Errorf("selection %d out of range", idx)
		}
		answers.Set(field.Name, field.Choices[idx].Value)

	case render.ControlCheckboxGroup:
		labels := make([]string, len(field.Choices))
		var defaults []int
		for i, choice := range field.Choices {
			labels[i] = choice.Label
			if choice.Selected {
				defaults = append(defaults, i)
			}
		}
		cfg := SelectConfig{
			Message:  message,
			Options:  labels,
			Defaults: defaults,
			Help:     helpText(field),
		}
		if field.Required {
			cfg.MinSelected = 1
		}
		picked, err := r.driver.MultiSelect(ctx, cfg)
		if err != nil {
			return err
		}
		for _, idx := range picked {
			if idx >= 0 && idx < len(field.Choices) {
				answers.Add(field.Name, field.Choices[idx].Value)
			}
		}

	case render.ControlUnsupported:
		return r.driver.Info(ctx, fmt.Sprintf("%s: %s (%s)", field.Label, opts.T("form.unsupported", "Unsupported field type"), field.RawType))
	}
	return nil
}

func helpText(field render.Descriptor) string {
	parts := make([]string, 0, 2)
	if p := strings.TrimSpace(field.Placeholder); p != "" {
		parts = append(parts, p)
	}
	if n := strings.TrimSpace(field.Note); n != "" {
		parts = append(parts, n)
	}
	return strings.Join(parts, " | ")
}

func requiredValidator(required bool) func(string) error {
	if !required {
		return nil
	}
	return func(answer string) error {
		if strings.TrimSpace(answer) == "" {
			return errors.New("this field is required")
		}
		return nil
	}
}

// inputValidator mirrors what a browser enforces for the matching input
// type: required, email syntax, numeric bounds and datetime-local format.
func inputValidator(field render.Descriptor) func(string) error {
	return func(answer string) error {
		answer = strings.TrimSpace(answer)
		if answer == "" {
			if field.Required {
				return errors.New("this field is required")
			}
			return nil
		}
		switch field.Field {
		case schema.KindEmail:
			if _, err := mail.ParseAddress(answer); err != nil {
				return errors.New("enter a valid email address")
			}
		case schema.KindNumber:
			n, err := strconv.ParseFloat(answer, 64)
			if err != nil {
				return errors.New("enter a number")
			}
			if lo, err := strconv.ParseFloat(field.Min, 64); err == nil && n < lo {
				return fmt.Errorf("must be at least %s", field.Min)
			}
			if hi, err := strconv.ParseFloat(field.Max, 64); err == nil && n > hi {
				return fmt.Errorf("must be at most %s", field.Max)
			}
		case schema.KindDatetime:
			if _, err := time.Parse(DatetimeLayout, answer); err != nil {
				return fmt.Errorf("use the format %s", DatetimeLayout)
			}
		}
		return nil
	}
}

func (r *Renderer) serialize(form *schema.FormSchema, values *model.FormValues) ([]byte, error) {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		out := url.Values{}
		values.Each(func(name string, value model.Value) {
			if value.IsMulti() {
				out[name] = value.Strings()
				return
			}
			out.Set(name, value.String())
		})
		return []byte(out.Encode()), nil
	case OutputFormatPrettyText:
		var b strings.Builder
		values.Each(func(name string, value model.Value) {
			label := name
			if field, ok := form.Field(name); ok && field.Label != "" {
				label = field.Label
			}
			fmt.Fprintf(&b, "%s: %s\n", label, value.String())
		})
		return []byte(b.String()), nil
	default:
		return json.Marshal(values)
	}
}
