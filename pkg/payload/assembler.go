// Package payload builds the repository_dispatch event sent for a submitted
// form. Assembly is pure apart from the clock-derived timestamp and request id.
package payload

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-formdispatch/pkg/model"
	"github.com/goliatone/go-formdispatch/pkg/schema"
)

const (
	DefaultWorkflow   = "workflow.yml"
	DefaultRepository = "unknown/unknown"
	DefaultTitle      = "Untitled Form"

	workflowSuffix  = ".yml"
	eventTypeSuffix = "_automation"
	requestIDPrefix = "req_"

	// TimestampLayout is ISO-8601 in UTC with millisecond precision.
	TimestampLayout = "2006-01-02T15:04:05.000Z07:00"
)

var eventTypeSeparators = regexp.MustCompile(`[-\s]`)

// FormConfig echoes form metadata into the payload.
type FormConfig struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// ClientPayload is the client_payload object of a dispatch event.
type ClientPayload struct {
	AutomationType   string            `json:"automation_type"`
	Timestamp        string            `json:"timestamp"`
	RequestID        string            `json:"request_id"`
	Workflow         string            `json:"workflow"`
	TargetRepository string            `json:"target_repository"`
	FormData         *model.FormValues `json:"form_data"`
	FormConfig       FormConfig        `json:"form_config"`
}

// DispatchPayload is the full repository_dispatch event.
type DispatchPayload struct {
	EventType     string        `json:"event_type"`
	ClientPayload ClientPayload `json:"client_payload"`
}

// Assembler turns a schema plus collected values into a DispatchPayload.
type Assembler struct {
	clock Clock
}

// NewAssembler returns an assembler reading time from clock. A nil clock
// falls back to the system clock.
func NewAssembler(clock Clock) *Assembler {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Assembler{clock: clock}
}

// Assemble builds the payload. Missing github metadata falls back to
// "workflow.yml" and "unknown/unknown"; dispatch guards reject the latter.
func (a *Assembler) Assemble(form *schema.FormSchema, values *model.FormValues) DispatchPayload {
	if form == nil {
		form = &schema.FormSchema{}
	}
	if values == nil {
		values = model.NewFormValues()
	}
	clock := Clock(SystemClock{})
	if a != nil && a.clock != nil {
		clock = a.clock
	}
	now := clock.Now().UTC()

	workflow := firstNonEmpty(form.GitHub.Workflow, DefaultWorkflow)
	repository := firstNonEmpty(form.GitHub.Repository, DefaultRepository)
	eventType := firstNonEmpty(form.GitHub.EventType, DeriveEventType(workflow))

	return DispatchPayload{
		EventType: eventType,
		ClientPayload: ClientPayload{
			AutomationType:   AutomationType(workflow),
			Timestamp:        now.Format(TimestampLayout),
			RequestID:        RequestID(now),
			Workflow:         workflow,
			TargetRepository: repository,
			FormData:         values,
			FormConfig: FormConfig{
				Title:       firstNonEmpty(form.Title, DefaultTitle),
				Description: form.Description,
			},
		},
	}
}

// AutomationType strips a trailing ".yml" from the workflow file name.
func AutomationType(workflow string) string {
	return strings.TrimSuffix(workflow, workflowSuffix)
}

// DeriveEventType builds "<workflow stem>_automation" with whitespace and
// hyphens replaced by underscores.
func DeriveEventType(workflow string) string {
	return eventTypeSeparators.ReplaceAllString(AutomationType(workflow), "_") + eventTypeSuffix
}

// RequestID formats the per-assembly identifier from wall-clock millis.
func RequestID(at time.Time) string {
	return requestIDPrefix + strconv.FormatInt(at.UnixMilli(), 10)
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}
