package components

import (
	"bytes"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/goliatone/go-formdispatch/pkg/render"
	rendertemplate "github.com/goliatone/go-formdispatch/pkg/render/template"
)

// Renderer writes the control markup for one field descriptor into buf.
// Label, note and error chrome are written by the caller.
type Renderer func(buf *bytes.Buffer, field render.Descriptor, data ComponentData) error

// ComponentData carries helpers for component renderers.
type ComponentData struct {
	Template rendertemplate.TemplateRenderer
	// T translates renderer-owned strings.
	T func(key, fallback string) string
}

// Translate resolves key through T, or returns fallback when T is unset.
func (d ComponentData) Translate(key, fallback string) string {
	if d.T == nil {
		return fallback
	}
	return d.T(key, fallback)
}

// Script is a page script a component depends on. Src and Inline are
// exclusive; Src wins when both are set.
type Script struct {
	Src    string
	Inline string
	Defer  bool
}

// Component is the markup writer for one control kind plus the assets the
// page must include when it is used.
type Component struct {
	Render      Renderer
	Stylesheets []string
	Scripts     []Script
}

// Registry maps control kinds to components. Registering a kind again
// replaces it, which is how callers restyle a control.
type Registry struct {
	mu     sync.RWMutex
	byKind map[render.ControlKind]Component
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{byKind: map[render.ControlKind]Component{}}
}

// Register installs component for control.
func (r *Registry) Register(control render.ControlKind, component Component) error {
	if control == "" {
		return fmt.Errorf("components: control kind is required")
	}
	if component.Render == nil {
		return fmt.Errorf("components: %s has no renderer", control)
	}

	r.mu.Lock()
	r.byKind[control] = component.clone()
	r.mu.Unlock()
	return nil
}

// MustRegister panics when Register fails.
func (r *Registry) MustRegister(control render.ControlKind, component Component) {
	if err := r.Register(control, component); err != nil {
		panic(err)
	}
}

// Lookup returns the component for control.
func (r *Registry) Lookup(control render.ControlKind) (Component, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	component, ok := r.byKind[control]
	if !ok {
		return Component{}, false
	}
	return component.clone(), true
}

// Controls lists the registered control kinds in sorted order.
func (r *Registry) Controls() []render.ControlKind {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.byKind))
}

// Clone copies the registry so a renderer can override components without
// touching the shared default.
func (r *Registry) Clone() *Registry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := New()
	for control, component := range r.byKind {
		out.byKind[control] = component.clone()
	}
	return out
}

// Assets collects the stylesheets and scripts of the given controls, each
// once, in first-seen order.
func (r *Registry) Assets(controls []render.ControlKind) ([]string, []Script) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var stylesheets []string
	var scripts []Script
	seen := map[string]bool{}
	for _, control := range controls {
		component, ok := r.byKind[control]
		if !ok {
			continue
		}
		for _, href := range component.Stylesheets {
			if href == "" || seen["css:"+href] {
				continue
			}
			seen["css:"+href] = true
			stylesheets = append(stylesheets, href)
		}
		for _, script := range component.Scripts {
			key := "js:" + script.Src
			if script.Src == "" {
				key = "inline:" + script.Inline
			}
			if seen[key] {
				continue
			}
			seen[key] = true
			scripts = append(scripts, script)
		}
	}
	return stylesheets, scripts
}

func (c Component) clone() Component {
	c.Stylesheets = slices.Clone(c.Stylesheets)
	c.Scripts = slices.Clone(c.Scripts)
	return c
}
