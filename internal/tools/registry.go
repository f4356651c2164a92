// Package tools holds the tool registry: a fixed, named collection of callable
// operations with declared JSON schemas, built once at startup and immutable
// afterwards.
package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

// ErrNotFound is returned by Resolve for unknown tool names.
var ErrNotFound = errors.New("tool not found")

// RunFunc executes a tool against its named arguments and returns a
// human-readable result string or an error describing the failure.
type RunFunc func(ctx context.Context, args map[string]any) (string, error)

// Spec describes one registered tool.
type Spec struct {
	Name        string
	Description string
	// Parameters is a JSON schema object describing the argument mapping.
	Parameters json.RawMessage
	Run        RunFunc
}

// Registry maps tool names to specs. Construction fails fast on duplicate or
// empty names; there is no registration after construction.
type Registry struct {
	specs map[string]Spec
	order []string
}

// NewRegistry builds a registry from a fixed list of specs.
func NewRegistry(specs ...Spec) (*Registry, error) {
	r := &Registry{specs: make(map[string]Spec, len(specs))}
	for _, s := range specs {
		if s.Name == "" {
			return nil, errors.New("tool name is empty")
		}
		if s.Run == nil {
			return nil, fmt.Errorf("tool %s has no run function", s.Name)
		}
		if _, exists := r.specs[s.Name]; exists {
			return nil, fmt.Errorf("tool %s already registered", s.Name)
		}
		r.specs[s.Name] = s
		r.order = append(r.order, s.Name)
	}
	return r, nil
}

// Resolve fetches a spec by name.
func (r *Registry) Resolve(name string) (Spec, error) {
	s, ok := r.specs[name]
	if !ok {
		return Spec{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return s, nil
}

// List returns all specs in registration order.
func (r *Registry) List() []Spec {
	out := make([]Spec, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.specs[name])
	}
	return out
}

// OpenAITools projects the registry into the schema list sent to the model.
func (r *Registry) OpenAITools() []openai.Tool {
	out := make([]openai.Tool, 0, len(r.order))
	for _, name := range r.order {
		s := r.specs[name]
		params := s.Parameters
		if len(params) == 0 {
			params = json.RawMessage(`{"type":"object","properties":{}}`)
		}
		out = append(out, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        s.Name,
				Description: s.Description,
				Parameters:  params,
			},
		})
	}
	return out
}
