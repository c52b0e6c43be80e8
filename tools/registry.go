package tools

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/saahil/toolcalling/pkg/llms"
	"github.com/saahil/toolcalling/pkg/llmutils"
)

// Registry is an ordered collection of tools exposed to the agent.
// Tool names are unique within a registry, case-insensitive.
type Registry struct {
	byName map[string]ITool
	names  []string
	list   []ITool
}

// NewRegistry creates a Registry with the given tools.
// It fails on the first duplicate name.
func NewRegistry(list ...ITool) (*Registry, error) {
	r := &Registry{
		byName: make(map[string]ITool),
	}
	if err := r.Register(list...); err != nil {
		return nil, err
	}
	return r, nil
}

// Register adds tools to the registry, preserving registration order.
// A name collision fails the whole call rather than silently overwriting.
func (r *Registry) Register(list ...ITool) error {
	for _, tool := range list {
		name := tool.Name()
		key := strings.ToLower(name)
		if _, ok := r.byName[key]; ok {
			return errors.WithMessagef(ErrDuplicateToolName, "tool %q is already registered", name)
		}
		r.byName[key] = tool
		r.names = append(r.names, name)
		r.list = append(r.list, tool)
	}
	return nil
}

// Lookup returns the tool registered under name, case-insensitive.
func (r *Registry) Lookup(name string) (ITool, bool) {
	tool, ok := r.byName[strings.ToLower(name)]
	return tool, ok
}

// Tools returns the registered tools in registration order.
func (r *Registry) Tools() []ITool {
	return r.list
}

// Names returns the registered tool names in registration order.
func (r *Registry) Names() []string {
	return r.names
}

// Definitions returns the function definitions for an LLM call.
func (r *Registry) Definitions() []llms.Tool {
	defs := make([]llms.Tool, 0, len(r.list))
	for _, tool := range r.list {
		defs = append(defs, llms.Tool{
			Type: "function",
			Function: &llms.FunctionDefinition{
				Name:        tool.Name(),
				Description: tool.Description(),
				Parameters:  tool.Parameters(),
			},
		})
	}
	return defs
}

type toolDescription struct {
	Name        string `json:"Name" yaml:"Name"`
	Description string `json:"Description" yaml:"Description"`
}

type toolsDescription struct {
	Tools []toolDescription `json:"Tools" yaml:"Tools"`
}

// Descriptions returns a prompt-ready listing of the registered tools.
func (r *Registry) Descriptions() string {
	var d toolsDescription
	for _, tool := range r.list {
		d.Tools = append(d.Tools, toolDescription{
			Name:        tool.Name(),
			Description: tool.Description(),
		})
	}
	return llmutils.BackticksJSON(llmutils.ToJSONIndent(d))
}

// GetDescriptions returns a prompt-ready listing of the provided tools.
func GetDescriptions(list ...ITool) string {
	var d toolsDescription
	for _, tool := range list {
		d.Tools = append(d.Tools, toolDescription{
			Name:        tool.Name(),
			Description: tool.Description(),
		})
	}
	return llmutils.BackticksJSON(llmutils.ToJSONIndent(d))
}
