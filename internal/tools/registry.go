package tools

import (
	"context"
	"fmt"
)

// Tool defines the interface for research tools. Execute is asynchronous
// (it takes a context) and must honor ctx.Done() at its suspension
// points, per spec §4.3.
type Tool interface {
	Name() string
	Description() string
	// ParametersSchema is a JSON-schema fragment describing Execute's
	// expected args map; tools with a fixed, simple arg set may return nil.
	ParametersSchema() map[string]any
	Execute(ctx context.Context, args map[string]interface{}) (string, error)
}

// ToolExecutor is the interface for tool execution (allows mocking in tests)
type ToolExecutor interface {
	Execute(ctx context.Context, name string, args map[string]interface{}) (string, error)
	ToolNames() []string
}

// Registry manages available tools
type Registry struct {
	tools map[string]Tool
}

// Config bundles the construction parameters for the built-in tool set so
// NewRegistry doesn't grow an ever-longer parameter list as tools are
// added.
type Config struct {
	WebSearchProvider WebSearchProvider
	TavilyAPIKey      string
	LinkUpAPIKey      string
	SearXNGBaseURL    string
	CacheExpiration   int // days, web_cache_expiration_days / arxiv cache
	Events            EventSink
	DocumentSearch    Tool // wraps internal/vectorstore; optional
}

// NewRegistry creates a new tool registry with all built-in tools.
func NewRegistry(cfg Config) *Registry {
	r := &Registry{tools: make(map[string]Tool)}

	r.Register(NewSearchTool(cfg.WebSearchProvider, cfg.TavilyAPIKey, cfg.LinkUpAPIKey, cfg.SearXNGBaseURL, cfg.Events))
	r.Register(NewFetchTool())
	r.Register(NewArxivTool(cfg.CacheExpiration))
	r.Register(NewCalculatorTool())
	r.Register(NewFileReaderTool())
	r.Register(NewPythonTool())
	if cfg.DocumentSearch != nil {
		r.Register(cfg.DocumentSearch)
	}

	return r
}

// Register adds a tool to the registry
func (r *Registry) Register(tool Tool) {
	r.tools[tool.Name()] = tool
}

// Get returns a tool by name
func (r *Registry) Get(name string) (Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// Execute runs a tool by name
func (r *Registry) Execute(ctx context.Context, name string, args map[string]interface{}) (string, error) {
	tool, ok := r.tools[name]
	if !ok {
		return "", fmt.Errorf("unknown tool: %s", name)
	}
	return tool.Execute(ctx, args)
}

// List returns all available tool names and descriptions
func (r *Registry) List() map[string]string {
	result := make(map[string]string)
	for name, tool := range r.tools {
		result[name] = tool.Description()
	}
	return result
}

// ToolNames returns just the tool names
func (r *Registry) ToolNames() []string {
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	return names
}
