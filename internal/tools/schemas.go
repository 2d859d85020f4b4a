package tools

// pathSchema is the shared JSON-schema fragment for tools that take a
// single file path argument.
func pathSchema() map[string]any {
	return map[string]any{
		"type":       "object",
		"properties": map[string]any{"path": map[string]any{"type": "string"}},
		"required":   []string{"path"},
	}
}

func (t *PDFReadTool) ParametersSchema() map[string]any  { return pathSchema() }
func (t *DOCXReadTool) ParametersSchema() map[string]any { return pathSchema() }
func (t *XLSXReadTool) ParametersSchema() map[string]any { return pathSchema() }

func (t *CSVAnalysisTool) ParametersSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"path":      map[string]any{"type": "string"},
			"operation": map[string]any{"type": "string"},
		},
		"required": []string{"path"},
	}
}

func (t *FetchTool) ParametersSchema() map[string]any {
	return map[string]any{
		"type":       "object",
		"properties": map[string]any{"url": map[string]any{"type": "string"}},
		"required":   []string{"url"},
	}
}

func (t *SearchTool) ParametersSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"query": map[string]any{"type": "string"},
			"count": map[string]any{"type": "integer"},
		},
		"required": []string{"query"},
	}
}
