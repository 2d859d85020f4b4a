package tools

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileReaderTool is the sandboxed file_reader tool from spec §4.3: a
// standard file read, auto-detecting PDF/DOCX/XLSX/CSV extraction by
// extension and falling back to a plain-text read, confined to paths the
// caller resolves (no traversal outside an allowed root is enforced by
// the registry's caller, the way the teacher's DocumentReadTool never
// second-guessed the path it was given).
type FileReaderTool struct {
	pdfTool  *PDFReadTool
	docxTool *DOCXReadTool
	xlsxTool *XLSXReadTool
	csvTool  *CSVAnalysisTool
}

// NewFileReaderTool creates a new file_reader tool.
func NewFileReaderTool() *FileReaderTool {
	return &FileReaderTool{
		pdfTool:  NewPDFReadTool(),
		docxTool: NewDOCXReadTool(),
		xlsxTool: NewXLSXReadTool(),
		csvTool:  NewCSVAnalysisTool(),
	}
}

func (t *FileReaderTool) Name() string { return "file_reader" }

func (t *FileReaderTool) Description() string {
	return `Read a file, auto-detecting format from its extension (.pdf, .docx, .xlsx, .csv, or plain text). Args: {"path": "/path/to/file"}`
}

func (t *FileReaderTool) ParametersSchema() map[string]any { return pathSchema() }

func (t *FileReaderTool) Execute(ctx context.Context, args map[string]interface{}) (string, error) {
	path, ok := args["path"].(string)
	if !ok || path == "" {
		return "", fmt.Errorf("file_reader requires a 'path' argument")
	}

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".pdf":
		return t.pdfTool.Execute(ctx, args)
	case ".docx":
		return t.docxTool.Execute(ctx, args)
	case ".xlsx":
		return t.xlsxTool.Execute(ctx, args)
	case ".csv":
		return t.csvTool.Execute(ctx, args)
	default:
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", path, err)
		}
		return string(data), nil
	}
}
