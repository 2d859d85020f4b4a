package tools

import (
	"context"
	"strings"
	"testing"
)

func TestFileReaderTool_Name(t *testing.T) {
	tool := NewFileReaderTool()
	if tool.Name() != "file_reader" {
		t.Errorf("expected name 'file_reader', got '%s'", tool.Name())
	}
}

func TestFileReaderTool_Description(t *testing.T) {
	tool := NewFileReaderTool()
	if tool.Description() == "" {
		t.Error("description should not be empty")
	}
}

func TestFileReaderTool_Execute_MissingPath(t *testing.T) {
	tool := NewFileReaderTool()
	_, err := tool.Execute(context.Background(), map[string]interface{}{})
	if err == nil {
		t.Error("expected error for missing path")
	}
}

func TestFileReaderTool_Execute_PlainTextFallback(t *testing.T) {
	tool := NewFileReaderTool()
	_, err := tool.Execute(context.Background(), map[string]interface{}{
		"path": "/nonexistent/file.txt",
	})
	if err == nil {
		t.Error("expected error reading a nonexistent plain-text file")
	}
}

func TestFileReaderTool_Execute_DetectsPDF(t *testing.T) {
	tool := NewFileReaderTool()
	_, err := tool.Execute(context.Background(), map[string]interface{}{
		"path": "/nonexistent/file.pdf",
	})
	if err == nil {
		t.Error("expected error")
	}
	if !strings.Contains(err.Error(), "file not found") {
		t.Errorf("expected 'file not found' error (proving PDF routing), got: %v", err)
	}
}

func TestFileReaderTool_Execute_DetectsDOCX(t *testing.T) {
	tool := NewFileReaderTool()
	_, err := tool.Execute(context.Background(), map[string]interface{}{
		"path": "/nonexistent/file.docx",
	})
	if err == nil {
		t.Error("expected error")
	}
	if !strings.Contains(err.Error(), "file not found") {
		t.Errorf("expected 'file not found' error (proving DOCX routing), got: %v", err)
	}
}

func TestFileReaderTool_Execute_DetectsXLSX(t *testing.T) {
	tool := NewFileReaderTool()
	_, err := tool.Execute(context.Background(), map[string]interface{}{
		"path": "/nonexistent/file.xlsx",
	})
	if err == nil {
		t.Error("expected error")
	}
	if !strings.Contains(err.Error(), "file not found") {
		t.Errorf("expected 'file not found' error (proving XLSX routing), got: %v", err)
	}
}

func TestFileReaderTool_Execute_CaseInsensitiveExtension(t *testing.T) {
	tool := NewFileReaderTool()

	_, err := tool.Execute(context.Background(), map[string]interface{}{"path": "/nonexistent/file.PDF"})
	if err == nil || !strings.Contains(err.Error(), "file not found") {
		t.Error("expected PDF tool to handle .PDF extension")
	}

	_, err = tool.Execute(context.Background(), map[string]interface{}{"path": "/nonexistent/file.DocX"})
	if err == nil || !strings.Contains(err.Error(), "file not found") {
		t.Error("expected DOCX tool to handle .DocX extension")
	}

	_, err = tool.Execute(context.Background(), map[string]interface{}{"path": "/nonexistent/file.XLSX"})
	if err == nil || !strings.Contains(err.Error(), "file not found") {
		t.Error("expected XLSX tool to handle .XLSX extension")
	}
}
