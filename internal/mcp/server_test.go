package mcp

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/marianadeem755/Taxation-agent/internal/autofill"
	"github.com/marianadeem755/Taxation-agent/internal/config"
	"github.com/marianadeem755/Taxation-agent/internal/mapper"
	"github.com/marianadeem755/Taxation-agent/internal/pdf"
	"github.com/marianadeem755/Taxation-agent/internal/userdata"
)

func testConfig(dir string) *config.Config {
	return &config.Config{
		Mode:           "stdio",
		Host:           "127.0.0.1",
		Port:           8080,
		FormsDirectory: dir,
		Version:        "1.0.0",
		ServerName:     "test-server",
		LogLevel:       "info",
		MaxFileSize:    1024 * 1024,
	}
}

func testDeps() Deps {
	pdfService := pdf.NewService(1024*1024, nil, false)
	parser := userdata.NewParser(false)
	return Deps{
		PDFService: pdfService,
		Autofill:   autofill.NewService(pdfService, parser, mapper.NewLLMProposer(nil, false)),
		Parser:     parser,
	}
}

func TestNewServer(t *testing.T) {
	tempDir := t.TempDir()
	deps := testDeps()

	tests := []struct {
		name        string
		config      *config.Config
		deps        Deps
		expectError bool
	}{
		{
			name:        "valid stdio mode config",
			config:      testConfig(tempDir),
			deps:        deps,
			expectError: false,
		},
		{
			name: "valid server mode config",
			config: func() *config.Config {
				cfg := testConfig(tempDir)
				cfg.Mode = "server"
				return cfg
			}(),
			deps:        deps,
			expectError: false,
		},
		{
			name:        "missing required services",
			config:      testConfig(tempDir),
			deps:        Deps{Parser: deps.Parser},
			expectError: true,
		},
		{
			name: "empty forms directory",
			config: func() *config.Config {
				cfg := testConfig(tempDir)
				cfg.FormsDirectory = ""
				return cfg
			}(),
			deps:        deps,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, err := NewServer(tt.config, tt.deps)

			if tt.expectError && err == nil {
				t.Errorf("expected error but got none")
			}
			if !tt.expectError && err != nil {
				t.Errorf("unexpected error: %v", err)
			}

			if !tt.expectError {
				if server == nil {
					t.Fatal("server should not be nil")
				}
				if server.config != tt.config {
					t.Error("server config not set correctly")
				}
				if server.pdfService != tt.deps.PDFService {
					t.Error("server pdfService not set correctly")
				}
				if server.mcpServer == nil {
					t.Error("mcpServer should be initialized")
				}
			}
		})
	}
}

func TestServer_HandleProfileParse(t *testing.T) {
	tempDir := t.TempDir()

	profilePath := filepath.Join(tempDir, "profile.txt")
	profile := "Name: Ayesha Khan\nNTN: 1234567-8\nAddress....House 12, Street 4\n"
	if err := os.WriteFile(profilePath, []byte(profile), 0o600); err != nil {
		t.Fatalf("failed to write profile: %v", err)
	}

	server, err := NewServer(testConfig(tempDir), testDeps())
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}

	request := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: map[string]interface{}{
				"path": profilePath,
			},
		},
	}

	result, err := server.handleProfileParse(context.Background(), request)
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}

	text := extractTextFromResult(result)
	if !strings.Contains(text, "Parsed 3 entries") {
		t.Errorf("expected entry count in result, got: %s", text)
	}
	if !strings.Contains(text, "Name: Ayesha Khan (colon)") {
		t.Errorf("expected colon entry in result, got: %s", text)
	}
	if !strings.Contains(text, "Address: House 12, Street 4 (dotted-leader)") {
		t.Errorf("expected dotted-leader entry in result, got: %s", text)
	}
}

func TestServer_HandleProfileParseOutsideDirectory(t *testing.T) {
	server, err := NewServer(testConfig(t.TempDir()), testDeps())
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}

	request := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: map[string]interface{}{
				"path": "/etc/passwd",
			},
		},
	}

	result, err := server.handleProfileParse(context.Background(), request)
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if !result.IsError {
		t.Error("expected error result for path outside forms directory")
	}
}

func TestServer_HandleFormDir(t *testing.T) {
	tempDir := t.TempDir()

	write := func(name string) {
		path := filepath.Join(tempDir, name)
		if err := os.WriteFile(path, []byte("%PDF-1.4 test"), 0o600); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}
	write("income_tax_return.pdf")
	write("sales_tax.pdf")

	server, err := NewServer(testConfig(tempDir), testDeps())
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}

	t.Run("lists all forms", func(t *testing.T) {
		request := mcp.CallToolRequest{
			Params: mcp.CallToolParams{
				Arguments: map[string]interface{}{},
			},
		}

		result, err := server.handleFormDir(context.Background(), request)
		if err != nil {
			t.Fatalf("handler returned error: %v", err)
		}

		text := extractTextFromResult(result)
		if !strings.Contains(text, "Found 2 form(s)") {
			t.Errorf("expected form count in result, got: %s", text)
		}
		if !strings.Contains(text, "income_tax_return.pdf") {
			t.Errorf("expected filename in result, got: %s", text)
		}
	})

	t.Run("filters by query", func(t *testing.T) {
		request := mcp.CallToolRequest{
			Params: mcp.CallToolParams{
				Arguments: map[string]interface{}{
					"query": "income",
				},
			},
		}

		result, err := server.handleFormDir(context.Background(), request)
		if err != nil {
			t.Fatalf("handler returned error: %v", err)
		}

		text := extractTextFromResult(result)
		if !strings.Contains(text, "Found 1 form(s)") {
			t.Errorf("expected single match, got: %s", text)
		}
		if strings.Contains(text, "sales_tax.pdf") {
			t.Errorf("filtered result should not contain sales_tax.pdf, got: %s", text)
		}
	})
}

func TestServer_UnconfiguredOptionalTools(t *testing.T) {
	server, err := NewServer(testConfig(t.TempDir()), testDeps())
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}

	request := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: map[string]interface{}{
				"url":         "https://fbr.gov.pk/it2.pdf",
				"output_path": "form.pdf",
				"query":       "income tax",
			},
		},
	}

	handlers := []struct {
		name    string
		handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)
		want    string
	}{
		{"FormFetch", server.handleFormFetch, "not configured"},
		{"FormSearch", server.handleFormSearch, "not configured"},
		{"AgentAsk", server.handleAgentAsk, "not configured"},
	}

	for _, h := range handlers {
		t.Run(h.name, func(t *testing.T) {
			result, err := h.handler(context.Background(), request)
			if err != nil {
				t.Fatalf("handler should not return error, got: %v", err)
			}
			if !result.IsError {
				t.Error("expected error result for unconfigured tool")
			}
			if text := extractTextFromResult(result); !strings.Contains(text, h.want) {
				t.Errorf("expected %q in result, got: %s", h.want, text)
			}
		})
	}
}

func TestServer_InvalidArguments(t *testing.T) {
	server, err := NewServer(testConfig(t.TempDir()), testDeps())
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}

	emptyRequest := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: map[string]interface{}{},
		},
	}

	handlers := []struct {
		name    string
		handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)
	}{
		{"FormInspect", server.handleFormInspect},
		{"ProfileParse", server.handleProfileParse},
		{"FormFill", server.handleFormFill},
	}

	for _, h := range handlers {
		t.Run(h.name, func(t *testing.T) {
			result, err := h.handler(context.Background(), emptyRequest)
			if err != nil {
				t.Errorf("handler should not return error, got: %v", err)
			}
			if result == nil {
				t.Fatal("result should not be nil")
			}
			if !result.IsError {
				t.Error("expected error result for missing arguments")
			}
		})
	}
}

func TestFormatMethods(t *testing.T) {
	server, err := NewServer(testConfig(t.TempDir()), testDeps())
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}

	inspectResult := &pdf.InspectResult{
		Interactive: true,
		Pages:       2,
		Slots: []pdf.FormSlot{
			{Name: "Full Name", Kind: pdf.SlotKindAcroField, Widget: pdf.WidgetText},
			{Name: "Resident", Kind: pdf.SlotKindAcroField, Widget: pdf.WidgetCheckbox},
		},
	}

	formatted := server.formatInspectResult("/tmp/return.pdf", inspectResult)
	if !strings.Contains(formatted, "Pages: 2") {
		t.Error("formatted result should contain page count")
	}
	if !strings.Contains(formatted, "interactive") {
		t.Error("formatted result should report the form type")
	}
	if !strings.Contains(formatted, "Full Name [text]") {
		t.Error("formatted result should list slots with widget kinds")
	}

	fillResult := &autofill.Result{
		Interactive: false,
		Slots: []pdf.FormSlot{
			{Name: "Full Name", Kind: pdf.SlotKindFlatLabel},
			{Name: "Address", Kind: pdf.SlotKindFlatLabel},
		},
		Values:  map[string]string{"Full Name": "Ayesha Khan"},
		Filled:  []string{"Full Name"},
		Skipped: []string{"Address"},
	}

	formatted = server.formatFillResult("/tmp/filled.pdf", fillResult)
	if !strings.Contains(formatted, "Stamped flat form") {
		t.Error("formatted result should report the fill mode")
	}
	if !strings.Contains(formatted, "Full Name = Ayesha Khan") {
		t.Error("formatted result should list filled values")
	}
	if !strings.Contains(formatted, "Skipped") || !strings.Contains(formatted, "Address") {
		t.Error("formatted result should list skipped slots")
	}
}

// Helper function to extract text from a CallToolResult
func extractTextFromResult(result *mcp.CallToolResult) string {
	if result == nil || len(result.Content) == 0 {
		return ""
	}

	for _, content := range result.Content {
		if textContent, ok := content.(mcp.TextContent); ok {
			return textContent.Text
		}
		if textContentPtr, ok := content.(*mcp.TextContent); ok {
			return textContentPtr.Text
		}
	}

	return ""
}
