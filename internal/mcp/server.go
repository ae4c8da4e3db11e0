package mcp

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/marianadeem755/Taxation-agent/internal/assist"
	"github.com/marianadeem755/Taxation-agent/internal/autofill"
	"github.com/marianadeem755/Taxation-agent/internal/config"
	"github.com/marianadeem755/Taxation-agent/internal/descriptions"
	"github.com/marianadeem755/Taxation-agent/internal/fetch"
	"github.com/marianadeem755/Taxation-agent/internal/history"
	"github.com/marianadeem755/Taxation-agent/internal/pdf"
	"github.com/marianadeem755/Taxation-agent/internal/search"
	"github.com/marianadeem755/Taxation-agent/internal/security"
	"github.com/marianadeem755/Taxation-agent/internal/userdata"
)

// Server represents the MCP server instance
type Server struct {
	config        *config.Config
	pdfService    *pdf.Service
	autofill      *autofill.Service
	parser        *userdata.Parser
	fetcher       *fetch.Client
	searcher      *search.Client
	assistant     *assist.Assistant
	history       *history.Store
	pathValidator *security.PathValidator
	mcpServer     *server.MCPServer
}

// Deps bundles the components the server exposes as tools
type Deps struct {
	PDFService *pdf.Service
	Autofill   *autofill.Service
	Parser     *userdata.Parser
	Fetcher    *fetch.Client
	Searcher   *search.Client
	Assistant  *assist.Assistant
	History    *history.Store
}

// NewServer creates a new MCP server instance
func NewServer(cfg *config.Config, deps Deps) (*Server, error) {
	if deps.PDFService == nil || deps.Autofill == nil || deps.Parser == nil {
		return nil, fmt.Errorf("pdf service, autofill service and parser are required")
	}

	pathValidator, err := security.NewPathValidator(cfg.FormsDirectory)
	if err != nil {
		return nil, fmt.Errorf("failed to create path validator: %w", err)
	}

	mcpServer := server.NewMCPServer(
		cfg.ServerName,
		cfg.Version,
		server.WithToolCapabilities(false), // tool set is static
	)

	s := &Server{
		config:        cfg,
		pdfService:    deps.PDFService,
		autofill:      deps.Autofill,
		parser:        deps.Parser,
		fetcher:       deps.Fetcher,
		searcher:      deps.Searcher,
		assistant:     deps.Assistant,
		history:       deps.History,
		pathValidator: pathValidator,
		mcpServer:     mcpServer,
	}

	s.registerTools()

	return s, nil
}

// registerTools registers all available MCP tools
func (s *Server) registerTools() {
	inspectTool := mcp.NewTool(
		"tax_form_inspect",
		mcp.WithDescription(descriptions.TaxFormInspectDescription),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Path to the form PDF"),
		),
	)
	s.mcpServer.AddTool(inspectTool, s.handleFormInspect)

	parseTool := mcp.NewTool(
		"tax_profile_parse",
		mcp.WithDescription(descriptions.TaxProfileParseDescription),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Path to the profile text file"),
		),
	)
	s.mcpServer.AddTool(parseTool, s.handleProfileParse)

	fillTool := mcp.NewTool(
		"tax_form_fill",
		mcp.WithDescription(descriptions.TaxFormFillDescription),
		mcp.WithString("form_path",
			mcp.Required(),
			mcp.Description("Path to the form PDF"),
		),
		mcp.WithString("profile_path",
			mcp.Required(),
			mcp.Description("Path to the profile text file"),
		),
		mcp.WithString("output_path",
			mcp.Required(),
			mcp.Description("Where to write the filled PDF"),
		),
	)
	s.mcpServer.AddTool(fillTool, s.handleFormFill)

	fetchTool := mcp.NewTool(
		"tax_form_fetch",
		mcp.WithDescription(descriptions.TaxFormFetchDescription),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("URL of the form PDF or its landing page"),
		),
		mcp.WithString("output_path",
			mcp.Required(),
			mcp.Description("Where to save the downloaded PDF"),
		),
	)
	s.mcpServer.AddTool(fetchTool, s.handleFormFetch)

	searchTool := mcp.NewTool(
		"tax_form_search",
		mcp.WithDescription(descriptions.TaxFormSearchDescription),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("What form to look for, e.g. 'income tax return individual'"),
		),
	)
	s.mcpServer.AddTool(searchTool, s.handleFormSearch)

	dirTool := mcp.NewTool(
		"tax_form_dir",
		mcp.WithDescription(descriptions.TaxFormDirDescription),
		mcp.WithString("query",
			mcp.Description("Optional filename filter"),
		),
	)
	s.mcpServer.AddTool(dirTool, s.handleFormDir)

	askTool := mcp.NewTool(
		"tax_agent_ask",
		mcp.WithDescription(descriptions.TaxAgentAskDescription),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("The user's question or request"),
		),
	)
	s.mcpServer.AddTool(askTool, s.handleAgentAsk)
}

// Handler functions

func (s *Server) handleFormInspect(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	pdfBytes, err := s.readValidated(path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.pdfService.Inspect(pdfBytes)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(s.formatInspectResult(path, result)), nil
}

func (s *Server) handleProfileParse(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := s.pathValidator.ValidatePath(path); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to read profile: %v", err)), nil
	}

	entries := s.parser.ParseEntries(string(content))
	if len(entries) == 0 {
		return mcp.NewToolResultText("No label/value pairs found in profile."), nil
	}

	var text strings.Builder
	fmt.Fprintf(&text, "Parsed %d entries from %s:\n\n", len(entries), path)
	for _, e := range entries {
		fmt.Fprintf(&text, "- %s: %s (%s)\n", e.Label, e.Value, e.Strategy)
	}
	return mcp.NewToolResultText(text.String()), nil
}

func (s *Server) handleFormFill(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	formPath, err := request.RequireString("form_path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	profilePath, err := request.RequireString("profile_path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	outputPath, err := request.RequireString("output_path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	formBytes, err := s.readValidated(formPath)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.pathValidator.ValidatePath(profilePath); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	profile, err := os.ReadFile(profilePath)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to read profile: %v", err)), nil
	}

	result, err := s.autofill.FillForm(ctx, autofill.Request{
		FormPDF: formBytes,
		Profile: string(profile),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	outputPath, err = s.pathValidator.NormalizePath(outputPath)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := os.WriteFile(outputPath, result.Output, 0o600); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to write filled form: %v", err)), nil
	}

	return mcp.NewToolResultText(s.formatFillResult(outputPath, result)), nil
}

func (s *Server) handleFormFetch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.fetcher == nil {
		return mcp.NewToolResultError("form fetching is not configured"), nil
	}

	url, err := request.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	outputPath, err := request.RequireString("output_path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	pdfBytes, err := s.fetcher.FetchPDF(ctx, url)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to fetch form: %v", err)), nil
	}
	if err := s.pdfService.ValidateBytes(pdfBytes); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("downloaded document is not usable: %v", err)), nil
	}

	outputPath, err = s.pathValidator.NormalizePath(outputPath)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := os.WriteFile(outputPath, pdfBytes, 0o600); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to save form: %v", err)), nil
	}

	if s.history != nil {
		s.history.Add(history.Entry{Query: url, FormURL: url})
	}

	return mcp.NewToolResultText(fmt.Sprintf(
		"Downloaded form (%d bytes) to %s", len(pdfBytes), outputPath)), nil
}

func (s *Server) handleFormSearch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.searcher == nil {
		return mcp.NewToolResultError("web search is not configured"), nil
	}

	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	results, err := s.searcher.Search(ctx, query)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}

	if s.history != nil {
		entry := history.Entry{Query: query}
		if len(results) > 0 {
			entry.FormURL = results[0].Link
		}
		s.history.Add(entry)
	}

	if len(results) == 0 {
		return mcp.NewToolResultText("No official forms found for that query."), nil
	}

	var text strings.Builder
	fmt.Fprintf(&text, "Found %d result(s):\n\n", len(results))
	for i, r := range results {
		fmt.Fprintf(&text, "%d. %s\n   %s\n", i+1, r.Title, r.Link)
		if r.Snippet != "" {
			fmt.Fprintf(&text, "   %s\n", r.Snippet)
		}
	}
	return mcp.NewToolResultText(text.String()), nil
}

func (s *Server) handleFormDir(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	query := ""
	if q, ok := args["query"].(string); ok {
		query = q
	}

	entries, err := s.pdfService.ListForms(s.config.FormsDirectory, query)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if len(entries) == 0 {
		text := fmt.Sprintf("No form PDFs found in %s", s.config.FormsDirectory)
		if query != "" {
			text += fmt.Sprintf(" (filter: %s)", query)
		}
		return mcp.NewToolResultText(text), nil
	}

	var text strings.Builder
	fmt.Fprintf(&text, "Found %d form(s) in %s:\n\n", len(entries), s.config.FormsDirectory)
	for i, e := range entries {
		fmt.Fprintf(&text, "%d. %s (%d bytes)\n   %s\n", i+1, e.Name, e.Size, e.Path)
	}
	return mcp.NewToolResultText(text.String()), nil
}

func (s *Server) handleAgentAsk(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.assistant == nil {
		return mcp.NewToolResultError("the assistant is not configured (missing API key)"), nil
	}

	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	mode := s.assistant.ClassifyQueryMode(ctx, query)
	if mode == assist.ModeFormRequest {
		types := s.assistant.RecommendFormTypes(ctx, query)
		var text strings.Builder
		text.WriteString("That sounds like a form request. Recommended form types:\n\n")
		for i, t := range types {
			fmt.Fprintf(&text, "%d. %s\n", i+1, t)
		}
		text.WriteString("\nUse tax_form_search to find the official PDF, then tax_form_fill to fill it.")
		return mcp.NewToolResultText(text.String()), nil
	}

	answer, err := s.assistant.Respond(ctx, query, "", nil)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to answer: %v", err)), nil
	}
	return mcp.NewToolResultText(answer), nil
}

// readValidated checks the path against the forms directory and the
// document against the size and format limits before returning its bytes.
func (s *Server) readValidated(path string) ([]byte, error) {
	if err := s.pathValidator.ValidatePath(path); err != nil {
		return nil, err
	}
	pdfBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := s.pdfService.ValidateBytes(pdfBytes); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return pdfBytes, nil
}

// Formatting methods

func (s *Server) formatInspectResult(path string, result *pdf.InspectResult) string {
	var text strings.Builder
	fmt.Fprintf(&text, "Form: %s\n", path)
	fmt.Fprintf(&text, "Pages: %d\n", result.Pages)
	if result.Interactive {
		text.WriteString("Type: interactive (AcroForm fields)\n")
	} else {
		text.WriteString("Type: flat (printed labels)\n")
	}
	fmt.Fprintf(&text, "Fillable slots: %d\n\n", len(result.Slots))

	for i, slot := range result.Slots {
		fmt.Fprintf(&text, "%d. %s", i+1, slot.Name)
		if slot.Widget != "" {
			fmt.Fprintf(&text, " [%s]", slot.Widget)
		}
		text.WriteString("\n")
	}
	return text.String()
}

func (s *Server) formatFillResult(outputPath string, result *autofill.Result) string {
	var text strings.Builder
	if result.Interactive {
		text.WriteString("Filled interactive form.\n")
	} else {
		text.WriteString("Stamped flat form.\n")
	}
	fmt.Fprintf(&text, "Output: %s\n", outputPath)
	fmt.Fprintf(&text, "Slots: %d, filled: %d, skipped: %d\n",
		len(result.Slots), len(result.Filled), len(result.Skipped))

	if len(result.Filled) > 0 {
		text.WriteString("\nFilled:\n")
		for _, name := range result.Filled {
			fmt.Fprintf(&text, "- %s = %s\n", name, result.Values[name])
		}
	}
	if len(result.Skipped) > 0 {
		text.WriteString("\nSkipped (no matching user data or location):\n")
		for _, name := range result.Skipped {
			fmt.Fprintf(&text, "- %s\n", name)
		}
	}
	return text.String()
}

// Run starts the MCP server in the configured mode
func (s *Server) Run(ctx context.Context) error {
	if s.config.IsServerMode() {
		return s.runServerMode(ctx)
	}
	return s.runStdioMode(ctx)
}

// runStdioMode runs the server in stdio mode
func (s *Server) runStdioMode(_ context.Context) error {
	if s.config.IsDebug() {
		log.Printf("Starting tax agent MCP server in stdio mode")
		log.Printf("Forms directory: %s", s.config.FormsDirectory)
	}

	if err := server.ServeStdio(s.mcpServer); err != nil {
		return fmt.Errorf("failed to serve stdio: %w", err)
	}
	return nil
}

// runServerMode runs the server in HTTP server mode
func (s *Server) runServerMode(ctx context.Context) error {
	// The stdio transport is the only one wired up so far
	log.Printf("Server mode not yet implemented with mark3labs/mcp-go")
	log.Printf("Falling back to stdio mode")
	return s.runStdioMode(ctx)
}
