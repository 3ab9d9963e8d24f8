// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the decision log to LLM clients via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/decisionlog/internal/docservice"
)

const formatURI = "decisionlog://document-format"

// Server wraps the MCP server with decision log tools.
type Server struct {
	mcp *server.MCPServer
	svc *docservice.Service
}

// New creates a new MCP server with all tools registered.
func New(svc *docservice.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"decisionlog",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_documents",
		mcp.WithDescription("List indexed ADRs and ideas with number, title, status, date and relations."),
		mcp.WithString("kind", mcp.Description("Optional kind filter: adr or idea (empty for both)")),
	), s.listDocuments)

	s.mcp.AddTool(mcp.NewTool("read_document",
		mcp.WithDescription("Read one document: metadata, raw Markdown and the numbers of documents referencing it."),
		mcp.WithString("kind", mcp.Required(), mcp.Description("adr or idea")),
		mcp.WithString("number", mcp.Required(), mcp.Description("Document number, leading zeros optional (e.g. 7 or 0007)")),
	), s.readDocument)

	s.mcp.AddTool(mcp.NewTool("search_documents",
		mcp.WithDescription("Full-text search over document titles and statuses."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of results (default 20)")),
	), s.searchDocuments)

	s.mcp.AddTool(mcp.NewTool("regenerate",
		mcp.WithDescription("Rebuild the README tables, CHANGELOG.md and RELATIONS.md from the current documents."),
	), s.regenerate)

	s.mcp.AddTool(mcp.NewTool("get_document_format",
		mcp.WithDescription("Returns the Markdown layout of ADRs and ideas. "+
			"Call this before drafting a new document."),
	), s.getDocumentFormat)

	s.mcp.AddResource(
		mcp.NewResource(formatURI, "Document Format",
			mcp.WithResourceDescription("Markdown layout recognised for ADRs and ideas."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listDocuments(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	kind := ""
	if k, err := req.RequireString("kind"); err == nil {
		kind = k
	}
	docs, err := s.svc.ListDocuments(ctx, kind)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(docs)
}

func (s *Server) readDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	kind, err := req.RequireString("kind")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	number, err := req.RequireString("number")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	doc, err := s.svc.GetDocument(ctx, kind, number)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("%s %s: %v", kind, number, err)), nil
	}
	return jsonResult(doc)
}

func (s *Server) searchDocuments(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	limit := 20
	if n, err := req.RequireInt("limit"); err == nil && n > 0 {
		limit = n
	}
	results, err := s.svc.Search(ctx, query, limit)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(results)
}

func (s *Server) regenerate(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	report, err := s.svc.Regenerate(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(report)
}

func (s *Server) getDocumentFormat(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(DocumentFormat), nil
}

func (s *Server) readFormatResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      formatURI,
			MIMEType: "text/markdown",
			Text:     DocumentFormat,
		},
	}, nil
}
