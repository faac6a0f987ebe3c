// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes flashcard tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/halloran/medkit/internal/cardservice"
)

// Server wraps the MCP server with flashcard tools.
type Server struct {
	mcp *server.MCPServer
	svc *cardservice.Service
}

// New creates a new MCP server with all flashcard tools registered.
func New(svc *cardservice.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Medkit",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("search_cards",
		mcp.WithDescription("Full-text search through flashcard questions and answers."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchCards)

	s.mcp.AddTool(mcp.NewTool("get_card",
		mcp.WithDescription("Read one flashcard by id, including its tags and chapter."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Card id")),
	), s.getCard)

	s.mcp.AddTool(mcp.NewTool("list_chapters",
		mcp.WithDescription("List chapters with their card counts and titles."),
	), s.listChapters)

	s.mcp.AddTool(mcp.NewTool("build_session",
		mcp.WithDescription("Draw a study session of cards. Cards can be filtered by "+
			"chapter and difficulty and optionally shuffled. Card content follows the "+
			"format described by the medkit://card-format resource."),
		mcp.WithNumber("count", mcp.Description("Number of cards to draw (default 20)")),
		mcp.WithNumber("chapter", mcp.Description("Restrict to one chapter number")),
		mcp.WithString("difficulty", mcp.Description("Restrict to one difficulty: Basic, Intermediate, or Advanced")),
	), s.buildSession)

	// Resource: card format contract.
	s.mcp.AddResource(
		mcp.NewResource("medkit://card-format", "Card Format Contract",
			mcp.WithResourceDescription("Canonical flashcard record format used by the content store."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readCardFormatResource,
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

func (s *Server) searchCards(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.svc.Search(ctx, query, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(results, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getCard(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	card, err := s.svc.GetCard(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", id)), nil
	}
	out, _ := json.MarshalIndent(card, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listChapters(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	chapters, err := s.svc.Chapters(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var lines []string
	for _, ch := range chapters {
		title := ""
		if len(ch.Titles) > 0 {
			title = ch.Titles[0]
		}
		lines = append(lines, fmt.Sprintf("chapter %d: %s (%d cards)", ch.Number, title, ch.Cards))
	}
	if len(lines) == 0 {
		return mcp.NewToolResultText("no chapters indexed"), nil
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Server) buildSession(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	opts := cardservice.SessionOptions{Shuffle: true}
	if count, err := req.RequireInt("count"); err == nil && count > 0 {
		opts.Count = count
	}
	if chapter, err := req.RequireInt("chapter"); err == nil && chapter > 0 {
		opts.Chapters = []int{chapter}
	}
	if difficulty, err := req.RequireString("difficulty"); err == nil && difficulty != "" {
		opts.Difficulties = []string{difficulty}
	}

	cards, err := s.svc.BuildSession(ctx, opts)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(cards, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readCardFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "medkit://card-format",
			MIMEType: "text/markdown",
			Text:     CardFormatContract,
		},
	}, nil
}
