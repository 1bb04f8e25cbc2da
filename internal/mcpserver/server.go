// Package mcpserver provides an MCP (Model Context Protocol) server that
// exposes the recipe catalog tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/ladle/internal/recipesvc"
)

// Server wraps the MCP server with catalog tools.
type Server struct {
	mcp *server.MCPServer
	svc *recipesvc.Service
}

// New creates a new MCP server with all catalog tools registered.
func New(svc *recipesvc.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Ladle",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	s.mcp.AddTool(mcp.NewTool("search_recipes",
		mcp.WithDescription("Search recipes by name or cuisine (case-insensitive substring match, minimum 3 characters)."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchRecipes)

	s.mcp.AddTool(mcp.NewTool("get_recipe",
		mcp.WithDescription("Get a single recipe by its id."),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("Recipe id (positive integer)")),
	), s.getRecipe)

	s.mcp.AddTool(mcp.NewTool("list_recipes",
		mcp.WithDescription("List all recipes in the catalog."),
	), s.listRecipes)

	s.mcp.AddTool(mcp.NewTool("load_catalog",
		mcp.WithDescription("Trigger a one-time load of the recipe catalog from the upstream source. "+
			"Returns immediately; the load runs in the background."),
	), s.loadCatalog)

	s.mcp.AddTool(mcp.NewTool("invalidate_catalog_cache",
		mcp.WithDescription("Clear the cached upstream catalog page so the next load fetches fresh data."),
	), s.invalidateCatalogCache)

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

func (s *Server) searchRecipes(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	recipes, tooShort, err := s.svc.Search(query)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if tooShort {
		return mcp.NewToolResultError("query too short: minimum 3 characters"), nil
	}
	out, _ := json.MarshalIndent(recipes, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getRecipe(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireInt("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	recipe, err := s.svc.GetByID(int64(id))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("recipe %d: %v", id, err)), nil
	}
	out, _ := json.MarshalIndent(recipe, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listRecipes(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	recipes, err := s.svc.GetAll()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(recipes, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) loadCatalog(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	st, err := s.svc.LoadCatalog(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(st.Message()), nil
}

func (s *Server) invalidateCatalogCache(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.svc.InvalidateCatalogCache()
	return mcp.NewToolResultText("catalog cache cleared"), nil
}
