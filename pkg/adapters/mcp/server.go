package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"golang.org/x/sync/errgroup"

	"github.com/aretw0/coredata/pkg/domain"
	"github.com/aretw0/coredata/pkg/ports"
	"github.com/aretw0/coredata/pkg/runner"
)

// Server exposes a ports.Service as MCP tools.
type Server struct {
	service   ports.Service
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance.
func NewServer(service ports.Service, version string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s := &Server{
		service:   service,
		logger:    logger,
		mcpServer: server.NewMCPServer("coredata-mcp", version, server.WithToolCapabilities(false)),
	}
	s.registerTools()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves the SSE transport on addr until ctx is canceled.
func (s *Server) ServeSSE(ctx context.Context, addr, baseURL string) error {
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	})
	return g.Wait()
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("get_entity_record",
		mcp.WithDescription("Fetch one record of an entity, e.g. kind=postType name=post id=1."),
		mcp.WithString("kind", mcp.Required(), mcp.Description("Entity kind (root, postType, taxonomy)")),
		mcp.WithString("name", mcp.Required(), mcp.Description("Entity name")),
		mcp.WithString("id", mcp.Required(), mcp.Description("Record identifier")),
	), s.handleEntityRecord)

	s.mcpServer.AddTool(mcp.NewTool("get_entity_records",
		mcp.WithDescription("Fetch every record of an entity."),
		mcp.WithString("kind", mcp.Required(), mcp.Description("Entity kind (root, postType, taxonomy)")),
		mcp.WithString("name", mcp.Required(), mcp.Description("Entity name")),
	), s.handleEntityRecords)

	s.mcpServer.AddTool(mcp.NewTool("get_embed_preview",
		mcp.WithDescription("Fetch the oEmbed preview of a URL. Returns false when the URL cannot be embedded."),
		mcp.WithString("url", mcp.Required(), mcp.Description("URL to embed")),
	), s.handleEmbedPreview)

	s.mcpServer.AddTool(mcp.NewTool("get_autosave",
		mcp.WithDescription("Fetch the latest autosave of a post."),
		mcp.WithString("post_type", mcp.Required(), mcp.Description("Post type name, e.g. post or page")),
		mcp.WithNumber("post_id", mcp.Required(), mcp.Description("Post ID")),
	), s.handleAutosave)

	s.mcpServer.AddTool(mcp.NewTool("list_entities",
		mcp.WithDescription("List the registered entity descriptors."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return jsonResult(s.service.Entities(ctx))
	})
}

func (s *Server) handleEntityRecord(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	kind, kindErr := request.RequireString("kind")
	name, nameErr := request.RequireString("name")
	id, idErr := request.RequireString("id")
	if err := errors.Join(kindErr, nameErr, idErr); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := runner.SanitizeInputs(&kind, &name, &id); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	record, err := s.service.EntityRecord(ctx, kind, name, id)
	if err != nil {
		return s.toolError("get_entity_record", err), nil
	}
	return jsonResult(record)
}

func (s *Server) handleEntityRecords(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	kind, kindErr := request.RequireString("kind")
	name, nameErr := request.RequireString("name")
	if err := errors.Join(kindErr, nameErr); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := runner.SanitizeInputs(&kind, &name); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	records, err := s.service.EntityRecords(ctx, kind, name)
	if err != nil {
		return s.toolError("get_entity_records", err), nil
	}
	return jsonResult(records)
}

func (s *Server) handleEmbedPreview(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	url, err := request.RequireString("url")
	if err == nil {
		url, err = runner.SanitizeInput(url)
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	preview, err := s.service.EmbedPreview(ctx, url)
	if err != nil {
		return s.toolError("get_embed_preview", err), nil
	}
	return jsonResult(preview)
}

func (s *Server) handleAutosave(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	postType, typeErr := request.RequireString("post_type")
	postID, idErr := request.RequireInt("post_id")
	if err := errors.Join(typeErr, idErr); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := runner.SanitizeInputs(&postType); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	autosave, err := s.service.Autosave(ctx, postType, postID)
	if errors.Is(err, domain.ErrRecordNotFound) {
		return mcp.NewToolResultText(fmt.Sprintf("post %d has no autosave", postID)), nil
	}
	if err != nil {
		return s.toolError("get_autosave", err), nil
	}
	return jsonResult(autosave)
}

// toolError reports a resolver failure to the agent instead of failing the JSON-RPC call.
func (s *Server) toolError(tool string, err error) *mcp.CallToolResult {
	s.logger.Debug("tool failed", "tool", tool, "error", err)
	return mcp.NewToolResultError(fmt.Sprintf("%s failed: %v", tool, err))
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}
