// Package mcpserver exposes note revision and synthesis as MCP tools.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/Mikele-Kochas/SmartNotebook/internal/model"
	"github.com/Mikele-Kochas/SmartNotebook/internal/prompt"
	"github.com/Mikele-Kochas/SmartNotebook/pkg/logger"
	"github.com/Mikele-Kochas/SmartNotebook/pkg/xerr"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const (
	ServerName    = "smartnotebook"
	ServerVersion = "1.0.0"

	ToolReviseNote      = "revise_note"
	ToolSynthesizeNotes = "synthesize_notes"
)

// NoteService is the subset of service.NoteService the tools call.
type NoteService interface {
	Revise(ctx context.Context, req model.ReviseRequest) (string, error)
	Synthesize(ctx context.Context, req model.SynthesizeRequest) (string, error)
}

type toolHandler struct {
	noteService NoteService
}

// New returns an MCP server with the note tools registered.
func New(noteService NoteService) *server.MCPServer {
	s := server.NewMCPServer(
		ServerName,
		ServerVersion,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)

	h := &toolHandler{noteService: noteService}
	h.registerTools(s)
	return s
}

// NewHTTPHandler serves the MCP server over streamable HTTP at endpointPath.
func NewHTTPHandler(s *server.MCPServer, endpointPath string) http.Handler {
	return server.NewStreamableHTTPServer(s,
		server.WithEndpointPath(endpointPath),
		server.WithStateLess(true),
	)
}

func (h *toolHandler) registerTools(s *server.MCPServer) {
	reviseTool := mcp.NewTool(ToolReviseNote,
		mcp.WithDescription("Revise the text of a single note and return only the revised text."),
		mcp.WithString("content", mcp.Required(), mcp.Description("Note text to revise")),
		mcp.WithString("mode", mcp.Required(),
			mcp.Enum(revisionModeNames()...),
			mcp.Description("light: fix grammar and spelling; deep: restructure; custom: apply 'prompt'")),
		mcp.WithString("prompt", mcp.Description("Instruction for custom mode")),
	)
	s.AddTool(reviseTool, h.handleRevise)

	synthesizeTool := mcp.NewTool(ToolSynthesizeNotes,
		mcp.WithDescription("Combine two or more notes into one text, keeping their order."),
		mcp.WithArray("notes", mcp.Required(),
			mcp.Description("Notes to combine, at least two"),
			mcp.Items(map[string]any{
				"type": "object",
				"properties": map[string]any{
					"title":   map[string]any{"type": "string"},
					"content": map[string]any{"type": "string"},
				},
				"required": []string{"content"},
			})),
		mcp.WithString("mode", mcp.Required(),
			mcp.Enum(synthesisModeNames()...),
			mcp.Description("coherent_text: one unified text; summary: concise summary; custom: apply 'prompt'")),
		mcp.WithString("prompt", mcp.Description("Instruction for custom mode")),
	)
	s.AddTool(synthesizeTool, h.handleSynthesize)
}

func (h *toolHandler) handleRevise(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var req model.ReviseRequest
	if err := decodeArguments(request, &req); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	revised, err := h.noteService.Revise(ctx, req)
	if err != nil {
		return toolError(ToolReviseNote, err), nil
	}
	return mcp.NewToolResultText(revised), nil
}

func (h *toolHandler) handleSynthesize(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var req model.SynthesizeRequest
	if err := decodeArguments(request, &req); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	synthesized, err := h.noteService.Synthesize(ctx, req)
	if err != nil {
		return toolError(ToolSynthesizeNotes, err), nil
	}
	return mcp.NewToolResultText(synthesized), nil
}

// decodeArguments maps the tool arguments onto the HTTP request DTOs so both
// surfaces share validation.
func decodeArguments(request mcp.CallToolRequest, dst interface{}) error {
	raw, err := json.Marshal(request.GetArguments())
	if err != nil {
		return fmt.Errorf("invalid arguments format: %w", err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("invalid arguments format: %w", err)
	}
	return nil
}

func toolError(tool string, err error) *mcp.CallToolResult {
	kind := xerr.KindOf(err)
	message := err.Error()
	if e, ok := xerr.As(err); ok {
		message = e.Message
	}
	logger.WithFields(logger.Fields{"tool": tool, "kind": kind}).Warnf("tool call failed: %s", message)
	return mcp.NewToolResultError(fmt.Sprintf("%s: %s", kind, message))
}

func revisionModeNames() []string {
	names := make([]string, len(prompt.RevisionModes))
	for i, m := range prompt.RevisionModes {
		names[i] = string(m)
	}
	return names
}

func synthesisModeNames() []string {
	names := make([]string, len(prompt.SynthesisModes))
	for i, m := range prompt.SynthesisModes {
		names[i] = string(m)
	}
	return names
}
