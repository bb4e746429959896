package mcpsrv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/sandevgo/bidbot/internal/assistant"
	"github.com/sandevgo/bidbot/internal/core"
	"github.com/sandevgo/bidbot/pkg/log"
)

// EngineFactory builds a fresh engine bound to an account.
type EngineFactory func(accountID string) *assistant.Engine

// Server exposes the assistant as MCP tools over stdio so desktop AI
// clients can talk to it.
type Server struct {
	stdio     *server.StdioServer
	accountID string
	factory   EngineFactory

	mu      sync.Mutex
	engines map[string]*assistant.Engine
}

func NewServer(accountID string, factory EngineFactory) *Server {
	s := &Server{
		accountID: accountID,
		factory:   factory,
		engines:   make(map[string]*assistant.Engine),
	}

	mcpSrv := server.NewMCPServer(
		core.AppName,
		core.AppVersion,
		server.WithToolCapabilities(true),
		server.WithInstructions("Business assistant for a contractor: ask it to create jobs and invoices, check job status, or review overdue invoices."),
		server.WithRecovery(),
	)

	mcpSrv.AddTool(
		mcp.NewTool("chat",
			mcp.WithDescription("Send a message to the business assistant and get its reply."),
			mcp.WithString("message", mcp.Description("The message to send"), mcp.Required()),
			mcp.WithString("session_id", mcp.Description("Conversation to continue; omit to start a new one")),
		),
		s.handleChat,
	)

	mcpSrv.AddTool(
		mcp.NewTool("reset_session",
			mcp.WithDescription("Clear a conversation's history."),
			mcp.WithString("session_id", mcp.Description("Conversation to clear"), mcp.Required()),
		),
		s.handleReset,
	)

	s.stdio = server.NewStdioServer(mcpSrv)
	return s
}

func (s *Server) Start(ctx context.Context) error {
	log.FromCtx(ctx).Info().Msg("starting mcp stdio server")
	if err := s.stdio.Listen(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	// Listen returns once the start context is cancelled.
	return nil
}

func (s *Server) engine(sessionID string) *assistant.Engine {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.engines[sessionID]; ok {
		return e
	}
	e := s.factory(s.accountID)
	s.engines[sessionID] = e
	return e
}

type chatResult struct {
	SessionID    string   `json:"session_id"`
	Response     string   `json:"response"`
	Intent       string   `json:"intent,omitempty"`
	Source       string   `json:"source"`
	Actions      []action `json:"actions,omitempty"`
	QuickReplies []string `json:"quick_replies,omitempty"`
}

type action struct {
	Type  string `json:"type"`
	Label string `json:"label"`
	Value string `json:"value"`
}

func (s *Server) handleChat(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	message, err := req.RequireString("message")
	if err != nil {
		return mcpError("message is required"), nil
	}

	sessionID := req.GetString("session_id", "")
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	msg := s.engine(sessionID).HandleMessage(ctx, message)

	result := chatResult{
		SessionID:    sessionID,
		Response:     msg.Content,
		Intent:       msg.Intent,
		Source:       msg.Source,
		QuickReplies: msg.QuickReplies,
	}
	for _, a := range msg.Actions {
		result.Actions = append(result.Actions, action{Type: a.Type, Label: a.Label, Value: a.Value})
	}

	b, err := json.Marshal(result)
	if err != nil {
		return mcpError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcpText(string(b)), nil
}

func (s *Server) handleReset(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := req.RequireString("session_id")
	if err != nil {
		return mcpError("session_id is required"), nil
	}

	s.mu.Lock()
	e, ok := s.engines[sessionID]
	s.mu.Unlock()
	if ok {
		e.Reset()
	}
	return mcpText(fmt.Sprintf("Session %s cleared", sessionID)), nil
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
