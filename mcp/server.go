// Package mcp exposes the optimizer as Model Context Protocol tools so an
// agent or editor can check, extract, rewrite and replace chat messages.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"rpoptimizer/notify"
	"rpoptimizer/optimizer"
)

// ServerConfig holds configuration for the MCP server.
type ServerConfig struct {
	Optimizer *optimizer.Optimizer
	// Recorder must be one of the optimizer's notifiers. Tool results carry
	// the notifications raised during the call.
	Recorder *notify.Recorder
	Version  string
}

// toolMu serializes tool calls. mcp-go dispatches handlers concurrently and
// the recorder is shared, so each result only sees its own notifications.
var toolMu sync.Mutex

// NewServer creates a configured MCP server with all optimizer tools.
func NewServer(cfg ServerConfig) *server.MCPServer {
	ver := cfg.Version
	if ver == "" {
		ver = "dev"
	}

	s := server.NewMCPServer(
		"rpoptimizer",
		ver,
		server.WithToolCapabilities(false),
	)

	t := &tools{opt: cfg.Optimizer, rec: cfg.Recorder}
	registerCheckTool(s, t)
	registerExtractTool(s, t)
	registerRewriteTool(s, t)
	registerReplaceTool(s, t)
	registerOptimizeTool(s, t)

	return s
}

// ServeStdio runs the server on stdin/stdout until the client disconnects.
func ServeStdio(cfg ServerConfig) error {
	return server.ServeStdio(NewServer(cfg))
}

type tools struct {
	opt *optimizer.Optimizer
	rec *notify.Recorder
}

func (t *tools) notifications() []string {
	if t.rec == nil {
		return []string{}
	}
	out := []string{}
	for _, e := range t.rec.Drain() {
		out = append(out, e.String())
	}
	return out
}

// result encodes payload plus the call's notifications.
func (t *tools) result(payload map[string]interface{}) (*mcp.CallToolResult, error) {
	payload["notifications"] = t.notifications()
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (t *tools) failure(err error) (*mcp.CallToolResult, error) {
	msg := err.Error()
	if errors.Is(err, optimizer.ErrBusy) {
		msg = "busy: " + msg
	}
	for _, n := range t.notifications() {
		msg += "\n" + n
	}
	return mcp.NewToolResultError(msg), nil
}

// --- Tools ---

func registerCheckTool(s *server.MCPServer, t *tools) {
	tool := mcp.NewTool("rpo_check",
		mcp.WithDescription("Check whether a text (or the latest chat message when text is omitted) contains any disabled word."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithString("text",
			mcp.Description("Text to check. Empty = latest chat message."),
		),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		toolMu.Lock()
		defer toolMu.Unlock()

		text, err := req.RequireString("text")
		if err != nil || text == "" {
			latest, lerr := t.opt.LatestText(ctx)
			if lerr != nil {
				return t.failure(lerr)
			}
			text = latest
		}

		return t.result(map[string]interface{}{
			"matches": t.opt.CheckMessage(ctx, text),
		})
	})
}

func registerExtractTool(s *server.MCPServer, t *tools) {
	tool := mcp.NewTool("rpo_extract",
		mcp.WithDescription("Extract the sentences of the latest chat message that contain disabled words, as a numbered block."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		toolMu.Lock()
		defer toolMu.Unlock()

		block, err := t.opt.Extract(ctx)
		if err != nil {
			return t.failure(err)
		}
		return t.result(map[string]interface{}{"sentences": block})
	})
}

func registerRewriteTool(s *server.MCPServer, t *tools) {
	tool := mcp.NewTool("rpo_rewrite",
		mcp.WithDescription("Send a numbered block of sentences to the configured model and return its rewrite. Does not modify the chat."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithString("sentences",
			mcp.Required(),
			mcp.Description("Numbered block, one sentence per line"),
		),
		mcp.WithString("system_prompt",
			mcp.Description("System prompt override. Empty = built from settings."),
		),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		toolMu.Lock()
		defer toolMu.Unlock()

		sentences, err := req.RequireString("sentences")
		if err != nil || sentences == "" {
			return mcp.NewToolResultError("sentences is required"), nil
		}
		prompt, err := req.RequireString("system_prompt")
		if err != nil || prompt == "" {
			prompt = t.opt.SystemPrompt(ctx)
		}

		out := t.opt.RewriteText(ctx, sentences, prompt)
		if out == "" {
			return t.failure(optimizer.ErrEmptyRewrite)
		}
		return t.result(map[string]interface{}{"rewritten": out})
	})
}

func registerReplaceTool(s *server.MCPServer, t *tools) {
	tool := mcp.NewTool("rpo_replace",
		mcp.WithDescription("Replace the original sentences in the latest chat message with their rewrites and save the message."),
		mcp.WithReadOnlyHintAnnotation(false),
		mcp.WithDestructiveHintAnnotation(true),
		mcp.WithString("original",
			mcp.Required(),
			mcp.Description("Numbered block of original sentences, as returned by rpo_extract"),
		),
		mcp.WithString("rewritten",
			mcp.Required(),
			mcp.Description("Numbered block of rewritten sentences"),
		),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		toolMu.Lock()
		defer toolMu.Unlock()

		original, err := req.RequireString("original")
		if err != nil || original == "" {
			return mcp.NewToolResultError("original is required"), nil
		}
		rewritten, err := req.RequireString("rewritten")
		if err != nil || rewritten == "" {
			return mcp.NewToolResultError("rewritten is required"), nil
		}

		var text string
		if err := t.opt.Replace(ctx, original, rewritten, func(s string) { text = s }); err != nil {
			return t.failure(err)
		}
		return t.result(map[string]interface{}{"text": text})
	})
}

func registerOptimizeTool(s *server.MCPServer, t *tools) {
	tool := mcp.NewTool("rpo_optimize",
		mcp.WithDescription("Extract, rewrite and replace in one step on the latest chat message."),
		mcp.WithReadOnlyHintAnnotation(false),
		mcp.WithDestructiveHintAnnotation(true),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		toolMu.Lock()
		defer toolMu.Unlock()

		if err := t.opt.RunFull(ctx); err != nil {
			return t.failure(err)
		}
		text, err := t.opt.LatestText(ctx)
		if err != nil {
			return t.failure(err)
		}
		return t.result(map[string]interface{}{"text": text})
	})
}
