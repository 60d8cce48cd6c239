package ui

import (
	"context"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"rpoptimizer/optimizer"
)

type latestLoadedMsg struct {
	text string
	err  error
}

type extractedMsg struct {
	block string
	err   error
}

type rewrittenMsg struct {
	text string
}

type replacedMsg struct {
	preview string
	err     error
}

type optimizedMsg struct {
	err error
}

type copiedMsg struct {
	err error
}

func loadLatestCmd(opt *optimizer.Optimizer) tea.Cmd {
	return func() tea.Msg {
		text, err := opt.LatestText(context.Background())
		return latestLoadedMsg{text: text, err: err}
	}
}

func extractCmd(opt *optimizer.Optimizer) tea.Cmd {
	return func() tea.Msg {
		block, err := opt.Extract(context.Background())
		return extractedMsg{block: block, err: err}
	}
}

func rewriteCmd(opt *optimizer.Optimizer, numbered string) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		return rewrittenMsg{text: opt.RewriteText(ctx, numbered, opt.SystemPrompt(ctx))}
	}
}

func replaceCmd(opt *optimizer.Optimizer, original, rewritten string) tea.Cmd {
	return func() tea.Msg {
		var preview string
		err := opt.Replace(context.Background(), original, rewritten, func(s string) { preview = s })
		return replacedMsg{preview: preview, err: err}
	}
}

func optimizeCmd(opt *optimizer.Optimizer) tea.Cmd {
	return func() tea.Msg {
		return optimizedMsg{err: opt.RunFull(context.Background())}
	}
}

func copyCmd(text string) tea.Cmd {
	return func() tea.Msg {
		return copiedMsg{err: clipboard.WriteAll(text)}
	}
}
