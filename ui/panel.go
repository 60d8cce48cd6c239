// Package ui is the terminal panel: the latest message, the extracted
// sentences and their rewrite side by side, with a live preview of the
// spliced result.
package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"rpoptimizer/config"
	"rpoptimizer/model"
	"rpoptimizer/notify"
	"rpoptimizer/optimizer"
	"rpoptimizer/provider"
)

const maxStatusLines = 4

type focus int

const (
	focusOriginal focus = iota
	focusRewritten
)

// Panel is the bubbletea model of the optimizer panel.
type Panel struct {
	opt *optimizer.Optimizer
	gen *provider.Generator
	rec *notify.Recorder

	message   viewport.Model
	original  textarea.Model
	rewritten textarea.Model
	spinner   spinner.Model
	focus     focus

	latest   string
	preview  string
	working  string
	backend  string
	status   []notify.Entry
	quitting bool

	width  int
	height int
}

// NewPanel builds the panel. rec must be one of opt's notifiers; gen may be
// nil when the backend cannot be pinged.
func NewPanel(opt *optimizer.Optimizer, gen *provider.Generator, rec *notify.Recorder) Panel {
	original := textarea.New()
	original.Placeholder = "Extracted sentences (Ctrl+E)"
	original.ShowLineNumbers = false
	original.CharLimit = 0
	original.Focus()

	rewritten := textarea.New()
	rewritten.Placeholder = "Rewritten sentences (Ctrl+R)"
	rewritten.ShowLineNumbers = false
	rewritten.CharLimit = 0

	s := spinner.New()
	s.Spinner = spinner.Dot

	p := Panel{
		opt:       opt,
		gen:       gen,
		rec:       rec,
		message:   viewport.New(80, 8),
		original:  original,
		rewritten: rewritten,
		spinner:   s,
	}
	p.resize(80, 30)
	return p
}

func (p Panel) Init() tea.Cmd {
	cmds := []tea.Cmd{textarea.Blink, loadLatestCmd(p.opt)}
	if p.gen != nil {
		cmds = append(cmds, provider.PingCmd(p.gen))
	}
	return tea.Batch(cmds...)
}

func (p *Panel) resize(width, height int) {
	p.width, p.height = width, height

	paneWidth := width/2 - 4
	if paneWidth < 20 {
		paneWidth = 20
	}
	editorHeight := (height - 14) / 2
	if editorHeight < 3 {
		editorHeight = 3
	}

	p.original.SetWidth(paneWidth)
	p.original.SetHeight(editorHeight)
	p.rewritten.SetWidth(paneWidth)
	p.rewritten.SetHeight(editorHeight)

	p.message.Width = width - 4
	p.message.Height = height - editorHeight - 12
	if p.message.Height < 3 {
		p.message.Height = 3
	}
	p.refreshMessage()
}

// refreshMessage shows the preview when there is one, the latest message otherwise.
func (p *Panel) refreshMessage() {
	text := p.latest
	if p.preview != "" {
		text = p.preview
	}
	p.message.SetContent(wrapText(text, p.message.Width))
}

// updatePreview re-splices the editors into the latest message.
func (p *Panel) updatePreview() {
	p.preview = ""
	if p.latest != "" && p.original.Value() != "" && p.rewritten.Value() != "" {
		if res, err := optimizer.Reconcile(p.latest, p.original.Value(), p.rewritten.Value()); err == nil && res.Changed() {
			p.preview = res.Text
		}
	}
	p.refreshMessage()
}

// collect moves recorded notifications into the status area.
func (p *Panel) collect() {
	if p.rec == nil {
		return
	}
	p.status = append(p.status, p.rec.Drain()...)
	if len(p.status) > maxStatusLines {
		p.status = p.status[len(p.status)-maxStatusLines:]
	}
}

func (p *Panel) setStatus(level model.Level, msg string) {
	p.status = append(p.status, notify.Entry{Level: level, Message: msg})
	if len(p.status) > maxStatusLines {
		p.status = p.status[len(p.status)-maxStatusLines:]
	}
}

func (p *Panel) start(name string, cmd tea.Cmd) tea.Cmd {
	p.working = name
	return tea.Batch(cmd, p.spinner.Tick)
}

func (p *Panel) setFocus(f focus) {
	p.focus = f
	if f == focusOriginal {
		p.rewritten.Blur()
		p.original.Focus()
	} else {
		p.original.Blur()
		p.rewritten.Focus()
	}
}

func (p Panel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	log := config.Logger("panel")

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		p.resize(msg.Width, msg.Height)
		return p, nil

	case spinner.TickMsg:
		if p.working == "" {
			return p, nil
		}
		var cmd tea.Cmd
		p.spinner, cmd = p.spinner.Update(msg)
		return p, cmd

	case provider.PingProviderMsg:
		if msg.Valid {
			p.backend = msg.ProviderID + " ✓"
		} else {
			p.backend = msg.ProviderID + " ✗"
			log.Warn().Err(msg.Err).Msg("backend ping failed")
		}
		return p, nil

	case latestLoadedMsg:
		if msg.err != nil {
			p.setStatus(model.LevelError, fmt.Sprintf("Could not load chat: %v", msg.err))
			return p, nil
		}
		p.latest = msg.text
		p.updatePreview()
		return p, nil

	case extractedMsg:
		p.working = ""
		p.collect()
		if msg.err == nil && msg.block != "" {
			p.original.SetValue(msg.block)
			p.rewritten.Reset()
			p.updatePreview()
		}
		return p, nil

	case rewrittenMsg:
		p.working = ""
		p.collect()
		if msg.text != "" {
			p.rewritten.SetValue(msg.text)
			p.setFocus(focusRewritten)
			p.updatePreview()
		}
		return p, nil

	case replacedMsg:
		p.working = ""
		p.collect()
		if msg.err == nil {
			p.latest = msg.preview
			p.preview = ""
			p.original.Reset()
			p.rewritten.Reset()
			p.setFocus(focusOriginal)
			p.refreshMessage()
		}
		return p, nil

	case optimizedMsg:
		p.working = ""
		p.collect()
		return p, loadLatestCmd(p.opt)

	case copiedMsg:
		if msg.err != nil {
			p.setStatus(model.LevelError, "Copy failed")
		} else {
			p.setStatus(model.LevelSuccess, "Rewrite copied to clipboard")
		}
		return p, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			p.quitting = true
			return p, tea.Quit
		case "tab":
			if p.focus == focusOriginal {
				p.setFocus(focusRewritten)
			} else {
				p.setFocus(focusOriginal)
			}
			return p, nil
		case "ctrl+l":
			return p, loadLatestCmd(p.opt)
		}

		if p.working != "" {
			// one action at a time; editors stay usable
			if isAction(msg.String()) {
				p.setStatus(model.LevelWarning, "Still working on "+p.working)
				return p, nil
			}
		} else {
			switch msg.String() {
			case "ctrl+e":
				return p, p.start("extract", extractCmd(p.opt))
			case "ctrl+r":
				if p.original.Value() == "" {
					p.setStatus(model.LevelWarning, "Nothing to rewrite, extract first")
					return p, nil
				}
				return p, p.start("rewrite", rewriteCmd(p.opt, p.original.Value()))
			case "ctrl+s":
				if p.original.Value() == "" || p.rewritten.Value() == "" {
					p.setStatus(model.LevelWarning, "Both the original and the rewrite are needed")
					return p, nil
				}
				return p, p.start("replace", replaceCmd(p.opt, p.original.Value(), p.rewritten.Value()))
			case "ctrl+o":
				return p, p.start("optimize", optimizeCmd(p.opt))
			case "ctrl+y":
				if p.rewritten.Value() == "" {
					return p, nil
				}
				return p, copyCmd(p.rewritten.Value())
			}
		}
	}

	var cmd tea.Cmd
	if p.focus == focusOriginal {
		p.original, cmd = p.original.Update(msg)
	} else {
		p.rewritten, cmd = p.rewritten.Update(msg)
	}
	if _, ok := msg.(tea.KeyMsg); ok {
		p.updatePreview()
	}
	return p, cmd
}

func isAction(key string) bool {
	switch key {
	case "ctrl+e", "ctrl+r", "ctrl+s", "ctrl+o":
		return true
	}
	return false
}
