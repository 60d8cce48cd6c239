package ui

import (
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

func (p Panel) View() string {
	if p.quitting {
		return ""
	}

	var b strings.Builder

	title := TitleStyle.Render("Latest message")
	if p.preview != "" {
		title = FocusedTitleStyle.Render("Preview")
	}
	if p.backend != "" {
		title += "  " + DimStyle.Render(p.backend)
	}
	b.WriteString(title + "\n")
	b.WriteString(PaneStyle.Width(p.width - 2).Render(MessageStyle.Render(p.message.View())))
	b.WriteString("\n")

	left, right := PaneStyle, PaneStyle
	leftTitle, rightTitle := TitleStyle.Render("Original"), TitleStyle.Render("Rewrite")
	if p.focus == focusOriginal {
		left = FocusedPaneStyle
		leftTitle = FocusedTitleStyle.Render("Original")
	} else {
		right = FocusedPaneStyle
		rightTitle = FocusedTitleStyle.Render("Rewrite")
	}

	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.JoinVertical(lipgloss.Left, leftTitle, left.Render(p.original.View())),
		lipgloss.JoinVertical(lipgloss.Left, rightTitle, right.Render(p.rewritten.View())),
	))
	b.WriteString("\n")

	if p.working != "" {
		b.WriteString(p.spinner.View() + " " + StatusStyle.Render(p.working+"...") + "\n")
	}
	for _, e := range p.status {
		line := runewidth.Truncate(e.Message, p.width-2, "…")
		b.WriteString(levelStyle(e.Level).Render(line) + "\n")
	}

	b.WriteString(FormatFooter(
		"^E", "Extract", "^R", "Rewrite", "^S", "Replace",
		"^O", "One-click", "^Y", "Copy", "Tab", "Switch", "Esc", "Quit",
	))
	return b.String()
}

// wrapText wraps text to fit within width. Lines without spaces (CJK prose)
// are broken by display width.
func wrapText(text string, width int) string {
	if width <= 0 {
		return text
	}

	var out []string
	for _, para := range strings.Split(text, "\n") {
		out = append(out, wrapLine(para, width)...)
	}
	return strings.Join(out, "\n")
}

func wrapLine(text string, width int) []string {
	if runewidth.StringWidth(text) <= width {
		return []string{text}
	}

	var lines []string
	var currentLine string

	for _, word := range strings.Fields(text) {
		wordWidth := runewidth.StringWidth(word)
		currentWidth := runewidth.StringWidth(currentLine)

		if wordWidth > width {
			if currentLine != "" {
				lines = append(lines, currentLine)
				currentLine = ""
			}
			for wordWidth > width {
				chunk := runewidth.Truncate(word, width, "")
				if chunk == "" {
					_, size := utf8.DecodeRuneInString(word)
					chunk = word[:size]
				}
				lines = append(lines, chunk)
				word = word[len(chunk):]
				wordWidth = runewidth.StringWidth(word)
			}
			currentLine = word
		} else if currentWidth+wordWidth+1 <= width {
			if currentLine != "" {
				currentLine += " "
			}
			currentLine += word
		} else {
			if currentLine != "" {
				lines = append(lines, currentLine)
			}
			currentLine = word
		}
	}
	if currentLine != "" {
		lines = append(lines, currentLine)
	}
	return lines
}
