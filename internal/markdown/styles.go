package markdown

import "github.com/charmbracelet/lipgloss"

type Styles struct {
	Heading    [4]lipgloss.Style
	Text       lipgloss.Style
	Bold       lipgloss.Style
	Italic     lipgloss.Style
	BoldItalic lipgloss.Style
	Strike     lipgloss.Style
	Code       lipgloss.Style
	CodeBlock  lipgloss.Style
	CodeLang   lipgloss.Style
	Link       lipgloss.Style
	LinkURL    lipgloss.Style
	PageLink   lipgloss.Style
	ListBullet lipgloss.Style
	ListNumber lipgloss.Style
	ListItem   lipgloss.Style
	TaskOpen   lipgloss.Style
	TaskDone   lipgloss.Style
	TableRule  lipgloss.Style
	HRule      lipgloss.Style
	Blockquote lipgloss.Style
	Callouts   map[string]lipgloss.Style
}

const (
	calloutInfo    = "info"
	calloutSuccess = "success"
	calloutWarn    = "warn"
	calloutError   = "error"
)

func DefaultStyles() Styles {
	purple := lipgloss.Color("#7C3AED")
	blue := lipgloss.Color("#3B82F6")
	cyan := lipgloss.Color("#06B6D4")
	gray := lipgloss.Color("#6B7280")
	lightGray := lipgloss.Color("#F9FAFB")
	orange := lipgloss.Color("#F59E0B")
	green := lipgloss.Color("#10B981")
	red := lipgloss.Color("#EF4444")
	codeBackground := lipgloss.Color("#1F2937")

	callout := func(color lipgloss.Color) lipgloss.Style {
		return lipgloss.NewStyle().
			Foreground(lightGray).
			PaddingLeft(1).
			BorderLeft(true).
			BorderStyle(lipgloss.ThickBorder()).
			BorderForeground(color)
	}

	return Styles{
		Heading: [4]lipgloss.Style{
			lipgloss.NewStyle().Foreground(purple).Bold(true).Underline(true).MarginBottom(1),
			lipgloss.NewStyle().Foreground(purple).Bold(true),
			lipgloss.NewStyle().Foreground(blue).Bold(true),
			lipgloss.NewStyle().Foreground(blue),
		},

		Text: lipgloss.NewStyle().
			Foreground(lightGray),

		Bold: lipgloss.NewStyle().
			Foreground(lightGray).
			Bold(true),

		Italic: lipgloss.NewStyle().
			Foreground(lightGray).
			Italic(true),

		BoldItalic: lipgloss.NewStyle().
			Foreground(lightGray).
			Bold(true).
			Italic(true),

		Strike: lipgloss.NewStyle().
			Foreground(gray).
			Strikethrough(true),

		Code: lipgloss.NewStyle().
			Foreground(orange).
			Background(codeBackground),

		CodeBlock: lipgloss.NewStyle().
			Foreground(orange).
			Background(codeBackground).
			Padding(0, 1),

		CodeLang: lipgloss.NewStyle().
			Foreground(gray).
			Italic(true),

		Link: lipgloss.NewStyle().
			Foreground(cyan).
			Underline(true),

		LinkURL: lipgloss.NewStyle().
			Foreground(gray),

		PageLink: lipgloss.NewStyle().
			Foreground(purple).
			Underline(true),

		ListBullet: lipgloss.NewStyle().
			Foreground(green),

		ListNumber: lipgloss.NewStyle().
			Foreground(green),

		ListItem: lipgloss.NewStyle().
			Foreground(lightGray),

		TaskOpen: lipgloss.NewStyle().
			Foreground(orange),

		TaskDone: lipgloss.NewStyle().
			Foreground(green),

		TableRule: lipgloss.NewStyle().
			Foreground(gray),

		HRule: lipgloss.NewStyle().
			Foreground(gray),

		Blockquote: lipgloss.NewStyle().
			Foreground(gray).
			Italic(true).
			PaddingLeft(2).
			BorderLeft(true).
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(gray),

		Callouts: map[string]lipgloss.Style{
			calloutInfo:    callout(blue),
			calloutSuccess: callout(green),
			calloutWarn:    callout(orange),
			calloutError:   callout(red),
		},
	}
}

func (s Styles) heading(level int) lipgloss.Style {
	if level > len(s.Heading) {
		level = len(s.Heading)
	}
	return s.Heading[level-1]
}

// callout falls back to the info style for kinds it does not know.
func (s Styles) callout(kind string) lipgloss.Style {
	if style, ok := s.Callouts[kind]; ok {
		return style
	}
	return s.Callouts[calloutInfo]
}
