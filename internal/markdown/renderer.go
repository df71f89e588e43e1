// Package markdown renders collective pages for the terminal.
package markdown

import (
	"regexp"
	"strings"
)

const defaultWidth = 80

type Renderer struct {
	styles Styles
	width  int
}

func NewRenderer(styles Styles) *Renderer {
	return &Renderer{
		styles: styles,
		width:  defaultWidth,
	}
}

func (r *Renderer) SetWidth(width int) {
	if width > 10 {
		r.width = width
	}
}

func (r *Renderer) hRule() string {
	return strings.Repeat("─", r.width-4)
}

// Render styles a page. Fenced code keeps its content verbatim; ":::" blocks
// are Collectives callouts and render as bordered paragraphs.
func (r *Renderer) Render(text string) string {
	if text == "" {
		return ""
	}

	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	var result []string

	var (
		inCode      bool
		codeLang    string
		codeLines   []string
		inCallout   bool
		calloutKind string
		calloutBody []string
	)

	flushCode := func() {
		result = append(result, r.renderCodeBlock(codeLang, codeLines))
		codeLines, codeLang, inCode = nil, "", false
	}
	flushCallout := func() {
		result = append(result, r.renderCallout(calloutKind, calloutBody))
		calloutBody, calloutKind, inCallout = nil, "", false
	}

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)

		if strings.HasPrefix(trimmed, "```") {
			if inCode {
				flushCode()
			} else {
				inCode = true
				codeLang = strings.TrimSpace(strings.TrimPrefix(trimmed, "```"))
			}
			continue
		}
		if inCode {
			codeLines = append(codeLines, line)
			continue
		}

		if strings.HasPrefix(trimmed, ":::") {
			if inCallout {
				flushCallout()
			} else {
				inCallout = true
				calloutKind = strings.TrimSpace(strings.TrimPrefix(trimmed, ":::"))
			}
			continue
		}
		if inCallout {
			calloutBody = append(calloutBody, r.renderLine(line))
			continue
		}

		result = append(result, r.renderLine(line))
	}

	if inCode {
		flushCode()
	}
	if inCallout {
		flushCallout()
	}

	return strings.Join(result, "\n")
}

func (r *Renderer) renderLine(line string) string {
	trimmed := strings.TrimSpace(line)

	if trimmed == "" {
		return ""
	}

	if isHorizontalRule(trimmed) {
		return r.styles.HRule.Render(r.hRule())
	}

	if level, content, ok := parseHeading(trimmed); ok {
		return r.styles.heading(level).Render(content)
	}

	if strings.HasPrefix(trimmed, "> ") || trimmed == ">" {
		content := strings.TrimSpace(strings.TrimPrefix(trimmed, ">"))
		return r.styles.Blockquote.Render(r.renderInline(content))
	}

	if strings.HasPrefix(trimmed, "|") {
		return r.renderTableRow(trimmed)
	}

	indent := strings.Repeat("  ", leadingIndent(line)/2)

	if done, content, ok := parseTask(trimmed); ok {
		box := r.styles.TaskOpen.Render("☐")
		if done {
			box = r.styles.TaskDone.Render("☑")
			return indent + box + " " + r.styles.Strike.Render(content)
		}
		return indent + box + " " + r.styles.ListItem.Render(r.renderInline(content))
	}

	if content, ok := parseBullet(trimmed); ok {
		return indent + r.styles.ListBullet.Render("•") + " " + r.styles.ListItem.Render(r.renderInline(content))
	}

	if number, content, ok := parseNumbered(trimmed); ok {
		return indent + r.styles.ListNumber.Render(number) + " " + r.styles.ListItem.Render(r.renderInline(content))
	}

	return r.styles.Text.Render(r.renderInline(trimmed))
}

func leadingIndent(line string) int {
	n := 0
	for _, c := range line {
		switch c {
		case ' ':
			n++
		case '\t':
			n += 4
		default:
			return n
		}
	}
	return n
}

func isHorizontalRule(line string) bool {
	if len(line) < 3 {
		return false
	}
	for _, marker := range []string{"-", "*", "_"} {
		if strings.Trim(line, marker+" ") == "" && strings.Count(line, marker) >= 3 {
			return true
		}
	}
	return false
}

func parseHeading(line string) (level int, content string, ok bool) {
	for level < len(line) && level < 6 && line[level] == '#' {
		level++
	}
	if level == 0 || level >= len(line) || line[level] != ' ' {
		return 0, "", false
	}
	return level, strings.TrimSpace(line[level:]), true
}

var taskRegex = regexp.MustCompile(`^[-*+] \[([ xX])\]\s+(.*)$`)

func parseTask(line string) (done bool, content string, ok bool) {
	matches := taskRegex.FindStringSubmatch(line)
	if matches == nil {
		return false, "", false
	}
	return matches[1] != " ", matches[2], true
}

func parseBullet(line string) (content string, ok bool) {
	for _, marker := range []string{"- ", "* ", "+ "} {
		if strings.HasPrefix(line, marker) {
			return strings.TrimPrefix(line, marker), true
		}
	}
	return "", false
}

var numberedRegex = regexp.MustCompile(`^(\d+)[.)]\s+(.*)$`)

func parseNumbered(line string) (number string, content string, ok bool) {
	matches := numberedRegex.FindStringSubmatch(line)
	if len(matches) == 3 {
		return matches[1] + ".", matches[2], true
	}
	return "", "", false
}

var tableSeparatorRegex = regexp.MustCompile(`^\|?(\s*:?-+:?\s*\|)+\s*:?-*:?\s*$`)

func (r *Renderer) renderTableRow(line string) string {
	if tableSeparatorRegex.MatchString(line) {
		return r.styles.TableRule.Render(r.hRule())
	}

	cells := strings.Split(strings.Trim(line, "|"), "|")
	rendered := make([]string, len(cells))
	for i, cell := range cells {
		rendered[i] = r.styles.Text.Render(r.renderInline(strings.TrimSpace(cell)))
	}
	sep := r.styles.TableRule.Render(" │ ")
	return strings.Join(rendered, sep)
}

var (
	boldItalicRegex = regexp.MustCompile(`\*\*\*([^*]+)\*\*\*`)
	boldRegex       = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	italicRegex     = regexp.MustCompile(`\*([^*]+)\*`)
	strikeRegex     = regexp.MustCompile(`~~([^~]+)~~`)
	codeRegex       = regexp.MustCompile("`([^`]+)`")
	linkRegex       = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)
)

func (r *Renderer) renderInline(text string) string {
	replace := func(re *regexp.Regexp, render func(...string) string) {
		text = re.ReplaceAllStringFunc(text, func(match string) string {
			return render(re.FindStringSubmatch(match)[1])
		})
	}

	replace(boldItalicRegex, r.styles.BoldItalic.Render)
	replace(boldRegex, r.styles.Bold.Render)
	replace(italicRegex, r.styles.Italic.Render)
	replace(strikeRegex, r.styles.Strike.Render)
	replace(codeRegex, r.styles.Code.Render)

	text = linkRegex.ReplaceAllStringFunc(text, func(match string) string {
		matches := linkRegex.FindStringSubmatch(match)
		label, target := matches[1], matches[2]
		if isPageLink(target) {
			return r.styles.PageLink.Render(label)
		}
		return r.styles.Link.Render(label) + " " + r.styles.LinkURL.Render("("+target+")")
	})

	return text
}

// isPageLink reports whether target points at another page of the same
// collective rather than an external resource.
func isPageLink(target string) bool {
	if strings.Contains(target, "://") || strings.HasPrefix(target, "mailto:") {
		return false
	}
	path, _, _ := strings.Cut(target, "?")
	path, _, _ = strings.Cut(path, "#")
	return strings.HasSuffix(path, ".md")
}

func (r *Renderer) renderCodeBlock(lang string, lines []string) string {
	block := r.styles.CodeBlock.Render(strings.Join(lines, "\n"))
	if lang == "" {
		return block
	}
	return r.styles.CodeLang.Render(lang) + "\n" + block
}

func (r *Renderer) renderCallout(kind string, lines []string) string {
	return r.styles.callout(kind).Render(strings.Join(lines, "\n"))
}
