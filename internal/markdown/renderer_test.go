package markdown

import (
	"strings"
	"testing"
)

func TestRenderer_EmptyText(t *testing.T) {
	r := NewRenderer(DefaultStyles())
	result := r.Render("")

	if result != "" {
		t.Errorf("expected empty string, got %q", result)
	}
}

func TestRenderer_PlainText(t *testing.T) {
	r := NewRenderer(DefaultStyles())
	result := r.Render("Hello world")

	if !strings.Contains(result, "Hello world") {
		t.Error("expected result to contain 'Hello world'")
	}
}

func TestRenderer_Headings(t *testing.T) {
	r := NewRenderer(DefaultStyles())

	tests := []struct {
		input    string
		contains string
	}{
		{"# Heading 1", "Heading 1"},
		{"## Heading 2", "Heading 2"},
		{"### Heading 3", "Heading 3"},
		{"###### Heading 6", "Heading 6"},
	}

	for _, tt := range tests {
		result := r.Render(tt.input)
		if !strings.Contains(result, tt.contains) {
			t.Errorf("expected result to contain %q for input %q", tt.contains, tt.input)
		}
		if strings.Contains(result, "#") {
			t.Errorf("expected # to be stripped from %q, got %q", tt.input, result)
		}
	}
}

func TestParseHeading(t *testing.T) {
	tests := []struct {
		input     string
		wantLevel int
		wantOK    bool
	}{
		{"# Title", 1, true},
		{"### Title", 3, true},
		{"#hashtag", 0, false},
		{"#", 0, false},
		{"####### too deep", 0, false},
		{"plain", 0, false},
	}

	for _, tt := range tests {
		level, _, ok := parseHeading(tt.input)
		if ok != tt.wantOK || level != tt.wantLevel {
			t.Errorf("parseHeading(%q) = %d, %v; want %d, %v", tt.input, level, ok, tt.wantLevel, tt.wantOK)
		}
	}
}

func TestRenderer_BulletList(t *testing.T) {
	r := NewRenderer(DefaultStyles())

	tests := []struct {
		input    string
		contains string
	}{
		{"- Item one", "Item one"},
		{"* Item two", "Item two"},
		{"+ Item three", "Item three"},
	}

	for _, tt := range tests {
		result := r.Render(tt.input)
		if !strings.Contains(result, tt.contains) {
			t.Errorf("expected result to contain %q for input %q", tt.contains, tt.input)
		}
		if !strings.Contains(result, "•") {
			t.Errorf("expected bullet character for input %q", tt.input)
		}
	}
}

func TestRenderer_NestedList(t *testing.T) {
	r := NewRenderer(DefaultStyles())
	result := r.Render("- parent\n    - child")

	lines := strings.Split(result, "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if !strings.HasPrefix(lines[1], "    ") {
		t.Errorf("expected nested item to stay indented, got %q", lines[1])
	}
}

func TestRenderer_NumberedList(t *testing.T) {
	r := NewRenderer(DefaultStyles())
	result := r.Render("1. First item\n2) Second item\n3. Third item")

	if !strings.Contains(result, "First item") {
		t.Error("expected result to contain 'First item'")
	}
	if !strings.Contains(result, "1.") || !strings.Contains(result, "2.") {
		t.Error("expected result to contain normalized numbers")
	}
}

func TestRenderer_TaskList(t *testing.T) {
	r := NewRenderer(DefaultStyles())
	result := r.Render("- [ ] write agenda\n- [x] book room")

	if !strings.Contains(result, "☐") || !strings.Contains(result, "☑") {
		t.Errorf("expected open and done boxes, got %q", result)
	}
	if strings.Contains(result, "[ ]") || strings.Contains(result, "[x]") {
		t.Error("expected task markers to be replaced")
	}
	if strings.Contains(result, "•") {
		t.Error("task items should not render as plain bullets")
	}
}

func TestRenderer_HorizontalRule(t *testing.T) {
	r := NewRenderer(DefaultStyles())
	r.SetWidth(40)

	tests := []string{"---", "***", "___", "----", "- - -"}

	for _, input := range tests {
		result := r.Render(input)
		if !strings.Contains(result, "─") {
			t.Errorf("expected horizontal rule for input %q, got %q", input, result)
		}
	}
}

func TestRenderer_InlineStyles(t *testing.T) {
	r := NewRenderer(DefaultStyles())

	tests := []struct {
		input    string
		contains string
		stripped string
	}{
		{"This is **bold** text", "bold", "**"},
		{"This is *italic* text", "italic", "*italic*"},
		{"This is ***bold italic*** text", "bold italic", "***"},
		{"This is ~~gone~~ text", "gone", "~~"},
		{"Use `code` here", "code", "`code`"},
	}

	for _, tt := range tests {
		result := r.Render(tt.input)
		if !strings.Contains(result, tt.contains) {
			t.Errorf("expected %q in result for input %q", tt.contains, tt.input)
		}
		if strings.Contains(result, tt.stripped) {
			t.Errorf("expected %q to be stripped from input %q", tt.stripped, tt.input)
		}
	}
}

func TestRenderer_CodeBlock(t *testing.T) {
	r := NewRenderer(DefaultStyles())
	input := "```go\nfunc main() {\n    fmt.Println(\"**not bold**\")\n}\n```"
	result := r.Render(input)

	if !strings.Contains(result, "func main()") {
		t.Error("expected result to contain code block content")
	}
	if !strings.Contains(result, "**not bold**") {
		t.Error("expected code block content to stay verbatim")
	}
	if !strings.Contains(result, "go") {
		t.Error("expected language label")
	}
	if strings.Contains(result, "```") {
		t.Error("expected ``` to be stripped")
	}
}

func TestRenderer_UnterminatedCodeBlock(t *testing.T) {
	r := NewRenderer(DefaultStyles())
	result := r.Render("```\nstill code")

	if !strings.Contains(result, "still code") {
		t.Error("expected unterminated code block to be rendered")
	}
}

func TestRenderer_Links(t *testing.T) {
	r := NewRenderer(DefaultStyles())

	external := r.Render("Check out [this link](https://example.com)")
	if !strings.Contains(external, "this link") || !strings.Contains(external, "example.com") {
		t.Errorf("expected link text and URL, got %q", external)
	}

	page := r.Render("See [Onboarding](Onboarding.md#first-day)")
	if !strings.Contains(page, "Onboarding") {
		t.Error("expected page link text")
	}
	if strings.Contains(page, "Onboarding.md") {
		t.Errorf("expected page link target to be hidden, got %q", page)
	}
}

func TestIsPageLink(t *testing.T) {
	tests := []struct {
		target string
		want   bool
	}{
		{"Page.md", true},
		{"../Other/Readme.md?fileId=12", true},
		{"Page.md#section", true},
		{"https://example.com/file.md", false},
		{"mailto:team@example.com", false},
		{"image.png", false},
	}

	for _, tt := range tests {
		if got := isPageLink(tt.target); got != tt.want {
			t.Errorf("isPageLink(%q) = %v, want %v", tt.target, got, tt.want)
		}
	}
}

func TestRenderer_Blockquote(t *testing.T) {
	r := NewRenderer(DefaultStyles())
	result := r.Render("> This is a quote")

	if !strings.Contains(result, "This is a quote") {
		t.Error("expected result to contain quote text")
	}
}

func TestRenderer_Callout(t *testing.T) {
	r := NewRenderer(DefaultStyles())
	result := r.Render("::: warn\nBack up **first**\n:::\nafter")

	if strings.Contains(result, ":::") || strings.Contains(result, "warn") {
		t.Errorf("expected callout fences to be stripped, got %q", result)
	}
	if !strings.Contains(result, "Back up") || !strings.Contains(result, "first") {
		t.Error("expected callout body")
	}
	if !strings.Contains(result, "after") {
		t.Error("expected text after the callout")
	}
}

func TestRenderer_Table(t *testing.T) {
	r := NewRenderer(DefaultStyles())
	result := r.Render("| Name | Role |\n| --- | :---: |\n| Ana | **Lead** |")

	for _, want := range []string{"Name", "Role", "Ana", "Lead", "│", "─"} {
		if !strings.Contains(result, want) {
			t.Errorf("expected %q in rendered table, got %q", want, result)
		}
	}
	if strings.Contains(result, "---") {
		t.Error("expected separator row to be replaced")
	}
}

func TestRenderer_MixedContent(t *testing.T) {
	r := NewRenderer(DefaultStyles())
	input := `# Title

This is a **description** with some *emphasis*.

## Features

- Feature one
- Feature two
- Feature three

---

Check the [docs](https://docs.example.com) for more info.`

	result := r.Render(input)

	checks := []string{
		"Title",
		"description",
		"emphasis",
		"Features",
		"Feature one",
		"•",
		"─",
		"docs",
	}

	for _, check := range checks {
		if !strings.Contains(result, check) {
			t.Errorf("expected result to contain %q", check)
		}
	}
}

func TestRenderer_SetWidth(t *testing.T) {
	r := NewRenderer(DefaultStyles())
	r.SetWidth(50)

	result := r.Render("---")

	runeCount := strings.Count(result, "─")
	if runeCount != 46 {
		t.Errorf("expected horizontal rule of 46 chars, got %d", runeCount)
	}

	r.SetWidth(5)
	if got := strings.Count(r.Render("---"), "─"); got != 46 {
		t.Errorf("expected tiny widths to be ignored, got rule of %d chars", got)
	}
}

func TestDefaultStyles_ReturnsValidStyles(t *testing.T) {
	styles := DefaultStyles()

	testText := "test"
	if styles.heading(1).Render(testText) == "" {
		t.Error("expected heading style to render text")
	}
	if styles.heading(6).Render(testText) == "" {
		t.Error("expected deep headings to fall back to the last style")
	}
	if styles.Text.Render(testText) == "" {
		t.Error("expected Text style to render text")
	}
	if styles.callout("unknown").Render(testText) == "" {
		t.Error("expected unknown callouts to fall back to info")
	}
}
