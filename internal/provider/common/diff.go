package common

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/johanforsgren/mantella/internal/domain"
)

// DiffPage compares two versions of a page line by line.
func DiffPage(path, oldText, newText string) domain.PageDiff {
	dmp := diffmatchpatch.New()
	oldChars, newChars, lines := dmp.DiffLinesToChars(oldText, newText)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(oldChars, newChars, false), lines)

	result := domain.PageDiff{Path: path, Lines: []domain.DiffLine{}}
	oldLine, newLine := 1, 1

	for _, d := range diffs {
		for _, content := range splitLines(d.Text) {
			line := domain.DiffLine{Content: content}
			switch d.Type {
			case diffmatchpatch.DiffInsert:
				line.Type = domain.DiffAdd
				line.NewLine = newLine
				newLine++
			case diffmatchpatch.DiffDelete:
				line.Type = domain.DiffDelete
				line.OldLine = oldLine
				oldLine++
			default:
				line.Type = domain.DiffContext
				line.OldLine = oldLine
				line.NewLine = newLine
				oldLine++
				newLine++
			}
			result.Lines = append(result.Lines, line)
		}
	}

	return result
}

// splitLines splits text into lines without their terminators. A trailing
// newline does not start another line.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	parts := strings.SplitAfter(text, "\n")
	if parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	for i, part := range parts {
		parts[i] = strings.TrimSuffix(part, "\n")
	}
	return parts
}
