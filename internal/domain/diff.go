package domain

// DiffLineType classifies one line of a page diff.
type DiffLineType string

const (
	DiffContext DiffLineType = "context"
	DiffAdd     DiffLineType = "add"
	DiffDelete  DiffLineType = "delete"
)

// DiffLine is one line of a page diff. OldLine and NewLine are 1-based and
// zero when the line does not exist on that side.
type DiffLine struct {
	Type    DiffLineType
	Content string
	OldLine int
	NewLine int
}

type PageDiff struct {
	Path  string
	Lines []DiffLine
}

func (d PageDiff) Changed() bool {
	for _, line := range d.Lines {
		if line.Type != DiffContext {
			return true
		}
	}
	return false
}

// Stats counts added and deleted lines.
func (d PageDiff) Stats() (added, deleted int) {
	for _, line := range d.Lines {
		switch line.Type {
		case DiffAdd:
			added++
		case DiffDelete:
			deleted++
		}
	}
	return added, deleted
}
