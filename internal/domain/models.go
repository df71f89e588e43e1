package domain

import (
	"sort"
	"strings"
)

const (
	MarkdownExtension = ".md"
	MainPageFile      = "Readme.md"
)

type Credential struct {
	Server      string `json:"server"`
	Username    string `json:"username"`
	AccessToken string `json:"access_token"`
}

type Collective struct {
	Name  string
	Emoji string
}

type Page struct {
	IsMainPage bool
	Name       string
	Path       string
}

// CollectivePages maps every known collective to its pages in server order.
type CollectivePages map[Collective][]Page

type UsersAndGroups struct {
	Users  []string
	Groups []string
}

type ShareType int

const (
	ShareTypeUser  ShareType = 0
	ShareTypeGroup ShareType = 1
)

// SharePermission is the capability set granted by a share.
type SharePermission int

const (
	PermissionRead SharePermission = 1 << iota
	PermissionUpdate
	PermissionCreate
	PermissionDelete
	PermissionShare
)

const PermissionAll = PermissionRead | PermissionUpdate | PermissionCreate | PermissionDelete | PermissionShare

func (p SharePermission) Has(flag SharePermission) bool {
	return p&flag == flag
}

func IsMarkdownFile(file string) bool {
	return strings.HasSuffix(file, MarkdownExtension)
}

// NewPage builds the page for a markdown file listed inside a collective.
func NewPage(collective, file string) Page {
	return Page{
		IsMainPage: strings.EqualFold(file, MainPageFile),
		Name:       strings.TrimSuffix(file, MarkdownExtension),
		Path:       collective + "/" + file,
	}
}

// PagePath returns the collective-relative path of a page with the given base name.
func PagePath(collective, name string) string {
	return collective + "/" + name + MarkdownExtension
}

// SortPages returns a copy ordered with the main page first, then by name ignoring case.
func SortPages(pages []Page) []Page {
	sorted := make([]Page, len(pages))
	copy(sorted, pages)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].IsMainPage != sorted[j].IsMainPage {
			return sorted[i].IsMainPage
		}
		return strings.ToLower(sorted[i].Name) < strings.ToLower(sorted[j].Name)
	})
	return sorted
}

// SortCollectives returns the collectives of pages ordered by name ignoring case.
func SortCollectives(pages CollectivePages) []Collective {
	collectives := make([]Collective, 0, len(pages))
	for collective := range pages {
		collectives = append(collectives, collective)
	}
	sort.Slice(collectives, func(i, j int) bool {
		a, b := strings.ToLower(collectives[i].Name), strings.ToLower(collectives[j].Name)
		if a != b {
			return a < b
		}
		return collectives[i].Name < collectives[j].Name
	})
	return collectives
}
