// Package cache keeps the last fetched collective listing in memory so pages
// can be shown without another round trip.
package cache

import (
	"strings"
	"sync"
	"sync/atomic"

	"github.com/johanforsgren/mantella/internal/domain"
	"github.com/johanforsgren/mantella/internal/logger"
	"github.com/johanforsgren/mantella/internal/provider/common"
)

// PageCache holds an immutable snapshot of collective pages. Readers load the
// current snapshot without locking; writers build a new map and publish it
// in a single pointer swap. A nil snapshot means nothing has been loaded.
type PageCache struct {
	snapshot atomic.Pointer[domain.CollectivePages]
	writeMu  sync.Mutex
}

func NewPageCache() *PageCache {
	return &PageCache{}
}

// ReplaceAll installs a copy of pages as the new snapshot.
func (c *PageCache) ReplaceAll(pages domain.CollectivePages) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	next := clone(pages)
	c.snapshot.Store(&next)
	logger.Log("Cache: Loaded %d collectives", len(next))
}

// AppendPage adds page to the collective named exactly collectiveName. It is a
// no-op when the cache is empty or the collective is unknown.
func (c *PageCache) AppendPage(collectiveName string, page domain.Page) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	current := c.snapshot.Load()
	if current == nil {
		return
	}

	for collective, pages := range *current {
		if collective.Name != collectiveName {
			continue
		}
		next := clone(*current)
		updated := make([]domain.Page, len(pages), len(pages)+1)
		copy(updated, pages)
		next[collective] = append(updated, page)
		c.snapshot.Store(&next)
		return
	}
}

// RemovePages drops every page whose path is listed. Collectives left without
// pages are removed from the snapshot; the rest are untouched.
func (c *PageCache) RemovePages(paths []string) {
	if len(paths) == 0 {
		return
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	current := c.snapshot.Load()
	if current == nil {
		return
	}

	targets := make(map[string]map[string]struct{})
	for _, path := range paths {
		name := common.CollectiveOf(path)
		if targets[name] == nil {
			targets[name] = make(map[string]struct{})
		}
		targets[name][path] = struct{}{}
	}

	next := make(domain.CollectivePages, len(*current))
	changed := false
	for collective, pages := range *current {
		remove, ok := targets[collective.Name]
		if !ok {
			next[collective] = pages
			continue
		}

		kept := make([]domain.Page, 0, len(pages))
		for _, page := range pages {
			if _, drop := remove[page.Path]; !drop {
				kept = append(kept, page)
			}
		}

		switch {
		case len(kept) == 0:
			changed = true
		case len(kept) != len(pages):
			next[collective] = kept
			changed = true
		default:
			next[collective] = pages
		}
	}

	if changed {
		c.snapshot.Store(&next)
	}
}

// PagesFor returns the pages of the collective matching name, ignoring case.
// An unloaded cache and an unknown collective both yield an empty slice.
func (c *PageCache) PagesFor(name string) []domain.Page {
	current := c.snapshot.Load()
	if current == nil {
		return []domain.Page{}
	}

	for collective, pages := range *current {
		if strings.EqualFold(collective.Name, name) {
			out := make([]domain.Page, len(pages))
			copy(out, pages)
			return out
		}
	}
	return []domain.Page{}
}

// CollectiveNamesLowercased returns the trimmed, lowercased names of all
// cached collectives.
func (c *PageCache) CollectiveNamesLowercased() map[string]struct{} {
	names := make(map[string]struct{})
	current := c.snapshot.Load()
	if current == nil {
		return names
	}
	for collective := range *current {
		names[strings.ToLower(strings.TrimSpace(collective.Name))] = struct{}{}
	}
	return names
}

func (c *PageCache) Loaded() bool {
	return c.snapshot.Load() != nil
}

// Snapshot returns a deep copy of the cached mapping, or nil when unloaded.
func (c *PageCache) Snapshot() domain.CollectivePages {
	current := c.snapshot.Load()
	if current == nil {
		return nil
	}
	return clone(*current)
}

func (c *PageCache) Invalidate() {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	c.snapshot.Store(nil)
	logger.Log("Cache: Invalidated")
}

func clone(pages domain.CollectivePages) domain.CollectivePages {
	out := make(domain.CollectivePages, len(pages))
	for collective, list := range pages {
		copied := make([]domain.Page, len(list))
		copy(copied, list)
		out[collective] = copied
	}
	return out
}
