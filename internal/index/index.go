// Package index provides an in-memory substring search index over recipe
// names and cuisines.
//
// The index is a derived projection of the store: Rebuild replaces the whole
// content from a full snapshot, and readers never observe a half-rebuilt
// state because a freshly built snapshot is swapped in atomically.
package index

import (
	"strings"
	"sync/atomic"

	"github.com/starford/ladle/internal/models"
)

// RecipeIndex defines the interface for recipe search operations. Consumers
// should depend on this interface rather than the concrete *Index type to
// facilitate testing with fakes.
type RecipeIndex interface {
	Rebuild(recipes []models.Recipe)
	Search(query string) []int64
}

// Verify *Index satisfies RecipeIndex at compile time.
var _ RecipeIndex = (*Index)(nil)

type entry struct {
	id      int64
	name    string // lowercased
	cuisine string // lowercased
}

type snapshot struct {
	entries []entry
}

// Index holds the current search snapshot.
type Index struct {
	snap atomic.Pointer[snapshot]
}

// New returns an empty index.
func New() *Index {
	ix := &Index{}
	ix.snap.Store(&snapshot{})
	return ix
}

// Rebuild replaces the entire index content from a full snapshot of the
// store. Entries keep the input order, so identical inputs yield identical
// search results.
func (ix *Index) Rebuild(recipes []models.Recipe) {
	next := &snapshot{entries: make([]entry, len(recipes))}
	for i, r := range recipes {
		next.entries[i] = entry{
			id:      r.ID,
			name:    strings.ToLower(r.Name),
			cuisine: strings.ToLower(r.Cuisine),
		}
	}
	ix.snap.Store(next)
}

// Search returns the ids of recipes whose name or cuisine contains the
// query, case-insensitively. One entry exists per id, so results are
// deduplicated by construction. An empty query matches nothing.
func (ix *Index) Search(query string) []int64 {
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return nil
	}
	snap := ix.snap.Load()
	var ids []int64
	for _, e := range snap.entries {
		if strings.Contains(e.name, needle) || strings.Contains(e.cuisine, needle) {
			ids = append(ids, e.id)
		}
	}
	return ids
}

// Len returns the number of indexed recipes.
func (ix *Index) Len() int {
	return len(ix.snap.Load().entries)
}
