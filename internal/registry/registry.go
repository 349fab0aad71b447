// Package registry tracks the documents in scope for the current conversation.
package registry

import (
	"sync"

	"github.com/capitalize-ai/finsight/internal/model"
)

// Placement decides where incoming documents go relative to the current ones.
type Placement int

const (
	// PlaceFront puts incoming documents ahead of the current ones.
	PlaceFront Placement = iota
	// PlaceBack appends incoming documents after the current ones.
	PlaceBack
)

// MergeDocuments combines current and incoming into a list with one entry per
// (ticker, doc) key. Each key keeps the position of its first occurrence in the
// combined order and the fields of the most recently inserted entry (incoming
// beats current, later incoming beats earlier). The status is the maximum over
// every contributing entry, so an active document is never downgraded to idle.
func MergeDocuments(current, incoming []model.ActiveDocument, placement Placement) []model.ActiveDocument {
	combined := make([]model.ActiveDocument, 0, len(current)+len(incoming))
	if placement == PlaceFront {
		combined = append(combined, incoming...)
		combined = append(combined, current...)
	} else {
		combined = append(combined, current...)
		combined = append(combined, incoming...)
	}

	// Rank by recency of insertion: current entries are older than incoming ones.
	recency := func(i int) int {
		if placement == PlaceFront {
			if i < len(incoming) {
				return len(current) + i
			}
			return i - len(incoming)
		}
		return i
	}

	type slot struct {
		doc     model.ActiveDocument
		recency int
		status  model.DocumentStatus
	}

	slots := make(map[model.DocumentKey]*slot, len(combined))
	order := make([]model.DocumentKey, 0, len(combined))

	for i, doc := range combined {
		key := doc.Key()
		r := recency(i)
		s, ok := slots[key]
		if !ok {
			slots[key] = &slot{doc: doc, recency: r, status: doc.Status}
			order = append(order, key)
			continue
		}
		s.status = model.MaxStatus(s.status, doc.Status)
		if r > s.recency {
			s.doc = doc
			s.recency = r
		}
	}

	out := make([]model.ActiveDocument, 0, len(order))
	for _, key := range order {
		s := slots[key]
		doc := s.doc
		doc.Status = s.status
		out = append(out, doc)
	}
	return out
}

// Registry holds the active documents and the optional ticker focus.
type Registry struct {
	docs  []model.ActiveDocument
	focus string
	mu    sync.RWMutex
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{}
}

// Merge folds incoming documents into the registry.
func (r *Registry) Merge(incoming []model.ActiveDocument, placement Placement) []model.ActiveDocument {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.docs = MergeDocuments(r.docs, incoming, placement)
	return cloneDocs(r.docs)
}

// Replace clears the registry and merges docs into it.
func (r *Registry) Replace(docs []model.ActiveDocument) []model.ActiveDocument {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.docs = MergeDocuments(nil, docs, PlaceBack)
	return cloneDocs(r.docs)
}

// Clear empties the registry. The focus is left alone.
func (r *Registry) Clear() {
	r.mu.Lock()
	r.docs = nil
	r.mu.Unlock()
}

// Documents returns a snapshot of the active documents.
func (r *Registry) Documents() []model.ActiveDocument {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return cloneDocs(r.docs)
}

// Len returns the number of documents.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.docs)
}

// SelectFocus sets the ticker the next analysis is scoped to. Empty clears it.
func (r *Registry) SelectFocus(ticker string) {
	r.mu.Lock()
	r.focus = ticker
	r.mu.Unlock()
}

// Focus returns the current ticker focus, or "" when unset.
func (r *Registry) Focus() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.focus
}

func cloneDocs(docs []model.ActiveDocument) []model.ActiveDocument {
	out := make([]model.ActiveDocument, len(docs))
	copy(out, docs)
	return out
}
