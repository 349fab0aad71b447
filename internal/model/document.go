package model

import (
	"fmt"
)

// DocumentStatus is the liveness status of an active document.
type DocumentStatus string

const (
	DocumentIdle   DocumentStatus = "idle"
	DocumentActive DocumentStatus = "active"
)

// Rank orders statuses so that active outranks idle.
func (s DocumentStatus) Rank() int {
	if s == DocumentActive {
		return 1
	}
	return 0
}

// MaxStatus returns the higher-ranked of two statuses.
func MaxStatus(a, b DocumentStatus) DocumentStatus {
	if b.Rank() > a.Rank() {
		return b
	}
	return a
}

// ActiveDocument is a filing currently in scope for retrieval.
type ActiveDocument struct {
	Ticker string         `json:"ticker"`
	Name   string         `json:"name"`
	Doc    string         `json:"doc"`
	Status DocumentStatus `json:"status"`
}

// DocumentKey is the uniqueness key of an ActiveDocument.
type DocumentKey struct {
	Ticker string
	Doc    string
}

// Key returns the uniqueness key of the document.
func (d ActiveDocument) Key() DocumentKey {
	return DocumentKey{Ticker: d.Ticker, Doc: d.Doc}
}

// DocumentFromSource builds an active document for a source card of an answer.
func DocumentFromSource(src SourceCard) ActiveDocument {
	ticker := src.Ticker
	if ticker == "" {
		ticker = "DOC"
	}
	name := src.Company
	if name == "" {
		name = "Unknown Company"
	}
	return ActiveDocument{
		Ticker: ticker,
		Name:   name,
		Doc:    fmt.Sprintf("%s %d", src.DocType, src.Year),
		Status: DocumentActive,
	}
}

// DocumentsFromSources maps every source card to an active document.
func DocumentsFromSources(sources []SourceCard) []ActiveDocument {
	docs := make([]ActiveDocument, 0, len(sources))
	for _, src := range sources {
		docs = append(docs, DocumentFromSource(src))
	}
	return docs
}

// DocumentsFromIngestion maps the years reported by a finished ingestion to idle 10-K documents.
func DocumentsFromIngestion(ev *SuccessEvent) []ActiveDocument {
	name := ev.Company
	if name == "" {
		name = ev.Ticker
	}
	docs := make([]ActiveDocument, 0, len(ev.Years))
	for _, year := range ev.Years {
		docs = append(docs, ActiveDocument{
			Ticker: ev.Ticker,
			Name:   name,
			Doc:    "10-K " + year,
			Status: DocumentIdle,
		})
	}
	return docs
}

// DocumentsResponse is the response for listing active documents.
type DocumentsResponse struct {
	Documents []ActiveDocument `json:"documents"`
	Focus     string           `json:"focus,omitempty"`
}

// FocusRequest sets or clears the ticker focus.
type FocusRequest struct {
	Ticker string `json:"ticker"`
}
