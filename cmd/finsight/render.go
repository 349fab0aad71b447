package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/capitalize-ai/finsight/internal/model"
)

// printMessage writes an agent or user message in a terminal friendly layout.
func printMessage(w io.Writer, m model.Message) {
	if m.Role == model.RoleUser {
		fmt.Fprintf(w, "you> %s\n", m.Content)
		return
	}

	if m.Answer == nil {
		fmt.Fprintf(w, "agent> %s\n\n", m.Content)
		return
	}

	a := m.Answer
	if a.MainMetric != nil {
		fmt.Fprintf(w, "  %s: %s", a.MainMetric.Label, a.MainMetric.Value)
		if a.MainMetric.Change != nil {
			fmt.Fprintf(w, " (%+.1f%%)", *a.MainMetric.Change)
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "agent> %s\n", a.Reasoning)

	if a.Sentiment != nil {
		fmt.Fprintf(w, "  sentiment: %s (%.2f)", a.Sentiment.Label, a.Sentiment.Score)
		if len(a.Sentiment.Factors) > 0 {
			fmt.Fprintf(w, " - %s", strings.Join(a.Sentiment.Factors, "; "))
		}
		fmt.Fprintln(w)
	}

	if a.ChartData != nil && len(a.ChartData.Data) > 0 {
		fmt.Fprintf(w, "  %s\n", a.ChartData.Title)
		for _, p := range a.ChartData.Data {
			fmt.Fprintf(w, "    %-12s %12.2f\n", p.Label, p.Value)
		}
	}

	for i, src := range a.Sources {
		fmt.Fprintf(w, "  [%d] %s %s %d", i+1, src.Ticker, src.DocType, src.Year)
		if src.Page > 0 {
			fmt.Fprintf(w, " p.%d", src.Page)
		}
		fmt.Fprintf(w, " (%.0f%%)\n", src.Confidence*100)
	}
	fmt.Fprintln(w)
}

// printEvent writes one ingestion progress line.
func printEvent(w io.Writer, ev model.StreamEvent) {
	switch e := ev.(type) {
	case *model.SuccessEvent:
		fmt.Fprintf(w, "  done: %s (%s)\n", e.Message, strings.Join(e.Years, ", "))
	case *model.ErrorEvent:
		fmt.Fprintf(w, "  error: %s\n", e.Message)
	default:
		fmt.Fprintf(w, "  %s\n", ev.Text())
	}
}

// printDocuments writes the registry with the focused ticker marked.
func printDocuments(w io.Writer, docs []model.ActiveDocument, focus string) {
	if len(docs) == 0 {
		fmt.Fprintln(w, "no active documents")
		return
	}
	for _, d := range docs {
		marker := " "
		if d.Ticker == focus {
			marker = "*"
		}
		fmt.Fprintf(w, "%s %-6s %-28s %-10s %s\n", marker, d.Ticker, d.Name, d.Doc, d.Status)
	}
}

// printSessions writes the history list, newest first.
func printSessions(w io.Writer, sessions []model.SessionSummary) {
	if len(sessions) == 0 {
		fmt.Fprintln(w, "no saved sessions")
		return
	}
	for _, s := range sessions {
		marker := " "
		if s.Active {
			marker = "*"
		}
		fmt.Fprintf(w, "%s %s  %-12s  %3d  %s\n", marker, s.ID, s.Date, s.MessageCount, s.Title)
	}
}
