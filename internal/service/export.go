package service

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/capitalize-ai/finsight/internal/model"
)

const reportHeader = "FinSight AI Report\n==================\n\n"

// RenderTranscript renders msgs as a flat text report. Each message is its
// upper-cased role and its content, or the answer reasoning when the content
// is empty. It returns "" for an empty list.
func RenderTranscript(msgs []model.Message) string {
	if len(msgs) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(reportHeader)
	for _, m := range msgs {
		body := m.Content
		if body == "" && m.Answer != nil {
			body = m.Answer.Reasoning
		}
		fmt.Fprintf(&b, "[%s]: %s\n\n", strings.ToUpper(string(m.Role)), body)
	}
	return b.String()
}

// ExportTranscript renders the live message buffer. ok is false when it is empty.
func (s *ConversationService) ExportTranscript() (report string, ok bool) {
	report = RenderTranscript(s.Messages())
	return report, report != ""
}

// ReportFileName names a report written at t.
func ReportFileName(t time.Time) string {
	ts := t.UTC().Format("2006-01-02T15-04-05.000Z")
	return "Report_" + ts + ".txt"
}

// Exporter writes transcripts into a directory.
type Exporter struct {
	dir string
	now func() time.Time
}

// NewExporter creates an exporter writing into dir.
func NewExporter(dir string) *Exporter {
	return &Exporter{dir: dir, now: time.Now}
}

// Dir returns the directory reports are written to.
func (e *Exporter) Dir() string { return e.dir }

// Export writes the active transcript of svc and returns the file path.
// It returns "" without writing when there is nothing to export.
func (e *Exporter) Export(svc *ConversationService) (string, error) {
	report, ok := svc.ExportTranscript()
	if !ok {
		return "", nil
	}

	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}

	path := filepath.Join(e.dir, ReportFileName(e.now()))
	if err := os.WriteFile(path, []byte(report), 0o644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	return path, nil
}
