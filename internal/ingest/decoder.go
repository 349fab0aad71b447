// Package ingest streams ticker ingestion jobs from the analysis backend.
//
// The backend answers POST /api/add_ticker with newline-delimited JSON. Each
// line is one StreamEvent; the job ends with a single success or error event.
package ingest

import (
	"bytes"

	"go.uber.org/zap"

	"github.com/capitalize-ai/finsight/internal/model"
	"github.com/capitalize-ai/finsight/pkg/logger"
	"github.com/capitalize-ai/finsight/pkg/metrics"
)

// Decoder turns arbitrarily chunked NDJSON into events.
// A line is decoded only after its terminating newline arrives, so the
// output does not depend on where the transport splits the bytes.
type Decoder struct {
	buf    []byte
	logger *logger.Logger
}

// NewDecoder creates a decoder with an empty buffer.
func NewDecoder(log *logger.Logger) *Decoder {
	return &Decoder{logger: log}
}

// Feed appends chunk to the buffer and returns every event completed by it.
func (d *Decoder) Feed(chunk []byte) []model.StreamEvent {
	d.buf = append(d.buf, chunk...)

	var events []model.StreamEvent
	for {
		i := bytes.IndexByte(d.buf, '\n')
		if i < 0 {
			break
		}
		line := d.buf[:i]
		if ev, ok := d.decodeLine(line); ok {
			events = append(events, ev)
		}
		d.buf = d.buf[i+1:]
	}

	if len(d.buf) == 0 {
		d.buf = nil
	}
	return events
}

// Flush decodes whatever is left in the buffer as a final line.
func (d *Decoder) Flush() []model.StreamEvent {
	rest := d.buf
	d.buf = nil
	if ev, ok := d.decodeLine(rest); ok {
		return []model.StreamEvent{ev}
	}
	return nil
}

// Buffered reports how many bytes are waiting for a terminator.
func (d *Decoder) Buffered() int {
	return len(d.buf)
}

func (d *Decoder) decodeLine(line []byte) (model.StreamEvent, bool) {
	line = bytes.TrimSuffix(line, []byte{'\r'})
	if len(bytes.TrimSpace(line)) == 0 {
		return nil, false
	}

	ev, err := model.DecodeStreamEvent(line)
	if err != nil {
		metrics.IngestLinesSkipped.Inc()
		d.logger.Warn("skipping malformed stream line",
			zap.Int("bytes", len(line)),
			zap.Error(err),
		)
		return nil, false
	}

	metrics.IngestEventsTotal.WithLabelValues(string(ev.EventType())).Inc()
	return ev, true
}
