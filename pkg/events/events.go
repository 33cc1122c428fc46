// Package events defines the progress-channel protocol used by the skein
// conversion stream: one JSON-encoded Event per line, UTF-8, no other framing.
//
// The producer writes events in emission order and closes the stream after
// the final event (progress 100 or error). The consumer must tolerate a
// message split across delivery chunks, and must skip — not abort on — an
// individually unparseable line.
package events

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Event is one message on the progress channel. Any subset of Progress,
// Status and Content may co-occur. Error is terminal: no further events
// follow it, and it never co-occurs with the other fields.
type Event struct {
	Progress *int   `json:"progress,omitempty"`
	Status   string `json:"status,omitempty"`
	Content  string `json:"content,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Terminal reports whether no events may follow this one.
func (e Event) Terminal() bool {
	return e.Error != "" || (e.Progress != nil && *e.Progress >= 100)
}

// Progress returns an event carrying only a progress value.
func Progress(pct int) Event {
	return Event{Progress: &pct}
}

// StatusProgress returns an event carrying a status line and a progress value.
func StatusProgress(status string, pct int) Event {
	return Event{Status: status, Progress: &pct}
}

// Content returns an event carrying a chunk of the artifact, the progress
// reached after the chunk, and a status line.
func Content(chunk, status string, pct int) Event {
	return Event{Content: chunk, Status: status, Progress: &pct}
}

// Errorf returns a terminal error event.
func Errorf(format string, args ...any) Event {
	return Event{Error: fmt.Sprintf(format, args...)}
}

// Encoder writes events to a byte stream, one JSON object per line.
type Encoder struct {
	w io.Writer
}

// NewEncoder creates an Encoder writing to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

// Encode writes a single event followed by a newline.
func (e *Encoder) Encode(ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	data = append(data, '\n')
	if _, err := e.w.Write(data); err != nil {
		return fmt.Errorf("write event: %w", err)
	}
	return nil
}

// Decoder reads events from a byte stream. The stream is reassembled into
// lines regardless of how the transport chunked it; a line that fails to
// parse is logged and skipped rather than failing the stream.
type Decoder struct {
	r   *bufio.Reader
	log *slog.Logger
}

// NewDecoder creates a Decoder reading from r. Decode failures on individual
// lines are logged at warn level on log.
func NewDecoder(r io.Reader, log *slog.Logger) *Decoder {
	return &Decoder{r: bufio.NewReader(r), log: log}
}

// Next returns the next parseable event. It returns io.EOF once the stream
// is exhausted.
func (d *Decoder) Next() (Event, error) {
	for {
		line, err := d.r.ReadString('\n')
		line = strings.TrimSuffix(line, "\n")
		if line == "" {
			if err != nil {
				return Event{}, io.EOF
			}
			continue
		}

		var ev Event
		if jsonErr := json.Unmarshal([]byte(line), &ev); jsonErr != nil {
			d.log.Warn("skipping undecodable event line", "error", jsonErr)
			if err != nil {
				return Event{}, io.EOF
			}
			continue
		}
		return ev, nil
	}
}

// Collector accumulates a decoded event stream into the final artifact,
// tracking the last progress and status seen and any terminal error.
type Collector struct {
	artifact strings.Builder

	Progress int
	Status   string
	Err      string
}

// Observe folds one event into the collector state.
func (c *Collector) Observe(ev Event) {
	if ev.Error != "" {
		c.Err = ev.Error
		return
	}
	if ev.Progress != nil {
		c.Progress = *ev.Progress
	}
	if ev.Status != "" {
		c.Status = ev.Status
	}
	c.artifact.WriteString(ev.Content)
}

// Artifact returns the concatenation of all content chunks observed so far.
// When Err is set the artifact is incomplete and should be treated as invalid.
func (c *Collector) Artifact() string {
	return c.artifact.String()
}

// Collect drains dec into a Collector. It stops at end of stream or after a
// terminal error event.
func Collect(dec *Decoder) (*Collector, error) {
	var c Collector
	for {
		ev, err := dec.Next()
		if err == io.EOF {
			return &c, nil
		}
		if err != nil {
			return &c, err
		}
		c.Observe(ev)
		if ev.Error != "" {
			return &c, nil
		}
	}
}
