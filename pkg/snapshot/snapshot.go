// Package snapshot captures a Form as plain data and encodes it as JSON or
// MessagePack.
package snapshot

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/goliatone/go-formstate/pkg/form"
)

// ErrUnknownFormat is returned for encodings other than json and msgpack.
var ErrUnknownFormat = errors.New("snapshot: unknown format")

// maxAttempts bounds the retries used to line field projections up with the
// form state while other goroutines keep committing.
const maxAttempts = 5

// Snapshot is a point-in-time copy of a form.
type Snapshot struct {
	Form    string               `json:"form,omitempty" msgpack:"form,omitempty"`
	State   form.State           `json:"state" msgpack:"state"`
	Fields  []form.FieldSnapshot `json:"fields,omitempty" msgpack:"fields,omitempty"`
	TakenAt time.Time            `json:"takenAt" msgpack:"takenAt"`
}

// Option configures Take.
type Option func(*options)

type options struct {
	name   string
	fields []string
	now    func() time.Time
}

// WithName labels the snapshot.
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// WithFields adds field projections for names, in order.
func WithFields(names ...string) Option {
	return func(o *options) {
		o.fields = append(o.fields, names...)
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// Take copies the form state and the requested field projections. Field
// projections belong to the same version as the state unless the form kept
// changing across every attempt.
func Take(f *form.Form, opts ...Option) Snapshot {
	cfg := options{now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	var snap Snapshot
	for attempt := 0; attempt < maxAttempts; attempt++ {
		snap = Snapshot{Form: cfg.name, State: f.State()}
		if len(cfg.fields) > 0 {
			snap.Fields = make([]form.FieldSnapshot, 0, len(cfg.fields))
			for _, name := range cfg.fields {
				snap.Fields = append(snap.Fields, f.Field(name).Snapshot())
			}
		}
		if f.Version() == snap.State.Version {
			break
		}
	}
	snap.TakenAt = cfg.now().UTC()
	return snap
}

// Format selects an encoding.
type Format string

const (
	FormatJSON    Format = "json"
	FormatMsgpack Format = "msgpack"
)

// ParseFormat accepts "json", "msgpack" and "mp" case-insensitively.
func ParseFormat(value string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "json":
		return FormatJSON, nil
	case "msgpack", "mp":
		return FormatMsgpack, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, value)
	}
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	switch f {
	case FormatMsgpack:
		return "application/msgpack"
	default:
		return "application/json"
	}
}

// Marshal encodes s.
func Marshal(s Snapshot, format Format) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, s, format); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Encode writes s to w. JSON output is indented.
func Encode(w io.Writer, s Snapshot, format Format) error {
	switch format {
	case FormatJSON, "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(s); err != nil {
			return fmt.Errorf("snapshot: encode json: %w", err)
		}
		return nil
	case FormatMsgpack:
		enc := msgpack.NewEncoder(w)
		if err := enc.Encode(s); err != nil {
			return fmt.Errorf("snapshot: encode msgpack: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// Unmarshal decodes data produced by Marshal. MessagePack integers inside
// values decode as int64/uint64.
func Unmarshal(data []byte, format Format) (Snapshot, error) {
	var s Snapshot
	switch format {
	case FormatJSON, "":
		if err := json.Unmarshal(data, &s); err != nil {
			return Snapshot{}, fmt.Errorf("snapshot: decode json: %w", err)
		}
	case FormatMsgpack:
		dec := msgpack.NewDecoder(bytes.NewReader(data))
		dec.UseLooseInterfaceDecoding(true)
		if err := dec.Decode(&s); err != nil {
			return Snapshot{}, fmt.Errorf("snapshot: decode msgpack: %w", err)
		}
	default:
		return Snapshot{}, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	return s, nil
}
