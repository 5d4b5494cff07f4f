package tracking

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Track is a recorded pointer session that can be replayed offline.
type Track struct {
	ID     uuid.UUID
	Width  int
	Height int
	Events []Event
}

func NewTrack(width, height int) *Track {
	return &Track{
		ID:     uuid.New(),
		Width:  width,
		Height: height,
	}
}

func (t *Track) Add(e Event) {
	t.Events = append(t.Events, e)
}

// Duration is the timestamp of the last event.
func (t *Track) Duration() time.Duration {
	if len(t.Events) == 0 {
		return 0
	}
	return t.Events[len(t.Events)-1].At
}

type trackFile struct {
	ID     string      `json:"id"`
	Width  int         `json:"width"`
	Height int         `json:"height"`
	Events []eventLine `json:"events"`
}

type eventLine struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	AtMS float64 `json:"at_ms"`
	Kind string  `json:"kind,omitempty"`
}

func (t *Track) Encode(w io.Writer) error {
	f := trackFile{
		ID:     t.ID.String(),
		Width:  t.Width,
		Height: t.Height,
		Events: make([]eventLine, len(t.Events)),
	}
	for i, e := range t.Events {
		f.Events[i] = eventLine{
			X:    e.X,
			Y:    e.Y,
			AtMS: float64(e.At) / float64(time.Millisecond),
		}
		if e.Kind != EventMove {
			f.Events[i].Kind = e.Kind.String()
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(&f); err != nil {
		return fmt.Errorf("failed to encode track: %w", err)
	}
	return nil
}

// DecodeTrack reads a track and orders its events by time.
func DecodeTrack(r io.Reader) (*Track, error) {
	var f trackFile
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to decode track: %w", err)
	}
	id, err := uuid.Parse(f.ID)
	if err != nil {
		id = uuid.New()
	}
	t := &Track{
		ID:     id,
		Width:  f.Width,
		Height: f.Height,
		Events: make([]Event, 0, len(f.Events)),
	}
	for i, l := range f.Events {
		e := Event{
			X:  l.X,
			Y:  l.Y,
			At: time.Duration(l.AtMS * float64(time.Millisecond)),
		}
		switch l.Kind {
		case "", "move":
			e.Kind = EventMove
		case "leave":
			e.Kind = EventLeave
		default:
			return nil, fmt.Errorf("event %d: unknown kind %q", i, l.Kind)
		}
		t.Events = append(t.Events, e)
	}
	sort.SliceStable(t.Events, func(i, j int) bool {
		return t.Events[i].At < t.Events[j].At
	})
	return t, nil
}

func SaveTrack(path string, t *Track) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create track directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create track file: %w", err)
	}
	if err := t.Encode(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func LoadTrack(path string) (*Track, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open track file: %w", err)
	}
	defer f.Close()
	return DecodeTrack(f)
}

// Cursor walks a track in time order.
type Cursor struct {
	events []Event
	next   int
}

func (t *Track) Cursor() *Cursor {
	return &Cursor{events: t.Events}
}

// Until returns the events with At <= now that have not been returned yet.
func (c *Cursor) Until(now time.Duration) []Event {
	start := c.next
	for c.next < len(c.events) && c.events[c.next].At <= now {
		c.next++
	}
	return c.events[start:c.next]
}

func (c *Cursor) Done() bool { return c.next >= len(c.events) }
