// Package message defines the clipkeep control protocol.
//
// All messages are newline-delimited JSON. Image payloads are base64-encoded
// so that binary content is safe to embed in JSON strings. Each message is
// exactly one line: <json>\n
//
// A client sends one request and reads one response with the same Type, except
// WATCH, after which the server streams EVENT messages until the connection
// closes.
package message

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"go.klb.dev/clipkeep/internal/hotkey"
	"go.klb.dev/clipkeep/internal/item"
	"go.klb.dev/clipkeep/internal/logging"
	"go.klb.dev/clipkeep/internal/notify"
	"go.klb.dev/clipkeep/internal/settings"
)

// Type identifies the kind of message.
type Type string

const (
	TypeHistory            Type = "HISTORY"
	TypePaste              Type = "PASTE"
	TypeClear              Type = "CLEAR"
	TypeStatus             Type = "STATUS"
	TypeLogs               Type = "LOGS"
	TypeCheckPermissions   Type = "CHECK_PERMISSIONS"
	TypeRequestPermissions Type = "REQUEST_PERMISSIONS"
	TypeActivate           Type = "ACTIVATE"
	TypeAutoLaunch         Type = "AUTOLAUNCH"
	TypeStartMonitoring    Type = "START_MONITORING"
	TypeStopMonitoring     Type = "STOP_MONITORING"
	TypeSettings           Type = "SETTINGS"
	TypeSaveSettings       Type = "SAVE_SETTINGS"
	TypeKey                Type = "KEY"
	TypeMenu               Type = "MENU"
	TypeWatch              Type = "WATCH"
	TypeEvent              Type = "EVENT"
	TypeError              Type = "ERROR"
)

// Item is a history entry on the wire. Exactly one of Text, Data or Paths is
// set, according to Kind.
type Item struct {
	ID      string    `json:"id"`
	Kind    string    `json:"kind"`
	Time    time.Time `json:"time"`
	Preview string    `json:"preview"`

	Text string `json:"text,omitempty"`

	Data   string `json:"data,omitempty"` // base64-encoded
	Format string `json:"format,omitempty"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`

	Paths []string `json:"paths,omitempty"`
}

// PreviewLen is the rune limit of Item.Preview.
const PreviewLen = 80

// NewItem converts a history item. Image bytes are included only when
// withData is set.
func NewItem(it item.Item, withData bool) Item {
	out := Item{
		ID:      it.ID(),
		Kind:    it.Kind().Name(),
		Time:    it.Timestamp(),
		Preview: item.Preview(it.Kind(), PreviewLen),
	}
	item.Match(it.Kind(),
		func(t item.Text) struct{} {
			out.Text = t.Value
			return struct{}{}
		},
		func(img item.Image) struct{} {
			out.Format, out.Width, out.Height = img.Format, img.Width, img.Height
			if withData {
				out.Data = base64.StdEncoding.EncodeToString(img.Data)
			}
			return struct{}{}
		},
		func(f item.FileList) struct{} {
			out.Paths = f.Paths
			return struct{}{}
		},
		func(item.Unknown) struct{} { return struct{}{} },
	)
	return out
}

// Status is the engine state carried in STATUS responses.
type Status struct {
	Phase             string            `json:"phase"`
	Message           string            `json:"message,omitempty"`
	PermissionGranted bool              `json:"permission_granted"`
	Monitoring        bool              `json:"monitoring"`
	HistoryLen        int               `json:"history_len"`
	Hotkeys           []string          `json:"hotkeys,omitempty"`
	Settings          settings.Settings `json:"settings"`
	Backend           string            `json:"backend"`
	Subscribers       int               `json:"subscribers"`
	FirstRun          bool              `json:"first_run,omitempty"`
	StartedAt         time.Time         `json:"started_at"`
}

// Message is the top-level wire envelope.
type Message struct {
	// Always present
	Type Type `json:"type"`

	// PASTE: history index. HISTORY: include image bytes
	Index int  `json:"index,omitempty"`
	Full  bool `json:"full,omitempty"`

	// START_MONITORING
	Force bool `json:"force,omitempty"`

	// AUTOLAUNCH
	Enabled bool `json:"enabled,omitempty"`

	// SETTINGS: nil in a request means "read only"
	Settings *settings.Settings `json:"settings,omitempty"`

	// KEY
	Key *hotkey.Event `json:"key,omitempty"`
	// MENU: combo string, e.g. "ctrl+shift+v"
	Combo string `json:"combo,omitempty"`

	// Responses
	OK       bool            `json:"ok,omitempty"`
	Consumed bool            `json:"consumed,omitempty"`
	Items    []Item          `json:"items,omitempty"`
	Status   *Status         `json:"status,omitempty"`
	Logs     []logging.Entry `json:"logs,omitempty"`
	Event    *notify.Event   `json:"event,omitempty"`

	// ERROR, or any response that failed
	Error string `json:"error,omitempty"`
}

// Encode serialises the message to JSON without a trailing newline.
func (m *Message) Encode() ([]byte, error) {
	return json.Marshal(m)
}

// Decode deserialises a message from raw JSON bytes.
func Decode(b []byte) (*Message, error) {
	var m Message
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("message decode: %w", err)
	}
	return &m, nil
}

// Reply returns a successful response to m.
func (m *Message) Reply() *Message {
	return &Message{Type: m.Type, OK: true}
}

// Fail returns an error response to m.
func (m *Message) Fail(err error) *Message {
	return &Message{Type: m.Type, Error: err.Error()}
}

// Err converts an error response back into an error.
func (m *Message) Err() error {
	if m.Error == "" {
		return nil
	}
	return fmt.Errorf("%s: %s", m.Type, m.Error)
}
