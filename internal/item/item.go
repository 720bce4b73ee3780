// Package item defines clipboard history entries and the closed set of
// content kinds they can carry.
//
// Kind is a sealed interface: only Text, Image, FileList and Unknown satisfy
// it. Code that needs to branch on the kind goes through Match, whose
// signature names every variant, so adding a kind breaks every call site at
// compile time instead of falling into a silent default branch.
package item

import (
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
)

// Kind is the payload of a clipboard item.
type Kind interface {
	// Name returns a short lower-case label for logs and the control protocol.
	Name() string
	sealed()
}

// Text is a plain-text payload.
type Text struct {
	Value string
}

// Image is a raw bitmap payload plus its pixel dimensions.
type Image struct {
	Data   []byte
	Format string
	Width  int
	Height int
}

// FileList is an ordered list of absolute file paths.
type FileList struct {
	Paths []string
}

// Unknown marks clipboard content that could not be classified.
type Unknown struct{}

func (Text) Name() string     { return "text" }
func (Image) Name() string    { return "image" }
func (FileList) Name() string { return "files" }
func (Unknown) Name() string  { return "unknown" }

func (Text) sealed()     {}
func (Image) sealed()    {}
func (FileList) sealed() {}
func (Unknown) sealed()  {}

// Match calls the function for k's variant and returns its result.
func Match[T any](
	k Kind,
	text func(Text) T,
	image func(Image) T,
	files func(FileList) T,
	unknown func(Unknown) T,
) T {
	switch v := k.(type) {
	case Text:
		return text(v)
	case Image:
		return image(v)
	case FileList:
		return files(v)
	case Unknown:
		return unknown(v)
	default:
		panic(fmt.Sprintf("item: unexpected kind %T", k))
	}
}

// Duplicate reports whether b repeats a under the per-kind equality rule.
// Kinds never match across variants.
//
// Images compare by pixel dimensions only. Two different pictures of the same
// size are therefore treated as duplicates; this is a known approximation.
func Duplicate(a, b Kind) bool {
	return Match(a,
		func(t Text) bool {
			o, ok := b.(Text)
			return ok && o.Value == t.Value
		},
		func(i Image) bool {
			o, ok := b.(Image)
			return ok && o.Width == i.Width && o.Height == i.Height
		},
		func(f FileList) bool {
			o, ok := b.(FileList)
			return ok && slices.Equal(o.Paths, f.Paths)
		},
		func(Unknown) bool {
			_, ok := b.(Unknown)
			return ok
		},
	)
}

// Item is one entry of the clipboard history. It is immutable once built;
// callers must not modify the slices reachable through Kind.
type Item struct {
	id   string
	kind Kind
	at   time.Time
}

// New wraps k in an Item with a fresh random ID. Slices inside k are copied.
func New(k Kind, at time.Time) Item {
	return Item{id: uuid.NewString(), kind: clone(k), at: at}
}

// ID returns the item's unique identifier.
func (it Item) ID() string { return it.id }

// Kind returns the item's payload.
func (it Item) Kind() Kind { return it.kind }

// Timestamp returns the instant the item was captured.
func (it Item) Timestamp() time.Time { return it.at }

func clone(k Kind) Kind {
	return Match(k,
		func(t Text) Kind { return t },
		func(i Image) Kind {
			i.Data = slices.Clone(i.Data)
			return i
		},
		func(f FileList) Kind { return FileList{Paths: slices.Clone(f.Paths)} },
		func(u Unknown) Kind { return u },
	)
}
