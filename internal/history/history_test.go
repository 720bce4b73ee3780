package history

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.klb.dev/clipkeep/internal/item"
)

func text(s string) item.Item { return item.New(item.Text{Value: s}, time.Now()) }

func texts(s *Store) []string {
	var out []string
	for _, it := range s.Snapshot() {
		out = append(out, it.Kind().(item.Text).Value)
	}
	return out
}

func TestAddBoundedLength(t *testing.T) {
	t.Parallel()

	const max = 5
	s := New()
	for count := 1; count <= 12; count++ {
		require.Equal(t, Added, s.Add(text(fmt.Sprint(count)), max))
		if count <= max {
			assert.Equal(t, count, s.Len())
		} else {
			assert.Equal(t, max, s.Len())
		}
		front, ok := s.At(0)
		require.True(t, ok)
		assert.Equal(t, fmt.Sprint(count), front.Kind().(item.Text).Value)
	}
	assert.Equal(t, []string{"12", "11", "10", "9", "8"}, texts(s))
}

func TestAddEvictsOldest(t *testing.T) {
	t.Parallel()

	s := New()
	for _, v := range []string{"a", "b", "c", "d"} {
		s.Add(text(v), 3)
	}
	assert.Equal(t, []string{"d", "c", "b"}, texts(s))
}

func TestAddConsecutiveDuplicateText(t *testing.T) {
	t.Parallel()

	s := New()
	assert.Equal(t, Added, s.Add(text("same"), 10))
	assert.Equal(t, Duplicate, s.Add(text("same"), 10))
	assert.Equal(t, 1, s.Len())

	// Only the front item is compared.
	assert.Equal(t, Added, s.Add(text("other"), 10))
	assert.Equal(t, Added, s.Add(text("same"), 10))
	assert.Equal(t, []string{"same", "other", "same"}, texts(s))
}

func TestAddImageSameDimensionsIsDuplicate(t *testing.T) {
	t.Parallel()

	s := New()
	first := item.New(item.Image{Data: []byte{1, 2, 3}, Width: 100, Height: 100}, time.Now())
	second := item.New(item.Image{Data: []byte{9, 9, 9}, Width: 100, Height: 100}, time.Now())

	assert.Equal(t, Added, s.Add(first, 10))
	assert.Equal(t, Duplicate, s.Add(second, 10))
	assert.Equal(t, 1, s.Len())
}

func TestAddRejectsUnknownAndRepeatedID(t *testing.T) {
	t.Parallel()

	s := New()
	assert.Equal(t, Rejected, s.Add(item.New(item.Unknown{}, time.Now()), 10))
	assert.Equal(t, 0, s.Len())

	it := text("x")
	assert.Equal(t, Added, s.Add(it, 10))
	s.Add(text("y"), 10)
	assert.Equal(t, Rejected, s.Add(it, 10))
	assert.Equal(t, 2, s.Len())
}

func TestTruncateAndClear(t *testing.T) {
	t.Parallel()

	s := New()
	for _, v := range []string{"a", "b", "c", "d"} {
		s.Add(text(v), 10)
	}
	assert.Equal(t, 2, s.Truncate(2))
	assert.Equal(t, []string{"d", "c"}, texts(s))
	assert.Equal(t, 0, s.Truncate(0))

	s.Clear()
	assert.Equal(t, 0, s.Len())
	_, ok := s.At(0)
	assert.False(t, ok)
}

func TestSnapshotIsIndependent(t *testing.T) {
	t.Parallel()

	s := New()
	s.Add(text("a"), 10)
	snap := s.Snapshot()
	s.Add(text("b"), 10)
	s.Clear()

	require.Len(t, snap, 1)
	assert.Equal(t, "a", snap[0].Kind().(item.Text).Value)
}

func TestAtBounds(t *testing.T) {
	t.Parallel()

	s := New()
	s.Add(text("a"), 10)
	for _, i := range []int{-1, 1, 100} {
		_, ok := s.At(i)
		assert.False(t, ok, "index %d", i)
	}
}
