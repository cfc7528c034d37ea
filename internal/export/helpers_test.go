package export

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

var (
	testExportDate = time.Date(2024, 3, 9, 14, 30, 5, 0, time.UTC)
	errStore       = errors.New("store: connection reset by peer")
)

// petRow builds one raw result row in the column order of NewLayout(true).
func petRow(first, last, pet string) []any {
	return []any{
		first, last, "110 W. Liberty St.", "Madison", "6085551023",
		pet, "cat", time.Date(2020, 9, 7, 0, 0, 0, 0, time.UTC), testExportDate,
	}
}

func petRows(n int) [][]any {
	rows := make([][]any, n)
	for i := range rows {
		rows[i] = petRow("George", "Franklin", string(rune('A'+i%26))+"leo")
	}
	return rows
}

// fakeCursor serves rows from memory and records how it was released.
type fakeCursor struct {
	cols     []string
	rows     [][]any
	pos      int
	err      error // reported by Err once rows run out
	closeErr error

	closes atomic.Int32
}

func newFakeCursor(rows [][]any) *fakeCursor {
	return &fakeCursor{cols: NewLayout(true).Names(), rows: rows, pos: -1}
}

func (c *fakeCursor) Columns() []string { return c.cols }

func (c *fakeCursor) Values() ([]any, error) {
	if c.pos < 0 || c.pos >= len(c.rows) {
		return nil, errors.New("no current row")
	}
	return c.rows[c.pos], nil
}

func (c *fakeCursor) Next() bool {
	if c.closes.Load() > 0 || c.pos+1 >= len(c.rows) {
		return false
	}
	c.pos++
	return true
}

func (c *fakeCursor) Err() error { return c.err }

func (c *fakeCursor) Close() error {
	c.closes.Add(1)
	return c.closeErr
}

// fakeStore serves the same rows for full and paged queries.
type fakeStore struct {
	rows     [][]any
	queryErr error

	mu      sync.Mutex
	queries int
	offsets []int
	cursors []*fakeCursor
}

func (s *fakeStore) Query(ctx context.Context) (Cursor, error) {
	return s.open(s.rows)
}

func (s *fakeStore) QueryPage(ctx context.Context, limit, offset int) (Cursor, error) {
	s.mu.Lock()
	s.offsets = append(s.offsets, offset)
	s.mu.Unlock()

	start := min(offset, len(s.rows))
	end := min(offset+limit, len(s.rows))
	return s.open(s.rows[start:end])
}

func (s *fakeStore) open(rows [][]any) (Cursor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries++
	if s.queryErr != nil {
		return nil, s.queryErr
	}
	c := newFakeCursor(rows)
	s.cursors = append(s.cursors, c)
	return c, nil
}

func (s *fakeStore) queryCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queries
}

// openCursors counts cursors handed out and never closed.
func (s *fakeStore) openCursors() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.cursors {
		if c.closes.Load() == 0 {
			n++
		}
	}
	return n
}

// countingThrottle records waits without sleeping.
type countingThrottle struct {
	waits atomic.Int64
}

func (t *countingThrottle) Wait(ctx context.Context) error {
	t.waits.Add(1)
	return ctx.Err()
}
