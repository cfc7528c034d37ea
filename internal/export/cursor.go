package export

// cursor.go wraps a forward-only result cursor in a single-pass sequence.
//
// The sequence is the only owner of its cursor. Release happens exactly once,
// on whichever comes first:
//
//   - HasNext finding no further row (natural exhaustion)
//   - an explicit Close
//   - the garbage collector reclaiming a sequence nobody closed
//
// The last path exists so an abandoned sequence eventually gives its
// connection back. It runs at an unspecified time and must never be relied
// on by a consumption path; every strategy closes explicitly.

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"runtime"

	"github.com/JonMunkholm/petclinic-export/internal/logging"
)

// Cursor is a forward-only, single-pass handle over a query result, such as
// pgx.Rows or *sql.Rows behind an adapter. Close must be safe to call on an
// already exhausted cursor.
type Cursor interface {
	RowView
	Next() bool
	Err() error
	Close() error
}

type releaseReason string

const (
	releaseExhausted releaseReason = "exhausted"
	releaseClosed    releaseReason = "closed"
	releaseAbandoned releaseReason = "abandoned"
)

// CursorSequence is a lazy, finite, non-restartable sequence of ExportRows
// read from a Cursor. It is not safe for concurrent use.
type CursorSequence struct {
	cursor Cursor
	mapper RecordMapper
	logger *slog.Logger

	rowNum   int  // rows handed out by Next
	ready    bool // HasNext advanced the cursor and Next has not consumed it
	released bool
	err      error // cursor error observed at exhaustion

	cleanup runtime.Cleanup
}

// abandonedCursor is the state the GC cleanup needs. It must not point back
// at the sequence, or the sequence would never become unreachable.
type abandonedCursor struct {
	cursor Cursor
	logger *slog.Logger
}

// NewCursorSequence takes ownership of cursor. The caller must not touch
// cursor afterwards.
func NewCursorSequence(ctx context.Context, cursor Cursor, mapper RecordMapper) *CursorSequence {
	logger := logging.FromContext(ctx)
	s := &CursorSequence{
		cursor: cursor,
		mapper: mapper,
		logger: logger,
	}
	s.cleanup = runtime.AddCleanup(s, releaseAbandonedCursor, abandonedCursor{cursor: cursor, logger: logger})
	return s
}

func releaseAbandonedCursor(a abandonedCursor) {
	cursorReleases.WithLabelValues(string(releaseAbandoned)).Inc()
	if err := a.cursor.Close(); err != nil {
		cursorReleaseErrors.Inc()
		a.logger.Warn("abandoned cursor release failed", "error", err)
		return
	}
	a.logger.Warn("cursor released by garbage collector; a sequence was never closed")
}

// HasNext advances the cursor to the next row. It returns false, releasing
// the cursor, the first time no row is left. Repeated calls without Next do
// not advance further.
func (s *CursorSequence) HasNext() bool {
	if s.released {
		return false
	}
	if s.ready {
		return true
	}
	if !s.cursor.Next() {
		s.err = s.cursor.Err()
		s.release(releaseExhausted)
		return false
	}
	s.ready = true
	return true
}

// Next maps and returns the row HasNext advanced to. Without a preceding
// successful HasNext it fails with ErrIllegalState. Mapper failures are
// returned as *MappingError.
func (s *CursorSequence) Next() (ExportRow, error) {
	if !s.ready {
		return nil, fmt.Errorf("%w: Next called without a successful HasNext", ErrIllegalState)
	}
	s.ready = false
	n := s.rowNum
	s.rowNum++

	row, err := s.mapper(s.cursor, n)
	if err != nil {
		var me *MappingError
		if !errors.As(err, &me) {
			err = &MappingError{Row: n, Err: err}
		}
		return nil, err
	}
	return row, nil
}

// Err returns the store error, if any, that ended iteration early.
func (s *CursorSequence) Err() error {
	return s.err
}

// Close releases the cursor. It is idempotent: once released, by exhaustion
// or an earlier Close, it returns nil without touching the cursor again.
// A failed release is returned as *ResourceReleaseError and logged.
func (s *CursorSequence) Close() error {
	if s.released {
		return nil
	}
	return s.release(releaseClosed)
}

// Released reports whether the cursor has been given back.
func (s *CursorSequence) Released() bool {
	return s.released
}

// Position is the number of rows handed out so far.
func (s *CursorSequence) Position() int {
	return s.rowNum
}

func (s *CursorSequence) release(reason releaseReason) error {
	s.released = true
	s.ready = false
	s.cleanup.Stop()

	cursorReleases.WithLabelValues(string(reason)).Inc()
	if err := s.cursor.Close(); err != nil {
		cursorReleaseErrors.Inc()
		s.logger.Warn("cursor release failed",
			"reason", reason,
			"rows", s.rowNum,
			"error", err,
		)
		return &ResourceReleaseError{Err: err}
	}
	return nil
}

// All returns the sequence as a range-over-func iterator. The cursor is
// closed on every exit: exhaustion, a mapping error, a store error, or the
// caller breaking out of the loop.
func (s *CursorSequence) All() iter.Seq2[ExportRow, error] {
	return func(yield func(ExportRow, error) bool) {
		defer s.Close()
		for s.HasNext() {
			row, err := s.Next()
			if !yield(row, err) || err != nil {
				return
			}
		}
		if err := s.Err(); err != nil {
			yield(nil, err)
		}
	}
}
