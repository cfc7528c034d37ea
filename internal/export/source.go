package export

import (
	"context"
	"fmt"
)

// Store runs the pet-owner projection and hands back a cursor over it. Rows
// come in a stable order (owner last name, first name, owner id, pet id) so
// that paging by offset is deterministic. QueryPage applies LIMIT/OFFSET in
// the same order.
type Store interface {
	Query(ctx context.Context) (Cursor, error)
	QueryPage(ctx context.Context, limit, offset int) (Cursor, error)
}

// Source is the record DAO: it pairs a Store with the mapper of a Layout.
type Source struct {
	store  Store
	layout Layout
	mapper RecordMapper
}

// NewSource returns a Source mapping store rows onto layout.
func NewSource(store Store, layout Layout) *Source {
	return &Source{
		store:  store,
		layout: layout,
		mapper: NewMapper(layout),
	}
}

// Layout returns the column layout rows are mapped to.
func (s *Source) Layout() Layout {
	return s.layout
}

// Open starts an unbounded query and returns its lazy sequence. The caller
// owns the sequence and must consume or close it.
func (s *Source) Open(ctx context.Context) (*CursorSequence, error) {
	cur, err := s.store.Query(ctx)
	if err != nil {
		return nil, fmt.Errorf("query pets: %w", err)
	}
	return NewCursorSequence(ctx, cur, s.mapper), nil
}

// Fetch materializes the whole result set.
func (s *Source) Fetch(ctx context.Context) ([]ExportRow, error) {
	seq, err := s.Open(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := Collect(seq.All())
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// FetchPage materializes at most limit rows starting at offset.
func (s *Source) FetchPage(ctx context.Context, limit, offset int) ([]ExportRow, error) {
	if limit < 1 {
		return nil, &ConfigurationError{Field: "limit", Value: limit, Reason: "must be at least 1"}
	}
	if offset < 0 {
		return nil, &ConfigurationError{Field: "offset", Value: offset, Reason: "must not be negative"}
	}
	cur, err := s.store.QueryPage(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("query pets page: %w", err)
	}
	rows, err := Collect(NewCursorSequence(ctx, cur, s.mapper).All())
	if err != nil {
		return nil, err
	}
	return rows, nil
}
