package export

import (
	"context"
	"fmt"
)

// PageFunc runs one bounded query and returns at most limit rows starting at
// offset, in the store's stable order.
type PageFunc func(ctx context.Context, limit, offset int) ([]ExportRow, error)

// PageStats counts the work a paginated fetch did.
type PageStats struct {
	Queries int
	Rows    int
}

// FetchPages walks the result set page by page, handing every non-empty page
// to onPage in order. The offset advances by the length of the page actually
// returned, and the walk stops at the first empty page, so a short page is
// not taken as the end.
//
// pageSize < 1 fails with *ConfigurationError before any query is issued.
// Pages are independent queries: rows inserted or deleted between them can
// shift the window.
func FetchPages(ctx context.Context, fetch PageFunc, pageSize int, onPage func([]ExportRow) error) (PageStats, error) {
	var stats PageStats
	if pageSize < 1 {
		return stats, &ConfigurationError{Field: "page_size", Value: pageSize, Reason: "must be at least 1"}
	}

	offset := 0
	for {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		page, err := fetch(ctx, pageSize, offset)
		stats.Queries++
		pageQueries.Inc()
		if err != nil {
			return stats, fmt.Errorf("fetch page at offset %d: %w", offset, err)
		}
		if len(page) == 0 {
			return stats, nil
		}

		if err := onPage(page); err != nil {
			return stats, err
		}
		offset += len(page)
		stats.Rows += len(page)
	}
}

// FetchAllPages concatenates every page in order.
func FetchAllPages(ctx context.Context, fetch PageFunc, pageSize int) ([]ExportRow, PageStats, error) {
	var all []ExportRow
	stats, err := FetchPages(ctx, fetch, pageSize, func(page []ExportRow) error {
		all = append(all, page...)
		return nil
	})
	if err != nil {
		return nil, stats, err
	}
	return all, stats, nil
}
