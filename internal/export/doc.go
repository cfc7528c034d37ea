// Package export turns the owner and pet projection of the clinic database into CSV
// exports.
//
// This package holds the export pipeline independent of HTTP or any particular
// database driver. Web handlers and the petexport CLI both drive it through
// [Exporter].
//
// # Pipeline
//
// A record store hands out forward-only cursors ([Cursor]). Rows flow through:
//
//	Store -> Cursor -> RecordMapper -> CursorSequence -> strategy -> CSV sink
//
// [CursorSequence] owns the cursor. It releases it exactly once: on exhaustion,
// on [CursorSequence.Close], or, when a caller abandons the sequence without
// closing it, whenever the garbage collector reclaims the sequence.
//
// # Strategies
//
//   - [StrategyFull]: materialize every row with one query, then write.
//   - [StrategyPaginated]: re-query in LIMIT/OFFSET windows until an empty page.
//   - [StrategyStream]: fold a single lazy cursor through [Reduce] with a counting
//     collector without materializing the result set.
//   - [StrategyBroken]: applies [Map] to the lazy sequence and never consumes it.
//     It writes the header only and leaves the cursor open. Kept on purpose as a
//     reproduction of the lazy-transform-without-terminal-operation mistake.
//
// Every strategy assembles the whole CSV body in memory and writes it to the
// destination only after the last row, so a failed export never yields a
// truncated file.
//
// # Error Codes
//
// Technical errors are mapped to support codes by [MapError]:
//
//   - EXP001: a row could not be mapped ([MappingError])
//   - EXP002: invalid export configuration ([ConfigurationError])
//   - EXP003: cursor release failed ([ResourceReleaseError])
//   - EXP004: too many exports running ([ErrTooManyExports])
//   - DB004, DB006: store connectivity and timeouts
//   - REQ001, REQ002: request cancelled or deadline exceeded
//
// # Pagination Caveat
//
// LIMIT/OFFSET pagination is not a stable cursor. Rows inserted or deleted
// between page queries shift the window, so the paginated strategy may skip
// or repeat rows under concurrent writes. A stable paginated export needs a
// keyset query, which this package does not implement.
package export
