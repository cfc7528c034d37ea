package export

import "fmt"

// Reduce drains seq through transform into collector. Rows are folded in
// cursor order; the cursor is released on every exit.
//
// On the first mapping, transform or store error it stops and returns the
// partial result built from the rows folded so far together with the error.
// A release failure after a complete fold is logged by the sequence and does
// not fail the reduction.
func Reduce[F, A, D any](seq *CursorSequence, transform func(ExportRow) (F, error), collector Collector[F, A, D]) (D, error) {
	defer seq.Close()

	acc := collector.Supply()
	for seq.HasNext() {
		row, err := seq.Next()
		if err != nil {
			return collector.finish(acc), err
		}
		v, err := transform(row)
		if err != nil {
			return collector.finish(acc), fmt.Errorf("transform row %d: %w", seq.Position()-1, err)
		}
		acc = collector.Accumulate(acc, v)
	}
	if err := seq.Err(); err != nil {
		return collector.finish(acc), fmt.Errorf("read cursor: %w", err)
	}
	return collector.finish(acc), nil
}
