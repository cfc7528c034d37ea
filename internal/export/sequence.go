package export

import (
	"iter"
	"strings"
)

// Map lazily applies fn to every element of seq. Building the mapped
// sequence runs nothing: fn is not called and the source is not advanced or
// released until the result is ranged over. The first error ends iteration.
func Map[T, F any](seq iter.Seq2[T, error], fn func(T) (F, error)) iter.Seq2[F, error] {
	return func(yield func(F, error) bool) {
		for v, err := range seq {
			if err != nil {
				var zero F
				yield(zero, err)
				return
			}
			out, err := fn(v)
			if !yield(out, err) || err != nil {
				return
			}
		}
	}
}

// Collect drains seq into a slice. On error it returns the elements read so
// far together with the error.
func Collect[T any](seq iter.Seq2[T, error]) ([]T, error) {
	var out []T
	for v, err := range seq {
		if err != nil {
			return out, err
		}
		out = append(out, v)
	}
	return out, nil
}

// Collector is an associative fold: Supply creates the accumulator,
// Accumulate folds one element in, Finish turns the accumulator into the
// result. A nil Finish requires A and D to be the same type.
type Collector[F, A, D any] struct {
	Supply     func() A
	Accumulate func(acc A, v F) A
	Finish     func(acc A) D
}

func (c Collector[F, A, D]) finish(acc A) D {
	if c.Finish == nil {
		return any(acc).(D)
	}
	return c.Finish(acc)
}

// Counting counts folded elements.
func Counting[F any]() Collector[F, int64, int64] {
	return Collector[F, int64, int64]{
		Supply:     func() int64 { return 0 },
		Accumulate: func(n int64, _ F) int64 { return n + 1 },
	}
}

// ToSlice collects folded elements in order.
func ToSlice[F any]() Collector[F, []F, []F] {
	return Collector[F, []F, []F]{
		Supply:     func() []F { return nil },
		Accumulate: func(acc []F, v F) []F { return append(acc, v) },
	}
}

// Joining concatenates folded strings with sep.
func Joining(sep string) Collector[string, []string, string] {
	return Collector[string, []string, string]{
		Supply:     func() []string { return nil },
		Accumulate: func(acc []string, v string) []string { return append(acc, v) },
		Finish:     func(acc []string) string { return strings.Join(acc, sep) },
	}
}
