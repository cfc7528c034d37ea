package export

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/petclinic-export/internal/logging"
)

// Strategy selects how rows travel from the store to the CSV body.
type Strategy string

const (
	// StrategyFull loads every row into memory, then writes them.
	StrategyFull Strategy = "full"
	// StrategyPaginated issues bounded LIMIT/OFFSET queries until an empty page.
	StrategyPaginated Strategy = "paginated"
	// StrategyStream reduces a live cursor into the sink with a counting collector.
	StrategyStream Strategy = "stream"
	// StrategyBroken builds a lazy mapping over a live cursor and never runs it.
	// Only the header is written and the cursor is left to the garbage collector.
	StrategyBroken Strategy = "broken"
)

// Strategies lists every strategy in display order.
func Strategies() []Strategy {
	return []Strategy{StrategyFull, StrategyPaginated, StrategyStream, StrategyBroken}
}

// ParseStrategy validates a strategy name.
func ParseStrategy(s string) (Strategy, error) {
	for _, st := range Strategies() {
		if string(st) == s {
			return st, nil
		}
	}
	return "", &ConfigurationError{Field: "strategy", Value: s, Reason: "unknown strategy"}
}

// Options configure an Exporter.
type Options struct {
	PageSize int      // rows per query for StrategyPaginated, must be >= 1
	Throttle Throttle // paces every written row; nil means NoDelay
}

// Exporter runs export strategies over one Source.
type Exporter struct {
	source   *Source
	pageSize int
	throttle Throttle
}

// NewExporter validates opts and returns an Exporter.
func NewExporter(source *Source, opts Options) (*Exporter, error) {
	if opts.PageSize < 1 {
		return nil, &ConfigurationError{Field: "page_size", Value: opts.PageSize, Reason: "must be at least 1"}
	}
	if opts.Throttle == nil {
		opts.Throttle = NoDelay
	}
	return &Exporter{
		source:   source,
		pageSize: opts.PageSize,
		throttle: opts.Throttle,
	}, nil
}

// Layout returns the column layout exports are written in.
func (e *Exporter) Layout() Layout {
	return e.source.Layout()
}

// Summary describes one finished export run.
type Summary struct {
	ID       string
	Strategy Strategy
	Rows     int64
	Bytes    int64
	Queries  int
	Duration time.Duration
}

// Export writes the header and every row of the chosen strategy to w.
//
// The body is assembled in memory first and only copied to w once the
// strategy succeeded, so a failed run writes nothing to w.
func (e *Exporter) Export(ctx context.Context, strategy Strategy, w io.Writer) (Summary, error) {
	sum := Summary{ID: ExportIDFromContext(ctx), Strategy: strategy}
	if sum.ID == "" {
		sum.ID = uuid.NewString()
	}
	if _, err := ParseStrategy(string(strategy)); err != nil {
		return sum, err
	}

	logger := logging.WithFields(ctx, "export_id", sum.ID, "strategy", strategy)
	ctx = logging.WithLogger(ctx, logger)
	logger.Info("export started", "page_size", e.pageSize)

	start := time.Now()
	var buf bytes.Buffer
	sink := NewSink(&buf, e.source.Layout().Width())

	err := sink.WriteHeader(e.source.Layout().Header())
	if err == nil {
		switch strategy {
		case StrategyFull:
			sum.Queries, err = e.exportFull(ctx, sink)
		case StrategyPaginated:
			sum.Queries, err = e.exportPaginated(ctx, sink)
		case StrategyStream:
			sum.Queries, err = e.exportStream(ctx, sink, logger)
		case StrategyBroken:
			sum.Queries, err = e.exportBroken(ctx, sink)
		}
	}
	if err == nil {
		err = sink.Flush()
	}
	sum.Rows = sink.Rows()
	sum.Duration = time.Since(start)
	exportDuration.WithLabelValues(string(strategy)).Observe(sum.Duration.Seconds())

	if err != nil {
		exportsTotal.WithLabelValues(string(strategy), "error").Inc()
		logger.Error("export failed",
			"rows", sum.Rows,
			"queries", sum.Queries,
			"duration_ms", sum.Duration.Milliseconds(),
			"error", err,
		)
		return sum, err
	}

	n, err := io.Copy(w, &buf)
	sum.Bytes = n
	if err != nil {
		exportsTotal.WithLabelValues(string(strategy), "error").Inc()
		logger.Error("export write failed", "bytes", n, "error", err)
		return sum, fmt.Errorf("write export: %w", err)
	}

	exportsTotal.WithLabelValues(string(strategy), "ok").Inc()
	rowsExported.WithLabelValues(string(strategy)).Add(float64(sum.Rows))
	logger.Info("export completed",
		"rows", sum.Rows,
		"bytes", sum.Bytes,
		"queries", sum.Queries,
		"duration_ms", sum.Duration.Milliseconds(),
	)
	return sum, nil
}

func (e *Exporter) exportFull(ctx context.Context, sink *Sink) (int, error) {
	rows, err := e.source.Fetch(ctx)
	if err != nil {
		return 1, err
	}
	for _, row := range rows {
		if err := e.throttle.Wait(ctx); err != nil {
			return 1, err
		}
		if err := sink.WriteRow(row); err != nil {
			return 1, err
		}
	}
	return 1, nil
}

func (e *Exporter) exportPaginated(ctx context.Context, sink *Sink) (int, error) {
	stats, err := FetchPages(ctx, e.source.FetchPage, e.pageSize, func(page []ExportRow) error {
		for _, row := range page {
			if err := e.throttle.Wait(ctx); err != nil {
				return err
			}
			if err := sink.WriteRow(row); err != nil {
				return err
			}
		}
		return nil
	})
	return stats.Queries, err
}

func (e *Exporter) exportStream(ctx context.Context, sink *Sink, logger *slog.Logger) (int, error) {
	seq, err := e.source.Open(ctx)
	if err != nil {
		return 1, err
	}
	n, err := Reduce(seq, e.writeRow(ctx, sink), Counting[int64]())
	if err != nil {
		return 1, err
	}
	logger.Debug("stream reduced", "counted", n)
	return 1, nil
}

func (e *Exporter) exportBroken(ctx context.Context, sink *Sink) (int, error) {
	seq, err := e.source.Open(ctx)
	if err != nil {
		return 1, err
	}
	// No terminal operation: writeRow never runs and seq is never closed.
	_ = Map(seq.All(), e.writeRow(ctx, sink))
	if !seq.Released() {
		logging.FromContext(ctx).Warn("cursor left open by unconsumed mapping", "rows_read", seq.Position())
	}
	return 1, nil
}

func (e *Exporter) writeRow(ctx context.Context, sink *Sink) func(ExportRow) (int64, error) {
	return func(row ExportRow) (int64, error) {
		if err := e.throttle.Wait(ctx); err != nil {
			return 0, err
		}
		if err := sink.WriteRow(row); err != nil {
			return 0, err
		}
		return 1, nil
	}
}
