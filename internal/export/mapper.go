package export

import (
	"database/sql/driver"
	"fmt"
	"strconv"
	"time"
)

// RowView is the read-only view of the cursor's current row a mapper gets.
type RowView interface {
	Columns() []string
	Values() ([]any, error)
}

// RecordMapper converts the current row at 0-based position rowNum into an
// ExportRow. Implementations must not advance or close the cursor.
type RecordMapper func(row RowView, rowNum int) (ExportRow, error)

// NewMapper returns a RecordMapper that projects rows onto layout. Columns
// are looked up by name, so the result set may carry extra columns. NULLs
// become empty strings; a missing column or an unsupported value type fails
// with *MappingError.
func NewMapper(layout Layout) RecordMapper {
	cols := layout.Columns
	return func(row RowView, rowNum int) (ExportRow, error) {
		names := row.Columns()
		values, err := row.Values()
		if err != nil {
			return nil, &MappingError{Row: rowNum, Err: err}
		}
		if len(values) != len(names) {
			return nil, &MappingError{
				Row: rowNum,
				Err: fmt.Errorf("got %d values for %d columns", len(values), len(names)),
			}
		}

		out := make(ExportRow, len(cols))
		for i, col := range cols {
			idx := indexOf(names, col.Name)
			if idx < 0 {
				return nil, &MappingError{Row: rowNum, Column: col.Name, Err: errMissingColumn}
			}
			s, err := formatValue(values[idx], col.Kind)
			if err != nil {
				return nil, &MappingError{Row: rowNum, Column: col.Name, Err: err}
			}
			out[i] = s
		}
		return out, nil
	}
}

func indexOf(names []string, name string) int {
	for i, n := range names {
		if n == name {
			return i
		}
	}
	return -1
}

// formatValue renders one column value. Driver-specific types that implement
// driver.Valuer (pgtype.Date, pgtype.Text, ...) are unwrapped once.
func formatValue(v any, kind ColumnKind) (string, error) {
	if valuer, ok := v.(driver.Valuer); ok {
		dv, err := valuer.Value()
		if err != nil {
			return "", err
		}
		v = dv
	}

	switch val := v.(type) {
	case nil:
		return "", nil
	case string:
		return val, nil
	case []byte:
		return string(val), nil
	case time.Time:
		if val.IsZero() {
			return "", nil
		}
		if kind == KindDate {
			return val.Format(DateLayout), nil
		}
		return val.Format(TimestampLayout), nil
	case int:
		return strconv.Itoa(val), nil
	case int64:
		return strconv.FormatInt(val, 10), nil
	case int32, int16, int8, uint, uint64, uint32, uint16, uint8:
		return fmt.Sprint(val), nil
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), nil
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32), nil
	default:
		return "", fmt.Errorf("%w: %T", errIncompatibleVal, v)
	}
}
