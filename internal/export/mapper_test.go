package export

import (
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"
)

type staticRow struct {
	cols   []string
	values []any
	err    error
}

func (r staticRow) Columns() []string      { return r.cols }
func (r staticRow) Values() ([]any, error) { return r.values, r.err }

func TestLayout_Headers(t *testing.T) {
	tests := []struct {
		name        string
		timestamped bool
		want        string
	}{
		{"timestamped", true, "First name,Last name,Address,City,Telephone,Pet,Type,Pet DoB,Export date"},
		{"plain", false, "First name,Last name,Address,City,Telephone,Pet,Type,Pet DoB"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewLayout(tt.timestamped)
			if got := strings.Join(l.Header(), ","); got != tt.want {
				t.Errorf("Header() = %q, want %q", got, tt.want)
			}
			if l.Timestamped() != tt.timestamped {
				t.Errorf("Timestamped() = %v, want %v", l.Timestamped(), tt.timestamped)
			}
		})
	}
}

func TestNewLayout_DoesNotShareColumns(t *testing.T) {
	a := NewLayout(false)
	a.Columns[0].Header = "changed"
	if NewLayout(false).Columns[0].Header != "First name" {
		t.Error("NewLayout returned a shared column slice")
	}
}

func TestMapper_MapsRow(t *testing.T) {
	layout := NewLayout(true)
	row := staticRow{cols: layout.Names(), values: petRow("George", "Franklin", "Leo")}

	got, err := NewMapper(layout)(row, 0)
	if err != nil {
		t.Fatalf("mapper error = %v", err)
	}

	want := "George,Franklin,110 W. Liberty St.,Madison,6085551023,Leo,cat,2020-09-07,2024-03-09 14:30:05"
	if strings.Join(got, ",") != want {
		t.Errorf("row = %q, want %q", strings.Join(got, ","), want)
	}
}

func TestMapper_ValueConversions(t *testing.T) {
	tests := []struct {
		name  string
		value any
		kind  ColumnKind
		want  string
	}{
		{"nil", nil, KindText, ""},
		{"bytes", []byte("Betty"), KindText, "Betty"},
		{"int64", int64(42), KindText, "42"},
		{"int32", int32(7), KindText, "7"},
		{"float", 1.5, KindText, "1.5"},
		{"date", time.Date(2019, 1, 2, 0, 0, 0, 0, time.UTC), KindDate, "2019-01-02"},
		{"timestamp", time.Date(2019, 1, 2, 3, 4, 5, 0, time.UTC), KindTimestamp, "2019-01-02 03:04:05"},
		{"zero time", time.Time{}, KindDate, ""},
		{"valid valuer", sql.NullString{String: "Jean", Valid: true}, KindText, "Jean"},
		{"null valuer", sql.NullString{}, KindText, ""},
		{"null time valuer", sql.NullTime{}, KindDate, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := formatValue(tt.value, tt.kind)
			if err != nil {
				t.Fatalf("formatValue error = %v", err)
			}
			if got != tt.want {
				t.Errorf("formatValue = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMapper_Errors(t *testing.T) {
	layout := NewLayout(false)
	names := layout.Names()
	good := petRow("George", "Franklin", "Leo")[:8]

	withValue := func(i int, v any) []any {
		out := append([]any(nil), good...)
		out[i] = v
		return out
	}

	tests := []struct {
		name       string
		row        staticRow
		wantColumn string
	}{
		{"values error", staticRow{cols: names, err: errors.New("decode failed")}, ""},
		{"length mismatch", staticRow{cols: names, values: good[:3]}, ""},
		{"missing column", staticRow{cols: names[:7], values: good[:7]}, "birth_date"},
		{"unsupported type", staticRow{cols: names, values: withValue(5, struct{}{})}, "pet"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewMapper(layout)(tt.row, 3)
			var me *MappingError
			if !errors.As(err, &me) {
				t.Fatalf("error = %v, want *MappingError", err)
			}
			if me.Row != 3 {
				t.Errorf("Row = %d, want 3", me.Row)
			}
			if me.Column != tt.wantColumn {
				t.Errorf("Column = %q, want %q", me.Column, tt.wantColumn)
			}
		})
	}
}

func TestMapper_IgnoresExtraColumns(t *testing.T) {
	layout := NewLayout(false)
	row := staticRow{cols: NewLayout(true).Names(), values: petRow("Eduardo", "Rodriquez", "Rosy")}

	got, err := NewMapper(layout)(row, 0)
	if err != nil {
		t.Fatalf("mapper error = %v", err)
	}
	if len(got) != layout.Width() {
		t.Errorf("row width = %d, want %d", len(got), layout.Width())
	}
}
