package export

// ExportRow is one CSV line. Consumers index fields by position, so the order
// always follows the Layout the row was mapped with.
type ExportRow []string

// ColumnKind controls how a raw column value is rendered.
type ColumnKind int

const (
	KindText ColumnKind = iota
	KindDate
	KindTimestamp
)

// Column describes one positional export field.
type Column struct {
	Name   string // result-set column name
	Header string // CSV header label
	Kind   ColumnKind
}

// Date formats used when rendering time values.
const (
	DateLayout      = "2006-01-02"
	TimestampLayout = "2006-01-02 15:04:05"
)

// ExportDateColumn is the optional trailing column stamped by the store.
const ExportDateColumn = "export_date"

var petColumns = []Column{
	{Name: "first_name", Header: "First name", Kind: KindText},
	{Name: "last_name", Header: "Last name", Kind: KindText},
	{Name: "address", Header: "Address", Kind: KindText},
	{Name: "city", Header: "City", Kind: KindText},
	{Name: "telephone", Header: "Telephone", Kind: KindText},
	{Name: "pet", Header: "Pet", Kind: KindText},
	{Name: "type", Header: "Type", Kind: KindText},
	{Name: "birth_date", Header: "Pet DoB", Kind: KindDate},
}

// Layout is the fixed, ordered column set of an export.
type Layout struct {
	Columns []Column
}

// NewLayout returns the 9-column timestamped layout, or the 8-column layout
// without "Export date" when timestamped is false.
func NewLayout(timestamped bool) Layout {
	cols := make([]Column, len(petColumns), len(petColumns)+1)
	copy(cols, petColumns)
	if timestamped {
		cols = append(cols, Column{Name: ExportDateColumn, Header: "Export date", Kind: KindTimestamp})
	}
	return Layout{Columns: cols}
}

// Width is the number of fields every row of this layout carries.
func (l Layout) Width() int {
	return len(l.Columns)
}

// Header returns the CSV header labels in positional order.
func (l Layout) Header() []string {
	out := make([]string, len(l.Columns))
	for i, c := range l.Columns {
		out[i] = c.Header
	}
	return out
}

// Names returns the result-set column names in positional order.
func (l Layout) Names() []string {
	out := make([]string, len(l.Columns))
	for i, c := range l.Columns {
		out[i] = c.Name
	}
	return out
}

// Timestamped reports whether the layout ends with the export date column.
func (l Layout) Timestamped() bool {
	n := len(l.Columns)
	return n > 0 && l.Columns[n-1].Name == ExportDateColumn
}
