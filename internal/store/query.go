package store

import (
	"fmt"
	"strings"

	"github.com/JonMunkholm/petclinic-export/internal/export"
)

// Dialect renders the projection for one SQL engine.
type Dialect struct {
	Name   string
	Schema string // table qualifier, empty for none
	Now    string // current timestamp expression

	placeholder func(n int) string
}

// Postgres qualifies tables with schema and binds $n parameters.
func Postgres(schema string) Dialect {
	return Dialect{
		Name:        "postgres",
		Schema:      schema,
		Now:         "now()",
		placeholder: func(n int) string { return fmt.Sprintf("$%d", n) },
	}
}

// SQLite uses unqualified tables and ? parameters.
func SQLite() Dialect {
	return Dialect{
		Name:        "sqlite",
		Now:         "CURRENT_TIMESTAMP",
		placeholder: func(int) string { return "?" },
	}
}

func (d Dialect) table(name string) string {
	if d.Schema == "" {
		return name
	}
	return d.Schema + "." + name
}

// expr maps an export column to its select expression.
func (d Dialect) expr(col string) (string, error) {
	switch col {
	case "first_name", "last_name", "address", "city", "telephone":
		return "o." + col, nil
	case "pet":
		return "p.name AS pet", nil
	case "type":
		return "t.name AS type", nil
	case "birth_date":
		return "p.birth_date", nil
	case export.ExportDateColumn:
		return d.Now + " AS " + export.ExportDateColumn, nil
	default:
		return "", fmt.Errorf("no projection for column %q", col)
	}
}

// Queries holds the rendered SQL for one layout.
type Queries struct {
	All  string
	Page string // binds limit, then offset
}

// Build renders the full and paged projections of layout.
func (d Dialect) Build(layout export.Layout) (Queries, error) {
	exprs := make([]string, 0, layout.Width())
	for _, name := range layout.Names() {
		e, err := d.expr(name)
		if err != nil {
			return Queries{}, err
		}
		exprs = append(exprs, e)
	}

	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(strings.Join(exprs, ", "))
	fmt.Fprintf(&b, " FROM %s o JOIN %s p ON (p.owner_id = o.id) JOIN %s t ON (p.type_id = t.id)",
		d.table("owners"), d.table("pets"), d.table("types"))
	b.WriteString(" ORDER BY o.last_name, o.first_name, o.id, p.id")

	all := b.String()
	return Queries{
		All:  all,
		Page: all + " LIMIT " + d.placeholder(1) + " OFFSET " + d.placeholder(2),
	}, nil
}
