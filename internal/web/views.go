package web

import "github.com/JonMunkholm/petclinic-export/internal/export"

// exportLink is one row of the index page (index.templ).
type exportLink struct {
	Href     string
	Strategy export.Strategy
	Summary  string
}

func exportLinks() []exportLink {
	return []exportLink{
		{"/pets.csv", export.StrategyFull, "Loads every row with one query, then writes the file."},
		{"/pets-paginated.csv", export.StrategyPaginated, "Re-queries in LIMIT/OFFSET pages until an empty page."},
		{"/pets-stream.csv", export.StrategyStream, "Reduces a single open cursor row by row."},
		{"/pets-broken.csv", export.StrategyBroken, "Maps a lazy cursor without consuming it: header only, leaked cursor."},
	}
}
