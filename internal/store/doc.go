// Package store runs the owner and pet projection against the clinic
// database and exposes the result as export cursors.
//
// Two backends implement export.Store:
//
//   - PgxStore over a pgxpool.Pool (DB_DRIVER=pgx, the default)
//   - SQLStore over database/sql, with lib/pq (DB_DRIVER=postgres) or the
//     pure-Go modernc SQLite driver (DB_DRIVER=sqlite)
//
// Both issue the same projection, rendered per Dialect, ordered by owner
// last name, first name, owner id and pet id. The pet id tiebreaker keeps
// the order total so LIMIT/OFFSET pages never overlap for owners with
// several pets.
package store
