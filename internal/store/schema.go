package store

import (
	"context"
	"database/sql"
	"fmt"
)

// sqliteSchema is the subset of the clinic schema the export reads.
const sqliteSchema = `
CREATE TABLE IF NOT EXISTS owners (
	id         INTEGER PRIMARY KEY,
	first_name TEXT NOT NULL,
	last_name  TEXT NOT NULL,
	address    TEXT NOT NULL,
	city       TEXT NOT NULL,
	telephone  TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS types (
	id   INTEGER PRIMARY KEY,
	name TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS pets (
	id         INTEGER PRIMARY KEY,
	name       TEXT NOT NULL,
	birth_date DATE,
	type_id    INTEGER NOT NULL REFERENCES types(id),
	owner_id   INTEGER NOT NULL REFERENCES owners(id)
);
CREATE INDEX IF NOT EXISTS pets_owner_id ON pets(owner_id);
`

// Owner, PetType and Pet are seed records.
type (
	Owner struct {
		ID                                            int
		FirstName, LastName, Address, City, Telephone string
	}
	PetType struct {
		ID   int
		Name string
	}
	Pet struct {
		ID, TypeID, OwnerID int
		Name, BirthDate     string // BirthDate as YYYY-MM-DD
	}
)

// SeedData is the clinic's demo data set.
type SeedData struct {
	Types  []PetType
	Owners []Owner
	Pets   []Pet
}

// DemoData returns the sample owners and pets shipped with the clinic.
func DemoData() SeedData {
	return SeedData{
		Types: []PetType{
			{1, "cat"}, {2, "dog"}, {3, "lizard"}, {4, "snake"}, {5, "bird"}, {6, "hamster"},
		},
		Owners: []Owner{
			{1, "George", "Franklin", "110 W. Liberty St.", "Madison", "6085551023"},
			{2, "Betty", "Davis", "638 Cardinal Ave.", "Sun Prairie", "6085551749"},
			{3, "Eduardo", "Rodriquez", "2693 Commerce St.", "McFarland", "6085558763"},
			{4, "Harold", "Davis", "563 Friendly St.", "Windsor", "6085553198"},
			{5, "Peter", "McTavish", "2387 S. Fair Way", "Madison", "6085552765"},
			{6, "Jean", "Coleman", "105 N. Lake St.", "Monona", "6085552654"},
			{7, "Jeff", "Black", "1450 Oak Blvd.", "Monona", "6085555387"},
			{8, "Maria", "Escobito", "345 Maple St.", "Madison", "6085557683"},
			{9, "David", "Schroeder", "2749 Blackhawk Trail", "Madison", "6085559435"},
			{10, "Carlos", "Estaban", "2335 Independence La.", "Waunakee", "6085555487"},
		},
		Pets: []Pet{
			{1, 1, 1, "Leo", "2010-09-07"},
			{2, 6, 2, "Basil", "2012-08-06"},
			{3, 2, 3, "Rosy", "2011-04-17"},
			{4, 2, 3, "Jewel", "2010-03-07"},
			{5, 5, 4, "Iggy", "2010-11-30"},
			{6, 4, 5, "George", "2010-01-20"},
			{7, 1, 6, "Samantha", "2012-09-04"},
			{8, 1, 6, "Max", "2012-09-04"},
			{9, 5, 7, "Lucky", "2011-08-06"},
			{10, 2, 8, "Mulligan", "2007-02-24"},
			{11, 3, 9, "Freddy", "2010-03-09"},
			{12, 2, 10, "Lucky", "2010-06-24"},
			{13, 1, 10, "Sly", "2012-06-08"},
		},
	}
}

// MigrateSQLite creates the clinic tables in an SQLite database.
func MigrateSQLite(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		return fmt.Errorf("migrate sqlite schema: %w", err)
	}
	return nil
}

// Seed inserts data in one transaction. Existing ids are replaced.
func Seed(ctx context.Context, db *sql.DB, data SeedData) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	for _, t := range data.Types {
		if _, err = tx.ExecContext(ctx, `INSERT OR REPLACE INTO types (id, name) VALUES (?, ?)`, t.ID, t.Name); err != nil {
			return fmt.Errorf("seed type %d: %w", t.ID, err)
		}
	}
	for _, o := range data.Owners {
		if _, err = tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO owners (id, first_name, last_name, address, city, telephone) VALUES (?, ?, ?, ?, ?, ?)`,
			o.ID, o.FirstName, o.LastName, o.Address, o.City, o.Telephone); err != nil {
			return fmt.Errorf("seed owner %d: %w", o.ID, err)
		}
	}
	for _, p := range data.Pets {
		if _, err = tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO pets (id, name, birth_date, type_id, owner_id) VALUES (?, ?, ?, ?, ?)`,
			p.ID, p.Name, p.BirthDate, p.TypeID, p.OwnerID); err != nil {
			return fmt.Errorf("seed pet %d: %w", p.ID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit seed: %w", err)
	}
	return nil
}
