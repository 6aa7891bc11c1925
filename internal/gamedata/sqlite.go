package gamedata

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Locale-name lists and liquid overrides are stored as JSON columns; the row
// counts are small (thousands) and the tables are read once at startup.

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS liquid_type (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL DEFAULT '',
			type INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS area_table (
			id INTEGER PRIMARY KEY,
			map_id INTEGER NOT NULL,
			zone INTEGER NOT NULL DEFAULT 0,
			explore_flag INTEGER NOT NULL,
			flags INTEGER NOT NULL DEFAULT 0,
			names TEXT NOT NULL DEFAULT '[]',
			liquid_overrides TEXT NOT NULL DEFAULT '[]'
		);`,
		`CREATE TABLE IF NOT EXISTS map_table (
			id INTEGER PRIMARY KEY,
			area_flag INTEGER NOT NULL DEFAULT 0,
			names TEXT NOT NULL DEFAULT '[]'
		);`,
		`CREATE TABLE IF NOT EXISTS wmo_area_table (
			root_id INTEGER NOT NULL,
			adt_id INTEGER NOT NULL,
			group_id INTEGER NOT NULL,
			area_id INTEGER NOT NULL DEFAULT 0,
			names TEXT NOT NULL DEFAULT '[]',
			PRIMARY KEY (root_id, adt_id, group_id, area_id)
		);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

// OpenSQLite loads every table from the database at path into a Store.
func OpenSQLite(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := initPragmas(db); err != nil {
		return nil, err
	}

	s := NewStore()
	if err := loadLiquidTypes(db, s); err != nil {
		return nil, fmt.Errorf("liquid_type: %w", err)
	}
	if err := loadAreas(db, s); err != nil {
		return nil, fmt.Errorf("area_table: %w", err)
	}
	if err := loadMaps(db, s); err != nil {
		return nil, fmt.Errorf("map_table: %w", err)
	}
	if err := loadWMOAreas(db, s); err != nil {
		return nil, fmt.Errorf("wmo_area_table: %w", err)
	}
	return s, nil
}

// WriteSQLite materializes a Store into a database at path, creating the
// schema as needed. Used by fixtures and data-import tooling.
func WriteSQLite(path string, s *Store) error {
	if path == "" {
		return fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return err
	}
	defer db.Close()
	db.SetMaxOpenConns(1)

	if err := initPragmas(db); err != nil {
		return err
	}
	if err := initSchema(db); err != nil {
		return err
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, e := range s.liquids {
		if _, err := tx.Exec(
			`INSERT OR REPLACE INTO liquid_type (id, name, type) VALUES (?, ?, ?)`,
			e.ID, e.Name, e.Type,
		); err != nil {
			return err
		}
	}
	for _, e := range s.areasByID {
		names, _ := json.Marshal(e.Names)
		overrides, _ := json.Marshal(e.LiquidOverrides)
		if _, err := tx.Exec(
			`INSERT OR REPLACE INTO area_table
			 (id, map_id, zone, explore_flag, flags, names, liquid_overrides)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			e.ID, e.MapID, e.Zone, e.ExploreFlag, e.Flags, string(names), string(overrides),
		); err != nil {
			return err
		}
	}
	for _, e := range s.maps {
		names, _ := json.Marshal(e.Names)
		if _, err := tx.Exec(
			`INSERT OR REPLACE INTO map_table (id, area_flag, names) VALUES (?, ?, ?)`,
			e.ID, e.AreaFlag, string(names),
		); err != nil {
			return err
		}
	}
	for _, list := range s.wmoAreas {
		for _, e := range list {
			names, _ := json.Marshal(e.Names)
			if _, err := tx.Exec(
				`INSERT OR REPLACE INTO wmo_area_table
				 (root_id, adt_id, group_id, area_id, names) VALUES (?, ?, ?, ?, ?)`,
				e.RootID, e.AdtID, e.GroupID, e.AreaID, string(names),
			); err != nil {
				return err
			}
		}
	}
	return tx.Commit()
}

func loadLiquidTypes(db *sql.DB, s *Store) error {
	rows, err := db.Query(`SELECT id, name, type FROM liquid_type`)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var e LiquidTypeEntry
		if err := rows.Scan(&e.ID, &e.Name, &e.Type); err != nil {
			return err
		}
		s.AddLiquidType(e)
	}
	return rows.Err()
}

func loadAreas(db *sql.DB, s *Store) error {
	rows, err := db.Query(
		`SELECT id, map_id, zone, explore_flag, flags, names, liquid_overrides FROM area_table`)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var e AreaEntry
		var names, overrides string
		if err := rows.Scan(&e.ID, &e.MapID, &e.Zone, &e.ExploreFlag, &e.Flags, &names, &overrides); err != nil {
			return err
		}
		if err := json.Unmarshal([]byte(names), &e.Names); err != nil {
			return fmt.Errorf("area %d names: %w", e.ID, err)
		}
		if err := json.Unmarshal([]byte(overrides), &e.LiquidOverrides); err != nil {
			return fmt.Errorf("area %d liquid_overrides: %w", e.ID, err)
		}
		s.AddArea(e)
	}
	return rows.Err()
}

func loadMaps(db *sql.DB, s *Store) error {
	rows, err := db.Query(`SELECT id, area_flag, names FROM map_table`)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var e MapEntry
		var names string
		if err := rows.Scan(&e.ID, &e.AreaFlag, &names); err != nil {
			return err
		}
		if err := json.Unmarshal([]byte(names), &e.Names); err != nil {
			return fmt.Errorf("map %d names: %w", e.ID, err)
		}
		s.AddMap(e)
	}
	return rows.Err()
}

func loadWMOAreas(db *sql.DB, s *Store) error {
	rows, err := db.Query(`SELECT root_id, adt_id, group_id, area_id, names FROM wmo_area_table`)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var e WMOAreaEntry
		var names string
		if err := rows.Scan(&e.RootID, &e.AdtID, &e.GroupID, &e.AreaID, &names); err != nil {
			return err
		}
		if err := json.Unmarshal([]byte(names), &e.Names); err != nil {
			return fmt.Errorf("wmo area (%d,%d,%d) names: %w", e.RootID, e.AdtID, e.GroupID, err)
		}
		s.AddWMOArea(e)
	}
	return rows.Err()
}
