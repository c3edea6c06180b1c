package source

import (
	"github.com/BurntSushi/migration"
	"github.com/cyclopcam/dbh"
	"github.com/cyclopcam/logs"
)

// TableMigrations creates the bounding_boxes table that TableSource reads.
// Use it with dbh.OpenDB to create a new annotation database.
func TableMigrations(log logs.Log) []migration.Migrator {
	migs := []migration.Migrator{}
	idx := 0

	migs = append(migs, dbh.MakeMigrationFromSQL(log, &idx,
		`
		CREATE TABLE bounding_boxes(
			object_id INTEGER NOT NULL,
			frame_number INTEGER NOT NULL,
			x_top_left REAL NOT NULL,
			y_top_left REAL NOT NULL,
			x_bottom_right REAL NOT NULL,
			y_bottom_right REAL NOT NULL
		);

		CREATE INDEX idx_bounding_boxes_frame_number ON bounding_boxes (frame_number);
	`))

	return migs
}

// CreateTable creates (or opens) an annotation database at filename, and returns a
// writable TableSource on it.
func CreateTable(log logs.Log, filename string) (*TableSource, error) {
	db, err := dbh.OpenDB(log, dbh.MakeSqliteConfig(filename), TableMigrations(log), 0)
	if err != nil {
		return nil, err
	}
	return &TableSource{DB: db}, nil
}

// Insert appends rows to the bounding_boxes table
func (s *TableSource) Insert(rows []BoxRow) error {
	if len(rows) == 0 {
		return nil
	}
	return s.DB.Create(&rows).Error
}
