package datarecording_test

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wsnlab/wsnsim/datarecording"
)

type runRow struct {
	Seed          int64
	LossRate      float64
	FloodSuccess  bool
	FloodCoverage float64
}

func setupRecorder(t *testing.T) (datarecording.DataRecorder, *sql.DB) {
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return datarecording.NewWithDB(db), db
}

func TestCreateTable(t *testing.T) {
	recorder, db := setupRecorder(t)

	recorder.CreateTable("runs", runRow{})

	var tableName string
	err := db.QueryRow(
		"SELECT name FROM sqlite_master WHERE type='table' AND name='runs'",
	).Scan(&tableName)
	require.NoError(t, err)
	assert.Equal(t, "runs", tableName)
	assert.Equal(t, []string{"runs"}, recorder.ListTables())
}

func TestCreateTableRejectsUnmappableFields(t *testing.T) {
	recorder, _ := setupRecorder(t)

	assert.Panics(t, func() {
		recorder.CreateTable("bad", struct{ Times []float64 }{})
	})
}

func TestInsertAndFlush(t *testing.T) {
	recorder, db := setupRecorder(t)

	recorder.CreateTable("runs", runRow{})
	recorder.InsertData("runs", runRow{Seed: 1, LossRate: 0.5, FloodSuccess: true, FloodCoverage: 1})
	recorder.InsertData("runs", runRow{Seed: 2, LossRate: 0.5, FloodCoverage: 0.25})

	// Entries stay buffered until flushed.
	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM runs").Scan(&count))
	assert.Zero(t, count)

	recorder.Flush()

	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM runs").Scan(&count))
	assert.Equal(t, 2, count)
}

func TestInsertIntoUnknownTablePanics(t *testing.T) {
	recorder, _ := setupRecorder(t)

	assert.Panics(t, func() {
		recorder.InsertData("missing", runRow{})
	})
}

func TestInsertRejectsForeignType(t *testing.T) {
	recorder, _ := setupRecorder(t)
	recorder.CreateTable("runs", runRow{})

	assert.Panics(t, func() {
		recorder.InsertData("runs", struct{ X int }{})
	})
}

func TestReadBack(t *testing.T) {
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	recorder := datarecording.NewWithDB(db)
	recorder.CreateTable("runs", runRow{})
	for seed := int64(1); seed <= 5; seed++ {
		recorder.InsertData("runs", runRow{
			Seed:         seed,
			LossRate:     0.6,
			FloodSuccess: seed%2 == 0,
		})
	}
	recorder.Flush()

	reader := datarecording.NewReaderWithDB(db)
	reader.MapTable("runs", runRow{})

	rows, total, err := reader.Query(context.Background(), "runs",
		datarecording.QueryParams{
			Where:   "FloodSuccess = ?",
			Args:    []any{true},
			OrderBy: "Seed DESC",
		})
	require.NoError(t, err)

	assert.Equal(t, 2, total)
	require.Len(t, rows, 2)
	assert.Equal(t, int64(4), rows[0].(runRow).Seed)
	assert.Equal(t, int64(2), rows[1].(runRow).Seed)
}
