package source_test

import (
	"context"
	"testing"

	"github.com/opsdeck/opsdeck/internal/source"
	"github.com/opsdeck/opsdeck/internal/table"
	"github.com/stretchr/testify/require"
)

func TestSQLiteSource_Fetch(t *testing.T) {
	db, err := source.OpenSQLite(":memory:")
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`
		CREATE TABLE people ("User_id" TEXT, "full_name" TEXT, "weekly_capacity" REAL, "notes" TEXT);
		INSERT INTO people VALUES ('X1', 'Ada Park', 40, NULL);
		INSERT INTO people VALUES ('X2', 'Lin Osei', 32.5, 'part time');
	`)
	require.NoError(t, err)

	src := source.NewSQLiteSource(table.KindPerson, db, "people")
	require.Equal(t, table.KindPerson, src.Kind())

	tbl, err := src.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, tbl, 2)

	require.Equal(t, "Ada Park", tbl[0].Fields["full_name"])
	require.Equal(t, 40.0, table.Float(tbl[0].Fields["weekly_capacity"]))
	_, hasNotes := tbl[0].Fields["notes"]
	require.False(t, hasNotes, "NULL columns stay absent")

	require.Equal(t, 1, tbl[1].RowIndex)
	require.Equal(t, "X2", table.PrimaryID(tbl[1], table.KindPerson))
}

func TestSQLiteSource_MissingTable(t *testing.T) {
	db, err := source.OpenSQLite(":memory:")
	require.NoError(t, err)
	defer db.Close()

	src := source.NewSQLiteSource(table.KindTask, db, "nope")
	_, err = src.Fetch(context.Background())
	require.ErrorIs(t, err, source.ErrUnavailable)
}
