// backend/database/shipment_store_test.go
package database

import (
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mntops/shipsync/backend/models"
)

func withMockDB(t *testing.T) sqlmock.Sqlmock {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	prev := DB
	DB = db
	t.Cleanup(func() {
		DB = prev
		db.Close()
	})
	return mock
}

func expectColumnQuery(mock sqlmock.Sqlmock, cols ...string) {
	rows := sqlmock.NewRows([]string{"column_name"})
	for _, c := range cols {
		rows.AddRow(c)
	}
	mock.ExpectQuery("SELECT column_name FROM information_schema.columns").WillReturnRows(rows)
}

func TestEnsureShipmentColumnsAddsOnlyNewColumns(t *testing.T) {
	mock := withMockDB(t)
	expectColumnQuery(mock, "id", "From Site", "PO No.", "created_at")
	mock.ExpectExec("ALTER TABLE shipment_data ADD COLUMN `New Col` TEXT").
		WillReturnResult(sqlmock.NewResult(0, 0))

	physical, added, err := EnsureShipmentColumns([]string{"From Site", "PO No.", "New Col"})
	require.NoError(t, err)
	assert.Equal(t, []string{"New Col"}, added)
	assert.Contains(t, physical, "New Col")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureShipmentColumnsIgnoresAddFailure(t *testing.T) {
	mock := withMockDB(t)
	expectColumnQuery(mock, "id", "From Site")
	mock.ExpectExec("ALTER TABLE shipment_data ADD COLUMN `Racing Col` TEXT").
		WillReturnError(fmt.Errorf("duplicate column name"))

	physical, added, err := EnsureShipmentColumns([]string{"From Site", "Racing Col"})
	require.NoError(t, err)
	// Failed add is logged and the column left out of the physical set, so
	// the insert will not reference it.
	assert.Empty(t, added)
	assert.NotContains(t, physical, "Racing Col")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveShipmentRowsSelectiveRefresh(t *testing.T) {
	mock := withMockDB(t)
	expectColumnQuery(mock, "id", "From Site", "PO No.", "Model", "created_at")

	mock.ExpectBegin()
	// Delete scoped to this site AND the batch's PO numbers only.
	mock.ExpectExec("DELETE FROM shipment_data WHERE `From Site` = \\? AND `PO No\\.` IN \\(\\?, \\?\\)").
		WithArgs("TPV / MNT", "P1", "P2").
		WillReturnResult(sqlmock.NewResult(0, 3))
	prep := mock.ExpectPrepare("INSERT INTO shipment_data \\(`From Site`, `PO No\\.`, `Model`\\) VALUES \\(\\?, \\?, \\?\\)")
	prep.ExpectExec().WithArgs("TPV / MNT", "P1", "27GQ50F-B.AUS").WillReturnResult(sqlmock.NewResult(1, 1))
	prep.ExpectExec().WithArgs("TPV / MNT", "P2", nil).WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	tbl := &models.Table{
		Columns: []string{"From Site", "PO No.", "Model"},
		Rows: []map[string]string{
			{"From Site": "TPV / MNT", "PO No.": "P1", "Model": "27GQ50F-B.AUS"},
			{"From Site": "TPV / MNT", "PO No.": "P2", "Model": ""},
		},
	}

	inserted, added, err := SaveShipmentRows(tbl, "TPV / MNT")
	require.NoError(t, err)
	assert.Equal(t, 2, inserted)
	assert.Empty(t, added)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveShipmentRowsNoPOColumnSkipsDelete(t *testing.T) {
	mock := withMockDB(t)
	expectColumnQuery(mock, "id", "From Site", "Qty")

	mock.ExpectBegin()
	// No PO numbers in the batch: nothing is deleted, rows are appended.
	prep := mock.ExpectPrepare("INSERT INTO shipment_data \\(`From Site`, `Qty`\\) VALUES \\(\\?, \\?\\)")
	prep.ExpectExec().WithArgs("BOEVT / MONITOR", "7").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	tbl := &models.Table{
		Columns: []string{"From Site", "Qty"},
		Rows:    []map[string]string{{"From Site": "BOEVT / MONITOR", "Qty": "7"}},
	}

	inserted, _, err := SaveShipmentRows(tbl, "BOEVT / MONITOR")
	require.NoError(t, err)
	assert.Equal(t, 1, inserted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveShipmentRowsRollsBackOnInsertFailure(t *testing.T) {
	mock := withMockDB(t)
	expectColumnQuery(mock, "id", "From Site", "PO No.")

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM shipment_data").
		WithArgs("TPV / MNT", "P1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	prep := mock.ExpectPrepare("INSERT INTO shipment_data")
	prep.ExpectExec().WithArgs("TPV / MNT", "P1").WillReturnError(fmt.Errorf("connection lost"))
	mock.ExpectRollback()

	tbl := &models.Table{
		Columns: []string{"From Site", "PO No."},
		Rows:    []map[string]string{{"From Site": "TPV / MNT", "PO No.": "P1"}},
	}

	_, _, err := SaveShipmentRows(tbl, "TPV / MNT")
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveShipmentRowsEmptyBatch(t *testing.T) {
	withMockDB(t)
	tbl := &models.Table{Columns: []string{"PO No."}}
	inserted, added, err := SaveShipmentRows(tbl, "TPV / MNT")
	require.NoError(t, err)
	assert.Zero(t, inserted)
	assert.Empty(t, added)
}

func TestDistinctPONumbers(t *testing.T) {
	tbl := &models.Table{
		Columns: []string{"PO No."},
		Rows: []map[string]string{
			{"PO No.": "P1"},
			{"PO No.": ""},
			{"PO No.": "P2"},
			{"PO No.": "P1"},
		},
	}
	assert.Equal(t, []string{"P1", "P2"}, distinctPONumbers(tbl))
}

func TestQuoteIdent(t *testing.T) {
	assert.Equal(t, "`PO No.`", quoteIdent("PO No."))
	assert.Equal(t, "`weird``name`", quoteIdent("weird`name"))
}
