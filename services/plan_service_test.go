// backend/services/plan_service_test.go
package services

import (
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mntops/shipsync/backend/config"
)

func TestUpsertPlanRowsDecodesSpacedKeys(t *testing.T) {
	mock := withMockDB(t)
	config.AppConfig = config.Config{}

	body := `[{
		"Planweek": "2024-01-01(W01)",
		"Created_at": "2024-01-02",
		"Division": "MNT",
		"From Site": "TPV / MNT",
		"To Site": "DE01",
		"Mapping Model.Suffix": "27GQ50F-B.AUS",
		"Category": "Monitor",
		"Week Name": "2024-01-08(W02)",
		"SP": 120
	}]`

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO shipment_plans").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	affected, err := UpsertPlanRows(strings.NewReader(body))
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertPlanRowsRejectsMalformedJSON(t *testing.T) {
	mock := withMockDB(t)
	_, err := UpsertPlanRows(strings.NewReader(`{"not": "an array"`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertPlanRowsRejectsEmptyArray(t *testing.T) {
	mock := withMockDB(t)
	_, err := UpsertPlanRows(strings.NewReader(`[]`))
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertPlanRowsRejectsRowMissingKeyColumn(t *testing.T) {
	mock := withMockDB(t)
	body := `[{"Planweek": "2024-01-01(W01)", "Division": "MNT"}]`
	_, err := UpsertPlanRows(strings.NewReader(body))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid plan row 0")
	assert.NoError(t, mock.ExpectationsWereMet())
}
