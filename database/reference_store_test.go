// backend/database/reference_store_test.go
package database

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetValidModelSeries(t *testing.T) {
	mock := withMockDB(t)
	rows := sqlmock.NewRows([]string{"Series"}).
		AddRow("27GQ50F").
		AddRow(nil).
		AddRow("").
		AddRow("24GQ40W")
	mock.ExpectQuery("SELECT Series FROM os_models").WillReturnRows(rows)

	series, err := GetValidModelSeries()
	require.NoError(t, err)
	// NULL and empty series are dropped.
	assert.Equal(t, map[string]struct{}{"27GQ50F": {}, "24GQ40W": {}}, series)
}

func TestGetSiteMappings(t *testing.T) {
	mock := withMockDB(t)
	rows := sqlmock.NewRows([]string{"to_site", "subsidiary", "region", "country"}).
		AddRow("DE01", "LGEDG", "Europe", "Germany").
		AddRow("US01", nil, "NA", nil)
	mock.ExpectQuery("SELECT to_site, subsidiary, region, country FROM site_mapping").WillReturnRows(rows)

	mappings, err := GetSiteMappings()
	require.NoError(t, err)
	require.Len(t, mappings, 2)
	assert.Equal(t, "Europe", mappings["DE01"].Region)
	assert.Equal(t, "Germany", mappings["DE01"].Country)
	// Region "NA" is a real region code, not a null.
	assert.Equal(t, "NA", mappings["US01"].Region)
	assert.Equal(t, "", mappings["US01"].Country)
}

func TestImportModelSeries(t *testing.T) {
	mock := withMockDB(t)
	path := filepath.Join(t.TempDir(), "models.csv")
	require.NoError(t, os.WriteFile(path, []byte("Series,Division\n27GQ50F,Monitor\n24GQ40W,Monitor\n,Monitor\n"), 0644))

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM os_models").WillReturnResult(sqlmock.NewResult(0, 0))
	prep := mock.ExpectPrepare("INSERT INTO os_models")
	prep.ExpectExec().WithArgs("27GQ50F").WillReturnResult(sqlmock.NewResult(1, 1))
	prep.ExpectExec().WithArgs("24GQ40W").WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	count, err := ImportModelSeries(path)
	require.NoError(t, err)
	// Blank series rows are skipped.
	assert.Equal(t, 2, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestImportSiteMappings(t *testing.T) {
	mock := withMockDB(t)
	path := filepath.Join(t.TempDir(), "site mapping.txt")
	tsv := "To Site\tSubsidiary\tRegion\tCountry\n" +
		"DE01\tLGEDG\tEurope\tGermany\n" +
		"US01\t\tNA\t\n"
	require.NoError(t, os.WriteFile(path, []byte(tsv), 0644))

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM site_mapping").WillReturnResult(sqlmock.NewResult(0, 0))
	prep := mock.ExpectPrepare("INSERT INTO site_mapping")
	prep.ExpectExec().WithArgs("DE01", "LGEDG", "Europe", "Germany").WillReturnResult(sqlmock.NewResult(1, 1))
	// Blank fields become NULL; the literal "NA" region survives.
	prep.ExpectExec().WithArgs("US01", nil, "NA", nil).WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	count, err := ImportSiteMappings(path)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDecodeKoreanIfNeeded(t *testing.T) {
	// Plain UTF-8 passes through, BOM stripped.
	assert.Equal(t, []byte("Series\n27GQ50F\n"), decodeKoreanIfNeeded([]byte("\ufeffSeries\n27GQ50F\n")))

	// EUC-KR bytes for the Korean word for "monitor" get decoded.
	eucKR := []byte{0xb8, 0xf0, 0xb4, 0xcf, 0xc5, 0xcd}
	decoded := decodeKoreanIfNeeded(eucKR)
	assert.Equal(t, "모니터", string(decoded))
}
