// backend/ingest/resolver_test.go
package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mntops/shipsync/backend/models"
)

func TestExtractSeries(t *testing.T) {
	tests := []struct {
		model string
		want  string
	}{
		{"27GQ50F-B.AUS", "27GQ50F"},
		{"24GQ40W-B.AUS", "24GQ40W"},
		{"27GQ50F.KR", "27GQ50F"},
		{"27GQ50F-B", "27GQ50F"},
		{"AnotherBadModel", "AnotherBadModel"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ExtractSeries(tt.model), "model %q", tt.model)
	}
}

func TestFilterModelsReportsDistinctModels(t *testing.T) {
	valid := map[string]struct{}{"27GQ50F": {}, "24GQ40W": {}}
	tbl := &models.Table{
		Columns: []string{"Model", "PO No."},
		Rows: []map[string]string{
			{"Model": "27GQ50F-B.AUS", "PO No.": "P1"},
			{"Model": "INVALID-MODEL.XX", "PO No.": "P2"},
			{"Model": "INVALID-MODEL.XX", "PO No.": "P3"}, // same model again
			{"Model": "24GQ40W-B.AUS", "PO No.": "P4"},
			{"Model": "AnotherBadModel", "PO No.": "P5"},
		},
	}

	excluded := FilterModels(tbl, valid)

	// One report entry per distinct model identifier, not per row.
	assert.Equal(t, []string{"INVALID-MODEL.XX", "AnotherBadModel"}, excluded)
	assert.Len(t, tbl.Rows, 2)
	assert.Equal(t, "P1", tbl.Rows[0]["PO No."])
	assert.Equal(t, "P4", tbl.Rows[1]["PO No."])
}

func TestFilterModelsKeepsRowsWithoutModelValue(t *testing.T) {
	tbl := &models.Table{
		Columns: []string{"Model"},
		Rows:    []map[string]string{{"Model": ""}},
	}
	excluded := FilterModels(tbl, map[string]struct{}{"27GQ50F": {}})
	assert.Empty(t, excluded)
	assert.Len(t, tbl.Rows, 1)
}

func TestFilterModelsNoModelColumn(t *testing.T) {
	tbl := &models.Table{
		Columns: []string{"PO No."},
		Rows:    []map[string]string{{"PO No.": "P1"}},
	}
	excluded := FilterModels(tbl, map[string]struct{}{})
	assert.Empty(t, excluded)
	assert.Len(t, tbl.Rows, 1)
}

func TestJoinSiteMappings(t *testing.T) {
	mappings := map[string]models.SiteMapping{
		"DE01": {ToSite: "DE01", Region: "Europe", Country: "Germany"},
	}
	tbl := &models.Table{
		Columns: []string{"Ship To"},
		Rows: []map[string]string{
			{"Ship To": "DE01"},
			{"Ship To": "XX99"},
			{"Ship To": "XX99"},
			{"Ship To": ""},
		},
	}

	unmapped := JoinSiteMappings(tbl, mappings)

	// Unmapped values surface once each; their rows stay with empty
	// region/country rather than blocking the batch.
	assert.Equal(t, []string{"XX99"}, unmapped)
	assert.Contains(t, tbl.Columns, models.ColRegion)
	assert.Contains(t, tbl.Columns, models.ColCountry)
	assert.Equal(t, "Europe", tbl.Rows[0][models.ColRegion])
	assert.Equal(t, "Germany", tbl.Rows[0][models.ColCountry])
	assert.Equal(t, "", tbl.Rows[1][models.ColRegion])
	assert.Equal(t, "", tbl.Rows[1][models.ColCountry])
}
