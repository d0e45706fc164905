// backend/ingest/resolver.go
package ingest

import (
	"strings"

	"github.com/mntops/shipsync/backend/models"
)

// ExtractSeries derives the comparable model-family key from a full model
// identifier by stripping the variant suffix and then the region/country
// suffix, e.g. 27GQ50F-B.AUS -> 27GQ50F. Identifiers lacking a delimiter
// pass through whole.
func ExtractSeries(model string) string {
	series := model
	if i := strings.Index(series, "-"); i >= 0 {
		series = series[:i]
	}
	if i := strings.Index(series, "."); i >= 0 {
		series = series[:i]
	}
	return series
}

// FilterModels removes rows whose derived series is not in the valid set and
// returns the distinct original model identifiers that were excluded, in
// first-seen order. Rows without a Model column value are kept (nothing to
// judge them by). A nil or empty valid set filters everything out, so the
// caller is expected to skip this step entirely when the reference table
// cannot be read.
func FilterModels(tbl *models.Table, validSeries map[string]struct{}) (excluded []string) {
	if !tbl.HasColumn(models.ColModel) {
		return nil
	}

	seen := make(map[string]struct{})
	kept := tbl.Rows[:0]
	for _, row := range tbl.Rows {
		model := row[models.ColModel]
		if model == "" {
			kept = append(kept, row)
			continue
		}
		if _, ok := validSeries[ExtractSeries(model)]; ok {
			kept = append(kept, row)
			continue
		}
		if _, dup := seen[model]; !dup {
			seen[model] = struct{}{}
			excluded = append(excluded, model)
		}
	}
	tbl.Rows = kept
	return excluded
}

// JoinSiteMappings left-joins the table on Ship To against the site mapping,
// filling Region and Country. Unmapped ship-to values are returned as a
// distinct warning list; their rows keep empty Region/Country and stay in
// the batch - whether that warns or blocks the ingestion is the caller's
// policy decision.
func JoinSiteMappings(tbl *models.Table, mappings map[string]models.SiteMapping) (unmapped []string) {
	if !tbl.HasColumn(models.ColShipTo) {
		return nil
	}

	tbl.AddColumn(models.ColRegion)
	tbl.AddColumn(models.ColCountry)

	seen := make(map[string]struct{})
	for _, row := range tbl.Rows {
		shipTo := row[models.ColShipTo]
		if shipTo == "" {
			continue
		}
		if m, ok := mappings[shipTo]; ok {
			row[models.ColRegion] = m.Region
			row[models.ColCountry] = m.Country
			continue
		}
		if _, dup := seen[shipTo]; !dup {
			seen[shipTo] = struct{}{}
			unmapped = append(unmapped, shipTo)
		}
	}
	return unmapped
}
