// backend/models/shipment.go
package models

// Table is one parsed spreadsheet export: an ordered header plus rows keyed
// by header. Exports vary in shape between vendors and over time, so rows are
// kept as maps rather than a fixed struct; the ingestion path only reasons
// about the handful of well-known columns below and passes the rest through.
type Table struct {
	Columns []string
	Rows    []map[string]string
}

// Well-known column names as they appear in the vendor exports (and therefore
// in the shipment_data table - column names are carried through verbatim).
const (
	ColFromSite = "From Site"
	ColSource   = "Source"
	ColPONo     = "PO No."
	ColModel    = "Model"
	ColShipTo   = "Ship To"
	ColRSD      = "RSD"
	ColShipDate = "Ship Date"
	ColWeek     = "Week"
	ColWeekName = "Week Name"
	ColMonth    = "Month"
	ColRegion   = "Region"
	ColCountry  = "Country"
)

// HasColumn reports whether the table header contains name.
func (t *Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// AddColumn appends name to the header if it is not already present.
func (t *Table) AddColumn(name string) {
	if !t.HasColumn(name) {
		t.Columns = append(t.Columns, name)
	}
}

// SiteMapping is one row of the site_mapping reference table, keyed by the
// ship-to site code.
type SiteMapping struct {
	ToSite     string `csv:"To Site"`
	Subsidiary string `csv:"Subsidiary"`
	Region     string `csv:"Region"`
	Country    string `csv:"Country"`
}

// IngestReport summarizes what one batch did to the store. Excluded models
// and unmapped ship-tos are distinct values, not row counts.
type IngestReport struct {
	SourceFile         string   `json:"source_file"`
	FromSite           string   `json:"from_site"`
	RowsParsed         int      `json:"rows_parsed"`
	RowsInserted       int      `json:"rows_inserted"`
	ExcludedModels     []string `json:"excluded_models,omitempty"`
	UnmappedShipTos    []string `json:"unmapped_ship_tos,omitempty"`
	ColumnsAdded       []string `json:"columns_added,omitempty"`
	ModelFilterSkipped bool     `json:"model_filter_skipped,omitempty"`
}
