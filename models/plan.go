// backend/models/plan.go
package models

import "fmt"

// ShipmentPlan is one row of the planning table fed by the external API
// caller. Unlike shipment_data this table has a fixed shape and a declared
// unique key, so a plain tagged struct works here. The JSON tags carry the
// human-readable spaced column names the caller sends; the db tags are the
// physical column names.
type ShipmentPlan struct {
	ID int64 `json:"-" db:"id"`

	Planweek           string `json:"Planweek" db:"Planweek"`
	CreatedAt          string `json:"Created_at" db:"Created_at"`
	Division           string `json:"Division" db:"Division"`
	FromSite           string `json:"From Site" db:"From Site"`
	Region             string `json:"Region" db:"Region"`
	ToSite             string `json:"To Site" db:"To Site"`
	MappingModelSuffix string `json:"Mapping Model.Suffix" db:"Mapping Model.Suffix"`
	RepPMS             string `json:"Rep PMS" db:"Rep PMS"`
	Category           string `json:"Category" db:"Category"`
	Frozen             string `json:"Frozen" db:"Frozen"`
	Month              string `json:"Month" db:"Month"`
	WeekName           string `json:"Week Name" db:"Week Name"`
	SP                 *int64 `json:"SP" db:"SP"`
}

// Validate checks the columns that make up the unique key (Created_at and
// Category may legitimately be blank but must be present as columns, which
// JSON decoding guarantees).
func (p *ShipmentPlan) Validate() error {
	switch {
	case p.Planweek == "":
		return fmt.Errorf("missing Planweek")
	case p.Division == "":
		return fmt.Errorf("missing Division")
	case p.FromSite == "":
		return fmt.Errorf("missing From Site")
	case p.ToSite == "":
		return fmt.Errorf("missing To Site")
	case p.MappingModelSuffix == "":
		return fmt.Errorf("missing Mapping Model.Suffix")
	case p.WeekName == "":
		return fmt.Errorf("missing Week Name")
	}
	return nil
}
