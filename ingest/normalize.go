// backend/ingest/normalize.go
package ingest

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/mntops/shipsync/backend/config"
	"github.com/mntops/shipsync/backend/models"
)

const dateLayout = "2006-01-02" // canonical form dates are stored in

// Layouts the vendor exports have been seen using. Values that match none of
// these (and are not an Excel serial) become empty, never an error.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"2006.01.02",
	"01/02/2006",
	"1/2/2006",
	"02-Jan-2006",
	"2006-01-02 15:04:05",
	"01/02/2006 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
}

// ParseDateLenient parses a spreadsheet cell into a date, best-effort.
// Excel stores dates as day serials, and the HTML-shaped exports carry them
// as plain text in assorted layouts.
func ParseDateLenient(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}

	if serial, err := strconv.ParseFloat(value, 64); err == nil {
		// Serial 61 = 1900-03-01; anything below is header junk, not a date.
		if serial >= 61 && serial < 300000 {
			if t, err := excelize.ExcelDateToTime(serial, false); err == nil {
				return t, true
			}
		}
		return time.Time{}, false
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// WeekLabel renders the ISO week a date falls in as the week's Monday plus
// the zero-padded week number, e.g. 2024-01-01(W01).
func WeekLabel(t time.Time) string {
	_, week := t.ISOWeek()
	monday := weekStart(t)
	return fmt.Sprintf("%04d-%02d-%02d(W%02d)", monday.Year(), int(monday.Month()), monday.Day(), week)
}

// MonthBucket assigns an ISO week to a calendar month: the month that owns
// the majority of the week's 7 days wins, and a tie goes to the smaller
// month number. Returned as yyyy-mm using the ISO year of the week's Monday.
func MonthBucket(t time.Time) string {
	monday := weekStart(t)

	counts := make(map[time.Month]int, 2)
	for i := 0; i < 7; i++ {
		counts[monday.AddDate(0, 0, i).Month()]++
	}

	best := time.Month(0)
	for m := time.January; m <= time.December; m++ {
		n, ok := counts[m]
		if !ok {
			continue
		}
		if best == 0 || n > counts[best] {
			best = m
		}
	}

	isoYear, _ := monday.ISOWeek()
	return fmt.Sprintf("%04d-%02d", isoYear, int(best))
}

// weekStart returns the Monday of t's ISO week.
func weekStart(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7 // Monday=0 ... Sunday=6
	return t.AddDate(0, 0, -offset)
}

// Normalize prepares a parsed export for enrichment and storage:
// decorative "Unnamed:" columns are dropped, known-bad values remapped,
// every row is tagged with its provenance, and the calendar columns are
// derived from the RSD and Ship Date dates. Bad individual dates degrade to
// empty fields.
func Normalize(tbl *models.Table, site, system string, remaps []config.ValueRemap) {
	dropUnnamedColumns(tbl)
	applyRemaps(tbl, site, system, remaps)

	tbl.AddColumn(models.ColFromSite)
	tbl.AddColumn(models.ColSource)
	for _, row := range tbl.Rows {
		row[models.ColFromSite] = site
		row[models.ColSource] = system
	}

	if tbl.HasColumn(models.ColRSD) {
		tbl.AddColumn(models.ColWeek)
		for _, row := range tbl.Rows {
			if t, ok := ParseDateLenient(row[models.ColRSD]); ok {
				row[models.ColRSD] = t.Format(dateLayout)
				row[models.ColWeek] = WeekLabel(t)
			} else {
				row[models.ColRSD] = ""
				row[models.ColWeek] = ""
			}
		}
	}

	if tbl.HasColumn(models.ColShipDate) {
		tbl.AddColumn(models.ColWeekName)
		tbl.AddColumn(models.ColMonth)
		for _, row := range tbl.Rows {
			if t, ok := ParseDateLenient(row[models.ColShipDate]); ok {
				row[models.ColShipDate] = t.Format(dateLayout)
				row[models.ColWeekName] = WeekLabel(t)
				row[models.ColMonth] = MonthBucket(t)
			} else {
				row[models.ColShipDate] = ""
				row[models.ColWeekName] = ""
				row[models.ColMonth] = ""
			}
		}
	}
}

func dropUnnamedColumns(tbl *models.Table) {
	kept := tbl.Columns[:0]
	for _, col := range tbl.Columns {
		if strings.HasPrefix(col, "Unnamed:") {
			for _, row := range tbl.Rows {
				delete(row, col)
			}
			continue
		}
		kept = append(kept, col)
	}
	tbl.Columns = kept
}

func applyRemaps(tbl *models.Table, site, system string, remaps []config.ValueRemap) {
	for _, rm := range remaps {
		if rm.Site != site || rm.System != system || !tbl.HasColumn(rm.Column) {
			continue
		}
		for _, row := range tbl.Rows {
			if row[rm.Column] == rm.From {
				row[rm.Column] = rm.To
			}
		}
	}
}
