// backend/ingest/workbook.go
package ingest

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"

	"github.com/mntops/shipsync/backend/models"
)

// ReadWorkbook parses one downloaded export into a Table. The vendor serves
// either a real XLSX, a legacy binary XLS, or - frequently - an HTML table
// saved with an .xls extension, so .xls files that fail the binary reader
// get a second pass through the HTML parser. Any error here aborts the batch
// before the store is touched.
func ReadWorkbook(path string) (*models.Table, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".xlsx", ".xlsm":
		return readXLSX(path)
	case ".xls":
		tbl, err := readXLS(path)
		if err != nil {
			log.Printf("WARN Ingest: binary XLS parse failed for %s (%v), trying HTML table fallback", filepath.Base(path), err)
			return readHTMLTable(path)
		}
		return tbl, nil
	default:
		return nil, fmt.Errorf("unsupported spreadsheet extension %q for %s", ext, filepath.Base(path))
	}
}

func readXLSX(path string) (*models.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open XLSX %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("no worksheet found in %s", path)
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows from %s: %w", path, err)
	}
	return tableFromRows(rows, path)
}

func readXLS(path string) (*models.Table, error) {
	wb, err := xls.Open(path, "utf-8")
	if err != nil {
		return nil, fmt.Errorf("failed to open XLS %s: %w", path, err)
	}
	if wb.NumSheets() == 0 {
		return nil, fmt.Errorf("no worksheet found in %s", path)
	}
	rows := wb.ReadAllCells(200000)
	return tableFromRows(rows, path)
}

// readHTMLTable parses the first <table> of an HTML document into a Table.
func readHTMLTable(path string) (*models.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	doc, err := goquery.NewDocumentFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML from %s: %w", path, err)
	}

	table := doc.Find("table").First()
	if table.Length() == 0 {
		return nil, fmt.Errorf("no <table> element found in %s", path)
	}

	var rows [][]string
	table.Find("tr").Each(func(i int, tr *goquery.Selection) {
		var cells []string
		tr.Find("td, th").Each(func(j int, cell *goquery.Selection) {
			cells = append(cells, strings.TrimSpace(cell.Text()))
		})
		if len(cells) > 0 {
			rows = append(rows, cells)
		}
	})
	return tableFromRows(rows, path)
}

// tableFromRows treats the first row as the header and the rest as data.
// Blank headers get a placeholder name so the normalizer can drop them the
// same way it drops the vendor's own "Unnamed:" filler columns.
func tableFromRows(rows [][]string, path string) (*models.Table, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("worksheet is empty in %s", path)
	}

	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		h = strings.TrimSpace(h)
		if h == "" {
			h = fmt.Sprintf("Unnamed: %d", i)
		}
		header[i] = h
	}

	tbl := &models.Table{Columns: header}
	for _, raw := range rows[1:] {
		row := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(raw) {
				row[col] = strings.TrimSpace(raw[i])
			} else {
				row[col] = ""
			}
		}
		tbl.Rows = append(tbl.Rows, row)
	}
	return tbl, nil
}
