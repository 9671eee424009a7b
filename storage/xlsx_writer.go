package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"sf-housing/models"
)

// ListingsSheet is the worksheet name used for exported listings.
const ListingsSheet = "Listings"

// XLSXWriter exports cleaned listings to an Excel workbook. Derived numbers
// are written as numeric cells; absent values are left blank.
type XLSXWriter struct {
	path string
}

// NewXLSXWriter returns a writer targeting path.
func NewXLSXWriter(path string) *XLSXWriter {
	return &XLSXWriter{path: path}
}

func (x *XLSXWriter) Write(ds *models.CleanDataset) error {
	if err := os.MkdirAll(filepath.Dir(x.path), 0755); err != nil {
		return fmt.Errorf("xlsx: create output dir: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ListingsSheet); err != nil {
		return fmt.Errorf("xlsx: rename sheet: %w", err)
	}

	header := ds.Header()
	headerRow := make([]interface{}, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	if err := f.SetSheetRow(ListingsSheet, "A1", &headerRow); err != nil {
		return fmt.Errorf("xlsx: write header: %w", err)
	}

	for i, l := range ds.Listings {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("xlsx: cell for row %d: %w", i, err)
		}
		row := xlsxRow(header, l)
		if err := f.SetSheetRow(ListingsSheet, cell, &row); err != nil {
			return fmt.Errorf("xlsx: write row %d: %w", i, err)
		}
	}

	if err := f.SaveAs(x.path); err != nil {
		return fmt.Errorf("xlsx: save %q: %w", x.path, err)
	}
	return nil
}

func (x *XLSXWriter) Close() error { return nil }

func xlsxRow(header []string, l *models.Listing) []interface{} {
	row := make([]interface{}, len(header))
	for i, col := range header {
		switch col {
		case models.ColumnPrice:
			row[i] = numericCell(l.Price)
		case models.ColumnBed:
			row[i] = numericCell(l.Bed)
		case models.ColumnBath:
			row[i] = numericCell(l.Bath)
		case models.ColumnSqft:
			row[i] = numericCell(l.Sqft)
		case models.ColumnPropertyType:
			row[i] = string(l.PropertyType)
		default:
			row[i] = l.Field(col)
		}
	}
	return row
}

func numericCell(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
