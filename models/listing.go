package models

import "strconv"

// Raw column names read from the scraped listing files.
const (
	ColumnPrice            = "price"
	ColumnFactsAndFeatures = "facts and features"
	ColumnTitle            = "title"
	ColumnAddress          = "address"
	ColumnURL              = "url"
)

// Derived column names added by the cleaner. "price" overwrites the raw column.
const (
	ColumnBed          = "bed"
	ColumnBath         = "bath"
	ColumnSqft         = "sqft"
	ColumnPropertyType = "property_type"
)

// DerivedColumns lists the derived fields in the order they are appended.
var DerivedColumns = []string{ColumnPrice, ColumnBed, ColumnBath, ColumnSqft, ColumnPropertyType}

// PropertyType is the short code for a listing category. The zero value means absent.
type PropertyType string

const (
	PropertyTypeNone        PropertyType = ""
	PropertyTypeCondo       PropertyType = "condo"
	PropertyTypeHouse       PropertyType = "house"
	PropertyTypeApartment   PropertyType = "apartment"
	PropertyTypeNew         PropertyType = "new"
	PropertyTypeForeclosure PropertyType = "foreclosure"
	PropertyTypeLot         PropertyType = "lot"
	PropertyTypeComing      PropertyType = "coming"
	PropertyTypeCoop        PropertyType = "coop"
	PropertyTypeAuction     PropertyType = "auction"
	PropertyTypeTownhouse   PropertyType = "townhouse"
)

// Dataset is the merged, deduplicated table of raw listing rows.
// Every row has exactly len(Columns) cells; cells a source file did not
// provide are empty.
type Dataset struct {
	Columns []string
	Rows    [][]string
}

// Len returns the number of rows.
func (d *Dataset) Len() int { return len(d.Rows) }

// Listing is one cleaned record: the raw cells keyed by column name plus the
// derived fields. A nil pointer marks an absent value.
type Listing struct {
	Fields map[string]string

	Price        *float64
	Bed          *float64
	Bath         *float64
	Sqft         *float64
	PropertyType PropertyType
}

// Field returns the raw cell for column, or "" if the listing has none.
func (l *Listing) Field(column string) string {
	return l.Fields[column]
}

// CleanDataset is the normalised dataset handed back by the pipeline.
type CleanDataset struct {
	// Columns are the source columns in their original order.
	Columns  []string
	Listings []*Listing
}

// Len returns the number of listings.
func (c *CleanDataset) Len() int { return len(c.Listings) }

// Header returns the output column order: the source columns followed by any
// derived column not already present.
func (c *CleanDataset) Header() []string {
	header := append([]string(nil), c.Columns...)
	present := make(map[string]bool, len(header))
	for _, col := range header {
		present[col] = true
	}
	for _, col := range DerivedColumns {
		if !present[col] {
			header = append(header, col)
		}
	}
	return header
}

// Record renders l as a row in header order. Absent values are empty cells.
func (l *Listing) Record(header []string) []string {
	row := make([]string, len(header))
	for i, col := range header {
		switch col {
		case ColumnPrice:
			row[i] = FormatFloat(l.Price)
		case ColumnBed:
			row[i] = FormatFloat(l.Bed)
		case ColumnBath:
			row[i] = FormatFloat(l.Bath)
		case ColumnSqft:
			row[i] = FormatFloat(l.Sqft)
		case ColumnPropertyType:
			row[i] = string(l.PropertyType)
		default:
			row[i] = l.Fields[col]
		}
	}
	return row
}

// FormatFloat renders an optional number, or "" when absent.
func FormatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// DatasetSummary holds the computed analytics over the cleaned dataset.
type DatasetSummary struct {
	TotalListings   int
	PricedListings  int
	AveragePrice    float64
	MedianPrice     float64
	MinPrice        float64
	MaxPrice        float64
	AvgPricePerSqft float64
	MostExpensive   *Listing
	ByPropertyType  map[PropertyType]int
	MissingPrice    int
	MissingBed      int
	MissingBath     int
	MissingSqft     int
	MissingType     int
}
