package services

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	"sf-housing/models"
	"sf-housing/utils"
)

var (
	// nonDecimalRegexp matches every character that is not a digit or a period
	nonDecimalRegexp = regexp.MustCompile(`[^0-9.]+`)
)

// segmentSep separates the parts of a "facts and features" string,
// e.g. "3 bd, 2 ba, 1,500 sqft". The comma inside "1,500" is not a separator.
const segmentSep = ", "

// propertyTypes maps listing titles to short codes. "For Sale by Owner" is a
// known label that deliberately maps to no type.
var propertyTypes = map[string]models.PropertyType{
	"Condo For Sale":     models.PropertyTypeCondo,
	"House For Sale":     models.PropertyTypeHouse,
	"Apartment For Sale": models.PropertyTypeApartment,
	"New Construction":   models.PropertyTypeNew,
	"Foreclosure":        models.PropertyTypeForeclosure,
	"Lot/Land For Sale":  models.PropertyTypeLot,
	"Coming Soon":        models.PropertyTypeComing,
	"Co-op For Sale":     models.PropertyTypeCoop,
	"Auction":            models.PropertyTypeAuction,
	"For Sale by Owner":  models.PropertyTypeNone,
	"Townhouse For Sale": models.PropertyTypeTownhouse,
}

// ParseBeds extracts the bedroom count from a "facts and features" string.
// Only the first segment is inspected: "3 bd, 2 ba" yields 3, "Studio, 1 ba"
// yields 0 and "2 ba, 3 bd" yields nothing.
func ParseBeds(text string) (float64, bool) {
	first, _, _ := strings.Cut(strings.ToLower(text), segmentSep)
	switch {
	case strings.Contains(first, "bd"):
		return parseDecimal(first)
	case strings.Contains(first, "studio"):
		return 0, true
	}
	return 0, false
}

// ParseBath extracts the bathroom count from the first segment containing "ba".
func ParseBath(text string) (float64, bool) {
	return parseKeyedSegment(text, "ba")
}

// ParseSqft extracts the floor area from the first segment containing "ft".
func ParseSqft(text string) (float64, bool) {
	return parseKeyedSegment(text, "ft")
}

// parseKeyedSegment parses the first segment containing key and stops there,
// whether or not that segment holds a usable number.
func parseKeyedSegment(text, key string) (float64, bool) {
	for _, seg := range strings.Split(strings.ToLower(text), segmentSep) {
		if strings.Contains(seg, key) {
			return parseDecimal(seg)
		}
	}
	return 0, false
}

// FormatPrice converts a display price such as "$1.2M", "$850K" or
// "$1,095,000" to a number. "M" takes precedence over "K".
func FormatPrice(text string) (float64, bool) {
	multiplier := 1.0
	if strings.Contains(text, "M") {
		multiplier = 1e6
	} else if strings.Contains(text, "K") {
		multiplier = 1e3
	}

	v, ok := parseDecimal(text)
	if !ok {
		return 0, false
	}
	return v * multiplier, true
}

// parseDecimal strips every non-digit, non-period character and parses the
// rest. Overflow saturates to ±Inf rather than failing.
func parseDecimal(s string) (float64, bool) {
	digits := nonDecimalRegexp.ReplaceAllString(s, "")
	v, err := strconv.ParseFloat(digits, 64)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange) {
			return v, true
		}
		return 0, false
	}
	return v, true
}

// Cleaner derives the numeric and categorical fields of each listing.
type Cleaner struct {
	logger *utils.Logger
}

// NewCleaner creates a Cleaner with the given logger.
func NewCleaner(logger *utils.Logger) *Cleaner {
	return &Cleaner{logger: logger}
}

// ParsePropertyType maps a listing title to its property type. Unknown titles
// are logged and yield no type.
func (c *Cleaner) ParsePropertyType(title string) (models.PropertyType, bool) {
	pt, known := propertyTypes[title]
	if !known {
		c.logger.Warn("[cleaner] Unknown property type %q", title)
		return models.PropertyTypeNone, false
	}
	return pt, pt != models.PropertyTypeNone
}

// Clean derives price, bed, bath, sqft and property_type for every row of
// the dataset. Rows are never dropped; unparseable fields are left absent.
func (c *Cleaner) Clean(ds *models.Dataset) *models.CleanDataset {
	out := &models.CleanDataset{
		Columns:  append([]string(nil), ds.Columns...),
		Listings: make([]*models.Listing, 0, len(ds.Rows)),
	}

	var priced, typed int
	for _, row := range ds.Rows {
		fields := make(map[string]string, len(ds.Columns))
		for i, col := range ds.Columns {
			if i < len(row) {
				fields[col] = row[i]
			}
		}

		facts := fields[models.ColumnFactsAndFeatures]
		listing := &models.Listing{
			Fields: fields,
			Price:  optional(FormatPrice(fields[models.ColumnPrice])),
			Bed:    optional(ParseBeds(facts)),
			Bath:   optional(ParseBath(facts)),
			Sqft:   optional(ParseSqft(facts)),
		}
		listing.PropertyType, _ = c.ParsePropertyType(fields[models.ColumnTitle])

		if listing.Price != nil {
			priced++
		}
		if listing.PropertyType != models.PropertyTypeNone {
			typed++
		}
		out.Listings = append(out.Listings, listing)
	}

	c.logger.Info("[cleaner] Normalised %d listings (%d priced, %d typed)",
		len(out.Listings), priced, typed)
	return out
}

func optional(v float64, ok bool) *float64 {
	if !ok {
		return nil
	}
	return &v
}
