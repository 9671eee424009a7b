package services

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"sf-housing/models"
	"sf-housing/utils"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("5"))
	sectionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("3"))
	valueStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("2"))
	warnStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("1"))
)

type InsightService struct {
	logger *utils.Logger
}

func NewInsightService(logger *utils.Logger) *InsightService {
	return &InsightService{logger: logger}
}

func (s *InsightService) Generate(listings []*models.Listing) *models.DatasetSummary {
	report := &models.DatasetSummary{
		ByPropertyType: make(map[models.PropertyType]int),
	}

	if len(listings) == 0 {
		return report
	}

	report.TotalListings = len(listings)

	var prices []float64
	var perSqftTotal float64
	var perSqftCount int

	for _, l := range listings {
		if l.Price == nil {
			report.MissingPrice++
		} else {
			prices = append(prices, *l.Price)
			if report.MostExpensive == nil || *l.Price > *report.MostExpensive.Price {
				report.MostExpensive = l
			}
			if l.Sqft != nil && *l.Sqft > 0 {
				perSqftTotal += *l.Price / *l.Sqft
				perSqftCount++
			}
		}
		if l.Bed == nil {
			report.MissingBed++
		}
		if l.Bath == nil {
			report.MissingBath++
		}
		if l.Sqft == nil {
			report.MissingSqft++
		}
		if l.PropertyType == models.PropertyTypeNone {
			report.MissingType++
		} else {
			report.ByPropertyType[l.PropertyType]++
		}
	}

	// Price stats (only listings with a parsed price)
	report.PricedListings = len(prices)
	if len(prices) > 0 {
		sort.Float64s(prices)
		var total float64
		for _, p := range prices {
			total += p
		}
		report.MinPrice = round2(prices[0])
		report.MaxPrice = round2(prices[len(prices)-1])
		report.AveragePrice = round2(total / float64(len(prices)))
		report.MedianPrice = round2(median(prices))
	}
	if perSqftCount > 0 {
		report.AvgPricePerSqft = round2(perSqftTotal / float64(perSqftCount))
	}

	s.logger.Debug("[insights] Summarised %d listings (%d priced)", report.TotalListings, report.PricedListings)
	return report
}

func (s *InsightService) Print(w io.Writer, r *models.DatasetSummary) {
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)

	fmt.Fprintf(w, "\n%s\n", titleStyle.Render(sep))
	fmt.Fprintf(w, "%s\n", titleStyle.Render("  SF HOUSING DATASET SUMMARY"))
	fmt.Fprintf(w, "%s\n\n", titleStyle.Render(sep))

	// Overview
	fmt.Fprintf(w, "%s\n", sectionStyle.Render("  Overview"))
	fmt.Fprintf(w, "  %s\n", thin)
	fmt.Fprintf(w, "  Total listings  : %s\n", valueStyle.Render(fmt.Sprint(r.TotalListings)))
	fmt.Fprintf(w, "  Priced listings : %s\n", valueStyle.Render(fmt.Sprint(r.PricedListings)))
	fmt.Fprintln(w)

	// Price Stats
	fmt.Fprintf(w, "%s\n", sectionStyle.Render("  Price Statistics"))
	fmt.Fprintf(w, "  %s\n", thin)
	if r.PricedListings > 0 {
		fmt.Fprintf(w, "  Average price  : %s\n", valueStyle.Render(fmt.Sprintf("$%.2f", r.AveragePrice)))
		fmt.Fprintf(w, "  Median price   : %s\n", valueStyle.Render(fmt.Sprintf("$%.2f", r.MedianPrice)))
		fmt.Fprintf(w, "  Minimum price  : %s\n", valueStyle.Render(fmt.Sprintf("$%.2f", r.MinPrice)))
		fmt.Fprintf(w, "  Maximum price  : %s\n", valueStyle.Render(fmt.Sprintf("$%.2f", r.MaxPrice)))
		if r.AvgPricePerSqft > 0 {
			fmt.Fprintf(w, "  Avg price/sqft : %s\n", valueStyle.Render(fmt.Sprintf("$%.2f", r.AvgPricePerSqft)))
		}
	} else {
		fmt.Fprintf(w, "  No price data available\n")
	}
	fmt.Fprintln(w)

	// Most Expensive
	if r.MostExpensive != nil {
		fmt.Fprintf(w, "%s\n", sectionStyle.Render("  Most Expensive Listing"))
		fmt.Fprintf(w, "  %s\n", thin)
		fmt.Fprintf(w, "  %s\n", truncate(r.MostExpensive.Field(models.ColumnAddress), 50))
		fmt.Fprintf(w, "  Title : %s\n", r.MostExpensive.Field(models.ColumnTitle))
		fmt.Fprintf(w, "  Price : %s\n", warnStyle.Render(fmt.Sprintf("$%.2f", *r.MostExpensive.Price)))
		fmt.Fprintln(w)
	}

	// Listings by property type
	fmt.Fprintf(w, "%s\n", sectionStyle.Render("  Listings by Property Type"))
	fmt.Fprintf(w, "  %s\n", thin)
	if len(r.ByPropertyType) == 0 {
		fmt.Fprintf(w, "  No property type data\n")
	} else {
		type typeCount struct {
			pt    models.PropertyType
			count int
		}
		var counts []typeCount
		for pt, cnt := range r.ByPropertyType {
			counts = append(counts, typeCount{pt, cnt})
		}
		sort.Slice(counts, func(i, j int) bool {
			if counts[i].count != counts[j].count {
				return counts[i].count > counts[j].count
			}
			return counts[i].pt < counts[j].pt
		})
		for _, tc := range counts {
			fmt.Fprintf(w, "  %-14s %6d\n", tc.pt, tc.count)
		}
	}
	fmt.Fprintln(w)

	// Absent values
	fmt.Fprintf(w, "%s\n", sectionStyle.Render("  Absent Derived Values"))
	fmt.Fprintf(w, "  %s\n", thin)
	fmt.Fprintf(w, "  price %d | bed %d | bath %d | sqft %d | property_type %d\n",
		r.MissingPrice, r.MissingBed, r.MissingBath, r.MissingSqft, r.MissingType)

	fmt.Fprintf(w, "\n%s\n\n", titleStyle.Render(sep))
}

func median(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

func round2(f float64) float64 {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return f
	}
	return math.Round(f*100) / 100
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
