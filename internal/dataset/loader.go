package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/yathboss/revenue-vision/internal/models"
)

// Header candidates accepted for each ledger column. Superstore exports
// vary between title-case and snake_case headers.
var (
	dateHeaders     = []string{"order date", "order_date", "date"}
	salesHeaders    = []string{"sales", "sales_amount", "amount"}
	categoryHeaders = []string{"category"}
	regionHeaders   = []string{"region"}
	segmentHeaders  = []string{"segment"}
)

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"1/2/2006",
	"01/02/2006",
	"2/1/2006",
}

// LoadCSV reads the sales ledger from a superstore-style CSV file.
// Malformed rows are skipped and counted, not fatal.
func LoadCSV(path string, logger *logrus.Logger) ([]models.SalesRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger csv: %w", err)
	}
	defer f.Close()

	records, skipped, err := parseCSV(f)
	if err != nil {
		return nil, err
	}
	if skipped > 0 {
		logger.WithFields(logrus.Fields{"path": path, "skipped": skipped}).
			Warn("Skipped malformed ledger rows")
	}
	logger.WithFields(logrus.Fields{"path": path, "records": len(records)}).
		Info("Loaded sales ledger")
	return records, nil
}

func parseCSV(r io.Reader) ([]models.SalesRecord, int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read csv header: %w", err)
	}

	dateIdx := findColumn(header, dateHeaders)
	salesIdx := findColumn(header, salesHeaders)
	if dateIdx < 0 || salesIdx < 0 {
		return nil, 0, fmt.Errorf("ledger csv is missing a date or sales column (header: %v)", header)
	}
	categoryIdx := findColumn(header, categoryHeaders)
	regionIdx := findColumn(header, regionHeaders)
	segmentIdx := findColumn(header, segmentHeaders)

	var records []models.SalesRecord
	skipped := 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			skipped++
			continue
		}
		if dateIdx >= len(row) || salesIdx >= len(row) {
			skipped++
			continue
		}

		orderDate, ok := parseDate(row[dateIdx])
		if !ok {
			skipped++
			continue
		}
		sales, err := decimal.NewFromString(strings.TrimSpace(row[salesIdx]))
		if err != nil {
			skipped++
			continue
		}

		records = append(records, models.SalesRecord{
			OrderDate: orderDate,
			Sales:     sales,
			Category:  fieldAt(row, categoryIdx),
			Region:    fieldAt(row, regionIdx),
			Segment:   fieldAt(row, segmentIdx),
		})
	}

	if len(records) == 0 {
		return nil, skipped, fmt.Errorf("ledger csv contains no usable rows")
	}
	return records, skipped, nil
}

func findColumn(header []string, candidates []string) int {
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(h))
		for _, c := range candidates {
			if name == c {
				return i
			}
		}
	}
	return -1
}

func fieldAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func parseDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Options collects the distinct filter values present in the ledger.
func Options(records []models.SalesRecord) models.FilterOptions {
	categories := map[string]struct{}{}
	regions := map[string]struct{}{}
	segments := map[string]struct{}{}
	for _, rec := range records {
		if rec.Category != "" {
			categories[rec.Category] = struct{}{}
		}
		if rec.Region != "" {
			regions[rec.Region] = struct{}{}
		}
		if rec.Segment != "" {
			segments[rec.Segment] = struct{}{}
		}
	}
	return models.FilterOptions{
		Categories: sortedKeys(categories),
		Regions:    sortedKeys(regions),
		Segments:   sortedKeys(segments),
	}
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
