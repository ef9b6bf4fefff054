package dataset

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"marketlens/internal/errors"
)

// Column names exactly as they appear in the export's header row.
const (
	colASIN     = "ASIN"
	colTitle    = "Product Details"
	colBrand    = "Brand"
	colPrice    = "Price €"
	colRevenue  = "Revenue"
	colUnits    = "Sales"
	colChannel  = "Fulfillment"
	colReviews  = "Review Count"
	colRating   = "Ratings"
	colImages   = "Images"
	colCountry  = "Seller Country/Region"
	colCategory = "Category"
)

// requiredColumns must all be present in the header row. A missing
// column fails the whole load, never a silent skip.
var requiredColumns = []string{
	colASIN, colTitle, colBrand, colPrice, colRevenue, colUnits,
	colChannel, colReviews, colRating, colImages, colCountry, colCategory,
}

// ignoredColumns are tolerated in the export but never mapped into a
// record: thumbnails, links and size/weight/fee metadata.
var ignoredColumns = []string{
	"Image", "Image URL", "BSR", "Dimensions", "Weight", "Fees €", "Size Tier",
}

// Loader parses .xlsx listing exports into a Table.
type Loader struct {
	logger *slog.Logger
}

// NewLoader creates a loader. A nil logger falls back to slog.Default.
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger.With(slog.String("component", "loader"))}
}

// Parse reads a workbook from r and returns one record per data row of
// the first sheet. The header row supplies column positions; all
// required columns must be present. Any stream that cannot be read as
// a workbook yields an unreadable-file error.
func (l *Loader) Parse(ctx context.Context, r io.Reader) (Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, errors.NewUnreadableFileError("stream is not a readable workbook", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.NewUnreadableFileError("workbook has no sheets", nil)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, errors.NewUnreadableFileError(fmt.Sprintf("cannot read sheet %q", sheets[0]), err)
	}
	if len(rows) == 0 {
		return nil, errors.NewUnreadableFileError("sheet has no header row", nil)
	}

	columnIndex := make(map[string]int, len(rows[0]))
	for i, header := range rows[0] {
		columnIndex[strings.TrimSpace(header)] = i
	}
	for _, col := range requiredColumns {
		if _, ok := columnIndex[col]; !ok {
			return nil, errors.NewUnreadableFileError(fmt.Sprintf("missing required column %q", col), nil)
		}
	}

	table := make(Table, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if isEmptyRow(row) {
			continue
		}
		rec, err := parseRecord(row, columnIndex)
		if err != nil {
			return nil, errors.NewUnreadableFileError(fmt.Sprintf("row %d: %v", i+2, err), nil)
		}
		table = append(table, rec)
	}

	l.logger.InfoContext(ctx, "parsed listing export",
		slog.String("sheet", sheets[0]),
		slog.Int("rows", len(table)))

	return table, nil
}

// parseRecord maps one sheet row onto the record schema. Numeric cells
// may carry thousands separators, which are stripped before parsing.
func parseRecord(row []string, columnIndex map[string]int) (ProductRecord, error) {
	price, err := cellDecimal(row, columnIndex, colPrice)
	if err != nil {
		return ProductRecord{}, err
	}
	units, err := cellDecimal(row, columnIndex, colUnits)
	if err != nil {
		return ProductRecord{}, err
	}
	revenue, err := cellNullDecimal(row, columnIndex, colRevenue)
	if err != nil {
		return ProductRecord{}, err
	}

	return ProductRecord{
		ASIN:          cellString(row, columnIndex, colASIN),
		Title:         cellString(row, columnIndex, colTitle),
		Brand:         cellString(row, columnIndex, colBrand),
		Price:         price,
		Revenue:       revenue,
		Units:         units,
		Channel:       ParseChannel(cellString(row, columnIndex, colChannel)),
		ReviewCount:   cellInt(row, columnIndex, colReviews),
		Rating:        cellFloat(row, columnIndex, colRating),
		ImageCount:    cellInt(row, columnIndex, colImages),
		SellerCountry: cellString(row, columnIndex, colCountry),
		Category:      cellString(row, columnIndex, colCategory),
	}, nil
}

func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func cellString(row []string, columnIndex map[string]int, col string) string {
	i, ok := columnIndex[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func cellNumeric(row []string, columnIndex map[string]int, col string) string {
	return strings.ReplaceAll(cellString(row, columnIndex, col), ",", "")
}

func cellDecimal(row []string, columnIndex map[string]int, col string) (decimal.Decimal, error) {
	raw := cellNumeric(row, columnIndex, col)
	if raw == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("column %q: invalid number %q", col, raw)
	}
	return d, nil
}

func cellNullDecimal(row []string, columnIndex map[string]int, col string) (decimal.NullDecimal, error) {
	raw := cellNumeric(row, columnIndex, col)
	if raw == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("column %q: invalid number %q", col, raw)
	}
	return decimal.NullDecimal{Decimal: d, Valid: true}, nil
}

func cellInt(row []string, columnIndex map[string]int, col string) int {
	raw := cellNumeric(row, columnIndex, col)
	if raw == "" {
		return 0
	}
	// Some exports render counts as "12.0".
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return int(f)
	}
	return 0
}

func cellFloat(row []string, columnIndex map[string]int, col string) float64 {
	f, _ := strconv.ParseFloat(cellNumeric(row, columnIndex, col), 64)
	return f
}
