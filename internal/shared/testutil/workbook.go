package testutil

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/xuri/excelize/v2"
)

// ListingHeader is the header row of a well-formed listing export,
// including a few presentation-only columns real exports carry.
func ListingHeader() []string {
	return []string{
		"ASIN", "Image", "Product Details", "Brand", "Price €", "Revenue",
		"Sales", "Fulfillment", "Review Count", "Ratings", "Images",
		"Seller Country/Region", "Category", "Image URL", "BSR",
		"Dimensions", "Weight", "Fees €", "Size Tier",
	}
}

// ListingRow builds a data row matching ListingHeader. Empty strings
// become blank cells.
func ListingRow(asin, title, brand, price, revenue, units, fulfillment, reviews, rating, images, country, category string) []string {
	return []string{
		asin, "thumb.png", title, brand, price, revenue,
		units, fulfillment, reviews, rating, images,
		country, category, "https://example.com/img", "1234",
		"10x10x10", "0.5", "3.21", "Standard",
	}
}

// Workbook renders rows (header first) into an .xlsx byte slice.
func Workbook(t *testing.T, rows [][]string) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cells := make([]interface{}, len(row))
		for j, v := range row {
			cells[j] = v
		}
		if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", i+1), &cells); err != nil {
			t.Fatalf("set sheet row %d: %v", i+1, err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf.Bytes()
}

// ListingWorkbook renders a well-formed export with the default header.
func ListingWorkbook(t *testing.T, dataRows ...[]string) []byte {
	t.Helper()
	rows := append([][]string{ListingHeader()}, dataRows...)
	return Workbook(t, rows)
}
