// Package tabular reads uploaded spreadsheets (CSV, XLSX, XLS) into plain
// string rows and fingerprints files and rows for duplicate detection.
package tabular

import (
	"bytes"
	"encoding/csv"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/cespare/xxhash/v2"
	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
)

const maxXLSRows = 100000

var (
	ErrEmptySheet        = errors.New("worksheet is empty")
	ErrNoSheet           = errors.New("no worksheet found")
	ErrMultipleSheets    = errors.New("multiple worksheets found; upload a file with a single sheet")
	ErrUnsupportedFormat = errors.New("unsupported file format")
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadRows picks a reader from the file extension, sniffing the content when
// the extension is missing.
func ReadRows(data []byte, filename string) ([][]string, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptySheet
	}
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".csv", ".txt", ".tsv":
		return readCSV(data)
	case ".xlsx", ".xlsm":
		return readXLSX(data)
	case ".xls":
		return readXLS(data)
	case "":
		if bytes.HasPrefix(data, []byte("PK")) {
			return readXLSX(data)
		}
		if utf8.Valid(data) {
			return readCSV(data)
		}
		return nil, ErrUnsupportedFormat
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
}

func readCSV(data []byte) ([][]string, error) {
	var src io.Reader = bytes.NewReader(bytes.TrimPrefix(data, utf8BOM))
	// Exports from older billing portals are Windows-1252.
	if !utf8.Valid(data) {
		src = charmap.Windows1252.NewDecoder().Reader(bytes.NewReader(data))
	}

	reader := csv.NewReader(src)
	reader.Comma = sniffDelimiter(data)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrEmptySheet
	}
	return rows, nil
}

func sniffDelimiter(data []byte) rune {
	line := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		line = data[:i]
	}
	best, bestCount := ',', bytes.Count(line, []byte{','})
	for _, candidate := range []rune{';', '\t'} {
		if n := bytes.Count(line, []byte(string(candidate))); n > bestCount {
			best, bestCount = candidate, n
		}
	}
	return best
}

func readXLSX(data []byte) ([][]string, error) {
	file, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer func() { _ = file.Close() }()

	sheetName := file.GetSheetName(0)
	if sheetName == "" {
		return nil, ErrNoSheet
	}
	rows, err := file.GetRows(sheetName)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrEmptySheet
	}
	return rows, nil
}

func readXLS(data []byte) ([][]string, error) {
	workbook, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, fmt.Errorf("open xls: %w", err)
	}
	if workbook.NumSheets() == 0 {
		return nil, ErrNoSheet
	}
	if workbook.NumSheets() > 1 {
		return nil, ErrMultipleSheets
	}
	rows := workbook.ReadAllCells(maxXLSRows)
	if len(rows) == 0 {
		return nil, ErrEmptySheet
	}
	return rows, nil
}

// Checksum is the hex xxhash of a whole upload.
func Checksum(data []byte) string {
	hasher := xxhash.New()
	_, _ = hasher.Write(data)
	return hex.EncodeToString(hasher.Sum(nil))
}

// RowHash fingerprints a row by its trimmed, case-folded cells.
func RowHash(record []string) string {
	cells := make([]string, len(record))
	for i, cell := range record {
		cells[i] = strings.ToLower(strings.TrimSpace(cell))
	}
	digest := xxhash.New()
	_, _ = digest.WriteString(strings.Join(cells, ";"))
	return hex.EncodeToString(digest.Sum(nil))
}

// IsBlank reports whether every cell in the row is empty after trimming.
func IsBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func Cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func NormalizeHeader(header string) string {
	return strings.ToLower(strings.TrimSpace(strings.TrimPrefix(header, "\ufeff")))
}
