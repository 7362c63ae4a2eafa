package dataset

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/YuminosukeSato/sharp/pkg/errors"
)

// LoadOptions controls how a tabular file is turned into a Dataset.
type LoadOptions struct {
	// LabelColumn names an optional column holding the outcome label. It is
	// removed from the feature columns.
	LabelColumn string

	// Sheet selects the worksheet of an XLSX file. Default: first sheet.
	Sheet string
}

// Load reads a CSV or XLSX file depending on its extension.
func Load(path string, opts LoadOptions) (*Dataset, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return LoadXLSX(path, opts)
	default:
		return LoadCSV(path, opts)
	}
}

// LoadCSV reads a CSV file whose first record is a header of feature names.
func LoadCSV(path string, opts LoadOptions) (*Dataset, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, errors.Wrapf(err, "csv: open %s", path)
	}
	defer f.Close() //nolint:errcheck

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, errors.Wrapf(err, "csv: parse %s", path)
	}
	return fromRecords(records, opts)
}

// LoadXLSX reads a worksheet whose first row is a header of feature names.
func LoadXLSX(path string, opts LoadOptions) (*Dataset, error) {
	f, err := excelize.OpenFile(filepath.Clean(path))
	if err != nil {
		return nil, errors.Wrapf(err, "xlsx: open %s", path)
	}
	defer f.Close() //nolint:errcheck

	sheet := opts.Sheet
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, errors.Wrapf(err, "xlsx: read sheet %s", sheet)
	}
	return fromRecords(rows, opts)
}

func fromRecords(records [][]string, opts LoadOptions) (*Dataset, error) {
	if len(records) < 2 {
		return nil, errors.NewValidationError("X", "a header row and at least one data row are required", len(records))
	}
	header := records[0]
	label := -1
	names := make([]string, 0, len(header))
	for j, h := range header {
		h = strings.TrimSpace(h)
		if opts.LabelColumn != "" && h == opts.LabelColumn {
			label = j
			continue
		}
		names = append(names, h)
	}
	if opts.LabelColumn != "" && label < 0 {
		return nil, errors.NewValidationError("label_column", "column not found in header", opts.LabelColumn)
	}

	rows := make([][]float64, 0, len(records)-1)
	var y []float64
	if label >= 0 {
		y = make([]float64, 0, len(records)-1)
	}
	for i, rec := range records[1:] {
		if len(rec) != len(header) {
			return nil, errors.NewValidationError("X",
				"row "+strconv.Itoa(i+2)+" has "+strconv.Itoa(len(rec))+" columns, expected "+strconv.Itoa(len(header)), rec)
		}
		row := make([]float64, 0, len(names))
		for j, cell := range rec {
			v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
			if err != nil {
				return nil, errors.NewValidationError(header[j],
					"non-numeric value at row "+strconv.Itoa(i+2), cell)
			}
			if j == label {
				y = append(y, v)
				continue
			}
			row = append(row, v)
		}
		rows = append(rows, row)
	}
	return FromRows(rows, y, names)
}
