// Package report writes and reads batch classification results.
package report

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"fjacquet/stock-categorizer/internal/logging"
	"fjacquet/stock-categorizer/internal/models"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"
)

// Supported output formats.
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
)

// Row is one CSV line of a batch report.
type Row struct {
	Filename   string          `csv:"filename"`
	Category   string          `csv:"category"`
	Confidence decimal.Decimal `csv:"confidence"`
	Provider   string          `csv:"provider"`
	Reasoning  string          `csv:"reasoning"`
}

// NewRow converts a result into a report row. Confidence keeps four decimals.
func NewRow(r models.ImageResult) Row {
	return Row{
		Filename:   r.Filename,
		Category:   string(r.Category),
		Confidence: decimal.NewFromFloat(r.Confidence).Round(4),
		Provider:   r.Provider,
		Reasoning:  r.Reasoning,
	}
}

// Result converts the row back into an image result.
func (r Row) Result() models.ImageResult {
	conf, _ := r.Confidence.Float64()
	return models.ImageResult{
		Filename:    r.Filename,
		Category:    models.Category(r.Category),
		Confidence:  conf,
		Reasoning:   r.Reasoning,
		Provider:    r.Provider,
		Suggestions: []string{},
	}
}

// Writer renders results as CSV or JSON.
type Writer struct {
	delimiter rune
	logger    logging.Logger
}

// NewWriter creates a Writer. A zero delimiter selects ','.
func NewWriter(delimiter rune, logger logging.Logger) *Writer {
	if delimiter == 0 {
		delimiter = ','
	}
	return &Writer{delimiter: delimiter, logger: logging.OrDiscard(logger)}
}

// FormatFor infers the output format from a file extension.
func FormatFor(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatCSV
}

// Write renders results to w in format.
func (g *Writer) Write(w io.Writer, results []models.ImageResult, format string) error {
	switch format {
	case FormatCSV, "":
		return g.writeCSV(w, results)
	case FormatJSON:
		return g.writeJSON(w, results)
	default:
		return fmt.Errorf("unsupported report format: %s", format)
	}
}

func (g *Writer) writeCSV(w io.Writer, results []models.ImageResult) error {
	rows := make([]Row, 0, len(results))
	for _, r := range results {
		rows = append(rows, NewRow(r))
	}

	csvWriter := csv.NewWriter(w)
	csvWriter.Comma = g.delimiter
	if err := gocsv.MarshalCSV(rows, gocsv.NewSafeCSVWriter(csvWriter)); err != nil {
		g.logger.WithError(err).Error("Failed to marshal results to CSV")
		return fmt.Errorf("error writing CSV data: %w", err)
	}
	return nil
}

func (g *Writer) writeJSON(w io.Writer, results []models.ImageResult) error {
	if results == nil {
		results = []models.ImageResult{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(results); err != nil {
		g.logger.WithError(err).Error("Failed to marshal JSON report")
		return fmt.Errorf("failed to marshal JSON report: %w", err)
	}
	return nil
}

// WriteFile writes results to path, creating its directory. The format
// follows the file extension.
func (g *Writer) WriteFile(path string, results []models.ImageResult) error {
	if results == nil {
		return errors.New("cannot write nil results")
	}

	log := g.logger.WithFields(
		logging.F(logging.FieldOutputFile, path),
		logging.F(logging.FieldCount, len(results)),
	)
	log.Info("Writing results")

	if err := os.MkdirAll(filepath.Dir(path), models.PermissionDirectory); err != nil {
		return fmt.Errorf("error creating directory: %w", err)
	}

	file, err := os.Create(path) // #nosec G304 -- output path chosen by the user
	if err != nil {
		return fmt.Errorf("error creating report file: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			log.WithError(cerr).Warn("Failed to close file")
		}
	}()

	return g.Write(file, results, FormatFor(path))
}

// ReadFile reads a CSV report written by WriteFile. A missing file yields no
// results and no error.
func (g *Writer) ReadFile(path string) ([]models.ImageResult, error) {
	file, err := os.Open(path) // #nosec G304 -- report path chosen by the user
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("error opening report: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			g.logger.WithError(cerr).Warn("Failed to close file")
		}
	}()

	reader := csv.NewReader(file)
	reader.Comma = g.delimiter
	reader.LazyQuotes = true

	var rows []Row
	err = gocsv.UnmarshalCSV(reader, &rows)
	if err != nil && !errors.Is(err, gocsv.ErrEmptyCSVFile) {
		return nil, fmt.Errorf("error parsing report %s: %w", path, err)
	}

	results := make([]models.ImageResult, 0, len(rows))
	for _, r := range rows {
		results = append(results, r.Result())
	}
	return results, nil
}
