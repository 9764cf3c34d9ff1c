// Package catalogparser loads the diagnosis catalog from a tab-separated
// file, a remote URL or the built-in defaults.
package catalogparser

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/giygas/telehealth-api/diagnosis"
	"github.com/giygas/telehealth-api/entities"
	"github.com/giygas/telehealth-api/logging"
	"golang.org/x/text/encoding/charmap"
)

// Column order of a catalog row
const (
	colLabel = iota
	colID
	colName
	colCompany
	colPrice
	colDescription
	colDosage
	colType
	columnCount
)

// ParseStats counts the lines ParseTSV ignored
type ParseStats struct {
	Lines                 int
	Records               int
	SkippedEmptyLines     int
	SkippedComments       int
	SkippedMissingColumns int
	SkippedFormatErrors   int
}

func (s ParseStats) skipped() bool {
	return s.SkippedMissingColumns > 0 || s.SkippedFormatErrors > 0
}

// decode returns a UTF-8 reader over raw. Some exports are saved in
// ISO-8859-1, which is converted.
func decode(raw []byte) io.Reader {
	if utf8.Valid(raw) {
		return bytes.NewReader(raw)
	}
	return charmap.ISO8859_1.NewDecoder().Reader(bytes.NewReader(raw))
}

// ParseTSV reads catalog rows grouped by label. Labels keep the order of
// their first row and medicines keep row order within a label. Blank lines
// and lines starting with # are skipped, malformed rows are counted and
// skipped.
func ParseTSV(raw []byte) ([]diagnosis.Entry, ParseStats, error) {
	var stats ParseStats
	var entries []diagnosis.Entry
	index := make(map[string]int)

	scanner := bufio.NewScanner(decode(raw))
	scanner.Buffer(make([]byte, 0), 1*1024*1024)

	for scanner.Scan() {
		stats.Lines++
		line := strings.TrimRight(scanner.Text(), "\r")

		if strings.TrimSpace(line) == "" {
			stats.SkippedEmptyLines++
			continue
		}
		if strings.HasPrefix(strings.TrimSpace(line), "#") {
			stats.SkippedComments++
			continue
		}

		fields := strings.Split(line, "\t")
		if len(fields) < columnCount {
			stats.SkippedMissingColumns++
			continue
		}

		record, err := parseRecord(fields)
		if err != nil {
			logging.Debug("Skipping catalog row", "line", stats.Lines, "error", err)
			stats.SkippedFormatErrors++
			continue
		}

		label := strings.TrimSpace(fields[colLabel])
		i, ok := index[label]
		if !ok {
			i = len(entries)
			index[label] = i
			entries = append(entries, diagnosis.Entry{Label: label})
		}
		entries[i].Medicines = append(entries[i].Medicines, record)
		stats.Records++
	}

	if err := scanner.Err(); err != nil {
		return nil, stats, fmt.Errorf("scanner error: %w", err)
	}

	if stats.skipped() {
		logging.Warn("Catalog rows skipped",
			"missing_columns", stats.SkippedMissingColumns,
			"format_errors", stats.SkippedFormatErrors,
			"records", stats.Records)
	}

	return entries, stats, nil
}

func parseRecord(fields []string) (entities.MedicineRecord, error) {
	label := strings.TrimSpace(fields[colLabel])
	if label == "" {
		return entities.MedicineRecord{}, fmt.Errorf("empty label")
	}

	id, err := strconv.Atoi(strings.TrimSpace(fields[colID]))
	if err != nil {
		return entities.MedicineRecord{}, fmt.Errorf("invalid id %q: %w", fields[colID], err)
	}

	name := strings.TrimSpace(fields[colName])
	if name == "" {
		return entities.MedicineRecord{}, fmt.Errorf("empty name for id %d", id)
	}

	// prices may use a decimal comma
	price, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(fields[colPrice]), ",", "."), 64)
	if err != nil {
		return entities.MedicineRecord{}, fmt.Errorf("invalid price %q: %w", fields[colPrice], err)
	}
	if price < 0 {
		return entities.MedicineRecord{}, fmt.Errorf("negative price %v", price)
	}

	return entities.MedicineRecord{
		ID:          id,
		Name:        name,
		Company:     strings.TrimSpace(fields[colCompany]),
		Price:       price,
		Description: strings.TrimSpace(fields[colDescription]),
		Dosage:      strings.TrimSpace(fields[colDosage]),
		Type:        strings.TrimSpace(fields[colType]),
	}, nil
}

var cellReplacer = strings.NewReplacer("\t", " ", "\r", " ", "\n", " ")

// WriteTSV writes the catalog in the format ParseTSV reads
func WriteTSV(w io.Writer, catalog *diagnosis.Catalog) error {
	bw := bufio.NewWriter(w)
	if _, err := io.WriteString(bw, "# label\tid\tname\tcompany\tprice\tdescription\tdosage\ttype\n"); err != nil {
		return err
	}

	for _, e := range catalog.Entries() {
		for _, m := range e.Medicines {
			row := []string{
				e.Label,
				strconv.Itoa(m.ID),
				m.Name,
				m.Company,
				strconv.FormatFloat(m.Price, 'f', -1, 64),
				m.Description,
				m.Dosage,
				m.Type,
			}
			for i := range row {
				row[i] = cellReplacer.Replace(row[i])
			}
			if _, err := io.WriteString(bw, strings.Join(row, "\t")+"\n"); err != nil {
				return fmt.Errorf("failed to write row for %s: %w", m.Name, err)
			}
		}
	}
	return bw.Flush()
}
