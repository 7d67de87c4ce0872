package parser

import (
	"encoding/csv"
	"errors"
	"strings"
)

// errNoRows is returned when delimited text has a header but no data
var errNoRows = errors.New("delimited input has no data rows")

// table is delimited text split into a header and data rows
type table struct {
	header []string
	rows   [][]string
}

// detectDelimiter picks the most frequent of comma, semicolon and tab in the
// header line, ignoring quoted sections. Ties go to the comma.
func detectDelimiter(line string) rune {
	counts := map[rune]int{',': 0, ';': 0, '\t': 0}
	inQuotes := false
	for _, r := range line {
		switch {
		case r == '"':
			inQuotes = !inQuotes
		case !inQuotes:
			if _, ok := counts[r]; ok {
				counts[r]++
			}
		}
	}

	best := ','
	for _, r := range []rune{';', '\t'} {
		if counts[r] > counts[best] {
			best = r
		}
	}
	return best
}

// firstLine returns the first non-blank line of s
func firstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if strings.TrimSpace(line) != "" {
			return strings.TrimRight(line, "\r")
		}
	}
	return ""
}

// lineTokenizer splits one line of delimited text into cells
type lineTokenizer func(line string) []string

// csvLine tokenizes a single line with encoding/csv. Quotes never span lines,
// so an unterminated quote only degrades its own row.
func csvLine(delimiter rune) lineTokenizer {
	return func(line string) []string {
		reader := csv.NewReader(strings.NewReader(line))
		reader.Comma = delimiter
		reader.FieldsPerRecord = -1
		reader.LazyQuotes = true
		record, err := reader.Read()
		if err != nil {
			return nil
		}
		return record
	}
}

// plainSplit splits on the separator without quote handling, keeping
// positional columns fixed
func plainSplit(sep string) lineTokenizer {
	return func(line string) []string {
		return strings.Split(line, sep)
	}
}

// readTable splits delimited text into rows. A fixed delimiter may be passed;
// zero means detect it from the header. Lines that fail to tokenize are
// skipped rather than failing the whole table.
func readTable(raw string, delimiter rune) (*table, error) {
	if delimiter == 0 {
		delimiter = detectDelimiter(firstLine(raw))
	}
	return readLines(raw, csvLine(delimiter))
}

// readPositional splits comma separated text whose columns are addressed by
// position
func readPositional(raw string) (*table, error) {
	return readLines(raw, plainSplit(","))
}

func readLines(raw string, tokenize lineTokenizer) (*table, error) {
	t := &table{}
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		record := tokenize(line)
		if blankRecord(record) {
			continue
		}
		if t.header == nil {
			t.header = record
			continue
		}
		t.rows = append(t.rows, record)
	}

	if len(t.rows) == 0 {
		return t, errNoRows
	}
	return t, nil
}

func blankRecord(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
