package parser

import (
	"errors"
	"strings"

	"github.com/dd0wney/nodelyzer/pkg/nodes"
)

// Column positions of a validators export row. The header line is skipped;
// positions never depend on it.
const (
	solanaCountryColumn  = 3
	solanaLocationColumn = 4 // "lat lon", whitespace separated
	solanaProviderColumn = 5
	solanaNameColumn     = 8
	solanaStakeColumn    = 13
	solanaMinColumns     = 20
)

var errNoValidatorRows = errors.New("validator export has no rows")

// SolanaParser reads positional comma-separated validator exports, and JSON
// validator lists keyed by field name
type SolanaParser struct{}

// Network implements Parser
func (SolanaParser) Network() nodes.Network { return nodes.Solana }

// Parse implements Parser
func (p SolanaParser) Parse(raw string) nodes.ParseResult {
	result, _ := p.ParseReport(raw)
	return result
}

// ParseReport implements Parser. CSV rows shorter than the minimum column count
// are skipped. Unparsable stake reads as 0, not the usual default of 1.
func (SolanaParser) ParseReport(raw string) (nodes.ParseResult, error) {
	trim, kind := classify(raw)
	if kind == '{' && isJSONObject(trim) {
		return nodes.NewParseResult(nil, 0), errUnsupportedObject
	}
	if kind == '[' {
		records, err := solanaFromArray(trim)
		if err != nil {
			return nodes.NewParseResult(nil, 0), err
		}
		return nodes.NewParseResult(records, nodes.CountAnonymous(records)), nil
	}

	t, err := readPositional(trim)
	if err != nil {
		if errors.Is(err, errNoRows) {
			err = errNoValidatorRows
		}
		return nodes.NewParseResult(nil, 0), err
	}

	records := make([]nodes.NodeRecord, 0, len(t.rows))
	for i, row := range t.rows {
		if len(row) < solanaMinColumns {
			continue
		}
		for j := range row {
			row[j] = cleanCell(row[j])
		}

		name := row[solanaNameColumn]
		if name == "" {
			name = positionalName("Validator", i+1)
		}
		rec := newRecord(name)
		rec.Provider = row[solanaProviderColumn]
		rec.Stake = parseIntPrefix(row[solanaStakeColumn])

		countryRaw := row[solanaCountryColumn]
		applyCountry(&rec, countryRaw)
		rec.Anonymous = isTorMarker(countryRaw)

		location := strings.Fields(row[solanaLocationColumn])
		if len(location) >= 2 {
			rec.Latitude = parseCoordinate(location[0])
			rec.Longitude = parseCoordinate(location[1])
		}
		records = append(records, rec)
	}
	return nodes.NewParseResult(records, nodes.CountAnonymous(records)), nil
}

func solanaFromArray(raw string) ([]nodes.NodeRecord, error) {
	objects, err := decodeObjectArray(raw)
	if err != nil {
		return nil, err
	}

	records := make([]nodes.NodeRecord, 0, len(objects))
	for i, obj := range objects {
		if obj == nil {
			continue
		}
		name := jsonString(obj, solanaSynonyms, FieldName)
		if name == "" {
			name = positionalName("Validator", i+1)
		}
		rec := newRecord(name)
		rec.Provider = jsonString(obj, solanaSynonyms, FieldProvider)
		rec.Stake = parseIntPrefix(jsonString(obj, solanaSynonyms, FieldStake))

		countryRaw := jsonString(obj, solanaSynonyms, FieldCountry)
		applyCountry(&rec, countryRaw)
		rec.Anonymous = isTorMarker(countryRaw)

		rec.Latitude = parseCoordinate(jsonValue(obj, solanaSynonyms, FieldLatitude))
		rec.Longitude = parseCoordinate(jsonValue(obj, solanaSynonyms, FieldLongitude))
		records = append(records, rec)
	}
	return records, nil
}
