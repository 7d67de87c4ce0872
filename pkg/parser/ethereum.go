package parser

import (
	"github.com/dd0wney/nodelyzer/pkg/nodes"
)

// EthereumParser reads Ethernodes-style CSV exports and JSON arrays.
// Ethereum dumps carry no anonymity marker, so TorCount is always zero.
type EthereumParser struct{}

// Network implements Parser
func (EthereumParser) Network() nodes.Network { return nodes.Ethereum }

// Parse implements Parser
func (p EthereumParser) Parse(raw string) nodes.ParseResult {
	result, _ := p.ParseReport(raw)
	return result
}

// ParseReport implements Parser
func (EthereumParser) ParseReport(raw string) (nodes.ParseResult, error) {
	trim, kind := classify(raw)

	var (
		records []nodes.NodeRecord
		err     error
	)
	switch {
	case kind == '[':
		records, err = ethereumFromArray(trim)
	case kind == '{' && isJSONObject(trim):
		err = errUnsupportedObject
	default:
		records, err = ethereumFromTable(trim)
	}
	if err != nil {
		return nodes.NewParseResult(nil, 0), err
	}
	return nodes.NewParseResult(records, 0), nil
}

func ethereumFromTable(raw string) ([]nodes.NodeRecord, error) {
	t, err := readTable(raw, 0)
	if err != nil {
		return nil, err
	}
	columns := mapHeader(t.header, ethereumSynonyms)

	records := make([]nodes.NodeRecord, 0, len(t.rows))
	for i, row := range t.rows {
		name := columns.cell(row, FieldName)
		if name == "" {
			name = positionalName("Node", i+1)
		}
		rec := newRecord(name)
		rec.Provider = columns.cell(row, FieldProvider)
		applyCountry(&rec, columns.cell(row, FieldCountry))
		rec.Latitude = parseCoordinate(columns.cell(row, FieldLatitude))
		rec.Longitude = parseCoordinate(columns.cell(row, FieldLongitude))
		if stake, ok := parseStake(columns.cell(row, FieldStake)); ok {
			rec.Stake = stake
		}
		records = append(records, rec)
	}
	return records, nil
}

func ethereumFromArray(raw string) ([]nodes.NodeRecord, error) {
	objects, err := decodeObjectArray(raw)
	if err != nil {
		return nil, err
	}

	records := make([]nodes.NodeRecord, 0, len(objects))
	for i, obj := range objects {
		if obj == nil {
			continue
		}
		name := jsonString(obj, ethereumSynonyms, FieldName)
		if name == "" {
			name = positionalName("Node", i+1)
		}
		rec := newRecord(name)
		rec.Provider = jsonString(obj, ethereumSynonyms, FieldProvider)
		applyCountry(&rec, jsonString(obj, ethereumSynonyms, FieldCountry))
		rec.Latitude = parseCoordinate(jsonValue(obj, ethereumSynonyms, FieldLatitude))
		rec.Longitude = parseCoordinate(jsonValue(obj, ethereumSynonyms, FieldLongitude))
		if stake, ok := parseStake(jsonValue(obj, ethereumSynonyms, FieldStake)); ok {
			rec.Stake = stake
		}
		records = append(records, rec)
	}
	return records, nil
}
