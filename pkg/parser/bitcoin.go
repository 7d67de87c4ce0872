package parser

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/dd0wney/nodelyzer/pkg/nodes"
)

// Positions inside a Bitnodes snapshot entry: {"nodes": {"addr:port": [...]}}
const (
	bitnodesProtocolVersion = 0
	bitnodesUserAgent       = 1
	bitnodesConnectedSince  = 2
	bitnodesServices        = 3
	bitnodesHeight          = 4
	bitnodesHostname        = 5
	bitnodesCity            = 6
	bitnodesCountry         = 7
	bitnodesLatitude        = 8
	bitnodesLongitude       = 9
	bitnodesTimezone        = 10
	bitnodesASN             = 11 // holds the literal "TOR" for onion nodes
	bitnodesOrganization    = 12
)

var errNoNodesKey = fmt.Errorf(`%w: no "nodes" map`, errUnsupportedObject)

// BitcoinParser reads Bitnodes snapshots, CSV exports and JSON arrays
type BitcoinParser struct{}

// Network implements Parser
func (BitcoinParser) Network() nodes.Network { return nodes.Bitcoin }

// Parse implements Parser
func (p BitcoinParser) Parse(raw string) nodes.ParseResult {
	result, _ := p.ParseReport(raw)
	return result
}

// ParseReport implements Parser
func (BitcoinParser) ParseReport(raw string) (nodes.ParseResult, error) {
	trim, kind := classify(raw)

	var (
		records []nodes.NodeRecord
		err     error
	)
	switch kind {
	case '[':
		records, err = bitcoinFromArray(trim)
	case '{':
		if isJSONObject(trim) {
			records, err = bitcoinFromSnapshot(trim)
		} else {
			records, err = bitcoinFromTable(trim)
		}
	default:
		records, err = bitcoinFromTable(trim)
	}
	if err != nil {
		return nodes.NewParseResult(nil, 0), err
	}
	return nodes.NewParseResult(records, nodes.CountAnonymous(records)), nil
}

func bitcoinFromTable(raw string) ([]nodes.NodeRecord, error) {
	t, err := readTable(raw, 0)
	if err != nil {
		return nil, err
	}
	columns := mapHeader(t.header, bitcoinSynonyms)

	records := make([]nodes.NodeRecord, 0, len(t.rows))
	for i, row := range t.rows {
		name := columns.cell(row, FieldName)
		if name == "" {
			name = positionalName("Node", i+1)
		}
		rec := newRecord(name)
		rec.Address = columns.cell(row, FieldAddress)
		rec.ASN = columns.cell(row, FieldASN)
		rec.Provider = columns.cell(row, FieldProvider)

		countryRaw := columns.cell(row, FieldCountry)
		applyCountry(&rec, countryRaw)
		rec.Anonymous = isOnionAddress(rec.Address) || isTorMarker(rec.ASN) || isTorMarker(countryRaw)

		if columns.has(FieldLatitude) && columns.has(FieldLongitude) {
			rec.Latitude = parseCoordinate(columns.cell(row, FieldLatitude))
			rec.Longitude = parseCoordinate(columns.cell(row, FieldLongitude))
		}
		if stake, ok := parseStake(columns.cell(row, FieldStake)); ok {
			rec.Stake = stake
		}
		records = append(records, rec)
	}
	return records, nil
}

func bitcoinFromArray(raw string) ([]nodes.NodeRecord, error) {
	objects, err := decodeObjectArray(raw)
	if err != nil {
		return nil, err
	}

	records := make([]nodes.NodeRecord, 0, len(objects))
	for i, obj := range objects {
		if obj == nil {
			continue
		}
		name := jsonString(obj, bitcoinSynonyms, FieldName)
		if name == "" {
			name = positionalName("Node", i+1)
		}
		rec := newRecord(name)
		rec.Address = jsonString(obj, bitcoinSynonyms, FieldAddress)
		rec.ASN = jsonString(obj, bitcoinSynonyms, FieldASN)
		rec.Provider = jsonString(obj, bitcoinSynonyms, FieldProvider)

		countryRaw := jsonString(obj, bitcoinSynonyms, FieldCountry)
		applyCountry(&rec, countryRaw)
		rec.Anonymous = isOnionAddress(rec.Address) || isTorMarker(rec.ASN) || isTorMarker(countryRaw)

		rec.Latitude = parseCoordinate(jsonValue(obj, bitcoinSynonyms, FieldLatitude))
		rec.Longitude = parseCoordinate(jsonValue(obj, bitcoinSynonyms, FieldLongitude))
		if stake, ok := parseStake(jsonValue(obj, bitcoinSynonyms, FieldStake)); ok {
			rec.Stake = stake
		}
		records = append(records, rec)
	}
	return records, nil
}

// bitcoinFromSnapshot decodes the Bitnodes keyed-object form. Entries are
// visited in address order because JSON object order carries no meaning.
func bitcoinFromSnapshot(raw string) ([]nodes.NodeRecord, error) {
	var doc map[string]json.RawMessage
	if err := decodeLoose(raw, &doc); err != nil {
		return nil, err
	}
	nodesRaw, ok := doc["nodes"]
	if !ok {
		return nil, errNoNodesKey
	}
	var entries map[string]json.RawMessage
	if err := decodeLoose(string(nodesRaw), &entries); err != nil {
		return nil, err
	}

	addresses := make([]string, 0, len(entries))
	for addr := range entries {
		addresses = append(addresses, addr)
	}
	sort.Strings(addresses)

	records := make([]nodes.NodeRecord, 0, len(addresses))
	for i, addr := range addresses {
		var fields []any
		if err := decodeLoose(string(entries[addr]), &fields); err != nil {
			continue
		}
		rec := newRecord(positionalName("Node", i+1))
		rec.Address = addr
		rec.ASN = stringValue(at(fields, bitnodesASN))
		rec.Provider = stringValue(at(fields, bitnodesOrganization))

		countryRaw := stringValue(at(fields, bitnodesCountry))
		applyCountry(&rec, countryRaw)
		rec.Anonymous = isOnionAddress(addr) || isTorMarker(countryRaw) || isTorMarker(rec.ASN)

		rec.Latitude = parseCoordinate(at(fields, bitnodesLatitude))
		rec.Longitude = parseCoordinate(at(fields, bitnodesLongitude))
		records = append(records, rec)
	}
	return records, nil
}

// at returns fields[i] or nil when the entry is shorter
func at(fields []any, i int) any {
	if i < 0 || i >= len(fields) {
		return nil
	}
	return fields[i]
}
