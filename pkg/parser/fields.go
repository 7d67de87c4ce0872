package parser

import (
	"sort"
	"strings"
)

// Field is a logical attribute extracted from a node record
type Field int

const (
	FieldLatitude Field = iota
	FieldLongitude
	FieldCountry
	FieldAddress
	FieldASN
	FieldName
	FieldProvider
	FieldStake
)

func (f Field) String() string {
	switch f {
	case FieldLatitude:
		return "latitude"
	case FieldLongitude:
		return "longitude"
	case FieldCountry:
		return "country"
	case FieldAddress:
		return "address"
	case FieldASN:
		return "asn"
	case FieldName:
		return "name"
	case FieldProvider:
		return "provider"
	case FieldStake:
		return "stake"
	default:
		return "unknown"
	}
}

// Synonyms lists, per logical field, the accepted header or key spellings in
// priority order. Earlier entries win when a source carries several.
type Synonyms map[Field][]string

var bitcoinSynonyms = Synonyms{
	FieldLatitude:  {"lat", "latitude", "Lat", "Latitude"},
	FieldLongitude: {"lon", "longitude", "lng", "Lon", "Longitude", "Lng"},
	FieldCountry:   {"country", "cc", "country_code", "countryCode", "Country"},
	FieldAddress:   {"address", "addr", "Address", "ip"},
	FieldASN:       {"asn", "ASN", "as"},
	FieldName:      {"name", "Name", "hostname"},
	FieldProvider:  {"provider", "organization", "organization_name", "org", "isp", "Provider"},
	FieldStake:     {"stake", "Stake", "weight"},
}

var ethereumSynonyms = Synonyms{
	FieldLatitude:  {"lat", "latitude", "Lat", "Latitude"},
	FieldLongitude: {"lon", "longitude", "lng", "Lon", "Longitude", "Lng"},
	FieldCountry:   {"country", "Country", "country_code", "cc"},
	FieldName:      {"name", "node id", "Node Id", "node_id", "nodeId", "id", "Name"},
	FieldProvider:  {"provider", "isp", "ISP", "hosting", "organization", "org", "Provider"},
	FieldStake:     {"stake", "Stake", "weight"},
}

// solanaSynonyms apply to JSON validator lists only; CSV exports are positional
var solanaSynonyms = Synonyms{
	FieldLatitude:  {"lat", "latitude"},
	FieldLongitude: {"lon", "longitude", "lng"},
	FieldCountry:   {"country", "country_code", "cc"},
	FieldName:      {"name", "identity", "nodePubkey", "node_pubkey", "account"},
	FieldProvider:  {"provider", "data_center", "dataCenter", "data_center_key", "organization", "isp"},
	FieldStake:     {"stake", "activatedStake", "active_stake", "activated_stake"},
}

// columnMap maps logical fields to header positions, resolved once per table
type columnMap map[Field]int

// mapHeader matches header cells case-insensitively against the synonyms.
// Unmatched columns are ignored.
func mapHeader(header []string, synonyms Synonyms) columnMap {
	positions := make(map[string]int, len(header))
	for i, cell := range header {
		key := strings.ToLower(cleanCell(cell))
		if _, seen := positions[key]; !seen {
			positions[key] = i
		}
	}

	columns := make(columnMap)
	for field, names := range synonyms {
		for _, name := range names {
			if idx, ok := positions[strings.ToLower(name)]; ok {
				columns[field] = idx
				break
			}
		}
	}
	return columns
}

// cell returns the cleaned value of a mapped field in a row, or ""
func (c columnMap) cell(row []string, field Field) string {
	idx, ok := c[field]
	if !ok || idx >= len(row) {
		return ""
	}
	return cleanCell(row[idx])
}

// has reports whether the header carried the field
func (c columnMap) has(field Field) bool {
	_, ok := c[field]
	return ok
}

// lookup finds the first synonym present in a loosely typed JSON object.
// Exact spellings are tried in priority order before a case-insensitive pass.
func lookup(obj map[string]any, names []string) (any, bool) {
	for _, name := range names {
		if v, ok := obj[name]; ok && v != nil {
			return v, true
		}
	}

	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, name := range names {
		for _, k := range keys {
			if strings.EqualFold(k, name) && obj[k] != nil {
				return obj[k], true
			}
		}
	}
	return nil, false
}

// cleanCell trims whitespace and a surrounding pair of double quotes
func cleanCell(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	} else {
		s = strings.TrimPrefix(s, `"`)
		s = strings.TrimSuffix(s, `"`)
	}
	return strings.TrimSpace(s)
}
