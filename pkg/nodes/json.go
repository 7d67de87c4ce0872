package nodes

import (
	"encoding/json"
	"math"
)

// nodeRecordJSON mirrors NodeRecord with nullable coordinates;
// encoding/json rejects NaN so unknown positions travel as null.
type nodeRecordJSON struct {
	Name            string   `json:"name"`
	Latitude        *float64 `json:"lat"`
	Longitude       *float64 `json:"lon"`
	Country         string   `json:"country,omitempty"`
	CountryResolved bool     `json:"countryResolved"`
	Stake           float64  `json:"stake"`
	Provider        string   `json:"provider,omitempty"`
	Address         string   `json:"address,omitempty"`
	ASN             string   `json:"asn,omitempty"`
	Anonymous       bool     `json:"anonymous,omitempty"`
}

// MarshalJSON encodes NaN or infinite coordinates as null
func (r NodeRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal(nodeRecordJSON{
		Name:            r.Name,
		Latitude:        finiteOrNil(r.Latitude),
		Longitude:       finiteOrNil(r.Longitude),
		Country:         r.Country,
		CountryResolved: r.CountryResolved,
		Stake:           r.Stake,
		Provider:        r.Provider,
		Address:         r.Address,
		ASN:             r.ASN,
		Anonymous:       r.Anonymous,
	})
}

// UnmarshalJSON decodes null or missing coordinates as NaN
func (r *NodeRecord) UnmarshalJSON(data []byte) error {
	var aux nodeRecordJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*r = NodeRecord{
		Name:            aux.Name,
		Latitude:        math.NaN(),
		Longitude:       math.NaN(),
		Country:         aux.Country,
		CountryResolved: aux.CountryResolved,
		Stake:           aux.Stake,
		Provider:        aux.Provider,
		Address:         aux.Address,
		ASN:             aux.ASN,
		Anonymous:       aux.Anonymous,
	}
	if aux.Latitude != nil {
		r.Latitude = *aux.Latitude
	}
	if aux.Longitude != nil {
		r.Longitude = *aux.Longitude
	}
	return nil
}

func finiteOrNil(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
