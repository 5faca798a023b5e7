package entity

import (
	"slices"
	"time"
)

// AirlineRecord is a canonical airline identity with learned aliases
type AirlineRecord struct {
	Code        string    `json:"code"`
	DisplayName string    `json:"display_name"`
	Aliases     []string  `json:"aliases"`
	FirstSeen   time.Time `json:"first_seen"`
	LastSeen    time.Time `json:"last_seen"`
	UsageCount  int64     `json:"usage_count"`
}

// Ref returns the (code, name) identity of the record
func (a *AirlineRecord) Ref() AirlineRef {
	return AirlineRef{Code: a.Code, Name: a.DisplayName}
}

// HasAlias reports whether alias is already attached to the record
func (a *AirlineRecord) HasAlias(alias string) bool {
	return slices.Contains(a.Aliases, alias)
}

// Clone returns a deep copy
func (a *AirlineRecord) Clone() *AirlineRecord {
	c := *a
	c.Aliases = slices.Clone(a.Aliases)
	return &c
}

// AirlineSeed is one static catalog entry loaded at startup
type AirlineSeed struct {
	Code        string
	DisplayName string
	Aliases     []string
}
