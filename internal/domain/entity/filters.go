package entity

import (
	"fmt"
	"strings"
	"time"
)

// CabinClass is the requested travel class
type CabinClass string

const (
	CabinEconomy  CabinClass = "ECONOMY"
	CabinBusiness CabinClass = "BUSINESS"
	CabinFirst    CabinClass = "FIRST"
)

// ParseCabinClass accepts the enum names case-insensitively
func ParseCabinClass(s string) (CabinClass, error) {
	switch CabinClass(strings.ToUpper(strings.TrimSpace(s))) {
	case CabinEconomy:
		return CabinEconomy, nil
	case CabinBusiness:
		return CabinBusiness, nil
	case CabinFirst:
		return CabinFirst, nil
	}
	return "", fmt.Errorf("unknown cabin class %q", s)
}

// DateLayout is the calendar date layout used across the service
const DateLayout = "2006-01-02"

// Date is a calendar date without a time of day
type Date string

// NewDate formats t as a calendar date in t's location
func NewDate(t time.Time) Date {
	return Date(t.Format(DateLayout))
}

// ParseDate validates s as YYYY-MM-DD
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return "", fmt.Errorf("invalid date %q: %w", s, err)
	}
	return NewDate(t), nil
}

// AirlineRef is a canonical airline identity
type AirlineRef struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// ExtractedFilters is the structured form of one travel query
type ExtractedFilters struct {
	Origin           Field[string]       `json:"origin,omitzero"`
	Destination      Field[string]       `json:"destination,omitzero"`
	DepartureDate    Field[Date]         `json:"departure_date,omitzero"`
	ReturnDate       Field[Date]         `json:"return_date,omitzero"`
	PassengerCount   Field[int]          `json:"passenger_count,omitzero"`
	CabinClass       Field[CabinClass]   `json:"cabin_class,omitzero"`
	SpecificAirlines Field[[]AirlineRef] `json:"specific_airlines,omitzero"`
	DirectOnly       Field[bool]         `json:"direct_only,omitzero"`
}

// Passengers returns the passenger count, defaulting to 1
func (f *ExtractedFilters) Passengers() int {
	if n, ok := f.PassengerCount.Value(); ok && n >= 1 {
		return n
	}
	return 1
}

func (f *ExtractedFilters) states() []FieldState {
	return []FieldState{
		f.Origin.State(),
		f.Destination.State(),
		f.DepartureDate.State(),
		f.ReturnDate.State(),
		f.PassengerCount.State(),
		f.CabinClass.State(),
		f.SpecificAirlines.State(),
		f.DirectOnly.State(),
	}
}

// IsEmpty reports whether every field is absent
func (f *ExtractedFilters) IsEmpty() bool {
	if f == nil {
		return true
	}
	for _, s := range f.states() {
		if s != FieldAbsent {
			return false
		}
	}
	return true
}

// HasRoute reports whether origin or destination was mentioned
func (f *ExtractedFilters) HasRoute() bool {
	return !f.Origin.IsAbsent() || !f.Destination.IsAbsent()
}

// HasDates reports whether either date was mentioned
func (f *ExtractedFilters) HasDates() bool {
	return !f.DepartureDate.IsAbsent() || !f.ReturnDate.IsAbsent()
}

// AirlineCodes lists the codes in SpecificAirlines
func (f *ExtractedFilters) AirlineCodes() []string {
	refs, _ := f.SpecificAirlines.Value()
	codes := make([]string, 0, len(refs))
	for _, r := range refs {
		codes = append(codes, r.Code)
	}
	return codes
}

// AddAirline appends ref to SpecificAirlines unless the code is already present
func (f *ExtractedFilters) AddAirline(ref AirlineRef) {
	refs, _ := f.SpecificAirlines.Value()
	for _, r := range refs {
		if r.Code == ref.Code {
			return
		}
	}
	f.SpecificAirlines = Set(append(refs, ref))
}
