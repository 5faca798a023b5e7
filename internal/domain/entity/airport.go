package entity

// Airport maps an IATA airport to its city and timezone
type Airport struct {
	AirportCode string
	AirportName string
	CityCode    string
	CityName    string
	TzName      string
}
