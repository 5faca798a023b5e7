package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jshah-ind/travelbot/internal/domain/entity"
	"github.com/jshah-ind/travelbot/internal/domain/repository"
)

var builtinAirports = []entity.Airport{
	{AirportCode: "DEL", AirportName: "Indira Gandhi International", CityCode: "DEL", CityName: "Delhi", TzName: "Asia/Kolkata"},
	{AirportCode: "BOM", AirportName: "Chhatrapati Shivaji Maharaj International", CityCode: "BOM", CityName: "Mumbai", TzName: "Asia/Kolkata"},
	{AirportCode: "BLR", AirportName: "Kempegowda International", CityCode: "BLR", CityName: "Bangalore", TzName: "Asia/Kolkata"},
	{AirportCode: "MAA", AirportName: "Chennai International", CityCode: "MAA", CityName: "Chennai", TzName: "Asia/Kolkata"},
	{AirportCode: "CCU", AirportName: "Netaji Subhas Chandra Bose International", CityCode: "CCU", CityName: "Kolkata", TzName: "Asia/Kolkata"},
	{AirportCode: "HYD", AirportName: "Rajiv Gandhi International", CityCode: "HYD", CityName: "Hyderabad", TzName: "Asia/Kolkata"},
	{AirportCode: "PNQ", AirportName: "Pune International", CityCode: "PNQ", CityName: "Pune", TzName: "Asia/Kolkata"},
	{AirportCode: "AMD", AirportName: "Sardar Vallabhbhai Patel International", CityCode: "AMD", CityName: "Ahmedabad", TzName: "Asia/Kolkata"},
	{AirportCode: "COK", AirportName: "Cochin International", CityCode: "COK", CityName: "Kochi", TzName: "Asia/Kolkata"},
	{AirportCode: "GOI", AirportName: "Dabolim", CityCode: "GOI", CityName: "Goa", TzName: "Asia/Kolkata"},
	{AirportCode: "JAI", AirportName: "Jaipur International", CityCode: "JAI", CityName: "Jaipur", TzName: "Asia/Kolkata"},
	{AirportCode: "LKO", AirportName: "Chaudhary Charan Singh International", CityCode: "LKO", CityName: "Lucknow", TzName: "Asia/Kolkata"},
	{AirportCode: "TRV", AirportName: "Trivandrum International", CityCode: "TRV", CityName: "Thiruvananthapuram", TzName: "Asia/Kolkata"},
	{AirportCode: "ATQ", AirportName: "Sri Guru Ram Dass Jee International", CityCode: "ATQ", CityName: "Amritsar", TzName: "Asia/Kolkata"},
	{AirportCode: "VNS", AirportName: "Lal Bahadur Shastri International", CityCode: "VNS", CityName: "Varanasi", TzName: "Asia/Kolkata"},
	{AirportCode: "SXR", AirportName: "Sheikh ul-Alam International", CityCode: "SXR", CityName: "Srinagar", TzName: "Asia/Kolkata"},
	{AirportCode: "DXB", AirportName: "Dubai International", CityCode: "DXB", CityName: "Dubai", TzName: "Asia/Dubai"},
	{AirportCode: "DOH", AirportName: "Hamad International", CityCode: "DOH", CityName: "Doha", TzName: "Asia/Qatar"},
	{AirportCode: "SIN", AirportName: "Changi", CityCode: "SIN", CityName: "Singapore", TzName: "Asia/Singapore"},
	{AirportCode: "BKK", AirportName: "Suvarnabhumi", CityCode: "BKK", CityName: "Bangkok", TzName: "Asia/Bangkok"},
	{AirportCode: "LHR", AirportName: "Heathrow", CityCode: "LON", CityName: "London", TzName: "Europe/London"},
	{AirportCode: "JFK", AirportName: "John F. Kennedy International", CityCode: "NYC", CityName: "New York", TzName: "America/New_York"},
}

// Misspellings and former names seen in live queries
var cityAliases = map[string]string{
	"new delhi":  "DEL",
	"deli":       "DEL",
	"dehli":      "DEL",
	"dilli":      "DEL",
	"bombay":     "BOM",
	"mumbay":     "BOM",
	"bengaluru":  "BLR",
	"bangalor":   "BLR",
	"banglore":   "BLR",
	"madras":     "MAA",
	"chenai":     "MAA",
	"channai":    "MAA",
	"calcutta":   "CCU",
	"cochin":     "COK",
	"ernakulam":  "COK",
	"trivandrum": "TRV",
}

// AirportCatalog resolves city names and IATA codes to airport codes and
// knows each airport's timezone.
type AirportCatalog struct {
	mu       sync.RWMutex
	cities   map[string]string
	airports map[string]entity.Airport
}

// NewAirportCatalog creates a catalog holding the builtin airports
func NewAirportCatalog() *AirportCatalog {
	c := &AirportCatalog{
		cities:   make(map[string]string),
		airports: make(map[string]entity.Airport),
	}
	for _, a := range builtinAirports {
		c.add(a)
	}
	for name, code := range cityAliases {
		c.cities[name] = code
	}
	return c
}

func (c *AirportCatalog) add(a entity.Airport) {
	code := strings.ToUpper(a.AirportCode)
	a.AirportCode = code
	c.airports[code] = a
	if name := strings.ToLower(strings.TrimSpace(a.CityName)); name != "" {
		if _, taken := c.cities[name]; !taken {
			c.cities[name] = code
		}
	}
}

// Load merges airports from the reference table into the catalog
func (c *AirportCatalog) Load(ctx context.Context, repo repository.AirportRepository) (int, error) {
	airports, err := repo.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load airports: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, a := range airports {
		c.add(*a)
	}
	return len(airports), nil
}

// ResolveCity maps a lowercase city phrase to its airport code
func (c *AirportCatalog) ResolveCity(phrase string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	code, ok := c.cities[strings.ToLower(strings.TrimSpace(phrase))]
	return code, ok
}

// IsAirportCode reports whether code is a known IATA airport code
func (c *AirportCatalog) IsAirportCode(code string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.airports[strings.ToUpper(code)]
	return ok
}

// Location returns the timezone of the airport, or nil when unknown
func (c *AirportCatalog) Location(code string) *time.Location {
	c.mu.RLock()
	a, ok := c.airports[strings.ToUpper(code)]
	c.mu.RUnlock()
	if !ok || a.TzName == "" {
		return nil
	}
	loc, err := time.LoadLocation(a.TzName)
	if err != nil {
		return nil
	}
	return loc
}
