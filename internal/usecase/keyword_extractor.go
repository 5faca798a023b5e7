package usecase

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/jshah-ind/travelbot/internal/domain/entity"
	"github.com/jshah-ind/travelbot/pkg/logger"
	"github.com/jshah-ind/travelbot/pkg/utils"

	"github.com/facebookgo/clock"
)

var (
	tokenRegex       = regexp.MustCompile(`[A-Za-z0-9]+`)
	returnRegex      = regexp.MustCompile(`\b(?:return(?:ing)?|coming back|back)\s+(?:on\s+)?`)
	anyCabinRegex    = regexp.MustCompile(`\bany\s+(?:class|cabin)\b`)
	firstRegex       = regexp.MustCompile(`\bfirst[\s-]+class\b`)
	businessRegex    = regexp.MustCompile(`\b(?:business|premium)\b`)
	economyRegex     = regexp.MustCompile(`\b(?:economy|coach)\b`)
	passengerRegex   = regexp.MustCompile(`\b(\d{1,2}|one|two|three|four|five|six|seven|eight|nine)\s+(?:passengers?|people|persons?|adults?|travell?ers?|pax|tickets?|seats?)\b`)
	directRegex      = regexp.MustCompile(`\b(?:direct|non[\s-]?stop)\b`)
	connectingRegex  = regexp.MustCompile(`\b(?:connecting|with\s+(?:a\s+)?stops?|layovers?)\b`)
	anyAirlineRegex  = regexp.MustCompile(`\bany\s+(?:airlines?|carriers?)\b`)
	anyStopsRegex    = regexp.MustCompile(`\bany\s+(?:number\s+of\s+)?stops\b`)
	upperCodeRegex   = regexp.MustCompile(`^[A-Z0-9]{2}$`)
	upperAirportCode = regexp.MustCompile(`^[A-Z]{3}$`)
)

var numberWords = map[string]int{
	"one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9,
}

// Words that never start or end an airline mention
var keywordStopwords = map[string]struct{}{}

// Countries, regions and demonyms that double as airline aliases ("thai",
// "american", "qatar"). They only count inside a mention that also has a
// carrier word, so "thai airways" resolves and "flights to thailand" does not.
var placeWords = map[string]struct{}{}

func init() {
	for _, w := range strings.Fields(`india indian america american usa us united states uk britain british england
		kingdom canada canadian france french germany german turkey turkish thailand thai
		qatar qatari oman omani kuwait kuwaiti saudi arabia arabian emirati gulf bahrain
		singapore singaporean malaysia malaysian japan japanese china chinese sri lanka lankan
		srilankan nepal bangladesh australia australian`) {
		placeWords[w] = struct{}{}
	}
	for _, w := range strings.Fields(`a an the and or of to from in on at by for with via
		i me my we us our you please want need would like
		find show search get book give list see check only just also
		flight flights fly flying trip travel ticket tickets seat seats
		class cabin economy business premium first coach
		direct nonstop non stop stops connecting layover layovers
		airline airlines airways carrier carriers any
		return returning back coming one way round
		today tonight tomorrow tommorow tomorow tommorrow tomorrrow tomarow tmrw
		day after next this week month year
		monday tuesday wednesday thursday friday saturday sunday
		january february march april may june july august september october november december
		jan feb mar apr jun jul aug sep sept oct nov dec
		passenger passengers people person persons adult adults traveler travelers traveller travellers pax
		cheap cheapest morning afternoon evening night early late available options`) {
		keywordStopwords[w] = struct{}{}
	}
}

type token struct {
	raw   string
	lower string
}

// KeywordExtractor is the rule-based extractor. Constructed with a
// directory it also resolves airline mentions; without one it never fails.
type KeywordExtractor struct {
	airports  *AirportCatalog
	directory AirlineResolver
	clock     clock.Clock
	location  *time.Location
	logger    logger.Logger
}

// NewKeywordExtractor creates the plain keyword extractor
func NewKeywordExtractor(airports *AirportCatalog, clk clock.Clock, loc *time.Location, log logger.Logger) *KeywordExtractor {
	if loc == nil {
		loc = time.UTC
	}
	return &KeywordExtractor{
		airports: airports,
		clock:    clk,
		location: loc,
		logger:   log.With("component", "keyword_extractor"),
	}
}

// WithDirectory returns a copy that resolves airline mentions through dir
func (k *KeywordExtractor) WithDirectory(dir AirlineResolver) *KeywordExtractor {
	c := *k
	c.directory = dir
	c.logger = k.logger.With("directory", true)
	return &c
}

func (k *KeywordExtractor) Name() string {
	if k.directory != nil {
		return StrategyKeywordDirectory
	}
	return StrategyKeyword
}

// Extract applies the keyword rules to text
func (k *KeywordExtractor) Extract(ctx context.Context, text string) (*entity.ExtractedFilters, error) {
	if k.directory != nil && !k.directory.Ready() {
		return nil, ErrDirectoryUnavailable
	}

	filters := &entity.ExtractedFilters{}
	lower := strings.ToLower(text)
	tokens := tokenize(text)
	used := make([]bool, len(tokens))

	k.extractRoute(tokens, used, filters)
	k.extractDates(lower, filters)
	extractCabin(lower, filters)
	extractPassengers(lower, filters)
	extractDirect(lower, filters)

	if anyAirlineRegex.MatchString(lower) {
		filters.SpecificAirlines = entity.Cleared[[]entity.AirlineRef]()
	} else if k.directory != nil {
		k.extractAirlines(tokens, used, filters)
	}

	return filters, nil
}

func tokenize(text string) []token {
	raw := tokenRegex.FindAllString(text, -1)
	tokens := make([]token, len(raw))
	for i, r := range raw {
		tokens[i] = token{raw: r, lower: strings.ToLower(r)}
	}
	return tokens
}

// cityAt resolves the city starting at i, preferring two-word names
func (k *KeywordExtractor) cityAt(tokens []token, i int) (string, int) {
	if i < 0 || i >= len(tokens) {
		return "", 0
	}
	if i+1 < len(tokens) {
		if code, ok := k.airports.ResolveCity(tokens[i].lower + " " + tokens[i+1].lower); ok {
			return code, 2
		}
	}
	if code, ok := k.airports.ResolveCity(tokens[i].lower); ok {
		return code, 1
	}
	if upperAirportCode.MatchString(tokens[i].raw) && k.airports.IsAirportCode(tokens[i].raw) {
		return tokens[i].raw, 1
	}
	return "", 0
}

// cityEndingAt resolves the city whose last token is at i
func (k *KeywordExtractor) cityEndingAt(tokens []token, i int) (string, int, int) {
	if i >= 1 {
		if code, n := k.cityAt(tokens, i-1); n == 2 {
			return code, i - 1, n
		}
	}
	code, n := k.cityAt(tokens, i)
	return code, i, n
}

func markUsed(used []bool, start, n int) {
	for j := start; j < start+n && j < len(used); j++ {
		used[j] = true
	}
}

// extractRoute handles "from X to Y", "X to Y", "to Y" and "from X"
func (k *KeywordExtractor) extractRoute(tokens []token, used []bool, f *entity.ExtractedFilters) {
	for i, t := range tokens {
		switch t.lower {
		case "from":
			if f.Origin.IsSet() {
				continue
			}
			if code, n := k.cityAt(tokens, i+1); n > 0 {
				f.Origin = entity.Set(code)
				markUsed(used, i+1, n)
			}
		case "to":
			if f.Destination.IsSet() {
				continue
			}
			code, n := k.cityAt(tokens, i+1)
			if n == 0 {
				continue
			}
			f.Destination = entity.Set(code)
			markUsed(used, i+1, n)
			if !f.Origin.IsSet() {
				if origin, start, m := k.cityEndingAt(tokens, i-1); m > 0 {
					f.Origin = entity.Set(origin)
					markUsed(used, start, m)
				}
			}
		}
	}
	if f.Origin.IsSet() && f.Destination.IsSet() && f.Origin.ValueOr("") == f.Destination.ValueOr("") {
		f.Destination = entity.Field[string]{}
	}
}

// extractDates uses the origin airport's timezone for relative words
func (k *KeywordExtractor) extractDates(lower string, f *entity.ExtractedFilters) {
	loc := k.location
	if origin, ok := f.Origin.Value(); ok {
		if l := k.airports.Location(origin); l != nil {
			loc = l
		}
	}

	dates := findTravelDates(lower, k.clock.Now().In(loc))
	if dates.departure != nil {
		f.DepartureDate = entity.Set(entity.NewDate(*dates.departure))
	}
	if dates.ret != nil {
		f.ReturnDate = entity.Set(entity.NewDate(*dates.ret))
	}
}

type travelDates struct {
	departure *time.Time
	ret       *time.Time
}

// findTravelDates resolves the return date first so its phrase is not
// taken as the departure.
func findTravelDates(lower string, now time.Time) travelDates {
	var out travelDates
	rest := lower
	if m := returnRegex.FindStringIndex(lower); m != nil {
		if d, ok := utils.FindDate(lower[m[1]:], now); ok && d.Start == 0 {
			out.ret = &d.Date
			rest = lower[:m[0]] + strings.Repeat(" ", m[1]-m[0]+d.End) + lower[m[1]+d.End:]
		}
	}
	if d, ok := utils.FindDate(rest, now); ok {
		out.departure = &d.Date
	}
	return out
}

func extractCabin(lower string, f *entity.ExtractedFilters) {
	switch {
	case anyCabinRegex.MatchString(lower):
		f.CabinClass = entity.Cleared[entity.CabinClass]()
	case firstRegex.MatchString(lower):
		f.CabinClass = entity.Set(entity.CabinFirst)
	case businessRegex.MatchString(lower):
		f.CabinClass = entity.Set(entity.CabinBusiness)
	case economyRegex.MatchString(lower):
		f.CabinClass = entity.Set(entity.CabinEconomy)
	}
}

func extractPassengers(lower string, f *entity.ExtractedFilters) {
	m := passengerRegex.FindStringSubmatch(lower)
	if m == nil {
		return
	}
	n, ok := numberWords[m[1]]
	if !ok {
		n, _ = strconv.Atoi(m[1])
	}
	if n >= 1 {
		f.PassengerCount = entity.Set(n)
	}
}

func extractDirect(lower string, f *entity.ExtractedFilters) {
	switch {
	case anyStopsRegex.MatchString(lower):
		f.DirectOnly = entity.Cleared[bool]()
	case directRegex.MatchString(lower):
		f.DirectOnly = entity.Set(true)
	case connectingRegex.MatchString(lower):
		f.DirectOnly = entity.Set(false)
	}
}

// extractAirlines scans n-grams of up to three tokens, longest first.
// Two-character tokens are treated as airline codes only when written in
// upper case ("AI", "6E") so words like "to" or "on" never match.
func (k *KeywordExtractor) extractAirlines(tokens []token, used []bool, f *entity.ExtractedFilters) {
	for i := 0; i < len(tokens); {
		matched := 0
		for n := 3; n >= 1; n-- {
			if i+n > len(tokens) || !mentionCandidate(tokens[i:i+n], used[i:i+n]) {
				continue
			}
			if rec, ok := k.directory.Lookup(joinRaw(tokens[i : i+n])); ok {
				f.AddAirline(rec.Ref())
				matched = n
				break
			}
		}
		if matched == 0 {
			i++
			continue
		}
		i += matched
	}
}

func mentionCandidate(phrase []token, used []bool) bool {
	for _, u := range used {
		if u {
			return false
		}
	}
	first, last := phrase[0], phrase[len(phrase)-1]
	if isStopword(first.lower) || (len(phrase) > 1 && isStopword(last.lower) && !isCarrierSuffix(last.lower)) {
		return false
	}
	if namesPlace(phrase) && !namesCarrier(phrase) {
		return false
	}
	if len(phrase) == 1 {
		if _, err := strconv.Atoi(first.raw); err == nil {
			return false
		}
		if len(first.raw) <= 2 {
			return upperCodeRegex.MatchString(first.raw)
		}
	}
	return true
}

func isStopword(w string) bool {
	_, ok := keywordStopwords[w]
	return ok
}

func isCarrierSuffix(w string) bool {
	return w == "air" || w == "airways" || w == "airlines" || w == "airline"
}

func namesPlace(phrase []token) bool {
	for _, t := range phrase {
		if _, ok := placeWords[t.lower]; ok {
			return true
		}
	}
	return false
}

func namesCarrier(phrase []token) bool {
	for _, t := range phrase {
		if isCarrierSuffix(t.lower) {
			return true
		}
	}
	return false
}

func joinRaw(phrase []token) string {
	parts := make([]string, len(phrase))
	for i, t := range phrase {
		parts[i] = t.raw
	}
	return strings.Join(parts, " ")
}
