package usecase

import "github.com/jshah-ind/travelbot/internal/domain/entity"

// DefaultAirlineCatalog is the static seed loaded at startup. Aliases are
// raw spellings; the directory normalizes them on seeding.
func DefaultAirlineCatalog() []entity.AirlineSeed {
	return []entity.AirlineSeed{
		{Code: "AI", DisplayName: "Air India", Aliases: []string{"air india", "airindia", "air-india", "air_india"}},
		{Code: "IX", DisplayName: "Air India Express", Aliases: []string{"air india express", "ai express"}},
		{Code: "6E", DisplayName: "IndiGo", Aliases: []string{"indigo", "indigo airlines", "indigo air"}},
		{Code: "SG", DisplayName: "SpiceJet", Aliases: []string{"spicejet", "spice jet", "spice-jet", "spice_jet"}},
		{Code: "UK", DisplayName: "Vistara", Aliases: []string{"vistara", "vistara airlines", "vistara air"}},
		{Code: "QP", DisplayName: "Akasa Air", Aliases: []string{"akasa", "akasa air"}},
		{Code: "I5", DisplayName: "AIX Connect", Aliases: []string{"air asia india", "airasia india"}},
		{Code: "EK", DisplayName: "Emirates", Aliases: []string{"emirates", "emirates airlines", "emirates air"}},
		{Code: "QR", DisplayName: "Qatar Airways", Aliases: []string{"qatar", "qatar airways", "qatar air"}},
		{Code: "EY", DisplayName: "Etihad Airways", Aliases: []string{"etihad", "etihad airways", "etihad air"}},
		{Code: "WY", DisplayName: "Oman Air", Aliases: []string{"oman air", "omanair", "oman-air"}},
		{Code: "GF", DisplayName: "Gulf Air", Aliases: []string{"gulf air", "gulfair", "gulf-air"}},
		{Code: "FZ", DisplayName: "flydubai", Aliases: []string{"flydubai", "fly dubai", "fly-dubai"}},
		{Code: "G9", DisplayName: "Air Arabia", Aliases: []string{"air arabia", "airarabia", "air-arabia"}},
		{Code: "J9", DisplayName: "Jazeera Airways", Aliases: []string{"jazeera", "jazeera airways"}},
		{Code: "KU", DisplayName: "Kuwait Airways", Aliases: []string{"kuwait airways", "kuwait air"}},
		{Code: "SV", DisplayName: "Saudia", Aliases: []string{"saudia", "saudi arabian", "saudi arabian airlines"}},
		{Code: "BA", DisplayName: "British Airways", Aliases: []string{"british", "british airways", "british air"}},
		{Code: "LH", DisplayName: "Lufthansa", Aliases: []string{"lufthansa", "lufthansa airlines"}},
		{Code: "AF", DisplayName: "Air France", Aliases: []string{"air france", "airfrance"}},
		{Code: "KL", DisplayName: "KLM", Aliases: []string{"klm", "klm royal dutch"}},
		{Code: "TK", DisplayName: "Turkish Airlines", Aliases: []string{"turkish", "turkish airlines", "turkish air"}},
		{Code: "VS", DisplayName: "Virgin Atlantic", Aliases: []string{"virgin atlantic", "virgin atlantic airways"}},
		{Code: "SQ", DisplayName: "Singapore Airlines", Aliases: []string{"singapore airlines", "singapore air"}},
		{Code: "TG", DisplayName: "Thai Airways", Aliases: []string{"thai", "thai airways", "thai air"}},
		{Code: "MH", DisplayName: "Malaysia Airlines", Aliases: []string{"malaysia airlines", "malaysia air"}},
		{Code: "CX", DisplayName: "Cathay Pacific", Aliases: []string{"cathay", "cathay pacific"}},
		{Code: "JL", DisplayName: "Japan Airlines", Aliases: []string{"japan airlines", "jal"}},
		{Code: "NH", DisplayName: "All Nippon Airways", Aliases: []string{"ana", "all nippon airways", "all nippon air"}},
		{Code: "CA", DisplayName: "Air China", Aliases: []string{"air china", "airchina", "air-china"}},
		{Code: "UL", DisplayName: "SriLankan Airlines", Aliases: []string{"srilankan", "sri lankan airlines"}},
		{Code: "QF", DisplayName: "Qantas", Aliases: []string{"qantas", "qantas airways"}},
		{Code: "UA", DisplayName: "United Airlines", Aliases: []string{"united", "united airlines"}},
		{Code: "AA", DisplayName: "American Airlines", Aliases: []string{"american", "american airlines"}},
		{Code: "DL", DisplayName: "Delta Air Lines", Aliases: []string{"delta", "delta air lines"}},
		{Code: "AC", DisplayName: "Air Canada", Aliases: []string{"air canada", "aircanada", "air-canada"}},
	}
}
