package places

import (
	"bizradar/internal/domain/entity"
	"bizradar/internal/domain/service"
)

// searchResponse mirrors the upstream search payload. Only the fields the
// engine consumes are declared; unknown fields are ignored by the decoder.
type searchResponse struct {
	Results []placeJSON `json:"results"`
}

type placeJSON struct {
	FsqID      string         `json:"fsq_id"`
	Name       string         `json:"name"`
	Categories []categoryJSON `json:"categories"`
	Location   locationJSON   `json:"location"`
	Geocodes   geocodesJSON   `json:"geocodes"`
	Rating     *float64       `json:"rating"`
	Popularity *float64       `json:"popularity"`
	Price      int            `json:"price"`
	Verified   bool           `json:"verified"`
	Hours      hoursJSON      `json:"hours"`
	Website    string         `json:"website"`
	Tel        string         `json:"tel"`
}

type categoryJSON struct {
	Name string `json:"name"`
}

type locationJSON struct {
	Address  string `json:"address"`
	Locality string `json:"locality"`
	Region   string `json:"region"`
	Postcode string `json:"postcode"`
	Country  string `json:"country"`
}

type geocodesJSON struct {
	Main pointJSON `json:"main"`
}

type pointJSON struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type hoursJSON struct {
	Display string `json:"display"`
}

// missingGeocodes reports an absent main geocode. The upstream omits the
// geocodes object entirely for such records, which decodes to (0, 0).
func (p *placeJSON) missingGeocodes() bool {
	return p.Geocodes.Main.Latitude == 0 && p.Geocodes.Main.Longitude == 0
}

// mapSearchResponse converts the upstream payload into domain businesses.
// Records missing the stable ID, name or geocodes are skipped and counted
// as malformed; the scan they feed becomes partial rather than failed. A
// record without geocodes would otherwise land at (0, 0), fall outside the
// radius and push a tracked business toward removal.
// Absent rating or popularity stays nil so the detector never mistakes
// "unrated" for a rating of zero.
func mapSearchResponse(body *searchResponse) *service.FetchResult {
	businesses := make([]*entity.Business, 0, len(body.Results))
	malformed := 0

	for i := range body.Results {
		place := &body.Results[i]
		if place.FsqID == "" || place.Name == "" || place.missingGeocodes() {
			malformed++

			continue
		}
		businesses = append(businesses, mapPlace(place))
	}

	return &service.FetchResult{
		Businesses:     businesses,
		MalformedCount: malformed,
	}
}

func mapPlace(place *placeJSON) *entity.Business {
	categories := make([]string, 0, len(place.Categories))
	for _, c := range place.Categories {
		if c.Name != "" {
			categories = append(categories, c.Name)
		}
	}

	return &entity.Business{
		PlaceID:    place.FsqID,
		Name:       place.Name,
		Categories: categories,
		Location: entity.Location{
			Latitude:   place.Geocodes.Main.Latitude,
			Longitude:  place.Geocodes.Main.Longitude,
			Address:    place.Location.Address,
			City:       place.Location.Locality,
			State:      place.Location.Region,
			PostalCode: place.Location.Postcode,
			Country:    place.Location.Country,
		},
		Rating:     place.Rating,
		Popularity: place.Popularity,
		PriceTier:  place.Price,
		Verified:   place.Verified,
		Hours:      place.Hours.Display,
		Website:    place.Website,
		Phone:      place.Tel,
	}
}
