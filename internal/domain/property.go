// Package domain defines the core interfaces and types for pdcheck.
package domain

// PropertyType classifies a property for permitted development purposes.
type PropertyType string

const (
	PropertyHouse      PropertyType = "house"
	PropertyFlat       PropertyType = "flat"
	PropertyMaisonette PropertyType = "maisonette"
	PropertyCommercial PropertyType = "commercial"
)

// ConstraintFlags holds the planning designations resolved for a property.
// A flag left false means "no restriction found", never "unknown" - the fact
// provider substitutes false for anything it could not determine and lowers
// its reported confidence instead.
type ConstraintFlags struct {
	Article4Direction bool `json:"article4Direction"`
	ConservationArea  bool `json:"conservationArea"`
	ListedBuilding    bool `json:"listedBuilding"`
	NationalPark      bool `json:"nationalPark"`
	AONB              bool `json:"aonb"`
	WorldHeritage     bool `json:"worldHeritage"`
	TPO               bool `json:"tpo"`
	FloodZone         bool `json:"floodZone"`
}

// PropertyFacts is the normalized input record the rules engine evaluates.
// It is constructed once per check by the fact provider and never mutated.
type PropertyFacts struct {
	Address        string          `json:"address"`
	Postcode       string          `json:"postcode"`
	LocalAuthority string          `json:"localAuthority"`
	PropertyType   PropertyType    `json:"propertyType"`
	Constraints    ConstraintFlags `json:"constraints"`

	// Notes carries optional free text surfaced in blocked-verdict summaries.
	Notes string `json:"notes,omitempty"`
}

// Coordinates is a WGS84 point.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}
