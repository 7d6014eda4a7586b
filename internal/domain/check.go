package domain

import (
	"time"
)

// PlanningResult is the complete outcome of one planning rights check.
// This is the object the facade returns to callers and persists.
type PlanningResult struct {
	ID             string       `json:"id"`
	Address        string       `json:"address"`
	Postcode       string       `json:"postcode"`
	Coordinates    *Coordinates `json:"coordinates,omitempty"`
	LocalAuthority string       `json:"localAuthority"`
	PropertyType   PropertyType `json:"propertyType"`

	HasPermittedDevelopmentRights bool     `json:"hasPermittedDevelopmentRights"`
	Confidence                    float64  `json:"confidence"`
	PrimaryReasons                []string `json:"primaryReasons"`
	Checks                        []Check  `json:"checks"`
	Summary                       string   `json:"summary"`

	// Fallback marks results built without resolved facts (address could not
	// be matched); confidence is capped and checks are best-effort.
	Fallback bool `json:"fallback,omitempty"`

	CheckedAt time.Time `json:"checkedAt"`
}

// CheckRequest is the input to the facade operation.
type CheckRequest struct {
	// ID is optional; the facade assigns one when empty. Async dispatch
	// pre-assigns it so the caller can poll before the worker finishes.
	ID      string
	Address string

	// Optional caller-supplied coordinates, bypassing geocoding.
	Lat *float64
	Lng *float64

	// Optional explicit property type; inferred from the address when empty.
	PropertyType PropertyType
}
