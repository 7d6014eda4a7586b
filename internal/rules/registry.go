package rules

import (
	"github.com/naxonsolutions/pdcheck/internal/domain"
)

// Rule identifiers for the statutory built-in registry.
const (
	RuleArticle4         = "article4-direction"
	RuleListedBuilding   = "listed-building"
	RulePropertyType     = "property-type"
	RuleWorldHeritage    = "world-heritage-site"
	RuleConservationArea = "conservation-area"
	RuleNationalPark     = "national-park"
	RuleAONB             = "aonb"
	RuleTPO              = "tree-preservation-order"
	RuleFloodZone        = "flood-zone"
)

// DefaultRules returns the statutory rule registry. The confidence deltas and
// priorities are fixed policy constants, not tunables: changing them changes
// the product's published verdict behaviour.
func DefaultRules() []Rule {
	return []Rule{
		constraintRule(
			RuleArticle4,
			"Article 4 Direction",
			"Checks whether the local authority has withdrawn permitted development rights for the area.",
			domain.SeverityBlocking, 100,
			func(f domain.PropertyFacts) bool { return f.Constraints.Article4Direction },
			"Property is covered by an Article 4 Direction removing permitted development rights - a full planning application is required",
			"No Article 4 Direction found for this property",
			"An Article 4 Direction withdraws some or all permitted development rights in a defined area. Works that would normally be permitted need planning permission from the local authority.",
			-2.0, 1.0,
		),
		constraintRule(
			RuleListedBuilding,
			"Listed Building",
			"Checks whether the property is a listed building.",
			domain.SeverityBlocking, 95,
			func(f domain.PropertyFacts) bool { return f.Constraints.ListedBuilding },
			"Property is a listed building - listed building consent is required for alterations or extensions",
			"No listed building designation found for this property",
			"Listed buildings have no permitted development rights for most works. Listed building consent is a separate statutory process from planning permission and both may be needed.",
			-3.0, 1.5,
		),
		constraintRule(
			RulePropertyType,
			"Property Type - Flat/Maisonette",
			"Checks whether the property type benefits from householder permitted development rights.",
			domain.SeverityBlocking, 90,
			func(f domain.PropertyFacts) bool {
				return f.PropertyType == domain.PropertyFlat || f.PropertyType == domain.PropertyMaisonette
			},
			"Flats and maisonettes have no householder permitted development rights - a full planning application is required",
			"No property type restriction found - houses benefit from householder permitted development rights",
			"Householder permitted development rights under the General Permitted Development Order apply to dwellinghouses only. Flats and maisonettes are excluded regardless of other designations.",
			-1.0, 2.0,
		),
		constraintRule(
			RuleWorldHeritage,
			"World Heritage Site",
			"Checks whether the property lies within a World Heritage Site.",
			domain.SeverityRestrictive, 85,
			func(f domain.PropertyFacts) bool { return f.Constraints.WorldHeritage },
			"Property is within a World Heritage Site - permitted development rights are significantly restricted",
			"No World Heritage Site designation found for this property",
			"World Heritage Sites are article 2(3) land. Rear extensions beyond modest limits, side extensions, and cladding all need planning permission.",
			-2.5, 0.5,
		),
		constraintRule(
			RuleConservationArea,
			"Conservation Area",
			"Checks whether the property lies within a designated conservation area.",
			domain.SeverityRestrictive, 80,
			func(f domain.PropertyFacts) bool { return f.Constraints.ConservationArea },
			"Property is in a conservation area - permitted development rights are restricted",
			"No conservation area designation found for this property",
			"Conservation areas are article 2(3) land. Side extensions, two-storey rear extensions, cladding, and most demolition need planning permission.",
			-1.5, 0.5,
		),
		constraintRule(
			RuleNationalPark,
			"National Park",
			"Checks whether the property lies within a National Park.",
			domain.SeverityRestrictive, 75,
			func(f domain.PropertyFacts) bool { return f.Constraints.NationalPark },
			"Property is within a National Park - permitted development rights are reduced",
			"No National Park designation found for this property",
			"National Parks are article 2(3) land with reduced size limits for extensions and outbuildings.",
			-1.0, 0.5,
		),
		constraintRule(
			RuleAONB,
			"Area of Outstanding Natural Beauty",
			"Checks whether the property lies within an Area of Outstanding Natural Beauty.",
			domain.SeverityRestrictive, 70,
			func(f domain.PropertyFacts) bool { return f.Constraints.AONB },
			"Property is within an Area of Outstanding Natural Beauty - permitted development rights are reduced",
			"No Area of Outstanding Natural Beauty designation found for this property",
			"AONBs are article 2(3) land with reduced size limits for extensions and outbuildings.",
			-1.0, 0.5,
		),
		constraintRule(
			RuleTPO,
			"Tree Preservation Order",
			"Checks whether a Tree Preservation Order affects the property.",
			domain.SeverityAdvisory, 60,
			func(f domain.PropertyFacts) bool { return f.Constraints.TPO },
			"A Tree Preservation Order affects this property - consent is required before works to protected trees",
			"No Tree Preservation Order found for this property",
			"A TPO does not remove permitted development rights for buildings, but cutting, topping, or felling a protected tree without consent is an offence.",
			-0.5, 0.2,
		),
		constraintRule(
			RuleFloodZone,
			"Flood Risk Zone",
			"Checks whether the property lies within a flood risk zone.",
			domain.SeverityAdvisory, 50,
			func(f domain.PropertyFacts) bool { return f.Constraints.FloodZone },
			"Property is in a flood risk zone - additional planning considerations apply to new development",
			"No flood risk zone designation found for this property",
			"Flood zones do not remove permitted development rights, but flood risk assessments may be required for applications and some prior approvals.",
			-0.5, 0.2,
		),
	}
}
