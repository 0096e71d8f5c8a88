// Package scenario classifies a family against one of the seven inheritance
// configurations (kondisi) a declaration letter can be issued for.
//
// Classification here means validation against a declared scenario: the
// caller chooses the scenario and Validate either proves the family fits it,
// returning a ValidatedCase, or returns every rule it violates.
package scenario

import (
	"fmt"
	"strconv"
	"strings"

	"ahliwaris/internal/declaration/family"
)

// Scenario is the closed set of supported inheritance configurations.
type Scenario int

const (
	// SingleWifeChildrenAlive: male deceased, one wife, every child alive.
	SingleWifeChildrenAlive Scenario = iota + 1
	// SingleWifeChildDeceased: male deceased, one wife, a child died without descendants.
	SingleWifeChildDeceased
	// SingleWifeChildWithDescendants: male deceased, one wife, a deceased child left children.
	SingleWifeChildWithDescendants
	// TwoMarriages: male deceased, two wives, children tagged by lineage.
	TwoMarriages
	// SurvivingHusband: female deceased survived by her husband and children.
	SurvivingHusband
	// ParentsAndSiblings: no spouse or descendants; parents and siblings inherit.
	ParentsAndSiblings
	// SiblingsOnly: no spouse, descendants or parents; siblings inherit.
	SiblingsOnly
)

// All lists every scenario in id order.
var All = []Scenario{
	SingleWifeChildrenAlive,
	SingleWifeChildDeceased,
	SingleWifeChildWithDescendants,
	TwoMarriages,
	SurvivingHusband,
	ParentsAndSiblings,
	SiblingsOnly,
}

var names = map[Scenario]string{
	SingleWifeChildrenAlive:        "single_wife_children_alive",
	SingleWifeChildDeceased:        "single_wife_child_deceased",
	SingleWifeChildWithDescendants: "single_wife_child_with_descendants",
	TwoMarriages:                   "two_marriages",
	SurvivingHusband:               "surviving_husband",
	ParentsAndSiblings:             "parents_and_siblings",
	SiblingsOnly:                   "siblings_only",
}

// Parse accepts the numeric id ("1".."7", optionally prefixed "kondisi") or the name.
func Parse(s string) (Scenario, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.TrimSpace(strings.TrimPrefix(s, "kondisi"))
	s = strings.TrimLeft(s, "-_ ")
	if n, err := strconv.Atoi(s); err == nil {
		return FromID(n)
	}
	for sc, name := range names {
		if name == s {
			return sc, nil
		}
	}
	return 0, fmt.Errorf("unknown scenario %q", s)
}

// FromID converts a numeric scenario id.
func FromID(n int) (Scenario, error) {
	sc := Scenario(n)
	if !sc.IsValid() {
		return 0, fmt.Errorf("unknown scenario %d", n)
	}
	return sc, nil
}

// IsValid reports whether s is one of the seven defined scenarios.
func (s Scenario) IsValid() bool {
	_, ok := names[s]
	return ok
}

// ID returns the numeric identifier used on the wire.
func (s Scenario) ID() int {
	return int(s)
}

func (s Scenario) String() string {
	if name, ok := names[s]; ok {
		return name
	}
	return "unknown_" + strconv.Itoa(int(s))
}

// GrandchildRule states whether grandchildren may or must appear.
type GrandchildRule int

const (
	GrandchildrenForbidden GrandchildRule = iota
	GrandchildrenPermitted
	GrandchildrenRequired
)

// Rules is the structural rule set of one scenario.
type Rules struct {
	// DeceasedGender is the required gender of the deceased; empty means either.
	DeceasedGender family.Gender
	// Spouse is the spouse relationship the scenario admits; empty means none.
	Spouse      family.Relationship
	SpouseCount int

	MinChildren       int
	ChildrenForbidden bool
	AllChildrenAlive  bool
	// RequireDeceasedChild demands a deceased child whose HasDescendants equals
	// RequireDeceasedChildHasDescendants.
	RequireDeceasedChild               bool
	RequireDeceasedChildHasDescendants bool

	Grandchildren GrandchildRule
	// RequiresLineage partitions children by the marriage they descend from.
	RequiresLineage bool

	// Parents inherit alongside descendants; MaxParents 0 forbids them.
	MinParents  int
	MaxParents  int
	MinSiblings int
	// SiblingsForbidden is set wherever descendants exclude siblings.
	SiblingsForbidden bool
}

var rules = map[Scenario]Rules{
	SingleWifeChildrenAlive: {
		DeceasedGender:    family.GenderMale,
		Spouse:            family.RelationshipWife,
		SpouseCount:       1,
		MinChildren:       1,
		AllChildrenAlive:  true,
		Grandchildren:     GrandchildrenForbidden,
		MaxParents:        2,
		SiblingsForbidden: true,
	},
	SingleWifeChildDeceased: {
		DeceasedGender:       family.GenderMale,
		Spouse:               family.RelationshipWife,
		SpouseCount:          1,
		MinChildren:          1,
		RequireDeceasedChild: true,
		Grandchildren:        GrandchildrenForbidden,
		MaxParents:           2,
		SiblingsForbidden:    true,
	},
	SingleWifeChildWithDescendants: {
		DeceasedGender:                     family.GenderMale,
		Spouse:                             family.RelationshipWife,
		SpouseCount:                        1,
		MinChildren:                        1,
		RequireDeceasedChild:               true,
		RequireDeceasedChildHasDescendants: true,
		Grandchildren:                      GrandchildrenRequired,
		MaxParents:                         2,
		SiblingsForbidden:                  true,
	},
	TwoMarriages: {
		DeceasedGender:    family.GenderMale,
		Spouse:            family.RelationshipWife,
		SpouseCount:       2,
		MinChildren:       1,
		Grandchildren:     GrandchildrenPermitted,
		RequiresLineage:   true,
		MaxParents:        2,
		SiblingsForbidden: true,
	},
	SurvivingHusband: {
		DeceasedGender:    family.GenderFemale,
		Spouse:            family.RelationshipHusband,
		SpouseCount:       1,
		MinChildren:       1,
		Grandchildren:     GrandchildrenForbidden,
		MaxParents:        2,
		SiblingsForbidden: true,
	},
	ParentsAndSiblings: {
		ChildrenForbidden: true,
		Grandchildren:     GrandchildrenForbidden,
		MinParents:        1,
		MaxParents:        2,
		MinSiblings:       1,
	},
	SiblingsOnly: {
		ChildrenForbidden: true,
		Grandchildren:     GrandchildrenForbidden,
		MinSiblings:       1,
	},
}

// Rules returns the rule set for s. The zero Rules is returned for an invalid scenario.
func (s Scenario) Rules() Rules {
	return rules[s]
}

// HasDescendantLine reports whether the scenario involves a spouse and children,
// as opposed to the parents/siblings scenarios where the deceased never married.
func (s Scenario) HasDescendantLine() bool {
	return s.Rules().Spouse != ""
}
