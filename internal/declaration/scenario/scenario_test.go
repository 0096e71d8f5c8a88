package scenario_test

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"ahliwaris/internal/declaration/family"
	"ahliwaris/internal/declaration/narrative"
	"ahliwaris/internal/declaration/scenario"
	"ahliwaris/internal/declaration/scenario/scenariotest"
)

type ScenarioSuite struct {
	suite.Suite
}

func TestScenarioSuite(t *testing.T) {
	suite.Run(t, new(ScenarioSuite))
}

func (s *ScenarioSuite) TestParse() {
	cases := map[string]scenario.Scenario{
		"1":             scenario.SingleWifeChildrenAlive,
		"kondisi-4":     scenario.TwoMarriages,
		"Kondisi 7":     scenario.SiblingsOnly,
		"two_marriages": scenario.TwoMarriages,
	}
	for in, want := range cases {
		got, err := scenario.Parse(in)
		s.Require().NoError(err, in)
		s.Equal(want, got, in)
	}

	_, err := scenario.Parse("8")
	s.Error(err)
	_, err = scenario.Parse("kondisi-x")
	s.Error(err)
	s.False(scenario.Scenario(0).IsValid())
}

func (s *ScenarioSuite) TestMinimalFamiliesValidate() {
	for _, sc := range scenario.All {
		s.Run(sc.String(), func() {
			deceased, heirs := scenariotest.Family(sc)
			vc, err := scenario.Validate(sc, deceased, heirs)
			s.Require().NoError(err)
			s.Equal(sc, vc.Scenario())
			s.Equal(len(heirs), vc.HeirCount())
			s.Len(vc.Heirs(), len(heirs))
		})
	}
}

func (s *ScenarioSuite) TestUnknownScenario() {
	deceased, heirs := scenariotest.Family(scenario.SingleWifeChildrenAlive)
	vc, err := scenario.Validate(scenario.Scenario(9), deceased, heirs)
	s.Nil(vc)
	s.requireKinds(err, scenario.KindUnknownScenario)
}

func (s *ScenarioSuite) TestDeceasedRules() {
	s.Run("female deceased in a wife scenario", func() {
		deceased, heirs := scenariotest.Family(scenario.SingleWifeChildrenAlive)
		deceased.Gender = family.GenderFemale
		_, err := scenario.Validate(scenario.SingleWifeChildrenAlive, deceased, heirs)
		s.requireKinds(err, scenario.KindWrongDeceasedGender)
	})

	s.Run("male deceased with a husband", func() {
		deceased, heirs := scenariotest.Family(scenario.SurvivingHusband)
		deceased.Gender = family.GenderMale
		_, err := scenario.Validate(scenario.SurvivingHusband, deceased, heirs)
		s.requireKinds(err, scenario.KindWrongDeceasedGender)
	})

	s.Run("missing name and gender", func() {
		deceased, heirs := scenariotest.Family(scenario.SingleWifeChildrenAlive)
		deceased.Name = ""
		deceased.Gender = ""
		_, err := scenario.Validate(scenario.SingleWifeChildrenAlive, deceased, heirs)
		errs := s.requireKinds(err, scenario.KindMissingRequiredField)
		s.Len(errs, 2)
	})

	s.Run("blank name", func() {
		deceased, heirs := scenariotest.Family(scenario.SingleWifeChildrenAlive)
		deceased.Name = "   "
		_, err := scenario.Validate(scenario.SingleWifeChildrenAlive, deceased, heirs)
		errs := s.requireKinds(err, scenario.KindMissingRequiredField)
		s.Equal("deceased.name", errs[0].Field)
	})

	s.Run("name is trimmed", func() {
		deceased, heirs := scenariotest.Family(scenario.SingleWifeChildrenAlive)
		deceased.Name = "  Budi "
		vc, err := scenario.Validate(scenario.SingleWifeChildrenAlive, deceased, heirs)
		s.Require().NoError(err)
		s.Equal("Budi", vc.Deceased().Name)
	})

	s.Run("gender accepted in free form", func() {
		deceased, heirs := scenariotest.Family(scenario.SingleWifeChildrenAlive)
		deceased.Gender = "laki-laki"
		vc, err := scenario.Validate(scenario.SingleWifeChildrenAlive, deceased, heirs)
		s.Require().NoError(err)
		s.Equal(family.GenderMale, vc.Deceased().Gender)
	})
}

func (s *ScenarioSuite) TestRequiredMembersRemoved() {
	s.Run("wife removed", func() {
		deceased, heirs := scenariotest.Family(scenario.SingleWifeChildrenAlive)
		_, err := scenario.Validate(scenario.SingleWifeChildrenAlive, deceased, heirs[1:])
		s.requireKinds(err, scenario.KindWrongSpouseCount)
	})

	s.Run("children removed", func() {
		deceased, heirs := scenariotest.Family(scenario.SingleWifeChildrenAlive)
		_, err := scenario.Validate(scenario.SingleWifeChildrenAlive, deceased, heirs[:1])
		s.requireKinds(err, scenario.KindMissingRequiredDescendant)
	})

	s.Run("deceased child removed", func() {
		deceased, heirs := scenariotest.Family(scenario.SingleWifeChildDeceased)
		_, err := scenario.Validate(scenario.SingleWifeChildDeceased, deceased, heirs[:2])
		s.requireKinds(err, scenario.KindMissingRequiredDescendant)
	})

	s.Run("second wife removed", func() {
		deceased, heirs := scenariotest.Family(scenario.TwoMarriages)
		heirs = []family.Heir{heirs[0], heirs[2]}
		_, err := scenario.Validate(scenario.TwoMarriages, deceased, heirs)
		errs := s.requireKinds(err, scenario.KindWrongSpouseCount)
		s.False(errs.Has(scenario.KindUngroupedChild))
	})

	s.Run("husband removed", func() {
		deceased, heirs := scenariotest.Family(scenario.SurvivingHusband)
		_, err := scenario.Validate(scenario.SurvivingHusband, deceased, heirs[1:])
		s.requireKinds(err, scenario.KindWrongSpouseCount)
	})

	s.Run("children of the surviving husband removed", func() {
		deceased, heirs := scenariotest.Family(scenario.SurvivingHusband)
		_, err := scenario.Validate(scenario.SurvivingHusband, deceased, heirs[:1])
		s.requireKinds(err, scenario.KindMissingRequiredDescendant)
	})

	s.Run("parents removed", func() {
		deceased, heirs := scenariotest.Family(scenario.ParentsAndSiblings)
		_, err := scenario.Validate(scenario.ParentsAndSiblings, deceased, heirs[2:])
		s.requireKinds(err, scenario.KindMissingRequiredRelative)
	})

	s.Run("siblings removed", func() {
		deceased, _ := scenariotest.Family(scenario.SiblingsOnly)
		_, err := scenario.Validate(scenario.SiblingsOnly, deceased, nil)
		s.requireKinds(err, scenario.KindMissingRequiredRelative)
	})
}

func (s *ScenarioSuite) TestForbiddenRelatives() {
	s.Run("deceased child in the all-alive scenario", func() {
		deceased, heirs := scenariotest.Family(scenario.SingleWifeChildrenAlive)
		heirs[2].Status = family.StatusDeceased
		_, err := scenario.Validate(scenario.SingleWifeChildrenAlive, deceased, heirs)
		s.requireKinds(err, scenario.KindVitalStatusMismatch)
	})

	s.Run("husband in a wife scenario", func() {
		deceased, heirs := scenariotest.Family(scenario.SingleWifeChildrenAlive)
		heirs = append(heirs, family.Heir{Name: "Hadi", Relationship: family.RelationshipHusband})
		_, err := scenario.Validate(scenario.SingleWifeChildrenAlive, deceased, heirs)
		s.requireKinds(err, scenario.KindForbiddenRelationshipPresent)
	})

	s.Run("spouse where none is admitted", func() {
		deceased, heirs := scenariotest.Family(scenario.SiblingsOnly)
		heirs = append(heirs, scenariotest.Wife("Sari", family.LineageNone))
		_, err := scenario.Validate(scenario.SiblingsOnly, deceased, heirs)
		s.requireKinds(err, scenario.KindWrongSpouseCount)
	})

	s.Run("parent in siblings-only", func() {
		deceased, heirs := scenariotest.Family(scenario.SiblingsOnly)
		heirs = append(heirs, family.Heir{Name: "Karto", Gender: family.GenderMale, Relationship: family.RelationshipParent})
		_, err := scenario.Validate(scenario.SiblingsOnly, deceased, heirs)
		s.requireKinds(err, scenario.KindForbiddenRelationshipPresent)
	})

	s.Run("three parents", func() {
		deceased, heirs := scenariotest.Family(scenario.ParentsAndSiblings)
		heirs = append(heirs, family.Heir{Name: "Parmi", Relationship: family.RelationshipParent})
		_, err := scenario.Validate(scenario.ParentsAndSiblings, deceased, heirs)
		s.requireKinds(err, scenario.KindForbiddenRelationshipPresent)
	})

	s.Run("one parent is enough", func() {
		deceased, heirs := scenariotest.Family(scenario.ParentsAndSiblings)
		_, err := scenario.Validate(scenario.ParentsAndSiblings, deceased, heirs[1:])
		s.NoError(err)
	})

	s.Run("parents alongside descendants", func() {
		for _, sc := range []scenario.Scenario{
			scenario.SingleWifeChildrenAlive,
			scenario.SingleWifeChildDeceased,
			scenario.SingleWifeChildWithDescendants,
			scenario.TwoMarriages,
			scenario.SurvivingHusband,
		} {
			deceased, heirs := scenariotest.Family(sc)
			heirs = append(heirs,
				family.Heir{Name: "Karto", Gender: family.GenderMale, Relationship: family.RelationshipParent},
				family.Heir{Name: "Tini", Gender: family.GenderFemale, Relationship: family.RelationshipParent},
			)
			vc, err := scenario.Validate(sc, deceased, heirs)
			s.Require().NoError(err, sc.String())
			s.Len(vc.Parents(), 2, sc.String())
		}
	})

	s.Run("three parents alongside children", func() {
		deceased, heirs := scenariotest.Family(scenario.SingleWifeChildrenAlive)
		for _, name := range []string{"Karto", "Tini", "Parmi"} {
			heirs = append(heirs, family.Heir{Name: name, Relationship: family.RelationshipParent})
		}
		_, err := scenario.Validate(scenario.SingleWifeChildrenAlive, deceased, heirs)
		s.requireKinds(err, scenario.KindForbiddenRelationshipPresent)
	})

	s.Run("sibling alongside children", func() {
		deceased, heirs := scenariotest.Family(scenario.SingleWifeChildrenAlive)
		heirs = append(heirs, scenariotest.Sibling("Dewi", family.GenderFemale))
		_, err := scenario.Validate(scenario.SingleWifeChildrenAlive, deceased, heirs)
		s.requireKinds(err, scenario.KindForbiddenRelationshipPresent)
	})

	s.Run("grandchild outside a descendant scenario", func() {
		deceased, heirs := scenariotest.Family(scenario.SingleWifeChildDeceased)
		heirs = append(heirs, scenariotest.Grandchild("Rina", family.GenderFemale, ""))
		_, err := scenario.Validate(scenario.SingleWifeChildDeceased, deceased, heirs)
		s.requireKinds(err, scenario.KindForbiddenRelationshipPresent)
	})
}

func (s *ScenarioSuite) TestDescendantLine() {
	s.Run("missing descendant record", func() {
		deceased, heirs := scenariotest.Family(scenario.SingleWifeChildWithDescendants)
		heirs[2].Descendants = nil
		_, err := scenario.Validate(scenario.SingleWifeChildWithDescendants, deceased, heirs)
		errs := s.requireKinds(err, scenario.KindMissingDescendantRecord)
		s.Equal(2, errs[0].HeirIndex)
		s.Equal("heirs[2].descendants", errs[0].Field)
	})

	s.Run("no grandchildren listed", func() {
		deceased, heirs := scenariotest.Family(scenario.SingleWifeChildWithDescendants)
		_, err := scenario.Validate(scenario.SingleWifeChildWithDescendants, deceased, heirs[:3])
		s.requireKinds(err, scenario.KindMissingRequiredDescendant)
	})

	s.Run("grandchild links by single candidate", func() {
		deceased, heirs := scenariotest.Family(scenario.SingleWifeChildWithDescendants)
		heirs[3].ParentID = ""
		heirs[4].ParentID = ""
		vc, err := scenario.Validate(scenario.SingleWifeChildWithDescendants, deceased, heirs)
		s.Require().NoError(err)
		branches := vc.Lines()[0].Branches
		s.Require().Len(branches, 2)
		s.Empty(branches[0].Grandchildren)
		s.Len(branches[1].Grandchildren, 2)
	})

	s.Run("grandchild with unknown parent", func() {
		deceased, heirs := scenariotest.Family(scenario.SingleWifeChildWithDescendants)
		heirs[4].ParentID = "c-nobody"
		_, err := scenario.Validate(scenario.SingleWifeChildWithDescendants, deceased, heirs)
		s.requireKinds(err, scenario.KindOrphanedGrandchild)
	})

	s.Run("ambiguous parent", func() {
		deceased, heirs := scenariotest.Family(scenario.SingleWifeChildWithDescendants)
		heirs = append(heirs, scenariotest.ChildWithDescendants("c-ani", "Anto", family.LineageNone))
		heirs[3].ParentID = ""
		_, err := scenario.Validate(scenario.SingleWifeChildWithDescendants, deceased, heirs)
		s.requireKinds(err, scenario.KindOrphanedGrandchild, scenario.KindMissingRequiredDescendant)
	})

	s.Run("caller id shaped like a position", func() {
		deceased, _ := scenariotest.Family(scenario.SingleWifeChildWithDescendants)
		heirs := []family.Heir{
			scenariotest.Wife("Sari", family.LineageNone),
			scenariotest.ChildWithDescendants("", "Ahmad", family.LineageNone),
			scenariotest.ChildWithDescendants("#1", "Bambang", family.LineageNone),
			scenariotest.Grandchild("Rina", family.GenderFemale, "#1"),
		}
		_, err := scenario.Validate(scenario.SingleWifeChildWithDescendants, deceased, heirs)
		errs := s.requireKinds(err, scenario.KindMissingRequiredDescendant)
		s.False(errs.Has(scenario.KindOrphanedGrandchild))
		s.Require().Len(errs, 1)
		s.Equal(1, errs[0].HeirIndex)
	})

	s.Run("parent id cannot address an unnamed child by position", func() {
		deceased, heirs := scenariotest.Family(scenario.SingleWifeChildWithDescendants)
		heirs[2].ID = ""
		heirs[3].ParentID = "#2"
		_, err := scenario.Validate(scenario.SingleWifeChildWithDescendants, deceased, heirs)
		s.requireKinds(err, scenario.KindOrphanedGrandchild)
	})

	s.Run("duplicate ids", func() {
		deceased, heirs := scenariotest.Family(scenario.SingleWifeChildWithDescendants)
		heirs[1].ID = "c-joko"
		_, err := scenario.Validate(scenario.SingleWifeChildWithDescendants, deceased, heirs)
		s.requireKinds(err, scenario.KindInvalidHeir)
	})
}

func (s *ScenarioSuite) TestInvalidHeirIsReportedWithCause() {
	deceased, heirs := scenariotest.Family(scenario.SingleWifeChildrenAlive)
	heirs[1].Name = "  "
	_, err := scenario.Validate(scenario.SingleWifeChildrenAlive, deceased, heirs)
	errs := s.requireKinds(err, scenario.KindInvalidHeir)

	var invalid *family.InvalidHeirError
	s.Require().ErrorAs(errs[0], &invalid)
	s.Equal("name", invalid.Field)
	s.Equal("heirs[1].name", errs[0].Field)
}

func (s *ScenarioSuite) TestAllViolationsReported() {
	deceased, heirs := scenariotest.Family(scenario.SingleWifeChildrenAlive)
	deceased.Gender = family.GenderFemale
	heirs = append(heirs[1:], scenariotest.Sibling("Dewi", family.GenderFemale))
	_, err := scenario.Validate(scenario.SingleWifeChildrenAlive, deceased, heirs)
	errs, ok := scenario.AsValidationErrors(err)
	s.Require().True(ok)
	s.ElementsMatch([]scenario.Kind{
		scenario.KindWrongDeceasedGender,
		scenario.KindWrongSpouseCount,
		scenario.KindForbiddenRelationshipPresent,
	}, errs.Kinds())
}

func (s *ScenarioSuite) TestInputsAreNotMutated() {
	deceased, heirs := scenariotest.Family(scenario.SingleWifeChildWithDescendants)
	deceased.Gender = "male"
	heirs[0].Name = "  Sari  "
	before := append([]family.Heir(nil), heirs...)
	record := *heirs[2].Descendants

	vc, err := scenario.Validate(scenario.SingleWifeChildWithDescendants, deceased, heirs)
	s.Require().NoError(err)

	s.Equal(before, heirs)
	s.Equal(family.Gender("male"), deceased.Gender)
	s.Equal("  Sari  ", heirs[0].Name)
	s.Equal(family.Gender(""), heirs[0].Gender)

	lines := vc.Lines()
	s.Equal("Sari", lines[0].Spouse.Name)
	lines[0].Branches[1].Child.Descendants.SpouseName = "changed"
	s.Equal(record, *heirs[2].Descendants)
}

func (s *ScenarioSuite) TestValidatedCaseIsImmutable() {
	deceased, heirs := scenariotest.Family(scenario.SingleWifeChildWithDescendants)
	vc, err := scenario.Validate(scenario.SingleWifeChildWithDescendants, deceased, heirs)
	s.Require().NoError(err)
	opts := narrative.Options{Today: time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)}
	before := narrative.Assemble(vc, opts)

	got := vc.Heirs()
	s.Require().NotNil(got[2].Descendants)
	got[2].Descendants.SpouseName = "MUTATED"
	for _, l := range vc.Lines() {
		for _, b := range l.Branches {
			if b.Child.Descendants != nil {
				b.Child.Descendants.MarriageRegistrar = "MUTATED"
			}
		}
	}

	after := narrative.Assemble(vc, opts)
	s.Empty(cmp.Diff(before, after))
}

func (s *ScenarioSuite) requireKinds(err error, kinds ...scenario.Kind) scenario.ValidationErrors {
	s.T().Helper()
	s.Require().Error(err)
	errs, ok := scenario.AsValidationErrors(err)
	s.Require().True(ok, "expected ValidationErrors, got %T", err)
	for _, k := range kinds {
		s.True(errs.Has(k), "missing %s in %v", k, errs)
	}
	return errs
}

func TestValidationErrorsFormatting(t *testing.T) {
	errs := scenario.ValidationErrors{
		{Kind: scenario.KindUngroupedChild, Field: "heirs[3].lineage", HeirName: "Joko", HeirIndex: 3, Message: "no lineage"},
	}
	assert.Equal(t, "ungrouped_child: heirs[3].lineage (Joko): no lineage", errs.Error())

	var err error = errs
	got, ok := scenario.AsValidationErrors(err)
	require.True(t, ok)
	assert.Equal(t, []scenario.Kind{scenario.KindUngroupedChild}, got.Kinds())
}
