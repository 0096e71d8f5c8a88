package scenario_test

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"ahliwaris/internal/declaration/family"
	"ahliwaris/internal/declaration/scenario"
	"ahliwaris/internal/declaration/scenario/scenariotest"
)

type LineageSuite struct {
	suite.Suite
}

func TestLineageSuite(t *testing.T) {
	suite.Run(t, new(LineageSuite))
}

func (s *LineageSuite) TestTwoMarriages() {
	s.Run("children follow their tags", func() {
		heirs := []family.Heir{
			scenariotest.Wife("Sari", family.LineageFirst),
			scenariotest.Wife("Wati", family.LineageSecond),
			scenariotest.Child("Joko", family.GenderMale, family.LineageSecond),
			scenariotest.Child("Ani", family.GenderFemale, family.LineageFirst),
			scenariotest.Child("Tono", family.GenderMale, family.LineageSecond),
		}
		g, err := scenario.Group(scenario.TwoMarriages, heirs)
		s.Require().NoError(err)
		s.Require().Len(g.Groups, 2)
		s.Equal(family.LineageFirst, g.Groups[0].Lineage)
		s.Equal("Sari", g.Groups[0].Spouse.Name)
		s.Equal([]string{"Ani"}, names(g.Groups[0].Children))
		s.Equal([]string{"Joko", "Tono"}, names(g.Groups[1].Children))
	})

	s.Run("untagged spouses take declaration order", func() {
		heirs := []family.Heir{
			scenariotest.Wife("Sari", family.LineageNone),
			scenariotest.Wife("Wati", family.LineageNone),
			scenariotest.Child("Joko", family.GenderMale, family.LineageSecond),
		}
		g, err := scenario.Group(scenario.TwoMarriages, heirs)
		s.Require().NoError(err)
		s.Equal(family.LineageSecond, g.Groups[1].Lineage)
		s.Equal([]string{"Joko"}, names(g.Groups[1].Children))
	})

	s.Run("untagged child is never defaulted", func() {
		heirs := []family.Heir{
			scenariotest.Wife("Sari", family.LineageFirst),
			scenariotest.Wife("Wati", family.LineageSecond),
			scenariotest.Child("Joko", family.GenderMale, family.LineageNone),
		}
		g, err := scenario.Group(scenario.TwoMarriages, heirs)
		errs, ok := scenario.AsValidationErrors(err)
		s.Require().True(ok)
		s.Equal([]scenario.Kind{scenario.KindUngroupedChild}, errs.Kinds())
		s.Equal(2, errs[0].HeirIndex)
		s.Empty(g.Groups[0].Children)
		s.Empty(g.Groups[1].Children)
	})

	s.Run("two spouses on one lineage", func() {
		heirs := []family.Heir{
			scenariotest.Wife("Sari", family.LineageFirst),
			scenariotest.Wife("Wati", family.LineageFirst),
		}
		_, err := scenario.Group(scenario.TwoMarriages, heirs)
		errs, _ := scenario.AsValidationErrors(err)
		s.True(errs.Has(scenario.KindLineageConflict))
	})

	s.Run("child of an undeclared marriage", func() {
		heirs := []family.Heir{
			scenariotest.Wife("Sari", family.LineageFirst),
			scenariotest.Child("Joko", family.GenderMale, family.LineageSecond),
		}
		_, err := scenario.Group(scenario.TwoMarriages, heirs)
		errs, _ := scenario.AsValidationErrors(err)
		s.True(errs.Has(scenario.KindLineageConflict))
	})
}

func (s *LineageSuite) TestSingleMarriageIgnoresTags() {
	heirs := []family.Heir{
		scenariotest.Wife("Sari", family.LineageSecond),
		scenariotest.Child("Ani", family.GenderFemale, family.LineageNone),
		scenariotest.Child("Joko", family.GenderMale, family.LineageFirst),
		scenariotest.Sibling("Dewi", family.GenderFemale),
	}
	g, err := scenario.Group(scenario.SingleWifeChildrenAlive, heirs)
	s.Require().NoError(err)
	s.Require().Len(g.Groups, 1)
	s.Equal(family.LineageNone, g.Groups[0].Lineage)
	s.True(g.Groups[0].HasSpouse)
	s.Equal([]string{"Ani", "Joko"}, names(g.Groups[0].Children))
	s.Equal([]string{"Dewi"}, names(g.Residual))
}

func names(heirs []family.Heir) []string {
	out := make([]string, len(heirs))
	for i, h := range heirs {
		out[i] = h.Name
	}
	return out
}
