package family_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"

	"ahliwaris/internal/declaration/family"
)

type HeirSuite struct {
	suite.Suite
}

func TestHeirSuite(t *testing.T) {
	suite.Run(t, new(HeirSuite))
}

func (s *HeirSuite) TestConstructionInvariants() {
	s.Run("rejects empty name", func() {
		_, err := family.NewHeir(family.Heir{Relationship: family.RelationshipChild})
		s.requireInvalid(err, "name")
	})

	s.Run("rejects unknown relationship", func() {
		_, err := family.NewHeir(family.Heir{Name: "Ani", Relationship: "COUSIN"})
		s.requireInvalid(err, "relationship")
	})

	s.Run("rejects male wife", func() {
		_, err := family.NewHeir(family.Heir{
			Name:         "Sari",
			Relationship: family.RelationshipWife,
			Gender:       family.GenderMale,
		})
		s.requireInvalid(err, "gender")
	})

	s.Run("rejects female husband", func() {
		_, err := family.NewHeir(family.Heir{
			Name:         "Budi",
			Relationship: family.RelationshipHusband,
			Gender:       family.GenderFemale,
		})
		s.requireInvalid(err, "gender")
	})

	s.Run("rejects descendants on a living heir", func() {
		_, err := family.NewHeir(family.Heir{
			Name:           "Ani",
			Relationship:   family.RelationshipChild,
			Status:         family.StatusAlive,
			HasDescendants: true,
		})
		s.requireInvalid(err, "has_descendants")
	})

	s.Run("rejects descendant record without descendants", func() {
		_, err := family.NewHeir(family.Heir{
			Name:         "Ani",
			Relationship: family.RelationshipChild,
			Status:       family.StatusDeceased,
			Descendants:  &family.DescendantRecord{SpouseName: "Rudi"},
		})
		s.requireInvalid(err, "descendants")
	})

	s.Run("rejects unknown lineage", func() {
		_, err := family.NewHeir(family.Heir{
			Name:         "Ani",
			Relationship: family.RelationshipChild,
			Lineage:      "THIRD",
		})
		s.requireInvalid(err, "lineage")
	})

	s.Run("fills implied spouse gender and default status", func() {
		h, err := family.NewHeir(family.Heir{Name: " Sari ", Relationship: family.RelationshipWife})
		s.Require().NoError(err)
		s.Equal(family.GenderFemale, h.Gender)
		s.Equal(family.StatusAlive, h.Status)
		s.Equal("Sari", h.Name)
	})

	s.Run("does not share the descendant record with the caller", func() {
		rec := &family.DescendantRecord{SpouseName: "Rudi"}
		h, err := family.NewHeir(family.Heir{
			Name:           "Ani",
			Relationship:   family.RelationshipChild,
			Status:         family.StatusDeceased,
			HasDescendants: true,
			Descendants:    rec,
		})
		s.Require().NoError(err)
		rec.SpouseName = "changed"
		s.Equal("Rudi", h.Descendants.SpouseName)
	})

	s.Run("canonicalizes lower-case labels", func() {
		h, err := family.NewHeir(family.Heir{
			Name:         "Ani",
			Relationship: " child ",
			Status:       "deceased",
			Lineage:      "second",
		})
		s.Require().NoError(err)
		s.Equal(family.RelationshipChild, h.Relationship)
		s.Equal(family.StatusDeceased, h.Status)
		s.Equal(family.LineageSecond, h.Lineage)
	})
}

func (s *HeirSuite) TestClone() {
	h := family.Heir{
		Name:           "Joko",
		Relationship:   family.RelationshipChild,
		Status:         family.StatusDeceased,
		HasDescendants: true,
		Descendants:    &family.DescendantRecord{SpouseName: "Lestari"},
	}
	heirs := []family.Heir{h}

	clone := h.Clone()
	clone.Descendants.SpouseName = "changed"
	s.Equal("Lestari", h.Descendants.SpouseName)

	cloned := family.CloneHeirs(heirs)
	cloned[0].Descendants.SpouseName = "changed"
	s.Equal("Lestari", heirs[0].Descendants.SpouseName)

	s.Nil(family.CloneHeirs(nil))
}

func (s *HeirSuite) TestNames() {
	s.Run("living heir gets patronymic suffix", func() {
		h := family.Heir{Name: "Ani", Patronymic: "Budi", Gender: family.GenderFemale, Status: family.StatusAlive}
		s.Equal("Ani BINTI Budi", h.DisplayName())
	})

	s.Run("deceased heir gets honorific", func() {
		h := family.Heir{Name: "Joko", Patronymic: "Budi", Gender: family.GenderMale, Status: family.StatusDeceased}
		s.Equal("Almarhum Joko BIN Budi", h.DisplayName())
	})

	s.Run("deceased person title", func() {
		d := family.DeceasedPerson{Name: "Siti", Patronymic: "Umar", Gender: family.GenderFemale}
		s.Equal("Almarhumah Siti BINTI Umar", d.Title())
	})
}

func (s *HeirSuite) TestRelationshipLabel() {
	s.Equal("Istri", family.Heir{Relationship: family.RelationshipWife}.RelationshipLabel())
	s.Equal("Anak", family.Heir{Relationship: family.RelationshipChild}.RelationshipLabel())
	s.Equal("Ibu Kandung", family.Heir{Relationship: family.RelationshipParent, Gender: family.GenderFemale}.RelationshipLabel())
	s.Equal("Orang Tua", family.Heir{Relationship: family.RelationshipParent}.RelationshipLabel())
}

func (s *HeirSuite) TestEffectiveDeath() {
	h := family.Heir{
		Death: family.DeathFacts{Place: "Garut", Date: "2019-01-01", CertificateNumber: "OLD"},
		Descendants: &family.DescendantRecord{
			DeathCertificateNumber: "3205-KM-01",
		},
	}
	facts := h.EffectiveDeath()
	s.Equal("Garut", facts.Place)
	s.Equal("2019-01-01", facts.Date)
	s.Equal("3205-KM-01", facts.CertificateNumber)
}

func (s *HeirSuite) TestParsers() {
	s.Run("relationship", func() {
		r, err := family.ParseRelationship(" child ")
		s.Require().NoError(err)
		s.Equal(family.RelationshipChild, r)
		_, err = family.ParseRelationship("uncle")
		s.Error(err)
	})

	s.Run("vital status defaults to alive", func() {
		st, err := family.ParseVitalStatus("")
		s.Require().NoError(err)
		s.Equal(family.StatusAlive, st)
		_, err = family.ParseVitalStatus("missing")
		s.Error(err)
	})

	s.Run("lineage", func() {
		l, err := family.ParseLineage("second")
		s.Require().NoError(err)
		s.Equal(family.LineageSecond, l)
		_, err = family.ParseLineage("THIRD")
		s.Error(err)
	})
}

func (s *HeirSuite) requireInvalid(err error, field string) {
	s.T().Helper()
	s.Require().Error(err)
	var invalid *family.InvalidHeirError
	s.Require().True(errors.As(err, &invalid))
	s.Equal(field, invalid.Field)
}
