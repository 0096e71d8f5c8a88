package narrative_test

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/suite"

	"ahliwaris/internal/declaration/document"
	"ahliwaris/internal/declaration/family"
	"ahliwaris/internal/declaration/narrative"
	"ahliwaris/internal/declaration/scenario"
	"ahliwaris/internal/declaration/scenario/scenariotest"
	"ahliwaris/internal/declaration/textfmt"
)

type AssembleSuite struct {
	suite.Suite
	opts narrative.Options
}

func TestAssembleSuite(t *testing.T) {
	suite.Run(t, new(AssembleSuite))
}

func (s *AssembleSuite) SetupTest() {
	s.opts = narrative.Options{
		Today:        time.Date(2024, time.June, 3, 0, 0, 0, 0, time.UTC),
		SignPlace:    "Sleman",
		VillageHead:  narrative.Official{Region: "Caturtunggal", Name: "Sutarno"},
		DistrictHead: narrative.Official{Region: "Depok", Name: "Wibowo"},
	}
}

func (s *AssembleSuite) validate(sc scenario.Scenario, deceased family.DeceasedPerson, heirs []family.Heir) *scenario.ValidatedCase {
	vc, err := scenario.Validate(sc, deceased, heirs)
	s.Require().NoError(err)
	return vc
}

func (s *AssembleSuite) TestSingleWifeExample() {
	deceased := family.DeceasedPerson{Name: "Budi", Gender: family.GenderMale}
	heirs := []family.Heir{
		{Name: "Sari", Relationship: family.RelationshipWife},
		{Name: "Ani", Gender: family.GenderFemale, Relationship: family.RelationshipChild},
		{Name: "Joko", Gender: family.GenderMale, Relationship: family.RelationshipChild},
	}
	doc := narrative.Assemble(s.validate(scenario.SingleWifeChildrenAlive, deceased, heirs), s.opts)

	entries := doc.Entries()
	s.Require().Len(entries, 3)
	want := []struct {
		label, name, rel string
	}{
		{"1", "Sari", "Istri"},
		{"2", "Ani", "Anak"},
		{"3", "Joko", "Anak"},
	}
	for i, w := range want {
		s.Equal(w.label, entries[i].Label())
		name, _ := entries[i].Value(narrative.FieldName)
		s.Equal(w.name, name)
		rel, _ := entries[i].Value(narrative.FieldRelationship)
		s.Equal(w.rel, rel)
	}

	sigs := doc.Signatures(document.SectionSignatures)
	s.Require().Len(sigs, 3)
	for i, w := range want {
		s.Equal(w.label, sigs[i].Label)
		s.Equal(w.name, sigs[i].Name)
	}
}

func (s *AssembleSuite) TestEntryCountMatchesHeirs() {
	for _, sc := range scenario.All {
		s.Run(sc.String(), func() {
			deceased, heirs := scenariotest.Family(sc)
			doc := narrative.Assemble(s.validate(sc, deceased, heirs), s.opts)
			s.Len(doc.Entries(), len(heirs))
			s.Equal(sc.ID(), doc.Scenario)
			s.Equal(document.Title, doc.Title)
		})
	}
}

func (s *AssembleSuite) TestSkeletonOrder() {
	order := []document.Section{
		document.SectionOpening,
		document.SectionDeath,
		document.SectionMarriage,
		document.SectionHeirs,
		document.SectionClosing,
		document.SectionSignatures,
		document.SectionWitnesses,
		document.SectionAttestation,
	}
	rank := make(map[document.Section]int, len(order))
	for i, sec := range order {
		rank[sec] = i
	}

	for _, sc := range scenario.All {
		s.Run(sc.String(), func() {
			deceased, heirs := scenariotest.Family(sc)
			doc := narrative.Assemble(s.validate(sc, deceased, heirs), s.opts)
			s.Equal(document.SectionOpening, doc.Blocks[0].Section)
			s.Equal(document.SectionDeath, doc.Blocks[1].Section)
			last := 0
			for _, b := range doc.Blocks {
				r := rank[b.Section]
				if sc == scenario.TwoMarriages && b.Section == document.SectionMarriage {
					// marriage paragraphs interleave with heir entries
					continue
				}
				s.GreaterOrEqual(r, last, "section %s out of order", b.Section)
				last = r
			}
			s.Len(doc.Section(document.SectionWitnesses), 3)
			s.Len(doc.Signatures(document.SectionAttestation), 2)
		})
	}
}

func (s *AssembleSuite) TestIdempotent() {
	for _, sc := range scenario.All {
		deceased, heirs := scenariotest.Family(sc)
		vc := s.validate(sc, deceased, heirs)
		first := narrative.Assemble(vc, s.opts)
		second := narrative.Assemble(vc, s.opts)
		s.Empty(cmp.Diff(first, second), sc.String())
	}
}

func (s *AssembleSuite) TestTodayIsInjected() {
	deceased, heirs := scenariotest.Family(scenario.SiblingsOnly)
	doc := narrative.Assemble(s.validate(scenario.SiblingsOnly, deceased, heirs), s.opts)
	s.Equal("Sleman, 3 Juni 2024", doc.Section(document.SectionSignatures)[0].Text)

	doc = narrative.Assemble(s.validate(scenario.SiblingsOnly, deceased, heirs), narrative.Options{})
	s.Equal(textfmt.Placeholder+", "+textfmt.Placeholder, doc.Section(document.SectionSignatures)[0].Text)
	sigs := doc.Signatures(document.SectionAttestation)
	s.Equal("Kepala Desa/Lurah "+textfmt.Placeholder, sigs[0].Role)
	s.Equal(textfmt.Placeholder, sigs[0].Name)
}

func (s *AssembleSuite) TestMissingOptionalFactsBecomePlaceholders() {
	deceased := family.DeceasedPerson{Name: "Budi", Patronymic: "Karto", Gender: family.GenderMale}
	heirs := []family.Heir{
		{Name: "Sari", Relationship: family.RelationshipWife},
		{Name: "Ani", Relationship: family.RelationshipChild},
	}
	doc := narrative.Assemble(s.validate(scenario.SingleWifeChildrenAlive, deceased, heirs), s.opts)

	death := doc.Section(document.SectionDeath)
	s.Require().Len(death, 1)
	s.Equal("Bahwa Almarhum Budi BIN Karto telah meninggal dunia di __________ pada tanggal __________, "+
		"sebagaimana tercantum dalam Akta Kematian Nomor __________ tanggal __________.", death[0].Text)

	birth, _ := doc.Entries()[1].Value(narrative.FieldBirth)
	s.Equal("__________, __________", birth)
}

func (s *AssembleSuite) TestDeceasedChildWithoutDescendants() {
	deceased, heirs := scenariotest.Family(scenario.SingleWifeChildDeceased)
	doc := narrative.Assemble(s.validate(scenario.SingleWifeChildDeceased, deceased, heirs), s.opts)

	joko := doc.Entries()[2]
	name, _ := joko.Value(narrative.FieldName)
	s.Equal("Almarhum Joko BIN Budi", name)
	remark, _ := joko.Value(narrative.FieldRemark)
	s.Equal("Telah meninggal dunia", remark)

	s.Contains(s.text(doc), "Almarhum Joko BIN Budi telah meninggal dunia di Sleman pada tanggal 20 November 2019")
	s.Contains(s.text(doc), "Almarhum Joko BIN Budi tidak meninggalkan keturunan.")
	s.Contains(s.text(doc), "satu (1) orang telah meninggal dunia terlebih dahulu")

	sigs := doc.Signatures(document.SectionSignatures)
	s.Require().Len(sigs, 2)
	s.Equal([]string{"1", "2"}, []string{sigs[0].Label, sigs[1].Label})
}

func (s *AssembleSuite) TestDeceasedChildWithDescendants() {
	deceased, heirs := scenariotest.Family(scenario.SingleWifeChildWithDescendants)
	doc := narrative.Assemble(s.validate(scenario.SingleWifeChildWithDescendants, deceased, heirs), s.opts)

	labels := labelsOf(doc.Entries())
	s.Equal([]string{"1", "2", "3", "3.A", "3.B"}, labels)

	text := s.text(doc)
	s.Contains(text, "Kutipan Akta Nikah Nomor 123/45/VI/2005 tanggal 10 Juni 2005 yang dikeluarkan oleh KUA Depok")
	s.Contains(text, "dikaruniai dua (2) orang anak yang menggantikan kedudukannya")
	s.Contains(text, "Akta Kematian Nomor 3404-KM-2019-0042 tanggal 25 November 2019")

	var sigLabels []string
	for _, sig := range doc.Signatures(document.SectionSignatures) {
		sigLabels = append(sigLabels, sig.Label)
	}
	s.Equal([]string{"1", "2", "3.A", "3.B"}, sigLabels)
}

func (s *AssembleSuite) TestTwoMarriagesNumbering() {
	deceased, _ := scenariotest.Family(scenario.TwoMarriages)
	heirs := []family.Heir{
		scenariotest.Wife("Sari", family.LineageFirst),
		scenariotest.Wife("Wati", family.LineageSecond),
		scenariotest.Child("Joko", family.GenderMale, family.LineageSecond),
		scenariotest.Child("Ani", family.GenderFemale, family.LineageFirst),
		scenariotest.Child("Tono", family.GenderMale, family.LineageFirst),
	}
	doc := narrative.Assemble(s.validate(scenario.TwoMarriages, deceased, heirs), s.opts)

	var names []string
	for _, e := range doc.Entries() {
		n, _ := e.Value(narrative.FieldName)
		names = append(names, strings.Fields(n)[0])
	}
	s.Equal([]string{"Sari", "Ani", "Tono", "Wati", "Joko"}, names)
	s.Equal([]string{"1", "2", "3", "4", "5"}, labelsOf(doc.Entries()))

	rel, _ := doc.Entries()[3].Value(narrative.FieldRelationship)
	s.Equal("Istri kedua", rel)

	var kinds []document.Kind
	for _, b := range doc.Blocks {
		if b.Section == document.SectionMarriage || b.Section == document.SectionHeirs {
			kinds = append(kinds, b.Kind)
		}
	}
	s.Equal([]document.Kind{
		document.KindParagraph,
		document.KindParagraph, document.KindEntry, document.KindEntry, document.KindEntry,
		document.KindParagraph, document.KindEntry, document.KindEntry,
	}, kinds)
	s.Contains(s.text(doc), "perkawinan pertama Almarhum Budi BIN Sutrisno dengan Sari BINTI Harjo dikaruniai dua (2) orang anak")
}

func (s *AssembleSuite) TestTwoMarriagesFollowLineageOrder() {
	deceased, _ := scenariotest.Family(scenario.TwoMarriages)
	heirs := []family.Heir{
		scenariotest.Wife("Wati", family.LineageSecond),
		scenariotest.Wife("Sari", family.LineageFirst),
		scenariotest.Child("Joko", family.GenderMale, family.LineageSecond),
		scenariotest.Child("Ani", family.GenderFemale, family.LineageFirst),
	}
	doc := narrative.Assemble(s.validate(scenario.TwoMarriages, deceased, heirs), s.opts)

	var names []string
	for _, e := range doc.Entries() {
		n, _ := e.Value(narrative.FieldName)
		names = append(names, strings.Fields(n)[0])
	}
	s.Equal([]string{"Sari", "Ani", "Wati", "Joko"}, names)

	text := s.text(doc)
	first := strings.Index(text, "perkawinan pertama")
	second := strings.Index(text, "perkawinan kedua")
	s.Require().NotEqual(-1, first)
	s.Require().NotEqual(-1, second)
	s.Less(first, second)
	s.Equal([]string{"1", "2", "3", "4"}, labelsOf(doc.Entries()))
}

func (s *AssembleSuite) TestParentsFollowDescendants() {
	deceased, heirs := scenariotest.Family(scenario.SingleWifeChildrenAlive)
	heirs = append([]family.Heir{
		{Name: "Tini", Gender: family.GenderFemale, Relationship: family.RelationshipParent},
	}, heirs...)
	doc := narrative.Assemble(s.validate(scenario.SingleWifeChildrenAlive, deceased, heirs), s.opts)

	var rels []string
	for _, e := range doc.Entries() {
		r, _ := e.Value(narrative.FieldRelationship)
		rels = append(rels, r)
	}
	s.Len(rels, len(heirs))
	s.Equal("Ibu Kandung", rels[len(rels)-1])
}

func (s *AssembleSuite) TestNoMarriageScenarios() {
	s.Run("parents and siblings", func() {
		deceased, heirs := scenariotest.Family(scenario.ParentsAndSiblings)
		doc := narrative.Assemble(s.validate(scenario.ParentsAndSiblings, deceased, heirs), s.opts)
		s.Empty(doc.Section(document.SectionMarriage))
		s.Contains(doc.Blocks[0].Text, "tidak pernah menikah secara sah")

		var rels []string
		for _, e := range doc.Entries() {
			r, _ := e.Value(narrative.FieldRelationship)
			rels = append(rels, r)
		}
		s.Equal([]string{"Ayah Kandung", "Ibu Kandung", "Saudara Kandung"}, rels)
	})

	s.Run("siblings only", func() {
		deceased, heirs := scenariotest.Family(scenario.SiblingsOnly)
		doc := narrative.Assemble(s.validate(scenario.SiblingsOnly, deceased, heirs), s.opts)
		s.Empty(doc.Section(document.SectionMarriage))
		s.Contains(doc.Blocks[0].Text, "tidak pernah menikah secara sah")
		s.Contains(s.text(doc), "adalah saudara kandungnya")
	})

	s.Run("married scenarios omit the clause", func() {
		deceased, heirs := scenariotest.Family(scenario.SurvivingHusband)
		doc := narrative.Assemble(s.validate(scenario.SurvivingHusband, deceased, heirs), s.opts)
		s.NotContains(doc.Blocks[0].Text, "tidak pernah menikah")
		s.Contains(doc.Blocks[0].Text, "Almarhumah Siti BINTI Sutrisno")
		s.Contains(s.text(doc), "dengan seorang suami bernama Hadi BIN Karto")
	})
}

func (s *AssembleSuite) text(doc document.Document) string {
	return document.Text(doc)
}

func labelsOf(entries []document.Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Label()
	}
	return out
}
