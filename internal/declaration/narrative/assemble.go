// Package narrative turns a validated family into the ordered blocks of a
// declaration letter.
package narrative

import (
	"fmt"
	"slices"

	"ahliwaris/internal/declaration/document"
	"ahliwaris/internal/declaration/family"
	"ahliwaris/internal/declaration/scenario"
	"ahliwaris/internal/declaration/textfmt"
)

// Field labels of an enumerated heir entry.
const (
	FieldName         = "Nama"
	FieldBirth        = "Tempat/Tanggal Lahir"
	FieldGender       = "Jenis Kelamin"
	FieldReligion     = "Agama"
	FieldOccupation   = "Pekerjaan"
	FieldNationalID   = "NIK"
	FieldAddress      = "Alamat"
	FieldRelationship = "Hubungan"
	FieldRemark       = "Keterangan"
)

const closingText = "Demikian surat pernyataan ahli waris ini kami buat dengan sebenar-benarnya " +
	"tanpa paksaan dari pihak mana pun. Apabila di kemudian hari pernyataan ini ternyata tidak benar, " +
	"kami bersedia dituntut sesuai ketentuan hukum yang berlaku dan membebaskan pejabat yang " +
	"mengesahkan dari segala tuntutan."

// Assemble produces the letter for vc. It never fails: every required fact was
// proven by scenario.Validate, and missing optional facts become placeholders.
// The result depends only on vc and opts.
func Assemble(vc *scenario.ValidatedCase, opts Options) document.Document {
	a := &assembler{vc: vc, deceased: vc.Deceased(), opts: opts}
	a.opening()
	a.death()
	a.heirs()
	a.closing()
	a.signatures()
	a.witnesses()
	a.attestation()
	return document.Document{
		Title:    document.Title,
		Scenario: vc.Scenario().ID(),
		Blocks:   a.blocks,
	}
}

type assembler struct {
	vc       *scenario.ValidatedCase
	deceased family.DeceasedPerson
	opts     Options
	blocks   []document.Block
	// next is the running entry number; it never resets between groups.
	next int
	// signers collects living heirs in entry order.
	signers []document.Signature
}

func (a *assembler) paragraph(section document.Section, indent int, format string, args ...any) {
	a.blocks = append(a.blocks, document.Paragraph(section, fmt.Sprintf(format, args...), indent))
}

func (a *assembler) title() string {
	return a.deceased.Title()
}

func (a *assembler) opening() {
	d := a.deceased
	text := fmt.Sprintf("Kami yang bertanda tangan di bawah ini adalah para ahli waris dari %s, "+
		"lahir di %s, NIK %s, semasa hidupnya bertempat tinggal terakhir di %s, "+
		"dengan ini menyatakan dengan sebenar-benarnya bahwa:",
		a.title(),
		textfmt.FormatPlaceDate(d.BirthPlace, d.BirthDate),
		textfmt.OrPlaceholder(d.NationalID),
		textfmt.OrPlaceholder(d.Address))
	if !a.vc.Scenario().HasDescendantLine() {
		text += " " + fmt.Sprintf("%s semasa hidupnya tidak pernah menikah secara sah "+
			"dan tidak meninggalkan keturunan.", a.title())
	}
	a.blocks = append(a.blocks, document.Paragraph(document.SectionOpening, text, 0))
}

func (a *assembler) death() {
	d := a.deceased
	a.paragraph(document.SectionDeath, 0,
		"Bahwa %s telah meninggal dunia di %s pada tanggal %s, sebagaimana tercantum "+
			"dalam Akta Kematian Nomor %s tanggal %s.",
		a.title(),
		textfmt.OrPlaceholder(d.DeathPlace),
		textfmt.FormatDate(d.DeathDate),
		textfmt.OrPlaceholder(d.DeathCertificateNumber),
		textfmt.FormatDate(d.DeathCertificateDate))
}

func (a *assembler) heirs() {
	switch a.vc.Scenario() {
	case scenario.TwoMarriages:
		a.twoMarriages()
	case scenario.ParentsAndSiblings:
		a.paragraph(document.SectionHeirs, 0,
			"Bahwa ahli waris dari %s adalah orang tua dan saudara kandungnya, yaitu:", a.title())
		a.relatives()
	case scenario.SiblingsOnly:
		a.paragraph(document.SectionHeirs, 0,
			"Bahwa ahli waris dari %s adalah saudara kandungnya, yaitu:", a.title())
		a.relatives()
	default:
		a.singleMarriage()
	}
}

func (a *assembler) singleMarriage() {
	for _, l := range a.vc.Lines() {
		spouse := "seorang istri"
		if l.Spouse.Relationship == family.RelationshipHusband {
			spouse = "seorang suami"
		}
		a.paragraph(document.SectionMarriage, 0,
			"Bahwa semasa hidupnya %s menikah secara sah dengan %s bernama %s "+
				"dan dari perkawinan tersebut dikaruniai %s orang anak.",
			a.title(), spouse, l.Spouse.FullName(), textfmt.CountPhrase(len(l.Branches)))
		if deceased := deceasedChildren(l); deceased > 0 {
			a.paragraph(document.SectionMarriage, 0,
				"Bahwa dari anak-anak tersebut, %s orang telah meninggal dunia terlebih dahulu.",
				textfmt.CountPhrase(deceased))
		}
		a.paragraph(document.SectionHeirs, 0, "Bahwa ahli waris dari %s adalah sebagai berikut:", a.title())
		a.entry(l.Spouse, spouseLabel(l))
		a.branches(l.Branches)
	}
	a.relatives()
}

// twoMarriages narrates the first marriage before the second whatever order
// the wives were declared in.
func (a *assembler) twoMarriages() {
	lines := a.vc.Lines()
	slices.SortStableFunc(lines, func(x, y scenario.Line) int {
		return lineageRank(x.Lineage) - lineageRank(y.Lineage)
	})
	a.paragraph(document.SectionMarriage, 0,
		"Bahwa semasa hidupnya %s menikah secara sah sebanyak %s kali, dengan ahli waris sebagai berikut:",
		a.title(), textfmt.CountPhrase(len(lines)))
	for _, l := range lines {
		a.paragraph(document.SectionMarriage, 0,
			"Bahwa perkawinan %s %s dengan %s dikaruniai %s orang anak, yaitu:",
			l.Lineage.Ordinal(), a.title(), l.Spouse.FullName(), textfmt.CountPhrase(len(l.Branches)))
		a.entry(l.Spouse, spouseLabel(l))
		a.branches(l.Branches)
	}
	a.relatives()
}

func lineageRank(l family.Lineage) int {
	switch l {
	case family.LineageFirst:
		return 0
	case family.LineageSecond:
		return 1
	default:
		return 2
	}
}

func (a *assembler) branches(branches []scenario.Branch) {
	for _, b := range branches {
		number := a.entry(b.Child, b.Child.RelationshipLabel())
		if !b.Child.IsDeceased() {
			continue
		}
		death := b.Child.EffectiveDeath()
		a.paragraph(document.SectionHeirs, 1,
			"%s telah meninggal dunia di %s pada tanggal %s, sebagaimana tercantum dalam "+
				"Akta Kematian Nomor %s tanggal %s.",
			b.Child.DisplayName(),
			textfmt.OrPlaceholder(death.Place),
			textfmt.FormatDate(death.Date),
			textfmt.OrPlaceholder(death.CertificateNumber),
			textfmt.FormatDate(death.CertificateDate))
		if !b.Child.HasDescendants {
			a.paragraph(document.SectionHeirs, 1, "%s tidak meninggalkan keturunan.", b.Child.DisplayName())
			continue
		}
		a.descendants(number, b)
	}
}

func (a *assembler) descendants(number int, b scenario.Branch) {
	rec := family.DescendantRecord{}
	if b.Child.Descendants != nil {
		rec = *b.Child.Descendants
	}
	a.paragraph(document.SectionHeirs, 1,
		"Semasa hidupnya %s menikah secara sah dengan %s berdasarkan Kutipan Akta Nikah Nomor %s "+
			"tanggal %s yang dikeluarkan oleh %s, dan dikaruniai %s orang anak yang menggantikan "+
			"kedudukannya sebagai ahli waris, yaitu:",
		b.Child.DisplayName(),
		textfmt.OrPlaceholder(rec.SpouseName),
		textfmt.OrPlaceholder(rec.MarriageCertificateNumber),
		textfmt.FormatDate(rec.MarriageCertificateDate),
		textfmt.OrPlaceholder(rec.MarriageRegistrar),
		textfmt.CountPhrase(len(b.Grandchildren)))
	for i, gc := range b.Grandchildren {
		e := document.Entry{Number: number, Letter: textfmt.Letter(i + 1), Fields: fields(gc, gc.RelationshipLabel())}
		a.add(gc, e)
	}
}

func (a *assembler) relatives() {
	for _, p := range a.vc.Parents() {
		a.entry(p, p.RelationshipLabel())
	}
	for _, s := range a.vc.Siblings() {
		a.entry(s, s.RelationshipLabel())
	}
}

// entry appends a top-level entry for h and returns its number.
func (a *assembler) entry(h family.Heir, relationship string) int {
	a.next++
	a.add(h, document.Entry{Number: a.next, Fields: fields(h, relationship)})
	return a.next
}

func (a *assembler) add(h family.Heir, e document.Entry) {
	a.blocks = append(a.blocks, document.EnumeratedEntry(document.SectionHeirs, e))
	if !h.IsDeceased() {
		a.signers = append(a.signers, document.Signature{Label: e.Label(), Name: h.FullName()})
	}
}

func (a *assembler) closing() {
	a.blocks = append(a.blocks, document.Paragraph(document.SectionClosing, closingText, 0))
}

func (a *assembler) signatures() {
	a.paragraph(document.SectionSignatures, 0, "%s, %s",
		textfmt.OrPlaceholder(a.opts.SignPlace), textfmt.FormatTime(a.opts.Today))
	a.paragraph(document.SectionSignatures, 0, "Kami para ahli waris:")
	for _, s := range a.signers {
		a.blocks = append(a.blocks, document.SignatureLine(document.SectionSignatures, s))
	}
}

func (a *assembler) witnesses() {
	a.paragraph(document.SectionWitnesses, 0, "Saksi-saksi:")
	for i := 1; i <= 2; i++ {
		a.blocks = append(a.blocks, document.Placeholder(document.SectionWitnesses, fmt.Sprintf("Saksi %d", i)))
	}
}

func (a *assembler) attestation() {
	village, district := a.opts.VillageHead, a.opts.DistrictHead
	a.paragraph(document.SectionAttestation, 0,
		"Nomor Register Desa/Kelurahan: %s tanggal %s", textfmt.Placeholder, textfmt.Placeholder)
	a.paragraph(document.SectionAttestation, 0, "Mengetahui,")
	a.blocks = append(a.blocks, document.SignatureLine(document.SectionAttestation, document.Signature{
		Role: "Kepala Desa/Lurah " + textfmt.OrPlaceholder(village.Region),
		Name: textfmt.OrPlaceholder(village.Name),
	}))
	a.paragraph(document.SectionAttestation, 0,
		"Nomor Register Kecamatan: %s tanggal %s", textfmt.Placeholder, textfmt.Placeholder)
	a.paragraph(document.SectionAttestation, 0, "Menguatkan,")
	a.blocks = append(a.blocks, document.SignatureLine(document.SectionAttestation, document.Signature{
		Role: "Camat " + textfmt.OrPlaceholder(district.Region),
		Name: textfmt.OrPlaceholder(district.Name),
	}))
}

func fields(h family.Heir, relationship string) []document.Field {
	out := []document.Field{
		{Label: FieldName, Value: h.DisplayName()},
		{Label: FieldBirth, Value: textfmt.FormatPlaceDate(h.BirthPlace, h.BirthDate)},
		{Label: FieldGender, Value: textfmt.OrPlaceholder(string(h.Gender))},
		{Label: FieldReligion, Value: textfmt.OrPlaceholder(h.Religion)},
		{Label: FieldOccupation, Value: textfmt.OrPlaceholder(h.Occupation)},
		{Label: FieldNationalID, Value: textfmt.OrPlaceholder(h.NationalID)},
		{Label: FieldAddress, Value: textfmt.OrPlaceholder(h.Address)},
		{Label: FieldRelationship, Value: relationship},
	}
	if remark := remark(h); remark != "" {
		out = append(out, document.Field{Label: FieldRemark, Value: remark})
	}
	return out
}

func remark(h family.Heir) string {
	switch {
	case h.IsDeceased() && h.Note != "":
		return "Telah meninggal dunia; " + h.Note
	case h.IsDeceased():
		return "Telah meninggal dunia"
	default:
		return h.Note
	}
}

func spouseLabel(l scenario.Line) string {
	label := l.Spouse.RelationshipLabel()
	if ord := l.Lineage.Ordinal(); ord != "" {
		label += " " + ord
	}
	return label
}

func deceasedChildren(l scenario.Line) int {
	n := 0
	for _, b := range l.Branches {
		if b.Child.IsDeceased() {
			n++
		}
	}
	return n
}
