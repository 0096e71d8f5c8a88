package family

import (
	"fmt"
	"strings"

	"ahliwaris/internal/declaration/textfmt"
)

// Gender uses the labels printed on identity cards.
type Gender string

const (
	GenderMale   Gender = textfmt.GenderMale
	GenderFemale Gender = textfmt.GenderFemale
)

// ParseGender canonicalizes free-form gender input; unknown values become "".
func ParseGender(s string) Gender {
	return Gender(textfmt.NormalizeGender(s))
}

// Relationship is an heir's relation to the deceased.
type Relationship string

const (
	RelationshipWife       Relationship = "SPOUSE_WIFE"
	RelationshipHusband    Relationship = "SPOUSE_HUSBAND"
	RelationshipChild      Relationship = "CHILD"
	RelationshipGrandchild Relationship = "GRANDCHILD"
	RelationshipSibling    Relationship = "SIBLING"
	RelationshipParent     Relationship = "PARENT"
)

var relationships = map[Relationship]struct{}{
	RelationshipWife:       {},
	RelationshipHusband:    {},
	RelationshipChild:      {},
	RelationshipGrandchild: {},
	RelationshipSibling:    {},
	RelationshipParent:     {},
}

// ParseRelationship validates a relationship label.
func ParseRelationship(s string) (Relationship, error) {
	r := Relationship(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := relationships[r]; !ok {
		return "", fmt.Errorf("unknown relationship %q", s)
	}
	return r, nil
}

// IsSpouse reports whether r is either spouse kind.
func (r Relationship) IsSpouse() bool {
	return r == RelationshipWife || r == RelationshipHusband
}

// ImpliedGender returns the gender a relationship fixes, or "" if it fixes none.
func (r Relationship) ImpliedGender() Gender {
	switch r {
	case RelationshipWife:
		return GenderFemale
	case RelationshipHusband:
		return GenderMale
	default:
		return ""
	}
}

// VitalStatus records whether a person is alive.
type VitalStatus string

const (
	StatusAlive    VitalStatus = "ALIVE"
	StatusDeceased VitalStatus = "DECEASED"
)

// ParseVitalStatus validates a status label; blank input means ALIVE.
func ParseVitalStatus(s string) (VitalStatus, error) {
	switch VitalStatus(strings.ToUpper(strings.TrimSpace(s))) {
	case "", StatusAlive:
		return StatusAlive, nil
	case StatusDeceased:
		return StatusDeceased, nil
	default:
		return "", fmt.Errorf("unknown vital status %q", s)
	}
}

// Lineage tags which marriage a child descends from.
type Lineage string

const (
	LineageNone   Lineage = ""
	LineageFirst  Lineage = "FIRST"
	LineageSecond Lineage = "SECOND"
)

// ParseLineage validates a lineage tag; blank input means untagged.
func ParseLineage(s string) (Lineage, error) {
	switch Lineage(strings.ToUpper(strings.TrimSpace(s))) {
	case LineageNone:
		return LineageNone, nil
	case LineageFirst:
		return LineageFirst, nil
	case LineageSecond:
		return LineageSecond, nil
	default:
		return "", fmt.Errorf("unknown lineage %q", s)
	}
}

// Ordinal returns the Indonesian ordinal used in marriage paragraphs.
func (l Lineage) Ordinal() string {
	switch l {
	case LineageFirst:
		return "pertama"
	case LineageSecond:
		return "kedua"
	default:
		return ""
	}
}

// DeceasedPerson is the pewaris whose estate the letter declares.
type DeceasedPerson struct {
	Name                   string
	Patronymic             string
	Gender                 Gender
	BirthPlace             string
	BirthDate              string
	DeathPlace             string
	DeathDate              string
	DeathCertificateNumber string
	DeathCertificateDate   string
	MaritalStatus          string
	NationalID             string
	Address                string
}

// FullName renders the name with its BIN/BINTI suffix.
func (d DeceasedPerson) FullName() string {
	return textfmt.FormatFullName(d.Name, d.Patronymic, string(d.Gender))
}

// Title renders "Almarhum/Almarhumah {full name}".
func (d DeceasedPerson) Title() string {
	return textfmt.DeceasedTitle(string(d.Gender)) + " " + d.FullName()
}

// DeathFacts describes how and when a deceased heir died. All fields are optional.
type DeathFacts struct {
	Place             string
	Date              string
	CertificateNumber string
	CertificateDate   string
}

// IsZero reports whether no death fact was supplied.
func (f DeathFacts) IsZero() bool {
	return f == DeathFacts{}
}

// DescendantRecord is the sidecar a deceased child with descendants needs:
// through whom the child's share passes, and the child's own death record.
type DescendantRecord struct {
	SpouseName                string
	MarriageCertificateNumber string
	MarriageCertificateDate   string
	MarriageRegistrar         string
	DeathDate                 string
	DeathCertificateNumber    string
	DeathCertificateDate      string
}

// Heir is one surviving (or predeceased) relative named in the declaration.
type Heir struct {
	// ID is an optional caller key; grandchildren refer to their parent by it.
	ID             string
	Name           string
	Patronymic     string
	Gender         Gender
	BirthPlace     string
	BirthDate      string
	Occupation     string
	Religion       string
	NationalID     string
	Address        string
	Relationship   Relationship
	Status         VitalStatus
	HasDescendants bool
	Lineage        Lineage
	// ParentID links a grandchild to the deceased child it descends through.
	ParentID    string
	Note        string
	Death       DeathFacts
	Descendants *DescendantRecord
}

// NewHeir validates h and fills the implied spouse gender. The returned value
// is a copy; the argument is left untouched.
func NewHeir(h Heir) (Heir, error) {
	h = h.normalized()
	if err := h.Validate(); err != nil {
		return Heir{}, err
	}
	return h, nil
}

func (h Heir) normalized() Heir {
	h.Name = strings.TrimSpace(h.Name)
	h.Patronymic = strings.TrimSpace(h.Patronymic)
	h.ID = strings.TrimSpace(h.ID)
	h.ParentID = strings.TrimSpace(h.ParentID)
	// Unknown labels are kept as given so Validate can name them.
	if r, err := ParseRelationship(string(h.Relationship)); err == nil {
		h.Relationship = r
	}
	if st, err := ParseVitalStatus(string(h.Status)); err == nil {
		h.Status = st
	}
	if l, err := ParseLineage(string(h.Lineage)); err == nil {
		h.Lineage = l
	}
	if h.Gender == "" {
		h.Gender = h.Relationship.ImpliedGender()
	}
	return h.Clone()
}

// Clone returns a copy that shares no memory with h.
func (h Heir) Clone() Heir {
	if h.Descendants != nil {
		rec := *h.Descendants
		h.Descendants = &rec
	}
	return h
}

// CloneHeirs deep-copies a list of heirs. A nil list stays nil.
func CloneHeirs(heirs []Heir) []Heir {
	if heirs == nil {
		return nil
	}
	out := make([]Heir, len(heirs))
	for i, h := range heirs {
		out[i] = h.Clone()
	}
	return out
}

// Validate checks the record-level invariants. It does not check anything that
// depends on the rest of the family; that belongs to scenario validation.
func (h Heir) Validate() error {
	if strings.TrimSpace(h.Name) == "" {
		return &InvalidHeirError{Field: "name", Reason: "name is required"}
	}
	if _, err := ParseRelationship(string(h.Relationship)); err != nil {
		return &InvalidHeirError{Name: h.Name, Field: "relationship", Reason: err.Error()}
	}
	if _, err := ParseVitalStatus(string(h.Status)); err != nil {
		return &InvalidHeirError{Name: h.Name, Field: "status", Reason: err.Error()}
	}
	if implied := h.Relationship.ImpliedGender(); implied != "" && h.Gender != "" && h.Gender != implied {
		return &InvalidHeirError{
			Name:   h.Name,
			Field:  "gender",
			Reason: fmt.Sprintf("%s must be %s, got %s", h.Relationship, implied, h.Gender),
		}
	}
	if _, err := ParseLineage(string(h.Lineage)); err != nil {
		return &InvalidHeirError{Name: h.Name, Field: "lineage", Reason: err.Error()}
	}
	if h.HasDescendants && h.Status == StatusAlive {
		return &InvalidHeirError{Name: h.Name, Field: "has_descendants", Reason: "only a deceased heir can pass a share to descendants"}
	}
	if h.Descendants != nil && !h.HasDescendants {
		return &InvalidHeirError{Name: h.Name, Field: "descendants", Reason: "descendant record supplied for an heir without descendants"}
	}
	return nil
}

// IsDeceased reports whether the heir has died.
func (h Heir) IsDeceased() bool {
	return h.Status == StatusDeceased
}

// FullName renders the heir's name with its BIN/BINTI suffix.
func (h Heir) FullName() string {
	return textfmt.FormatFullName(h.Name, h.Patronymic, string(h.Gender))
}

// DisplayName prefixes Almarhum/Almarhumah for deceased heirs.
func (h Heir) DisplayName() string {
	if h.IsDeceased() {
		return textfmt.DeceasedTitle(string(h.Gender)) + " " + h.FullName()
	}
	return h.FullName()
}

// RelationshipLabel is the wording printed in the heir list.
func (h Heir) RelationshipLabel() string {
	switch h.Relationship {
	case RelationshipWife:
		return "Istri"
	case RelationshipHusband:
		return "Suami"
	case RelationshipChild:
		return "Anak"
	case RelationshipGrandchild:
		return "Cucu"
	case RelationshipSibling:
		return "Saudara Kandung"
	case RelationshipParent:
		switch h.Gender {
		case GenderMale:
			return "Ayah Kandung"
		case GenderFemale:
			return "Ibu Kandung"
		default:
			return "Orang Tua"
		}
	default:
		return string(h.Relationship)
	}
}

// EffectiveDeath merges the heir's death facts with the descendant record,
// preferring the sidecar where both carry a value.
func (h Heir) EffectiveDeath() DeathFacts {
	facts := h.Death
	if h.Descendants == nil {
		return facts
	}
	if h.Descendants.DeathDate != "" {
		facts.Date = h.Descendants.DeathDate
	}
	if h.Descendants.DeathCertificateNumber != "" {
		facts.CertificateNumber = h.Descendants.DeathCertificateNumber
	}
	if h.Descendants.DeathCertificateDate != "" {
		facts.CertificateDate = h.Descendants.DeathCertificateDate
	}
	return facts
}
