// Package models holds the intake and persistence shapes of a declaration.
//
// Intake types carry json and yaml tags so the HTTP API and the CLI decode the
// same case file. Conversion to domain values never fails: malformed values are
// passed through so scenario validation reports every defect at once.
package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"ahliwaris/internal/declaration/document"
	"ahliwaris/internal/declaration/family"
	"ahliwaris/internal/declaration/scenario"
	id "ahliwaris/pkg/domain"
)

// ScenarioRef accepts a scenario as a JSON number, a numeric string, or a name.
type ScenarioRef string

func (r *ScenarioRef) UnmarshalJSON(b []byte) error {
	var n json.Number
	if err := json.Unmarshal(b, &n); err == nil {
		*r = ScenarioRef(n.String())
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("scenario must be a number or string: %w", err)
	}
	*r = ScenarioRef(s)
	return nil
}

func (r ScenarioRef) MarshalJSON() ([]byte, error) {
	if n, err := strconv.Atoi(string(r)); err == nil {
		return json.Marshal(n)
	}
	return json.Marshal(string(r))
}

// Parse resolves the reference. Unknown references yield 0, which validation
// rejects as an unknown scenario.
func (r ScenarioRef) Parse() scenario.Scenario {
	s, err := scenario.Parse(string(r))
	if err != nil {
		return 0
	}
	return s
}

// Case is one declaration request.
type Case struct {
	Scenario ScenarioRef   `json:"scenario" yaml:"scenario"`
	Deceased DeceasedInput `json:"deceased" yaml:"deceased"`
	Heirs    []HeirInput   `json:"heirs" yaml:"heirs"`
}

type DeceasedInput struct {
	Name                   string `json:"name" yaml:"name"`
	Patronymic             string `json:"patronymic,omitempty" yaml:"patronymic,omitempty"`
	Gender                 string `json:"gender" yaml:"gender"`
	BirthPlace             string `json:"birth_place,omitempty" yaml:"birth_place,omitempty"`
	BirthDate              string `json:"birth_date,omitempty" yaml:"birth_date,omitempty"`
	DeathPlace             string `json:"death_place,omitempty" yaml:"death_place,omitempty"`
	DeathDate              string `json:"death_date,omitempty" yaml:"death_date,omitempty"`
	DeathCertificateNumber string `json:"death_certificate_number,omitempty" yaml:"death_certificate_number,omitempty"`
	DeathCertificateDate   string `json:"death_certificate_date,omitempty" yaml:"death_certificate_date,omitempty"`
	MaritalStatus          string `json:"marital_status,omitempty" yaml:"marital_status,omitempty"`
	NationalID             string `json:"national_id,omitempty" yaml:"national_id,omitempty"`
	Address                string `json:"address,omitempty" yaml:"address,omitempty"`
}

type DeathInput struct {
	Place             string `json:"place,omitempty" yaml:"place,omitempty"`
	Date              string `json:"date,omitempty" yaml:"date,omitempty"`
	CertificateNumber string `json:"certificate_number,omitempty" yaml:"certificate_number,omitempty"`
	CertificateDate   string `json:"certificate_date,omitempty" yaml:"certificate_date,omitempty"`
}

type DescendantRecordInput struct {
	SpouseName                string `json:"spouse_name,omitempty" yaml:"spouse_name,omitempty"`
	MarriageCertificateNumber string `json:"marriage_certificate_number,omitempty" yaml:"marriage_certificate_number,omitempty"`
	MarriageCertificateDate   string `json:"marriage_certificate_date,omitempty" yaml:"marriage_certificate_date,omitempty"`
	MarriageRegistrar         string `json:"marriage_registrar,omitempty" yaml:"marriage_registrar,omitempty"`
	DeathDate                 string `json:"death_date,omitempty" yaml:"death_date,omitempty"`
	DeathCertificateNumber    string `json:"death_certificate_number,omitempty" yaml:"death_certificate_number,omitempty"`
	DeathCertificateDate      string `json:"death_certificate_date,omitempty" yaml:"death_certificate_date,omitempty"`
}

type HeirInput struct {
	ID             string                 `json:"id,omitempty" yaml:"id,omitempty"`
	Name           string                 `json:"name" yaml:"name"`
	Patronymic     string                 `json:"patronymic,omitempty" yaml:"patronymic,omitempty"`
	Gender         string                 `json:"gender,omitempty" yaml:"gender,omitempty"`
	BirthPlace     string                 `json:"birth_place,omitempty" yaml:"birth_place,omitempty"`
	BirthDate      string                 `json:"birth_date,omitempty" yaml:"birth_date,omitempty"`
	Occupation     string                 `json:"occupation,omitempty" yaml:"occupation,omitempty"`
	Religion       string                 `json:"religion,omitempty" yaml:"religion,omitempty"`
	NationalID     string                 `json:"national_id,omitempty" yaml:"national_id,omitempty"`
	Address        string                 `json:"address,omitempty" yaml:"address,omitempty"`
	Relationship   string                 `json:"relationship" yaml:"relationship"`
	Status         string                 `json:"status,omitempty" yaml:"status,omitempty"`
	HasDescendants bool                   `json:"has_descendants,omitempty" yaml:"has_descendants,omitempty"`
	Lineage        string                 `json:"lineage,omitempty" yaml:"lineage,omitempty"`
	ParentID       string                 `json:"parent_id,omitempty" yaml:"parent_id,omitempty"`
	Note           string                 `json:"note,omitempty" yaml:"note,omitempty"`
	Death          *DeathInput            `json:"death,omitempty" yaml:"death,omitempty"`
	Descendants    *DescendantRecordInput `json:"descendants,omitempty" yaml:"descendants,omitempty"`
}

// ToDomain maps the deceased without judging it; the gender is canonicalized
// and blank when unrecognized.
func (d DeceasedInput) ToDomain() family.DeceasedPerson {
	return family.DeceasedPerson{
		Name:                   strings.TrimSpace(d.Name),
		Patronymic:             strings.TrimSpace(d.Patronymic),
		Gender:                 family.ParseGender(d.Gender),
		BirthPlace:             d.BirthPlace,
		BirthDate:              d.BirthDate,
		DeathPlace:             d.DeathPlace,
		DeathDate:              d.DeathDate,
		DeathCertificateNumber: d.DeathCertificateNumber,
		DeathCertificateDate:   d.DeathCertificateDate,
		MaritalStatus:          d.MaritalStatus,
		NationalID:             strings.TrimSpace(d.NationalID),
		Address:                d.Address,
	}
}

// ToDomain maps an heir. Labels are passed through unchecked; family.NewHeir
// canonicalizes them and reports an unknown one as an invalid heir.
func (h HeirInput) ToDomain() family.Heir {
	heir := family.Heir{
		ID:             h.ID,
		Name:           h.Name,
		Patronymic:     h.Patronymic,
		Gender:         family.ParseGender(h.Gender),
		BirthPlace:     h.BirthPlace,
		BirthDate:      h.BirthDate,
		Occupation:     h.Occupation,
		Religion:       h.Religion,
		NationalID:     strings.TrimSpace(h.NationalID),
		Address:        h.Address,
		Relationship:   family.Relationship(h.Relationship),
		Status:         family.VitalStatus(h.Status),
		HasDescendants: h.HasDescendants,
		Lineage:        family.Lineage(h.Lineage),
		ParentID:       h.ParentID,
		Note:           h.Note,
	}
	if h.Death != nil {
		heir.Death = family.DeathFacts{
			Place:             h.Death.Place,
			Date:              h.Death.Date,
			CertificateNumber: h.Death.CertificateNumber,
			CertificateDate:   h.Death.CertificateDate,
		}
	}
	if h.Descendants != nil {
		heir.Descendants = &family.DescendantRecord{
			SpouseName:                h.Descendants.SpouseName,
			MarriageCertificateNumber: h.Descendants.MarriageCertificateNumber,
			MarriageCertificateDate:   h.Descendants.MarriageCertificateDate,
			MarriageRegistrar:         h.Descendants.MarriageRegistrar,
			DeathDate:                 h.Descendants.DeathDate,
			DeathCertificateNumber:    h.Descendants.DeathCertificateNumber,
			DeathCertificateDate:      h.Descendants.DeathCertificateDate,
		}
	}
	return heir
}

// ToDomain maps the whole case.
func (c Case) ToDomain() (scenario.Scenario, family.DeceasedPerson, []family.Heir) {
	heirs := make([]family.Heir, len(c.Heirs))
	for i, h := range c.Heirs {
		heirs[i] = h.ToDomain()
	}
	return c.Scenario.Parse(), c.Deceased.ToDomain(), heirs
}

// HeirFromDomain is the inverse of HeirInput.ToDomain for a validated heir.
func HeirFromDomain(h family.Heir) HeirInput {
	in := HeirInput{
		ID:             h.ID,
		Name:           h.Name,
		Patronymic:     h.Patronymic,
		Gender:         string(h.Gender),
		BirthPlace:     h.BirthPlace,
		BirthDate:      h.BirthDate,
		Occupation:     h.Occupation,
		Religion:       h.Religion,
		NationalID:     h.NationalID,
		Address:        h.Address,
		Relationship:   string(h.Relationship),
		Status:         string(h.Status),
		HasDescendants: h.HasDescendants,
		Lineage:        string(h.Lineage),
		ParentID:       h.ParentID,
		Note:           h.Note,
	}
	if !h.Death.IsZero() {
		in.Death = &DeathInput{
			Place:             h.Death.Place,
			Date:              h.Death.Date,
			CertificateNumber: h.Death.CertificateNumber,
			CertificateDate:   h.Death.CertificateDate,
		}
	}
	if d := h.Descendants; d != nil {
		in.Descendants = &DescendantRecordInput{
			SpouseName:                d.SpouseName,
			MarriageCertificateNumber: d.MarriageCertificateNumber,
			MarriageCertificateDate:   d.MarriageCertificateDate,
			MarriageRegistrar:         d.MarriageRegistrar,
			DeathDate:                 d.DeathDate,
			DeathCertificateNumber:    d.DeathCertificateNumber,
			DeathCertificateDate:      d.DeathCertificateDate,
		}
	}
	return in
}

// DeceasedFromDomain is the inverse of DeceasedInput.ToDomain.
func DeceasedFromDomain(d family.DeceasedPerson) DeceasedInput {
	return DeceasedInput{
		Name:                   d.Name,
		Patronymic:             d.Patronymic,
		Gender:                 string(d.Gender),
		BirthPlace:             d.BirthPlace,
		BirthDate:              d.BirthDate,
		DeathPlace:             d.DeathPlace,
		DeathDate:              d.DeathDate,
		DeathCertificateNumber: d.DeathCertificateNumber,
		DeathCertificateDate:   d.DeathCertificateDate,
		MaritalStatus:          d.MaritalStatus,
		NationalID:             d.NationalID,
		Address:                d.Address,
	}
}

// Declaration is an issued letter: the validated case and its assembled document.
type Declaration struct {
	ID        id.DeclarationID  `json:"id"`
	Scenario  int               `json:"scenario"`
	Deceased  DeceasedInput     `json:"deceased"`
	Heirs     []HeirInput       `json:"heirs"`
	Document  document.Document `json:"document"`
	IssuedAt  time.Time         `json:"issued_at"`
	RequestID string            `json:"request_id,omitempty"`
}

// NewDeclaration records a validated case with its document. Heirs are stored
// in document order.
func NewDeclaration(declID id.DeclarationID, vc *scenario.ValidatedCase, doc document.Document, issuedAt time.Time, requestID string) *Declaration {
	heirs := vc.Heirs()
	inputs := make([]HeirInput, len(heirs))
	for i, h := range heirs {
		inputs[i] = HeirFromDomain(h)
	}
	return &Declaration{
		ID:        declID,
		Scenario:  vc.Scenario().ID(),
		Deceased:  DeceasedFromDomain(vc.Deceased()),
		Heirs:     inputs,
		Document:  doc,
		IssuedAt:  issuedAt,
		RequestID: requestID,
	}
}
