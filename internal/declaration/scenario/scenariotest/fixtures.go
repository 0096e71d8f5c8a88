// Package scenariotest provides minimal valid families for each scenario.
package scenariotest

import (
	"ahliwaris/internal/declaration/family"
	"ahliwaris/internal/declaration/scenario"
)

// Deceased returns a fully described deceased person of the given gender.
func Deceased(gender family.Gender) family.DeceasedPerson {
	d := family.DeceasedPerson{
		Name:                   "Budi",
		Patronymic:             "Sutrisno",
		Gender:                 gender,
		BirthPlace:             "Sleman",
		BirthDate:              "1950-03-12",
		DeathPlace:             "Yogyakarta",
		DeathDate:              "2024-05-01",
		DeathCertificateNumber: "3404-KM-01052024-0001",
		DeathCertificateDate:   "2024-05-03",
		NationalID:             "3404011203500001",
		Address:                "Jl. Kaliurang Km 7, Sleman",
	}
	if gender == family.GenderFemale {
		d.Name = "Siti"
	}
	return d
}

// Family returns a minimal family that satisfies s.
func Family(s scenario.Scenario) (family.DeceasedPerson, []family.Heir) {
	switch s {
	case scenario.SingleWifeChildrenAlive:
		return Deceased(family.GenderMale), []family.Heir{
			Wife("Sari", family.LineageNone),
			Child("Ani", family.GenderFemale, family.LineageNone),
			Child("Joko", family.GenderMale, family.LineageNone),
		}
	case scenario.SingleWifeChildDeceased:
		return Deceased(family.GenderMale), []family.Heir{
			Wife("Sari", family.LineageNone),
			Child("Ani", family.GenderFemale, family.LineageNone),
			DeceasedChild("Joko", family.GenderMale, family.LineageNone),
		}
	case scenario.SingleWifeChildWithDescendants:
		return Deceased(family.GenderMale), []family.Heir{
			Wife("Sari", family.LineageNone),
			Child("Ani", family.GenderFemale, family.LineageNone),
			ChildWithDescendants("c-joko", "Joko", family.LineageNone),
			Grandchild("Rina", family.GenderFemale, "c-joko"),
			Grandchild("Dimas", family.GenderMale, "c-joko"),
		}
	case scenario.TwoMarriages:
		return Deceased(family.GenderMale), []family.Heir{
			Wife("Sari", family.LineageFirst),
			Wife("Wati", family.LineageSecond),
			Child("Ani", family.GenderFemale, family.LineageFirst),
			Child("Joko", family.GenderMale, family.LineageSecond),
		}
	case scenario.SurvivingHusband:
		return Deceased(family.GenderFemale), []family.Heir{
			{Name: "Hadi", Patronymic: "Karto", Relationship: family.RelationshipHusband},
			Child("Ani", family.GenderFemale, family.LineageNone),
		}
	case scenario.ParentsAndSiblings:
		return Deceased(family.GenderMale), []family.Heir{
			{Name: "Karto", Gender: family.GenderMale, Relationship: family.RelationshipParent},
			{Name: "Tini", Gender: family.GenderFemale, Relationship: family.RelationshipParent},
			Sibling("Dewi", family.GenderFemale),
		}
	case scenario.SiblingsOnly:
		return Deceased(family.GenderMale), []family.Heir{
			Sibling("Dewi", family.GenderFemale),
			Sibling("Agus", family.GenderMale),
		}
	default:
		return Deceased(family.GenderMale), nil
	}
}

func Wife(name string, lineage family.Lineage) family.Heir {
	return family.Heir{
		Name:         name,
		Patronymic:   "Harjo",
		BirthPlace:   "Bantul",
		BirthDate:    "1955-08-17",
		Occupation:   "Ibu Rumah Tangga",
		Religion:     "Islam",
		Relationship: family.RelationshipWife,
		Lineage:      lineage,
	}
}

func Child(name string, gender family.Gender, lineage family.Lineage) family.Heir {
	return family.Heir{
		Name:         name,
		Patronymic:   "Budi",
		Gender:       gender,
		BirthPlace:   "Sleman",
		BirthDate:    "1980-01-02",
		Relationship: family.RelationshipChild,
		Lineage:      lineage,
	}
}

func DeceasedChild(name string, gender family.Gender, lineage family.Lineage) family.Heir {
	h := Child(name, gender, lineage)
	h.Status = family.StatusDeceased
	h.Death = family.DeathFacts{Place: "Sleman", Date: "2019-11-20"}
	return h
}

func ChildWithDescendants(id, name string, lineage family.Lineage) family.Heir {
	h := DeceasedChild(name, family.GenderMale, lineage)
	h.ID = id
	h.HasDescendants = true
	h.Descendants = &family.DescendantRecord{
		SpouseName:                "Lestari",
		MarriageCertificateNumber: "123/45/VI/2005",
		MarriageCertificateDate:   "2005-06-10",
		MarriageRegistrar:         "KUA Depok",
		DeathDate:                 "2019-11-20",
		DeathCertificateNumber:    "3404-KM-2019-0042",
		DeathCertificateDate:      "2019-11-25",
	}
	return h
}

func Grandchild(name string, gender family.Gender, parentID string) family.Heir {
	return family.Heir{
		Name:         name,
		Patronymic:   "Joko",
		Gender:       gender,
		Relationship: family.RelationshipGrandchild,
		ParentID:     parentID,
	}
}

func Sibling(name string, gender family.Gender) family.Heir {
	return family.Heir{
		Name:         name,
		Patronymic:   "Karto",
		Gender:       gender,
		Relationship: family.RelationshipSibling,
	}
}
