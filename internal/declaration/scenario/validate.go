package scenario

import (
	"errors"
	"strings"

	"ahliwaris/internal/declaration/family"
)

// Branch is a child of the deceased together with the grandchildren who
// inherit through that child.
type Branch struct {
	Child         family.Heir
	Grandchildren []family.Heir
}

// Line is one marriage: the spouse and the children born of it.
type Line struct {
	// Lineage is empty outside the two-marriage scenario.
	Lineage   family.Lineage
	Spouse    family.Heir
	HasSpouse bool
	Branches  []Branch
}

// ValidatedCase proves that a family satisfies its declared scenario. It can
// only be obtained from Validate, so a document is never assembled from an
// unchecked family. Accessors return copies.
type ValidatedCase struct {
	scenario  Scenario
	deceased  family.DeceasedPerson
	lines     []Line
	parents   []family.Heir
	siblings  []family.Heir
	heirCount int
}

func (v *ValidatedCase) Scenario() Scenario               { return v.scenario }
func (v *ValidatedCase) Deceased() family.DeceasedPerson { return v.deceased }
func (v *ValidatedCase) HeirCount() int                  { return v.heirCount }
func (v *ValidatedCase) Parents() []family.Heir          { return family.CloneHeirs(v.parents) }
func (v *ValidatedCase) Siblings() []family.Heir         { return family.CloneHeirs(v.siblings) }

// Lines returns the marriages in spouse declaration order.
func (v *ValidatedCase) Lines() []Line {
	out := make([]Line, len(v.lines))
	for i, l := range v.lines {
		out[i] = l
		out[i].Spouse = l.Spouse.Clone()
		out[i].Branches = make([]Branch, len(l.Branches))
		for j, b := range l.Branches {
			out[i].Branches[j] = Branch{
				Child:         b.Child.Clone(),
				Grandchildren: family.CloneHeirs(b.Grandchildren),
			}
		}
	}
	return out
}

// ChildCount is the number of children across all marriages.
func (v *ValidatedCase) ChildCount() int {
	n := 0
	for _, l := range v.lines {
		n += len(l.Branches)
	}
	return n
}

// Heirs returns every heir in document order: each spouse followed by that
// marriage's children, each child followed by its own children, then parents,
// then siblings.
func (v *ValidatedCase) Heirs() []family.Heir {
	out := make([]family.Heir, 0, v.heirCount)
	for _, l := range v.lines {
		if l.HasSpouse {
			out = append(out, l.Spouse.Clone())
		}
		for _, b := range l.Branches {
			out = append(out, b.Child.Clone())
			out = append(out, family.CloneHeirs(b.Grandchildren)...)
		}
	}
	out = append(out, family.CloneHeirs(v.parents)...)
	return append(out, family.CloneHeirs(v.siblings)...)
}

// Validate checks deceased and heirs against the rules of scenario s. Every
// violated rule is reported; the error, when non-nil, is ValidationErrors.
// Neither the deceased record nor the heir slice is modified.
func Validate(s Scenario, deceased family.DeceasedPerson, heirs []family.Heir) (*ValidatedCase, error) {
	var c collector
	if !s.IsValid() {
		c.add(KindUnknownScenario, "scenario", "unknown scenario %d", int(s))
		return nil, c.err()
	}
	r := s.Rules()

	d := deceased
	d.Name = strings.TrimSpace(d.Name)
	d.Gender = family.ParseGender(string(d.Gender))
	checkDeceased(&c, r, d)

	entries := normalizeHeirs(&c, heirs)
	checkSpouses(&c, s, r, entries)
	checkChildren(&c, r, entries)
	branches := linkGrandchildren(&c, r, entries)
	checkRelatives(&c, r, entries)

	g, groupErrs := group(s, entries)
	c.merge(groupErrs)

	if err := c.err(); err != nil {
		return nil, err
	}
	return build(s, d, g, branches, len(entries)), nil
}

func checkDeceased(c *collector, r Rules, d family.DeceasedPerson) {
	if strings.TrimSpace(d.Name) == "" {
		c.add(KindMissingRequiredField, "deceased.name", "the deceased's name is required")
	}
	if r.DeceasedGender == "" {
		return
	}
	switch d.Gender {
	case "":
		c.add(KindMissingRequiredField, "deceased.gender", "the deceased's gender is required for this scenario")
	case r.DeceasedGender:
	default:
		c.add(KindWrongDeceasedGender, "deceased.gender", "scenario requires a %s deceased, got %s", r.DeceasedGender, d.Gender)
	}
}

func normalizeHeirs(c *collector, heirs []family.Heir) []entry {
	entries := make([]entry, 0, len(heirs))
	seenIDs := make(map[string]int, len(heirs))
	for i, h := range heirs {
		nh, err := family.NewHeir(h)
		if err != nil {
			invalidHeir(c, i, h, err)
			continue
		}
		if nh.ID != "" {
			if first, dup := seenIDs[nh.ID]; dup {
				c.addHeir(KindInvalidHeir, i, nh, "id", "id %q is already used by heirs[%d]", nh.ID, first)
				continue
			}
			seenIDs[nh.ID] = i
		}
		entries = append(entries, entry{idx: i, key: entryKey(nh, i), heir: nh})
	}
	return entries
}

func invalidHeir(c *collector, idx int, h family.Heir, err error) {
	field := ""
	msg := err.Error()
	var invalid *family.InvalidHeirError
	if errors.As(err, &invalid) {
		field = invalid.Field
		msg = invalid.Reason
	}
	c.addHeir(KindInvalidHeir, idx, h, field, "%s", msg)
	c.errs[len(c.errs)-1].Cause = err
}

// entryKey keys an heir by its caller ID, or by position when it has none.
func entryKey(h family.Heir, idx int) heirKey {
	if h.ID != "" {
		return heirKey{id: h.ID}
	}
	return heirKey{positional: true, pos: idx}
}

func checkSpouses(c *collector, s Scenario, r Rules, entries []entry) {
	matching := 0
	for _, e := range entries {
		rel := e.heir.Relationship
		if !rel.IsSpouse() {
			continue
		}
		switch {
		case r.Spouse == "":
			c.addHeir(KindWrongSpouseCount, e.idx, e.heir, "relationship", "scenario %s admits no spouse", s)
		case rel != r.Spouse:
			c.addHeir(KindForbiddenRelationshipPresent, e.idx, e.heir, "relationship", "scenario %s admits %s, not %s", s, r.Spouse, rel)
		default:
			matching++
		}
	}
	if r.Spouse != "" && matching != r.SpouseCount {
		c.add(KindWrongSpouseCount, "heirs", "expected exactly %d %s, found %d", r.SpouseCount, r.Spouse, matching)
	}
}

func checkChildren(c *collector, r Rules, entries []entry) {
	children := filter(entries, family.RelationshipChild)
	if r.ChildrenForbidden {
		for _, ch := range children {
			c.addHeir(KindForbiddenRelationshipPresent, ch.idx, ch.heir, "relationship", "scenario admits no children")
		}
		return
	}
	if len(children) < r.MinChildren {
		c.add(KindMissingRequiredDescendant, "heirs", "at least %d child is required, found %d", r.MinChildren, len(children))
	}
	if r.AllChildrenAlive {
		for _, ch := range children {
			if ch.heir.IsDeceased() {
				c.addHeir(KindVitalStatusMismatch, ch.idx, ch.heir, "status", "every child must be alive in this scenario")
			}
		}
	}
	if r.RequireDeceasedChild {
		found := false
		for _, ch := range children {
			if ch.heir.IsDeceased() && ch.heir.HasDescendants == r.RequireDeceasedChildHasDescendants {
				found = true
				break
			}
		}
		if !found {
			if r.RequireDeceasedChildHasDescendants {
				c.add(KindMissingRequiredDescendant, "heirs", "scenario requires a deceased child who left descendants")
			} else {
				c.add(KindMissingRequiredDescendant, "heirs", "scenario requires a deceased child who left no descendants")
			}
		}
	}
}

// linkGrandchildren attaches each grandchild to the deceased child it inherits
// through. The result is keyed by the child's entry key.
func linkGrandchildren(c *collector, r Rules, entries []entry) map[heirKey][]entry {
	grandchildren := filter(entries, family.RelationshipGrandchild)
	var parents []entry
	for _, ch := range filter(entries, family.RelationshipChild) {
		if ch.heir.HasDescendants {
			parents = append(parents, ch)
		}
	}

	if r.Grandchildren == GrandchildrenForbidden {
		for _, gc := range grandchildren {
			c.addHeir(KindForbiddenRelationshipPresent, gc.idx, gc.heir, "relationship", "scenario admits no grandchildren")
		}
		for _, p := range parents {
			c.addHeir(KindForbiddenRelationshipPresent, p.idx, p.heir, "has_descendants", "scenario admits no descendants of a deceased child")
		}
		return nil
	}

	byKey := make(map[heirKey]entry, len(parents))
	for _, p := range parents {
		byKey[p.key] = p
		if p.heir.Descendants == nil {
			c.addHeir(KindMissingDescendantRecord, p.idx, p.heir, "descendants",
				"a deceased child with descendants needs the spouse, marriage and death record")
		}
	}

	branches := make(map[heirKey][]entry, len(parents))
	for _, gc := range grandchildren {
		switch {
		case gc.heir.ParentID != "":
			p, ok := byKey[heirKey{id: gc.heir.ParentID}]
			if !ok {
				c.addHeir(KindOrphanedGrandchild, gc.idx, gc.heir, "parent_id",
					"parent_id %q does not name a deceased child with descendants", gc.heir.ParentID)
				continue
			}
			branches[p.key] = append(branches[p.key], gc)
		case len(parents) == 1:
			branches[parents[0].key] = append(branches[parents[0].key], gc)
		case len(parents) == 0:
			c.addHeir(KindOrphanedGrandchild, gc.idx, gc.heir, "parent_id", "no deceased child with descendants is declared")
		default:
			c.addHeir(KindOrphanedGrandchild, gc.idx, gc.heir, "parent_id",
				"parent_id is required when more than one deceased child left descendants")
		}
	}

	for _, p := range parents {
		if len(branches[p.key]) == 0 {
			c.addHeir(KindMissingRequiredDescendant, p.idx, p.heir, "has_descendants",
				"a deceased child with descendants must list at least one grandchild")
		}
	}
	return branches
}

func checkRelatives(c *collector, r Rules, entries []entry) {
	parents := filter(entries, family.RelationshipParent)
	switch {
	case len(parents) < r.MinParents:
		c.add(KindMissingRequiredRelative, "heirs", "at least %d parent is required, found %d", r.MinParents, len(parents))
	case r.MaxParents == 0:
		for _, p := range parents {
			c.addHeir(KindForbiddenRelationshipPresent, p.idx, p.heir, "relationship", "scenario admits no parents")
		}
	case len(parents) > r.MaxParents:
		c.add(KindForbiddenRelationshipPresent, "heirs", "at most %d parents can be declared, found %d", r.MaxParents, len(parents))
	}

	siblings := filter(entries, family.RelationshipSibling)
	if r.SiblingsForbidden {
		for _, sb := range siblings {
			c.addHeir(KindForbiddenRelationshipPresent, sb.idx, sb.heir, "relationship", "siblings do not inherit alongside descendants")
		}
		return
	}
	if len(siblings) < r.MinSiblings {
		c.add(KindMissingRequiredRelative, "heirs", "at least %d sibling is required, found %d", r.MinSiblings, len(siblings))
	}
}

func filter(entries []entry, rel family.Relationship) []entry {
	var out []entry
	for _, e := range entries {
		if e.heir.Relationship == rel {
			out = append(out, e)
		}
	}
	return out
}

func build(s Scenario, d family.DeceasedPerson, g grouping, branches map[heirKey][]entry, heirCount int) *ValidatedCase {
	vc := &ValidatedCase{
		scenario:  s,
		deceased:  d,
		heirCount: heirCount,
	}
	for _, l := range g.lines {
		out := Line{Lineage: l.lineage}
		if l.spouse != nil {
			out.Spouse = l.spouse.heir
			out.HasSpouse = true
		}
		for _, ch := range l.children {
			out.Branches = append(out.Branches, Branch{
				Child:         ch.heir,
				Grandchildren: heirsOf(branches[ch.key]),
			})
		}
		vc.lines = append(vc.lines, out)
	}
	for _, e := range g.residual {
		switch e.heir.Relationship {
		case family.RelationshipParent:
			vc.parents = append(vc.parents, e.heir)
		case family.RelationshipSibling:
			vc.siblings = append(vc.siblings, e.heir)
		}
	}
	return vc
}
