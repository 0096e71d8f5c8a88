package scenario

import "ahliwaris/internal/declaration/family"

// LineageGroup is one spouse together with the children attributed to her or him.
type LineageGroup struct {
	// Lineage is empty outside the two-marriage scenario.
	Lineage   family.Lineage
	Spouse    family.Heir
	HasSpouse bool
	Children  []family.Heir
}

// Grouping partitions a heir list by lineage.
type Grouping struct {
	// Groups follow spouse declaration order.
	Groups        []LineageGroup
	Grandchildren []family.Heir
	// Residual holds heirs outside any lineage: parents, siblings, and spouses
	// beyond the one a single-marriage scenario admits.
	Residual []family.Heir
}

// Group partitions heirs by lineage for scenario s.
//
// In the two-marriage scenario every child must carry an explicit lineage tag;
// an untagged child is reported as KindUngroupedChild and left out of every
// group rather than assigned a default. A spouse's lineage is her explicit tag,
// else her declaration position. Elsewhere lineage tags are ignored and all
// children belong to the single spouse.
//
// The input slice is not modified. The returned error, if any, is ValidationErrors.
func Group(s Scenario, heirs []family.Heir) (Grouping, error) {
	entries := make([]entry, len(heirs))
	for i, h := range heirs {
		entries[i] = entry{idx: i, key: entryKey(h, i), heir: h}
	}
	g, errs := group(s, entries)
	var c collector
	c.merge(errs)
	return g.public(), c.err()
}

// entry keeps an heir's position in the caller's list next to a key that is
// unique within the list, for error reporting and grandchild linking.
type entry struct {
	idx  int
	key  heirKey
	heir family.Heir
}

// heirKey identifies an heir within one list. Positional keys are only
// produced for heirs without an ID, so no caller ID can equal one.
type heirKey struct {
	id         string
	positional bool
	pos        int
}

type line struct {
	lineage  family.Lineage
	spouse   *entry
	children []entry
}

type grouping struct {
	lines         []line
	grandchildren []entry
	residual      []entry
}

func group(s Scenario, entries []entry) (grouping, ValidationErrors) {
	var c collector
	var g grouping
	var spouses, children []entry
	for _, e := range entries {
		switch {
		case e.heir.Relationship.IsSpouse():
			spouses = append(spouses, e)
		case e.heir.Relationship == family.RelationshipChild:
			children = append(children, e)
		case e.heir.Relationship == family.RelationshipGrandchild:
			g.grandchildren = append(g.grandchildren, e)
		default:
			g.residual = append(g.residual, e)
		}
	}

	if !s.Rules().RequiresLineage {
		if len(spouses) == 0 {
			if len(children) > 0 {
				g.lines = append(g.lines, line{children: children})
			}
			return g, nil
		}
		first := spouses[0]
		g.lines = append(g.lines, line{spouse: &first, children: children})
		g.residual = append(g.residual, spouses[1:]...)
		return g, nil
	}

	byLineage := make(map[family.Lineage]int, 2)
	for pos, sp := range spouses {
		lin := sp.heir.Lineage
		if lin == family.LineageNone {
			lin = positionalLineage(pos)
		}
		if lin == family.LineageNone {
			c.addHeir(KindLineageConflict, sp.idx, sp.heir, "lineage", "only two marriages can be declared")
			g.residual = append(g.residual, sp)
			continue
		}
		if _, dup := byLineage[lin]; dup {
			c.addHeir(KindLineageConflict, sp.idx, sp.heir, "lineage", "lineage %s is already assigned to another spouse", lin)
			g.residual = append(g.residual, sp)
			continue
		}
		spouse := sp
		byLineage[lin] = len(g.lines)
		g.lines = append(g.lines, line{lineage: lin, spouse: &spouse})
	}

	for _, ch := range children {
		lin := ch.heir.Lineage
		if lin == family.LineageNone {
			c.addHeir(KindUngroupedChild, ch.idx, ch.heir, "lineage",
				"child has no lineage tag; state which marriage the child descends from")
			continue
		}
		gi, ok := byLineage[lin]
		if !ok {
			c.addHeir(KindLineageConflict, ch.idx, ch.heir, "lineage", "no spouse is declared for lineage %s", lin)
			continue
		}
		g.lines[gi].children = append(g.lines[gi].children, ch)
	}
	return g, c.errs
}

func positionalLineage(pos int) family.Lineage {
	switch pos {
	case 0:
		return family.LineageFirst
	case 1:
		return family.LineageSecond
	default:
		return family.LineageNone
	}
}

func (g grouping) public() Grouping {
	out := Grouping{
		Groups:        make([]LineageGroup, 0, len(g.lines)),
		Grandchildren: heirsOf(g.grandchildren),
		Residual:      heirsOf(g.residual),
	}
	for _, l := range g.lines {
		lg := LineageGroup{Lineage: l.lineage, Children: heirsOf(l.children)}
		if l.spouse != nil {
			lg.Spouse = l.spouse.heir
			lg.HasSpouse = true
		}
		out.Groups = append(out.Groups, lg)
	}
	return out
}

func heirsOf(entries []entry) []family.Heir {
	out := make([]family.Heir, len(entries))
	for i, e := range entries {
		out[i] = e.heir
	}
	return out
}
