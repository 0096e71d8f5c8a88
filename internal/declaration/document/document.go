// Package document is the renderer-neutral output of narrative assembly: an
// ordered list of typed blocks that an external renderer lays out on pages.
package document

import (
	"strconv"

	"ahliwaris/internal/declaration/textfmt"
)

// Title heads every declaration letter.
const Title = "SURAT PERNYATAAN AHLI WARIS"

// Kind is the type of a block.
type Kind string

const (
	KindParagraph   Kind = "paragraph"
	KindEntry       Kind = "enumerated_entry"
	KindSignature   Kind = "signature_line"
	KindPlaceholder Kind = "placeholder"
)

// Section groups blocks by their place in the letter skeleton.
type Section string

const (
	SectionOpening     Section = "opening"
	SectionDeath       Section = "death"
	SectionMarriage    Section = "marriage"
	SectionHeirs       Section = "heirs"
	SectionClosing     Section = "closing"
	SectionSignatures  Section = "signatures"
	SectionWitnesses   Section = "witnesses"
	SectionAttestation Section = "attestation"
)

// Field is one labelled value of an enumerated entry.
type Field struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Entry is one enumerated heir. Nested entries (grandchildren) carry the
// number of the entry they sit under and a letter.
type Entry struct {
	Number int     `json:"number"`
	Letter string  `json:"letter,omitempty"`
	Fields []Field `json:"fields"`
}

// Label renders the entry's position, e.g. "3" or "3.A".
func (e Entry) Label() string {
	if e.Letter == "" {
		return strconv.Itoa(e.Number)
	}
	return strconv.Itoa(e.Number) + "." + e.Letter
}

// Nested reports whether the entry sits under another entry.
func (e Entry) Nested() bool {
	return e.Letter != ""
}

// Value returns the value of the field with the given label.
func (e Entry) Value(label string) (string, bool) {
	for _, f := range e.Fields {
		if f.Label == label {
			return f.Value, true
		}
	}
	return "", false
}

// Signature is a line to be signed. Heirs carry their entry label; officials
// carry a role instead.
type Signature struct {
	Label string `json:"label,omitempty"`
	Name  string `json:"name"`
	Role  string `json:"role,omitempty"`
}

// Block is one unit of the document. Exactly one of Text, Entry or Signature
// is meaningful, according to Kind.
type Block struct {
	Kind    Kind    `json:"kind"`
	Section Section `json:"section"`
	// Text is the paragraph body, or the placeholder token.
	Text string `json:"text,omitempty"`
	// Caption labels a placeholder slot, e.g. "Saksi 1".
	Caption   string     `json:"caption,omitempty"`
	Indent    int        `json:"indent,omitempty"`
	Entry     *Entry     `json:"entry,omitempty"`
	Signature *Signature `json:"signature,omitempty"`
}

func Paragraph(section Section, text string, indent int) Block {
	return Block{Kind: KindParagraph, Section: section, Text: text, Indent: indent}
}

func EnumeratedEntry(section Section, e Entry) Block {
	indent := 0
	if e.Nested() {
		indent = 1
	}
	return Block{Kind: KindEntry, Section: section, Indent: indent, Entry: &e}
}

func SignatureLine(section Section, s Signature) Block {
	return Block{Kind: KindSignature, Section: section, Signature: &s}
}

func Placeholder(section Section, caption string) Block {
	return Block{Kind: KindPlaceholder, Section: section, Text: textfmt.Placeholder, Caption: caption}
}

// Document is an assembled declaration letter.
type Document struct {
	Title    string  `json:"title"`
	Scenario int     `json:"scenario"`
	Blocks   []Block `json:"blocks"`
}

// Entries returns the enumerated entries in order, nested ones included.
func (d Document) Entries() []Entry {
	var out []Entry
	for _, b := range d.Blocks {
		if b.Kind == KindEntry && b.Entry != nil {
			out = append(out, *b.Entry)
		}
	}
	return out
}

// Signatures returns the signature lines of a section in order.
func (d Document) Signatures(section Section) []Signature {
	var out []Signature
	for _, b := range d.Blocks {
		if b.Kind == KindSignature && b.Section == section && b.Signature != nil {
			out = append(out, *b.Signature)
		}
	}
	return out
}

// Section returns the blocks tagged with s in order.
func (d Document) Section(s Section) []Block {
	var out []Block
	for _, b := range d.Blocks {
		if b.Section == s {
			out = append(out, b)
		}
	}
	return out
}
