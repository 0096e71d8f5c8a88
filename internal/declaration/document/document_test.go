package document_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ahliwaris/internal/declaration/document"
)

func sample() document.Document {
	return document.Document{
		Title:    document.Title,
		Scenario: 3,
		Blocks: []document.Block{
			document.Paragraph(document.SectionOpening, "Kami yang bertanda tangan di bawah ini:", 0),
			document.EnumeratedEntry(document.SectionHeirs, document.Entry{
				Number: 3,
				Fields: []document.Field{{Label: "Nama", Value: "Almarhum Joko BIN Budi"}, {Label: "Hubungan", Value: "Anak"}},
			}),
			document.EnumeratedEntry(document.SectionHeirs, document.Entry{
				Number: 3,
				Letter: "A",
				Fields: []document.Field{{Label: "Nama", Value: "Rina BINTI Joko"}},
			}),
			document.SignatureLine(document.SectionSignatures, document.Signature{Label: "3.A", Name: "Rina BINTI Joko"}),
			document.Placeholder(document.SectionWitnesses, "Saksi 1"),
			document.SignatureLine(document.SectionAttestation, document.Signature{Role: "Camat Depok", Name: "__________"}),
		},
	}
}

func TestEntryLabel(t *testing.T) {
	assert.Equal(t, "2", document.Entry{Number: 2}.Label())
	assert.Equal(t, "3.B", document.Entry{Number: 3, Letter: "B"}.Label())
	assert.True(t, document.Entry{Number: 3, Letter: "B"}.Nested())
}

func TestAccessors(t *testing.T) {
	d := sample()

	entries := d.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "3.A", entries[1].Label())
	v, ok := entries[0].Value("Hubungan")
	assert.True(t, ok)
	assert.Equal(t, "Anak", v)

	sigs := d.Signatures(document.SectionSignatures)
	require.Len(t, sigs, 1)
	assert.Equal(t, "3.A", sigs[0].Label)
	assert.Len(t, d.Signatures(document.SectionAttestation), 1)
	assert.Len(t, d.Section(document.SectionWitnesses), 1)
}

func TestNestedEntryIsIndented(t *testing.T) {
	d := sample()
	assert.Equal(t, 0, d.Blocks[1].Indent)
	assert.Equal(t, 1, d.Blocks[2].Indent)
}

func TestRenderText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, document.RenderText(&buf, sample()))
	out := buf.String()

	assert.Contains(t, out, document.Title+"\n\n")
	assert.Contains(t, out, "3. Nama     : Almarhum Joko BIN Budi\n")
	assert.Contains(t, out, "   Hubungan : Anak\n")
	assert.Contains(t, out, "    A. Nama : Rina BINTI Joko\n")
	assert.Contains(t, out, "3.A. Rina BINTI Joko ...............\n")
	assert.Contains(t, out, "Saksi 1 : __________\n")
	assert.Contains(t, out, "Camat Depok\n\n\n__________\n")
	assert.Equal(t, out, document.Text(sample()))
}
