package document

import (
	"bufio"
	"io"
	"strings"
	"unicode/utf8"
)

const indentUnit = "    "

// RenderText writes a plain-text preview of d. Pagination and typography are
// left to a real renderer.
func RenderText(w io.Writer, d Document) error {
	bw := bufio.NewWriter(w)
	title := d.Title
	if title == "" {
		title = Title
	}
	bw.WriteString(title + "\n\n")

	prev := Section("")
	for _, b := range d.Blocks {
		if prev != "" && b.Section != prev {
			bw.WriteString("\n")
		}
		prev = b.Section
		pad := strings.Repeat(indentUnit, b.Indent)
		switch b.Kind {
		case KindParagraph:
			bw.WriteString(pad + b.Text + "\n")
		case KindEntry:
			if b.Entry != nil {
				writeEntry(bw, pad, *b.Entry)
			}
		case KindSignature:
			if b.Signature != nil {
				writeSignature(bw, pad, *b.Signature)
			}
		case KindPlaceholder:
			if b.Caption != "" {
				bw.WriteString(pad + b.Caption + " : " + b.Text + "\n")
			} else {
				bw.WriteString(pad + b.Text + "\n")
			}
		}
	}
	return bw.Flush()
}

// Text is RenderText into a string.
func Text(d Document) string {
	var sb strings.Builder
	_ = RenderText(&sb, d)
	return sb.String()
}

func writeEntry(w *bufio.Writer, pad string, e Entry) {
	prefix := e.Label() + ". "
	if e.Nested() {
		prefix = e.Letter + ". "
	}
	width := 0
	for _, f := range e.Fields {
		width = max(width, utf8.RuneCountInString(f.Label))
	}
	cont := strings.Repeat(" ", utf8.RuneCountInString(prefix))
	for i, f := range e.Fields {
		lead := cont
		if i == 0 {
			lead = prefix
		}
		gap := strings.Repeat(" ", width-utf8.RuneCountInString(f.Label))
		w.WriteString(pad + lead + f.Label + gap + " : " + f.Value + "\n")
	}
}

func writeSignature(w *bufio.Writer, pad string, s Signature) {
	switch {
	case s.Role != "":
		w.WriteString(pad + s.Role + "\n\n\n" + pad + s.Name + "\n")
	case s.Label != "":
		w.WriteString(pad + s.Label + ". " + s.Name + " ...............\n")
	default:
		w.WriteString(pad + s.Name + " ...............\n")
	}
}
