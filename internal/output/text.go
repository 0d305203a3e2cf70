package output

import (
	"strconv"
)

// TextFormatter formats results as a short human-readable block per path.
type TextFormatter struct {
	styles      Styles
	showContent bool
}

// NewTextFormatter creates a TextFormatter. With showContent the file
// content follows the metadata, unless it looks binary.
func NewTextFormatter(styles Styles, showContent bool) *TextFormatter {
	return &TextFormatter{
		styles:      styles,
		showContent: showContent,
	}
}

func (f *TextFormatter) Format(buf []byte, result Result) []byte {
	buf = append(buf, f.styles.Path.Render(result.Path)...)
	if !result.Found() {
		buf = append(buf, ": "...)
		msg := "not found"
		if result.Err != nil {
			msg = result.Err.Error()
		}
		buf = append(buf, f.styles.Error.Render(msg)...)
		buf = append(buf, '\n')
		return buf
	}
	buf = append(buf, '\n')

	d := result.Descriptor
	buf = f.field(buf, "full", d.FullPath())
	buf = f.field(buf, "folder", d.FolderPath())
	buf = f.field(buf, "name", d.FileName())
	buf = f.label(buf, "size")
	buf = append(buf, f.styles.Size.Render(strconv.Itoa(d.Len()))...)
	buf = append(buf, '\n')

	if !f.showContent || d.Len() == 0 {
		return buf
	}
	data := d.Buffer()
	if IsBinary(data) {
		buf = append(buf, "  "...)
		buf = append(buf, f.styles.Note.Render("(binary content not shown)")...)
		buf = append(buf, '\n')
		return buf
	}
	buf = append(buf, data...)
	if data[len(data)-1] != '\n' {
		buf = append(buf, '\n')
	}
	return buf
}

func (f *TextFormatter) field(buf []byte, label, value string) []byte {
	buf = f.label(buf, label)
	buf = append(buf, value...)
	buf = append(buf, '\n')
	return buf
}

// label appends an indented "label:" padded so the values line up.
func (f *TextFormatter) label(buf []byte, label string) []byte {
	buf = append(buf, "  "...)
	buf = append(buf, f.styles.Label.Render(label+":")...)
	buf = append(buf, "       "[:7-len(label)]...)
	return buf
}

// Ensure TextFormatter implements Formatter.
var _ Formatter = (*TextFormatter)(nil)
