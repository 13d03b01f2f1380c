package printer

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// ESC/POS control bytes
const (
	ESC = 0x1B
	GS  = 0x1D
	LF  = 0x0A
)

const (
	AlignLeft   = 0
	AlignCenter = 1
	AlignRight  = 2
)

const (
	FontNormal = 0x00
	FontDouble = 0x11 // double width and height
)

// Document builds an ESC/POS job. Width is in characters:
// 32 for 58mm paper, 48 for 80mm.
type Document struct {
	buf   bytes.Buffer
	width int
}

// NewDocument starts a job with the printer reset command.
func NewDocument(width int) *Document {
	if width <= 0 {
		width = 32
	}
	d := &Document{width: width}
	d.buf.Write([]byte{ESC, '@'})
	return d
}

// Width returns the line width in characters.
func (d *Document) Width() int {
	return d.width
}

func (d *Document) FeedLines(n int) *Document {
	d.buf.Write(bytes.Repeat([]byte{LF}, n))
	return d
}

func (d *Document) SetAlign(align int) *Document {
	d.buf.Write([]byte{ESC, 'a', byte(align)})
	return d
}

func (d *Document) SetBold(on bool) *Document {
	var b byte
	if on {
		b = 1
	}
	d.buf.Write([]byte{ESC, 'E', b})
	return d
}

func (d *Document) SetFontSize(size byte) *Document {
	d.buf.Write([]byte{GS, '!', size})
	return d
}

// Text writes s and a line feed.
func (d *Document) Text(s string) *Document {
	d.buf.WriteString(s)
	d.buf.WriteByte(LF)
	return d
}

func (d *Document) TextF(format string, args ...any) *Document {
	return d.Text(fmt.Sprintf(format, args...))
}

// Separator fills one line with c.
func (d *Document) Separator(c byte) *Document {
	return d.Text(strings.Repeat(string(c), d.width))
}

// Columns writes left and right justified on one line, truncating left so
// right is never pushed onto the next line.
func (d *Document) Columns(left, right string) *Document {
	room := d.width - len(right) - 1
	if room < 1 {
		room = 1
	}
	if len(left) > room {
		left = left[:room]
	}
	pad := d.width - len(left) - len(right)
	if pad < 1 {
		pad = 1
	}
	return d.Text(left + strings.Repeat(" ", pad) + right)
}

// Amount writes a label with a money value on the right.
func (d *Document) Amount(label string, minor int64) *Document {
	return d.Columns(label, FormatAmount(minor))
}

// ItemLine writes "2x Name" with the line total on the right.
func (d *Document) ItemLine(qty int, name string, total int64) *Document {
	return d.Columns(strconv.Itoa(qty)+"x "+name, FormatAmount(total))
}

// PartialCut feeds and cuts the paper leaving a hinge.
func (d *Document) PartialCut() *Document {
	d.buf.Write([]byte{GS, 'V', 0x01})
	return d
}

// Bytes returns the job.
func (d *Document) Bytes() []byte {
	return d.buf.Bytes()
}

// FormatAmount renders minor units with thousands separators, e.g. -10000 -> "-10,000".
func FormatAmount(minor int64) string {
	neg := minor < 0
	if neg {
		minor = -minor
	}
	s := strconv.FormatInt(minor, 10)
	var out strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			out.WriteByte(',')
		}
		out.WriteRune(r)
	}
	if neg {
		return "-" + out.String()
	}
	return out.String()
}
