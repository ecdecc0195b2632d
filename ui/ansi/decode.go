// Package ansi decodes ANSI-escaped command output into styled spans.
//
// Decoding is line-oriented: each line starts from the default style, so a
// color opened on one line never bleeds into the next. Only SGR (CSI ... m)
// and OSC 8 hyperlinks are interpreted. Every other escape sequence, and
// every malformed one, is kept as literal text.
package ansi

import (
	"strings"
)

const (
	esc = '\x1b'
	bel = '\a'
)

// Span is a run of text sharing one style. Spans are never mutated after
// decoding.
type Span struct {
	Text string

	Foreground Color
	Background Color

	Bold          bool
	Dim           bool
	Italic        bool
	Underline     bool
	Strikethrough bool

	// Hyperlink is the OSC 8 target, empty outside a link.
	Hyperlink string
}

// attrs is the decoder's current style. It is comparable so style changes
// can be detected without allocation.
type attrs struct {
	fg, bg                               Color
	bold, dim, italic, underline, strike bool
	link                                 string
}

func (a attrs) span(text string) Span {
	return Span{
		Text:          text,
		Foreground:    a.fg,
		Background:    a.bg,
		Bold:          a.bold,
		Dim:           a.dim,
		Italic:        a.italic,
		Underline:     a.underline,
		Strikethrough: a.strike,
		Hyperlink:     a.link,
	}
}

// Decode splits text into lines the way source.Lines does and decodes each
// one independently. Empty text has no lines, a trailing newline ends the
// last line, and a trailing carriage return on a line is dropped.
func Decode(text string) [][]Span {
	if text == "" {
		return nil
	}
	lines := strings.Split(strings.TrimSuffix(text, "\n"), "\n")
	out := make([][]Span, len(lines))
	for i, l := range lines {
		out[i] = DecodeLine(strings.TrimSuffix(l, "\r"))
	}
	return out
}

// DecodeLine decodes a single line. It never fails: unrecognized or
// malformed sequences come back as literal text.
func DecodeLine(line string) []Span {
	var d decoder
	for i := 0; i < len(line); {
		if line[i] != esc {
			j := strings.IndexByte(line[i:], esc)
			if j < 0 {
				j = len(line) - i
			}
			d.buf.WriteString(line[i : i+j])
			i += j
			continue
		}
		n, next, ok := parseEscape(line[i:], d.cur)
		if !ok {
			d.buf.WriteByte(esc)
			i++
			continue
		}
		d.restyle(next)
		i += n
	}
	d.flush()
	return d.spans
}

// Plain concatenates the text of spans.
func Plain(spans []Span) string {
	var b strings.Builder
	for _, s := range spans {
		b.WriteString(s.Text)
	}
	return b.String()
}

type decoder struct {
	cur   attrs
	buf   strings.Builder
	spans []Span
}

func (d *decoder) restyle(next attrs) {
	if next == d.cur {
		return
	}
	d.flush()
	d.cur = next
}

func (d *decoder) flush() {
	if d.buf.Len() == 0 {
		return
	}
	d.spans = append(d.spans, d.cur.span(d.buf.String()))
	d.buf.Reset()
}

// parseEscape interprets the escape sequence at the start of s. It returns
// the sequence length and the resulting style, or ok=false when the
// sequence is not one the decoder understands.
func parseEscape(s string, cur attrs) (n int, next attrs, ok bool) {
	if len(s) < 2 {
		return 0, cur, false
	}
	switch s[1] {
	case '[':
		return parseCSI(s, cur)
	case ']':
		return parseOSC(s, cur)
	}
	return 0, cur, false
}

func parseCSI(s string, cur attrs) (int, attrs, bool) {
	i := 2
	for i < len(s) && s[i] >= 0x30 && s[i] <= 0x3f {
		i++
	}
	paramEnd := i
	for i < len(s) && s[i] >= 0x20 && s[i] <= 0x2f {
		i++
	}
	if i >= len(s) || s[i] < 0x40 || s[i] > 0x7e {
		return 0, cur, false
	}
	if s[i] != 'm' || i != paramEnd {
		return 0, cur, false
	}
	params, ok := parseParams(s[2:paramEnd])
	if !ok {
		return 0, cur, false
	}
	return i + 1, applySGR(cur, params), true
}

// param is one ';'-separated SGR parameter followed by its ':' subparameters.
type param []int

func parseParams(raw string) ([]param, bool) {
	if raw == "" {
		return nil, true
	}
	out := make([]param, 0, 4)
	cur := make(param, 0, 1)
	v := 0
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		switch {
		case c >= '0' && c <= '9':
			if v < 1<<16 {
				v = v*10 + int(c-'0')
			}
		case c == ':':
			cur = append(cur, v)
			v = 0
		case c == ';':
			out = append(out, append(cur, v))
			cur = make(param, 0, 1)
			v = 0
		default:
			// Private parameter bytes (<, =, >, ?) are not SGR.
			return nil, false
		}
	}
	return append(out, append(cur, v)), true
}

func applySGR(a attrs, params []param) attrs {
	if len(params) == 0 {
		return attrs{link: a.link}
	}
	for i := 0; i < len(params); i++ {
		if len(params[i]) > 1 {
			a = applySubparams(a, params[i])
			continue
		}
		p := params[i][0]
		switch {
		case p == 0:
			a = attrs{link: a.link}
		case p == 1:
			a.bold = true
		case p == 2:
			a.dim = true
		case p == 3:
			a.italic = true
		case p == 4:
			a.underline = true
		case p == 9:
			a.strike = true
		case p == 22:
			a.bold, a.dim = false, false
		case p == 23:
			a.italic = false
		case p == 24:
			a.underline = false
		case p == 29:
			a.strike = false
		case p >= 30 && p <= 37:
			a.fg = basic(p - 30)
		case p == 39:
			a.fg = Color{}
		case p >= 40 && p <= 47:
			a.bg = basic(p - 40)
		case p == 49:
			a.bg = Color{}
		case p >= 90 && p <= 97:
			a.fg = basic(p - 90 + 8)
		case p >= 100 && p <= 107:
			a.bg = basic(p - 100 + 8)
		case p == 38 || p == 48:
			c, used := extendedColor(params[i+1:])
			if used == 0 {
				// Malformed extended color: nothing after it is reliable.
				return a
			}
			if p == 38 {
				a.fg = c
			} else {
				a.bg = c
			}
			i += used
		}
	}
	return a
}

// applySubparams handles the colon forms: 4:n underline styles and
// 38/48 colors. Anything else is ignored.
func applySubparams(a attrs, p param) attrs {
	switch p[0] {
	case 4:
		a.underline = p[1] != 0
	case 38, 48:
		c, ok := colonColor(p[1:])
		if !ok {
			return a
		}
		if p[0] == 38 {
			a.fg = c
		} else {
			a.bg = c
		}
	}
	return a
}

// extendedColor reads the semicolon form: 5;n or 2;r;g;b.
func extendedColor(rest []param) (Color, int) {
	var v [4]int
	n := 0
	for n < len(rest) && n < len(v) && len(rest[n]) == 1 {
		v[n] = rest[n][0]
		n++
	}
	switch {
	case n >= 2 && v[0] == 5:
		return Color{Kind: Indexed, Index: clampByte(v[1])}, 2
	case n >= 4 && v[0] == 2:
		return Color{Kind: TrueColor, R: clampByte(v[1]), G: clampByte(v[2]), B: clampByte(v[3])}, 4
	}
	return Color{}, 0
}

// colonColor reads 5:n or 2:[colorspace]:r:g:b.
func colonColor(sub []int) (Color, bool) {
	switch {
	case len(sub) >= 2 && sub[0] == 5:
		return Color{Kind: Indexed, Index: clampByte(sub[1])}, true
	case len(sub) == 4 && sub[0] == 2:
		return Color{Kind: TrueColor, R: clampByte(sub[1]), G: clampByte(sub[2]), B: clampByte(sub[3])}, true
	case len(sub) >= 5 && sub[0] == 2:
		return Color{Kind: TrueColor, R: clampByte(sub[2]), G: clampByte(sub[3]), B: clampByte(sub[4])}, true
	}
	return Color{}, false
}

func clampByte(v int) uint8 {
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// parseOSC handles OSC 8 hyperlinks: ESC ] 8 ; params ; uri ST, where ST is
// BEL or ESC \. Other OSC commands are left as literal text.
func parseOSC(s string, cur attrs) (int, attrs, bool) {
	body, n := oscBody(s)
	if n == 0 {
		return 0, cur, false
	}
	if !strings.HasPrefix(body, "8;") {
		return 0, cur, false
	}
	rest := body[2:]
	semi := strings.IndexByte(rest, ';')
	if semi < 0 {
		return 0, cur, false
	}
	cur.link = rest[semi+1:]
	return n, cur, true
}

func oscBody(s string) (string, int) {
	for i := 2; i < len(s); i++ {
		switch s[i] {
		case bel:
			return s[2:i], i + 1
		case esc:
			if i+1 < len(s) && s[i+1] == '\\' {
				return s[2:i], i + 2
			}
			return "", 0
		}
	}
	return "", 0
}
