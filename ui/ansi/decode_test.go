package ansi

import (
	"fmt"
	"testing"

	xansi "github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeAttributes(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		check func(t *testing.T, s Span)
	}{
		{"bold", "\x1b[1mX", func(t *testing.T, s Span) { assert.True(t, s.Bold) }},
		{"dim", "\x1b[2mX", func(t *testing.T, s Span) { assert.True(t, s.Dim) }},
		{"italic", "\x1b[3mX", func(t *testing.T, s Span) { assert.True(t, s.Italic) }},
		{"underline", "\x1b[4mX", func(t *testing.T, s Span) { assert.True(t, s.Underline) }},
		{"strikethrough", "\x1b[9mX", func(t *testing.T, s Span) { assert.True(t, s.Strikethrough) }},
		{"combined", "\x1b[1;3;4mX", func(t *testing.T, s Span) {
			assert.True(t, s.Bold)
			assert.True(t, s.Italic)
			assert.True(t, s.Underline)
			assert.False(t, s.Dim)
		}},
		{"22 clears bold and dim", "\x1b[1;2m\x1b[22mX", func(t *testing.T, s Span) {
			assert.False(t, s.Bold)
			assert.False(t, s.Dim)
		}},
		{"23 clears italic", "\x1b[3;23mX", func(t *testing.T, s Span) { assert.False(t, s.Italic) }},
		{"24 clears underline", "\x1b[4m\x1b[24mX", func(t *testing.T, s Span) { assert.False(t, s.Underline) }},
		{"29 clears strikethrough", "\x1b[9;29mX", func(t *testing.T, s Span) { assert.False(t, s.Strikethrough) }},
		{"39 resets foreground", "\x1b[31;39mX", func(t *testing.T, s Span) { assert.False(t, s.Foreground.IsSet()) }},
		{"49 resets background", "\x1b[41;49mX", func(t *testing.T, s Span) { assert.False(t, s.Background.IsSet()) }},
		{"0 resets everything", "\x1b[1;31;44m\x1b[0mX", func(t *testing.T, s Span) {
			assert.True(t, s.Plain())
		}},
		{"empty SGR resets", "\x1b[1;31m\x1b[mX", func(t *testing.T, s Span) {
			assert.True(t, s.Plain())
		}},
		{"256 color", "\x1b[38;5;208mX", func(t *testing.T, s Span) {
			assert.Equal(t, Color{Kind: Indexed, Index: 208}, s.Foreground)
		}},
		{"truecolor background", "\x1b[48;2;255;136;0mX", func(t *testing.T, s Span) {
			assert.Equal(t, "#ff8800", s.Background.String())
		}},
		{"colon subparams", "\x1b[38:5:33mX", func(t *testing.T, s Span) {
			assert.Equal(t, Color{Kind: Indexed, Index: 33}, s.Foreground)
		}},
		{"curly underline is not italic", "\x1b[4:3mX", func(t *testing.T, s Span) {
			assert.True(t, s.Underline)
			assert.False(t, s.Italic)
		}},
		{"4:0 clears underline", "\x1b[4m\x1b[4:0mX", func(t *testing.T, s Span) { assert.False(t, s.Underline) }},
		{"colon truecolor with empty colorspace", "\x1b[38:2::255:0:0mX", func(t *testing.T, s Span) {
			assert.Equal(t, "#ff0000", s.Foreground.String())
		}},
		{"colon truecolor without colorspace", "\x1b[48:2:0:136:255mX", func(t *testing.T, s Span) {
			assert.Equal(t, "#0088ff", s.Background.String())
		}},
		{"colon color then semicolon params", "\x1b[38:5:33;1mX", func(t *testing.T, s Span) {
			assert.Equal(t, Color{Kind: Indexed, Index: 33}, s.Foreground)
			assert.True(t, s.Bold)
		}},
		{"unknown subparams ignored", "\x1b[1:2;31mX", func(t *testing.T, s Span) {
			assert.False(t, s.Bold)
			assert.Equal(t, Red, s.Foreground)
		}},
		{"malformed colon color keeps later params", "\x1b[38:9;4mX", func(t *testing.T, s Span) {
			assert.False(t, s.Foreground.IsSet())
			assert.True(t, s.Underline)
		}},
		{"empty param is zero", "\x1b[1;;4mX", func(t *testing.T, s Span) {
			assert.False(t, s.Bold)
			assert.True(t, s.Underline)
		}},
		{"unknown params ignored", "\x1b[5;7;31mX", func(t *testing.T, s Span) {
			assert.Equal(t, Red, s.Foreground)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spans := DecodeLine(tt.in)
			require.Len(t, spans, 1)
			assert.Equal(t, "X", spans[0].Text)
			tt.check(t, spans[0])
		})
	}
}

func TestDecodeColors(t *testing.T) {
	for i := 0; i < 8; i++ {
		fg := DecodeLine(fmt.Sprintf("\x1b[%dmX", 30+i))
		require.Len(t, fg, 1)
		assert.Equal(t, basic(i), fg[0].Foreground, "fg %d", i)

		bright := DecodeLine(fmt.Sprintf("\x1b[%dmX", 90+i))
		require.Len(t, bright, 1)
		assert.Equal(t, basic(i+8), bright[0].Foreground, "bright fg %d", i)

		bg := DecodeLine(fmt.Sprintf("\x1b[%dmX", 40+i))
		require.Len(t, bg, 1)
		assert.Equal(t, basic(i), bg[0].Background, "bg %d", i)

		brightBg := DecodeLine(fmt.Sprintf("\x1b[%dmX", 100+i))
		require.Len(t, brightBg, 1)
		assert.Equal(t, basic(i+8), brightBg[0].Background, "bright bg %d", i)
	}
	assert.Equal(t, "red", Red.String())
	assert.Equal(t, "bright-white", BrightWhite.String())
	assert.Equal(t, "", Color{}.String())
}

func TestDecodeSpansInSourceOrder(t *testing.T) {
	spans := DecodeLine("plain \x1b[31mred\x1b[1m bold-red\x1b[0m tail")
	require.Len(t, spans, 4)

	assert.Equal(t, "plain ", spans[0].Text)
	assert.True(t, spans[0].Plain())

	assert.Equal(t, "red", spans[1].Text)
	assert.Equal(t, Red, spans[1].Foreground)
	assert.False(t, spans[1].Bold)

	assert.Equal(t, " bold-red", spans[2].Text)
	assert.Equal(t, Red, spans[2].Foreground)
	assert.True(t, spans[2].Bold)

	assert.Equal(t, " tail", spans[3].Text)
	assert.True(t, spans[3].Plain())
}

func TestDecodeRedundantSequencesDoNotSplit(t *testing.T) {
	spans := DecodeLine("\x1b[31mab\x1b[31mcd")
	require.Len(t, spans, 1)
	assert.Equal(t, "abcd", spans[0].Text)
}

func TestDecodeHyperlink(t *testing.T) {
	for _, st := range []string{"\a", "\x1b\\"} {
		in := "see \x1b]8;;https://example.com/a" + st + "docs\x1b]8;;" + st + " end"
		spans := DecodeLine(in)
		require.Len(t, spans, 3, "terminator %q", st)
		assert.Equal(t, "see ", spans[0].Text)
		assert.Empty(t, spans[0].Hyperlink)
		assert.Equal(t, "docs", spans[1].Text)
		assert.Equal(t, "https://example.com/a", spans[1].Hyperlink)
		assert.Equal(t, " end", spans[2].Text)
		assert.Empty(t, spans[2].Hyperlink)
	}
}

func TestDecodeHyperlinkSurvivesSGRReset(t *testing.T) {
	spans := DecodeLine("\x1b]8;id=1;https://x.io\a\x1b[31mA\x1b[0mB\x1b]8;;\a")
	require.Len(t, spans, 2)
	assert.Equal(t, "https://x.io", spans[0].Hyperlink)
	assert.Equal(t, "https://x.io", spans[1].Hyperlink)
	assert.False(t, spans[1].Foreground.IsSet())
}

func TestDecodeMalformedIsLiteral(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"lone escape", "a\x1bb"},
		{"trailing escape", "abc\x1b"},
		{"unterminated CSI", "x\x1b[31"},
		{"cursor movement", "x\x1b[2Ky"},
		{"private SGR", "x\x1b[?25my"},
		{"unterminated OSC", "x\x1b]8;;http://a"},
		{"window title OSC", "x\x1b]0;title\ay"},
		{"OSC 8 without uri field", "x\x1b]8;broken\ay"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spans := DecodeLine(tt.in)
			assert.Equal(t, tt.in, Plain(spans), "content must survive verbatim")
		})
	}
}

func TestDecodeResetsPerLine(t *testing.T) {
	lines := Decode("\x1b[31;1mred\nnext\r\n\x1b[4munder")
	require.Len(t, lines, 3)

	require.Len(t, lines[0], 1)
	assert.Equal(t, Red, lines[0][0].Foreground)

	require.Len(t, lines[1], 1)
	assert.Equal(t, "next", lines[1][0].Text)
	assert.True(t, lines[1][0].Plain(), "style must not bleed across lines")

	require.Len(t, lines[2], 1)
	assert.True(t, lines[2][0].Underline)
}

func TestDecodeLineCount(t *testing.T) {
	assert.Empty(t, Decode(""))
	assert.Len(t, Decode("a"), 1)
	assert.Len(t, Decode("a\n"), 1, "a trailing newline ends the line")
	assert.Len(t, Decode("a\r\n"), 1)
	assert.Len(t, Decode("a\n\n"), 2)
	assert.Len(t, Decode("\n"), 1)

	lines := Decode("a\r\nb\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "a", Plain(lines[0]))
	assert.Equal(t, "b", Plain(lines[1]))
}

func TestDecodeEmpty(t *testing.T) {
	assert.Empty(t, DecodeLine(""))
	assert.Empty(t, DecodeLine("\x1b[31m\x1b[0m"))
}

// fidelityCorpus covers every recognized SGR form plus OSC 8.
var fidelityCorpus = []string{
	"\x1b[1mbold\x1b[22m \x1b[2mdim\x1b[22m \x1b[3mitalic\x1b[23m",
	"\x1b[4munder\x1b[24m \x1b[9mstrike\x1b[29m done",
	"\x1b[30mk\x1b[31mr\x1b[32mg\x1b[33my\x1b[34mb\x1b[35mm\x1b[36mc\x1b[37mw\x1b[39m",
	"\x1b[90mk\x1b[91mr\x1b[92mg\x1b[93my\x1b[94mb\x1b[95mm\x1b[96mc\x1b[97mw\x1b[0m",
	"\x1b[40mk\x1b[41mr\x1b[42mg\x1b[43my\x1b[44mb\x1b[45mm\x1b[46mc\x1b[47mw\x1b[49m",
	"pre \x1b]8;;https://kui.tools\x1b\\link\x1b]8;;\x1b\\ post",
	"ERROR \x1b[31;1mfailed\x1b[0m to pull image \"nginx:latest\"",
}

func TestDecodeFidelityCorpus(t *testing.T) {
	for _, in := range fidelityCorpus {
		spans := DecodeLine(in)
		assert.Equal(t, xansi.Strip(in), Plain(spans), "input %q", in)
	}
}

func TestDecodeIsPure(t *testing.T) {
	for _, in := range append(fidelityCorpus, "a\x1bb", "x\x1b[2Ky") {
		assert.Equal(t, DecodeLine(in), DecodeLine(in))
	}
}
