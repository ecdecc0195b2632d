package ansi

import (
	"testing"

	xansi "github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
)

func TestRenderLinePreservesText(t *testing.T) {
	for _, in := range fidelityCorpus {
		out := RenderLine(DecodeLine(in))
		assert.Equal(t, xansi.Strip(in), xansi.Strip(out), "input %q", in)
	}
}

func TestRenderLinePlainPassthrough(t *testing.T) {
	assert.Equal(t, "hello world", RenderLine(DecodeLine("hello world")))
}

func TestRenderLineNeutralizesControls(t *testing.T) {
	out := RenderLine(DecodeLine("a\x1b[2Kb\tc"))
	assert.Equal(t, "a␛[2Kb    c", out)
}

func TestRenderLineHyperlink(t *testing.T) {
	out := RenderLine(DecodeLine("\x1b]8;;https://x.io\adocs\x1b]8;;\a"))
	assert.Contains(t, out, "https://x.io")
	assert.Equal(t, "docs", xansi.Strip(out))
}

func TestTermColor(t *testing.T) {
	assert.Nil(t, Color{}.TermColor())
	assert.NotNil(t, Red.TermColor())
	assert.NotNil(t, Color{Kind: Indexed, Index: 200}.TermColor())
	assert.NotNil(t, Color{Kind: TrueColor, R: 1}.TermColor())
}
