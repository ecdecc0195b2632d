package client

import (
	"context"
	"errors"
	"io"
	"unicode/utf8"

	tea "charm.land/bubbletea/v2"

	"github.com/miosa/osa-view/msg"
)

const followChunk = 32 * 1024

// FollowCmd streams r into the program as ContentAppended messages until
// EOF, a read error, or ctx is done. Chunks never split a UTF-8 sequence.
func FollowCmd(ctx context.Context, r io.Reader, s Sender) tea.Cmd {
	return func() tea.Msg {
		buf := make([]byte, followChunk)
		var carry []byte
		for {
			if ctx.Err() != nil {
				return msg.StreamClosed{}
			}
			n, err := r.Read(buf)
			if n > 0 {
				chunk := append(carry, buf[:n]...)
				cut := completePrefix(chunk)
				carry = append([]byte(nil), chunk[cut:]...)
				if cut > 0 {
					s.Send(msg.ContentAppended{Text: string(chunk[:cut])})
				}
			}
			if err != nil {
				if len(carry) > 0 {
					s.Send(msg.ContentAppended{Text: string(carry)})
				}
				if errors.Is(err, io.EOF) {
					return msg.StreamClosed{}
				}
				return msg.StreamClosed{Err: err}
			}
		}
	}
}

// completePrefix returns the length of the longest prefix of b that does
// not end inside a UTF-8 sequence.
func completePrefix(b []byte) int {
	for i := len(b) - 1; i >= 0 && i >= len(b)-utf8.UTFMax; i-- {
		if !utf8.RuneStart(b[i]) {
			continue
		}
		if utf8.FullRune(b[i:]) {
			return len(b)
		}
		return i
	}
	return len(b)
}
