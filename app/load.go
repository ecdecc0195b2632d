package app

import (
	"context"
	"fmt"
	"io"
	"os"

	tea "charm.land/bubbletea/v2"

	"github.com/miosa/osa-view/client"
	"github.com/miosa/osa-view/msg"
	"github.com/miosa/osa-view/table"
)

// LoadReaderCmd reads r to the end and reports it as a table when it has a
// table's shape (or forceTable is set), otherwise as text.
func LoadReaderCmd(name string, r io.Reader, forceTable bool) tea.Cmd {
	return func() tea.Msg {
		data, err := io.ReadAll(r)
		if err != nil {
			return msg.ContentLoaded{Source: name, Err: fmt.Errorf("read %s: %w", name, err)}
		}
		return decode(name, data, forceTable)
	}
}

// LoadFileCmd loads a local file.
func LoadFileCmd(path string, forceTable bool) tea.Cmd {
	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return msg.ContentLoaded{Source: path, Err: fmt.Errorf("open %s: %w", path, err)}
		}
		defer f.Close()
		return LoadReaderCmd(path, f, forceTable)()
	}
}

// FetchCmd loads a URL through c. With forceTable set the body must parse
// as a table.
func FetchCmd(ctx context.Context, c *client.Client, url string, forceTable bool) tea.Cmd {
	return func() tea.Msg {
		res, err := c.Fetch(ctx, url, forceTable)
		if err != nil {
			return msg.ContentLoaded{Source: url, Err: err}
		}
		return msg.ContentLoaded{Source: url, Text: res.Text, Table: res.Table}
	}
}

func decode(name string, data []byte, forceTable bool) msg.ContentLoaded {
	if !forceTable && !table.LooksLikeTable(data) {
		return msg.ContentLoaded{Source: name, Text: string(data)}
	}
	t, err := table.Parse(data)
	if err != nil {
		return msg.ContentLoaded{Source: name, Err: fmt.Errorf("decode %s: %w", name, err)}
	}
	return msg.ContentLoaded{Source: name, Table: t}
}
