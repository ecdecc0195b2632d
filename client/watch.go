package client

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/miosa/osa-view/msg"
	"github.com/miosa/osa-view/table"
)

// MaxReconnects bounds reconnect attempts before the watch gives up.
const MaxReconnects = 10

// Sender delivers messages into the running program. *tea.Program
// satisfies it.
type Sender interface {
	Send(tea.Msg)
}

// Watcher follows a server-sent event stream of table snapshots and text
// appends:
//
//	event: table
//	data: {"body":[...]}
//
//	event: append
//	data: "next chunk\n"
type Watcher struct {
	url     string
	token   string
	done    chan struct{}
	once    sync.Once
	httpCli *http.Client

	// backoff returns the wait before reconnect attempt n.
	backoff func(attempt int) time.Duration
}

// NewWatcher creates a watcher for url, reusing c's token.
func NewWatcher(c *Client, url string) *Watcher {
	w := &Watcher{
		url:     url,
		done:    make(chan struct{}),
		httpCli: &http.Client{Timeout: 0},
		backoff: expBackoff,
	}
	if c != nil {
		w.token = c.Token
	}
	return w
}

func expBackoff(attempt int) time.Duration {
	shift := attempt
	if shift > 5 {
		shift = 5 // cap at 32s to prevent overflow
	}
	backoff := time.Duration(1<<uint(shift)) * time.Second
	if backoff > 30*time.Second {
		backoff = 30 * time.Second
	}
	return backoff
}

// Close stops the watcher. Safe to call more than once.
func (w *Watcher) Close() {
	w.once.Do(func() { close(w.done) })
}

// IsClosed reports whether Close was called.
func (w *Watcher) IsClosed() bool {
	select {
	case <-w.done:
		return true
	default:
		return false
	}
}

// ListenCmd connects once and forwards events to s until the stream ends.
// The returned message describes how it ended.
func (w *Watcher) ListenCmd(s Sender) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go func() {
			select {
			case <-w.done:
				cancel()
			case <-ctx.Done():
			}
		}()

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.url, nil)
		if err != nil {
			return msg.WatchDisconnected{Err: err}
		}
		req.Header.Set("Accept", "text/event-stream")
		req.Header.Set("Cache-Control", "no-cache")
		if w.token != "" {
			req.Header.Set("Authorization", "Bearer "+w.token)
		}

		resp, err := w.httpCli.Do(req)
		if err != nil {
			if w.IsClosed() {
				return msg.WatchDisconnected{}
			}
			return msg.WatchDisconnected{Err: err}
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			return msg.WatchAuthFailed{}
		}
		if resp.StatusCode != http.StatusOK {
			return msg.WatchDisconnected{
				Err: fmt.Errorf("watch stream returned %d", resp.StatusCode),
			}
		}

		s.Send(msg.WatchConnected{URL: w.url})

		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

		var eventType string
		var data []string
		for scanner.Scan() {
			if w.IsClosed() {
				return msg.WatchDisconnected{}
			}

			line := scanner.Text()

			switch {
			case line == "":
				if len(data) > 0 {
					if m := parseEvent(eventType, strings.Join(data, "\n")); m != nil {
						s.Send(m)
					}
				}
				eventType, data = "", nil

			case strings.HasPrefix(line, ":"):
				// keepalive comment

			case strings.HasPrefix(line, "event:"):
				eventType = strings.TrimSpace(strings.TrimPrefix(line, "event:"))

			case strings.HasPrefix(line, "data:"):
				data = append(data, strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
			}
		}

		if err := scanner.Err(); err != nil && !w.IsClosed() {
			return msg.WatchDisconnected{Err: err}
		}
		return msg.WatchDisconnected{}
	}
}

// ReconnectCmd retries ListenCmd with exponential backoff until it
// connects and ends cleanly, the watcher closes, or MaxReconnects is hit.
func (w *Watcher) ReconnectCmd(s Sender) tea.Cmd {
	return func() tea.Msg {
		for attempt := 1; ; attempt++ {
			if w.IsClosed() {
				return msg.WatchDisconnected{}
			}
			if attempt > MaxReconnects {
				return msg.WatchDisconnected{
					Err: fmt.Errorf("watch reconnect failed after %d attempts", MaxReconnects),
				}
			}

			select {
			case <-time.After(w.backoff(attempt)):
			case <-w.done:
				return msg.WatchDisconnected{}
			}

			s.Send(msg.WatchReconnecting{Attempt: attempt})
			result := w.ListenCmd(s)()
			if d, ok := result.(msg.WatchDisconnected); ok && d.Err != nil {
				slog.Debug("watch reconnect failed", "attempt", attempt, "err", d.Err)
				continue
			}
			return result
		}
	}
}

// parseEvent converts one SSE event into a message, or nil when it is not
// understood.
func parseEvent(eventType, data string) tea.Msg {
	switch eventType {
	case "table", "snapshot", "":
		t, err := table.Parse([]byte(data))
		if err != nil {
			slog.Debug("dropping malformed table event", "err", err)
			return nil
		}
		return msg.TableRefreshed{Table: t, At: time.Now()}
	case "append", "text":
		var text string
		if err := json.Unmarshal([]byte(data), &text); err != nil {
			// raw, unquoted payload
			text = data + "\n"
		}
		return msg.ContentAppended{Text: text}
	}
	slog.Debug("ignoring watch event", "type", eventType)
	return nil
}
