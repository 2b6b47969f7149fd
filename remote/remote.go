// Package remote carries the module/host event stream across a process
// boundary. A HostLink exposes a channel.Handler that forwards every
// delivered event to the host over WebSocket, and a read loop that turns
// inbound host messages into Bubble Tea messages. The channel protocol stays
// best-effort end to end: events emitted while the link is down are dropped
// with a diagnostic, never queued.
package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gorilla/websocket"

	"github.com/sitrontech/mini-app-module-interface/channel"
	"github.com/sitrontech/mini-app-module-interface/config"
)

const (
	reconnectBaseDelay = 1 * time.Second
	reconnectMaxDelay  = 30 * time.Second
	writeTimeout       = 10 * time.Second
	pongTimeout        = 60 * time.Second
	pingInterval       = 30 * time.Second
)

// MessageType identifies the kind of inbound host message.
type MessageType string

const (
	MsgConfigUpdate MessageType = "config.update"
	MsgDataResponse MessageType = "data.response"
	MsgUnmount      MessageType = "module.unmount"
	MsgError        MessageType = "error"
)

// Envelope is the wire form in both directions.
type Envelope struct {
	Type    string          `json:"type"`
	Seq     uint64          `json:"seq"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// --- Bubble Tea messages ---

// ConnectedMsg is sent when the link comes up.
type ConnectedMsg struct{}

// DisconnectedMsg is sent when the link drops.
type DisconnectedMsg struct{ Err error }

// ConfigUpdateMsg delivers a refreshed activation snapshot from the host.
type ConfigUpdateMsg struct{ Config config.Snapshot }

// DataResponseMsg answers an earlier data.request event.
type DataResponseMsg struct {
	Kind string         `json:"kind"`
	Data map[string]any `json:"data"`
}

// UnmountRequestMsg asks the module shell to unmount.
type UnmountRequestMsg struct{}

// HostErrorMsg wraps a host-side error.
type HostErrorMsg struct{ Raw json.RawMessage }

// HostLink manages the WebSocket connection to an out-of-process host.
type HostLink struct {
	url   string
	token string
	diag  *channel.Diagnostics

	mu      sync.Mutex
	writeMu sync.Mutex // serialises all conn writes (ping, forward, auth)
	conn    *websocket.Conn
	seq     uint64
	pingCtx context.CancelFunc // cancels the active ping goroutine
}

// NewHostLink creates a link to the given WebSocket URL.
func NewHostLink(url, token string, diag *channel.Diagnostics) *HostLink {
	return &HostLink{url: url, token: token, diag: diag}
}

// Listen returns a Bubble Tea command that connects and reconnects with
// exponential backoff until the context is cancelled.
func (l *HostLink) Listen(ctx context.Context) tea.Cmd {
	return func() tea.Msg {
		delay := reconnectBaseDelay
		for {
			select {
			case <-ctx.Done():
				return nil
			default:
			}

			conn, _, err := websocket.DefaultDialer.Dial(l.url, nil)
			if err != nil {
				l.diag.Record("err", "host link dial failed", map[string]any{"err": err.Error(), "retryIn": delay.String()})
				time.Sleep(delay)
				delay = min(delay*2, reconnectMaxDelay)
				continue
			}

			// Authenticate if a token is set. The connection isn't shared
			// yet, so no write mutex is needed here.
			if l.token != "" {
				auth := map[string]string{"type": "auth", "token": l.token}
				if err := conn.WriteJSON(auth); err != nil {
					conn.Close()
					continue
				}
			}

			l.mu.Lock()
			if l.pingCtx != nil {
				l.pingCtx()
			}
			pingCtx, pingCancel := context.WithCancel(ctx)
			l.conn = conn
			l.seq = 0
			l.pingCtx = pingCancel
			l.mu.Unlock()

			go l.pingLoop(pingCtx, conn)

			return ConnectedMsg{}
		}
	}
}

// Handler returns a channel.Handler that forwards each delivered event over
// the link. Delivery is best-effort: with no live connection the event is
// dropped and a diagnostic recorded, matching the channel's own policy.
func (l *HostLink) Handler() channel.Handler {
	return func(eventType string, payload map[string]any) {
		if err := l.forward(eventType, payload); err != nil {
			l.diag.Record("drop", "host link forward failed: "+eventType,
				map[string]any{"err": err.Error()})
		}
	}
}

func (l *HostLink) forward(eventType string, payload map[string]any) error {
	l.mu.Lock()
	conn := l.conn
	l.seq++
	seq := l.seq
	l.mu.Unlock()
	if conn == nil {
		return fmt.Errorf("not connected")
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	env := Envelope{Type: eventType, Seq: seq, Payload: raw}

	l.writeMu.Lock()
	defer l.writeMu.Unlock()
	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return conn.WriteJSON(env)
}

// ReadLoop returns a Bubble Tea command that reads inbound host messages.
// Start it after receiving ConnectedMsg and again after each delivered
// message.
func (l *HostLink) ReadLoop(ctx context.Context) tea.Cmd {
	return func() tea.Msg {
		l.mu.Lock()
		conn := l.conn
		l.mu.Unlock()
		if conn == nil {
			return DisconnectedMsg{Err: fmt.Errorf("no connection")}
		}

		conn.SetPongHandler(func(string) error {
			conn.SetReadDeadline(time.Now().Add(pongTimeout))
			return nil
		})
		conn.SetReadDeadline(time.Now().Add(pongTimeout))

		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				l.mu.Lock()
				if l.conn == conn {
					l.conn = nil
				}
				l.mu.Unlock()
				conn.Close()
				return DisconnectedMsg{Err: err}
			}

			var env Envelope
			if err := json.Unmarshal(data, &env); err != nil {
				continue
			}

			if msg := dispatch(env); msg != nil {
				return msg
			}
		}
	}
}

// pingLoop keeps the connection alive. It exits when the context is
// cancelled or the connection changes.
func (l *HostLink) pingLoop(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.mu.Lock()
			cc := l.conn
			l.mu.Unlock()
			if cc != conn {
				return
			}
			l.writeMu.Lock()
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			err := conn.WriteMessage(websocket.PingMessage, nil)
			l.writeMu.Unlock()
			if err != nil {
				return
			}
		}
	}
}

// Close tears the link down.
func (l *HostLink) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.pingCtx != nil {
		l.pingCtx()
		l.pingCtx = nil
	}
	if l.conn != nil {
		l.conn.Close()
		l.conn = nil
	}
}

func dispatch(env Envelope) tea.Msg {
	switch MessageType(env.Type) {
	case MsgConfigUpdate:
		var cfg config.Snapshot
		if json.Unmarshal(env.Payload, &cfg) == nil {
			return ConfigUpdateMsg{Config: cfg}
		}
	case MsgDataResponse:
		var p DataResponseMsg
		if json.Unmarshal(env.Payload, &p) == nil {
			return p
		}
	case MsgUnmount:
		return UnmountRequestMsg{}
	case MsgError:
		return HostErrorMsg{Raw: env.Payload}
	}
	return nil
}
