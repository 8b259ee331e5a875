// Package wsdebug is a reference host.Window adapter that broadcasts
// SetTitle/SetResizable calls as JSON over a websocket, so a debug
// client (e.g. a browser tab) can observe what a running
// app is doing without a real GUI bound. It is explicitly not "the"
// window implementation — a real embedder supplies its own — this one
// exists to exercise the host.Window contract end-to-end and to give
// the teacher's gorilla/websocket dependency a concrete home (SPEC_FULL
// §B).
package wsdebug

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/apica-run/apica-core/pkg/host"
	"github.com/gorilla/websocket"
)

var _ host.Window = (*Window)(nil)

type event struct {
	Kind      string `json:"kind"`
	Title     string `json:"title,omitempty"`
	Resizable bool   `json:"resizable,omitempty"`
}

// Window fans SetTitle/SetResizable calls out to every connected
// websocket client.
type Window struct {
	upgrader websocket.Upgrader

	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
}

// New returns a Window with no connected clients.
func New() *Window {
	return &Window{
		upgrader: websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }},
		conns:    make(map[*websocket.Conn]struct{}),
	}
}

// Handler upgrades inbound requests and registers the connection as a
// broadcast target until it disconnects.
func (w *Window) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := w.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		w.mu.Lock()
		w.conns[conn] = struct{}{}
		w.mu.Unlock()
		go w.drain(conn)
	}
}

// drain reads (and discards) inbound frames purely to detect
// disconnects; this adapter is output-only from the app's perspective.
func (w *Window) drain(conn *websocket.Conn) {
	defer func() {
		w.mu.Lock()
		delete(w.conns, conn)
		w.mu.Unlock()
		_ = conn.Close()
	}()
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (w *Window) broadcast(e event) {
	payload, err := json.Marshal(e)
	if err != nil {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	for conn := range w.conns {
		_ = conn.WriteMessage(websocket.TextMessage, payload)
	}
}

func (w *Window) SetTitle(title string) {
	w.broadcast(event{Kind: "set_title", Title: title})
}

func (w *Window) SetResizable(resizable bool) {
	w.broadcast(event{Kind: "set_resizable", Resizable: resizable})
}
