// Package devserver implements the optional `tensorc watch` mode: it
// polls the manifest and every graph file it references for
// modification and broadcasts a recompile notification to any
// connected websocket clients (spec.md §9's developer-tooling
// supplement; not part of the core pipeline).
package devserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// RecompileEvent is broadcast to every connected client after each poll
// tick that observes a change, whether or not the recompile succeeded.
type RecompileEvent struct {
	Event string `json:"event"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// Server watches a set of files and rebroadcasts recompile results over
// websocket, adapting the teacher's WebSocketBroadcast
// iterate-clients-and-write pattern and Builder.Watch()'s polling loop.
type Server struct {
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[*websocket.Conn]bool
}

// New creates a devserver. Like the teacher's WebSocketServer, origin
// checking is left permissive since this serves local development only.
func New() *Server {
	return &Server{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[*websocket.Conn]bool),
	}
}

// ServeHTTP upgrades the connection and registers it as a broadcast
// recipient until it disconnects.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	s.mu.Lock()
	s.clients[conn] = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.clients, conn)
		s.mu.Unlock()
		conn.Close()
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// Broadcast sends ev as JSON to every connected client, dropping any
// client whose write fails the same way WebSocketBroadcast marks a
// client closed on write error.
func (s *Server) Broadcast(ev RecompileEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	s.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(s.clients))
	for c := range s.clients {
		conns = append(conns, c)
	}
	s.mu.RUnlock()

	var lastErr error
	for _, c := range conns {
		if err := c.WriteMessage(websocket.TextMessage, payload); err != nil {
			lastErr = err
			s.mu.Lock()
			delete(s.clients, c)
			s.mu.Unlock()
			c.Close()
		}
	}
	return lastErr
}

// modTimes snapshots the modification time of each watched path,
// skipping paths that do not (yet) exist.
func modTimes(paths []string) map[string]time.Time {
	out := make(map[string]time.Time, len(paths))
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			continue
		}
		out[p] = info.ModTime()
	}
	return out
}

// changed reports whether any path in after has a modification time
// that differs from (or is newly present versus) before.
func changed(before, after map[string]time.Time) bool {
	for p, t := range after {
		if prev, ok := before[p]; !ok || !prev.Equal(t) {
			return true
		}
	}
	return len(before) != len(after)
}

// Watch polls paths every interval and calls recompile whenever any of
// them changes, broadcasting the outcome. It runs until ctx-equivalent
// stop is closed.
func (s *Server) Watch(paths []string, interval time.Duration, stop <-chan struct{}, recompile func() error) {
	last := modTimes(paths)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			current := modTimes(paths)
			if !changed(last, current) {
				continue
			}
			last = current

			ev := RecompileEvent{Event: "recompiled", OK: true}
			if err := recompile(); err != nil {
				ev.OK = false
				ev.Error = err.Error()
			}
			if err := s.Broadcast(ev); err != nil {
				fmt.Fprintf(os.Stderr, "devserver: broadcast failed: %v\n", err)
			}
		}
	}
}
