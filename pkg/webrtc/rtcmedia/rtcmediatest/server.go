package rtcmediatest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/LingByte/LingStreamX/pkg/protocol"
	"github.com/gorilla/websocket"
)

// Reply writes one frame back to the client. Strings and byte slices are
// sent verbatim, anything else is JSON encoded.
type Reply func(v interface{}) error

// Handler scripts the server side of a conversation. It is called for every
// request in arrival order.
type Handler func(req *protocol.Request, reply Reply)

// Server is a scripted signaling endpoint on an httptest server.
type Server struct {
	*httptest.Server

	handler  Handler
	upgrader websocket.Upgrader

	mu       sync.Mutex
	requests []protocol.Request
	conns    map[*websocket.Conn]struct{}
	open     int
	accepted int
}

func NewServer(handler Handler) *Server {
	s := &Server{handler: handler, conns: make(map[*websocket.Conn]struct{})}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serveWS))
	return s
}

// URL returns the ws:// endpoint.
func (s *Server) URL() string {
	return "ws" + strings.TrimPrefix(s.Server.URL, "http")
}

func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	s.mu.Lock()
	s.conns[conn] = struct{}{}
	s.open++
	s.accepted++
	s.mu.Unlock()

	defer func() {
		conn.Close()
		s.mu.Lock()
		delete(s.conns, conn)
		s.open--
		s.mu.Unlock()
	}()

	var writeMu sync.Mutex
	reply := func(v interface{}) error {
		var data []byte
		switch m := v.(type) {
		case string:
			data = []byte(m)
		case []byte:
			data = m
		default:
			encoded, err := json.Marshal(v)
			if err != nil {
				return err
			}
			data = encoded
		}
		writeMu.Lock()
		defer writeMu.Unlock()
		return conn.WriteMessage(websocket.TextMessage, data)
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var req protocol.Request
		if err := json.Unmarshal(data, &req); err != nil {
			continue
		}
		s.mu.Lock()
		s.requests = append(s.requests, req)
		s.mu.Unlock()
		if s.handler != nil {
			s.handler(&req, reply)
		}
	}
}

// DropConnections closes every upgraded socket without a close frame.
func (s *Server) DropConnections() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.conns {
		conn.Close()
	}
}

// Requests returns every request received so far.
func (s *Server) Requests() []protocol.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]protocol.Request(nil), s.requests...)
}

// Commands returns the command of every request received so far.
func (s *Server) Commands() []string {
	var out []string
	for _, r := range s.Requests() {
		out = append(out, r.Command)
	}
	return out
}

// OpenConnections counts sockets the client has not closed yet.
func (s *Server) OpenConnections() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open
}

// Accepted counts every socket ever upgraded.
func (s *Server) Accepted() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accepted
}

// Status builds a bare response frame.
func Status(code int) map[string]interface{} {
	return map[string]interface{}{"status": code}
}
