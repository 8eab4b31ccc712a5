package debug

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/zeusync/experience/internal/core/observability/log"
	"github.com/zeusync/experience/internal/render"
	"github.com/zeusync/experience/pkg/generic"
)

const (
	writeWait       = time.Second
	snapshotWait    = 2 * time.Second
	telemetryPeriod = 250 * time.Millisecond
	sendQueue       = 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

var buffers = generic.NewPool(func() *bytes.Buffer { return new(bytes.Buffer) }, (*bytes.Buffer).Reset)

// message is what travels over /ws in both directions.
type message struct {
	Type   string             `json:"type"`
	Params []Param            `json:"params,omitempty"`
	Frame  *render.FrameStats `json:"frame,omitempty"`
	Folder string             `json:"folder,omitempty"`
	Name   string             `json:"name,omitempty"`
	Value  float64            `json:"value,omitempty"`
	Error  string             `json:"error,omitempty"`
}

// client owns one connection. Only writePump writes to conn.
type client struct {
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
	once sync.Once
}

func newClient(conn *websocket.Conn) *client {
	return &client{
		conn: conn,
		send: make(chan []byte, sendQueue),
		done: make(chan struct{}),
	}
}

// enqueue never blocks: a message for a stopped client or a full queue is
// dropped and false is returned.
func (c *client) enqueue(m message) bool {
	buf := buffers.Get()
	defer buffers.Put(buf)
	if err := json.NewEncoder(buf).Encode(m); err != nil {
		return false
	}
	data := bytes.Clone(buf.Bytes())

	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

func (c *client) writePump(onError func(error)) {
	for {
		select {
		case <-c.done:
			return
		case data := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				onError(err)
				return
			}
		}
	}
}

func (c *client) stop() {
	c.once.Do(func() {
		close(c.done)
		if c.conn != nil {
			_ = c.conn.Close()
		}
	})
}

type server struct {
	http *http.Server

	mu        sync.Mutex
	clients   map[*client]struct{}
	lastFrame time.Time
}

// Handler serves /params and /ws.
func (p *Panel) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/params", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), snapshotWait)
		defer cancel()
		params, err := p.snapshot(ctx)
		if err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(params)
	})
	mux.HandleFunc("/ws", p.handleWebSocket)
	return mux
}

// Serve starts the live channel on addr and returns the bound address.
func (p *Panel) Serve(addr string) (string, error) {
	if !p.active {
		return "", ErrInactive
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return "", err
	}
	srv := p.ensureServer()
	srv.http = &http.Server{Handler: p.Handler(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			p.logger.Error("debug server stopped", log.Error(err))
		}
	}()
	p.logger.Info("debug panel listening", log.String("addr", ln.Addr().String()))
	return ln.Addr().String(), nil
}

func (p *Panel) ensureServer() *server {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.server == nil {
		p.server = &server{clients: make(map[*client]struct{})}
	}
	return p.server
}

// PublishFrame queues render stats for connected clients, at most a few times
// per second. It runs on the frame thread and never waits on a connection.
func (p *Panel) PublishFrame(stats render.FrameStats) {
	p.mu.Lock()
	srv := p.server
	p.mu.Unlock()
	if srv == nil {
		return
	}

	now := time.Now()
	srv.mu.Lock()
	if now.Sub(srv.lastFrame) < telemetryPeriod {
		srv.mu.Unlock()
		return
	}
	srv.lastFrame = now
	clients := make([]*client, 0, len(srv.clients))
	for c := range srv.clients {
		clients = append(clients, c)
	}
	srv.mu.Unlock()

	for _, c := range clients {
		if !c.enqueue(message{Type: "frame", Frame: &stats}) {
			p.logger.Debug("frame dropped for slow debug client")
		}
	}
}

func (p *Panel) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if !p.active || p.Destroyed() {
		http.Error(w, ErrInactive.Error(), http.StatusServiceUnavailable)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), snapshotWait)
	params, err := p.snapshot(ctx)
	cancel()
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		p.logger.Warn("websocket upgrade failed", log.Error(err))
		return
	}

	srv := p.ensureServer()
	c := newClient(conn)
	c.enqueue(message{Type: "params", Params: params})
	go c.writePump(func(err error) {
		p.logger.Debug("drop debug client", log.Error(err))
		srv.drop(c)
	})

	srv.mu.Lock()
	srv.clients[c] = struct{}{}
	srv.mu.Unlock()
	defer srv.drop(c)

	for {
		var in message
		if err = conn.ReadJSON(&in); err != nil {
			return
		}
		if in.Type != "set" {
			c.enqueue(message{Type: "error", Error: "unsupported message type " + in.Type})
			continue
		}
		folder, name, value := in.Folder, in.Name, in.Value
		p.sched.Post(func() {
			v, err := p.Set(folder, name, value)
			reply := message{Type: "ack", Folder: folder, Name: name, Value: v}
			if err != nil {
				reply = message{Type: "error", Folder: folder, Name: name, Error: err.Error()}
			}
			c.enqueue(reply)
		})
	}
}

func (s *server) drop(c *client) {
	s.mu.Lock()
	delete(s.clients, c)
	s.mu.Unlock()
	c.stop()
}

func (s *server) close() {
	if s.http != nil {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = s.http.Shutdown(ctx)
	}
	s.mu.Lock()
	clients := s.clients
	s.clients = make(map[*client]struct{})
	s.mu.Unlock()
	for c := range clients {
		c.stop()
	}
}
