// Package hub fans signal emissions out to WebSocket clients.
//
// A Hub owns a Signal[[]byte] and registers a single context-bound slot
// (the context handle is the hub itself) that writes every emitted
// payload to all connected WebSocket clients. Payloads enter the hub over
// HTTP (POST /emit), from connected clients (any received WebSocket
// message is re-emitted), or in-process via Emit. Delivery stays
// synchronous: slots run on the emitting goroutine before Emit returns.
//
// The signal itself is not safe for concurrent use, so the hub serializes
// every registry operation behind its own mutex.
package hub

import (
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/sigslot-dev/sigslot/pkg/sigslot"
)

const (
	// DefaultWriteTimeout bounds a single WebSocket write.
	DefaultWriteTimeout = 10 * time.Second

	// DefaultMaxPayloadBytes bounds the body of POST /emit.
	DefaultMaxPayloadBytes = 1 << 20
)

// Emitter is the emission entry point the hub drives. It is satisfied by
// *sigslot.Signal[[]byte] and by instrumentation wrappers around it.
type Emitter interface {
	Emit(v []byte)
}

// Config configures a Hub.
type Config struct {
	// Logger is used for structured logging. Defaults to slog.Default().
	Logger *slog.Logger

	// WriteTimeout bounds each WebSocket write.
	WriteTimeout time.Duration

	// MaxPayloadBytes bounds the POST /emit request body.
	MaxPayloadBytes int64

	// CheckOrigin overrides the WebSocket origin check.
	// Defaults to accepting all origins.
	CheckOrigin func(r *http.Request) bool
}

// Option configures a Hub.
type Option func(*Config)

// WithLogger sets the hub's logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) {
		c.Logger = l
	}
}

// WithWriteTimeout sets the per-write WebSocket deadline.
func WithWriteTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.WriteTimeout = d
	}
}

// WithMaxPayloadBytes sets the POST /emit body limit.
func WithMaxPayloadBytes(n int64) Option {
	return func(c *Config) {
		c.MaxPayloadBytes = n
	}
}

// WithCheckOrigin sets the WebSocket origin check.
func WithCheckOrigin(fn func(r *http.Request) bool) Option {
	return func(c *Config) {
		c.CheckOrigin = fn
	}
}

// Hub broadcasts emitted payloads to WebSocket clients and in-process
// observers.
type Hub struct {
	logger       *slog.Logger
	writeTimeout time.Duration
	maxPayload   int64
	upgrader     websocket.Upgrader

	// sigMu serializes all operations on the signal, including Emit.
	sigMu  sync.Mutex
	signal *sigslot.Signal[[]byte]
	emit   Emitter

	// clientMu guards the client set independently of sigMu, so the
	// broadcast slot can run while Emit holds sigMu.
	clientMu sync.Mutex
	clients  map[*websocket.Conn]struct{}
	closed   bool
}

// New creates a hub with its broadcast slot already connected.
func New(opts ...Option) *Hub {
	config := Config{
		WriteTimeout:    DefaultWriteTimeout,
		MaxPayloadBytes: DefaultMaxPayloadBytes,
	}
	for _, opt := range opts {
		opt(&config)
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.CheckOrigin == nil {
		config.CheckOrigin = func(*http.Request) bool { return true }
	}

	h := &Hub{
		logger:       config.Logger,
		writeTimeout: config.WriteTimeout,
		maxPayload:   config.MaxPayloadBytes,
		upgrader: websocket.Upgrader{
			CheckOrigin: config.CheckOrigin,
		},
		signal:  sigslot.New[[]byte](sigslot.WithName("hub")),
		clients: make(map[*websocket.Conn]struct{}),
	}
	h.emit = h.signal
	h.signal.ConnectBound(broadcast, h)
	return h
}

// broadcast is the hub's single context-bound slot. The context handle it
// was connected with is the hub itself.
func broadcast(ctx any, msg []byte) {
	ctx.(*Hub).writeAll(msg)
}

// Signal returns the hub's underlying registry, for wrapping with
// instrumentation. Do not operate on it directly while the hub is
// serving; use Emit, Notify, and StopNotify instead.
func (h *Hub) Signal() *sigslot.Signal[[]byte] {
	return h.signal
}

// SetEmitter replaces the hub's emission entry point, typically with an
// instrumented wrapper around Signal(). Call it before the hub starts
// serving.
func (h *Hub) SetEmitter(e Emitter) {
	if e != nil {
		h.emit = e
	}
}

// Emit broadcasts a payload to every connected client and observer.
func (h *Hub) Emit(msg []byte) {
	h.sigMu.Lock()
	defer h.sigMu.Unlock()
	h.emit.Emit(msg)
}

// Notify connects an in-process observer. Observers run synchronously on
// the emitting goroutine, before the WebSocket broadcast. The usual slot
// identity rules apply: connecting the same function twice is a no-op.
func (h *Hub) Notify(fn func(msg []byte)) {
	h.sigMu.Lock()
	defer h.sigMu.Unlock()
	h.signal.Connect(fn)
}

// StopNotify disconnects an observer added with Notify.
func (h *Hub) StopNotify(fn func(msg []byte)) {
	h.sigMu.Lock()
	defer h.sigMu.Unlock()
	h.signal.Disconnect(fn)
}

// ClientCount returns the number of connected WebSocket clients.
func (h *Hub) ClientCount() int {
	h.clientMu.Lock()
	defer h.clientMu.Unlock()
	return len(h.clients)
}

// Routes returns the hub's HTTP surface:
//
//	GET  /ws    upgrade to WebSocket and join the broadcast
//	POST /emit  emit the request body as a payload
func (h *Hub) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/ws", h.handleWS)
	r.Post("/emit", h.handleEmit)
	return r
}

// Close disconnects every slot and closes every client connection. The
// hub accepts no new clients afterwards.
func (h *Hub) Close() {
	h.clientMu.Lock()
	h.closed = true
	for conn := range h.clients {
		conn.Close()
	}
	clear(h.clients)
	h.clientMu.Unlock()

	h.sigMu.Lock()
	h.signal.DisconnectAll()
	h.sigMu.Unlock()
}

func (h *Hub) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	if !h.addClient(conn) {
		conn.Close()
		return
	}
	h.logger.Debug("client connected", "remote", conn.RemoteAddr())

	defer func() {
		h.removeClient(conn)
		conn.Close()
		h.logger.Debug("client disconnected", "remote", conn.RemoteAddr())
	}()

	// Read loop: every client message is re-emitted to the hub.
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				h.logger.Error("read error", "error", err)
			}
			return
		}
		h.Emit(msg)
	}
}

func (h *Hub) handleEmit(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxPayload))
	if err != nil {
		http.Error(w, "payload too large or unreadable", http.StatusRequestEntityTooLarge)
		return
	}

	h.Emit(body)
	w.WriteHeader(http.StatusAccepted)
}

func (h *Hub) addClient(conn *websocket.Conn) bool {
	h.clientMu.Lock()
	defer h.clientMu.Unlock()
	if h.closed {
		return false
	}
	h.clients[conn] = struct{}{}
	return true
}

func (h *Hub) removeClient(conn *websocket.Conn) {
	h.clientMu.Lock()
	defer h.clientMu.Unlock()
	delete(h.clients, conn)
}

// writeAll delivers one payload to every client, dropping clients whose
// writes fail.
func (h *Hub) writeAll(msg []byte) {
	h.clientMu.Lock()
	defer h.clientMu.Unlock()

	var failed []*websocket.Conn
	for conn := range h.clients {
		conn.SetWriteDeadline(time.Now().Add(h.writeTimeout))
		if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			h.logger.Error("write error", "remote", conn.RemoteAddr(), "error", err)
			failed = append(failed, conn)
		}
	}
	for _, conn := range failed {
		delete(h.clients, conn)
		conn.Close()
	}
}
