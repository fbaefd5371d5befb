// Package broadcast streams composed frames to browser previews over
// websockets.
package broadcast

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/scheerer/arcade-button-fx/internal/fx"
	"github.com/scheerer/arcade-button-fx/internal/logging"
)

var logger = logging.New("broadcast")

const (
	Path         = "/frames"
	writeTimeout = time.Second
)

type ButtonColor struct {
	ID    string `json:"id"`
	Color string `json:"color"`
}

// FrameMessage is the JSON document sent for every frame.
type FrameMessage struct {
	NowMs   float64       `json:"now_ms"`
	Buttons []ButtonColor `json:"buttons"`
}

type subscriber struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

func (s *subscriber) write(data []byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := s.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return err
	}
	return s.conn.WriteMessage(websocket.TextMessage, data)
}

// Hub is a light service whose lights are the connected browsers.
type Hub struct {
	addr     string
	clock    func() float64
	upgrader websocket.Upgrader

	mu          sync.Mutex
	subscribers map[*subscriber]struct{}
	message     FrameMessage
	server      *http.Server
}

func NewHub(addr string, buttons []string, clock func() float64) *Hub {
	message := FrameMessage{Buttons: make([]ButtonColor, len(buttons))}
	for i, id := range buttons {
		message.Buttons[i] = ButtonColor{ID: id, Color: fx.Black.Hex()}
	}

	return &Hub{
		addr:  addr,
		clock: clock,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		subscribers: make(map[*subscriber]struct{}),
		message:     message,
	}
}

// Start serves Path on the configured address until ctx is done or Stop is
// called.
func (h *Hub) Start(ctx context.Context) {
	mux := http.NewServeMux()
	mux.HandleFunc(Path, h.Handle)
	server := &http.Server{Addr: h.addr, Handler: mux}

	h.mu.Lock()
	h.server = server
	h.mu.Unlock()

	go func() {
		<-ctx.Done()
		h.Stop()
	}()

	logger.With(zap.String("addr", h.addr), zap.String("path", Path)).Info("Serving frame stream")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.With(zap.Error(err)).Error("Frame stream server failed")
	}
}

func (h *Hub) Stop() {
	h.mu.Lock()
	server := h.server
	subs := make([]*subscriber, 0, len(h.subscribers))
	for s := range h.subscribers {
		subs = append(subs, s)
	}
	h.mu.Unlock()

	if server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			logger.With(zap.Error(err)).Warn("Failed to shut down frame stream server")
		}
	}
	for _, s := range subs {
		s.conn.Close()
	}
}

// LightCount is the number of connected viewers.
func (h *Hub) LightCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers)
}

// Handle upgrades the request and streams frames until the viewer goes away.
func (h *Hub) Handle(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.With(zap.Error(err)).Warn("Websocket upgrade failed")
		return
	}

	sub := &subscriber{conn: conn}
	h.mu.Lock()
	h.subscribers[sub] = struct{}{}
	count := len(h.subscribers)
	h.mu.Unlock()
	logger.With(zap.String("remote", r.RemoteAddr), zap.Int("viewers", count)).Info("Viewer connected")

	defer h.drop(sub)

	// Viewers only listen; reading detects the close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) drop(sub *subscriber) {
	h.mu.Lock()
	_, ok := h.subscribers[sub]
	delete(h.subscribers, sub)
	count := len(h.subscribers)
	h.mu.Unlock()

	if ok {
		sub.conn.Close()
		logger.With(zap.Int("viewers", count)).Info("Viewer disconnected")
	}
}

func (h *Hub) SetFrame(_ context.Context, frame []fx.RGB) {
	h.mu.Lock()
	h.message.NowMs = h.clock()
	for i := range h.message.Buttons {
		c := fx.Black
		if i < len(frame) {
			c = frame[i]
		}
		h.message.Buttons[i].Color = c.Hex()
	}
	data, err := json.Marshal(h.message)
	subs := make([]*subscriber, 0, len(h.subscribers))
	for s := range h.subscribers {
		subs = append(subs, s)
	}
	h.mu.Unlock()

	if err != nil {
		logger.With(zap.Error(err)).Error("Failed to encode frame")
		return
	}

	for _, s := range subs {
		if err := s.write(data); err != nil {
			logger.With(zap.Error(err)).Debug("Dropping viewer after failed write")
			h.drop(s)
		}
	}
}
