package scanner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	pongWait   = 60 * time.Second
	writeWait  = 5 * time.Second
	pingPeriod = 30 * time.Second
)

// scanMessage is the JSON frame a scanner bridge sends. Plain text frames
// are taken as the code itself.
type scanMessage struct {
	Type string `json:"type"`
	Code string `json:"code"`
}

type event struct {
	code string
}

// WSSource reads decoded codes from a websocket scanner bridge.
type WSSource struct {
	conn   *websocket.Conn
	logger *slog.Logger

	events    chan event
	done      chan struct{}
	ended     chan struct{}
	endErr    error
	closeOnce sync.Once
	writeMu   sync.Mutex
}

// Dial connects to a scanner bridge at url (ws:// or wss://).
func Dial(ctx context.Context, url string, logger *slog.Logger) (*WSSource, error) {
	if logger == nil {
		logger = slog.Default()
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial scanner %s: %w", url, err)
	}

	s := &WSSource{
		conn:   conn,
		logger: logger,
		events: make(chan event),
		done:   make(chan struct{}),
		ended:  make(chan struct{}),
	}

	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	go s.readLoop()
	go s.pingLoop()
	return s, nil
}

// DialOpener returns an Opener dialing url for every scan session.
func DialOpener(url string, logger *slog.Logger) Opener {
	return func(ctx context.Context) (Source, error) {
		return Dial(ctx, url, logger)
	}
}

// Next returns the next code. Once the bridge hangs up every call returns
// the same terminal error, io.EOF for a normal close.
func (s *WSSource) Next(ctx context.Context) (string, error) {
	select {
	case <-s.done:
		return "", ErrClosed
	default:
	}
	select {
	case ev := <-s.events:
		return ev.code, nil
	case <-s.ended:
		select {
		case <-s.done:
			return "", ErrClosed
		default:
		}
		return "", s.endErr
	case <-s.done:
		return "", ErrClosed
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Close sends a close frame and drops the connection. Safe to call twice.
func (s *WSSource) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)
		s.writeMu.Lock()
		_ = s.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(writeWait))
		s.writeMu.Unlock()
		err = s.conn.Close()
	})
	return err
}

func (s *WSSource) readLoop() {
	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				err = io.EOF
			} else if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				s.logger.Warn("scanner connection dropped", "error", err)
			}
			s.endErr = err
			close(s.ended)
			return
		}

		code, ok := decode(raw)
		if !ok {
			continue
		}
		if !s.emit(event{code: code}) {
			return
		}
	}
}

func (s *WSSource) emit(ev event) bool {
	select {
	case s.events <- ev:
		return true
	case <-s.done:
		return false
	}
}

func (s *WSSource) pingLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.writeMu.Lock()
			err := s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
			s.writeMu.Unlock()
			if err != nil && !errors.Is(err, websocket.ErrCloseSent) {
				return
			}
		}
	}
}

// decode accepts {"type":"scan","code":"..."} or a bare text code. Other
// JSON frames (status, heartbeat) are skipped.
func decode(raw []byte) (string, bool) {
	text := strings.TrimSpace(string(raw))
	if text == "" {
		return "", false
	}
	if strings.HasPrefix(text, "{") {
		var msg scanMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			return "", false
		}
		if msg.Type != "" && msg.Type != "scan" {
			return "", false
		}
		code := strings.TrimSpace(msg.Code)
		return code, code != ""
	}
	return text, true
}
