package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"pingboard/internal/poller"
	"pingboard/internal/render"
	"pingboard/internal/widget"
)

const (
	sessionWriteTimeout = 5 * time.Second
	sessionReadLimit    = 4096

	msgEndpoint    = "endpoint"
	msgRows        = "rows"
	msgStatus      = "status"
	msgLastFetch   = "last_fetch"
	msgAutoRefresh = "auto_refresh"
	msgRefresh     = "refresh"
)

var sessionUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		host := strings.ToLower(strings.TrimSpace(r.Host))
		originHost := strings.ToLower(strings.TrimSpace(u.Host))
		return host == originHost
	},
}

// sessionMessage is the JSON envelope exchanged with the page in both directions.
type sessionMessage struct {
	Type    string `json:"type"`
	Text    string `json:"text,omitempty"`
	HTML    string `json:"html,omitempty"`
	Class   string `json:"class,omitempty"`
	Enabled *bool  `json:"enabled,omitempty"`
}

// session is the View of one page load. It forwards every widget update to
// the browser over a websocket.
type session struct {
	conn   *websocket.Conn
	logger *slog.Logger
	fail   context.CancelFunc

	mu     sync.Mutex
	broken bool
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	if s.closing {
		s.mu.Unlock()
		http.Error(w, "shutting down", http.StatusServiceUnavailable)
		return
	}
	s.sessions.Add(1)
	s.mu.Unlock()
	defer s.sessions.Done()

	endpoint := s.cfg.ResolveEndpoint(r.URL.RawQuery)
	locale := render.LocaleFromAcceptLanguage(r.Header.Get("Accept-Language"), s.location)

	conn, err := sessionUpgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(sessionReadLimit)

	ctx, cancel := context.WithCancel(s.ctx)
	defer cancel()

	logger := s.logger.With("session_id", uuid.NewString())
	view := &session{conn: conn, logger: logger, fail: cancel}

	ctrl := widget.New(
		poller.New(endpoint, s.cfg.RequestTimeout.Duration),
		render.New(locale),
		view,
		widget.Options{
			Interval:    s.cfg.RefreshInterval.Duration,
			AutoRefresh: s.cfg.AutoRefresh,
			Scheduler:   s.scheduler,
			Logger:      logger,
		},
	)

	logger.Info("session opened", "endpoint", endpoint, "locale", locale.Tag.String(), "remote", r.RemoteAddr)
	defer logger.Info("session closed")

	autoRefresh := s.cfg.AutoRefresh
	view.send(sessionMessage{Type: msgAutoRefresh, Enabled: &autoRefresh})
	go view.readLoop(ctrl)

	ctrl.Run(ctx)
}

// readLoop applies user actions until the connection fails.
func (v *session) readLoop(ctrl *widget.Controller) {
	defer v.fail()
	for {
		_, data, err := v.conn.ReadMessage()
		if err != nil {
			return
		}
		var msg sessionMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			v.logger.Debug("ignoring malformed message", "error", err)
			continue
		}
		switch msg.Type {
		case msgRefresh:
			ctrl.Refresh()
		case msgAutoRefresh:
			if msg.Enabled == nil {
				continue
			}
			ctrl.SetAutoRefresh(*msg.Enabled)
		default:
			v.logger.Debug("ignoring unknown message", "type", msg.Type)
		}
	}
}

func (v *session) SetEndpoint(url string) {
	v.send(sessionMessage{Type: msgEndpoint, Text: url})
}

func (v *session) SetRows(table render.Table) {
	html, err := table.HTML()
	if err != nil {
		v.logger.Error("render rows", "error", err)
		return
	}
	v.send(sessionMessage{Type: msgRows, HTML: string(html)})
}

func (v *session) SetStatus(label, class string) {
	v.send(sessionMessage{Type: msgStatus, Text: label, Class: class})
}

func (v *session) SetLastFetch(text string) {
	v.send(sessionMessage{Type: msgLastFetch, Text: text})
}

func (v *session) send(msg sessionMessage) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.broken {
		return
	}
	_ = v.conn.SetWriteDeadline(time.Now().Add(sessionWriteTimeout))
	if err := v.conn.WriteJSON(msg); err != nil {
		v.broken = true
		v.logger.Debug("websocket write failed", "error", err)
		v.fail()
	}
}
