package devserver

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
	"github.com/rs/zerolog"

	"github.com/simukka/tabamp/internal/config"
)

const watchDebounce = 300 * time.Millisecond

// Server is the extension devserver.
type Server struct {
	cfg     config.Tool
	log     zerolog.Logger
	hub     *Hub
	started time.Time
	reloads atomic.Int64
}

// New builds a devserver for the configured extension directory.
func New(cfg config.Tool, log zerolog.Logger) *Server {
	return &Server{cfg: cfg, log: log, hub: NewHub(), started: time.Now()}
}

type statusOutput struct {
	Body struct {
		ExtensionDir  string `json:"extensionDir"`
		UptimeSeconds int64  `json:"uptimeSeconds"`
		Clients       int    `json:"clients"`
		Reloads       int64  `json:"reloads"`
	}
}

type reloadOutput struct {
	Body struct {
		Notified int `json:"notified"`
	}
}

// Handler builds the full HTTP surface: the status API, the reload
// websocket and static serving of the extension directory.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	api := humachi.New(r, huma.DefaultConfig("tabamp devserver", "1.0.0"))
	huma.Get(api, "/api/status", func(ctx context.Context, _ *struct{}) (*statusOutput, error) {
		out := &statusOutput{}
		out.Body.ExtensionDir = s.cfg.ExtensionDir
		out.Body.UptimeSeconds = int64(time.Since(s.started).Seconds())
		out.Body.Clients = s.hub.ClientCount()
		out.Body.Reloads = s.reloads.Load()
		return out, nil
	})
	huma.Post(api, "/api/reload", func(ctx context.Context, _ *struct{}) (*reloadOutput, error) {
		out := &reloadOutput{}
		out.Body.Notified = s.broadcastReload()
		return out, nil
	})

	r.Get("/ws", s.handleWS)
	r.Handle("/*", http.FileServer(http.Dir(s.cfg.ExtensionDir)))
	return r
}

// Run serves until ctx is cancelled, watching the extension directory
// for changes in the background.
func (s *Server) Run(ctx context.Context) error {
	go func() {
		err := Watch(ctx, s.cfg.ExtensionDir, watchDebounce, func(paths []string) {
			s.log.Debug().Strs("paths", paths).Msg("extension files changed")
			s.broadcastReload()
		})
		if err != nil && ctx.Err() == nil {
			s.log.Error().Err(err).Msg("file watcher stopped")
		}
	}()

	srv := &http.Server{Addr: s.cfg.BindAddr, Handler: s.Handler()}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.log.Info().Str("addr", s.cfg.BindAddr).Str("dir", s.cfg.ExtensionDir).Msg("devserver listening")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) broadcastReload() int {
	s.reloads.Add(1)
	n := s.hub.ClientCount()
	s.hub.Publish("reload")
	s.log.Info().Int("clients", n).Msg("reload broadcast")
	return n
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, _, _, err := ws.UpgradeHTTP(r, w)
	if err != nil {
		s.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	id, ch := s.hub.Subscribe()
	s.log.Debug().Int64("client", id).Msg("reload client connected")

	// Reader: only there to notice the peer going away.
	go func() {
		defer s.hub.Unsubscribe(id)
		for {
			if _, _, err := wsutil.ReadClientData(conn); err != nil {
				return
			}
		}
	}()

	go func() {
		defer conn.Close()
		for event := range ch {
			if err := wsutil.WriteServerText(conn, []byte(event)); err != nil {
				s.hub.Unsubscribe(id)
				return
			}
		}
	}()
}
