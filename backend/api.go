package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type Server struct {
	ctx      context.Context
	registry *GameRegistry
	hub      *Hub
	config   *ConfigStore
	logger   *zap.Logger
	upgrader websocket.Upgrader
}

func NewServer(ctx context.Context, registry *GameRegistry, hub *Hub, config *ConfigStore, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		ctx:      ctx,
		registry: registry,
		hub:      hub,
		config:   config,
		logger:   logger,
		upgrader: websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
	}
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)

	r.Get("/api/ping", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})
	r.Get("/api/catalog", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, SkillCatalog())
	})
	r.Get("/api/config", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, s.config.Get())
	})
	r.Post("/api/config", s.handleUpdateConfig)

	r.Route("/api/games", func(r chi.Router) {
		r.Post("/", s.handleCreateGame)
		r.Get("/", s.handleListGames)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.withGame(func(w http.ResponseWriter, r *http.Request, gc *GameController) {
				writeJSON(w, http.StatusOK, statePayload(gc))
			}))
			r.Delete("/", s.handleDeleteGame)
			r.Post("/start", s.withGame(s.handleStart))
			r.Post("/reset", s.withGame(s.handleReset))
			r.Post("/move", s.withGame(s.handleMove))
			r.Post("/skill", s.withGame(s.handleSkill))
			r.Post("/counter", s.withGame(s.handleCounter))
			r.Post("/skip-counter", s.withGame(s.handleSkipCounter))
			r.Post("/pass", s.withGame(s.handlePass))
			r.Post("/target", s.withGame(s.handleSelectTarget))
			r.Delete("/target", s.withGame(s.handleClearTarget))
			r.Get("/hint", s.withGame(s.handleHint))
		})
	})

	r.Get("/ws/games/{id}", s.withGame(s.serveWS))
	return r
}

type gameHandler func(w http.ResponseWriter, r *http.Request, gc *GameController)

func (s *Server) withGame(next gameHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gc, err := s.registry.Get(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, err)
			return
		}
		next(w, r, gc)
	}
}

func (s *Server) handleUpdateConfig(w http.ResponseWriter, r *http.Request) {
	config := s.config.Get()
	if err := json.NewDecoder(r.Body).Decode(&config); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	if err := s.config.Update(config); err != nil {
		writeError(w, err)
		return
	}
	s.logger.Info("config updated")
	writeJSON(w, http.StatusOK, s.config.Get())
}

func (s *Server) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	var payload createGameRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
			return
		}
	}
	settings, err := SettingsForMode(payload.Mode)
	if err != nil {
		writeError(w, err)
		return
	}
	gc := s.registry.Create(settings)
	if payload.Start {
		gc.Start()
	}
	writeJSON(w, http.StatusCreated, statePayload(gc))
}

func (s *Server) handleListGames(w http.ResponseWriter, r *http.Request) {
	games := s.registry.List()
	summaries := make([]gameSummary, 0, len(games))
	for _, gc := range games {
		summaries = append(summaries, summaryOf(gc))
	}
	writeJSON(w, http.StatusOK, summaries)
}

func (s *Server) handleDeleteGame(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.registry.Delete(id); err != nil {
		writeError(w, err)
		return
	}
	s.hub.PublishDeleted(id)
	writeJSON(w, http.StatusOK, map[string]any{"deleted": true, "id": id})
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request, gc *GameController) {
	gc.Start()
	s.respondState(w, gc)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request, gc *GameController) {
	var payload resetRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
			return
		}
	}
	var settings *GameSettings
	if payload.Mode != nil {
		next, err := SettingsForMode(*payload.Mode)
		if err != nil {
			writeError(w, err)
			return
		}
		settings = &next
	}
	gc.Reset(settings)
	s.respondState(w, gc)
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request, gc *GameController) {
	var payload moveRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	s.respondAction(w, gc, func() (GameState, error) {
		return gc.ApplyHumanMove(Move{X: payload.X, Y: payload.Y})
	})
}

func (s *Server) handleSkill(w http.ResponseWriter, r *http.Request, gc *GameController) {
	var payload skillRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	player, err := parsePlayer(payload.Player)
	if err != nil {
		writeError(w, err)
		return
	}
	s.respondAction(w, gc, func() (GameState, error) {
		return gc.UseHumanSkill(player, payload.Skill, payload.Target)
	})
}

func (s *Server) handleCounter(w http.ResponseWriter, r *http.Request, gc *GameController) {
	var payload counterRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	s.respondAction(w, gc, func() (GameState, error) {
		return gc.HumanCounter(payload.Counter, payload.Target)
	})
}

func (s *Server) handleSkipCounter(w http.ResponseWriter, r *http.Request, gc *GameController) {
	s.respondAction(w, gc, gc.HumanSkipCounter)
}

func (s *Server) handlePass(w http.ResponseWriter, r *http.Request, gc *GameController) {
	s.respondAction(w, gc, gc.PassFrozenTurn)
}

func (s *Server) handleSelectTarget(w http.ResponseWriter, r *http.Request, gc *GameController) {
	var payload targetRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	player, err := parsePlayer(payload.Player)
	if err != nil {
		writeError(w, err)
		return
	}
	s.respondAction(w, gc, func() (GameState, error) {
		return gc.SelectSkillTarget(player, payload.Skill)
	})
}

func (s *Server) handleClearTarget(w http.ResponseWriter, r *http.Request, gc *GameController) {
	gc.ClearSkillTarget()
	s.respondState(w, gc)
}

func (s *Server) handleHint(w http.ResponseWriter, r *http.Request, gc *GameController) {
	move, ok := gc.Hint()
	resp := hintResponse{Available: ok}
	if ok {
		resp.Move = &move
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) respondAction(w http.ResponseWriter, gc *GameController, action func() (GameState, error)) {
	if _, err := action(); err != nil {
		writeError(w, err)
		return
	}
	s.respondState(w, gc)
}

func (s *Server) respondState(w http.ResponseWriter, gc *GameController) {
	payload := statePayload(gc)
	s.hub.PublishState(gc.ID(), payload)
	writeJSON(w, http.StatusOK, payload)
}

func (s *Server) serveWS(w http.ResponseWriter, r *http.Request, gc *GameController) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	client := &Client{hub: s.hub, gameID: gc.ID(), send: make(chan []byte, 16)}
	s.hub.Register(client)
	client.sendJSON(wsMessage{Type: "state", Payload: mustMarshal(statePayload(gc))})

	go func() {
		defer conn.Close()
		if err := pumpGameUpdates(s.ctx, conn, client.send, wsIdlePingInterval); err != nil {
			s.logger.Debug("websocket writer stopped", zap.String("game_id", gc.ID()), zap.Error(err))
		}
	}()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			s.hub.Unregister(client)
			return
		}
		var msg wsMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			continue
		}
		switch msg.Type {
		case "request_state":
			client.sendJSON(wsMessage{Type: "state", Payload: mustMarshal(statePayload(gc))})
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusBadRequest
	switch {
	case errors.Is(err, ErrGameNotFound):
		status = http.StatusNotFound
	case errors.Is(err, ErrNotHumanTurn), errors.Is(err, ErrCounterPending):
		status = http.StatusConflict
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Debug("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("elapsed", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
		})
	}
}
