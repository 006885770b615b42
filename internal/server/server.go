// Package server exposes the pet engine over a local HTTP JSON API and
// streams engine events to websocket clients.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"sweatpet/internal/engine"
	"sweatpet/internal/pet"
)

// maxImportSize bounds an uploaded export document
const maxImportSize = 1 << 20

type Server struct {
	engine   *engine.Engine
	hub      *Hub
	log      *zap.Logger
	upgrader websocket.Upgrader
}

func New(eng *engine.Engine, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		engine: eng,
		hub:    NewHub(log),
		log:    log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// Hub returns the websocket hub fed by engine events
func (s *Server) Hub() *Hub {
	return s.hub
}

// Handler returns the routed API
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/pet", s.handlePet)
	mux.HandleFunc("POST /api/steps", s.handleSteps)
	mux.HandleFunc("POST /api/steps/reset-today", s.handleResetToday)
	mux.HandleFunc("POST /api/care/{action}", s.handleCare)
	mux.HandleFunc("GET /api/achievements", s.handleAchievements)
	mux.HandleFunc("GET /api/activity", s.handleActivity)
	mux.HandleFunc("GET /api/export", s.handleExport)
	mux.HandleFunc("POST /api/import", s.handleImport)
	mux.HandleFunc("POST /api/reset", s.handleReset)
	mux.HandleFunc("GET /ws", s.handleWS)
	return Chain(mux, WithRequestID, WithRecover(s.log), WithAccessLog(s.log), WithSameOrigin(s.log))
}

// Run serves on ln until ctx ends. Engine events are forwarded to the hub
// while it runs.
func (s *Server) Run(ctx context.Context, ln net.Listener) error {
	unsubscribe := s.engine.Subscribe(s.hub.BroadcastEvent)
	defer unsubscribe()

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.hub.Run(ctx)
		return nil
	})
	g.Go(func() error {
		s.log.Info("listening", zap.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

type petResponse struct {
	Pet      pet.Pet      `json:"pet"`
	Stage    int          `json:"stage"`
	Progress pet.Progress `json:"progress"`
	Status   string       `json:"status"`
	Unsaved  bool         `json:"unsaved,omitempty"`
}

func (s *Server) petView() petResponse {
	snap := s.engine.Snapshot()
	return petResponse{
		Pet:      snap.Pet,
		Stage:    snap.Stage(),
		Progress: snap.Progress(),
		Status:   pet.GetStatusWithLabel(snap.Pet),
		Unsaved:  s.engine.Dirty(),
	}
}

func (s *Server) handlePet(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.petView())
}

type stepsRequest struct {
	Steps int `json:"steps"`
}

type stepsResponse struct {
	Intake pet.IntakeResult `json:"intake"`
	petResponse
}

func (s *Server) handleSteps(w http.ResponseWriter, r *http.Request) {
	if !isJSON(r) {
		writeErr(w, http.StatusUnsupportedMediaType, "content type must be application/json")
		return
	}
	var req stepsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeErr(w, http.StatusBadRequest, "steps must be a whole number")
		return
	}
	if req.Steps <= 0 {
		writeErr(w, http.StatusBadRequest, "steps must be positive")
		return
	}
	if req.Steps > pet.MaxCounter {
		writeErr(w, http.StatusBadRequest, fmt.Sprintf("steps must be at most %d", pet.MaxCounter))
		return
	}

	result, err := s.engine.AddSteps(r.Context(), req.Steps)
	if err != nil {
		s.writeEngineErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stepsResponse{Intake: result, petResponse: s.petView()})
}

func (s *Server) handleResetToday(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.ResetStepsToday(r.Context()); err != nil {
		s.writeEngineErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.petView())
}

func (s *Server) handleCare(w http.ResponseWriter, r *http.Request) {
	action, err := pet.ParseCareAction(r.PathValue("action"))
	if err != nil {
		writeErr(w, http.StatusNotFound, err.Error())
		return
	}
	if err := s.engine.Care(r.Context(), action); err != nil {
		s.writeEngineErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": action.Message(),
		"pet":     s.petView(),
	})
}

type achievementView struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Icon     string `json:"icon"`
	Unlocked bool   `json:"unlocked"`
}

func (s *Server) handleAchievements(w http.ResponseWriter, r *http.Request) {
	unlocked := s.engine.Snapshot().Achievements
	catalog := pet.Catalog()
	views := make([]achievementView, 0, len(catalog))
	for _, a := range catalog {
		views = append(views, achievementView{ID: a.ID, Name: a.Name, Icon: a.Icon, Unlocked: unlocked.Has(a.ID)})
	}
	writeJSON(w, http.StatusOK, views)
}

type dayView struct {
	Day   string `json:"day"`
	Steps int    `json:"steps"`
}

func (s *Server) handleActivity(w http.ResponseWriter, r *http.Request) {
	activity := s.engine.Snapshot().Activity
	days := make([]dayView, 0, len(activity))
	for i, steps := range activity {
		days = append(days, dayView{Day: pet.DayNames[i], Steps: steps})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"days":  days,
		"total": activity.Total(),
		"max":   activity.Max(),
	})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	doc, err := s.engine.Export(r.Context())
	if err != nil {
		s.writeEngineErr(w, err)
		return
	}
	data, err := doc.Encode()
	if err != nil {
		s.writeEngineErr(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", engine.ExportFileName))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	if !isJSON(r) {
		writeErr(w, http.StatusUnsupportedMediaType, "content type must be application/json")
		return
	}
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxImportSize))
	if err != nil {
		writeErr(w, http.StatusRequestEntityTooLarge, "document too large")
		return
	}

	if err := s.engine.Import(r.Context(), data); err != nil {
		var importErr *engine.ImportError
		if errors.As(err, &importErr) {
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"error":   importErr.Error(),
				"section": importErr.Section,
			})
			return
		}
		s.writeEngineErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.petView())
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.ResetAll(r.Context()); err != nil {
		s.writeEngineErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.petView())
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	s.hub.Attach(conn)
}

func (s *Server) writeEngineErr(w http.ResponseWriter, err error) {
	var saveErr *engine.SaveError
	if errors.As(err, &saveErr) {
		writeErr(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	if errors.Is(err, pet.ErrCounterOverflow) {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	s.log.Error("request failed", zap.Error(err))
	writeErr(w, http.StatusInternalServerError, err.Error())
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]any{"error": msg})
}

func isJSON(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "application/json"
}

func decodeJSON(w http.ResponseWriter, r *http.Request, out any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxImportSize))
	return dec.Decode(out)
}
