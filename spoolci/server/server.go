// Package server exposes the trigger interface over HTTP: an external
// platform delivers repository events, the server schedules matching
// workflow runs.
package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/vikavorkin/Spoolman/spoolci/executor"
	"github.com/vikavorkin/Spoolman/spoolci/schema"
	"github.com/vikavorkin/Spoolman/spoolci/trigger"
)

type Server struct {
	workflows []*schema.Workflow
	exec      executor.Executor
	logger    *slog.Logger
	router    chi.Router
	runs      sync.WaitGroup
}

func New(workflows []*schema.Workflow, exec executor.Executor, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		workflows: workflows,
		exec:      exec,
		logger:    logger,
	}
	s.setupRouter()
	return s
}

func (s *Server) setupRouter() {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(10 * time.Second))

	r.Get("/healthz", s.handleHealth)
	r.Post("/events", s.handleEvent)

	s.router = r
}

// Handler returns the HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves until the context is cancelled, then drains
// in-flight runs.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	s.logger.Info("listening for events", "addr", addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	s.runs.Wait()
	return nil
}

type eventPayload struct {
	Kind       string `json:"kind"`
	Ref        string `json:"ref"`
	BaseRef    string `json:"base_ref,omitempty"`
	Repository string `json:"repository,omitempty"`
	Commit     string `json:"commit,omitempty"`
}

type eventResponse struct {
	Scheduled []string `json:"scheduled"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleEvent(w http.ResponseWriter, r *http.Request) {
	var payload eventPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "invalid event payload", http.StatusBadRequest)
		return
	}

	kind := trigger.EventKind(payload.Kind)
	if kind != trigger.EventPush && kind != trigger.EventPullRequest {
		http.Error(w, "unknown event kind", http.StatusBadRequest)
		return
	}

	event := trigger.Event{
		Kind:       kind,
		Ref:        payload.Ref,
		BaseRef:    payload.BaseRef,
		Repository: payload.Repository,
		Commit:     payload.Commit,
	}

	resp := eventResponse{Scheduled: []string{}}
	for _, wf := range s.workflows {
		if !trigger.Matches(wf.On, event) {
			continue
		}

		resp.Scheduled = append(resp.Scheduled, wf.Name)
		s.launch(wf, event)
	}

	s.logger.Info("event received",
		"kind", payload.Kind,
		"ref", payload.Ref,
		"base_ref", payload.BaseRef,
		"scheduled", len(resp.Scheduled),
	)

	status := http.StatusOK
	if len(resp.Scheduled) > 0 {
		status = http.StatusAccepted
	}
	writeJSON(w, status, resp)
}

// launch starts a workflow run in the background. Runs are isolated
// from each other, so concurrent events need no coordination.
func (s *Server) launch(wf *schema.Workflow, event trigger.Event) {
	s.runs.Add(1)
	go func() {
		defer s.runs.Done()

		results, err := s.exec.ExecuteWorkflow(context.Background(), wf, event, nil)
		if err != nil {
			s.logger.Error("workflow run failed", "workflow", wf.Name, "error", err)
			return
		}
		for _, result := range results {
			s.logger.Info("workflow run completed",
				"workflow", wf.Name,
				"job", result.Job,
				"run_id", result.RunID,
				"artifacts", len(result.Artifacts),
			)
		}
	}()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
