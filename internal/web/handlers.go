package web

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"codeforge/internal/history"
	"codeforge/internal/workflow"
)

type createRunRequest struct {
	Request       string `json:"request"`
	MaxIterations int    `json:"max_iterations,omitempty"`
}

type runResponse struct {
	*workflow.State
	Transcript string `json:"transcript"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleCreateRun executes the workflow synchronously: the pipeline has
// exactly one candidate in flight, so there is nothing to stream.
func (s *Server) handleCreateRun(w http.ResponseWriter, r *http.Request) {
	var req createRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}
	if req.Request == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "request text is required"})
		return
	}

	maxIterations := req.MaxIterations
	if maxIterations <= 0 {
		maxIterations = s.config.MaxIterations
	}

	state, err := s.engine.Run(r.Context(), req.Request, maxIterations)
	if err != nil {
		// Oracle faults abort the run; surface them verbatim.
		s.logger.Error("workflow aborted", zap.Error(err))
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: err.Error()})
		return
	}

	if s.store != nil {
		if err := s.store.SaveRun(state); err != nil {
			s.logger.Error("failed to persist run",
				zap.String("run_id", state.RunID), zap.Error(err))
		}
	}

	writeJSON(w, http.StatusOK, runResponse{State: state, Transcript: state.Transcript()})
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeJSON(w, http.StatusOK, []history.RunSummary{})
		return
	}

	runs, err := s.store.ListRuns(50)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	if runs == nil {
		runs = []history.RunSummary{}
	}
	writeJSON(w, http.StatusOK, runs)
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "history disabled"})
		return
	}

	run, err := s.store.GetRun(chi.URLParam(r, "runID"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(indexHTML)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
