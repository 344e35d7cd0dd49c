package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sanonone/trustsum/internal/batch"
	"github.com/sanonone/trustsum/pkg/dataset"
	"github.com/sanonone/trustsum/pkg/engine"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 32 << 20

func (s *Server) registerHTTPHandlers(mux *http.ServeMux) {
	mux.HandleFunc("POST /summarize", s.handleSummarize)
	mux.HandleFunc("POST /runs", s.handleStartRun)
	mux.HandleFunc("GET /runs/{id}", s.handleGetRun)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	s.writeHTTPResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSummarize(w http.ResponseWriter, r *http.Request) {
	params := s.Engine.Options().Params
	req := SummarizeRequest{Parameters: &params}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		s.writeHTTPError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	if req.Parameters == nil {
		// "parameters": null resets the pointer.
		req.Parameters = &params
	}

	texts := req.Texts
	if req.Text != "" {
		texts = append([]string{req.Text}, texts...)
	}
	if len(texts) == 0 {
		s.writeHTTPError(w, http.StatusBadRequest, "text or texts is required")
		return
	}
	name := req.Name
	if name == "" {
		name = "request"
	}

	eng := s.Engine
	if *req.Parameters != s.Engine.Options().Params {
		var err error
		eng, err = s.Engine.WithParams(*req.Parameters)
		if err != nil {
			s.writeHTTPError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	res, err := eng.Summarize(r.Context(), &dataset.Document{
		Name:      name,
		Texts:     texts,
		Reference: req.Reference,
	})
	if err != nil {
		s.writeHTTPError(w, statusFor(err), err.Error())
		return
	}
	s.writeHTTPResponse(w, http.StatusOK, res)
}

func (s *Server) handleStartRun(w http.ResponseWriter, r *http.Request) {
	if s.Runner == nil {
		s.writeHTTPError(w, http.StatusNotImplemented, "batch runs are not configured")
		return
	}
	var req RunRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
			s.writeHTTPError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
			return
		}
	}
	sel := batch.Selection{Files: req.Files, Exclude: req.Exclude}
	files, err := s.Runner.Files(sel)
	if err != nil {
		s.writeHTTPError(w, http.StatusBadRequest, err.Error())
		return
	}

	task := s.taskManager.NewTask()
	task.Start(len(files))
	runner := s.Runner.WithProgress(func(batch.DocumentReport) { task.Advance() })

	go func() {
		report, err := runner.RunFiles(s.baseCtx, files)
		task.Finish(report, err)
	}()

	s.writeHTTPResponse(w, http.StatusAccepted, task.Snapshot())
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	task, ok := s.taskManager.GetTask(r.PathValue("id"))
	if !ok {
		s.writeHTTPError(w, http.StatusNotFound, "run not found")
		return
	}
	s.writeHTTPResponse(w, http.StatusOK, task.Snapshot())
}

// statusFor maps pipeline errors to HTTP status codes.
func statusFor(err error) int {
	switch engine.ErrorKind(err) {
	case "insufficient_data", "empty_graph", "empty_filtered_graph", "no_root":
		return http.StatusUnprocessableEntity
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return http.StatusRequestTimeout
	}
	return http.StatusInternalServerError
}

func (s *Server) writeHTTPResponse(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

func (s *Server) writeHTTPError(w http.ResponseWriter, statusCode int, message string) {
	s.writeHTTPResponse(w, statusCode, map[string]string{"error": message})
}
