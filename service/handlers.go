package service

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/functic/tools"
	"github.com/effective-security/xlog"
)

// HealthResponse is the response of GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

// InvokeResponse is the response of POST /functions/invoke.
type InvokeResponse struct {
	Result string `json:"result"`
}

// ErrorResponse is the error response.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

func (s *Service) handleListFunctions(w http.ResponseWriter, _ *http.Request) {
	defs := s.registry.Definitions()
	writeJSON(w, http.StatusOK, tools.NewPagination(defs, func(d tools.FunctionDefinition) string {
		return d.Name
	}))
}

func (s *Service) handleGetFunction(w http.ResponseWriter, r *http.Request) {
	tool, err := s.registry.Get(r.PathValue("function_name"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Function not found")
		return
	}
	writeJSON(w, http.StatusOK, tool.Definition())
}

func (s *Service) handleInvokeFunction(w http.ResponseWriter, r *http.Request) {
	var call tools.FunctionCall
	if !decodeBody(w, r, &call) {
		return
	}
	if !s.registry.Has(strings.TrimSpace(call.Name)) {
		writeError(w, http.StatusNotFound, "Function not found")
		return
	}

	content, err := s.registry.Call(r.Context(), call)
	if err != nil && content == "" {
		writeCallError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, InvokeResponse{Result: content})
}

func (s *Service) handleToolCall(w http.ResponseWriter, r *http.Request) {
	var call tools.ToolCall
	if !decodeBody(w, r, &call) {
		return
	}
	if !s.registry.Has(strings.TrimSpace(call.Function.Name)) {
		writeError(w, http.StatusNotFound, "Function not found")
		return
	}

	out, err := s.registry.Execute(r.Context(), call)
	if out == nil {
		writeCallError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Service) handleToolCalls(w http.ResponseWriter, r *http.Request) {
	var req tools.SubmitToolOutputs
	if !decodeBody(w, r, &req) {
		return
	}
	for _, call := range req.ToolCalls {
		if !s.registry.Has(strings.TrimSpace(call.Function.Name)) {
			writeError(w, http.StatusNotFound, fmt.Sprintf("Function '%s' not found", call.Function.Name))
			return
		}
	}

	ctx := r.Context()
	if s.scratchpad != nil {
		// the client request ID may repeat, the run ID is unique
		requestID := w.Header().Get(HeaderRequestID)
		ctx = s.scratchpad.StartRun(ctx, newRunID())
		defer func() {
			stats, transcript := s.scratchpad.EndRun(ctx)
			if stats != nil {
				logger.ContextKV(ctx, xlog.DEBUG,
					"run", stats.RunID,
					"request_id", requestID,
					"calls", stats.ToolsCalls,
					"failed", stats.ToolsCallsFailed,
					"duration", stats.Duration.String(),
					"transcript", string(transcript),
				)
			}
		}()
	}

	outputs, err := s.registry.ExecuteAll(ctx, req.ToolCalls)
	if err != nil {
		writeCallError(w, err)
		return
	}
	if outputs == nil {
		outputs = []*tools.ToolOutput{}
	}
	writeJSON(w, http.StatusOK, tools.ToolOutputs{ToolOutputs: outputs})
}

// --- JSON helpers ---

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		writeError(w, http.StatusUnprocessableEntity, "invalid request body: "+err.Error())
		return false
	}
	return true
}

func writeCallError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, tools.ErrToolNotFound):
		writeError(w, http.StatusNotFound, "Function not found")
	case errors.Is(err, tools.ErrInvalidArguments):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, ErrorResponse{Detail: detail})
}
