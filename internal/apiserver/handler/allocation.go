package handler

import (
	"encoding/json"
	"net/http"

	"github.com/cloudalloc/cloudalloc/internal/allocator"
)

type AllocationHandler struct {
	engine *allocator.Engine
}

func NewAllocationHandler(engine *allocator.Engine) *AllocationHandler {
	return &AllocationHandler{engine: engine}
}

// Allocate handles POST /api/v1/allocations. Domain failures (no regions,
// no match) come back as 200 with a reason; only malformed requests get 4xx.
func (h *AllocationHandler) Allocate(w http.ResponseWriter, r *http.Request) {
	var req allocator.AllocationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	if req.UserIP == "" {
		req.UserIP = clientIP(r)
	}

	result := h.engine.Allocate(r.Context(), req)
	if result.Reason == allocator.ReasonInvalidInput {
		writeJSON(w, http.StatusBadRequest, result)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Pair handles POST /api/v1/pairs.
func (h *AllocationHandler) Pair(w http.ResponseWriter, r *http.Request) {
	var req allocator.PairRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	if req.UserIP == "" {
		req.UserIP = clientIP(r)
	}

	result := h.engine.Pair(r.Context(), req)
	if result.Reason == allocator.ReasonInvalidInput {
		writeJSON(w, http.StatusBadRequest, result)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
