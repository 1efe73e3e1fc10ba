package api

import "net/http"

type StatusResponse struct {
	Gateway    string `json:"gateway" example:"openai:llama-3.1-8b-instant"`
	Configured bool   `json:"configured"`
	Problem    string `json:"problem,omitempty"`
}

// status reports whether model calls can be made.
// @Summary      Model gateway status
// @Tags         Status
// @Produce      json
// @Success      200  {object}  StatusResponse
// @Router       /api/status [get]
func (h *Handler) status(w http.ResponseWriter, r *http.Request) {
	name, err := h.interviews.GatewayStatus()
	resp := StatusResponse{Gateway: name, Configured: err == nil}
	if err != nil {
		resp.Problem = err.Error()
	}
	respondJSON(w, http.StatusOK, resp)
}
