package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
)

const queryRequiredMessage = "Query parameter is required"

type assistantRequest struct {
	Query json.RawMessage `json:"query"`
}

func (a *App) AssistantQuery(w http.ResponseWriter, r *http.Request) {
	var req assistantRequest
	if err := decode(w, r, &req, false); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", queryRequiredMessage)
		return
	}
	var query string
	if err := json.Unmarshal(req.Query, &query); err != nil || strings.TrimSpace(query) == "" {
		a.error(w, http.StatusBadRequest, "bad_request", queryRequiredMessage)
		return
	}
	reply := a.Assistant.Ask(r.Context(), strings.TrimSpace(query))
	a.json(w, http.StatusOK, map[string]string{"response": reply.Text})
}
