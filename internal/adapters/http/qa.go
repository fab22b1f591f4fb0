package httpadapter

import (
	"encoding/json"
	"net/http"
	"time"

	"docclassifier/internal/core/domain"
)

func (rt *Router) askQuestion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	var req struct {
		DocumentID string `json:"document_id"`
		Question   string `json:"question"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	start := time.Now()
	answer, err := rt.qa.Ask(r.Context(), req.DocumentID, req.Question)
	if rt.serverMetrics != nil {
		rt.serverMetrics.RecordQARequest("api", "ask", time.Since(start), err)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, answer)
}

func (rt *Router) chatAboutDocument(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	var req struct {
		DocumentID string               `json:"document_id"`
		Message    string               `json:"message"`
		History    []domain.ChatMessage `json:"conversation_history"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	start := time.Now()
	reply, err := rt.qa.Chat(r.Context(), req.DocumentID, req.Message, req.History)
	if rt.serverMetrics != nil {
		rt.serverMetrics.RecordQARequest("api", "chat", time.Since(start), err)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reply)
}
