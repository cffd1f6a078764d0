package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"projecthub/services"
)

type WorkHistoryHandler struct {
	service *services.WorkHistoryService
	members *services.MemberService
}

func NewWorkHistoryHandler(service *services.WorkHistoryService, members *services.MemberService) *WorkHistoryHandler {
	return &WorkHistoryHandler{service: service, members: members}
}

func (h *WorkHistoryHandler) AddEntry(w http.ResponseWriter, r *http.Request) {
	var request struct {
		Date    string `json:"date"`
		Time    string `json:"time"`
		Summary string `json:"summary"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	userID, err := h.resolveUserID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	entry, err := h.service.AddEntry(r.Context(), userID, request.Date, request.Time, request.Summary)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	respondJSON(w, http.StatusCreated, entry)
}

func (h *WorkHistoryHandler) EditEntry(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	var request struct {
		Date    string `json:"date"`
		Time    string `json:"time"`
		Summary string `json:"summary"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	userID, err := h.resolveUserID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	entry, err := h.service.EditEntry(r.Context(), vars["entryID"], userID, request.Date, request.Time, request.Summary)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	respondJSON(w, http.StatusOK, entry)
}

func (h *WorkHistoryHandler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	userID, err := h.resolveUserID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	if err := h.service.DeleteEntry(r.Context(), vars["entryID"], userID); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Entry deleted successfully"})
}

// GetEntries returns the caller's own log, newest first.
func (h *WorkHistoryHandler) GetEntries(w http.ResponseWriter, r *http.Request) {
	userID, err := h.resolveUserID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	entries, err := h.service.GetEntriesForUser(r.Context(), userID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, entries)
}

func (h *WorkHistoryHandler) resolveUserID(r *http.Request) (string, error) {
	member, err := h.members.GetMemberByEmail(r.Context(), callerEmail(r))
	if err != nil {
		return "", err
	}
	return member.UserID, nil
}
