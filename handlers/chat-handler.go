package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"projecthub/models"
	"projecthub/realtime"
	"projecthub/repositories"
	"projecthub/services"
)

type ChatHandler struct {
	repo    *repositories.ChatRepo
	members *services.MemberService
	hub     *realtime.Hub
}

func NewChatHandler(repo *repositories.ChatRepo, members *services.MemberService, hub *realtime.Hub) *ChatHandler {
	return &ChatHandler{repo: repo, members: members, hub: hub}
}

// SendMessage stores a chat message and pushes it to connected clients.
func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	if err := checkRole(r, []string{"admin", "viewer"}); err != nil {
		http.Error(w, "Access forbidden: insufficient permissions", http.StatusForbidden)
		return
	}

	vars := mux.Vars(r)
	var request struct {
		Content       string `json:"content"`
		AttachmentURL string `json:"attachmentUrl"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if request.Content == "" && request.AttachmentURL == "" {
		http.Error(w, "Message content is required", http.StatusBadRequest)
		return
	}

	member, err := h.members.GetMemberByEmail(r.Context(), callerEmail(r))
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	message := &models.ChatMessage{
		ProjectID:     vars["projectID"],
		UserID:        member.UserID,
		Content:       request.Content,
		AttachmentURL: request.AttachmentURL,
	}
	if err := h.repo.CreateMessage(message); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	h.hub.Push("chat_message", message.ProjectID, message)
	respondJSON(w, http.StatusCreated, message)
}

// GetMessages returns the newest messages for a project, capped by ?limit.
func (h *ChatHandler) GetMessages(w http.ResponseWriter, r *http.Request) {
	if err := checkRole(r, []string{"admin", "viewer"}); err != nil {
		http.Error(w, "Access forbidden: insufficient permissions", http.StatusForbidden)
		return
	}

	vars := mux.Vars(r)
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	messages, err := h.repo.GetMessagesByProject(vars["projectID"], limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, messages)
}
