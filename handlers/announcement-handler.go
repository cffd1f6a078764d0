package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"projecthub/services"
)

type AnnouncementHandler struct {
	service *services.AnnouncementService
	members *services.MemberService
}

func NewAnnouncementHandler(service *services.AnnouncementService, members *services.MemberService) *AnnouncementHandler {
	return &AnnouncementHandler{service: service, members: members}
}

func (h *AnnouncementHandler) CreateAnnouncement(w http.ResponseWriter, r *http.Request) {
	if err := checkRole(r, []string{"admin"}); err != nil {
		http.Error(w, "Access forbidden: insufficient permissions", http.StatusForbidden)
		return
	}

	var request struct {
		Title    string `json:"title"`
		Body     string `json:"body"`
		ImageURL string `json:"imageUrl"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	announcement, err := h.service.CreateAnnouncement(r.Context(), request.Title, request.Body, request.ImageURL, callerEmail(r))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	respondJSON(w, http.StatusCreated, announcement)
}

func (h *AnnouncementHandler) UpdateAnnouncement(w http.ResponseWriter, r *http.Request) {
	if err := checkRole(r, []string{"admin"}); err != nil {
		http.Error(w, "Access forbidden: insufficient permissions", http.StatusForbidden)
		return
	}

	vars := mux.Vars(r)
	var request struct {
		Title    string `json:"title"`
		Body     string `json:"body"`
		ImageURL string `json:"imageUrl"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	announcement, err := h.service.UpdateAnnouncement(r.Context(), vars["announcementID"], request.Title, request.Body, request.ImageURL)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	respondJSON(w, http.StatusOK, announcement)
}

func (h *AnnouncementHandler) DeleteAnnouncement(w http.ResponseWriter, r *http.Request) {
	if err := checkRole(r, []string{"admin"}); err != nil {
		http.Error(w, "Access forbidden: insufficient permissions", http.StatusForbidden)
		return
	}

	vars := mux.Vars(r)
	if err := h.service.DeleteAnnouncement(r.Context(), vars["announcementID"]); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Announcement deleted successfully"})
}

func (h *AnnouncementHandler) ListAnnouncements(w http.ResponseWriter, r *http.Request) {
	if err := checkRole(r, []string{"admin", "viewer"}); err != nil {
		http.Error(w, "Access forbidden: insufficient permissions", http.StatusForbidden)
		return
	}

	announcements, err := h.service.ListAnnouncements(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, announcements)
}

func (h *AnnouncementHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	if err := checkRole(r, []string{"admin", "viewer"}); err != nil {
		http.Error(w, "Access forbidden: insufficient permissions", http.StatusForbidden)
		return
	}

	vars := mux.Vars(r)
	var request struct {
		Body string `json:"body"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	comment, err := h.service.AddComment(r.Context(), vars["announcementID"], callerEmail(r), request.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	respondJSON(w, http.StatusCreated, comment)
}

func (h *AnnouncementHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	if err := checkRole(r, []string{"admin", "viewer"}); err != nil {
		http.Error(w, "Access forbidden: insufficient permissions", http.StatusForbidden)
		return
	}

	vars := mux.Vars(r)
	comments, err := h.service.ListComments(r.Context(), vars["announcementID"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, comments)
}

func (h *AnnouncementHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	if err := checkRole(r, []string{"admin", "viewer"}); err != nil {
		http.Error(w, "Access forbidden: insufficient permissions", http.StatusForbidden)
		return
	}

	vars := mux.Vars(r)
	if err := h.service.DeleteComment(r.Context(), vars["commentID"], callerEmail(r), isAdmin(r)); err != nil {
		http.Error(w, err.Error(), http.StatusForbidden)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Comment deleted successfully"})
}

func (h *AnnouncementHandler) ToggleReaction(w http.ResponseWriter, r *http.Request) {
	if err := checkRole(r, []string{"admin", "viewer"}); err != nil {
		http.Error(w, "Access forbidden: insufficient permissions", http.StatusForbidden)
		return
	}

	vars := mux.Vars(r)
	var request struct {
		Emoji string `json:"emoji"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	member, err := h.members.GetMemberByEmail(r.Context(), callerEmail(r))
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	added, err := h.service.ToggleReaction(r.Context(), vars["announcementID"], member.UserID, request.Emoji)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"added": added})
}

func (h *AnnouncementHandler) ListReactions(w http.ResponseWriter, r *http.Request) {
	if err := checkRole(r, []string{"admin", "viewer"}); err != nil {
		http.Error(w, "Access forbidden: insufficient permissions", http.StatusForbidden)
		return
	}

	vars := mux.Vars(r)
	reactions, err := h.service.ListReactions(r.Context(), vars["announcementID"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, reactions)
}
