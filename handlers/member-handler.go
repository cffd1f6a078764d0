package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"projecthub/models"
	"projecthub/services"
)

type MemberHandler struct {
	service *services.MemberService
}

func NewMemberHandler(service *services.MemberService) *MemberHandler {
	return &MemberHandler{service: service}
}

// Login exchanges credentials for a JWT. Not behind the auth middleware.
func (h *MemberHandler) Login(w http.ResponseWriter, r *http.Request) {
	var request struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	token, member, err := h.service.Login(r.Context(), request.Email, request.Password)
	if err != nil {
		respondError(w, http.StatusUnauthorized, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"token": token, "member": member})
}

// ProvisionMember is the privileged create-team-member function. Admin only,
// structured JSON errors.
func (h *MemberHandler) ProvisionMember(w http.ResponseWriter, r *http.Request) {
	if err := checkRole(r, []string{"admin"}); err != nil {
		respondError(w, http.StatusForbidden, "admin role required")
		return
	}

	var request struct {
		Name  string      `json:"name"`
		Email string      `json:"email"`
		Role  models.Role `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	member, err := h.service.ProvisionMember(r.Context(), request.Name, request.Email, request.Role)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmailTaken):
			respondError(w, http.StatusBadRequest, err.Error())
		default:
			respondError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	respondJSON(w, http.StatusCreated, member)
}

// RemoveMember is the privileged delete-team-member function. Refuses the
// caller's own row before any deletion happens.
func (h *MemberHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	if err := checkRole(r, []string{"admin"}); err != nil {
		respondError(w, http.StatusForbidden, "admin role required")
		return
	}

	vars := mux.Vars(r)
	memberID := vars["memberID"]

	err := h.service.RemoveMember(r.Context(), memberID, callerEmail(r))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrMemberNotFound):
			respondError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, services.ErrSelfRemoval):
			respondError(w, http.StatusBadRequest, err.Error())
		default:
			respondError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "Member removed successfully"})
}

func (h *MemberHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	if err := checkRole(r, []string{"admin", "viewer"}); err != nil {
		http.Error(w, "Access forbidden: insufficient permissions", http.StatusForbidden)
		return
	}

	members, err := h.service.ListMembers(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, members)
}

func (h *MemberHandler) ChangeRole(w http.ResponseWriter, r *http.Request) {
	if err := checkRole(r, []string{"admin"}); err != nil {
		respondError(w, http.StatusForbidden, "admin role required")
		return
	}

	vars := mux.Vars(r)
	memberID := vars["memberID"]

	var request struct {
		Role models.Role `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	err := h.service.ChangeRole(r.Context(), memberID, request.Role, callerEmail(r))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrMemberNotFound):
			respondError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, services.ErrSelfRoleChange):
			respondError(w, http.StatusBadRequest, err.Error())
		default:
			respondError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "Role updated successfully"})
}

// GetProfile returns the caller's own membership row.
func (h *MemberHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	member, err := h.service.GetMemberByEmail(r.Context(), callerEmail(r))
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	respondJSON(w, http.StatusOK, member)
}

// ChangePassword is self-service for any signed-in member.
func (h *MemberHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var request struct {
		OldPassword string `json:"oldPassword"`
		NewPassword string `json:"newPassword"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	err := h.service.ChangePassword(r.Context(), callerEmail(r), request.OldPassword, request.NewPassword)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "Password changed successfully"})
}
