package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"projecthub/services"
	"projecthub/storage"
)

const maxUploadSize = 32 << 20 // 32MB

type FileHandler struct {
	service *services.FileService
	members *services.MemberService
}

func NewFileHandler(service *services.FileService, members *services.MemberService) *FileHandler {
	return &FileHandler{service: service, members: members}
}

// UploadFile accepts a multipart upload into a project's file area.
func (h *FileHandler) UploadFile(w http.ResponseWriter, r *http.Request) {
	if err := checkRole(r, []string{"admin"}); err != nil {
		http.Error(w, "Access forbidden: insufficient permissions", http.StatusForbidden)
		return
	}

	vars := mux.Vars(r)
	r.ParseMultipartForm(maxUploadSize)
	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "File required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	stored, err := h.service.UploadFile(
		r.Context(),
		vars["projectID"],
		r.FormValue("folderId"),
		header.Filename,
		header.Header.Get("Content-Type"),
		callerEmail(r),
		file,
	)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusCreated, stored)
}

// UploadObject stores avatar images, announcement images, and chat
// attachments. Returns the public URL; the caller embeds it where needed.
func (h *FileHandler) UploadObject(w http.ResponseWriter, r *http.Request) {
	if err := checkRole(r, []string{"admin", "viewer"}); err != nil {
		http.Error(w, "Access forbidden: insufficient permissions", http.StatusForbidden)
		return
	}

	purpose := r.FormValue("purpose")
	switch purpose {
	case storage.PurposeChat, storage.PurposeAnnouncements, storage.PurposeAvatars:
	default:
		http.Error(w, "Invalid purpose", http.StatusBadRequest)
		return
	}
	scope := r.FormValue("scope")
	if scope == "" {
		http.Error(w, "Scope is required", http.StatusBadRequest)
		return
	}

	r.ParseMultipartForm(maxUploadSize)
	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "File required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	url, err := h.service.SaveObject(purpose, scope, header.Filename, file)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	// Avatar uploads also update the caller's membership row.
	if purpose == storage.PurposeAvatars {
		if err := h.members.UpdateAvatar(r.Context(), callerEmail(r), url); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}

	respondJSON(w, http.StatusCreated, map[string]string{"url": url})
}

func (h *FileHandler) ListFiles(w http.ResponseWriter, r *http.Request) {
	if err := checkRole(r, []string{"admin", "viewer"}); err != nil {
		http.Error(w, "Access forbidden: insufficient permissions", http.StatusForbidden)
		return
	}

	vars := mux.Vars(r)
	files, err := h.service.ListFiles(r.Context(), vars["projectID"], r.URL.Query().Get("folderId"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, files)
}

func (h *FileHandler) DeleteFile(w http.ResponseWriter, r *http.Request) {
	if err := checkRole(r, []string{"admin"}); err != nil {
		http.Error(w, "Access forbidden: insufficient permissions", http.StatusForbidden)
		return
	}

	vars := mux.Vars(r)
	if err := h.service.DeleteFile(r.Context(), vars["fileID"]); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "File deleted successfully"})
}

func (h *FileHandler) CreateFolder(w http.ResponseWriter, r *http.Request) {
	if err := checkRole(r, []string{"admin"}); err != nil {
		http.Error(w, "Access forbidden: insufficient permissions", http.StatusForbidden)
		return
	}

	vars := mux.Vars(r)
	var request struct {
		Name     string `json:"name"`
		ParentID string `json:"parentId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	folder, err := h.service.CreateFolder(r.Context(), vars["projectID"], request.Name, request.ParentID, callerEmail(r))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	respondJSON(w, http.StatusCreated, folder)
}

func (h *FileHandler) ListFolders(w http.ResponseWriter, r *http.Request) {
	if err := checkRole(r, []string{"admin", "viewer"}); err != nil {
		http.Error(w, "Access forbidden: insufficient permissions", http.StatusForbidden)
		return
	}

	vars := mux.Vars(r)
	folders, err := h.service.ListFolders(r.Context(), vars["projectID"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, folders)
}

func (h *FileHandler) DeleteFolder(w http.ResponseWriter, r *http.Request) {
	if err := checkRole(r, []string{"admin"}); err != nil {
		http.Error(w, "Access forbidden: insufficient permissions", http.StatusForbidden)
		return
	}

	vars := mux.Vars(r)
	if err := h.service.DeleteFolder(r.Context(), vars["folderID"]); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Folder deleted successfully"})
}
