package server

import (
	"net/http"

	"didactax/pkg/domain"
)

type createFolderRequest struct {
	WorkID   uint   `json:"workId"`
	ParentID *uint  `json:"parentId"`
	Name     string `json:"name"`
}

func (s *Server) handleFolders(w http.ResponseWriter, r *http.Request, user domain.User) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req createFolderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	folder, err := s.app.CreateFolder(user.ID, req.WorkID, req.ParentID, req.Name)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, folder)
}

type reorderRequest struct {
	WorkID     uint   `json:"workId"`
	FileID     uint   `json:"fileId"`
	ParentID   *uint  `json:"parentId"`
	PageNum    *int   `json:"pageNum"`
	OrderedIDs []uint `json:"orderedIds"`
}

func (s *Server) handleReorderFolders(w http.ResponseWriter, r *http.Request, user domain.User) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req reorderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if _, err := s.app.WorkForUser(user.ID, req.WorkID); err != nil {
		writeAppError(w, err)
		return
	}
	if err := s.app.ReorderFolders(req.WorkID, req.ParentID, req.OrderedIDs); err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "reordered"})
}

type moveRequest struct {
	ParentID *uint `json:"parentId"`
}

type renameRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleFolderByID(w http.ResponseWriter, r *http.Request, user domain.User) {
	folderID, action, ok := splitResource(r.URL.Path, "/folders/")
	if !ok {
		notFound(w, "unknown folder path")
		return
	}
	if _, err := s.app.FolderForUser(user.ID, folderID); err != nil {
		// deletes stay idempotent: a missing folder is already gone
		if r.Method == http.MethodDelete && action == "" && errorIsNotFound(err) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
			return
		}
		writeAppError(w, err)
		return
	}
	switch action {
	case "":
		switch r.Method {
		case http.MethodPatch:
			var req renameRequest
			if err := decodeJSON(r, &req); err != nil {
				writeError(w, http.StatusBadRequest, "invalid JSON body")
				return
			}
			if err := s.app.RenameFolder(folderID, req.Name); err != nil {
				writeAppError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]string{"status": "renamed"})
		case http.MethodDelete:
			if err := s.app.DeleteFolder(folderID); err != nil {
				writeAppError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
		default:
			methodNotAllowed(w)
		}
	case "move":
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}
		var req moveRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if err := s.app.MoveFolder(folderID, req.ParentID); err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "moved"})
	default:
		notFound(w, "unknown folder path")
	}
}

type createFileRequest struct {
	WorkID    uint            `json:"workId"`
	ParentID  *uint           `json:"parentId"`
	Name      string          `json:"name"`
	Type      domain.WorkType `json:"type"`
	PageCount int             `json:"pageCount"`
}

func (s *Server) handleFiles(w http.ResponseWriter, r *http.Request, user domain.User) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req createFileRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	file, err := s.app.CreateFile(user.ID, req.WorkID, req.ParentID, req.Name, req.Type, req.PageCount)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, file)
}

func (s *Server) handleReorderFiles(w http.ResponseWriter, r *http.Request, user domain.User) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req reorderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if _, err := s.app.WorkForUser(user.ID, req.WorkID); err != nil {
		writeAppError(w, err)
		return
	}
	if err := s.app.ReorderFiles(req.WorkID, req.ParentID, req.OrderedIDs); err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "reordered"})
}

func (s *Server) handleFileByID(w http.ResponseWriter, r *http.Request, user domain.User) {
	fileID, action, ok := splitResource(r.URL.Path, "/files/")
	if !ok {
		notFound(w, "unknown file path")
		return
	}
	if _, err := s.app.FileForUser(user.ID, fileID); err != nil {
		if r.Method == http.MethodDelete && action == "" && errorIsNotFound(err) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
			return
		}
		writeAppError(w, err)
		return
	}
	switch action {
	case "":
		switch r.Method {
		case http.MethodPatch:
			var req renameRequest
			if err := decodeJSON(r, &req); err != nil {
				writeError(w, http.StatusBadRequest, "invalid JSON body")
				return
			}
			if err := s.app.RenameFile(fileID, req.Name); err != nil {
				writeAppError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]string{"status": "renamed"})
		case http.MethodDelete:
			if err := s.app.DeleteFile(fileID); err != nil {
				writeAppError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
		default:
			methodNotAllowed(w)
		}
	case "move":
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}
		var req moveRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if err := s.app.MoveFile(fileID, req.ParentID); err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "moved"})
	case "inputs":
		s.handleFileInputs(w, r, fileID)
	case "pages":
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		pages, err := s.app.PageNumbers(fileID)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string][]int{"pages": pages})
	default:
		notFound(w, "unknown file path")
	}
}

type addInputRequest struct {
	PageNum *int             `json:"pageNum"`
	Section string           `json:"section"`
	Label   string           `json:"label"`
	Type    domain.InputType `json:"type"`
}

func (s *Server) handleFileInputs(w http.ResponseWriter, r *http.Request, fileID uint) {
	switch r.Method {
	case http.MethodGet:
		inputs, err := s.app.FileInputs(fileID)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, inputs)
	case http.MethodPost:
		var req addInputRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		input, err := s.app.AddInput(fileID, req.PageNum, req.Section, req.Label, req.Type)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, input)
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleReorderInputs(w http.ResponseWriter, r *http.Request, user domain.User) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req reorderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if _, err := s.app.FileForUser(user.ID, req.FileID); err != nil {
		writeAppError(w, err)
		return
	}
	if err := s.app.ReorderInputs(req.FileID, req.PageNum, req.OrderedIDs); err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "reordered"})
}

type updateInputRequest struct {
	Value *string `json:"value"`
	Label *string `json:"label"`
}

func (s *Server) handleInputByID(w http.ResponseWriter, r *http.Request, user domain.User) {
	inputID, action, ok := splitResource(r.URL.Path, "/inputs/")
	if !ok || action != "" {
		notFound(w, "unknown input path")
		return
	}
	if _, err := s.app.InputForUser(user.ID, inputID); err != nil {
		if r.Method == http.MethodDelete && errorIsNotFound(err) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
			return
		}
		writeAppError(w, err)
		return
	}
	switch r.Method {
	case http.MethodPatch:
		var req updateInputRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if req.Value != nil {
			if err := s.app.UpdateInputValue(inputID, *req.Value); err != nil {
				writeAppError(w, err)
				return
			}
		}
		if req.Label != nil {
			if err := s.app.UpdateInputLabel(inputID, *req.Label); err != nil {
				writeAppError(w, err)
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
	case http.MethodDelete:
		if err := s.app.DeleteInput(inputID); err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	default:
		methodNotAllowed(w)
	}
}
