package server

import (
	"net/http"
	"strconv"

	"didactax/pkg/domain"
)

type createWorkRequest struct {
	Type      domain.WorkType `json:"type"`
	Title     string          `json:"title"`
	PageCount int             `json:"pageCount"`
}

func (s *Server) handleWorks(w http.ResponseWriter, r *http.Request, user domain.User) {
	switch r.Method {
	case http.MethodGet:
		pageNumber := 1
		if raw := r.URL.Query().Get("page"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 {
				writeError(w, http.StatusBadRequest, "invalid page number")
				return
			}
			pageNumber = n
		}
		page, err := s.app.ListWorks(user.ID, pageNumber)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, page)
	case http.MethodPost:
		var req createWorkRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		work, err := s.app.CreateWork(user.ID, req.Type, req.Title, req.PageCount)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, work)
	default:
		methodNotAllowed(w)
	}
}

type updateWorkRequest struct {
	Title    *string        `json:"title"`
	Content  *string        `json:"content"`
	Metadata map[string]any `json:"metadata"`
}

func (s *Server) handleWorkByID(w http.ResponseWriter, r *http.Request, user domain.User) {
	workID, action, ok := splitResource(r.URL.Path, "/works/")
	if !ok {
		notFound(w, "unknown work path")
		return
	}
	switch action {
	case "":
		s.handleWork(w, r, user, workID)
	case "tree":
		s.handleWorkTree(w, r, user, workID)
	case "save":
		s.handleWorkSave(w, r, user, workID)
	case "quote":
		s.handleWorkQuote(w, r, user, workID)
	case "payment-status":
		s.handleWorkPaymentStatus(w, r, user, workID)
	default:
		notFound(w, "unknown work path")
	}
}

func (s *Server) handleWork(w http.ResponseWriter, r *http.Request, user domain.User, workID uint) {
	switch r.Method {
	case http.MethodGet:
		work, err := s.app.WorkForUser(user.ID, workID)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, work)
	case http.MethodPatch:
		var req updateWorkRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		work, err := s.app.UpdateWork(user.ID, workID, req.Title, req.Content, req.Metadata)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, work)
	case http.MethodDelete:
		if err := s.app.DeleteWork(user.ID, workID); err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleWorkTree(w http.ResponseWriter, r *http.Request, user domain.User, workID uint) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	tree, err := s.app.LoadFileTree(user.ID, workID)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tree)
}

func (s *Server) handleWorkSave(w http.ResponseWriter, r *http.Request, user domain.User, workID uint) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if err := s.app.SaveWork(user.ID, workID); err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "saved"})
}

type quoteResponse struct {
	Pages  int   `json:"pages"`
	Amount int64 `json:"amount"`
}

func (s *Server) handleWorkQuote(w http.ResponseWriter, r *http.Request, user domain.User, workID uint) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	pages, amount, err := s.app.Quote(user.ID, workID)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quoteResponse{Pages: pages, Amount: amount})
}

func (s *Server) handleWorkPaymentStatus(w http.ResponseWriter, r *http.Request, user domain.User, workID uint) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	paid, err := s.app.PaymentStatus(user.ID, workID)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"paid": paid})
}
