package server

import (
	"net/http"

	"didactax/pkg/domain"
)

type recordPaymentRequest struct {
	WorkID        uint   `json:"workId"`
	Method        string `json:"method"`
	TransactionID string `json:"transactionId"`
}

func (s *Server) handlePayments(w http.ResponseWriter, r *http.Request, user domain.User) {
	switch r.Method {
	case http.MethodGet:
		payments, err := s.app.Payments(user.ID)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, payments)
	case http.MethodPost:
		var req recordPaymentRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		payment, err := s.app.RecordPayment(user.ID, req.WorkID, req.Method, req.TransactionID)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, payment)
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request, user domain.User) {
	switch r.Method {
	case http.MethodGet:
		settings, err := s.app.SettingsForUser(user.ID)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, settings)
	case http.MethodPut:
		var req domain.Settings
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		settings, err := s.app.UpdateSettings(user.ID, req)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, settings)
	default:
		methodNotAllowed(w)
	}
}
