package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/quickfetch/quickfetch/internal/errors"
	"github.com/quickfetch/quickfetch/internal/httputil"
	"github.com/quickfetch/quickfetch/internal/service"
	"github.com/quickfetch/quickfetch/web"
)

// MobileHandler serves the endpoints the phone talks to after scanning
// the QR code.
type MobileHandler struct {
	pairing *service.PairingService
}

func NewMobileHandler(pairing *service.PairingService) *MobileHandler {
	return &MobileHandler{pairing: pairing}
}

// Register attaches the mobile endpoints to the router. They live at the
// root because the join URL printed in the QR code points at /mobile.
func (h *MobileHandler) Register(r chi.Router) {
	r.Get("/mobile", h.Page)
	r.Post("/submit", h.Submit)
	r.Get("/poll", h.Poll)
	r.Post("/reset", h.Reset)
}

func (h *MobileHandler) Page(w http.ResponseWriter, r *http.Request) {
	web.Page(w, "mobile.html")
}

type submitRequest struct {
	Content string `json:"content"`
}

func (h *MobileHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, apperrors.InvalidInput("body", "malformed JSON"))
		return
	}

	if err := h.pairing.Submit(r.Context(), req.Content, r.RemoteAddr); err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, struct{}{})
}

func (h *MobileHandler) Poll(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, h.pairing.Poll())
}

func (h *MobileHandler) Reset(w http.ResponseWriter, r *http.Request) {
	h.pairing.Cancel()
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}
