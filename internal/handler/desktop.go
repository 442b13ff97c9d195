package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/quickfetch/quickfetch/internal/errors"
	"github.com/quickfetch/quickfetch/internal/httputil"
	"github.com/quickfetch/quickfetch/internal/model"
	"github.com/quickfetch/quickfetch/internal/netutil"
	"github.com/quickfetch/quickfetch/internal/pin"
	"github.com/quickfetch/quickfetch/internal/service"
	"github.com/quickfetch/quickfetch/web"
)

// DesktopHandler serves the local /api surface consumed by the desktop
// page and the headless fetch client.
type DesktopHandler struct {
	pairing *service.PairingService
	fields  *service.FieldService
	pins    *service.PinService
	machine *pin.Machine
}

func NewDesktopHandler(
	pairing *service.PairingService,
	fields *service.FieldService,
	pins *service.PinService,
	machine *pin.Machine,
) *DesktopHandler {
	return &DesktopHandler{pairing: pairing, fields: fields, pins: pins, machine: machine}
}

func (h *DesktopHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/interfaces", h.Interfaces)
	r.Post("/qr", h.GenerateQR)
	r.Post("/session/cancel", h.CancelSession)
	r.Post("/session/deliver", h.Deliver)

	r.Get("/fields", h.ListFields)
	r.Post("/fields", h.SaveField)
	r.Delete("/fields/{fieldID}", h.DeleteField)

	r.Get("/pin/exists", h.PinExists)
	r.Post("/pin/begin", h.PinBegin)
	r.Post("/pin/entry", h.PinEntry)
	r.Post("/pin/cancel", h.PinCancel)
	r.Post("/pin/verify", h.PinVerify)

	r.Post("/reset-app", h.ResetApp)

	return r
}

func (h *DesktopHandler) Index(w http.ResponseWriter, r *http.Request) {
	web.Page(w, "index.html")
}

func (h *DesktopHandler) Interfaces(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, netutil.Interfaces())
}

type generateQRRequest struct {
	TargetID string `json:"targetId"`
	Address  string `json:"address"`
}

func (h *DesktopHandler) GenerateQR(w http.ResponseWriter, r *http.Request) {
	var req generateQRRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, apperrors.InvalidInput("body", "malformed JSON"))
		return
	}

	payload, err := h.pairing.GenerateQR(r.Context(), req.TargetID, req.Address)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, payload)
}

func (h *DesktopHandler) CancelSession(w http.ResponseWriter, r *http.Request) {
	h.pairing.Cancel()
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

func (h *DesktopHandler) Deliver(w http.ResponseWriter, r *http.Request) {
	delivery, err := h.pairing.Deliver(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, delivery)
}

func (h *DesktopHandler) ListFields(w http.ResponseWriter, r *http.Request) {
	fields, err := h.fields.List(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fields)
}

func (h *DesktopHandler) SaveField(w http.ResponseWriter, r *http.Request) {
	var params model.SaveFieldParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		httputil.WriteError(w, apperrors.InvalidInput("body", "malformed JSON"))
		return
	}

	field, err := h.fields.Save(r.Context(), params)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, field)
}

func (h *DesktopHandler) DeleteField(w http.ResponseWriter, r *http.Request) {
	if err := h.fields.Delete(r.Context(), chi.URLParam(r, "fieldID")); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, struct{}{})
}

func (h *DesktopHandler) PinExists(w http.ResponseWriter, r *http.Request) {
	exists, err := h.pins.Exists(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]bool{"exists": exists})
}

type pinBeginRequest struct {
	FieldID string `json:"fieldId"`
	Action  string `json:"action"`
}

func (h *DesktopHandler) PinBegin(w http.ResponseWriter, r *http.Request) {
	var req pinBeginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, apperrors.InvalidInput("body", "malformed JSON"))
		return
	}
	if req.FieldID == "" {
		httputil.WriteError(w, apperrors.MissingRequired("fieldId"))
		return
	}

	action := pin.Action(req.Action)
	if action != pin.ActionProtect && action != pin.ActionUnprotect {
		httputil.WriteError(w, apperrors.InvalidInput("action", "must be protect or unprotect"))
		return
	}

	mode, err := h.machine.Begin(r.Context(), req.FieldID, action)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]pin.Mode{"mode": mode})
}

type pinEntryRequest struct {
	Pin string `json:"pin"`
}

func (h *DesktopHandler) PinEntry(w http.ResponseWriter, r *http.Request) {
	var req pinEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, apperrors.InvalidInput("body", "malformed JSON"))
		return
	}

	outcome, err := h.machine.Enter(r.Context(), req.Pin)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, outcome)
}

func (h *DesktopHandler) PinCancel(w http.ResponseWriter, r *http.Request) {
	h.machine.Cancel()
	httputil.WriteJSON(w, http.StatusOK, struct{}{})
}

func (h *DesktopHandler) PinVerify(w http.ResponseWriter, r *http.Request) {
	var req pinEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, apperrors.InvalidInput("body", "malformed JSON"))
		return
	}

	if !pin.ValidEntry(req.Pin) {
		httputil.WriteError(w, apperrors.InvalidInput("pin", "must be exactly 4 digits"))
		return
	}

	ok, err := h.pins.Verify(r.Context(), req.Pin)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if !ok {
		httputil.WriteError(w, apperrors.PinMismatch())
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]bool{"valid": true})
}

func (h *DesktopHandler) ResetApp(w http.ResponseWriter, r *http.Request) {
	h.pairing.Cancel()
	h.machine.Cancel()

	if err := h.fields.ResetAll(r.Context()); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}
