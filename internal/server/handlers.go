package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"parking-allocator/internal/parking"
)

// Engine is the slice of the allocation engine the HTTP layer depends
// on. *parking.InstrumentedEngine satisfies it.
type Engine interface {
	RegisterSpot(ctx context.Context, id string) error
	Park(ctx context.Context, vehicle parking.Vehicle, now time.Time) (parking.Ticket, error)
	Exit(ctx context.Context, ticketID string, now time.Time) (float64, error)
	Reserve(ctx context.Context, userID string, vehicle parking.Vehicle, start, end time.Time) (parking.Reservation, error)
	ActivateReservation(ctx context.Context, id string, now time.Time) (parking.Reservation, error)
	CompleteReservation(ctx context.Context, id string, now time.Time) (parking.Reservation, error)
	CancelReservation(ctx context.Context, id string, now time.Time) (parking.Reservation, error)
	Status(ctx context.Context) parking.Status
	ActiveTickets() []parking.Ticket
	Reservations() []parking.Reservation
	FindVehicle(plate string) (parking.Ticket, error)
	Spots() []parking.Spot
}

type Handler struct {
	engine   Engine
	validate *validator.Validate
	clock    func() time.Time
}

func NewHandler(engine Engine) *Handler {
	return &Handler{
		engine:   engine,
		validate: validator.New(),
		clock:    time.Now,
	}
}

// statusForError maps core error kinds to HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, parking.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, parking.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, parking.ErrExhausted),
		errors.Is(err, parking.ErrConflict),
		errors.Is(err, parking.ErrAlreadyProcessed),
		errors.Is(err, parking.ErrInvalidState):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) decode(ctx context.Context, w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		WriteError(ctx, w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		WriteError(ctx, w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]any{
		"status":  "healthy",
		"service": "parking-allocator",
		"meta":    extractMeta(r.Context()),
	})
}

func (h *Handler) RegisterSpot(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req RegisterSpotRequest
	if !h.decode(ctx, w, r, &req) {
		return
	}

	if err := h.engine.RegisterSpot(ctx, req.SpotID); err != nil {
		WriteError(ctx, w, statusForError(err), err.Error())
		return
	}
	WriteSuccess(ctx, w, "Spot registered", map[string]any{"spot_id": req.SpotID})
}

func (h *Handler) Park(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req ParkRequest
	if !h.decode(ctx, w, r, &req) {
		return
	}

	class, err := parking.ParseVehicleClass(req.Class)
	if err != nil {
		WriteError(ctx, w, http.StatusBadRequest, err.Error())
		return
	}
	vehicle, err := parking.NewVehicle(req.Plate, class)
	if err != nil {
		WriteError(ctx, w, http.StatusBadRequest, err.Error())
		return
	}

	ticket, err := h.engine.Park(ctx, vehicle, h.clock())
	if err != nil {
		WriteError(ctx, w, statusForError(err), err.Error())
		return
	}
	WriteSuccess(ctx, w, "Vehicle parked", newTicketResponse(ticket))
}

func (h *Handler) Exit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req ExitRequest
	if !h.decode(ctx, w, r, &req) {
		return
	}

	fee, err := h.engine.Exit(ctx, req.TicketID, h.clock())
	if err != nil {
		WriteError(ctx, w, statusForError(err), err.Error())
		return
	}
	WriteSuccess(ctx, w, "Vehicle exited", ExitResponse{TicketID: req.TicketID, Fee: fee})
}

func (h *Handler) Reserve(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req ReserveRequest
	if !h.decode(ctx, w, r, &req) {
		return
	}

	class, err := parking.ParseVehicleClass(req.Class)
	if err != nil {
		WriteError(ctx, w, http.StatusBadRequest, err.Error())
		return
	}
	vehicle, err := parking.NewVehicle(req.Plate, class)
	if err != nil {
		WriteError(ctx, w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.engine.Reserve(ctx, req.UserID, vehicle, req.Start, req.End)
	if err != nil {
		WriteError(ctx, w, statusForError(err), err.Error())
		return
	}
	WriteSuccess(ctx, w, "Reservation confirmed", newReservationResponse(res))
}

func (h *Handler) ActivateReservation(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.engine.ActivateReservation, "Reservation activated")
}

func (h *Handler) CompleteReservation(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.engine.CompleteReservation, "Reservation completed")
}

func (h *Handler) CancelReservation(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.engine.CancelReservation, "Reservation cancelled")
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request,
	fn func(ctx context.Context, id string, now time.Time) (parking.Reservation, error), message string) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")
	if id == "" {
		WriteError(ctx, w, http.StatusBadRequest, "Reservation id is required")
		return
	}

	res, err := fn(ctx, id, h.clock())
	if err != nil {
		WriteError(ctx, w, statusForError(err), err.Error())
		return
	}
	WriteSuccess(ctx, w, message, newReservationResponse(res))
}

func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	st := h.engine.Status(ctx)

	spots := h.engine.Spots()
	slots := make([]SpotStatus, 0, len(spots))
	for _, s := range spots {
		status := SpotStatus{SpotID: s.ID, Occupied: s.Occupied}
		if s.Vehicle != nil {
			status.Plate = s.Vehicle.Plate
		}
		slots = append(slots, status)
	}

	WriteSuccess(ctx, w, "Status retrieved", StatusResponse{
		TotalSpots:         st.TotalSpots,
		OccupiedSpots:      st.OccupiedSpots,
		AvailableSpots:     st.AvailableSpots,
		ActiveTickets:      st.ActiveTickets,
		ActiveReservations: st.ActiveReservations,
		Spots:              slots,
	})
}

func (h *Handler) ListTickets(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tickets := h.engine.ActiveTickets()
	out := make([]TicketResponse, 0, len(tickets))
	for _, t := range tickets {
		out = append(out, newTicketResponse(t))
	}
	WriteSuccess(ctx, w, "Active tickets retrieved", out)
}

func (h *Handler) ListReservations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reservations := h.engine.Reservations()
	out := make([]ReservationResponse, 0, len(reservations))
	for _, res := range reservations {
		out = append(out, newReservationResponse(res))
	}
	WriteSuccess(ctx, w, "Reservations retrieved", out)
}

func (h *Handler) FindVehicle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	plate := chi.URLParam(r, "plate")
	if plate == "" {
		WriteError(ctx, w, http.StatusBadRequest, "License plate is required")
		return
	}

	ticket, err := h.engine.FindVehicle(plate)
	if err != nil {
		WriteError(ctx, w, statusForError(err), err.Error())
		return
	}
	WriteSuccess(ctx, w, "Vehicle found", newTicketResponse(ticket))
}
