package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/trace"

	"parking-allocator/internal/parking"
)

type Meta struct {
	TraceID   string `json:"trace_id,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Meta    *Meta  `json:"meta,omitempty"`
}

type RegisterSpotRequest struct {
	SpotID string `json:"spot_id" validate:"required"`
}

type ParkRequest struct {
	Plate string `json:"plate" validate:"required"`
	Class string `json:"class" validate:"required"`
}

type ExitRequest struct {
	TicketID string `json:"ticket_id" validate:"required"`
}

type ReserveRequest struct {
	UserID string    `json:"user_id" validate:"required"`
	Plate  string    `json:"plate" validate:"required"`
	Class  string    `json:"class" validate:"required"`
	Start  time.Time `json:"start" validate:"required"`
	End    time.Time `json:"end" validate:"required"`
}

type TicketResponse struct {
	TicketID  string     `json:"ticket_id"`
	Plate     string     `json:"plate"`
	Class     string     `json:"class"`
	SpotID    string     `json:"spot_id"`
	EntryTime time.Time  `json:"entry_time"`
	ExitTime  *time.Time `json:"exit_time,omitempty"`
	Processed bool       `json:"processed"`
}

type ExitResponse struct {
	TicketID string  `json:"ticket_id"`
	Fee      float64 `json:"fee"`
}

type ReservationResponse struct {
	ReservationID string    `json:"reservation_id"`
	UserID        string    `json:"user_id"`
	Plate         string    `json:"plate"`
	Class         string    `json:"class"`
	Start         time.Time `json:"start"`
	End           time.Time `json:"end"`
	SpotID        string    `json:"spot_id,omitempty"`
	Status        string    `json:"status"`
	PaidAmount    float64   `json:"paid_amount"`
}

type SpotStatus struct {
	SpotID   string `json:"spot_id"`
	Occupied bool   `json:"occupied"`
	Plate    string `json:"plate,omitempty"`
}

type StatusResponse struct {
	TotalSpots         int          `json:"total_spots"`
	OccupiedSpots      int          `json:"occupied_spots"`
	AvailableSpots     int          `json:"available_spots"`
	ActiveTickets      int          `json:"active_tickets"`
	ActiveReservations int          `json:"active_reservations"`
	Spots              []SpotStatus `json:"spots"`
}

func newTicketResponse(t parking.Ticket) TicketResponse {
	resp := TicketResponse{
		TicketID:  t.ID,
		Plate:     t.Vehicle.Plate,
		Class:     t.Vehicle.Class.String(),
		SpotID:    t.SpotID,
		EntryTime: t.EntryTime,
		Processed: t.Processed,
	}
	if !t.ExitTime.IsZero() {
		exit := t.ExitTime
		resp.ExitTime = &exit
	}
	return resp
}

func newReservationResponse(r parking.Reservation) ReservationResponse {
	return ReservationResponse{
		ReservationID: r.ID,
		UserID:        r.UserID,
		Plate:         r.Vehicle.Plate,
		Class:         r.Vehicle.Class.String(),
		Start:         r.Start,
		End:           r.End,
		SpotID:        r.SpotID,
		Status:        r.Status.String(),
		PaidAmount:    r.PaidAmount,
	}
}

func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func extractMeta(ctx context.Context) *Meta {
	meta := &Meta{}

	span := trace.SpanFromContext(ctx)
	if span.SpanContext().HasTraceID() {
		meta.TraceID = span.SpanContext().TraceID().String()
	}

	if reqID, ok := ctx.Value(RequestIDKey).(string); ok {
		meta.RequestID = reqID
	}

	return meta
}

func WriteSuccess(ctx context.Context, w http.ResponseWriter, message string, data any) {
	WriteJSON(w, http.StatusOK, Response{
		Success: true,
		Message: message,
		Data:    data,
		Meta:    extractMeta(ctx),
	})
}

func WriteError(ctx context.Context, w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, Response{
		Success: false,
		Error:   message,
		Meta:    extractMeta(ctx),
	})
}
