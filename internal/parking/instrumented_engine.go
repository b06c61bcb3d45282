package parking

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// InstrumentedEngine decorates the allocation engine with traces and
// metrics. Non-instrumented read methods pass through the embedded
// engine unchanged.
type InstrumentedEngine struct {
	*AllocationEngine
	telemetry *TelemetryProvider

	parkOps           metric.Int64Counter
	exitOps           metric.Int64Counter
	reservationOps    metric.Int64Counter
	occupancyGauge    metric.Int64UpDownCounter
	totalSpotsGauge   metric.Int64UpDownCounter
	operationDuration metric.Float64Histogram
	feesCollected     metric.Float64Counter
}

func NewInstrumentedEngine(engine *AllocationEngine, telemetry *TelemetryProvider) (*InstrumentedEngine, error) {
	meter := telemetry.Meter()

	parkOps, err := meter.Int64Counter("park_operations_total",
		metric.WithDescription("Total number of park operations"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	exitOps, err := meter.Int64Counter("exit_operations_total",
		metric.WithDescription("Total number of exit operations"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	reservationOps, err := meter.Int64Counter("reservation_operations_total",
		metric.WithDescription("Total number of reservation operations"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	occupancyGauge, err := meter.Int64UpDownCounter("parking_occupancy",
		metric.WithDescription("Current number of occupied parking spots"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	totalSpotsGauge, err := meter.Int64UpDownCounter("parking_total_spots",
		metric.WithDescription("Total number of registered parking spots"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	operationDuration, err := meter.Float64Histogram("operation_duration_seconds",
		metric.WithDescription("Duration of allocation engine operations"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}

	feesCollected, err := meter.Float64Counter("fees_collected_total",
		metric.WithDescription("Sum of fees charged on exit and reservation"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	return &InstrumentedEngine{
		AllocationEngine:  engine,
		telemetry:         telemetry,
		parkOps:           parkOps,
		exitOps:           exitOps,
		reservationOps:    reservationOps,
		occupancyGauge:    occupancyGauge,
		totalSpotsGauge:   totalSpotsGauge,
		operationDuration: operationDuration,
		feesCollected:     feesCollected,
	}, nil
}

func (ie *InstrumentedEngine) RegisterSpot(ctx context.Context, id string) error {
	ctx, span := ie.telemetry.Tracer().Start(ctx, "engine.register_spot",
		trace.WithAttributes(attribute.String("spot.id", id)))
	defer span.End()

	err := ie.AllocationEngine.RegisterSpot(id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	ie.totalSpotsGauge.Add(ctx, 1)
	return nil
}

func (ie *InstrumentedEngine) Park(ctx context.Context, vehicle Vehicle, now time.Time) (Ticket, error) {
	ctx, span := ie.telemetry.Tracer().Start(ctx, "engine.park",
		trace.WithAttributes(
			attribute.String("vehicle.plate", vehicle.Plate),
			attribute.String("vehicle.class", vehicle.Class.String()),
		))
	defer span.End()

	start := time.Now()
	ticket, err := ie.AllocationEngine.Park(vehicle, now)
	duration := time.Since(start).Seconds()

	labels := []attribute.KeyValue{
		attribute.String("operation", "park"),
		attribute.String("vehicle_class", vehicle.Class.String()),
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		labels = append(labels, attribute.String("status", "failed"))
	} else {
		labels = append(labels, attribute.String("status", "success"))
		span.SetAttributes(
			attribute.String("ticket.id", ticket.ID),
			attribute.String("spot.id", ticket.SpotID),
		)
		ie.occupancyGauge.Add(ctx, 1)
	}
	ie.parkOps.Add(ctx, 1, metric.WithAttributes(labels...))
	ie.operationDuration.Record(ctx, duration, metric.WithAttributes(labels...))

	return ticket, err
}

func (ie *InstrumentedEngine) Exit(ctx context.Context, ticketID string, now time.Time) (float64, error) {
	ctx, span := ie.telemetry.Tracer().Start(ctx, "engine.exit",
		trace.WithAttributes(attribute.String("ticket.id", ticketID)))
	defer span.End()

	start := time.Now()
	fee, err := ie.AllocationEngine.Exit(ticketID, now)
	duration := time.Since(start).Seconds()

	labels := []attribute.KeyValue{attribute.String("operation", "exit")}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		labels = append(labels, attribute.String("status", "failed"))
	} else {
		labels = append(labels, attribute.String("status", "success"))
		span.SetAttributes(attribute.Float64("fee", fee))
		ie.occupancyGauge.Add(ctx, -1)
		ie.feesCollected.Add(ctx, fee, metric.WithAttributes(attribute.String("kind", "drop_in")))
	}
	ie.exitOps.Add(ctx, 1, metric.WithAttributes(labels...))
	ie.operationDuration.Record(ctx, duration, metric.WithAttributes(labels...))

	return fee, err
}

func (ie *InstrumentedEngine) Reserve(ctx context.Context, userID string, vehicle Vehicle, startAt, endAt time.Time) (Reservation, error) {
	ctx, span := ie.telemetry.Tracer().Start(ctx, "engine.reserve",
		trace.WithAttributes(
			attribute.String("user.id", userID),
			attribute.String("vehicle.plate", vehicle.Plate),
		))
	defer span.End()

	start := time.Now()
	res, err := ie.AllocationEngine.Reserve(userID, vehicle, startAt, endAt)
	duration := time.Since(start).Seconds()

	labels := []attribute.KeyValue{attribute.String("operation", "reserve")}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		labels = append(labels, attribute.String("status", "failed"))
	} else {
		labels = append(labels, attribute.String("status", "success"))
		span.SetAttributes(attribute.String("reservation.id", res.ID))
		ie.feesCollected.Add(ctx, res.PaidAmount, metric.WithAttributes(attribute.String("kind", "reservation")))
	}
	ie.reservationOps.Add(ctx, 1, metric.WithAttributes(labels...))
	ie.operationDuration.Record(ctx, duration, metric.WithAttributes(labels...))

	return res, err
}

func (ie *InstrumentedEngine) ActivateReservation(ctx context.Context, id string, now time.Time) (Reservation, error) {
	res, err := ie.lifecycle(ctx, "activate", id, func() (Reservation, error) {
		return ie.AllocationEngine.ActivateReservation(id, now)
	})
	if err == nil {
		ie.occupancyGauge.Add(ctx, 1)
	}
	return res, err
}

func (ie *InstrumentedEngine) CompleteReservation(ctx context.Context, id string, now time.Time) (Reservation, error) {
	res, err := ie.lifecycle(ctx, "complete", id, func() (Reservation, error) {
		return ie.AllocationEngine.CompleteReservation(id, now)
	})
	if err == nil {
		ie.occupancyGauge.Add(ctx, -1)
	}
	return res, err
}

func (ie *InstrumentedEngine) CancelReservation(ctx context.Context, id string, now time.Time) (Reservation, error) {
	return ie.lifecycle(ctx, "cancel", id, func() (Reservation, error) {
		return ie.AllocationEngine.CancelReservation(id, now)
	})
}

// lifecycle wraps a reservation state transition with a span and the
// shared reservation metrics.
func (ie *InstrumentedEngine) lifecycle(ctx context.Context, op, id string, fn func() (Reservation, error)) (Reservation, error) {
	ctx, span := ie.telemetry.Tracer().Start(ctx, "engine.reservation_"+op,
		trace.WithAttributes(attribute.String("reservation.id", id)))
	defer span.End()

	start := time.Now()
	res, err := fn()
	duration := time.Since(start).Seconds()

	labels := []attribute.KeyValue{attribute.String("operation", op)}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		labels = append(labels, attribute.String("status", "failed"))
	} else {
		labels = append(labels, attribute.String("status", "success"))
		span.SetAttributes(attribute.String("reservation.status", res.Status.String()))
	}
	ie.reservationOps.Add(ctx, 1, metric.WithAttributes(labels...))
	ie.operationDuration.Record(ctx, duration, metric.WithAttributes(labels...))

	return res, err
}

func (ie *InstrumentedEngine) Status(ctx context.Context) Status {
	_, span := ie.telemetry.Tracer().Start(ctx, "engine.status")
	defer span.End()

	st := ie.AllocationEngine.Status()
	span.SetAttributes(
		attribute.Int("spots.total", st.TotalSpots),
		attribute.Int("spots.occupied", st.OccupiedSpots),
		attribute.Int("tickets.active", st.ActiveTickets),
		attribute.Int("reservations.active", st.ActiveReservations),
	)
	return st
}
