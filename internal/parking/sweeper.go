package parking

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// ReservationExpirer is the slice of the engine the sweeper needs.
type ReservationExpirer interface {
	ExpireReservations(now time.Time) []Reservation
}

// ExpirySweeper periodically expires confirmed reservations whose window
// passed without activation. The core itself never reads the wall clock;
// the sweeper is the one place the real clock enters the system.
type ExpirySweeper struct {
	expirer  ReservationExpirer
	interval time.Duration
	log      *logrus.Entry
}

func NewExpirySweeper(expirer ReservationExpirer, interval time.Duration) *ExpirySweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	return &ExpirySweeper{
		expirer:  expirer,
		interval: interval,
		log:      logrus.WithField("component", "expiry_sweeper"),
	}
}

// Run blocks until ctx is cancelled, sweeping once per interval.
func (s *ExpirySweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.log.WithField("interval", s.interval.String()).Info("expiry sweeper started")
	for {
		select {
		case <-ctx.Done():
			s.log.Info("expiry sweeper stopped")
			return
		case now := <-ticker.C:
			expired := s.expirer.ExpireReservations(now)
			for _, r := range expired {
				s.log.WithFields(logrus.Fields{
					"reservation_id": r.ID,
					"plate":          r.Vehicle.Plate,
					"end":            r.End.Format(time.RFC3339),
				}).Info("reservation expired")
			}
		}
	}
}
