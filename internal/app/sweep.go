package app

import (
	"context"
	"errors"
	"time"

	"github.com/cimillas/ultimate-ticket/services/inventory/internal/domain"
	"github.com/cimillas/ultimate-ticket/services/inventory/internal/metrics"
)

// SweepExpired restores the unit of every lapsed reservation and removes
// the record. It returns how many reservations were released.
func (c *Coordinator) SweepExpired(ctx context.Context) (released int, err error) {
	defer func() { c.observe("sweep", err) }()

	expired, err := c.repo.ListExpiredReservations(ctx, c.clock.Now())
	if err != nil {
		return 0, err
	}

	for _, r := range expired {
		ok, err := c.expire(ctx, r)
		if err != nil {
			return released, err
		}
		if ok {
			released++
		}
	}

	if released > 0 {
		metrics.ReservationsExpired.Add(float64(released))
		c.log.WithField("released", released).Info("expired reservations swept")
	}
	return released, nil
}

// expire releases one reservation under its event lock. A record that a
// concurrent sweep, cancel or purchase already removed is skipped, so each
// unit is restored exactly once.
func (c *Coordinator) expire(ctx context.Context, r domain.Reservation) (bool, error) {
	unlock := c.locks.Lock(eventKey(r.EventID))
	defer unlock()

	released := false
	err := c.commit(ctx, "sweep", func(ctx context.Context) error {
		released = false
		current, err := c.repo.GetReservation(ctx, r.ID)
		if errors.Is(err, domain.ErrReservationNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if !current.Expired(c.clock.Now()) {
			return nil
		}
		if err := c.restoreUnit(ctx, current); err != nil {
			return err
		}
		released = true
		return nil
	})
	return released, err
}

func (c *Coordinator) sweep(ctx context.Context) error {
	_, err := c.SweepExpired(ctx)
	return err
}

// RunSweeper sweeps on every tick until ctx is done. It complements the
// sweep that precedes each operation so lapsed holds are released even
// when no requests arrive.
func (c *Coordinator) RunSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := c.SweepExpired(ctx); err != nil && ctx.Err() == nil {
				c.log.WithError(err).Error("background sweep failed")
			}
		}
	}
}
