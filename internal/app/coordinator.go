package app

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/cimillas/ultimate-ticket/services/inventory/internal/clock"
	"github.com/cimillas/ultimate-ticket/services/inventory/internal/domain"
	"github.com/cimillas/ultimate-ticket/services/inventory/internal/metrics"
)

// maxConflictAttempts bounds how often a transaction is replayed after a
// concurrent modification before ErrConflict reaches the caller.
const maxConflictAttempts = 3

// Coordinator keeps venues, events and reservations consistent with each
// other. Every operation that reads or changes ticket counts sweeps expired
// reservations first, serializes on the aggregates it touches and commits
// in a single repository transaction.
type Coordinator struct {
	repo     Repository
	clock    clock.Clock
	locks    *lockSet
	payments PaymentGateway
	notifier PurchaseNotifier
	log      logrus.FieldLogger
	maxHold  time.Duration
}

type Option func(*Coordinator)

// WithMaxReservation overrides the longest allowed reservation.
func WithMaxReservation(d time.Duration) Option {
	return func(c *Coordinator) {
		if d > 0 {
			c.maxHold = d
		}
	}
}

// WithPaymentGateway replaces the approve-all payment stub.
func WithPaymentGateway(p PaymentGateway) Option {
	return func(c *Coordinator) {
		if p != nil {
			c.payments = p
		}
	}
}

// WithNotifier sets who hears about committed purchases.
func WithNotifier(n PurchaseNotifier) Option {
	return func(c *Coordinator) {
		if n != nil {
			c.notifier = n
		}
	}
}

func WithLogger(l logrus.FieldLogger) Option {
	return func(c *Coordinator) {
		if l != nil {
			c.log = l
		}
	}
}

func NewCoordinator(repo Repository, clk clock.Clock, opts ...Option) *Coordinator {
	c := &Coordinator{
		repo:     repo,
		clock:    clk,
		locks:    newLockSet(),
		payments: ApproveAll{},
		notifier: NopNotifier{},
		log:      logrus.StandardLogger(),
		maxHold:  domain.MaxReservationDuration,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// commit runs fn in a transaction, replaying it on conflict.
func (c *Coordinator) commit(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	var err error
	for attempt := 1; attempt <= maxConflictAttempts; attempt++ {
		err = c.repo.WithTx(ctx, fn)
		if !errors.Is(err, domain.ErrConflict) {
			return err
		}
		metrics.ObserveConflict(op)
		c.log.WithFields(logrus.Fields{
			"operation": op,
			"attempt":   attempt,
		}).Warn("transaction conflicted, retrying")
	}
	return err
}

func (c *Coordinator) observe(op string, err error) {
	metrics.ObserveOperation(op, err)
	if err != nil {
		c.log.WithError(err).WithField("operation", op).Debug("operation failed")
	}
}

func (c *Coordinator) today() time.Time {
	return clock.Today(c.clock)
}
