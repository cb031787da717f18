package service

import (
	"context"
	"time"

	"lexai-be/internal/entity"
	"lexai-be/internal/pkg/logger"
	"lexai-be/pkg/events"
	"lexai-be/pkg/gate"
	"lexai-be/pkg/nats"
)

// IGateService decides whether an anonymous caller may still ask questions.
// Counters are tracked per guest session id and never for authenticated users.
type IGateService interface {
	Status(ctx context.Context, identity entity.Identity) gate.Status
	RegisterQuestion(ctx context.Context, identity entity.Identity) (gate.Status, error)
	ResetForGuest(ctx context.Context, guestId string)
}

type GateService struct {
	machine   *gate.Machine
	store     gate.CounterStore
	publisher *nats.Publisher
	logger    logger.ILogger
}

func NewGateService(machine *gate.Machine, store gate.CounterStore, publisher *nats.Publisher, logger logger.ILogger) IGateService {
	return &GateService{
		machine:   machine,
		store:     store,
		publisher: publisher,
		logger:    logger,
	}
}

func (s *GateService) Status(ctx context.Context, identity entity.Identity) gate.Status {
	if identity.Authenticated() {
		return s.machine.StatusFor(true, 0)
	}
	used, err := s.store.Get(ctx, identity.GuestId)
	if err != nil {
		s.logger.Warn("GateService", "Failed to read gate counter, treating as zero", map[string]interface{}{
			"guest_id": identity.GuestId,
			"error":    err.Error(),
		})
		used = 0
	}
	return s.machine.StatusFor(false, used)
}

// RegisterQuestion counts one question against the caller. For authenticated
// callers it is a no-op. The returned status reflects the counter after the
// increment, so the question that hits the limit still goes through and the
// caller learns it was the last one.
func (s *GateService) RegisterQuestion(ctx context.Context, identity entity.Identity) (gate.Status, error) {
	if identity.Authenticated() {
		return s.machine.StatusFor(true, 0), nil
	}

	used, err := s.store.Increment(ctx, identity.GuestId)
	if err != nil {
		return gate.Status{}, err
	}

	status := s.machine.StatusFor(false, used)
	if used == s.machine.Limit() {
		s.publishCapped(ctx, identity.GuestId, used)
	}
	return status, nil
}

func (s *GateService) ResetForGuest(ctx context.Context, guestId string) {
	if guestId == "" {
		return
	}
	if err := s.store.Reset(ctx, guestId); err != nil {
		s.logger.Warn("GateService", "Failed to reset gate counter", map[string]interface{}{
			"guest_id": guestId,
			"error":    err.Error(),
		})
	}
}

func (s *GateService) publishCapped(ctx context.Context, guestId string, used int) {
	if s.publisher == nil {
		return
	}
	evt := events.BaseEvent{
		Type: events.TypeGateCapped,
		Data: map[string]interface{}{
			"guest_id":  guestId,
			"questions": used,
		},
		OccurredAt: time.Now(),
	}
	if err := s.publisher.Publish(ctx, evt); err != nil {
		s.logger.Warn("GateService", "Failed to publish gate capped event", map[string]interface{}{
			"error": err.Error(),
		})
	}
}
