package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	apperrors "armory/internal/errors"
	"armory/internal/events"
	"armory/internal/model"
	"armory/internal/repository"
)

// InventoryService runs the scan-driven checkout state machine.
type InventoryService interface {
	Scan(ctx context.Context, qrToken string, actorID uint, notes string) (*model.Equipment, error)
}

type inventoryService struct {
	txManager repository.TxManager
	publisher events.Publisher
	log       zerolog.Logger
	// per-item locks keyed by QR token; items never share one
	locksMu sync.Mutex
	locks   map[string]*itemLock
	now     func() time.Time
}

// itemLock is dropped from the map once no scan holds or waits on it.
type itemLock struct {
	mu   sync.Mutex
	refs int
}

// NewInventoryService creates the transition engine. A nil publisher disables events.
func NewInventoryService(txManager repository.TxManager, publisher events.Publisher, log zerolog.Logger) InventoryService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &inventoryService{
		txManager: txManager,
		publisher: publisher,
		log:       log.With().Str("component", "inventory").Logger(),
		locks:     make(map[string]*itemLock),
		now:       time.Now,
	}
}

// lockItem serializes scans of one QR token and returns the matching unlock.
func (s *inventoryService) lockItem(qrToken string) func() {
	s.locksMu.Lock()
	l, ok := s.locks[qrToken]
	if !ok {
		l = &itemLock{}
		s.locks[qrToken] = l
	}
	l.refs++
	s.locksMu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		s.locksMu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, qrToken)
		}
		s.locksMu.Unlock()
	}
}

func (s *inventoryService) lockCount() int {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	return len(s.locks)
}

// Scan withdraws an available item for actorID or returns an item actorID
// holds. The guard check, the state change and the audit entry share one
// transaction under a row lock.
func (s *inventoryService) Scan(ctx context.Context, qrToken string, actorID uint, notes string) (*model.Equipment, error) {
	qrToken = strings.TrimSpace(qrToken)
	if qrToken == "" {
		verr := apperrors.NewValidationError()
		verr.Add("qr_code", "Qr Code is required")
		return nil, verr
	}

	unlock := s.lockItem(qrToken)
	defer unlock()

	var (
		updated *model.Equipment
		action  model.LogAction
	)
	err := s.txManager.WithTransaction(ctx, func(ctx context.Context, tx repository.Tx) error {
		item, err := tx.Equipment.FindByQRTokenForUpdate(ctx, qrToken)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrInvalidQRCode
			}
			return fmt.Errorf("load equipment: %w", err)
		}

		next, act, err := nextState(item, actorID)
		if err != nil {
			return err
		}

		ok, err := tx.Equipment.Transition(ctx, item.ID, item.Status, item.AssignedTo, next.Status, next.AssignedTo)
		if err != nil {
			return fmt.Errorf("update equipment: %w", err)
		}
		if !ok {
			return apperrors.ErrInvalidTransition
		}

		entry := &model.InventoryLogEntry{
			ItemID: item.ID,
			UserID: actorID,
			Action: act,
			Notes:  notes,
		}
		if err := tx.Logs.Append(ctx, entry); err != nil {
			return fmt.Errorf("append inventory log: %w", err)
		}

		updated, action = next, act
		return nil
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidTransition) || errors.Is(err, apperrors.ErrNotFound) {
			s.log.Info().Str("qr_token", qrToken).Uint("user_id", actorID).Err(err).Msg("scan rejected")
		} else {
			s.log.Error().Str("qr_token", qrToken).Uint("user_id", actorID).Err(err).Msg("scan failed")
		}
		return nil, err
	}

	s.log.Info().
		Uint("item_id", updated.ID).
		Uint("user_id", actorID).
		Str("action", string(action)).
		Msg("equipment transitioned")
	s.publish(ctx, updated, action, actorID)

	return updated, nil
}

// nextState applies the withdraw/return rules to a copy of item.
func nextState(item *model.Equipment, actorID uint) (*model.Equipment, model.LogAction, error) {
	next := *item
	switch {
	case item.Status == model.StatusAvailable && item.AssignedTo == nil:
		holder := actorID
		next.Status = model.StatusWithdrawn
		next.AssignedTo = &holder
		return &next, model.ActionWithdraw, nil
	case item.Status == model.StatusWithdrawn && item.IsHeldBy(actorID):
		next.Status = model.StatusAvailable
		next.AssignedTo = nil
		return &next, model.ActionReturn, nil
	default:
		return nil, "", apperrors.ErrInvalidTransition
	}
}

func (s *inventoryService) publish(ctx context.Context, item *model.Equipment, action model.LogAction, actorID uint) {
	evt := events.Event{
		Type:       events.RoutingKey(string(action)),
		ItemID:     item.ID,
		QRToken:    item.QRToken,
		Status:     string(item.Status),
		UserID:     actorID,
		OccurredAt: s.now().UTC(),
	}
	if err := s.publisher.Publish(ctx, evt); err != nil {
		s.log.Warn().Err(err).Uint("item_id", item.ID).Msg("publish inventory event")
	}
}
