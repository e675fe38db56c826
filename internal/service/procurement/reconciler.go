package procurement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/mbazira/agrostock/internal/config"
	"github.com/mbazira/agrostock/internal/domain/models"
	"github.com/mbazira/agrostock/internal/repository/mongodb"
	"github.com/mbazira/agrostock/internal/service/stock"
)

// ErrTonnageBelowMinimum indicates an intake smaller than the configured floor.
var ErrTonnageBelowMinimum = errors.New("tonnage below configured minimum")

// ErrInvalidSellingPrice indicates a missing or non-positive unit price.
var ErrInvalidSellingPrice = errors.New("selling price must be positive")

// Service reconciles procurement events with the stock ledger. Every intake,
// revision and removal is expressed as guarded ledger adjustments; the event
// log is only written after the adjustments succeed, and adjustments are
// compensated when the log write fails.
type Service struct {
	engine *stock.Engine
	events mongodb.ProcurementStore
	cfg    config.LedgerConfig
	logger *zap.Logger
	now    func() time.Time
}

// NewService constructs a procurement reconciler.
func NewService(engine *stock.Engine, events mongodb.ProcurementStore, cfg config.LedgerConfig, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		engine: engine,
		events: events,
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
}

func (s *Service) validate(input models.ProcurementInput) error {
	if input.TonnageKg < s.cfg.MinIntakeTonnageKg {
		return fmt.Errorf("%w: got %.2f kg, minimum %.2f kg",
			ErrTonnageBelowMinimum, input.TonnageKg, s.cfg.MinIntakeTonnageKg)
	}
	if input.SellingPrice <= 0 {
		return ErrInvalidSellingPrice
	}
	return nil
}

// Intake credits the ledger with the delivered tonnage, applying the new
// selling price, then records the event.
func (s *Service) Intake(ctx context.Context, actor models.Actor, input models.ProcurementInput) (models.ProcurementEvent, error) {
	if err := s.validate(input); err != nil {
		return models.ProcurementEvent{}, err
	}

	price := input.SellingPrice
	_, compensate, err := s.engine.Apply(ctx, input.Key(), input.TonnageKg, 0, &price)
	if err != nil {
		return models.ProcurementEvent{}, err
	}

	event := models.ProcurementEvent{
		ProduceName:  input.ProduceName,
		ProduceType:  input.ProduceType,
		Branch:       input.Branch,
		TonnageKg:    input.TonnageKg,
		Cost:         input.Cost,
		DealerName:   input.Dealer(),
		SellingPrice: input.SellingPrice,
		RecordedBy:   actor.Name,
		Date:         s.eventDate(input.Date),
	}

	persisted, err := s.events.Insert(ctx, event)
	if err != nil {
		if rbErr := compensate(ctx); rbErr != nil {
			s.logger.Error("intake compensation failed", zap.Error(rbErr))
		}
		return models.ProcurementEvent{}, &models.PersistenceError{Op: "procurement intake", Err: err}
	}

	s.logger.Info("procurement recorded",
		zap.String("produce", event.ProduceName),
		zap.String("branch", event.Branch),
		zap.Float64("tonnage_kg", event.TonnageKg),
		zap.String("recorded_by", actor.Name))

	return persisted, nil
}

// Revise adjusts the ledger to reflect the changed event. When the produce
// identity or branch changes, the event's contribution migrates: the old key
// is retracted first (guarded, so only stock still present can be withdrawn),
// then the new key is credited.
func (s *Service) Revise(ctx context.Context, actor models.Actor, eventID primitive.ObjectID, input models.ProcurementInput) (models.ProcurementEvent, error) {
	if err := s.validate(input); err != nil {
		return models.ProcurementEvent{}, err
	}

	old, err := s.events.Get(ctx, eventID)
	if err != nil {
		return models.ProcurementEvent{}, err
	}

	uow := stock.NewUnitOfWork(s.logger)
	price := input.SellingPrice

	if old.Key() == input.Key() {
		delta := input.TonnageKg - old.TonnageKg
		var override *float64
		if delta >= 0 {
			override = &price
		}
		_, compensate, err := s.engine.Apply(ctx, input.Key(), delta, 0, override)
		if err != nil {
			return models.ProcurementEvent{}, err
		}
		uow.Defer(compensate)
	} else {
		_, retractComp, err := s.engine.Apply(ctx, old.Key(), -old.TonnageKg, 0, nil)
		if err != nil {
			return models.ProcurementEvent{}, err
		}
		uow.Defer(retractComp)

		_, creditComp, err := s.engine.Apply(ctx, input.Key(), input.TonnageKg, 0, &price)
		if err != nil {
			if rbErr := uow.Rollback(ctx); rbErr != nil {
				s.logger.Error("migration rollback failed", zap.Error(rbErr))
			}
			return models.ProcurementEvent{}, err
		}
		uow.Defer(creditComp)
	}

	updated := old
	updated.ProduceName = input.ProduceName
	updated.ProduceType = input.ProduceType
	updated.Branch = input.Branch
	updated.TonnageKg = input.TonnageKg
	updated.Cost = input.Cost
	updated.DealerName = models.FirstNonEmpty(input.Dealer(), old.DealerName)
	updated.SellingPrice = input.SellingPrice
	updated.Date = s.eventDate(input.Date)

	if err := s.events.Update(ctx, updated); err != nil {
		if rbErr := uow.Rollback(ctx); rbErr != nil {
			s.logger.Error("revision rollback failed", zap.Error(rbErr))
		}
		return models.ProcurementEvent{}, &models.PersistenceError{Op: "procurement revision", Err: err}
	}

	s.logger.Info("procurement revised",
		zap.String("event_id", eventID.Hex()),
		zap.String("revised_by", actor.Name))

	return updated, nil
}

// Remove retracts the event's contribution from the ledger, refusing when the
// remaining stock no longer covers it, then deletes the event.
func (s *Service) Remove(ctx context.Context, actor models.Actor, eventID primitive.ObjectID) error {
	event, err := s.events.Get(ctx, eventID)
	if err != nil {
		return err
	}

	_, compensate, err := s.engine.Apply(ctx, event.Key(), -event.TonnageKg, 0, nil)
	if err != nil {
		return err
	}

	if err := s.events.Delete(ctx, eventID); err != nil {
		if rbErr := compensate(ctx); rbErr != nil {
			s.logger.Error("removal compensation failed", zap.Error(rbErr))
		}
		return &models.PersistenceError{Op: "procurement removal", Err: err}
	}

	s.logger.Info("procurement removed",
		zap.String("event_id", eventID.Hex()),
		zap.String("removed_by", actor.Name))

	return nil
}

func (s *Service) eventDate(date time.Time) time.Time {
	if date.IsZero() {
		return s.now().UTC()
	}
	return date
}
