package procurement

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mbazira/agrostock/internal/config"
	"github.com/mbazira/agrostock/internal/domain/models"
	"github.com/mbazira/agrostock/internal/service/stock"
)

type fakeLedger struct {
	mu      sync.Mutex
	records map[models.LedgerKey]models.StockRecord
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{records: make(map[models.LedgerKey]models.StockRecord)}
}

func (f *fakeLedger) Get(_ context.Context, key models.LedgerKey) (models.StockRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	record, ok := f.records[key]
	if !ok {
		return models.StockRecord{}, &models.LedgerKeyNotFoundError{Key: key}
	}
	return record, nil
}

func (f *fakeLedger) Adjust(_ context.Context, key models.LedgerKey, deltaKg, requiredFloor float64, priceOverride *float64) (*models.StockRecord, models.StockRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	record, ok := f.records[key]
	if !ok {
		if deltaKg <= 0 {
			return nil, models.StockRecord{}, &models.LedgerKeyNotFoundError{Key: key}
		}
		created := models.StockRecord{LedgerKey: key, QuantityKg: deltaKg}
		if priceOverride != nil {
			created.UnitPrice = *priceOverride
		}
		f.records[key] = created
		return nil, created, nil
	}

	if record.QuantityKg+deltaKg < requiredFloor {
		return nil, models.StockRecord{}, &models.InsufficientStockError{
			Key:         key,
			RequestedKg: -deltaKg,
			AvailableKg: record.QuantityKg,
		}
	}

	before := record
	record.QuantityKg += deltaKg
	if priceOverride != nil {
		record.UnitPrice = *priceOverride
	}
	f.records[key] = record
	return &before, record, nil
}

func (f *fakeLedger) ListByNameAndBranch(_ context.Context, produceName, branch string) ([]models.StockRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var matches []models.StockRecord
	for _, record := range f.records {
		if record.ProduceName == produceName && record.Branch == branch {
			matches = append(matches, record)
		}
	}
	return matches, nil
}

func (f *fakeLedger) ListByBranch(_ context.Context, branch string) ([]models.StockRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var matches []models.StockRecord
	for _, record := range f.records {
		if record.Branch == branch {
			matches = append(matches, record)
		}
	}
	return matches, nil
}

func (f *fakeLedger) Branches(_ context.Context) ([]string, error) {
	return nil, nil
}

func (f *fakeLedger) record(t *testing.T, key models.LedgerKey) models.StockRecord {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.records[key]
}

type fakeProcurementStore struct {
	events    map[primitive.ObjectID]models.ProcurementEvent
	insertErr error
	updateErr error
	deleteErr error
}

func newFakeProcurementStore() *fakeProcurementStore {
	return &fakeProcurementStore{events: make(map[primitive.ObjectID]models.ProcurementEvent)}
}

func (f *fakeProcurementStore) Insert(_ context.Context, event models.ProcurementEvent) (models.ProcurementEvent, error) {
	if f.insertErr != nil {
		return models.ProcurementEvent{}, f.insertErr
	}
	event.ID = primitive.NewObjectID()
	f.events[event.ID] = event
	return event, nil
}

func (f *fakeProcurementStore) Get(_ context.Context, id primitive.ObjectID) (models.ProcurementEvent, error) {
	event, ok := f.events[id]
	if !ok {
		return models.ProcurementEvent{}, errors.New("event not found")
	}
	return event, nil
}

func (f *fakeProcurementStore) Update(_ context.Context, event models.ProcurementEvent) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.events[event.ID] = event
	return nil
}

func (f *fakeProcurementStore) Delete(_ context.Context, id primitive.ObjectID) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.events, id)
	return nil
}

func (f *fakeProcurementStore) ListByBranch(_ context.Context, branch string) ([]models.ProcurementEvent, error) {
	var events []models.ProcurementEvent
	for _, event := range f.events {
		if event.Branch == branch {
			events = append(events, event)
		}
	}
	return events, nil
}

var (
	testCfg = config.LedgerConfig{
		MinIntakeTonnageKg:  1,
		MinTransactionValue: 10000,
		PriceTolerance:      0.01,
	}
	director = models.Actor{Name: "Nakato", Role: models.RoleDirector}

	maganjoBeans = models.LedgerKey{ProduceName: "Beans", ProduceType: "Grain", Branch: "Maganjo"}
	matuggaBeans = models.LedgerKey{ProduceName: "Beans", ProduceType: "Grain", Branch: "Matugga"}
)

func newTestService(ledger *fakeLedger, store *fakeProcurementStore) *Service {
	return NewService(stock.NewEngine(ledger, nil), store, testCfg, nil)
}

func intakeInput(tonnage float64) models.ProcurementInput {
	return models.ProcurementInput{
		ProduceName:  "Beans",
		ProduceType:  "Grain",
		Branch:       "Maganjo",
		TonnageKg:    tonnage,
		Cost:         tonnage * 60,
		DealerName:   "Kyambogo Traders",
		SellingPrice: 100,
	}
}

func TestIntakeCreatesStockRecord(t *testing.T) {
	ledger := newFakeLedger()
	store := newFakeProcurementStore()
	svc := newTestService(ledger, store)

	event, err := svc.Intake(context.Background(), director, intakeInput(500))
	require.NoError(t, err)

	record := ledger.record(t, maganjoBeans)
	assert.Equal(t, 500.0, record.QuantityKg)
	assert.Equal(t, 100.0, record.UnitPrice)
	assert.Equal(t, "Kyambogo Traders", event.DealerName)
	assert.Equal(t, "Nakato", event.RecordedBy)
	assert.Len(t, store.events, 1)
}

func TestIntakeRefusesTonnageBelowMinimum(t *testing.T) {
	svc := newTestService(newFakeLedger(), newFakeProcurementStore())

	_, err := svc.Intake(context.Background(), director, intakeInput(0.5))
	require.ErrorIs(t, err, ErrTonnageBelowMinimum)
}

func TestIntakeResolvesSourceNameAlias(t *testing.T) {
	svc := newTestService(newFakeLedger(), newFakeProcurementStore())

	input := intakeInput(500)
	input.DealerName = ""
	input.SourceName = "Gayaza Farms"

	event, err := svc.Intake(context.Background(), director, input)
	require.NoError(t, err)
	assert.Equal(t, "Gayaza Farms", event.DealerName)
}

func TestIntakePersistenceFailureCompensates(t *testing.T) {
	ledger := newFakeLedger()
	oldPrice := 80.0
	_, _, err := ledger.Adjust(context.Background(), maganjoBeans, 100, 0, &oldPrice)
	require.NoError(t, err)

	store := newFakeProcurementStore()
	store.insertErr = errors.New("write concern failure")
	svc := newTestService(ledger, store)

	_, err = svc.Intake(context.Background(), director, intakeInput(500))

	var persistence *models.PersistenceError
	require.ErrorAs(t, err, &persistence)

	record := ledger.record(t, maganjoBeans)
	assert.Equal(t, 100.0, record.QuantityKg, "quantity restored")
	assert.Equal(t, 80.0, record.UnitPrice, "prior price restored")
}

func TestReviseSameKeyIncreasesStock(t *testing.T) {
	ledger := newFakeLedger()
	store := newFakeProcurementStore()
	svc := newTestService(ledger, store)

	event, err := svc.Intake(context.Background(), director, intakeInput(500))
	require.NoError(t, err)

	revised := intakeInput(700)
	revised.SellingPrice = 120
	_, err = svc.Revise(context.Background(), director, event.ID, revised)
	require.NoError(t, err)

	record := ledger.record(t, maganjoBeans)
	assert.Equal(t, 700.0, record.QuantityKg)
	assert.Equal(t, 120.0, record.UnitPrice)
}

func TestReviseSameKeyDecreaseRequiresStock(t *testing.T) {
	ledger := newFakeLedger()
	store := newFakeProcurementStore()
	svc := newTestService(ledger, store)

	event, err := svc.Intake(context.Background(), director, intakeInput(500))
	require.NoError(t, err)

	// Sales have consumed most of the stock; the event can no longer shrink
	// below what remains.
	_, _, err = ledger.Adjust(context.Background(), maganjoBeans, -450, 0, nil)
	require.NoError(t, err)

	_, err = svc.Revise(context.Background(), director, event.ID, intakeInput(400))

	var insufficient *models.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, 50.0, ledger.record(t, maganjoBeans).QuantityKg)
}

func TestReviseMigratesContributionAcrossBranches(t *testing.T) {
	ledger := newFakeLedger()
	store := newFakeProcurementStore()
	svc := newTestService(ledger, store)

	event, err := svc.Intake(context.Background(), director, intakeInput(500))
	require.NoError(t, err)

	moved := intakeInput(500)
	moved.Branch = "Matugga"
	updated, err := svc.Revise(context.Background(), director, event.ID, moved)
	require.NoError(t, err)

	assert.Equal(t, 0.0, ledger.record(t, maganjoBeans).QuantityKg)
	assert.Equal(t, 500.0, ledger.record(t, matuggaBeans).QuantityKg)
	assert.Equal(t, "Matugga", updated.Branch)
}

func TestReviseMigrationRefusedWhenOldKeyShort(t *testing.T) {
	ledger := newFakeLedger()
	store := newFakeProcurementStore()
	svc := newTestService(ledger, store)

	event, err := svc.Intake(context.Background(), director, intakeInput(500))
	require.NoError(t, err)

	// Only 300 kg remain on the old key, less than the event's contribution.
	_, _, err = ledger.Adjust(context.Background(), maganjoBeans, -200, 0, nil)
	require.NoError(t, err)

	moved := intakeInput(500)
	moved.Branch = "Matugga"
	_, err = svc.Revise(context.Background(), director, event.ID, moved)

	var insufficient *models.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, 300.0, ledger.record(t, maganjoBeans).QuantityKg, "old key untouched")
	assert.Equal(t, 0.0, ledger.record(t, matuggaBeans).QuantityKg, "new key untouched")
}

func TestRevisePersistenceFailureRollsBackMigration(t *testing.T) {
	ledger := newFakeLedger()
	store := newFakeProcurementStore()
	svc := newTestService(ledger, store)

	event, err := svc.Intake(context.Background(), director, intakeInput(500))
	require.NoError(t, err)

	store.updateErr = errors.New("write concern failure")
	moved := intakeInput(500)
	moved.Branch = "Matugga"
	_, err = svc.Revise(context.Background(), director, event.ID, moved)

	var persistence *models.PersistenceError
	require.ErrorAs(t, err, &persistence)
	assert.Equal(t, 500.0, ledger.record(t, maganjoBeans).QuantityKg, "old key restored")
	assert.Equal(t, 0.0, ledger.record(t, matuggaBeans).QuantityKg, "new key reversed")
}

func TestRemoveRetractsContribution(t *testing.T) {
	ledger := newFakeLedger()
	store := newFakeProcurementStore()
	svc := newTestService(ledger, store)

	event, err := svc.Intake(context.Background(), director, intakeInput(500))
	require.NoError(t, err)

	require.NoError(t, svc.Remove(context.Background(), director, event.ID))
	assert.Equal(t, 0.0, ledger.record(t, maganjoBeans).QuantityKg)
	assert.Empty(t, store.events)
}

func TestRemoveRefusedWhenStockAlreadyConsumed(t *testing.T) {
	ledger := newFakeLedger()
	store := newFakeProcurementStore()
	svc := newTestService(ledger, store)

	event, err := svc.Intake(context.Background(), director, intakeInput(500))
	require.NoError(t, err)

	_, _, err = ledger.Adjust(context.Background(), maganjoBeans, -300, 0, nil)
	require.NoError(t, err)

	err = svc.Remove(context.Background(), director, event.ID)

	var insufficient *models.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.Len(t, store.events, 1, "event kept when retraction refused")
}

func TestRemoveDeleteFailureCompensates(t *testing.T) {
	ledger := newFakeLedger()
	store := newFakeProcurementStore()
	svc := newTestService(ledger, store)

	event, err := svc.Intake(context.Background(), director, intakeInput(500))
	require.NoError(t, err)

	store.deleteErr = errors.New("write concern failure")
	err = svc.Remove(context.Background(), director, event.ID)

	var persistence *models.PersistenceError
	require.ErrorAs(t, err, &persistence)
	assert.Equal(t, 500.0, ledger.record(t, maganjoBeans).QuantityKg, "tonnage restored")
}
