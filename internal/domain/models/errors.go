package models

import "fmt"

// InsufficientStockError reports a guarded decrement refused by the ledger.
type InsufficientStockError struct {
	Key         LedgerKey
	RequestedKg float64
	AvailableKg float64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s/%s at %s: requested %.2f kg, available %.2f kg",
		e.Key.ProduceName, e.Key.ProduceType, e.Key.Branch, e.RequestedKg, e.AvailableKg)
}

// LedgerKeyNotFoundError reports an absent stock record where one was required.
type LedgerKeyNotFoundError struct {
	Key LedgerKey
}

func (e *LedgerKeyNotFoundError) Error() string {
	return fmt.Sprintf("no stock record for %s/%s at %s", e.Key.ProduceName, e.Key.ProduceType, e.Key.Branch)
}

// AmbiguousProduceTypeError reports that an omitted produce type matched more
// than one stock record and the caller must disambiguate.
type AmbiguousProduceTypeError struct {
	ProduceName string
	Branch      string
	Types       []string
}

func (e *AmbiguousProduceTypeError) Error() string {
	return fmt.Sprintf("produce %q at %s exists with %d types %v; specify produce_type",
		e.ProduceName, e.Branch, len(e.Types), e.Types)
}

// PriceMismatchError reports a declared settlement amount that deviates from
// the ledger-derived total by more than the configured tolerance.
type PriceMismatchError struct {
	Key      LedgerKey
	Declared float64
	Expected float64
}

func (e *PriceMismatchError) Error() string {
	return fmt.Sprintf("declared amount %.2f does not match expected %.2f for %s/%s at %s",
		e.Declared, e.Expected, e.Key.ProduceName, e.Key.ProduceType, e.Key.Branch)
}

// BelowMinimumTransactionValueError reports a sale total under the floor.
type BelowMinimumTransactionValueError struct {
	Total   float64
	Minimum float64
}

func (e *BelowMinimumTransactionValueError) Error() string {
	return fmt.Sprintf("transaction value %.2f is below the minimum of %.2f", e.Total, e.Minimum)
}

// StaffingFloorViolationError reports a refused removal or reassignment that
// would drop a branch below its mandated staffing level.
type StaffingFloorViolationError struct {
	Branch    string
	Role      StaffRole
	Headcount int
	Floor     int
}

func (e *StaffingFloorViolationError) Error() string {
	return fmt.Sprintf("branch %s has %d active %s(s), floor is %d; removal refused",
		e.Branch, e.Headcount, e.Role, e.Floor)
}

// DuplicateRosterSlotError reports a uniqueness violation on (branch, role, slot).
type DuplicateRosterSlotError struct {
	Branch string
	Role   StaffRole
	Slot   int
}

func (e *DuplicateRosterSlotError) Error() string {
	if e.Role == RoleSalesAgent {
		return fmt.Sprintf("branch %s already has a %s in slot %d", e.Branch, e.Role, e.Slot)
	}
	return fmt.Sprintf("branch %s already has a %s", e.Branch, e.Role)
}

// PersistenceError reports an event-store write that failed after a stock
// mutation already succeeded. The mutation is compensated before this error
// surfaces.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failed during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
