package audit

import (
	"errors"
	"fmt"
	"time"
)

// Slot names one of the four audit fields.
type Slot int

const (
	SlotCreatedAt Slot = iota + 1
	SlotUpdatedAt
	SlotCreatedBy
	SlotUpdatedBy
)

func (s Slot) String() string {
	switch s {
	case SlotCreatedAt:
		return "created_at"
	case SlotUpdatedAt:
		return "updated_at"
	case SlotCreatedBy:
		return "created_by"
	case SlotUpdatedBy:
		return "updated_by"
	default:
		return fmt.Sprintf("Slot(%d)", int(s))
	}
}

// SlotsFor returns the slots written by op, in the order they are attempted.
func SlotsFor(op OperationType) []Slot {
	switch op {
	case OperationCreate:
		return []Slot{SlotCreatedAt, SlotUpdatedAt, SlotCreatedBy, SlotUpdatedBy}
	case OperationUpdate:
		return []Slot{SlotUpdatedAt, SlotUpdatedBy}
	default:
		return nil
	}
}

// SlotError reports a setter that failed while stamping.
type SlotError struct {
	Slot  Slot
	Cause error
}

func (e *SlotError) Error() string {
	return fmt.Sprintf("audit: set %s: %v", e.Slot, e.Cause)
}

func (e *SlotError) Unwrap() error {
	return e.Cause
}

// Result describes what Stamp did to an entity.
type Result struct {
	Operation OperationType
	Applied   []Slot
	Missing   []Slot
	// Err joins one *SlotError per failed slot.
	Err error
}

// Stamped reports whether at least one slot was written.
func (r Result) Stamped() bool {
	return len(r.Applied) > 0
}

// Auditable reports whether the entity exposed at least one of the attempted slots.
func (r Result) Auditable() bool {
	return len(r.Applied) > 0 || r.Err != nil
}

// Stamp writes the slots of op on entity. Every slot is attempted independently:
// slots the entity does not expose are recorded as missing and setter panics are
// recovered into Result.Err. Stamp itself never panics.
func Stamp(entity any, op OperationType, actor Actor, now time.Time) Result {
	res := Result{Operation: op}
	if entity == nil {
		res.Missing = SlotsFor(op)
		return res
	}

	var errs []error
	for _, slot := range SlotsFor(op) {
		exposed, err := setSlot(entity, slot, actor, now)
		switch {
		case err != nil:
			errs = append(errs, err)
		case exposed:
			res.Applied = append(res.Applied, slot)
		default:
			res.Missing = append(res.Missing, slot)
		}
	}
	res.Err = errors.Join(errs...)
	return res
}

func setSlot(entity any, slot Slot, actor Actor, now time.Time) (exposed bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			exposed = true
			err = &SlotError{Slot: slot, Cause: fmt.Errorf("%v", r)}
		}
	}()

	switch slot {
	case SlotCreatedAt:
		s, ok := entity.(CreatedAtSetter)
		if !ok {
			return false, nil
		}
		s.SetCreatedAt(now)
	case SlotUpdatedAt:
		s, ok := entity.(UpdatedAtSetter)
		if !ok {
			return false, nil
		}
		s.SetUpdatedAt(now)
	case SlotCreatedBy:
		s, ok := entity.(CreatedBySetter)
		if !ok {
			return false, nil
		}
		s.SetCreatedBy(actor)
	case SlotUpdatedBy:
		s, ok := entity.(UpdatedBySetter)
		if !ok {
			return false, nil
		}
		s.SetUpdatedBy(actor)
	default:
		return false, nil
	}
	return true, nil
}
