package order

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyOrder              = errors.New("order must contain at least one item")
	ErrInvalidReference        = errors.New("referenced entity does not exist")
	ErrInsufficientStock       = errors.New("insufficient stock for order item")
	ErrPaymentDeclined         = errors.New("payment declined")
	ErrInvalidStatusTransition = errors.New("invalid order status transition")
)

// Stage names the step of order placement that failed. It is part of every
// error returned by PlaceOrder so callers and reconciliation tooling can
// tell which compensations already ran.
type Stage string

const (
	StageValidate Stage = "validate"
	StageReserve  Stage = "reserve"
	StagePersist  Stage = "persist"
	StagePayment  Stage = "payment"
	StageFulfill  Stage = "fulfill"
)

// StageError wraps a failure with the order-placement stage it happened in.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("order placement failed at stage %q: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

func stageErr(stage Stage, err error) *StageError {
	return &StageError{Stage: stage, Err: err}
}
