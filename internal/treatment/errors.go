package treatment

import (
	"errors"
	"fmt"
)

// EntityType names the entity an error refers to.
type EntityType string

const (
	EntityScheme   EntityType = "treatment scheme"
	EntityInstance EntityType = "treatment instance"
	EntityAnimal   EntityType = "animal"
)

// ErrNotFound is returned when a referenced entity does not exist.
type ErrNotFound struct {
	Entity EntityType
	ID     string
}

func (e ErrNotFound) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// ErrInvalidState is returned when a command is not legal for the current
// state of the instance, e.g. operating on an already-completed treatment.
type ErrInvalidState struct {
	Reason string
}

func (e ErrInvalidState) Error() string {
	return e.Reason
}

// ErrPersistence wraps a failed durable write. The command that produced it
// has not applied any visible state change unless stated otherwise.
type ErrPersistence struct {
	Op  string
	Err error
}

func (e ErrPersistence) Error() string {
	return fmt.Sprintf("persistence failure during %s: %v", e.Op, e.Err)
}

func (e ErrPersistence) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err is an ErrNotFound.
func IsNotFound(err error) bool {
	var nf ErrNotFound
	return errors.As(err, &nf)
}

// IsInvalidState reports whether err is an ErrInvalidState.
func IsInvalidState(err error) bool {
	var is ErrInvalidState
	return errors.As(err, &is)
}
