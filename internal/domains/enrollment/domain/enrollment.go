package domain

import (
	"errors"
	"fmt"
	"time"
)

// ErrEventOutOfOrder is returned by ApplyEvents for histories that are not gap-free.
var ErrEventOutOfOrder = errors.New("event out of order")

// Enrollment is the aggregate root of one candidate's recruitment process.
// Decisions only read state folded from committed events; events produced by a
// command wait in the uncommitted buffer until MarkCommitted.
type Enrollment struct {
	id          EnrollmentID
	state       State
	uncommitted []DomainEvent
}

// NewEnrollment returns an empty aggregate for id.
func NewEnrollment(id EnrollmentID) *Enrollment {
	return &Enrollment{id: id}
}

// Rehydrate builds an aggregate from its full committed history.
func Rehydrate(id EnrollmentID, history []DomainEvent) (*Enrollment, error) {
	e := NewEnrollment(id)
	if err := e.ApplyEvents(history); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *Enrollment) ID() EnrollmentID { return e.id }

// State returns a copy of the committed derived state.
func (e *Enrollment) State() State { return e.state.Clone() }

// Version is the sequence of the last committed event, 0 for a fresh aggregate.
func (e *Enrollment) Version() uint64 { return e.state.Version }

// Exists reports whether the recruitment form was submitted.
func (e *Enrollment) Exists() bool { return e.state.Submitted }

// Uncommitted returns the events produced since the last commit.
func (e *Enrollment) Uncommitted() []DomainEvent {
	return append([]DomainEvent(nil), e.uncommitted...)
}

// ApplyEvents folds committed events in strict sequence order.
func (e *Enrollment) ApplyEvents(events []DomainEvent) error {
	if len(e.uncommitted) > 0 {
		return fmt.Errorf("apply events to %s: %d uncommitted events pending", e.id, len(e.uncommitted))
	}
	state := e.state
	for _, evt := range events {
		if evt.AggregateID != e.id {
			return fmt.Errorf("%w: event for %s applied to %s", ErrContractViolation, evt.AggregateID, e.id)
		}
		if evt.Sequence != state.Version+1 {
			return fmt.Errorf("%w: %s expected sequence %d, got %d", ErrEventOutOfOrder, e.id, state.Version+1, evt.Sequence)
		}
		if evt.Payload == nil {
			return fmt.Errorf("apply event %d to %s: missing payload", evt.Sequence, e.id)
		}
		state = Evolve(state, evt)
	}
	e.state = state
	return nil
}

// MarkCommitted folds the buffered events into the committed state once the store accepted them.
func (e *Enrollment) MarkCommitted() {
	pending := e.uncommitted
	e.uncommitted = nil
	for _, evt := range pending {
		e.state = Evolve(e.state, evt)
	}
}

func (e *Enrollment) raise(now time.Time, payloads ...Event) {
	next := e.state.Version + uint64(len(e.uncommitted))
	for _, p := range payloads {
		next++
		e.uncommitted = append(e.uncommitted, DomainEvent{
			AggregateID: e.id,
			Sequence:    next,
			Timestamp:   now,
			Payload:     p,
		})
	}
}

func (e *Enrollment) checkTarget(target EnrollmentID) error {
	if target != e.id {
		return contractViolation("command for %s sent to enrollment %s", target, e.id)
	}
	return nil
}

func (e *Enrollment) requireCandidate() error {
	if !e.state.Submitted {
		return ErrCandidateNotFound
	}
	return nil
}
