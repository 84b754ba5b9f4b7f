package request

import (
	"time"
)

type Kind string

const (
	KindCorrection Kind = "correction"
	KindOvertime   Kind = "overtime"
	KindHoliday    Kind = "holiday"
	KindSchedule   Kind = "schedule"
)

var Kinds = []Kind{KindCorrection, KindOvertime, KindHoliday, KindSchedule}

func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", ErrUnknownKind
}

type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

func IsValidStatus(s Status) bool {
	return s == StatusPending || s == StatusApproved || s == StatusRejected
}

// DecidedBy records which side closed the request.
type DecidedBy string

const (
	DecidedByApprover  DecidedBy = "approver"
	DecidedByRequester DecidedBy = "requester"
)

type Outcome string

const (
	OutcomeApproved  Outcome = "approved"
	OutcomeRejected  Outcome = "rejected"
	OutcomeCancelled Outcome = "cancelled"
)

// Action is what an actor asks the state machine to do.
type Action string

const (
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
	ActionCancel  Action = "cancel"
)

// Decision is the terminal transition of a request. A cancellation is stored
// with status REJECTED but keeps its own outcome.
type Decision struct {
	By      DecidedBy
	Outcome Outcome
	ActorID string
	At      time.Time
}

// Status maps the decision onto the three-state lifecycle.
func (d Decision) Status() Status {
	if d.Outcome == OutcomeApproved {
		return StatusApproved
	}
	return StatusRejected
}

// ApproverID is the actor for approver decisions and nil for cancellations.
func (d Decision) ApproverID() *string {
	if d.By != DecidedByApprover {
		return nil
	}
	id := d.ActorID
	return &id
}

// Header is the state shared by every request kind.
type Header struct {
	ID         string
	UserID     string
	Kind       Kind
	Status     Status
	ApproverID *string
	DecidedBy  *DecidedBy
	Outcome    *Outcome
	DecidedAt  *time.Time
	CreatedAt  time.Time
}

// NewHeader returns a PENDING header.
func NewHeader(kind Kind, userID string, now time.Time) Header {
	return Header{
		UserID:    userID,
		Kind:      kind,
		Status:    StatusPending,
		CreatedAt: now,
	}
}

func (h Header) IsPending() bool {
	return h.Status == StatusPending
}

// Decide validates a transition and returns the decision it would record.
// The header itself is left untouched.
func (h Header) Decide(action Action, actorID string, now time.Time) (Decision, error) {
	if !h.IsPending() {
		return Decision{}, ErrAlreadyDecided
	}

	switch action {
	case ActionApprove:
		return Decision{By: DecidedByApprover, Outcome: OutcomeApproved, ActorID: actorID, At: now}, nil
	case ActionReject:
		return Decision{By: DecidedByApprover, Outcome: OutcomeRejected, ActorID: actorID, At: now}, nil
	case ActionCancel:
		if actorID != h.UserID {
			return Decision{}, ErrNotRequester
		}
		return Decision{By: DecidedByRequester, Outcome: OutcomeCancelled, ActorID: actorID, At: now}, nil
	default:
		return Decision{}, ErrUnknownAction
	}
}

// Apply records d on the header.
func (h *Header) Apply(d Decision) {
	status := d.Status()
	by := d.By
	outcome := d.Outcome
	at := d.At
	h.Status = status
	h.ApproverID = d.ApproverID()
	h.DecidedBy = &by
	h.Outcome = &outcome
	h.DecidedAt = &at
}
