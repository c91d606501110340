package entities

import (
	"time"
)

// Phase is a step of a mutating action
type Phase string

const (
	PhaseStarted    Phase = "started"
	PhaseApproving  Phase = "approving"
	PhaseApproved   Phase = "approved"
	PhaseEstimating Phase = "estimating"
	PhaseSubmitted  Phase = "submitted"
	PhaseConfirmed  Phase = "confirmed"
	PhaseFailed     Phase = "failed"
)

// Terminal reports whether no further phase follows
func (p Phase) Terminal() bool {
	return p == PhaseConfirmed || p == PhaseFailed
}

// PhaseEvent is emitted on every phase transition of an action
type PhaseEvent struct {
	ActionID string    `json:"actionId"`
	Action   string    `json:"action"`
	Phase    Phase     `json:"phase"`
	Message  string    `json:"message"`
	TxHash   string    `json:"txHash,omitempty"`
	Error    string    `json:"error,omitempty"`
	At       time.Time `json:"at"`
}

// JournalEntry is a persisted phase event
type JournalEntry struct {
	ID        int64     `db:"id" json:"id"`
	ActionID  string    `db:"action_id" json:"actionId"`
	Action    string    `db:"action" json:"action"`
	Phase     string    `db:"phase" json:"phase"`
	TxHash    string    `db:"tx_hash" json:"txHash"`
	Message   string    `db:"message" json:"message"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}
