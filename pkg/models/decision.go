package models

import "time"

// PrimaryDecision is the branch chosen by the decision policy.
type PrimaryDecision string

const (
	DecisionAutoResolve         PrimaryDecision = "auto_resolve"
	DecisionEscalateWithContext PrimaryDecision = "escalate_with_context"
	DecisionEscalateForReview   PrimaryDecision = "escalate_for_review"
)

// ActionType identifies a side-effecting action the executor can run.
type ActionType string

const (
	ActionResolveTicket  ActionType = "resolve_ticket"
	ActionEscalateTicket ActionType = "escalate_ticket"
	ActionNotifyUser     ActionType = "notify_user"
	ActionNotifyTeam     ActionType = "notify_team"
	ActionUpdateKBUsage  ActionType = "update_kb_usage"
)

// Action is one planned side effect. Parameters are interpreted by the action
// implementation registered for the type.
type Action struct {
	Type       ActionType     `json:"type"`
	Parameters map[string]any `json:"parameters,omitempty"`
}

// Decision is the output of the decision policy: a branch, its reasoning, and
// an ordered action plan. Actions execute in plan order.
type Decision struct {
	Primary    PrimaryDecision `json:"primary_decision"`
	Reasoning  string          `json:"reasoning"`
	Confidence float64         `json:"confidence"`
	Actions    []Action        `json:"actions"`
}

// ExecutionStatus represents the outcome of one executed action.
type ExecutionStatus string

const (
	ExecutionSuccess ExecutionStatus = "success"
	ExecutionFailed  ExecutionStatus = "failed"
)

// ExecutionResult records the outcome of one planned action. The executor
// produces exactly one result per planned action, failures included.
type ExecutionResult struct {
	Type      ActionType      `json:"type"`
	Status    ExecutionStatus `json:"status"`
	Result    map[string]any  `json:"result,omitempty"`
	Error     string          `json:"error,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// VerificationOutcome is the assessment produced by the verification stage.
type VerificationOutcome string

const (
	VerificationSuccess   VerificationOutcome = "success"
	VerificationFailed    VerificationOutcome = "failed"
	VerificationNeeded    VerificationOutcome = "needs_verification"
	VerificationEscalated VerificationOutcome = "escalated"
)

// VerificationResult is the optional post-execution re-assessment. It has
// override authority over the apparent outcome of a resolve action.
type VerificationResult struct {
	Outcome         VerificationOutcome `json:"outcome"`
	Confidence      float64             `json:"confidence"`
	NeedsEscalation bool                `json:"needs_escalation"`
	Notes           string              `json:"notes,omitempty"`
}
