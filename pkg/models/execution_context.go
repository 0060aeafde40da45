package models

// ExecutionContext carries the triage state an action may read while it runs.
type ExecutionContext struct {
	WorkflowID string          `json:"workflow_id"`
	Ticket     *Ticket         `json:"ticket"`
	Analysis   *AnalysisResult `json:"analysis,omitempty"`
	Decision   *Decision       `json:"decision,omitempty"`
}
