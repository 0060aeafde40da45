package models

import "time"

// LearningMetrics is the single process-wide learning aggregate. It is created
// lazily on first write and updated by every finalize and feedback submission.
type LearningMetrics struct {
	TotalTicketsProcessed int            `json:"total_tickets_processed"`
	SuccessfulResolutions int            `json:"successful_resolutions"`
	Escalations           int            `json:"escalations"`
	VerificationFailures  int            `json:"verification_failures"`
	AverageConfidence     float64        `json:"average_confidence"`
	FeedbackCount         int            `json:"feedback_count"`
	PositiveFeedback      int            `json:"positive_feedback"`
	ResolutionPatterns    map[string]int `json:"resolution_patterns"`
	CommonFailures        map[string]int `json:"common_failures"`
	UpdatedAt             time.Time      `json:"updated_at"`
}

// NewLearningMetrics returns an empty aggregate with initialized maps.
func NewLearningMetrics() *LearningMetrics {
	return &LearningMetrics{
		ResolutionPatterns: make(map[string]int),
		CommonFailures:     make(map[string]int),
	}
}

// Feedback is a user's assessment of an automated resolution.
type Feedback struct {
	TicketID  string `json:"ticket_id"  validate:"required"`
	Effective bool   `json:"effective"`
	Rating    int    `json:"rating"     validate:"required,min=1,max=5"`
	Text      string `json:"text,omitempty"`
}
