package models

import "time"

const (
	DefaultConfidenceThreshold   = 0.85
	DefaultVerificationThreshold = 0.9
	DefaultMaxProcessingTime     = 2 * time.Minute
	DefaultSearchLimit           = 5
)

// TriageConfig drives the decision and verification policies and the
// per-workflow processing budget.
type TriageConfig struct {
	ConfidenceThreshold   float64       `json:"confidence_threshold"    validate:"gte=0,lte=1"`
	VerificationThreshold float64       `json:"verification_threshold"  validate:"gte=0,lte=1"`
	EnableAutoResolution  bool          `json:"enable_auto_resolution"`
	EnableVerification    bool          `json:"enable_verification"`
	MaxProcessingTime     time.Duration `json:"max_processing_time"     validate:"gt=0"`
	SearchLimit           int           `json:"search_limit"            validate:"gt=0"`
	ResolvedBy            string        `json:"resolved_by"`
}

// DefaultTriageConfig returns the standard configuration: auto-resolution and
// verification enabled with the documented thresholds.
func DefaultTriageConfig() TriageConfig {
	return TriageConfig{
		ConfidenceThreshold:   DefaultConfidenceThreshold,
		VerificationThreshold: DefaultVerificationThreshold,
		EnableAutoResolution:  true,
		EnableVerification:    true,
		MaxProcessingTime:     DefaultMaxProcessingTime,
		SearchLimit:           DefaultSearchLimit,
		ResolvedBy:            "triago",
	}
}
