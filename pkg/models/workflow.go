package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// WorkflowStatus represents the lifecycle state of one triage workflow.
type WorkflowStatus string

const (
	WorkflowStatusRunning   WorkflowStatus = "running"
	WorkflowStatusCompleted WorkflowStatus = "completed"
	WorkflowStatusFailed    WorkflowStatus = "failed"
)

// StepName identifies one stage of the triage pipeline.
type StepName string

const (
	StepIngest        StepName = "ingest"
	StepSearchSimilar StepName = "search_similar"
	StepSearchKB      StepName = "search_kb"
	StepAnalyze       StepName = "analyze"
	StepDecide        StepName = "decide"
	StepExecute       StepName = "execute"
	StepVerify        StepName = "verify"
	StepFinalize      StepName = "finalize"
	StepError         StepName = "error"
)

// StepStatus represents the outcome of a single pipeline stage.
type StepStatus string

const (
	StepStatusCompleted StepStatus = "completed"
	StepStatusFailed    StepStatus = "failed"
)

// Workflow records one processing attempt for a ticket. Steps are append-only
// and reflect real execution order; the workflow is closed exactly once.
type Workflow struct {
	ID              string         `json:"id"`
	TicketID        string         `json:"ticket_id"       validate:"required"`
	Steps           []StepRecord   `json:"steps"`
	Status          WorkflowStatus `json:"status"`
	FinalConfidence float64        `json:"final_confidence"`
	TotalDurationMs int64          `json:"total_duration_ms"`
	StartedAt       time.Time      `json:"started_at"`
	CompletedAt     *time.Time     `json:"completed_at,omitempty"`
}

// StepRecord is one immutable entry in a workflow's step log.
type StepRecord struct {
	Name       StepName   `json:"step"`
	Status     StepStatus `json:"status"`
	Message    string     `json:"message"`
	Data       StepData   `json:"data,omitempty"`
	DurationMs int64      `json:"duration_ms"`
	Timestamp  time.Time  `json:"timestamp"`
}

// StepData is the stage-specific payload of a StepRecord. Each stage has its
// own fixed variant; the step name is the discriminator on the wire.
type StepData interface {
	stepData()
}

type IngestData struct {
	TicketID string         `json:"ticket_id"`
	Title    string         `json:"title"`
	Priority TicketPriority `json:"priority"`
	Created  bool           `json:"created"`
}

type SimilarSearchData struct {
	Query     string   `json:"query"`
	Matches   int      `json:"matches"`
	TopScore  float64  `json:"top_score,omitempty"`
	TicketIDs []string `json:"ticket_ids,omitempty"`
}

type KBSearchData struct {
	Query      string   `json:"query"`
	Matches    int      `json:"matches"`
	ArticleIDs []string `json:"article_ids,omitempty"`
}

type AnalyzeData struct {
	OverallConfidence float64  `json:"overall_confidence"`
	RootCause         string   `json:"root_cause"`
	SolutionClusters  int      `json:"solution_clusters"`
	Fallbacks         []string `json:"fallbacks,omitempty"`
}

type DecideData struct {
	Primary        PrimaryDecision `json:"primary_decision"`
	Confidence     float64         `json:"confidence"`
	PlannedActions []ActionType    `json:"planned_actions"`
}

type ExecuteData struct {
	Results []ExecutionResult `json:"results"`
	Failed  int               `json:"failed"`
}

type VerifyData struct {
	Outcome         VerificationOutcome `json:"outcome"`
	Confidence      float64             `json:"confidence"`
	NeedsEscalation bool                `json:"needs_escalation"`
	Notes           string              `json:"notes,omitempty"`
}

type FinalizeData struct {
	FinalStatus     TicketStatus `json:"final_status"`
	FinalConfidence float64      `json:"final_confidence"`
	TotalDurationMs int64        `json:"total_duration_ms"`
}

type ErrorData struct {
	Stage StepName `json:"stage"`
	Error string   `json:"error"`
}

func (IngestData) stepData()        {}
func (SimilarSearchData) stepData() {}
func (KBSearchData) stepData()      {}
func (AnalyzeData) stepData()       {}
func (DecideData) stepData()        {}
func (ExecuteData) stepData()       {}
func (VerifyData) stepData()        {}
func (FinalizeData) stepData()      {}
func (ErrorData) stepData()         {}

type stepRecordAlias StepRecord

type stepRecordWire struct {
	stepRecordAlias

	Data json.RawMessage `json:"data,omitempty"`
}

// UnmarshalJSON decodes the stage-specific data payload using the step name
// as discriminator.
func (s *StepRecord) UnmarshalJSON(b []byte) error {
	var wire stepRecordWire

	err := json.Unmarshal(b, &wire)
	if err != nil {
		return err
	}

	*s = StepRecord(wire.stepRecordAlias)
	s.Data = nil

	if len(wire.Data) == 0 || string(wire.Data) == "null" {
		return nil
	}

	data, err := newStepData(s.Name)
	if err != nil {
		return err
	}

	err = json.Unmarshal(wire.Data, data)
	if err != nil {
		return fmt.Errorf("failed to decode %s step data: %w", s.Name, err)
	}

	s.Data = data

	return nil
}

func newStepData(name StepName) (StepData, error) {
	switch name {
	case StepIngest:
		return &IngestData{}, nil
	case StepSearchSimilar:
		return &SimilarSearchData{}, nil
	case StepSearchKB:
		return &KBSearchData{}, nil
	case StepAnalyze:
		return &AnalyzeData{}, nil
	case StepDecide:
		return &DecideData{}, nil
	case StepExecute:
		return &ExecuteData{}, nil
	case StepVerify:
		return &VerifyData{}, nil
	case StepFinalize:
		return &FinalizeData{}, nil
	case StepError:
		return &ErrorData{}, nil
	default:
		return nil, fmt.Errorf("unknown step name %q", name)
	}
}
