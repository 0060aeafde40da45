package models

// SimilarTicket is one previously resolved ticket returned by the search
// provider, ranked by similarity to the ticket under triage.
type SimilarTicket struct {
	TicketID        string         `json:"ticket_id"`
	Title           string         `json:"title"`
	Description     string         `json:"description"`
	Resolution      string         `json:"resolution"`
	Category        string         `json:"category"`
	Priority        TicketPriority `json:"priority"`
	SimilarityScore float64        `json:"similarity_score"`
}

// KBArticle is one knowledge base article returned by the KB provider.
type KBArticle struct {
	ArticleID       string  `json:"article_id"`
	Title           string  `json:"title"`
	Content         string  `json:"content"`
	Summary         string  `json:"summary"`
	SimilarityScore float64 `json:"similarity_score"`
}

// AnalysisContext is the retrieved context handed to the analysis provider.
type AnalysisContext struct {
	Ticket         *Ticket         `json:"ticket"`
	SimilarTickets []SimilarTicket `json:"similar_tickets"`
	KBArticles     []KBArticle     `json:"kb_articles"`
}

// PatternAnalysis is the result of the pattern-matching analysis sub-call.
type PatternAnalysis struct {
	Patterns         []string `json:"patterns"`
	Summary          string   `json:"summary"`
	SolutionClusters int      `json:"solution_clusters"`
	Confidence       float64  `json:"confidence"`
}

// RootCauseAnalysis is the result of the root-cause analysis sub-call.
type RootCauseAnalysis struct {
	RootCause  string  `json:"root_cause"`
	Evidence   string  `json:"evidence,omitempty"`
	Confidence float64 `json:"confidence"`
}

// SolutionProposal is the result of the solution-generation sub-call.
type SolutionProposal struct {
	Resolution string   `json:"resolution"`
	Steps      []string `json:"steps,omitempty"`
	ArticleIDs []string `json:"article_ids,omitempty"`
	Confidence float64  `json:"confidence"`
}

// ConfidenceAssessment is the result of the final confidence sub-call.
type ConfidenceAssessment struct {
	OverallConfidence float64 `json:"overall_confidence"`
	Reasoning         string  `json:"reasoning,omitempty"`
}

// AnalysisResult aggregates the four analysis sub-calls. Fallbacks lists the
// sub-calls that failed and were replaced by their fixed fallback payload.
type AnalysisResult struct {
	Patterns          PatternAnalysis   `json:"patterns"`
	RootCause         RootCauseAnalysis `json:"root_cause"`
	Solution          SolutionProposal  `json:"solution"`
	OverallConfidence float64           `json:"overall_confidence"`
	Fallbacks         []string          `json:"fallbacks,omitempty"`
}
