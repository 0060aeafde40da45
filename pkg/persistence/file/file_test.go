package file_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helpflow/triago/pkg/models"
	"github.com/helpflow/triago/pkg/persistence"
	"github.com/helpflow/triago/pkg/persistence/file"
)

func newTestPersistence(t *testing.T) persistence.Persistence {
	t.Helper()

	return file.NewPersistence(t.TempDir())
}

func TestTicketRepository_CreateAndLoad(t *testing.T) {
	t.Parallel()

	persist := newTestPersistence(t)
	tickets := persist.TicketRepository()
	ctx := context.Background()

	created, err := tickets.CreateTicket(ctx, &models.Ticket{
		Title:       "VPN keeps dropping",
		Description: "Connection resets every few minutes",
		Priority:    models.TicketPriorityMedium,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, created.ID)
	assert.Equal(t, models.TicketStatusNew, created.Status)
	assert.False(t, created.CreatedAt.IsZero())

	loaded, err := tickets.TicketByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Title, loaded.Title)
	assert.Equal(t, created.Status, loaded.Status)
}

func TestTicketRepository_DuplicateCreateFails(t *testing.T) {
	t.Parallel()

	persist := newTestPersistence(t)
	tickets := persist.TicketRepository()
	ctx := context.Background()

	_, err := tickets.CreateTicket(ctx, &models.Ticket{ID: "tk-dup", Title: "First", Description: "d", Priority: models.TicketPriorityLow})
	require.NoError(t, err)

	_, err = tickets.CreateTicket(ctx, &models.Ticket{ID: "tk-dup", Title: "Second", Description: "d", Priority: models.TicketPriorityLow})
	require.ErrorIs(t, err, persistence.ErrTicketAlreadyExists)
}

func TestTicketRepository_NotFound(t *testing.T) {
	t.Parallel()

	persist := newTestPersistence(t)

	_, err := persist.TicketRepository().TicketByID(context.Background(), "tk-nope")

	require.ErrorIs(t, err, persistence.ErrTicketNotFound)
}

func TestTicketRepository_ResolveAndEscalate(t *testing.T) {
	t.Parallel()

	persist := newTestPersistence(t)
	tickets := persist.TicketRepository()
	ctx := context.Background()

	created, err := tickets.CreateTicket(ctx, &models.Ticket{
		Title:       "Printer offline",
		Description: "Office printer unreachable",
		Priority:    models.TicketPriorityLow,
	})
	require.NoError(t, err)

	err = tickets.ResolveTicket(ctx, created.ID, "Power cycled the printer", "triago", 0.9)
	require.NoError(t, err)

	resolved, err := tickets.TicketByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TicketStatusResolved, resolved.Status)
	assert.Equal(t, "Power cycled the printer", resolved.Resolution)
	assert.Equal(t, "triago", resolved.ResolvedBy)
	assert.InDelta(t, 0.9, resolved.Confidence, 0.0001)

	err = tickets.EscalateTicket(ctx, created.ID, models.EscalationInfo{Reason: "came back", EscalatedBy: "triago"})
	require.NoError(t, err)

	escalated, err := tickets.TicketByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TicketStatusEscalated, escalated.Status)
	require.NotNil(t, escalated.Escalation)
	assert.False(t, escalated.Escalation.EscalatedAt.IsZero())
}

func TestWorkflowRepository_Lifecycle(t *testing.T) {
	t.Parallel()

	persist := newTestPersistence(t)
	workflows := persist.WorkflowRepository()
	ctx := context.Background()

	workflow := &models.Workflow{ID: "wf-test1", TicketID: "tk-1"}

	require.NoError(t, workflows.CreateWorkflow(ctx, workflow))
	assert.Equal(t, models.WorkflowStatusRunning, workflow.Status)

	step := models.StepRecord{
		Name:      models.StepIngest,
		Status:    models.StepStatusCompleted,
		Message:   "ticket ingested",
		Data:      models.IngestData{TicketID: "tk-1", Title: "t", Priority: models.TicketPriorityLow},
		Timestamp: time.Now().UTC(),
	}

	require.NoError(t, workflows.AppendStep(ctx, "wf-test1", step))
	require.NoError(t, workflows.CompleteWorkflow(ctx, "wf-test1", 0.8, 1200))

	loaded, err := workflows.WorkflowByID(ctx, "wf-test1")
	require.NoError(t, err)

	assert.Equal(t, models.WorkflowStatusCompleted, loaded.Status)
	assert.InDelta(t, 0.8, loaded.FinalConfidence, 0.0001)
	assert.EqualValues(t, 1200, loaded.TotalDurationMs)
	require.NotNil(t, loaded.CompletedAt)

	require.Len(t, loaded.Steps, 1)
	assert.Equal(t, models.StepIngest, loaded.Steps[0].Name)

	// The step payload round-trips through the name discriminator.
	data, ok := loaded.Steps[0].Data.(*models.IngestData)
	require.True(t, ok)
	assert.Equal(t, "tk-1", data.TicketID)
}

func TestWorkflowRepository_FailWorkflow(t *testing.T) {
	t.Parallel()

	persist := newTestPersistence(t)
	workflows := persist.WorkflowRepository()
	ctx := context.Background()

	require.NoError(t, workflows.CreateWorkflow(ctx, &models.Workflow{ID: "wf-fail", TicketID: "tk-1"}))
	require.NoError(t, workflows.FailWorkflow(ctx, "wf-fail"))

	loaded, err := workflows.WorkflowByID(ctx, "wf-fail")
	require.NoError(t, err)
	assert.Equal(t, models.WorkflowStatusFailed, loaded.Status)
}

func TestWorkflowRepository_StuckWorkflowIDs(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	repo := file.NewWorkflowRepository(root)
	ctx := context.Background()

	old := &models.Workflow{ID: "wf-old", TicketID: "tk-1", StartedAt: time.Now().Add(-10 * time.Minute).UTC()}
	fresh := &models.Workflow{ID: "wf-fresh", TicketID: "tk-2", StartedAt: time.Now().UTC()}
	done := &models.Workflow{ID: "wf-done", TicketID: "tk-3", StartedAt: time.Now().Add(-10 * time.Minute).UTC()}

	require.NoError(t, repo.CreateWorkflow(ctx, old))
	require.NoError(t, repo.CreateWorkflow(ctx, fresh))
	require.NoError(t, repo.CreateWorkflow(ctx, done))
	require.NoError(t, repo.CompleteWorkflow(ctx, "wf-done", 0.9, 100))

	ids, err := repo.StuckWorkflowIDs(ctx, time.Now().Add(-5*time.Minute))
	require.NoError(t, err)

	assert.Equal(t, []string{"wf-old"}, ids)
}

func TestWorkflowRepository_StuckWorkflowIDs_FreshRoot(t *testing.T) {
	t.Parallel()

	// Before the first workflow is written the directory does not exist yet.
	// A sweep over it must report nothing rather than fail.
	repo := file.NewWorkflowRepository(t.TempDir())

	ids, err := repo.StuckWorkflowIDs(context.Background(), time.Now())
	require.NoError(t, err)

	assert.Empty(t, ids)
}

func TestMetricsRepository_NilBeforeFirstSave(t *testing.T) {
	t.Parallel()

	persist := newTestPersistence(t)
	store := persist.MetricsRepository()
	ctx := context.Background()

	current, err := store.LoadCurrent(ctx)
	require.NoError(t, err)
	assert.Nil(t, current)

	saved := models.NewLearningMetrics()
	saved.TotalTicketsProcessed = 5
	saved.AverageConfidence = 0.8

	require.NoError(t, store.Save(ctx, saved))

	loaded, err := store.LoadCurrent(ctx)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, 5, loaded.TotalTicketsProcessed)
	assert.InDelta(t, 0.8, loaded.AverageConfidence, 0.0001)
}

func TestKnowledgeBaseRepository_SearchAndUsage(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	repo := file.NewKnowledgeBaseRepository(root)
	ctx := context.Background()

	require.NoError(t, repo.SaveArticle(ctx, &models.KBArticle{
		ArticleID: "kb-vpn",
		Title:     "Fixing VPN connection drops",
		Content:   "Reset the VPN profile and update the client",
	}))
	require.NoError(t, repo.SaveArticle(ctx, &models.KBArticle{
		ArticleID: "kb-printer",
		Title:     "Printer troubleshooting",
		Content:   "Power cycle the printer and check the spooler",
	}))

	matches, err := repo.Search(ctx, "VPN connection drops after update", "", 5)
	require.NoError(t, err)
	require.NotEmpty(t, matches)
	assert.Equal(t, "kb-vpn", matches[0].ArticleID)

	require.NoError(t, repo.RecordUsage(ctx, "kb-vpn", true))
	require.NoError(t, repo.RecordUsage(ctx, "kb-vpn", false))

	err = repo.RecordUsage(ctx, "kb-ghost", true)
	require.ErrorIs(t, err, persistence.ErrArticleNotFound)
}

func TestSearchRepository_RanksResolvedTickets(t *testing.T) {
	t.Parallel()

	persist := newTestPersistence(t)
	tickets := persist.TicketRepository()
	search := persist.SearchRepository()
	ctx := context.Background()

	seed := []*models.Ticket{
		{ID: "tk-vpn", Title: "VPN drops hourly", Description: "VPN connection resets", Priority: models.TicketPriorityMedium},
		{ID: "tk-vpn2", Title: "VPN unstable", Description: "frequent VPN disconnects", Priority: models.TicketPriorityMedium},
		{ID: "tk-print", Title: "Printer jam", Description: "paper stuck", Priority: models.TicketPriorityLow},
	}

	for _, ticket := range seed {
		_, err := tickets.CreateTicket(ctx, ticket)
		require.NoError(t, err)
	}

	// Only resolved tickets are candidates.
	require.NoError(t, tickets.ResolveTicket(ctx, "tk-vpn", "reset profile", "triago", 0.9))
	require.NoError(t, tickets.ResolveTicket(ctx, "tk-print", "cleared jam", "triago", 0.9))

	matches, err := search.FindSimilarResolved(ctx, "VPN connection drops again", "tk-new", 5)
	require.NoError(t, err)

	require.Len(t, matches, 1)
	assert.Equal(t, "tk-vpn", matches[0].TicketID)
	assert.Equal(t, "reset profile", matches[0].Resolution)
	assert.Greater(t, matches[0].SimilarityScore, 0.0)
}

func TestSearchRepository_ExcludesSelf(t *testing.T) {
	t.Parallel()

	persist := newTestPersistence(t)
	tickets := persist.TicketRepository()
	search := persist.SearchRepository()
	ctx := context.Background()

	_, err := tickets.CreateTicket(ctx, &models.Ticket{
		ID:          "tk-self",
		Title:       "VPN drops hourly",
		Description: "VPN connection resets",
		Priority:    models.TicketPriorityMedium,
	})
	require.NoError(t, err)
	require.NoError(t, tickets.ResolveTicket(ctx, "tk-self", "reset profile", "triago", 0.9))

	matches, err := search.FindSimilarResolved(ctx, "VPN drops hourly", "tk-self", 5)
	require.NoError(t, err)

	assert.Empty(t, matches)
}

func TestPersistence_HealthCheck(t *testing.T) {
	t.Parallel()

	persist := newTestPersistence(t)

	require.NoError(t, persist.HealthCheck(context.Background()))
	require.NoError(t, persist.Close(context.Background()))

	missing := file.NewPersistence("/nonexistent/triago-test-root")
	require.Error(t, missing.HealthCheck(context.Background()))
}
