package registry_test

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helpflow/triago/pkg/models"
	"github.com/helpflow/triago/pkg/protocol"
	"github.com/helpflow/triago/pkg/registry"
)

type noopAction struct{}

func (noopAction) Execute(_ context.Context, _ models.ExecutionContext, _ *slog.Logger) (map[string]any, error) {
	return map[string]any{"ok": true}, nil
}

type noopFactory struct {
	actionType models.ActionType
	lastConfig map[string]any
}

func (f *noopFactory) ID() models.ActionType {
	return f.actionType
}

func (f *noopFactory) Create(config map[string]any) (protocol.Action, error) {
	f.lastConfig = config

	return noopAction{}, nil
}

func TestRegistry_CreateAction(t *testing.T) {
	t.Parallel()

	reg := registry.NewRegistry(slog.New(slog.NewTextHandler(os.Stdout, nil)))
	factory := &noopFactory{actionType: models.ActionResolveTicket}

	reg.RegisterAction(factory)

	config := map[string]any{"resolution": "done"}

	action, err := reg.CreateAction(models.ActionResolveTicket, config)

	require.NoError(t, err)
	assert.NotNil(t, action)
	assert.Equal(t, config, factory.lastConfig)
}

func TestRegistry_UnknownActionType(t *testing.T) {
	t.Parallel()

	reg := registry.NewRegistry(slog.New(slog.NewTextHandler(os.Stdout, nil)))

	_, err := reg.CreateAction(models.ActionNotifyUser, nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not registered")
}

func TestRegistry_RegisteredActions(t *testing.T) {
	t.Parallel()

	reg := registry.NewRegistry(slog.New(slog.NewTextHandler(os.Stdout, nil)))

	assert.Empty(t, reg.RegisteredActions())

	reg.RegisterAction(&noopFactory{actionType: models.ActionResolveTicket})
	reg.RegisterAction(&noopFactory{actionType: models.ActionNotifyTeam})

	types := reg.RegisteredActions()

	assert.ElementsMatch(t, []models.ActionType{models.ActionResolveTicket, models.ActionNotifyTeam}, types)
}
