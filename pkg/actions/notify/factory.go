package notify

import (
	"github.com/helpflow/triago/pkg/models"
	"github.com/helpflow/triago/pkg/protocol"
)

// UserActionFactory creates notify_user actions.
type UserActionFactory struct {
	notifier protocol.NotificationProvider
}

func NewUserActionFactory(notifier protocol.NotificationProvider) *UserActionFactory {
	return &UserActionFactory{notifier: notifier}
}

func (f *UserActionFactory) Create(config map[string]any) (protocol.Action, error) {
	if config == nil {
		config = map[string]any{}
	}

	return NewUserAction(config, f.notifier)
}

func (f *UserActionFactory) ID() models.ActionType {
	return models.ActionNotifyUser
}

// TeamActionFactory creates notify_team actions.
type TeamActionFactory struct {
	notifier protocol.NotificationProvider
}

func NewTeamActionFactory(notifier protocol.NotificationProvider) *TeamActionFactory {
	return &TeamActionFactory{notifier: notifier}
}

func (f *TeamActionFactory) Create(config map[string]any) (protocol.Action, error) {
	if config == nil {
		config = map[string]any{}
	}

	return NewTeamAction(config, f.notifier)
}

func (f *TeamActionFactory) ID() models.ActionType {
	return models.ActionNotifyTeam
}
