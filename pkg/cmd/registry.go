// Package cmd provides common initialization functions for command-line applications.
package cmd

import (
	"log/slog"

	"github.com/helpflow/triago/pkg/actions/escalateticket"
	"github.com/helpflow/triago/pkg/actions/kbusage"
	"github.com/helpflow/triago/pkg/actions/notify"
	"github.com/helpflow/triago/pkg/actions/resolveticket"
	"github.com/helpflow/triago/pkg/persistence"
	"github.com/helpflow/triago/pkg/protocol"
	"github.com/helpflow/triago/pkg/registry"
)

// NewRegistry creates an action registry with every native action bound to
// its backing stores.
func NewRegistry(log *slog.Logger, persist persistence.Persistence, notifier protocol.NotificationProvider) *registry.Registry {
	reg := registry.NewRegistry(log)

	reg.RegisterAction(resolveticket.NewActionFactory(persist.TicketRepository()))
	reg.RegisterAction(escalateticket.NewActionFactory(persist.TicketRepository()))
	reg.RegisterAction(notify.NewUserActionFactory(notifier))
	reg.RegisterAction(notify.NewTeamActionFactory(notifier))
	reg.RegisterAction(kbusage.NewActionFactory(persist.KnowledgeBaseRepository()))

	return reg
}
