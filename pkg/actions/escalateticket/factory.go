package escalateticket

import (
	"github.com/helpflow/triago/pkg/models"
	"github.com/helpflow/triago/pkg/protocol"
)

// ActionFactory creates escalate_ticket actions bound to a ticket store.
type ActionFactory struct {
	tickets protocol.TicketStore
}

func NewActionFactory(tickets protocol.TicketStore) *ActionFactory {
	return &ActionFactory{tickets: tickets}
}

func (f *ActionFactory) Create(config map[string]any) (protocol.Action, error) {
	if config == nil {
		config = map[string]any{}
	}

	return NewAction(config, f.tickets)
}

func (f *ActionFactory) ID() models.ActionType {
	return models.ActionEscalateTicket
}
