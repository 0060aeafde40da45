package kbusage

import (
	"github.com/helpflow/triago/pkg/models"
	"github.com/helpflow/triago/pkg/protocol"
)

// ActionFactory creates update_kb_usage actions bound to a knowledge base provider.
type ActionFactory struct {
	kb protocol.KnowledgeBaseProvider
}

func NewActionFactory(kb protocol.KnowledgeBaseProvider) *ActionFactory {
	return &ActionFactory{kb: kb}
}

func (f *ActionFactory) Create(config map[string]any) (protocol.Action, error) {
	if config == nil {
		config = map[string]any{}
	}

	return NewAction(config, f.kb)
}

func (f *ActionFactory) ID() models.ActionType {
	return models.ActionUpdateKBUsage
}
