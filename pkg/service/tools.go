package service

import (
	"context"
)

// ToolsAPI talks to the remote tool server the agent uses.
type ToolsAPI interface {
	ListTools(ctx context.Context) ([]Tool, error)
}

type ToolsService interface {
	ListTools(ctx context.Context, sess Session) (Session, *ToolList, error)
}

type Tool struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type ToolList struct {
	Tools []Tool `json:"tools"`
}
