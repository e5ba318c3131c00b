package ports

import (
	"context"

	assistanttypes "github.com/Apurer/cement-dealer-portal/internal/domains/assistant/application/types"
)

// Service answers dealer questions with their own catalog, credit and order context.
type Service interface {
	Reply(ctx context.Context, dealerID, message string) (*assistanttypes.Reply, error)
}
