package directory

import (
	"context"
	"vihub/internal/models"
)

// Transport performs raw directory requests. Responses are loosely typed and
// are normalized by Client before leaving this package.
type Transport interface {
	Search(ctx context.Context, params models.SearchParams) ([]map[string]any, error)
	Detail(ctx context.Context, queryID string) (map[string]any, error)
	Fingerprints(ctx context.Context, wallet string) ([]map[string]any, error)
	Facial(ctx context.Context, wallet string) (any, error)
}
