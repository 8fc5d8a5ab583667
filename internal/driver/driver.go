package driver

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// GraphDriver is the firm's relationship graph. Detectors issue exactly one
// parameterized traversal per call; every traversal in queries.go carries an
// explicit hop bound and a row limit, which keeps each call terminating even
// if the underlying graph contains ownership or family cycles.
type GraphDriver interface {
	ExecuteQuery(ctx context.Context, query string, params map[string]interface{}) (neo4j.EagerResult, error)
	EnsureSchema(ctx context.Context) error
	Close(ctx context.Context) error
}
