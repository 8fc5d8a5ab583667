package driver

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"
)

// Neo4jDriver talks to the relationship graph over Bolt. Works against both
// Neo4j and Memgraph since only plain Cypher is issued.
type Neo4jDriver struct {
	Driver neo4j.DriverWithContext
	log    *zap.Logger
}

func NewNeo4jDriver(uri, username, password string, log *zap.Logger) (*Neo4jDriver, error) {
	d, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, err
	}

	if err := d.VerifyConnectivity(context.Background()); err != nil {
		return nil, err
	}

	log.Info("connected to relationship graph", zap.String("uri", uri))
	return &Neo4jDriver{Driver: d, log: log}, nil
}

func (d *Neo4jDriver) Close(ctx context.Context) error {
	return d.Driver.Close(ctx)
}

func (d *Neo4jDriver) ExecuteQuery(ctx context.Context, query string, params map[string]interface{}) (neo4j.EagerResult, error) {
	result, err := neo4j.ExecuteQuery(ctx, d.Driver, query, params, neo4j.EagerResultTransformer)
	if err != nil {
		return neo4j.EagerResult{}, fmt.Errorf("failed to execute query: %w", err)
	}
	return *result, nil
}

// EnsureSchema creates the indices the detector traversals lean on. Index
// creation is idempotent on Neo4j but Memgraph may report existing indices as
// errors, so failures are logged and skipped.
func (d *Neo4jDriver) EnsureSchema(ctx context.Context) error {
	queries := []string{
		"CREATE INDEX ON :Party(id);",
		"CREATE INDEX ON :Party(firm_id);",
		"CREATE INDEX ON :Case(id);",
		"CREATE INDEX ON :Case(status);",
	}

	for _, q := range queries {
		if _, err := d.ExecuteQuery(ctx, q, nil); err != nil {
			d.log.Warn("failed to create index", zap.String("query", q), zap.Error(err))
		}
	}

	return nil
}
