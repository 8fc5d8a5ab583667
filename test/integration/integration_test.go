//go:build integration
// +build integration

package integration

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/counselops/clearance/internal/core"
	"github.com/counselops/clearance/internal/core/detect"
	"github.com/counselops/clearance/internal/core/model"
	"github.com/counselops/clearance/internal/driver"
)

const testFirm = "integration-firm"

func setupDriver(t *testing.T) *driver.Neo4jDriver {
	t.Helper()

	_ = godotenv.Load("../../.env")

	uri := os.Getenv("GRAPH_URI")
	if uri == "" {
		t.Skip("Skipping integration test: GRAPH_URI not set")
	}

	d, err := driver.NewNeo4jDriver(uri, os.Getenv("GRAPH_USER"), os.Getenv("GRAPH_PASSWORD"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close(context.Background()) })

	require.NoError(t, d.EnsureSchema(context.Background()))
	cleanGraph(t, d)
	t.Cleanup(func() { cleanGraph(t, d) })

	return d
}

func cleanGraph(t *testing.T, d *driver.Neo4jDriver) {
	t.Helper()
	_, err := d.ExecuteQuery(context.Background(),
		"MATCH (n {firm_id: $firm_id}) DETACH DELETE n",
		map[string]interface{}{"firm_id": testFirm})
	require.NoError(t, err)
}

func run(t *testing.T, d *driver.Neo4jDriver, query string, params map[string]interface{}) {
	t.Helper()
	if params == nil {
		params = map[string]interface{}{}
	}
	params["firm_id"] = testFirm
	_, err := d.ExecuteQuery(context.Background(), query, params)
	require.NoError(t, err)
}

// seedGraph builds a small firm: one active case with a client and an opposing
// party, an ownership chain behind the opponent, and a family tie to a case
// participant.
func seedGraph(t *testing.T, d *driver.Neo4jDriver) {
	t.Helper()

	run(t, d, `
		CREATE (cl:Party {id: 'client-1', name: 'Harbor Logistics', kind: 'company', firm_id: $firm_id})
		CREATE (op:Party {id: 'opponent-1', name: 'Meridian Freight', kind: 'company', firm_id: $firm_id})
		CREATE (k:Case {id: 'case-1', name: 'Harbor v Meridian', status: 'active', firm_id: $firm_id})
		CREATE (k)-[:CLIENT]->(cl)
		CREATE (k)-[:OPPONENT]->(op)
	`, nil)

	// opponent-1 is owned through one intermediary by holdco-1.
	run(t, d, `
		MATCH (op:Party {id: 'opponent-1', firm_id: $firm_id})
		CREATE (mid:Party {id: 'mid-1', name: 'Meridian Holdings BV', kind: 'company', firm_id: $firm_id})
		CREATE (top:Party {id: 'holdco-1', name: 'Meridian Group AG', kind: 'company', firm_id: $firm_id})
		CREATE (top)-[:OWNS]->(mid)-[:OWNS]->(op)
	`, nil)

	// spouse-1 is married to a person who is personally opposed in a second
	// active case.
	run(t, d, `
		MATCH (cl:Party {id: 'client-1', firm_id: $firm_id})
		CREATE (dir:Party {id: 'director-1', name: 'A. Vogel', kind: 'person', firm_id: $firm_id})
		CREATE (sp:Party {id: 'spouse-1', name: 'B. Vogel', kind: 'person', firm_id: $firm_id})
		CREATE (k2:Case {id: 'case-2', name: 'Harbor v Vogel', status: 'active', firm_id: $firm_id})
		CREATE (k2)-[:CLIENT]->(cl)
		CREATE (k2)-[:OPPONENT]->(dir)
		CREATE (sp)-[:FAMILY {relation: 'spouse'}]->(dir)
	`, nil)
}

func newChecker(d *driver.Neo4jDriver) *core.Checker {
	return core.NewChecker(detect.All(d, detect.Options{}), core.DefaultLatencyBudget, zap.NewNop(), nil)
}

func TestDirectAdversaryAgainstLiveGraph(t *testing.T) {
	d := setupDriver(t)
	seedGraph(t, d)

	checker := newChecker(d)
	out := checker.Check(context.Background(), detect.Subject{
		ID: "opponent-1", Kind: model.KindCompany, FirmID: testFirm,
	})

	require.NotEmpty(t, out)
	assert.Equal(t, model.TypeDirectAdversary, out[0].Type)
	assert.Equal(t, 100, out[0].Score)
	assert.Equal(t, "client-1", out[0].Client.ClientID)
	assert.Equal(t, "case-1", out[0].Client.CaseID)
}

func TestIndirectOwnershipAgainstLiveGraph(t *testing.T) {
	d := setupDriver(t)
	seedGraph(t, d)

	checker := newChecker(d)
	out := checker.Check(context.Background(), detect.Subject{
		ID: "holdco-1", Kind: model.KindCompany, FirmID: testFirm,
	})

	var ownership *model.Candidate
	for i := range out {
		if out[i].Type == model.TypeIndirectOwnership {
			ownership = &out[i]
			break
		}
	}
	require.NotNil(t, ownership, "expected an ownership candidate for holdco-1")

	details, ok := ownership.Details.(model.OwnershipDetails)
	require.True(t, ok)
	assert.Equal(t, 2, details.Depth)
	assert.Contains(t, details.Chain, "Meridian Holdings BV")
}

func TestFamilyTieAgainstLiveGraph(t *testing.T) {
	d := setupDriver(t)
	seedGraph(t, d)

	checker := newChecker(d)
	out := checker.Check(context.Background(), detect.Subject{
		ID: "spouse-1", Kind: model.KindPerson, FirmID: testFirm,
	})

	require.NotEmpty(t, out)
	assert.Equal(t, model.TypeFamilyTie, out[0].Type)
	// spouse relation carries the +10 adjustment over the base.
	assert.Equal(t, 95, out[0].Score)
}

func TestClosedCasesAreIgnored(t *testing.T) {
	d := setupDriver(t)

	run(t, d, `
		CREATE (cl:Party {id: 'client-2', name: 'Old Client', kind: 'company', firm_id: $firm_id})
		CREATE (op:Party {id: 'opponent-2', name: 'Old Opponent', kind: 'company', firm_id: $firm_id})
		CREATE (k:Case {id: 'case-closed', name: 'Settled Matter', status: 'closed',
			ended: datetime($ended), firm_id: $firm_id})
		CREATE (k)-[:CLIENT]->(cl)
		CREATE (k)-[:OPPONENT]->(op)
	`, map[string]interface{}{
		"ended": time.Now().UTC().AddDate(-8, 0, 0).Format(time.RFC3339),
	})

	checker := newChecker(d)
	out := checker.Check(context.Background(), detect.Subject{
		ID: "opponent-2", Kind: model.KindCompany, FirmID: testFirm,
	})

	for _, c := range out {
		assert.NotEqual(t, model.TypeDirectAdversary, c.Type,
			fmt.Sprintf("closed case produced an adversary hit: %+v", c))
	}
}