package detect

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/counselops/clearance/internal/core/model"
)

type mockGraph struct {
	QueryExecuted string
	QueryParams   map[string]interface{}
	Result        neo4j.EagerResult
	Err           error
}

func (m *mockGraph) ExecuteQuery(ctx context.Context, query string, params map[string]interface{}) (neo4j.EagerResult, error) {
	m.QueryExecuted = query
	m.QueryParams = params
	if m.Err != nil {
		return neo4j.EagerResult{}, m.Err
	}
	return m.Result, nil
}

func (m *mockGraph) EnsureSchema(ctx context.Context) error { return nil }
func (m *mockGraph) Close(ctx context.Context) error        { return nil }

func record(keys []string, values []interface{}) *neo4j.Record {
	return &neo4j.Record{Keys: keys, Values: values}
}

var testSubject = Subject{ID: "p-1", Kind: model.KindCompany, FirmID: "firm-1"}

func TestBusinessPartnerDetector_DecodesRows(t *testing.T) {
	keys := []string{"entity_id", "entity_name", "entity_kind", "client_id", "client_name", "case_id", "case_name", "stake"}
	mock := &mockGraph{Result: neo4j.EagerResult{Records: []*neo4j.Record{
		record(keys, []interface{}{"c-9", "Acme BV", "company", "cl-1", "Client One", "k-1", "Client One v Acme", 60.0}),
	}}}

	d := &BusinessPartnerDetector{driver: mock, limit: 100, minStake: 25}
	candidates, err := d.Detect(context.Background(), testSubject)
	require.NoError(t, err)
	require.Len(t, candidates, 1)

	c := candidates[0]
	assert.Equal(t, model.TypeBusinessPartner, c.Type)
	assert.Equal(t, "p-1", c.SubjectID)
	assert.Equal(t, "c-9", c.Entity.ID)
	assert.Equal(t, model.KindCompany, c.Entity.Kind)
	assert.Equal(t, "Client One", c.Client.ClientName)
	assert.Equal(t, model.PartnerDetails{StakePercent: 60}, c.Details)
	assert.Zero(t, c.Score, "score is attached by the aggregator, not the detector")

	assert.Equal(t, "p-1", mock.QueryParams["subject_id"])
	assert.Equal(t, "firm-1", mock.QueryParams["firm_id"])
	assert.Equal(t, 100, mock.QueryParams["limit"])
	assert.Equal(t, 25.0, mock.QueryParams["min_stake"])
}

func TestBusinessPartnerDetector_IntegerStake(t *testing.T) {
	// Memgraph returns whole-number stakes as int64.
	keys := []string{"entity_id", "stake"}
	mock := &mockGraph{Result: neo4j.EagerResult{Records: []*neo4j.Record{
		record(keys, []interface{}{"c-9", int64(45)}),
	}}}

	d := &BusinessPartnerDetector{driver: mock, limit: 100, minStake: 25}
	candidates, err := d.Detect(context.Background(), testSubject)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, model.PartnerDetails{StakePercent: 45}, candidates[0].Details)
}

func TestIndirectOwnershipDetector_DecodesChain(t *testing.T) {
	keys := []string{"entity_id", "entity_name", "entity_kind", "chain", "depth"}
	mock := &mockGraph{Result: neo4j.EagerResult{Records: []*neo4j.Record{
		record(keys, []interface{}{"c-2", "Holding NV", "company",
			[]interface{}{"Subject BV", "Mid BV", "Holding NV"}, int64(2)}),
	}}}

	d := &IndirectOwnershipDetector{driver: mock, limit: 100, maxDepth: 3}
	candidates, err := d.Detect(context.Background(), testSubject)
	require.NoError(t, err)
	require.Len(t, candidates, 1)

	details, ok := candidates[0].Details.(model.OwnershipDetails)
	require.True(t, ok)
	assert.Equal(t, []string{"Subject BV", "Mid BV", "Holding NV"}, details.Chain)
	assert.Equal(t, 2, details.Depth)
	assert.Equal(t, 3, mock.QueryParams["max_depth"])
}

func TestHistoricalConflictDetector_DecodesEndDate(t *testing.T) {
	ended := time.Date(2023, 4, 1, 0, 0, 0, 0, time.UTC)
	keys := []string{"entity_id", "entity_name", "ended"}
	mock := &mockGraph{Result: neo4j.EagerResult{Records: []*neo4j.Record{
		record(keys, []interface{}{"x-1", "Rival Corp", ended}),
	}}}

	d := &HistoricalConflictDetector{driver: mock, limit: 100, lookback: 5}
	candidates, err := d.Detect(context.Background(), testSubject)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, model.HistoricalDetails{RepresentationEnded: ended}, candidates[0].Details)

	cutoff, ok := mock.QueryParams["cutoff"].(time.Time)
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().UTC().AddDate(-5, 0, 0), cutoff, time.Minute)
}

func TestFamilyTieDetector_MissingKeysUseDefaults(t *testing.T) {
	// A row with only an entity id must still decode without panicking.
	keys := []string{"entity_id"}
	mock := &mockGraph{Result: neo4j.EagerResult{Records: []*neo4j.Record{
		record(keys, []interface{}{"p-7"}),
	}}}

	d := &FamilyTieDetector{driver: mock, limit: 100}
	candidates, err := d.Detect(context.Background(), Subject{ID: "p-1", Kind: model.KindPerson, FirmID: "firm-1"})
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "p-7", candidates[0].Entity.ID)
	assert.Equal(t, model.FamilyDetails{Relation: ""}, candidates[0].Details)
	assert.Empty(t, candidates[0].Client.ClientName)
}

func TestDetect_StoreErrorSurfacesToCaller(t *testing.T) {
	mock := &mockGraph{Err: errors.New("bolt connection refused")}

	d := &DirectAdversaryDetector{driver: mock, limit: 100}
	candidates, err := d.Detect(context.Background(), testSubject)
	assert.Error(t, err)
	assert.Nil(t, candidates)
}

func TestAll_DeclaredOrderAndKinds(t *testing.T) {
	detectors := All(&mockGraph{}, Options{})
	require.Len(t, detectors, 8)

	wantOrder := []model.ConflictType{
		model.TypeDirectAdversary,
		model.TypeIndirectOwnership,
		model.TypeDirectorOverlap,
		model.TypeFamilyTie,
		model.TypeBusinessPartner,
		model.TypeHistoricalConflict,
		model.TypeGroupCompany,
		model.TypeProfessionalOverlap,
	}
	for i, d := range detectors {
		assert.Equal(t, wantOrder[i], d.Type())
	}

	personKinds := map[model.ConflictType]bool{}
	companyKinds := map[model.ConflictType]bool{}
	for _, d := range detectors {
		personKinds[d.Type()] = d.AppliesTo(model.KindPerson)
		companyKinds[d.Type()] = d.AppliesTo(model.KindCompany)
	}

	// Universal detectors apply to both kinds.
	for _, typ := range []model.ConflictType{model.TypeDirectAdversary, model.TypeHistoricalConflict, model.TypeProfessionalOverlap} {
		assert.True(t, personKinds[typ], "%s should apply to persons", typ)
		assert.True(t, companyKinds[typ], "%s should apply to companies", typ)
	}
	// Family is person-only; the corporate patterns are company-only.
	assert.True(t, personKinds[model.TypeFamilyTie])
	assert.False(t, companyKinds[model.TypeFamilyTie])
	for _, typ := range []model.ConflictType{model.TypeIndirectOwnership, model.TypeDirectorOverlap, model.TypeBusinessPartner, model.TypeGroupCompany} {
		assert.False(t, personKinds[typ], "%s should not apply to persons", typ)
		assert.True(t, companyKinds[typ], "%s should apply to companies", typ)
	}
}
