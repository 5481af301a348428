package coa

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/santri-erp/santri-erp/internal/shared"
)

// ============================================================================
// MOCK REPOSITORY
// ============================================================================

type memoryRepo struct {
	nodes map[string]ChartOfAccount
	refs  map[string]int
}

func newMemoryRepo(nodes ...ChartOfAccount) *memoryRepo {
	m := &memoryRepo{nodes: map[string]ChartOfAccount{}, refs: map[string]int{}}
	for _, n := range nodes {
		m.nodes[n.Code] = n
	}
	return m
}

func (m *memoryRepo) List(ctx context.Context, filters ListFilters) ([]ChartOfAccount, error) {
	var out []ChartOfAccount
	for _, n := range m.nodes {
		if filters.Level != "" && n.Level != filters.Level {
			continue
		}
		if filters.Postable && !(n.IsPostable && n.Level == LevelDetail) {
			continue
		}
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (m *memoryRepo) Get(ctx context.Context, code string) (ChartOfAccount, error) {
	n, ok := m.nodes[code]
	if !ok {
		return ChartOfAccount{}, shared.NewNotFound("chart of account", code)
	}
	return n, nil
}

func (m *memoryRepo) Create(ctx context.Context, node ChartOfAccount) (ChartOfAccount, error) {
	node.CreatedAt = time.Now()
	node.UpdatedAt = node.CreatedAt
	m.nodes[node.Code] = node
	return node, nil
}

func (m *memoryRepo) Update(ctx context.Context, node ChartOfAccount) (ChartOfAccount, error) {
	if _, ok := m.nodes[node.Code]; !ok {
		return ChartOfAccount{}, shared.NewNotFound("chart of account", node.Code)
	}
	node.UpdatedAt = time.Now()
	m.nodes[node.Code] = node
	return node, nil
}

func (m *memoryRepo) Delete(ctx context.Context, code string) error {
	if _, ok := m.nodes[code]; !ok {
		return shared.NewNotFound("chart of account", code)
	}
	delete(m.nodes, code)
	return nil
}

func (m *memoryRepo) CountChildren(ctx context.Context, code string) (int, error) {
	n := 0
	for _, node := range m.nodes {
		if node.ParentCode != nil && *node.ParentCode == code {
			n++
		}
	}
	return n, nil
}

func (m *memoryRepo) CountReferences(ctx context.Context, code string) (int, error) {
	return m.refs[code], nil
}

type recordingAudit struct {
	actions []string
}

func (a *recordingAudit) Record(ctx context.Context, log shared.AuditLog) error {
	a.actions = append(a.actions, log.Action)
	return nil
}

type countingCache struct {
	bumps int
}

func (c *countingCache) Bump(ctx context.Context) error {
	c.bumps++
	return nil
}

func strPtr(s string) *string { return &s }

func header(code string) ChartOfAccount {
	return ChartOfAccount{Code: code, Name: "Header " + code, Type: AccountTypeAsset, Level: LevelHeader, IsActive: true}
}

func detail(code, parent string) ChartOfAccount {
	return ChartOfAccount{Code: code, Name: "Detail " + code, Type: AccountTypeAsset, Level: LevelDetail, ParentCode: strPtr(parent), IsPostable: true, IsActive: true}
}

// ============================================================================
// TESTS
// ============================================================================

func TestCreateDefaultsActiveAndRecords(t *testing.T) {
	repo := newMemoryRepo(header("1000"))
	audit := &recordingAudit{}
	cache := &countingCache{}
	svc := NewService(repo, audit, cache)

	node, err := svc.Create(context.Background(), CreateRequest{
		Code:       "1100",
		Name:       "Kas",
		Type:       AccountTypeAsset,
		Level:      LevelDetail,
		ParentCode: strPtr("1000"),
		IsPostable: true,
	})
	require.NoError(t, err)
	assert.True(t, node.IsActive)
	assert.True(t, node.AcceptsPostings())
	assert.Equal(t, []string{"coa.create"}, audit.actions)
	assert.Equal(t, 1, cache.bumps)
}

func TestCreateRejectsDuplicateCode(t *testing.T) {
	svc := NewService(newMemoryRepo(header("2000")), nil, nil)

	_, err := svc.Create(context.Background(), CreateRequest{Code: "2000", Name: "Kewajiban", Type: AccountTypeLiability, Level: LevelHeader})
	var ve *shared.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "coa_code", ve.Fields[0].Field)
}

func TestCreateRejectsPostableHeader(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil, nil)

	_, err := svc.Create(context.Background(), CreateRequest{Code: "3000", Name: "Modal", Type: AccountTypeEquity, Level: LevelHeader, IsPostable: true})
	var ve *shared.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "is_postable", ve.Fields[0].Field)
}

func TestCreateRejectsMissingCodeAndUnknownParent(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil, nil)

	_, err := svc.Create(context.Background(), CreateRequest{Name: "Tanpa kode", Type: AccountTypeAsset, Level: LevelDetail})
	require.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.Create(context.Background(), CreateRequest{Code: "1101", Name: "Kas", Type: AccountTypeAsset, Level: LevelDetail, ParentCode: strPtr("9999")})
	var ve *shared.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "parent_coa_code", ve.Fields[0].Field)
}

func TestUpdateRejectsCycle(t *testing.T) {
	repo := newMemoryRepo(header("1000"), ChartOfAccount{Code: "1100", Name: "Sub", Type: AccountTypeAsset, Level: LevelSubheader, ParentCode: strPtr("1000"), IsActive: true}, detail("1101", "1100"))
	svc := NewService(repo, nil, nil)

	_, err := svc.Update(context.Background(), "1000", UpdateRequest{Name: "Aset", Type: AccountTypeAsset, Level: LevelHeader, ParentCode: strPtr("1101")})
	var ve *shared.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields[0].Message, "cycle")

	_, err = svc.Update(context.Background(), "1000", UpdateRequest{Name: "Aset", Type: AccountTypeAsset, Level: LevelHeader, ParentCode: strPtr("1000")})
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestDeleteWithChildrenIsRejected(t *testing.T) {
	repo := newMemoryRepo(header("1000"), detail("1100", "1000"))
	svc := NewService(repo, nil, nil)

	err := svc.Delete(context.Background(), "1000")
	require.ErrorIs(t, err, ErrHasChildren)
	require.ErrorIs(t, err, shared.ErrConflict)
	_, stillThere := repo.nodes["1000"]
	assert.True(t, stillThere)

	require.NoError(t, svc.Delete(context.Background(), "1100"))
	require.NoError(t, svc.Delete(context.Background(), "1000"))
	assert.Empty(t, repo.nodes)
}

func TestDeleteReferencedNodeIsRejected(t *testing.T) {
	repo := newMemoryRepo(detail("1101", "1000"))
	repo.refs["1101"] = 2
	svc := NewService(repo, nil, nil)

	require.ErrorIs(t, svc.Delete(context.Background(), "1101"), ErrInUse)
	require.ErrorIs(t, svc.Delete(context.Background(), "4040"), shared.ErrNotFound)
}

func TestUpdateKeepsReferencedNodePostable(t *testing.T) {
	repo := newMemoryRepo(header("1000"), detail("1101", "1000"))
	repo.refs["1101"] = 1
	svc := NewService(repo, nil, nil)
	ctx := context.Background()
	inactive := false

	for name, req := range map[string]UpdateRequest{
		"not postable": {Name: "Kas", Type: AccountTypeAsset, Level: LevelDetail, ParentCode: strPtr("1000")},
		"inactive":     {Name: "Kas", Type: AccountTypeAsset, Level: LevelDetail, ParentCode: strPtr("1000"), IsPostable: true, IsActive: &inactive},
		"subheader":    {Name: "Kas", Type: AccountTypeAsset, Level: LevelSubheader, ParentCode: strPtr("1000")},
	} {
		_, err := svc.Update(ctx, "1101", req)
		require.ErrorIs(t, err, ErrReferencedMustStayPostable, name)
		require.ErrorIs(t, err, shared.ErrConflict, name)
	}
	_, err := svc.RequirePostable(ctx, "1101")
	require.NoError(t, err)

	renamed, err := svc.Update(ctx, "1101", UpdateRequest{Name: "Kas Tunai", Type: AccountTypeAsset, Level: LevelDetail, ParentCode: strPtr("1000"), IsPostable: true})
	require.NoError(t, err)
	assert.Equal(t, "Kas Tunai", renamed.Name)

	delete(repo.refs, "1101")
	_, err = svc.Update(ctx, "1101", UpdateRequest{Name: "Kas", Type: AccountTypeAsset, Level: LevelDetail, ParentCode: strPtr("1000")})
	require.NoError(t, err)
}

func TestRequirePostable(t *testing.T) {
	inactive := detail("1102", "1000")
	inactive.IsActive = false
	repo := newMemoryRepo(header("1000"), detail("1101", "1000"), inactive)
	svc := NewService(repo, nil, nil)
	ctx := context.Background()

	_, err := svc.RequirePostable(ctx, "1101")
	require.NoError(t, err)
	_, err = svc.RequirePostable(ctx, "1000")
	require.ErrorIs(t, err, ErrNotPostable)
	_, err = svc.RequirePostable(ctx, "1102")
	require.ErrorIs(t, err, ErrNotPostable)
	_, err = svc.RequirePostable(ctx, "7777")
	require.ErrorIs(t, err, shared.ErrNotFound)
}
