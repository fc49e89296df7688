package dedup_test

import (
	"context"
	"testing"
	"time"

	"github.com/mgreer/custodian/internal/domain/dedup"
	"github.com/mgreer/custodian/internal/domain/event"
	"github.com/mgreer/custodian/internal/domain/similarity"
	"github.com/mgreer/custodian/internal/repository/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestService(repo dedup.Repository) *dedup.Service {
	return dedup.NewService(repo, similarity.NewScorer(similarity.DefaultWeights()), 0.6, nil)
}

func issueRecord(words ...string) event.ParsedRecord {
	return event.ParsedRecord{
		Kind:       event.KindIssue,
		ErrorTerms: []string{"importerror"},
		Files:      []string{"main.py"},
		Words:      words,
		ReceivedAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestService_Insert_NewEntry(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.IssueRepository{}

	repo.On("ListByKind", ctx, "issue").Return([]dedup.IssueEntry{}, nil)
	repo.On("CreateEntry", ctx, mock.Anything).Return(nil)

	svc := newTestService(repo)
	result, err := svc.Insert(ctx, issueRecord("config", "load"))
	require.NoError(t, err)
	require.False(t, result.Duplicate)
	require.NotEmpty(t, result.Entry.ID)
	require.Nil(t, result.Entry.ClusterID)
	repo.AssertExpectations(t)
}

func TestService_Insert_RejectsUnknownKind(t *testing.T) {
	repo := &mocks.IssueRepository{}
	svc := newTestService(repo)

	_, err := svc.Insert(context.Background(), event.ParsedRecord{Kind: event.KindUnknown})
	require.ErrorIs(t, err, dedup.ErrUnknownKind)
}

func TestService_Insert_DuplicateCreatesCluster(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.IssueRepository{}

	match := dedup.IssueEntry{
		ID:        "entry-1",
		Record:    issueRecord("calling", "importerror", "main"),
		FirstSeen: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}
	repo.On("ListByKind", ctx, "issue").Return([]dedup.IssueEntry{match}, nil)

	var createdCluster *dedup.Cluster
	repo.On("CreateCluster", ctx, mock.Anything).Run(func(args mock.Arguments) {
		createdCluster = args.Get(1).(*dedup.Cluster)
	}).Return(nil)
	repo.On("AssignCluster", ctx, "entry-1", mock.Anything).Return(nil)
	repo.On("CreateEntry", ctx, mock.Anything).Return(nil)
	repo.On("IncrementClusterSize", ctx, mock.Anything).Return(nil)
	repo.On("GetEntry", ctx, "entry-1").Return(&match, nil)

	svc := newTestService(repo)
	result, err := svc.Insert(ctx, issueRecord("importerror", "inside", "main", "throws"))
	require.NoError(t, err)
	require.True(t, result.Duplicate)
	require.GreaterOrEqual(t, result.Score, 0.6)
	require.Equal(t, "entry-1", result.Representative.ID)
	require.Equal(t, 2, result.ClusterSize)
	require.NotNil(t, createdCluster)
	require.Equal(t, "entry-1", createdCluster.RepresentativeID)
	require.NotNil(t, result.Entry.ClusterID)
	repo.AssertExpectations(t)
}

func TestService_Insert_DuplicateJoinsExistingCluster(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.IssueRepository{}

	clusterID := "cluster-1"
	match := dedup.IssueEntry{
		ID:        "entry-1",
		Record:    issueRecord("calling", "importerror", "main"),
		ClusterID: &clusterID,
		FirstSeen: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}
	cluster := dedup.Cluster{ID: clusterID, RepresentativeID: "entry-1", Size: 2}

	repo.On("ListByKind", ctx, "issue").Return([]dedup.IssueEntry{match}, nil)
	repo.On("GetCluster", ctx, clusterID).Return(&cluster, nil)
	repo.On("CreateEntry", ctx, mock.Anything).Return(nil)
	repo.On("IncrementClusterSize", ctx, clusterID).Return(nil)
	repo.On("GetEntry", ctx, "entry-1").Return(&match, nil)

	svc := newTestService(repo)
	result, err := svc.Insert(ctx, issueRecord("importerror", "inside", "main", "throws"))
	require.NoError(t, err)
	require.True(t, result.Duplicate)
	require.Equal(t, 3, result.ClusterSize)
	repo.AssertNotCalled(t, "CreateCluster", mock.Anything, mock.Anything)
	repo.AssertExpectations(t)
}

func TestService_Insert_TieGoesToEarliestEntry(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.IssueRepository{}

	// Same record on both candidates, so both score identically; the
	// list is first-seen ascending, so the earlier one must win.
	shared := issueRecord("calling", "importerror", "main")
	earlier := dedup.IssueEntry{ID: "earlier", Record: shared, FirstSeen: time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)}
	later := dedup.IssueEntry{ID: "later", Record: shared, FirstSeen: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}

	repo.On("ListByKind", ctx, "issue").Return([]dedup.IssueEntry{earlier, later}, nil)
	repo.On("CreateCluster", ctx, mock.Anything).Return(nil)
	repo.On("AssignCluster", ctx, "earlier", mock.Anything).Return(nil)
	repo.On("CreateEntry", ctx, mock.Anything).Return(nil)
	repo.On("IncrementClusterSize", ctx, mock.Anything).Return(nil)
	repo.On("GetEntry", ctx, "earlier").Return(&earlier, nil)

	svc := newTestService(repo)
	result, err := svc.Insert(ctx, shared)
	require.NoError(t, err)
	require.True(t, result.Duplicate)
	require.Equal(t, "earlier", result.Representative.ID)
	repo.AssertExpectations(t)
}

func TestService_Insert_BelowThresholdStaysSeparate(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.IssueRepository{}

	unrelated := dedup.IssueEntry{
		ID: "entry-1",
		Record: event.ParsedRecord{
			Kind:       event.KindIssue,
			ErrorTerms: []string{"keyerror"},
			Files:      []string{"db.go"},
			Words:      []string{"database", "timeout"},
		},
	}
	repo.On("ListByKind", ctx, "issue").Return([]dedup.IssueEntry{unrelated}, nil)
	repo.On("CreateEntry", ctx, mock.Anything).Return(nil)

	svc := newTestService(repo)
	result, err := svc.Insert(ctx, issueRecord("config", "load"))
	require.NoError(t, err)
	require.False(t, result.Duplicate)
	require.Less(t, result.Score, 0.6)
	repo.AssertNotCalled(t, "CreateCluster", mock.Anything, mock.Anything)
	repo.AssertExpectations(t)
}
