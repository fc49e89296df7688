package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/mgreer/custodian/internal/domain/dedup"
	"github.com/mgreer/custodian/internal/domain/event"
	"github.com/mgreer/custodian/internal/repository"
	"github.com/stretchr/testify/require"
)

func testEntry(id string) *dedup.IssueEntry {
	return &dedup.IssueEntry{
		ID: id,
		Record: event.ParsedRecord{
			Kind:       event.KindIssue,
			Number:     42,
			Author:     "carol",
			Repo:       "acme/widgets",
			Title:      "ImportError in main.py",
			Files:      []string{"main.py"},
			Functions:  []string{"load_config"},
			ErrorTerms: []string{"error", "importerror"},
			Words:      []string{"calling", "importerror", "main"},
		},
		FirstSeen: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestIssueRepository_CreateAndGet(t *testing.T) {
	db := NewTestDB(t)
	repo := NewIssueRepository(db)
	ctx := context.Background()

	entry := testEntry("e1")
	require.NoError(t, repo.CreateEntry(ctx, entry))

	got, err := repo.GetEntry(ctx, "e1")
	require.NoError(t, err)
	require.Equal(t, entry.ID, got.ID)
	require.Equal(t, entry.Record.Number, got.Record.Number)
	require.Equal(t, entry.Record.Title, got.Record.Title)
	require.Equal(t, entry.Record.Files, got.Record.Files)
	require.Equal(t, entry.Record.Functions, got.Record.Functions)
	require.Equal(t, entry.Record.ErrorTerms, got.Record.ErrorTerms)
	require.Equal(t, entry.Record.Words, got.Record.Words)
	require.Nil(t, got.ClusterID)
	require.True(t, entry.FirstSeen.Equal(got.FirstSeen))
}

func TestIssueRepository_CreateEntry_DuplicateID(t *testing.T) {
	db := NewTestDB(t)
	repo := NewIssueRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.CreateEntry(ctx, testEntry("e1")))
	require.ErrorIs(t, repo.CreateEntry(ctx, testEntry("e1")), repository.ErrConflict)
}

func TestIssueRepository_CreateCluster_DuplicateID(t *testing.T) {
	db := NewTestDB(t)
	repo := NewIssueRepository(db)
	ctx := context.Background()

	cluster := &dedup.Cluster{ID: "c1", RepresentativeID: "e1", Size: 1, CreatedAt: time.Now()}
	require.NoError(t, repo.CreateCluster(ctx, cluster))
	require.ErrorIs(t, repo.CreateCluster(ctx, cluster), repository.ErrConflict)
}

func TestIssueRepository_GetEntry_NotFound(t *testing.T) {
	db := NewTestDB(t)
	repo := NewIssueRepository(db)

	_, err := repo.GetEntry(context.Background(), "missing")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestIssueRepository_EmptyTokensRoundTrip(t *testing.T) {
	db := NewTestDB(t)
	repo := NewIssueRepository(db)
	ctx := context.Background()

	entry := testEntry("e1")
	entry.Record.Files = nil
	entry.Record.Functions = nil
	require.NoError(t, repo.CreateEntry(ctx, entry))

	got, err := repo.GetEntry(ctx, "e1")
	require.NoError(t, err)
	require.Nil(t, got.Record.Files)
	require.Nil(t, got.Record.Functions)
}

func TestIssueRepository_ListByKind_OrderedByFirstSeen(t *testing.T) {
	db := NewTestDB(t)
	repo := NewIssueRepository(db)
	ctx := context.Background()

	second := testEntry("second")
	second.FirstSeen = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	first := testEntry("first")

	require.NoError(t, repo.CreateEntry(ctx, second))
	require.NoError(t, repo.CreateEntry(ctx, first))

	entries, err := repo.ListByKind(ctx, "issue")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, "first", entries[0].ID)
	require.Equal(t, "second", entries[1].ID)

	other, err := repo.ListByKind(ctx, "pull_request")
	require.NoError(t, err)
	require.Empty(t, other)
}

func TestIssueRepository_Clusters(t *testing.T) {
	db := NewTestDB(t)
	repo := NewIssueRepository(db)
	ctx := context.Background()

	entry := testEntry("e1")
	require.NoError(t, repo.CreateEntry(ctx, entry))

	cluster := &dedup.Cluster{
		ID:               "c1",
		RepresentativeID: "e1",
		Size:             1,
		CreatedAt:        time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
	}
	require.NoError(t, repo.CreateCluster(ctx, cluster))
	require.NoError(t, repo.AssignCluster(ctx, "e1", "c1"))
	require.NoError(t, repo.IncrementClusterSize(ctx, "c1"))

	got, err := repo.GetCluster(ctx, "c1")
	require.NoError(t, err)
	require.Equal(t, 2, got.Size)
	require.Equal(t, "e1", got.RepresentativeID)

	entryGot, err := repo.GetEntry(ctx, "e1")
	require.NoError(t, err)
	require.NotNil(t, entryGot.ClusterID)
	require.Equal(t, "c1", *entryGot.ClusterID)
}

func TestIssueRepository_AssignCluster_NotFound(t *testing.T) {
	db := NewTestDB(t)
	repo := NewIssueRepository(db)
	ctx := context.Background()

	cluster := &dedup.Cluster{ID: "c1", RepresentativeID: "e1", Size: 1, CreatedAt: time.Now()}
	require.NoError(t, repo.CreateCluster(ctx, cluster))

	require.ErrorIs(t, repo.AssignCluster(ctx, "missing", "c1"), repository.ErrNotFound)
	require.ErrorIs(t, repo.IncrementClusterSize(ctx, "missing"), repository.ErrNotFound)
}

func TestIssueRepository_ListClustersSince(t *testing.T) {
	db := NewTestDB(t)
	repo := NewIssueRepository(db)
	ctx := context.Background()

	old := &dedup.Cluster{ID: "old", RepresentativeID: "e1", Size: 2,
		CreatedAt: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)}
	recent := &dedup.Cluster{ID: "recent", RepresentativeID: "e2", Size: 2,
		CreatedAt: time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)}
	require.NoError(t, repo.CreateCluster(ctx, old))
	require.NoError(t, repo.CreateCluster(ctx, recent))

	clusters, err := repo.ListClustersSince(ctx, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, clusters, 1)
	require.Equal(t, "recent", clusters[0].ID)
}
