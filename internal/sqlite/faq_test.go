package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/mgreer/custodian/internal/domain/knowledge"
	"github.com/mgreer/custodian/internal/repository"
	"github.com/stretchr/testify/require"
)

func testFAQEntry(id string) *knowledge.FAQEntry {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	return &knowledge.FAQEntry{
		ID:          id,
		Question:    "How do I reset the cache?",
		Fingerprint: []string{"cache", "how", "reset"},
		Answer:      "Run custodian cache --reset.",
		UseCount:    1,
		CreatedAt:   now,
		LastUsed:    now,
	}
}

func TestFAQRepository_CreateAndList(t *testing.T) {
	db := NewTestDB(t)
	repo := NewFAQRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, testFAQEntry("f1")))

	later := testFAQEntry("f2")
	later.CreatedAt = later.CreatedAt.Add(time.Hour)
	later.Question = "How do I deploy to staging?"
	later.Fingerprint = []string{"deploy", "how", "staging"}
	require.NoError(t, repo.Create(ctx, later))

	entries, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, "f1", entries[0].ID)
	require.Equal(t, "f2", entries[1].ID)
	require.Equal(t, []string{"cache", "how", "reset"}, entries[0].Fingerprint)
	require.Equal(t, "Run custodian cache --reset.", entries[0].Answer)
}

func TestFAQRepository_Create_DuplicateID(t *testing.T) {
	db := NewTestDB(t)
	repo := NewFAQRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, testFAQEntry("f1")))
	require.ErrorIs(t, repo.Create(ctx, testFAQEntry("f1")), repository.ErrConflict)
}

func TestFAQRepository_Update(t *testing.T) {
	db := NewTestDB(t)
	repo := NewFAQRepository(db)
	ctx := context.Background()

	entry := testFAQEntry("f1")
	require.NoError(t, repo.Create(ctx, entry))

	entry.Answer = "Use the admin panel instead."
	entry.UseCount = 2
	entry.LastUsed = entry.LastUsed.Add(time.Hour)
	require.NoError(t, repo.Update(ctx, entry))

	entries, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "Use the admin panel instead.", entries[0].Answer)
	require.Equal(t, 2, entries[0].UseCount)
}

func TestFAQRepository_Update_NotFound(t *testing.T) {
	db := NewTestDB(t)
	repo := NewFAQRepository(db)

	err := repo.Update(context.Background(), testFAQEntry("missing"))
	require.ErrorIs(t, err, knowledge.ErrEntryNotFound)
}

func TestFAQRepository_Count(t *testing.T) {
	db := NewTestDB(t)
	repo := NewFAQRepository(db)
	ctx := context.Background()

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	require.Zero(t, count)

	require.NoError(t, repo.Create(ctx, testFAQEntry("f1")))

	count, err = repo.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, count)
}
