package knowledge_test

import (
	"context"
	"testing"
	"time"

	"github.com/mgreer/custodian/internal/domain/event"
	"github.com/mgreer/custodian/internal/domain/knowledge"
	"github.com/mgreer/custodian/internal/repository/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func questionRecord(text string) event.ParsedRecord {
	return event.ParsedRecord{
		Kind:  event.KindQuestion,
		Title: text,
		Words: event.Normalize(text),
	}
}

func TestService_Learn_CreatesEntry(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.FAQRepository{}

	repo.On("List", ctx).Return([]knowledge.FAQEntry{}, nil)
	repo.On("Create", ctx, mock.Anything).Return(nil)

	svc := knowledge.NewService(repo, 0.5, nil)
	entry, created, err := svc.Learn(ctx, questionRecord("How do I reset the cache?"), "Run custodian cache --reset.")
	require.NoError(t, err)
	require.True(t, created)
	require.Equal(t, 1, entry.UseCount)
	require.Equal(t, "How do I reset the cache?", entry.Question)
	require.NotEmpty(t, entry.Fingerprint)
	repo.AssertExpectations(t)
}

func TestService_Learn_ParaphraseReinforcesExisting(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.FAQRepository{}

	stored := knowledge.FAQEntry{
		ID:          "faq-1",
		Question:    "How do I reset the cache?",
		Fingerprint: event.Normalize("How do I reset the cache?"),
		Answer:      "Run custodian cache --reset.",
		UseCount:    1,
		CreatedAt:   time.Now().Add(-time.Hour),
	}
	repo.On("List", ctx).Return([]knowledge.FAQEntry{stored}, nil)
	repo.On("Update", ctx, mock.Anything).Return(nil)

	svc := knowledge.NewService(repo, 0.5, nil)
	entry, created, err := svc.Learn(ctx, questionRecord("how can the cache be reset"), "Run custodian cache --reset.")
	require.NoError(t, err)
	require.False(t, created)
	require.Equal(t, "faq-1", entry.ID)
	require.Equal(t, 2, entry.UseCount)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	repo.AssertExpectations(t)
}

func TestService_Learn_ReplacesMateriallyDifferentAnswer(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.FAQRepository{}

	stored := knowledge.FAQEntry{
		ID:          "faq-1",
		Question:    "How do I reset the cache?",
		Fingerprint: event.Normalize("How do I reset the cache?"),
		Answer:      "Delete the cache directory by hand.",
		UseCount:    3,
	}
	repo.On("List", ctx).Return([]knowledge.FAQEntry{stored}, nil)
	repo.On("Update", ctx, mock.Anything).Return(nil)

	svc := knowledge.NewService(repo, 0.5, nil)
	entry, created, err := svc.Learn(ctx, questionRecord("How do I reset the cache?"), "Run custodian cache --reset.")
	require.NoError(t, err)
	require.False(t, created)
	require.Equal(t, "Run custodian cache --reset.", entry.Answer)
	repo.AssertExpectations(t)
}

func TestService_Learn_RejectsEmptyInputs(t *testing.T) {
	svc := knowledge.NewService(&mocks.FAQRepository{}, 0.5, nil)

	_, _, err := svc.Learn(context.Background(), event.ParsedRecord{}, "answer")
	require.ErrorIs(t, err, knowledge.ErrEmptyQuestion)

	_, _, err = svc.Learn(context.Background(), questionRecord("How do I reset the cache?"), "   ")
	require.ErrorIs(t, err, knowledge.ErrEmptyAnswer)
}

func TestService_Match_BelowThresholdReturnsNil(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.FAQRepository{}

	stored := knowledge.FAQEntry{
		ID:          "faq-1",
		Fingerprint: event.Normalize("How do I reset the cache?"),
		Answer:      "Run custodian cache --reset.",
	}
	repo.On("List", ctx).Return([]knowledge.FAQEntry{stored}, nil)

	svc := knowledge.NewService(repo, 0.5, nil)
	entry, score, err := svc.Match(ctx, questionRecord("Why does deployment keep timing out?"))
	require.NoError(t, err)
	require.Nil(t, entry)
	require.Less(t, score, 0.5)
}

func TestService_Match_PicksBestEntry(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.FAQRepository{}

	cache := knowledge.FAQEntry{ID: "cache", Fingerprint: event.Normalize("How do I reset the cache?")}
	deploy := knowledge.FAQEntry{ID: "deploy", Fingerprint: event.Normalize("How do I deploy to staging?")}
	repo.On("List", ctx).Return([]knowledge.FAQEntry{deploy, cache}, nil)

	svc := knowledge.NewService(repo, 0.5, nil)
	entry, score, err := svc.Match(ctx, questionRecord("how to reset the cache"))
	require.NoError(t, err)
	require.NotNil(t, entry)
	require.Equal(t, "cache", entry.ID)
	require.GreaterOrEqual(t, score, 0.5)
}

func TestService_Match_EmptyWordsNeverMatch(t *testing.T) {
	svc := knowledge.NewService(&mocks.FAQRepository{}, 0.5, nil)
	entry, score, err := svc.Match(context.Background(), event.ParsedRecord{})
	require.NoError(t, err)
	require.Nil(t, entry)
	require.Zero(t, score)
}

func TestService_Reinforce(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.FAQRepository{}
	repo.On("Update", ctx, mock.Anything).Return(nil)

	svc := knowledge.NewService(repo, 0.5, nil)
	entry := &knowledge.FAQEntry{ID: "faq-1", UseCount: 2}
	require.NoError(t, svc.Reinforce(ctx, entry))
	require.Equal(t, 3, entry.UseCount)
	require.False(t, entry.LastUsed.IsZero())

	require.ErrorIs(t, svc.Reinforce(ctx, nil), knowledge.ErrEntryNotFound)
}
