// Package mocks provides testify mocks for the domain repository
// interfaces.
package mocks

import (
	"context"
	"time"

	"github.com/mgreer/custodian/internal/domain/dedup"
	"github.com/mgreer/custodian/internal/domain/knowledge"
	"github.com/mgreer/custodian/internal/domain/tracker"
	"github.com/stretchr/testify/mock"
)

// IssueRepository is a mock for dedup.Repository.
type IssueRepository struct {
	mock.Mock
}

func (m *IssueRepository) CreateEntry(ctx context.Context, entry *dedup.IssueEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *IssueRepository) GetEntry(ctx context.Context, id string) (*dedup.IssueEntry, error) {
	args := m.Called(ctx, id)
	if entry, ok := args.Get(0).(*dedup.IssueEntry); ok {
		return entry, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *IssueRepository) ListByKind(ctx context.Context, kind string) ([]dedup.IssueEntry, error) {
	args := m.Called(ctx, kind)
	if entries, ok := args.Get(0).([]dedup.IssueEntry); ok {
		return entries, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *IssueRepository) AssignCluster(ctx context.Context, entryID, clusterID string) error {
	args := m.Called(ctx, entryID, clusterID)
	return args.Error(0)
}

func (m *IssueRepository) CreateCluster(ctx context.Context, cluster *dedup.Cluster) error {
	args := m.Called(ctx, cluster)
	return args.Error(0)
}

func (m *IssueRepository) GetCluster(ctx context.Context, id string) (*dedup.Cluster, error) {
	args := m.Called(ctx, id)
	if cluster, ok := args.Get(0).(*dedup.Cluster); ok {
		return cluster, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *IssueRepository) IncrementClusterSize(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *IssueRepository) ListClustersSince(ctx context.Context, since time.Time) ([]dedup.Cluster, error) {
	args := m.Called(ctx, since)
	if clusters, ok := args.Get(0).([]dedup.Cluster); ok {
		return clusters, args.Error(1)
	}
	return nil, args.Error(1)
}

// FAQRepository is a mock for knowledge.Repository.
type FAQRepository struct {
	mock.Mock
}

func (m *FAQRepository) Create(ctx context.Context, entry *knowledge.FAQEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *FAQRepository) Update(ctx context.Context, entry *knowledge.FAQEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *FAQRepository) List(ctx context.Context) ([]knowledge.FAQEntry, error) {
	args := m.Called(ctx)
	if entries, ok := args.Get(0).([]knowledge.FAQEntry); ok {
		return entries, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *FAQRepository) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

// TrackedItemRepository is a mock for tracker.Repository.
type TrackedItemRepository struct {
	mock.Mock
}

func (m *TrackedItemRepository) Get(ctx context.Context, number int) (*tracker.TrackedItem, error) {
	args := m.Called(ctx, number)
	if item, ok := args.Get(0).(*tracker.TrackedItem); ok {
		return item, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *TrackedItemRepository) Put(ctx context.Context, item *tracker.TrackedItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *TrackedItemRepository) ListUnresolved(ctx context.Context) ([]tracker.TrackedItem, error) {
	args := m.Called(ctx)
	if items, ok := args.Get(0).([]tracker.TrackedItem); ok {
		return items, args.Error(1)
	}
	return nil, args.Error(1)
}
