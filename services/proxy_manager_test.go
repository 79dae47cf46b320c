package services

import (
	"context"
	"fmt"
	"testing"

	"autoapply/models"

	"github.com/stretchr/testify/assert"
)

type fakeProvider struct {
	listed     []*models.ProxyIdentity
	listErr    error
	createErr  error
	created    int
	deletedIDs []string
}

func (f *fakeProvider) List(ctx context.Context) ([]*models.ProxyIdentity, error) {
	return f.listed, f.listErr
}

func (f *fakeProvider) Create(ctx context.Context, country, label string) (*models.ProxyIdentity, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created++
	return &models.ProxyIdentity{
		ID:       fmt.Sprintf("fresh-%d", f.created),
		Endpoint: fmt.Sprintf("10.0.0.%d:8080", f.created),
		Country:  country,
	}, nil
}

func (f *fakeProvider) Delete(ctx context.Context, id string) error {
	f.deletedIDs = append(f.deletedIDs, id)
	return nil
}

func (f *fakeProvider) Refresh(ctx context.Context, id string) error { return nil }

func identity(id string) *models.ProxyIdentity {
	return &models.ProxyIdentity{ID: id, Endpoint: id + ".example.com:8080"}
}

func TestProxyManagerBootstrap(t *testing.T) {
	provider := &fakeProvider{listed: []*models.ProxyIdentity{identity("a"), identity("b")}}
	manager := NewProxyManager(provider, 3, 5, "US")
	manager.Bootstrap(context.Background())

	assert.Equal(t, 2, manager.PoolSize())
	current := manager.Current()
	assert.NotNil(t, current)
	assert.Equal(t, "a", current.ID)
}

func TestProxyManagerBootstrapProviderDown(t *testing.T) {
	provider := &fakeProvider{listErr: fmt.Errorf("provider unreachable")}
	manager := NewProxyManager(provider, 3, 5, "US")
	manager.Bootstrap(context.Background())

	assert.Equal(t, 0, manager.PoolSize())
	assert.Nil(t, manager.Current())
}

func TestProxyManagerSuccessResetsFailureStreak(t *testing.T) {
	provider := &fakeProvider{listed: []*models.ProxyIdentity{identity("a")}}
	manager := NewProxyManager(provider, 3, 5, "US")
	manager.Bootstrap(context.Background())
	ctx := context.Background()

	manager.ReportFailure(ctx)
	manager.ReportFailure(ctx)
	manager.ReportSuccess()
	manager.ReportFailure(ctx)
	manager.ReportFailure(ctx)

	// Streak never reached 3 consecutively, so no rotation happened.
	assert.Equal(t, 0, provider.created)
	assert.Equal(t, "a", manager.Current().ID)
}

func TestProxyManagerRotatesAtThreshold(t *testing.T) {
	provider := &fakeProvider{listed: []*models.ProxyIdentity{identity("a")}}
	manager := NewProxyManager(provider, 3, 5, "US")
	manager.Bootstrap(context.Background())
	ctx := context.Background()

	manager.ReportFailure(ctx)
	manager.ReportFailure(ctx)
	manager.ReportFailure(ctx)

	// Exactly one provisioning call, and the fresh identity took over.
	assert.Equal(t, 1, provider.created)
	assert.Equal(t, "fresh-1", manager.Current().ID)
	assert.Equal(t, 2, manager.PoolSize())
}

func TestProxyManagerPrefersExistingHealthyIdentity(t *testing.T) {
	provider := &fakeProvider{listed: []*models.ProxyIdentity{identity("a"), identity("b")}}
	manager := NewProxyManager(provider, 3, 5, "US")
	manager.Bootstrap(context.Background())
	ctx := context.Background()

	manager.ReportFailure(ctx)
	manager.ReportFailure(ctx)
	manager.ReportFailure(ctx)

	// "b" was healthy, so nothing was provisioned.
	assert.Equal(t, 0, provider.created)
	assert.Equal(t, "b", manager.Current().ID)
}

func TestProxyManagerFallsBackToDirectEgress(t *testing.T) {
	provider := &fakeProvider{
		listed:    []*models.ProxyIdentity{identity("a")},
		createErr: fmt.Errorf("quota exceeded"),
	}
	manager := NewProxyManager(provider, 3, 5, "US")
	manager.Bootstrap(context.Background())
	ctx := context.Background()

	manager.ReportFailure(ctx)
	manager.ReportFailure(ctx)
	manager.ReportFailure(ctx)

	assert.Nil(t, manager.Current())
}

func TestProxyManagerNoProviderMeansDirectEgress(t *testing.T) {
	manager := NewProxyManager(nil, 3, 5, "US")
	manager.Bootstrap(context.Background())

	assert.Nil(t, manager.Current())
	// Reporting against direct egress is a no-op.
	manager.ReportFailure(context.Background())
	manager.ReportSuccess()
}

func TestProxyManagerPrunesLRUOverCap(t *testing.T) {
	provider := &fakeProvider{listed: []*models.ProxyIdentity{identity("a"), identity("b")}}
	manager := NewProxyManager(provider, 1, 2, "US")
	manager.Bootstrap(context.Background())
	ctx := context.Background()

	// Threshold 1: each failure exhausts the current identity. Two failures
	// burn "a" then "b"; the third provisions and pushes the pool over cap 2.
	manager.ReportFailure(ctx)
	manager.ReportFailure(ctx)

	assert.Equal(t, 1, provider.created)
	assert.Equal(t, "fresh-1", manager.Current().ID)
	assert.LessOrEqual(t, manager.PoolSize(), 2)
	assert.NotEmpty(t, provider.deletedIDs)
}

func TestProxyManagerCurrentReturnsCopy(t *testing.T) {
	provider := &fakeProvider{listed: []*models.ProxyIdentity{identity("a")}}
	manager := NewProxyManager(provider, 3, 5, "US")
	manager.Bootstrap(context.Background())

	first := manager.Current()
	first.ConsecutiveFailures = 99

	// Mutating the copy did not poison the managed identity.
	manager.ReportFailure(context.Background())
	assert.Equal(t, "a", manager.Current().ID)
}

func TestProxyIdentityExhausted(t *testing.T) {
	p := &models.ProxyIdentity{ConsecutiveFailures: 2}
	assert.False(t, p.Exhausted(3))
	p.ConsecutiveFailures = 3
	assert.True(t, p.Exhausted(3))
}
