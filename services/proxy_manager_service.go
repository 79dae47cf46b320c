package services

import (
	"context"
	"log"
	"sort"
	"sync"
	"time"

	"autoapply/models"
)

// ProxyManager owns the pool of egress identities and the single "current"
// pointer. All reads and writes to identity state go through it; callers
// never touch ProxyIdentity counters directly.
type ProxyManager struct {
	mu sync.Mutex

	provider         ProxyProvider
	pool             []*models.ProxyIdentity
	current          *models.ProxyIdentity
	failureThreshold int
	maxPoolSize      int
	country          string
}

func NewProxyManager(provider ProxyProvider, failureThreshold, maxPoolSize int, country string) *ProxyManager {
	if failureThreshold <= 0 {
		failureThreshold = 3
	}
	if maxPoolSize <= 0 {
		maxPoolSize = 5
	}
	return &ProxyManager{
		provider:         provider,
		failureThreshold: failureThreshold,
		maxPoolSize:      maxPoolSize,
		country:          country,
	}
}

// Bootstrap loads the provider's existing identities and picks a current one.
// A provider error is not fatal; the manager starts empty and provisions on
// first failure.
func (m *ProxyManager) Bootstrap(ctx context.Context) {
	if m.provider == nil {
		return
	}
	identities, err := m.provider.List(ctx)
	if err != nil {
		log.Printf("⚠️ Could not list existing proxies, starting with empty pool: %v", err)
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.pool = identities
	if len(m.pool) > 0 {
		m.current = m.pool[0]
		m.current.LastUsedAt = time.Now()
	}
	log.Printf("🌐 Proxy pool bootstrapped with %d identities", len(m.pool))
}

// Current returns a copy of the current identity, or nil for direct egress.
func (m *ProxyManager) Current() *models.ProxyIdentity {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return nil
	}
	m.current.LastUsedAt = time.Now()
	m.current.TotalAttempts++
	copied := *m.current
	return &copied
}

// ReportSuccess resets the current identity's failure streak.
func (m *ProxyManager) ReportSuccess() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return
	}
	m.current.ConsecutiveFailures = 0
	m.current.SuccessfulAttempts++
}

// ReportFailure increments the failure streak and rotates once the identity
// is exhausted. Rotation prefers an existing active identity, provisions a
// replacement otherwise, and degrades to direct egress if provisioning
// fails; callers are never blocked on proxy health.
func (m *ProxyManager) ReportFailure(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return
	}

	m.current.ConsecutiveFailures++
	if !m.current.Exhausted(m.failureThreshold) {
		return
	}

	log.Printf("🔄 Proxy %s exhausted after %d consecutive failures, rotating",
		m.current.ID, m.current.ConsecutiveFailures)
	m.rotateLocked(ctx)
}

// PoolSize reports the number of identities the manager is tracking.
func (m *ProxyManager) PoolSize() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pool)
}

func (m *ProxyManager) rotateLocked(ctx context.Context) {
	// Another identity in the pool may still be healthy.
	for _, identity := range m.pool {
		if identity == m.current {
			continue
		}
		if !identity.Exhausted(m.failureThreshold) {
			m.current = identity
			log.Printf("🌐 Rotated to existing proxy %s", identity.ID)
			return
		}
	}

	if m.provider == nil {
		m.current = nil
		log.Printf("⚠️ No proxy provider configured, falling back to direct egress")
		return
	}

	created, err := m.provider.Create(ctx, m.country, "autoapply-rotation")
	if err != nil {
		// Direct egress beats blocking the caller indefinitely.
		m.current = nil
		log.Printf("⚠️ Proxy provisioning failed, falling back to direct egress: %v", err)
		return
	}

	m.pool = append(m.pool, created)
	m.current = created
	created.LastUsedAt = time.Now()
	log.Printf("🌐 Provisioned fresh proxy %s", created.ID)

	// Prune only after rotation succeeded; never shrink the pool while the
	// current pointer is unsettled.
	m.pruneLocked(ctx)
}

// pruneLocked deletes least-recently-used non-current identities until the
// pool fits the cap.
func (m *ProxyManager) pruneLocked(ctx context.Context) {
	if len(m.pool) <= m.maxPoolSize {
		return
	}

	candidates := make([]*models.ProxyIdentity, 0, len(m.pool))
	for _, identity := range m.pool {
		if identity != m.current {
			candidates = append(candidates, identity)
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].LastUsedAt.Before(candidates[j].LastUsedAt)
	})

	excess := len(m.pool) - m.maxPoolSize
	for _, victim := range candidates[:excess] {
		if err := m.provider.Delete(ctx, victim.ID); err != nil {
			log.Printf("⚠️ Failed to delete proxy %s upstream: %v", victim.ID, err)
			continue
		}
		m.removeFromPoolLocked(victim)
		log.Printf("🗑️ Pruned proxy %s from pool", victim.ID)
	}
}

func (m *ProxyManager) removeFromPoolLocked(target *models.ProxyIdentity) {
	for i, identity := range m.pool {
		if identity == target {
			m.pool = append(m.pool[:i], m.pool[i+1:]...)
			return
		}
	}
}
