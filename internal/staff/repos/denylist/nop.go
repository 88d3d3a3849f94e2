package denylist

import "github.com/haukened/staffdir/internal/staff/domain"

// NoopDenylist allows every candidate. It is used when no denylist is configured.
type NoopDenylist struct{}

func (n *NoopDenylist) Decide(string) domain.DenyDecision {
	return domain.AllowDecision()
}

func (n *NoopDenylist) UpdateAll([]domain.DenyEntry, uint64, int64) error { return nil }

func (n *NoopDenylist) Stats() RepoStats { return RepoStats{} }

var _ Repository = (*NoopDenylist)(nil)
