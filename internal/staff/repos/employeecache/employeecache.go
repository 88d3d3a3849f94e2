// Package employeecache keeps the most recently loaded employees addressable
// by ID so salary adjustments do not need a full directory reload.
package employeecache

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/haukened/staffdir/internal/staff/domain"
	"github.com/haukened/staffdir/internal/staff/services/directory"
)

// employeeCache is an in-memory LRU of employees keyed by ID.
type employeeCache struct {
	lru *lru.Cache[int, domain.Employee]
}

// New returns a new cache holding at most size employees.
func New(size int) (*employeeCache, error) {
	cache, err := lru.New[int, domain.Employee](size)
	if err != nil {
		return nil, err
	}
	return &employeeCache{lru: cache}, nil
}

// Set stores or replaces the employee under its ID.
func (c *employeeCache) Set(e domain.Employee) {
	c.lru.Add(e.ID, e)
}

// Get returns the employee with the given ID, if cached.
func (c *employeeCache) Get(id int) (domain.Employee, bool) {
	return c.lru.Get(id)
}

// Purge empties the cache.
func (c *employeeCache) Purge() {
	c.lru.Purge()
}

var _ directory.Cache = (*employeeCache)(nil)
