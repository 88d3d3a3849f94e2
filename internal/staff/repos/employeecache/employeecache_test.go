package employeecache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haukened/staffdir/internal/staff/domain"
)

func TestInvalidCacheSize(t *testing.T) {
	_, err := New(-1)
	assert.Error(t, err)
}

func TestEmployeeCache_SetGet(t *testing.T) {
	c, err := New(2)
	require.NoError(t, err)

	e := domain.Employee{ID: 1, Name: "Tiger Nixon", Age: 61, Salary: 320800}
	c.Set(e)

	got, ok := c.Get(1)
	require.True(t, ok)
	assert.Equal(t, e, got)

	c.Set(e.WithSalary(320820))
	got, _ = c.Get(1)
	assert.Equal(t, 320820, got.Salary)

	_, ok = c.Get(2)
	assert.False(t, ok)
}

func TestEmployeeCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c, err := New(2)
	require.NoError(t, err)
	c.Set(domain.Employee{ID: 1, Name: "a"})
	c.Set(domain.Employee{ID: 2, Name: "b"})
	_, _ = c.Get(1)
	c.Set(domain.Employee{ID: 3, Name: "c"})

	_, ok := c.Get(2)
	assert.False(t, ok, "2 was least recently used")
	_, ok = c.Get(1)
	assert.True(t, ok)

	c.Purge()
	for _, id := range []int{1, 2, 3} {
		_, ok = c.Get(id)
		assert.False(t, ok, "id %d survived Purge", id)
	}
}
