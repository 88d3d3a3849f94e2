package directory

import (
	"context"

	"github.com/haukened/staffdir/internal/staff/domain"
)

// EmployeeAPI is the backend owning employee records. The REST gateway and
// the offline roster source both implement it.
type EmployeeAPI interface {
	// ListEmployees returns every employee in backend order.
	ListEmployees(ctx context.Context) ([]domain.Employee, error)

	// UpdateSalary sets the salary of employee id and returns the salary the
	// backend stored.
	UpdateSalary(ctx context.Context, id int, salary int) (int, error)
}

// Cache keeps employees addressable by ID between directory refreshes.
type Cache interface {
	Set(e domain.Employee)
	Get(id int) (domain.Employee, bool)
	Purge()
}
