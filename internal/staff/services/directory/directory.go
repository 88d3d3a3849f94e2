// Package directory is the employee directory service: it loads employees
// from an EmployeeAPI, answers search and sort queries, and adjusts salaries.
package directory

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/haukened/staffdir/internal/staff/common/log"
	"github.com/haukened/staffdir/internal/staff/common/utils"
	"github.com/haukened/staffdir/internal/staff/domain"
)

// DefaultSalaryStep is the amount Increase and Decrease move a salary by.
const DefaultSalaryStep = 20

type Directory struct {
	api    EmployeeAPI
	cache  Cache
	logger log.Logger
	step   int

	mu        sync.RWMutex
	employees []domain.Employee // backend order

	adjusting sync.Map // employee ID -> *sync.Mutex
}

type Options struct {
	API    EmployeeAPI
	Cache  Cache
	Logger log.Logger
	// SalaryStep defaults to DefaultSalaryStep when zero or negative.
	SalaryStep int
}

// New constructs a Directory. API and Cache are required.
func New(opts Options) (*Directory, error) {
	if opts.API == nil {
		return nil, fmt.Errorf("employee API is required")
	}
	if opts.Cache == nil {
		return nil, fmt.Errorf("employee cache is required")
	}
	if opts.Logger == nil {
		opts.Logger = log.NewNoopLogger()
	}
	if opts.SalaryStep <= 0 {
		opts.SalaryStep = DefaultSalaryStep
	}
	return &Directory{
		api:    opts.API,
		cache:  opts.Cache,
		logger: opts.Logger,
		step:   opts.SalaryStep,
	}, nil
}

// Step returns the salary step used by Increase and Decrease.
func (d *Directory) Step() int { return d.step }

// Refresh reloads every employee from the backend and replaces the snapshot.
// Invalid records and repeated IDs are dropped. On error the previous
// snapshot is kept.
func (d *Directory) Refresh(ctx context.Context) error {
	list, err := d.api.ListEmployees(ctx)
	if err != nil {
		return fmt.Errorf("list employees: %w", err)
	}

	employees := make([]domain.Employee, 0, len(list))
	seen := make(map[int]struct{}, len(list))
	for _, e := range list {
		if err := e.Validate(); err != nil {
			d.logger.Debug(map[string]any{"error": err}, "skip_invalid_employee")
			continue
		}
		if _, dup := seen[e.ID]; dup {
			d.logger.Debug(map[string]any{"employee_id": e.ID}, "skip_duplicate_employee")
			continue
		}
		seen[e.ID] = struct{}{}
		employees = append(employees, e)
	}

	d.mu.Lock()
	d.employees = employees
	d.cache.Purge()
	for _, e := range employees {
		d.cache.Set(e)
	}
	d.mu.Unlock()

	d.logger.Info(map[string]any{"employees": len(employees)}, "directory_refreshed")
	return nil
}

// Employees returns a copy of the snapshot in backend order.
func (d *Directory) Employees() []domain.Employee {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]domain.Employee(nil), d.employees...)
}

// Len returns the number of employees in the snapshot.
func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.employees)
}

// Get returns the employee with the given ID.
func (d *Directory) Get(id int) (domain.Employee, error) {
	if e, ok := d.cache.Get(id); ok {
		return e, nil
	}
	// the cache may be smaller than the directory
	d.mu.RLock()
	i := d.indexLocked(id)
	var e domain.Employee
	if i >= 0 {
		e = d.employees[i]
	}
	d.mu.RUnlock()
	if i < 0 {
		return domain.Employee{}, fmt.Errorf("employee %d: %w", id, domain.ErrEmployeeNotFound)
	}
	d.cache.Set(e)
	return e, nil
}

// Search returns the employees whose name contains q.Name, case-insensitively,
// ordered by q.SortBy.
func (d *Directory) Search(q domain.Query) []domain.Employee {
	needle := utils.CanonicalName(q.Name)
	all := d.Employees()

	out := all
	if needle != "" {
		out = make([]domain.Employee, 0, len(all))
		for _, e := range all {
			if strings.Contains(utils.CanonicalName(e.Name), needle) {
				out = append(out, e)
			}
		}
	}
	domain.SortEmployees(out, q.SortBy, q.Desc)
	return out
}

// Increase raises the salary of employee id by the configured step.
func (d *Directory) Increase(ctx context.Context, id int) (domain.Employee, error) {
	return d.Adjust(ctx, id, d.step)
}

// Decrease lowers the salary of employee id by the configured step.
func (d *Directory) Decrease(ctx context.Context, id int) (domain.Employee, error) {
	return d.Adjust(ctx, id, -d.step)
}

// Adjust moves the salary of employee id by delta through the backend and
// records the salary the backend reports. When the backend call fails nothing
// changes locally. Adjustments of the same employee run one at a time, each
// starting from the salary the previous one stored.
func (d *Directory) Adjust(ctx context.Context, id int, delta int) (domain.Employee, error) {
	unlock := d.lockEmployee(id)
	defer unlock()

	current, err := d.Get(id)
	if err != nil {
		return domain.Employee{}, err
	}

	target := current.Salary + delta
	stored, err := d.api.UpdateSalary(ctx, id, target)
	if err != nil {
		d.logger.Warn(map[string]any{"employee_id": id, "salary": target, "error": err}, "salary_update_failed")
		return current, fmt.Errorf("update salary of employee %d: %w", id, err)
	}

	updated := current.WithSalary(stored)
	d.mu.Lock()
	// a refresh may have replaced the snapshot while the call was in flight
	if i := d.indexLocked(id); i >= 0 {
		updated = d.employees[i].WithSalary(stored)
		d.employees[i] = updated
		d.cache.Set(updated)
	}
	d.mu.Unlock()

	d.logger.Info(map[string]any{"employee_id": id, "from": current.Salary, "to": stored}, "salary_updated")
	return updated, nil
}

func (d *Directory) lockEmployee(id int) (unlock func()) {
	m, _ := d.adjusting.LoadOrStore(id, &sync.Mutex{})
	mu := m.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func (d *Directory) indexLocked(id int) int {
	for i, e := range d.employees {
		if e.ID == id {
			return i
		}
	}
	return -1
}
