// Package roster provides an offline employee source loaded from a YAML, JSON
// or TOML file. It serves the same calls as the REST backend; salary updates
// live in memory for the lifetime of the process.
package roster

import (
	"context"
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"

	"github.com/haukened/staffdir/internal/staff/domain"
	"github.com/haukened/staffdir/internal/staff/services/directory"
)

// Source is an in-memory employee backend seeded from a roster file.
type Source struct {
	path string

	mu        sync.RWMutex
	employees []domain.Employee
	index     map[int]int
}

// Load reads the roster file at path. The file holds an "employees" list whose
// entries use the backend field names (id, employee_name, employee_age,
// employee_salary, profile_image). Numbers may be written as strings.
func Load(path string) (*Source, error) {
	parser, err := parserFor(path)
	if err != nil {
		return nil, err
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, fmt.Errorf("failed to load roster file %s: %w", path, err)
	}
	if !k.Exists("employees") {
		return nil, fmt.Errorf("roster file %s missing 'employees'", path)
	}

	s := &Source{path: path, index: make(map[int]int)}
	for i, item := range k.Slices("employees") {
		e, err := employeeFrom(item)
		if err != nil {
			return nil, fmt.Errorf("invalid employee #%d in %s: %w", i+1, path, err)
		}
		if _, dup := s.index[e.ID]; dup {
			return nil, fmt.Errorf("duplicate employee id %d in %s", e.ID, path)
		}
		s.index[e.ID] = len(s.employees)
		s.employees = append(s.employees, e)
	}
	return s, nil
}

// Path returns the file the roster was loaded from.
func (s *Source) Path() string { return s.path }

// ListEmployees returns the roster in file order.
func (s *Source) ListEmployees(_ context.Context) ([]domain.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Employee, len(s.employees))
	copy(out, s.employees)
	return out, nil
}

// UpdateSalary sets the salary of employee id and echoes it back.
func (s *Source) UpdateSalary(ctx context.Context, id int, salary int) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[id]
	if !ok {
		return 0, fmt.Errorf("update %d: %w", id, domain.ErrEmployeeNotFound)
	}
	s.employees[i].Salary = salary
	return salary, nil
}

func parserFor(path string) (koanf.Parser, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Parser(), nil
	case ".json":
		return json.Parser(), nil
	case ".toml":
		return toml.Parser(), nil
	default:
		return nil, fmt.Errorf("unsupported roster file type %q", filepath.Ext(path))
	}
}

func employeeFrom(k *koanf.Koanf) (domain.Employee, error) {
	id, err := intValue(k.Get("id"))
	if err != nil {
		return domain.Employee{}, fmt.Errorf("id: %w", err)
	}
	age, err := intValue(k.Get("employee_age"))
	if err != nil {
		return domain.Employee{}, fmt.Errorf("employee_age: %w", err)
	}
	salary, err := intValue(k.Get("employee_salary"))
	if err != nil {
		return domain.Employee{}, fmt.Errorf("employee_salary: %w", err)
	}
	e, err := domain.NewEmployee(id, k.String("employee_name"), age, salary)
	if err != nil {
		return domain.Employee{}, err
	}
	e.ProfileImage = strings.TrimSpace(k.String("profile_image"))
	return e, nil
}

// intValue converts a parsed scalar to int. Parsers disagree on numeric
// types (TOML yields int64, JSON float64) and rosters copied from the API
// carry strings. A missing value is 0.
func intValue(v any) (int, error) {
	switch n := v.(type) {
	case nil:
		return 0, nil
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		if n != math.Trunc(n) {
			return 0, fmt.Errorf("not a whole number: %v", n)
		}
		return int(n), nil
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return 0, nil
		}
		i, err := strconv.Atoi(s)
		if err != nil {
			return 0, fmt.Errorf("not a number: %q", n)
		}
		return i, nil
	default:
		return 0, fmt.Errorf("unsupported value %v (%T)", v, v)
	}
}

var _ directory.EmployeeAPI = (*Source)(nil)
