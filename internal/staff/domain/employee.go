package domain

import (
	"fmt"
	"strings"
)

// Employee is one row of the directory.
type Employee struct {
	ID           int    `json:"id" yaml:"id"`
	Name         string `json:"employee_name" yaml:"employee_name"`
	Age          int    `json:"employee_age" yaml:"employee_age"`
	Salary       int    `json:"employee_salary" yaml:"employee_salary"`
	ProfileImage string `json:"profile_image,omitempty" yaml:"profile_image,omitempty"`
}

// NewEmployee constructs an Employee and validates its fields.
func NewEmployee(id int, name string, age, salary int) (Employee, error) {
	e := Employee{
		ID:     id,
		Name:   strings.TrimSpace(name),
		Age:    age,
		Salary: salary,
	}
	if err := e.Validate(); err != nil {
		return Employee{}, err
	}
	return e, nil
}

// Validate checks the Employee for required fields and sane values.
func (e Employee) Validate() error {
	if e.ID <= 0 {
		return fmt.Errorf("employee id must be positive, got %d", e.ID)
	}
	if e.Name == "" {
		return fmt.Errorf("employee %d: name must not be empty", e.ID)
	}
	if e.Age < 0 {
		return fmt.Errorf("employee %d: age must not be negative", e.ID)
	}
	return nil
}

// WithSalary returns a copy of e carrying the given salary.
func (e Employee) WithSalary(salary int) Employee {
	e.Salary = salary
	return e
}
