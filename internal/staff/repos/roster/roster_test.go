package roster

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haukened/staffdir/internal/staff/domain"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

var want = []domain.Employee{
	{ID: 1, Name: "Tiger Nixon", Age: 61, Salary: 320800},
	{ID: 2, Name: "Garrett Winters", Age: 63, Salary: 170750, ProfileImage: "gw.png"},
}

func TestLoad_Formats(t *testing.T) {
	files := map[string]string{
		"roster.yaml": `
employees:
  - id: 1
    employee_name: Tiger Nixon
    employee_age: 61
    employee_salary: 320800
  - id: "2"
    employee_name: " Garrett Winters "
    employee_age: "63"
    employee_salary: "170750"
    profile_image: gw.png
`,
		"roster.json": `{"employees":[
  {"id":1,"employee_name":"Tiger Nixon","employee_age":61,"employee_salary":320800},
  {"id":"2","employee_name":"Garrett Winters","employee_age":63,"employee_salary":"170750","profile_image":"gw.png"}
]}`,
		"roster.toml": `
[[employees]]
id = 1
employee_name = "Tiger Nixon"
employee_age = 61
employee_salary = 320800

[[employees]]
id = 2
employee_name = "Garrett Winters"
employee_age = 63
employee_salary = 170750
profile_image = "gw.png"
`,
	}
	for name, content := range files {
		t.Run(name, func(t *testing.T) {
			src, err := Load(writeFile(t, name, content))
			require.NoError(t, err)
			got, err := src.ListEmployees(context.Background())
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestLoad_Errors(t *testing.T) {
	cases := map[string]struct {
		name    string
		content string
		msg     string
	}{
		"unsupported":   {"roster.csv", "id,name", "unsupported roster file type"},
		"missing list":  {"roster.yaml", "people: []", "missing 'employees'"},
		"bad id":        {"roster.yaml", "employees:\n  - id: abc\n    employee_name: X", "id: not a number"},
		"empty name":    {"roster.yaml", "employees:\n  - id: 3", "name must not be empty"},
		"duplicate id":  {"roster.yaml", "employees:\n  - {id: 3, employee_name: A}\n  - {id: 3, employee_name: B}", "duplicate employee id 3"},
		"fractional":    {"roster.json", `{"employees":[{"id":1.5,"employee_name":"A"}]}`, "not a whole number"},
		"negative age":  {"roster.yaml", "employees:\n  - {id: 4, employee_name: A, employee_age: -1}", "age must not be negative"},
		"malformed doc": {"roster.json", `{"employees":`, "failed to load roster file"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeFile(t, tc.name, tc.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.msg)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestUpdateSalary(t *testing.T) {
	src, err := Load(writeFile(t, "r.yml", "employees:\n  - {id: 9, employee_name: Ashton Cox, employee_salary: 100}\n"))
	require.NoError(t, err)
	assert.Equal(t, "r.yml", filepath.Base(src.Path()))

	got, err := src.UpdateSalary(context.Background(), 9, 120)
	require.NoError(t, err)
	assert.Equal(t, 120, got)

	list, _ := src.ListEmployees(context.Background())
	assert.Equal(t, 120, list[0].Salary)

	// returned slices are copies
	list[0].Salary = 1
	again, _ := src.ListEmployees(context.Background())
	assert.Equal(t, 120, again[0].Salary)

	_, err = src.UpdateSalary(context.Background(), 10, 1)
	assert.ErrorIs(t, err, domain.ErrEmployeeNotFound)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = src.UpdateSalary(ctx, 9, 1)
	assert.ErrorIs(t, err, context.Canceled)
}
