package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haukened/staffdir/internal/staff/common/clock"
	"github.com/haukened/staffdir/internal/staff/common/log"
	"github.com/haukened/staffdir/internal/staff/config"
	"github.com/haukened/staffdir/internal/staff/domain"
	"github.com/haukened/staffdir/internal/staff/gateways/restapi"
)

const rosterYAML = `employees:
  - {id: 1, employee_name: Tiger Nixon, employee_age: 61, employee_salary: 320800}
  - {id: 2, employee_name: Garrett Winters, employee_age: 63, employee_salary: 170750}
  - {id: 3, employee_name: Ashton Cox, employee_age: 66, employee_salary: 86000}
`

// setupEnv points configuration at temporary files and silences the global
// logger until the test ends. Tests that go through run reconfigure it to
// write to STAFF_LOG_FILE.
func setupEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	orig := log.GetLogger()
	t.Cleanup(func() { log.SetLogger(orig) })
	log.SetLogger(log.NewNoopLogger())
	t.Setenv("STAFF_LOG_FILE", filepath.Join(dir, "staffdir.log"))
	t.Setenv("STAFF_DENYLIST_DB", filepath.Join(dir, "denylist.db"))
	return dir
}

func withRoster(t *testing.T, dir string) {
	t.Helper()
	path := filepath.Join(dir, "roster.yaml")
	require.NoError(t, os.WriteFile(path, []byte(rosterYAML), 0o600))
	t.Setenv("STAFF_ROSTER_FILE", path)
}

func withDenylist(t *testing.T, dir string, lists map[string]string) string {
	t.Helper()
	listDir := filepath.Join(dir, "denylist.d")
	require.NoError(t, os.Mkdir(listDir, 0o755))
	for name, content := range lists {
		require.NoError(t, os.WriteFile(filepath.Join(listDir, name), []byte(content), 0o600))
	}
	t.Setenv("STAFF_DENYLIST_DIR", listDir)
	return listDir
}

type result struct {
	code   int
	stdout string
	stderr string
}

func runCLI(t *testing.T, stdin io.Reader, args ...string) result {
	t.Helper()
	if stdin == nil {
		stdin = strings.NewReader("")
	}
	var out, errOut bytes.Buffer
	code := run(context.Background(), args, stdin, &out, &errOut)
	return result{code: code, stdout: out.String(), stderr: errOut.String()}
}

func TestList_RosterTable(t *testing.T) {
	withRoster(t, setupEnv(t))

	res := runCLI(t, nil, "list")
	require.Equal(t, 0, res.code, res.stderr)
	for _, name := range []string{"Tiger Nixon", "Garrett Winters", "Ashton Cox", "SALARY"} {
		assert.Contains(t, res.stdout, name)
	}
	assert.Less(t, strings.Index(res.stdout, "Tiger Nixon"), strings.Index(res.stdout, "Ashton Cox"))
}

func TestList_SearchSortJSON(t *testing.T) {
	withRoster(t, setupEnv(t))

	res := runCLI(t, nil, "list", "--search", "ON", "--sort", "salary", "--desc", "-o", "json")
	require.Equal(t, 0, res.code, res.stderr)

	var got []domain.Employee
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "Tiger Nixon", got[0].Name)
	assert.Equal(t, "Ashton Cox", got[1].Name)
}

func TestList_YAMLAndEmptyResult(t *testing.T) {
	withRoster(t, setupEnv(t))

	res := runCLI(t, nil, "list", "-o", "yaml", "--sort", "name")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "employee_name: Ashton Cox")

	res = runCLI(t, nil, "list", "-o", "json", "--search", "nobody")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Equal(t, "[]", strings.TrimSpace(res.stdout))
}

func TestList_BadFlags(t *testing.T) {
	withRoster(t, setupEnv(t))

	res := runCLI(t, nil, "list", "--sort", "height")
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "unsupported sort key")
	assert.Contains(t, res.stderr, "Hint: Use --sort")

	res = runCLI(t, nil, "list", "-o", "xml")
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "unsupported output format")
}

func TestSalary_Roster(t *testing.T) {
	withRoster(t, setupEnv(t))

	res := runCLI(t, nil, "salary", "raise", "1")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Equal(t, "Tiger Nixon (1): 320800 -> 320820\n", res.stdout)

	// roster updates are in memory, each run starts from the file
	res = runCLI(t, nil, "salary", "lower", "1")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Equal(t, "Tiger Nixon (1): 320800 -> 320780\n", res.stdout)

	res = runCLI(t, nil, "salary", "adjust", "2", "-750")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Equal(t, "Garrett Winters (2): 170750 -> 170000\n", res.stdout)
}

func TestSalary_CustomStep(t *testing.T) {
	withRoster(t, setupEnv(t))
	t.Setenv("STAFF_SALARY_STEP", "100")

	res := runCLI(t, nil, "salary", "raise", "3")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Equal(t, "Ashton Cox (3): 86000 -> 86100\n", res.stdout)
}

func TestSalary_Errors(t *testing.T) {
	withRoster(t, setupEnv(t))

	res := runCLI(t, nil, "salary", "raise", "99")
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "employee not found")
	assert.Contains(t, res.stderr, "Hint: Run 'staffdir list'")

	res = runCLI(t, nil, "salary", "raise", "abc")
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, `invalid employee id "abc"`)

	res = runCLI(t, nil, "salary", "adjust", "1", "lots")
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, `invalid delta "lots"`)

	res = runCLI(t, nil, "salary", "raise")
	assert.Equal(t, 1, res.code)
}

// fakeBackend serves the two REST endpoints from a fixed list.
func fakeBackend(t *testing.T, rejectUpdates bool) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/v1/employees":
			_, _ = w.Write([]byte(`{"status":"success","data":[
				{"id":"1","employee_name":"Tiger Nixon","employee_salary":"320800","employee_age":"61","profile_image":""},
				{"id":"2","employee_name":"Garrett Winters","employee_salary":"170750","employee_age":"63","profile_image":""}
			]}`))
		case r.Method == http.MethodPut && strings.HasPrefix(r.URL.Path, "/api/v1/update/"):
			if rejectUpdates {
				_, _ = w.Write([]byte(`{"status":"failure","message":"read only"}`))
				return
			}
			_ = json.NewEncoder(w).Encode(map[string]any{
				"status": "success",
				"data":   map[string]any{"employee_salary": r.URL.Query().Get("employee_salary")},
			})
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestREST_ListAndRaise(t *testing.T) {
	setupEnv(t)
	srv := fakeBackend(t, false)
	t.Setenv("STAFF_API_URL", srv.URL+"/api/v1/")
	t.Setenv("STAFF_API_RETRIES", "1")

	res := runCLI(t, nil, "list", "-o", "json")
	require.Equal(t, 0, res.code, res.stderr)
	var got []domain.Employee
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &got))
	assert.Equal(t, []domain.Employee{
		{ID: 1, Name: "Tiger Nixon", Age: 61, Salary: 320800},
		{ID: 2, Name: "Garrett Winters", Age: 63, Salary: 170750},
	}, got)

	res = runCLI(t, nil, "salary", "raise", "2")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Equal(t, "Garrett Winters (2): 170750 -> 170770\n", res.stdout)
}

func TestREST_UpdateRejected(t *testing.T) {
	setupEnv(t)
	srv := fakeBackend(t, true)
	t.Setenv("STAFF_API_URL", srv.URL+"/api/v1/")
	t.Setenv("STAFF_API_RETRIES", "1")

	res := runCLI(t, nil, "salary", "lower", "1")
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "salary update rejected")
	assert.Contains(t, res.stderr, "read only")
}

func TestREST_BackendDown(t *testing.T) {
	setupEnv(t)
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()
	t.Setenv("STAFF_API_URL", srv.URL+"/")
	t.Setenv("STAFF_API_RETRIES", "3")

	res := runCLI(t, nil, "list")
	assert.Equal(t, 1, res.code)
	assert.Equal(t, int32(1), hits.Load(), "a 404 is not retried")
	assert.Contains(t, res.stderr, "backend request failed")
	assert.Contains(t, res.stderr, "STAFF_ROSTER_FILE")
}

func TestPasswordCheck(t *testing.T) {
	setupEnv(t)

	res := runCLI(t, nil, "password", "check", "Abc12345!")
	assert.Equal(t, 0, res.code, res.stderr)
	assert.Equal(t, "ok\n", res.stdout)

	res = runCLI(t, nil, "password", "check", "abc")
	assert.Equal(t, 1, res.code)
	assert.Equal(t, "Error: Password should contain at least 8 characters, digits, uppercase characters, special characters\n", res.stderr)

	// every rule violated: the full list is reported even though the form
	// shows nothing for an empty field
	res = runCLI(t, nil, "password", "check", "")
	assert.Equal(t, 1, res.code)
	assert.Empty(t, res.stdout)
	assert.Equal(t, "Error: Password should contain at least 8 characters, digits, lowercase characters, uppercase characters, special characters\n", res.stderr)

	res = runCLI(t, strings.NewReader("\n"), "password", "check")
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "Password should contain at least 8 characters")

	res = runCLI(t, nil, "password", "check", "--verify", "")
	assert.Equal(t, 1, res.code)
	assert.Empty(t, res.stdout)
	assert.NotContains(t, res.stderr, "Passwords do not match")

	res = runCLI(t, strings.NewReader("Abc12345!\r\n"), "password", "check", "--verify", "Abc12345!")
	assert.Equal(t, 0, res.code, res.stderr)

	res = runCLI(t, nil, "password", "check", "Abc12345!", "--verify", "abc12345!")
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "Passwords do not match")

	// the rule message wins over the confirmation
	res = runCLI(t, nil, "password", "check", "ABCDEFGH", "--verify", "x")
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "Password should contain digits, lowercase characters, special characters")
}

func TestPasswordRules(t *testing.T) {
	res := runCLI(t, nil, "password", "rules")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Equal(t, "- at least 8 characters\n- digits\n- lowercase characters\n- uppercase characters\n- special characters\n", res.stdout)
}

func TestDenylist_EndToEnd(t *testing.T) {
	dir := setupEnv(t)
	listDir := withDenylist(t, dir, map[string]string{
		"common.txt": "# top passwords\nPassword1!\nqwerty\n",
	})

	// the empty store is seeded on first use
	res := runCLI(t, nil, "password", "check", "PASSWORD1!a")
	assert.Equal(t, 0, res.code, res.stderr)
	res = runCLI(t, nil, "password", "check", "passWORD1!")
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "Password is too common")

	res = runCLI(t, nil, "denylist", "stats", "-o", "json")
	require.Equal(t, 0, res.code, res.stderr)
	var stats struct {
		Store struct {
			Entries uint64 `json:"entries"`
		} `json:"store"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &stats))
	assert.Equal(t, uint64(2), stats.Store.Entries)

	extra := filepath.Join(dir, "extra.d")
	require.NoError(t, os.Mkdir(extra, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(extra, "more.txt"), []byte("Summer2024!\n"), 0o600))
	res = runCLI(t, nil, "denylist", "import", extra)
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "imported 1 entries from "+extra)

	// the previous snapshot is replaced
	res = runCLI(t, nil, "password", "check", "Password1!")
	assert.Equal(t, 0, res.code, res.stderr)
	res = runCLI(t, nil, "password", "check", "summer2024!X")
	assert.Equal(t, 0, res.code, res.stderr)
	res = runCLI(t, nil, "password", "check", "Summer2024!")
	assert.Equal(t, 1, res.code)

	res = runCLI(t, nil, "denylist", "import")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "imported 2 entries from "+listDir)
}

func TestDenylist_Disabled(t *testing.T) {
	setupEnv(t)

	res := runCLI(t, nil, "denylist", "stats")
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "denylist is disabled")
	assert.Contains(t, res.stderr, "Hint: Set STAFF_DENYLIST_DIR")

	res = runCLI(t, nil, "denylist", "import", t.TempDir())
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "denylist is disabled")
}

func TestInvalidConfiguration(t *testing.T) {
	setupEnv(t)
	t.Setenv("STAFF_ENV", "staging")

	res := runCLI(t, nil, "list")
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "invalid configuration")
	assert.Contains(t, res.stderr, "Hint: Check the STAFF_* environment variables")
}

func TestVersion(t *testing.T) {
	res := runCLI(t, nil, "--version")
	require.Equal(t, 0, res.code)
	assert.Contains(t, res.stdout, version)
}

func TestBuildApplication_StampsDenylistWithClock(t *testing.T) {
	dir := setupEnv(t)
	listDir := withDenylist(t, dir, map[string]string{"a.txt": "letmein\n"})
	withRoster(t, dir)

	cfg, err := config.Load()
	require.NoError(t, err)

	clk := &clock.MockClock{CurrentTime: time.Unix(1700000000, 0)}
	app, err := buildApplication(context.Background(), cfg, clk)
	require.NoError(t, err)
	defer func() { assert.NoError(t, app.Close()) }()

	assert.Equal(t, cfg.RosterFile, app.source)
	stats := app.denylist.Stats()
	assert.Equal(t, uint64(1), stats.Store.Entries)
	assert.Equal(t, uint64(1700000000), stats.Store.Version)
	assert.True(t, stats.BloomLoaded)

	clk.Advance(time.Hour)
	stats, err = app.importDenylist(listDir)
	require.NoError(t, err)
	assert.Equal(t, int64(1700003600), stats.Store.UpdatedUnix)
}

func TestBuildApplication_WithoutDenylist(t *testing.T) {
	setupEnv(t)
	cfg, err := config.Load()
	require.NoError(t, err)

	app, err := buildApplication(context.Background(), cfg, clock.RealClock{})
	require.NoError(t, err)
	assert.Nil(t, app.store)
	assert.Equal(t, "http://dummy.restapiexample.com/api/v1/", app.source)
	assert.False(t, app.checker.Check("Abc12345!").Denied.Denied)

	_, err = app.importDenylist(t.TempDir())
	assert.ErrorIs(t, err, errDenylistDisabled)
	assert.NoError(t, app.Close())
}

func TestMapError(t *testing.T) {
	assert.Nil(t, mapError(nil))

	plain := errors.New("plain")
	assert.Same(t, plain, mapError(plain))

	var cliErr *CLIError
	require.ErrorAs(t, mapError(domain.ErrEmployeeNotFound), &cliErr)
	assert.Equal(t, "employee not found", cliErr.Message)
	assert.Equal(t, 1, cliErr.ExitCode)

	busy := &restapi.APIError{Op: "list", StatusCode: http.StatusTooManyRequests}
	require.ErrorAs(t, mapError(busy), &cliErr)
	assert.Equal(t, "backend request failed", cliErr.Message)
	assert.Contains(t, cliErr.Hint, "busy")

	existing := NewCLIError("x", "y", nil)
	assert.Same(t, existing, mapError(existing))
	assert.Equal(t, "x", existing.Error())
}
