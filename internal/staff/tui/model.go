// Package tui is the interactive terminal view of the directory: a sortable,
// searchable employee table with salary controls and a password form.
package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/haukened/staffdir/internal/staff/common/log"
	"github.com/haukened/staffdir/internal/staff/domain"
	"github.com/haukened/staffdir/internal/staff/services/password"
)

// Directory is the part of the directory service the view drives.
type Directory interface {
	Refresh(ctx context.Context) error
	Search(q domain.Query) []domain.Employee
	Increase(ctx context.Context, id int) (domain.Employee, error)
	Decrease(ctx context.Context, id int) (domain.Employee, error)
}

type focusArea int

const (
	focusTable focusArea = iota
	focusSearch
	focusPassword
	focusVerify
)

// refreshedMsg reports the end of a background refresh.
type refreshedMsg struct{ err error }

// salaryMsg reports the end of a background salary update.
type salaryMsg struct {
	id       int
	employee domain.Employee
	err      error
}

// Options configures a Model.
type Options struct {
	Directory Directory
	Form      *password.Form
	Logger    log.Logger
	// Context bounds background backend calls; defaults to context.Background.
	Context context.Context
	// Title is shown in the header.
	Title string
}

// Model is the bubbletea model of the directory view.
type Model struct {
	ctx    context.Context
	dir    Directory
	form   *password.Form
	logger log.Logger
	title  string

	table    table.Model
	search   textinput.Model
	password textinput.Model
	verify   textinput.Model
	focus    focusArea

	query   domain.Query
	rows    []domain.Employee
	loading bool
	status  string
}

// New builds the view. The first refresh starts with Init.
func New(opts Options) Model {
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	if opts.Logger == nil {
		opts.Logger = log.NewNoopLogger()
	}
	if opts.Title == "" {
		opts.Title = "Staff Directory"
	}

	columns := []table.Column{
		{Title: "ID", Width: 6},
		{Title: "Name", Width: 28},
		{Title: "Age", Width: 5},
		{Title: "Salary", Width: 12},
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(12),
	)
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	search := textinput.New()
	search.Placeholder = "name contains..."
	search.CharLimit = 64

	pw := textinput.New()
	pw.Placeholder = "password"
	pw.EchoMode = textinput.EchoPassword
	pw.EchoCharacter = '•'

	verify := textinput.New()
	verify.Placeholder = "verify password"
	verify.EchoMode = textinput.EchoPassword
	verify.EchoCharacter = '•'

	return Model{
		ctx:      opts.Context,
		dir:      opts.Directory,
		form:     opts.Form,
		logger:   opts.Logger,
		title:    opts.Title,
		table:    t,
		search:   search,
		password: pw,
		verify:   verify,
		loading:  true,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.refreshCmd())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		// header, inputs, error, status and help take about 12 lines
		if h := msg.Height - 12; h > 3 {
			m.table.SetHeight(h)
		}
		return m, nil

	case refreshedMsg:
		m.loading = false
		if msg.err != nil {
			m.status = "refresh failed: " + msg.err.Error()
			m.logger.Error(map[string]any{"error": msg.err}, "refresh_failed")
		} else {
			m.status = ""
		}
		m.reload()
		return m, nil

	case salaryMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("salary update for %d failed", msg.id)
			m.logger.Error(map[string]any{"employee_id": msg.id, "error": msg.err}, "salary_update_failed")
		} else {
			m.status = fmt.Sprintf("%s now earns %d", msg.employee.Name, msg.employee.Salary)
		}
		m.reload()
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.focus != focusTable {
			return m.updateInput(msg)
		}
		return m.updateTable(msg)
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Model) updateTable(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "/":
		cmd := m.focusOn(focusSearch)
		return m, cmd
	case "p":
		cmd := m.focusOn(focusPassword)
		return m, cmd
	case "v":
		cmd := m.focusOn(focusVerify)
		return m, cmd
	case "+", "=":
		cmd := m.salaryCmd(+1)
		return m, cmd
	case "-", "_":
		cmd := m.salaryCmd(-1)
		return m, cmd
	case "s":
		m.query.SortBy = m.query.SortBy.Next()
		m.reload()
		return m, nil
	case "r":
		m.query.Desc = !m.query.Desc
		m.reload()
		return m, nil
	case "ctrl+r":
		m.loading = true
		m.status = ""
		return m, m.refreshCmd()
	}
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		cmd := m.focusOn(focusTable)
		return m, cmd
	case "tab":
		next := m.focus + 1
		if next > focusVerify {
			next = focusSearch
		}
		cmd := m.focusOn(next)
		return m, cmd
	case "enter":
		cmd := m.focusOn(focusTable)
		return m, cmd
	}

	var cmd tea.Cmd
	switch m.focus {
	case focusSearch:
		m.search, cmd = m.search.Update(msg)
		if m.search.Value() != m.query.Name {
			m.query.Name = m.search.Value()
			if m.form != nil {
				m.form.ClearError()
			}
			m.reload()
		}
	case focusPassword:
		m.password, cmd = m.password.Update(msg)
		if m.form != nil && m.password.Value() != m.form.Password() {
			m.form.SetPassword(m.password.Value())
		}
	case focusVerify:
		m.verify, cmd = m.verify.Update(msg)
		if m.form != nil && m.verify.Value() != m.form.Verify() {
			m.form.SetVerify(m.verify.Value())
		}
	}
	return m, cmd
}

// focusOn moves keyboard focus and returns the cursor blink command.
func (m *Model) focusOn(f focusArea) tea.Cmd {
	m.focus = f
	m.search.Blur()
	m.password.Blur()
	m.verify.Blur()
	if f == focusTable {
		m.table.Focus()
		return nil
	}
	m.table.Blur()
	switch f {
	case focusSearch:
		return m.search.Focus()
	case focusPassword:
		return m.password.Focus()
	default:
		return m.verify.Focus()
	}
}

// reload recomputes the visible rows from the directory.
func (m *Model) reload() {
	if m.dir == nil {
		return
	}
	m.rows = m.dir.Search(m.query)
	rows := make([]table.Row, 0, len(m.rows))
	for _, e := range m.rows {
		rows = append(rows, table.Row{
			strconv.Itoa(e.ID),
			e.Name,
			strconv.Itoa(e.Age),
			strconv.Itoa(e.Salary),
		})
	}
	m.table.SetRows(rows)
	if n := len(rows); n > 0 && m.table.Cursor() >= n {
		m.table.SetCursor(n - 1)
	}
}

// selectedID returns the ID of the highlighted employee.
func (m Model) selectedID() (int, bool) {
	row := m.table.SelectedRow()
	if len(row) == 0 {
		return 0, false
	}
	id, err := strconv.Atoi(row[0])
	if err != nil {
		return 0, false
	}
	return id, true
}

func (m Model) refreshCmd() tea.Cmd {
	dir, ctx := m.dir, m.ctx
	return func() tea.Msg {
		if dir == nil {
			return refreshedMsg{}
		}
		return refreshedMsg{err: dir.Refresh(ctx)}
	}
}

// salaryCmd raises (sign > 0) or lowers the selected salary in the background.
func (m *Model) salaryCmd(sign int) tea.Cmd {
	id, ok := m.selectedID()
	if !ok || m.dir == nil {
		m.status = "no employee selected"
		return nil
	}
	dir, ctx := m.dir, m.ctx
	return func() tea.Msg {
		var (
			e   domain.Employee
			err error
		)
		if sign > 0 {
			e, err = dir.Increase(ctx, id)
		} else {
			e, err = dir.Decrease(ctx, id)
		}
		return salaryMsg{id: id, employee: e, err: err}
	}
}

func (m Model) View() string {
	order := "asc"
	if m.query.Desc {
		order = "desc"
	}
	header := headerStyle.Render(m.title)
	info := fmt.Sprintf("%d shown, sort: %s %s", len(m.rows), m.query.SortBy, order)
	if m.loading {
		info += ", loading..."
	}

	errLine := ""
	if m.form != nil && m.form.Error() != "" {
		errLine = errorStyle.Render(m.form.Error())
	}
	statusLine := ""
	if m.status != "" {
		statusLine = statusStyle.Render(m.status)
	}

	help := "[/] search  [p] password  [v] verify  [+/-] salary  [s] sort  [r] reverse  [ctrl+r] refresh  [q] quit"
	if m.focus != focusTable {
		help = "[esc] back to table  [tab] next field"
	}

	return baseStyle.Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header,
			info,
			m.field("Search", focusSearch, m.search),
			m.table.View(),
			m.field("Password", focusPassword, m.password),
			m.field("Verify", focusVerify, m.verify),
			errLine,
			statusLine,
			helpStyle.Render(help),
		),
	) + "\n"
}

func (m Model) field(label string, f focusArea, in textinput.Model) string {
	style := labelStyle
	if m.focus == f {
		style = activeLabel
	}
	return style.Render(label) + " " + strings.TrimRight(in.View(), " ")
}

// Run starts the full-screen program and blocks until the user quits.
func Run(ctx context.Context, m Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui run failed: %w", err)
	}
	return nil
}
