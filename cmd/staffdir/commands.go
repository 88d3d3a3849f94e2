package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/haukened/staffdir/internal/staff/common/log"
	"github.com/haukened/staffdir/internal/staff/domain"
	"github.com/haukened/staffdir/internal/staff/services/password"
	"github.com/haukened/staffdir/internal/staff/tui"
)

// newRootCmd assembles the command tree. Commands build the application
// through load when they run.
func newRootCmd(load appLoader) *cobra.Command {
	root := &cobra.Command{
		Use:     appName,
		Version: version,
		Short:   "Browse employees, adjust salaries and check passwords",
		Long: `staffdir is a terminal employee directory.
It lists employees from a REST backend or a local roster file, searches and
sorts them, raises or lowers salaries, and checks password strength.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newListCmd(load),
		newSalaryCmd(load),
		newPasswordCmd(load),
		newDenylistCmd(load),
		newTUICmd(load),
	)
	return root
}

// withApp loads the application, runs fn and closes the application.
func withApp(cmd *cobra.Command, load appLoader, interactive bool, fn func(app *Application) error) (err error) {
	app, err := load(cmd.Context(), interactive)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := app.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return fn(app)
}

func newListCmd(load appLoader) *cobra.Command {
	var (
		search string
		sortBy string
		desc   bool
		output string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List employees",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			key, err := domain.ParseSortKey(sortBy)
			if err != nil {
				return NewCLIError(err.Error(), "Use --sort id, name, age or salary", nil)
			}
			if err := validOutput(output); err != nil {
				return err
			}
			return withApp(cmd, load, false, func(app *Application) error {
				if err := app.directory.Refresh(cmd.Context()); err != nil {
					return err
				}
				list := app.directory.Search(domain.Query{Name: search, SortBy: key, Desc: desc})
				if output != outputTable {
					if list == nil {
						list = []domain.Employee{}
					}
					return writeStructured(cmd.OutOrStdout(), output, list)
				}
				rows := make([][]string, 0, len(list))
				for _, e := range list {
					rows = append(rows, []string{itoa(e.ID), e.Name, itoa(e.Age), itoa(e.Salary)})
				}
				return writeTable(cmd.OutOrStdout(), []string{"ID", "NAME", "AGE", "SALARY"}, rows)
			})
		},
	}
	cmd.Flags().StringVarP(&search, "search", "s", "", "case-insensitive name filter")
	cmd.Flags().StringVar(&sortBy, "sort", "id", "sort key: id, name, age or salary")
	cmd.Flags().BoolVar(&desc, "desc", false, "sort in descending order")
	cmd.Flags().StringVarP(&output, "output", "o", outputTable, "output format: table, json or yaml")
	return cmd
}

func newSalaryCmd(load appLoader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "salary",
		Short: "Raise or lower an employee's salary",
	}

	adjust := func(cmd *cobra.Command, idArg string, delta func(app *Application) int) error {
		id, err := parseID(idArg)
		if err != nil {
			return err
		}
		return withApp(cmd, load, false, func(app *Application) error {
			if err := app.directory.Refresh(cmd.Context()); err != nil {
				return err
			}
			before, err := app.directory.Get(id)
			if err != nil {
				return err
			}
			after, err := app.directory.Adjust(cmd.Context(), id, delta(app))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%d): %d -> %d\n", after.Name, after.ID, before.Salary, after.Salary)
			return nil
		})
	}

	adjustCmd := &cobra.Command{
		Use:   "adjust <id> <delta>",
		Short: "Change a salary by an arbitrary amount",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			delta, err := strconv.Atoi(args[1])
			if err != nil {
				return NewCLIError(fmt.Sprintf("invalid delta %q", args[1]), "The delta is a whole number, e.g. 20 or -20", nil)
			}
			return adjust(cmd, args[0], func(*Application) int { return delta })
		},
	}
	// flags end at the id so that a negative delta stays a positional argument
	adjustCmd.Flags().SetInterspersed(false)

	cmd.AddCommand(
		&cobra.Command{
			Use:   "raise <id>",
			Short: "Raise a salary by the configured step",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return adjust(cmd, args[0], func(app *Application) int { return app.directory.Step() })
			},
		},
		&cobra.Command{
			Use:   "lower <id>",
			Short: "Lower a salary by the configured step",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return adjust(cmd, args[0], func(app *Application) int { return -app.directory.Step() })
			},
		},
		adjustCmd,
	)
	return cmd
}

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, NewCLIError(fmt.Sprintf("invalid employee id %q", s), "Run 'staffdir list' to see employee IDs", nil)
	}
	return id, nil
}

func newPasswordCmd(load appLoader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "password",
		Short: "Password strength tools",
	}

	var verify string
	check := &cobra.Command{
		Use:   "check [candidate]",
		Short: "Check a password against the strength rules",
		Long: `Check a password against the strength rules and, when configured, the
common password denylist. Without an argument the first line of stdin is read.
With --verify the confirmation is compared once the password itself passes.
Exits with status 1 when there is a problem to report.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var candidate string
			if len(args) == 1 {
				candidate = args[0]
			} else {
				line, err := readLine(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("failed to read password: %w", err)
				}
				candidate = line
			}

			return withApp(cmd, load, false, func(app *Application) error {
				msg := app.checker.Check(candidate).Problem()
				if msg == "" && cmd.Flags().Changed("verify") {
					msg = password.Confirm(candidate, verify)
				}
				if msg != "" {
					return &CLIError{Message: msg, ExitCode: 1}
				}
				fmt.Fprintln(cmd.OutOrStdout(), "ok")
				return nil
			})
		},
	}
	check.Flags().StringVar(&verify, "verify", "", "confirmation value that must match the password")

	rules := &cobra.Command{
		Use:   "rules",
		Short: "List the password strength rules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, r := range password.DefaultEngine().Rules() {
				fmt.Fprintf(cmd.OutOrStdout(), "- %s\n", r.Description)
			}
			return nil
		},
	}

	cmd.AddCommand(check, rules)
	return cmd
}

// readLine returns the first line of r without its line ending. Empty input
// is an empty password.
func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func newDenylistCmd(load appLoader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "denylist",
		Short: "Manage the common password denylist",
	}

	importCmd := &cobra.Command{
		Use:   "import [dir]",
		Short: "Rebuild the denylist from a directory of *.txt lists",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, load, false, func(app *Application) error {
				dir := app.config.DenylistDir
				if len(args) == 1 {
					dir = args[0]
				}
				stats, err := app.importDenylist(dir)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "imported %d entries from %s (version %d)\n",
					stats.Store.Entries, dir, stats.Store.Version)
				return nil
			})
		},
	}

	var output string
	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Show denylist store and cache counters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if output != outputJSON && output != outputYAML {
				return NewCLIError(fmt.Sprintf("unsupported output format %q", output), "Use --output json or yaml", nil)
			}
			return withApp(cmd, load, false, func(app *Application) error {
				if app.store == nil {
					return errDenylistDisabled
				}
				return writeStructured(cmd.OutOrStdout(), output, app.denylist.Stats())
			})
		},
	}
	statsCmd.Flags().StringVarP(&output, "output", "o", outputYAML, "output format: json or yaml")

	cmd.AddCommand(importCmd, statsCmd)
	return cmd
}

func newTUICmd(load appLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Interactive terminal UI",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, load, true, func(app *Application) error {
				m := tui.New(tui.Options{
					Directory: app.directory,
					Form:      password.NewForm(app.checker),
					Logger:    log.GetLogger(),
					Context:   cmd.Context(),
					Title:     fmt.Sprintf("%s %s  %s", appName, version, app.source),
				})
				return tui.Run(cmd.Context(), m)
			})
		},
	}
}
