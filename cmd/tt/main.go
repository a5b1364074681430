package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"twintrack/internal/api"
	"twintrack/internal/config"
	"twintrack/internal/domain"
	"twintrack/internal/engine"
	"twintrack/internal/logging"
	"twintrack/internal/media"
	"twintrack/internal/orchestrate"
	"twintrack/internal/session"
)

var rootCmd = &cobra.Command{
	Use:   "tt",
	Short: "TwinTrack CLI",
	Long: `TwinTrack manages construction projects against the TwinTrack backend:
projects, tasks, worker and supervisor assignments, material inventory,
and the completion-report review queue.

Sessions persist between runs (tt login / tt logout). Supervisors
assign people and materials and review submissions; workers file
completion reports with photos.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logging.SetVerbose(viper.GetBool("verbose"))
		return nil
	},
}

func main() {
	cobra.OnInitialize(initConfig)
	addPersistentFlags()
	registerCommands()
	if err := rootCmd.Execute(); err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
}

func initConfig() {
	viper.SetEnvPrefix("TWINTRACK")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func addPersistentFlags() {
	rootCmd.PersistentFlags().StringP("workspace", "w", ".", "directory holding twintrack.yml")
	rootCmd.PersistentFlags().Bool("json", false, "output JSON")
	rootCmd.PersistentFlags().Bool("verbose", false, "debug logging")
	rootCmd.PersistentFlags().String("api-url", "", "backend base URL (overrides config)")
	_ = viper.BindPFlag("workspace", rootCmd.PersistentFlags().Lookup("workspace"))
	_ = viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("api-url", rootCmd.PersistentFlags().Lookup("api-url"))
}

func registerCommands() {
	rootCmd.AddCommand(loginCmd())
	rootCmd.AddCommand(logoutCmd())
	rootCmd.AddCommand(whoamiCmd())
	rootCmd.AddCommand(registerCmd())
	rootCmd.AddCommand(configCmd())
	rootCmd.AddCommand(projectCmd())
	rootCmd.AddCommand(taskCmd())
	rootCmd.AddCommand(materialCmd())
	rootCmd.AddCommand(workerCmd())
	rootCmd.AddCommand(supervisorCmd())
	rootCmd.AddCommand(worklogCmd())
	rootCmd.AddCommand(analyticsCmd())
}

func loginCmd() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and persist the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" {
				return fmt.Errorf("--email required")
			}
			if password == "" {
				fmt.Fprint(os.Stderr, "Password: ")
				raw, err := term.ReadPassword(int(syscall.Stdin))
				fmt.Fprintln(os.Stderr)
				if err != nil {
					return err
				}
				password = string(raw)
			}
			return withApp(cmd.Context(), func(ctx context.Context, app *appContext) error {
				token, err := app.API.Login(ctx, email, password)
				if err != nil {
					return err
				}
				sess, err := session.FromToken(token)
				if err != nil {
					return err
				}
				if err := app.Store.Save(sess); err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(map[string]string{"userId": sess.UserID, "role": sess.Role})
				}
				fmt.Printf("Logged in as %s (%s)\n", sess.UserID, sess.Role)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password (prompted if omitted)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Drop the persisted session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, app *appContext) error {
				if err := app.Store.Clear(); err != nil {
					return err
				}
				fmt.Println("Logged out")
				return nil
			})
		},
	}
}

func whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, app *appContext) error {
				if !app.Session.LoggedIn() {
					return fmt.Errorf("not logged in; run tt login")
				}
				out := map[string]any{
					"userId":  app.Session.UserID,
					"role":    app.Session.Role,
					"expired": app.Session.Expired(time.Now()),
				}
				return printJSONOrTable(out)
			})
		},
	}
}

func registerCmd() *cobra.Command {
	reg := &cobra.Command{Use: "register", Short: "Create accounts"}
	reg.AddCommand(registerAccountCmd("worker", "Register a worker account", func(ctx context.Context, app *appContext, req api.RegisterRequest) error {
		return app.API.CreateWorker(ctx, req)
	}))
	reg.AddCommand(registerAccountCmd("supervisor", "Register a supervisor account", func(ctx context.Context, app *appContext, req api.RegisterRequest) error {
		return app.API.CreateSupervisor(ctx, req)
	}))
	return reg
}

func registerAccountCmd(use, short string, create func(context.Context, *appContext, api.RegisterRequest) error) *cobra.Command {
	var req api.RegisterRequest
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, app *appContext) error {
				if err := create(ctx, app, req); err != nil {
					return err
				}
				fmt.Printf("Registered %s %s %s\n", use, req.FirstName, req.LastName)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&req.FirstName, "first-name", "", "first name")
	cmd.Flags().StringVar(&req.LastName, "last-name", "", "last name")
	cmd.Flags().StringVar(&req.Email, "email", "", "email")
	cmd.Flags().StringVar(&req.Password, "password", "", "password")
	_ = cmd.MarkFlagRequired("first-name")
	_ = cmd.MarkFlagRequired("last-name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func configCmd() *cobra.Command {
	cfg := &cobra.Command{Use: "config", Short: "Manage twintrack.yml"}
	cfg.AddCommand(configInitCmd())
	cfg.AddCommand(configShowCmd())
	cfg.AddCommand(configValidateCmd())
	return cfg
}

func configInitCmd() *cobra.Command {
	var apiURL string
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default twintrack.yml",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.Path(viper.GetString("workspace"))
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("%s already exists", path)
			}
			if err := os.WriteFile(path, []byte(config.GenerateDefault(apiURL)), 0o644); err != nil {
				return err
			}
			fmt.Printf("Wrote %s\n", path)
			return nil
		},
	}
	cmd.Flags().StringVar(&apiURL, "api-url", "https://localhost:7175", "backend base URL")
	return cmd
}

func configShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show loaded config",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return printJSONOrTable(cfg)
		},
	}
}

func configValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate twintrack.yml",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err == nil {
				err = cfg.Validate()
			}
			if viper.GetBool("json") {
				return printJSON(map[string]any{"ok": err == nil, "error": fmt.Sprint(err)})
			}
			if err != nil {
				return err
			}
			fmt.Println("config OK")
			return nil
		},
	}
}

func projectCmd() *cobra.Command {
	prj := &cobra.Command{Use: "project", Short: "Manage projects"}
	prj.AddCommand(projectListCmd())
	prj.AddCommand(projectShowCmd())
	prj.AddCommand(projectCreateCmd())
	prj.AddCommand(projectDeleteCmd())
	prj.AddCommand(projectAssignWorkersCmd())
	prj.AddCommand(projectAssignSupervisorCmd())
	prj.AddCommand(projectSubmitCmd())
	prj.AddCommand(projectTasksCmd())
	prj.AddCommand(projectMaterialsCmd())
	prj.AddCommand(projectAssignmentsCmd())
	return prj
}

func projectTasksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tasks <project-id>",
		Short: "List a project's tasks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, app *appContext) error {
				tasks, err := app.API.ProjectTasks(ctx, args[0])
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(tasks)
				}
				tw := newTable()
				tw.AppendHeader(table.Row{"ID", "Name", "Status", "Due", "Workers"})
				for _, t := range tasks {
					tw.AppendRow(table.Row{t.ID, t.Name, t.Status, t.DueDate, len(t.AssignedWorkers)})
				}
				tw.Render()
				return nil
			})
		},
	}
}

func projectMaterialsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "materials <project-id>",
		Short: "List a project's material inventory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, app *appContext) error {
				materials, err := app.API.ProjectMaterials(ctx, args[0])
				if err != nil {
					return err
				}
				printMaterials(materials)
				return nil
			})
		},
	}
}

func projectAssignmentsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "assignments <project-id>",
		Short: "List a project's supervisors and workers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, app *appContext) error {
				assignments, err := app.API.ProjectAssignments(ctx, args[0])
				if err != nil {
					return err
				}
				printAssignments(assignments)
				return nil
			})
		},
	}
}

func projectListCmd() *cobra.Command {
	var mine bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, app *appContext) error {
				var projects []domain.Project
				var err error
				if mine {
					projects, err = app.API.MyProjects(ctx)
				} else {
					projects, err = app.API.Projects(ctx)
				}
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(projects)
				}
				tw := newTable()
				tw.AppendHeader(table.Row{"ID", "Name", "Location", "Status", "Start"})
				for _, p := range projects {
					tw.AppendRow(table.Row{p.ID, p.Name, p.Location, p.Status, p.StartDate})
				}
				tw.Render()
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&mine, "mine", false, "only projects assigned to me")
	return cmd
}

func projectShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a project with tasks, roster, and inventory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, app *appContext) error {
				snap, err := app.Orch.Snapshot(ctx, args[0])
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(snap)
				}
				p := snap.Project
				fmt.Printf("Project: %s (%s)\nLocation: %s\n", p.Name, p.Status, p.Location)
				if p.Description != "" {
					fmt.Println(p.Description)
				}

				fmt.Println("\nSupervisors:")
				for _, s := range snap.Assignments.Supervisors {
					fmt.Printf("  %s (%s)\n", s.FullName, s.Role)
				}
				fmt.Println("Workers:")
				for _, w := range snap.Assignments.Workers {
					fmt.Printf("  %s\n", w.FullName)
				}

				fmt.Println("\nTasks:")
				tw := newTable()
				tw.AppendHeader(table.Row{"ID", "Name", "Status", "Due", "Workers"})
				for _, t := range snap.Tasks {
					tw.AppendRow(table.Row{t.ID, t.Name, t.Status, t.DueDate, len(t.AssignedWorkers)})
				}
				tw.Render()

				fmt.Println("\nMaterials:")
				mw := newTable()
				mw.AppendHeader(table.Row{"ID", "Name", "Total", "Available", "Unit"})
				for _, m := range snap.Materials {
					available, underflow := snap.Available(m.ID)
					note := ""
					if underflow {
						note = " (!)"
					}
					mw.AppendRow(table.Row{m.ID, m.Name, m.Quantity, fmt.Sprintf("%d%s", available, note), m.Unit})
				}
				mw.Render()
				return nil
			})
		},
	}
	return cmd
}

func projectCreateCmd() *cobra.Command {
	var name, location, description string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a project",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, app *appContext) error {
				projects, err := app.Orch.CreateProject(ctx, name, location, description)
				if err != nil {
					return err
				}
				return printJSONOrTable(projects)
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "project name")
	cmd.Flags().StringVar(&location, "location", "", "site location")
	cmd.Flags().StringVar(&description, "description", "", "description")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func projectDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, app *appContext) error {
				projects, err := app.Orch.DeleteProject(ctx, args[0])
				if err != nil {
					return err
				}
				return printJSONOrTable(projects)
			})
		},
	}
}

func projectAssignWorkersCmd() *cobra.Command {
	var workerIDs []string
	cmd := &cobra.Command{
		Use:   "assign-workers <project-id>",
		Short: "Add workers to a project roster",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, app *appContext) error {
				assignments, err := app.Orch.AssignWorkersToProject(ctx, args[0], workerIDs)
				printAssignments(assignments)
				return err
			})
		},
	}
	cmd.Flags().StringArrayVar(&workerIDs, "worker", []string{}, "worker id (repeatable)")
	_ = cmd.MarkFlagRequired("worker")
	return cmd
}

func projectAssignSupervisorCmd() *cobra.Command {
	var supervisorID, role string
	cmd := &cobra.Command{
		Use:   "assign-supervisor <project-id>",
		Short: "Add a supervisor to a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r := domain.SupervisorRole(role)
			if r != domain.RoleLead && r != domain.RoleAssistant && r != domain.RoleStandard {
				return fmt.Errorf("--role must be Lead, Assistant, or Standard")
			}
			return withApp(cmd.Context(), func(ctx context.Context, app *appContext) error {
				assignments, err := app.Orch.AssignSupervisor(ctx, args[0], supervisorID, r)
				if err != nil {
					return err
				}
				printAssignments(assignments)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&supervisorID, "supervisor", "", "supervisor id")
	cmd.Flags().StringVar(&role, "role", string(domain.RoleStandard), "Lead, Assistant, or Standard")
	_ = cmd.MarkFlagRequired("supervisor")
	return cmd
}

func projectSubmitCmd() *cobra.Command {
	var description string
	var photos []string
	cmd := &cobra.Command{
		Use:   "submit <project-id>",
		Short: "File a project completion report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, app *appContext) error {
				if err := app.Orch.SubmitProject(ctx, args[0], description, photos); err != nil {
					return err
				}
				fmt.Println("Project submitted for review")
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&description, "description", "", "what was completed")
	cmd.Flags().StringArrayVar(&photos, "photo", []string{}, "photo file (repeatable)")
	_ = cmd.MarkFlagRequired("description")
	return cmd
}

func taskCmd() *cobra.Command {
	task := &cobra.Command{Use: "task", Short: "Manage tasks"}
	task.AddCommand(taskCreateCmd())
	task.AddCommand(taskShowCmd())
	task.AddCommand(taskAssignWorkerCmd())
	task.AddCommand(taskAssignMaterialsCmd())
	task.AddCommand(taskSubmitCmd())
	return task
}

func taskCreateCmd() *cobra.Command {
	var req api.TaskCreateRequest
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a task",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, app *appContext) error {
				tasks, err := app.Orch.CreateTask(ctx, req)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(tasks)
				}
				tw := newTable()
				tw.AppendHeader(table.Row{"ID", "Name", "Status", "Due"})
				for _, t := range tasks {
					tw.AppendRow(table.Row{t.ID, t.Name, t.Status, t.DueDate})
				}
				tw.Render()
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&req.ProjectID, "project", "", "project id")
	cmd.Flags().StringVar(&req.Name, "name", "", "task name")
	cmd.Flags().StringVar(&req.Description, "description", "", "description")
	cmd.Flags().StringVar(&req.DeadLine, "deadline", "", "due date (RFC 3339)")
	_ = cmd.MarkFlagRequired("project")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func taskShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a task with allocations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, app *appContext) error {
				t, err := app.API.TaskDetails(ctx, args[0])
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(t)
				}
				fmt.Printf("Task: %s (%s)\nDue: %s\n", t.Name, t.Status, t.DueDate)
				if t.Description != "" {
					fmt.Println(t.Description)
				}
				fmt.Printf("Workers: %s\n", strings.Join(t.AssignedWorkers, ", "))
				tw := newTable()
				tw.AppendHeader(table.Row{"Material", "Assigned", "Remaining", "Used"})
				for _, a := range t.Materials {
					tw.AppendRow(table.Row{a.Name, a.Quantity, a.Remaining, engine.ComputeRemaining(a.Quantity, a.Remaining)})
				}
				tw.Render()
				return nil
			})
		},
	}
}

func taskAssignWorkerCmd() *cobra.Command {
	var workerID string
	cmd := &cobra.Command{
		Use:   "assign-worker <task-id>",
		Short: "Put a roster worker on a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, app *appContext) error {
				t, err := app.Orch.AssignWorkerToTask(ctx, args[0], workerID)
				if err != nil {
					return err
				}
				return printJSONOrTable(t)
			})
		},
	}
	cmd.Flags().StringVar(&workerID, "worker", "", "worker id")
	_ = cmd.MarkFlagRequired("worker")
	return cmd
}

func taskAssignMaterialsCmd() *cobra.Command {
	var projectID string
	var lines []string
	cmd := &cobra.Command{
		Use:   "assign-materials <task-id>",
		Short: "Allocate project inventory to a task",
		Long:  "Each --material takes materialID=quantity. Quantities are clamped to current availability before the call.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			requests := make([]api.AllocationRequest, 0, len(lines))
			for _, line := range lines {
				id, qtyStr, ok := strings.Cut(line, "=")
				if !ok {
					return fmt.Errorf("--material %q: want materialID=quantity", line)
				}
				var qty int
				if _, err := fmt.Sscanf(qtyStr, "%d", &qty); err != nil {
					return fmt.Errorf("--material %q: bad quantity: %w", line, err)
				}
				requests = append(requests, api.AllocationRequest{MaterialID: id, Quantity: qty})
			}
			return withApp(cmd.Context(), func(ctx context.Context, app *appContext) error {
				t, err := app.Orch.AssignMaterialsToTask(ctx, projectID, args[0], requests)
				if err != nil {
					return err
				}
				return printJSONOrTable(t)
			})
		},
	}
	cmd.Flags().StringVar(&projectID, "project", "", "project id (for availability)")
	cmd.Flags().StringArrayVar(&lines, "material", []string{}, "materialID=quantity (repeatable)")
	_ = cmd.MarkFlagRequired("project")
	_ = cmd.MarkFlagRequired("material")
	return cmd
}

func taskSubmitCmd() *cobra.Command {
	var description string
	var photos []string
	cmd := &cobra.Command{
		Use:   "submit <task-id>",
		Short: "File a task completion report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, app *appContext) error {
				if err := app.Orch.SubmitTask(ctx, args[0], description, photos); err != nil {
					return err
				}
				fmt.Println("Task submitted for review")
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&description, "description", "", "what was completed")
	cmd.Flags().StringArrayVar(&photos, "photo", []string{}, "photo file (repeatable)")
	_ = cmd.MarkFlagRequired("description")
	return cmd
}

func materialCmd() *cobra.Command {
	mat := &cobra.Command{Use: "material", Short: "Manage project inventory"}
	mat.AddCommand(materialAddCmd())
	mat.AddCommand(materialIncreaseCmd())
	mat.AddCommand(materialUpdateCmd())
	mat.AddCommand(materialReturnCmd())
	return mat
}

func materialAddCmd() *cobra.Command {
	var projectID, name, unit string
	var quantity int
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a material to a project",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, app *appContext) error {
				materials, err := app.Orch.AddProjectMaterial(ctx, projectID, name, quantity, unit)
				if err != nil {
					return err
				}
				printMaterials(materials)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&projectID, "project", "", "project id")
	cmd.Flags().StringVar(&name, "name", "", "material name")
	cmd.Flags().IntVar(&quantity, "quantity", 0, "initial quantity")
	cmd.Flags().StringVar(&unit, "unit", "", "unit of measure")
	_ = cmd.MarkFlagRequired("project")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("quantity")
	return cmd
}

func materialIncreaseCmd() *cobra.Command {
	var projectID string
	var amount int
	cmd := &cobra.Command{
		Use:   "increase <material-id>",
		Short: "Top up a material's quantity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, app *appContext) error {
				materials, err := app.Orch.IncreaseMaterial(ctx, projectID, args[0], amount)
				if err != nil {
					return err
				}
				printMaterials(materials)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&projectID, "project", "", "project id")
	cmd.Flags().IntVar(&amount, "amount", 0, "quantity to add")
	_ = cmd.MarkFlagRequired("project")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func materialUpdateCmd() *cobra.Command {
	var projectID string
	var quantity int
	cmd := &cobra.Command{
		Use:   "update <material-id>",
		Short: "Set a material's total quantity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, app *appContext) error {
				materials, err := app.Orch.UpdateMaterial(ctx, projectID, args[0], quantity)
				if err != nil {
					return err
				}
				printMaterials(materials)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&projectID, "project", "", "project id")
	cmd.Flags().IntVar(&quantity, "quantity", 0, "new total quantity")
	_ = cmd.MarkFlagRequired("project")
	_ = cmd.MarkFlagRequired("quantity")
	return cmd
}

func materialReturnCmd() *cobra.Command {
	var req api.ReturnRequest
	cmd := &cobra.Command{
		Use:   "return",
		Short: "Return unused material from a task",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, app *appContext) error {
				if err := app.Orch.ReturnMaterial(ctx, req); err != nil {
					return err
				}
				fmt.Println("Material returned")
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&req.MaterialID, "material", "", "material id")
	cmd.Flags().StringVar(&req.TaskID, "task", "", "task id")
	cmd.Flags().StringVar(&req.ProjectID, "project", "", "project id")
	cmd.Flags().StringVar(&req.WorkerID, "worker", "", "worker id")
	cmd.Flags().StringVar(&req.SupervisorID, "supervisor", "", "receiving supervisor id")
	cmd.Flags().IntVar(&req.Quantity, "quantity", 0, "quantity to return")
	_ = cmd.MarkFlagRequired("material")
	_ = cmd.MarkFlagRequired("task")
	_ = cmd.MarkFlagRequired("quantity")
	return cmd
}

func workerCmd() *cobra.Command {
	wrk := &cobra.Command{Use: "worker", Short: "Manage the worker pool"}
	wrk.AddCommand(workerListCmd())
	wrk.AddCommand(workerAssignCmd())
	wrk.AddCommand(workerAssignableCmd())
	wrk.AddCommand(workerHistoryCmd())
	wrk.AddCommand(workerSuspendCmd())
	wrk.AddCommand(workerRetainCmd())
	wrk.AddCommand(workerRemoveCmd())
	return wrk
}

func workerListCmd() *cobra.Command {
	var page int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List workers with their assignments",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, app *appContext) error {
				workers, err := app.API.Workers(ctx, page, app.Config.PageSize())
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(workers)
				}
				tw := newTable()
				tw.AppendHeader(table.Row{"ID", "Name", "Suspended", "Projects", "Tasks"})
				for _, w := range workers {
					tasks := 0
					for _, p := range w.Projects {
						tasks += len(p.Tasks)
					}
					tw.AppendRow(table.Row{w.ID, w.FullName, w.Suspended, len(w.Projects), tasks})
				}
				tw.Render()
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	return cmd
}

func workerAssignCmd() *cobra.Command {
	var projectID string
	cmd := &cobra.Command{
		Use:   "assign <worker-id>...",
		Short: "Add workers to a project roster",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, app *appContext) error {
				assignments, err := app.Orch.AssignWorkersToProject(ctx, projectID, args)
				printAssignments(assignments)
				return err
			})
		},
	}
	cmd.Flags().StringVar(&projectID, "project", "", "project id")
	_ = cmd.MarkFlagRequired("project")
	return cmd
}

func workerAssignableCmd() *cobra.Command {
	var page int
	cmd := &cobra.Command{
		Use:   "assignable <project-id>",
		Short: "List pool workers not yet on a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, app *appContext) error {
				pool, err := app.API.Workers(ctx, page, app.Config.PageSize())
				if err != nil {
					return err
				}
				assignments, err := app.API.ProjectAssignments(ctx, args[0])
				if err != nil {
					return err
				}
				assignable := engine.AssignableWorkers(pool, assignments.Workers)
				if viper.GetBool("json") {
					return printJSON(assignable)
				}
				tw := newTable()
				tw.AppendHeader(table.Row{"ID", "Name", "Suspended"})
				for _, w := range assignable {
					tw.AppendRow(table.Row{w.ID, w.FullName, w.Suspended})
				}
				tw.Render()
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	return cmd
}

func workerHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history <worker-id>",
		Short: "Show a worker's completed submissions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, app *appContext) error {
				entries, err := app.API.WorkerHistory(ctx, args[0])
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(entries)
				}
				tw := newTable()
				tw.AppendHeader(table.Row{"Type", "Name", "Project", "Status", "Completed"})
				for _, e := range entries {
					tw.AppendRow(table.Row{e.Type, e.Name, e.ProjectName, e.Status, e.CompletedAt})
				}
				tw.Render()
				return nil
			})
		},
	}
}

func workerSuspendCmd() *cobra.Command {
	return workerSuspensionCmd("suspend <worker-id>", "Suspend a worker", true)
}

func workerRetainCmd() *cobra.Command {
	return workerSuspensionCmd("retain <worker-id>", "Reactivate a suspended worker", false)
}

func workerSuspensionCmd(use, short string, suspend bool) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, app *appContext) error {
				workers, err := app.Orch.ToggleWorkerSuspension(ctx, args[0], suspend)
				if err != nil {
					return err
				}
				return printJSONOrTable(workers)
			})
		},
	}
}

func workerRemoveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remove <selection>...",
		Short: "Remove workers from projects or tasks",
		Long: `Each selection is workerID::projectID (drop the whole project
membership) or workerID::projectID::taskID (unassign one task).
Selections must be all project-level or all task-level; a mixed set is
refused before any call is made.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, app *appContext) error {
				workers, err := app.Orch.RemoveWorkerAssignments(ctx, args)
				if err != nil {
					return err
				}
				return printJSONOrTable(workers)
			})
		},
	}
	return cmd
}

func supervisorCmd() *cobra.Command {
	sup := &cobra.Command{Use: "supervisor", Short: "Manage supervisors"}
	sup.AddCommand(supervisorListCmd())
	sup.AddCommand(supervisorAssignCmd())
	sup.AddCommand(supervisorWorkersCmd())
	sup.AddCommand(supervisorSuspendCmd())
	sup.AddCommand(supervisorRetainCmd())
	sup.AddCommand(supervisorRemoveCmd())
	return sup
}

func supervisorAssignCmd() *cobra.Command {
	var projectID, role string
	cmd := &cobra.Command{
		Use:   "assign <supervisor-id>",
		Short: "Add a supervisor to a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r := domain.SupervisorRole(role)
			if r != domain.RoleLead && r != domain.RoleAssistant && r != domain.RoleStandard {
				return fmt.Errorf("--role must be Lead, Assistant, or Standard")
			}
			return withApp(cmd.Context(), func(ctx context.Context, app *appContext) error {
				assignments, err := app.Orch.AssignSupervisor(ctx, projectID, args[0], r)
				if err != nil {
					return err
				}
				printAssignments(assignments)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&projectID, "project", "", "project id")
	cmd.Flags().StringVar(&role, "role", string(domain.RoleStandard), "Lead, Assistant, or Standard")
	_ = cmd.MarkFlagRequired("project")
	return cmd
}

func supervisorWorkersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "workers <supervisor-id>",
		Short: "List workers on projects a supervisor oversees",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, app *appContext) error {
				workers, err := app.API.SupervisorWorkers(ctx, args[0])
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(workers)
				}
				tw := newTable()
				tw.AppendHeader(table.Row{"ID", "Name", "Suspended", "Projects"})
				for _, w := range workers {
					tw.AppendRow(table.Row{w.ID, w.FullName, w.Suspended, len(w.Projects)})
				}
				tw.Render()
				return nil
			})
		},
	}
}

func supervisorListCmd() *cobra.Command {
	var userID string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List supervisors with their project assignments",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, app *appContext) error {
				supervisors, err := app.API.AssignedSupervisors(ctx, userID)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(supervisors)
				}
				tw := newTable()
				tw.AppendHeader(table.Row{"ID", "Name", "Suspended", "Projects"})
				for _, s := range supervisors {
					var projects []string
					for _, p := range s.Projects {
						label := p.ProjectName
						if p.IsLead {
							label += " (Lead)"
						}
						projects = append(projects, label)
					}
					tw.AppendRow(table.Row{s.ID, s.FullName, s.Suspended, strings.Join(projects, ", ")})
				}
				tw.Render()
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "restrict to one account")
	return cmd
}

func supervisorSuspendCmd() *cobra.Command {
	return supervisorSuspensionCmd("suspend <supervisor-id>", "Suspend a supervisor", true)
}

func supervisorRetainCmd() *cobra.Command {
	return supervisorSuspensionCmd("retain <supervisor-id>", "Reactivate a suspended supervisor", false)
}

func supervisorSuspensionCmd(use, short string, suspend bool) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, app *appContext) error {
				supervisors, err := app.Orch.ToggleSupervisorSuspension(ctx, args[0], suspend)
				if err != nil {
					return err
				}
				return printJSONOrTable(supervisors)
			})
		},
	}
}

func supervisorRemoveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remove <supervisorID::projectID>...",
		Short: "Remove supervisor project assignments",
		Long: `Lead assignments cannot be removed. For other roles, only the
assignment's creator or the supervisor themself may remove it; one
ineligible pair refuses the whole batch.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pairs := make([]engine.SupervisorRemoval, 0, len(args))
			for _, arg := range args {
				supID, projID, ok := strings.Cut(arg, "::")
				if !ok || supID == "" || projID == "" {
					return fmt.Errorf("selection %q: want supervisorID::projectID", arg)
				}
				pairs = append(pairs, engine.SupervisorRemoval{SupervisorID: supID, ProjectID: projID})
			}
			return withApp(cmd.Context(), func(ctx context.Context, app *appContext) error {
				if !app.Session.LoggedIn() {
					return fmt.Errorf("not logged in; run tt login")
				}
				supervisors, err := app.Orch.RemoveSupervisorAssignments(ctx, app.Session.UserID, pairs)
				if err != nil {
					return err
				}
				return printJSONOrTable(supervisors)
			})
		},
	}
	return cmd
}

func worklogCmd() *cobra.Command {
	wl := &cobra.Command{Use: "worklog", Short: "Review submitted work"}
	wl.AddCommand(worklogListCmd())
	wl.AddCommand(worklogReviewCmd("approve <submission-id>", "Approve a pending submission", true))
	wl.AddCommand(worklogReviewCmd("reject <submission-id>", "Reject a pending submission", false))
	return wl
}

func worklogListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List submissions pending review",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, app *appContext) error {
				logs, err := app.API.WorkLogs(ctx)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(logs)
				}
				tw := newTable()
				tw.AppendHeader(table.Row{"Submission", "Type", "Worker", "Work", "Photos", "Submitted"})
				for _, l := range logs {
					work := l.TaskName
					if strings.EqualFold(l.Type, "project") {
						work = l.ProjectName
					}
					tw.AppendRow(table.Row{l.SubmissionID, l.Type, l.WorkerFullName, work, len(l.PhotoURLs), l.Timestamp})
				}
				tw.Render()
				return nil
			})
		},
	}
}

func worklogReviewCmd(use, short string, approve bool) *cobra.Command {
	var logType string
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, app *appContext) error {
				log := domain.WorkLog{SubmissionID: args[0], Type: logType}
				remaining, err := app.Orch.ReviewSubmission(ctx, log, approve)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(remaining)
				}
				fmt.Printf("Reviewed. %d submissions still pending.\n", len(remaining))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&logType, "type", "task", "submission type (task or project)")
	return cmd
}

func analyticsCmd() *cobra.Command {
	var req api.AnalyticsRequest
	cmd := &cobra.Command{
		Use:   "analytics",
		Short: "Activity counters for a reporting window",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, app *appContext) error {
				buckets, err := app.API.Analytics(ctx, req)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(buckets)
				}
				tw := newTable()
				tw.AppendHeader(table.Row{"Bucket", "Projects", "Tasks", "Submitted", "Approved", "Rejected"})
				for _, b := range buckets {
					tw.AppendRow(table.Row{
						b.Label,
						b.ProjectsCreated,
						b.TasksCreated,
						b.ProjectsSubmitted + b.TasksSubmitted,
						b.ProjectsApproved + b.TasksApproved,
						b.ProjectsRejected + b.TasksRejected,
					})
				}
				tw.Render()
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&req.StartDate, "start", "", "window start (RFC 3339)")
	cmd.Flags().StringVar(&req.EndDate, "end", "", "window end (RFC 3339)")
	cmd.Flags().StringVar(&req.GroupBy, "group-by", "day", "day, week, or month")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")
	return cmd
}

// --- helpers ---

type appContext struct {
	Config  *config.Config
	Store   session.Store
	Session session.Session
	API     *api.Client
	Orch    *orchestrate.Orchestrator
}

func withApp(ctx context.Context, fn func(context.Context, *appContext) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	sessionPath := cfg.Session.Path
	if sessionPath == "" {
		sessionPath, err = session.DefaultPath()
		if err != nil {
			return err
		}
	}
	store := session.Store{Path: sessionPath}
	sess, err := store.Load()
	if err != nil {
		return err
	}

	client := api.New(cfg.API.BaseURL)
	client.Log = logging.Log
	if cfg.API.Timeout != "" {
		if d, err := time.ParseDuration(cfg.API.Timeout); err == nil {
			client.Timeout = d
		}
	}
	client.TokenSource = func() string { return sess.AuthToken }
	client.OnSessionExpired = func() {
		if err := store.Clear(); err != nil {
			logging.Log.WithError(err).Warn("failed to clear expired session")
		}
	}

	var uploader *media.Uploader
	if cfg.Media.CloudName != "" {
		uploader = media.New(cfg.Media.CloudName, cfg.Media.UploadPreset)
		uploader.Log = logging.Log
	}

	orch := orchestrate.New(client, uploader, logging.Log)
	orch.PageSize = cfg.PageSize()

	return fn(ctx, &appContext{
		Config:  cfg,
		Store:   store,
		Session: sess,
		API:     client,
		Orch:    orch,
	})
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadOptional(viper.GetString("workspace"))
	if err != nil {
		return nil, err
	}
	if override := viper.GetString("api-url"); override != "" {
		if cfg == nil {
			cfg = config.Default(override)
		} else {
			cfg.API.BaseURL = override
		}
	}
	if cfg == nil {
		return nil, fmt.Errorf("no twintrack.yml found; run tt config init or pass --api-url")
	}
	return cfg, cfg.Validate()
}

func newTable() table.Writer {
	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	return tw
}

func printAssignments(a domain.Assignments) {
	if viper.GetBool("json") {
		_ = printJSON(a)
		return
	}
	tw := newTable()
	tw.AppendHeader(table.Row{"Role", "Name", "ID"})
	for _, s := range a.Supervisors {
		tw.AppendRow(table.Row{s.Role, s.FullName, s.SupervisorID})
	}
	for _, w := range a.Workers {
		tw.AppendRow(table.Row{"Worker", w.FullName, w.WorkerID})
	}
	tw.Render()
}

func printMaterials(materials []domain.Material) {
	if viper.GetBool("json") {
		_ = printJSON(materials)
		return
	}
	tw := newTable()
	tw.AppendHeader(table.Row{"ID", "Name", "Total", "Available", "Unit"})
	for _, m := range materials {
		tw.AppendRow(table.Row{m.ID, m.Name, m.Quantity, m.AvailableQuantity, m.Unit})
	}
	tw.Render()
}

func printJSONOrTable(v any) error {
	if viper.GetBool("json") {
		return printJSON(v)
	}
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
