package spoolci

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/vikavorkin/Spoolman/config"
	"github.com/vikavorkin/Spoolman/spoolci/artifacts"
	"github.com/vikavorkin/Spoolman/spoolci/executor"
	"github.com/vikavorkin/Spoolman/spoolci/loader"
	"github.com/vikavorkin/Spoolman/spoolci/schema"
	"github.com/vikavorkin/Spoolman/spoolci/server"
	"github.com/vikavorkin/Spoolman/spoolci/shell"
	"github.com/vikavorkin/Spoolman/spoolci/trigger"
	"github.com/vikavorkin/Spoolman/spoolci/ui"
	"github.com/vikavorkin/Spoolman/spoolci/utils"
	"github.com/wzshiming/ctc"
)

const defaultWorkflowDir = ".spoolci"

type SpoolCI struct {
	stdout *os.File
	stderr *os.File
	loader *loader.Loader
}

func New(stdout, stderr *os.File) *SpoolCI {
	return &SpoolCI{
		stdout: stdout,
		stderr: stderr,
		loader: loader.New(),
	}
}

func (s *SpoolCI) Run() {
	rootCmd := &cobra.Command{
		Use:     "spoolci",
		Short:   "spoolci - Build pipeline runner for Spoolman",
		Long:    "spoolci runs declarative build workflows on a local ephemeral worker whenever a repository event matches their triggers.",
		Version: config.Version,
	}

	rootCmd.AddCommand(
		s.buildRunCommand(),
		s.buildServeCommand(),
		s.buildArtifactsCommand(),
		s.buildInitCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(s.stderr, "%sError:%s %v\n", ctc.ForegroundRed, ctc.Reset, err)
		os.Exit(1)
	}
}

func (s *SpoolCI) buildRunCommand() *cobra.Command {
	var (
		eventKind string
		ref       string
		baseRef   string
		repo      string
		commit    string
		envVars   []string
		dryRun    bool
		force     bool
	)

	cmd := &cobra.Command{
		Use:           "run [workflow-file-or-dir]",
		Short:         "Evaluate an event against workflows and execute the matches",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := defaultWorkflowDir
			if len(args) == 1 {
				path = args[0]
			}

			event := trigger.Event{
				Kind:       trigger.EventKind(eventKind),
				Ref:        normalizeRef(ref),
				BaseRef:    normalizeRef(baseRef),
				Repository: repo,
				Commit:     commit,
			}

			return s.runWorkflows(cmd.Context(), path, event, envVars, dryRun, force)
		},
	}

	cmd.Flags().StringVarP(&eventKind, "event", "k", "push", "Event kind (push or pull_request)")
	cmd.Flags().StringVarP(&ref, "ref", "r", "refs/heads/master", "Ref the event concerns (branch name, tag name prefixed with refs/tags/, or full ref)")
	cmd.Flags().StringVar(&baseRef, "base-ref", "", "Target branch for pull_request events")
	cmd.Flags().StringVar(&repo, "repo", "", "Repository URL or path for the checkout step")
	cmd.Flags().StringVar(&commit, "commit", "", "Commit hash the ref points at")
	cmd.Flags().StringSliceVarP(&envVars, "env", "e", nil, "Environment variables (KEY=VALUE)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would be executed without running")
	cmd.Flags().BoolVar(&force, "force", false, "Run workflows even when the event does not match their triggers")

	return cmd
}

func (s *SpoolCI) runWorkflows(ctx context.Context, path string, event trigger.Event, envVars []string, dryRun, force bool) error {
	if event.Kind != trigger.EventPush && event.Kind != trigger.EventPullRequest {
		return fmt.Errorf("unknown event kind %q (expected push or pull_request)", event.Kind)
	}

	workflows, err := s.loadWorkflows(path)
	if err != nil {
		return err
	}

	env, err := s.parseEnvVars(envVars)
	if err != nil {
		return fmt.Errorf("failed to parse environment variables: %w", err)
	}

	expandedEnv, err := s.loader.ExpandEnv(env)
	if err != nil {
		return fmt.Errorf("failed to expand environment variables: %w", err)
	}

	out := ui.NewOutput(s.stdout, s.stderr)
	exec := executor.New(shell.NewRunner(), artifacts.NewStore(), s.stdout, s.stderr)

	matched := false
	for _, wf := range workflows {
		if !force && !trigger.Matches(wf.On, event) {
			out.TriggerSkipped(wf.Name, string(event.Kind), event.ShortRef())
			continue
		}
		matched = true

		if dryRun {
			if err := exec.DryRun(ctx, wf, event, expandedEnv); err != nil {
				return err
			}
			continue
		}

		if _, err := exec.ExecuteWorkflow(ctx, wf, event, expandedEnv); err != nil {
			return fmt.Errorf("workflow %s failed: %w", wf.Name, err)
		}
	}

	// A non-matching event is not a failure: the pipeline simply
	// does not execute
	if !matched {
		out.Info("No workflow triggered by %s %s", event.Kind, event.ShortRef())
	}

	return nil
}

func (s *SpoolCI) buildServeCommand() *cobra.Command {
	var (
		addr         string
		workflowsDir string
	)

	cmd := &cobra.Command{
		Use:           "serve",
		Short:         "Listen for repository events and run matching workflows",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			workflows, err := s.loadWorkflows(workflowsDir)
			if err != nil {
				return err
			}

			logger := slog.New(slog.NewTextHandler(s.stderr, nil))
			exec := executor.New(shell.NewRunner(), artifacts.NewStore(), s.stdout, s.stderr)
			srv := server.New(workflows, exec, logger)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return srv.ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", ":8484", "Address to listen on")
	cmd.Flags().StringVarP(&workflowsDir, "workflows", "w", defaultWorkflowDir, "Directory with workflow files")

	return cmd
}

func (s *SpoolCI) buildArtifactsCommand() *cobra.Command {
	return &cobra.Command{
		Use:           "artifacts",
		Short:         "List artifacts produced by past runs",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			store := artifacts.NewStore()
			manifests, err := store.List()
			if err != nil {
				return err
			}

			out := ui.NewOutput(s.stdout, s.stderr)
			if len(manifests) == 0 {
				out.Info("No runs recorded yet")
				return nil
			}

			out.ArtifactTable(manifests)
			return nil
		},
	}
}

// loadWorkflows accepts either a single workflow file or a directory
// of them, and validates everything it loads.
func (s *SpoolCI) loadWorkflows(path string) ([]*schema.Workflow, error) {
	path, err := utils.ExpandPath(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve workflow path: %w", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load workflows from %s: %w", path, err)
	}

	var workflows []*schema.Workflow
	if info.IsDir() {
		workflows, err = s.loader.LoadDirectory(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load workflows: %w", err)
		}
	} else {
		wf, err := s.loader.LoadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load workflow: %w", err)
		}
		workflows = []*schema.Workflow{wf}
	}

	for _, wf := range workflows {
		if err := s.loader.Validate(wf); err != nil {
			return nil, fmt.Errorf("validation failed: %w", err)
		}
	}

	return workflows, nil
}

func (s *SpoolCI) parseEnvVars(envVars []string) (map[string]string, error) {
	env := make(map[string]string)
	for _, ev := range envVars {
		parts := strings.SplitN(ev, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid environment variable format: %s (expected KEY=VALUE)", ev)
		}
		env[parts[0]] = parts[1]
	}
	return env, nil
}

// normalizeRef turns a bare branch name into a full ref; anything
// already under refs/ passes through.
func normalizeRef(ref string) string {
	if ref == "" || strings.HasPrefix(ref, "refs/") {
		return ref
	}
	return "refs/heads/" + ref
}
