package main

import (
	"fmt"
	"strings"

	"agentql-tools/internal/application/port/output"
	"agentql-tools/internal/di"
	"agentql-tools/internal/domain/entity"
	"agentql-tools/internal/infrastructure/console"
	"agentql-tools/internal/infrastructure/prompts"
	"agentql-tools/internal/infrastructure/query"

	"github.com/spf13/cobra"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check that the configured API key is accepted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newContainer(cmd.Context(), di.Options{RunName: "validate"})
			if err != nil {
				return err
			}
			defer c.Close()

			if err := c.Client.ValidateAPIKey(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "API key is valid")
			return nil
		},
	}
}

func newSampleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sample QUERY",
		Short: "Print sample output for an AgentQL query without calling the API",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sample, err := query.Sample(args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), sample)
		},
	}
}

func newAgentCmd() *cobra.Command {
	var (
		preset        string
		browser       bool
		showUI        bool
		outputDir     string
		maxIterations int
		listPresets   bool
		quiet         bool
	)
	cmd := &cobra.Command{
		Use:   "agent [TASK]",
		Short: "Run a tool-calling agent on a task or a preset",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if listPresets {
				for _, p := range prompts.Presets() {
					fmt.Fprintf(out, "%-18s %s\n", p.Name, p.Description)
				}
				return nil
			}

			var task string
			switch {
			case preset != "" && len(args) > 0:
				return entity.NewInvalidInputError("give either a task or --preset, not both")
			case preset != "":
				p, ok := prompts.LookupPreset(preset)
				if !ok {
					return entity.NewInvalidInputError(fmt.Sprintf("unknown preset %q", preset))
				}
				task = p.Task
				browser = browser || p.Browser
			case len(args) > 0:
				task = strings.TrimSpace(args[0])
			}
			if task == "" {
				return entity.NewInvalidInputError("task required")
			}

			cfg, envService, err := loadConfig()
			if err != nil {
				return err
			}
			if showUI {
				cfg.Browser.Headless = false
			}
			c, err := di.NewContainer(cmd.Context(), cfg, di.Options{
				Browser:   browser,
				OutputDir: outputDir,
				RunName:   "agent",
				Lookup:    envService.Lookup,
			})
			if err != nil {
				return err
			}
			defer c.Close()

			var progress output.ProgressPort
			if !quiet {
				progress = console.NewProgress(cmd.ErrOrStderr())
			}
			executor, err := c.TaskExecutor(maxIterations, progress)
			if err != nil {
				return err
			}

			c.Logger.Info("Task started", "task", task, "browser", browser)
			result, err := executor.Execute(cmd.Context(), task)
			if err != nil {
				c.Logger.Error("Task failed", "error", err)
				return err
			}
			c.Logger.Info("Task completed", "iterations", result.Iterations, "tool_calls", result.ToolCalls)

			fmt.Fprintln(out, result.FinalAnswer)
			return nil
		},
	}
	cmd.Flags().StringVar(&preset, "preset", "", "Run a built-in task (see --list-presets)")
	cmd.Flags().BoolVar(&listPresets, "list-presets", false, "List the built-in tasks")
	cmd.Flags().BoolVar(&browser, "browser", false, "Launch a browser and add the browser-bound tools")
	cmd.Flags().BoolVar(&showUI, "show-ui", false, "Show the browser window")
	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", ".", "Directory the write_file tool writes into; empty disables it")
	cmd.Flags().BoolVar(&quiet, "quiet", false, "Do not print agent progress to stderr")
	cmd.Flags().IntVar(&maxIterations, "max-iterations", 0, "Upper bound on LLM round trips")
	return cmd
}
