package main

import (
	"fmt"
	"time"

	"agentql-tools/internal/adapter/tool"
	"agentql-tools/internal/di"
	"agentql-tools/internal/domain/entity"
	"agentql-tools/internal/infrastructure/browser/rodwrapper"

	"github.com/spf13/cobra"
)

func newBrowseCmd() *cobra.Command {
	var (
		query         string
		prompt        string
		element       string
		showUI        bool
		includeHidden bool
		noIdle        bool
		timeout       time.Duration
	)
	cmd := &cobra.Command{
		Use:   "browse URL",
		Short: "Open a page in a local browser and query it",
		Long: `browse navigates a local Chromium to URL and runs the query against the
rendered page. With --element it locates a single element by description and
prints a CSS selector for it instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if element == "" {
				if err := entity.ValidateQueryPrompt(query, prompt); err != nil {
					return err
				}
			}
			if err := entity.ValidateURL(args[0]); err != nil {
				return err
			}

			cfg, envService, err := loadConfig()
			if err != nil {
				return err
			}
			if showUI {
				cfg.Browser.Headless = false
			}
			c, err := di.NewContainer(ctx, cfg, di.Options{
				Browser: true,
				RunName: "browse",
				Lookup:  envService.Lookup,
			})
			if err != nil {
				return err
			}
			defer c.Close()

			if err := c.Browser.Navigate(ctx, args[0]); err != nil {
				return err
			}
			page, err := c.PageProvider().CurrentPage(ctx)
			if err != nil {
				return err
			}

			if element != "" {
				opts := tool.DefaultElementOptions()
				opts.WaitForNetworkIdle = !noIdle
				if cmd.Flags().Changed("include-hidden") {
					opts.IncludeHidden = includeHidden
				}
				if timeout > 0 {
					opts.Timeout = timeout
				}
				el, err := page.GetByPrompt(ctx, element, opts.QueryOptions())
				if err != nil {
					return err
				}
				id, err := el.Attribute(ctx, rodwrapper.ElementIDAttr)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "[%s='%s']\n", rodwrapper.ElementIDAttr, id)
				return nil
			}

			opts := tool.DefaultDataOptions()
			opts.WaitForNetworkIdle = !noIdle
			opts.IncludeHidden = includeHidden
			if timeout > 0 {
				opts.Timeout = timeout
			}
			var data map[string]any
			if query != "" {
				data, err = page.QueryData(ctx, query, opts.QueryOptions())
			} else {
				data, err = page.GetDataByPrompt(ctx, prompt, opts.QueryOptions())
			}
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), data)
		},
	}
	cmd.Flags().StringVarP(&query, "query", "q", "", "AgentQL query")
	cmd.Flags().StringVarP(&prompt, "prompt", "p", "", "Natural language description of the data")
	cmd.Flags().StringVarP(&element, "element", "e", "", "Describe one element to locate instead of extracting data")
	cmd.Flags().BoolVar(&showUI, "show-ui", false, "Show the browser window")
	cmd.Flags().BoolVar(&includeHidden, "include-hidden", true, "Keep hidden elements in the page snapshot (default false with --element)")
	cmd.Flags().BoolVar(&noIdle, "no-idle", false, "Do not wait for network idle before snapshotting")
	cmd.Flags().DurationVarP(&timeout, "timeout", "t", 0, "Extraction timeout")
	return cmd
}
