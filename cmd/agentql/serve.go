package main

import (
	"agentql-tools/internal/adapter/httpapi"
	"agentql-tools/internal/di"

	"github.com/spf13/cobra"
)

func newMCPCmd() *cobra.Command {
	var browser bool
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve the tools to an MCP client over stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newContainer(cmd.Context(), di.Options{Browser: browser, RunName: "mcp"})
			if err != nil {
				return err
			}
			defer c.Close()

			return c.MCPServer(version).Run(cmd.Context())
		},
	}
	cmd.Flags().BoolVar(&browser, "browser", false, "Launch a browser and expose the browser-bound tools")
	return cmd
}

func newServeCmd() *cobra.Command {
	var (
		addr    string
		browser bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP plugin endpoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newContainer(cmd.Context(), di.Options{Browser: browser, RunName: "serve"})
			if err != nil {
				return err
			}
			defer c.Close()

			if addr == "" {
				addr = c.Config.Plugin.Addr
			}
			return httpapi.Serve(cmd.Context(), addr, c.Router(), c.Logger)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address; defaults to the config")
	cmd.Flags().BoolVar(&browser, "browser", false, "Launch a browser and expose the browser-bound tools")
	return cmd
}
