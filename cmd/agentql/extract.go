package main

import (
	"fmt"
	"time"

	"agentql-tools/internal/adapter/langchain"
	"agentql-tools/internal/di"
	"agentql-tools/internal/domain/entity"
	"agentql-tools/internal/infrastructure/screenshot"

	"github.com/spf13/cobra"
	"github.com/tmc/langchaingo/textsplitter"
)

type extractFlags struct {
	query         string
	prompt        string
	mode          string
	waitFor       int
	scroll        bool
	screenshot    bool
	screenshotOut string
	stealth       bool
	timeout       time.Duration
	async         bool
}

func (f *extractFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.query, "query", "q", "", "AgentQL query")
	cmd.Flags().StringVarP(&f.prompt, "prompt", "p", "", "Natural language description of the data")
	cmd.Flags().StringVar(&f.mode, "mode", "", "Extraction mode (fast, standard); defaults to the config")
	cmd.Flags().IntVar(&f.waitFor, "wait-for", -1, "Seconds to wait for the page to load (0-10)")
	cmd.Flags().BoolVar(&f.scroll, "scroll", false, "Scroll to the bottom before extracting")
	cmd.Flags().BoolVar(&f.stealth, "stealth", false, "Enable experimental stealth mode")
	cmd.Flags().DurationVarP(&f.timeout, "timeout", "t", 0, "Request timeout; defaults to the config")
}

func (f *extractFlags) request(c *di.Container, url string) entity.ExtractionRequest {
	params := c.Config.AgentQL.Params()
	if f.mode != "" {
		params.Mode = entity.ResponseMode(f.mode)
	}
	if f.waitFor >= 0 {
		params.WaitFor = f.waitFor
	}
	params.IsScrollToBottomEnabled = params.IsScrollToBottomEnabled || f.scroll
	params.IsScreenshotEnabled = params.IsScreenshotEnabled || f.screenshot || f.screenshotOut != ""

	metadata := c.Config.AgentQL.Metadata()
	metadata.ExperimentalStealthModeEnabled = metadata.ExperimentalStealthModeEnabled || f.stealth

	return entity.ExtractionRequest{
		URL:      url,
		Query:    f.query,
		Prompt:   f.prompt,
		Params:   params,
		Metadata: metadata,
		Timeout:  f.timeout,
	}
}

func newExtractCmd() *cobra.Command {
	f := &extractFlags{}
	cmd := &cobra.Command{
		Use:   "extract URL",
		Short: "Extract data from a public web page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newContainer(cmd.Context(), di.Options{RunName: "extract"})
			if err != nil {
				return err
			}
			defer c.Close()

			req := f.request(c, args[0])
			if err := validateMode(req.Params.Mode); err != nil {
				return err
			}

			var result *entity.ExtractionResult
			if f.async {
				outcome := <-c.Client.ExtractAsync(cmd.Context(), req)
				result, err = outcome.Result, outcome.Err
			} else {
				result, err = c.Client.Extract(cmd.Context(), req)
			}
			if err != nil {
				return err
			}

			if f.screenshotOut != "" {
				if shot := result.Screenshot(); shot != "" {
					bounds, err := screenshot.Save(shot, f.screenshotOut, screenshot.DefaultMaxWidth)
					if err != nil {
						return err
					}
					c.Logger.Info("Screenshot saved", "path", f.screenshotOut, "width", bounds.Dx(), "height", bounds.Dy())
					delete(result.Metadata, "screenshot")
				} else {
					c.Logger.Warn("Response carried no screenshot")
				}
			}

			return printJSON(cmd.OutOrStdout(), result)
		},
	}
	f.register(cmd)
	cmd.Flags().BoolVar(&f.screenshot, "screenshot", false, "Include a base64 screenshot in the metadata")
	cmd.Flags().StringVar(&f.screenshotOut, "screenshot-out", "", "Save the screenshot to this file instead of printing it")
	cmd.Flags().BoolVar(&f.async, "async", false, "Use the asynchronous call path")
	return cmd
}

func newLoadCmd() *cobra.Command {
	f := &extractFlags{}
	var chunkSize, chunkOverlap int
	cmd := &cobra.Command{
		Use:   "load URL",
		Short: "Load a web page as LangChain documents",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newContainer(cmd.Context(), di.Options{RunName: "load"})
			if err != nil {
				return err
			}
			defer c.Close()

			req := f.request(c, args[0])
			if err := validateMode(req.Params.Mode); err != nil {
				return err
			}

			opts := []langchain.LoaderOption{
				langchain.WithLoaderParams(req.Params),
				langchain.WithLoaderMetadata(req.Metadata),
				langchain.WithLoaderTimeout(req.Timeout),
			}
			if f.query != "" {
				opts = append(opts, langchain.WithQuery(f.query))
			} else {
				opts = append(opts, langchain.WithPrompt(f.prompt))
			}
			loader := langchain.NewLoader(c.Client, req.URL, opts...)

			var splitter textsplitter.TextSplitter
			if chunkSize > 0 {
				splitter = textsplitter.NewRecursiveCharacter(
					textsplitter.WithChunkSize(chunkSize),
					textsplitter.WithChunkOverlap(chunkOverlap),
				)
			}
			docs, err := loader.LoadAndSplit(cmd.Context(), splitter)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), docs)
		},
	}
	f.register(cmd)
	cmd.Flags().IntVar(&chunkSize, "chunk-size", 0, "Split the document into chunks of this many characters")
	cmd.Flags().IntVar(&chunkOverlap, "chunk-overlap", 0, "Overlap between chunks")
	return cmd
}

func validateMode(mode entity.ResponseMode) error {
	if !mode.Valid() {
		return entity.NewInvalidInputError(fmt.Sprintf("mode must be 'fast' or 'standard', got %q", mode))
	}
	return nil
}
