/*
Copyright © 2025 Your Name

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"fmt"
	"os"

	"clout/internal/config"
	"clout/internal/enrich"
	"clout/internal/fetch"
	"clout/internal/llm"
	"clout/internal/logger"
	"clout/internal/pipeline"
	"clout/internal/search"
	"clout/internal/store"
	"clout/internal/tui"

	"github.com/spf13/cobra"
)

var (
	cfgFile    string
	outputFile string
	dryRun     bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "clout",
	Short: "Clout generates LinkedIn post drafts from blog articles.",
	Long: `Clout scrapes each configured blog article, widens its context with
search-result pages, and drives a local language model to draft three
stylistic variants of a long-form LinkedIn post per article. Every draft
is appended to an xlsx workbook for human review.

The generation backend is any OpenAI-compatible local server (llama-server,
llamafile, Ollama). Configure it with CLOUT_LLM_BASE_URL and CLOUT_LLM_MODEL
or the llm section of .clout.yaml.`,
	RunE: runPipeline,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./.clout.yaml or $HOME/.clout.yaml)")
	rootCmd.Flags().StringVarP(&outputFile, "output", "o", "", "xlsx workbook to append results to (overrides output.file)")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the run plan without fetching or generating")
}

func runPipeline(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if outputFile != "" {
		cfg.Output.File = outputFile
	}

	if dryRun {
		fmt.Printf("Would process %d source URLs with %d variants each into %s:\n", len(cfg.Sources), 3, cfg.Output.File)
		for _, u := range cfg.Sources {
			fmt.Printf("  - %s\n", u)
		}
		fmt.Printf("Search provider: %s (credential configured: %v)\n", cfg.Search.Provider, cfg.HasSearchCredential())
		fmt.Printf("Generation backend: %s model %s\n", cfg.LLM.BaseURL, cfg.LLM.Model)
		return nil
	}

	ctx := context.Background()

	st, err := store.NewStore(cfg.Output.File)
	if err != nil {
		return fmt.Errorf("failed to open result store: %w", err)
	}

	// A missing or unreachable generation backend halts the run here,
	// before any item is touched.
	client, err := llm.NewClient(ctx, cfg.LLM)
	if err != nil {
		fmt.Printf("❌ Generation backend unavailable: %v\n", err)
		return err
	}

	deps := pipeline.Deps{
		Fetch:     fetch.PageText,
		Enricher:  enrich.New(buildSearchProvider(cfg), fetch.PageText, cfg.Search.MaxResults),
		Generator: client,
		Store:     st,
		Console:   os.Stdout,
		Progress:  os.Stdout,
	}

	return pipeline.Run(ctx, cfg, deps)
}

// buildSearchProvider returns the configured search provider, or nil when
// no credential is available or construction fails. Enrichment then
// degrades to empty; the pipeline keeps going.
func buildSearchProvider(cfg *config.Config) search.Provider {
	if !cfg.HasSearchCredential() {
		fmt.Printf("⚠️  No %s credential configured — running without enrichment.\n", cfg.Search.Provider)
		return nil
	}

	factory := search.NewProviderFactory()
	provider, err := factory.CreateProvider(search.ProviderType(cfg.Search.Provider), cfg.SearchProviderSettings())
	if err != nil {
		logger.Warn("Search provider unavailable, running without enrichment", "provider", cfg.Search.Provider, "error", err.Error())
		return nil
	}
	return provider
}

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Browse stored post drafts in a terminal UI",
	Long:  `Open the workbook and browse every generated post variant in a two-pane terminal UI.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		if outputFile != "" {
			cfg.Output.File = outputFile
		}

		st, err := store.NewStore(cfg.Output.File)
		if err != nil {
			return fmt.Errorf("failed to open result store: %w", err)
		}
		posts, err := st.ListPosts()
		if err != nil {
			return fmt.Errorf("failed to read stored posts: %w", err)
		}

		tui.StartTUI(posts)
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the clout version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("clout v0.1.0")
	},
}

func init() {
	rootCmd.AddCommand(reviewCmd)
	rootCmd.AddCommand(versionCmd)
	reviewCmd.Flags().StringVarP(&outputFile, "output", "o", "", "xlsx workbook to read posts from")
}
