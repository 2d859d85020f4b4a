// Command research is the CLI surface for the mission pipeline (spec §6):
// ingest/query against the vector store, inspect-store for health, and
// run-research to drive a mission end to end. Generalized from the
// teacher's single-purpose cmd/research/main.go REPL entrypoint into a
// cobra command tree.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"maestro/internal/modeldispatch"
	"maestro/internal/settings"
)

func newResolver() *settings.Resolver {
	r := settings.New()
	r.RegisterAll(settings.DefaultSpecs())
	return r
}

func newDispatcher(resolver *settings.Resolver) *modeldispatch.Dispatcher {
	apiKey, _ := resolver.GetString("openrouter_api_key", nil, nil)
	client := newChatClient(apiKey)
	maxConcurrent, _ := resolver.GetInt("max_concurrent_requests", nil, nil)
	return modeldispatch.New(resolver, client, maxConcurrent)
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, color.RedString("Error: %v", err))
	os.Exit(1)
}

func main() {
	root := &cobra.Command{
		Use:   "research",
		Short: "Mission pipeline CLI: ingest documents, query the vector store, and run research missions.",
	}

	root.AddCommand(newIngestCmd())
	root.AddCommand(newQueryCmd())
	root.AddCommand(newInspectStoreCmd())
	root.AddCommand(newRunResearchCmd())

	if err := root.Execute(); err != nil {
		fatal(err)
	}
}
