package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"maestro/internal/llmagents"
	"maestro/internal/searchpipeline"
	"maestro/internal/tools"
)

func newQueryCmd() *cobra.Command {
	var maxResults int

	cmd := &cobra.Command{
		Use:   "query <question>",
		Short: "Run one iterative web search pipeline pass and print the gathered context.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resolver := newResolver()
			dispatcher := newDispatcher(resolver)

			provider, _ := resolver.GetString("web_search_provider", nil, nil)
			tavilyKey, _ := resolver.GetString("tavily_api_key", nil, nil)
			linkupKey, _ := resolver.GetString("linkup_api_key", nil, nil)
			searxngBase, _ := resolver.GetString("searxng_base_url", nil, nil)
			searchTool := tools.NewSearchTool(tools.WebSearchProvider(provider), tavilyKey, linkupKey, searxngBase, nil)
			fetchTool := tools.NewFetchTool()

			maxAttempts, _ := resolver.GetInt("max_search_iterations", nil, nil)
			pipeline := searchpipeline.New(
				searchpipeline.ModeWeb,
				llmagents.ToolSearcher{Tool: searchTool},
				llmagents.ToolFetcher{Tool: fetchTool},
				llmagents.RelevanceAdapter{Dispatcher: dispatcher},
				llmagents.QualityAdapter{Dispatcher: dispatcher},
				searchpipeline.Params{MaxAttempts: maxAttempts, MaxSearchResults: maxResults, MaxDocResults: maxResults},
			)

			maxQueries, _ := resolver.GetInt("max_decomposed_queries", nil, nil)
			decomposed := searchpipeline.DecomposeFallback(args[0], maxQueries)
			context, sources, err := pipeline.Run(cmd.Context(), args[0], decomposed)
			if err != nil {
				return err
			}

			fmt.Println(context)
			fmt.Printf("\n--- %d sources ---\n", len(sources))
			for _, s := range sources {
				fmt.Printf("[%s] %s (%s)\n", s.RefID, s.Title, s.URL)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&maxResults, "max-results", 5, "maximum results to request per search call")
	return cmd
}
