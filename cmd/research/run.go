package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"maestro/internal/domain"
	"maestro/internal/eventbus"
	"maestro/internal/llmagents"
	"maestro/internal/merrors"
	"maestro/internal/missioncontroller"
	"maestro/internal/missionstore"
	"maestro/internal/modeldispatch"
	"maestro/internal/outline"
	"maestro/internal/reflection"
	"maestro/internal/report"
	"maestro/internal/searchpipeline"
	"maestro/internal/settings"
	"maestro/internal/taskmanager"
	"maestro/internal/tools"
	"maestro/internal/writing"
)

func newRunResearchCmd() *cobra.Command {
	var question string
	var inputFile string
	var outputDir string
	var format string
	var useLocalRAG bool
	var useWebSearch bool

	cmd := &cobra.Command{
		Use:   "run-research",
		Short: "Run a research mission from planning through a finalized, cited report.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if question == "" && inputFile == "" {
				return fmt.Errorf("one of --question or --input-file is required")
			}
			if question == "" {
				data, err := os.ReadFile(inputFile)
				if err != nil {
					return fmt.Errorf("read --input-file: %w", err)
				}
				question = strings.TrimSpace(string(data))
			}
			if format != "markdown" && format != "all" {
				return fmt.Errorf("only --format markdown is implemented here; pdf/docx rendering has no authoring library in this build")
			}
			return runMission(cmd.Context(), question, outputDir, useLocalRAG, useWebSearch)
		},
	}

	cmd.Flags().StringVar(&question, "question", "", "the research question to investigate")
	cmd.Flags().StringVar(&inputFile, "input-file", "", "read the research question from a file instead of --question")
	cmd.Flags().StringVar(&outputDir, "output-dir", ".", "directory to write the final report into")
	cmd.Flags().StringVar(&format, "format", "markdown", "output format: markdown|pdf|docx|all (only markdown is implemented)")
	cmd.Flags().BoolVar(&useLocalRAG, "use-local-rag", true, "consult the local vector store during research")
	cmd.Flags().BoolVar(&useWebSearch, "use-web-search", true, "consult live web search during research")
	return cmd
}

func runMission(ctx context.Context, question, outputDir string, useLocalRAG, useWebSearch bool) error {
	cfg := loadCLIConfig()
	resolver := newResolver()
	dispatcher := newDispatcher(resolver)
	log, _ := zap.NewProduction()
	defer log.Sync()

	db, err := gorm.Open(sqlite.Open(cfg.DatabaseURL), &gorm.Config{})
	if err != nil {
		return fmt.Errorf("open mission store: %w", err)
	}
	store, err := missionstore.New(db)
	if err != nil {
		return err
	}

	bus := eventbus.New(128)
	tasks := taskmanager.New(log)

	maxDepth, _ := resolver.GetInt("max_total_depth", nil, nil)
	validator := outline.New(maxDepth)

	var searcher searchpipeline.Searcher
	var fetcher searchpipeline.Fetcher
	if useWebSearch {
		searcher, fetcher = buildSearchTools(resolver)
	}
	_ = useLocalRAG // local vector-store retrieval is exposed to agents through the tool registry, not this CLI path

	maxSearchIterations, _ := resolver.GetInt("max_search_iterations", nil, nil)
	maxSearchResults, _ := resolver.GetInt("max_search_results", nil, nil)
	maxDecomposed, _ := resolver.GetInt("max_decomposed_queries", nil, nil)
	pipelineParams := searchpipeline.Params{MaxAttempts: maxSearchIterations, MaxSearchResults: maxSearchResults, MaxDocResults: maxSearchResults}

	planAdapter := llmagents.PlanAdapter{Dispatcher: dispatcher}
	yesNoAdapter := llmagents.YesNoAdapter{Dispatcher: dispatcher}
	maxPlanningContext, _ := resolver.GetInt("max_planning_context_chars", nil, nil)
	maxSuggestionsPerBatch, _ := resolver.GetInt("max_suggestions_per_batch", nil, nil)
	reflectionMgr := reflection.New(planAdapter, yesNoAdapter, maxPlanningContext, maxSuggestionsPerBatch)

	writerAdapter := llmagents.WriterAdapter{Dispatcher: dispatcher}
	synthAdapter := llmagents.SynthesizerAdapter{Dispatcher: dispatcher}
	reflectorAdapter := llmagents.ReflectorAdapter{Dispatcher: dispatcher}
	writingPasses, _ := resolver.GetInt("writing_passes", nil, nil)
	writingMgr := writing.New(writerAdapter, synthAdapter, reflectorAdapter, writingPasses)

	titleAdapter := llmagents.TitleAdapter{Dispatcher: dispatcher}

	mission := domain.NewMission(question)
	if err := store.Save(mission); err != nil {
		return fmt.Errorf("persist new mission: %w", err)
	}

	controller := missioncontroller.New(missioncontroller.Config{
		Store:              store,
		Tasks:              tasks,
		Bus:                bus,
		Validator:          validator,
		Plan:               planPhase(planAdapter),
		InitialExploration: explorationPhase(searcher, fetcher, dispatcher, pipelineParams, maxDecomposed),
		StructuredResearch: researchPhase(searcher, fetcher, dispatcher, pipelineParams),
		Replan:             replanPhase(reflectionMgr),
		NoteAssignment:     noteAssignmentPhase(reflectionMgr),
		Write:              writePhase(writingMgr),
		Finalize:           finalizePhase(titleAdapter, outputDir),
	})

	if err := controller.Run(ctx, mission.ID); err != nil {
		return err
	}

	printStats(mission.ID, dispatcher)
	return nil
}

func buildSearchTools(resolver *settings.Resolver) (searchpipeline.Searcher, searchpipeline.Fetcher) {
	provider, _ := resolver.GetString("web_search_provider", nil, nil)
	tavilyKey, _ := resolver.GetString("tavily_api_key", nil, nil)
	linkupKey, _ := resolver.GetString("linkup_api_key", nil, nil)
	searxngBase, _ := resolver.GetString("searxng_base_url", nil, nil)
	searchTool := tools.NewSearchTool(tools.WebSearchProvider(provider), tavilyKey, linkupKey, searxngBase, nil)
	fetchTool := tools.NewFetchTool()
	return llmagents.ToolSearcher{Tool: searchTool}, llmagents.ToolFetcher{Tool: fetchTool}
}

// planPhase drafts the initial outline from the mission's user request.
func planPhase(planner llmagents.PlanAdapter) missioncontroller.PhaseFunc {
	return func(ctx context.Context, m *domain.Mission) error {
		plan, err := planner.Plan(ctx, m.UserRequest)
		if err != nil {
			return fmt.Errorf("plan: %w", err)
		}
		m.Plan = plan
		return nil
	}
}

// explorationPhase runs a single broad search pass over the decomposed user
// request to seed the mission's scratchpad before structured, per-section
// research begins.
func explorationPhase(searcher searchpipeline.Searcher, fetcher searchpipeline.Fetcher, dispatcher *modeldispatch.Dispatcher, params searchpipeline.Params, maxDecomposed int) missioncontroller.PhaseFunc {
	return func(ctx context.Context, m *domain.Mission) error {
		if searcher == nil {
			return nil
		}
		relevance := llmagents.RelevanceAdapter{Dispatcher: dispatcher}
		quality := llmagents.QualityAdapter{Dispatcher: dispatcher}
		pipeline := searchpipeline.New(searchpipeline.ModeWeb, searcher, fetcher, relevance, quality, params)

		decomposed := searchpipeline.DecomposeFallback(m.UserRequest, maxDecomposed)
		contextText, sources, err := pipeline.Run(ctx, m.UserRequest, decomposed)
		if err != nil {
			return fmt.Errorf("initial exploration: %w", err)
		}

		m.Scratchpad = contextText
		for _, src := range sources {
			note := &domain.Note{
				NoteID:     src.RefID,
				Content:    src.Title,
				SourceType: src.Type,
				SourceID:   src.RefID,
			}
			m.Notes[note.NoteID] = note
		}
		return nil
	}
}

// researchPhase runs one focused search per research_based section and
// attributes the resulting notes to that section.
func researchPhase(searcher searchpipeline.Searcher, fetcher searchpipeline.Fetcher, dispatcher *modeldispatch.Dispatcher, params searchpipeline.Params) missioncontroller.PhaseFunc {
	return func(ctx context.Context, m *domain.Mission) error {
		if searcher == nil || m.Plan == nil {
			return nil
		}
		relevance := llmagents.RelevanceAdapter{Dispatcher: dispatcher}
		quality := llmagents.QualityAdapter{Dispatcher: dispatcher}
		pipeline := searchpipeline.New(searchpipeline.ModeWeb, searcher, fetcher, relevance, quality, params)

		var outErr error
		m.Plan.Walk(func(section *domain.ReportSection, _ int, _ *domain.ReportSection) {
			if outErr != nil || section.ResearchStrategy != domain.StrategyResearchBased {
				return
			}
			query := section.Title + ": " + section.Description
			contextText, sources, err := pipeline.Run(ctx, query, []string{query})
			if err != nil {
				outErr = fmt.Errorf("structured research for %s: %w", section.SectionID, err)
				return
			}
			for _, src := range sources {
				note := &domain.Note{
					NoteID:     src.RefID,
					Content:    contextText,
					SourceType: src.Type,
					SourceID:   src.RefID,
				}
				m.Notes[note.NoteID] = note
				section.AssociatedNoteIDs = append(section.AssociatedNoteIDs, note.NoteID)
			}
		})
		return outErr
	}
}

// replanPhase gives the reflection manager a chance to restructure the
// outline once structured research has populated the mission's notes.
// No section-level reflection content is generated yet in this build, so
// this call is an exercised but effectively no-op pass over the current
// outline; see the accompanying design notes for the scope decision.
func replanPhase(mgr *reflection.Manager) missioncontroller.PhaseFunc {
	return func(ctx context.Context, m *domain.Mission) error {
		if m.Plan == nil {
			return nil
		}
		revised, err := mgr.Apply(ctx, m.UserRequest, m.Plan, nil, m.Notes)
		if err != nil {
			return fmt.Errorf("replan: %w", err)
		}
		m.Plan = revised
		return nil
	}
}

// noteAssignmentPhase runs the reflection manager again so orphaned notes
// (those no section claimed during structured research) are redistributed
// to the outline before writing begins.
func noteAssignmentPhase(mgr *reflection.Manager) missioncontroller.PhaseFunc {
	return func(ctx context.Context, m *domain.Mission) error {
		if m.Plan == nil {
			return nil
		}
		revised, err := mgr.Apply(ctx, m.UserRequest, m.Plan, nil, m.Notes)
		if err != nil {
			return fmt.Errorf("note assignment: %w", err)
		}
		m.Plan = revised
		return nil
	}
}

// writePhase validates the outline and drives the writing manager across
// every section.
func writePhase(mgr *writing.Manager) missioncontroller.PhaseFunc {
	return func(ctx context.Context, m *domain.Mission) error {
		if m.Plan == nil {
			return merrors.New(merrors.OutlineInvalid, "mission has no outline to write from")
		}
		notesBySection := make(map[string][]*domain.Note)
		m.Plan.Walk(func(section *domain.ReportSection, _ int, _ *domain.ReportSection) {
			for _, id := range section.AssociatedNoteIDs {
				if n, ok := m.Notes[id]; ok {
					notesBySection[section.SectionID] = append(notesBySection[section.SectionID], n)
				}
			}
		})

		content, err := mgr.Run(ctx, m.Plan, notesBySection, m.Thoughts, m.Goals)
		if err != nil {
			return fmt.Errorf("write: %w", err)
		}
		m.ReportContent = content
		return nil
	}
}

// finalizePhase assembles the final cited artifact and writes it to disk.
func finalizePhase(titleGen report.TitleGenerator, outputDir string) missioncontroller.PhaseFunc {
	return func(ctx context.Context, m *domain.Mission) error {
		artifact, err := report.Generate(ctx, titleGen, m)
		if err != nil {
			return fmt.Errorf("finalize: %w", err)
		}

		if err := os.MkdirAll(outputDir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
		base := sanitizeFilename(artifact.Title)
		path := filepath.Join(outputDir, base+".md")
		if err := os.WriteFile(path, []byte(artifact.Markdown()), 0o644); err != nil {
			return fmt.Errorf("write report: %w", err)
		}

		sidecar, err := report.BuildSidecar(m, artifact).Marshal()
		if err != nil {
			return fmt.Errorf("marshal sidecar: %w", err)
		}
		sidecarPath := filepath.Join(outputDir, base+".meta.yaml")
		if err := os.WriteFile(sidecarPath, sidecar, 0o644); err != nil {
			return fmt.Errorf("write sidecar: %w", err)
		}

		fmt.Printf("wrote %s\n", path)
		return nil
	}
}

func sanitizeFilename(title string) string {
	title = strings.ToLower(strings.TrimSpace(title))
	var b strings.Builder
	for _, r := range title {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			b.WriteRune('-')
		}
	}
	out := strings.Trim(b.String(), "-")
	if out == "" {
		return "report"
	}
	if len(out) > 80 {
		out = out[:80]
	}
	return out
}

func printStats(missionID string, dispatcher *modeldispatch.Dispatcher) {
	tracker := dispatcher.CostTracker()
	var totalCost float64
	var totalPrompt, totalCompletion int
	for _, t := range tracker.Snapshot() {
		totalCost += t.Cost
		totalPrompt += t.PromptTokens
		totalCompletion += t.CompletionTokens
	}
	fmt.Printf("\nmission %s completed: cost=$%.6f prompt_tokens=%d completion_tokens=%d\n",
		missionID, totalCost, totalPrompt, totalCompletion)
}
