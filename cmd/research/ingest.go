package main

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"maestro/internal/tools"
)

func newIngestCmd() *cobra.Command {
	var groupID string

	cmd := &cobra.Command{
		Use:   "ingest <path>",
		Short: "Chunk a document and register it in the vector store for later embedding.",
		Long: "Splits a document into paragraph chunks and writes them to document_chunks " +
			"with a null embedding; embedding computation and reranking are owned by the " +
			"external ingestion pipeline this CLI only registers chunks against.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadCLIConfig()
			if cfg.VectorDSN == "" {
				return fmt.Errorf("MAESTRO_VECTOR_DSN is not set")
			}

			reader := tools.NewFileReaderTool()
			text, err := reader.Execute(cmd.Context(), map[string]interface{}{"path": args[0]})
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}

			chunks := chunkByParagraph(text)
			if len(chunks) == 0 {
				return fmt.Errorf("%s produced no chunks", args[0])
			}

			pool, err := pgxpool.New(cmd.Context(), cfg.VectorDSN)
			if err != nil {
				return fmt.Errorf("connect to vector store: %w", err)
			}
			defer pool.Close()

			docID := uuid.New().String()
			for i, chunk := range chunks {
				_, err := pool.Exec(cmd.Context(),
					`INSERT INTO document_chunks (doc_id, chunk_id, chunk_index, chunk_text, chunk_metadata) VALUES ($1, $2, $3, $4, $5)`,
					docID, uuid.New().String(), i, chunk, map[string]any{"source_path": args[0], "group_id": groupID})
				if err != nil {
					return fmt.Errorf("insert chunk %d: %w", i, err)
				}
			}

			fmt.Printf("ingested %s as doc_id=%s (%d chunks)\n", args[0], docID, len(chunks))
			return nil
		},
	}

	cmd.Flags().StringVar(&groupID, "group-id", "", "optional document group to associate this ingestion with")
	return cmd
}

// chunkByParagraph splits text on blank lines, matching the simplest
// chunking strategy named in spec §6 for CLI-driven ingestion.
func chunkByParagraph(text string) []string {
	var out []string
	for _, p := range strings.Split(text, "\n\n") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
