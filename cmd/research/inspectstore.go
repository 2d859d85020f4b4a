package main

import (
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"maestro/internal/vectorstore"
)

func newInspectStoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect-store",
		Short: "Check vector store connectivity and report chunk counts.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadCLIConfig()
			if cfg.VectorDSN == "" {
				return fmt.Errorf("MAESTRO_VECTOR_DSN is not set")
			}

			ctx := cmd.Context()
			pool, err := pgxpool.New(ctx, cfg.VectorDSN)
			if err != nil {
				return fmt.Errorf("connect to vector store: %w", err)
			}
			defer pool.Close()

			store := vectorstore.New(pool)
			if err := store.HealthCheck(ctx); err != nil {
				return err
			}

			var count int
			row := pool.QueryRow(ctx, "SELECT count(*) FROM document_chunks")
			if err := row.Scan(&count); err != nil {
				return fmt.Errorf("count document_chunks: %w", err)
			}

			fmt.Printf("vector store healthy: %d chunks indexed\n", count)
			return nil
		},
	}
}
