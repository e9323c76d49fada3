package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/stemsi/qbank-backend/internal/config"
	"github.com/stemsi/qbank-backend/internal/database"
	"github.com/stemsi/qbank-backend/internal/model"
	"github.com/stemsi/qbank-backend/internal/repository"
	"github.com/stemsi/qbank-backend/internal/service"
)

type importFlags struct {
	library     string
	sqlitePath  string
	databaseURL string
}

func newImportCommand(opts *globalOptions) *cobra.Command {
	flags := &importFlags{}

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Extract questions from a document and save them into a library",
		Long: `Extract questions from a document and save the ones not yet present in
the library. Questions go to PostgreSQL (--database-url, defaulting to
DATABASE_URL) or, with --sqlite, to a local SQLite file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			libraryID, err := uuid.Parse(flags.library)
			if err != nil {
				return fmt.Errorf("invalid --library: %w", err)
			}
			importOpts, err := opts.importOptions()
			if err != nil {
				return err
			}
			data, err := readDocument(args[0])
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			store, closeStore, err := openStore(ctx, flags, libraryID, opts)
			if err != nil {
				return err
			}
			defer closeStore()

			importer := service.NewImportService(store, int64(len(data)), opts.logger())
			result := importer.Import(ctx, data, libraryID, importOpts)
			printResult(cmd, result)
			if result.Status == model.ImportStatusFailed {
				return errors.New("import failed: " + result.Reason)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&flags.library, "library", "l", "", "target library id")
	cmd.Flags().StringVar(&flags.sqlitePath, "sqlite", "", "save into this SQLite file instead of PostgreSQL")
	cmd.Flags().StringVar(&flags.databaseURL, "database-url", "", "PostgreSQL URL (default: DATABASE_URL)")
	_ = cmd.MarkFlagRequired("library")
	cmd.MarkFlagsMutuallyExclusive("sqlite", "database-url")
	return cmd
}

// openStore picks the question store the flags ask for.
func openStore(ctx context.Context, flags *importFlags, libraryID uuid.UUID, opts *globalOptions) (service.QuestionStore, func(), error) {
	if flags.sqlitePath != "" {
		store, err := repository.OpenSQLite(ctx, flags.sqlitePath)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil
	}

	url := flags.databaseURL
	if url == "" {
		url = config.Load().DatabaseURL
	}
	pool, err := database.NewPostgresPool(ctx, url, 2, opts.logger())
	if err != nil {
		return nil, nil, err
	}

	ok, err := repository.NewLibraryRepository(pool).Exists(ctx, libraryID)
	if err != nil {
		pool.Close()
		return nil, nil, err
	}
	if !ok {
		pool.Close()
		return nil, nil, fmt.Errorf("library %s does not exist", libraryID)
	}
	return repository.NewQuestionRepository(pool), pool.Close, nil
}

func printResult(cmd *cobra.Command, r model.ImportResult) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "status: %s\n", r.Status)
	fmt.Fprintf(out, "found:  %d\n", r.TotalFound)
	fmt.Fprintf(out, "saved:  %d\n", r.SavedCount)
	if r.Reason != "" {
		fmt.Fprintf(out, "reason: %s\n", r.Reason)
	}
}
