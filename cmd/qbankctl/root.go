package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/stemsi/qbank-backend/internal/config"
	"github.com/stemsi/qbank-backend/internal/logger"
	"github.com/stemsi/qbank-backend/internal/model"
	"github.com/stemsi/qbank-backend/internal/service"
)

// globalOptions are flags shared by every subcommand.
type globalOptions struct {
	questionType string
	charset      string
	logLevel     string
}

func newRootCommand() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:           "qbankctl",
		Short:         "Question bank document tools",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	root.PersistentFlags().StringVarP(&opts.questionType, "type", "t", "", "force every question to this type (label or slug, e.g. 简答题 or short_answer)")
	root.PersistentFlags().StringVar(&opts.charset, "charset", "utf-8", "document charset: utf-8 or gb18030")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level written to stderr")

	root.AddCommand(newExtractCommand(opts))
	root.AddCommand(newImportCommand(opts))
	return root
}

// importOptions converts the shared flags into service options.
func (o *globalOptions) importOptions() (service.ImportOptions, error) {
	opts := service.ImportOptions{Charset: o.charset}
	if o.questionType != "" {
		t, ok := model.ParseQuestionType(o.questionType)
		if !ok {
			return opts, fmt.Errorf("unknown question type %q", o.questionType)
		}
		opts.Override = t
	}
	if err := service.CheckCharset(o.charset); err != nil {
		return opts, err
	}
	return opts, nil
}

func (o *globalOptions) logger() zerolog.Logger {
	return logger.New(os.Stderr, o.logLevel, "pretty")
}

// readDocument reads a document and enforces the server's upload limit.
func readDocument(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	limit := config.Load().MaxUploadBytes
	if info.Size() > limit {
		return nil, fmt.Errorf("%w: %d bytes (max: %d)", service.ErrFileTooLarge, info.Size(), limit)
	}
	return os.ReadFile(path)
}
