package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/zoobzio/verdict"
	"github.com/zoobzio/verdict/providers/azure"
	"github.com/zoobzio/verdict/report"
	"github.com/zoobzio/verdict/store"
)

type runOptions struct {
	prompts     string
	out         string
	format      string
	concurrency int
}

func (a *app) newRunCmd() *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Evaluate a batch of prompts",
		Long: `Evaluate a batch of prompts against the configured deployment.

Prompts are read one per line from --prompts ("-" for stdin). Without --prompts
the built-in sample set is used. Results are printed as a table; with --out they
are also saved in the chosen format.`,
		Example: `  verdict run
  verdict run --prompts prompts.txt --out results.db
  cat prompts.txt | verdict run --prompts - --out results.csv --concurrency 5`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.prompts, "prompts", "p", "", "Prompt file, one per line (\"-\" for stdin)")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "Save results to this path")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "Output format: sqlite, jsonl, csv (default from --out extension)")
	cmd.Flags().IntVar(&opts.concurrency, "concurrency", 0, "Requests in flight at once (default from config)")

	return cmd
}

func (a *app) run(cmd *cobra.Command, opts runOptions) error {
	settings, err := LoadSettings(a.configPath, a.getenv)
	if err != nil {
		return explain(err)
	}
	if cmd.Flags().Changed("concurrency") {
		settings.Concurrency = opts.concurrency
	}
	if opts.out != "" {
		settings.Output.Path = opts.out
	}
	if opts.format != "" {
		settings.Output.Format = opts.format
	}

	var format store.Format
	if settings.Output.Path != "" {
		format, err = outputFormat(settings.Output)
		if err != nil {
			return err
		}
	}

	texts, err := loadPrompts(opts.prompts, cmd.InOrStdin())
	if err != nil {
		return err
	}

	pipeline := verdict.NewPipeline(settings.Pipeline(), azure.New(settings.Azure()))
	batch, err := pipeline.Run(cmd.Context(), texts)
	if err != nil {
		return explain(err)
	}

	a.logger.Info("Batch evaluated",
		zap.String("batch_id", batch.ID),
		zap.Int("prompts", len(batch.Records)),
		zap.Duration("elapsed", batch.Finished.Sub(batch.Started)))

	if err := report.Write(cmd.OutOrStdout(), batch); err != nil {
		return fmt.Errorf("failed to print report: %w", err)
	}

	if settings.Output.Path == "" {
		return nil
	}
	if err := save(cmd, batch, format, settings.Output.Path); err != nil {
		return err
	}
	a.logger.Info("Results saved",
		zap.String("path", settings.Output.Path),
		zap.String("format", string(format)))
	fmt.Fprintf(cmd.OutOrStdout(), "\nSaved %d results to %s\n", len(batch.Records), settings.Output.Path)
	return nil
}

func save(cmd *cobra.Command, batch *verdict.Batch, format store.Format, path string) error {
	w, err := store.Open(format, path)
	if err != nil {
		return err
	}
	if err := w.Write(cmd.Context(), batch); err != nil {
		w.Close()
		return fmt.Errorf("failed to save results: %w", err)
	}
	return w.Close()
}

// outputFormat resolves the configured format, falling back to the path extension.
func outputFormat(out OutputConfig) (store.Format, error) {
	if out.Format != "" {
		return store.ParseFormat(out.Format)
	}
	switch strings.ToLower(filepath.Ext(out.Path)) {
	case ".db", ".sqlite", ".sqlite3":
		return store.FormatSQLite, nil
	case ".csv":
		return store.FormatCSV, nil
	default:
		return store.FormatJSONL, nil
	}
}

// explain adds a fix hint to configuration errors.
func explain(err error) error {
	var cfgErr *verdict.ConfigError
	if errors.As(err, &cfgErr) {
		return fmt.Errorf("%w (%s)", err, configHint(cfgErr.Field))
	}
	return err
}

func (a *app) newClassifyCmd() *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "classify [text...]",
		Short: "Print the outcome code of each text",
		Long: `Print the outcome code keyword classification assigns to each argument, or to
each line of stdin when no arguments are given.

With --raw each input is treated as a reply body and decoded the way run does,
so a JSON object carrying result_code keeps its reported code.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			texts := args
			if len(texts) == 0 {
				var err error
				texts, err = readPrompts(cmd.InOrStdin())
				if err != nil {
					return err
				}
			}

			for _, text := range texts {
				if raw {
					parsed := verdict.Parse(text)
					fmt.Fprintf(cmd.OutOrStdout(), "%d (%s) [%s]\n", parsed.Code, verdict.Label(parsed.Code), parsed.Decode)
					continue
				}
				code := verdict.Classify(text)
				fmt.Fprintf(cmd.OutOrStdout(), "%d (%s)\n", code, verdict.Label(code))
			}
			a.logger.Debug("Classified texts", zap.Int("count", len(texts)), zap.Bool("raw", raw))
			return nil
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "Decode inputs as reply bodies")
	return cmd
}
