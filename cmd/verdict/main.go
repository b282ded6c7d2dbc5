// Command verdict sends a batch of prompts to an Azure OpenAI deployment and grades each reply.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// app holds state shared by every command.
type app struct {
	configPath string
	verbose    bool
	getenv     func(string) string

	logger     *zap.Logger
	stopEvents func()
}

func newApp(getenv func(string) string) *app {
	return &app{getenv: getenv}
}

// rootCmd builds the command tree. Call close after it executes.
func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "verdict",
		Short: "Grade model replies to a batch of prompts",
		Long: `verdict sends each prompt to a chat-completion deployment, asks for a structured
JSON reply, and assigns every reply an outcome code:

    0    refusal or empty reply
    200  normal response
    300  tips or advice
    391  warning or caution

Results are printed as a table and can be saved as sqlite, jsonl, or csv.`,
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			if a.logger == nil {
				config := zap.NewProductionConfig()
				if a.verbose {
					config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
				}
				logger, err := config.Build()
				if err != nil {
					return fmt.Errorf("failed to initialize logger: %w", err)
				}
				a.logger = logger
			}
			a.stopEvents = bridgeEvents(a.logger)
			return nil
		},
	}

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "verdict.yaml", "Config file (missing file uses defaults)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable verbose logging")

	root.AddCommand(a.newRunCmd())
	root.AddCommand(a.newClassifyCmd())

	return root
}

// close detaches the event bridge and flushes the logger.
func (a *app) close() {
	if a.stopEvents != nil {
		a.stopEvents()
		a.stopEvents = nil
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := newApp(os.Getenv)
	err := a.rootCmd().ExecuteContext(ctx)
	a.close()
	if err != nil {
		stop()
		os.Exit(1)
	}
}
