package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/sisemasexp/portal/internal/app"
	"github.com/sisemasexp/portal/internal/assistant"
	"github.com/sisemasexp/portal/internal/content"
	"github.com/sisemasexp/portal/internal/genai"
	"github.com/sisemasexp/portal/internal/logger"
	"github.com/sisemasexp/portal/internal/storage"
)

func newAskCmd(e *env) *cobra.Command {
	var (
		offline bool
		verbose bool
	)
	cmd := &cobra.Command{
		Use:   "ask MESSAGE...",
		Short: "Send a message to the assistant",
		Long: "Answer MESSAGE the way /api/chat does. Unmatched messages reach the " +
			"configured LLM providers unless --offline is set.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			catalog, err := content.Default()
			if err != nil {
				return err
			}

			return e.withStore(cmd, func(db *storage.DB) error {
				svcCfg := assistant.ServiceConfig{
					Directory: db,
					Mission:   catalog.Mission,
					Vision:    catalog.Vision,
					Clock:     assistant.NewClock(catalog.Cities),
					Logger:    logger.New("error"),
				}

				if !offline {
					if cfg, err := e.loadConfig(); err == nil && cfg.LLMActive() {
						augmenter, err := genai.CreateAugmenter(ctx, app.NewLLMConfig(cfg), nil)
						if err != nil {
							return fmt.Errorf("augmenter: %w", err)
						}
						if augmenter != nil {
							defer augmenter.Close()
							svcCfg.Augmenter = augmenter
							svcCfg.LLMTimeout = cfg.LLM.Timeout
						}
					}
				}

				start := time.Now()
				resp := assistant.NewService(svcCfg).Respond(ctx, strings.Join(args, " "))
				fmt.Fprintln(e.out, resp.Reply)
				if verbose {
					fmt.Fprintf(e.out, "\nintent=%s source=%s took=%s\n",
						resp.Intent, resp.Source, time.Since(start).Round(time.Millisecond))
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&offline, "offline", false, "Never call LLM providers")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Print the matched intent and reply source")
	return cmd
}
