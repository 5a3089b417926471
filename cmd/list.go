// File: cmd/list.go
package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/draftbay/lister-cli/internal/browser"
	"github.com/draftbay/lister-cli/internal/config"
	"github.com/draftbay/lister-cli/internal/flow"
	"github.com/draftbay/lister-cli/internal/items"
	"github.com/draftbay/lister-cli/internal/listing"
	"github.com/draftbay/lister-cli/internal/observability"
	"github.com/draftbay/lister-cli/internal/pricing"
	"github.com/draftbay/lister-cli/internal/pricing/sources"
)

// newListCmd creates the `list` command: the full pipeline from a folder of
// photos to staged draft listings.
func newListCmd() *cobra.Command {
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "Stages a draft listing for every photo in the image folder",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if err := viper.BindPFlag("items.image_path", cmd.Flags().Lookup("images")); err != nil {
				return err
			}
			if err := viper.BindPFlag("browser.headless", cmd.Flags().Lookup("headless")); err != nil {
				return err
			}
			return viper.BindPFlag("listing.api_drafts", cmd.Flags().Lookup("api-drafts"))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			// Flags were bound in PreRunE; re-unmarshal so they override the
			// file and environment with the right precedence.
			if err := viper.Unmarshal(cfg); err != nil {
				return fmt.Errorf("failed to apply flag overrides: %w", err)
			}
			if err := cfg.ValidateForListing(); err != nil {
				return err
			}

			runID := uuid.New().String()
			logger := observability.GetLogger().With(zap.String("run_id", runID))

			tasks, err := items.Discover(cfg.Items.ImagePath)
			if err != nil {
				return err
			}
			if len(tasks) == 0 {
				logger.Info("No image files found; nothing to list.",
					zap.String("folder", cfg.Items.ImagePath))
				return nil
			}
			logger.Info("Discovered items.", zap.Int("count", len(tasks)))

			// Browser launch failure is fatal to the whole run.
			sess, err := browser.NewSession(ctx, cfg, logger)
			if err != nil {
				return fmt.Errorf("cannot start the automation session: %w", err)
			}

			aggregator := pricing.NewAggregator(logger,
				sources.NewEbay(cfg.Pricing, cfg.Browser.UserAgent, logger),
				sources.NewAmazon(cfg.Pricing, cfg.Browser.UserAgent, logger),
				sources.NewTCGPlayer(cfg.Pricing, sess, logger),
			)

			machine := flow.New(cfg, sess, aggregator, items.FilenameClassifier{}, logger)

			// Any line on stdin acknowledges a pending challenge. The machine
			// itself only knows about Resume; the console is just one surface.
			go watchOperator(ctx, machine, os.Stdin)

			// Run owns the session from here: it is released on every exit
			// path before any fatal error surfaces.
			results, runErr := machine.Run(ctx, tasks)

			printReport(cmd.OutOrStdout(), results)

			if cfg.Listing.APIDrafts {
				createAPIDrafts(ctx, cfg, results, logger)
			}

			if runErr != nil {
				return fmt.Errorf("listing run %s failed: %w", runID, runErr)
			}
			return nil
		},
	}

	listCmd.Flags().StringP("images", "i", "", "Folder of item photos (.jpg/.png). (Overrides config/env)")
	listCmd.Flags().Bool("headless", false, "Run the browser headless. (Overrides config/env)")
	listCmd.Flags().Bool("api-drafts", false, "Also create API drafts for priced items. (Overrides config/env)")
	return listCmd
}

// watchOperator forwards operator keypresses to the flow's resume signal.
func watchOperator(ctx context.Context, machine *flow.Flow, r io.Reader) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		if machine.State() == flow.StateCaptchaPending {
			machine.Resume()
		}
	}
}

// printReport writes the per-item outcome table. Every discovered item has a
// line, successful or not.
func printReport(w io.Writer, results []flow.ItemResult) {
	if len(results) == 0 {
		return
	}
	staged := 0
	for _, r := range results {
		if r.Succeeded() {
			staged++
		}
	}
	fmt.Fprintf(w, "\nRun complete: %d/%d items staged.\n", staged, len(results))
	for _, r := range results {
		price := "price unavailable"
		if r.PriceKnown {
			price = fmt.Sprintf("price $%.2f from %d source(s)", r.Price.Value, r.Price.SourceCount)
		}
		if r.Succeeded() {
			fmt.Fprintf(w, "  ok    %-30s %s\n", r.Item.ProductName, price)
		} else {
			fmt.Fprintf(w, "  fail  %-30s %s; failed at %s: %v\n", r.Item.ProductName, price, r.FailedAt, r.Err)
		}
	}
}

// createAPIDrafts pushes priced, staged items through the listing API.
// API failures are per-item; they never abort the command.
func createAPIDrafts(ctx context.Context, c *config.Config, results []flow.ItemResult, logger *zap.Logger) {
	client := listing.NewHTTPClient(c.Listing, logger)
	for _, r := range results {
		if !r.Succeeded() || !r.PriceKnown {
			continue
		}
		draft := listing.Draft{
			Title:       r.Item.ProductName,
			Description: fmt.Sprintf("This is a draft listing for a %s.", r.Item.ProductName),
			StartPrice:  r.Price.Value,
			Currency:    "USD",
			Category:    c.Listing.Category,
			ConditionID: c.Listing.ConditionID,
			ImagePaths:  []string{r.Item.ImagePath},
		}
		id, err := client.CreateDraft(ctx, draft)
		if err != nil {
			logger.Warn("API draft creation failed.",
				zap.String("product", r.Item.ProductName),
				zap.Error(err))
			continue
		}
		logger.Info("API draft created.",
			zap.String("product", r.Item.ProductName),
			zap.String("listing_id", id))
	}
}
