// File: cmd/price.go
package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/draftbay/lister-cli/internal/browser"
	"github.com/draftbay/lister-cli/internal/observability"
	"github.com/draftbay/lister-cli/internal/pricing"
	"github.com/draftbay/lister-cli/internal/pricing/sources"
)

// newPriceCmd creates the `price` command: aggregation only, no listing flow.
func newPriceCmd() *cobra.Command {
	priceCmd := &cobra.Command{
		Use:   "price [product name...]",
		Short: "Estimates the fair market price for a product across marketplaces",
		Args:  cobra.MinimumNArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return viper.BindPFlags(cmd.Flags())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := observability.GetLogger()
			product := strings.Join(args, " ")

			srcs := []pricing.Source{
				sources.NewEbay(cfg.Pricing, cfg.Browser.UserAgent, logger),
				sources.NewAmazon(cfg.Pricing, cfg.Browser.UserAgent, logger),
			}

			// The browser-backed source gets its own scoped session here;
			// there is no listing flow to share one with.
			withBrowser, _ := cmd.Flags().GetBool("browser")
			if withBrowser {
				sess, err := browser.NewSession(ctx, cfg, logger)
				if err != nil {
					return fmt.Errorf("cannot launch browser for the tcgplayer source: %w", err)
				}
				defer sess.Close()
				srcs = append(srcs, sources.NewTCGPlayer(cfg.Pricing, sess, logger))
			}

			aggregator := pricing.NewAggregator(logger, srcs...)
			estimate, err := aggregator.Aggregate(ctx, product)
			if errors.Is(err, pricing.ErrUnavailable) {
				fmt.Printf("No market price available for %q.\n", product)
				return nil
			}
			if err != nil {
				return err
			}

			logger.Info("Price resolved.",
				zap.String("product", product),
				zap.Float64("price", estimate.Value),
				zap.Strings("sources", estimate.Sources))
			fmt.Printf("Estimated market price for %q: $%.2f (from %d source(s): %s)\n",
				product, estimate.Value, estimate.SourceCount, strings.Join(estimate.Sources, ", "))
			return nil
		},
	}

	priceCmd.Flags().Bool("browser", false, "Also query the browser-backed source (launches Chrome)")
	return priceCmd
}
