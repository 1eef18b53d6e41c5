package cli

import (
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"

	"github.com/malbeclabs/pricefeed/pricefeed/internal/publisher"
	"github.com/olekukonko/tablewriter"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

func (a *app) publishCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Publish prices to many feeds concurrently",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := cmd.Flags().GetString("file")
			if err != nil {
				return fmt.Errorf("failed to get file flag: %w", err)
			}
			concurrency, err := cmd.Flags().GetInt("concurrency")
			if err != nil {
				return fmt.Errorf("failed to get concurrency flag: %w", err)
			}
			createMissing, err := cmd.Flags().GetBool("create-missing")
			if err != nil {
				return fmt.Errorf("failed to get create-missing flag: %w", err)
			}
			interval, err := cmd.Flags().GetDuration("interval")
			if err != nil {
				return fmt.Errorf("failed to get interval flag: %w", err)
			}
			metricsAddr, err := cmd.Flags().GetString("metrics-addr")
			if err != nil {
				return fmt.Errorf("failed to get metrics-addr flag: %w", err)
			}

			ctx := cmd.Context()
			log := a.logger(cmd.ErrOrStderr())

			feeds, err := publisher.LoadFeeds(file)
			if err != nil {
				return err
			}

			client, err := a.newClient(log, true)
			if err != nil {
				return err
			}

			if metricsAddr != "" {
				listener, err := net.Listen("tcp", metricsAddr)
				if err != nil {
					return fmt.Errorf("failed to start prometheus metrics server listener: %w", err)
				}
				mux := http.NewServeMux()
				mux.Handle("/metrics", promhttp.Handler())
				server := &http.Server{Handler: mux}
				go func() {
					log.Info("Prometheus metrics server listening", "address", listener.Addr().String())
					if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
						log.Error("Failed to serve prometheus metrics", "error", err)
					}
				}()
				defer server.Close()
			}

			p, err := publisher.New(&publisher.Config{
				Logger:        log,
				Client:        client,
				Feeds:         feeds,
				Concurrency:   concurrency,
				CreateMissing: createMissing,
			})
			if err != nil {
				return fmt.Errorf("failed to create publisher: %w", err)
			}
			defer p.Close()

			if interval > 0 {
				return p.Run(ctx, interval)
			}

			results, err := p.Publish(ctx)
			if err != nil {
				return err
			}
			printPublishResults(cmd.OutOrStdout(), results)

			for _, result := range results {
				if result.Err != nil {
					return errors.New("one or more feeds failed to publish")
				}
			}
			return nil
		},
	}

	cmd.Flags().StringP("file", "f", "", "Path to the YAML feed file")
	cmd.Flags().Int("concurrency", 8, "Number of feeds published in parallel")
	cmd.Flags().Bool("create-missing", false, "Create missing price accounts before publishing")
	cmd.Flags().Duration("interval", 0, "Publish repeatedly at the given interval instead of once")
	cmd.Flags().String("metrics-addr", "", "Address to serve prometheus metrics on")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func printPublishResults(w io.Writer, results []publisher.Result) {
	table := tablewriter.NewWriter(w)
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_CENTER)
	table.SetAutoFormatHeaders(false)
	table.SetBorder(true)
	table.SetHeader([]string{"Feed", "Name", "Price", "Created", "Result"})

	for _, result := range results {
		outcome := result.Signature.String()
		if result.Err != nil {
			outcome = result.Err.Error()
		}
		table.Append([]string{
			fmt.Sprintf("%d", result.Feed.ID),
			result.Feed.Name,
			formatPrice(result.Feed.Price),
			fmt.Sprintf("%t", result.Created),
			outcome,
		})
	}
	table.Render()
}
