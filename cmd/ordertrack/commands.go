package main

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/antonminaichev/mediexpress/internal/catalog"
	"github.com/antonminaichev/mediexpress/internal/order"
	"github.com/antonminaichev/mediexpress/internal/pricing"
	"github.com/antonminaichev/mediexpress/internal/storage/file"
	"github.com/antonminaichev/mediexpress/internal/tracking"
	ordertypes "github.com/antonminaichev/mediexpress/internal/types/order"
)

type options struct {
	dir        string
	cadence    time.Duration
	rate       float64
	catalogAPI string
}

func (o *options) store() (*order.Store, error) {
	blobs, err := file.New(o.dir)
	if err != nil {
		return nil, err
	}
	return order.NewStore(blobs, order.WithCadence(o.cadence)), nil
}

func (o *options) catalog() *catalog.Service {
	var remote catalog.Remote
	if o.catalogAPI != "" {
		remote = catalog.NewHTTPClient(&http.Client{Timeout: 10 * time.Second}, o.catalogAPI)
	}
	return catalog.NewService(remote, catalog.Fallback, nil)
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "ordertrack",
		Short:         "Place and track MediExpress orders",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&opts.dir, "dir", "./data", "directory holding the order store")
	root.PersistentFlags().DurationVar(&opts.cadence, "cadence", order.DefaultCadence, "time an order spends in each stage")
	root.PersistentFlags().Float64Var(&opts.rate, "rate", 83.5, "USD to INR conversion rate")
	root.PersistentFlags().StringVar(&opts.catalogAPI, "catalog-api", "", "remote catalog base URL")

	root.AddCommand(
		newPlaceCmd(opts),
		newStatusCmd(opts),
		newTrackCmd(opts),
		newProductsCmd(opts),
	)
	return root
}

// parseLine reads "productId" or "productId:qty".
func parseLine(arg string) (string, int, error) {
	id, qtyStr, found := strings.Cut(arg, ":")
	if !found {
		return id, 1, nil
	}
	qty, err := strconv.Atoi(qtyStr)
	if err != nil || qty < 1 {
		return "", 0, fmt.Errorf("invalid quantity in %q", arg)
	}
	return id, qty, nil
}

func newPlaceCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "place PRODUCT_ID[:QTY]...",
		Short: "Place an order for one or more products",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			products := opts.catalog()
			items := make([]ordertypes.Item, 0, len(args))
			for _, arg := range args {
				id, qty, err := parseLine(arg)
				if err != nil {
					return err
				}
				p, err := products.Get(ctx, id)
				if err != nil {
					return fmt.Errorf("%s: %w", id, err)
				}
				items = append(items, ordertypes.Item{Product: *p, Qty: qty})
			}

			store, err := opts.store()
			if err != nil {
				return err
			}
			o := store.CreateOrder(ctx, items, pricing.Totals(items, decimal.NewFromFloat(opts.rate)))
			fmt.Fprintln(cmd.OutOrStdout(), o.OrderID)
			fmt.Fprintf(cmd.OutOrStdout(), "total %s %s (delivery %s)\n", o.Totals.Total.StringFixed(2), o.Totals.Currency, o.Totals.Delivery.StringFixed(2))
			return nil
		},
	}
}

func newStatusCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "status ORDER_ID",
		Short: "Show an order's current stage and history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := opts.store()
			if err != nil {
				return err
			}
			o, err := store.GetOrderStatus(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printOrder(cmd.OutOrStdout(), o)
			return nil
		},
	}
}

func newTrackCmd(opts *options) *cobra.Command {
	var interval time.Duration
	cmd := &cobra.Command{
		Use:   "track ORDER_ID",
		Short: "Follow an order until it is delivered",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := opts.store()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			delivered := make(chan struct{})
			p := tracking.NewPoller(store, func(s tracking.Snapshot) {
				if !s.Found {
					fmt.Fprintf(out, "%s  %s not found\n", s.At.Format(time.TimeOnly), s.OrderID)
					return
				}
				fmt.Fprintf(out, "%s  %s %s\n", s.At.Format(time.TimeOnly), s.OrderID, s.Order.Status)
				if s.Order.Status.IsTerminal() {
					close(delivered)
				}
			})
			defer p.Stop()

			p.Start(args[0], interval)
			select {
			case <-delivered:
			case <-cmd.Context().Done():
			}
			return nil
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", tracking.DefaultInterval, "poll interval")
	return cmd
}

func newProductsCmd(opts *options) *cobra.Command {
	var q catalog.Query
	cmd := &cobra.Command{
		Use:   "products",
		Short: "List catalog products",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			page, err := opts.catalog().List(cmd.Context(), q)
			if err != nil {
				return err
			}
			rate := decimal.NewFromFloat(opts.rate)
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tPRICE (INR)\tAVAILABILITY")
			for _, p := range page.Items {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", p.ID, p.Name, pricing.PrimaryINR(p, rate).StringFixed(2), p.Availability)
			}
			tw.Flush()
			fmt.Fprintf(cmd.OutOrStdout(), "page %d/%d, %d total\n", page.Page, page.TotalPages, page.Total)
			if page.Warning != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "using built-in catalog: %s\n", page.Warning)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&q.Q, "q", "", "search text")
	cmd.Flags().StringVar(&q.Category, "category", "", "category filter")
	cmd.Flags().IntVar(&q.Page, "page", 1, "page number")
	cmd.Flags().IntVar(&q.Limit, "limit", catalog.DefaultLimit, "page size")
	return cmd
}

func printOrder(w io.Writer, o *ordertypes.Order) {
	fmt.Fprintf(w, "%s  %s\n", o.OrderID, o.Status)
	for _, h := range o.History {
		fmt.Fprintf(w, "  %-17s %s\n", h.Status, h.At.Local().Format(time.DateTime))
	}
}
