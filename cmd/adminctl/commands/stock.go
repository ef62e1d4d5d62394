package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/imrishuroy/go-shop-admin/cmd/adminctl/output"
	"github.com/imrishuroy/go-shop-admin/internal/catalog"
	"github.com/imrishuroy/go-shop-admin/internal/orders"
)

var (
	syncOrderID    string
	inventoryLevel string
	movementsID    string
)

// syncStockCmd reapplies the stock decrement of a paid order. Lines that were
// already applied are skipped by the ledger.
var syncStockCmd = &cobra.Command{
	Use:   "sync-stock",
	Short: "Reapply the stock decrement of a paid order",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := loadApp(ctx)
		if err != nil {
			return err
		}
		o, err := a.Orders.Get(ctx, syncOrderID)
		if err != nil {
			return err
		}
		if o.PaymentStatus != orders.PaymentPaid {
			return fmt.Errorf("order %s is not paid (payment_status=%s)", o.OrderNumber, o.PaymentStatus)
		}

		output.Title(fmt.Sprintf("Order %s", o.OrderNumber))
		for _, it := range o.Items {
			output.Field(it.ProductName, fmt.Sprintf("x%d", it.Quantity))
		}
		fmt.Println()

		if err := a.Reconciler.ApplyPaidOrder(ctx, o); err != nil {
			return err
		}
		output.Success("stock synced for %d line(s)", len(o.Items))
		return nil
	},
}

var inventoryCmd = &cobra.Command{
	Use:   "inventory",
	Short: "Show low and out-of-stock products",
	RunE: func(cmd *cobra.Command, args []string) error {
		level, ok := catalog.ParseStockLevel(inventoryLevel)
		if !ok {
			return fmt.Errorf("unknown level %q", inventoryLevel)
		}
		ctx := cmd.Context()
		a, err := loadApp(ctx)
		if err != nil {
			return err
		}
		report, err := a.Catalog.Inventory(ctx, catalog.InventoryQuery{Level: level})
		if err != nil {
			return err
		}

		output.Title("Inventory")
		output.Field("Products", report.TotalProducts)
		output.Field(fmt.Sprintf("Low stock (<= %d)", report.LowStockThreshold), report.LowStock)
		output.Field("Out of stock", report.OutOfStock)
		fmt.Println()
		for _, it := range report.Items {
			line := fmt.Sprintf("%-36s %6d  %s", it.Name, it.Stock, it.Level)
			switch it.Level {
			case catalog.LevelOutOfStock:
				output.Error("%s", line)
			case catalog.LevelLowStock:
				output.Warning("%s", line)
			default:
				fmt.Println("  " + line)
			}
		}
		return nil
	},
}

var movementsCmd = &cobra.Command{
	Use:   "movements",
	Short: "Show the stock history of a product",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := loadApp(ctx)
		if err != nil {
			return err
		}
		p, err := a.Catalog.Get(ctx, movementsID)
		if err != nil {
			return err
		}
		mvs, err := a.Catalog.Movements(ctx, movementsID)
		if err != nil {
			return err
		}
		output.Title(fmt.Sprintf("%s (stock %d)", p.Name, p.Stock))
		for _, mv := range mvs {
			output.Field(mv.CreatedAt.Format("2006-01-02 15:04"),
				fmt.Sprintf("%+d  %d->%d  %s  %s  by %s", mv.QuantityChange, mv.PreviousStock, mv.NewStock, mv.Type, mv.Reason, mv.CreatedBy))
		}
		if len(mvs) == 0 {
			output.Warning("no movements recorded")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(inventoryCmd)
	inventoryCmd.Flags().StringVar(&inventoryLevel, "level", "", "Filter: in_stock, low_stock or out_of_stock")

	rootCmd.AddCommand(movementsCmd)
	movementsCmd.Flags().StringVar(&movementsID, "product", "", "Product id (required)")
	_ = movementsCmd.MarkFlagRequired("product")

	rootCmd.AddCommand(syncStockCmd)
	syncStockCmd.Flags().StringVar(&syncOrderID, "order", "", "Order id (required)")
	_ = syncStockCmd.MarkFlagRequired("order")
}
