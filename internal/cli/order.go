package cli

import (
	"github.com/spf13/cobra"

	"github.com/example/atelier/internal/wire"
)

var orderCmd = &cobra.Command{
	Use:   "order",
	Short: "Manage manufacturing orders",
	Long:  "Create orders, record packed units and set weekly billed quantities",
}

var orderCreateCmd = &cobra.Command{
	Use:   "create [reference]",
	Short: "Create a new order",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := commandContext(cmd)
		quantity, _ := cmd.Flags().GetInt64("quantity")

		return wire.OrderAdapter().Create(ctx, args[0], quantity)
	},
}

var orderPackCmd = &cobra.Command{
	Use:   "pack [order-id] [units]",
	Short: "Record packed units",
	Long: `Record packed units on an order. When the packed total reaches the
effective target the order is terminated and every open assignment on it is
closed at the current instant. Either all of that happens or none of it.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := commandContext(cmd)
		id, err := parseID(args[0], "order")
		if err != nil {
			return err
		}
		delta, err := parseID(args[1], "packed units")
		if err != nil {
			return err
		}

		return wire.OrderAdapter().Pack(ctx, id, delta)
	},
}

var orderShowCmd = &cobra.Command{
	Use:   "show [order-id]",
	Short: "Show order details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := commandContext(cmd)
		id, err := parseID(args[0], "order")
		if err != nil {
			return err
		}

		_, err = wire.OrderAdapter().Show(ctx, id)
		return err
	},
}

var orderBillCmd = &cobra.Command{
	Use:   "bill [order-id]",
	Short: "Set the billed quantity of a planning week",
	Long: `Set the billed quantity of one planning week. When any week is billed,
the order's effective target becomes the sum of billed quantities.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := commandContext(cmd)
		id, err := parseID(args[0], "order")
		if err != nil {
			return err
		}
		week, _ := cmd.Flags().GetInt64("week")
		billed, _ := cmd.Flags().GetInt64("quantity")

		return wire.OrderAdapter().SetBilled(ctx, id, week, billed)
	},
}

// OrderCmd returns the order command
func OrderCmd() *cobra.Command {
	orderCreateCmd.Flags().Int64P("quantity", "q", 0, "Ordered quantity")
	_ = orderCreateCmd.MarkFlagRequired("quantity")

	orderBillCmd.Flags().Int64("week", 0, "Planning week ID")
	orderBillCmd.Flags().Int64P("quantity", "q", 0, "Billed quantity")
	_ = orderBillCmd.MarkFlagRequired("week")
	_ = orderBillCmd.MarkFlagRequired("quantity")

	orderCmd.AddCommand(orderCreateCmd)
	orderCmd.AddCommand(orderPackCmd)
	orderCmd.AddCommand(orderShowCmd)
	orderCmd.AddCommand(orderBillCmd)

	return orderCmd
}
