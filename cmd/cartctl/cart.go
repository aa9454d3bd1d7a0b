package main

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/nikolayk812/cartstore/internal/checkout"
	"github.com/nikolayk812/cartstore/internal/domain"
	"github.com/nikolayk812/cartstore/internal/store"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func (o *rootOptions) store(cmd *cobra.Command) (*store.Store, error) {
	s, err := o.app.registry.Get(cmd.Context(), o.owner)
	if err != nil {
		return nil, fmt.Errorf("registry.Get: %w", err)
	}
	return s, nil
}

func newShowCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the cart with its totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := opts.store(cmd)
			if err != nil {
				return err
			}

			return printCart(cmd.OutOrStdout(), s.Snapshot())
		},
	}
}

func newAddCmd(opts *rootOptions) *cobra.Command {
	var item domain.NewLineItem
	var price string

	cmd := &cobra.Command{
		Use:   "add PRODUCT_ID",
		Short: "Add one unit of a product variant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := decimal.NewFromString(price)
			if err != nil {
				return fmt.Errorf("price[%s]: %w", price, err)
			}
			if p.IsNegative() {
				return fmt.Errorf("price[%s] is negative", price)
			}

			item.ProductID = args[0]
			item.Price = p

			s, err := opts.store(cmd)
			if err != nil {
				return err
			}

			ev, err := s.AddItem(cmd.Context(), item)
			return printEvent(cmd.OutOrStdout(), ev, err)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&item.Name, "name", "", "product name")
	flags.StringVar(&price, "price", "", "unit price")
	flags.StringVar(&item.Image, "image", "", "image url")
	flags.StringVar(&item.Size, "size", "", "variant size")
	flags.StringVar(&item.Color, "color", "", "variant color")
	flags.IntVar(&item.MaxQuantity, "max", 1, "max quantity for the line")
	_ = cmd.MarkFlagRequired("price")

	return cmd
}

func newUpdateCmd(opts *rootOptions) *cobra.Command {
	var key domain.LineKey

	cmd := &cobra.Command{
		Use:   "update PRODUCT_ID QUANTITY",
		Short: "Set the quantity of a line; zero removes it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			quantity, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("quantity[%s]: %w", args[1], err)
			}

			key.ProductID = args[0]

			s, err := opts.store(cmd)
			if err != nil {
				return err
			}

			ev, err := s.UpdateQuantity(cmd.Context(), key, quantity)
			return printEvent(cmd.OutOrStdout(), ev, err)
		},
	}

	addKeyFlags(cmd, &key)

	return cmd
}

func newRemoveCmd(opts *rootOptions) *cobra.Command {
	var key domain.LineKey

	cmd := &cobra.Command{
		Use:   "remove PRODUCT_ID",
		Short: "Remove a line from the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key.ProductID = args[0]

			s, err := opts.store(cmd)
			if err != nil {
				return err
			}

			ev, err := s.RemoveItem(cmd.Context(), key)
			return printEvent(cmd.OutOrStdout(), ev, err)
		},
	}

	addKeyFlags(cmd, &key)

	return cmd
}

func newClearCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Empty the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := opts.store(cmd)
			if err != nil {
				return err
			}

			ev, err := s.Clear(cmd.Context())
			return printEvent(cmd.OutOrStdout(), ev, err)
		},
	}
}

// newCouponCmd applies a coupon for the duration of one process; coupons are never persisted,
// so it is mostly useful to preview a discount.
func newCouponCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "coupon CODE",
		Short: "Preview the cart with a coupon applied",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.store(cmd)
			if err != nil {
				return err
			}

			discount, err := opts.app.coupons.Validate(args[0], s.Snapshot().TotalPrice)
			if err != nil {
				return fmt.Errorf("coupons.Validate: %w", err)
			}

			return printEvent(cmd.OutOrStdout(), s.ApplyCoupon(args[0], discount), nil)
		},
	}

	return cmd
}

func newCheckoutCmd(opts *rootOptions) *cobra.Command {
	var (
		address  domain.ShippingAddress
		payment  domain.OrderPayment
		couponID string
	)

	cmd := &cobra.Command{
		Use:   "checkout",
		Short: "Submit the cart as an order and clear it on success",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := opts.store(cmd)
			if err != nil {
				return err
			}

			submitter, err := opts.app.submitter()
			if err != nil {
				return err
			}

			svc, err := checkout.NewService(s, submitter, opts.app.coupons, opts.app.logger)
			if err != nil {
				return fmt.Errorf("checkout.NewService: %w", err)
			}

			if couponID != "" {
				if _, err := svc.ApplyCoupon(couponID); err != nil {
					return err
				}
			}

			confirmation, err := svc.PlaceOrder(cmd.Context(), address, payment)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "order %s (%s) %s\n", confirmation.OrderNumber, confirmation.OrderID, confirmation.Status)
			return err
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&couponID, "coupon", "", "coupon code to apply before submitting")
	flags.StringVar(&address.FirstName, "first-name", "", "")
	flags.StringVar(&address.LastName, "last-name", "", "")
	flags.StringVar(&address.Email, "email", "", "")
	flags.StringVar(&address.Phone, "phone", "", "")
	flags.StringVar(&address.Address, "address", "", "street address")
	flags.StringVar(&address.City, "city", "", "")
	flags.StringVar(&address.State, "state", "", "")
	flags.StringVar(&address.ZipCode, "zip", "", "")
	flags.StringVar(&address.Country, "country", "", "")
	flags.StringVar(&payment.Method, "payment", "credit_card", "payment method")

	return cmd
}

func addKeyFlags(cmd *cobra.Command, key *domain.LineKey) {
	cmd.Flags().StringVar(&key.Size, "size", "", "variant size")
	cmd.Flags().StringVar(&key.Color, "color", "", "variant color")
}

func printEvent(w io.Writer, ev domain.Event, err error) error {
	if _, printErr := fmt.Fprintf(w, "%s %s\n", ev.Outcome, ev.Kind); printErr != nil {
		return printErr
	}
	if printErr := printCart(w, ev.Cart); printErr != nil {
		return printErr
	}
	return err
}

func printCart(w io.Writer, cart domain.Cart) error {
	money := func(d decimal.Decimal) string {
		return domain.NewMoney(d, cart.Currency).String()
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintln(tw, "PRODUCT\tSIZE\tCOLOR\tQTY\tPRICE\tTOTAL")
	for _, item := range cart.Items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d/%d\t%s\t%s\n",
			item.ProductID, item.Size, item.Color, item.Quantity, item.MaxQuantity,
			money(item.Price), money(item.LineTotal()))
	}
	fmt.Fprintln(tw)
	fmt.Fprintf(tw, "items\t%d\n", cart.TotalItems)
	fmt.Fprintf(tw, "subtotal\t%s\n", money(cart.TotalPrice))
	fmt.Fprintf(tw, "shipping\t%s\n", money(cart.ShippingCost))
	fmt.Fprintf(tw, "tax\t%s\n", money(cart.Tax))
	if cart.HasCoupon() {
		fmt.Fprintf(tw, "discount (%s)\t-%s\n", cart.CouponCode, money(cart.Discount))
	}
	fmt.Fprintf(tw, "total\t%s\n", money(cart.FinalTotal()))

	return tw.Flush()
}
