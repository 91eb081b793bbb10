package main

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"
)

func refundsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "refunds",
		Short: "Request, review, and process refunds",
	}

	var (
		paymentID uint64
		customer  string
		original  string
		token     string
		reason    string
	)
	request := &cobra.Command{
		Use:   "request <amount>",
		Short: "Request a refund (caller is the merchant)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return call("POST", "/api/v1/refunds", map[string]any{
				"merchant":                callerAddr,
				"payment_id":              paymentID,
				"customer":                customer,
				"amount":                  args[0],
				"original_payment_amount": original,
				"token":                   token,
				"reason":                  reason,
			})
		},
	}
	request.Flags().Uint64Var(&paymentID, "payment", 0, "payment identifier")
	request.Flags().StringVar(&customer, "customer", "", "customer address")
	request.Flags().StringVar(&original, "original-amount", "", "original payment amount")
	request.Flags().StringVar(&token, "token", "", "token contract address")
	request.Flags().StringVar(&reason, "reason", "", "reason for the refund")
	_ = request.MarkFlagRequired("payment")         //nolint:errcheck // flag exists
	_ = request.MarkFlagRequired("customer")        //nolint:errcheck // flag exists
	_ = request.MarkFlagRequired("original-amount") //nolint:errcheck // flag exists
	_ = request.MarkFlagRequired("token")           //nolint:errcheck // flag exists

	get := &cobra.Command{
		Use:   "get <id>",
		Short: "Show a refund",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return call("GET", "/api/v1/refunds/"+args[0], nil)
		},
	}

	approve := &cobra.Command{
		Use:   "approve <id>",
		Short: "Approve a requested refund (caller must be the stored admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return call("POST", "/api/v1/refunds/"+args[0]+"/approve", map[string]any{"admin": callerAddr})
		},
	}

	var rejection string
	reject := &cobra.Command{
		Use:   "reject <id>",
		Short: "Reject a requested refund (caller must be the stored admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return call("POST", "/api/v1/refunds/"+args[0]+"/reject", map[string]any{
				"admin":            callerAddr,
				"rejection_reason": rejection,
			})
		},
	}
	reject.Flags().StringVar(&rejection, "reason", "", "why the refund is rejected")

	process := &cobra.Command{
		Use:   "process <id>",
		Short: "Process an approved refund, transferring tokens to the customer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return call("POST", "/api/v1/refunds/"+args[0]+"/process", map[string]any{"admin": callerAddr})
		},
	}

	var (
		byStatus   string
		byMerchant string
		byCustomer string
		byPayment  uint64
		limit      uint64
		offset     uint64
	)
	list := &cobra.Command{
		Use:   "list",
		Short: "List refunds by status, merchant, customer, or payment",
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := refundFilterQuery(byStatus, byMerchant, byCustomer, byPayment)
			if err != nil {
				return err
			}
			q.Set("limit", strconv.FormatUint(limit, 10))
			q.Set("offset", strconv.FormatUint(offset, 10))
			return call("GET", "/api/v1/refunds?"+q.Encode(), nil)
		},
	}
	list.Flags().StringVar(&byStatus, "status", "", "filter by status")
	list.Flags().StringVar(&byMerchant, "merchant", "", "filter by merchant address")
	list.Flags().StringVar(&byCustomer, "customer", "", "filter by customer address")
	list.Flags().Uint64Var(&byPayment, "payment", 0, "filter by payment identifier")
	list.Flags().Uint64Var(&limit, "limit", 50, "page size")
	list.Flags().Uint64Var(&offset, "offset", 0, "page offset")

	count := &cobra.Command{
		Use:   "count",
		Short: "Count refunds by status, merchant, customer, or payment",
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := refundFilterQuery(byStatus, byMerchant, byCustomer, byPayment)
			if err != nil {
				return err
			}
			return call("GET", "/api/v1/refunds/count?"+q.Encode(), nil)
		},
	}
	count.Flags().StringVar(&byStatus, "status", "", "filter by status")
	count.Flags().StringVar(&byMerchant, "merchant", "", "filter by merchant address")
	count.Flags().StringVar(&byCustomer, "customer", "", "filter by customer address")
	count.Flags().Uint64Var(&byPayment, "payment", 0, "filter by payment identifier")

	cmd.AddCommand(request, get, approve, reject, process, list, count)
	return cmd
}

func refundFilterQuery(status, merchant, customer string, paymentID uint64) (url.Values, error) {
	q := url.Values{}
	set := 0
	if status != "" {
		q.Set("status", status)
		set++
	}
	if merchant != "" {
		q.Set("merchant", merchant)
		set++
	}
	if customer != "" {
		q.Set("customer", customer)
		set++
	}
	if paymentID != 0 {
		q.Set("payment_id", strconv.FormatUint(paymentID, 10))
		set++
	}
	if set != 1 {
		return nil, fmt.Errorf("exactly one of --status, --merchant, --customer, --payment is required")
	}
	return q, nil
}
