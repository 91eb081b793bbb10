package main

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"
)

func paymentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "payments",
		Short: "Create, settle, and inspect payments",
	}

	var (
		merchant string
		token    string
		duration uint64
	)
	create := &cobra.Command{
		Use:   "create <amount>",
		Short: "Create a pending payment (caller is the customer)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return call("POST", "/api/v1/payments", map[string]any{
				"customer":            callerAddr,
				"merchant":            merchant,
				"amount":              args[0],
				"token":               token,
				"expiration_duration": duration,
			})
		},
	}
	create.Flags().StringVar(&merchant, "merchant", "", "merchant address")
	create.Flags().StringVar(&token, "token", "", "token contract address")
	create.Flags().Uint64Var(&duration, "expires-in", 0, "seconds until expiry, 0 for never")
	_ = create.MarkFlagRequired("merchant") //nolint:errcheck // flag exists
	_ = create.MarkFlagRequired("token")    //nolint:errcheck // flag exists

	get := &cobra.Command{
		Use:   "get <id>",
		Short: "Show a payment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return call("GET", "/api/v1/payments/"+args[0], nil)
		},
	}

	complete := &cobra.Command{
		Use:   "complete <id>",
		Short: "Complete a pending payment (caller acts as admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return call("POST", "/api/v1/payments/"+args[0]+"/complete", map[string]any{"admin": callerAddr})
		},
	}

	refund := &cobra.Command{
		Use:   "refund <id>",
		Short: "Mark a pending payment refunded (caller acts as admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return call("POST", "/api/v1/payments/"+args[0]+"/refund", map[string]any{"admin": callerAddr})
		},
	}

	cancel := &cobra.Command{
		Use:   "cancel <id>",
		Short: "Cancel a pending payment (caller must be customer or merchant)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return call("POST", "/api/v1/payments/"+args[0]+"/cancel", map[string]any{"caller": callerAddr})
		},
	}

	expire := &cobra.Command{
		Use:   "expire <id>",
		Short: "Expire a pending payment whose deadline has passed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return call("POST", "/api/v1/payments/"+args[0]+"/expire", nil)
		},
	}

	expired := &cobra.Command{
		Use:   "expired <id>",
		Short: "Check whether a payment's deadline has passed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return call("GET", "/api/v1/payments/"+args[0]+"/expired", nil)
		},
	}

	refundedTotal := &cobra.Command{
		Use:   "refunded-total <id>",
		Short: "Show the total processed refund amount for a payment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return call("GET", "/api/v1/payments/"+args[0]+"/refunded-total", nil)
		},
	}

	var (
		byCustomer string
		byMerchant string
		byStatus   string
		limit      uint64
		offset     uint64
	)
	list := &cobra.Command{
		Use:   "list",
		Short: "List payments by customer, merchant, or status",
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := filterQuery(byCustomer, byMerchant, byStatus)
			if err != nil {
				return err
			}
			q.Set("limit", strconv.FormatUint(limit, 10))
			q.Set("offset", strconv.FormatUint(offset, 10))
			return call("GET", "/api/v1/payments?"+q.Encode(), nil)
		},
	}
	list.Flags().StringVar(&byCustomer, "customer", "", "filter by customer address")
	list.Flags().StringVar(&byMerchant, "merchant", "", "filter by merchant address")
	list.Flags().StringVar(&byStatus, "status", "", "filter by status")
	list.Flags().Uint64Var(&limit, "limit", 50, "page size")
	list.Flags().Uint64Var(&offset, "offset", 0, "page offset")

	count := &cobra.Command{
		Use:   "count",
		Short: "Count payments by customer, merchant, or status",
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := filterQuery(byCustomer, byMerchant, byStatus)
			if err != nil {
				return err
			}
			return call("GET", "/api/v1/payments/count?"+q.Encode(), nil)
		},
	}
	count.Flags().StringVar(&byCustomer, "customer", "", "filter by customer address")
	count.Flags().StringVar(&byMerchant, "merchant", "", "filter by merchant address")
	count.Flags().StringVar(&byStatus, "status", "", "filter by status")

	cmd.AddCommand(create, get, complete, refund, cancel, expire, expired, refundedTotal, list, count)
	return cmd
}

// filterQuery builds the list/count query string, requiring exactly one filter.
func filterQuery(customer, merchant, status string) (url.Values, error) {
	q := url.Values{}
	set := 0
	if customer != "" {
		q.Set("customer", customer)
		set++
	}
	if merchant != "" {
		q.Set("merchant", merchant)
		set++
	}
	if status != "" {
		q.Set("status", status)
		set++
	}
	if set != 1 {
		return nil, fmt.Errorf("exactly one of --customer, --merchant, --status is required")
	}
	return q, nil
}
