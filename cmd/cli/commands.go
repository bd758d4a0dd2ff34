package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/iho/bankledger/internal/adapter/http/dto"
	"github.com/iho/bankledger/internal/infrastructure/postgres"
)

const idempotencyHeader = "Idempotency-Key"

type cliOptions struct {
	baseURL string
	timeout time.Duration
}

func newRootCmd(out io.Writer) *cobra.Command {
	opts := &cliOptions{}

	rootCmd := &cobra.Command{
		Use:           "ledger-cli",
		Short:         "Bank ledger CLI tool",
		Long:          `A command line interface for interacting with the bank ledger API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetOut(out)

	rootCmd.PersistentFlags().StringVar(&opts.baseURL, "url", "http://localhost:8080", "Base URL of the ledger API")
	rootCmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "Request timeout")

	rootCmd.AddCommand(accountsCmd(opts), movementsCmd(opts), ledgerCmd(opts), migrateCmd())
	return rootCmd
}

func (o *cliOptions) client() *apiClient {
	return newAPIClient(o.baseURL, o.timeout)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func parseNumberArg(arg, name string) (int64, error) {
	n, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", name, arg)
	}
	return n, nil
}

func accountsCmd(opts *cliOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Account operations",
	}

	getCmd := &cobra.Command{
		Use:   "get NUMBER",
		Short: "Show an account and its balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			number, err := parseNumberArg(args[0], "account number")
			if err != nil {
				return err
			}
			var resp dto.AccountResponse
			if err := opts.client().do(cmd.Context(), http.MethodGet, fmt.Sprintf("/api/v1/accounts/%d", number), nil, nil, &resp); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp)
		},
	}

	var (
		number         int64
		clientID       int64
		kind           string
		openingBalance string
	)
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Open a new account",
		RunE: func(cmd *cobra.Command, args []string) error {
			balance, err := decimal.NewFromString(openingBalance)
			if err != nil {
				return fmt.Errorf("invalid opening balance %q: %w", openingBalance, err)
			}
			req := dto.CreateAccountRequest{
				Number:         number,
				ClientID:       clientID,
				Kind:           kind,
				OpeningBalance: balance,
			}
			var resp dto.AccountResponse
			if err := opts.client().do(cmd.Context(), http.MethodPost, "/api/v1/accounts", nil, req, &resp); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp)
		},
	}
	createCmd.Flags().Int64Var(&number, "number", 0, "Account number (next free number when omitted)")
	createCmd.Flags().Int64Var(&clientID, "client-id", 0, "Owning client id")
	createCmd.Flags().StringVar(&kind, "kind", "SAVINGS", "SAVINGS or CHECKING")
	createCmd.Flags().StringVar(&openingBalance, "opening-balance", "0", "Opening balance")
	_ = createCmd.MarkFlagRequired("client-id")

	cmd.AddCommand(getCmd, createCmd)
	return cmd
}

func movementsCmd(opts *cliOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "movements",
		Short: "Movement operations",
	}

	var (
		kind           string
		amount         string
		description    string
		initialDeposit bool
		idempotencyKey string
	)
	applyCmd := &cobra.Command{
		Use:   "apply ACCOUNT",
		Short: "Record a deposit or withdrawal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			number, err := parseNumberArg(args[0], "account number")
			if err != nil {
				return err
			}
			value, err := decimal.NewFromString(amount)
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", amount, err)
			}
			key := idempotencyKey
			if key == "" {
				key = ulid.Make().String()
			}
			req := dto.ApplyMovementRequest{
				Kind:           kind,
				Amount:         value,
				Description:    description,
				InitialDeposit: initialDeposit,
			}
			var resp dto.MovementResponse
			path := fmt.Sprintf("/api/v1/accounts/%d/movements", number)
			if err := opts.client().do(cmd.Context(), http.MethodPost, path, map[string]string{idempotencyHeader: key}, req, &resp); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp)
		},
	}
	applyCmd.Flags().StringVar(&kind, "kind", "", "DEPOSIT or WITHDRAWAL")
	applyCmd.Flags().StringVar(&amount, "amount", "", "Amount")
	applyCmd.Flags().StringVar(&description, "description", "", "Description")
	applyCmd.Flags().BoolVar(&initialDeposit, "initial", false, "Mark as the initial deposit of the account")
	applyCmd.Flags().StringVar(&idempotencyKey, "idempotency-key", "", "Idempotency key (random when omitted)")
	_ = applyCmd.MarkFlagRequired("kind")
	_ = applyCmd.MarkFlagRequired("amount")

	reverseCmd := &cobra.Command{
		Use:   "reverse ID",
		Short: "Void a movement and record its compensation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseNumberArg(args[0], "movement id")
			if err != nil {
				return err
			}
			var resp dto.MovementResponse
			path := fmt.Sprintf("/api/v1/movements/%d/reverse", id)
			headers := map[string]string{idempotencyHeader: "reverse-" + args[0]}
			if err := opts.client().do(cmd.Context(), http.MethodPost, path, headers, nil, &resp); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp)
		},
	}

	var from, to string
	listCmd := &cobra.Command{
		Use:   "list ACCOUNT",
		Short: "Show the account statement",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			number, err := parseNumberArg(args[0], "account number")
			if err != nil {
				return err
			}
			path := fmt.Sprintf("/api/v1/accounts/%d/movements", number)
			if from != "" || to != "" {
				q := url.Values{}
				q.Set("from", from)
				q.Set("to", to)
				path += "?" + q.Encode()
			}
			var resp dto.ListMovementsResponse
			if err := opts.client().do(cmd.Context(), http.MethodGet, path, nil, nil, &resp); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp)
		},
	}
	listCmd.Flags().StringVar(&from, "from", "", "First day, "+dto.DateLayout)
	listCmd.Flags().StringVar(&to, "to", "", "Last day, "+dto.DateLayout)
	listCmd.MarkFlagsRequiredTogether("from", "to")

	cmd.AddCommand(applyCmd, reverseCmd, listCmd)
	return cmd
}

func ledgerCmd(opts *cliOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Ledger operations",
	}

	var account int64
	reconcileCmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Check balances against movement history",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := opts.client()
			if account != 0 {
				var resp dto.ReconciliationResponse
				path := fmt.Sprintf("/api/v1/accounts/%d/reconciliation", account)
				if err := client.do(cmd.Context(), http.MethodGet, path, nil, nil, &resp); err != nil {
					return err
				}
				if err := printJSON(cmd.OutOrStdout(), resp); err != nil {
					return err
				}
				if !resp.Reconciled {
					return fmt.Errorf("account %d is off by %s", account, resp.Difference)
				}
				return nil
			}

			var report dto.ReconciliationReportResponse
			err := client.do(cmd.Context(), http.MethodGet, "/api/v1/ledger/reconciliation", nil, nil, &report)
			// An inconsistent ledger answers 409 with the full report.
			var apiErr *apiError
			if errors.As(err, &apiErr) && apiErr.Status == http.StatusConflict {
				err = json.Unmarshal(apiErr.Raw, &report)
			}
			if err != nil {
				return err
			}
			if err := printJSON(cmd.OutOrStdout(), report); err != nil {
				return err
			}
			if !report.Consistent {
				return fmt.Errorf("%d of %d accounts do not reconcile", len(report.Discrepancies), report.TotalAccounts)
			}
			return nil
		},
	}
	reconcileCmd.Flags().Int64Var(&account, "account", 0, "Reconcile a single account")

	cmd.AddCommand(reconcileCmd)
	return cmd
}

// migrateCmd talks to the database directly rather than the API.
func migrateCmd() *cobra.Command {
	var databaseURL, path string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back database migrations",
	}
	cmd.PersistentFlags().StringVar(&databaseURL, "database-url", "", "PostgreSQL URL")
	cmd.PersistentFlags().StringVar(&path, "path", "migrations", "Migrations directory")
	_ = cmd.MarkPersistentFlagRequired("database-url")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE: func(cmd *cobra.Command, args []string) error {
				return postgres.RunMigrations(databaseURL, path)
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back all migrations",
			RunE: func(cmd *cobra.Command, args []string) error {
				return postgres.RunMigrationsDown(databaseURL, path)
			},
		},
	)
	return cmd
}
