package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/martin5169/financial-dashboard/internal/domain"
	"github.com/martin5169/financial-dashboard/internal/infrastructure/auth"
)

type options struct {
	baseURL        string
	timeout        time.Duration
	token          string
	output         string
	idempotencyKey string
}

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "findash",
		Short:         "Financial dashboard CLI",
		Long:          `A command line interface for the financial dashboard API: accounts, transactions and payments.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.output != "json" && opts.output != "yaml" {
				return fmt.Errorf("unsupported output %q (json or yaml)", opts.output)
			}
			return nil
		},
	}
	rootCmd.SetOut(out)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.baseURL, "url", envOr("FINDASH_URL", "http://localhost:8080"), "Base URL of the dashboard API")
	flags.DurationVar(&opts.timeout, "timeout", 10*time.Second, "Request timeout")
	flags.StringVar(&opts.token, "token", os.Getenv("FINDASH_TOKEN"), "Access token; omit to act as the guest user")
	flags.StringVarP(&opts.output, "output", "o", "json", "Output format: json or yaml")
	flags.StringVar(&opts.idempotencyKey, "idempotency-key", "", "Idempotency key for create and update requests")

	rootCmd.AddCommand(
		accountsCmd(opts),
		transactionsCmd(opts),
		paymentsCmd(opts),
		debugCmd(opts),
		tokenCmd(),
	)

	return rootCmd
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// fieldFlags maps request fields to string flags. Only flags the user set are
// sent, so update commands produce partial patches.
type fieldFlags map[string]*string

func (f fieldFlags) register(cmd *cobra.Command, usage map[string]string) {
	for name, help := range usage {
		v := new(string)
		f[name] = v
		cmd.Flags().StringVar(v, strings.ReplaceAll(name, "_", "-"), "", help)
	}
}

func (f fieldFlags) body(cmd *cobra.Command) map[string]any {
	body := make(map[string]any)
	for name, v := range f {
		if cmd.Flags().Changed(strings.ReplaceAll(name, "_", "-")) {
			body[name] = *v
		}
	}
	return body
}

func requireFields(body map[string]any, names ...string) error {
	var missing []string
	for _, name := range names {
		if _, ok := body[name]; !ok {
			missing = append(missing, "--"+strings.ReplaceAll(name, "_", "-"))
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("required flags not set: %s", strings.Join(missing, ", "))
	}
	return nil
}

func accountsCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{Use: "accounts", Short: "Account operations"}
	fields := map[string]string{
		"title":       "Account title",
		"description": "Account description",
		"amount":      "Balance",
		"type":        "Currency: ARS, USD or EUR",
	}

	cmd.AddCommand(
		listCmd(opts, "accounts"),
		addCmd(opts, "accounts", fields, "title", "amount", "type"),
		updateCmd(opts, "accounts", fields),
		deleteCmd(opts, "accounts"),
		getCmd(opts, "totals", "Show ARS and USD totals", "/api/v1/accounts/totals"),
		getCmd(opts, "balances", "Show totals for every currency", "/api/v1/accounts/balances"),
	)
	return cmd
}

func transactionsCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{Use: "transactions", Short: "Transaction operations"}
	fields := map[string]string{
		"title":       "Transaction title",
		"description": "Transaction description",
		"amount":      "Amount; the sign follows --type",
		"type":        "incoming or outgoing",
		"category":    "Category",
		"timestamp":   "RFC 3339 timestamp or YYYY-MM-DD",
		"account":     "Account label",
	}

	cmd.AddCommand(
		listCmd(opts, "transactions"),
		addCmd(opts, "transactions", fields, "title", "amount", "type"),
		updateCmd(opts, "transactions", fields),
		deleteCmd(opts, "transactions"),
	)
	return cmd
}

func paymentsCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{Use: "payments", Short: "Payment operations"}
	fields := map[string]string{
		"name":            "Payment name",
		"description":     "Payment description",
		"amount":          "Amount due",
		"expiration_date": "Due date, YYYY-MM-DD",
		"status":          "pending, paid, overdue or cancelled",
		"type":            "credit-card, home, car or personal",
	}
	updateFields := map[string]string{"payment_date": "Date the payment was made"}
	for k, v := range fields {
		updateFields[k] = v
	}

	payFields := fieldFlags{}
	pay := &cobra.Command{
		Use:   "pay <id>",
		Short: "Mark a payment as paid",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return call(cmd, opts, http.MethodPost, "/api/v1/payments/"+url.PathEscape(args[0])+"/pay", payFields.body(cmd))
		},
	}
	payFields.register(pay, map[string]string{
		"amount":  "Amount paid; defaults to the amount due",
		"paid_at": "Payment time; defaults to now",
	})

	cancel := &cobra.Command{
		Use:   "cancel <id>",
		Short: "Cancel a payment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return call(cmd, opts, http.MethodPost, "/api/v1/payments/"+url.PathEscape(args[0])+"/cancel", nil)
		},
	}

	cmd.AddCommand(
		listCmd(opts, "payments"),
		addCmd(opts, "payments", fields, "name", "amount", "expiration_date", "type"),
		updateCmd(opts, "payments", updateFields),
		deleteCmd(opts, "payments"),
		pay,
		cancel,
	)
	return cmd
}

func debugCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{Use: "debug", Short: "Connectivity and session diagnostics"}
	cmd.AddCommand(
		getCmd(opts, "connection", "Check the storage backend round trip", "/api/v1/debug/connection"),
		getCmd(opts, "session", "Show the scope the API resolves for this caller", "/api/v1/session"),
	)
	return cmd
}

// tokenCmd signs an access token the postgres backend accepts. It never talks
// to the API.
func tokenCmd() *cobra.Command {
	var (
		secret string
		user   domain.User
		ttl    time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Sign an access token with the local JWT secret",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				return errors.New("a JWT secret is required (--secret or JWT_SECRET)")
			}
			if user.ID == "" {
				return errors.New("--user-id is required")
			}
			token, err := auth.NewJWTManager(secret).Generate(&user, ttl)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&secret, "secret", os.Getenv("JWT_SECRET"), "JWT secret shared with the server")
	flags.StringVar(&user.ID, "user-id", "", "Subject of the token")
	flags.StringVar(&user.Email, "email", "", "Email claim")
	flags.StringVar(&user.Role, "role", "authenticated", "Role claim")
	flags.DurationVar(&ttl, "ttl", time.Hour, "Token lifetime")
	return cmd
}

func listCmd(opts *options, entity string) *cobra.Command {
	return getCmd(opts, "list", "List "+entity, "/api/v1/"+entity)
}

func getCmd(opts *options, use, short, path string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return call(cmd, opts, http.MethodGet, path, nil)
		},
	}
}

func addCmd(opts *options, entity string, usage map[string]string, required ...string) *cobra.Command {
	fields := fieldFlags{}
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create " + strings.TrimSuffix(entity, "s"),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			body := fields.body(cmd)
			if err := requireFields(body, required...); err != nil {
				return err
			}
			return call(cmd, opts, http.MethodPost, "/api/v1/"+entity, body)
		},
	}
	fields.register(cmd, usage)
	return cmd
}

func updateCmd(opts *options, entity string, usage map[string]string) *cobra.Command {
	fields := fieldFlags{}
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update fields of a " + strings.TrimSuffix(entity, "s"),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body := fields.body(cmd)
			if len(body) == 0 {
				return errors.New("nothing to update: set at least one field flag")
			}
			return call(cmd, opts, http.MethodPatch, "/api/v1/"+entity+"/"+url.PathEscape(args[0]), body)
		},
	}
	fields.register(cmd, usage)
	return cmd
}

func deleteCmd(opts *options, entity string) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a " + strings.TrimSuffix(entity, "s"),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return call(cmd, opts, http.MethodDelete, "/api/v1/"+entity+"/"+url.PathEscape(args[0]), nil)
		},
	}
}

// call sends one request and prints the decoded response.
func call(cmd *cobra.Command, opts *options, method, path string, body map[string]any) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, strings.TrimRight(opts.baseURL, "/")+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if opts.token != "" {
		req.Header.Set("Authorization", "Bearer "+opts.token)
	}
	if opts.idempotencyKey != "" && method != http.MethodGet && method != http.MethodDelete {
		req.Header.Set("Idempotency-Key", opts.idempotencyKey)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return apiError(resp.StatusCode, data)
	}

	if resp.StatusCode == http.StatusNoContent || len(bytes.TrimSpace(data)) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "ok")
		return nil
	}

	var result any
	if err := json.Unmarshal(data, &result); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return render(cmd.OutOrStdout(), opts.output, result)
}

func apiError(status int, data []byte) error {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &payload); err != nil || payload.Error == "" {
		return fmt.Errorf("request failed (status %d): %s", status, strings.TrimSpace(string(data)))
	}
	if payload.Message != "" {
		return fmt.Errorf("request failed (status %d): %s: %s", status, payload.Error, payload.Message)
	}
	return fmt.Errorf("request failed (status %d): %s", status, payload.Error)
}

func render(out io.Writer, format string, v any) error {
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
}
