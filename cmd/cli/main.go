package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/iho/udaancredit/internal/adapter/csvledger"
	"github.com/iho/udaancredit/internal/domain"
	"github.com/iho/udaancredit/internal/infrastructure/idgen"
	"github.com/iho/udaancredit/internal/usecase"
)

var (
	baseURL string
	timeout time.Duration
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "udaancredit-cli",
		Short:         "UdaanCredit CLI tool",
		Long:          `Score UPI transaction ledgers locally or through the UdaanCredit API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the UdaanCredit API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	rootCmd.AddCommand(scoreCmd(), assessCmd(), healthCmd())

	return rootCmd
}

func scoreCmd() *cobra.Command {
	var (
		file    string
		policy  string
		asJSON  bool
		maxRows int
	)

	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score a CSV ledger offline",
		RunE: func(cmd *cobra.Command, args []string) error {
			riskPolicy, err := domain.RiskPolicyByName(policy)
			if err != nil {
				return err
			}

			f, err := os.Open(file)
			if err != nil {
				return fmt.Errorf("open ledger: %w", err)
			}
			defer f.Close()

			ledger, err := csvledger.NewParser(maxRows).Parse(f)
			if err != nil {
				return err
			}

			uc, err := usecase.NewAssessmentUseCase(
				usecase.AssessmentConfig{Policy: riskPolicy, MaxLedgerRows: maxRows},
				idgen.NewULIDGenerator(), nil, nil, nil, zerolog.Nop(),
			)
			if err != nil {
				return err
			}

			assessment, err := uc.Assess(context.Background(), usecase.AssessInput{Ledger: ledger})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return printJSON(out, assessment)
			}
			printReport(out, assessment)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Path to the ledger CSV (columns: date, type, amount)")
	cmd.Flags().StringVar(&policy, "policy", domain.RiskPolicyStandard, "Risk policy: standard or strict")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the full assessment as JSON")
	cmd.Flags().IntVar(&maxRows, "max-rows", domain.DefaultMaxLedgerRows, "Maximum ledger rows")
	cmd.MarkFlagRequired("file")

	return cmd
}

func assessCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "assess",
		Short: "Submit a CSV ledger to the API",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(file)
			if err != nil {
				return fmt.Errorf("open ledger: %w", err)
			}
			defer f.Close()

			req, err := http.NewRequest(http.MethodPost, strings.TrimRight(baseURL, "/")+"/api/v1/assessments", f)
			if err != nil {
				return err
			}
			req.Header.Set("Content-Type", "text/csv")

			body, status, err := do(req)
			if err != nil {
				return err
			}
			if status != http.StatusCreated {
				return fmt.Errorf("assessment FAILED (Status: %d)\nResponse: %s", status, string(body))
			}

			var result map[string]any
			if err := json.Unmarshal(body, &result); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}

			return printJSON(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Path to the ledger CSV")
	cmd.MarkFlagRequired("file")

	return cmd
}

func healthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check API readiness",
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := http.NewRequest(http.MethodGet, strings.TrimRight(baseURL, "/")+"/ready", nil)
			if err != nil {
				return err
			}

			body, status, err := do(req)
			if err != nil {
				return err
			}
			if status != http.StatusOK {
				return fmt.Errorf("readiness check FAILED (Status: %d)\nResponse: %s", status, string(body))
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Readiness check PASSED\n%s", body)
			return nil
		},
	}
}

func do(req *http.Request) ([]byte, int, error) {
	client := &http.Client{Timeout: timeout}
	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read response: %w", err)
	}

	return body, resp.StatusCode, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printReport(w io.Writer, a *domain.Assessment) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "Ledger\t%s\n", truncate(a.Fingerprint, 16))
	fmt.Fprintf(tw, "Rows\t%d (unknown type %d, missing amount %d)\n",
		a.Summary.Rows, a.Summary.UnknownType, a.Summary.MissingAmount)
	fmt.Fprintf(tw, "Total credit\t%s\n", a.Features.TotalCredit.StringFixed(2))
	fmt.Fprintf(tw, "Total debit\t%s\n", a.Features.TotalDebit.StringFixed(2))
	fmt.Fprintf(tw, "Inflows / outflows\t%d / %d\n", a.Features.InflowCount, a.Features.OutflowCount)
	fmt.Fprintf(tw, "Avg ticket size\t%s\n", a.Features.AvgTicketSize.StringFixed(2))
	fmt.Fprintf(tw, "Cashflow stability\t%s\n", a.Features.CashflowStability.StringFixed(2))
	fmt.Fprintln(tw)

	for _, f := range a.Breakdown.Factors {
		fmt.Fprintf(tw, "  %s\t%+d\n", f.Name, f.Points)
	}
	fmt.Fprintln(tw)

	fmt.Fprintf(tw, "Score\t%d (%s policy)\n", a.Score, a.Policy)
	fmt.Fprintf(tw, "Risk\t%s\n", a.Risk)
	fmt.Fprintf(tw, "Loan\tRs %d, %s\n", a.Loan.Amount, a.Loan.Message)

	tw.Flush()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}
