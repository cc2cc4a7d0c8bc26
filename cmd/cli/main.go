package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/tallybooks/tallybooks/internal/infrastructure/config"
	"github.com/tallybooks/tallybooks/internal/infrastructure/postgres"
)

var (
	baseURL string
	token   string
	timeout time.Duration
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "tallybooks-cli",
		Short: "TallyBooks CLI tool",
		Long:  `A command line interface for operating a TallyBooks ledger.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the TallyBooks API")
	rootCmd.PersistentFlags().StringVar(&token, "token", "", "Bearer token for authenticated requests")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(chartCmd())
	rootCmd.AddCommand(periodCmd())
	rootCmd.AddCommand(ledgerCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database schema operations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		Run: func(cmd *cobra.Command, args []string) {
			cfg := mustLoadConfig()
			if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
				fmt.Printf("Migration failed: %v\n", err)
				os.Exit(1)
			}
			fmt.Println("Migrations applied")
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back all migrations",
		Run: func(cmd *cobra.Command, args []string) {
			cfg := mustLoadConfig()
			if err := postgres.RunMigrationsDown(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
				fmt.Printf("Rollback failed: %v\n", err)
				os.Exit(1)
			}
			fmt.Println("Migrations rolled back")
		},
	})

	return cmd
}

func chartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chart",
		Short: "Chart of accounts operations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "seed",
		Short: "Create the standard small-business chart for the tenant",
		Run: func(cmd *cobra.Command, args []string) {
			result := doRequest(http.MethodPost, "/api/v1/accounts/seed", "")
			fmt.Printf("Accounts created: %v\n", result["created"])
		},
	})

	return cmd
}

func periodCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "period",
		Short: "Financial period operations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "lock <year> <month>",
		Short: "Lock a period against further postings",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			doRequest(http.MethodPost, fmt.Sprintf("/api/v1/periods/%s/%s/lock", args[0], args[1]), "")
			fmt.Printf("Period %s-%s locked\n", args[0], args[1])
		},
	})

	unlock := &cobra.Command{
		Use:   "unlock <year> <month>",
		Short: "Reopen a locked period (owner only, reason required)",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			reason, _ := cmd.Flags().GetString("reason")
			body, _ := json.Marshal(map[string]string{"reason": reason})
			doRequest(http.MethodPost, fmt.Sprintf("/api/v1/periods/%s/%s/unlock", args[0], args[1]), string(body))
			fmt.Printf("Period %s-%s unlocked\n", args[0], args[1])
		},
	}
	unlock.Flags().String("reason", "", "Audit reason for reopening the period")
	unlock.MarkFlagRequired("reason")
	cmd.AddCommand(unlock)

	cmd.AddCommand(&cobra.Command{
		Use:   "summary <year> <month>",
		Short: "Show the period's financial rollup",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			result := doRequest(http.MethodGet, fmt.Sprintf("/api/v1/periods/%s/%s/summary", args[0], args[1]), "")
			fmt.Printf("Revenue:  %v\n", result["total_revenue"])
			fmt.Printf("Expenses: %v\n", result["total_expenses"])
			fmt.Printf("Net:      %v\n", result["net_income"])
			fmt.Printf("Entries:  %v\n", result["journal_entry_count"])
		},
	})

	return cmd
}

func ledgerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Ledger operations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "consistency",
		Short: "Check that total debits equal total credits",
		Run: func(cmd *cobra.Command, args []string) {
			result := doRequest(http.MethodGet, "/api/v1/reports/consistency", "")
			if consistent, ok := result["consistent"].(bool); ok && consistent {
				fmt.Println("Consistency check PASSED")
				return
			}
			fmt.Println("Consistency check FAILED")
			os.Exit(1)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "trial-balance",
		Short: "Print the trial balance",
		Run: func(cmd *cobra.Command, args []string) {
			result := doRequest(http.MethodGet, "/api/v1/reports/trial-balance", "")

			rows, _ := result["rows"].([]any)
			fmt.Printf("%-8s %-30s %15s %15s\n", "CODE", "NAME", "DEBIT", "CREDIT")
			for _, r := range rows {
				row, ok := r.(map[string]any)
				if !ok {
					continue
				}
				fmt.Printf("%-8v %-30v %15v %15v\n", row["code"], row["name"], row["debit"], row["credit"])
			}
			fmt.Printf("%-39s %15v %15v\n", "TOTAL", result["total_debits"], result["total_credits"])
		},
	})

	return cmd
}

func mustLoadConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

// doRequest performs an API call and decodes the JSON response, exiting on
// any failure.
func doRequest(method, path, body string) map[string]any {
	client := &http.Client{Timeout: timeout}

	req, err := http.NewRequest(method, baseURL+path, strings.NewReader(body))
	if err != nil {
		fmt.Printf("Error building request: %v\n", err)
		os.Exit(1)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		fmt.Printf("Request failed (Status: %d)\nResponse: %s\n", resp.StatusCode, string(respBody))
		os.Exit(1)
	}

	result := map[string]any{}
	if len(respBody) > 0 {
		if err := json.Unmarshal(respBody, &result); err != nil {
			fmt.Printf("Failed to parse response: %v\n", err)
			os.Exit(1)
		}
	}

	return result
}
