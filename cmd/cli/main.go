package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/spf13/cobra"
)

var (
	baseURL  string
	tenantID string
	userID   string
	timeout  time.Duration
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "coreledger-cli",
		Short: "CoreLedger CLI tool",
		Long:  `A command line interface for interacting with the CoreLedger API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the CoreLedger API")
	rootCmd.PersistentFlags().StringVar(&tenantID, "tenant", "", "Tenant ID")
	rootCmd.PersistentFlags().StringVar(&userID, "user", "", "User ID")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	entryCmd := &cobra.Command{
		Use:   "entry",
		Short: "Journal entry operations",
	}

	var entryFile string
	postCmd := &cobra.Command{
		Use:   "post",
		Short: "Post a journal entry from a JSON file",
		Run: func(cmd *cobra.Command, args []string) {
			postEntry(entryFile)
		},
	}
	postCmd.Flags().StringVar(&entryFile, "file", "", "JSON file with the entry body")
	postCmd.MarkFlagRequired("file")

	getCmd := &cobra.Command{
		Use:   "get [id]",
		Short: "Fetch a journal entry",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			get("/api/v1/journal-entries/" + args[0])
		},
	}

	var lookupKey string
	lookupCmd := &cobra.Command{
		Use:   "lookup",
		Short: "Find a journal entry by idempotency key",
		Run: func(cmd *cobra.Command, args []string) {
			get("/api/v1/journal-entries?" + url.Values{
				"idempotency_key": {lookupKey},
			}.Encode())
		},
	}
	lookupCmd.Flags().StringVar(&lookupKey, "key", "", "Idempotency key used when posting")
	lookupCmd.MarkFlagRequired("key")

	entryCmd.AddCommand(postCmd, getCmd, lookupCmd)

	reportCmd := &cobra.Command{
		Use:   "report",
		Short: "Reporting operations",
	}

	var entityID, periodStart, periodEnd string
	trialBalanceCmd := &cobra.Command{
		Use:   "trial-balance",
		Short: "Fetch a trial balance",
		Run: func(cmd *cobra.Command, args []string) {
			get("/api/v1/reports/trial-balance?" + url.Values{
				"entity_id":    {entityID},
				"period_start": {periodStart},
				"period_end":   {periodEnd},
			}.Encode())
		},
	}
	trialBalanceCmd.Flags().StringVar(&entityID, "entity", "", "Entity ID")
	trialBalanceCmd.Flags().StringVar(&periodStart, "start", "", "Period start (YYYY-MM-DD)")
	trialBalanceCmd.Flags().StringVar(&periodEnd, "end", "", "Period end (YYYY-MM-DD)")

	var parentEntityID, asOf string
	balanceSheetCmd := &cobra.Command{
		Use:   "balance-sheet",
		Short: "Fetch a consolidated balance sheet",
		Run: func(cmd *cobra.Command, args []string) {
			get("/api/v1/reports/balance-sheet/consolidated?" + url.Values{
				"parent_entity_id": {parentEntityID},
				"as_of":            {asOf},
			}.Encode())
		},
	}
	balanceSheetCmd.Flags().StringVar(&parentEntityID, "parent", "", "Parent entity ID")
	balanceSheetCmd.Flags().StringVar(&asOf, "as-of", "", "Snapshot date (YYYY-MM-DD)")

	reportCmd.AddCommand(trialBalanceCmd, balanceSheetCmd)

	periodCmd := &cobra.Command{
		Use:   "period",
		Short: "Accounting period operations",
	}

	var periodStatus string
	transitionCmd := &cobra.Command{
		Use:   "transition [id]",
		Short: "Change a period's posting status",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			transitionPeriod(args[0], periodStatus)
		},
	}
	transitionCmd.Flags().StringVar(&periodStatus, "status", "", "Target status (OPEN, SOFT_CLOSED, HARD_CLOSED)")
	transitionCmd.MarkFlagRequired("status")
	periodCmd.AddCommand(transitionCmd)

	rootCmd.AddCommand(entryCmd, reportCmd, periodCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func postEntry(file string) {
	body, err := os.ReadFile(file)
	if err != nil {
		fmt.Printf("Error reading %s: %v\n", file, err)
		os.Exit(1)
	}

	req, err := http.NewRequest(http.MethodPost, baseURL+"/api/v1/journal-entries", bytes.NewReader(body))
	if err != nil {
		fmt.Printf("Error building request: %v\n", err)
		os.Exit(1)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", ulid.Make().String())
	setCaller(req)

	do(req)
}

func transitionPeriod(periodID, status string) {
	body, err := json.Marshal(map[string]string{"status": status})
	if err != nil {
		fmt.Printf("Error building request body: %v\n", err)
		os.Exit(1)
	}

	req, err := http.NewRequest(http.MethodPost, baseURL+"/api/v1/periods/"+periodID+"/status", bytes.NewReader(body))
	if err != nil {
		fmt.Printf("Error building request: %v\n", err)
		os.Exit(1)
	}
	req.Header.Set("Content-Type", "application/json")
	setCaller(req)

	do(req)
}

func get(path string) {
	req, err := http.NewRequest(http.MethodGet, baseURL+path, nil)
	if err != nil {
		fmt.Printf("Error building request: %v\n", err)
		os.Exit(1)
	}
	setCaller(req)

	do(req)
}

func setCaller(req *http.Request) {
	if tenantID != "" {
		req.Header.Set("X-Tenant-ID", tenantID)
	}
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
}

func do(req *http.Request) {
	client := &http.Client{Timeout: timeout}
	resp, err := client.Do(req)
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, body, "", "  "); err != nil {
		pretty.Write(body)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		fmt.Printf("Request failed (Status: %d)\n%s\n", resp.StatusCode, pretty.String())
		os.Exit(1)
	}

	fmt.Println(pretty.String())
}
