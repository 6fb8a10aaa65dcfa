package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/spf13/cobra"

	"github.com/jinbot/jinbot/pkg/config"
	"github.com/jinbot/jinbot/pkg/server/endpoints"
)

// waitCmd represents the wait command
var waitCmd = &cobra.Command{
	Use:   "wait",
	Short: "Wait until jinbot reports itself ready on /status",
	Long: `Wait until a jinbot server answers GET /status with 200.

/status answers 503 while the state store is unreachable, so a server that
is up but cannot reach its database is not reported ready. The address is
taken from bind_address and port in the configuration unless overridden.

Example:
  jinbot wait
  jinbot wait --host 10.0.0.5 --port 3000 --retries 60`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
			os.Exit(1)
		}
		host, port := cfg.BindAddress, cfg.Port
		if cmd.Flags().Changed("host") {
			host, _ = cmd.Flags().GetString("host")
		}
		if cmd.Flags().Changed("port") {
			port, _ = cmd.Flags().GetInt("port")
		}
		retries, _ := cmd.Flags().GetInt("retries")
		interval, _ := cmd.Flags().GetDuration("interval")

		fmt.Println("Waiting for jinbot to be ready...")
		status, err := waitForStatus(cmd.Context(), statusURL(host, port), retries, interval)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Server did not become ready: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("jinbot is ready: %d meme(s), group %d, every %d minute(s), store %s, %s mode\n",
			status.Memes, status.GroupID, status.IntervalMinutes, status.Store, status.UpdateMode)
	},
}

func init() {
	rootCmd.AddCommand(waitCmd)
	waitCmd.Flags().StringP("host", "H", "", "Server host (defaults to bind_address)")
	waitCmd.Flags().IntP("port", "p", 0, "Server port (defaults to port)")
	waitCmd.Flags().IntP("retries", "r", 90, "Number of retries")
	waitCmd.Flags().Duration("interval", time.Second, "Delay between attempts")
}

func defaultPort() int {
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			return p
		}
	}
	return 10000
}

// statusURL builds the /status URL for a server listening on host:port.
// Wildcard bind addresses are reached through loopback.
func statusURL(host string, port int) string {
	switch host {
	case "", "0.0.0.0", "::":
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, strconv.Itoa(port)) + "/status"
}

// waitForStatus polls url until it answers 200 and returns the decoded
// status. Connection errors and 5xx answers are retried every interval.
func waitForStatus(ctx context.Context, url string, retries int, interval time.Duration) (*endpoints.StatusResponse, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	rc := retryablehttp.NewClient()
	rc.Logger = nil
	rc.RetryMax = retries
	rc.HTTPClient.Timeout = 2 * time.Second
	rc.Backoff = func(_, _ time.Duration, _ int, _ *http.Response) time.Duration {
		return interval
	}
	rc.RequestLogHook = func(_ retryablehttp.Logger, _ *http.Request, attempt int) {
		if attempt > 0 {
			fmt.Print(".")
		}
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := rc.Do(req)
	if retries > 0 {
		fmt.Println()
	}
	if err != nil {
		return nil, fmt.Errorf("jinbot is not ready after %d attempt(s): %w", retries+1, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("jinbot answered %d on /status", resp.StatusCode)
	}

	var status endpoints.StatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, fmt.Errorf("failed to decode status: %w", err)
	}
	return &status, nil
}
