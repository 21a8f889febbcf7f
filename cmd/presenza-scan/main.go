// Package main provides presenza-scan, a terminal check-in kiosk.
//
// It drives the same scan flow as the camera UI: each line typed on
// stdin is submitted as a token for the configured employee and action.
// Scan results are printed and clear themselves after a short delay,
// errors stay on screen until the next attempt.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/presenzahq/presenza/internal/client"
	"github.com/presenzahq/presenza/internal/scanner"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "presenza-scan: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		serverURL = flag.String("server", "http://localhost:8080", "Presenza server base URL")
		userID    = flag.Int64("user", 0, "employee ID to check in")
		action    = flag.String("action", "punch_in", "punch_in, punch_out, break_start or break_end")
	)
	flag.Parse()

	if *userID <= 0 {
		return fmt.Errorf("-user is required")
	}
	switch *action {
	case "punch_in", "punch_out", "break_start", "break_end":
	default:
		return fmt.Errorf("unknown action %q", *action)
	}

	api := client.NewClient(client.WithBaseURL(*serverURL))
	ctrl := scanner.NewController(api, *userID, *action,
		scanner.WithOnChange(printState))

	fmt.Printf("presenza-scan: %s for employee %d via %s\n", *action, *userID, *serverURL)
	fmt.Println("Type or scan a token and press enter. Ctrl-D quits.")

	ctx := context.Background()
	in := bufio.NewScanner(os.Stdin)
	for in.Scan() {
		token := strings.TrimSpace(in.Text())
		if token == "" {
			continue
		}
		// Errors are already rendered by the state callback.
		_ = ctrl.SubmitManual(ctx, token) //nolint:errcheck
	}
	return in.Err()
}

func printState(state scanner.State) {
	switch {
	case state.Err != nil:
		var apiErr *client.Error
		if errors.As(state.Err, &apiErr) {
			fmt.Printf("  FAILED [%s]: %s\n", apiErr.Code, apiErr.Message)
			return
		}
		fmt.Printf("  FAILED: %v\n", state.Err)
	case state.Result != nil:
		fmt.Printf("  OK: %s (%s, status %s)\n", state.Result.Message, state.Result.User, state.Result.Status)
	}
}
