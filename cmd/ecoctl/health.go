package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/bryanwahyu/ecosense/internal/client/backend"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check whether the EcoSense API is reachable",
	RunE:  runHealth,
}

func runHealth(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
	defer cancel()

	client := newClient()
	conn := client.Ping(ctx)
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", client.BaseURL(), conn)
	if conn != backend.Connected {
		return fmt.Errorf("backend unreachable at %s", client.BaseURL())
	}
	return nil
}
