package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"lingopod/internal/pipeline"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the running daemon's job status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if cfg.Paths.APIBind == "" {
				return fmt.Errorf("paths.api_bind is not configured")
			}

			client := &http.Client{Timeout: 5 * time.Second}
			resp, err := client.Get(fmt.Sprintf("http://%s/api/status", cfg.Paths.APIBind))
			if err != nil {
				return fmt.Errorf("daemon not reachable at %s: %w", cfg.Paths.APIBind, err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("daemon returned status %d", resp.StatusCode)
			}

			var status pipeline.Status
			if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
				return fmt.Errorf("decode status: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "State:    %s\n", status.State)
			fmt.Fprintf(out, "Progress: %.0f%%\n", status.Progress)
			if status.Message != "" {
				fmt.Fprintf(out, "Message:  %s\n", status.Message)
			}
			if status.Error != "" {
				fmt.Fprintf(out, "Error:    %s\n", status.Error)
			}
			return nil
		},
	}
}
