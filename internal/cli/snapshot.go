package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"classpoll-client/internal/api"
	"github.com/spf13/cobra"
)

// NewSnapshotCmd builds the one-shot snapshot fetch subcommand.
func NewSnapshotCmd(configPath, serverURL *string) *cobra.Command {
	var (
		tabID   string
		profile string
	)
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Fetch and print the current poll snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSnapshot(cmd.Context(), *configPath, *serverURL, tabID, profile)
		},
	}
	cmd.Flags().StringVar(&tabID, "tab", "", "explicit tabID (overrides the registry)")
	cmd.Flags().StringVar(&profile, "profile", "default", "client profile to resolve the tabID for")
	return cmd
}

func runSnapshot(ctx context.Context, cfgPath, base, tabID, profile string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return err
	}
	baseURL := resolveBase(cfg, base)

	if tabID == "" {
		registry := buildRegistry(cfg)
		tabID, err = registry.GetOrCreate(ctx, profile)
		if err != nil {
			return err
		}
	}

	apiClient := api.NewClient(baseURL)
	snap, err := apiClient.PollSnapshot(ctx, tabID)
	if err != nil {
		return fmt.Errorf("failed to fetch poll data: %w", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(snap)
}
