package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/localnerve/bootmgr/internal/database"
	"github.com/localnerve/bootmgr/internal/render"
	"github.com/localnerve/bootmgr/internal/services"
	"github.com/localnerve/bootmgr/internal/utils"
)

var errUnhealthy = errors.New("unhealthy")

func newHealthcheckCmd(s *state) *cobra.Command {
	var (
		serverURL string
		timeout   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "healthcheck",
		Short: "Check database and template directory health",
		Long: `Check the configured database and template directory and print the
result as JSON. With --url, probe the /healthz endpoint of a running
server instead. Exits non-zero when unhealthy.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if serverURL != "" {
				status, err := utils.ProbeHealth(cmd.Context(), serverURL, timeout)
				if err != nil {
					return err
				}
				if status != http.StatusOK {
					return fmt.Errorf("%w: %s/healthz answered %d", errUnhealthy, serverURL, status)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "healthy")
				return nil
			}

			db, err := database.Connect(s.cfg)
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer database.Close(db)

			renderer := render.NewFileRenderer(s.cfg.TemplatePath, s.cfg.MaxTemplateBytes)
			result := services.HealthCheck(cmd.Context(), s.cfg.DBType, db, renderer)

			output, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal health check result: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(output))

			if !result.Healthy() {
				return errUnhealthy
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&serverURL, "url", "", "base URL of a running server, e.g. http://localhost:3000")
	cmd.Flags().DurationVar(&timeout, "timeout", 3*time.Second, "probe timeout")
	return cmd
}
