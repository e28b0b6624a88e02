package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/localnerve/bootmgr/data"
	"github.com/localnerve/bootmgr/internal/database"
	"github.com/localnerve/bootmgr/internal/logger"
	"github.com/localnerve/bootmgr/internal/services"
)

func newInitDBCmd(s *state) *cobra.Command {
	var (
		seedFile string
		noSeed   bool
	)

	cmd := &cobra.Command{
		Use:   "initdb",
		Short: "Create the schema and load seed data",
		Long: `Create or migrate the database schema, then add the seed resources
and aliases that do not exist yet. Existing rows are never modified.

Without --seed the built-in seed (iPXE boot resources, kickstart,
POAP configuration and the ipxe_boot alias) is loaded.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			defer logger.Sync()

			db, err := database.Connect(s.cfg)
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer database.Close(db)

			if err := database.AutoMigrate(db); err != nil {
				return fmt.Errorf("failed to run migrations: %w", err)
			}
			if noSeed {
				return nil
			}

			src := data.Seed
			if seedFile != "" {
				if src, err = os.ReadFile(seedFile); err != nil {
					return fmt.Errorf("failed to read seed file: %w", err)
				}
			}
			seed, err := services.ParseSeed(src)
			if err != nil {
				return err
			}

			result, err := services.Seed(cmd.Context(), db, seed)
			if err != nil {
				return fmt.Errorf("failed to load seed data: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d profiles, %d resources, %d aliases\n",
				result.Profiles, result.Resources, result.Aliases)
			return nil
		},
	}

	cmd.Flags().StringVar(&seedFile, "seed", "", "YAML seed file replacing the built-in seed")
	cmd.Flags().BoolVar(&noSeed, "no-seed", false, "only create the schema")
	return cmd
}
