package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/localnerve/bootmgr/internal/config"
	"github.com/localnerve/bootmgr/internal/logger"
)

// Version is set at build time with -ldflags "-X .../commands.Version=...".
var Version = "dev"

// state is shared by the commands of one invocation.
type state struct {
	cfgFile string
	v       *viper.Viper
	cfg     *config.Config
}

// NewRootCmd builds the bootmgr command tree.
func NewRootCmd() *cobra.Command {
	s := &state{v: viper.New()}

	rootCmd := &cobra.Command{
		Use:   "bootmgr",
		Short: "Network boot configuration manager",
		Long: `bootmgr serves boot-time resources (iPXE scripts, kickstart files,
switch configurations) rendered per host from templates and the merged
attributes of the host's weighted profiles.

Aliases redirect a resource name per host, optionally for a single boot.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return s.initConfig()
		},
	}

	rootCmd.PersistentFlags().StringVar(&s.cfgFile, "config", "", "config file (default: ./bootmgr.yaml or /etc/bootmgr/bootmgr.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "", "log format (json, console)")

	// These should never fail as flags are defined above
	_ = s.v.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))   //nolint:errcheck
	_ = s.v.BindPFlag("log_format", rootCmd.PersistentFlags().Lookup("log-format")) //nolint:errcheck

	rootCmd.AddCommand(newServeCmd(s))
	rootCmd.AddCommand(newInitDBCmd(s))
	rootCmd.AddCommand(newHealthcheckCmd(s))

	rootCmd.SetVersionTemplate(`{{with .Name}}{{printf "%s " .}}{{end}}{{printf "%s" .Version}}
`)
	return rootCmd
}

// Execute runs the command tree with os.Args.
func Execute() error {
	return NewRootCmd().Execute()
}

func (s *state) initConfig() error {
	cfg, err := config.LoadWith(s.v, s.cfgFile)
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}
	if _, err := logger.Init(cfg.LogLevel, cfg.LogFormat); err != nil {
		return err
	}
	s.cfg = cfg
	return nil
}
