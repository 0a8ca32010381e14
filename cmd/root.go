// -- cmd/root.go --
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/xkilldash9x/unitbrowser/internal/config"
	"github.com/xkilldash9x/unitbrowser/internal/observability"
)

// app is the state shared by one command tree: its viper instance and the
// configuration loaded before any subcommand runs.
type app struct {
	cfgFile string
	v       *viper.Viper
	cfg     *config.Config
	logger  *zap.Logger
}

// NewRootCommand builds a fresh command tree. Each tree owns its own viper instance so
// tests can execute commands in isolation.
func NewRootCommand() *cobra.Command {
	a := &app{v: viper.New()}

	rootCmd := &cobra.Command{
		Use:     "unitbrowser",
		Short:   "unitbrowser styles and scripts HTML documents without a real browser.",
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.initialize(cmd)
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVarP(&a.cfgFile, "config", "c", "", "config file (default is ./config.yaml or ~/.unitbrowser/config.yaml)")
	rootCmd.PersistentFlags().Int("viewport-width", 0, "viewport width in CSS pixels (overrides browser.viewport_width)")
	rootCmd.SetVersionTemplate(`{{printf "%s version %s\n" .Name .Version}}`)

	rootCmd.AddCommand(
		newVersionCommand(),
		newTranslateCommand(a),
		newStyleCommand(a),
		newRunCommand(a),
	)
	return rootCmd
}

// initialize loads configuration, applies flag overrides, and sets up logging.
func (a *app) initialize(cmd *cobra.Command) error {
	if err := config.Load(a.v, a.cfgFile); err != nil {
		observability.InitializeLogger(config.NewDefaultConfig().Logger())
		return err
	}
	if err := a.v.BindPFlag("browser.viewport_width", cmd.Flags().Lookup("viewport-width")); err != nil {
		return fmt.Errorf("failed to bind viewport flag: %w", err)
	}

	cfg, err := config.NewConfigFromViper(a.v)
	if err != nil {
		observability.InitializeLogger(config.NewDefaultConfig().Logger())
		return err
	}
	a.cfg = cfg

	observability.InitializeLogger(cfg.Logger())
	a.logger = observability.GetLogger()
	a.logger.Debug("Starting unitbrowser", zap.String("version", Version), zap.String("command", cmd.Name()))
	return nil
}

// Execute runs the command tree built by NewRootCommand.
func Execute() {
	defer observability.Sync()
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		observability.Sync()
		os.Exit(1)
	}
}
