package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// logger is replaced with a production logger before any subcommand runs.
var logger = zap.NewNop()

var rootCmd = &cobra.Command{
	Use:   "compass",
	Short: "Diagnose where a venture stands and what it should do next",
	Long: `Compass tracks ventures through a staged curriculum of work items.
It reports the current stage, ranks the next actions, measures velocity
and forecasts how long the remaining required work will take.`,
	SilenceUsage:      true,
	PersistentPreRunE: initLogger,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default .compass.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().String("db", "", "project database path")
	rootCmd.PersistentFlags().String("curriculum", "", "curriculum directory")

	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("db_path", rootCmd.PersistentFlags().Lookup("db"))
	_ = viper.BindPFlag("curriculum_dir", rootCmd.PersistentFlags().Lookup("curriculum"))
}

func initConfig() {
	if cfgFile, _ := rootCmd.Flags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName(".compass")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
	}

	viper.SetEnvPrefix("COMPASS")
	viper.AutomaticEnv()

	// It's fine if no config file is found; we use defaults.
	_ = viper.ReadInConfig()
}

// initLogger builds the process logger. Logs go to stderr as JSON; --verbose
// lowers the level to debug.
func initLogger(cmd *cobra.Command, args []string) error {
	cfg := zap.NewProductionConfig()
	if viper.GetBool("verbose") {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	l, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger = l
	return nil
}
