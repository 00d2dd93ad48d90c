package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "cascade",
	Short: "Markdown-first spec cascade engine",
	Long: "Cascade treats structured markdown documents as the source of truth for a\n" +
		"project and propagates detected changes down the requirement, design, and\n" +
		"implementation chain via a model.",
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default .cascade.yaml)")
	rootCmd.PersistentFlags().String("workspace", "", "workspace directory (default from config)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
}

func initConfig() {
	if cfgFile, _ := rootCmd.Flags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName(".cascade")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
	}

	viper.SetEnvPrefix("CASCADE")
	viper.AutomaticEnv()

	// Only propagate flags the user actually set, so config-file values
	// are not shadowed by flag defaults.
	if ws, _ := rootCmd.Flags().GetString("workspace"); ws != "" {
		viper.Set("workspace_dir", ws)
	}
	if verbose, _ := rootCmd.Flags().GetBool("verbose"); verbose {
		viper.Set("verbose", true)
	}

	// It's fine if no config file is found; we use defaults.
	_ = viper.ReadInConfig()
}
