package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/Veraticus/ponder/internal/common"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var version = "dev"

// newRootCmd builds the command tree and binds its flags to viper.
func newRootCmd() *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "ponder",
		Short: "🤔 Think before you buy",
		Long: `ponder: a purchase-decision journal.

Log something you want to buy, answer three quick questions about it,
get a suggestion, and record what you decided. Review your history
whenever you like.`,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return initConfig(cfgFile)
		},
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.config/ponder/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "console", "log format (console, json)")
	rootCmd.PersistentFlags().String("backend", "", "storage backend (sqlite, postgres, hosted)")
	rootCmd.PersistentFlags().String("user", "", "record decisions as this user instead of the signed-in session")

	// Bind flags to viper
	_ = viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("logging.format", rootCmd.PersistentFlags().Lookup("log-format"))
	_ = viper.BindPFlag("store.backend", rootCmd.PersistentFlags().Lookup("backend"))
	_ = viper.BindPFlag("auth.user", rootCmd.PersistentFlags().Lookup("user"))

	// Add commands
	rootCmd.AddCommand(newCmd())
	rootCmd.AddCommand(decideCmd())
	rootCmd.AddCommand(adviseCmd())
	rootCmd.AddCommand(historyCmd())
	rootCmd.AddCommand(reportCmd())
	rootCmd.AddCommand(importCmd())
	rootCmd.AddCommand(authCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(versionCmd())

	return rootCmd
}

func main() {
	// Set up signal handling
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		slog.Debug("Received interrupt signal, shutting down")
		cancel()
	}()

	err := newRootCmd().ExecuteContext(ctx)
	cancel() // Always cleanup

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func initConfig(cfgFile string) error {
	// Set up config file
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}

		// Search for config in standard locations
		viper.AddConfigPath(fmt.Sprintf("%s/.config/ponder", home))
		viper.AddConfigPath(".")
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	// Environment variables: store.backend is read from PONDER_STORE_BACKEND.
	viper.SetEnvPrefix("PONDER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Read config file
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}

	if err := setupLogging(); err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}

	return nil
}

func setupLogging() error {
	level, err := common.ParseLevel(viper.GetString("logging.level"))
	if err != nil {
		return err
	}
	return common.SetupLogger(level, viper.GetString("logging.format"))
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "ponder %s\n", version)
		},
	}
}
