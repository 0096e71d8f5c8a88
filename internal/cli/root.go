// Package cli implements the ahliwaris operator commands.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewRootCommand builds the command tree. Each call returns an independent
// tree with its own configuration.
func NewRootCommand() *cobra.Command {
	v := viper.New()
	var cfgFile string

	root := &cobra.Command{
		Use:   "ahliwaris",
		Short: "Validate heir declaration cases and assemble their letters",
		Long: `ahliwaris checks a family case against one of the seven supported
inheritance scenarios and assembles the Surat Pernyataan Ahli Waris.

Configuration hierarchy (highest to lowest priority):
1. CLI flags
2. Environment variables (AHLIWARIS_*)
3. Config file (~/.ahliwaris/config.yaml)`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadConfig(v, cfgFile)
		},
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.ahliwaris/config.yaml)")
	root.PersistentFlags().String("sign-place", "", "place printed next to the signing date")
	_ = v.BindPFlag("sign_place", root.PersistentFlags().Lookup("sign-place"))

	root.AddCommand(newValidateCommand(), newAssembleCommand(v), newScenariosCommand())
	return root
}

// Execute runs the root command against os.Args.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return NewRootCommand().ExecuteContext(ctx)
}

func loadConfig(v *viper.Viper, cfgFile string) error {
	v.SetEnvPrefix("AHLIWARIS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", cfgFile, err)
		}
		return nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}
	v.AddConfigPath(filepath.Join(home, ".ahliwaris"))
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("read config: %w", err)
		}
	}
	return nil
}
