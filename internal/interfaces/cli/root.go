// Package cli implements royalectl, the shop's maintenance command line.
package cli

import (
	"fmt"
	"slices"

	"github.com/royale/pos/internal/application/advisor"
	"github.com/royale/pos/internal/infrastructure/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// ValidFormats defines the allowed output formats
var ValidFormats = []string{"text", "json"}

// RootOptions holds global flags for all commands
type RootOptions struct {
	ConfigFile string
	Format     string
	Verbose    bool

	loadConfig func(path string) (*config.Config, error)
	generator  advisor.TextGenerator
	logger     *zap.Logger
}

// Option customizes the command tree, mostly for tests
type Option func(*RootOptions)

// WithConfigLoader replaces config.LoadFile
func WithConfigLoader(fn func(path string) (*config.Config, error)) Option {
	return func(o *RootOptions) {
		o.loadConfig = fn
	}
}

// WithGenerator replaces the hosted model used by advise
func WithGenerator(g advisor.TextGenerator) Option {
	return func(o *RootOptions) {
		o.generator = g
	}
}

// WithLogger replaces the stderr console logger
func WithLogger(l *zap.Logger) Option {
	return func(o *RootOptions) {
		o.logger = l
	}
}

// NewRootCommand creates the royalectl command tree
func NewRootCommand(version string, opts ...Option) *cobra.Command {
	ro := &RootOptions{loadConfig: config.LoadFile}
	for _, opt := range opts {
		opt(ro)
	}

	cmd := &cobra.Command{
		Use:     "royalectl",
		Short:   "Royale shop maintenance",
		Long:    "Manage the Royale till database: migrations, seeding, exports, stock reconciliation and advice.",
		Version: version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, ro.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", ro.Format, ValidFormats)
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&ro.ConfigFile, "config", "c", "", "config file (default: ./config.toml)")
	cmd.PersistentFlags().StringVar(&ro.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().BoolVarP(&ro.Verbose, "verbose", "v", false, "verbose output")

	cmd.AddCommand(NewMigrateCommand(ro))
	cmd.AddCommand(NewSeedCommand(ro))
	cmd.AddCommand(NewExportCommand(ro))
	cmd.AddCommand(NewReconcileCommand(ro))
	cmd.AddCommand(NewAdviseCommand(ro))
	cmd.AddCommand(NewProductsCommand(ro))

	return cmd
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}
