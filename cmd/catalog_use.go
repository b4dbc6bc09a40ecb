package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/zjrosen/multidispatch/internal/config"
)

var catalogUseCmd = &cobra.Command{
	Use:   "catalog:use <catalog.yaml>",
	Short: "Make a catalog file the default",
	Long: `Check that a catalog file parses, then store its path as catalog.path in the
config file in use (or .mdispatch/config.yaml). Comments in the config file
are kept.

Examples:
  mdispatch catalog:use ops.yaml
  mdispatch -c ~/.config/mdispatch/config.yaml catalog:use ~/ops.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		abs, err := filepath.Abs(args[0])
		if err != nil {
			return fmt.Errorf("resolving catalog path: %w", err)
		}
		if _, err := loadCatalog(abs); err != nil {
			return err
		}

		path := configFilePath()
		if err := config.SetCatalogPath(path, abs); err != nil {
			return err
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "catalog.path = %s (%s)\n", abs, path)
		return err
	},
}

func init() {
	rootCmd.AddCommand(catalogUseCmd)
}
