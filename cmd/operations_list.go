package cmd

import (
	"github.com/spf13/cobra"

	"github.com/zjrosen/multidispatch/internal/presentation"
)

var listOperation string

var operationsListCmd = &cobra.Command{
	Use:   "operations:list",
	Short: "List operations and their clauses",
	Long: `List every operation in the catalog with its clauses, in dispatch order, as JSON.

Examples:
  # List all operations
  mdispatch operations:list

  # A single operation
  mdispatch operations:list --operation fact
  mdispatch operations:list -o fact

  # Parse specific fields with jq
  mdispatch operations:list | jq '.[].name'
  mdispatch operations:list -o g | jq '.[0].clauses[].signature'`,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEngine(cfg)
		if err != nil {
			return err
		}
		defer e.Close()

		formatter := presentation.NewFormatter(cmd.OutOrStdout())
		dtos := presentation.FromRegistry(e.dispatcher.Registry(), listOperation)

		return formatter.FormatOperations(dtos)
	},
}

func init() {
	operationsListCmd.Flags().StringVarP(&listOperation, "operation", "o", "", "Only list this operation")
	rootCmd.AddCommand(operationsListCmd)
}
