package cmd

import (
	"github.com/spf13/cobra"

	"github.com/zjrosen/multidispatch/internal/catalog"
	"github.com/zjrosen/multidispatch/internal/presentation"
)

var invokeJSON bool

var invokeCmd = &cobra.Command{
	Use:   "invoke <operation> [args...]",
	Short: "Invoke an operation once",
	Long: `Invoke an operation from the catalog and print the result.

Arguments are decoded like YAML scalars: 3 is an int, 2.5 a float, true a
bool and anything else a string. Wrap a single character in single quotes
to pass a character. Quote a number to pass it as a string.

Flags go before the operation name. Everything after it is an argument, so
negative numbers need no escaping.

Examples:
  # Factorial from the built-in catalog
  mdispatch invoke fact 9

  # Equal arguments are added, others multiplied
  mdispatch invoke g 2 2
  mdispatch invoke g 2 5

  # Characters and strings
  mdispatch invoke answer "'y'"
  mdispatch invoke g '"a"' '"a"'

  # Negative numbers are arguments, not flags
  mdispatch invoke fact -1
  mdispatch invoke g -2.5 -2.5

  # JSON output
  mdispatch invoke --json fact 5 | jq '.result'`,
	Args: cobra.MinimumNArgs(1),
	RunE: runInvoke,
}

func runInvoke(cmd *cobra.Command, args []string) error {
	callArgs, err := catalog.ParseArgs(args[1:])
	if err != nil {
		return err
	}

	e, err := newEngine(cfg)
	if err != nil {
		return err
	}
	defer e.Close()

	result, err := e.dispatcher.Invoke(cmd.Context(), args[0], callArgs...)
	dto := presentation.FromResult(args[0], callArgs, result, err)

	formatter := presentation.NewFormatter(cmd.OutOrStdout())
	if invokeJSON {
		if ferr := formatter.FormatResult(dto); ferr != nil {
			return ferr
		}
		return err
	}
	if err != nil {
		return err
	}
	return formatter.WriteResult(dto)
}

func init() {
	invokeCmd.Flags().BoolVar(&invokeJSON, "json", false, "Print the result as JSON")
	invokeCmd.Flags().SetInterspersed(false)
	rootCmd.AddCommand(invokeCmd)
}
