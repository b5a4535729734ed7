package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "validate [catalog.yaml]",
	Short: "Check a catalog file against the built-in workflows",
	Long: `Loads a catalog (or the embedded default when no file is given), runs its
structural checks, and confirms every workflow step can draw a menu from it.`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := ""
		if len(args) > 0 {
			path = args[0]
		}
		strict, _ := cmd.Flags().GetBool("strict")
		v := &CatalogValidator{Strict: strict}
		if err := v.Run(cmd.OutOrStdout(), path); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Catalog is valid!")
		return nil
	},
}

func init() {
	rootCmd.Flags().Bool("strict", false, "Treat warnings as errors")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
		os.Exit(1)
	}
}
