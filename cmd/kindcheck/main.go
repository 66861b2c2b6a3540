package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"kindcheck/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "kindcheck",
	Short: "Kind checker and language tooling for .kd sources",
	Long:  `kindcheck analyzes higher-kinded type declarations, reports kind mismatches, and suggests fixes`,
}

func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(fixCmd)
	rootCmd.AddCommand(lspCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress output for files without diagnostics")
	rootCmd.PersistentFlags().Int("max-diagnostics", 0, "maximum number of diagnostics per file (0 = manifest or built-in default)")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
