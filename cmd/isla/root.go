// Package main implements the isla CLI: a thin cobra-based batch frontend
// exercising the ISLa core (pkg/isla and its subpackages) end to end, per
// SPEC_FULL.md §6's additional CLI surface. None of the language core's
// packages import this one. Besides the public pkg/isla API, cmd/isla uses
// pkg/source for its input files, pkg/isla/predicate and pkg/isla/verdict
// in the parse and check commands, pkg/oracle/z3 as the check command's
// oracle, and pkg/grammar, pkg/sexp and pkg/tree to read the tree input.
package main

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// rootCmd is the base command when isla is called without a subcommand.
var rootCmd = &cobra.Command{
	Use:   "isla",
	Short: "A checker for the ISLa input specification language.",
	Long: `isla parses ISLa grammars and formulas and checks a derivation tree
against a formula, per the three-valued SAT / UNSAT / UNDEF verdict of the
language core.`,
}

// Execute adds all child commands to rootCmd and runs it. Called once by
// main.main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "increase logging verbosity")
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(fmtCmd)
}

// getFlag reads a required bool flag, exiting with a usage-style error if it
// is somehow missing (which would be a programming error, not user input).
func getFlag(cmd *cobra.Command, flag string) bool {
	r, err := cmd.Flags().GetBool(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

func getString(cmd *cobra.Command, flag string) string {
	r, err := cmd.Flags().GetString(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

// configureLogging raises the package-level logrus level to Debug when
// --verbose was given, mirroring the teacher's "log.SetLevel(log.DebugLevel)
// on the verbose flag" idiom.
func configureLogging(cmd *cobra.Command) {
	if getFlag(cmd, "verbose") {
		log.SetLevel(log.DebugLevel)
	}
}

// readFile reads a file from disk or exits with a diagnostic, matching the
// teacher's readTraceFile/readSchemaFile "read-or-exit(2)" idiom.
func readFile(path string) []byte {
	bytes, err := os.ReadFile(path)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return bytes
}
