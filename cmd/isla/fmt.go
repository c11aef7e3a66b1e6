package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/MaGaroo/isla/pkg/isla"
	"github.com/MaGaroo/isla/pkg/source"
)

var fmtCmd = &cobra.Command{
	Use:   "fmt",
	Short: "Parse and re-print a grammar file.",
	Long: `Parse a BNF grammar file and print it back out in canonical BNF
concrete syntax (spec.md §6), one rule per line in order of first
definition — a round-trip check exercising C1's String() method.`,
	Run: func(cmd *cobra.Command, args []string) {
		configureLogging(cmd)

		grammarFile := getString(cmd, "grammar")

		gf := source.NewFile(grammarFile, readFile(grammarFile))

		g, gerr := isla.ParseGrammar(gf, "start")
		if gerr != nil {
			fmt.Println(gerr.Error())
			os.Exit(2)
		}

		fmt.Print(g.String())
	},
}

func init() {
	fmtCmd.Flags().String("grammar", "", "grammar file (BNF concrete syntax)")
	_ = fmtCmd.MarkFlagRequired("grammar")
}
