package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/MaGaroo/isla/pkg/isla"
	"github.com/MaGaroo/isla/pkg/isla/predicate"
	"github.com/MaGaroo/isla/pkg/source"
)

var parseCmd = &cobra.Command{
	Use:   "parse",
	Short: "Parse and well-formedness-check a formula.",
	Long: `Parse a formula against a grammar and run the well-formedness pass
(C6). On success, print the formula re-printed from the AST; on failure,
print the structured syntax error with its source position.`,
	Run: func(cmd *cobra.Command, args []string) {
		configureLogging(cmd)

		grammarFile := getString(cmd, "grammar")
		formulaFile := getString(cmd, "formula")

		gf := source.NewFile(grammarFile, readFile(grammarFile))

		g, gerr := isla.ParseGrammar(gf, "start")
		if gerr != nil {
			fmt.Println(gerr.Error())
			os.Exit(2)
		}

		ff := source.NewFile(formulaFile, readFile(formulaFile))

		formula, ferr := isla.ParseFormula(ff, g, predicate.SemanticRegistry{})
		if ferr != nil {
			fmt.Println(ferr.Error())
			os.Exit(1)
		}

		fmt.Println(formula.String())
	},
}

func init() {
	parseCmd.Flags().String("grammar", "", "grammar file (BNF concrete syntax)")
	parseCmd.Flags().String("formula", "", "formula file (ISLa concrete syntax)")
	_ = parseCmd.MarkFlagRequired("grammar")
	_ = parseCmd.MarkFlagRequired("formula")
}
