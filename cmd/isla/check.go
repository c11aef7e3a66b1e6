package main

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/MaGaroo/isla/pkg/isla"
	"github.com/MaGaroo/isla/pkg/isla/predicate"
	"github.com/MaGaroo/isla/pkg/isla/verdict"
	"github.com/MaGaroo/isla/pkg/oracle/z3"
	"github.com/MaGaroo/isla/pkg/source"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] INPUT",
	Short: "Check a derivation tree against a formula.",
	Long: `Parse the grammar and formula, derive a tree from INPUT (per the
tree-input notation of SPEC_FULL.md §6.1), evaluate the formula against it,
and print SAT, UNSAT, or UNDEF. Exits 0 on SAT, 1 on UNSAT, 2 on UNDEF or
error.`,
	Run: func(cmd *cobra.Command, args []string) {
		configureLogging(cmd)

		if len(args) != 1 {
			fmt.Println(cmd.UsageString())
			os.Exit(2)
		}

		grammarFile := getString(cmd, "grammar")
		formulaFile := getString(cmd, "formula")
		startOverride := getString(cmd, "const")
		timeout := getUint(cmd, "timeout")

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
			os.Exit(2)
		}

		startType := g.StartSymbol()
		if constType := formula.ConstType(); constType != "" {
			startType = constType
		} else if startOverride != "" {
			startType = startOverride
		}

		top, err := parseTreeInput(g, startType, args[0])
		if err != nil {
			log.WithError(err).Error("could not derive a tree from INPUT")
			fmt.Println(err)
			os.Exit(2)
		}

		var oracle = z3.New(timeout)
		defer oracle.Close()

		v, err := isla.Check(formula, top, oracle, predicate.SemanticRegistry{})
		if err != nil {
			fmt.Println(err)
			os.Exit(2)
		}

		fmt.Println(v)

		switch v {
		case verdict.Sat:
			os.Exit(0)
		case verdict.Unsat:
			os.Exit(1)
		default:
			os.Exit(2)
		}
	},
}

func init() {
	checkCmd.Flags().String("grammar", "", "grammar file (BNF concrete syntax)")
	checkCmd.Flags().String("formula", "", "formula file (ISLa concrete syntax)")
	checkCmd.Flags().String("const", "", "nonterminal type to derive INPUT as, when the formula declares no const")
	checkCmd.Flags().Uint("timeout", 2000, "Z3 oracle timeout in milliseconds (0 disables)")
	_ = checkCmd.MarkFlagRequired("grammar")
	_ = checkCmd.MarkFlagRequired("formula")
}

func getUint(cmd *cobra.Command, flag string) uint {
	r, err := cmd.Flags().GetUint(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}
