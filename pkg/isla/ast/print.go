package ast

import "fmt"

// Print renders a Spec back into ISLa concrete syntax (spec.md §6), for the
// isla parse command's "re-print from the AST" output and for the
// parse/print round-trip test of spec.md §8. The output always fully
// parenthesises binary connectives, so it need not reproduce the original
// source's precedence-driven omission of parentheses to round-trip
// correctly — only to reparse to an equivalent AST.
func Print(spec *Spec) string {
	out := ""

	if spec.HasConst {
		out += fmt.Sprintf("const %s : <%s> ; ", spec.ConstName, spec.ConstType)
	}

	return out + PrintFormula(spec.Formula)
}

// PrintFormula renders a single formula node back into ISLa concrete syntax.
func PrintFormula(f Formula) string {
	switch n := f.(type) {
	case *BoolLit:
		if n.Value {
			return "true"
		}

		return "false"
	case *Not:
		return "not " + PrintFormula(n.Sub)
	case *And:
		return printBinary("and", n.Left, n.Right)
	case *Or:
		return printBinary("or", n.Left, n.Right)
	case *Xor:
		return printBinary("xor", n.Left, n.Right)
	case *Implies:
		return printBinary("implies", n.Left, n.Right)
	case *Iff:
		return printBinary("iff", n.Left, n.Right)
	case *StructPred:
		return printPred(n.Name, n.Args)
	case *SemPred:
		return printPred(n.Name, n.Args)
	case *SmtAtom:
		return n.Expr.String()
	case *Forall:
		return printQuantifier("forall", n.Quantifier)
	case *Exists:
		return printQuantifier("exists", n.Quantifier)
	case *ForallInt:
		return fmt.Sprintf("forall int %s: %s", n.VarName, PrintFormula(n.Body))
	case *ExistsInt:
		return fmt.Sprintf("exists int %s: %s", n.VarName, PrintFormula(n.Body))
	default:
		return fmt.Sprintf("<unprintable formula %T>", f)
	}
}

func printBinary(op string, left, right Formula) string {
	return fmt.Sprintf("(%s %s %s)", PrintFormula(left), op, PrintFormula(right))
}

func printQuantifier(kw string, q Quantifier) string {
	out := fmt.Sprintf("%s <%s>", kw, q.VarType)

	if q.VarName != "" {
		out += " " + q.VarName
	}

	if q.Match != nil {
		out += fmt.Sprintf(" = %q", q.Match.String())
	}

	if q.InVar != "" {
		out += " in " + q.InVar
	}

	return out + ": " + PrintFormula(q.Body)
}

func printPred(name string, args []PredArg) string {
	out := name + "("

	for i, a := range args {
		if i != 0 {
			out += ", "
		}

		out += printArg(a)
	}

	return out + ")"
}

func printArg(a PredArg) string {
	switch a.Kind {
	case ArgVariable:
		return a.Variable
	case ArgNonterminalType:
		return "<" + a.Type + ">"
	case ArgXPath:
		return a.XPath.String()
	case ArgInt:
		return fmt.Sprintf("%d", a.Int)
	case ArgString:
		return fmt.Sprintf("%q", a.String)
	default:
		return "<unprintable arg>"
	}
}
