//go:build !cgo

// Package z3 without cgo available: the real Z3 binding cannot be
// constructed, mirroring the upstream z3-go package's own !cgo stub. SmtOracle
// still implements smt.Oracle here, but every query reports Undef — a
// degenerate but valid oracle (spec.md's Non-goals note an oracle adapter
// "is a drop-in smt.Oracle, interchangeable with a stub"), so cmd/isla still
// builds and runs (with every SMT atom UNDEF) when cgo/Z3 is unavailable.
package z3

import (
	log "github.com/sirupsen/logrus"

	"github.com/MaGaroo/isla/pkg/isla/smt"
	"github.com/MaGaroo/isla/pkg/isla/verdict"
	"github.com/MaGaroo/isla/pkg/sexp"
)

// SmtOracle is a placeholder in non-cgo builds: every Check call returns
// Undef.
type SmtOracle struct{}

var _ smt.Oracle = (*SmtOracle)(nil)

// New logs that no Z3 binding is available and returns a placeholder oracle.
func New(uint) *SmtOracle {
	log.Warn("pkg/oracle/z3 built without cgo: every SMT atom will evaluate to UNDEF")
	return &SmtOracle{}
}

// Close is a no-op in the stub build.
func (o *SmtOracle) Close() {}

// Check always returns Undef in the stub build.
func (o *SmtOracle) Check(sexp.SExp, smt.Env) verdict.Verdict { return verdict.Undef }
