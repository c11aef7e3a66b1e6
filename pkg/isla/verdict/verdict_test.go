package verdict

import "testing"

func TestAndTable(t *testing.T) {
	cases := []struct {
		a, b, want Verdict
	}{
		{Sat, Sat, Sat},
		{Sat, Unsat, Unsat},
		{Unsat, Sat, Unsat},
		{Unsat, Unsat, Unsat},
		{Sat, Undef, Undef},
		{Undef, Unsat, Unsat},
		{Undef, Undef, Undef},
	}

	for _, c := range cases {
		if got := c.a.And(c.b); got != c.want {
			t.Errorf("%s.And(%s) = %s, want %s", c.a, c.b, got, c.want)
		}
	}
}

func TestOrTable(t *testing.T) {
	cases := []struct {
		a, b, want Verdict
	}{
		{Sat, Sat, Sat},
		{Sat, Unsat, Sat},
		{Unsat, Unsat, Unsat},
		{Unsat, Undef, Undef},
		{Sat, Undef, Sat},
		{Undef, Undef, Undef},
	}

	for _, c := range cases {
		if got := c.a.Or(c.b); got != c.want {
			t.Errorf("%s.Or(%s) = %s, want %s", c.a, c.b, got, c.want)
		}
	}
}

func TestNotAndImpliesAndIff(t *testing.T) {
	if Sat.Not() != Unsat || Unsat.Not() != Sat || Undef.Not() != Undef {
		t.Fatalf("Not table wrong")
	}

	if Sat.Implies(Unsat) != Unsat {
		t.Errorf("SAT => UNSAT should be UNSAT")
	}

	if Unsat.Implies(Unsat) != Sat {
		t.Errorf("UNSAT => UNSAT should be SAT")
	}

	if Sat.Iff(Sat) != Sat || Sat.Iff(Unsat) != Unsat || Sat.Iff(Undef) != Undef {
		t.Errorf("Iff table wrong")
	}
}
