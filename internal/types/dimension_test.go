package types

import "testing"

func TestNewArithIdentities(t *testing.T) {
	cases := []struct {
		name string
		got  Dimension
		want Dimension
	}{
		{"x+0", NewArith(OpAdd, Sym("x"), Concrete(0)), Sym("x")},
		{"0+x", NewArith(OpAdd, Concrete(0), Sym("x")), Sym("x")},
		{"x*1", NewArith(OpMul, Sym("x"), Concrete(1)), Sym("x")},
		{"x*0", NewArith(OpMul, Sym("x"), Concrete(0)), Concrete(0)},
		{"const fold", NewArith(OpAdd, Concrete(2), Concrete(3)), Concrete(5)},
		{"x/1", NewArith(OpDiv, Sym("x"), Concrete(1)), Sym("x")},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if !c.got.Equal(c.want) {
				t.Fatalf("got %s, want %s", c.got.String(), c.want.String())
			}
		})
	}
}

func TestSubstituteSymbols(t *testing.T) {
	d := NewArith(OpMul, Sym("n"), Concrete(3))
	resolved := d.SubstituteSymbols(map[string]int64{"n": 4})
	if !resolved.Equal(Concrete(12)) {
		t.Fatalf("expected 12, got %s", resolved.String())
	}
}

func TestIsUnresolved(t *testing.T) {
	if Concrete(3).IsUnresolved() {
		t.Fatal("concrete dim should be resolved")
	}
	if !Wildcard().IsUnresolved() {
		t.Fatal("wildcard should be unresolved")
	}
	nested := NewArith(OpAdd, Wildcard(), Concrete(1))
	if !nested.IsUnresolved() {
		t.Fatal("arith over wildcard should be unresolved")
	}
}

func TestShapeElementCount(t *testing.T) {
	s := Shape{Concrete(2), Concrete(3), Concrete(4)}
	if c := s.ElementCount(); !c.Equal(Concrete(24)) {
		t.Fatalf("expected 24, got %s", c.String())
	}
	if (Shape{}).ElementCount().Value != 1 {
		t.Fatal("scalar shape should have element count 1")
	}
}
