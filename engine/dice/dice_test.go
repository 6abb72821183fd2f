package dice

import "testing"

func TestRoller_Deterministic(t *testing.T) {
	r1 := NewRoller(42)
	r2 := NewRoller(42)

	for i := 0; i < 20; i++ {
		a := r1.Roll(6)
		b := r2.Roll(6)
		if a != b {
			t.Fatalf("roll %d: got %d and %d from same seed", i, a, b)
		}
	}
}

func TestRoller_Roll_Range(t *testing.T) {
	r := NewRoller(99)

	for i := 0; i < 1000; i++ {
		v := r.Roll(20)
		if v < 1 || v > 20 {
			t.Fatalf("roll out of range [1,20]: got %d", v)
		}
	}
}

func TestRoller_Roll_OneSided(t *testing.T) {
	r := NewRoller(1)

	for i := 0; i < 10; i++ {
		if v := r.Roll(1); v != 1 {
			t.Fatalf("1-sided die should always be 1, got %d", v)
		}
	}
}

func TestRoller_RollN_Range(t *testing.T) {
	r := NewRoller(7)

	for i := 0; i < 100; i++ {
		v := r.RollN(3, 6)
		if v < 3 || v > 18 {
			t.Fatalf("3d6 out of range [3,18]: got %d", v)
		}
	}
}

func TestRoller_WeightedSelect_Deterministic(t *testing.T) {
	r1 := NewRoller(42)
	r2 := NewRoller(42)
	weights := []int{70, 20, 10}

	for i := 0; i < 20; i++ {
		a := r1.WeightedSelect(weights)
		b := r2.WeightedSelect(weights)
		if a != b {
			t.Fatalf("selection %d: got %d and %d from same seed", i, a, b)
		}
	}
}

func TestRoller_WeightedSelect_Distribution(t *testing.T) {
	r := NewRoller(12345)
	weights := []int{70, 20, 10}
	counts := [3]int{}

	const trials = 10000
	for i := 0; i < trials; i++ {
		idx := r.WeightedSelect(weights)
		if idx < 0 || idx > 2 {
			t.Fatalf("index out of range: %d", idx)
		}
		counts[idx]++
	}

	// With 10k trials, expect roughly 70%/20%/10% ± some margin.
	if counts[0] < 6000 || counts[0] > 8000 {
		t.Errorf("expected ~7000 for weight 70, got %d", counts[0])
	}
	if counts[1] < 1000 || counts[1] > 3000 {
		t.Errorf("expected ~2000 for weight 20, got %d", counts[1])
	}
	if counts[2] < 200 || counts[2] > 1800 {
		t.Errorf("expected ~1000 for weight 10, got %d", counts[2])
	}
}

func TestRoller_Position_Tracks(t *testing.T) {
	r := NewRoller(42)

	if r.Position() != 0 {
		t.Fatalf("expected position 0, got %d", r.Position())
	}

	r.Roll(6)
	if r.Position() != 1 {
		t.Fatalf("expected position 1, got %d", r.Position())
	}

	r.WeightedSelect([]int{50, 50})
	if r.Position() != 2 {
		t.Fatalf("expected position 2, got %d", r.Position())
	}

	r.RollN(3, 6)
	if r.Position() != 5 {
		t.Fatalf("expected position 5, got %d", r.Position())
	}
}

func TestRestore_MatchesPosition(t *testing.T) {
	// Advance a roller to position 10 and record the next 5 rolls.
	r := NewRoller(42)
	for i := 0; i < 10; i++ {
		r.Roll(6)
	}

	var expected [5]int
	for i := range expected {
		expected[i] = r.Roll(6)
	}

	restored := Restore(42, 10)
	if restored.Position() != 10 {
		t.Fatalf("expected position 10, got %d", restored.Position())
	}

	for i, want := range expected {
		got := restored.Roll(6)
		if got != want {
			t.Fatalf("roll %d: expected %d, got %d", i, want, got)
		}
	}
}

func TestRoller_Seed(t *testing.T) {
	if got := NewRoller(1234).Seed(); got != 1234 {
		t.Errorf("Seed() = %d, want 1234", got)
	}
}

func TestNewSeed(t *testing.T) {
	if _, err := NewSeed(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    Expr
		wantErr bool
	}{
		{"2d6", Expr{Count: 2, Sides: 6}, false},
		{"d20", Expr{Count: 1, Sides: 20}, false},
		{"1d8+2", Expr{Count: 1, Sides: 8, Modifier: 2}, false},
		{"3d4-1", Expr{Count: 3, Sides: 4, Modifier: -1}, false},
		{" 2D6 ", Expr{Count: 2, Sides: 6}, false},
		{"5", Expr{Modifier: 5}, false},
		{"", Expr{}, true},
		{"2d", Expr{}, true},
		{"0d6", Expr{}, true},
		{"2d0", Expr{}, true},
		{"2d6+x", Expr{}, true},
		{"goblin", Expr{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestRollExpr(t *testing.T) {
	r := NewRoller(42)

	for i := 0; i < 100; i++ {
		v, err := r.RollExpr("2d6+1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if v < 3 || v > 13 {
			t.Fatalf("2d6+1 out of range [3,13]: got %d", v)
		}
	}

	// A bare constant rolls nothing.
	v, err := r.RollExpr("7")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 7 {
		t.Errorf("constant expression = %d, want 7", v)
	}

	if _, err := r.RollExpr("nonsense"); err == nil {
		t.Error("expected error for invalid expression")
	}
}
