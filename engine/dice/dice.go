// Package dice provides the deterministic random source for rule
// resolution. Rollers are seeded and position-tracked so any sequence of
// resolutions can be replayed exactly.
package dice

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
)

// Roller wraps math/rand.Rand with deterministic position tracking.
// Position increments with every roll, enabling replay from a snapshot.
type Roller struct {
	seed int64
	src  *rand.Rand
	pos  int64
}

// NewRoller creates a deterministic roller from a seed.
func NewRoller(seed int64) *Roller {
	return &Roller{
		seed: seed,
		src:  rand.New(rand.NewSource(seed)),
	}
}

// NewSeed generates a high-entropy seed using crypto/rand.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return int64(binary.LittleEndian.Uint64(b[:])), nil
}

// Roll returns a random integer in [1, sides].
func (r *Roller) Roll(sides int) int {
	if sides < 1 {
		sides = 1
	}
	r.pos++
	return r.src.Intn(sides) + 1
}

// RollN rolls n dice of the given size and returns the sum.
func (r *Roller) RollN(n, sides int) int {
	total := 0
	for i := 0; i < n; i++ {
		total += r.Roll(sides)
	}
	return total
}

// WeightedSelect returns an index chosen by weighted random selection.
// weights must be non-empty with all positive values.
func (r *Roller) WeightedSelect(weights []int) int {
	total := 0
	for _, w := range weights {
		total += w
	}
	r.pos++
	roll := r.src.Intn(total)
	cumulative := 0
	for i, w := range weights {
		cumulative += w
		if roll < cumulative {
			return i
		}
	}
	return len(weights) - 1
}

// Seed returns the seed the roller was created with.
func (r *Roller) Seed() int64 {
	return r.seed
}

// Position returns the number of rolls made since creation.
func (r *Roller) Position() int64 {
	return r.pos
}

// Restore creates a roller and advances it to the given position,
// reproducing the exact roller state for replay.
func Restore(seed int64, position int64) *Roller {
	r := NewRoller(seed)
	for i := int64(0); i < position; i++ {
		r.src.Int63()
	}
	r.pos = position
	return r
}

// Expr is a parsed dice expression such as "2d6+1".
type Expr struct {
	Count    int
	Sides    int
	Modifier int
}

// Parse parses a dice expression of the form "NdS", "NdS+M" or "NdS-M".
// A bare integer is treated as a constant modifier ("3" rolls nothing).
func Parse(s string) (Expr, error) {
	raw := strings.ToLower(strings.TrimSpace(s))
	if raw == "" {
		return Expr{}, fmt.Errorf("empty dice expression")
	}

	// Constant.
	if !strings.Contains(raw, "d") {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return Expr{}, fmt.Errorf("invalid dice expression %q", s)
		}
		return Expr{Modifier: n}, nil
	}

	var mod int
	body := raw
	if i := strings.IndexAny(raw, "+-"); i > 0 {
		m, err := strconv.Atoi(raw[i:])
		if err != nil {
			return Expr{}, fmt.Errorf("invalid modifier in dice expression %q", s)
		}
		mod = m
		body = raw[:i]
	}

	count, sidesStr, ok := strings.Cut(body, "d")
	if !ok {
		return Expr{}, fmt.Errorf("invalid dice expression %q", s)
	}
	n := 1
	if count != "" {
		v, err := strconv.Atoi(count)
		if err != nil || v < 1 {
			return Expr{}, fmt.Errorf("invalid die count in dice expression %q", s)
		}
		n = v
	}
	sides, err := strconv.Atoi(sidesStr)
	if err != nil || sides < 1 {
		return Expr{}, fmt.Errorf("invalid die size in dice expression %q", s)
	}

	return Expr{Count: n, Sides: sides, Modifier: mod}, nil
}

// RollExpr parses and rolls a dice expression.
func (r *Roller) RollExpr(s string) (int, error) {
	e, err := Parse(s)
	if err != nil {
		return 0, err
	}
	return r.RollN(e.Count, e.Sides) + e.Modifier, nil
}
