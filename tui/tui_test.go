package tui

import (
	"strings"
	"testing"

	"github.com/nathoo/rulecore/engine"
	"github.com/nathoo/rulecore/engine/dice"
	"github.com/nathoo/rulecore/engine/store"
	"github.com/nathoo/rulecore/rulebook"
	"github.com/nathoo/rulecore/types"
)

func testModel(t *testing.T) Model {
	t.Helper()
	eng := engine.New()
	if err := eng.RegisterChains(rulebook.Chains()); err != nil {
		t.Fatalf("register chains: %v", err)
	}
	st := store.New(dice.NewRoller(42))
	rulebook.Populate(st)
	return New(eng, st)
}

func TestClassifyLine(t *testing.T) {
	tests := []struct {
		line string
		want lineKind
	}{
		{"[trace] 01H... attack in 12µs", kindTrace},
		{"[Metrics reset.]", kindSystem},
		{"  * slain:goblin", kindEffect},
		{"(critical failure)", kindCritical},
		{"(failed)", kindFailure},
		{"Brand hits Goblin (17 vs AC 12)", kindMessage},
		{"", kindMessage},
	}
	for _, tt := range tests {
		got := classifyLine(tt.line)
		if got != tt.want {
			t.Errorf("classifyLine(%q) = %v, want %v", tt.line, got, tt.want)
		}
	}
}

func TestWordWrap(t *testing.T) {
	tests := []struct {
		text  string
		width int
		want  string
	}{
		{"short", 80, "short"},
		{"hello world", 5, "hello\nworld"},
		{"Brand falls thirty feet and lands hard on the flagstones below.", 30,
			"Brand falls thirty feet and\nlands hard on the flagstones\nbelow."},
		{"", 80, ""},
		{"one", 80, "one"},
		{"a b c d e", 3, "a b\nc d\ne"},
	}
	for _, tt := range tests {
		got := wordWrap(tt.text, tt.width)
		if got != tt.want {
			t.Errorf("wordWrap(%q, %d) =\n  %q\nwant:\n  %q", tt.text, tt.width, got, tt.want)
		}
	}
}

func TestFormatResult(t *testing.T) {
	m := testModel(t)

	res := types.CommandResult{
		Command: rulebook.CmdAttack,
		ChainResult: types.ChainResult{
			Success: false,
			Message: "Brand misses Goblin (8 vs AC 12)",
		},
	}
	lines := m.formatResult(res)
	if len(lines) != 2 || lines[1] != "(failed)" {
		t.Errorf("unexpected lines %v", lines)
	}

	res.ChainResult.Critical = true
	res.ChainResult.Effects = []string{"slain:brand"}
	lines = m.formatResult(res)
	if len(lines) != 3 {
		t.Fatalf("unexpected lines %v", lines)
	}
	if lines[1] != "(critical failure)" {
		t.Errorf("expected critical marker, got %q", lines[1])
	}
	if lines[2] != "  * slain:brand" {
		t.Errorf("expected effect line, got %q", lines[2])
	}
}

func TestFormatResult_Trace(t *testing.T) {
	m := testModel(t)
	m.trace = true

	res := types.CommandResult{
		ExecutionID: "01TEST",
		Command:     rulebook.CmdAttack,
		ChainResult: types.ChainResult{
			Success: true,
			Message: "Brand hits Goblin",
			Results: []types.RuleResult{
				{Rule: "actor_can_act", Success: true},
				{Rule: "roll_to_hit", Success: true, Message: "Brand hits Goblin"},
			},
			StoppedEarly: true,
		},
	}

	lines := m.formatResult(res)
	joined := strings.Join(lines, "\n")
	if !strings.Contains(joined, "[trace] 01TEST attack") {
		t.Errorf("missing trace header in %q", joined)
	}
	if !strings.Contains(joined, "roll_to_hit") {
		t.Errorf("missing per-rule trace in %q", joined)
	}
	if !strings.Contains(joined, "chain stopped early") {
		t.Errorf("missing early-stop marker in %q", joined)
	}
}

func TestResolve(t *testing.T) {
	m := testModel(t)

	lines := m.resolve("fall brand 10")
	if len(lines) == 0 || !strings.Contains(lines[0], "Brand falls 10 feet") {
		t.Errorf("unexpected output %v", lines)
	}

	lines = m.resolve("dance")
	if len(lines) != 1 || !strings.Contains(lines[0], "unknown command") {
		t.Errorf("unexpected output %v", lines)
	}

	lines = m.resolve("attack brand dragon")
	if len(lines) != 1 || !strings.Contains(lines[0], "not all entities exist") {
		t.Errorf("unexpected output %v", lines)
	}
}

func TestHandleMeta_Quit(t *testing.T) {
	m := testModel(t)

	if _, quit := m.handleMeta("/quit"); !quit {
		t.Error("expected quit=true for /quit")
	}
	if _, quit := m.handleMeta("/exit"); !quit {
		t.Error("expected quit=true for /exit")
	}
}

func TestHandleMeta_Help(t *testing.T) {
	m := testModel(t)

	output, quit := m.handleMeta("/help")
	if quit {
		t.Error("help should not quit")
	}
	joined := strings.Join(output, "\n")
	for _, expected := range []string{"/metrics", "/roster", "attack", "again (g)"} {
		if !strings.Contains(joined, expected) {
			t.Errorf("expected %q in help output", expected)
		}
	}
}

func TestHandleMeta_Metrics(t *testing.T) {
	m := testModel(t)

	if lines := m.resolve("fall brand 10"); len(lines) == 0 {
		t.Fatal("expected resolution output")
	}

	output, _ := m.handleMeta("/metrics")
	joined := strings.Join(output, "\n")
	if !strings.Contains(joined, "Processed: 1") {
		t.Errorf("expected processed count in %q", joined)
	}
	if !strings.Contains(joined, "falling_damage: 1") {
		t.Errorf("expected per-type count in %q", joined)
	}
}

func TestHandleMeta_Roster(t *testing.T) {
	m := testModel(t)

	output, _ := m.handleMeta("/roster")
	joined := strings.Join(output, "\n")
	for _, expected := range []string{"brand (character, alive)", "wight (monster, alive)"} {
		if !strings.Contains(joined, expected) {
			t.Errorf("expected %q in roster output %q", expected, joined)
		}
	}
}

func TestHandleMeta_Trace(t *testing.T) {
	m := testModel(t)

	output, _ := m.handleMeta("/trace")
	if !m.trace {
		t.Error("expected trace to be enabled")
	}
	if len(output) == 0 || !strings.Contains(output[0], "enabled") {
		t.Errorf("expected enabled message, got %v", output)
	}

	output, _ = m.handleMeta("/trace")
	if m.trace {
		t.Error("expected trace to be disabled")
	}
	if len(output) == 0 || !strings.Contains(output[0], "disabled") {
		t.Errorf("expected disabled message, got %v", output)
	}
}

func TestHandleMeta_Unknown(t *testing.T) {
	m := testModel(t)

	output, quit := m.handleMeta("/bogus")
	if quit {
		t.Error("unknown command should not quit")
	}
	if len(output) == 0 || !strings.Contains(output[0], "Unknown command") {
		t.Errorf("expected unknown command message, got %v", output)
	}
}

func TestHandleMeta_Seed(t *testing.T) {
	m := testModel(t)

	output, _ := m.handleMeta("/seed")
	if len(output) == 0 || !strings.Contains(output[0], "Seed: 42") {
		t.Errorf("expected seed report, got %v", output)
	}
}

func TestHistory_PushAndPrev(t *testing.T) {
	h := NewHistory(5)
	h.Push("attack brand goblin")
	h.Push("morale goblin")
	h.Push("xp brand 100")

	prev, ok := h.Prev()
	if !ok || prev != "xp brand 100" {
		t.Errorf("expected newest entry, got %q (ok=%v)", prev, ok)
	}

	prev, ok = h.Prev()
	if !ok || prev != "morale goblin" {
		t.Errorf("expected 'morale goblin', got %q (ok=%v)", prev, ok)
	}

	prev, ok = h.Prev()
	if !ok || prev != "attack brand goblin" {
		t.Errorf("expected oldest entry, got %q (ok=%v)", prev, ok)
	}

	// At oldest, stays there.
	prev, ok = h.Prev()
	if !ok || prev != "attack brand goblin" {
		t.Errorf("expected oldest entry at boundary, got %q (ok=%v)", prev, ok)
	}
}

func TestHistory_Next(t *testing.T) {
	h := NewHistory(5)
	h.Push("attack brand goblin")
	h.Push("morale goblin")

	h.Prev()
	h.Prev()

	next, ok := h.Next()
	if !ok || next != "morale goblin" {
		t.Errorf("expected 'morale goblin', got %q (ok=%v)", next, ok)
	}

	if _, ok = h.Next(); ok {
		t.Error("expected false when past newest entry")
	}
}

func TestHistory_Empty(t *testing.T) {
	h := NewHistory(5)
	if _, ok := h.Prev(); ok {
		t.Error("expected false on empty history")
	}
	if _, ok := h.Next(); ok {
		t.Error("expected false on empty history")
	}
}

func TestHistory_MaxSize(t *testing.T) {
	h := NewHistory(2)
	h.Push("a")
	h.Push("b")
	h.Push("c") // "a" evicted

	prev, _ := h.Prev()
	if prev != "c" {
		t.Errorf("expected 'c', got %q", prev)
	}
	prev, _ = h.Prev()
	if prev != "b" {
		t.Errorf("expected 'b', got %q", prev)
	}
	// "a" is gone.
	prev, _ = h.Prev()
	if prev != "b" {
		t.Errorf("expected 'b' at boundary, got %q", prev)
	}
}

func TestHistory_NoDuplicates(t *testing.T) {
	h := NewHistory(5)
	h.Push("morale goblin")
	h.Push("morale goblin") // skipped
	h.Push("morale goblin") // skipped

	if h.Len() != 1 {
		t.Errorf("expected 1 entry, got %d", h.Len())
	}
}

func TestHistory_BlankInputIgnored(t *testing.T) {
	h := NewHistory(5)
	h.Push("")
	h.Push("   ")
	h.Push("morale goblin")

	if h.Len() != 1 {
		t.Errorf("expected 1 entry, got %d", h.Len())
	}
	if prev, _ := h.Prev(); prev != "morale goblin" {
		t.Errorf("expected 'morale goblin', got %q", prev)
	}
}

func TestHistory_ResetCursor(t *testing.T) {
	h := NewHistory(5)
	h.Push("attack brand goblin")
	h.Push("morale goblin")

	h.Prev()
	h.ResetCursor()

	prev, ok := h.Prev()
	if !ok || prev != "morale goblin" {
		t.Errorf("expected newest entry after reset, got %q", prev)
	}
}
