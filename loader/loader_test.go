package loader

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nathoo/rulecore/engine/dice"
	"github.com/nathoo/rulecore/engine/rules"
	"github.com/nathoo/rulecore/engine/store"
	"github.com/nathoo/rulecore/types"
)

// writeRules writes the given Lua sources into a fresh directory.
func writeRules(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, src := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(src), 0o644); err != nil {
			t.Fatalf("writing %s: %v", name, err)
		}
	}
	return dir
}

func testStore() *store.Store {
	st := store.New(dice.NewRoller(42))
	st.SetEntity(&types.Entity{
		ID: "brand", Name: "Brand", Kind: "character",
		Stats: map[string]int{"hp": 16, "level": 2},
		Props: map[string]any{"class": "fighter"},
	})
	st.SetEntity(&types.Entity{
		ID: "goblin", Name: "Goblin", Kind: "monster",
		Stats: map[string]int{"hp": 5},
	})
	st.SetItem(&types.Item{ID: "longsword", Name: "Longsword", Kind: "weapon"})
	return st
}

func TestLoad_Basic(t *testing.T) {
	dir := writeRules(t, map[string]string{
		"bless.lua": `
Chain "bless" {
	stop_on_failure = true,
}

Rule("bless", "sanctify") {
	priority = 10,
	roll = "1d1",
	success_at = 1,
	message = "{actor} is blessed",
	effects = {"blessed"},
	set_temp = { ["bless.active"] = true },
}

Rule("bless", "radiance") {
	priority = 20,
	requires = {"sanctify"},
	conditions = { TempIs("bless.active", true) },
	message = "the light spreads",
	damage = "2d4",
}
`,
	})

	chains, err := Load(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	chain, ok := chains["bless"]
	if !ok {
		t.Fatalf("expected bless chain, got %v", chains)
	}
	if chain.Len() != 2 {
		t.Fatalf("expected 2 rules, got %d", chain.Len())
	}

	st := testStore()
	cmd := rules.NewCommand("bless", "brand", nil, nil)
	res := chain.Execute(st, cmd)

	if !res.Success {
		t.Fatalf("expected success, got %q", res.Message)
	}
	if res.Message != "Brand is blessed; the light spreads" {
		t.Errorf("unexpected message %q", res.Message)
	}
	if len(res.Effects) != 1 || res.Effects[0] != "blessed" {
		t.Errorf("unexpected effects %v", res.Effects)
	}
	if len(res.Damage) != 1 || res.Damage[0] < 2 || res.Damage[0] > 8 {
		t.Errorf("2d4 damage out of range: %v", res.Damage)
	}
	// clear_temporary defaults to off.
	if _, ok := st.Temp("bless.active"); !ok {
		t.Error("temporary entry should survive the run")
	}
}

func TestLoad_ChainConfig(t *testing.T) {
	dir := writeRules(t, map[string]string{
		"scry.lua": `
Chain "scry" {
	clear_temporary = true,
}

Rule("scry", "peer") {
	priority = 10,
	set_temp = { vision = "cloudy" },
	message = "the mists part",
}
`,
	})

	chains, err := Load(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	st := testStore()
	res := chains["scry"].Execute(st, rules.NewCommand("scry", "brand", nil, nil))
	if !res.Success {
		t.Fatalf("expected success, got %q", res.Message)
	}
	if _, ok := st.Temp("vision"); ok {
		t.Error("clear_temporary should wipe the namespace after the run")
	}
}

func TestLoad_FailedThreshold(t *testing.T) {
	dir := writeRules(t, map[string]string{
		"doom.lua": `
Chain "doom" {}

Rule("doom", "impossible") {
	priority = 10,
	roll = "1d1",
	success_at = 2,
	fail_message = "no luck",
	critical = true,
}
`,
	})

	chains, err := Load(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	res := chains["doom"].Execute(testStore(), rules.NewCommand("doom", "brand", nil, nil))
	if res.Success {
		t.Error("a 1d1 roll can never reach 2")
	}
	if !res.Critical {
		t.Error("expected critical failure")
	}
	if res.Message != "no luck" {
		t.Errorf("unexpected message %q", res.Message)
	}
	if roll := res.Data["roll"]; roll != 1 {
		t.Errorf("roll = %v, want 1", roll)
	}
}

func TestLoad_SuccessUnder(t *testing.T) {
	dir := writeRules(t, map[string]string{
		"sneak.lua": `
Chain "sneak" {}

Rule("sneak", "quiet_step") {
	priority = 10,
	roll = "1d1",
	success_under = 1,
	message = "unheard",
}
`,
	})

	chains, err := Load(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	res := chains["sneak"].Execute(testStore(), rules.NewCommand("sneak", "brand", nil, nil))
	if !res.Success {
		t.Errorf("a 1d1 roll is always under or at 1, got %q", res.Message)
	}
}

func TestLoad_StopChain(t *testing.T) {
	dir := writeRules(t, map[string]string{
		"ward.lua": `
Chain "ward" {}

Rule("ward", "absolute") {
	priority = 10,
	message = "the ward holds",
	stop_chain = true,
}

Rule("ward", "never_reached") {
	priority = 20,
	message = "should not appear",
}
`,
	})

	chains, err := Load(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	res := chains["ward"].Execute(testStore(), rules.NewCommand("ward", "brand", nil, nil))
	if !res.StoppedEarly {
		t.Error("expected StoppedEarly")
	}
	if len(res.Results) != 1 {
		t.Errorf("expected 1 result, got %d", len(res.Results))
	}
}

func TestLoad_Conditions(t *testing.T) {
	dir := writeRules(t, map[string]string{
		"cond.lua": `
Chain "cond" {}

Rule("cond", "gated") {
	priority = 10,
	conditions = {
		Exists("actor"),
		StatGt("actor", "hp", 10),
		StatLt("target", "hp", 10),
		PropIs("actor", "class", "fighter"),
		HasItem("longsword"),
		Not(TempSet("blocked")),
	},
	message = "all clear",
}
`,
	})

	chains, err := Load(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rule := chains["cond"].Rules()[0]

	st := testStore()
	cmd := rules.NewCommand("cond", "brand", []string{"goblin"}, nil)
	if !rule.CanApply(st, cmd) {
		t.Fatal("all conditions hold; rule should apply")
	}

	// Each knob flipped in turn shuts the gate.
	st.SetTemp("blocked", true)
	if rule.CanApply(st, cmd) {
		t.Error("Not(TempSet) should fail once the entry exists")
	}
	st.ClearTemp()

	if rule.CanApply(st, rules.NewCommand("cond", "ghost", []string{"goblin"}, nil)) {
		t.Error("Exists should fail for a missing actor")
	}

	st.RemoveItem("longsword")
	if rule.CanApply(st, cmd) {
		t.Error("HasItem should fail once the item is gone")
	}
}

func TestLoad_MultipleFilesInOrder(t *testing.T) {
	// Chains may be declared in one file and populated from another;
	// files execute in sorted order.
	dir := writeRules(t, map[string]string{
		"01_chains.lua": `Chain "quest" {}`,
		"02_rules.lua": `
Rule("quest", "first") { priority = 10, message = "one" }
Rule("quest", "second") { priority = 10, message = "two" }
`,
	})

	chains, err := Load(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	res := chains["quest"].Execute(testStore(), rules.NewCommand("quest", "brand", nil, nil))
	if res.Message != "one; two" {
		t.Errorf("source order should break the priority tie, got %q", res.Message)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		wantErr string
	}{
		{
			"undeclared chain",
			`Rule("phantom", "lost") { priority = 10 }`,
			"undeclared chain",
		},
		{
			"duplicate chain",
			`Chain "twice" {}
Chain "twice" {}`,
			"declared twice",
		},
		{
			"conflicting thresholds",
			`Chain "bad" {}
Rule("bad", "confused") { priority = 10, roll = "1d6", success_at = 3, success_under = 3 }`,
			"mutually exclusive",
		},
		{
			"threshold without roll",
			`Chain "bad" {}
Rule("bad", "rollless") { priority = 10, success_at = 3 }`,
			"requires a roll",
		},
		{
			"invalid roll expression",
			`Chain "bad" {}
Rule("bad", "gibberish") { priority = 10, roll = "banana" }`,
			"dice expression",
		},
		{
			"invalid damage expression",
			`Chain "bad" {}
Rule("bad", "hurty") { priority = 10, damage = "0d6" }`,
			"dice expression",
		},
		{
			"unknown prerequisite",
			`Chain "bad" {}
Rule("bad", "dependent") { priority = 10, requires = {"nonexistent"} }`,
			"requires unknown rule",
		},
		{
			"empty chain",
			`Chain "hollow" {}`,
			"chain has no rules",
		},
		{
			"duplicate rule names",
			`Chain "bad" {}
Rule("bad", "twin") { priority = 10 }
Rule("bad", "twin") { priority = 20 }`,
			"duplicate rule name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := writeRules(t, map[string]string{"rules.lua": tt.src})
			_, err := Load(dir)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q should contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_Sandbox(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"os is unavailable", `Chain "x" {}
local _ = os.exit()`},
		{"io is unavailable", `Chain "x" {}
local _ = io.open("/etc/passwd")`},
		{"load is removed", `Chain "x" {}
load("return 1")()`},
		{"math.random is removed", `Chain "x" {}
local _ = math.random(6)`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := writeRules(t, map[string]string{"rules.lua": tt.src})
			if _, err := Load(dir); err == nil {
				t.Error("expected sandbox violation to fail the load")
			}
		})
	}
}

func TestLoad_NoFiles(t *testing.T) {
	if _, err := Load(t.TempDir()); err == nil || !strings.Contains(err.Error(), "no .lua files") {
		t.Errorf("expected no-files error, got %v", err)
	}
}

func TestLoad_MissingDir(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("expected error for missing directory")
	}
}
