package profile

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestComputeBadgeProgress_EmptySkillSet(t *testing.T) {
	badge := Badge{Name: "Empty"}
	if got := computeBadgeProgress(badge, []TestedSkill{{Skill: "Go", Level: LevelHard}}); got != 0 {
		t.Fatalf("expected 0 progress for empty skill set, got %v", got)
	}
	if level := deriveBadgeLevel(badge, 0); level != TierBronze {
		t.Fatalf("expected Bronze for empty skill set, got %s", level)
	}
}

func TestComputeBadgeProgress_AllSkillsHard(t *testing.T) {
	badge := Badge{Name: "Backend", Skills: []string{"Go", "SQL"}}
	tested := []TestedSkill{
		{Skill: "Go", Level: LevelHard},
		{Skill: "SQL", Level: LevelHard},
	}

	progress := computeBadgeProgress(badge, tested)
	if progress != 100 {
		t.Fatalf("expected exactly 100, got %v", progress)
	}
	if level := deriveBadgeLevel(badge, progress); level != TierPlatinum {
		t.Fatalf("expected Platinum, got %s", level)
	}
}

func TestComputeBadgeProgress_MixedLevels(t *testing.T) {
	badge := Badge{Name: "Fullstack", Skills: []string{"Go", "SQL", "React"}}
	tested := []TestedSkill{
		{Skill: "Go", Level: LevelHard},
		{Skill: "SQL", Level: LevelMedium},
	}

	progress := computeBadgeProgress(badge, tested)
	want := (100.0/3.0)*1.0 + (100.0/3.0)*0.6
	if !almostEqual(progress, want) {
		t.Fatalf("expected %v, got %v", want, progress)
	}
	if level := deriveBadgeLevel(badge, progress); level != TierSilver {
		t.Fatalf("expected Silver at %.2f%%, got %s", progress, level)
	}
}

func TestComputeBadgeProgress_CaseInsensitiveSkillMatch(t *testing.T) {
	badge := Badge{Name: "Lang", Skills: []string{"  python "}}
	tested := []TestedSkill{{Skill: "Python", Level: LevelHard}}

	if progress := computeBadgeProgress(badge, tested); progress != 100 {
		t.Fatalf("expected trimmed case-folded match, got %v", progress)
	}
}

func TestLevelWeight_Classification(t *testing.T) {
	cases := []struct {
		level string
		want  float64
	}{
		{"hard", 1.0},
		{"Expert", 1.0},
		{"professional", 1.0},
		{"medium", 0.6},
		{"moderate", 0.6},
		{"easy", 0.3},
		{"novice", 0.3},
		// Substring fallback for level strings outside the exact sets.
		{"super-hard", 1.0},
		{"advancedish", 1.0},
		{"intermediary", 0.6},
		{"basics", 0.3},
		// Non-empty but unclassifiable defaults to medium weight.
		{"totally-unknown-value", 0.6},
		// Empty level contributes nothing.
		{"", 0},
	}

	for _, tc := range cases {
		if got := levelWeight(tc.level); got != tc.want {
			t.Errorf("levelWeight(%q) = %v, want %v", tc.level, got, tc.want)
		}
	}
}

func TestDeriveBadgeLevel_Thresholds(t *testing.T) {
	badge := Badge{Name: "B", Skills: []string{"a"}}
	cases := []struct {
		progress float64
		want     string
	}{
		{0, TierBronze},
		{1, TierBronze},
		{39.9, TierBronze},
		{40, TierSilver},
		{69.9, TierSilver},
		{70, TierGold},
		{99.9, TierGold},
		{100, TierPlatinum},
	}
	for _, tc := range cases {
		if got := deriveBadgeLevel(badge, tc.progress); got != tc.want {
			t.Errorf("deriveBadgeLevel(%v) = %s, want %s", tc.progress, got, tc.want)
		}
	}

	// 100% on a zero-skill badge is not Platinum; the empty set can never
	// reach full mastery.
	if got := deriveBadgeLevel(Badge{Name: "none"}, 100); got != TierGold {
		t.Errorf("expected Gold for empty-skills badge at 100, got %s", got)
	}
}

func TestNormalizeLevel(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"easy", LevelEasy},
		{"Medium", LevelMedium},
		{"HARD", LevelHard},
		{"Beginner", LevelEasy},
		{"Intermediate", LevelMedium},
		{"Advanced", LevelHard},
		{"Expert", LevelHard},
		{"totally-unknown-value", LevelMedium},
	}
	for _, tc := range cases {
		if got := NormalizeLevel(tc.in); got != tc.want {
			t.Errorf("NormalizeLevel(%q) = %s, want %s", tc.in, got, tc.want)
		}
	}
}

func TestMergeBadges_UnionsSkillsOnNameMatch(t *testing.T) {
	existing := []Badge{{Name: "X", Skills: []string{"b", "c"}, Level: TierBronze}}
	incoming := []Badge{{Name: "X", Skills: []string{"a", "b"}}}

	merged := mergeBadges(existing, incoming)
	if len(merged) != 1 {
		t.Fatalf("expected 1 badge after merge, got %d", len(merged))
	}

	got := map[string]bool{}
	for _, s := range merged[0].Skills {
		got[s] = true
	}
	for _, want := range []string{"a", "b", "c"} {
		if !got[want] {
			t.Fatalf("expected merged skills to contain %q, got %v", want, merged[0].Skills)
		}
	}
	if len(merged[0].Skills) != 3 {
		t.Fatalf("expected deduplicated union of 3 skills, got %v", merged[0].Skills)
	}
}

func TestMergeBadges_AppendsNewNames(t *testing.T) {
	existing := []Badge{{Name: "X", Skills: []string{"a"}}}
	incoming := []Badge{{Name: "Y", Skills: []string{"b"}}}

	merged := mergeBadges(existing, incoming)
	if len(merged) != 2 {
		t.Fatalf("expected 2 badges, got %d", len(merged))
	}
	if merged[1].Name != "Y" {
		t.Fatalf("expected new badge appended, got %+v", merged)
	}
}

func TestRecomputeBadgeLevels_Idempotent(t *testing.T) {
	badges := []Badge{
		{Name: "A", Skills: []string{"go", "sql"}},
		{Name: "B", Skills: []string{"react"}},
		{Name: "C"},
	}
	tested := []TestedSkill{{Skill: "Go", Level: LevelHard}}

	recomputeBadgeLevels(badges, tested)
	first := []string{badges[0].Level, badges[1].Level, badges[2].Level}

	recomputeBadgeLevels(badges, tested)
	second := []string{badges[0].Level, badges[1].Level, badges[2].Level}

	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("recompute not idempotent: %v vs %v", first, second)
		}
	}
	if first[0] != TierSilver || first[1] != TierBronze || first[2] != TierBronze {
		t.Fatalf("unexpected tiers: %v", first)
	}
}

func TestUpsertTestedSkill_ReplacesInPlace(t *testing.T) {
	tested := []TestedSkill{
		{Skill: "Python", Level: LevelEasy, Score: 40},
		{Skill: "Go", Level: LevelMedium, Score: 70},
	}

	out := upsertTestedSkill(tested, TestedSkill{Skill: "python", Level: LevelHard, Score: 95})
	if len(out) != 2 {
		t.Fatalf("expected replacement, not append; got %d entries", len(out))
	}
	if out[0].Skill != "python" || out[0].Level != LevelHard || out[0].Score != 95 {
		t.Fatalf("expected replacement at original position, got %+v", out[0])
	}
	if out[1].Skill != "Go" {
		t.Fatalf("expected unrelated entries untouched, got %+v", out[1])
	}
}
