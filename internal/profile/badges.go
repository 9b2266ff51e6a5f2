package profile

import "strings"

// Badge tiers, lowest to highest. Bronze is the floor: a badge never has an
// empty tier, even with zero progress.
const (
	TierBronze   = "Bronze"
	TierSilver   = "Silver"
	TierGold     = "Gold"
	TierPlatinum = "Platinum"
)

// Canonical tested-skill levels stored on write.
const (
	LevelEasy   = "easy"
	LevelMedium = "medium"
	LevelHard   = "hard"
)

// levelAliases maps accepted level spellings to their canonical form.
// Anything else normalizes to medium.
var levelAliases = map[string]string{
	"easy":         LevelEasy,
	"medium":       LevelMedium,
	"hard":         LevelHard,
	"beginner":     LevelEasy,
	"intermediate": LevelMedium,
	"advanced":     LevelHard,
	"expert":       LevelHard,
}

// NormalizeLevel maps a free-text level to one of easy/medium/hard,
// defaulting to medium for unrecognized values.
func NormalizeLevel(level string) string {
	if canonical, ok := levelAliases[strings.ToLower(strings.TrimSpace(level))]; ok {
		return canonical
	}
	return LevelMedium
}

// skillKey is the comparison form of a skill name. The display string keeps
// its original casing; only lookups and dedup use the key.
func skillKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// levelWeight converts a stored level string into the share weight it
// contributes toward a badge. Legacy documents may carry level spellings that
// never went through NormalizeLevel, so classification first tries exact tier
// words, then substring fragments, then settles on the medium weight. An
// empty level contributes nothing.
func levelWeight(level string) float64 {
	l := strings.ToLower(strings.TrimSpace(level))
	if l == "" {
		return 0
	}

	switch l {
	case "hard", "advanced", "expert", "pro", "professional":
		return 1.0
	case "medium", "intermediate", "mid", "moderate":
		return 0.6
	case "easy", "beginner", "basic", "entry", "novice":
		return 0.3
	}

	for _, frag := range []string{"hard", "adv", "expert", "pro"} {
		if strings.Contains(l, frag) {
			return 1.0
		}
	}
	for _, frag := range []string{"med", "inter", "mid"} {
		if strings.Contains(l, frag) {
			return 0.6
		}
	}
	for _, frag := range []string{"easy", "beg", "bas", "entry"} {
		if strings.Contains(l, frag) {
			return 0.3
		}
	}
	return 0.6
}

// testedSkillIndex builds a lookup of tested skills by normalized name.
func testedSkillIndex(tested []TestedSkill) map[string]TestedSkill {
	index := make(map[string]TestedSkill, len(tested))
	for _, ts := range tested {
		index[skillKey(ts.Skill)] = ts
	}
	return index
}

// computeBadgeProgress returns the badge's completion percentage (0-100).
// Each badge skill holds an equal share; a tested match contributes its
// level weight times that share, an untested skill contributes nothing.
func computeBadgeProgress(badge Badge, tested []TestedSkill) float64 {
	return badgeProgress(badge, testedSkillIndex(tested))
}

func badgeProgress(badge Badge, index map[string]TestedSkill) float64 {
	if len(badge.Skills) == 0 {
		return 0
	}
	share := 100.0 / float64(len(badge.Skills))

	var progress float64
	for _, skill := range badge.Skills {
		ts, ok := index[skillKey(skill)]
		if !ok {
			continue
		}
		progress += share * levelWeight(ts.Level)
	}
	return progress
}

// deriveBadgeLevel maps a progress percentage to a tier. First match wins;
// a badge with no skills can never reach Platinum.
func deriveBadgeLevel(badge Badge, progress float64) string {
	switch {
	case progress >= 100 && len(badge.Skills) > 0:
		return TierPlatinum
	case progress >= 70:
		return TierGold
	case progress >= 40:
		return TierSilver
	default:
		return TierBronze
	}
}

// recomputeBadgeLevels overwrites every badge's level from the current tested
// skills. Callers must invoke this as the last step before persisting any
// badge or tested-skill change so tiers never go stale.
func recomputeBadgeLevels(badges []Badge, tested []TestedSkill) {
	index := testedSkillIndex(tested)
	for i := range badges {
		badges[i].Level = deriveBadgeLevel(badges[i], badgeProgress(badges[i], index))
	}
}

// mergeBadges folds incoming badges into the existing list. A name collision
// unions the skill sets (deduplicated by normalized name, existing order
// preserved); a new name is appended. Tier derivation happens afterwards in
// the same pass, so appended badges never keep a default level.
func mergeBadges(existing []Badge, incoming []Badge) []Badge {
	merged := make([]Badge, len(existing))
	copy(merged, existing)

	for _, in := range incoming {
		found := false
		for i := range merged {
			if merged[i].Name == in.Name {
				merged[i].Skills = unionSkills(merged[i].Skills, in.Skills)
				found = true
				break
			}
		}
		if !found {
			merged = append(merged, in)
		}
	}
	return merged
}

func unionSkills(existing, incoming []string) []string {
	seen := make(map[string]struct{}, len(existing)+len(incoming))
	out := make([]string, 0, len(existing)+len(incoming))
	for _, s := range existing {
		key := skillKey(s)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}
	for _, s := range incoming {
		key := skillKey(s)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}
	return out
}

// findTestedSkill returns the index of the tested skill whose name matches
// case-insensitively, or -1.
func findTestedSkill(tested []TestedSkill, skill string) int {
	key := skillKey(skill)
	for i := range tested {
		if skillKey(tested[i].Skill) == key {
			return i
		}
	}
	return -1
}

// upsertTestedSkill replaces an existing record in place on a
// case-insensitive name match, preserving its position, or appends.
func upsertTestedSkill(tested []TestedSkill, ts TestedSkill) []TestedSkill {
	if i := findTestedSkill(tested, ts.Skill); i >= 0 {
		out := make([]TestedSkill, len(tested))
		copy(out, tested)
		out[i] = ts
		return out
	}
	out := make([]TestedSkill, 0, len(tested)+1)
	out = append(out, tested...)
	return append(out, ts)
}
