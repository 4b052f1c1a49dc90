package ai

import (
	"strconv"
	"strings"

	"github.com/hearthland/stratagem/pkg/rts"
)

// ParsePlayerConfig parses a player spec string like
// "1=hard:valdor,2=easy" or "*=medium". Keys are player numbers or "*" for
// the default; values are "difficulty[:civilization]". Players without an
// explicit entry get the default spec. count caps the roster; player numbers
// above it extend it.
func ParsePlayerConfig(s string, count int) map[rts.PlayerID]PlayerSpec {
	if count < 2 {
		count = 2
	}
	def := PlayerSpec{Difficulty: "medium"}
	explicit := make(map[rts.PlayerID]PlayerSpec)

	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, val, found := strings.Cut(part, "=")
		if !found {
			// Bare difficulty applies to everyone.
			key, val = "*", part
		}
		spec := parseSpec(val)
		if key == "*" {
			def = spec
			continue
		}
		n, err := strconv.Atoi(key)
		if err != nil || n < 1 {
			continue
		}
		explicit[rts.PlayerID(n)] = spec
		if n > count {
			count = n
		}
	}

	cfg := make(map[rts.PlayerID]PlayerSpec, count)
	for i := 1; i <= count; i++ {
		id := rts.PlayerID(i)
		if spec, ok := explicit[id]; ok {
			cfg[id] = spec
		} else {
			cfg[id] = def
		}
	}
	return cfg
}

func parseSpec(v string) PlayerSpec {
	diff, civ, _ := strings.Cut(v, ":")
	if diff == "" {
		diff = "medium"
	}
	return PlayerSpec{Difficulty: diff, Civilization: civ}
}

// ParseMatchup handles "hard-vs-easy" shorthand: player 1 gets the first
// tier, everyone else the second. A plain tier name applies to all.
func ParseMatchup(s string, count int) map[rts.PlayerID]PlayerSpec {
	first, rest, found := strings.Cut(s, "-vs-")
	if !found {
		return ParsePlayerConfig("*="+s, count)
	}
	return ParsePlayerConfig("1="+first+",*="+rest, count)
}
