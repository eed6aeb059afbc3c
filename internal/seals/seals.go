// Package seals gives snapshot digests short memorable names.
//
// A seal has the form adjective-noun-verb-hash8, e.g. amber-cedar-grows-447abe9b.
// The words are picked from the digest itself, so equal snapshots always get
// the same seal.
package seals

import (
	"encoding/hex"
	"fmt"
	"strings"
)

var (
	adjectives = []string{
		"amber", "brave", "bold", "calm", "clever", "crisp", "dark", "deep",
		"eager", "fair", "fierce", "gentle", "golden", "grand", "keen", "light",
		"lucid", "mighty", "misty", "noble", "pale", "proud", "quick", "quiet",
		"rapid", "silent", "silver", "sharp", "steady", "swift", "vivid", "wise",
	}

	nouns = []string{
		"aspen", "birch", "branch", "canopy", "cedar", "elm", "fern", "grove",
		"hazel", "ivy", "juniper", "larch", "leaf", "maple", "moss", "oak",
		"orchard", "pine", "reed", "root", "rowan", "sapling", "spruce", "stem",
		"thicket", "timber", "trunk", "twig", "vine", "willow", "wood", "yew",
	}

	verbs = []string{
		"blooms", "bends", "branches", "climbs", "drifts", "falls", "grows", "hums",
		"leans", "lifts", "mends", "rests", "rises", "rustles", "settles", "shades",
		"shifts", "sleeps", "spreads", "sprouts", "stands", "stirs", "sways", "swings",
		"thrives", "tilts", "turns", "waits", "wakes", "waves", "weaves", "yields",
	}
)

// Name returns the seal for a digest.
func Name(digest [32]byte) string {
	return fmt.Sprintf("%s-%s-%s-%s",
		adjectives[int(digest[8])%len(adjectives)],
		nouns[int(digest[9])%len(nouns)],
		verbs[int(digest[10])%len(verbs)],
		hex.EncodeToString(digest[:4]))
}

// ShortHash extracts the 8-character hash suffix from a seal.
func ShortHash(seal string) (string, bool) {
	i := strings.LastIndexByte(seal, '-')
	if i < 0 {
		return "", false
	}
	last := seal[i+1:]
	if len(last) != 8 {
		return "", false
	}
	if _, err := hex.DecodeString(last); err != nil {
		return "", false
	}
	return last, true
}

// Matches reports whether seal names digest. Only the hash suffix is checked,
// so a seal prefix typed by hand still matches as long as the suffix does.
func Matches(seal string, digest [32]byte) bool {
	short, ok := ShortHash(seal)
	return ok && short == hex.EncodeToString(digest[:4])
}
