package identifier

import (
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/blake2b"

	"github.com/1457cus/shaoguan-travel-planner/internal/types"
)

const (
	// fingerprintRunes is how much of the name feeds the fingerprint.
	fingerprintRunes = 10
	fingerprintBytes = 2
	// EmptyNamePlaceholder is hashed in place of a blank name.
	EmptyNamePlaceholder = "Unknown"
)

// Fingerprint is a short display digest of the name prefix. It is not a
// security digest and collisions are expected; the validator catches any
// duplicate identifiers they cause.
func Fingerprint(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		name = EmptyNamePlaceholder
	}
	if runes := []rune(name); len(runes) > fingerprintRunes {
		name = string(runes[:fingerprintRunes])
	}
	h, err := blake2b.New(fingerprintBytes, nil)
	if err != nil {
		// only reachable with an invalid size or key
		panic(fmt.Sprintf("blake2b: %v", err))
	}
	h.Write([]byte(name))
	return strings.ToUpper(hex.EncodeToString(h.Sum(nil)))
}

// Format renders an identifier. It is a pure function of its arguments.
func Format(category types.Category, subtypeCode, fingerprint string, seq int) string {
	return fmt.Sprintf("%s-%s%s-%s-%04d", types.RegionCode, category.TypeCode(), subtypeCode, fingerprint, seq)
}

// Generator assigns identifiers for one category batch. It owns the batch
// sequence counter, so create one per batch or call Reset between batches.
type Generator struct {
	category types.Category
	seq      int
}

func NewGenerator(category types.Category) *Generator {
	return &Generator{category: category}
}

// Reset zeroes the sequence counter.
func (g *Generator) Reset() { g.seq = 0 }

// Sequence is the last number handed out.
func (g *Generator) Sequence() int { return g.seq }

// Next increments the counter and returns the identifier for rec.
func (g *Generator) Next(rec types.Record) string {
	g.seq++
	subtype, _ := rec.Value(g.category.SubtypeColumn())
	name, _ := rec.Value(g.category.NameColumn())
	return Format(g.category, SubtypeCode(g.category, subtype), Fingerprint(name), g.seq)
}
