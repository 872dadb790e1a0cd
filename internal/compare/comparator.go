package compare

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ppiankov/veridoc/internal/model"
)

// Group is one cross-pass identity group: a representative finding plus the
// passes and chunks it was seen in. The representative comes from the lowest
// pass number.
type Group struct {
	Finding model.Finding
	Passes  []int // Pass numbers the finding appeared in, ascending
	Chunks  []int // Chunk indices the finding came from, ascending, deduplicated
}

// Comparison is the outcome of merging per-pass findings.
type Comparison struct {
	Consensus []Group          // Present in all passes with materially identical content
	Flagged   []Group          // Present in a subset of passes; scored normally, not a conflict
	Conflicts []model.Conflict // Same identity key, materially different content or severity
}

// Comparator merges per-pass findings into consensus, flagged, and
// conflicting groups.
type Comparator struct {
	// similarity is the word-overlap fraction above which two contents count
	// as materially identical. Policy, not hard-coded behavior.
	similarity float64
}

// NewComparator creates a comparator with the given content-similarity
// threshold.
func NewComparator(cfg model.CompareConfig) *Comparator {
	sim := cfg.ContentSimilarity
	if sim <= 0 || sim > 1 {
		sim = 0.5
	}
	return &Comparator{similarity: sim}
}

// IdentityKey returns the deterministic cross-pass identity of a finding:
// its type tag plus the category label lower-cased with whitespace collapsed.
func IdentityKey(f model.Finding) string {
	label := strings.ToLower(strings.TrimSpace(f.Label()))
	label = strings.Join(strings.Fields(label), " ")
	return string(f.Type) + ":" + label
}

// passEntry is one pass's deduplicated view of an identity key.
type passEntry struct {
	pass    int
	finding model.Finding
	chunks  []int
}

// Compare merges the findings of perPass (index i holds pass i+1) into
// consensus, flagged, and conflicting groups.
func (c *Comparator) Compare(perPass []model.AnalysisResult) Comparison {
	totalPasses := len(perPass)

	// Group findings by identity key, keeping one entry per pass per key.
	// Within a pass, duplicates from chunk overlap collapse to the first
	// occurrence; originating chunks are collected for chunk-agreement
	// scoring.
	entries := make(map[string][]passEntry)
	var keyOrder []string

	for i, result := range perPass {
		pass := i + 1
		seen := make(map[string]int) // key -> index into entries[key]
		for _, f := range result.All() {
			f.Pass = pass
			key := IdentityKey(f)
			if idx, ok := seen[key]; ok {
				entries[key][idx].chunks = appendChunk(entries[key][idx].chunks, f.Chunk)
				continue
			}
			if _, ok := entries[key]; !ok {
				keyOrder = append(keyOrder, key)
			}
			entries[key] = append(entries[key], passEntry{
				pass:    pass,
				finding: f,
				chunks:  []int{f.Chunk},
			})
			seen[key] = len(entries[key]) - 1
		}
	}

	var out Comparison
	for _, key := range keyOrder {
		group := entries[key]
		sort.Slice(group, func(i, j int) bool { return group[i].pass < group[j].pass })

		if conflict, ok := c.detectConflict(group); ok {
			out.Conflicts = append(out.Conflicts, conflict)
			continue
		}

		g := buildGroup(group)
		if len(group) >= totalPasses {
			out.Consensus = append(out.Consensus, g)
		} else {
			out.Flagged = append(out.Flagged, g)
		}
	}

	return out
}

// detectConflict reports whether the passes disagree materially about this
// identity key. Content disagreement wins over severity disagreement.
func (c *Comparator) detectConflict(group []passEntry) (model.Conflict, bool) {
	if len(group) < 2 {
		return model.Conflict{}, false
	}

	base := group[0].finding
	contentConflict := false
	severityConflict := false

	for _, e := range group[1:] {
		if !c.materiallyIdentical(base.Content(), e.finding.Content()) {
			contentConflict = true
		}
		if base.Type == model.FindingTypeRisk && e.finding.Type == model.FindingTypeRisk {
			if base.Risk != nil && e.finding.Risk != nil && base.Risk.Severity != e.finding.Risk.Severity {
				severityConflict = true
			}
		}
	}

	if !contentConflict && !severityConflict {
		return model.Conflict{}, false
	}

	kind := model.ConflictContent
	if !contentConflict {
		kind = model.ConflictSeverity
	}

	// The lowest pass number is stored first but never auto-selected as
	// winner; arbitration happens in the resolver.
	passes := make(map[int]model.Finding, len(group))
	var passNums []int
	for _, e := range group {
		passes[e.pass] = e.finding
		passNums = append(passNums, e.pass)
	}

	return model.Conflict{
		Kind:        kind,
		FindingType: base.Type,
		Passes:      passes,
		Description: fmt.Sprintf("passes %v disagree on %s %q", passNums, kind, base.Label()),
	}, true
}

// materiallyIdentical reports whether two finding contents describe the same
// thing: exact match, substring containment, or word overlap above the
// similarity threshold.
func (c *Comparator) materiallyIdentical(a, b string) bool {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))

	if a == b {
		return true
	}
	if a == "" || b == "" {
		return false
	}
	if strings.Contains(a, b) || strings.Contains(b, a) {
		return true
	}

	wordsA := strings.Fields(a)
	wordsB := strings.Fields(b)

	setB := make(map[string]bool, len(wordsB))
	for _, w := range wordsB {
		setB[w] = true
	}

	overlap := 0
	for _, w := range wordsA {
		if setB[w] {
			overlap++
		}
	}

	minLen := len(wordsA)
	if len(wordsB) < minLen {
		minLen = len(wordsB)
	}

	return float64(overlap)/float64(minLen) > c.similarity
}

func buildGroup(group []passEntry) Group {
	g := Group{Finding: group[0].finding}
	for _, e := range group {
		g.Passes = append(g.Passes, e.pass)
		for _, ch := range e.chunks {
			g.Chunks = appendChunk(g.Chunks, ch)
		}
	}
	sort.Ints(g.Chunks)
	return g
}

func appendChunk(chunks []int, chunk int) []int {
	for _, c := range chunks {
		if c == chunk {
			return chunks
		}
	}
	return append(chunks, chunk)
}
