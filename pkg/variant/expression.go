package variant

import (
	"fmt"
	"strings"

	"github.com/bits-and-blooms/bitset"
)

// bitIndex assigns every tag a stable, dense bit position so conjunctions
// can be represented as bitsets and subset tests become a single AND.
var bitIndex map[Tag]uint

func init() {
	buildTagIndex()
	bitIndex = make(map[Tag]uint, len(tagIndex))
	var i uint
	// Iterate axes (not the map) for deterministic bit assignment.
	for _, axis := range AllAxes {
		for _, t := range TagSet[axis] {
			bitIndex[t] = i
			i++
		}
	}
}

func bitsetOf(tags ...Tag) *bitset.BitSet {
	bs := bitset.New(uint(len(bitIndex)))
	for _, t := range tags {
		if idx, ok := bitIndex[t]; ok {
			bs.Set(idx)
		}
	}
	return bs
}

// Expression is a disjunction of conjunctions of tags: it matches a
// combination when at least one conjunct's tags are all present among the
// combination's tags. This is the boolean grammar used by known-failure
// rules to scope a skip to a subset of variants:
//
//	expression := clause ('|' clause)*
//	clause      := tag ('&' tag)*
type Expression struct {
	clauses []*bitset.BitSet
}

// ParseExpression parses a variant expression string. An empty string
// expands to the disjunction of every single tag taken alone, matching
// "no restriction" (any combination matches, since every combination
// carries at least one tag from every axis).
func ParseExpression(s string) (Expression, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		clauses := make([]*bitset.BitSet, 0, len(bitIndex))
		for t := range bitIndex {
			clauses = append(clauses, bitsetOf(t))
		}
		return Expression{clauses: clauses}, nil
	}

	var clauses []*bitset.BitSet
	for _, clauseStr := range strings.Split(s, "|") {
		clauseStr = strings.TrimSpace(clauseStr)
		if clauseStr == "" {
			return Expression{}, fmt.Errorf("empty clause in variant expression %q", s)
		}
		var tags []Tag
		for _, tagStr := range strings.Split(clauseStr, "&") {
			tagStr = strings.TrimSpace(tagStr)
			if tagStr == "" {
				return Expression{}, fmt.Errorf("empty tag in variant expression %q", s)
			}
			tag := Tag(tagStr)
			if _, ok := AxisOf(tag); !ok {
				return Expression{}, fmt.Errorf("unknown tag %q in variant expression %q", tagStr, s)
			}
			tags = append(tags, tag)
		}
		clauses = append(clauses, bitsetOf(tags...))
	}
	return Expression{clauses: clauses}, nil
}

// Matches reports whether the combination's tag set satisfies at least one
// conjunctive clause of the expression (every tag in that clause is also a
// tag of the combination).
func (e Expression) Matches(c Combination) bool {
	for _, clause := range e.clauses {
		if (Conjunction{bits: clause}).IsSubsetOf(c) {
			return true
		}
	}
	return false
}

// Conjunctions returns the expression's clauses as a disjunction of
// Conjunction values, for callers (the skip table) that need to store and
// later combine individual conjuncts rather than test an expression as a
// whole.
func (e Expression) Conjunctions() []Conjunction {
	out := make([]Conjunction, len(e.clauses))
	for i, c := range e.clauses {
		out[i] = Conjunction{bits: c}
	}
	return out
}

// Conjunction is a single clause: a set of tags that, taken together,
// form one disjunct of a variant expression.
type Conjunction struct {
	bits *bitset.BitSet
}

// WithTag returns a new Conjunction with the given tag's bit added,
// implementing the known-failure-catalogue rule that scopes a rule to
// `target` combinations whenever it names specific devices.
func (c Conjunction) WithTag(tag Tag) Conjunction {
	clone := c.bits.Clone()
	if idx, ok := bitIndex[tag]; ok {
		clone.Set(idx)
	}
	return Conjunction{bits: clone}
}

// IsSubsetOf reports whether every tag in the conjunction is also a tag
// of the combination.
func (c Conjunction) IsSubsetOf(comb Combination) bool {
	subject := bitsetOf(comb.Tags()...)
	return c.bits.Difference(subject).None()
}
