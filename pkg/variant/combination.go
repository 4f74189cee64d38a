package variant

import (
	"fmt"
	"regexp"
	"strings"
)

// Combination is one full assignment of tags to all variant axes plus a
// test name. jvm combinations carry an empty AddressSize.
type Combination struct {
	Test        string
	Target      Tag
	Run         Tag
	Prebuild    Tag
	Compiler    Tag
	Relocate    Tag
	Trace       Tag
	GC          Tag
	JNI         Tag
	Image       Tag
	Debuggable  Tag
	JVMTI       Tag
	AddressSize Tag // "" for jvm combinations
}

// Tags returns every tag assigned in this combination, including the
// address size when present. Used by the skip oracle as the subject of
// subset tests.
func (c Combination) Tags() []Tag {
	tags := []Tag{
		c.Target, c.Run, c.Prebuild, c.Compiler, c.Relocate,
		c.Trace, c.GC, c.JNI, c.Image, c.Debuggable, c.JVMTI,
	}
	if c.AddressSize != "" {
		tags = append(tags, c.AddressSize)
	}
	return tags
}

// TagFor returns the tag this combination carries for axis, or "" if the
// axis isn't one of Combination's fields (there is none such today, but
// callers iterating variant.AllAxes still need a safe default).
func (c Combination) TagFor(axis Axis) Tag {
	switch axis {
	case AxisTarget:
		return c.Target
	case AxisRun:
		return c.Run
	case AxisPrebuild:
		return c.Prebuild
	case AxisCompiler:
		return c.Compiler
	case AxisRelocate:
		return c.Relocate
	case AxisTrace:
		return c.Trace
	case AxisGC:
		return c.GC
	case AxisJNI:
		return c.JNI
	case AxisImage:
		return c.Image
	case AxisDebuggable:
		return c.Debuggable
	case AxisJVMTI:
		return c.JVMTI
	case AxisAddressSize:
		return c.AddressSize
	default:
		return ""
	}
}

// Canonical renders the combination using its dashed canonical form:
//
//	test-art-{target}-run-test-{run}-{prebuild}-{compiler}-{relocate}-{trace}-{gc}-{jni}-{image}-{debuggable}-{jvmti}-{test}{address_size}
func (c Combination) Canonical() string {
	var b strings.Builder
	b.WriteString("test-art-")
	b.WriteString(string(c.Target))
	b.WriteString("-run-test-")
	b.WriteString(string(c.Run))
	b.WriteByte('-')
	b.WriteString(string(c.Prebuild))
	b.WriteByte('-')
	b.WriteString(string(c.Compiler))
	b.WriteByte('-')
	b.WriteString(string(c.Relocate))
	b.WriteByte('-')
	b.WriteString(string(c.Trace))
	b.WriteByte('-')
	b.WriteString(string(c.GC))
	b.WriteByte('-')
	b.WriteString(string(c.JNI))
	b.WriteByte('-')
	b.WriteString(string(c.Image))
	b.WriteByte('-')
	b.WriteString(string(c.Debuggable))
	b.WriteByte('-')
	b.WriteString(string(c.JVMTI))
	b.WriteByte('-')
	b.WriteString(c.Test)
	b.WriteString(string(c.AddressSize))
	return b.String()
}

// Recognizer compiles and caches the canonical-name regex, parameterised
// by the set of known test names (the disjunction for the {test} group)
// so that it can be rebuilt once test discovery has run.
type Recognizer struct {
	re *regexp.Regexp
}

// NewRecognizer builds the canonical-name regex, substituting each
// bracketed group with the literal disjunction of its axis tags, and the
// {test} group with the disjunction of known test names.
func NewRecognizer(knownTests []string) *Recognizer {
	group := func(axis Axis) string {
		tags := TagSet[axis]
		strs := make([]string, len(tags))
		for i, t := range tags {
			strs[i] = regexp.QuoteMeta(string(t))
		}
		return "(" + strings.Join(strs, "|") + ")"
	}

	testAlts := make([]string, len(knownTests))
	for i, t := range knownTests {
		testAlts[i] = regexp.QuoteMeta(t)
	}

	pattern := "^test-art-" + group(AxisTarget) + "-run-test-" +
		group(AxisRun) + "-" +
		group(AxisPrebuild) + "-" +
		group(AxisCompiler) + "-" +
		group(AxisRelocate) + "-" +
		group(AxisTrace) + "-" +
		group(AxisGC) + "-" +
		group(AxisJNI) + "-" +
		group(AxisImage) + "-" +
		group(AxisDebuggable) + "-" +
		group(AxisJVMTI) + "-" +
		"(" + strings.Join(testAlts, "|") + ")" +
		group(AxisAddressSize) + "?$"

	return &Recognizer{re: regexp.MustCompile(pattern)}
}

// Parse recognises a fully-decorated canonical name and returns the
// Combination it encodes. It is the inverse of Combination.Canonical:
// parsing canonical(c) must reproduce c exactly.
func (r *Recognizer) Parse(name string) (Combination, error) {
	m := r.re.FindStringSubmatch(name)
	if m == nil {
		return Combination{}, fmt.Errorf("%q is not a valid canonical combination name", name)
	}
	return Combination{
		Target:      Tag(m[1]),
		Run:         Tag(m[2]),
		Prebuild:    Tag(m[3]),
		Compiler:    Tag(m[4]),
		Relocate:    Tag(m[5]),
		Trace:       Tag(m[6]),
		GC:          Tag(m[7]),
		JNI:         Tag(m[8]),
		Image:       Tag(m[9]),
		Debuggable:  Tag(m[10]),
		JVMTI:       Tag(m[11]),
		Test:        m[12],
		AddressSize: Tag(m[13]),
	}, nil
}
