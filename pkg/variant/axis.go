// Package variant models the fixed axis/tag catalogue of the run-test
// matrix and the combinations that result from expanding it.
package variant

import "fmt"

// Axis names a single orthogonal dimension of the test matrix. The
// parse-canonical order used by Combination.Canonical and by the name
// recogniser in Parse is target followed by the order of Axes below, not
// the order of these constants.
type Axis string

const (
	AxisRun         Axis = "run"
	AxisTarget      Axis = "target"
	AxisTrace       Axis = "trace"
	AxisImage       Axis = "image"
	AxisDebuggable  Axis = "debuggable"
	AxisGC          Axis = "gc"
	AxisPrebuild    Axis = "prebuild"
	AxisRelocate    Axis = "relocate"
	AxisJNI         Axis = "jni"
	AxisAddressSize Axis = "address_sizes"
	AxisJVMTI       Axis = "jvmti"
	AxisCompiler    Axis = "compiler"
)

// Tag is a single value of an axis. Tag identifiers are globally unique
// across all axes; ValidateUniqueness enforces this at startup.
type Tag string

const (
	TagRunNdebug Tag = "ndebug"
	TagRunDebug  Tag = "debug"

	TagTargetTarget Tag = "target"
	TagTargetHost   Tag = "host"
	TagTargetJVM    Tag = "jvm"

	TagTraceTrace  Tag = "trace"
	TagTraceNtrace Tag = "ntrace"
	TagTraceStream Tag = "stream"

	TagImagePic     Tag = "picimage"
	TagImageNoImage Tag = "no-image"

	TagDebuggableNo  Tag = "ndebuggable"
	TagDebuggableYes Tag = "debuggable"

	TagGCStress  Tag = "gcstress"
	TagGCVerify  Tag = "gcverify"
	TagGCCMS     Tag = "cms"

	TagPrebuildNo  Tag = "no-prebuild"
	TagPrebuildYes Tag = "prebuild"

	TagRelocateYes Tag = "relocate"
	TagRelocateNo  Tag = "no-relocate"

	TagJNIPlain     Tag = "jni"
	TagJNIForcecopy Tag = "forcecopy"
	TagJNICheck     Tag = "checkjni"

	TagAddress64 Tag = "64"
	TagAddress32 Tag = "32"

	TagJVMTINone           Tag = "no-jvmti"
	TagJVMTIStress         Tag = "jvmti-stress"
	TagJVMTIRedefineStress Tag = "redefine-stress"
	TagJVMTITraceStress    Tag = "trace-stress"
	TagJVMTIFieldStress    Tag = "field-stress"
	TagJVMTIStepStress     Tag = "step-stress"

	TagCompilerInterpAC        Tag = "interp-ac"
	TagCompilerInterpreter     Tag = "interpreter"
	TagCompilerJIT             Tag = "jit"
	TagCompilerJITFirstUse     Tag = "jit-on-first-use"
	TagCompilerOptimizing      Tag = "optimizing"
	TagCompilerSpeedProfile    Tag = "speed-profile"
	TagCompilerBaseline        Tag = "baseline"
)

// Axes lists every axis in parse-canonical order, excluding target (which
// leads the canonical name) and address_sizes (which is handled specially
// per (target, address) pair).
var Axes = []Axis{
	AxisRun,
	AxisPrebuild,
	AxisCompiler,
	AxisRelocate,
	AxisTrace,
	AxisGC,
	AxisJNI,
	AxisImage,
	AxisDebuggable,
	AxisJVMTI,
}

// AllAxes lists every axis including target and address_sizes, in
// declaration order. Used for validation and for --all-<axis> flag
// generation, not for canonical name order.
var AllAxes = []Axis{
	AxisRun, AxisTarget, AxisTrace, AxisImage, AxisDebuggable, AxisGC,
	AxisPrebuild, AxisRelocate, AxisJNI, AxisAddressSize, AxisJVMTI, AxisCompiler,
}

// DispatchAxes lists the non-target, non-address-size axes in the
// declared dispatch order: run, trace, image, debuggable, gc, prebuild,
// relocate, jni, jvmti, compiler. This is the order pkg/expand must walk
// to produce a reproducible combination sequence; it differs from Axes,
// which is the canonical-name rendering order.
var DispatchAxes = []Axis{
	AxisRun, AxisTrace, AxisImage, AxisDebuggable, AxisGC,
	AxisPrebuild, AxisRelocate, AxisJNI, AxisJVMTI, AxisCompiler,
}

// TagSet maps each axis to its ordered set of legal tags.
var TagSet = map[Axis][]Tag{
	AxisRun:         {TagRunNdebug, TagRunDebug},
	AxisTarget:      {TagTargetTarget, TagTargetHost, TagTargetJVM},
	AxisTrace:       {TagTraceTrace, TagTraceNtrace, TagTraceStream},
	AxisImage:       {TagImagePic, TagImageNoImage},
	AxisDebuggable:  {TagDebuggableNo, TagDebuggableYes},
	AxisGC:          {TagGCStress, TagGCVerify, TagGCCMS},
	AxisPrebuild:    {TagPrebuildNo, TagPrebuildYes},
	AxisRelocate:    {TagRelocateYes, TagRelocateNo},
	AxisJNI:         {TagJNIPlain, TagJNIForcecopy, TagJNICheck},
	AxisAddressSize: {TagAddress64, TagAddress32},
	AxisJVMTI: {
		TagJVMTINone, TagJVMTIStress, TagJVMTIRedefineStress,
		TagJVMTITraceStress, TagJVMTIFieldStress, TagJVMTIStepStress,
	},
	AxisCompiler: {
		TagCompilerInterpAC, TagCompilerInterpreter, TagCompilerJIT,
		TagCompilerJITFirstUse, TagCompilerOptimizing, TagCompilerSpeedProfile,
		TagCompilerBaseline,
	},
}

// AxisOf returns the axis a tag belongs to, and whether it was found.
func AxisOf(tag Tag) (Axis, bool) {
	buildTagIndex()
	axis, ok := tagIndex[tag]
	return axis, ok
}

var tagIndex map[Tag]Axis

func buildTagIndex() {
	if tagIndex != nil {
		return
	}
	tagIndex = make(map[Tag]Axis)
	for axis, tags := range TagSet {
		for _, t := range tags {
			tagIndex[t] = axis
		}
	}
}

// ValidateUniqueness enforces the invariant that every tag identifier is
// globally unique across axes. It is meant to run once at startup.
func ValidateUniqueness() error {
	seen := make(map[Tag]Axis)
	for axis, tags := range TagSet {
		for _, t := range tags {
			if other, ok := seen[t]; ok && other != axis {
				return fmt.Errorf("tag %q is used by both axis %q and axis %q", t, other, axis)
			}
			seen[t] = axis
		}
	}
	return nil
}

// AllTags returns every tag across every axis: the same tags that
// ParseExpression turns into single-tag clauses for an empty expression.
func AllTags() []Tag {
	buildTagIndex()
	out := make([]Tag, 0, len(tagIndex))
	for t := range tagIndex {
		out = append(out, t)
	}
	return out
}
