package variant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCombinationCanonicalRoundTrip(t *testing.T) {
	c := Combination{
		Test:        "001-HelloWorld",
		Target:      TagTargetHost,
		Run:         TagRunDebug,
		Prebuild:    TagPrebuildYes,
		Compiler:    TagCompilerOptimizing,
		Relocate:    TagRelocateNo,
		Trace:       TagTraceNtrace,
		GC:          TagGCCMS,
		JNI:         TagJNICheck,
		Image:       TagImagePic,
		Debuggable:  TagDebuggableNo,
		JVMTI:       TagJVMTINone,
		AddressSize: TagAddress64,
	}

	name := c.Canonical()
	assert.Equal(t, "test-art-host-run-test-debug-prebuild-optimizing-no-relocate-ntrace-cms-checkjni-picimage-ndebuggable-no-jvmti-001-HelloWorld64", name)

	recognizer := NewRecognizer([]string{"001-HelloWorld"})
	parsed, err := recognizer.Parse(name)
	require.NoError(t, err)
	assert.Equal(t, c, parsed)
}

func TestCombinationCanonicalNoAddressSize(t *testing.T) {
	c := Combination{
		Test:     "002-Sleep",
		Target:   TagTargetJVM,
		Run:      TagRunDebug,
		Prebuild: TagPrebuildYes,
		Compiler: TagCompilerOptimizing,
		Relocate: TagRelocateNo,
		Trace:    TagTraceNtrace,
		GC:       TagGCCMS,
		JNI:      TagJNICheck,
		Image:    TagImagePic,
		Debuggable: TagDebuggableNo,
		JVMTI:      TagJVMTINone,
	}

	recognizer := NewRecognizer([]string{"002-Sleep"})
	parsed, err := recognizer.Parse(c.Canonical())
	require.NoError(t, err)
	assert.Equal(t, Tag(""), parsed.AddressSize)
	assert.Equal(t, c, parsed)
}

func TestRecognizerRejectsUnknownName(t *testing.T) {
	recognizer := NewRecognizer([]string{"001-HelloWorld"})
	_, err := recognizer.Parse("not-a-canonical-name")
	assert.Error(t, err)
}

func TestCombinationTagFor(t *testing.T) {
	c := Combination{Target: TagTargetHost, GC: TagGCStress, AddressSize: TagAddress32}
	assert.Equal(t, TagTargetHost, c.TagFor(AxisTarget))
	assert.Equal(t, TagGCStress, c.TagFor(AxisGC))
	assert.Equal(t, TagAddress32, c.TagFor(AxisAddressSize))
	assert.Equal(t, Tag(""), c.TagFor(AxisRun))
}

func TestValidateUniqueness(t *testing.T) {
	assert.NoError(t, ValidateUniqueness())
}
