package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jihwankim/runtest-orchestrator/pkg/variant"
)

func TestResolveArgsPrefixMatch(t *testing.T) {
	discovered := []string{"001-HelloWorld", "002-Sleep", "010-Other"}
	recognizer := variant.NewRecognizer(discovered)

	tests, narrow, err := resolveArgs([]string{"00"}, discovered, recognizer)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"001-HelloWorld", "002-Sleep"}, tests)
	assert.Empty(t, narrow)
}

func TestResolveArgsExactMatch(t *testing.T) {
	discovered := []string{"001-HelloWorld", "002-Sleep"}
	recognizer := variant.NewRecognizer(discovered)

	tests, _, err := resolveArgs([]string{"002-Sleep"}, discovered, recognizer)
	require.NoError(t, err)
	assert.Equal(t, []string{"002-Sleep"}, tests)
}

func TestResolveArgsUnknownTestErrors(t *testing.T) {
	discovered := []string{"001-HelloWorld"}
	recognizer := variant.NewRecognizer(discovered)

	_, _, err := resolveArgs([]string{"999-Missing"}, discovered, recognizer)
	assert.Error(t, err)
}

func TestResolveArgsCanonicalNameNarrowsSelection(t *testing.T) {
	discovered := []string{"001-HelloWorld"}
	recognizer := variant.NewRecognizer(discovered)

	c := variant.Combination{
		Test: "001-HelloWorld", Target: variant.TagTargetHost, Run: variant.TagRunDebug,
		Prebuild: variant.TagPrebuildYes, Compiler: variant.TagCompilerOptimizing,
		Relocate: variant.TagRelocateNo, Trace: variant.TagTraceNtrace, GC: variant.TagGCCMS,
		JNI: variant.TagJNICheck, Image: variant.TagImagePic, Debuggable: variant.TagDebuggableNo,
		JVMTI: variant.TagJVMTINone,
	}

	tests, narrow, err := resolveArgs([]string{c.Canonical()}, discovered, recognizer)
	require.NoError(t, err)
	assert.Equal(t, []string{"001-HelloWorld"}, tests)
	assert.Equal(t, []variant.Tag{variant.TagTargetHost}, narrow[variant.AxisTarget])
	assert.Equal(t, []variant.Tag{variant.TagGCCMS}, narrow[variant.AxisGC])
}
