// Package worker runs combinations as child processes under a bounded
// pool, tracks their process groups, and enforces per-child timeouts.
package worker

import (
	"os"

	"github.com/jihwankim/runtest-orchestrator/pkg/variant"
)

// BuildArgs renders the run-test flag vector for a combination, exactly
// matching the fixed axis-value-to-flag table. The environment passthrough
// for target=target (--chroot etc) is applied from env.
func BuildArgs(c variant.Combination, env map[string]string) []string {
	var args []string

	switch c.Target {
	case variant.TagTargetHost:
		args = append(args, "--host")
	case variant.TagTargetJVM:
		args = append(args, "--jvm")
	}

	if c.Run == variant.TagRunNdebug {
		args = append(args, "-O")
	}

	switch c.Prebuild {
	case variant.TagPrebuildYes:
		args = append(args, "--prebuild")
	case variant.TagPrebuildNo:
		args = append(args, "--no-prebuild")
	}

	switch c.Compiler {
	case variant.TagCompilerOptimizing:
		args = append(args, "--optimizing")
	case variant.TagCompilerInterpreter:
		args = append(args, "--interpreter")
	case variant.TagCompilerInterpAC:
		args = append(args, "--switch-interpreter", "--verify-soft-fail")
	case variant.TagCompilerJIT:
		args = append(args, "--jit")
	case variant.TagCompilerJITFirstUse:
		args = append(args, "--jit", "--runtime-option", "-Xjitthreshold:0")
	case variant.TagCompilerSpeedProfile:
		args = append(args, "--random-profile")
	case variant.TagCompilerBaseline:
		args = append(args, "--baseline")
	}

	switch c.Relocate {
	case variant.TagRelocateYes:
		args = append(args, "--relocate")
	case variant.TagRelocateNo:
		args = append(args, "--no-relocate")
	}

	switch c.Trace {
	case variant.TagTraceTrace:
		args = append(args, "--trace")
	case variant.TagTraceStream:
		args = append(args, "--trace", "--stream")
	}

	switch c.GC {
	case variant.TagGCVerify:
		args = append(args, "--gcverify")
	case variant.TagGCStress:
		args = append(args, "--gcstress")
	}

	switch c.JNI {
	case variant.TagJNIForcecopy:
		args = append(args, "--runtime-option", "-Xjniopts:forcecopy")
	case variant.TagJNICheck:
		args = append(args, "--runtime-option", "-Xcheck:jni")
	}

	if c.Image == variant.TagImageNoImage {
		args = append(args, "--no-image")
	}

	if c.Debuggable == variant.TagDebuggableYes {
		args = append(args, "--debuggable", "--runtime-option", "-Xopaque-jni-ids:true")
	}

	switch c.JVMTI {
	case variant.TagJVMTIStress:
		args = append(args, "--jvmti-trace-stress", "--jvmti-redefine-stress", "--jvmti-field-stress")
	case variant.TagJVMTIFieldStress:
		args = append(args, "--jvmti-field-stress")
	case variant.TagJVMTITraceStress:
		args = append(args, "--jvmti-trace-stress")
	case variant.TagJVMTIRedefineStress:
		args = append(args, "--jvmti-redefine-stress")
	case variant.TagJVMTIStepStress:
		args = append(args, "--jvmti-step-stress")
	}

	if c.AddressSize == variant.TagAddress64 {
		args = append(args, "--64")
	}

	if c.Target == variant.TagTargetTarget {
		args = append(args, passthroughTargetEnv(env)...)
	}

	return args
}

var targetPassthroughFlags = []struct {
	envVar string
	flag   string
}{
	{"ART_TEST_CHROOT", "--chroot"},
	{"ART_TEST_ANDROID_ROOT", "--android-root"},
	{"ART_TEST_ANDROID_ART_ROOT", "--android-art-root"},
	{"ART_TEST_ANDROID_I18N_ROOT", "--android-i18n-root"},
	{"ART_TEST_ANDROID_TZDATA_ROOT", "--android-tzdata-root"},
}

func passthroughTargetEnv(env map[string]string) []string {
	var out []string
	for _, p := range targetPassthroughFlags {
		if v, ok := env[p.envVar]; ok && v != "" {
			out = append(out, p.flag, v)
		}
	}
	return out
}

// ChildEnv builds the environment the child process inherits plus
// FULL_TEST_NAME set to the canonical combination name.
func ChildEnv(c variant.Combination) []string {
	env := os.Environ()
	return append(env, "FULL_TEST_NAME="+c.Canonical())
}
