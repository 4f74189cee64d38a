// Package discovery resolves ambient environment facts into an
// immutable configuration record and enumerates the test directory.
package discovery

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/shirou/gopsutil/v3/cpu"

	"github.com/jihwankim/runtest-orchestrator/pkg/config"
)

// Environment is the configuration record produced once, at startup, by
// the probe below. It is never mutated afterward.
type Environment struct {
	BuildTop string

	HostCPUCount   int
	TargetCPUCount int // 0 when no target executor is configured

	DeviceName string // "UNKNOWN_TARGET" on non-fatal probe failure

	TargetSuffix    string
	Target2ndSuffix string
	HostSuffix      string
	Host2ndSuffix   string

	On2ndArchRun bool
	OnFVP        bool
}

var cpuPresentPattern = regexp.MustCompile(`^(\d+)-(\d+)\s*$`)

// Warner receives the non-fatal device-name-probe-failed warning. Any
// logger exposing a single Warn(msg string, fields ...interface{})
// method satisfies it.
type Warner interface {
	Warn(msg string, fields ...interface{})
}

// Probe resolves Environment from cfg, the process environment, and an
// optional device executor (nil when no target combinations were
// selected, since then the target CPU count and device name are never
// needed). warn may be nil.
func Probe(ctx context.Context, cfg *config.Config, exec RemoteExecutor, targetArch, target2ndArch string, warn Warner) (*Environment, error) {
	buildTop, err := resolveBuildTop(cfg)
	if err != nil {
		return nil, err
	}

	env := &Environment{
		BuildTop:     buildTop,
		HostCPUCount: hostCPUCount(),
		OnFVP:        config.GetEnvBoolean("ART_TEST_ON_FVP", false),
		On2ndArchRun: config.GetEnvBoolean("ART_TEST_RUN_TEST_2ND_ARCH", true),
	}

	env.TargetSuffix, env.Target2ndSuffix = targetSuffixes(targetArch, target2ndArch)
	env.HostSuffix, env.Host2ndSuffix = hostSuffixes(config.GetEnvBoolean("HOST_PREFER_32_BIT", false))

	if exec != nil {
		env.DeviceName = probeDeviceName(ctx, cfg, exec, warn)
		count, err := probeTargetCPUCount(ctx, cfg, exec)
		if err != nil {
			return nil, err
		}
		env.TargetCPUCount = count
	}

	return env, nil
}

// resolveBuildTop implements the build-top resolution rule: an explicit
// override if configured, otherwise three directories above the
// orchestrator's own executable; either way the result must contain the
// configured marker file.
func resolveBuildTop(cfg *config.Config) (string, error) {
	top := cfg.Paths.BuildTopOverride
	if top == "" {
		exe, err := os.Executable()
		if err != nil {
			return "", fmt.Errorf("resolving build top: %w", err)
		}
		top = filepath.Join(filepath.Dir(exe), "..", "..", "..")
	}
	top = filepath.Clean(top)

	marker := filepath.Join(top, cfg.Paths.MarkerFile)
	if _, err := os.Stat(marker); err != nil {
		return "", fmt.Errorf("build top %q does not contain marker file %q: %w", top, cfg.Paths.MarkerFile, err)
	}
	return top, nil
}

func hostCPUCount() int {
	counts, err := cpu.Counts(true)
	if err != nil || counts < 1 {
		return 1
	}
	return counts
}

// targetSuffixes implements the architecture-suffix derivation table:
// the primary suffix is "64" whenever the primary arch string contains
// "64", else "32"; the secondary suffix only exists when a second
// architecture is configured, and flips relative to the primary.
func targetSuffixes(primaryArch, secondaryArch string) (primary, secondary string) {
	has2nd := secondaryArch != ""
	primaryIs64 := strings.Contains(primaryArch, "64")

	switch {
	case has2nd && primaryIs64:
		return "64", "32"
	case has2nd && !primaryIs64:
		return "32", ""
	case !has2nd && primaryIs64:
		return "64", ""
	default:
		return "32", ""
	}
}

func hostSuffixes(prefer32 bool) (primary, secondary string) {
	if prefer32 {
		return "32", ""
	}
	return "64", "32"
}

// UnavailableDeviceError reports that a required device probe could not
// be completed.
type UnavailableDeviceError struct {
	Probe string
	Err   error
}

func (e *UnavailableDeviceError) Error() string {
	return fmt.Sprintf("device probe %q unavailable: %v", e.Probe, e.Err)
}

func (e *UnavailableDeviceError) Unwrap() error { return e.Err }

func probeTargetCPUCount(ctx context.Context, cfg *config.Config, exec RemoteExecutor) (int, error) {
	out, err := exec.Exec(ctx, cfg.Remote.CPUPresentCommand)
	if err != nil {
		return 0, &UnavailableDeviceError{Probe: "cpu-present", Err: err}
	}
	m := cpuPresentPattern.FindStringSubmatch(out)
	if m == nil {
		return 0, &UnavailableDeviceError{Probe: "cpu-present", Err: fmt.Errorf("unrecognized output %q", out)}
	}
	high, err := strconv.Atoi(m[2])
	if err != nil {
		return 0, &UnavailableDeviceError{Probe: "cpu-present", Err: err}
	}
	return high + 1, nil
}

// probeDeviceName returns the device's product name, or the literal
// "UNKNOWN_TARGET" on failure. Failure here is never fatal: the name is
// only matched against the devices lists of known-failure rules.
func probeDeviceName(ctx context.Context, cfg *config.Config, exec RemoteExecutor, warn Warner) string {
	out, err := exec.Exec(ctx, cfg.Remote.DeviceNameCommand)
	if err == nil {
		if name := strings.TrimSpace(out); name != "" {
			return name
		}
		err = fmt.Errorf("empty device name output")
	}
	if warn != nil {
		warn.Warn("device name probe failed, falling back to UNKNOWN_TARGET", "error", err)
	}
	return "UNKNOWN_TARGET"
}
