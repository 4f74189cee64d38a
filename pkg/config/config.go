// Package config builds the immutable configuration record produced by
// the environment probe and loads the orchestrator's own on-disk
// settings.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

// Config is the orchestrator's own settings file: tool paths,
// remote-execution templates, default timeouts, and the marker file used
// to sanity-check a discovered build-top. It is distinct from the probed
// Environment record (Environment carries facts resolved once at
// startup; Config carries operator-tunable knobs).
type Config struct {
	Framework FrameworkConfig `yaml:"framework"`
	Paths     PathsConfig     `yaml:"paths"`
	Remote    RemoteConfig    `yaml:"remote"`
	Timeouts  TimeoutsConfig  `yaml:"timeouts"`
	Reporting ReportingConfig `yaml:"reporting"`
	Build     BuildConfig     `yaml:"build"`
	Nonfunctional []string `yaml:"nonfunctional"`
}

// FrameworkConfig contains general orchestrator settings.
type FrameworkConfig struct {
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
	// RunningUnderBuildShard mirrors ART_TEST_RUN_FROM_SOONG: a build
	// shard only ever sees a subset of the full test universe, so a
	// catalogue rule naming a test outside it is tolerated rather than
	// fatal.
	RunningUnderBuildShard bool `yaml:"running_under_build_shard"`
	// ForceNoPrebuild mirrors ART_TEST_BISECTION: drop "prebuild" from
	// the selected prebuild axis and add "no-prebuild" instead.
	ForceNoPrebuild bool `yaml:"force_no_prebuild"`
}

// PathsConfig names the filesystem layout the probe resolves against.
type PathsConfig struct {
	// BuildTopOverride, when set, short-circuits the three-levels-up
	// search for the root of the source tree.
	BuildTopOverride string `yaml:"build_top_override"`
	// MarkerFile must exist under the build-top for it to be accepted.
	MarkerFile string `yaml:"marker_file"`
	// TestDir is relative to the build-top.
	TestDir string `yaml:"test_dir"`
	// KnownFailuresFile is relative to the build-top, unless absolute.
	KnownFailuresFile string `yaml:"known_failures_file"`
	// RunTestExecutable is the child binary each combination invokes.
	RunTestExecutable string `yaml:"run_test_executable"`
}

// RemoteConfig holds the shell command templates used to reach a
// connected device (or, when DockerContainer is set, a container
// standing in for one). The shell executor runs ExecTemplate with a
// probe- or diagnostic-specific command appended to it.
type RemoteConfig struct {
	// ExecTemplate runs a command on the target device, e.g.
	// {"adb", "shell"}.
	ExecTemplate []string `yaml:"exec_template"`
	// DeviceNameCommand is appended to ExecTemplate to print the
	// device's product name.
	DeviceNameCommand []string `yaml:"device_name_command"`
	// CPUPresentCommand is appended to ExecTemplate to print the
	// contents of /sys/devices/system/cpu/present.
	CPUPresentCommand []string `yaml:"cpu_present_command"`
	// BacktraceCommand is appended to ExecTemplate on the fourth
	// iteration of the timeout diagnostic schedule.
	BacktraceCommand []string `yaml:"backtrace_command"`
	// ProcessName is the name the diagnostic schedule greps for when
	// locating a hung combination's PIDs on the device.
	ProcessName string `yaml:"process_name"`
	// DockerContainer, when non-empty, runs the probe and diagnostic
	// commands directly inside this Docker container; ExecTemplate is
	// then not used.
	DockerContainer string `yaml:"docker_container"`
}

// BuildConfig names the external build invocation run before the test
// matrix when --build is set. The orchestrator treats it as opaque glue:
// it shells out and fails the run if it exits non-zero.
type BuildConfig struct {
	Command []string `yaml:"command"`
}

// TimeoutsConfig holds default child-process and diagnostic timings.
type TimeoutsConfig struct {
	ChildTimeout       time.Duration `yaml:"child_timeout"`
	ChildTimeoutOnFVP  time.Duration `yaml:"child_timeout_on_fvp"`
	DiagnosticInner    time.Duration `yaml:"diagnostic_inner_sleep"`
	DiagnosticOuter    time.Duration `yaml:"diagnostic_outer_sleep"`
	DeviceProbeTimeout time.Duration `yaml:"device_probe_timeout"`
}

// ReportingConfig controls where optional artifacts land.
type ReportingConfig struct {
	OutputDir  string `yaml:"output_dir"`
	CSVSink    string `yaml:"csv_sink"`
	MetricsAddr string `yaml:"metrics_addr"`
}

// DefaultConfig mirrors the original tool's built-in defaults: adb as the
// remote-execution vehicle, the source tree's standard test layout, and
// the published timeout/diagnostic schedule.
func DefaultConfig() *Config {
	return &Config{
		Framework: FrameworkConfig{
			LogLevel:  "info",
			LogFormat: "text",
		},
		Paths: PathsConfig{
			MarkerFile:        "build/envsetup.sh",
			TestDir:           "art/test",
			KnownFailuresFile: "art/test/knownfailures.json",
			RunTestExecutable: "art/test/run-test",
		},
		Remote: RemoteConfig{
			ExecTemplate:      []string{"adb", "shell"},
			DeviceNameCommand: []string{"getprop", "ro.product.name"},
			CPUPresentCommand: []string{"cat", "/sys/devices/system/cpu/present"},
			BacktraceCommand:  []string{"debuggerd", "-b"},
			ProcessName:       "dalvikvm",
		},
		Timeouts: TimeoutsConfig{
			ChildTimeout:       3600 * time.Second,
			ChildTimeoutOnFVP:  36000 * time.Second,
			DiagnosticInner:    10 * time.Second,
			DiagnosticOuter:    60 * time.Second,
			DeviceProbeTimeout: 2 * time.Second,
		},
		Reporting: ReportingConfig{
			OutputDir: "./out",
		},
	}
}

// DefaultConfigPath resolves the config search path via XDG base
// directories when the caller didn't pass an explicit --config flag.
func DefaultConfigPath() (string, error) {
	return xdg.ConfigFile("run-test-orchestrator/config.yaml")
}

// Load reads configuration from a YAML file, expanding ${VAR}/$VAR
// references against the process environment before parsing, matching
// the teacher's env-substitution behaviour. A missing file is not an
// error: the defaults are used in its place. The environment-variable
// overrides below apply either way.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		if p, err := DefaultConfigPath(); err == nil {
			path = p
		}
	}

	if _, err := os.Stat(path); path != "" && !os.IsNotExist(err) {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		expanded := []byte(os.ExpandEnv(string(data)))
		if err := yaml.Unmarshal(expanded, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if addr := os.Getenv("RUNTEST_METRICS_ADDR"); addr != "" {
		cfg.Reporting.MetricsAddr = addr
	}
	if GetEnvBoolean("ART_TEST_RUN_FROM_SOONG", false) {
		cfg.Framework.RunningUnderBuildShard = true
	}
	if GetEnvBoolean("ART_TEST_BISECTION", false) {
		cfg.Framework.ForceNoPrebuild = true
	}

	return cfg, nil
}

// Save writes configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate checks the settings needed before the probe can run.
func (c *Config) Validate() error {
	if c.Paths.MarkerFile == "" {
		return fmt.Errorf("paths.marker_file is required")
	}
	if c.Paths.TestDir == "" {
		return fmt.Errorf("paths.test_dir is required")
	}
	if len(c.Remote.ExecTemplate) == 0 {
		return fmt.Errorf("remote.exec_template is required")
	}
	if c.Timeouts.ChildTimeout <= 0 {
		return fmt.Errorf("timeouts.child_timeout must be positive")
	}
	return nil
}

// GetEnvBoolean parses the true|True|false|False literal convention used
// throughout the orchestrator's environment-variable surface; any other
// value, including unset, yields def.
func GetEnvBoolean(name string, def bool) bool {
	val, ok := os.LookupEnv(name)
	if !ok {
		return def
	}
	switch val {
	case "true", "True":
		return true
	case "false", "False":
		return false
	default:
		return def
	}
}
