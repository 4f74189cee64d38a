package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jihwankim/runtest-orchestrator/pkg/catalogue"
	"github.com/jihwankim/runtest-orchestrator/pkg/config"
	"github.com/jihwankim/runtest-orchestrator/pkg/discovery"
	"github.com/jihwankim/runtest-orchestrator/pkg/discovery/docker"
	"github.com/jihwankim/runtest-orchestrator/pkg/reporting"
)

// loadConfig loads the orchestrator's own settings, falling back to the
// built-in defaults when no file exists at cfgFile or the XDG default
// path — matching the teacher's "missing config is not an error" rule.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// buildExecutor constructs the RemoteExecutor used for device probes and
// timeout diagnostics: a Docker container when configured, otherwise the
// default shell vehicle (adb shell or equivalent). Returns nil when no
// target combination was selected, so the probe never needs a device at
// all.
func buildExecutor(ctx context.Context, cfg *config.Config, needsDevice bool) (discovery.RemoteExecutor, func(), error) {
	if !needsDevice {
		return nil, func() {}, nil
	}
	if cfg.Remote.DockerContainer != "" {
		client, err := docker.New()
		if err != nil {
			return nil, nil, fmt.Errorf("creating docker client: %w", err)
		}
		cleanup := func() { _ = client.Close() }
		return discovery.NewDockerExecutor(client, cfg.Remote.DockerContainer), cleanup, nil
	}
	return discovery.NewShellExecutor(cfg), func() {}, nil
}

// loadCatalogue reads the known-failure catalogue and builds the skip
// oracle against the discovered test universe.
func loadCatalogue(cfg *config.Config, buildTop string, discovered []string, device string, runningUnderBuildShard bool, forcedSkip []string, dryRun, ignoreSkips bool) (*catalogue.Oracle, error) {
	path := cfg.Paths.KnownFailuresFile
	if !filepath.IsAbs(path) {
		path = filepath.Join(buildTop, path)
	}

	known := make(map[string]bool, len(discovered))
	for _, t := range discovered {
		known[t] = true
	}

	var rules []catalogue.Rule
	if _, err := os.Stat(path); err == nil {
		rules, err = catalogue.Load(path)
		if err != nil {
			return nil, err
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("stat known-failures file: %w", err)
	}

	table, err := catalogue.BuildSkipTable(rules, catalogue.BuildOptions{
		KnownTests:             known,
		Device:                 device,
		Env:                    envMap(),
		RunningUnderBuildShard: runningUnderBuildShard,
	})
	if err != nil {
		return nil, err
	}

	forced := make(map[string]bool, len(forcedSkip))
	for _, name := range forcedSkip {
		forced[name] = true
	}

	return &catalogue.Oracle{
		Table:       table,
		ForcedSkip:  forced,
		DryRun:      dryRun,
		IgnoreSkips: ignoreSkips,
	}, nil
}

func envMap() map[string]string {
	out := make(map[string]string)
	for _, kv := range os.Environ() {
		for i := 0; i < len(kv); i++ {
			if kv[i] == '=' {
				out[kv[:i]] = kv[i+1:]
				break
			}
		}
	}
	return out
}

// newLogger wires reporting.Logger from the orchestrator config and the
// --verbose flag.
func newLogger(cfg *config.Config) *reporting.Logger {
	level := reporting.LogLevel(cfg.Framework.LogLevel)
	if verbose {
		level = reporting.LogLevelDebug
	}
	return reporting.NewLogger(reporting.LoggerConfig{
		Level:  level,
		Format: reporting.LogFormat(cfg.Framework.LogFormat),
		Output: os.Stdout,
	})
}
