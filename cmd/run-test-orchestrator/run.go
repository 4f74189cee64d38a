package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"sync"
	"sync/atomic"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jihwankim/runtest-orchestrator/pkg/archive"
	"github.com/jihwankim/runtest-orchestrator/pkg/config"
	"github.com/jihwankim/runtest-orchestrator/pkg/discovery"
	"github.com/jihwankim/runtest-orchestrator/pkg/expand"
	"github.com/jihwankim/runtest-orchestrator/pkg/metrics"
	"github.com/jihwankim/runtest-orchestrator/pkg/reporting"
	"github.com/jihwankim/runtest-orchestrator/pkg/variant"
	"github.com/jihwankim/runtest-orchestrator/pkg/worker"
)

var runCmd = &cobra.Command{
	Use:   "run [tests...]",
	Short: "Expand, filter, and execute the run-test matrix",
	Long: `Expands the discovered numbered test cases across the selected variant
axes, consults the known-failure catalogue for each resulting combination,
and launches the survivors under a bounded worker pool.

A positional argument is either a bare test name/prefix (e.g. "004-", "082")
or a fully-decorated canonical combination name, which additionally narrows
the selected axes to exactly what it names.`,
	RunE: runOrchestrator,
}

func init() {
	flags := runCmd.Flags()
	flags.IntP("jobs", "j", 0, "worker pool size (0: computed per the host/target CPU formula)")
	flags.Duration("timeout", 0, "per-combination timeout (0: config default, or the config's FVP default on FVP)")
	flags.Bool("dry-run", false, "print the planned combinations and launch nothing")
	flags.StringArray("skip", nil, "force-skip a test by name, regardless of the catalogue (repeatable)")
	flags.Bool("no-skips", false, "ignore the known-failure catalogue and forced skips; the nonfunctional set still applies")
	flags.Bool("all", false, "widen every axis to its full tag set")
	flags.Bool("keep-going", true, "continue launching remaining combinations after a failure")
	flags.Bool("shard", false, "running under a build-system shard: unknown catalogue test names are ignored, not fatal")

	flags.Bool("build", false, "run the configured build step before executing")
	flags.Bool("no-build-dependencies", false, "skip the build step even if --build is set")

	flags.Bool("dist", false, "pass 'dist' to the configured build command (requires --build)")
	flags.Bool("archive-results", false, "package the CSV sink and a run summary into a tar.gz archive")
	flags.String("csv-results", "", "write a tabular result sink to this path")
	flags.String("metrics-addr", "", "expose Prometheus metrics at this address")

	flags.String("gdb", "", "run the single selected combination under gdb; serializes to one worker and inherits stdio")
	flags.Lookup("gdb").NoOptDefVal = " "
	flags.String("gdb-dex2oat", "", "run dex2oat under gdb; serializes to one worker and inherits stdio")
	flags.Lookup("gdb-dex2oat").NoOptDefVal = " "

	flags.StringArray("runtime-option", nil, "passed through to the run-test child as --runtime-option VALUE (repeatable)")
	flags.StringArray("with-agent", nil, "passed through to the run-test child as --with-agent VALUE (repeatable)")
	flags.StringArray("run-test-option", nil, "passed through to the run-test child verbatim (repeatable)")
	flags.Int("dex2oat-jobs", 0, "passed through to the run-test child as --dex2oat-jobs N")
	flags.Bool("strace", false, "passed through to the run-test child as --strace")
	flags.Bool("always-clean", false, "passed through to the run-test child as --always-clean")
	flags.Bool("dump-cfg", false, "passed through to the run-test child as --dump-cfg")
	flags.Bool("force-no-prebuild", false, "drop prebuild from the selected set and add no-prebuild instead (ART_TEST_BISECTION equivalent)")
}

// runOrchestrator wires every package built so far into one invocation:
// config and environment probing, test discovery and axis selection, the
// skip oracle, combination expansion, the worker pool, and the progress
// and summary renderers. It owns the run's single cancellation path.
func runOrchestrator(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)
	runID := uuid.NewString()
	logger = logger.WithField("run_id", runID)

	flags := cmd.Flags()
	if csv, _ := flags.GetString("csv-results"); csv != "" {
		cfg.Reporting.CSVSink = csv
	}
	if addr, _ := flags.GetString("metrics-addr"); addr != "" {
		cfg.Reporting.MetricsAddr = addr
	}

	dryRun, _ := flags.GetBool("dry-run")
	noSkips, _ := flags.GetBool("no-skips")
	forcedSkip, _ := flags.GetStringArray("skip")
	shardFlag, _ := flags.GetBool("shard")
	shard := shardFlag || cfg.Framework.RunningUnderBuildShard
	forceNoPrebuild, _ := flags.GetBool("force-no-prebuild")
	forceNoPrebuild = forceNoPrebuild || cfg.Framework.ForceNoPrebuild
	widenAll, _ := flags.GetBool("all")
	keepGoing, _ := flags.GetBool("keep-going")
	doBuild, _ := flags.GetBool("build")
	noBuildDeps, _ := flags.GetBool("no-build-dependencies")
	passDist, _ := flags.GetBool("dist")
	doArchive, _ := flags.GetBool("archive-results")

	interactive := flags.Changed("gdb") || flags.Changed("gdb-dex2oat")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if doBuild && !noBuildDeps {
		if err := runBuildStep(ctx, cfg, logger, passDist); err != nil {
			return fmt.Errorf("build step: %w", err)
		}
	}

	// Build-top resolution only; the device facts (target CPU count,
	// device name) are filled in below once the selection tells us
	// whether a target combination is actually in play.
	env, err := discovery.Probe(ctx, cfg, nil, os.Getenv("TARGET_ARCH"), os.Getenv("TARGET_2ND_ARCH"), logger)
	if err != nil {
		return fmt.Errorf("probing environment: %w", err)
	}

	testDir := filepath.Join(env.BuildTop, cfg.Paths.TestDir)
	discovered, err := discovery.DiscoverTests(testDir)
	if err != nil {
		return fmt.Errorf("discovering tests: %w", err)
	}

	recognizer := variant.NewRecognizer(discovered)
	positional, narrow, err := resolveArgs(args, discovered, recognizer)
	if err != nil {
		return err
	}
	tests := positional
	if len(tests) == 0 {
		tests = discovered
	}

	userSel := selectionFromFlags(cmd)
	if widenAll {
		userSel = variant.WidenAll()
	}
	for axis, tags := range narrow {
		userSel[axis] = tags
	}
	sel := variant.Resolve(userSel)
	if forceNoPrebuild {
		sel[variant.AxisPrebuild] = []variant.Tag{variant.TagPrebuildNo}
	}

	combiningTargets, _ := variant.SplitTargets(sel[variant.AxisTarget])
	hasTargetDevice := containsTag(combiningTargets, variant.TagTargetTarget)

	executor, closeExecutor, err := buildExecutor(ctx, cfg, hasTargetDevice)
	if err != nil {
		return fmt.Errorf("building remote executor: %w", err)
	}
	defer closeExecutor()

	if hasTargetDevice {
		deviceEnv, err := discovery.Probe(ctx, cfg, executor, os.Getenv("TARGET_ARCH"), os.Getenv("TARGET_2ND_ARCH"), logger)
		if err != nil {
			return fmt.Errorf("probing target device: %w", err)
		}
		env = deviceEnv
	}

	addrSizes := expand.AddressSizesFromEnvironment(env)
	combos := expand.Expand(tests, sel, addrSizes)
	total := expand.PreCount(tests, sel, addrSizes)

	oracle, err := loadCatalogue(cfg, env.BuildTop, discovered, env.DeviceName, shard, forcedSkip, dryRun, noSkips)
	if err != nil {
		return fmt.Errorf("loading known-failure catalogue: %w", err)
	}
	nonfunctional, err := variant.ParseNonfunctionalSet(cfg.Nonfunctional)
	if err != nil {
		return fmt.Errorf("parsing nonfunctional set: %w", err)
	}
	oracle.Nonfunctional = nonfunctional

	isVM := config.GetEnvBoolean("ART_TEST_ON_VM", false)
	poolSize := worker.Size(env.HostCPUCount, env.TargetCPUCount, hasTargetDevice, isVM, interactive)
	if j, _ := flags.GetInt("jobs"); j > 0 {
		poolSize = j
	}

	timeout := cfg.Timeouts.ChildTimeout
	if env.OnFVP {
		timeout = cfg.Timeouts.ChildTimeoutOnFVP
	}
	if t, _ := flags.GetDuration("timeout"); t > 0 {
		timeout = t
	}

	run := reporting.NewRun(total)
	progress := reporting.NewProgress(os.Stdout, verbose)

	var sink *reporting.Sink
	if cfg.Reporting.CSVSink != "" {
		sink, err = reporting.NewSink(cfg.Reporting.CSVSink)
		if err != nil {
			return fmt.Errorf("opening result sink: %w", err)
		}
		defer sink.Close()
	}

	var metricsSrv *metrics.Metrics
	if cfg.Reporting.MetricsAddr != "" {
		metricsSrv = metrics.New()
		go func() {
			if err := metricsSrv.Serve(ctx, cfg.Reporting.MetricsAddr); err != nil {
				logger.Warn("metrics server stopped", "error", err)
			}
		}()
	}

	pool := worker.NewPool(poolSize)
	pool.Enqueue(combos)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			logger.Warn("interrupt received, cancelling pending work and killing running children")
			pool.Cancel()
			pool.Tracker().KillAll()
		case <-ctx.Done():
		}
	}()

	passthrough := passthroughArgs(cmd)
	runTestPath := cfg.Paths.RunTestExecutable
	if !filepath.IsAbs(runTestPath) {
		runTestPath = filepath.Join(env.BuildTop, runTestPath)
	}

	diagEnv := envMap()
	var completed int64
	var cancelOnce sync.Once

	pool.Dispatch(func(c variant.Combination) {
		idx := int(atomic.AddInt64(&completed, 1))

		if oracle.IsDisabled(c.Test, c) {
			comp := reporting.Completion{Name: c.Canonical(), Status: reporting.StatusSkip, Row: rowFor(c)}
			run.Record(comp)
			progress.Report(comp, idx, total)
			writeSinkRow(sink, comp)
			if metricsSrv != nil {
				metricsSrv.Skipped.Inc()
			}
			return
		}

		if metricsSrv != nil {
			metricsSrv.Dispatched.Inc()
			metricsSrv.Running.Inc()
		}

		childArgs := worker.BuildArgs(c, diagEnv)
		childArgs = append(childArgs, passthrough...)

		var diag *worker.Diagnostics
		if c.Target == variant.TagTargetTarget && executor != nil {
			diag = &worker.Diagnostics{
				Exec:         executor,
				ProcessName:  cfg.Remote.ProcessName,
				BacktraceCmd: cfg.Remote.BacktraceCommand,
				InnerSleep:   cfg.Timeouts.DiagnosticInner,
				OuterSleep:   cfg.Timeouts.DiagnosticOuter,
				Logger:       logger,
			}
		}

		result := worker.Launch(ctx, worker.LaunchOptions{
			Combination: c,
			Executable:  runTestPath,
			Args:        childArgs,
			Env:         worker.ChildEnv(c),
			Timeout:     timeout,
			Interactive: interactive,
			Diagnostics: diag,
		}, pool.Tracker())

		if metricsSrv != nil {
			metricsSrv.Running.Dec()
			switch result.Status {
			case worker.StatusPass:
				metricsSrv.Passed.Inc()
			default:
				metricsSrv.Failed.Inc()
			}
		}

		comp := worker.ToCompletion(result)
		comp.Row = rowFor(c)
		run.Record(comp)
		progress.Report(comp, idx, total)
		writeSinkRow(sink, comp)

		if !keepGoing && comp.Status != reporting.StatusPass {
			cancelOnce.Do(pool.Cancel)
		}
	})

	pool.StopWait()
	summary := run.Snapshot()
	reporting.PrintSummary(os.Stdout, summary)

	if doArchive {
		var extra []string
		if cfg.Reporting.CSVSink != "" {
			extra = append(extra, cfg.Reporting.CSVSink)
		}
		path, err := archive.Dist(cfg.Reporting.OutputDir, runID, summary, extra)
		if err != nil {
			return fmt.Errorf("archiving results: %w", err)
		}
		logger.Info("wrote results archive", "path", archive.DescribeSize(path))
	}

	code := run.ExitCode()
	if code != 0 {
		os.Exit(code)
	}
	return nil
}

// runBuildStep shells out to the configured build command with inherited
// stdio. Treated as opaque glue: the orchestrator only cares whether it
// exits zero. When passDist is set, "dist" is appended to the command
// line, matching testrunner.py's own --dist handling: it never packages
// anything itself, it only tells the build system to.
func runBuildStep(ctx context.Context, cfg *config.Config, logger *reporting.Logger, passDist bool) error {
	if len(cfg.Build.Command) == 0 {
		logger.Warn("--build was set but no build command is configured, skipping")
		return nil
	}
	command := cfg.Build.Command
	if passDist {
		command = append(append([]string{}, command...), "dist")
	}
	logger.Info("running build step", "command", command)
	cmd := exec.CommandContext(ctx, command[0], command[1:]...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Stdin = os.Stdin
	return cmd.Run()
}

// passthroughArgs renders the repeatable option flags and --dex2oat-jobs
// into run-test child arguments, plus --gdb/--gdb-dex2oat when set.
func passthroughArgs(cmd *cobra.Command) []string {
	flags := cmd.Flags()
	var args []string

	if gdb, _ := flags.GetString("gdb"); flags.Changed("gdb") {
		if gdb != "" && gdb != " " {
			args = append(args, "--gdb-arg="+gdb)
		}
		args = append(args, "--gdb")
	}
	if gdbDex2oat, _ := flags.GetString("gdb-dex2oat"); flags.Changed("gdb-dex2oat") {
		if gdbDex2oat != "" && gdbDex2oat != " " {
			args = append(args, "--gdb-dex2oat-args="+gdbDex2oat)
		}
		args = append(args, "--gdb-dex2oat")
	}

	if opts, _ := flags.GetStringArray("runtime-option"); len(opts) > 0 {
		for _, o := range opts {
			args = append(args, "--runtime-option", o)
		}
	}
	if agents, _ := flags.GetStringArray("with-agent"); len(agents) > 0 {
		for _, a := range agents {
			args = append(args, "--with-agent", a)
		}
	}
	if opts, _ := flags.GetStringArray("run-test-option"); len(opts) > 0 {
		args = append(args, opts...)
	}
	if jobs, _ := flags.GetInt("dex2oat-jobs"); jobs > 0 {
		args = append(args, fmt.Sprintf("--dex2oat-jobs=%d", jobs))
	}
	if on, _ := flags.GetBool("strace"); on {
		args = append(args, "--strace")
	}
	if on, _ := flags.GetBool("always-clean"); on {
		args = append(args, "--always-clean")
	}
	if on, _ := flags.GetBool("dump-cfg"); on {
		args = append(args, "--dump-cfg")
	}
	return args
}

func containsTag(tags []variant.Tag, want variant.Tag) bool {
	for _, t := range tags {
		if t == want {
			return true
		}
	}
	return false
}

func rowFor(c variant.Combination) reporting.SinkRow {
	return reporting.SinkRow{
		Target:      string(c.Target),
		Run:         string(c.Run),
		Prebuild:    string(c.Prebuild),
		Compiler:    string(c.Compiler),
		Relocate:    string(c.Relocate),
		Trace:       string(c.Trace),
		GC:          string(c.GC),
		JNI:         string(c.JNI),
		Image:       string(c.Image),
		Debuggable:  string(c.Debuggable),
		JVMTI:       string(c.JVMTI),
		Test:        c.Test,
		AddressSize: string(c.AddressSize),
	}
}

func writeSinkRow(sink *reporting.Sink, comp reporting.Completion) {
	if sink == nil {
		return
	}
	_ = sink.WriteRow(comp.Row, comp.Status)
}
