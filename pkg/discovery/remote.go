package discovery

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"

	"github.com/jihwankim/runtest-orchestrator/pkg/config"
)

// RemoteExecutor runs a command against whatever stands in for the
// target device: a physical/emulated device reached over adb, or a
// long-lived Docker container when no device is reachable. Combined
// stdout+stderr is returned, matching the probe commands' own output
// conventions (single-line values, no structured framing).
type RemoteExecutor interface {
	Exec(ctx context.Context, args []string) (string, error)
}

// shellExecutor runs cfg.Remote.ExecTemplate followed by the caller's
// command through os/exec, the default vehicle (adb shell, an SSH
// wrapper, or any other shell-shaped remote command).
type shellExecutor struct {
	template []string
}

// NewShellExecutor builds the default RemoteExecutor from the
// orchestrator's configured exec template (e.g. {"adb", "shell"}).
func NewShellExecutor(cfg *config.Config) RemoteExecutor {
	return &shellExecutor{template: cfg.Remote.ExecTemplate}
}

func (s *shellExecutor) Exec(ctx context.Context, args []string) (string, error) {
	if len(s.template) == 0 {
		return "", fmt.Errorf("remote exec template is empty")
	}
	full := append(append([]string(nil), s.template...), args...)
	cmd := exec.CommandContext(ctx, full[0], full[1:]...)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	if err := cmd.Run(); err != nil {
		return out.String(), err
	}
	return out.String(), nil
}

// ContainerClient is the subset of the Docker client used by
// dockerExecutor, satisfied by pkg/discovery/docker.Client.ExecCommand.
type ContainerClient interface {
	ExecCommand(ctx context.Context, containerID string, cmd []string) (string, error)
}

// dockerExecutor routes probe and diagnostic commands into a named
// container instead of a physical device, for CI environments that run
// the test matrix against an emulated target with no adb endpoint.
type dockerExecutor struct {
	client      ContainerClient
	containerID string
}

// NewDockerExecutor builds a RemoteExecutor backed by a running
// container, identified by name or ID in cfg.Remote.DockerContainer.
func NewDockerExecutor(client ContainerClient, containerID string) RemoteExecutor {
	return &dockerExecutor{client: client, containerID: containerID}
}

func (d *dockerExecutor) Exec(ctx context.Context, args []string) (string, error) {
	return d.client.ExecCommand(ctx, d.containerID, args)
}
