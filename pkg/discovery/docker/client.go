// Package docker adapts the Docker Engine API into a RemoteExecutor
// backend, standing in for a physical device when none is reachable.
package docker

import (
	"context"
	"fmt"
	"io"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/client"
)

// Client wraps the Docker API client down to the single operation the
// orchestrator needs: running a command inside a container and
// collecting its combined output and exit code.
type Client struct {
	cli *client.Client
}

// New creates a Docker client from the ambient environment (DOCKER_HOST
// etc), negotiating the API version with the daemon.
func New() (*Client, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("failed to create Docker client: %w", err)
	}
	return &Client{cli: cli}, nil
}

// Close closes the Docker client connection.
func (c *Client) Close() error {
	if c.cli != nil {
		return c.cli.Close()
	}
	return nil
}

// ExecCommand runs cmd inside containerID and returns its combined
// stdout+stderr. A nonzero exit code is reported as an error carrying
// the captured output, matching the shell executor's error convention.
func (c *Client) ExecCommand(ctx context.Context, containerID string, cmd []string) (string, error) {
	execConfig := types.ExecConfig{
		Cmd:          cmd,
		AttachStdout: true,
		AttachStderr: true,
	}

	execID, err := c.cli.ContainerExecCreate(ctx, containerID, execConfig)
	if err != nil {
		return "", fmt.Errorf("failed to create exec: %w", err)
	}

	resp, err := c.cli.ContainerExecAttach(ctx, execID.ID, types.ExecStartCheck{})
	if err != nil {
		return "", fmt.Errorf("failed to attach to exec: %w", err)
	}
	defer resp.Close()

	output, err := io.ReadAll(resp.Reader)
	if err != nil {
		return string(output), fmt.Errorf("failed to read output: %w", err)
	}

	inspectResp, err := c.cli.ContainerExecInspect(ctx, execID.ID)
	if err != nil {
		return string(output), fmt.Errorf("failed to inspect exec: %w", err)
	}
	if inspectResp.ExitCode != 0 {
		return string(output), fmt.Errorf("command exited with code %d: %s", inspectResp.ExitCode, string(output))
	}

	return string(output), nil
}
