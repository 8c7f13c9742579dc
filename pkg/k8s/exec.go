package k8s

import (
	"bytes"
	"context"
	"fmt"
	"time"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/client-go/kubernetes/scheme"
	"k8s.io/client-go/tools/remotecommand"
)

// MaxExecTimeout is the maximum allowed timeout for exec operations to prevent abuse
const MaxExecTimeout = 1 * time.Minute

// DefaultExecTimeout applies when the caller does not supply one
const DefaultExecTimeout = 15 * time.Second

// ExecInPod executes a command in a pod container and returns the captured
// stdout/stderr as an unstructured result
func (c *Client) ExecInPod(ctx context.Context, namespace, name string, command []string, container string, timeout time.Duration) (*unstructured.Unstructured, error) {
	return c.execInPod(ctx, namespace, name, command, container, timeout)
}

// defaultExecInPod is the default implementation of ExecFunc
func (c *Client) defaultExecInPod(
	ctx context.Context,
	namespace, name string,
	command []string,
	container string,
	timeout time.Duration,
) (*unstructured.Unstructured, error) {
	if name == "" {
		return nil, fmt.Errorf("pod name cannot be empty")
	}

	if len(command) == 0 {
		return nil, fmt.Errorf("command cannot be empty")
	}

	if timeout <= 0 {
		timeout = DefaultExecTimeout
	}

	// Cap timeout to prevent abuse
	if timeout > MaxExecTimeout {
		timeout = MaxExecTimeout
	}

	execCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req := c.clientset.CoreV1().RESTClient().Post().
		Resource("pods").
		Name(name).
		Namespace(namespace).
		SubResource("exec")

	option := &corev1.PodExecOptions{
		Command: command,
		Stdin:   false,
		Stdout:  true,
		Stderr:  true,
		TTY:     false,
	}
	if container != "" {
		option.Container = container
	}

	req.VersionedParams(option, scheme.ParameterCodec)

	var stdout, stderr bytes.Buffer

	exec, err := remotecommand.NewSPDYExecutor(c.restConfig, "POST", req.URL())
	if err != nil {
		return nil, fmt.Errorf("failed to create SPDY executor: %w", err)
	}

	err = exec.StreamWithContext(execCtx, remotecommand.StreamOptions{
		Stdout: &stdout,
		Stderr: &stderr,
	})

	result := &unstructured.Unstructured{
		Object: map[string]interface{}{
			"apiVersion": "v1",
			"kind":       "Pod",
			"metadata": map[string]interface{}{
				"name":      name,
				"namespace": namespace,
			},
			"spec": map[string]interface{}{
				"command": command,
			},
			"status": map[string]interface{}{
				"stdout": stdout.String(),
				"stderr": stderr.String(),
				"error":  "",
			},
		},
	}

	// Report timeouts and command failures in the result rather than as
	// transport errors; the caller still gets whatever output was produced.
	if execCtx.Err() == context.DeadlineExceeded {
		result.Object["status"].(map[string]interface{})["error"] = "command timed out"
		return result, nil
	}

	if err != nil {
		result.Object["status"].(map[string]interface{})["error"] = err.Error()
		return result, nil
	}

	return result, nil
}
