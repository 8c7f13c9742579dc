package k8s

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// GetPodLogs fetches logs for a pod. When the pod has several containers the
// first one is used and a note naming the others is prepended, matching
// kubectl's "defaulted container" behavior. sinceDuration accepts relative
// durations like 5s, 2m, 3h or 1d.
func (c *Client) GetPodLogs(ctx context.Context, namespace, pod string, previous bool, sinceDuration string) (string, error) {
	podObj, err := c.clientset.CoreV1().Pods(namespace).Get(ctx, pod, metav1.GetOptions{})
	if err != nil {
		if IsNotFound(err) {
			return "", fmt.Errorf("pod %q not found in namespace %q", pod, namespace)
		}
		return "", fmt.Errorf("failed to get pod %s/%s: %w", namespace, pod, err)
	}

	options := &corev1.PodLogOptions{Previous: previous}

	var container string
	if len(podObj.Spec.Containers) > 1 {
		container = podObj.Spec.Containers[0].Name
		options.Container = container
	}

	if sinceDuration != "" {
		seconds, err := parseDurationSeconds(sinceDuration)
		if err != nil {
			return "", err
		}
		options.SinceSeconds = &seconds
	}

	stream, err := c.clientset.CoreV1().Pods(namespace).GetLogs(pod, options).Stream(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to get logs for pod %s/%s: %w", namespace, pod, err)
	}
	defer func() { _ = stream.Close() }()

	logs, err := io.ReadAll(stream)
	if err != nil {
		return "", fmt.Errorf("failed to read logs for pod %s/%s: %w", namespace, pod, err)
	}

	if container != "" {
		others := make([]string, 0, len(podObj.Spec.Containers)-1)
		for _, cnt := range podObj.Spec.Containers {
			if cnt.Name != container {
				others = append(others, cnt.Name)
			}
		}
		note := fmt.Sprintf("Note: Pod has multiple containers, showing logs for container %q. Other containers: %s\n\n",
			container, strings.Join(others, ", "))
		return note + string(logs), nil
	}

	return string(logs), nil
}

// parseDurationSeconds converts 5s, 2m, 3h or 1d into seconds.
func parseDurationSeconds(duration string) (int64, error) {
	if len(duration) < 2 {
		return 0, fmt.Errorf("invalid duration format: %s", duration)
	}

	value, err := strconv.ParseInt(duration[:len(duration)-1], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid duration format: %s", duration)
	}

	switch strings.ToLower(duration[len(duration)-1:]) {
	case "s":
		return value, nil
	case "m":
		return value * 60, nil
	case "h":
		return value * 3600, nil
	case "d":
		return value * 86400, nil
	default:
		return 0, fmt.Errorf("invalid duration unit: %s", duration[len(duration)-1:])
	}
}
