package k8s

import (
	"context"
	"fmt"
	"strings"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// Issue is one problem found while diagnosing a workload.
type Issue struct {
	Severity string `json:"severity"`
	Resource string `json:"resource"`
	Message  string `json:"message"`
}

// DiagnoseApplication inspects a deployment and its pods and reports replica
// health, per-pod problems, warning events and recent logs from unhealthy
// containers
func (c *Client) DiagnoseApplication(ctx context.Context, namespace, name string) (map[string]interface{}, error) {
	dep, err := c.clientset.AppsV1().Deployments(namespace).Get(ctx, name, metav1.GetOptions{})
	if err != nil {
		return nil, wrapWorkloadErr(err, "deployment", namespace, name)
	}

	var desired int32 = 1
	if dep.Spec.Replicas != nil {
		desired = *dep.Spec.Replicas
	}

	issues := []Issue{}
	if dep.Status.ReadyReplicas < desired {
		issues = append(issues, Issue{
			Severity: "critical",
			Resource: "deployment/" + name,
			Message:  fmt.Sprintf("only %d of %d replicas are ready", dep.Status.ReadyReplicas, desired),
		})
	}
	for _, condition := range dep.Status.Conditions {
		if condition.Type == "Progressing" && condition.Status == corev1.ConditionFalse {
			issues = append(issues, Issue{
				Severity: "critical",
				Resource: "deployment/" + name,
				Message:  fmt.Sprintf("rollout is not progressing: %s", condition.Message),
			})
		}
		if condition.Type == "ReplicaFailure" && condition.Status == corev1.ConditionTrue {
			issues = append(issues, Issue{
				Severity: "critical",
				Resource: "deployment/" + name,
				Message:  fmt.Sprintf("replica failure: %s", condition.Message),
			})
		}
	}

	selector := ""
	if dep.Spec.Selector != nil {
		selector = metav1.FormatLabelSelector(dep.Spec.Selector)
	}
	pods, err := c.clientset.CoreV1().Pods(namespace).List(ctx, metav1.ListOptions{LabelSelector: selector})
	if err != nil {
		return nil, fmt.Errorf("failed to list pods for deployment %s/%s: %w", namespace, name, err)
	}

	podSummaries := make([]map[string]interface{}, 0, len(pods.Items))
	unhealthy := []string{}
	for i := range pods.Items {
		pod := &pods.Items[i]
		summary, podIssues := diagnosePod(pod)
		podSummaries = append(podSummaries, summary)
		issues = append(issues, podIssues...)
		if len(podIssues) > 0 {
			unhealthy = append(unhealthy, pod.Name)
		}
	}

	warnings := c.warningEventsFor(ctx, namespace, name, pods)
	for _, warning := range warnings {
		issues = append(issues, Issue{
			Severity: "warning",
			Resource: warning["object"],
			Message:  fmt.Sprintf("%s: %s", warning["reason"], warning["message"]),
		})
	}

	logs := map[string]string{}
	for _, podName := range unhealthy {
		if len(logs) >= 3 {
			break
		}
		output, err := c.GetPodLogs(ctx, namespace, podName, false, "5m")
		if err != nil {
			continue
		}
		logs[podName] = tailLines(output, 20)
	}

	healthy := len(issues) == 0
	return map[string]interface{}{
		"deployment": map[string]interface{}{
			"name":      dep.Name,
			"namespace": dep.Namespace,
			"replicas": map[string]interface{}{
				"desired":   desired,
				"ready":     dep.Status.ReadyReplicas,
				"updated":   dep.Status.UpdatedReplicas,
				"available": dep.Status.AvailableReplicas,
			},
		},
		"pods":           podSummaries,
		"warning_events": warnings,
		"recent_logs":    logs,
		"issues":         issues,
		"healthy":        healthy,
	}, nil
}

// diagnosePod summarizes one pod and collects its problems.
func diagnosePod(pod *corev1.Pod) (map[string]interface{}, []Issue) {
	var issues []Issue
	ref := "pod/" + pod.Name

	if pod.Status.Phase == corev1.PodPending {
		issues = append(issues, Issue{
			Severity: "warning",
			Resource: ref,
			Message:  "pod is stuck in Pending",
		})
	}
	if pod.Status.Phase == corev1.PodFailed {
		issues = append(issues, Issue{
			Severity: "critical",
			Resource: ref,
			Message:  "pod has failed: " + pod.Status.Reason,
		})
	}

	var restarts int32
	containers := make([]map[string]interface{}, 0, len(pod.Status.ContainerStatuses))
	for i := range pod.Status.ContainerStatuses {
		status := &pod.Status.ContainerStatuses[i]
		restarts += status.RestartCount

		state := "running"
		reason := ""
		switch {
		case status.State.Waiting != nil:
			state = "waiting"
			reason = status.State.Waiting.Reason
		case status.State.Terminated != nil:
			state = "terminated"
			reason = status.State.Terminated.Reason
		}

		if reason == "CrashLoopBackOff" || reason == "ImagePullBackOff" || reason == "ErrImagePull" || reason == "OOMKilled" {
			issues = append(issues, Issue{
				Severity: "critical",
				Resource: ref,
				Message:  fmt.Sprintf("container %s is in %s", status.Name, reason),
			})
		}
		if status.RestartCount > 5 {
			issues = append(issues, Issue{
				Severity: "warning",
				Resource: ref,
				Message:  fmt.Sprintf("container %s has restarted %d times", status.Name, status.RestartCount),
			})
		}

		containers = append(containers, map[string]interface{}{
			"name":     status.Name,
			"ready":    status.Ready,
			"restarts": status.RestartCount,
			"state":    state,
			"reason":   reason,
		})
	}

	summary := map[string]interface{}{
		"name":       pod.Name,
		"phase":      string(pod.Status.Phase),
		"restarts":   restarts,
		"containers": containers,
		"node":       pod.Spec.NodeName,
	}
	return summary, issues
}

// warningEventsFor collects Warning events for the deployment and its pods.
func (c *Client) warningEventsFor(ctx context.Context, namespace, name string, pods *corev1.PodList) []map[string]string {
	events, err := c.clientset.CoreV1().Events(namespace).List(ctx, metav1.ListOptions{
		FieldSelector: "type=Warning",
	})
	if err != nil {
		return nil
	}

	related := map[string]bool{name: true}
	for i := range pods.Items {
		related[pods.Items[i].Name] = true
	}

	var warnings []map[string]string
	for i := range events.Items {
		event := &events.Items[i]
		if !related[event.InvolvedObject.Name] {
			continue
		}
		warnings = append(warnings, map[string]string{
			"object":  strings.ToLower(event.InvolvedObject.Kind) + "/" + event.InvolvedObject.Name,
			"reason":  event.Reason,
			"message": event.Message,
		})
		if len(warnings) >= 20 {
			break
		}
	}
	return warnings
}

func tailLines(output string, n int) string {
	lines := strings.Split(strings.TrimRight(output, "\n"), "\n")
	if len(lines) <= n {
		return output
	}
	return strings.Join(lines[len(lines)-n:], "\n")
}
