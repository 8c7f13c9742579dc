package k8s

import (
	"context"
	"encoding/json"
	"fmt"

	corev1 "k8s.io/api/core/v1"
	policyv1 "k8s.io/api/policy/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"
)

// DrainOptions controls which pods a drain will evict.
type DrainOptions struct {
	Force            bool
	IgnoreDaemonSets bool
	DeleteLocalData  bool
	GracePeriod      *int64
}

// Cordon marks a node unschedulable
func (c *Client) Cordon(ctx context.Context, nodeName string) (map[string]interface{}, error) {
	return c.setUnschedulable(ctx, nodeName, true)
}

// Uncordon marks a node schedulable again
func (c *Client) Uncordon(ctx context.Context, nodeName string) (map[string]interface{}, error) {
	return c.setUnschedulable(ctx, nodeName, false)
}

func (c *Client) setUnschedulable(ctx context.Context, nodeName string, unschedulable bool) (map[string]interface{}, error) {
	node, err := c.clientset.CoreV1().Nodes().Get(ctx, nodeName, metav1.GetOptions{})
	if err != nil {
		return nil, wrapNodeErr(err, nodeName)
	}

	verb := "cordoned"
	if !unschedulable {
		verb = "uncordoned"
	}
	if node.Spec.Unschedulable == unschedulable {
		return map[string]interface{}{
			"success": true,
			"message": fmt.Sprintf("Node %s is already %s", nodeName, verb),
			"changed": false,
		}, nil
	}

	patch, err := json.Marshal(map[string]interface{}{
		"spec": map[string]interface{}{"unschedulable": unschedulable},
	})
	if err != nil {
		return nil, err
	}
	if _, err := c.clientset.CoreV1().Nodes().Patch(ctx, nodeName, types.StrategicMergePatchType, patch, metav1.PatchOptions{}); err != nil {
		return nil, fmt.Errorf("failed to patch node %s: %w", nodeName, err)
	}

	return map[string]interface{}{
		"success": true,
		"message": fmt.Sprintf("Node %s %s", nodeName, verb),
		"changed": true,
	}, nil
}

// Drain cordons a node and then evicts its pods. DaemonSet pods, mirror pods
// and pods with local storage are skipped according to opts; each pod's
// outcome is reported individually.
func (c *Client) Drain(ctx context.Context, nodeName string, opts DrainOptions) (map[string]interface{}, error) {
	cordonResult, err := c.Cordon(ctx, nodeName)
	if err != nil {
		return nil, err
	}

	pods, err := c.clientset.CoreV1().Pods("").List(ctx, metav1.ListOptions{
		FieldSelector: "spec.nodeName=" + nodeName,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list pods on node %s: %w", nodeName, err)
	}

	evicted := []string{}
	skipped := []map[string]string{}
	failed := []map[string]string{}

	for i := range pods.Items {
		pod := &pods.Items[i]
		podRef := pod.Namespace + "/" + pod.Name

		if reason, skip := drainSkipReason(pod, opts); skip {
			skipped = append(skipped, map[string]string{"pod": podRef, "reason": reason})
			continue
		}

		eviction := &policyv1.Eviction{
			ObjectMeta: metav1.ObjectMeta{
				Name:      pod.Name,
				Namespace: pod.Namespace,
			},
		}
		if opts.GracePeriod != nil {
			eviction.DeleteOptions = &metav1.DeleteOptions{GracePeriodSeconds: opts.GracePeriod}
		}

		if err := c.clientset.PolicyV1().Evictions(pod.Namespace).Evict(ctx, eviction); err != nil {
			failed = append(failed, map[string]string{"pod": podRef, "error": err.Error()})
			continue
		}
		evicted = append(evicted, podRef)
	}

	return map[string]interface{}{
		"success":   len(failed) == 0,
		"node":      nodeName,
		"cordoned":  cordonResult["changed"],
		"evicted":   evicted,
		"skipped":   skipped,
		"failed":    failed,
		"pod_count": len(pods.Items),
	}, nil
}

// drainSkipReason decides whether a pod survives the drain and why.
func drainSkipReason(pod *corev1.Pod, opts DrainOptions) (string, bool) {
	if pod.Status.Phase == corev1.PodSucceeded || pod.Status.Phase == corev1.PodFailed {
		return "pod already finished", true
	}
	if _, mirror := pod.Annotations[corev1.MirrorPodAnnotationKey]; mirror {
		return "mirror pod managed by kubelet", true
	}

	var controller *metav1.OwnerReference
	for i := range pod.OwnerReferences {
		ref := &pod.OwnerReferences[i]
		if ref.Controller != nil && *ref.Controller {
			controller = ref
			break
		}
	}

	// With IgnoreDaemonSets the pod survives the drain; without it the pod
	// is evicted like any other controller-managed pod.
	if controller != nil && controller.Kind == "DaemonSet" && opts.IgnoreDaemonSets {
		return "daemonset pod", true
	}

	if controller == nil && !opts.Force {
		return "unmanaged pod (use force to evict)", true
	}

	if !opts.DeleteLocalData && !opts.Force {
		for i := range pod.Spec.Volumes {
			if pod.Spec.Volumes[i].EmptyDir != nil {
				return "pod has local storage (use delete_local_data to evict)", true
			}
		}
	}

	return "", false
}

// Taint adds or updates a taint on a node
func (c *Client) Taint(ctx context.Context, nodeName, key, value, effect string) (map[string]interface{}, error) {
	taintEffect, err := parseTaintEffect(effect)
	if err != nil {
		return nil, err
	}
	if key == "" {
		return nil, fmt.Errorf("taint key is required")
	}

	node, err := c.clientset.CoreV1().Nodes().Get(ctx, nodeName, metav1.GetOptions{})
	if err != nil {
		return nil, wrapNodeErr(err, nodeName)
	}

	newTaint := corev1.Taint{Key: key, Value: value, Effect: taintEffect}
	updated := false
	for i := range node.Spec.Taints {
		if node.Spec.Taints[i].Key == key && node.Spec.Taints[i].Effect == taintEffect {
			node.Spec.Taints[i] = newTaint
			updated = true
			break
		}
	}
	if !updated {
		node.Spec.Taints = append(node.Spec.Taints, newTaint)
	}

	if _, err := c.clientset.CoreV1().Nodes().Update(ctx, node, metav1.UpdateOptions{}); err != nil {
		return nil, fmt.Errorf("failed to taint node %s: %w", nodeName, err)
	}

	action := "added to"
	if updated {
		action = "updated on"
	}
	return map[string]interface{}{
		"success": true,
		"message": fmt.Sprintf("Taint %s=%s:%s %s node %s", key, value, effect, action, nodeName),
	}, nil
}

// Untaint removes taints with the given key from a node, optionally narrowed
// to a single effect
func (c *Client) Untaint(ctx context.Context, nodeName, key, effect string) (map[string]interface{}, error) {
	if key == "" {
		return nil, fmt.Errorf("taint key is required")
	}
	var taintEffect corev1.TaintEffect
	if effect != "" {
		parsed, err := parseTaintEffect(effect)
		if err != nil {
			return nil, err
		}
		taintEffect = parsed
	}

	node, err := c.clientset.CoreV1().Nodes().Get(ctx, nodeName, metav1.GetOptions{})
	if err != nil {
		return nil, wrapNodeErr(err, nodeName)
	}

	remaining := node.Spec.Taints[:0]
	removed := 0
	for _, taint := range node.Spec.Taints {
		if taint.Key == key && (taintEffect == "" || taint.Effect == taintEffect) {
			removed++
			continue
		}
		remaining = append(remaining, taint)
	}
	if removed == 0 {
		return nil, fmt.Errorf("taint %q not found on node %s", key, nodeName)
	}
	node.Spec.Taints = remaining

	if _, err := c.clientset.CoreV1().Nodes().Update(ctx, node, metav1.UpdateOptions{}); err != nil {
		return nil, fmt.Errorf("failed to untaint node %s: %w", nodeName, err)
	}

	return map[string]interface{}{
		"success": true,
		"message": fmt.Sprintf("Removed %d taint(s) with key %s from node %s", removed, key, nodeName),
	}, nil
}

func parseTaintEffect(effect string) (corev1.TaintEffect, error) {
	switch effect {
	case "NoSchedule":
		return corev1.TaintEffectNoSchedule, nil
	case "PreferNoSchedule":
		return corev1.TaintEffectPreferNoSchedule, nil
	case "NoExecute":
		return corev1.TaintEffectNoExecute, nil
	}
	return "", fmt.Errorf("invalid taint effect %q; must be NoSchedule, PreferNoSchedule or NoExecute", effect)
}

func wrapNodeErr(err error, nodeName string) error {
	if IsNotFound(err) {
		return fmt.Errorf("node %q not found", nodeName)
	}
	return fmt.Errorf("failed to access node %s: %w", nodeName, err)
}
