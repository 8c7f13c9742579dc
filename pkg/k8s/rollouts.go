package k8s

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	appsv1 "k8s.io/api/apps/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/labels"
	"k8s.io/apimachinery/pkg/types"
)

const (
	revisionAnnotation    = "deployment.kubernetes.io/revision"
	changeCauseAnnotation = "kubernetes.io/change-cause"
	restartedAtAnnotation = "kubectl.kubernetes.io/restartedAt"
)

// Revision is one entry in a workload's rollout history
type Revision struct {
	Revision    string `json:"revision"`
	ChangeCause string `json:"change_cause"`
	Created     string `json:"created,omitempty"`
	Replicas    *int32 `json:"replicas,omitempty"`
	Hash        string `json:"revision_hash,omitempty"`
}

// rolloutKinds are the workload types the rollout family operates on.
func validRolloutKind(resourceType string) error {
	switch resourceType {
	case "deployment", "statefulset", "daemonset":
		return nil
	}
	return fmt.Errorf("unsupported resource type: %s; supported types: deployment, statefulset, daemonset", resourceType)
}

// RolloutStatus reports the rollout progress of a deployment, statefulset or
// daemonset
func (c *Client) RolloutStatus(ctx context.Context, resourceType, namespace, name string) (map[string]interface{}, error) {
	if err := validRolloutKind(resourceType); err != nil {
		return nil, err
	}

	switch resourceType {
	case "deployment":
		dep, err := c.clientset.AppsV1().Deployments(namespace).Get(ctx, name, metav1.GetOptions{})
		if err != nil {
			return nil, wrapWorkloadErr(err, resourceType, namespace, name)
		}
		var desired int32
		if dep.Spec.Replicas != nil {
			desired = *dep.Spec.Replicas
		}
		conditions := make([]map[string]interface{}, 0, len(dep.Status.Conditions))
		for _, condition := range dep.Status.Conditions {
			conditions = append(conditions, map[string]interface{}{
				"type":    string(condition.Type),
				"status":  string(condition.Status),
				"reason":  condition.Reason,
				"message": condition.Message,
			})
		}
		complete := dep.Status.ObservedGeneration >= dep.Generation &&
			dep.Status.UpdatedReplicas == desired &&
			dep.Status.AvailableReplicas == desired
		return map[string]interface{}{
			"name":                dep.Name,
			"namespace":           dep.Namespace,
			"generation":          dep.Generation,
			"observed_generation": dep.Status.ObservedGeneration,
			"paused":              dep.Spec.Paused,
			"replicas": map[string]interface{}{
				"desired":     desired,
				"updated":     dep.Status.UpdatedReplicas,
				"ready":       dep.Status.ReadyReplicas,
				"available":   dep.Status.AvailableReplicas,
				"unavailable": dep.Status.UnavailableReplicas,
			},
			"conditions": conditions,
			"complete":   complete,
		}, nil

	case "statefulset":
		sts, err := c.clientset.AppsV1().StatefulSets(namespace).Get(ctx, name, metav1.GetOptions{})
		if err != nil {
			return nil, wrapWorkloadErr(err, resourceType, namespace, name)
		}
		var desired int32
		if sts.Spec.Replicas != nil {
			desired = *sts.Spec.Replicas
		}
		return map[string]interface{}{
			"name":                sts.Name,
			"namespace":           sts.Namespace,
			"generation":          sts.Generation,
			"observed_generation": sts.Status.ObservedGeneration,
			"replicas": map[string]interface{}{
				"desired": desired,
				"updated": sts.Status.UpdatedReplicas,
				"ready":   sts.Status.ReadyReplicas,
				"current": sts.Status.CurrentReplicas,
			},
			"current_revision": sts.Status.CurrentRevision,
			"update_revision":  sts.Status.UpdateRevision,
			"complete":         sts.Status.UpdateRevision == sts.Status.CurrentRevision && sts.Status.ReadyReplicas == desired,
		}, nil

	default:
		ds, err := c.clientset.AppsV1().DaemonSets(namespace).Get(ctx, name, metav1.GetOptions{})
		if err != nil {
			return nil, wrapWorkloadErr(err, resourceType, namespace, name)
		}
		return map[string]interface{}{
			"name":                ds.Name,
			"namespace":           ds.Namespace,
			"generation":          ds.Generation,
			"observed_generation": ds.Status.ObservedGeneration,
			"replicas": map[string]interface{}{
				"desired":   ds.Status.DesiredNumberScheduled,
				"current":   ds.Status.CurrentNumberScheduled,
				"updated":   ds.Status.UpdatedNumberScheduled,
				"ready":     ds.Status.NumberReady,
				"available": ds.Status.NumberAvailable,
			},
			"complete": ds.Status.UpdatedNumberScheduled == ds.Status.DesiredNumberScheduled &&
				ds.Status.NumberReady == ds.Status.DesiredNumberScheduled,
		}, nil
	}
}

// RolloutHistory returns the revision history of a workload. Deployments use
// their ReplicaSets' revision annotations, statefulsets their current/update
// revisions, daemonsets their ControllerRevisions.
func (c *Client) RolloutHistory(ctx context.Context, resourceType, namespace, name string) ([]Revision, error) {
	if err := validRolloutKind(resourceType); err != nil {
		return nil, err
	}

	switch resourceType {
	case "deployment":
		return c.deploymentHistory(ctx, namespace, name)
	case "statefulset":
		return c.statefulSetHistory(ctx, namespace, name)
	default:
		return c.daemonSetHistory(ctx, namespace, name)
	}
}

func (c *Client) deploymentHistory(ctx context.Context, namespace, name string) ([]Revision, error) {
	dep, err := c.clientset.AppsV1().Deployments(namespace).Get(ctx, name, metav1.GetOptions{})
	if err != nil {
		return nil, wrapWorkloadErr(err, "deployment", namespace, name)
	}

	replicaSets, err := c.replicaSetsFor(ctx, namespace, dep)
	if err != nil {
		return nil, err
	}

	revisions := make([]Revision, 0, len(replicaSets))
	for i := range replicaSets {
		rs := &replicaSets[i]
		revision := Revision{
			Revision:    rs.Annotations[revisionAnnotation],
			ChangeCause: changeCause(rs.Annotations),
			Created:     timestampString(rs.CreationTimestamp),
			Replicas:    rs.Spec.Replicas,
		}
		if revision.Revision == "" {
			revision.Revision = "unknown"
		}
		revisions = append(revisions, revision)
	}

	sortRevisionsDescending(revisions)
	return revisions, nil
}

func (c *Client) statefulSetHistory(ctx context.Context, namespace, name string) ([]Revision, error) {
	sts, err := c.clientset.AppsV1().StatefulSets(namespace).Get(ctx, name, metav1.GetOptions{})
	if err != nil {
		return nil, wrapWorkloadErr(err, "statefulset", namespace, name)
	}

	revisions := []Revision{{
		Revision:    "current",
		Hash:        sts.Status.CurrentRevision,
		ChangeCause: changeCause(sts.Annotations),
		Created:     timestampString(sts.CreationTimestamp),
		Replicas:    sts.Spec.Replicas,
	}}

	if sts.Status.UpdateRevision != "" && sts.Status.UpdateRevision != sts.Status.CurrentRevision {
		revisions = append(revisions, Revision{
			Revision:    "update",
			Hash:        sts.Status.UpdateRevision,
			ChangeCause: changeCause(sts.Annotations),
		})
	}
	return revisions, nil
}

func (c *Client) daemonSetHistory(ctx context.Context, namespace, name string) ([]Revision, error) {
	ds, err := c.clientset.AppsV1().DaemonSets(namespace).Get(ctx, name, metav1.GetOptions{})
	if err != nil {
		return nil, wrapWorkloadErr(err, "daemonset", namespace, name)
	}

	selector := ""
	if ds.Spec.Selector != nil {
		selector = labels.Set(ds.Spec.Selector.MatchLabels).String()
	}
	if selector == "" {
		return []Revision{{Revision: "current", ChangeCause: changeCause(ds.Annotations)}}, nil
	}

	controllerRevisions, err := c.clientset.AppsV1().ControllerRevisions(namespace).List(ctx, metav1.ListOptions{
		LabelSelector: selector,
	})
	if err != nil {
		// History is best effort; the current revision is always reportable.
		return []Revision{{Revision: "current", ChangeCause: changeCause(ds.Annotations)}}, nil
	}

	revisions := make([]Revision, 0, len(controllerRevisions.Items))
	for i := range controllerRevisions.Items {
		rev := &controllerRevisions.Items[i]
		if !ownedBy(rev.OwnerReferences, "DaemonSet", name) {
			continue
		}
		revisions = append(revisions, Revision{
			Revision:    strconv.FormatInt(rev.Revision, 10),
			ChangeCause: changeCause(rev.Annotations),
			Created:     timestampString(rev.CreationTimestamp),
		})
	}

	sortRevisionsDescending(revisions)
	return revisions, nil
}

// RolloutUndo rolls a workload back to a previous revision, the immediately
// preceding one when toRevision is zero. Deployments get the target
// ReplicaSet's pod template; statefulsets and daemonsets get a rollback
// annotation patch referencing the target controller revision.
func (c *Client) RolloutUndo(ctx context.Context, resourceType, namespace, name string, toRevision int64) (map[string]interface{}, error) {
	if err := validRolloutKind(resourceType); err != nil {
		return nil, err
	}

	switch resourceType {
	case "statefulset":
		return c.statefulSetUndo(ctx, namespace, name, toRevision)
	case "daemonset":
		return c.daemonSetUndo(ctx, namespace, name, toRevision)
	}

	dep, err := c.clientset.AppsV1().Deployments(namespace).Get(ctx, name, metav1.GetOptions{})
	if err != nil {
		return nil, wrapWorkloadErr(err, resourceType, namespace, name)
	}

	replicaSets, err := c.replicaSetsFor(ctx, namespace, dep)
	if err != nil {
		return nil, err
	}

	target, err := pickRollbackTarget(replicaSets, toRevision)
	if err != nil {
		return nil, err
	}

	dep.Spec.Template = target.Spec.Template
	if dep.Spec.Template.Annotations == nil {
		dep.Spec.Template.Annotations = map[string]string{}
	}
	dep.Spec.Template.Annotations["kubernetes.io/rollback"] = "to-revision-" + target.Annotations[revisionAnnotation]
	dep.Spec.Template.Annotations["kubernetes.io/rollback-timestamp"] = time.Now().Format(time.RFC3339)

	if _, err := c.clientset.AppsV1().Deployments(namespace).Update(ctx, dep, metav1.UpdateOptions{}); err != nil {
		return nil, fmt.Errorf("failed to undo rollout for deployment %s/%s: %w", namespace, name, err)
	}

	return map[string]interface{}{
		"success":  true,
		"message":  fmt.Sprintf("Rolled back deployment/%s to revision %s", name, target.Annotations[revisionAnnotation]),
		"revision": target.Annotations[revisionAnnotation],
	}, nil
}

func (c *Client) statefulSetUndo(ctx context.Context, namespace, name string, toRevision int64) (map[string]interface{}, error) {
	revisions, err := c.statefulSetHistory(ctx, namespace, name)
	if err != nil {
		return nil, err
	}

	target, err := pickHistoryTarget(revisions, toRevision)
	if err != nil {
		return nil, err
	}

	patch := rollbackAnnotationPatch(map[string]string{
		"kubernetes.io/rollback-to":        target.Hash,
		"kubernetes.io/rollback-timestamp": time.Now().Format(time.RFC3339),
	})
	if err := c.patchWorkload(ctx, "statefulset", namespace, name, patch); err != nil {
		return nil, fmt.Errorf("failed to undo rollout: %w", err)
	}

	return map[string]interface{}{
		"success":  true,
		"message":  fmt.Sprintf("Rollout undo initiated for statefulset/%s", name),
		"revision": target.Revision,
	}, nil
}

func (c *Client) daemonSetUndo(ctx context.Context, namespace, name string, toRevision int64) (map[string]interface{}, error) {
	revisions, err := c.daemonSetHistory(ctx, namespace, name)
	if err != nil {
		return nil, err
	}

	target, err := pickHistoryTarget(revisions, toRevision)
	if err != nil {
		return nil, err
	}

	patch := rollbackAnnotationPatch(map[string]string{
		"kubernetes.io/rollback-to-revision": target.Revision,
		"kubernetes.io/rollback-timestamp":   time.Now().Format(time.RFC3339),
	})
	if err := c.patchWorkload(ctx, "daemonset", namespace, name, patch); err != nil {
		return nil, fmt.Errorf("failed to undo rollout: %w", err)
	}

	return map[string]interface{}{
		"success":  true,
		"message":  fmt.Sprintf("Rollout undo initiated for daemonset/%s", name),
		"revision": target.Revision,
	}, nil
}

// pickHistoryTarget selects the revision matching toRevision, or the second
// newest when toRevision is zero.
func pickHistoryTarget(revisions []Revision, toRevision int64) (*Revision, error) {
	if toRevision > 0 {
		want := strconv.FormatInt(toRevision, 10)
		for i := range revisions {
			if revisions[i].Revision == want {
				return &revisions[i], nil
			}
		}
		return nil, fmt.Errorf("could not find revision %d", toRevision)
	}
	if len(revisions) < 2 {
		return nil, fmt.Errorf("no previous revision found")
	}
	return &revisions[1], nil
}

func rollbackAnnotationPatch(annotations map[string]string) map[string]interface{} {
	return map[string]interface{}{
		"spec": map[string]interface{}{
			"template": map[string]interface{}{
				"metadata": map[string]interface{}{
					"annotations": annotations,
				},
			},
		},
	}
}

// pickRollbackTarget finds the ReplicaSet for toRevision, or the second
// newest revision when toRevision is zero.
func pickRollbackTarget(replicaSets []appsv1.ReplicaSet, toRevision int64) (*appsv1.ReplicaSet, error) {
	type numbered struct {
		revision int64
		rs       *appsv1.ReplicaSet
	}

	var candidates []numbered
	for i := range replicaSets {
		rs := &replicaSets[i]
		revision, err := strconv.ParseInt(rs.Annotations[revisionAnnotation], 10, 64)
		if err != nil {
			continue
		}
		if toRevision > 0 && revision == toRevision {
			return rs, nil
		}
		candidates = append(candidates, numbered{revision: revision, rs: rs})
	}

	if toRevision > 0 {
		return nil, fmt.Errorf("could not find revision %d", toRevision)
	}

	sort.Slice(candidates, func(i, j int) bool { return candidates[i].revision > candidates[j].revision })
	if len(candidates) < 2 {
		return nil, fmt.Errorf("no previous revision found")
	}
	return candidates[1].rs, nil
}

// RolloutRestart triggers a rolling restart by stamping the pod template with
// a restartedAt annotation, the same mechanism kubectl uses
func (c *Client) RolloutRestart(ctx context.Context, resourceType, namespace, name string) (map[string]interface{}, error) {
	if err := validRolloutKind(resourceType); err != nil {
		return nil, err
	}

	patch := map[string]interface{}{
		"spec": map[string]interface{}{
			"template": map[string]interface{}{
				"metadata": map[string]interface{}{
					"annotations": map[string]string{
						restartedAtAnnotation: time.Now().Format(time.RFC3339),
					},
				},
			},
		},
	}

	if err := c.patchWorkload(ctx, resourceType, namespace, name, patch); err != nil {
		return nil, fmt.Errorf("failed to restart rollout: %w", err)
	}

	return map[string]interface{}{
		"success": true,
		"message": fmt.Sprintf("Rollout restart initiated for %s/%s", resourceType, name),
	}, nil
}

// RolloutPause pauses a rollout. Deployments support this directly;
// statefulsets are held by raising the partition to the replica count and
// daemonsets by dropping maxUnavailable to zero.
func (c *Client) RolloutPause(ctx context.Context, resourceType, namespace, name string) (map[string]interface{}, error) {
	if err := validRolloutKind(resourceType); err != nil {
		return nil, err
	}

	var patch map[string]interface{}
	switch resourceType {
	case "deployment":
		patch = map[string]interface{}{"spec": map[string]interface{}{"paused": true}}
	case "statefulset":
		sts, err := c.clientset.AppsV1().StatefulSets(namespace).Get(ctx, name, metav1.GetOptions{})
		if err != nil {
			return nil, wrapWorkloadErr(err, resourceType, namespace, name)
		}
		var partition int32
		if sts.Spec.Replicas != nil {
			partition = *sts.Spec.Replicas
		}
		patch = rollingUpdatePatch("partition", partition)
	default:
		patch = rollingUpdatePatch("maxUnavailable", 0)
	}

	if err := c.patchWorkload(ctx, resourceType, namespace, name, patch); err != nil {
		return nil, fmt.Errorf("failed to pause rollout: %w", err)
	}

	return map[string]interface{}{
		"success": true,
		"message": fmt.Sprintf("Rollout paused for %s/%s", resourceType, name),
	}, nil
}

// RolloutResume reverses RolloutPause
func (c *Client) RolloutResume(ctx context.Context, resourceType, namespace, name string) (map[string]interface{}, error) {
	if err := validRolloutKind(resourceType); err != nil {
		return nil, err
	}

	var patch map[string]interface{}
	switch resourceType {
	case "deployment":
		patch = map[string]interface{}{"spec": map[string]interface{}{"paused": false}}
	case "statefulset":
		patch = rollingUpdatePatch("partition", 0)
	default:
		patch = rollingUpdatePatch("maxUnavailable", 1)
	}

	if err := c.patchWorkload(ctx, resourceType, namespace, name, patch); err != nil {
		return nil, fmt.Errorf("failed to resume rollout: %w", err)
	}

	return map[string]interface{}{
		"success": true,
		"message": fmt.Sprintf("Rollout resumed for %s/%s", resourceType, name),
	}, nil
}

func rollingUpdatePatch(field string, value int32) map[string]interface{} {
	return map[string]interface{}{
		"spec": map[string]interface{}{
			"updateStrategy": map[string]interface{}{
				"type": "RollingUpdate",
				"rollingUpdate": map[string]interface{}{
					field: value,
				},
			},
		},
	}
}

// patchWorkload applies a strategic merge patch to one of the rollout kinds.
func (c *Client) patchWorkload(ctx context.Context, resourceType, namespace, name string, patch map[string]interface{}) error {
	data, err := json.Marshal(patch)
	if err != nil {
		return err
	}

	switch resourceType {
	case "deployment":
		_, err = c.clientset.AppsV1().Deployments(namespace).Patch(ctx, name, types.StrategicMergePatchType, data, metav1.PatchOptions{})
	case "statefulset":
		_, err = c.clientset.AppsV1().StatefulSets(namespace).Patch(ctx, name, types.StrategicMergePatchType, data, metav1.PatchOptions{})
	case "daemonset":
		_, err = c.clientset.AppsV1().DaemonSets(namespace).Patch(ctx, name, types.StrategicMergePatchType, data, metav1.PatchOptions{})
	}
	if err != nil {
		return wrapWorkloadErr(err, resourceType, namespace, name)
	}
	return nil
}

func (c *Client) replicaSetsFor(ctx context.Context, namespace string, dep *appsv1.Deployment) ([]appsv1.ReplicaSet, error) {
	selector := ""
	if dep.Spec.Selector != nil {
		selector = labels.Set(dep.Spec.Selector.MatchLabels).String()
	}
	replicaSets, err := c.clientset.AppsV1().ReplicaSets(namespace).List(ctx, metav1.ListOptions{
		LabelSelector: selector,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list replicasets for deployment %s/%s: %w", namespace, dep.Name, err)
	}
	return replicaSets.Items, nil
}

func changeCause(annotations map[string]string) string {
	if cause, ok := annotations[changeCauseAnnotation]; ok && cause != "" {
		return cause
	}
	return "<none>"
}

func ownedBy(refs []metav1.OwnerReference, kind, name string) bool {
	for _, ref := range refs {
		if ref.Kind == kind && ref.Name == name {
			return true
		}
	}
	return false
}

func sortRevisionsDescending(revisions []Revision) {
	sort.SliceStable(revisions, func(i, j int) bool {
		a, errA := strconv.Atoi(revisions[i].Revision)
		b, errB := strconv.Atoi(revisions[j].Revision)
		if errA != nil || errB != nil {
			return false
		}
		return a > b
	})
}

func wrapWorkloadErr(err error, resourceType, namespace, name string) error {
	if IsNotFound(err) {
		return fmt.Errorf("%s %q not found in namespace %q", resourceType, name, namespace)
	}
	return fmt.Errorf("failed to access %s %s/%s: %w", resourceType, namespace, name, err)
}
