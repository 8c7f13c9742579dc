package k8s

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime/schema"
	kubefake "k8s.io/client-go/kubernetes/fake"
)

func TestDescribePodWithEvents(t *testing.T) {
	pod := &corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{Name: "web-0", Namespace: "default"},
		Spec: corev1.PodSpec{
			Containers: []corev1.Container{{Name: "web", Image: "web:v1"}},
		},
	}
	podEvent := &corev1.Event{
		ObjectMeta: metav1.ObjectMeta{Name: "web-0.evt1", Namespace: "default"},
		InvolvedObject: corev1.ObjectReference{
			Kind:      "Pod",
			Name:      "web-0",
			Namespace: "default",
		},
		Type:    corev1.EventTypeNormal,
		Reason:  "Started",
		Message: "Started container web",
		Count:   3,
	}
	// Same name, different kind. Must be filtered out of the summary.
	deployEvent := &corev1.Event{
		ObjectMeta: metav1.ObjectMeta{Name: "web-0.evt2", Namespace: "default"},
		InvolvedObject: corev1.ObjectReference{
			Kind:      "Deployment",
			Name:      "web-0",
			Namespace: "default",
		},
		Type:    corev1.EventTypeNormal,
		Reason:  "ScalingReplicaSet",
		Message: "Scaled up replica set",
	}

	client := &Client{}
	client.SetClientset(kubefake.NewSimpleClientset(pod, podEvent, deployEvent))

	gvr := schema.GroupVersionResource{Version: "v1", Resource: "pods"}
	result, err := client.Describe(context.Background(), "pod", "default", "web-0", gvr)
	require.NoError(t, err)

	got, ok := result["resource"].(*corev1.Pod)
	require.True(t, ok)
	assert.Equal(t, "web-0", got.Name)
	assert.Equal(t, "pod", result["kind"])

	events, ok := result["events"].([]map[string]string)
	require.True(t, ok)
	require.Len(t, events, 1)
	assert.Equal(t, "Started", events[0]["reason"])
	assert.Equal(t, "Started container web", events[0]["message"])
	assert.Equal(t, "3", events[0]["count"])
}

func TestDescribePluralKindMatchesEvents(t *testing.T) {
	pod := &corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{Name: "web-0", Namespace: "default"},
	}
	podEvent := &corev1.Event{
		ObjectMeta: metav1.ObjectMeta{Name: "web-0.evt1", Namespace: "default"},
		InvolvedObject: corev1.ObjectReference{
			Kind:      "Pod",
			Name:      "web-0",
			Namespace: "default",
		},
		Reason: "Started",
	}

	client := &Client{}
	client.SetClientset(kubefake.NewSimpleClientset(pod, podEvent))

	gvr := schema.GroupVersionResource{Version: "v1", Resource: "pods"}
	result, err := client.Describe(context.Background(), "pods", "default", "web-0", gvr)
	require.NoError(t, err)

	events, ok := result["events"].([]map[string]string)
	require.True(t, ok)
	require.Len(t, events, 1)
	assert.Equal(t, "Started", events[0]["reason"])
}

func TestDescribeClusterScopedSkipsEvents(t *testing.T) {
	node := &corev1.Node{ObjectMeta: metav1.ObjectMeta{Name: "worker-1"}}

	client := &Client{}
	client.SetClientset(kubefake.NewSimpleClientset(node))

	gvr := schema.GroupVersionResource{Version: "v1", Resource: "nodes"}
	result, err := client.Describe(context.Background(), "node", "", "worker-1", gvr)
	require.NoError(t, err)

	assert.NotContains(t, result, "events")
	got, ok := result["resource"].(*corev1.Node)
	require.True(t, ok)
	assert.Equal(t, "worker-1", got.Name)
}

func TestDescribeNotFound(t *testing.T) {
	client := &Client{}
	client.SetClientset(kubefake.NewSimpleClientset())

	gvr := schema.GroupVersionResource{Version: "v1", Resource: "pods"}
	_, err := client.Describe(context.Background(), "pod", "default", "missing", gvr)
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}
