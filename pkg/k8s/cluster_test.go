package k8s

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/resource"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	kubefake "k8s.io/client-go/kubernetes/fake"
)

func TestListNamespaces(t *testing.T) {
	client := &Client{}
	fakeClientset := kubefake.NewSimpleClientset(
		&corev1.Namespace{ObjectMeta: metav1.ObjectMeta{Name: "default"}},
		&corev1.Namespace{ObjectMeta: metav1.ObjectMeta{Name: "kube-system"}},
	)
	client.SetClientset(fakeClientset)

	namespaces, err := client.ListNamespaces(context.Background())
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"default", "kube-system"}, namespaces)
}

func TestListNodes(t *testing.T) {
	node := &corev1.Node{
		ObjectMeta: metav1.ObjectMeta{
			Name: "worker-1",
			Labels: map[string]string{
				"node-role.kubernetes.io/worker": "",
			},
		},
		Status: corev1.NodeStatus{
			Conditions: []corev1.NodeCondition{
				{Type: corev1.NodeReady, Status: corev1.ConditionTrue},
			},
			Addresses: []corev1.NodeAddress{
				{Type: corev1.NodeInternalIP, Address: "10.0.0.5"},
			},
			Capacity: corev1.ResourceList{
				corev1.ResourceCPU: resource.MustParse("4"),
			},
		},
	}

	client := &Client{}
	client.SetClientset(kubefake.NewSimpleClientset(node))

	nodes, err := client.ListNodes(context.Background())
	require.NoError(t, err)
	require.Len(t, nodes, 1)

	assert.Equal(t, "worker-1", nodes[0].Name)
	assert.Equal(t, []string{"worker"}, nodes[0].Roles)
	assert.Equal(t, "Ready", nodes[0].Status)
	assert.Equal(t, "10.0.0.5", nodes[0].InternalIP)
	assert.Equal(t, "4", nodes[0].Capacity["cpu"])
}

func TestListEventsSortedNewestFirst(t *testing.T) {
	now := time.Now()
	older := &corev1.Event{
		ObjectMeta:    metav1.ObjectMeta{Name: "older", Namespace: "default"},
		Reason:        "Scheduled",
		LastTimestamp: metav1.NewTime(now.Add(-time.Hour)),
	}
	newer := &corev1.Event{
		ObjectMeta:    metav1.ObjectMeta{Name: "newer", Namespace: "default"},
		Reason:        "Pulled",
		LastTimestamp: metav1.NewTime(now),
	}

	client := &Client{}
	client.SetClientset(kubefake.NewSimpleClientset(older, newer))

	events, err := client.ListEvents(context.Background(), "default", 10)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "Pulled", events[0].Reason)
	assert.Equal(t, "Scheduled", events[1].Reason)
}

func TestListEventsTimestampFallback(t *testing.T) {
	now := time.Now()
	// Events API ga records populate EventTime instead of LastTimestamp.
	viaEventTime := &corev1.Event{
		ObjectMeta: metav1.ObjectMeta{Name: "via-event-time", Namespace: "default"},
		Reason:     "Started",
		EventTime:  metav1.NewMicroTime(now),
	}
	viaLastTimestamp := &corev1.Event{
		ObjectMeta:    metav1.ObjectMeta{Name: "via-last-timestamp", Namespace: "default"},
		Reason:        "Scheduled",
		LastTimestamp: metav1.NewTime(now.Add(-time.Minute)),
	}

	client := &Client{}
	client.SetClientset(kubefake.NewSimpleClientset(viaEventTime, viaLastTimestamp))

	events, err := client.ListEvents(context.Background(), "default", 0)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "Started", events[0].Reason)
	assert.NotEmpty(t, events[0].Timestamp)
	assert.Equal(t, "Scheduled", events[1].Reason)
}

func TestListEventsLimit(t *testing.T) {
	now := time.Now()
	var objects []corev1.Event
	for i := 0; i < 5; i++ {
		objects = append(objects, corev1.Event{
			ObjectMeta:    metav1.ObjectMeta{Name: string(rune('a' + i)), Namespace: "default"},
			LastTimestamp: metav1.NewTime(now.Add(time.Duration(i) * time.Minute)),
		})
	}
	clientset := kubefake.NewSimpleClientset()
	for i := range objects {
		_, err := clientset.CoreV1().Events("default").Create(context.Background(), &objects[i], metav1.CreateOptions{})
		require.NoError(t, err)
	}

	client := &Client{}
	client.SetClientset(clientset)

	events, err := client.ListEvents(context.Background(), "default", 3)
	require.NoError(t, err)
	assert.Len(t, events, 3)
}
