package k8s

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/runtime/schema"
	dynamicfake "k8s.io/client-go/dynamic/fake"
)

func metricsListKinds() map[schema.GroupVersionResource]string {
	return map[schema.GroupVersionResource]string{
		nodeMetricsGVR: "NodeMetricsList",
		podMetricsGVR:  "PodMetricsList",
	}
}

func nodeMetricsObject(name, cpu, memory string) *unstructured.Unstructured {
	return &unstructured.Unstructured{
		Object: map[string]interface{}{
			"apiVersion": "metrics.k8s.io/v1beta1",
			"kind":       "NodeMetrics",
			"metadata": map[string]interface{}{
				"name": name,
			},
			"window": "30s",
			"usage": map[string]interface{}{
				"cpu":    cpu,
				"memory": memory,
			},
		},
	}
}

func podMetricsObject(namespace, name string) *unstructured.Unstructured {
	return &unstructured.Unstructured{
		Object: map[string]interface{}{
			"apiVersion": "metrics.k8s.io/v1beta1",
			"kind":       "PodMetrics",
			"metadata": map[string]interface{}{
				"name":      name,
				"namespace": namespace,
			},
			"containers": []interface{}{
				map[string]interface{}{
					"name": "app",
					"usage": map[string]interface{}{
						"cpu":    "12m",
						"memory": "64Mi",
					},
				},
			},
		},
	}
}

func TestTopNodes(t *testing.T) {
	scheme := runtime.NewScheme()
	dynamicClient := dynamicfake.NewSimpleDynamicClientWithCustomListKinds(scheme, metricsListKinds())
	require.NoError(t, dynamicClient.Tracker().Create(nodeMetricsGVR, nodeMetricsObject("worker-2", "250m", "2Gi"), ""))
	require.NoError(t, dynamicClient.Tracker().Create(nodeMetricsGVR, nodeMetricsObject("worker-1", "100m", "1Gi"), ""))

	client := &Client{}
	client.SetDynamicClient(dynamicClient)

	metrics, err := client.TopNodes(context.Background())
	require.NoError(t, err)
	require.Len(t, metrics, 2)

	// Sorted by node name.
	assert.Equal(t, "worker-1", metrics[0].Name)
	assert.Equal(t, "100m", metrics[0].CPU)
	assert.Equal(t, "1Gi", metrics[0].Memory)
	assert.Equal(t, "30s", metrics[0].Window)
	assert.Equal(t, "worker-2", metrics[1].Name)
}

func TestTopPodsScopedToNamespace(t *testing.T) {
	scheme := runtime.NewScheme()
	dynamicClient := dynamicfake.NewSimpleDynamicClientWithCustomListKinds(scheme, metricsListKinds())
	require.NoError(t, dynamicClient.Tracker().Create(podMetricsGVR, podMetricsObject("default", "web-abc"), "default"))
	require.NoError(t, dynamicClient.Tracker().Create(podMetricsGVR, podMetricsObject("kube-system", "coredns-xyz"), "kube-system"))

	client := &Client{}
	client.SetDynamicClient(dynamicClient)

	metrics, err := client.TopPods(context.Background(), "default")
	require.NoError(t, err)
	require.Len(t, metrics, 1)

	assert.Equal(t, "web-abc", metrics[0].Name)
	require.Len(t, metrics[0].Containers, 1)
	assert.Equal(t, "app", metrics[0].Containers[0].Name)
	assert.Equal(t, "12m", metrics[0].Containers[0].CPU)
}

func TestTopPodsAllNamespaces(t *testing.T) {
	scheme := runtime.NewScheme()
	dynamicClient := dynamicfake.NewSimpleDynamicClientWithCustomListKinds(scheme, metricsListKinds())
	require.NoError(t, dynamicClient.Tracker().Create(podMetricsGVR, podMetricsObject("default", "web-abc"), "default"))
	require.NoError(t, dynamicClient.Tracker().Create(podMetricsGVR, podMetricsObject("kube-system", "coredns-xyz"), "kube-system"))

	client := &Client{}
	client.SetDynamicClient(dynamicClient)

	metrics, err := client.TopPods(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, metrics, 2)
}
