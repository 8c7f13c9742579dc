package k8s

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"
	dynamicfake "k8s.io/client-go/dynamic/fake"
)

var configMapGVR = schema.GroupVersionResource{Version: "v1", Resource: "configmaps"}

func patchFixture(t *testing.T) (*Client, *dynamicfake.FakeDynamicClient) {
	t.Helper()
	dynamicClient := dynamicfake.NewSimpleDynamicClient(manifestScheme(t), &corev1.ConfigMap{
		ObjectMeta: metav1.ObjectMeta{
			Name:      "app-config",
			Namespace: "default",
			Labels:    map[string]string{"app": "web"},
		},
		Data: map[string]string{"key": "value"},
	})
	client := &Client{}
	client.SetDynamicClient(dynamicClient)
	return client, dynamicClient
}

func TestPatchMergesData(t *testing.T) {
	client, dynamicClient := patchFixture(t)

	patch := []byte(`{"data":{"extra":"added"}}`)
	result, err := client.Patch(context.Background(), configMapGVR, "default", "app-config", "merge", patch)
	require.NoError(t, err)
	assert.Equal(t, true, result["success"])

	updated, err := dynamicClient.Resource(configMapGVR).Namespace("default").Get(context.Background(), "app-config", metav1.GetOptions{})
	require.NoError(t, err)
	data, _, _ := unstructured.NestedString(updated.Object, "data", "extra")
	assert.Equal(t, "added", data)
}

func TestPatchRejectsInvalidJSON(t *testing.T) {
	client, _ := patchFixture(t)

	_, err := client.Patch(context.Background(), configMapGVR, "default", "app-config", "merge", []byte("{nope"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not valid JSON")
}

func TestPatchRejectsInvalidType(t *testing.T) {
	client, _ := patchFixture(t)

	_, err := client.Patch(context.Background(), configMapGVR, "default", "app-config", "diff", []byte("{}"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid patch type")
}

func TestPatchNotFound(t *testing.T) {
	client, _ := patchFixture(t)

	_, err := client.Patch(context.Background(), configMapGVR, "default", "ghost", "merge", []byte("{}"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `configmaps "ghost" not found`)
}

func TestLabelAddAndRemove(t *testing.T) {
	client, dynamicClient := patchFixture(t)

	tier := "backend"
	result, err := client.Label(context.Background(), configMapGVR, "default", "app-config", map[string]*string{
		"tier": &tier,
		"app":  nil,
	})
	require.NoError(t, err)
	assert.Equal(t, true, result["success"])

	updated, err := dynamicClient.Resource(configMapGVR).Namespace("default").Get(context.Background(), "app-config", metav1.GetOptions{})
	require.NoError(t, err)
	labels := updated.GetLabels()
	assert.Equal(t, "backend", labels["tier"])
	assert.NotContains(t, labels, "app")
}

func TestAnnotate(t *testing.T) {
	client, dynamicClient := patchFixture(t)

	owner := "platform-team"
	_, err := client.Annotate(context.Background(), configMapGVR, "default", "app-config", map[string]*string{
		"owner": &owner,
	})
	require.NoError(t, err)

	updated, err := dynamicClient.Resource(configMapGVR).Namespace("default").Get(context.Background(), "app-config", metav1.GetOptions{})
	require.NoError(t, err)
	assert.Equal(t, "platform-team", updated.GetAnnotations()["owner"])
}

func TestLabelRequiresValues(t *testing.T) {
	client, _ := patchFixture(t)

	_, err := client.Label(context.Background(), configMapGVR, "default", "app-config", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no labels provided")
}
