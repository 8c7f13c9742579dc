package k8s

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	kubefake "k8s.io/client-go/kubernetes/fake"
)

func TestExecInPodUsesInjectedFunc(t *testing.T) {
	client := &Client{}
	client.SetClientset(kubefake.NewSimpleClientset())

	var gotTimeout time.Duration
	client.SetExecFunc(func(_ context.Context, namespace, name string, command []string, container string, timeout time.Duration) (*unstructured.Unstructured, error) {
		assert.Equal(t, "default", namespace)
		assert.Equal(t, "web-abc", name)
		assert.Equal(t, []string{"ls", "-la"}, command)
		assert.Equal(t, "app", container)
		gotTimeout = timeout

		return &unstructured.Unstructured{
			Object: map[string]interface{}{
				"apiVersion": "v1",
				"kind":       "Pod",
				"status": map[string]interface{}{
					"stdout": "total 0",
					"stderr": "",
					"error":  "",
				},
			},
		}, nil
	})

	result, err := client.ExecInPod(context.Background(), "default", "web-abc", []string{"ls", "-la"}, "app", 30*time.Second)
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, gotTimeout)

	stdout, _, _ := unstructured.NestedString(result.Object, "status", "stdout")
	assert.Equal(t, "total 0", stdout)
}

func TestDefaultExecInPodValidation(t *testing.T) {
	client := &Client{}
	client.SetClientset(kubefake.NewSimpleClientset())

	_, err := client.defaultExecInPod(context.Background(), "default", "", []string{"ls"}, "", 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pod name cannot be empty")

	_, err = client.defaultExecInPod(context.Background(), "default", "web-abc", nil, "", 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "command cannot be empty")
}
