package mcp

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	kubefake "k8s.io/client-go/kubernetes/fake"

	"github.com/multikube/multikube/pkg/k8s"
	"github.com/multikube/multikube/pkg/types"
)

func testDeploymentFixture(name string, replicas int32) *appsv1.Deployment {
	return &appsv1.Deployment{
		ObjectMeta: metav1.ObjectMeta{Name: name, Namespace: "default"},
		Spec: appsv1.DeploymentSpec{
			Replicas: &replicas,
			Selector: &metav1.LabelSelector{MatchLabels: map[string]string{"app": name}},
			Template: corev1.PodTemplateSpec{
				ObjectMeta: metav1.ObjectMeta{Labels: map[string]string{"app": name}},
				Spec: corev1.PodSpec{
					Containers: []corev1.Container{{Name: "app", Image: "app:v1"}},
				},
			},
		},
		Status: appsv1.DeploymentStatus{
			Replicas:          replicas,
			UpdatedReplicas:   replicas,
			AvailableReplicas: replicas,
		},
	}
}

func TestHandleRolloutStatus(t *testing.T) {
	clientset := kubefake.NewSimpleClientset(testDeploymentFixture("web", 3))
	client := &k8s.Client{}
	client.SetClientset(clientset)

	impl := newTestImplementation(t, client)
	request := contextRequest(types.RolloutStatusToolName, "dev", map[string]interface{}{
		"resource_type": "deployment",
		"namespace":     "default",
		"name":          "web",
	})

	result, err := impl.HandleRolloutStatus(context.Background(), request)
	assert.NoError(t, err)
	assert.False(t, result.IsError)

	text := resultText(t, result)
	assert.Contains(t, text, "web")
	assert.Contains(t, text, `"context":"dev-cluster"`)
}

func TestHandleRolloutRestart(t *testing.T) {
	clientset := kubefake.NewSimpleClientset(testDeploymentFixture("web", 3))
	client := &k8s.Client{}
	client.SetClientset(clientset)

	impl := newTestImplementation(t, client)
	request := contextRequest(types.RolloutRestartToolName, "dev", map[string]interface{}{
		"resource_type": "deployment",
		"namespace":     "default",
		"name":          "web",
	})

	result, err := impl.HandleRolloutRestart(context.Background(), request)
	assert.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Contains(t, resultText(t, result), "Rollout restart initiated")

	// The restart annotation should have landed on the pod template
	dep, err := clientset.AppsV1().Deployments("default").Get(context.Background(), "web", metav1.GetOptions{})
	require.NoError(t, err)
	assert.Contains(t, dep.Spec.Template.Annotations, "kubectl.kubernetes.io/restartedAt")
}

func TestHandleRolloutRestartMissingArgs(t *testing.T) {
	impl := newTestImplementation(t, &k8s.Client{})
	request := contextRequest(types.RolloutRestartToolName, "dev", map[string]interface{}{
		"namespace": "default",
		"name":      "web",
	})

	result, err := impl.HandleRolloutRestart(context.Background(), request)
	assert.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "resource_type is required")
}

func TestHandleRolloutStatusUnknownKind(t *testing.T) {
	clientset := kubefake.NewSimpleClientset()
	client := &k8s.Client{}
	client.SetClientset(clientset)

	impl := newTestImplementation(t, client)
	request := contextRequest(types.RolloutStatusToolName, "dev", map[string]interface{}{
		"resource_type": "cronjob",
		"namespace":     "default",
		"name":          "web",
	})

	result, err := impl.HandleRolloutStatus(context.Background(), request)
	assert.NoError(t, err)
	assert.True(t, result.IsError)
}
