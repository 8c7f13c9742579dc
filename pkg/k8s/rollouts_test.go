package k8s

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	kubefake "k8s.io/client-go/kubernetes/fake"
)

func int32Ptr(v int32) *int32 { return &v }

func testDeployment(name string, replicas int32) *appsv1.Deployment {
	return &appsv1.Deployment{
		ObjectMeta: metav1.ObjectMeta{
			Name:       name,
			Namespace:  "default",
			Generation: 2,
		},
		Spec: appsv1.DeploymentSpec{
			Replicas: int32Ptr(replicas),
			Selector: &metav1.LabelSelector{
				MatchLabels: map[string]string{"app": name},
			},
			Template: corev1.PodTemplateSpec{
				ObjectMeta: metav1.ObjectMeta{
					Labels: map[string]string{"app": name},
				},
				Spec: corev1.PodSpec{
					Containers: []corev1.Container{{Name: "app", Image: "app:v2"}},
				},
			},
		},
		Status: appsv1.DeploymentStatus{
			ObservedGeneration: 2,
			UpdatedReplicas:    replicas,
			ReadyReplicas:      replicas,
			AvailableReplicas:  replicas,
		},
	}
}

func testReplicaSet(name, owner, revision, image string) *appsv1.ReplicaSet {
	return &appsv1.ReplicaSet{
		ObjectMeta: metav1.ObjectMeta{
			Name:      name,
			Namespace: "default",
			Labels:    map[string]string{"app": owner},
			Annotations: map[string]string{
				revisionAnnotation: revision,
			},
		},
		Spec: appsv1.ReplicaSetSpec{
			Replicas: int32Ptr(3),
			Template: corev1.PodTemplateSpec{
				Spec: corev1.PodSpec{
					Containers: []corev1.Container{{Name: "app", Image: image}},
				},
			},
		},
	}
}

func TestRolloutStatusDeploymentComplete(t *testing.T) {
	client := &Client{}
	client.SetClientset(kubefake.NewSimpleClientset(testDeployment("web", 3)))

	status, err := client.RolloutStatus(context.Background(), "deployment", "default", "web")
	require.NoError(t, err)

	assert.Equal(t, true, status["complete"])
	replicas := status["replicas"].(map[string]interface{})
	assert.Equal(t, int32(3), replicas["ready"])
}

func TestRolloutStatusRejectsUnknownKind(t *testing.T) {
	client := &Client{}
	client.SetClientset(kubefake.NewSimpleClientset())

	_, err := client.RolloutStatus(context.Background(), "service", "default", "web")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported resource type")
}

func TestRolloutHistoryDeploymentSortedByRevision(t *testing.T) {
	client := &Client{}
	client.SetClientset(kubefake.NewSimpleClientset(
		testDeployment("web", 3),
		testReplicaSet("web-1", "web", "1", "app:v1"),
		testReplicaSet("web-3", "web", "3", "app:v3"),
		testReplicaSet("web-2", "web", "2", "app:v2"),
	))

	revisions, err := client.RolloutHistory(context.Background(), "deployment", "default", "web")
	require.NoError(t, err)
	require.Len(t, revisions, 3)
	assert.Equal(t, "3", revisions[0].Revision)
	assert.Equal(t, "2", revisions[1].Revision)
	assert.Equal(t, "1", revisions[2].Revision)
}

func TestRolloutUndoToPreviousRevision(t *testing.T) {
	clientset := kubefake.NewSimpleClientset(
		testDeployment("web", 3),
		testReplicaSet("web-1", "web", "1", "app:v1"),
		testReplicaSet("web-2", "web", "2", "app:v2"),
	)
	client := &Client{}
	client.SetClientset(clientset)

	result, err := client.RolloutUndo(context.Background(), "deployment", "default", "web", 0)
	require.NoError(t, err)
	assert.Equal(t, "1", result["revision"])

	// The deployment's template now carries the v1 image.
	dep, err := clientset.AppsV1().Deployments("default").Get(context.Background(), "web", metav1.GetOptions{})
	require.NoError(t, err)
	assert.Equal(t, "app:v1", dep.Spec.Template.Spec.Containers[0].Image)
}

func TestRolloutUndoSpecificRevision(t *testing.T) {
	clientset := kubefake.NewSimpleClientset(
		testDeployment("web", 3),
		testReplicaSet("web-1", "web", "1", "app:v1"),
		testReplicaSet("web-2", "web", "2", "app:v2"),
		testReplicaSet("web-3", "web", "3", "app:v3"),
	)
	client := &Client{}
	client.SetClientset(clientset)

	result, err := client.RolloutUndo(context.Background(), "deployment", "default", "web", 2)
	require.NoError(t, err)
	assert.Equal(t, "2", result["revision"])
}

func TestRolloutUndoMissingRevision(t *testing.T) {
	client := &Client{}
	client.SetClientset(kubefake.NewSimpleClientset(
		testDeployment("web", 3),
		testReplicaSet("web-1", "web", "1", "app:v1"),
	))

	_, err := client.RolloutUndo(context.Background(), "deployment", "default", "web", 9)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "could not find revision 9")
}

func TestRolloutUndoStatefulSet(t *testing.T) {
	sts := &appsv1.StatefulSet{
		ObjectMeta: metav1.ObjectMeta{Name: "db", Namespace: "default"},
		Spec: appsv1.StatefulSetSpec{
			Replicas: int32Ptr(3),
		},
		Status: appsv1.StatefulSetStatus{
			CurrentRevision: "db-111",
			UpdateRevision:  "db-222",
		},
	}
	clientset := kubefake.NewSimpleClientset(sts)
	client := &Client{}
	client.SetClientset(clientset)

	result, err := client.RolloutUndo(context.Background(), "statefulset", "default", "db", 0)
	require.NoError(t, err)
	assert.Equal(t, true, result["success"])
	assert.Equal(t, "update", result["revision"])

	updated, err := clientset.AppsV1().StatefulSets("default").Get(context.Background(), "db", metav1.GetOptions{})
	require.NoError(t, err)
	assert.Equal(t, "db-222", updated.Spec.Template.Annotations["kubernetes.io/rollback-to"])
	assert.NotEmpty(t, updated.Spec.Template.Annotations["kubernetes.io/rollback-timestamp"])
}

func TestRolloutUndoStatefulSetNoPreviousRevision(t *testing.T) {
	sts := &appsv1.StatefulSet{
		ObjectMeta: metav1.ObjectMeta{Name: "db", Namespace: "default"},
		Status: appsv1.StatefulSetStatus{
			CurrentRevision: "db-111",
			UpdateRevision:  "db-111",
		},
	}
	client := &Client{}
	client.SetClientset(kubefake.NewSimpleClientset(sts))

	_, err := client.RolloutUndo(context.Background(), "statefulset", "default", "db", 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no previous revision found")
}

func TestRolloutUndoDaemonSet(t *testing.T) {
	ds := &appsv1.DaemonSet{
		ObjectMeta: metav1.ObjectMeta{Name: "agent", Namespace: "default"},
		Spec: appsv1.DaemonSetSpec{
			Selector: &metav1.LabelSelector{
				MatchLabels: map[string]string{"app": "agent"},
			},
		},
	}
	rev1 := &appsv1.ControllerRevision{
		ObjectMeta: metav1.ObjectMeta{
			Name:            "agent-1",
			Namespace:       "default",
			Labels:          map[string]string{"app": "agent"},
			OwnerReferences: []metav1.OwnerReference{{Kind: "DaemonSet", Name: "agent"}},
		},
		Revision: 1,
	}
	rev2 := &appsv1.ControllerRevision{
		ObjectMeta: metav1.ObjectMeta{
			Name:            "agent-2",
			Namespace:       "default",
			Labels:          map[string]string{"app": "agent"},
			OwnerReferences: []metav1.OwnerReference{{Kind: "DaemonSet", Name: "agent"}},
		},
		Revision: 2,
	}
	clientset := kubefake.NewSimpleClientset(ds, rev1, rev2)
	client := &Client{}
	client.SetClientset(clientset)

	result, err := client.RolloutUndo(context.Background(), "daemonset", "default", "agent", 1)
	require.NoError(t, err)
	assert.Equal(t, "1", result["revision"])

	updated, err := clientset.AppsV1().DaemonSets("default").Get(context.Background(), "agent", metav1.GetOptions{})
	require.NoError(t, err)
	assert.Equal(t, "1", updated.Spec.Template.Annotations["kubernetes.io/rollback-to-revision"])
}

func TestRolloutRestartStampsAnnotation(t *testing.T) {
	clientset := kubefake.NewSimpleClientset(testDeployment("web", 3))
	client := &Client{}
	client.SetClientset(clientset)

	_, err := client.RolloutRestart(context.Background(), "deployment", "default", "web")
	require.NoError(t, err)

	dep, err := clientset.AppsV1().Deployments("default").Get(context.Background(), "web", metav1.GetOptions{})
	require.NoError(t, err)
	assert.NotEmpty(t, dep.Spec.Template.Annotations[restartedAtAnnotation])
}

func TestRolloutPauseAndResumeDeployment(t *testing.T) {
	clientset := kubefake.NewSimpleClientset(testDeployment("web", 3))
	client := &Client{}
	client.SetClientset(clientset)

	_, err := client.RolloutPause(context.Background(), "deployment", "default", "web")
	require.NoError(t, err)

	dep, err := clientset.AppsV1().Deployments("default").Get(context.Background(), "web", metav1.GetOptions{})
	require.NoError(t, err)
	assert.True(t, dep.Spec.Paused)

	_, err = client.RolloutResume(context.Background(), "deployment", "default", "web")
	require.NoError(t, err)

	dep, err = clientset.AppsV1().Deployments("default").Get(context.Background(), "web", metav1.GetOptions{})
	require.NoError(t, err)
	assert.False(t, dep.Spec.Paused)
}

func TestRolloutPauseStatefulSetRaisesPartition(t *testing.T) {
	sts := &appsv1.StatefulSet{
		ObjectMeta: metav1.ObjectMeta{Name: "db", Namespace: "default"},
		Spec: appsv1.StatefulSetSpec{
			Replicas: int32Ptr(5),
		},
	}
	clientset := kubefake.NewSimpleClientset(sts)
	client := &Client{}
	client.SetClientset(clientset)

	_, err := client.RolloutPause(context.Background(), "statefulset", "default", "db")
	require.NoError(t, err)

	updated, err := clientset.AppsV1().StatefulSets("default").Get(context.Background(), "db", metav1.GetOptions{})
	require.NoError(t, err)
	require.NotNil(t, updated.Spec.UpdateStrategy.RollingUpdate)
	assert.Equal(t, int32(5), *updated.Spec.UpdateStrategy.RollingUpdate.Partition)
}

func TestRolloutStatusNotFound(t *testing.T) {
	client := &Client{}
	client.SetClientset(kubefake.NewSimpleClientset())

	_, err := client.RolloutStatus(context.Background(), "deployment", "default", "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `deployment "missing" not found in namespace "default"`)
}
