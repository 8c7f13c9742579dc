package k8s

import (
	"context"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"

	"github.com/multikube/multikube/pkg/router"
)

// ListResources lists resources of the given kind. Built-in kinds resolved to
// a typed family come back as per-kind summaries; everything else goes
// through the dynamic client with the computed coordinate and is returned
// raw, since custom resource structure varies too widely to summarize.
func (c *Client) ListResources(ctx context.Context, kind, namespace string, gvr schema.GroupVersionResource) ([]map[string]interface{}, error) {
	family := router.FamilyFor(kind, gvr.Group)
	normalized := router.NormalizeKind(kind)

	switch {
	case family == router.FamilyCore && normalized == "pod":
		return c.listPods(ctx, namespace)
	case family == router.FamilyCore && normalized == "service":
		return c.listServices(ctx, namespace)
	case family == router.FamilyApps && normalized == "deployment":
		return c.listDeployments(ctx, namespace)
	case family == router.FamilyNetworking:
		return c.listIngresses(ctx, namespace)
	default:
		return c.listDynamic(ctx, namespace, gvr)
	}
}

func (c *Client) listPods(ctx context.Context, namespace string) ([]map[string]interface{}, error) {
	pods, err := c.clientset.CoreV1().Pods(namespace).List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, err
	}

	result := make([]map[string]interface{}, 0, len(pods.Items))
	for i := range pods.Items {
		pod := &pods.Items[i]
		ready := true
		for _, status := range pod.Status.ContainerStatuses {
			if !status.Ready {
				ready = false
				break
			}
		}
		containers := make([]string, 0, len(pod.Spec.Containers))
		for _, container := range pod.Spec.Containers {
			containers = append(containers, container.Name)
		}
		result = append(result, map[string]interface{}{
			"name":       pod.Name,
			"namespace":  pod.Namespace,
			"status":     string(pod.Status.Phase),
			"ready":      ready,
			"containers": containers,
			"pod_ip":     pod.Status.PodIP,
			"node":       pod.Spec.NodeName,
			"created":    timestampString(pod.CreationTimestamp),
		})
	}
	return result, nil
}

func (c *Client) listServices(ctx context.Context, namespace string) ([]map[string]interface{}, error) {
	services, err := c.clientset.CoreV1().Services(namespace).List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, err
	}

	result := make([]map[string]interface{}, 0, len(services.Items))
	for i := range services.Items {
		svc := &services.Items[i]
		ports := make([]map[string]interface{}, 0, len(svc.Spec.Ports))
		for _, port := range svc.Spec.Ports {
			ports = append(ports, map[string]interface{}{
				"name":        port.Name,
				"protocol":    string(port.Protocol),
				"port":        port.Port,
				"target_port": port.TargetPort.String(),
			})
		}
		result = append(result, map[string]interface{}{
			"name":       svc.Name,
			"namespace":  svc.Namespace,
			"type":       string(svc.Spec.Type),
			"cluster_ip": svc.Spec.ClusterIP,
			"ports":      ports,
		})
	}
	return result, nil
}

func (c *Client) listDeployments(ctx context.Context, namespace string) ([]map[string]interface{}, error) {
	deployments, err := c.clientset.AppsV1().Deployments(namespace).List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, err
	}

	result := make([]map[string]interface{}, 0, len(deployments.Items))
	for i := range deployments.Items {
		dep := &deployments.Items[i]
		var desired int32
		if dep.Spec.Replicas != nil {
			desired = *dep.Spec.Replicas
		}
		result = append(result, map[string]interface{}{
			"name":      dep.Name,
			"namespace": dep.Namespace,
			"replicas": map[string]interface{}{
				"desired":   desired,
				"ready":     dep.Status.ReadyReplicas,
				"available": dep.Status.AvailableReplicas,
			},
			"created": timestampString(dep.CreationTimestamp),
		})
	}
	return result, nil
}

func (c *Client) listIngresses(ctx context.Context, namespace string) ([]map[string]interface{}, error) {
	ingresses, err := c.clientset.NetworkingV1().Ingresses(namespace).List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, err
	}

	result := make([]map[string]interface{}, 0, len(ingresses.Items))
	for i := range ingresses.Items {
		ing := &ingresses.Items[i]
		hosts := []string{}
		for _, rule := range ing.Spec.Rules {
			if rule.Host != "" {
				hosts = append(hosts, rule.Host)
			}
		}
		tls := make([]map[string]interface{}, 0, len(ing.Spec.TLS))
		for _, t := range ing.Spec.TLS {
			tls = append(tls, map[string]interface{}{
				"hosts":       t.Hosts,
				"secret_name": t.SecretName,
			})
		}
		result = append(result, map[string]interface{}{
			"name":      ing.Name,
			"namespace": ing.Namespace,
			"hosts":     hosts,
			"tls":       tls,
		})
	}
	return result, nil
}

func (c *Client) listDynamic(ctx context.Context, namespace string, gvr schema.GroupVersionResource) ([]map[string]interface{}, error) {
	var list *unstructured.UnstructuredList
	var err error
	if namespace != "" {
		list, err = c.dynamicClient.Resource(gvr).Namespace(namespace).List(ctx, metav1.ListOptions{})
	} else {
		list, err = c.dynamicClient.Resource(gvr).List(ctx, metav1.ListOptions{})
	}
	if err != nil {
		return nil, err
	}

	result := make([]map[string]interface{}, 0, len(list.Items))
	for i := range list.Items {
		result = append(result, list.Items[i].Object)
	}
	return result, nil
}

// GetResource fetches a single resource. Built-in kinds use their typed read
// path; everything else goes through the dynamic client.
func (c *Client) GetResource(ctx context.Context, kind, namespace, name string, gvr schema.GroupVersionResource) (interface{}, error) {
	family := router.FamilyFor(kind, gvr.Group)
	normalized := router.NormalizeKind(kind)

	switch family {
	case router.FamilyCore:
		switch normalized {
		case "pod":
			return c.clientset.CoreV1().Pods(namespace).Get(ctx, name, metav1.GetOptions{})
		case "service":
			return c.clientset.CoreV1().Services(namespace).Get(ctx, name, metav1.GetOptions{})
		case "secret":
			return c.clientset.CoreV1().Secrets(namespace).Get(ctx, name, metav1.GetOptions{})
		case "configmap":
			return c.clientset.CoreV1().ConfigMaps(namespace).Get(ctx, name, metav1.GetOptions{})
		case "namespace":
			return c.clientset.CoreV1().Namespaces().Get(ctx, name, metav1.GetOptions{})
		case "node":
			return c.clientset.CoreV1().Nodes().Get(ctx, name, metav1.GetOptions{})
		}
	case router.FamilyApps:
		switch normalized {
		case "deployment":
			return c.clientset.AppsV1().Deployments(namespace).Get(ctx, name, metav1.GetOptions{})
		case "statefulset":
			return c.clientset.AppsV1().StatefulSets(namespace).Get(ctx, name, metav1.GetOptions{})
		case "daemonset":
			return c.clientset.AppsV1().DaemonSets(namespace).Get(ctx, name, metav1.GetOptions{})
		case "replicaset":
			return c.clientset.AppsV1().ReplicaSets(namespace).Get(ctx, name, metav1.GetOptions{})
		}
	case router.FamilyNetworking:
		return c.clientset.NetworkingV1().Ingresses(namespace).Get(ctx, name, metav1.GetOptions{})
	case router.FamilyBatch:
		switch normalized {
		case "job":
			return c.clientset.BatchV1().Jobs(namespace).Get(ctx, name, metav1.GetOptions{})
		case "cronjob":
			return c.clientset.BatchV1().CronJobs(namespace).Get(ctx, name, metav1.GetOptions{})
		}
	}

	if namespace != "" {
		return c.dynamicClient.Resource(gvr).Namespace(namespace).Get(ctx, name, metav1.GetOptions{})
	}
	return c.dynamicClient.Resource(gvr).Get(ctx, name, metav1.GetOptions{})
}

// IsNotFound reports whether err is an API not-found condition
func IsNotFound(err error) bool {
	return apierrors.IsNotFound(err)
}

func timestampString(ts metav1.Time) string {
	if ts.IsZero() {
		return ""
	}
	return ts.Format("2006-01-02T15:04:05Z07:00")
}
