package k8s

import (
	"context"
	"fmt"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/intstr"
)

// ExposeOptions describes the Service to create for a workload.
type ExposeOptions struct {
	// Name of the Service; defaults to the workload name.
	Name string
	// Port the Service listens on. Required.
	Port int32
	// TargetPort on the pods; defaults to Port.
	TargetPort int32
	// Type is the Service type; defaults to ClusterIP.
	Type string
	// Protocol defaults to TCP.
	Protocol string
}

// Expose creates a Service selecting the pods of a deployment, statefulset,
// daemonset or an existing pod label set
func (c *Client) Expose(ctx context.Context, resourceType, namespace, name string, opts ExposeOptions) (map[string]interface{}, error) {
	if opts.Port <= 0 || opts.Port > 65535 {
		return nil, fmt.Errorf("port must be between 1 and 65535, got %d", opts.Port)
	}

	selector, err := c.workloadSelector(ctx, resourceType, namespace, name)
	if err != nil {
		return nil, err
	}
	if len(selector) == 0 {
		return nil, fmt.Errorf("%s %s/%s has no selector labels to expose", resourceType, namespace, name)
	}

	serviceType, err := parseServiceType(opts.Type)
	if err != nil {
		return nil, err
	}
	protocol, err := parseProtocol(opts.Protocol)
	if err != nil {
		return nil, err
	}

	serviceName := opts.Name
	if serviceName == "" {
		serviceName = name
	}
	targetPort := opts.TargetPort
	if targetPort == 0 {
		targetPort = opts.Port
	}

	service := &corev1.Service{
		ObjectMeta: metav1.ObjectMeta{
			Name:      serviceName,
			Namespace: namespace,
			Labels:    selector,
		},
		Spec: corev1.ServiceSpec{
			Selector: selector,
			Type:     serviceType,
			Ports: []corev1.ServicePort{{
				Port:       opts.Port,
				TargetPort: intstr.FromInt32(targetPort),
				Protocol:   protocol,
			}},
		},
	}

	created, err := c.clientset.CoreV1().Services(namespace).Create(ctx, service, metav1.CreateOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to create service %s/%s: %w", namespace, serviceName, err)
	}

	return map[string]interface{}{
		"success":     true,
		"message":     fmt.Sprintf("Exposed %s/%s as service %s (%s) on port %d", resourceType, name, created.Name, created.Spec.Type, opts.Port),
		"service":     created.Name,
		"type":        string(created.Spec.Type),
		"port":        opts.Port,
		"target_port": targetPort,
	}, nil
}

// workloadSelector resolves the pod selector labels of the target workload.
func (c *Client) workloadSelector(ctx context.Context, resourceType, namespace, name string) (map[string]string, error) {
	switch resourceType {
	case "deployment":
		dep, err := c.clientset.AppsV1().Deployments(namespace).Get(ctx, name, metav1.GetOptions{})
		if err != nil {
			return nil, wrapWorkloadErr(err, resourceType, namespace, name)
		}
		if dep.Spec.Selector == nil {
			return nil, nil
		}
		return dep.Spec.Selector.MatchLabels, nil
	case "statefulset":
		sts, err := c.clientset.AppsV1().StatefulSets(namespace).Get(ctx, name, metav1.GetOptions{})
		if err != nil {
			return nil, wrapWorkloadErr(err, resourceType, namespace, name)
		}
		if sts.Spec.Selector == nil {
			return nil, nil
		}
		return sts.Spec.Selector.MatchLabels, nil
	case "daemonset":
		ds, err := c.clientset.AppsV1().DaemonSets(namespace).Get(ctx, name, metav1.GetOptions{})
		if err != nil {
			return nil, wrapWorkloadErr(err, resourceType, namespace, name)
		}
		if ds.Spec.Selector == nil {
			return nil, nil
		}
		return ds.Spec.Selector.MatchLabels, nil
	case "pod":
		pod, err := c.clientset.CoreV1().Pods(namespace).Get(ctx, name, metav1.GetOptions{})
		if err != nil {
			return nil, wrapWorkloadErr(err, resourceType, namespace, name)
		}
		return pod.Labels, nil
	}
	return nil, fmt.Errorf("unsupported resource type: %s; supported types: deployment, statefulset, daemonset, pod", resourceType)
}

func parseServiceType(serviceType string) (corev1.ServiceType, error) {
	switch serviceType {
	case "", "ClusterIP":
		return corev1.ServiceTypeClusterIP, nil
	case "NodePort":
		return corev1.ServiceTypeNodePort, nil
	case "LoadBalancer":
		return corev1.ServiceTypeLoadBalancer, nil
	}
	return "", fmt.Errorf("invalid service type %q; must be ClusterIP, NodePort or LoadBalancer", serviceType)
}

func parseProtocol(protocol string) (corev1.Protocol, error) {
	switch protocol {
	case "", "TCP":
		return corev1.ProtocolTCP, nil
	case "UDP":
		return corev1.ProtocolUDP, nil
	case "SCTP":
		return corev1.ProtocolSCTP, nil
	}
	return "", fmt.Errorf("invalid protocol %q; must be TCP, UDP or SCTP", protocol)
}
