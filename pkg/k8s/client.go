// Package k8s wraps the typed, dynamic and discovery Kubernetes clients for
// a single resolved context and implements the cluster-facing operations the
// MCP tools are built on.
package k8s

import (
	"context"
	"fmt"
	"time"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/client-go/discovery"
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
)

// ExecFunc is a function type for executing commands in pods
type ExecFunc func(ctx context.Context, namespace, name string, command []string, container string, timeout time.Duration) (*unstructured.Unstructured, error)

// Client represents a Kubernetes client scoped to one resolved context, with
// discovery, dynamic and typed capabilities
type Client struct {
	restConfig      *rest.Config
	discoveryClient discovery.DiscoveryInterface
	dynamicClient   dynamic.Interface
	clientset       kubernetes.Interface
	execInPod       ExecFunc
}

// NewForConfig creates a new Kubernetes client from a rest.Config, typically
// one produced by the kubeconfig registry for a resolved context
func NewForConfig(config *rest.Config) (*Client, error) {
	discoveryClient, err := discovery.NewDiscoveryClientForConfig(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create discovery client: %w", err)
	}

	dynamicClient, err := dynamic.NewForConfig(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create dynamic client: %w", err)
	}

	clientset, err := kubernetes.NewForConfig(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create clientset: %w", err)
	}

	client := &Client{
		restConfig:      config,
		discoveryClient: discoveryClient,
		dynamicClient:   dynamicClient,
		clientset:       clientset,
	}
	client.execInPod = client.defaultExecInPod

	return client, nil
}

// SetDynamicClient sets the dynamic client (for testing purposes)
func (c *Client) SetDynamicClient(dynamicClient dynamic.Interface) {
	c.dynamicClient = dynamicClient
}

// SetDiscoveryClient sets the discovery client (for testing purposes)
func (c *Client) SetDiscoveryClient(discoveryClient discovery.DiscoveryInterface) {
	c.discoveryClient = discoveryClient
}

// SetClientset sets the typed clientset (for testing purposes)
func (c *Client) SetClientset(clientset kubernetes.Interface) {
	c.clientset = clientset
}

// SetExecFunc sets the function used to execute commands in pods (for testing purposes)
func (c *Client) SetExecFunc(execInPod ExecFunc) {
	c.execInPod = execInPod
}

// IsReady returns true if the client is ready to use
func (c *Client) IsReady() bool {
	return c.discoveryClient != nil && c.dynamicClient != nil && c.clientset != nil
}
