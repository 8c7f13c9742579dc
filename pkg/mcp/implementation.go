// Package mcp exposes the multi-context Kubernetes tools over the Model
// Context Protocol.
package mcp

import (
	"go.uber.org/zap"
	"k8s.io/client-go/rest"

	"github.com/multikube/multikube/pkg/k8s"
	"github.com/multikube/multikube/pkg/kubeconfig"
)

// Implementation implements the MCP tool handlers on top of the kubeconfig
// registry. Every handler resolves its context argument afresh, so kubeconfig
// edits are picked up without restarting the server.
type Implementation struct {
	registry *kubeconfig.Registry
	logger   *zap.Logger

	// newClient builds a cluster client from a rest.Config; replaced in
	// tests to inject fakes.
	newClient func(*rest.Config) (*k8s.Client, error)
}

// NewImplementation creates a new MCP implementation backed by the registry
func NewImplementation(registry *kubeconfig.Registry, logger *zap.Logger) *Implementation {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Implementation{
		registry:  registry,
		logger:    logger,
		newClient: k8s.NewForConfig,
	}
}

// SetClientFactory replaces the cluster client constructor (for testing purposes)
func (m *Implementation) SetClientFactory(factory func(*rest.Config) (*k8s.Client, error)) {
	m.newClient = factory
}

// clientFor resolves a context name fragment and returns a cluster client
// for it along with the resolved full name.
func (m *Implementation) clientFor(name string) (*k8s.Client, string, error) {
	config, fullName, err := m.registry.RESTConfigFor(name)
	if err != nil {
		return nil, "", err
	}

	client, err := m.newClient(config)
	if err != nil {
		return nil, "", err
	}

	m.logger.Debug("resolved context", zap.String("requested", name), zap.String("context", fullName))
	return client, fullName, nil
}
