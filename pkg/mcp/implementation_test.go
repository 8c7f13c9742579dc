package mcp

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/client-go/rest"

	"github.com/multikube/multikube/pkg/k8s"
	"github.com/multikube/multikube/pkg/kubeconfig"
)

// writeKubeconfig writes a minimal kubeconfig declaring the given contexts.
func writeKubeconfig(t *testing.T, dir, name string, contexts ...string) {
	t.Helper()

	content := "apiVersion: v1\nkind: Config\nclusters:\n"
	content += "- cluster:\n    server: https://test.example.com\n  name: test-cluster\n"
	content += "users:\n- name: test-user\n  user:\n    token: test-token\ncontexts:\n"
	for _, ctx := range contexts {
		content += fmt.Sprintf("- context:\n    cluster: test-cluster\n    user: test-user\n  name: %s\n", ctx)
	}
	content += fmt.Sprintf("current-context: %s\n", contexts[0])

	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
}

// newTestImplementation builds an Implementation over a registry with the
// contexts dev-cluster and staging-cluster, returning the given client for
// every resolved context.
func newTestImplementation(t *testing.T, client *k8s.Client) *Implementation {
	t.Helper()

	dir := t.TempDir()
	writeKubeconfig(t, dir, "config", "dev-cluster", "staging-cluster")

	registry := kubeconfig.NewRegistry(dir, nil)
	impl := NewImplementation(registry, nil)
	impl.SetClientFactory(func(_ *rest.Config) (*k8s.Client, error) {
		return client, nil
	})
	return impl
}

// contextRequest builds a CallToolRequest with a context argument plus extras.
func contextRequest(toolName, contextName string, extra map[string]interface{}) mcp.CallToolRequest {
	args := map[string]interface{}{"context": contextName}
	for k, v := range extra {
		args[k] = v
	}
	request := mcp.CallToolRequest{}
	request.Params.Name = toolName
	request.Params.Arguments = args
	return request
}

// resultText extracts the text payload from a tool result.
func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	textContent, ok := mcp.AsTextContent(result.Content[0])
	require.True(t, ok, "Content should be TextContent")
	return textContent.Text
}

func TestClientForResolvesSubstring(t *testing.T) {
	impl := newTestImplementation(t, &k8s.Client{})

	client, fullName, err := impl.clientFor("dev")
	assert.NoError(t, err)
	assert.NotNil(t, client)
	assert.Equal(t, "dev-cluster", fullName)
}

func TestClientForNotFound(t *testing.T) {
	impl := newTestImplementation(t, &k8s.Client{})

	_, _, err := impl.clientFor("production")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "production")
}

func TestClientForAmbiguous(t *testing.T) {
	impl := newTestImplementation(t, &k8s.Client{})

	// Both contexts contain "cluster"
	_, _, err := impl.clientFor("cluster")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "dev-cluster")
	assert.Contains(t, err.Error(), "staging-cluster")
}

func TestClientForFactoryError(t *testing.T) {
	dir := t.TempDir()
	writeKubeconfig(t, dir, "config", "dev-cluster")

	registry := kubeconfig.NewRegistry(dir, nil)
	impl := NewImplementation(registry, nil)
	impl.SetClientFactory(func(_ *rest.Config) (*k8s.Client, error) {
		return nil, fmt.Errorf("boom")
	})

	_, _, err := impl.clientFor("dev")
	assert.Error(t, err)
}

func TestHandlerSurfacesResolutionError(t *testing.T) {
	impl := newTestImplementation(t, &k8s.Client{})

	request := contextRequest("k8s_get_namespaces", "nonexistent", nil)
	result, err := impl.HandleGetNamespaces(context.Background(), request)
	assert.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "nonexistent")
}
