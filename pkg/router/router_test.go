package router

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"k8s.io/apimachinery/pkg/runtime/schema"
)

func TestNormalizeKind(t *testing.T) {
	tests := []struct {
		kind string
		want string
	}{
		{"pods", "pod"},
		{"pod", "pod"},
		{"Deployments", "deployment"},
		{"Deployment", "deployment"},
		{"endpoints", "endpoints"},
		{"status", "status"},
		{"access", "access"},
		{"ingress", "ingress"},
		{"Ingress", "ingress"},
	}

	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeKind(tt.kind))
		})
	}
}

func TestResolveGroup(t *testing.T) {
	tests := []struct {
		kind     string
		explicit string
		want     string
	}{
		{"deployment", "", "apps"},
		{"Deployments", "", "apps"},
		{"statefulset", "", "apps"},
		{"daemonsets", "", "apps"},
		{"replicaset", "", "apps"},
		{"ingress", "", "networking.k8s.io"},
		{"ingresses", "", "networking.k8s.io"},
		{"job", "", "batch"},
		{"cronjob", "", "batch"},
		{"pod", "", ""},
		{"service", "", ""},
		{"configmap", "", ""},
		// Unknown kinds silently default to the core group; pinned here so a
		// change in that fallback is a deliberate one.
		{"widget", "", ""},
		{"widget", "example.com", "example.com"},
		{"deployment", "custom.io", "custom.io"},
	}

	for _, tt := range tests {
		t.Run(tt.kind+"/"+tt.explicit, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveGroup(tt.kind, tt.explicit))
		})
	}
}

func TestResolveCoordinate(t *testing.T) {
	tests := []struct {
		name           string
		kind           string
		group, version string
		want           schema.GroupVersionResource
	}{
		{
			name: "pods default to core v1",
			kind: "pods",
			want: schema.GroupVersionResource{Group: "", Version: "v1", Resource: "pods"},
		},
		{
			name: "deployment gets apps group",
			kind: "deployment",
			want: schema.GroupVersionResource{Group: "apps", Version: "v1", Resource: "deployments"},
		},
		{
			name:    "explicit group and version pass through",
			kind:    "widgets",
			group:   "example.com",
			version: "v1alpha1",
			want:    schema.GroupVersionResource{Group: "example.com", Version: "v1alpha1", Resource: "widgets"},
		},
		{
			name: "cronjobs to batch",
			kind: "CronJobs",
			want: schema.GroupVersionResource{Group: "batch", Version: "v1", Resource: "cronjobs"},
		},
		{
			name: "singular ingress pluralizes",
			kind: "ingress",
			want: schema.GroupVersionResource{Group: "networking.k8s.io", Version: "v1", Resource: "ingresses"},
		},
		{
			name: "plural ingresses kept",
			kind: "ingresses",
			want: schema.GroupVersionResource{Group: "networking.k8s.io", Version: "v1", Resource: "ingresses"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveCoordinate(tt.kind, tt.group, tt.version))
		})
	}
}

func TestFamilyFor(t *testing.T) {
	tests := []struct {
		kind  string
		group string
		want  Family
	}{
		{"pod", "", FamilyCore},
		{"pods", "", FamilyCore},
		{"service", "", FamilyCore},
		{"deployment", "apps", FamilyApps},
		{"statefulsets", "apps", FamilyApps},
		{"ingress", "networking.k8s.io", FamilyNetworking},
		{"ingresses", "networking.k8s.io", FamilyNetworking},
		{"job", "batch", FamilyBatch},
		{"cronjobs", "batch", FamilyBatch},
		{"widget", "", FamilyCustom},
		{"widget", "example.com", FamilyCustom},
		// A known kind under an unexpected group is routed generically.
		{"deployment", "custom.io", FamilyCustom},
	}

	for _, tt := range tests {
		t.Run(tt.kind+"/"+tt.group, func(t *testing.T) {
			assert.Equal(t, tt.want, FamilyFor(tt.kind, tt.group))
		})
	}
}
