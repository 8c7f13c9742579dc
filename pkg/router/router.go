// Package router translates user-supplied resource kinds into the API
// group/version/plural coordinates needed to address them, without requiring
// callers to know the Kubernetes API grouping for built-in kinds.
package router

import (
	"strings"

	"k8s.io/apimachinery/pkg/runtime/schema"
)

// Family identifies which typed call path serves a resolved coordinate.
// Built-in kinds keep their stable typed paths; everything else goes through
// the generic dynamic path with the computed coordinate.
type Family int

const (
	FamilyCore Family = iota
	FamilyApps
	FamilyNetworking
	FamilyBatch
	FamilyCustom
)

const (
	// GroupCore is the legacy /api/v1 tree (empty group string).
	GroupCore       = ""
	GroupApps       = "apps"
	GroupNetworking = "networking.k8s.io"
	GroupBatch      = "batch"

	defaultVersion = "v1"
)

// noStrip lists kinds whose trailing "s" is part of the singular name and
// must not be removed by NormalizeKind.
var noStrip = map[string]bool{
	"access":    true,
	"endpoints": true,
	"ingress":   true,
	"status":    true,
}

// groupForKind maps built-in kinds, singular and plural spellings both, to
// their API group. Kinds absent from the table resolve to the core group.
var groupForKind = map[string]string{
	"deployment":   GroupApps,
	"deployments":  GroupApps,
	"statefulset":  GroupApps,
	"statefulsets": GroupApps,
	"daemonset":    GroupApps,
	"daemonsets":   GroupApps,
	"replicaset":   GroupApps,
	"replicasets":  GroupApps,

	"ingress":   GroupNetworking,
	"ingresses": GroupNetworking,

	"job":      GroupBatch,
	"jobs":     GroupBatch,
	"cronjob":  GroupBatch,
	"cronjobs": GroupBatch,
}

// coreKinds are the built-in kinds served by the core/v1 typed path. Kinds
// outside this set and the group table are treated as custom resources, which
// also land in the core group when no explicit group is given; that silent
// default is long-standing behavior callers rely on, so it is kept rather
// than turned into an error.
var coreKinds = map[string]bool{
	"pod":                   true,
	"service":               true,
	"namespace":             true,
	"node":                  true,
	"secret":                true,
	"configmap":             true,
	"persistentvolume":      true,
	"persistentvolumeclaim": true,
	"serviceaccount":        true,
	"endpoint":              true,
	"endpoints":             true,
	"event":                 true,
}

// NormalizeKind lowercases kind and strips a single trailing "s" unless the
// result is a word whose singular form already ends in "s". This is a
// heuristic, not a pluralization engine: "ingresses" needs the group table's
// literal-plural entries to resolve correctly.
func NormalizeKind(kind string) string {
	k := strings.ToLower(kind)
	if strings.HasSuffix(k, "s") && !noStrip[k] {
		return k[:len(k)-1]
	}
	return k
}

// ResolveGroup returns explicitGroup when given, otherwise the fixed table's
// group for kind, otherwise the core group.
func ResolveGroup(kind, explicitGroup string) string {
	if explicitGroup != "" {
		return explicitGroup
	}
	if group, ok := groupForKind[strings.ToLower(kind)]; ok {
		return group
	}
	return GroupCore
}

// ResolveCoordinate combines the group table with the caller's explicit
// group/version and a plural computed as NormalizeKind(kind)+"s". Irregular
// plurals are not special-cased; callers pass the explicit group and plural
// spelling when the naive rule is wrong.
func ResolveCoordinate(kind, explicitGroup, explicitVersion string) schema.GroupVersionResource {
	version := explicitVersion
	if version == "" {
		version = defaultVersion
	}
	return schema.GroupVersionResource{
		Group:    ResolveGroup(kind, explicitGroup),
		Version:  version,
		Resource: NormalizeKind(kind) + "s",
	}
}

// FamilyFor returns the typed call family for a kind resolved into group.
// Only kinds the router knows route to typed paths; an unknown kind in a
// known group still goes through the generic path.
func FamilyFor(kind, group string) Family {
	normalized := NormalizeKind(kind)
	switch group {
	case GroupApps:
		switch normalized {
		case "deployment", "statefulset", "daemonset", "replicaset":
			return FamilyApps
		}
	case GroupNetworking:
		if normalized == "ingress" || strings.ToLower(kind) == "ingresses" {
			return FamilyNetworking
		}
	case GroupBatch:
		switch normalized {
		case "job", "cronjob":
			return FamilyBatch
		}
	case GroupCore:
		if coreKinds[normalized] || coreKinds[strings.ToLower(kind)] {
			return FamilyCore
		}
	}
	return FamilyCustom
}
