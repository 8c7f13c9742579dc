// Package types contains common type definitions and constants used across the MCP implementation
package types

// Tool names exposed by the server. Handlers, rate limits and tests key off
// these constants.
const (
	GetContextsToolName   = "k8s_get_contexts"
	GetNamespacesToolName = "k8s_get_namespaces"
	GetNodesToolName      = "k8s_get_nodes"
	GetResourcesToolName  = "k8s_get_resources"
	GetResourceToolName   = "k8s_get_resource"
	GetPodLogsToolName    = "k8s_get_pod_logs"
	GetEventsToolName     = "k8s_get_events"
	TopNodesToolName      = "k8s_top_nodes"
	TopPodsToolName       = "k8s_top_pods"

	RolloutStatusToolName  = "k8s_rollout_status"
	RolloutHistoryToolName = "k8s_rollout_history"
	RolloutUndoToolName    = "k8s_rollout_undo"
	RolloutRestartToolName = "k8s_rollout_restart"
	RolloutPauseToolName   = "k8s_rollout_pause"
	RolloutResumeToolName  = "k8s_rollout_resume"

	ScaleResourceToolName     = "k8s_scale_resource"
	AutoscaleResourceToolName = "k8s_autoscale_resource"
	UpdateResourcesToolName   = "k8s_update_resources"

	DiagnoseApplicationToolName = "k8s_diagnose_application"
	APIsToolName                = "k8s_apis"
	CRDsToolName                = "k8s_crds"
	DescribeToolName            = "k8s_describe"

	CreateResourceToolName   = "k8s_create_resource"
	ApplyResourceToolName    = "k8s_apply_resource"
	PatchResourceToolName    = "k8s_patch_resource"
	LabelResourceToolName    = "k8s_label_resource"
	AnnotateResourceToolName = "k8s_annotate_resource"
	ExposeResourceToolName   = "k8s_expose_resource"

	CordonNodeToolName   = "k8s_cordon_node"
	UncordonNodeToolName = "k8s_uncordon_node"
	DrainNodeToolName    = "k8s_drain_node"
	TaintNodeToolName    = "k8s_taint_node"
	UntaintNodeToolName  = "k8s_untaint_node"

	PodExecToolName = "k8s_pod_exec"
)
