package ratelimit

import "github.com/multikube/multikube/pkg/types"

// TODO: make these constants configurable
const (
	defaultLimit = 60
	readLimit    = 120 // 120 requests per minute (2 per second)
	writeLimit   = 30  // 30 requests per minute (0.5 per second)
	DefaultTool  = "default"
)

// DefaultConfig defines the default rate limits for different tools
var DefaultConfig = map[string]int{
	// Read operations - higher limits
	types.GetContextsToolName:         readLimit,
	types.GetNamespacesToolName:       readLimit,
	types.GetNodesToolName:            readLimit,
	types.GetResourcesToolName:        readLimit,
	types.GetResourceToolName:         readLimit,
	types.GetPodLogsToolName:          readLimit,
	types.GetEventsToolName:           readLimit,
	types.TopNodesToolName:            readLimit,
	types.TopPodsToolName:             readLimit,
	types.RolloutStatusToolName:       readLimit,
	types.RolloutHistoryToolName:      readLimit,
	types.APIsToolName:                readLimit,
	types.CRDsToolName:                readLimit,
	types.DescribeToolName:            readLimit,
	types.DiagnoseApplicationToolName: readLimit,

	// Write operations - lower limits
	types.RolloutUndoToolName:       writeLimit,
	types.RolloutRestartToolName:    writeLimit,
	types.RolloutPauseToolName:      writeLimit,
	types.RolloutResumeToolName:     writeLimit,
	types.ScaleResourceToolName:     writeLimit,
	types.AutoscaleResourceToolName: writeLimit,
	types.UpdateResourcesToolName:   writeLimit,
	types.CreateResourceToolName:    writeLimit,
	types.ApplyResourceToolName:     writeLimit,
	types.PatchResourceToolName:     writeLimit,
	types.LabelResourceToolName:     writeLimit,
	types.AnnotateResourceToolName:  writeLimit,
	types.ExposeResourceToolName:    writeLimit,
	types.CordonNodeToolName:        writeLimit,
	types.UncordonNodeToolName:      writeLimit,
	types.DrainNodeToolName:         writeLimit,
	types.TaintNodeToolName:         writeLimit,
	types.UntaintNodeToolName:       writeLimit,
	types.PodExecToolName:           writeLimit,

	// Default for any other tool
	DefaultTool: defaultLimit,
}

// GetDefaultRateLimiter returns a RateLimiter with default configuration
func GetDefaultRateLimiter() *RateLimiter {
	options := []RateLimiterOption{
		WithDefaultLimit(DefaultConfig[DefaultTool]),
	}

	// Add tool-specific limits
	for tool, limit := range DefaultConfig {
		if tool != DefaultTool {
			options = append(options, WithToolLimit(tool, limit))
		}
	}

	limiter := NewRateLimiter(options...)
	return limiter
}
