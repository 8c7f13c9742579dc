package k8s

import (
	"context"
	"fmt"
	"strings"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime/schema"

	"github.com/multikube/multikube/pkg/router"
)

// Describe returns the full resource plus the events that reference it,
// mirroring what kubectl describe surfaces
func (c *Client) Describe(ctx context.Context, kind string, namespace, name string, gvr schema.GroupVersionResource) (map[string]interface{}, error) {
	resource, err := c.GetResource(ctx, kind, namespace, name, gvr)
	if err != nil {
		return nil, err
	}

	result := map[string]interface{}{
		"kind":     kind,
		"resource": resource,
	}

	if namespace != "" {
		// Events carry the singular object kind; normalize so plural
		// spellings from the caller still match.
		singular := router.NormalizeKind(kind)
		events, err := c.clientset.CoreV1().Events(namespace).List(ctx, metav1.ListOptions{
			FieldSelector: "involvedObject.name=" + name,
		})
		if err == nil {
			summarized := make([]map[string]string, 0, len(events.Items))
			for i := range events.Items {
				event := &events.Items[i]
				if !strings.EqualFold(event.InvolvedObject.Kind, singular) {
					continue
				}
				summarized = append(summarized, map[string]string{
					"type":    event.Type,
					"reason":  event.Reason,
					"message": event.Message,
					"count":   fmt.Sprintf("%d", event.Count),
				})
			}
			result["events"] = summarized
		}
	}

	return result, nil
}
