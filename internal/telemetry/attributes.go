// SPDX-License-Identifier: MIT

package telemetry

import "go.opentelemetry.io/otel/attribute"

// Attribute keys shared by pipeline spans.
const (
	RunIDKey      = "hls.run_id"
	TitleKey      = "hls.title"
	ItemKey       = "hls.item"
	RenditionKey  = "hls.rendition"
	JobKindKey    = "hls.job.kind"
	JobsKey       = "hls.jobs"
	TasksKey      = "hls.tasks"
	StorePathKey  = "store.path"
	StatusKey     = "hls.status"
	FailedJobsKey = "hls.jobs.failed"
)

// ItemAttributes identifies a content item within a run.
func ItemAttributes(title, item string) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, 2)
	if title != "" {
		attrs = append(attrs, attribute.String(TitleKey, title))
	}
	if item != "" {
		attrs = append(attrs, attribute.String(ItemKey, item))
	}
	return attrs
}

// BatchAttributes describes a resolution batch for one folder.
func BatchAttributes(item, folder string, tasks int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(ItemKey, item),
		attribute.String(RenditionKey, folder),
		attribute.Int(TasksKey, tasks),
	}
}
