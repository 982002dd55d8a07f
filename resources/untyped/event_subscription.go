package untyped

import (
	"context"

	"github.com/lexware-office/go-lexware-client/core"
)

type EventSubscription struct {
	*core.Resource
}

// GetByEventTypeWithContext returns the subscriptions for eventType, filtered locally.
func (e *EventSubscription) GetByEventTypeWithContext(ctx context.Context, eventType string) (core.RecordSet, error) {
	all, err := e.ListWithContext(ctx, nil)
	if err != nil {
		return nil, err
	}
	result := core.RecordSet{}
	for _, sub := range all {
		if value, _ := sub["eventType"].(string); value == eventType {
			result = append(result, sub)
		}
	}
	return result, nil
}

func (e *EventSubscription) GetByEventType(eventType string) (core.RecordSet, error) {
	return e.GetByEventTypeWithContext(e.Rest.GetCtx(), eventType)
}
