package enums

import "fmt"

// OutboxAggregateType maps to the outbox_aggregate_type enum in Postgres.
type OutboxAggregateType string

const (
	AggregateSale      OutboxAggregateType = "sale"
	AggregatePromotion OutboxAggregateType = "promotion"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateSale,
	AggregatePromotion,
}

// IsValid reports whether the value matches the canonical aggregate type enum.
func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseOutboxAggregateType converts raw input into OutboxAggregateType.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	for _, candidate := range validAggregateTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid aggregate type %q", value)
}

// OutboxEventType maps to the outbox_event_type enum in Postgres.
type OutboxEventType string

const (
	EventSaleCreated     OutboxEventType = "sale_created"
	EventSaleUpdated     OutboxEventType = "sale_updated"
	EventSaleDeleted     OutboxEventType = "sale_deleted"
	EventPromotionsEnded OutboxEventType = "promotions_ended"
)

var validOutboxEventTypes = []OutboxEventType{
	EventSaleCreated,
	EventSaleUpdated,
	EventSaleDeleted,
	EventPromotionsEnded,
}

// IsValid reports whether the value matches the canonical event type enum.
func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event type %q", value)
}
