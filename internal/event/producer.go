package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/utafrali/MiniShopGo/internal/domain"
	pkgkafka "github.com/utafrali/MiniShopGo/pkg/kafka"
)

// Kafka topic constants for cart and checkout domain events.
const (
	TopicCartUpdated       = "shop.cart.updated"
	TopicCartCleared       = "shop.cart.cleared"
	TopicCheckoutCompleted = "shop.checkout.completed"
)

// Aggregate type constants.
const (
	AggregateTypeCartLine = "cart_line"
	AggregateTypeReceipt  = "receipt"
)

// Source identifier for events originating from this service.
const SourceCartService = "minishop-cart"

// CartUpdatedData is the payload for a cart.updated event. For a removal the
// Removed flag is set and Qty/Version carry the deleted line's last state.
type CartUpdatedData struct {
	LineID    string `json:"line_id"`
	ProductID string `json:"product_id"`
	Qty       int    `json:"qty"`
	Version   int    `json:"version"`
	Removed   bool   `json:"removed,omitempty"`
}

// CheckoutCompletedData is the payload for a checkout.completed event.
type CheckoutCompletedData struct {
	ReceiptID string  `json:"receipt_id"`
	Total     float64 `json:"total"`
	ItemCount int     `json:"item_count"`
}

// Producer publishes cart domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishCartUpdated publishes a cart.updated event for a mutated line.
func (p *Producer) PublishCartUpdated(ctx context.Context, line *domain.CartLine, removed bool) error {
	data := CartUpdatedData{
		LineID:    line.ID,
		ProductID: line.ProductID,
		Qty:       line.Qty,
		Version:   line.Version,
		Removed:   removed,
	}

	evt, err := pkgkafka.NewEvent("cart.updated", line.ID, AggregateTypeCartLine, SourceCartService, data)
	if err != nil {
		return fmt.Errorf("create cart.updated event: %w", err)
	}

	return p.kafka.Publish(ctx, TopicCartUpdated, evt)
}

// PublishCartCleared publishes a cart.cleared event after the cart is drained.
func (p *Producer) PublishCartCleared(ctx context.Context) error {
	evt, err := pkgkafka.NewEvent("cart.cleared", "cart", AggregateTypeCartLine, SourceCartService, struct{}{})
	if err != nil {
		return fmt.Errorf("create cart.cleared event: %w", err)
	}

	return p.kafka.Publish(ctx, TopicCartCleared, evt)
}

// PublishCheckoutCompleted publishes a checkout.completed event.
func (p *Producer) PublishCheckoutCompleted(ctx context.Context, receipt *domain.Receipt, itemCount int) error {
	data := CheckoutCompletedData{
		ReceiptID: receipt.ID,
		Total:     receipt.Total,
		ItemCount: itemCount,
	}

	evt, err := pkgkafka.NewEvent("checkout.completed", receipt.ID, AggregateTypeReceipt, SourceCartService, data)
	if err != nil {
		return fmt.Errorf("create checkout.completed event: %w", err)
	}

	return p.kafka.Publish(ctx, TopicCheckoutCompleted, evt)
}
