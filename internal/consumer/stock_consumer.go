package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/ShiLuis/KapePOS/internal/domain"
	"github.com/ShiLuis/KapePOS/internal/publisher"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

// dedupTTL bounds how long a processed order number is remembered.
const dedupTTL = 48 * time.Hour

// fetchRetryDelay is the pause after a failed fetch.
const fetchRetryDelay = time.Second

type StockAdjuster interface {
	AdjustStock(ctx context.Context, adjustments []domain.StockAdjustment) []domain.StockResult
}

// Deduper reports whether key is seen for the first time.
type Deduper interface {
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// StockConsumer decrements menu stock for every placed order.
type StockConsumer struct {
	stock  StockAdjuster
	dedup  Deduper
	reader messageReader
	log    zerolog.Logger

	retryDelay time.Duration
}

// NewStockConsumer reads order-placed events as consumer group groupID.
// dedup may be nil, in which case redelivered events adjust stock again.
func NewStockConsumer(stock StockAdjuster, dedup Deduper, log zerolog.Logger, groupID string, brokers ...string) *StockConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    publisher.TopicOrderPlaced,
		GroupID:  groupID,
		MaxBytes: 10e6, // 10MB
	})
	return &StockConsumer{stock: stock, dedup: dedup, reader: reader, log: log, retryDelay: fetchRetryDelay}
}

// Run consumes until ctx is done or the reader is closed.
func (c *StockConsumer) Run(ctx context.Context) {
	delay := c.retryDelay
	if delay <= 0 {
		delay = fetchRetryDelay
	}
	for {
		err := c.processMessage(ctx)
		switch {
		case ctx.Err() != nil:
			return
		case errors.Is(err, io.EOF):
			c.log.Info().Msg("kafka reader closed, stopping stock consumer")
			return
		case err != nil:
			t := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				t.Stop()
				return
			case <-t.C:
			}
		}
	}
}

func (c *StockConsumer) Close() {
	if err := c.reader.Close(); err != nil {
		c.log.Error().Err(err).Msg("error closing kafka reader")
	}
}

// processMessage handles one message. Only fetch errors are returned; a
// message that cannot be applied is logged and committed.
func (c *StockConsumer) processMessage(ctx context.Context) error {
	m, err := c.reader.FetchMessage(ctx)
	if err != nil {
		if !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, io.EOF) {
			c.log.Error().Err(err).Msg("error reading message")
		}
		return err
	}

	if err := c.handle(ctx, m); err != nil {
		c.log.Error().Err(err).Int64("offset", m.Offset).Msg("dropping order-placed message")
	}
	if err := c.reader.CommitMessages(ctx, m); err != nil && ctx.Err() == nil {
		c.log.Error().Err(err).Int64("offset", m.Offset).Msg("error committing message")
	}
	return nil
}

// handle applies the stock adjustments of one message. Malformed messages are
// reported and never retried.
func (c *StockConsumer) handle(ctx context.Context, m kafka.Message) error {
	var event domain.OrderPlacedEvent
	if err := json.Unmarshal(m.Value, &event); err != nil {
		return fmt.Errorf("parse message: %w", err)
	}
	if event.OrderNumber == "" {
		return errors.New("event has no order number")
	}
	log := c.log.With().Str("order_number", event.OrderNumber).Logger()

	if c.dedup != nil {
		first, err := c.dedup.MarkProcessed(ctx, publisher.TopicOrderPlaced+":"+event.OrderNumber, dedupTTL)
		switch {
		case err != nil:
			log.Warn().Err(err).Msg("dedup check failed, adjusting stock anyway")
		case !first:
			log.Info().Msg("order already applied to stock, skipping")
			return nil
		}
	}

	adjustments := event.StockAdjustments()
	if len(adjustments) == 0 {
		return nil
	}
	failed := 0
	for _, res := range c.stock.AdjustStock(ctx, adjustments) {
		if res.Err != nil {
			failed++
			log.Warn().Err(res.Err).Str("menu_item_id", res.MenuItemID).Msg("stock adjustment failed")
			continue
		}
		log.Debug().Str("menu_item_id", res.MenuItemID).Int("stock", res.Stock).Msg("stock adjusted")
	}
	log.Info().Int("items", len(adjustments)).Int("failed", failed).Msg("stock updated for order")
	return nil
}
