// Package queue provides a Redis-backed intake source for ticket payloads.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/xeipuuv/gojsonschema"

	"github.com/helpflow/triago/pkg/models"
)

const (
	popTimeout     = 1 * time.Second
	connectTimeout = 5 * time.Second
	retryBackoff   = 1 * time.Second
)

// TicketCallback receives every valid ticket payload popped from the queue.
type TicketCallback func(ctx context.Context, ticket *models.Ticket) error

// ticketSchema is the wire contract for queued ticket payloads. Invalid
// payloads are dropped with a log entry, never retried.
var ticketSchema = map[string]any{
	"type":     "object",
	"required": []any{"title", "description", "priority"},
	"properties": map[string]any{
		"id":          map[string]any{"type": "string"},
		"title":       map[string]any{"type": "string", "minLength": 3},
		"description": map[string]any{"type": "string", "minLength": 1},
		"category":    map[string]any{"type": "string"},
		"priority": map[string]any{
			"type": "string",
			"enum": []any{"low", "medium", "high", "urgent"},
		},
		"requester": map[string]any{"type": "string"},
	},
}

// Source consumes ticket payloads from a Redis list.
type Source struct {
	Addr     string
	Password string
	DB       int
	Queue    string

	client   redis.UniversalClient
	callback TicketCallback
	logger   *slog.Logger
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

// NewSource creates a queue source for the given Redis list.
func NewSource(addr, password string, db int, queue string, logger *slog.Logger) (*Source, error) {
	if queue == "" {
		return nil, errors.New("queue source queue name is required")
	}

	if addr == "" {
		addr = "localhost:6379"
	}

	return &Source{
		Addr:     addr,
		Password: password,
		DB:       db,
		Queue:    queue,
		stopCh:   make(chan struct{}),
		logger: logger.With(
			"module", "queue_source",
			"queue", queue,
		),
	}, nil
}

// Start connects to Redis and begins consuming in the background.
func (s *Source) Start(ctx context.Context, callback TicketCallback) error {
	s.logger.InfoContext(ctx, "Starting queue source")
	s.callback = callback

	err := s.initializeClient(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize queue client: %w", err)
	}

	s.wg.Add(1)

	go s.consume(ctx)

	return nil
}

func (s *Source) initializeClient(ctx context.Context) error {
	s.client = redis.NewClient(&redis.Options{
		Addr:     s.Addr,
		Password: s.Password,
		DB:       s.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	err := s.client.Ping(ctx).Err()
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	s.logger.InfoContext(ctx, "Connected to Redis", "addr", s.Addr, "db", s.DB)

	return nil
}

func (s *Source) consume(ctx context.Context) {
	defer s.wg.Done()

	s.logger.InfoContext(ctx, "Starting queue consumer")

	for {
		select {
		case <-s.stopCh:
			s.logger.InfoContext(ctx, "Queue consumer stopped")

			return
		case <-ctx.Done():
			s.logger.InfoContext(ctx, "Context cancelled, stopping queue consumer")

			return
		default:
			err := s.processMessage(ctx)
			if err != nil {
				s.logger.ErrorContext(ctx, "Error processing message", "error", err)
				time.Sleep(retryBackoff)
			}
		}
	}
}

func (s *Source) processMessage(ctx context.Context) error {
	result, err := s.client.BLPop(ctx, popTimeout, s.Queue).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}

		return fmt.Errorf("failed to pop message from queue: %w", err)
	}

	if len(result) < 2 {
		return nil
	}

	message := result[1]

	var payload map[string]any

	err = json.Unmarshal([]byte(message), &payload)
	if err != nil {
		s.logger.WarnContext(ctx, "Dropping non-JSON queue payload", "error", err)

		return nil
	}

	err = validatePayload(payload)
	if err != nil {
		s.logger.WarnContext(ctx, "Dropping invalid queue payload", "error", err)

		return nil
	}

	var ticket models.Ticket

	err = json.Unmarshal([]byte(message), &ticket)
	if err != nil {
		s.logger.WarnContext(ctx, "Dropping undecodable queue payload", "error", err)

		return nil
	}

	go func() {
		err := s.callback(ctx, &ticket)
		if err != nil {
			s.logger.ErrorContext(ctx, "Error handling queued ticket", "error", err)
		}
	}()

	return nil
}

// validatePayload validates a queued payload against the ticket schema.
func validatePayload(payload map[string]any) error {
	schemaLoader := gojsonschema.NewGoLoader(ticketSchema)
	dataLoader := gojsonschema.NewGoLoader(payload)

	result, err := gojsonschema.Validate(schemaLoader, dataLoader)
	if err != nil {
		return err
	}

	if !result.Valid() {
		var errs []string
		for _, desc := range result.Errors() {
			errs = append(errs, desc.String())
		}

		return fmt.Errorf("validation errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// Stop shuts the consumer down and closes the Redis connection.
func (s *Source) Stop(ctx context.Context) error {
	s.logger.InfoContext(ctx, "Stopping queue source")

	close(s.stopCh)
	s.wg.Wait()

	if s.client != nil {
		err := s.client.Close()
		if err != nil {
			s.logger.ErrorContext(ctx, "Error closing Redis client", "error", err)
		}
	}

	return nil
}
