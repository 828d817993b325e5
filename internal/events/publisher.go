// Package events fans admin security events out to the analytics backends.
// Event delivery is best-effort: a sink being down never blocks a login.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"fithub-admin/internal/bucketing"
	"fithub-admin/internal/client"
	"fithub-admin/internal/config"
	"fithub-admin/internal/model"
	"fithub-admin/internal/util"
)

const publishTimeout = 5 * time.Second

// Publisher writes each security event to Kafka, Elasticsearch, and
// ClickHouse. Any sink may be nil, which skips it; that keeps development
// setups runnable with only the core stores up.
type Publisher struct {
	kafka      *client.KafkaProducer
	es         *client.ESClient
	clickhouse *client.ClickHouseClient
	buckets    *bucketing.BucketingManager
	config     *config.Config
}

func NewPublisher(
	kafka *client.KafkaProducer,
	es *client.ESClient,
	clickhouse *client.ClickHouseClient,
	buckets *bucketing.BucketingManager,
	cfg *config.Config,
) *Publisher {
	return &Publisher{
		kafka:      kafka,
		es:         es,
		clickhouse: clickhouse,
		buckets:    buckets,
		config:     cfg,
	}
}

// PublishSecurityEvent records one auth occurrence across all configured
// sinks. Failures are logged and swallowed; the caller's flow must not
// depend on analytics availability.
func (p *Publisher) PublishSecurityEvent(ctx context.Context, adminID, eventType, ipAddress, details string) {
	if p == nil {
		return
	}

	now := time.Now().UTC()
	event := model.SecurityEvent{
		EventBucket: p.buckets.GetEventBucket(adminID),
		AdminID:     adminID,
		EventType:   eventType,
		EventTime:   now,
		EventDate:   p.buckets.GetDateBucket(now),
		IPAddress:   ipAddress,
		Details:     details,
	}

	payload, err := json.Marshal(event)
	if err != nil {
		util.Error("Failed to encode security event",
			zap.String("event_type", eventType),
			zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)

	if p.kafka != nil {
		g.Go(func() error {
			if err := p.kafka.Publish(gctx, []byte(adminID), payload); err != nil {
				util.Warn("Kafka security event publish failed",
					zap.String("event_type", eventType),
					zap.Error(err))
			}
			return nil
		})
	}

	if p.es != nil {
		g.Go(func() error {
			docID := uuid.New().String()
			res, err := p.es.IndexDocument(gctx, p.config.Elasticsearch.Index, docID, event)
			if err != nil {
				util.Warn("Elasticsearch security event index failed",
					zap.String("event_type", eventType),
					zap.Error(err))
				return nil
			}
			defer res.Body.Close()
			if res.IsError() {
				util.Warn("Elasticsearch rejected security event",
					zap.String("event_type", eventType),
					zap.String("response", res.String()))
			}
			return nil
		})
	}

	if p.clickhouse != nil {
		g.Go(func() error {
			err := p.clickhouse.Exec(gctx,
				`INSERT INTO admin_login_events (event_bucket, admin_id, event_type, event_time, event_date, ip_address, details)
				 VALUES (?, ?, ?, ?, ?, ?, ?)`,
				event.EventBucket, event.AdminID, event.EventType,
				event.EventTime, event.EventDate, event.IPAddress, event.Details)
			if err != nil {
				util.Warn("ClickHouse security event insert failed",
					zap.String("event_type", eventType),
					zap.Error(err))
			}
			return nil
		})
	}

	_ = g.Wait()

	util.Debug("Security event published",
		zap.String("admin_id", adminID),
		zap.String("event_type", eventType))
}
