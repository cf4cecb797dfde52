/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package natsutil publishes device updates as CloudEvents on NATS JetStream.
package natsutil

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/carverauto/airpoller/pkg/logger"
	"github.com/carverauto/airpoller/pkg/models"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

const (
	eventSource       = "airpoller/poller"
	channelEventType  = "com.carverauto.airpoller.channel.updated"
	statusEventType   = "com.carverauto.airpoller.device.status"
	publishTimeout    = 5 * time.Second
	subjectTokenClean = "_"
)

// Publisher is the part of jetstream.JetStream used for publishing.
type Publisher interface {
	Publish(ctx context.Context, subject string, payload []byte, opts ...jetstream.PublishOpt) (*jetstream.PubAck, error)
}

// getSeverityForStatus maps device status to severity strings
func getSeverityForStatus(status models.DeviceStatus) string {
	switch status {
	case models.StatusConfigError:
		return "error"
	case models.StatusOffline:
		return "warning"
	case models.StatusUnknown:
		return "notice"
	case models.StatusOnline:
		return "info"
	default:
		return "info"
	}
}

// EventPublisher provides methods for publishing CloudEvents to NATS JetStream.
// It also satisfies poller.Sink so it can be handed to drivers directly.
type EventPublisher struct {
	js     Publisher
	prefix string
	logger logger.Logger
	now    func() time.Time
}

// NewEventPublisher creates a new EventPublisher publishing under subjectPrefix.
func NewEventPublisher(js Publisher, subjectPrefix string, log logger.Logger) *EventPublisher {
	return &EventPublisher{
		js:     js,
		prefix: subjectPrefix,
		logger: log,
		now:    time.Now,
	}
}

// subjectToken makes an arbitrary id safe to use as one subject token.
func subjectToken(s string) string {
	if s == "" {
		return subjectTokenClean
	}

	return strings.Map(func(r rune) rune {
		switch r {
		case '.', '*', '>', ' ', '\t', '\n', '\r':
			return '_'
		default:
			return r
		}
	}, s)
}

// ChannelSubject is the subject carrying updates for one channel.
func (p *EventPublisher) ChannelSubject(deviceID, channelID string) string {
	return fmt.Sprintf("%s.%s.channel.%s", p.prefix, subjectToken(deviceID), subjectToken(channelID))
}

// StatusSubject is the subject carrying status changes for one device.
func (p *EventPublisher) StatusSubject(deviceID string) string {
	return fmt.Sprintf("%s.%s.status", p.prefix, subjectToken(deviceID))
}

// PublishChannelUpdate publishes one channel value.
func (p *EventPublisher) PublishChannelUpdate(ctx context.Context, deviceID, channelID string, value models.Value) error {
	data := models.ChannelEventData{
		DeviceID:  deviceID,
		ChannelID: channelID,
		Value:     value,
		Timestamp: p.now(),
	}

	return p.publish(ctx, p.ChannelSubject(deviceID, channelID), channelEventType, &data.Timestamp, data)
}

// PublishStatusChange publishes a device status change.
func (p *EventPublisher) PublishStatusChange(ctx context.Context, deviceID string, status models.DeviceStatus, detail string) error {
	data := models.StatusEventData{
		DeviceID:  deviceID,
		Status:    status,
		Detail:    detail,
		Severity:  getSeverityForStatus(status),
		Timestamp: p.now(),
	}

	return p.publish(ctx, p.StatusSubject(deviceID), statusEventType, &data.Timestamp, data)
}

func (p *EventPublisher) publish(ctx context.Context, subject, eventType string, ts *time.Time, data interface{}) error {
	event := models.CloudEvent{
		SpecVersion:     "1.0",
		ID:              uuid.New().String(),
		Source:          eventSource,
		Type:            eventType,
		DataContentType: "application/json",
		Subject:         subject,
		Time:            ts,
		Data:            data,
	}

	eventBytes, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", eventType, err)
	}

	ack, err := p.js.Publish(ctx, subject, eventBytes)
	if err != nil {
		return fmt.Errorf("failed to publish %s event: %w", eventType, err)
	}

	p.logger.Trace().Str("event_id", event.ID).Str("subject", subject).Uint64("seq", ack.Sequence).Msg("Published event")

	return nil
}

// UpdateChannel implements poller.OutputSink. Failures are logged, not returned.
func (p *EventPublisher) UpdateChannel(deviceID, channelID string, value models.Value) {
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	if err := p.PublishChannelUpdate(ctx, deviceID, channelID, value); err != nil {
		p.logger.Warn().Err(err).Str("device", deviceID).Str("channel", channelID).Msg("Failed to publish channel update")
	}
}

// UpdateStatus implements poller.StatusSink. Failures are logged, not returned.
func (p *EventPublisher) UpdateStatus(deviceID string, status models.DeviceStatus, detail string) {
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	if err := p.PublishStatusChange(ctx, deviceID, status, detail); err != nil {
		p.logger.Warn().Err(err).Str("device", deviceID).Msg("Failed to publish status change")
	}
}

// Connect opens a NATS connection configured from cfg.
func Connect(cfg *models.NATSConfig, log logger.Logger, extraOpts ...nats.Option) (*nats.Conn, error) {
	opts := []nats.Option{nats.Name("airpoller")}

	if cfg.TLS != nil {
		tlsConf, err := TLSConfig(cfg.TLS)
		if err != nil {
			return nil, fmt.Errorf("failed to build NATS TLS config: %w", err)
		}

		opts = append(opts, nats.Secure(tlsConf))
	}

	opts = append(opts,
		nats.ErrorHandler(func(_ *nats.Conn, _ *nats.Subscription, err error) {
			log.Error().Err(err).Msg("NATS error")
		}),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Warn().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
	)

	opts = append(opts, extraOpts...)

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	log.Info().Str("url", nc.ConnectedUrl()).Msg("Connected to NATS")

	return nc, nil
}

// CreateEventPublisher makes sure the stream captures the publisher's subjects
// and returns a publisher bound to nc.
func CreateEventPublisher(ctx context.Context, nc *nats.Conn, cfg *models.NATSConfig, log logger.Logger) (*EventPublisher, error) {
	var (
		js  jetstream.JetStream
		err error
	)

	if cfg.Domain != "" {
		js, err = jetstream.NewWithDomain(nc, cfg.Domain)
	} else {
		js, err = jetstream.New(nc)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	wildcard := cfg.SubjectPrefix + ".>"

	stream, err := js.Stream(ctx, cfg.Stream)
	if err != nil {
		_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
			Name:     cfg.Stream,
			Subjects: []string{wildcard},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create or get stream %s: %w", cfg.Stream, err)
		}

		log.Info().Str("stream", cfg.Stream).Msg("Created NATS JetStream stream")
	} else {
		streamCfg := stream.CachedInfo().Config

		subjects := ensureSubjectList(streamCfg.Subjects, wildcard)
		if len(subjects) != len(streamCfg.Subjects) {
			streamCfg.Subjects = subjects

			if _, err := js.UpdateStream(ctx, streamCfg); err != nil {
				return nil, fmt.Errorf("failed to add %s to stream %s: %w", wildcard, cfg.Stream, err)
			}
		}
	}

	return NewEventPublisher(js, cfg.SubjectPrefix, log), nil
}

// ensureSubjectList appends subject unless an existing entry already covers it.
func ensureSubjectList(subjects []string, subject string) []string {
	for _, s := range subjects {
		if subjectMatches(s, subject) {
			return subjects
		}
	}

	return append(subjects, subject)
}

// subjectMatches reports whether pattern covers subject under NATS wildcard rules.
func subjectMatches(pattern, subject string) bool {
	pt := strings.Split(pattern, ".")
	st := strings.Split(subject, ".")

	for i, p := range pt {
		if p == ">" {
			return i < len(st)
		}

		if i >= len(st) {
			return false
		}

		if p != "*" && p != st[i] {
			return false
		}
	}

	return len(pt) == len(st)
}
