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

package models

import (
	"fmt"
	"time"
)

const (
	DefaultEventStream   = "airpoller"
	DefaultSubjectPrefix = "airpoller"
)

// NATSConfig configures publishing of device events to JetStream. An empty URL
// disables publishing.
type NATSConfig struct {
	URL           string     `json:"url"`
	Domain        string     `json:"domain,omitempty"`
	Stream        string     `json:"stream,omitempty"`
	SubjectPrefix string     `json:"subject_prefix,omitempty"`
	TLS           *TLSConfig `json:"tls,omitempty"`
}

// TLSConfig holds client certificate paths for mTLS.
type TLSConfig struct {
	CertFile   string `json:"cert_file"`
	KeyFile    string `json:"key_file"`
	CAFile     string `json:"ca_file"`
	ServerName string `json:"server_name,omitempty"`
}

// Enabled reports whether events should be published.
func (c *NATSConfig) Enabled() bool {
	return c != nil && c.URL != ""
}

// Validate fills in defaults for an enabled configuration.
func (c *NATSConfig) Validate() error {
	if !c.Enabled() {
		return nil
	}

	if c.Stream == "" {
		c.Stream = DefaultEventStream
	}

	if c.SubjectPrefix == "" {
		c.SubjectPrefix = DefaultSubjectPrefix
	}

	if c.TLS != nil && (c.TLS.CertFile == "" || c.TLS.KeyFile == "" || c.TLS.CAFile == "") {
		return fmt.Errorf("%w: nats tls requires cert_file, key_file and ca_file", ErrConfigInvalid)
	}

	return nil
}

// CloudEvent represents a CloudEvents v1.0 compliant event.
type CloudEvent struct {
	SpecVersion     string      `json:"specversion"`
	ID              string      `json:"id"`
	Source          string      `json:"source"`
	Type            string      `json:"type"`
	DataContentType string      `json:"datacontenttype"`
	Subject         string      `json:"subject,omitempty"`
	Time            *time.Time  `json:"time,omitempty"`
	Data            interface{} `json:"data,omitempty"`
}

// ChannelEventData is the payload of a channel update event.
type ChannelEventData struct {
	DeviceID  string    `json:"device_id"`
	ChannelID string    `json:"channel_id"`
	Value     Value     `json:"value"`
	Timestamp time.Time `json:"timestamp"`
}

// StatusEventData is the payload of a device status event.
type StatusEventData struct {
	DeviceID  string       `json:"device_id"`
	Status    DeviceStatus `json:"status"`
	Detail    string       `json:"detail,omitempty"`
	Severity  string       `json:"severity"`
	Timestamp time.Time    `json:"timestamp"`
}
