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
package device

import (
	"sort"

	"github.com/carverauto/airpoller/pkg/models"
)

// Offset says which calibration offset, if any, applies to a channel.
type Offset int

const (
	OffsetNone Offset = iota
	OffsetTemperature
	OffsetHumidity
)

// Offsets are the per-device calibration corrections.
type Offsets struct {
	Temperature float64
	Humidity    float64
}

func (o Offsets) value(kind Offset) float64 {
	switch kind {
	case OffsetTemperature:
		return o.Temperature
	case OffsetHumidity:
		return o.Humidity
	default:
		return 0
	}
}

// ChannelSpec maps one payload field to one output channel.
type ChannelSpec struct {
	ID     string
	Field  Field
	Kind   models.ValueKind
	Unit   models.Unit
	Offset Offset
}

// Extract computes the channel value from r. Missing fields yield Undefined.
func (s ChannelSpec) Extract(r Reading, offsets Offsets) models.Value {
	if r == nil {
		return models.Undefined()
	}

	switch s.Kind {
	case models.ValueQuantity, models.ValueDecimal:
		n, ok := r.Number(s.Field)
		if !ok {
			return models.Undefined()
		}

		n += offsets.value(s.Offset)

		if s.Kind == models.ValueQuantity {
			return models.Quantity(n, s.Unit)
		}

		return models.Decimal(n)
	case models.ValueString:
		text, ok := r.Text(s.Field)
		if !ok {
			return models.Undefined()
		}

		return models.String(text)
	default:
		return models.Undefined()
	}
}

// ChannelTable indexes the channels of one device kind by id.
type ChannelTable map[string]ChannelSpec

// NewChannelTable builds a table from specs.
func NewChannelTable(specs ...ChannelSpec) ChannelTable {
	t := make(ChannelTable, len(specs))
	for _, s := range specs {
		t[s.ID] = s
	}

	return t
}

// Lookup returns the spec for id.
func (t ChannelTable) Lookup(id string) (ChannelSpec, bool) {
	s, ok := t[id]
	return s, ok
}

// IDs lists every channel id in sorted order.
func (t ChannelTable) IDs() []string {
	ids := make([]string, 0, len(t))
	for id := range t {
		ids = append(ids, id)
	}

	sort.Strings(ids)

	return ids
}

// Resolve picks the specs for ids. An empty ids selects the whole table. Unknown
// ids are returned separately so the caller can report them; they are not errors.
func (t ChannelTable) Resolve(ids []string) (specs []ChannelSpec, unknown []string) {
	if len(ids) == 0 {
		ids = t.IDs()
	}

	seen := make(map[string]struct{}, len(ids))

	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}

		seen[id] = struct{}{}

		spec, ok := t[id]
		if !ok {
			unknown = append(unknown, id)
			continue
		}

		specs = append(specs, spec)
	}

	return specs, unknown
}
