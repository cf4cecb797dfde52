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
package cloud

import (
	"github.com/carverauto/airpoller/pkg/device"
	"github.com/carverauto/airpoller/pkg/models"
)

// Channel ids.
const (
	ChannelPM25     = "pm25"
	ChannelPM10     = "pm10"
	ChannelRTVOC    = "rtvoc"
	ChannelID       = "id"
	ChannelTS       = "ts"
	ChannelTemp     = "temp"
	ChannelHumidity = "humidity"
)

// Channels is the channel table of a Laser Egg.
var Channels = device.NewChannelTable(
	device.ChannelSpec{ID: ChannelPM25, Field: FieldPM25, Kind: models.ValueDecimal},
	device.ChannelSpec{ID: ChannelPM10, Field: FieldPM10, Kind: models.ValueDecimal},
	device.ChannelSpec{ID: ChannelRTVOC, Field: FieldRTVOC, Kind: models.ValueDecimal},
	device.ChannelSpec{ID: ChannelID, Field: FieldID, Kind: models.ValueString},
	device.ChannelSpec{ID: ChannelTS, Field: FieldTS, Kind: models.ValueString},
	device.ChannelSpec{
		ID: ChannelTemp, Field: FieldTemp, Kind: models.ValueQuantity,
		Unit: models.UnitCelsius, Offset: device.OffsetTemperature,
	},
	device.ChannelSpec{
		ID: ChannelHumidity, Field: FieldHumidity, Kind: models.ValueQuantity,
		Unit: models.UnitPercent, Offset: device.OffsetHumidity,
	},
)
