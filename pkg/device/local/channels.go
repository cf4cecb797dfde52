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
package local

import (
	"github.com/carverauto/airpoller/pkg/device"
	"github.com/carverauto/airpoller/pkg/models"
)

// Payload fields. They double as channel ids.
const (
	FieldPower            device.Field = "pwr"
	FieldMode             device.Field = "mode"
	FieldFanSpeed         device.Field = "om"
	FieldLightBrightness  device.Field = "aqil"
	FieldButtonsLight     device.Field = "uil"
	FieldDisplayMode      device.Field = "ddp"
	FieldChildLock        device.Field = "cl"
	FieldTimer            device.Field = "dt"
	FieldTimerRemaining   device.Field = "dtrs"
	FieldPM25             device.Field = "pm25"
	FieldAllergenIndex    device.Field = "iaql"
	FieldHumidity         device.Field = "rh"
	FieldHumiditySetpoint device.Field = "rhset"
	FieldTemperature      device.Field = "temp"
	FieldFunction         device.Field = "func"
	FieldWaterLevel       device.Field = "wl"
	FieldErrorCode        device.Field = "err"

	FieldName      device.Field = "name"
	FieldType      device.Field = "type"
	FieldModelID   device.Field = "modelid"
	FieldSWVersion device.Field = "swversion"

	FieldPreFilter      device.Field = "fltsts0"
	FieldHEPAFilter     device.Field = "fltsts1"
	FieldCarbonFilter   device.Field = "fltsts2"
	FieldWick           device.Field = "wicksts"
	FieldHEPAFilterType device.Field = "fltt1"
	FieldCarbonType     device.Field = "fltt2"
)

func text(f device.Field) device.ChannelSpec {
	return device.ChannelSpec{ID: string(f), Field: f, Kind: models.ValueString}
}

func decimal(f device.Field) device.ChannelSpec {
	return device.ChannelSpec{ID: string(f), Field: f, Kind: models.ValueDecimal}
}

func quantity(f device.Field, unit models.Unit, offset device.Offset) device.ChannelSpec {
	return device.ChannelSpec{ID: string(f), Field: f, Kind: models.ValueQuantity, Unit: unit, Offset: offset}
}

// Channels is the channel table of a purifier.
var Channels = device.NewChannelTable(
	text(FieldPower),
	text(FieldMode),
	text(FieldFanSpeed),
	decimal(FieldLightBrightness),
	text(FieldButtonsLight),
	text(FieldDisplayMode),
	text(FieldChildLock),
	quantity(FieldTimer, models.UnitHour, device.OffsetNone),
	decimal(FieldTimerRemaining),
	quantity(FieldPM25, models.UnitMicrogramsPerCubicMeter, device.OffsetNone),
	decimal(FieldAllergenIndex),
	quantity(FieldHumidity, models.UnitPercent, device.OffsetHumidity),
	quantity(FieldHumiditySetpoint, models.UnitPercent, device.OffsetNone),
	quantity(FieldTemperature, models.UnitCelsius, device.OffsetTemperature),
	text(FieldFunction),
	decimal(FieldWaterLevel),
	decimal(FieldErrorCode),

	text(FieldName),
	text(FieldType),
	text(FieldModelID),
	text(FieldSWVersion),

	quantity(FieldPreFilter, models.UnitHour, device.OffsetNone),
	quantity(FieldHEPAFilter, models.UnitHour, device.OffsetNone),
	quantity(FieldCarbonFilter, models.UnitHour, device.OffsetNone),
	quantity(FieldWick, models.UnitHour, device.OffsetNone),
	text(FieldHEPAFilterType),
	text(FieldCarbonType),
)
