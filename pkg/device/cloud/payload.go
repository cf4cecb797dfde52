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
	"encoding/json"
	"strconv"

	"github.com/carverauto/airpoller/pkg/device"
)

// Payload fields.
const (
	FieldID       device.Field = "id"
	FieldTS       device.Field = "ts"
	FieldPM25     device.Field = "pm25"
	FieldPM10     device.Field = "pm10"
	FieldRTVOC    device.Field = "rtvoc"
	FieldTemp     device.Field = "temp"
	FieldHumidity device.Field = "humidity"
)

// LaserEgg is the body returned for one sensor.
type LaserEgg struct {
	ID    string                     `json:"id"`
	Info  *AQIInfo                   `json:"info.aqi,omitempty"`
	Extra map[string]json.RawMessage `json:"-"`
}

// AQIInfo is the latest measurement block.
type AQIInfo struct {
	TS    string                     `json:"ts"`
	Data  *AQIData                   `json:"data,omitempty"`
	Extra map[string]json.RawMessage `json:"-"`
}

// AQIData holds the measurements; absent sensors stay nil.
type AQIData struct {
	Humidity *float64                   `json:"humidity,omitempty"`
	PM10     *float64                   `json:"pm10,omitempty"`
	PM25     *float64                   `json:"pm25,omitempty"`
	RTVOC    *float64                   `json:"rtvoc,omitempty"`
	Temp     *float64                   `json:"temp,omitempty"`
	Extra    map[string]json.RawMessage `json:"-"`
}

func (l *LaserEgg) UnmarshalJSON(b []byte) error {
	type plain LaserEgg

	var p plain

	extra, err := device.UnmarshalWithExtra(b, &p)
	if err != nil {
		return err
	}

	*l = LaserEgg(p)
	l.Extra = extra

	return nil
}

func (l LaserEgg) MarshalJSON() ([]byte, error) {
	type plain LaserEgg

	return device.MarshalWithExtra(plain(l), l.Extra)
}

func (a *AQIInfo) UnmarshalJSON(b []byte) error {
	type plain AQIInfo

	var p plain

	extra, err := device.UnmarshalWithExtra(b, &p)
	if err != nil {
		return err
	}

	*a = AQIInfo(p)
	a.Extra = extra

	return nil
}

func (a AQIInfo) MarshalJSON() ([]byte, error) {
	type plain AQIInfo

	return device.MarshalWithExtra(plain(a), a.Extra)
}

func (d *AQIData) UnmarshalJSON(b []byte) error {
	type plain AQIData

	var p plain

	extra, err := device.UnmarshalWithExtra(b, &p)
	if err != nil {
		return err
	}

	*d = AQIData(p)
	d.Extra = extra

	return nil
}

func (d AQIData) MarshalJSON() ([]byte, error) {
	type plain AQIData

	return device.MarshalWithExtra(plain(d), d.Extra)
}

// DeviceID implements device.Reading.
func (l *LaserEgg) DeviceID() string {
	return l.ID
}

// Number implements device.Reading.
func (l *LaserEgg) Number(f device.Field) (float64, bool) {
	if l.Info == nil || l.Info.Data == nil {
		return 0, false
	}

	d := l.Info.Data

	var v *float64

	switch f {
	case FieldPM25:
		v = d.PM25
	case FieldPM10:
		v = d.PM10
	case FieldRTVOC:
		v = d.RTVOC
	case FieldTemp:
		v = d.Temp
	case FieldHumidity:
		v = d.Humidity
	}

	if v == nil {
		return 0, false
	}

	return *v, true
}

// Text implements device.Reading. Numeric fields are rendered as text too.
func (l *LaserEgg) Text(f device.Field) (string, bool) {
	switch f {
	case FieldID:
		return l.ID, l.ID != ""
	case FieldTS:
		if l.Info == nil || l.Info.TS == "" {
			return "", false
		}

		return l.Info.TS, true
	case FieldPM25, FieldPM10, FieldRTVOC, FieldTemp, FieldHumidity:
		n, ok := l.Number(f)
		if !ok {
			return "", false
		}

		return strconv.FormatFloat(n, 'f', -1, 64), true
	}

	return "", false
}
