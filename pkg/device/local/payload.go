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
	"encoding/json"
	"encoding/xml"
	"strconv"

	"github.com/carverauto/airpoller/pkg/device"
)

// Status is the live state of the purifier.
type Status struct {
	Power            string                     `json:"pwr,omitempty"`
	Mode             string                     `json:"mode,omitempty"`
	FanSpeed         string                     `json:"om,omitempty"`
	LightBrightness  *int                       `json:"aqil,omitempty"`
	ButtonsLight     string                     `json:"uil,omitempty"`
	DisplayMode      string                     `json:"ddp,omitempty"`
	ChildLock        *bool                      `json:"cl,omitempty"`
	Timer            *int                       `json:"dt,omitempty"`
	TimerRemaining   *int                       `json:"dtrs,omitempty"`
	PM25             *int                       `json:"pm25,omitempty"`
	AllergenIndex    *int                       `json:"iaql,omitempty"`
	Humidity         *int                       `json:"rh,omitempty"`
	HumiditySetpoint *int                       `json:"rhset,omitempty"`
	Temperature      *int                       `json:"temp,omitempty"`
	Function         string                     `json:"func,omitempty"`
	WaterLevel       *int                       `json:"wl,omitempty"`
	ErrorCode        *int                       `json:"err,omitempty"`
	Extra            map[string]json.RawMessage `json:"-"`
}

// DeviceInfo identifies the purifier.
type DeviceInfo struct {
	Name      string                     `json:"name"`
	Type      string                     `json:"type"`
	ModelID   string                     `json:"modelid"`
	SWVersion string                     `json:"swversion"`
	Extra     map[string]json.RawMessage `json:"-"`
}

// Filters reports remaining filter lifetimes in hours and the installed filter types.
type Filters struct {
	PreFilter      *int                       `json:"fltsts0,omitempty"`
	HEPAFilter     *int                       `json:"fltsts1,omitempty"`
	CarbonFilter   *int                       `json:"fltsts2,omitempty"`
	Wick           *int                       `json:"wicksts,omitempty"`
	HEPAFilterType string                     `json:"fltt1,omitempty"`
	CarbonType     string                     `json:"fltt2,omitempty"`
	Extra          map[string]json.RawMessage `json:"-"`
}

// Firmware is the firmware and upgrade state.
type Firmware struct {
	Name      string                     `json:"name"`
	Version   string                     `json:"version"`
	Upgrade   string                     `json:"upgrade"`
	State     string                     `json:"state"`
	Progress  int                        `json:"progress"`
	StatusMsg string                     `json:"statusmsg"`
	Mandatory bool                       `json:"mandatory"`
	Extra     map[string]json.RawMessage `json:"-"`
}

// UserInfo is the user-assigned naming of the device.
type UserInfo struct {
	Name  string                     `json:"name"`
	Extra map[string]json.RawMessage `json:"-"`
}

// Command is a state change. Unset fields are left alone by the device.
type Command struct {
	Power            string `json:"pwr,omitempty"`
	Mode             string `json:"mode,omitempty"`
	FanSpeed         string `json:"om,omitempty"`
	LightBrightness  *int   `json:"aqil,omitempty"`
	ButtonsLight     string `json:"uil,omitempty"`
	DisplayMode      string `json:"ddp,omitempty"`
	ChildLock        *bool  `json:"cl,omitempty"`
	Timer            *int   `json:"dt,omitempty"`
	HumiditySetpoint *int   `json:"rhset,omitempty"`
	Function         string `json:"func,omitempty"`
}

// Description is the UPnP root device description.
type Description struct {
	XMLName      xml.Name `xml:"root" json:"-"`
	DeviceType   string   `xml:"device>deviceType" json:"device_type"`
	FriendlyName string   `xml:"device>friendlyName" json:"friendly_name"`
	Manufacturer string   `xml:"device>manufacturer" json:"manufacturer"`
	ModelName    string   `xml:"device>modelName" json:"model_name"`
	ModelNumber  string   `xml:"device>modelNumber" json:"model_number"`
	UDN          string   `xml:"device>UDN" json:"udn"`
}

type securityRequest struct {
	Diffie string `json:"diffie"`
}

type securityResponse struct {
	Key     string `json:"key"`
	Hellman string `json:"hellman"`
}

func (s *Status) UnmarshalJSON(b []byte) error {
	type plain Status

	var p plain

	extra, err := device.UnmarshalWithExtra(b, &p)
	if err != nil {
		return err
	}

	*s = Status(p)
	s.Extra = extra

	return nil
}

func (s Status) MarshalJSON() ([]byte, error) {
	type plain Status

	return device.MarshalWithExtra(plain(s), s.Extra)
}

func (d *DeviceInfo) UnmarshalJSON(b []byte) error {
	type plain DeviceInfo

	var p plain

	extra, err := device.UnmarshalWithExtra(b, &p)
	if err != nil {
		return err
	}

	*d = DeviceInfo(p)
	d.Extra = extra

	return nil
}

func (d DeviceInfo) MarshalJSON() ([]byte, error) {
	type plain DeviceInfo

	return device.MarshalWithExtra(plain(d), d.Extra)
}

func (f *Filters) UnmarshalJSON(b []byte) error {
	type plain Filters

	var p plain

	extra, err := device.UnmarshalWithExtra(b, &p)
	if err != nil {
		return err
	}

	*f = Filters(p)
	f.Extra = extra

	return nil
}

func (f Filters) MarshalJSON() ([]byte, error) {
	type plain Filters

	return device.MarshalWithExtra(plain(f), f.Extra)
}

func (f *Firmware) UnmarshalJSON(b []byte) error {
	type plain Firmware

	var p plain

	extra, err := device.UnmarshalWithExtra(b, &p)
	if err != nil {
		return err
	}

	*f = Firmware(p)
	f.Extra = extra

	return nil
}

func (u *UserInfo) UnmarshalJSON(b []byte) error {
	type plain UserInfo

	var p plain

	extra, err := device.UnmarshalWithExtra(b, &p)
	if err != nil {
		return err
	}

	*u = UserInfo(p)
	u.Extra = extra

	return nil
}

// Reading combines the payloads polled each cycle.
type Reading struct {
	Status  *Status     `json:"status"`
	Device  *DeviceInfo `json:"device"`
	Filters *Filters    `json:"filters,omitempty"`
}

var _ device.Reading = (*Reading)(nil)

// DeviceID is the configured device name, or the model id when unnamed.
func (r *Reading) DeviceID() string {
	if r.Device == nil {
		return ""
	}

	if r.Device.Name != "" {
		return r.Device.Name
	}

	return r.Device.ModelID
}

func (r *Reading) Number(f device.Field) (float64, bool) {
	var v *int

	switch f {
	case FieldLightBrightness:
		v = r.status().LightBrightness
	case FieldTimer:
		v = r.status().Timer
	case FieldTimerRemaining:
		v = r.status().TimerRemaining
	case FieldPM25:
		v = r.status().PM25
	case FieldAllergenIndex:
		v = r.status().AllergenIndex
	case FieldHumidity:
		v = r.status().Humidity
	case FieldHumiditySetpoint:
		v = r.status().HumiditySetpoint
	case FieldTemperature:
		v = r.status().Temperature
	case FieldWaterLevel:
		v = r.status().WaterLevel
	case FieldErrorCode:
		v = r.status().ErrorCode
	case FieldPreFilter:
		v = r.filters().PreFilter
	case FieldHEPAFilter:
		v = r.filters().HEPAFilter
	case FieldCarbonFilter:
		v = r.filters().CarbonFilter
	case FieldWick:
		v = r.filters().Wick
	}

	if v == nil {
		return 0, false
	}

	return float64(*v), true
}

func (r *Reading) Text(f device.Field) (string, bool) {
	var s string

	switch f {
	case FieldPower:
		s = r.status().Power
	case FieldMode:
		s = r.status().Mode
	case FieldFanSpeed:
		s = r.status().FanSpeed
	case FieldButtonsLight:
		s = r.status().ButtonsLight
	case FieldDisplayMode:
		s = r.status().DisplayMode
	case FieldFunction:
		s = r.status().Function
	case FieldChildLock:
		if cl := r.status().ChildLock; cl != nil {
			s = strconv.FormatBool(*cl)
		}
	case FieldName:
		s = r.device().Name
	case FieldType:
		s = r.device().Type
	case FieldModelID:
		s = r.device().ModelID
	case FieldSWVersion:
		s = r.device().SWVersion
	case FieldHEPAFilterType:
		s = r.filters().HEPAFilterType
	case FieldCarbonType:
		s = r.filters().CarbonType
	default:
		n, ok := r.Number(f)
		if !ok {
			return "", false
		}

		return strconv.FormatFloat(n, 'f', -1, 64), true
	}

	return s, s != ""
}

func (r *Reading) status() *Status {
	if r.Status == nil {
		return &Status{}
	}

	return r.Status
}

func (r *Reading) device() *DeviceInfo {
	if r.Device == nil {
		return &DeviceInfo{}
	}

	return r.Device
}

func (r *Reading) filters() *Filters {
	if r.Filters == nil {
		return &Filters{}
	}

	return r.Filters
}
