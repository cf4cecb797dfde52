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
	"encoding/json"
	"fmt"
	"strconv"
)

// ValueKind discriminates the variants of Value.
type ValueKind int

const (
	ValueUndefined ValueKind = iota
	ValueQuantity
	ValueDecimal
	ValueString
)

func (k ValueKind) String() string {
	switch k {
	case ValueQuantity:
		return "quantity"
	case ValueDecimal:
		return "decimal"
	case ValueString:
		return "string"
	default:
		return "undefined"
	}
}

func (k ValueKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *ValueKind) UnmarshalText(b []byte) error {
	switch string(b) {
	case "quantity":
		*k = ValueQuantity
	case "decimal":
		*k = ValueDecimal
	case "string":
		*k = ValueString
	case "undefined":
		*k = ValueUndefined
	default:
		return fmt.Errorf("%w: %q", errInvalidValueKind, b)
	}

	return nil
}

// Unit is the unit of measurement attached to a quantity.
type Unit string

const (
	UnitNone                    Unit = ""
	UnitCelsius                 Unit = "°C"
	UnitPercent                 Unit = "%"
	UnitMicrogramsPerCubicMeter Unit = "µg/m³"
	UnitPartsPerBillion         Unit = "ppb"
	UnitHour                    Unit = "h"
)

// Value is one channel update: a quantity with unit, a plain decimal, a string
// or undefined when the device did not report the field.
type Value struct {
	Kind   ValueKind `json:"kind"`
	Number float64   `json:"number,omitempty"`
	Unit   Unit      `json:"unit,omitempty"`
	Text   string    `json:"text,omitempty"`
}

func Quantity(n float64, unit Unit) Value {
	return Value{Kind: ValueQuantity, Number: n, Unit: unit}
}

func Decimal(n float64) Value {
	return Value{Kind: ValueDecimal, Number: n}
}

func String(s string) Value {
	return Value{Kind: ValueString, Text: s}
}

func Undefined() Value {
	return Value{Kind: ValueUndefined}
}

func (v Value) IsDefined() bool {
	return v.Kind != ValueUndefined
}

func (v Value) String() string {
	switch v.Kind {
	case ValueQuantity:
		return strconv.FormatFloat(v.Number, 'f', -1, 64) + " " + string(v.Unit)
	case ValueDecimal:
		return strconv.FormatFloat(v.Number, 'f', -1, 64)
	case ValueString:
		return v.Text
	default:
		return "UNDEF"
	}
}

// MarshalJSON keeps zero numbers on defined numeric values.
func (v Value) MarshalJSON() ([]byte, error) {
	type wire struct {
		Kind   ValueKind `json:"kind"`
		Number *float64  `json:"number,omitempty"`
		Unit   Unit      `json:"unit,omitempty"`
		Text   string    `json:"text,omitempty"`
	}

	w := wire{Kind: v.Kind, Unit: v.Unit, Text: v.Text}
	if v.Kind == ValueQuantity || v.Kind == ValueDecimal {
		n := v.Number
		w.Number = &n
	}

	return json.Marshal(w)
}
