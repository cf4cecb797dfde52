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

package config

import (
	"encoding/json"
	"reflect"
	"strings"
)

const redacted = "[redacted]"

// Redact marshals cfg with every non-empty field tagged `sensitive:"true"`
// replaced, so configuration can be logged or served.
func Redact(cfg interface{}) ([]byte, error) {
	if cfg == nil {
		return []byte("null"), nil
	}

	raw, err := json.Marshal(cfg)
	if err != nil {
		return nil, err
	}

	var doc interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}

	redactValue(reflect.TypeOf(cfg), doc)

	return json.Marshal(doc)
}

func redactValue(t reflect.Type, doc interface{}) {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	switch t.Kind() {
	case reflect.Struct:
		obj, ok := doc.(map[string]interface{})
		if !ok {
			return
		}

		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)

			name := jsonName(f)
			if name == "" {
				continue
			}

			v, present := obj[name]
			if !present {
				continue
			}

			if f.Tag.Get("sensitive") == "true" {
				if s, isString := v.(string); !isString || s != "" {
					obj[name] = redacted
				}

				continue
			}

			redactValue(f.Type, v)
		}
	case reflect.Slice, reflect.Array:
		if arr, ok := doc.([]interface{}); ok {
			for _, el := range arr {
				redactValue(t.Elem(), el)
			}
		}
	case reflect.Map:
		if m, ok := doc.(map[string]interface{}); ok {
			for _, el := range m {
				redactValue(t.Elem(), el)
			}
		}
	default:
	}
}

func jsonName(f reflect.StructField) string {
	if !f.IsExported() {
		return ""
	}

	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")

	switch name {
	case "-":
		return ""
	case "":
		return f.Name
	default:
		return name
	}
}
