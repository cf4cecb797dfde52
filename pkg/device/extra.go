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
	"encoding/json"
	"reflect"
	"strings"
)

// UnmarshalWithExtra decodes b into dst, a pointer to a struct, and returns the
// members of the JSON object that none of dst's fields claim. Vendors add fields
// between firmware releases; they are kept instead of rejected.
func UnmarshalWithExtra(b []byte, dst interface{}) (map[string]json.RawMessage, error) {
	if err := json.Unmarshal(b, dst); err != nil {
		return nil, err
	}

	var all map[string]json.RawMessage
	if err := json.Unmarshal(b, &all); err != nil {
		return nil, err
	}

	known := jsonFieldNames(reflect.TypeOf(dst))

	var extra map[string]json.RawMessage

	for key, raw := range all {
		if known[strings.ToLower(key)] {
			continue
		}

		if extra == nil {
			extra = make(map[string]json.RawMessage)
		}

		extra[key] = raw
	}

	return extra, nil
}

// MarshalWithExtra encodes v and merges extra back in; declared fields win.
func MarshalWithExtra(v interface{}, extra map[string]json.RawMessage) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil || len(extra) == 0 {
		return b, err
	}

	var merged map[string]json.RawMessage
	if err := json.Unmarshal(b, &merged); err != nil {
		return nil, err
	}

	for key, raw := range extra {
		if _, ok := merged[key]; !ok {
			merged[key] = raw
		}
	}

	return json.Marshal(merged)
}

func jsonFieldNames(t reflect.Type) map[string]bool {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	names := make(map[string]bool)

	if t.Kind() != reflect.Struct {
		return names
	}

	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}

		name := f.Name

		if tag, ok := f.Tag.Lookup("json"); ok {
			tagName, _, _ := strings.Cut(tag, ",")
			if tagName == "-" {
				continue
			}

			if tagName != "" {
				name = tagName
			}
		}

		names[strings.ToLower(name)] = true
	}

	return names
}
