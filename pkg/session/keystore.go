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
//go:generate mockgen -destination=mock_session.go -package=session github.com/carverauto/airpoller/pkg/session KeyStore

package session

import "context"

// KeyStore persists negotiated keys so a restart can skip the exchange.
type KeyStore interface {
	SaveSessionKey(ctx context.Context, deviceID, keyHex string) error
}

// NopKeyStore keeps keys in memory only.
type NopKeyStore struct{}

func (NopKeyStore) SaveSessionKey(context.Context, string, string) error {
	return nil
}
