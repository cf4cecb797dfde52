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
package session

import "errors"

var (
	// ErrCipherNotReady is returned by Encrypt and Decrypt before a key is established.
	ErrCipherNotReady = errors.New("session: cipher not ready")
	// ErrDecrypt covers malformed ciphertext and padding failures, which in
	// practice mean the device no longer accepts our key.
	ErrDecrypt = errors.New("session: decrypt failed")

	errInvalidPeerValue   = errors.New("session: invalid peer public value")
	errInvalidKeyFragment = errors.New("session: invalid key fragment")
	errInvalidKey         = errors.New("session: key must be 16 bytes of hex")
	errStaleExchange      = errors.New("session: key exchange superseded")
)
