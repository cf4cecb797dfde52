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
// Package sessiontest simulates the device side of the session protocol.
package sessiontest

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
	"sync"

	"github.com/carverauto/airpoller/pkg/session"
)

// Peer plays the purifier: it answers key exchanges and speaks the payload format.
type Peer struct {
	mu      sync.Mutex
	key     []byte
	session *session.Session
}

// NewPeer creates a device with a random session key.
func NewPeer() *Peer {
	p := &Peer{}
	p.Rotate()

	return p
}

// Rotate replaces the device key, as a reboot would.
func (p *Peer) Rotate() {
	key := make([]byte, 16)
	if _, err := rand.Read(key); err != nil {
		panic(err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.key = key
	p.session = session.New()

	if err := p.session.Load(hex.EncodeToString(key)); err != nil {
		panic(err)
	}
}

// KeyHex is the key the device currently uses.
func (p *Peer) KeyHex() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	return hex.EncodeToString(p.key)
}

// Answer responds to a client public value with (hellman, key) as the device would.
func (p *Peer) Answer(publicHex string) (hellman, keyFragment string, err error) {
	modulus, generator := session.Group()

	clientPublic, ok := new(big.Int).SetString(publicHex, 16)
	if !ok {
		return "", "", fmt.Errorf("bad public value %q", publicHex)
	}

	b, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 256))
	if err != nil {
		return "", "", err
	}

	b.Add(b, big.NewInt(1))

	devicePublic := new(big.Int).Exp(generator, b, modulus)
	shared := new(big.Int).Exp(clientPublic, b, modulus)
	secret := shared.FillBytes(make([]byte, 128))[:16]

	block, err := aes.NewCipher(secret)
	if err != nil {
		return "", "", err
	}

	p.mu.Lock()
	key := append([]byte(nil), p.key...)
	p.mu.Unlock()

	fragment := make([]byte, len(key))
	cipher.NewCBCEncrypter(block, make([]byte, 16)).CryptBlocks(fragment, key)

	return devicePublic.Text(16), hex.EncodeToString(fragment), nil
}

// Seal encrypts a device response.
func (p *Peer) Seal(plaintext []byte) (string, error) {
	p.mu.Lock()
	s := p.session
	p.mu.Unlock()

	return s.Encrypt(plaintext)
}

// Open decrypts a request sent to the device.
func (p *Peer) Open(ciphertext string) ([]byte, error) {
	p.mu.Lock()
	s := p.session
	p.mu.Unlock()

	return s.Decrypt(ciphertext)
}
