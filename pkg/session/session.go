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
// Package session implements the key agreement and payload encryption spoken by
// local purifiers: an ephemeral Diffie-Hellman exchange yields an AES-128 key that
// wraps every JSON body as base64(AES-CBC(prefix || json)).
package session

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"
	"math/big"
	"strings"
	"sync"
)

// State is the lifecycle of a Session.
type State int

const (
	StateUninitialized State = iota
	StateKeyExchange
	StateEstablished
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateKeyExchange:
		return "key_exchange"
	case StateEstablished:
		return "established"
	default:
		return "unknown"
	}
}

// Exchange is one in-progress key agreement. Public is sent to the device.
type Exchange struct {
	Public  string
	private *big.Int
}

// Session holds the cryptographic state for one device. It is reset in place on
// re-keying so holders keep a stable handle. Methods never perform I/O.
type Session struct {
	mu      sync.Mutex
	state   State
	pending *Exchange
	peer    *big.Int
	key     []byte
	rand    io.Reader
}

func New() *Session {
	return &Session{rand: rand.Reader}
}

// NewWithRand uses r for exponents and prefixes.
func NewWithRand(r io.Reader) *Session {
	return &Session{rand: r}
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state
}

// Established reports whether Encrypt and Decrypt can be used.
func (s *Session) Established() bool {
	return s.State() == StateEstablished
}

// Begin discards any current key and starts a new exchange.
func (s *Session) Begin() (*Exchange, error) {
	limit := new(big.Int).Lsh(big.NewInt(1), exponentBits)

	a, err := rand.Int(s.rand, limit)
	if err != nil {
		return nil, fmt.Errorf("session: generate exponent: %w", err)
	}

	// a == 0 would make the public value 1
	a.Add(a, big.NewInt(1))

	ex := &Exchange{
		Public:  new(big.Int).Exp(groupG, a, groupP).Text(16),
		private: a,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = StateKeyExchange
	s.pending = ex
	s.peer = nil
	s.key = nil

	return ex, nil
}

// Complete derives the session key from the device's answer to ex and returns it
// as hex so it can be persisted and later passed to Load.
func (s *Session) Complete(ex *Exchange, hellmanHex, keyFragmentHex string) (string, error) {
	if ex == nil {
		return "", errStaleExchange
	}

	peer, ok := new(big.Int).SetString(strings.TrimSpace(hellmanHex), 16)
	if !ok || peer.Cmp(big.NewInt(1)) <= 0 || peer.Cmp(new(big.Int).Sub(groupP, big.NewInt(1))) >= 0 {
		return "", errInvalidPeerValue
	}

	fragment, err := hex.DecodeString(strings.TrimSpace(keyFragmentHex))
	if err != nil || len(fragment) == 0 || len(fragment)%blockSize != 0 {
		return "", errInvalidKeyFragment
	}

	shared := new(big.Int).Exp(peer, ex.private, groupP)
	secret := shared.FillBytes(make([]byte, groupBytes))[:keyLength]

	plain, err := cbcDecrypt(secret, fragment)
	if err != nil {
		return "", fmt.Errorf("%w: %w", errInvalidKeyFragment, err)
	}

	key := plain[:keyLength]

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending != ex {
		return "", errStaleExchange
	}

	s.pending = nil
	s.peer = peer
	s.key = key
	s.state = StateEstablished

	return hex.EncodeToString(key), nil
}

// Load installs a previously negotiated or pre-shared key.
func (s *Session) Load(keyHex string) error {
	key, err := hex.DecodeString(strings.TrimSpace(keyHex))
	if err != nil || len(key) != keyLength {
		return errInvalidKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pending = nil
	s.peer = nil
	s.key = key
	s.state = StateEstablished

	return nil
}

// Reset forgets the key; the next use needs Load or a fresh exchange.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = StateUninitialized
	s.pending = nil
	s.peer = nil
	s.key = nil
}

func (s *Session) currentKey() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateEstablished {
		return nil
	}

	return s.key
}

// Encrypt wraps plaintext for the device. Every call draws a fresh random prefix
// block, so equal plaintexts produce different ciphertexts.
func (s *Session) Encrypt(plaintext []byte) (string, error) {
	key := s.currentKey()
	if key == nil {
		return "", ErrCipherNotReady
	}

	data := make([]byte, prefixLength, prefixLength+len(plaintext))
	if _, err := io.ReadFull(s.rand, data); err != nil {
		return "", fmt.Errorf("session: generate prefix: %w", err)
	}

	data = append(data, plaintext...)

	out, err := cbcEncrypt(key, pkcs7Pad(data))
	if err != nil {
		return "", err
	}

	return base64.StdEncoding.EncodeToString(out), nil
}

// Decrypt reverses Encrypt. Any failure wraps ErrDecrypt.
func (s *Session) Decrypt(ciphertext string) ([]byte, error) {
	key := s.currentKey()
	if key == nil {
		return nil, ErrCipherNotReady
	}

	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(ciphertext))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecrypt, err)
	}

	if len(raw) == 0 || len(raw)%blockSize != 0 {
		return nil, fmt.Errorf("%w: ciphertext length %d", ErrDecrypt, len(raw))
	}

	plain, err := cbcDecrypt(key, raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecrypt, err)
	}

	plain, ok := pkcs7Unpad(plain)
	if !ok || len(plain) < prefixLength {
		return nil, fmt.Errorf("%w: bad padding", ErrDecrypt)
	}

	return plain[prefixLength:], nil
}

func cbcEncrypt(key, data []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("session: create cipher: %w", err)
	}

	out := make([]byte, len(data))
	cipher.NewCBCEncrypter(block, make([]byte, blockSize)).CryptBlocks(out, data)

	return out, nil
}

func cbcDecrypt(key, data []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("session: create cipher: %w", err)
	}

	out := make([]byte, len(data))
	cipher.NewCBCDecrypter(block, make([]byte, blockSize)).CryptBlocks(out, data)

	return out, nil
}

func pkcs7Pad(data []byte) []byte {
	n := blockSize - len(data)%blockSize

	return append(data, bytes.Repeat([]byte{byte(n)}, n)...)
}

func pkcs7Unpad(data []byte) ([]byte, bool) {
	if len(data) == 0 {
		return nil, false
	}

	n := int(data[len(data)-1])
	if n == 0 || n > blockSize || n > len(data) {
		return nil, false
	}

	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, false
		}
	}

	return data[:len(data)-n], true
}
