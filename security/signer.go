// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package security

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"github.com/go-json-experiment/json"
	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/lestrrat-go/jwx/v3/jws"
	"github.com/shopspring/decimal"
)

// TransactionDigest is the canonical payload agents sign. Field order is
// fixed by the struct so two signers of the same transaction produce the
// same bytes.
type TransactionDigest struct {
	TransactionID string          `json:"transactionId"`
	FromAgentID   string          `json:"fromAgentId"`
	ToAgentID     string          `json:"toAgentId"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
}

// Signer produces and verifies JWS signatures over transaction digests
// with an ES256 key pair.
type Signer struct {
	keyID      string
	privateKey jwk.Key
	publicKey  jwk.Key
}

// NewSigner wraps an existing ECDSA P-256 private key.
func NewSigner(keyID string, key *ecdsa.PrivateKey) (*Signer, error) {
	if keyID == "" {
		return nil, fmt.Errorf("key ID cannot be empty")
	}
	if key == nil {
		return nil, fmt.Errorf("private key cannot be nil")
	}
	privateKey, err := jwk.Import(key)
	if err != nil {
		return nil, fmt.Errorf("import private key: %w", err)
	}
	if err := privateKey.Set(jwk.KeyIDKey, keyID); err != nil {
		return nil, fmt.Errorf("set key ID: %w", err)
	}
	publicKey, err := jwk.PublicKeyOf(privateKey)
	if err != nil {
		return nil, fmt.Errorf("derive public key: %w", err)
	}
	return &Signer{
		keyID:      keyID,
		privateKey: privateKey,
		publicKey:  publicKey,
	}, nil
}

// GenerateSigner creates a signer with a fresh ECDSA P-256 key pair.
func GenerateSigner(keyID string) (*Signer, error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate key pair: %w", err)
	}
	return NewSigner(keyID, key)
}

// KeyID returns the signer's key id.
func (s *Signer) KeyID() string { return s.keyID }

// Algorithm returns the JWS algorithm name.
func (s *Signer) Algorithm() string { return jwa.ES256().String() }

// PublicKey returns the verification key.
func (s *Signer) PublicKey() jwk.Key { return s.publicKey }

// SignDigest signs the canonical transaction digest and returns the
// compact JWS serialization, base64url-encoded for event payloads.
func (s *Signer) SignDigest(digest TransactionDigest) (string, error) {
	payload, err := json.Marshal(digest)
	if err != nil {
		return "", fmt.Errorf("marshal digest: %w", err)
	}
	signed, err := jws.Sign(payload, jws.WithKey(jwa.ES256(), s.privateKey))
	if err != nil {
		return "", fmt.Errorf("sign digest: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(signed), nil
}

// VerifyDigest checks a signature produced by SignDigest against the
// expected digest. It returns nil only if the signature verifies and the
// signed payload matches the digest.
func (s *Signer) VerifyDigest(digest TransactionDigest, signature string) error {
	signed, err := base64.RawURLEncoding.DecodeString(signature)
	if err != nil {
		return fmt.Errorf("decode signature: %w", err)
	}
	payload, err := jws.Verify(signed, jws.WithKey(jwa.ES256(), s.publicKey))
	if err != nil {
		return fmt.Errorf("verify signature: %w", err)
	}
	expected, err := json.Marshal(digest)
	if err != nil {
		return fmt.Errorf("marshal digest: %w", err)
	}
	if string(payload) != string(expected) {
		return fmt.Errorf("signed payload does not match transaction digest")
	}
	return nil
}

// SignTransaction signs the digest and records the signature on the
// security aggregate in one step.
func (s *Signer) SignTransaction(sec *Security, signedBy string, digest TransactionDigest) error {
	signature, err := s.SignDigest(digest)
	if err != nil {
		return err
	}
	return sec.Sign(signedBy, s.keyID, s.Algorithm(), signature)
}
