// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package security_test

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/go-a2a/ledger/security"
)

func digest() security.TransactionDigest {
	return security.TransactionDigest{
		TransactionID: "tx-1",
		FromAgentID:   "agent-1",
		ToAgentID:     "agent-2",
		Amount:        decimal.NewFromInt(100),
		Currency:      "USD",
	}
}

func TestSigner_RoundTrip(t *testing.T) {
	t.Parallel()

	signer, err := security.GenerateSigner("key-1")
	if err != nil {
		t.Fatalf("GenerateSigner: %v", err)
	}

	signature, err := signer.SignDigest(digest())
	if err != nil {
		t.Fatalf("SignDigest: %v", err)
	}
	if err := signer.VerifyDigest(digest(), signature); err != nil {
		t.Errorf("VerifyDigest: %v", err)
	}
}

func TestSigner_RejectsTamperedDigest(t *testing.T) {
	t.Parallel()

	signer, err := security.GenerateSigner("key-1")
	if err != nil {
		t.Fatalf("GenerateSigner: %v", err)
	}
	signature, err := signer.SignDigest(digest())
	if err != nil {
		t.Fatalf("SignDigest: %v", err)
	}

	tampered := digest()
	tampered.Amount = decimal.NewFromInt(10000)
	if err := signer.VerifyDigest(tampered, signature); err == nil {
		t.Error("VerifyDigest of tampered digest succeeded, want error")
	}
}

func TestSigner_RejectsForeignSignature(t *testing.T) {
	t.Parallel()

	signer, err := security.GenerateSigner("key-1")
	if err != nil {
		t.Fatalf("GenerateSigner: %v", err)
	}
	other, err := security.GenerateSigner("key-2")
	if err != nil {
		t.Fatalf("GenerateSigner: %v", err)
	}
	signature, err := other.SignDigest(digest())
	if err != nil {
		t.Fatalf("SignDigest: %v", err)
	}
	if err := signer.VerifyDigest(digest(), signature); err == nil {
		t.Error("VerifyDigest with foreign key succeeded, want error")
	}
}

func TestSigner_SignTransaction(t *testing.T) {
	t.Parallel()

	signer, err := security.GenerateSigner("key-1")
	if err != nil {
		t.Fatalf("GenerateSigner: %v", err)
	}
	sec, err := security.Initialize("sec-1", "tx-1", "agent-1", security.LevelStandard, testClock)
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if err := signer.SignTransaction(sec, "agent-1", digest()); err != nil {
		t.Fatalf("SignTransaction: %v", err)
	}

	signatures := sec.Signatures()
	if len(signatures) != 1 {
		t.Fatalf("len(Signatures) = %d, want 1", len(signatures))
	}
	if got, want := signatures[0].Algorithm, signer.Algorithm(); got != want {
		t.Errorf("Algorithm = %q, want %q", got, want)
	}
	if err := signer.VerifyDigest(digest(), signatures[0].Signature); err != nil {
		t.Errorf("VerifyDigest: %v", err)
	}
}
