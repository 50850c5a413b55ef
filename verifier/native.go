// Copyright (C) 2024-2026, Hyle Labs. All rights reserved.
// See the file LICENSE for licensing terms.

package verifier

import (
	"bytes"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/fxamacker/cbor/v2"
	"github.com/luxfi/crypto/bls"
	"golang.org/x/crypto/sha3"

	"github.com/hyle-network/hyle-node/types"
)

// NativeVerifier enumerates the built-in (non-zk) blob verifiers.
type NativeVerifier int

const (
	NativeBlst NativeVerifier = iota
	NativeSha3_256
	NativeSecp256k1
)

// NativeVerifierName maps a contract's verifier string to its
// NativeVerifier constant, mirroring the reserved contract names "blst",
// "sha3_256" and "secp256k1" created at genesis.
func NativeVerifierName(name string) (NativeVerifier, bool) {
	switch name {
	case "blst":
		return NativeBlst, true
	case "sha3_256":
		return NativeSha3_256, true
	case "secp256k1":
		return NativeSecp256k1, true
	default:
		return 0, false
	}
}

type blstSignatureBlob struct {
	Identity  types.Identity `cbor:"identity"`
	Data      []byte         `cbor:"data"`
	Signature []byte         `cbor:"signature"`
	PublicKey []byte         `cbor:"public_key"`
}

type shaBlob struct {
	Identity types.Identity `cbor:"identity"`
	Data     []byte         `cbor:"data"`
	Sha      []byte         `cbor:"sha"`
}

type secp256k1Blob struct {
	Identity  types.Identity `cbor:"identity"`
	Data      []byte         `cbor:"data"`
	Signature []byte         `cbor:"signature"`
	PublicKey []byte         `cbor:"public_key"`
}

// VerifyNative checks the blob at blobIndex against one of the three
// built-in verifiers. It never returns an error: any decode or signature
// failure collapses into a HyleOutput with Success=false and a default
// identity, so downstream consensus observes the failure rather than a
// missing output.
func VerifyNative(txHash types.TxHash, blobIndex int, allBlobs []types.Blob, v NativeVerifier) types.HyleOutput {
	blob := allBlobs[blobIndex]

	identity, success := verifyNativeImpl(blob, v)
	if !success {
		// A failed output must carry the default identity, not the one the
		// (unverified) blob claims — the blob hasn't proven it speaks for
		// that identity.
		identity = ""
	}

	return types.HyleOutput{
		Version:      1,
		InitialState: nil,
		NextState:    nil,
		Identity:     identity,
		BlobIndex:    blobIndex,
		Blobs:        allBlobs,
		Success:      success,
		TxHash:       txHash,
	}
}

func verifyNativeImpl(blob types.Blob, v NativeVerifier) (types.Identity, bool) {
	switch v {
	case NativeBlst:
		return verifyBlst(blob)
	case NativeSha3_256:
		return verifySha3(blob)
	case NativeSecp256k1:
		return verifySecp256k1(blob)
	default:
		return "", false
	}
}

func verifyBlst(blob types.Blob) (types.Identity, bool) {
	var b blstSignatureBlob
	if err := cbor.Unmarshal(blob.Data, &b); err != nil {
		return "", false
	}

	pub, err := bls.PublicKeyFromCompressedBytes(b.PublicKey)
	if err != nil {
		return b.Identity, false
	}
	sig, err := bls.SignatureFromBytes(b.Signature)
	if err != nil {
		return b.Identity, false
	}

	// The signed message is the blob payload with the claimed identity
	// appended, binding the signature to the account it speaks for.
	msg := append(append([]byte{}, b.Data...), []byte(b.Identity)...)
	return b.Identity, bls.Verify(pub, sig, msg)
}

func verifySha3(blob types.Blob) (types.Identity, bool) {
	var b shaBlob
	if err := cbor.Unmarshal(blob.Data, &b); err != nil {
		return "", false
	}

	digest := sha3.Sum256(b.Data)
	return b.Identity, bytes.Equal(digest[:], b.Sha)
}

func verifySecp256k1(blob types.Blob) (types.Identity, bool) {
	var b secp256k1Blob
	if err := cbor.Unmarshal(blob.Data, &b); err != nil {
		return "", false
	}
	if len(b.Data) != 32 || len(b.Signature) != 64 {
		return b.Identity, false
	}

	pub, err := secp256k1.ParsePubKey(b.PublicKey)
	if err != nil {
		return b.Identity, false
	}
	sig := parseCompactSignature(b.Signature)
	if sig == nil {
		return b.Identity, false
	}

	return b.Identity, sig.Verify(b.Data, pub)
}

func parseCompactSignature(sig []byte) *ecdsa.Signature {
	r := new(secp256k1.ModNScalar)
	if overflow := r.SetByteSlice(sig[:32]); overflow {
		return nil
	}
	s := new(secp256k1.ModNScalar)
	if overflow := s.SetByteSlice(sig[32:64]); overflow {
		return nil
	}
	return ecdsa.NewSignature(r, s)
}

// ValidateNativeProgramID returns nil for the three native verifiers: only
// zk verifiers impose structural constraints on their program identifiers.
func ValidateNativeProgramID(NativeVerifier) error {
	return nil
}
