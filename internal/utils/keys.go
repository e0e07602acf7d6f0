package utils

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/hex"
	"encoding/pem"
	"errors"
	"fmt"
	"strconv"

	"golang.org/x/crypto/sha3"
)

// KeySize is the RSA modulus size used for server-generated key pairs.
const KeySize = 2048

// ErrInvalidSignature indicates a proof signature that does not verify
// against the presented public key.
var ErrInvalidSignature = errors.New("invalid signature")

// PubKeyToAddress derives the account address from a PEM public key:
// a SHA3-256 digest of the PEM bytes with a fixed "0x" prefix.
func PubKeyToAddress(pubKeyPEM string) string {
	digest := sha3.Sum256([]byte(pubKeyPEM))
	return "0x" + hex.EncodeToString(digest[:])
}

// ParseRSAPublicKey parses a PEM-encoded RSA public key (PKIX or PKCS#1).
func ParseRSAPublicKey(pubKeyPEM string) (*rsa.PublicKey, error) {
	block, _ := pem.Decode([]byte(pubKeyPEM))
	if block == nil {
		return nil, errors.New("no PEM block found in public key")
	}
	if key, err := x509.ParsePKIXPublicKey(block.Bytes); err == nil {
		rsaKey, ok := key.(*rsa.PublicKey)
		if !ok {
			return nil, errors.New("public key is not RSA")
		}
		return rsaKey, nil
	}
	rsaKey, err := x509.ParsePKCS1PublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse RSA public key: %w", err)
	}
	return rsaKey, nil
}

// proofDigest hashes the content covered by an account-creation proof:
// the public key PEM concatenated with the decimal timestamp.
func proofDigest(pubKeyPEM string, timestamp int64) [32]byte {
	return sha3.Sum256([]byte(pubKeyPEM + strconv.FormatInt(timestamp, 10)))
}

// VerifyAccountProof checks the hex RSA-PSS signature over
// SHA3-256(pub_key + timestamp) using the presented key itself.
func VerifyAccountProof(pubKeyPEM string, timestamp int64, signHex string) error {
	key, err := ParseRSAPublicKey(pubKeyPEM)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	sig, err := hex.DecodeString(signHex)
	if err != nil {
		return fmt.Errorf("%w: signature is not hex", ErrInvalidSignature)
	}
	digest := proofDigest(pubKeyPEM, timestamp)
	if err := rsa.VerifyPSS(key, crypto.SHA3_256, digest[:], sig, nil); err != nil {
		return ErrInvalidSignature
	}
	return nil
}

// SignAccountProof produces the hex RSA-PSS signature a client submits when
// creating an account. Used by tests and client tooling.
func SignAccountProof(priv *rsa.PrivateKey, pubKeyPEM string, timestamp int64) (string, error) {
	digest := proofDigest(pubKeyPEM, timestamp)
	sig, err := rsa.SignPSS(rand.Reader, priv, crypto.SHA3_256, digest[:], nil)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(sig), nil
}

// GenerateKeyPair creates a fresh RSA key pair and returns both halves as PEM.
func GenerateKeyPair() (priv *rsa.PrivateKey, privPEM, pubPEM string, err error) {
	priv, err = rsa.GenerateKey(rand.Reader, KeySize)
	if err != nil {
		return nil, "", "", fmt.Errorf("failed to generate RSA key: %w", err)
	}
	privDER, err := x509.MarshalPKCS8PrivateKey(priv)
	if err != nil {
		return nil, "", "", fmt.Errorf("failed to marshal private key: %w", err)
	}
	pubDER, err := x509.MarshalPKIXPublicKey(&priv.PublicKey)
	if err != nil {
		return nil, "", "", fmt.Errorf("failed to marshal public key: %w", err)
	}
	privPEM = string(pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: privDER}))
	pubPEM = string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubDER}))
	return priv, privPEM, pubPEM, nil
}
