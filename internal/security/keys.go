package security

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"os"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidKey is returned when signing material is missing, malformed, or of an unsupported type.
var ErrInvalidKey = errors.New("invalid key")

// minSecretLen is the shortest HS256 secret accepted (RFC 7518 §3.2 requires at least the hash size).
const minSecretLen = 32

// SigningKey is the process-wide token signing material. It is built once at startup from
// configuration and handed to NewTokenIssuer; it is read-only afterwards.
type SigningKey struct {
	method jwt.SigningMethod
	sign   any
	verify any
}

// NewHMACKey returns an HS256 SigningKey for secret.
func NewHMACKey(secret string) (*SigningKey, error) {
	if len(strings.TrimSpace(secret)) < minSecretLen {
		return nil, ErrInvalidKey
	}
	b := []byte(secret)
	return &SigningKey{method: jwt.SigningMethodHS256, sign: b, verify: b}, nil
}

// NewKeyPairKey returns an RS256 or ES256 SigningKey. Each argument may be inline PEM or a file path.
// The public key must be of the same family as the private key.
func NewKeyPairKey(privatePEM, publicPEM string) (*SigningKey, error) {
	signer, err := ParsePrivateKey(privatePEM)
	if err != nil {
		return nil, err
	}
	pub, err := ParsePublicKey(publicPEM)
	if err != nil {
		return nil, err
	}
	alg := KeyAlg(pub)
	if alg == "" || alg != KeyAlg(signer.Public()) {
		return nil, ErrInvalidKey
	}
	return &SigningKey{method: jwt.GetSigningMethod(alg), sign: signer, verify: pub}, nil
}

// Alg returns the JWS algorithm name (HS256, RS256 or ES256).
func (k *SigningKey) Alg() string {
	return k.method.Alg()
}

// LoadPEM returns s as bytes when it looks like inline PEM, otherwise reads the file at path s.
// Literal "\n" sequences in inline PEM (common in env files) are turned into newlines.
func LoadPEM(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, ErrInvalidKey
	}
	if strings.HasPrefix(s, "-----BEGIN") {
		return []byte(strings.ReplaceAll(s, `\n`, "\n")), nil
	}
	return os.ReadFile(s)
}

// ParsePrivateKey parses a PEM-encoded RSA or ECDSA private key (PKCS#1, PKCS#8 or SEC 1).
func ParsePrivateKey(s string) (crypto.Signer, error) {
	block, err := decodePEM(s)
	if err != nil {
		return nil, err
	}
	switch block.Type {
	case "RSA PRIVATE KEY":
		return x509.ParsePKCS1PrivateKey(block.Bytes)
	case "EC PRIVATE KEY":
		return x509.ParseECPrivateKey(block.Bytes)
	case "PRIVATE KEY":
		key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
		if err != nil {
			return nil, err
		}
		switch k := key.(type) {
		case *rsa.PrivateKey:
			return k, nil
		case *ecdsa.PrivateKey:
			return k, nil
		}
	}
	return nil, ErrInvalidKey
}

// ParsePublicKey parses a PEM-encoded RSA or ECDSA public key.
func ParsePublicKey(s string) (crypto.PublicKey, error) {
	block, err := decodePEM(s)
	if err != nil {
		return nil, err
	}
	switch block.Type {
	case "RSA PUBLIC KEY":
		return x509.ParsePKCS1PublicKey(block.Bytes)
	case "PUBLIC KEY":
		return x509.ParsePKIXPublicKey(block.Bytes)
	}
	return nil, ErrInvalidKey
}

func decodePEM(s string) (*pem.Block, error) {
	raw, err := LoadPEM(s)
	if err != nil {
		return nil, err
	}
	block, _ := pem.Decode(raw)
	if block == nil {
		return nil, ErrInvalidKey
	}
	return block, nil
}

// KeyAlg returns "RS256" for RSA and "ES256" for ECDSA P-256 keys; empty otherwise.
func KeyAlg(pub crypto.PublicKey) string {
	switch k := pub.(type) {
	case *rsa.PublicKey:
		return "RS256"
	case *ecdsa.PublicKey:
		if k.Curve.Params().Name == "P-256" {
			return "ES256"
		}
	}
	return ""
}
