// Package signer implements the SDK-HMAC-SHA256 request signing scheme used
// by the cloud control-plane APIs.
//
// The output must match the server-side computation byte for byte: any
// difference in encoding, ordering or hashing produces a signature the
// service silently rejects.
package signer

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

const (
	Algorithm       = "SDK-HMAC-SHA256"
	SignedHeaders   = "host;x-sdk-date"
	TimestampFormat = "20060102T150405Z"

	HeaderHost          = "Host"
	HeaderDate          = "X-Sdk-Date"
	HeaderAuthorization = "Authorization"
	HeaderContentType   = "Content-Type"
	ContentTypeJSON     = "application/json"
)

// Credentials is an access key / secret key pair.
type Credentials struct {
	AccessKey string
	SecretKey string
}

// NewCredentials trims both keys and rejects empty values.
func NewCredentials(accessKey, secretKey string) (Credentials, error) {
	accessKey = strings.TrimSpace(accessKey)
	secretKey = strings.TrimSpace(secretKey)
	if accessKey == "" || secretKey == "" {
		return Credentials{}, fmt.Errorf("both access key and secret key are required")
	}
	return Credentials{AccessKey: accessKey, SecretKey: secretKey}, nil
}

// String never includes the secret key.
func (c Credentials) String() string {
	return fmt.Sprintf("Credentials{AccessKey: %s, SecretKey: <redacted>}", c.AccessKey)
}

func (c Credentials) GoString() string {
	return c.String()
}

// Request is the part of an HTTP request covered by the signature.
// Path may carry a raw query string after '?'.
type Request struct {
	Method string
	Host   string
	Path   string
	Body   []byte
}

// SignedRequest holds the derived values for one signed request.
type SignedRequest struct {
	Method         string
	Host           string
	CanonicalPath  string
	CanonicalQuery string
	PayloadHash    string
	Timestamp      string
	Signature      string
	Authorization  string
}

// Headers returns the headers that carry the signature.
func (s SignedRequest) Headers() map[string]string {
	return map[string]string{
		HeaderHost:          s.Host,
		HeaderDate:          s.Timestamp,
		HeaderAuthorization: s.Authorization,
	}
}

// Sign computes the signature for req at the given instant.
func Sign(creds Credentials, req Request, at time.Time) SignedRequest {
	rawPath, rawQuery := SplitPathQuery(req.Path)
	method := strings.ToUpper(req.Method)
	timestamp := FormatTimestamp(at)

	signed := SignedRequest{
		Method:         method,
		Host:           req.Host,
		CanonicalPath:  CanonicalizePath(rawPath),
		CanonicalQuery: CanonicalizeQuery(rawQuery),
		PayloadHash:    HashHex(req.Body),
		Timestamp:      timestamp,
	}

	canonical := BuildCanonicalRequest(
		method,
		signed.CanonicalPath,
		signed.CanonicalQuery,
		req.Host,
		timestamp,
		SignedHeaders,
		signed.PayloadHash,
	)
	signed.Signature = Signature(creds.SecretKey, StringToSign(Algorithm, timestamp, canonical))
	signed.Authorization = BuildAuthorizationHeader(
		Algorithm,
		creds.AccessKey,
		SignedHeaders,
		signed.Signature,
	)
	return signed
}

// FormatTimestamp renders t in UTC as YYYYMMDDTHHMMSSZ.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampFormat)
}

func BuildCanonicalRequest(
	method, canonicalPath, canonicalQuery, host, timestamp, signedHeaders, payloadHash string,
) string {
	return fmt.Sprintf(
		"%s\n%s\n%s\nhost:%s\nx-sdk-date:%s\n\n%s\n%s",
		strings.ToUpper(method),
		canonicalPath,
		canonicalQuery,
		host,
		timestamp,
		signedHeaders,
		payloadHash,
	)
}

func StringToSign(algorithm, timestamp, canonicalRequest string) string {
	return algorithm + "\n" + timestamp + "\n" + HashHex([]byte(canonicalRequest))
}

// HashHex returns the lowercase hex SHA-256 of b. A nil body hashes the empty string.
func HashHex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// Signature is the lowercase hex HMAC-SHA256 of stringToSign keyed by the raw secret.
func Signature(secretKey, stringToSign string) string {
	mac := hmac.New(sha256.New, []byte(secretKey))
	mac.Write([]byte(stringToSign))
	return hex.EncodeToString(mac.Sum(nil))
}

func BuildAuthorizationHeader(algorithm, accessKey, signedHeaders, signature string) string {
	return fmt.Sprintf(
		"%s Access=%s, SignedHeaders=%s, Signature=%s",
		algorithm,
		accessKey,
		signedHeaders,
		signature,
	)
}
