package urilaga

import (
	"crypto/hmac"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	stowrysign "github.com/sagarc03/stowry-go"
)

// MaxClockSkew bounds how far in the future a presigned timestamp may be.
const MaxClockSkew = 5 * time.Minute

// SecretStore resolves an access key to its signing secret.
type SecretStore interface {
	Lookup(accessKey string) (string, error)
}

// Presigner issues native presigned URLs for objects served by this process.
type Presigner struct {
	endpoint  string
	accessKey string
	secretKey string
	now       func() time.Time
}

// NewPresigner creates a Presigner that prefixes generated paths with endpoint
// (e.g. "https://gallery.example.com") and signs with the given key pair.
func NewPresigner(endpoint, accessKey, secretKey string) *Presigner {
	return &Presigner{
		endpoint:  strings.TrimSuffix(endpoint, "/"),
		accessKey: accessKey,
		secretKey: secretKey,
		now:       time.Now,
	}
}

// Presign returns an absolute URL granting method access to urlPath for ttl.
// urlPath is signed unescaped; the returned URL carries it escaped.
func (p *Presigner) Presign(method, urlPath string, ttl time.Duration) (string, error) {
	expires := int64(ttl / time.Second)
	if expires <= 0 {
		return "", fmt.Errorf("presign %s: ttl must be at least one second", urlPath)
	}
	if !strings.HasPrefix(urlPath, "/") {
		urlPath = "/" + urlPath
	}

	timestamp := p.now().Unix()
	sig := stowrysign.Sign(p.secretKey, method, urlPath, timestamp, expires)

	query := url.Values{}
	query.Set(stowrysign.StowryCredentialParam, p.accessKey)
	query.Set(stowrysign.StowryDateParam, strconv.FormatInt(timestamp, 10))
	query.Set(stowrysign.StowryExpiresParam, strconv.FormatInt(expires, 10))
	query.Set(stowrysign.StowrySignatureParam, sig)

	u := url.URL{Path: urlPath, RawQuery: query.Encode()}
	return p.endpoint + u.String(), nil
}

// SignatureVerifier verifies native presigned URLs.
type SignatureVerifier struct {
	store SecretStore
	now   func() time.Time
}

// NewSignatureVerifier creates a verifier that resolves secrets through store.
func NewSignatureVerifier(store SecretStore) *SignatureVerifier {
	return &SignatureVerifier{store: store, now: time.Now}
}

// Verify checks the presigned parameters in query against method and the
// unescaped request path. All failures wrap ErrUnauthorized.
func (v *SignatureVerifier) Verify(method, urlPath string, query url.Values) error {
	credential := query.Get(stowrysign.StowryCredentialParam)
	date := query.Get(stowrysign.StowryDateParam)
	expiresStr := query.Get(stowrysign.StowryExpiresParam)
	signature := query.Get(stowrysign.StowrySignatureParam)

	if credential == "" || date == "" || expiresStr == "" || signature == "" {
		return fmt.Errorf("missing required signature parameters: %w", ErrUnauthorized)
	}

	timestamp, err := strconv.ParseInt(date, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid signature date: %w", ErrUnauthorized)
	}

	expires, err := strconv.ParseInt(expiresStr, 10, 64)
	if err != nil || expires <= 0 {
		return fmt.Errorf("invalid signature expires: %w", ErrUnauthorized)
	}

	now := v.now()
	signedAt := time.Unix(timestamp, 0)
	if signedAt.After(now.Add(MaxClockSkew)) {
		return fmt.Errorf("signature date in the future: %w", ErrUnauthorized)
	}
	if now.Unix() > timestamp+expires {
		return fmt.Errorf("signature expired: %w", ErrUnauthorized)
	}

	secretKey, err := v.store.Lookup(credential)
	if err != nil {
		return fmt.Errorf("lookup credential: %w", err)
	}

	expected := stowrysign.Sign(secretKey, method, urlPath, timestamp, expires)
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return fmt.Errorf("signature mismatch: %w", ErrUnauthorized)
	}

	return nil
}
