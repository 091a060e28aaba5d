package media

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// UploadCredential is a short-lived credential for direct client-to-store
// uploads. It never carries the signing secret itself.
type UploadCredential struct {
	Signature    string `json:"signature"`
	Timestamp    int64  `json:"timestamp"`
	UploadPreset string `json:"upload_preset"`
	AccessKey    string `json:"access_key"`
	Bucket       string `json:"bucket"`
}

// Signer issues direct-upload credentials by keyed-hashing the request
// timestamp and preset with the server-held media secret.
type Signer struct {
	secret       string
	accessKey    string
	bucket       string
	uploadPreset string
	now          func() time.Time
}

// NewSigner creates a Signer. The secret must be non-empty.
func NewSigner(secret, accessKey, bucket, uploadPreset string) *Signer {
	return &Signer{
		secret:       secret,
		accessKey:    accessKey,
		bucket:       bucket,
		uploadPreset: uploadPreset,
		now:          time.Now,
	}
}

// Sign returns a credential for the current timestamp.
func (s *Signer) Sign() UploadCredential {
	ts := s.now().Unix()
	return UploadCredential{
		Signature:    s.signature(ts),
		Timestamp:    ts,
		UploadPreset: s.uploadPreset,
		AccessKey:    s.accessKey,
		Bucket:       s.bucket,
	}
}

// Verify reports whether sig matches the given timestamp.
func (s *Signer) Verify(sig string, ts int64) bool {
	return hmac.Equal([]byte(sig), []byte(s.signature(ts)))
}

func (s *Signer) signature(ts int64) string {
	payload := fmt.Sprintf("timestamp=%d&upload_preset=%s", ts, s.uploadPreset)
	mac := hmac.New(sha256.New, []byte(s.secret))
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}
