package media

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/require"
)

func TestSigner_SignMatchesManualHMAC(t *testing.T) {
	signer := NewSigner("top-secret", "AKIA123", "products", "ml_default")
	fixed := time.Unix(1700000000, 0)
	signer.now = func() time.Time { return fixed }

	cred := signer.Sign()

	mac := hmac.New(sha256.New, []byte("top-secret"))
	fmt.Fprintf(mac, "timestamp=%d&upload_preset=%s", fixed.Unix(), "ml_default")
	want := hex.EncodeToString(mac.Sum(nil))

	require.Equal(t, want, cred.Signature)
	require.Equal(t, fixed.Unix(), cred.Timestamp)
	require.Equal(t, "AKIA123", cred.AccessKey)
	require.Equal(t, "products", cred.Bucket)
}

func TestSigner_CredentialNeverContainsSecret(t *testing.T) {
	signer := NewSigner("top-secret", "AKIA123", "products", "ml_default")
	cred := signer.Sign()

	require.NotContains(t, cred.Signature, "top-secret")
	require.NotEqual(t, "top-secret", cred.AccessKey)
}

func TestProperty_SignedCredentialsVerify(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("a credential signed now verifies against its own timestamp", prop.ForAll(
		func(secret string, preset string) bool {
			signer := NewSigner(secret, "key", "bucket", preset)
			cred := signer.Sign()
			return signer.Verify(cred.Signature, cred.Timestamp)
		},
		gen.AlphaString(),
		gen.AlphaString(),
	))

	properties.Property("tampered timestamps fail verification", prop.ForAll(
		func(secret string, skew int64) bool {
			if skew == 0 {
				return true
			}
			signer := NewSigner(secret, "key", "bucket", "preset")
			cred := signer.Sign()
			return !signer.Verify(cred.Signature, cred.Timestamp+skew)
		},
		gen.Identifier(),
		gen.Int64Range(-100000, 100000),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
