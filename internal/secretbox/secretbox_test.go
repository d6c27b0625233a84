package secretbox

import (
	"bytes"
	"crypto/rand"
	"encoding/base64"
	"testing"
)

func testKey(t *testing.T) string {
	t.Helper()
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		t.Fatalf("rand.Read() error = %v", err)
	}
	return base64.StdEncoding.EncodeToString(key)
}

func TestSealOpenRoundTrip(t *testing.T) {
	t.Parallel()

	box, err := New(testKey(t))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	plaintext := []byte(`{"access_token":"ya29.secret"}`)

	sealed, err := box.Seal(plaintext)
	if err != nil {
		t.Fatalf("Seal() error = %v", err)
	}
	if sealed == string(plaintext) {
		t.Fatalf("Seal() returned plaintext")
	}
	opened, err := box.Open(sealed)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if !bytes.Equal(opened, plaintext) {
		t.Fatalf("Open() = %q, want %q", opened, plaintext)
	}
}

func TestOpenRejectsTamperedValue(t *testing.T) {
	t.Parallel()

	box, err := New(testKey(t))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	sealed, err := box.Seal([]byte("credential"))
	if err != nil {
		t.Fatalf("Seal() error = %v", err)
	}
	raw, _ := base64.StdEncoding.DecodeString(sealed)
	raw[len(raw)-1] ^= 0x01
	if _, err := box.Open(base64.StdEncoding.EncodeToString(raw)); err == nil {
		t.Fatalf("Open() error = nil for tampered value")
	}
}

func TestOpenRejectsWrongKey(t *testing.T) {
	t.Parallel()

	box1, err := New(testKey(t))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	box2, err := New(testKey(t))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	sealed, err := box1.Seal([]byte("credential"))
	if err != nil {
		t.Fatalf("Seal() error = %v", err)
	}
	if _, err := box2.Open(sealed); err == nil {
		t.Fatalf("Open() with wrong key error = nil")
	}
}

func TestNewRejectsBadKeys(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"", "not base64!!", base64.StdEncoding.EncodeToString([]byte("short"))} {
		if _, err := New(raw); err == nil {
			t.Fatalf("New(%q) error = nil, want failure", raw)
		}
	}
}
