package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

func TestJWTVerifierRoundTrip(t *testing.T) {
	v, err := NewJWTVerifier("test-secret")
	if err != nil {
		t.Fatal(err)
	}
	token, err := v.Issue("driver-1", "driver", time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	got, err := v.VerifyIDToken(context.Background(), token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if got.UID != "driver-1" || got.Claims["role"] != "driver" {
		t.Fatalf("token = %+v", got)
	}
}

func TestJWTVerifierRejects(t *testing.T) {
	v, _ := NewJWTVerifier("test-secret")
	other, _ := NewJWTVerifier("other-secret")
	ctx := context.Background()

	expired, _ := v.Issue("driver-1", "", -time.Minute)
	if _, err := v.VerifyIDToken(ctx, expired); err == nil {
		t.Error("expired token accepted")
	}
	foreign, _ := other.Issue("driver-1", "", time.Hour)
	if _, err := v.VerifyIDToken(ctx, foreign); err == nil {
		t.Error("token signed with another secret accepted")
	}
	noSubject, _ := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, &Claims{
		RegisteredClaims: jwtlib.RegisteredClaims{ExpiresAt: jwtlib.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString([]byte("test-secret"))
	if _, err := v.VerifyIDToken(ctx, noSubject); !errors.Is(err, ErrMissingSubject) {
		t.Errorf("no-subject err = %v", err)
	}
	if _, err := v.VerifyIDToken(ctx, "not-a-jwt"); err == nil {
		t.Error("garbage token accepted")
	}
	if _, err := NewJWTVerifier("  "); err == nil {
		t.Error("empty secret accepted")
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "kargo-api", "warn")
	logger.Info("hidden")
	logger.Warn("shown", "booking_id", "b1")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one line at warn level, got %q", buf.String())
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("not json: %v", err)
	}
	if entry["service"] != "kargo-api" || entry["msg"] != "shown" || entry["booking_id"] != "b1" {
		t.Fatalf("entry = %v", entry)
	}
	if _, ok := entry["timestamp"]; !ok {
		t.Fatalf("missing timestamp key: %v", entry)
	}
}

func TestMemoryBlobStore(t *testing.T) {
	s := NewMemoryBlobStore()
	url, err := s.Upload(context.Background(), "drivers/d1/p.png", "image/png", strings.NewReader("img"))
	if err != nil || url != "mem://drivers/d1/p.png" {
		t.Fatalf("upload = %q, %v", url, err)
	}
	data, contentType, ok := s.Object("drivers/d1/p.png")
	if !ok || string(data) != "img" || contentType != "image/png" {
		t.Fatalf("object = %q %q %v", data, contentType, ok)
	}
	if _, _, ok := s.Object("missing"); ok {
		t.Fatal("missing object reported present")
	}
}

func TestSourceReaderKeepsReadError(t *testing.T) {
	readErr := errors.New("body too large")
	src := &sourceReader{r: io.MultiReader(strings.NewReader("abc"), iotest.ErrReader(readErr))}
	if _, err := io.Copy(io.Discard, src); !errors.Is(err, readErr) {
		t.Fatalf("copy err = %v", err)
	}
	if !errors.Is(src.err, readErr) {
		t.Fatalf("recorded err = %v", src.err)
	}

	clean := &sourceReader{r: strings.NewReader("abc")}
	if _, err := io.Copy(io.Discard, clean); err != nil || clean.err != nil {
		t.Fatalf("clean copy: %v, recorded %v", err, clean.err)
	}
}

func TestBucketDownloadURL(t *testing.T) {
	s := NewBucketStore(nil, "kargo.appspot.com")
	got := s.downloadURL("drivers/d1/profile.png", "tok")
	want := "https://firebasestorage.googleapis.com/v0/b/kargo.appspot.com/o/drivers%2Fd1%2Fprofile.png?alt=media&token=tok"
	if got != want {
		t.Fatalf("downloadURL = %s", got)
	}
}
