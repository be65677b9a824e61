package envelope

import (
	"errors"
	"strings"
	"testing"
	"time"
)

const testSecret = "super-secreto-de-test-no-usar-en-prod"

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestIssueVerify_RoundTrip(t *testing.T) {
	t.Parallel()

	opts := Options{Secret: testSecret, Issuer: "comandero", TTL: time.Hour}
	iss := NewIssuer(opts)
	ver := NewVerifier(opts)

	token, err := iss.Issue("admin@mail.com", []string{"ADMIN", "USER"})
	if err != nil {
		t.Fatalf("Issue err: %v", err)
	}
	if token == "" {
		t.Fatal("token vacío")
	}

	claims, err := ver.Verify(token)
	if err != nil {
		t.Fatalf("Verify err: %v", err)
	}
	if claims.Subject != "admin@mail.com" {
		t.Fatalf("subject: got %q", claims.Subject)
	}
	if len(claims.Roles) != 2 || claims.Roles[0] != "ADMIN" || claims.Roles[1] != "USER" {
		t.Fatalf("roles: got %v", claims.Roles)
	}
	if claims.Issuer != "comandero" {
		t.Fatalf("issuer: got %q", claims.Issuer)
	}
	if got := claims.ExpiresAt.Sub(claims.IssuedAt); got != time.Hour {
		t.Fatalf("ventana de expiración: got %v", got)
	}
}

func TestVerify_ExpiryBoundary(t *testing.T) {
	t.Parallel()

	t0 := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	ttl := time.Hour

	iss := NewIssuer(Options{Secret: testSecret, Issuer: "comandero", TTL: ttl, Clock: fixedClock(t0)})
	token, err := iss.Issue("mozo@mail.com", []string{"USER"})
	if err != nil {
		t.Fatalf("Issue err: %v", err)
	}

	// Un segundo antes de vencer: válido.
	early := NewVerifier(Options{Secret: testSecret, Issuer: "comandero", Clock: fixedClock(t0.Add(ttl - time.Second))})
	if _, err := early.Verify(token); err != nil {
		t.Fatalf("no debería estar vencido: %v", err)
	}

	// Un segundo después de vencer: ErrTokenExpired, no ErrTokenInvalid.
	late := NewVerifier(Options{Secret: testSecret, Issuer: "comandero", Clock: fixedClock(t0.Add(ttl + time.Second))})
	_, err = late.Verify(token)
	if !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("esperaba ErrTokenExpired, got %v", err)
	}
}

func TestVerify_TamperDetection(t *testing.T) {
	t.Parallel()

	opts := Options{Secret: testSecret, Issuer: "comandero"}
	iss := NewIssuer(opts)
	ver := NewVerifier(opts)

	token, err := iss.Issue("cajero@mail.com", []string{"USER"})
	if err != nil {
		t.Fatalf("Issue err: %v", err)
	}

	// Corromper un byte en distintas posiciones del string opaco.
	for _, pos := range []int{0, len(token) / 4, len(token) / 2, len(token) - 1} {
		b := []byte(token)
		if b[pos] == 'A' {
			b[pos] = 'B'
		} else {
			b[pos] = 'A'
		}
		corrupted := string(b)
		if corrupted == token {
			continue
		}

		_, err := ver.Verify(corrupted)
		if !errors.Is(err, ErrTokenInvalid) {
			t.Fatalf("pos %d: esperaba ErrTokenInvalid, got %v", pos, err)
		}
	}

	// Truncar un carácter también debe fallar como inválido.
	if _, err := ver.Verify(token[:len(token)-1]); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("token truncado: esperaba ErrTokenInvalid, got %v", err)
	}
}

func TestVerify_CrossSecretIsolation(t *testing.T) {
	t.Parallel()

	issA := NewIssuer(Options{Secret: "secreto-A", Issuer: "comandero"})
	verB := NewVerifier(Options{Secret: "secreto-B", Issuer: "comandero"})

	token, err := issA.Issue("admin@mail.com", []string{"ADMIN"})
	if err != nil {
		t.Fatalf("Issue err: %v", err)
	}

	if _, err := verB.Verify(token); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("esperaba ErrTokenInvalid con otro secreto, got %v", err)
	}
}

func TestIssue_NotIdempotent(t *testing.T) {
	t.Parallel()

	iss := NewIssuer(Options{Secret: testSecret, Issuer: "comandero"})

	// Cada emisión genera un keypair fresco: mismos inputs, tokens distintos.
	a, err := iss.Issue("admin@mail.com", []string{"ADMIN"})
	if err != nil {
		t.Fatalf("Issue err: %v", err)
	}
	b, err := iss.Issue("admin@mail.com", []string{"ADMIN"})
	if err != nil {
		t.Fatalf("Issue err: %v", err)
	}
	if a == b {
		t.Fatal("dos emisiones no deberían producir el mismo token")
	}
}

func TestVerify_Idempotent(t *testing.T) {
	t.Parallel()

	opts := Options{Secret: testSecret, Issuer: "comandero"}
	iss := NewIssuer(opts)
	ver := NewVerifier(opts)

	token, err := iss.Issue("mozo@mail.com", []string{"USER"})
	if err != nil {
		t.Fatalf("Issue err: %v", err)
	}

	first, err := ver.Verify(token)
	if err != nil {
		t.Fatalf("Verify err: %v", err)
	}
	second, err := ver.Verify(token)
	if err != nil {
		t.Fatalf("Verify err: %v", err)
	}
	if first.Subject != second.Subject || strings.Join(first.Roles, ",") != strings.Join(second.Roles, ",") {
		t.Fatalf("claims divergentes entre verificaciones: %+v vs %+v", first, second)
	}
}

func TestIssue_RequiresSubjectAndRoles(t *testing.T) {
	t.Parallel()

	iss := NewIssuer(Options{Secret: testSecret, Issuer: "comandero"})

	if _, err := iss.Issue("", []string{"USER"}); err == nil {
		t.Fatal("esperaba error con subject vacío")
	}
	if _, err := iss.Issue("x@mail.com", nil); err == nil {
		t.Fatal("esperaba error sin roles")
	}
}

func TestVerify_GarbageInput(t *testing.T) {
	t.Parallel()

	ver := NewVerifier(Options{Secret: testSecret, Issuer: "comandero"})

	for _, tc := range []string{"", "no-es-un-token", "a.b.c.d.e"} {
		if _, err := ver.Verify(tc); !errors.Is(err, ErrTokenInvalid) {
			t.Fatalf("input %q: esperaba ErrTokenInvalid, got %v", tc, err)
		}
	}
}
