package hash

import "testing"

func TestHashPassword(t *testing.T) {
	hs := NewHashService()

	h, err := hs.HashPassword("secret1A!")
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}
	if len(h) == 0 {
		t.Fatal("expected non-empty hash")
	}
	if string(h) == "secret1A!" {
		t.Fatal("hash must not equal the raw password")
	}
}

func TestCheckPasswordHash(t *testing.T) {
	hs := NewHashService()

	h, err := hs.HashPassword("secret1A!")
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}

	if !hs.CheckPasswordHash("secret1A!", h) {
		t.Fatal("expected matching password to verify")
	}
	if hs.CheckPasswordHash("wrong-password", h) {
		t.Fatal("expected mismatched password to fail")
	}
	if hs.CheckPasswordHash("secret1A!", nil) {
		t.Fatal("expected nil hash to fail")
	}
}
