package auth

import "testing"

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("Gravel2026!")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if hash == "Gravel2026!" {
		t.Fatalf("hash must not equal the plaintext")
	}

	if !CheckPassword(hash, "Gravel2026!") {
		t.Fatalf("correct password should verify")
	}
	if CheckPassword(hash, "wrong-password") {
		t.Fatalf("wrong password must not verify")
	}
}
