package crypto

import "testing"

func TestEncryptDecryptRoundTrip(t *testing.T) {
	SetEncryptionKey("unit-test-secret")
	defer SetEncryptionKey("")

	sealed, err := Encrypt("AQXdLR-access-token")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if sealed == "AQXdLR-access-token" {
		t.Fatal("expected ciphertext to differ from plain text")
	}

	opened, err := Decrypt(sealed)
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	if opened != "AQXdLR-access-token" {
		t.Errorf("round trip mismatch: %q", opened)
	}
}

func TestEncryptWithoutKeyIsPassthrough(t *testing.T) {
	SetEncryptionKey("")

	sealed, err := Encrypt("token")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if sealed != "token" {
		t.Errorf("expected passthrough, got %q", sealed)
	}
}

func TestDecryptLeavesLegacyPlainTextAlone(t *testing.T) {
	SetEncryptionKey("unit-test-secret")
	defer SetEncryptionKey("")

	// Rows written before the key existed are not base64 ciphertext.
	opened, err := Decrypt("legacy plain token!")
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	if opened != "legacy plain token!" {
		t.Errorf("expected legacy value unchanged, got %q", opened)
	}
}
