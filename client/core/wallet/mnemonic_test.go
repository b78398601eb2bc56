package wallet

import (
	"strings"
	"testing"
)

const testMnemonic = "test test test test test test test test test test test junk"

func TestGenerateMnemonic(t *testing.T) {
	tests := []struct {
		strength  MnemonicStrength
		wantWords int
		wantErr   bool
	}{
		{Mnemonic12Words, 12, false},
		{Mnemonic15Words, 15, false},
		{Mnemonic18Words, 18, false},
		{Mnemonic21Words, 21, false},
		{Mnemonic24Words, 24, false},
		{MnemonicStrength(100), 0, true},
	}
	for _, tt := range tests {
		mnemonic, err := GenerateMnemonic(tt.strength)
		if (err != nil) != tt.wantErr {
			t.Fatalf("GenerateMnemonic(%d) error = %v, wantErr %v", tt.strength, err, tt.wantErr)
		}
		if tt.wantErr {
			continue
		}
		if n := len(strings.Fields(mnemonic)); n != tt.wantWords {
			t.Errorf("GenerateMnemonic(%d) got %d words, want %d", tt.strength, n, tt.wantWords)
		}
		if err := ValidateMnemonic(mnemonic); err != nil {
			t.Errorf("generated mnemonic is invalid: %v", err)
		}
	}
}

func TestStrengthForWords(t *testing.T) {
	for words, want := range map[int]MnemonicStrength{12: Mnemonic12Words, 18: Mnemonic18Words, 24: Mnemonic24Words} {
		got, err := StrengthForWords(words)
		if err != nil || got != want {
			t.Errorf("StrengthForWords(%d) = %d, %v; want %d", words, got, err, want)
		}
	}
	if _, err := StrengthForWords(13); err == nil {
		t.Error("StrengthForWords(13) should fail")
	}
}

func TestValidateMnemonic(t *testing.T) {
	tests := []struct {
		name     string
		mnemonic string
		wantErr  string
	}{
		{"valid", testMnemonic, ""},
		{"extra spaces", "  test test test test test test  test test test test test junk ", ""},
		{"empty", "", "empty"},
		{"word count", "abandon abandon abandon", "word count"},
		{"unknown word", "test test test test test test test test test test test nope", `word 12 "nope"`},
		{"checksum", "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon", "checksum"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateMnemonic(tt.mnemonic)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error = %v, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestSeedNormalizesSpaces(t *testing.T) {
	a, err := Seed(testMnemonic, "")
	if err != nil {
		t.Fatal(err)
	}
	b, err := Seed(" "+strings.ReplaceAll(testMnemonic, " ", "  "), "")
	if err != nil {
		t.Fatal(err)
	}
	if string(a) != string(b) {
		t.Error("seed depends on whitespace")
	}
	c, err := Seed(testMnemonic, "passphrase")
	if err != nil {
		t.Fatal(err)
	}
	if string(a) == string(c) {
		t.Error("passphrase ignored")
	}
}
