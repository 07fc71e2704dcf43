package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// mnemonicRegex matches valid element mnemonics: an uppercase letter
// optionally followed by lowercase letters (e.g., "R", "Ws", "La").
var mnemonicRegex = regexp.MustCompile(`^[A-Z][a-z]*$`)

// ValidateMnemonic validates an element mnemonic for registry use.
//
// The validation rules are intentionally conservative:
//   - No empty mnemonics
//   - Uppercase first letter, lowercase continuation
//   - Maximum length of 8 characters
//
// Mnemonics share a flat namespace; uniqueness is checked by the registry.
func ValidateMnemonic(mnemonic string) error {
	if mnemonic == "" {
		return New(ErrCodeInvalidElement, "element mnemonic cannot be empty")
	}

	if len(mnemonic) > 8 {
		return New(ErrCodeInvalidElement, "element mnemonic too long (max 8 characters)")
	}

	if !mnemonicRegex.MatchString(mnemonic) {
		return New(ErrCodeInvalidElement, "invalid element mnemonic: %q", mnemonic)
	}

	return nil
}

// ValidateLabel validates an element label for use in extended CDC text.
// Labels are embedded inside brace-delimited parameter blocks, so any
// character that is part of the CDC grammar is rejected.
func ValidateLabel(label string) error {
	if len(label) > 64 {
		return New(ErrCodeInvalidLabel, "label too long (max 64 characters)")
	}

	for _, r := range label {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidLabel, "label contains control characters")
		}
	}

	if strings.ContainsAny(label, "[](){}:,=") {
		return New(ErrCodeInvalidLabel, "label contains reserved CDC characters: %q", label)
	}

	return nil
}

// ValidateCDCInput validates raw circuit description text before parsing.
// It rejects input that could not possibly be a valid CDC string so the
// parser only ever sees printable, reasonably sized text.
func ValidateCDCInput(text string) error {
	if strings.TrimSpace(text) == "" {
		return New(ErrCodeInvalidCDC, "circuit description cannot be empty")
	}

	const maxCDCLength = 8192
	if len(text) > maxCDCLength {
		return New(ErrCodeInvalidCDC, "circuit description too long (max %d characters)", maxCDCLength)
	}

	for _, r := range text {
		if r != ' ' && r != '\t' && r != '\n' && unicode.IsControl(r) {
			return New(ErrCodeInvalidCDC, "circuit description contains control characters")
		}
	}

	return nil
}
