package enums

import "fmt"

// SignatureMethod records how a signature artifact was captured.
type SignatureMethod string

const (
	SignatureMethodDrawn    SignatureMethod = "drawn"
	SignatureMethodTyped    SignatureMethod = "typed"
	SignatureMethodUploaded SignatureMethod = "uploaded"
)

var validSignatureMethods = []SignatureMethod{
	SignatureMethodDrawn,
	SignatureMethodTyped,
	SignatureMethodUploaded,
}

// String implements fmt.Stringer.
func (s SignatureMethod) String() string {
	return string(s)
}

// IsValid reports whether the value is a known SignatureMethod.
func (s SignatureMethod) IsValid() bool {
	for _, candidate := range validSignatureMethods {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseSignatureMethod converts raw input into a SignatureMethod.
func ParseSignatureMethod(value string) (SignatureMethod, error) {
	for _, candidate := range validSignatureMethods {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid signature method %q", value)
}
