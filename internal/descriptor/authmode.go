package descriptor

import "strings"

// AuthMode is the closed set of credential-acquisition strategies. The
// orchestration engine dispatches on it exhaustively; a descriptor naming
// a mode outside the set fails validation rather than flowing through as
// a free string.
type AuthMode string

const (
	AuthModeOAuth2 AuthMode = "OAUTH2"
	AuthModeAPIKey AuthMode = "API_KEY"
	AuthModeBasic  AuthMode = "BASIC"
)

// AuthModes returns all supported modes in a stable order.
func AuthModes() []AuthMode {
	return []AuthMode{AuthModeOAuth2, AuthModeAPIKey, AuthModeBasic}
}

// ParseAuthMode normalizes a raw mode tag.
func ParseAuthMode(raw string) (AuthMode, bool) {
	switch AuthMode(strings.ToUpper(strings.TrimSpace(raw))) {
	case AuthModeOAuth2:
		return AuthModeOAuth2, true
	case AuthModeAPIKey:
		return AuthModeAPIKey, true
	case AuthModeBasic:
		return AuthModeBasic, true
	default:
		return "", false
	}
}

// Valid reports whether the mode is a member of the closed set.
func (m AuthMode) Valid() bool {
	_, ok := ParseAuthMode(string(m))
	return ok
}

// FieldType constrains the values accepted for a customer field.
type FieldType string

const (
	FieldTypeString  FieldType = "string"
	FieldTypeNumber  FieldType = "number"
	FieldTypeBoolean FieldType = "boolean"
)

// ParseFieldType normalizes a raw field type tag.
func ParseFieldType(raw string) (FieldType, bool) {
	switch FieldType(strings.ToLower(strings.TrimSpace(raw))) {
	case FieldTypeString:
		return FieldTypeString, true
	case FieldTypeNumber:
		return FieldTypeNumber, true
	case FieldTypeBoolean:
		return FieldTypeBoolean, true
	default:
		return "", false
	}
}

// Valid reports whether the type is a member of the closed set.
func (t FieldType) Valid() bool {
	_, ok := ParseFieldType(string(t))
	return ok
}
