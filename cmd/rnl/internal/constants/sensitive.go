package constants

// DefaultSensitiveFields are the field-name tokens masked when the default
// mask is enabled. Matching is case-insensitive and ignores '_' and '-', so
// "api_key" and "apikey" normalize to the same token.
// Used in: mask/classifier.go
var DefaultSensitiveFields = []string{
	"password",
	"senha",
	"pass",
	"pwd",
	"secret",
	"token",
	"accesstoken",
	"refreshtoken",
	"apikey",
	"api_key",
	"authorization",
	"email",
	"username",
	"e-mail",
	"cpf",
	"cnpj",
	"document",
	"documento",
	"ssn",
	"creditcard",
	"credit_card",
	"cartao",
	"cvv",
	"cvc",
	"pin",
	"phone",
	"telefone",
	"celular",
	"mobile",
}

// MaskPlaceholder replaces sensitive values that cannot be partially revealed.
// Used in: mask/masker.go, logging/logger.go
const MaskPlaceholder = "***"

// MaskVisibleRunes is how many leading and trailing runes a masked string keeps.
// Used in: mask/masker.go
const MaskVisibleRunes = 3

// DefaultMaxDepth bounds how deeply nested a payload may be before it is
// rejected during conversion.
// Used in: mask/policy.go, config/config.go
const DefaultMaxDepth = 64
