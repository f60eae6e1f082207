// Package i18n resolves message keys into localized strings. The locale is
// an explicit parameter threaded from the request context; there is no
// process-wide current language.
package i18n

import (
	"golang.org/x/text/language"
)

// DefaultLocale is used when a requested locale is unknown or carries no
// translation for a key.
const DefaultLocale = "en"

var supported = []language.Tag{
	language.English,
	language.German,
}

var matcher = language.NewMatcher(supported)

var catalog = map[string]map[string]string{
	"en": {
		"errors.validation":                      "Validation failed",
		"errors.not_found":                       "Resource not found",
		"errors.internal":                        "Internal server error",
		"errors.forbidden":                       "Forbidden",
		"auth.errors.invalid_credentials":        "Invalid username or password",
		"auth.errors.account_inactive":           "Account is inactive",
		"auth.errors.email_not_confirmed":        "Email address is not confirmed",
		"auth.errors.invalid_token":              "Invalid token",
		"auth.errors.expired_token":              "Token has expired",
		"auth.errors.invalid_token_type":         "Invalid token type",
		"auth.errors.invalid_refresh_token":      "Invalid refresh token",
		"auth.errors.expired_refresh_token":      "Refresh token has expired",
		"auth.errors.missing_token":              "Missing access token",
		"auth.errors.insufficient_role":          "Insufficient permissions",
		"auth.errors.email_already_confirmed":    "Email is already confirmed",
		"users.errors.user_already_exists":       "A user with this email already exists",
		"users.errors.username_already_exists":   "This username is already taken",
		"users.errors.email_already_exists":      "A user with this email already exists",
		"users.errors.new_email_same_as_current": "The new email matches the current one",
		"users.errors.invalid_current_password":  "Current password is incorrect",
		"roles.errors.name_already_exists":       "A role with this name already exists",
	},
	"de": {
		"errors.validation":                      "Validierung fehlgeschlagen",
		"errors.not_found":                       "Ressource nicht gefunden",
		"errors.internal":                        "Interner Serverfehler",
		"errors.forbidden":                       "Zugriff verweigert",
		"auth.errors.invalid_credentials":        "Benutzername oder Passwort ist falsch",
		"auth.errors.account_inactive":           "Konto ist deaktiviert",
		"auth.errors.email_not_confirmed":        "E-Mail-Adresse ist nicht bestätigt",
		"auth.errors.invalid_token":              "Ungültiges Token",
		"auth.errors.expired_token":              "Token ist abgelaufen",
		"auth.errors.invalid_token_type":         "Ungültiger Token-Typ",
		"auth.errors.invalid_refresh_token":      "Ungültiges Refresh-Token",
		"auth.errors.expired_refresh_token":      "Refresh-Token ist abgelaufen",
		"auth.errors.missing_token":              "Zugriffstoken fehlt",
		"auth.errors.insufficient_role":          "Unzureichende Berechtigungen",
		"auth.errors.email_already_confirmed":    "E-Mail ist bereits bestätigt",
		"users.errors.user_already_exists":       "Ein Benutzer mit dieser E-Mail existiert bereits",
		"users.errors.username_already_exists":   "Dieser Benutzername ist bereits vergeben",
		"users.errors.email_already_exists":      "Ein Benutzer mit dieser E-Mail existiert bereits",
		"users.errors.new_email_same_as_current": "Die neue E-Mail entspricht der aktuellen",
		"users.errors.invalid_current_password":  "Aktuelles Passwort ist falsch",
		"roles.errors.name_already_exists":       "Eine Rolle mit diesem Namen existiert bereits",
	},
}

// Translate resolves key for locale, falling back to the default locale and
// finally to the key itself so a missing entry never hides an error.
func Translate(locale, key string) string {
	if msgs, ok := catalog[locale]; ok {
		if msg, ok := msgs[key]; ok {
			return msg
		}
	}
	if msg, ok := catalog[DefaultLocale][key]; ok {
		return msg
	}
	return key
}

// MatchLocale picks the best supported locale for an Accept-Language header.
func MatchLocale(acceptLanguage string) string {
	if acceptLanguage == "" {
		return DefaultLocale
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return DefaultLocale
	}
	_, idx, _ := matcher.Match(tags...)
	base, _ := supported[idx].Base()
	return base.String()
}
