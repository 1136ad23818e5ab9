package tui

import (
	"errors"

	"github.com/nishadm/agrosage/internal/auth"
)

// Lang selects the UI string catalog.
type Lang string

const (
	LangEN Lang = "en"
	LangHI Lang = "hi"
)

var catalogs = map[Lang]map[string]string{
	LangEN: {
		"app.title":            "AGROSAGE",
		"app.tagline":          "crop recommendations for your soil",
		"login.title":          "Sign in",
		"login.email":          "email",
		"login.password":       "password",
		"login.google":         "continue with Google",
		"login.phone":          "continue with phone",
		"login.signup":         "create an account",
		"login.busy":           "signing in...",
		"signup.title":         "Create account",
		"signup.first":         "first name",
		"signup.last":          "last name",
		"signup.created":       "account created, sign in to continue",
		"signup.busy":          "creating account...",
		"phone.title":          "Phone sign-in",
		"phone.number":         "phone number",
		"phone.code":           "verification code",
		"phone.sent":           "code sent, check your messages",
		"phone.busy":           "verifying...",
		"home.welcome":         "welcome back",
		"home.hint":            "press r for a recommendation, p for your profile",
		"recommend.title":      "Crop recommendation",
		"recommend.result":     "recommended crop",
		"recommend.busy":       "asking the model...",
		"recommend.copied":     "copied to clipboard",
		"profile.title":        "Your profile",
		"profile.saved":        "profile saved",
		"profile.save_failed":  "could not save profile, your session is unaffected",
		"profile.busy":         "saving...",
		"session.checking":     "checking your session...",
		"err.invalid_creds":    "wrong email or password",
		"err.account_exists":   "an account with that email already exists",
		"err.cancelled":        "sign-in cancelled",
		"err.bad_code":         "that code is wrong or expired",
		"err.session_expired":  "your session expired, sign in again",
		"err.network":          "cannot reach the server, check your connection",
		"err.generic":          "something went wrong, try again",
		"field.nitrogen":       "nitrogen (N)",
		"field.phosphorus":     "phosphorus (P)",
		"field.potassium":      "potassium (K)",
		"field.temperature":    "temperature (C)",
		"field.humidity":       "humidity (%)",
		"field.ph":             "soil pH",
		"field.rainfall":       "rainfall (mm)",
	},
	LangHI: {
		"app.title":            "AGROSAGE",
		"app.tagline":          "आपकी मिट्टी के लिए फ़सल सुझाव",
		"login.title":          "साइन इन करें",
		"login.email":          "ईमेल",
		"login.password":       "पासवर्ड",
		"login.google":         "Google से जारी रखें",
		"login.phone":          "फ़ोन से जारी रखें",
		"login.signup":         "खाता बनाएँ",
		"login.busy":           "साइन इन हो रहा है...",
		"signup.title":         "खाता बनाएँ",
		"signup.first":         "पहला नाम",
		"signup.last":          "अंतिम नाम",
		"signup.created":       "खाता बन गया, जारी रखने के लिए साइन इन करें",
		"signup.busy":          "खाता बन रहा है...",
		"phone.title":          "फ़ोन साइन-इन",
		"phone.number":         "फ़ोन नंबर",
		"phone.code":           "सत्यापन कोड",
		"phone.sent":           "कोड भेजा गया, अपने संदेश देखें",
		"phone.busy":           "सत्यापित हो रहा है...",
		"home.welcome":         "वापसी पर स्वागत है",
		"home.hint":            "सुझाव के लिए r दबाएँ, प्रोफ़ाइल के लिए p",
		"recommend.title":      "फ़सल सुझाव",
		"recommend.result":     "सुझाई गई फ़सल",
		"recommend.busy":       "मॉडल से पूछा जा रहा है...",
		"recommend.copied":     "क्लिपबोर्ड पर कॉपी हुआ",
		"profile.title":        "आपकी प्रोफ़ाइल",
		"profile.saved":        "प्रोफ़ाइल सहेजी गई",
		"profile.save_failed":  "प्रोफ़ाइल सहेजी नहीं जा सकी, आपका सत्र सुरक्षित है",
		"profile.busy":         "सहेजा जा रहा है...",
		"session.checking":     "आपका सत्र जाँचा जा रहा है...",
		"err.invalid_creds":    "ईमेल या पासवर्ड गलत है",
		"err.account_exists":   "इस ईमेल से खाता पहले से मौजूद है",
		"err.cancelled":        "साइन-इन रद्द किया गया",
		"err.bad_code":         "कोड गलत है या समाप्त हो गया है",
		"err.session_expired":  "आपका सत्र समाप्त हो गया, फिर से साइन इन करें",
		"err.network":          "सर्वर से संपर्क नहीं हो पा रहा, कनेक्शन जाँचें",
		"err.generic":          "कुछ गलत हुआ, फिर से कोशिश करें",
		"field.nitrogen":       "नाइट्रोजन (N)",
		"field.phosphorus":     "फ़ॉस्फ़ोरस (P)",
		"field.potassium":      "पोटैशियम (K)",
		"field.temperature":    "तापमान (C)",
		"field.humidity":       "नमी (%)",
		"field.ph":             "मिट्टी का pH",
		"field.rainfall":       "वर्षा (mm)",
	},
}

// tr looks up a catalog string, falling back to English and then to the key
// itself so a missing translation never blanks the UI.
func tr(l Lang, key string) string {
	if s, ok := catalogs[l][key]; ok {
		return s
	}
	if s, ok := catalogs[LangEN][key]; ok {
		return s
	}
	return key
}

// errKey maps an auth failure to its catalog key.
func errKey(err error) string {
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		return "err.invalid_creds"
	case errors.Is(err, auth.ErrAccountExists):
		return "err.account_exists"
	case errors.Is(err, auth.ErrUserCancelled):
		return "err.cancelled"
	case errors.Is(err, auth.ErrInvalidOrExpiredCode):
		return "err.bad_code"
	case errors.Is(err, auth.ErrNoRefreshToken),
		errors.Is(err, auth.ErrRefreshRejected),
		errors.Is(err, auth.ErrMalformedToken):
		return "err.session_expired"
	case errors.Is(err, auth.ErrNetwork):
		return "err.network"
	default:
		return "err.generic"
	}
}

// errText renders an auth failure as a localized toast message.
func errText(l Lang, err error) string {
	return tr(l, errKey(err))
}
