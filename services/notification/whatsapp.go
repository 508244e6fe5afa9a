package notifsvc

import (
	"net/url"
	"strings"
)

const waBaseURL = "https://wa.me/"

// NormalizePhone converts a locally formatted phone number to the
// international digits-only form wa.me expects. Non-digit characters are
// stripped and the "20" country code is prepended to local numbers. The
// trunk "0" is kept: "01012345678" becomes "201012345678".
func NormalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if strings.HasPrefix(digits, "0") {
		digits = "2" + digits
	}
	return digits
}

// Link builds a click-to-chat URL that opens a WhatsApp conversation with
// phone, prefilled with message.
func Link(phone, message string) string {
	return waBaseURL + NormalizePhone(phone) + "?text=" + url.QueryEscape(message)
}
