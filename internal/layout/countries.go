package layout

import "strings"

// Countries is the recognized market-code vocabulary in match priority order.
var Countries = []string{
	"N_AFRICA", "AFRICA_EN", "AFRICA_PT", "AFRICA_FR", "EG", "ZA",
	"AU", "CN", "HK", "HK_EN", "TW", "IN", "ID", "JP", "SEC", "MY", "MM", "NZ", "PH", "SG", "TH", "VN", "BD", "MN",
	"AL", "AT", "AZ", "BE", "BE_FR", "BG", "BA", "HR", "CZ", "DK", "EE", "FI", "FR", "DE", "GR", "HU", "IE", "IL", "IT",
	"KZ_KZ", "KZ_RU", "LV", "LT", "NL", "NO", "MK", "PL", "PT", "RO", "RS", "SK", "SI", "ES", "SE", "CH", "CH_FR",
	"TR", "UA", "UK", "UZ_UZ", "UZ_RU", "GE",
	"AR", "LATIN_EN", "LATIN", "BR", "CL", "CO", "MX", "PE", "PY", "UY",
	"PK", "AE_AR", "AE", "IRAN", "LEVANT", "LEVANT_AR", "SA", "SA_EN", "IQ_AR", "IQ_KU", "KB",
	"CA", "CA_FR", "US", "PS",
}

// MatchCountry returns the first vocabulary code that equals the token, is
// contained in it, or contains it. Matching is case-insensitive.
func MatchCountry(token string) (string, bool) {
	t := strings.ToUpper(strings.TrimSpace(token))
	if t == "" {
		return "", false
	}
	for _, code := range Countries {
		if t == code || strings.Contains(t, code) || strings.Contains(code, t) {
			return code, true
		}
	}
	return "", false
}

// stripCountry removes the code from a segment label, case-insensitively.
func stripCountry(label, code string) string {
	upper := strings.ToUpper(label)
	if i := strings.Index(upper, code); i >= 0 {
		label = label[:i] + label[i+len(code):]
	}
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(label), "-_"))
}
