// Package emailparse derives enrichment context from a bare email address:
// personal/corporate classification, a company-name guess from the domain,
// and a person-name guess from the local part.
package emailparse

import (
	"strings"
	"unicode"

	"github.com/rotisserie/eris"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/sells-group/contact-enrichment/internal/model"
)

// ErrInvalidEmail is returned when the address does not have local@domain shape.
var ErrInvalidEmail = eris.New("emailparse: invalid email address")

// personalDomains is the fixed consumer mail-domain set. Addresses on these
// domains carry no employer signal and are never enriched.
var personalDomains = map[string]bool{
	"gmail.com":      true,
	"yahoo.com":      true,
	"outlook.com":    true,
	"hotmail.com":    true,
	"aol.com":        true,
	"icloud.com":     true,
	"proton.me":      true,
	"protonmail.com": true,
	"live.com":       true,
	"msn.com":        true,
}

// knownBrands maps domain first-labels to proper-noun company names that
// plain title casing would get wrong.
var knownBrands = map[string]string{
	"onetrust":   "OneTrust",
	"github":     "GitHub",
	"gitlab":     "GitLab",
	"paypal":     "PayPal",
	"linkedin":   "LinkedIn",
	"youtube":    "YouTube",
	"mongodb":    "MongoDB",
	"databricks": "Databricks",
	"hubspot":    "HubSpot",
	"sendgrid":   "SendGrid",
	"mailchimp":  "Mailchimp",
	"openai":     "OpenAI",
	"deepmind":   "DeepMind",
	"salesforce": "Salesforce",
	"servicenow": "ServiceNow",
	"datadog":    "Datadog",
	"cloudflare": "Cloudflare",
	"godaddy":    "GoDaddy",
	"ebay":       "eBay",
	"iphone":     "iPhone",
}

var titleCaser = cases.Title(language.English)

// Parse validates the address and derives its EmailContext.
func Parse(email string) (*model.EmailContext, error) {
	trimmed := strings.TrimSpace(email)
	at := strings.IndexByte(trimmed, '@')
	if at <= 0 || at != strings.LastIndexByte(trimmed, '@') {
		return nil, eris.Wrapf(ErrInvalidEmail, "parse %q", email)
	}

	local := trimmed[:at]
	domain := strings.ToLower(trimmed[at+1:])
	if local == "" || domain == "" || !strings.Contains(domain, ".") ||
		strings.HasPrefix(domain, ".") || strings.HasSuffix(domain, ".") {
		return nil, eris.Wrapf(ErrInvalidEmail, "parse %q", email)
	}

	ec := &model.EmailContext{
		Email:           strings.ToLower(local) + "@" + domain,
		Domain:          domain,
		IsPersonalEmail: personalDomains[domain],
		PersonalName:    derivePersonName(local),
	}

	if !ec.IsPersonalEmail {
		ec.CompanyDomain = domain
		ec.CompanyNameGuess = deriveCompanyName(domain)
	}

	return ec, nil
}

// deriveCompanyName guesses a company name from the domain's first label:
// known-brand table first, otherwise title-cased hyphen segments.
func deriveCompanyName(domain string) string {
	label := domain
	if i := strings.IndexByte(label, '.'); i > 0 {
		label = label[:i]
	}
	if label == "" {
		return ""
	}
	if brand, ok := knownBrands[label]; ok {
		return brand
	}

	segments := strings.Split(label, "-")
	for i, seg := range segments {
		segments[i] = titleCaser.String(seg)
	}
	return strings.Join(segments, " ")
}

// derivePersonName guesses "First Last" from the local part. Two or more
// separator-delimited segments become first/last; a single camelCase segment
// is split at its capitalization boundary. No guess is not an error.
func derivePersonName(local string) string {
	segments := strings.FieldsFunc(local, func(r rune) bool {
		return r == '.' || r == '_' || r == '-'
	})
	segments = dropNumericSegments(segments)

	switch {
	case len(segments) >= 2:
		first := titleCaser.String(strings.ToLower(segments[0]))
		last := titleCaser.String(strings.ToLower(segments[len(segments)-1]))
		if len(first) < 2 || len(last) < 2 {
			// Initials like j.smith carry too little signal for a guess.
			return ""
		}
		return first + " " + last
	case len(segments) == 1:
		if first, last, ok := splitCamel(segments[0]); ok {
			return titleCaser.String(first) + " " + titleCaser.String(last)
		}
	}
	return ""
}

// splitCamel splits johnSmith at the first lower-to-upper boundary.
func splitCamel(s string) (string, string, bool) {
	runes := []rune(s)
	for i := 1; i < len(runes); i++ {
		if unicode.IsLower(runes[i-1]) && unicode.IsUpper(runes[i]) {
			first := strings.ToLower(string(runes[:i]))
			last := strings.ToLower(string(runes[i:]))
			if len(first) >= 2 && len(last) >= 2 {
				return first, last, true
			}
			return "", "", false
		}
	}
	return "", "", false
}

// dropNumericSegments removes all-digit segments (jane.doe.42).
func dropNumericSegments(segments []string) []string {
	kept := segments[:0]
	for _, seg := range segments {
		numeric := seg != ""
		for _, r := range seg {
			if !unicode.IsDigit(r) {
				numeric = false
				break
			}
		}
		if !numeric {
			kept = append(kept, seg)
		}
	}
	return kept
}
