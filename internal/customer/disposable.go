// AngelaMos | 2026
// disposable.go

package customer

import "strings"

var disposableDomains = domainSet(
	"10minutemail.com",
	"20minutemail.com",
	"dispostable.com",
	"fakeinbox.com",
	"getnada.com",
	"guerrillamail.com",
	"guerrillamail.net",
	"mailcatch.com",
	"maildrop.cc",
	"mailinator.com",
	"mailnesia.com",
	"mintemail.com",
	"mohmal.com",
	"sharklasers.com",
	"spamgourmet.com",
	"temp-mail.org",
	"tempmail.com",
	"tempmailo.com",
	"throwawaymail.com",
	"trashmail.com",
	"trashmail.de",
	"yopmail.com",
	"yopmail.net",
	"emailondeck.com",
	"burnermail.io",
	"discard.email",
	"mailpoof.com",
	"tempr.email",
	"spambox.us",
	"inboxkitten.com",
	"moakt.com",
	"tmail.ws",
	"mytemp.email",
	"harakirimail.com",
	"anonbox.net",
	"mailtemp.info",
	"emailfake.com",
	"33mail.com",
	"mvrht.net",
	"grr.la",
)

func domainSet(domains ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(domains))
	for _, d := range domains {
		set[d] = struct{}{}
	}
	return set
}

// IsDisposableEmail also rejects subdomains of listed providers.
func IsDisposableEmail(email string) bool {
	at := strings.LastIndexByte(email, '@')
	if at < 0 {
		return false
	}

	domain := strings.ToLower(email[at+1:])
	for domain != "" {
		if _, ok := disposableDomains[domain]; ok {
			return true
		}
		dot := strings.IndexByte(domain, '.')
		if dot < 0 {
			break
		}
		domain = domain[dot+1:]
	}
	return false
}
