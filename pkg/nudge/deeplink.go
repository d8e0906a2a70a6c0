package nudge

import "fmt"

// StaticLinks is the default deep-link builder. App traffic gets the native
// scheme, web gets a full URL, and message channels get a short tracked
// link the messaging system can expand.
type StaticLinks struct {
	Scheme  string
	BaseURL string
}

// DefaultLinks returns the builder used when no deep-link collaborator is
// injected.
func DefaultLinks() StaticLinks {
	return StaticLinks{Scheme: "platewise", BaseURL: "https://platewise.app"}
}

// BuildDeepLink resolves path into a link appropriate for the channel.
func (l StaticLinks) BuildDeepLink(path, channel, journey, locale string) string {
	switch channel {
	case "app":
		return fmt.Sprintf("%s:/%s", l.Scheme, path)
	case "web":
		return fmt.Sprintf("%s%s?journey=%s&lang=%s", l.BaseURL, path, journey, locale)
	default:
		// sms/whatsapp get a short link; the messaging system resolves it.
		return fmt.Sprintf("%s/l%s?j=%s", l.BaseURL, path, journey)
	}
}
