package scoring

import (
	"net/url"
	"regexp"
	"strings"
)

// PhishingDomainLookup abstracts the persisted phishing-domain set so the
// URL analyzer does not depend on a concrete store implementation.
type PhishingDomainLookup interface {
	IsPhishingDomain(host string) bool
}

// URLResult is the output of the URL Risk Analyzer (C4).
type URLResult struct {
	RiskIncrement int
	Indicators    []string
}

var urlRe = regexp.MustCompile(`https?://[^\s<>"']+`)

// trailingPunct is sentence punctuation that commonly follows a URL in free
// text ("click http://evil.xyz.") but is never part of the URL itself.
const trailingPunct = ".,;:!?)'\""

var suspiciousTLDs = map[string]struct{}{
	"xyz": {}, "top": {}, "click": {}, "gq": {}, "tk": {}, "ru": {}, "ml": {},
	"ga": {}, "cf": {}, "work": {}, "link": {}, "online": {}, "site": {},
	"website": {}, "space": {}, "pw": {},
}

var phishingURLKeywords = []string{
	"verify", "verification", "update", "bank", "kyc", "reward", "rewards",
	"urgent", "secure", "login", "account", "confirm", "activation",
	"unlock", "suspend", "blocked", "refund",
}

// AnalyzeURLs extracts http(s) URLs from text and scores them against the
// phishing-domain store and heuristics (spec.md §4.4).
func AnalyzeURLs(text string, domains PhishingDomainLookup) URLResult {
	urls := urlRe.FindAllString(text, -1)
	if len(urls) == 0 {
		return URLResult{}
	}

	total := 0
	var indicators []string

	for _, rawMatch := range urls {
		raw := strings.TrimRight(rawMatch, trailingPunct)
		parsed, err := url.Parse(raw)
		if err != nil || parsed.Host == "" {
			continue
		}
		host := strings.ToLower(parsed.Hostname())

		if domains != nil && domains.IsPhishingDomain(host) {
			return URLResult{RiskIncrement: 80, Indicators: []string{"Known phishing domain"}}
		}

		matched := false

		tld := tldOf(host)
		if _, bad := suspiciousTLDs[tld]; bad {
			total += 15
			indicators = append(indicators, "Suspicious domain TLD: ."+tld)
			matched = true
		}

		lowerURL := strings.ToLower(raw)
		kwHits := 0
		for _, kw := range phishingURLKeywords {
			if strings.Contains(lowerURL, kw) {
				kwHits++
				indicators = append(indicators, "Suspicious URL keyword: "+kw)
			}
		}
		if kwHits > 0 {
			inc := kwHits * 5
			if inc > 15 {
				inc = 15
			}
			total += inc
			matched = true
		}

		if !matched {
			total += 5
			indicators = append(indicators, "Message contains URL")
		}
	}

	if total > 40 {
		total = 40
	}

	return URLResult{
		RiskIncrement: total,
		Indicators:    dedupStrings(indicators),
	}
}

func tldOf(host string) string {
	parts := strings.Split(host, ".")
	if len(parts) < 2 {
		return ""
	}
	return parts[len(parts)-1]
}
