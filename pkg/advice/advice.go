// Package advice is the keyword-driven financial advice responder.
//
// A query is lower-cased and tested against ordered keyword groups; the
// first group with a matching substring decides the intent, and the intent
// selects a canned Hindi or English response block. There is no language
// model or NLP involved.
package advice

import (
	"strings"
	"unicode"

	"github.com/trademate/supportdesk/pkg/debug"
)

// Intent labels the kind of question a query was classified as.
type Intent string

const (
	IntentMutualFund Intent = "mutual_fund_query"
	IntentTrading    Intent = "trading_query"
	IntentTax        Intent = "tax_query"
	IntentAccount    Intent = "account_query"
	IntentGeneral    Intent = "general_query"
)

const (
	// Category is attached to every piece of advice.
	Category = "financial_advice"

	// Confidence is the fixed confidence reported for keyword matches.
	Confidence = 0.95
)

// rule maps a keyword group to an intent. Keywords are lower-case.
type rule struct {
	intent   Intent
	keywords []string
}

// rules are evaluated in order; the first match wins.
var rules = []rule{
	{IntentMutualFund, []string{"mutual fund", "म्यूचुअल फंड", "sip"}},
	{IntentTrading, []string{"stock", "share", "शेयर", "trading"}},
	{IntentTax, []string{"tax", "टैक्स", "80c"}},
	{IntentAccount, []string{"balance", "account", "बैलेंस", "खाता", "खाते"}},
}

// Advice is the responder's answer to one query.
type Advice struct {
	Intent     Intent   `json:"intent"`
	Language   Language `json:"language"`
	Text       string   `json:"response"`
	Category   string   `json:"category"`
	Confidence float64  `json:"confidence"`
}

// Classify returns the intent for query.
func Classify(query string) Intent {
	q := strings.ToLower(query)
	for _, r := range rules {
		for _, kw := range r.keywords {
			if strings.Contains(q, kw) {
				return r.intent
			}
		}
	}
	return IntentGeneral
}

// Respond classifies query and renders the matching template in the
// language resolved from lang (see ResolveLanguage).
func Respond(query, lang string) Advice {
	intent := Classify(query)
	resolved := ResolveLanguage(lang)

	debug.Log("advice", "classified query",
		"intent", intent, "language", resolved, "query", debug.Truncate(query, 80))

	return Advice{
		Intent:     intent,
		Language:   resolved,
		Text:       render(templates[intent][resolved], query),
		Category:   Category,
		Confidence: Confidence,
	}
}

// Keywords returns the keyword groups in evaluation order, keyed by intent.
func Keywords() map[Intent][]string {
	out := make(map[Intent][]string, len(rules))
	for _, r := range rules {
		out[r.intent] = append([]string(nil), r.keywords...)
	}
	return out
}

// FallbackText is the Hindi holding reply used when a support request
// cannot be processed.
func FallbackText(query string) string {
	return render(fallbackText, query)
}

// DetectLanguage guesses the language of free text by script: any
// Devanagari letter means Hindi.
func DetectLanguage(text string) Language {
	for _, r := range text {
		if unicode.Is(unicode.Devanagari, r) {
			return Hindi
		}
	}
	return English
}

func render(tmpl, query string) string {
	return strings.ReplaceAll(tmpl, "{query}", query)
}
