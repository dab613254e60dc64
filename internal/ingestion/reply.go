package ingestion

import (
	"regexp"
	"strconv"
	"strings"
)

// Quoted-reply markers. The body is cut at the earliest marker found across
// all patterns, not at the first pattern that happens to match.
var (
	quoteLineRe  = regexp.MustCompile(`(?m)^>`)
	wroteLineRe  = regexp.MustCompile(`(?mi)^On .+wrote:`)
	origMsgRe    = regexp.MustCompile(`(?mi)^-{2,}\s*Original Message\s*-{2,}`)
	headerRuleRe = regexp.MustCompile(`(?m)^_{8,}\s*\n\s*From:`)
)

// ticketMarkerRe matches the subject-line convention for threading:
// "[Ticket #42]" or "[#42]" or "[42]", case-insensitive.
var ticketMarkerRe = regexp.MustCompile(`(?i)\[(?:ticket\s*)?#?(\d+)\]`)

// subjectPrefixRe strips any run of leading Re:/Fwd:/Fw: prefixes.
var subjectPrefixRe = regexp.MustCompile(`(?i)^(?:(?:re|fwd?|fw)\s*:\s*)+`)

// ExtractReplyText removes quoted reply content from an email body using a
// small heuristic set. Only mechanical quote stripping happens here; no
// attempt is made to understand the content.
func ExtractReplyText(body string) string {
	cut := len(body)
	for _, re := range []*regexp.Regexp{quoteLineRe, wroteLineRe, origMsgRe, headerRuleRe} {
		if loc := re.FindStringIndex(body); loc != nil && loc[0] < cut {
			cut = loc[0]
		}
	}
	return strings.TrimSpace(body[:cut])
}

// TicketNumberFromSubject extracts the threading marker from a subject
// line. The second return value is false when no marker is present.
func TicketNumberFromSubject(subject string) (int64, bool) {
	match := ticketMarkerRe.FindStringSubmatch(subject)
	if match == nil {
		return 0, false
	}
	number, err := strconv.ParseInt(match[1], 10, 64)
	if err != nil {
		return 0, false
	}
	return number, true
}

// CleanSubject strips reply/forward prefixes and surrounding whitespace.
func CleanSubject(subject string) string {
	return strings.TrimSpace(subjectPrefixRe.ReplaceAllString(strings.TrimSpace(subject), ""))
}
