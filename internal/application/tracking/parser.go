package tracking

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/glowlab/backend/internal/domain/tracking"
)

const (
	// orderKeywordWindow is how far after the literal "order" the digits may
	// start.
	orderKeywordWindow = 32
	// trackingKeywordWindow is the maximum distance between a candidate
	// tracking number and the nearest tracking keyword.
	trackingKeywordWindow = 200
	trackingMinLen        = 8
	trackingMaxLen        = 40
	excerptBodyLimit      = 240
)

var orderHashPattern = regexp.MustCompile(`#([0-9]+)`)

// ParseNotification extracts a structured notification from a raw partner
// email. It is a total function: fields that cannot be extracted are set to
// the "unknown" sentinel and the record is flagged for operator input. It
// never fails.
//
// Matching runs over the subject and body concatenated, since partner mail
// scatters the order number, carrier and tracking code across both.
func ParseNotification(msg tracking.RawMessage) tracking.ShipmentNotification {
	text := msg.Subject + "\n" + msg.TextBody

	n := tracking.ShipmentNotification{
		ID:             msg.ID,
		ReceivedAt:     msg.ReceivedAt.UTC(),
		OrderNumber:    extractOrderNumber(text),
		Carrier:        tracking.MatchCarrier(text),
		TrackingNumber: extractTrackingNumber(text),
		RawExcerpt:     excerpt(msg),
	}
	n.NeedsInput = n.OrderNumber == tracking.FieldUnknown ||
		n.Carrier == tracking.FieldUnknown ||
		n.TrackingNumber == tracking.FieldUnknown
	return n
}

// extractOrderNumber finds the first "#"-prefixed digit run, with leading
// zeros preserved. Failing that, it accepts digits starting within
// orderKeywordWindow characters after a case-insensitive literal "order".
func extractOrderNumber(text string) string {
	if m := orderHashPattern.FindStringSubmatch(text); m != nil {
		return m[1]
	}

	lower := strings.ToLower(text)
	offset := 0
	for {
		i := strings.Index(lower[offset:], "order")
		if i < 0 {
			break
		}
		start := offset + i + len("order")
		if run := digitRunFrom(text, start, orderKeywordWindow); run != "" {
			return run
		}
		offset = start
	}
	return tracking.FieldUnknown
}

// digitRunFrom returns the first digit run starting within window bytes of
// start. The run itself may extend past the window.
func digitRunFrom(text string, start, window int) string {
	end := start + window
	if end > len(text) {
		end = len(text)
	}
	for i := start; i < end; i++ {
		if text[i] < '0' || text[i] > '9' {
			continue
		}
		j := i
		for j < len(text) && text[j] >= '0' && text[j] <= '9' {
			j++
		}
		return text[i:j]
	}
	return ""
}

type span struct {
	start, end int
}

// extractTrackingNumber picks the longest [A-Z0-9] run of plausible length
// that sits within trackingKeywordWindow characters of a tracking keyword.
// Length ties break toward the candidate textually closest to a keyword.
func extractTrackingNumber(text string) string {
	keywords := keywordSpans(text)
	if len(keywords) == 0 {
		return tracking.FieldUnknown
	}

	best := ""
	bestDist := 0
	for _, cand := range candidateRuns(text) {
		dist, ok := minDistance(cand, keywords)
		if !ok || dist > trackingKeywordWindow {
			continue
		}
		val := text[cand.start:cand.end]
		if len(val) > len(best) || (len(val) == len(best) && dist < bestDist) {
			best = val
			bestDist = dist
		}
	}
	if best == "" {
		return tracking.FieldUnknown
	}
	return best
}

// keywordSpans locates every tracking keyword occurrence, case-insensitive.
func keywordSpans(text string) []span {
	lower := strings.ToLower(text)
	var spans []span
	for _, kw := range tracking.TrackingKeywords() {
		offset := 0
		for {
			i := strings.Index(lower[offset:], kw)
			if i < 0 {
				break
			}
			start := offset + i
			spans = append(spans, span{start: start, end: start + len(kw)})
			offset = start + len(kw)
		}
	}
	return spans
}

// candidateRuns returns the maximal [A-Z0-9] runs of acceptable length.
// Runs that are themselves a shouted keyword (e.g. "TRACKING") are dropped.
func candidateRuns(text string) []span {
	var runs []span
	i := 0
	for i < len(text) {
		if !isTrackingChar(text[i]) {
			i++
			continue
		}
		j := i
		for j < len(text) && isTrackingChar(text[j]) {
			j++
		}
		if n := j - i; n >= trackingMinLen && n <= trackingMaxLen && !isKeywordRun(text[i:j]) {
			runs = append(runs, span{start: i, end: j})
		}
		i = j
	}
	return runs
}

func isTrackingChar(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

func isKeywordRun(run string) bool {
	for _, kw := range tracking.TrackingKeywords() {
		if strings.EqualFold(run, kw) {
			return true
		}
	}
	return false
}

// minDistance returns the gap in bytes between a candidate and the nearest
// keyword occurrence. Overlapping spans have distance zero.
func minDistance(cand span, keywords []span) (int, bool) {
	found := false
	min := 0
	for _, kw := range keywords {
		var d int
		switch {
		case kw.end <= cand.start:
			d = cand.start - kw.end
		case cand.end <= kw.start:
			d = kw.start - cand.end
		default:
			d = 0
		}
		if !found || d < min {
			min = d
			found = true
		}
	}
	return min, found
}

// excerpt preserves the subject and the head of the body verbatim for the
// dashboard's correction view, cut on a rune boundary.
func excerpt(msg tracking.RawMessage) string {
	body := strings.TrimSpace(msg.TextBody)
	if len(body) > excerptBodyLimit {
		cut := excerptBodyLimit
		for cut > 0 && !utf8.RuneStart(body[cut]) {
			cut--
		}
		body = body[:cut]
	}
	if body == "" {
		return msg.Subject
	}
	return msg.Subject + "\n" + body
}
