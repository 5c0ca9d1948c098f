package tracking

import "strings"

// CarrierSpec describes one known carrier: its canonical display form, the
// aliases matched against message text, and localized tracking keywords used
// by the parser to anchor tracking-number candidates.
type CarrierSpec struct {
	Name     string
	Aliases  []string
	Keywords []string
}

// Carriers is the closed carrier dictionary. It is the single source of the
// canonical carrier form. Order is significant: the first entry whose alias
// matches wins, so short ambiguous aliases sit at the end.
var Carriers = []CarrierSpec{
	{Name: "Australia Post", Aliases: []string{"australia post", "auspost"}},
	{Name: "StarTrack", Aliases: []string{"startrack", "star track"}},
	{Name: "Korea Post", Aliases: []string{"korea post", "koreapost", "우체국"}, Keywords: []string{"등기번호", "운송장"}},
	{Name: "CJ Logistics", Aliases: []string{"cj logistics", "대한통운", "cj대한통운"}, Keywords: []string{"운송장번호", "운송장"}},
	{Name: "DHL", Aliases: []string{"dhl"}},
	{Name: "FedEx", Aliases: []string{"fedex"}},
	{Name: "TNT", Aliases: []string{"tnt"}},
	{Name: "Aramex", Aliases: []string{"aramex"}},
	{Name: "DPD", Aliases: []string{"dpd"}},
	{Name: "UPS", Aliases: []string{"ups"}},
	{Name: "EMS", Aliases: []string{"ems"}},
}

// baseTrackingKeywords anchor tracking-number extraction regardless of
// carrier.
var baseTrackingKeywords = []string{"tracking", "track", "consignment"}

// MatchCarrier returns the canonical form of the first dictionary entry whose
// alias occurs in text (case-insensitive substring), or FieldUnknown.
func MatchCarrier(text string) string {
	lower := strings.ToLower(text)
	for _, c := range Carriers {
		for _, alias := range c.Aliases {
			if strings.Contains(lower, alias) {
				return c.Name
			}
		}
	}
	return FieldUnknown
}

// KnownCarrier reports whether name is a canonical dictionary entry.
func KnownCarrier(name string) bool {
	for _, c := range Carriers {
		if strings.EqualFold(c.Name, name) {
			return true
		}
	}
	return false
}

// TrackingKeywords returns the base keywords plus every localized keyword the
// dictionary supplies, lowercased.
func TrackingKeywords() []string {
	out := make([]string, 0, len(baseTrackingKeywords)+4)
	out = append(out, baseTrackingKeywords...)
	for _, c := range Carriers {
		for _, kw := range c.Keywords {
			out = append(out, strings.ToLower(kw))
		}
	}
	return out
}
