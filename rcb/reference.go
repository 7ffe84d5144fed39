package rcb

import "strings"

// NormalizeReference tolerates the handful of RCB reference spellings
// seen in the wild: a domain and item already split cleanly, a single
// "LD/LN$BR$name" or "LD LN$BR$name" string passed in the domainID
// argument with itemID left empty, or stray leading/trailing
// whitespace around either part. It does not validate that the
// reference names a real RCB — that's discovered at SetRCBValues time.
func NormalizeReference(domainID, itemID string) (string, string) {
	domainID = strings.TrimSpace(domainID)
	itemID = strings.TrimSpace(itemID)

	if itemID == "" && (strings.Contains(domainID, "$BR$") || strings.Contains(domainID, "$RP$")) {
		domainID, itemID = splitCombinedReference(domainID)
	}

	return domainID, itemID
}

// splitCombinedReference splits "LD/LN$BR$name" or "LD LN$BR$name" into
// its logical-device and logical-node-plus-RCB parts, tolerating either
// separator between LD and LN.
func splitCombinedReference(ref string) (string, string) {
	sep := "/"
	if !strings.Contains(ref, "/") {
		sep = " "
	}
	parts := strings.SplitN(ref, sep, 2)
	if len(parts) != 2 {
		return ref, ""
	}
	return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
}
