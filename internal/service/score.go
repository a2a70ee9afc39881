package service

// Advisory texts shown on the dashboard. TipAPIError accompanies a degraded
// lookup so a missing-credential response is never mistaken for a clean one.
const (
	TipRemediate = "Your email appears in known breaches. Change the passwords on affected accounts and enable two-factor authentication."
	TipReassure  = "No known breaches for this email. Keep using unique passwords per site."
	TipAPIError  = "The breach lookup service declined the request (missing or invalid API credential). Shown results are not verified."
)

// ComputeScore derives the privacy score from a breach count.
// The result is always within [0, 100].
func ComputeScore(breachesCount int) int {
	score := 100 - 10*breachesCount
	if score < 0 {
		return 0
	}
	return score
}

// AdvisoryTip returns the dashboard advisory for a verified breach count.
func AdvisoryTip(breachesCount int) string {
	if breachesCount > 0 {
		return TipRemediate
	}
	return TipReassure
}
