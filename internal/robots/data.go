package robots

import "time"

type DecisionReason string

const (
	ReasonAllowed      DecisionReason = "allowed"
	ReasonDisallowed   DecisionReason = "disallowed"
	ReasonPolicyOff    DecisionReason = "policy_disabled"
	ReasonUnavailable  DecisionReason = "policy_unavailable"
	ReasonNonFetchable DecisionReason = "non_fetchable_scheme"
)

// Decision is the gate's verdict for a single URL. CrawlDelay is nil
// unless the matched policy group declares one.
type Decision struct {
	allowed    bool
	reason     DecisionReason
	crawlDelay *time.Duration
}

func (d Decision) Allowed() bool {
	return d.allowed
}

func (d Decision) Reason() DecisionReason {
	return d.reason
}

func (d Decision) CrawlDelay() *time.Duration {
	return d.crawlDelay
}

func allow(reason DecisionReason, crawlDelay *time.Duration) Decision {
	return Decision{allowed: true, reason: reason, crawlDelay: crawlDelay}
}

func deny(reason DecisionReason) Decision {
	return Decision{allowed: false, reason: reason}
}
