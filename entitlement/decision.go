package entitlement

// Reason classifies why a Decision allowed or denied playback.
type Reason string

const (
	// Allow reasons
	ReasonTierBasic              Reason = "TIER_BASIC"
	ReasonExplicitGrant          Reason = "EXPLICIT_GRANT"
	ReasonSubscriptionSufficient Reason = "SUBSCRIPTION_SUFFICIENT"

	// Deny reasons
	ReasonVideoUnavailable Reason = "VIDEO_UNAVAILABLE"
	ReasonNoSubscription   Reason = "NO_SUBSCRIPTION"
	ReasonTierInsufficient Reason = "TIER_INSUFFICIENT"
)

// Decision is the outcome of an entitlement check. Denial is a normal
// value, never an error; the Matched* fields identify which subscription
// or grant carried an allow.
type Decision struct {
	Allowed               bool   `json:"allowed"`
	Reason                Reason `json:"reason"`
	MatchedSubscriptionID *uint  `json:"matched_subscription_id,omitempty"`
	MatchedGrantID        *uint  `json:"matched_grant_id,omitempty"`
}

func allow(reason Reason) Decision {
	return Decision{Allowed: true, Reason: reason}
}

func deny(reason Reason) Decision {
	return Decision{Allowed: false, Reason: reason}
}
