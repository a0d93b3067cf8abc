package sessionguard

import "errors"

var (
	ErrReleased           = errors.New("sessionguard.released")
	ErrAlreadySubscribed  = errors.New("sessionguard.already_subscribed")
	ErrSubscriptionFailed = errors.New("sessionguard.subscription_failed")
	ErrCheckTimeout       = errors.New("sessionguard.check_timeout")
	ErrNilOracle          = errors.New("sessionguard.nil_oracle")
	ErrInvalidToken       = errors.New("sessionguard.invalid_token")
	ErrInvalidTTL         = errors.New("sessionguard.invalid_ttl")
	ErrNotStarted         = errors.New("sessionguard.provider_not_started")
	ErrProviderClosed     = errors.New("sessionguard.provider_closed")
	ErrOracleUnavailable  = errors.New("sessionguard.oracle_unavailable")
)
