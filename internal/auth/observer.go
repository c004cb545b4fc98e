package auth

// Observer は認証イベントの記録先。metrics.Collectorが実装する。
type Observer interface {
	// SessionExchanged はセッション交換の結果を記録する。
	SessionExchanged(result string)
	// IdentityResolved はリクエスト認証の結果を記録する。
	IdentityResolved(outcome Outcome)
	// AccessDenied は権限判定による拒否を記録する。
	AccessDenied(reason string)
}

// NopObserver は何も記録しないObserver。
type NopObserver struct{}

func (NopObserver) SessionExchanged(string)  {}
func (NopObserver) IdentityResolved(Outcome) {}
func (NopObserver) AccessDenied(string)      {}

var _ Observer = NopObserver{}
