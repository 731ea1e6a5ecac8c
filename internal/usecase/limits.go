package usecase

// FailsafeMaxArticles is the per-source ceiling no caller or config can raise.
const FailsafeMaxArticles = 50

// DefaultMaxArticles applies when neither caller nor config choose a cap.
const DefaultMaxArticles = 10

// LimitPolicy computes the effective per-source article cap.
type LimitPolicy struct {
	Default int
}

// NewLimitPolicy clamps the configured default into [1, FailsafeMaxArticles].
func NewLimitPolicy(def int) LimitPolicy {
	switch {
	case def <= 0:
		def = DefaultMaxArticles
	case def > FailsafeMaxArticles:
		def = FailsafeMaxArticles
	}
	return LimitPolicy{Default: def}
}

// MaxArticles returns the default for requested <= 0, otherwise
// min(requested, FailsafeMaxArticles).
func (p LimitPolicy) MaxArticles(requested int) int {
	if requested <= 0 {
		if p.Default <= 0 {
			return DefaultMaxArticles
		}
		return min(p.Default, FailsafeMaxArticles)
	}
	return min(requested, FailsafeMaxArticles)
}
