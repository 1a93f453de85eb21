package analysis

// Tier is the coarse health band of a score.
type Tier string

const (
	TierExemplary      Tier = "exemplary"
	TierHealthy        Tier = "healthy"
	TierNeedsAttention Tier = "needs_attention"
	TierCritical       Tier = "critical"
)

// Diagnosis is the fixed icon and text for a tier.
type Diagnosis struct {
	Tier Tier   `json:"tier"`
	Icon string `json:"icon"`
	Text string `json:"text"`
}

// Diagnose maps a final score to its tier.
func Diagnose(score int) Diagnosis {
	switch {
	case score >= 85:
		return Diagnosis{TierExemplary, "🏆", "Exemplary finances! You are managing your money masterfully."}
	case score >= 70:
		return Diagnosis{TierHealthy, "✅", "Healthy finances. Keep it up and apply the tips to improve even more."}
	case score >= 50:
		return Diagnosis{TierNeedsAttention, "⚠️", "Your finances need attention. Follow the tips to regain control."}
	default:
		return Diagnosis{TierCritical, "🚨", "Critical situation. Take urgent action to avoid debt."}
	}
}
