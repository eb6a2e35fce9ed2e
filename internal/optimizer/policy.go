package optimizer

import (
	"github.com/gsindri/kaupa-skil-sub004/pkg/config"
	"github.com/shopspring/decimal"
)

// Policy holds the tunable heuristics of the suggestion pass. All values are
// fractions of a supplier's subtotal.
type Policy struct {
	// TopUpMaxShare caps the top-up amount suggested to unlock free delivery.
	TopUpMaxShare decimal.Decimal
	// FeeShareThreshold marks delivery cost as disproportionate.
	FeeShareThreshold decimal.Decimal
	// InefficientThresholdShare marks a subtotal as far below the free threshold.
	InefficientThresholdShare decimal.Decimal
}

func DefaultPolicy() Policy {
	return Policy{
		TopUpMaxShare:             decimal.RequireFromString("0.20"),
		FeeShareThreshold:         decimal.RequireFromString("0.15"),
		InefficientThresholdShare: decimal.RequireFromString("0.5"),
	}
}

// PolicyFromConfig converts the env-configured floats, rounded to four places.
func PolicyFromConfig(cfg config.OptimizerConfig) Policy {
	return Policy{
		TopUpMaxShare:             decimal.NewFromFloat(cfg.TopUpMaxShare).Round(4),
		FeeShareThreshold:         decimal.NewFromFloat(cfg.FeeShareThreshold).Round(4),
		InefficientThresholdShare: decimal.NewFromFloat(cfg.InefficientThresholdShare).Round(4),
	}
}
