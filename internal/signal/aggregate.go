package signal

import (
	"math"
	"strings"

	"github.com/front-depiction/cli-stock/internal/model"
)

// consensusQuorum is the fraction of the batch size a side's summed
// strength must clear before it wins.
const consensusQuorum = 0.3

// Aggregate reduces a batch of signals to one consensus signal. An
// empty batch is a Hold. The winning side's strength is its summed
// strength normalized by batch size, capped at 1; its reasons are
// joined into the consensus reason.
func Aggregate(signals []model.Signal) model.Signal {
	if len(signals) == 0 {
		return model.HoldSignal(0)
	}

	var (
		buyScore    float64
		sellScore   float64
		buyReasons  []string
		sellReasons []string
		latest      int64
	)
	for _, s := range signals {
		if s.Timestamp > latest {
			latest = s.Timestamp
		}
		switch s.Action {
		case model.ActionBuy:
			buyScore += s.Strength
			if s.Reason != "" {
				buyReasons = append(buyReasons, s.Reason)
			}
		case model.ActionSell:
			sellScore += s.Strength
			if s.Reason != "" {
				sellReasons = append(sellReasons, s.Reason)
			}
		}
	}

	n := float64(len(signals))
	quorum := consensusQuorum * n

	switch {
	case buyScore > sellScore && buyScore > quorum:
		strength := math.Min(1, buyScore/n)
		return model.BuySignal(strength, latest, strings.Join(buyReasons, "; "))
	case sellScore > buyScore && sellScore > quorum:
		strength := math.Min(1, sellScore/n)
		return model.SellSignal(strength, latest, strings.Join(sellReasons, "; "))
	default:
		return model.HoldSignal(latest)
	}
}
