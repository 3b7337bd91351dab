package calculator

import (
	"strings"

	"github.com/tabsplit/tabsplit/internal/models"
)

// AlreadyRecorded reports whether the proposed payment has already been
// recorded as a completed settlement: same payer, same receiver, same
// currency, amount equal within 0.01.
//
// The check is a stateless predicate over the persisted settlement history
// and must be re-evaluated against fresh history every time. Tracking
// "already clicked" plan entries by their transient identity does not work:
// the simplifier's output changes after every recorded payment, so the same
// underlying debt reappears under a new identity and could be paid twice.
// Pending settlements do not count; only completed ones block a repeat.
func AlreadyRecorded(proposed models.Payment, history []models.Settlement) bool {
	for _, s := range history {
		if s.Status != models.SettlementCompleted {
			continue
		}
		if s.FromUserID != proposed.FromUserID || s.ToUserID != proposed.ToUserID {
			continue
		}
		if !strings.EqualFold(s.Currency, proposed.Currency) {
			continue
		}
		if s.Amount.Sub(proposed.Amount).Abs().LessThanOrEqual(amountEpsilon) {
			return true
		}
	}
	return false
}
