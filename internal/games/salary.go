package games

import (
	"context"
)

const salaryTag = "salary"

// ClaimSalary pays the periodic salary to a subject holding the salary perk.
// It returns ok=false, with nothing appended, when the subject lacks the
// perk or claimed within the salary interval.
func (g *Games) ClaimSalary(ctx context.Context, subject int64) (int64, bool, error) {
	entitled, err := g.perks.Has(ctx, subject, salaryTag)
	if err != nil {
		return 0, false, err
	}
	if !entitled {
		return 0, false, nil
	}

	interval, err := g.settings.SalaryInterval(ctx)
	if err != nil {
		return 0, false, err
	}
	ready, err := g.cooldown.Ready(ctx, subject, salaryTag, interval)
	if err != nil {
		return 0, false, err
	}
	if !ready {
		return 0, false, nil
	}

	// Mark before paying: a crash in between skips one salary rather than
	// paying it twice.
	if err := g.cooldown.Mark(ctx, subject, salaryTag); err != nil {
		return 0, false, err
	}
	amount, err := g.settings.SalaryAmount(ctx)
	if err != nil {
		return 0, false, err
	}
	if _, err := g.ledger.ChangeBalance(ctx, subject, amount, "salary"); err != nil {
		return 0, false, err
	}
	return amount, true, nil
}
