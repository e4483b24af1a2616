// Package depreciation computes straight-line depreciation for fixed assets
// and posts it as one generated transaction per fiscal year.
package depreciation

import (
	"fmt"

	"github.com/aoiro-dev/aoiro/internal/model"
)

// Entry is one asset's share of a year's depreciation.
type Entry struct {
	AssetID   string
	AssetName string
	Amount    int64
	Skipped   bool
	Reason    string
}

// Plan is the depreciation computed for a year.
type Plan struct {
	Year    int
	Total   int64
	Entries []Entry
}

// AnnualCharge is the straight-line charge for one full year. The remainder
// of the division is never charged.
func AnnualCharge(asset model.FixedAsset) int64 {
	if asset.UsefulLife <= 0 {
		return 0
	}
	return asset.AcquisitionCost / int64(asset.UsefulLife)
}

// Schedule computes each asset's charge for year. An asset acquired in year
// Y with useful life L is charged in years Y through Y+L-1 and skipped
// otherwise.
func Schedule(assets []model.FixedAsset, year int) Plan {
	plan := Plan{Year: year, Entries: make([]Entry, 0, len(assets))}
	for _, a := range assets {
		e := Entry{AssetID: a.ID, AssetName: a.Name}
		acquired := a.AcquisitionDate.Year()
		switch {
		case year < acquired:
			e.Skipped = true
			e.Reason = fmt.Sprintf("取得日（%d年）より前の年度です", acquired)
		case year >= acquired+a.UsefulLife:
			e.Skipped = true
			e.Reason = fmt.Sprintf("耐用年数（%d年）を超過しています", a.UsefulLife)
		default:
			e.Amount = AnnualCharge(a)
			plan.Total += e.Amount
		}
		plan.Entries = append(plan.Entries, e)
	}
	return plan
}
