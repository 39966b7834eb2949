package view

import (
	"github.com/Iron-Ham/flightdash/internal/cursor"
	"github.com/Iron-Ham/flightdash/internal/numeric"
	"github.com/Iron-Ham/flightdash/internal/series"
)

// LossView is the derived reconstruction-loss pane.
type LossView struct {
	Status Status `json:"status"`
	Error  string `json:"error,omitempty"`
	// Points is the visible slice within the time filter.
	Points []series.LossPoint `json:"points"`
	// Below and Outliers split Points by Threshold.
	Below     []series.LossPoint `json:"below"`
	Outliers  []series.LossPoint `json:"outliers"`
	Threshold float64            `json:"threshold"`
	Selected  *series.LossPoint  `json:"selected,omitempty"`
	Total     int                `json:"total"`
}

// Loss slices the series to the time filter and flags values at or above the
// configured percentile of the visible slice.
func Loss(raw Raw[series.LossSeries], snap cursor.Snapshot, opts Options) LossView {
	status, msg, ok := baseStatus(raw, func(ls series.LossSeries) bool { return len(ls) == 0 })
	if !ok {
		return LossView{Status: status, Error: msg}
	}

	ls := raw.Value
	v := LossView{Total: len(ls)}
	for _, p := range ls {
		if series.InFilter(snap.TimeFilter, float64(p.T)) {
			v.Points = append(v.Points, p)
		}
	}
	if len(v.Points) == 0 {
		v.Status = StatusEmpty
		return v
	}

	v.Threshold = numeric.Percentile(series.LossSeries(v.Points).Values(), opts.Percentile)
	for _, p := range v.Points {
		if p.Value >= v.Threshold {
			v.Outliers = append(v.Outliers, p)
		} else {
			v.Below = append(v.Below, p)
		}
	}

	if c := snap.Cursor; c != nil {
		for i := range v.Points {
			if v.Points[i].T == *c {
				sel := v.Points[i]
				v.Selected = &sel
				break
			}
		}
	}

	v.Status = StatusReady
	return v
}
