package model

import (
	"math"
	"strconv"
	"time"
)

// TimingLabel renders the signed distance between a submission and its
// deadline as an hours label, rounded to two decimal places. A submission
// exactly on the deadline counts as "0 hours late".
func TimingLabel(submittedAt, deadline time.Time) string {
	diffMs := submittedAt.Sub(deadline).Milliseconds()
	hours := math.Round(math.Abs(float64(diffMs))/3.6e6*100) / 100
	label := strconv.FormatFloat(hours, 'f', -1, 64)
	if diffMs < 0 {
		return label + " hours early"
	}
	return label + " hours late"
}
