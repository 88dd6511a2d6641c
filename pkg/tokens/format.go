package tokens

import (
	"math"
	"strconv"
)

func roundHalfUp(v float64) float64 {
	return math.Floor(v + 0.5)
}

func trimFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
