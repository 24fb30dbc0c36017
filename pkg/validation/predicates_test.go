package validation

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckBounds(t *testing.T) {
	min, max := -50.0, 50.0
	for _, v := range []float64{-50, -49.999, 0, 12.5, 50} {
		assert.True(t, CheckMinimum(min, v), "min for %v", v)
		assert.True(t, CheckMaximum(max, v), "max for %v", v)
	}
	for _, v := range []float64{-50.0001, -1000, math.Inf(-1)} {
		assert.False(t, CheckMinimum(min, v), "min for %v", v)
	}
	for _, v := range []float64{50.0001, 1000, math.Inf(1)} {
		assert.False(t, CheckMaximum(max, v), "max for %v", v)
	}
}

func TestVerifyNumber(t *testing.T) {
	for _, v := range []float64{0, -3, 42.1, math.MaxFloat64, -math.SmallestNonzeroFloat64} {
		assert.True(t, VerifyNumber(v), "%v", v)
	}
	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		assert.False(t, VerifyNumber(v), "%v", v)
	}
}

func TestAllValuesNotZero(t *testing.T) {
	assert.False(t, AllValuesNotZero(0, 0))
	assert.True(t, AllValuesNotZero(0, 1))
	assert.True(t, AllValuesNotZero(5, 5))
	assert.False(t, AllValuesNotZero())
	assert.True(t, AllValuesNotZero(0, math.NaN()))
}

func TestSumOfValuesNotZero(t *testing.T) {
	assert.False(t, SumOfValuesNotZero(Pair{3, 3}, Pair{7, 7}))
	assert.True(t, SumOfValuesNotZero(Pair{3, 3}, Pair{7, 5}))
	assert.True(t, SumOfValuesNotZero(Pair{0, 2}, Pair{0, 0}))
	assert.False(t, SumOfValuesNotZero(Pair{0, 0}, Pair{0, 0}))
}
