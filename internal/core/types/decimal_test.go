package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMustMoney(t *testing.T) {
	m := MustMoney("12.3400")
	assert.True(t, m.Equal(MustMoney("12.34")))
	assert.True(t, Zero().IsZero())

	_, err := NewMoneyFromString("abc")
	assert.Error(t, err)

	assert.Panics(t, func() { MustMoney("not-a-number") })
}
