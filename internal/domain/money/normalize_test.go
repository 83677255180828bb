package money

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestNormalize_NativeNumbers(t *testing.T) {
	assert.True(t, decimal.NewFromFloat(1234.56).Equal(Normalize(1234.56)))
	assert.True(t, decimal.NewFromInt(42).Equal(Normalize(42)))
	assert.True(t, decimal.NewFromInt(42).Equal(Normalize(int64(42))))
	assert.True(t, decimal.NewFromInt(7).Equal(Normalize(uint(7))))
}

func TestNormalize_NumericStrings(t *testing.T) {
	assert.True(t, decimal.NewFromFloat(99.90).Equal(Normalize("99.90")))
	assert.True(t, decimal.NewFromFloat(99.90).Equal(Normalize("  99.90  ")))
	assert.True(t, decimal.NewFromFloat(-12.5).Equal(Normalize("-12.5")))
}

func TestNormalize_WrapperObject(t *testing.T) {
	wrapped := map[string]interface{}{WrapperField: "1050.75"}
	assert.True(t, decimal.NewFromFloat(1050.75).Equal(Normalize(wrapped)))

	nested := map[string]interface{}{WrapperField: 200}
	assert.True(t, decimal.NewFromInt(200).Equal(Normalize(nested)))

	strMap := map[string]string{WrapperField: "33.33"}
	assert.True(t, decimal.NewFromFloat(33.33).Equal(Normalize(strMap)))
}

func TestNormalize_JSONNumber(t *testing.T) {
	var payload map[string]interface{}
	dec := json.NewDecoder(strings.NewReader(`{"amount": 150.25}`))
	dec.UseNumber()
	assert.NoError(t, dec.Decode(&payload))
	assert.True(t, decimal.NewFromFloat(150.25).Equal(Normalize(payload["amount"])))
}

func TestNormalize_MalformedInputYieldsZero(t *testing.T) {
	cases := []interface{}{
		nil,
		"not a number",
		"",
		"   ",
		map[string]interface{}{"other_field": "10"},
		map[string]interface{}{WrapperField: "garbage"},
		[]int{1, 2, 3},
		struct{}{},
		true,
	}
	for _, c := range cases {
		assert.True(t, decimal.Zero.Equal(Normalize(c)), "input %#v", c)
	}
}

func TestNormalizeField(t *testing.T) {
	m := map[string]interface{}{"monto": "500.00"}
	assert.True(t, decimal.NewFromInt(500).Equal(NormalizeField(m, "monto")))
	assert.True(t, decimal.Zero.Equal(NormalizeField(m, "missing")))
	assert.True(t, decimal.Zero.Equal(NormalizeField(nil, "monto")))
}
