package lookup

import (
	"testing"

	"abkpi/domain/grid"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testData() *grid.Grid {
	return grid.New([][]string{
		{"Visits", "10,000", "10,100"},
		{"Step 1 > Product View", "5000", "5100"},
		{"Cart_Add (PC)", "1200", "1300"},
		{"Cart Views", "900", ""},
		{"Checkout Start", "800", "n/a"},
		{"Orders", "400", "450"},
		{"Orders (2)", "1", "2"},
		{"Revenue", "1 234 567", "1,300,000"},
	})
}

func TestFindNormalized(t *testing.T) {
	l := New(testData())

	v, ok := l.Find("visits", 1)
	require.True(t, ok)
	assert.Equal(t, 10000.0, v)

	v, ok = l.Find("Product-View", 2)
	require.True(t, ok)
	assert.Equal(t, 5100.0, v)

	v, ok = l.Find("Orders", 2)
	require.True(t, ok)
	assert.Equal(t, 450.0, v, "first matching row wins")

	v, ok = l.Find("Revenue", 1)
	require.True(t, ok)
	assert.Equal(t, 1234567.0, v)
}

func TestFindFallbackStrategies(t *testing.T) {
	l := New(testData())

	row, ok := l.Row("2_Cart Add")
	require.True(t, ok, "core keyword fallback")
	assert.Equal(t, 2, row)

	row, ok = l.Row("Add to cart")
	require.True(t, ok, "keyword pair fallback")
	assert.Equal(t, 2, row)

	row, ok = l.Row("check-out")
	require.True(t, ok)
	assert.Equal(t, 4, row)
}

func TestFindMisses(t *testing.T) {
	l := New(testData())

	_, ok := l.Find("Bounce Rate", 1)
	assert.False(t, ok, "unknown label")

	_, ok = l.Find("Cart Views", 2)
	assert.False(t, ok, "blank cell")

	_, ok = l.Find("Checkout Start", 2)
	assert.False(t, ok, "placeholder cell")

	_, ok = l.Find("Visits", 9)
	assert.False(t, ok, "column outside the grid")
}

func TestMatchersIndividually(t *testing.T) {
	labels := []string{"visits", "cartaddpc", "orders"}

	_, ok := CoreKeyword{MinLength: 5}.Match("Visit", labels)
	assert.False(t, ok, "short cores are ignored")

	row, ok := ExactNormalized{}.Match("ORDERS", labels)
	assert.True(t, ok)
	assert.Equal(t, 2, row)

	_, ok = KeywordPair{Words: []string{"cart", "add"}, Keyword: "cartadd"}.Match("cart", labels)
	assert.False(t, ok, "every word of the pair is required")

	_, ok = ExactNormalized{}.Match("", labels)
	assert.False(t, ok, "empty query never matches")
}

func TestWithMatchers(t *testing.T) {
	l := New(testData(), WithMatchers(ExactNormalized{}))
	_, ok := l.Row("Add to cart")
	assert.False(t, ok)
}
