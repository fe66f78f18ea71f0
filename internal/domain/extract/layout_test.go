package extract

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const layoutDoc = "Monthly owner report\nGross collected $900.00\nPaid to you $810.00\n"

func TestFingerprintIgnoresAmountsAndMonths(t *testing.T) {
	a := Fingerprint("Monthly owner report\nGross collected $900.00\nPaid to you $810.00\n")
	b := Fingerprint("Monthly owner report\nGross collected $1,250.00\nPaid to you $1,100.00\n")
	c := Fingerprint("A completely different header\nand more\nlines here\n")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestLayoutCacheLearnAndApply(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layouts.json")
	cache, err := NewLayoutCache(path, testLogger())
	require.NoError(t, err)

	fp := Fingerprint(layoutDoc)
	cache.Learn(fp, layoutDoc, map[string]string{
		"money_in": `gross\s+collected\s+\$([\d,]+\.?\d*)`,
		"eft":      `paid\s+to\s+you\s+\$([\d,]+\.?\d*)`,
	}, map[string]float64{"money_in": 900, "eft": 810})

	next := "Monthly owner report\nGross collected $950.00\nPaid to you $855.00\n"
	got := cache.Apply(fp, next)
	assert.Equal(t, map[string]float64{"money_in": 950, "eft": 855}, got)

	// Patterns survive a restart.
	reloaded, err := NewLayoutCache(path, testLogger())
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"money_in": 950, "eft": 855}, reloaded.Apply(fp, next))
}

func TestLayoutCacheRejectsBadPatterns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layouts.json")
	cache, err := NewLayoutCache(path, testLogger())
	require.NoError(t, err)

	fp := Fingerprint(layoutDoc)
	cache.Learn(fp, layoutDoc, map[string]string{
		"money_in":  `gross\s+collected\s+\$([\d,]+(`, // does not compile
		"money_out": `fees`,                           // no capture group
		"eft":       `\$([\d,]+\.?\d*)`,               // matches the wrong figure
	}, map[string]float64{"money_in": 900, "money_out": 90, "eft": 810})

	assert.Empty(t, cache.Apply(fp, layoutDoc))

	// Nothing was accepted, so nothing was persisted either.
	_, err = NewLayoutCache(path, testLogger())
	require.NoError(t, err)
}

func TestLayoutCacheRejectsValueMismatch(t *testing.T) {
	cache, err := NewLayoutCache(filepath.Join(t.TempDir(), "layouts.json"), testLogger())
	require.NoError(t, err)

	fp := Fingerprint(layoutDoc)

	// The pattern compiles and matches, but captures 810 where the
	// delegated call said 900. It must not be cached.
	cache.Learn(fp, layoutDoc, map[string]string{
		"money_in": `paid\s+to\s+you\s+\$([\d,]+\.?\d*)`,
	}, map[string]float64{"money_in": 900})

	assert.Empty(t, cache.Apply(fp, layoutDoc))
}

func TestLayoutCacheUnknownFingerprint(t *testing.T) {
	cache, err := NewLayoutCache(filepath.Join(t.TempDir(), "layouts.json"), testLogger())
	require.NoError(t, err)

	assert.Empty(t, cache.Apply("deadbeef00000000", "whatever text"))
}
