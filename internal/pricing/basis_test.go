package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allCategories = []string{"COIL", "SHEET", "PLATE", "PIPE", "TUBE", "BAR", "FLAT"}

func TestDefaultBasisIsAlwaysAllowed(t *testing.T) {
	// Structural consistency of the static tables, checked exhaustively.
	for _, cat := range allCategories {
		def := DefaultBasis(cat)
		assert.Contains(t, AllowedBases(cat), def, "category %s", cat)
	}
}

func TestAllowedBases_Table(t *testing.T) {
	assert.Equal(t, []Basis{PerMT}, AllowedBases("COIL"))
	assert.Equal(t, []Basis{PerPcs}, AllowedBases("SHEET"))
	assert.Equal(t, []Basis{PerMT, PerPcs}, AllowedBases("PLATE"))
	assert.Equal(t, []Basis{PerPcs, PerMeter}, AllowedBases("PIPE"))
	assert.Equal(t, []Basis{PerPcs, PerMeter}, AllowedBases("TUBE"))
	assert.Equal(t, []Basis{PerKg, PerPcs}, AllowedBases("BAR"))
	assert.Equal(t, []Basis{PerKg, PerPcs}, AllowedBases("FLAT"))
}

func TestAllowedBases_UnknownFallsBackToAll(t *testing.T) {
	require.Len(t, AllowedBases(""), 5)
	assert.Equal(t, AllBases, AllowedBases(""))
	assert.Equal(t, AllBases, AllowedBases("ANGLE"))
	assert.Equal(t, AllBases, AllowedBases("   "))
}

func TestAllowedBases_CaseInsensitive(t *testing.T) {
	assert.Equal(t, AllowedBases("PIPE"), AllowedBases("pipe"))
	assert.Equal(t, AllowedBases("Coil"), AllowedBases("COIL"))
}

func TestAllowedBases_ReturnsCopy(t *testing.T) {
	a := AllowedBases("PLATE")
	a[0] = PerLot
	assert.Equal(t, []Basis{PerMT, PerPcs}, AllowedBases("PLATE"))
}

func TestDefaultBasis_Fallback(t *testing.T) {
	assert.Equal(t, PerMT, DefaultBasis(""))
	assert.Equal(t, PerMT, DefaultBasis("UNKNOWN"))
	assert.Equal(t, PerPcs, DefaultBasis("sheet"))
}

func TestRequiresWeight(t *testing.T) {
	assert.True(t, RequiresWeight(PerMT))
	assert.True(t, RequiresWeight(PerKg))
	assert.False(t, RequiresWeight(PerPcs))
	assert.False(t, RequiresWeight(PerMeter))
	assert.False(t, RequiresWeight(PerLot))
}

func TestBasisLabel(t *testing.T) {
	assert.Equal(t, "Per Metric Ton", BasisLabel(PerMT))
	assert.Equal(t, "Per Piece", BasisLabel(PerPcs))
	// Unknown bases pass through unchanged rather than erroring.
	assert.Equal(t, "PER_SOMETHING", BasisLabel(Basis("PER_SOMETHING")))
}
