package pdf

import (
	"bytes"
	"skillchain/internal/entity"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samplePassport() *entity.PublicPassport {
	carbon := 4.2
	return &entity.PublicPassport{
		PassportID:   "9c1d5c2e-0000-4000-8000-000000000001",
		ProductName:  "Organic Tee",
		Category:     "T-Shirts",
		SKU:          "TS-001",
		Manufacturer: entity.Manufacturer{ID: 1, Name: "Alpha Garments", Location: "Dhaka"},
		Materials: []entity.Material{
			{Material: "Organic Cotton", Percentage: 95, Origin: "India", Certification: "GOTS"},
			{Material: "Elastane", Percentage: 5},
		},
		EnvironmentalImpact: entity.EnvironmentalImpact{CarbonFootprintKg: &carbon},
		Certifications:      []string{"GOTS", "OEKO-TEX"},
		Origin:              entity.Origin{Country: "Bangladesh"},
		ComplianceStatus: entity.ComplianceStatus{
			Verified: true, Score: 66.7, TotalChecks: 3, PassedChecks: 2,
			ByType: map[string]entity.TypeStatus{
				"FIRE_SAFETY_CHECK": {Status: "PASS", Date: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), Area: "Floor 1"},
				"PPE_INSPECTION":    {Status: "FAIL", Date: time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)},
			},
		},
		LastUpdated: time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC),
	}
}

func TestPassportSheetProducesPDF(t *testing.T) {
	data, err := PassportSheet(samplePassport(), "http://localhost:3001/dpp/9c1d5c2e")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestPassportSheetWithoutQR(t *testing.T) {
	data, err := PassportSheet(samplePassport(), "")
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}

func TestPassportSheetNil(t *testing.T) {
	_, err := PassportSheet(nil, "x")
	assert.Error(t, err)
}

func TestHumanize(t *testing.T) {
	assert.Equal(t, "Fire Safety Check", humanize("FIRE_SAFETY_CHECK"))
	assert.Equal(t, "Other", humanize("OTHER"))
}
