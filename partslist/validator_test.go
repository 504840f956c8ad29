package partslist

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/manivpc/manivpc-api/models"
)

func fullList() []models.PartItem {
	return []models.PartItem{
		{Name: "RTX 4070", Price: 2400, Type: "gpu", Quantity: 1},
		{Name: "Ryzen 7 7700X", Price: 1300, Type: "cpu", Quantity: 1},
		{Name: "B650 Tomahawk", Price: 800, Type: "motherboard", Quantity: 1},
		{Name: "32GB DDR5", Price: 450, Type: "memory", Quantity: 1},
		{Name: "750W Gold", Price: 400, Type: "psu", Quantity: 1},
		{Name: "2TB NVMe", Price: 500, Type: "storage", Quantity: 1},
	}
}

func TestListTotal(t *testing.T) {
	items := []models.PartItem{
		{Name: "32GB DDR5", Price: 450, Quantity: 2},
		{Name: "2TB NVMe", Price: 500},
	}
	// zero quantity counts as one
	assert.InDelta(t, 1400, ListTotal(items), 0.001)
}

func TestCheckBudgetComponents(t *testing.T) {
	items := []models.PartItem{{Name: "RTX 4070", Price: 2400, Type: "gpu", Quantity: 1}}

	// under budget with tolerance
	ok := models.PartItem{Name: "CPU", Price: 600, Type: "cpu", Quantity: 1}
	assert.NoError(t, CheckBudget(items, ok, 3000, 0))

	// 3090 > 3000 * 1.03
	over := models.PartItem{Name: "CPU", Price: 700, Type: "cpu", Quantity: 1}
	assert.Error(t, CheckBudget(items, over, 3000, 0))

	// exactly at the tolerance boundary passes
	boundary := models.PartItem{Name: "CPU", Price: 690, Type: "cpu", Quantity: 1}
	assert.NoError(t, CheckBudget(items, boundary, 3000, 0))
}

func TestCheckBudgetPeripheralsUseSeparateBudget(t *testing.T) {
	items := []models.PartItem{{Name: "RTX 4070", Price: 2400, Type: "gpu", Quantity: 1}}

	keyboard := models.PartItem{Name: "Keyboard", Price: 300, Type: ItemTypePeripheral, PeripheralType: "keyboard", Quantity: 1}
	assert.NoError(t, CheckBudget(items, keyboard, 2400, 400))
	assert.Error(t, CheckBudget(items, keyboard, 2400, 200))
}

func TestValidateInitialList(t *testing.T) {
	three := []models.PartItem{
		{Name: "Budget build", Price: 4000},
		{Name: "Balanced build", Price: 6500},
		{Name: "Performance build", Price: 8000},
	}
	assert.NoError(t, ValidateInitialList(three))

	assert.Error(t, ValidateInitialList(three[:2]))
	assert.Error(t, ValidateInitialList(append(three, models.PartItem{Name: "Extra", Price: 9000})))

	unnamed := []models.PartItem{
		{Name: "", Price: 4000},
		{Name: "Balanced build", Price: 6500},
		{Name: "Performance build", Price: 8000},
	}
	assert.Error(t, ValidateInitialList(unnamed))

	unpriced := []models.PartItem{
		{Name: "Budget build", Price: 0},
		{Name: "Balanced build", Price: 6500},
		{Name: "Performance build", Price: 8000},
	}
	assert.Error(t, ValidateInitialList(unpriced))
}

func TestValidateFullList(t *testing.T) {
	assert.NoError(t, ValidateFullList(fullList()))
	assert.Error(t, ValidateFullList(nil))

	// missing PSU and storage
	partial := fullList()[:4]
	err := ValidateFullList(partial)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "psu")
	assert.Contains(t, err.Error(), "storage")
}

func TestValidateFullListNormalizesCategories(t *testing.T) {
	items := fullList()
	items[0].Type = "Graphics Card"
	items[3].Type = "RAM"
	items[4].Type = "Power Supply"
	items[5].Type = "SSD"
	assert.NoError(t, ValidateFullList(items))
}

func TestValidateFullListIgnoresPeripheralsForCoverage(t *testing.T) {
	items := append(fullList(), models.PartItem{
		Name: "Monitor", Price: 900, Type: ItemTypePeripheral, PeripheralType: "monitor", Quantity: 1,
	})
	assert.NoError(t, ValidateFullList(items))
}

func TestMissingPeripherals(t *testing.T) {
	items := append(fullList(), models.PartItem{
		Name: "Monitor", Price: 900, Type: ItemTypePeripheral, PeripheralType: "monitor", Quantity: 1,
	})
	requested := []models.PeripheralItem{
		{ID: "monitor"},
		{ID: "keyboard"},
		{ID: "custom-1", Name: "Drawing tablet", IsCustom: true},
	}

	missing := MissingPeripherals(items, requested)
	assert.ElementsMatch(t, []string{"keyboard", "Drawing tablet"}, missing)

	assert.Empty(t, MissingPeripherals(items, []models.PeripheralItem{{ID: "monitor"}}))
}
