package partslist

import (
	"fmt"
	"strings"

	"github.com/manivpc/manivpc-api/models"
)

// InitialListSize is the fixed number of candidate builds an initial
// consultation list must contain
const InitialListSize = 3

// budgetTolerance allows a small overshoot over the stated budget
const budgetTolerance = 1.03

// requiredComponentCategories must all be present in a full parts list
// before an order can move on to scheduling
var requiredComponentCategories = []string{
	"gpu",
	"cpu",
	"motherboard",
	"memory",
	"psu",
	"storage",
}

// ItemTypePeripheral marks a peripheral line. Any other Type value names
// the component category directly.
const ItemTypePeripheral = "peripheral"

// normalizeCategory folds category spellings used across uploads
func normalizeCategory(s string) string {
	c := strings.ToLower(strings.TrimSpace(s))
	switch c {
	case "graphics card", "video card":
		return "gpu"
	case "processor":
		return "cpu"
	case "ram":
		return "memory"
	case "power supply", "power supply unit":
		return "psu"
	case "ssd", "hdd", "drive":
		return "storage"
	}
	return c
}

// ListTotal sums the priced lines of a parts list, respecting quantity
func ListTotal(items []models.PartItem) float64 {
	var total float64
	for _, it := range items {
		qty := it.Quantity
		if qty <= 0 {
			qty = 1
		}
		total += it.Price * float64(qty)
	}
	return total
}

// CheckBudget verifies that adding candidate to items keeps components
// within the hardware budget and peripherals within the peripherals
// budget, each with the standard tolerance. Items of the other kind do
// not count against the checked budget.
func CheckBudget(items []models.PartItem, candidate models.PartItem, budget, peripheralsBudget float64) error {
	var componentTotal, peripheralTotal float64
	all := append(append([]models.PartItem{}, items...), candidate)
	for _, it := range all {
		qty := it.Quantity
		if qty <= 0 {
			qty = 1
		}
		if it.Type == ItemTypePeripheral {
			peripheralTotal += it.Price * float64(qty)
		} else {
			componentTotal += it.Price * float64(qty)
		}
	}

	if componentTotal > budget*budgetTolerance {
		return fmt.Errorf("component total %.2f exceeds budget %.2f", componentTotal, budget)
	}
	if peripheralTotal > peripheralsBudget*budgetTolerance {
		return fmt.Errorf("peripheral total %.2f exceeds peripherals budget %.2f", peripheralTotal, peripheralsBudget)
	}
	return nil
}

// WithinBudgets checks a whole list against both budgets with the
// standard tolerance
func WithinBudgets(items []models.PartItem, budget, peripheralsBudget float64) error {
	if len(items) == 0 {
		return nil
	}
	return CheckBudget(items[:len(items)-1], items[len(items)-1], budget, peripheralsBudget)
}

// ValidateInitialList checks the consultation shortlist: exactly three
// named, priced options
func ValidateInitialList(items []models.PartItem) error {
	if len(items) != InitialListSize {
		return fmt.Errorf("initial list must contain exactly %d options, got %d", InitialListSize, len(items))
	}
	for i, it := range items {
		if strings.TrimSpace(it.Name) == "" {
			return fmt.Errorf("initial list option %d has no name", i+1)
		}
		if it.Price <= 0 {
			return fmt.Errorf("initial list option %d has no price", i+1)
		}
	}
	return nil
}

// ValidateFullList checks that a full parts list covers every required
// component category. Peripherals are advisory and never block.
func ValidateFullList(items []models.PartItem) error {
	if len(items) == 0 {
		return fmt.Errorf("parts list is empty")
	}

	seen := make(map[string]bool)
	for i, it := range items {
		if strings.TrimSpace(it.Name) == "" {
			return fmt.Errorf("item %d has no name", i+1)
		}
		if it.Price < 0 {
			return fmt.Errorf("item %d has a negative price", i+1)
		}
		if it.Type != ItemTypePeripheral {
			seen[normalizeCategory(it.Type)] = true
		}
	}

	var missing []string
	for _, cat := range requiredComponentCategories {
		if !seen[cat] {
			missing = append(missing, cat)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required components: %s", strings.Join(missing, ", "))
	}
	return nil
}

// MissingPeripherals reports which of the requested peripheral kinds are
// absent from the list. The result is informational only.
func MissingPeripherals(items []models.PartItem, requested []models.PeripheralItem) []string {
	present := make(map[string]bool)
	for _, it := range items {
		if it.Type == ItemTypePeripheral {
			present[normalizeCategory(it.PeripheralType)] = true
		}
	}

	var missing []string
	for _, want := range requested {
		kind := want.ID
		if want.IsCustom && want.Name != "" {
			kind = want.Name
		}
		if !present[normalizeCategory(kind)] {
			missing = append(missing, kind)
		}
	}
	return missing
}
