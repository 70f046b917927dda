// Package grocery holds list-domain helpers shared by handlers.
package grocery

import (
	"strings"

	"famgrocer/internal/model"
)

// Categorize returns the category tag for the given item name.
// It performs case-insensitive matching: exact match first, then
// substring match. Falls back to "uncategorized" if no match is found.
func Categorize(itemName string) string {
	name := strings.ToLower(strings.TrimSpace(itemName))
	if name == "" {
		return model.CategoryUncategorized
	}

	// Phase 1: exact match
	if cat, ok := exactMatch[name]; ok {
		return cat
	}

	// Phase 2: substring match (ordered longer/more-specific first)
	for _, entry := range substringMatches {
		if strings.Contains(name, entry.keyword) {
			return entry.category
		}
	}

	return model.CategoryUncategorized
}

var exactMatch = map[string]string{
	// Fruits & vegetables
	"apple":        model.CategoryFruits,
	"apples":       model.CategoryFruits,
	"banana":       model.CategoryFruits,
	"bananas":      model.CategoryFruits,
	"orange":       model.CategoryFruits,
	"oranges":      model.CategoryFruits,
	"grapes":       model.CategoryFruits,
	"strawberries": model.CategoryFruits,
	"blueberries":  model.CategoryFruits,
	"mango":        model.CategoryFruits,
	"tomato":       model.CategoryFruits,
	"tomatoes":     model.CategoryFruits,
	"potato":       model.CategoryFruits,
	"potatoes":     model.CategoryFruits,
	"onion":        model.CategoryFruits,
	"onions":       model.CategoryFruits,
	"garlic":       model.CategoryFruits,
	"lettuce":      model.CategoryFruits,
	"spinach":      model.CategoryFruits,
	"broccoli":     model.CategoryFruits,
	"carrots":      model.CategoryFruits,
	"cucumber":     model.CategoryFruits,

	// Dairy & eggs
	"milk":    model.CategoryDairy,
	"cheese":  model.CategoryDairy,
	"butter":  model.CategoryDairy,
	"yogurt":  model.CategoryDairy,
	"eggs":    model.CategoryDairy,
	"cream":   model.CategoryDairy,
	"paneer":  model.CategoryDairy,
	"curd":    model.CategoryDairy,
	"ghee":    model.CategoryDairy,
	"lassi":   model.CategoryDairy,
	"custard": model.CategoryDairy,

	// Meat & seafood
	"chicken": model.CategoryMeat,
	"beef":    model.CategoryMeat,
	"pork":    model.CategoryMeat,
	"fish":    model.CategoryMeat,
	"shrimp":  model.CategoryMeat,
	"mutton":  model.CategoryMeat,
	"bacon":   model.CategoryMeat,
	"salmon":  model.CategoryMeat,
	"tuna":    model.CategoryMeat,

	// Bakery
	"bread":     model.CategoryBakery,
	"buns":      model.CategoryBakery,
	"bagels":    model.CategoryBakery,
	"croissant": model.CategoryBakery,
	"muffins":   model.CategoryBakery,
	"cake":      model.CategoryBakery,
	"tortillas": model.CategoryBakery,

	// Beverages
	"coffee": model.CategoryBeverages,
	"tea":    model.CategoryBeverages,
	"juice":  model.CategoryBeverages,
	"soda":   model.CategoryBeverages,
	"water":  model.CategoryBeverages,
	"beer":   model.CategoryBeverages,
	"wine":   model.CategoryBeverages,

	// Snacks
	"chips":     model.CategorySnacks,
	"cookies":   model.CategorySnacks,
	"crackers":  model.CategorySnacks,
	"popcorn":   model.CategorySnacks,
	"chocolate": model.CategorySnacks,
	"candy":     model.CategorySnacks,
	"biscuits":  model.CategorySnacks,

	// Grains & staples
	"rice":    model.CategoryGrains,
	"pasta":   model.CategoryGrains,
	"flour":   model.CategoryGrains,
	"oats":    model.CategoryGrains,
	"cereal":  model.CategoryGrains,
	"quinoa":  model.CategoryGrains,
	"lentils": model.CategoryGrains,
	"noodles": model.CategoryGrains,

	// Household
	"detergent":    model.CategoryHousehold,
	"bleach":       model.CategoryHousehold,
	"sponges":      model.CategoryHousehold,
	"paper towels": model.CategoryHousehold,
	"trash bags":   model.CategoryHousehold,
	"foil":         model.CategoryHousehold,
	"batteries":    model.CategoryHousehold,

	// Personal care
	"shampoo":    model.CategoryPersonal,
	"soap":       model.CategoryPersonal,
	"toothpaste": model.CategoryPersonal,
	"deodorant":  model.CategoryPersonal,
	"razors":     model.CategoryPersonal,
	"lotion":     model.CategoryPersonal,

	// Frozen
	"ice cream":    model.CategoryFrozen,
	"frozen pizza": model.CategoryFrozen,
}

var substringMatches = []struct {
	keyword  string
	category string
}{
	{"frozen", model.CategoryFrozen},
	{"toilet paper", model.CategoryHousehold},
	{"dish soap", model.CategoryHousehold},
	{"cleaner", model.CategoryHousehold},
	{"toothbrush", model.CategoryPersonal},
	{"ice cream", model.CategoryFrozen},
	{"yogurt", model.CategoryDairy},
	{"cheese", model.CategoryDairy},
	{"milk", model.CategoryDairy},
	{"chicken", model.CategoryMeat},
	{"beef", model.CategoryMeat},
	{"fish", model.CategoryMeat},
	{"bread", model.CategoryBakery},
	{"juice", model.CategoryBeverages},
	{"chips", model.CategorySnacks},
	{"rice", model.CategoryGrains},
	{"pasta", model.CategoryGrains},
	{"berries", model.CategoryFruits},
	{"apple", model.CategoryFruits},
}
