package clipper

import (
	"regexp"
	"strconv"
	"strings"
)

var isoDuration = regexp.MustCompile(`^P(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+(?:\.\d+)?)S)?)?$`)

// parseISODuration converts an ISO 8601 duration such as PT1H30M to whole
// minutes. Unparseable values are 0.
func parseISODuration(s string) int {
	m := isoDuration.FindStringSubmatch(strings.ToUpper(strings.TrimSpace(s)))
	if m == nil {
		return 0
	}
	days, _ := strconv.Atoi(m[1])
	hours, _ := strconv.Atoi(m[2])
	minutes, _ := strconv.Atoi(m[3])
	return days*24*60 + hours*60 + minutes
}

var units = map[string]bool{
	"cup": true, "cups": true, "c": true,
	"tbsp": true, "tablespoon": true, "tablespoons": true, "tbs": true,
	"tsp": true, "teaspoon": true, "teaspoons": true,
	"lb": true, "lbs": true, "pound": true, "pounds": true,
	"oz": true, "ounce": true, "ounces": true,
	"g": true, "gram": true, "grams": true, "kg": true,
	"ml": true, "l": true, "liter": true, "liters": true,
	"clove": true, "cloves": true, "can": true, "cans": true,
	"pinch": true, "dash": true, "slice": true, "slices": true,
	"package": true, "packages": true, "pkg": true,
	"bunch": true, "head": true, "stalk": true, "stalks": true,
	"quart": true, "quarts": true, "pint": true, "pints": true,
}

func isQuantity(tok string) bool {
	if tok == "" {
		return false
	}
	for _, r := range tok {
		switch {
		case r >= '0' && r <= '9', r == '/', r == '.', r == '-', r == '–':
		case strings.ContainsRune("½⅓⅔¼¾⅛", r):
		default:
			return false
		}
	}
	return true
}

// SplitIngredientLine separates a leading quantity and unit from the item,
// so "2 cups chopped onion" becomes ("2 cups", "chopped onion"). Lines
// without a leading quantity are all item.
func SplitIngredientLine(line string) (amount, item string) {
	fields := strings.Fields(line)
	i := 0
	for i < len(fields) && isQuantity(fields[i]) {
		i++
	}
	if i == 0 {
		return "", strings.TrimSpace(line)
	}
	if i < len(fields) && units[strings.ToLower(strings.TrimSuffix(fields[i], "."))] {
		i++
	}
	amount = strings.Join(fields[:i], " ")
	rest := fields[i:]
	if len(rest) > 0 && strings.EqualFold(rest[0], "of") {
		rest = rest[1:]
	}
	return amount, strings.Join(rest, " ")
}
