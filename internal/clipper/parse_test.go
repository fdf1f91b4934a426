package clipper

import "testing"

func TestParseISODuration(t *testing.T) {
	tests := map[string]int{
		"PT15M":     15,
		"PT1H30M":   90,
		"pt2h":      120,
		"P1DT2H":    1560,
		"PT45S":     0,
		"":          0,
		"30 mins":   0,
		"PT0H10M0S": 10,
	}
	for in, want := range tests {
		if got := parseISODuration(in); got != want {
			t.Errorf("parseISODuration(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestSplitIngredientLine(t *testing.T) {
	tests := []struct {
		line   string
		amount string
		item   string
	}{
		{"2 cups chopped onion", "2 cups", "chopped onion"},
		{"1 1/2 tsp. salt", "1 1/2 tsp.", "salt"},
		{"½ cup of milk", "½ cup", "milk"},
		{"3 eggs", "3", "eggs"},
		{"2-3 cloves garlic", "2-3 cloves", "garlic"},
		{"salt to taste", "", "salt to taste"},
		{"  4  ", "4", ""},
	}
	for _, tt := range tests {
		amount, item := SplitIngredientLine(tt.line)
		if amount != tt.amount || item != tt.item {
			t.Errorf("SplitIngredientLine(%q) = (%q, %q), want (%q, %q)", tt.line, amount, item, tt.amount, tt.item)
		}
	}
}
