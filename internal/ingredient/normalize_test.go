package ingredient

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"tomato", "tomato"},
		{"  Fresh Diced Tomatoes ", "tomatoes"},
		{"2 fresh diced tomatoes", "2 tomatoes"},
		{"Ground Beef", "beef"},
		{"chopped fresh chopped parsley", "parsley"},
		{"groundnut oil", "groundnut oil"},
		{"rawhide", "rawhide"},
		{"large   brown\teggs", "brown eggs"},
		{"FROZEN", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"2 fresh diced tomatoes",
		"sun-dried tomatoes",
		"Whole Wheat  Flour",
		"small red onion, minced",
		"fresh-frozen peas",
		"medium",
	}
	for _, in := range inputs {
		once := Normalize(in)
		if twice := Normalize(once); twice != once {
			t.Errorf("Normalize not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}
