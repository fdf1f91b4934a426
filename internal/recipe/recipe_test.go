package recipe

import (
	"testing"
)

func sampleRecipes() []Recipe {
	return []Recipe{
		{ID: "b001", Name: "Overnight Oats", Category: "breakfast", Tags: []string{"Meal-Prep-Friendly", "vegetarian"}},
		{ID: "l001", Name: "Chicken Rice Bowl", Category: "Lunch"},
		{ID: "d001", Name: "Baked Ziti", Category: "dinner", PrepTime: 15, CookTime: 40},
		{ID: "d002", Name: "Chicken Stir Fry", Category: "dinner"},
		{ID: "d001", Name: "Duplicate Ziti", Category: "dinner"},
	}
}

func TestRecipeHelpers(t *testing.T) {
	r := sampleRecipes()[0]

	if !r.HasTag("meal-prep-friendly") {
		t.Error("Expected case-insensitive tag membership")
	}
	if r.HasTag("vegan") {
		t.Error("Expected tag 'vegan' to be absent")
	}

	ziti := sampleRecipes()[2]
	if ziti.TotalTime() != 55 {
		t.Errorf("Expected total time 55, got %d", ziti.TotalTime())
	}

	bowl := Recipe{Ingredients: []Ingredient{{Amount: "1", Item: "rice"}, {Amount: "2", Item: "egg"}}}
	items := bowl.Items()
	if len(items) != 2 || items[0] != "rice" || items[1] != "egg" {
		t.Errorf("Unexpected items: %v", items)
	}
}

func TestWithDefaults(t *testing.T) {
	r := Recipe{ID: "x", Name: "X", Servings: 0, PrepTime: -5}.WithDefaults()

	if r.Tags == nil || len(r.Tags) != 0 {
		t.Errorf("Expected empty tags, got %v", r.Tags)
	}
	if r.Servings != 1 {
		t.Errorf("Expected servings to default to 1, got %d", r.Servings)
	}
	if r.PrepTime != 0 {
		t.Errorf("Expected negative prep time to clamp to 0, got %d", r.PrepTime)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		recipe  Recipe
		wantErr bool
	}{
		{"Valid", Recipe{ID: "a", Name: "A", Ingredients: []Ingredient{{Item: "egg"}}}, false},
		{"MissingID", Recipe{Name: "A"}, true},
		{"MissingName", Recipe{ID: "a"}, true},
		{"BlankIngredient", Recipe{ID: "a", Name: "A", Ingredients: []Ingredient{{Amount: "1"}}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.recipe.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCatalog(t *testing.T) {
	c := NewCatalog(sampleRecipes())

	if c.Len() != 4 {
		t.Fatalf("Expected duplicate id to be dropped, got %d recipes", c.Len())
	}

	t.Run("Get", func(t *testing.T) {
		r, ok := c.Get(" d001 ")
		if !ok {
			t.Fatal("Expected to find d001")
		}
		if r.Name != "Baked Ziti" {
			t.Errorf("Expected first occurrence to win, got %q", r.Name)
		}
		if _, ok := c.Get("zzz"); ok {
			t.Error("Expected unknown id to be missing")
		}
	})

	t.Run("GetMany", func(t *testing.T) {
		found, unknown := c.GetMany([]string{"l001", "nope", "", "d002"})
		if len(found) != 2 || found[0].ID != "l001" || found[1].ID != "d002" {
			t.Errorf("Unexpected found recipes: %+v", found)
		}
		if len(unknown) != 1 || unknown[0] != "nope" {
			t.Errorf("Unexpected unknown ids: %v", unknown)
		}
	})

	t.Run("SearchByName", func(t *testing.T) {
		got := c.SearchByName("CHICKEN")
		if len(got) != 2 {
			t.Errorf("Expected 2 chicken recipes, got %d", len(got))
		}
	})

	t.Run("ByCategory", func(t *testing.T) {
		if got := c.ByCategory("lunch"); len(got) != 1 {
			t.Errorf("Expected 1 lunch recipe, got %d", len(got))
		}
		if got := c.ByCategory("dinner"); len(got) != 2 {
			t.Errorf("Expected 2 dinner recipes, got %d", len(got))
		}
	})

	t.Run("Categories", func(t *testing.T) {
		cats := c.Categories()
		want := []string{"breakfast", "dinner", "lunch"}
		if len(cats) != len(want) {
			t.Fatalf("Expected %v, got %v", want, cats)
		}
		for i := range want {
			if cats[i] != want[i] {
				t.Errorf("Expected %v, got %v", want, cats)
			}
		}
	})

	t.Run("AllIsACopy", func(t *testing.T) {
		all := c.All()
		all[0].Name = "changed"
		if r, _ := c.Get("b001"); r.Name == "changed" {
			t.Error("Expected All to return a copy")
		}
	})
}
