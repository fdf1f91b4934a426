package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"meal-prep-planner/internal/app"
	"meal-prep-planner/internal/config"
	"meal-prep-planner/internal/database"
	"meal-prep-planner/internal/recipe"
	"meal-prep-planner/internal/storage"
)

func setup(t *testing.T) (*app.App, *config.Config) {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{
		DatabasePath: filepath.Join(dir, "cli.db"),
		CatalogPath:  filepath.Join(dir, "recipes.json"),
	}
	store := storage.NewCatalogStore(cfg.CatalogPath)
	err := store.Save([]recipe.Recipe{
		{ID: "d001", Name: "Bean Tacos", Category: "dinner", Ingredients: []recipe.Ingredient{{Amount: "1 can", Item: "black beans"}, {Amount: "8", Item: "tortillas"}}},
		{ID: "d002", Name: "Pesto Pasta", Category: "dinner", Ingredients: []recipe.Ingredient{{Amount: "200g", Item: "pasta"}, {Amount: "3 tbsp", Item: "pesto"}}},
	})
	if err != nil {
		t.Fatalf("Failed to write catalog: %v", err)
	}

	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		t.Fatalf("Failed to create database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return app.NewApp(cfg, db, store, nil), cfg
}

func TestRun(t *testing.T) {
	ctx := context.Background()
	a, cfg := setup(t)

	steps := []struct {
		command string
		args    []string
		want    string
	}{
		{"pantry", []string{"add", "black", "beans,", "tortillas"}, "Added 2 new item(s)."},
		{"pantry", nil, "YOUR PANTRY (2 items)"},
		{"match", nil, "Bean Tacos"},
		{"plan", []string{"-days", "2", "-seed", "3"}, "Day 2"},
		{"shopping", []string{"-simple"}, "pasta"},
		{"shopping", []string{"-recipes", "d001,zzz"}, "Warning: unknown recipe zzz"},
		{"plans", nil, "2 days"},
		{"export-catalog", nil, "Exported 2 recipes"},
		{"metrics-cleanup", []string{"-days", "30"}, "old metric records"},
	}
	for _, step := range steps {
		var out bytes.Buffer
		if err := run(ctx, a, cfg, step.command, step.args, &out); err != nil {
			t.Fatalf("%s %v: unexpected error %v", step.command, step.args, err)
		}
		if !strings.Contains(out.String(), step.want) {
			t.Errorf("%s %v: expected %q in output:\n%s", step.command, step.args, step.want, out.String())
		}
	}
}

func TestRunErrors(t *testing.T) {
	ctx := context.Background()
	a, cfg := setup(t)

	tests := []struct {
		command string
		args    []string
	}{
		{"frobnicate", nil},
		{"show", nil},
		{"show", []string{"missing"}},
		{"pantry", []string{"paint"}},
		{"shopping", nil},
		{"sync-ghost", nil},
		{"publish", nil},
	}
	for _, tt := range tests {
		if err := run(ctx, a, cfg, tt.command, tt.args, &bytes.Buffer{}); err == nil {
			t.Errorf("%s %v: expected an error", tt.command, tt.args)
		}
	}
}

func TestRunDefaults(t *testing.T) {
	ctx := context.Background()
	a, cfg := setup(t)

	if err := run(ctx, a, cfg, "pantry", []string{"add", "black beans"}, &bytes.Buffer{}); err != nil {
		t.Fatalf("Failed to add to pantry: %v", err)
	}

	t.Run("PlanMeals", func(t *testing.T) {
		var out bytes.Buffer
		if err := run(ctx, a, cfg, "plan", []string{"-days", "1", "-seed", "1"}, &out); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		for _, want := range []string{"Breakfast", "Lunch", "Dinner"} {
			if !strings.Contains(out.String(), want) {
				t.Errorf("Expected %q in output:\n%s", want, out.String())
			}
		}
	})

	t.Run("PlanDinnerOnly", func(t *testing.T) {
		var out bytes.Buffer
		if err := run(ctx, a, cfg, "plan", []string{"-days", "1", "-seed", "1", "-dinner"}, &out); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if strings.Contains(out.String(), "Breakfast") {
			t.Errorf("Expected a dinner-only plan, got:\n%s", out.String())
		}
	})

	t.Run("ShoppingSkipsPantry", func(t *testing.T) {
		var out bytes.Buffer
		if err := run(ctx, a, cfg, "shopping", []string{"-recipes", "d001", "-simple"}, &out); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if strings.Contains(out.String(), "black beans") {
			t.Errorf("Expected owned items to be left out by default, got:\n%s", out.String())
		}
		if !strings.Contains(out.String(), "tortillas") {
			t.Errorf("Expected tortillas in output:\n%s", out.String())
		}

		out.Reset()
		if err := run(ctx, a, cfg, "shopping", []string{"-recipes", "d001", "-simple", "-skip-pantry=false"}, &out); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if !strings.Contains(out.String(), "black beans") {
			t.Errorf("Expected every item with -skip-pantry=false, got:\n%s", out.String())
		}
	})
}
