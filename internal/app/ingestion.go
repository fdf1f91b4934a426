package app

import (
	"context"
	"fmt"
	"time"

	"meal-prep-planner/internal/clipper"
	"meal-prep-planner/internal/ghost"
	"meal-prep-planner/internal/logging"
	"meal-prep-planner/internal/recipe"
)

// SyncReport summarizes a Ghost sync.
type SyncReport struct {
	Fetched  int
	Imported int
	Skipped  int
	Failed   int
}

// SyncGhost imports every recipe post from Ghost. Posts whose stored copy
// is at least as new are skipped; posts without recipe data are counted as
// failed and do not stop the sync.
func (a *App) SyncGhost(ctx context.Context) (report SyncReport, err error) {
	start := time.Now()
	defer func() { a.track(ctx, "sync_ghost", report.Imported, start, err) }()

	if a.ghostClient == nil {
		return report, fmt.Errorf("ghost client not configured")
	}

	posts, err := a.ghostClient.FetchRecipes(ctx)
	if err != nil {
		return report, fmt.Errorf("failed to fetch recipes from ghost: %w", err)
	}
	report.Fetched = len(posts)
	logging.Info().Int("posts", len(posts)).Msg("fetched recipe posts from ghost")

	for _, post := range posts {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		imported, err := ProcessAndSaveRecipe(ctx, a.recipeRepo, post)
		switch {
		case err != nil:
			report.Failed++
			logging.Warn().Err(err).Str("post", post.ID).Str("title", post.Title).Msg("failed to import post")
		case imported:
			report.Imported++
			logging.Debug().Str("post", post.ID).Str("title", post.Title).Msg("imported recipe")
		default:
			report.Skipped++
		}
	}
	return report, nil
}

// ProcessAndSaveRecipe extracts the recipe from a post and saves it unless
// the stored copy is up to date. It reports whether anything was written.
func ProcessAndSaveRecipe(ctx context.Context, recipeRepo *recipe.Repository, post ghost.Post) (bool, error) {
	rec, err := clipper.FromPost(post)
	if err != nil {
		return false, fmt.Errorf("failed to extract recipe: %w", err)
	}

	if post.UpdatedAt != "" {
		postTime, err := time.Parse(time.RFC3339, post.UpdatedAt)
		if err == nil {
			stored, err := recipeRepo.UpdatedAt(ctx, rec.ID)
			if err != nil {
				return false, err
			}
			if !stored.IsZero() && !postTime.After(stored) {
				return false, nil
			}
		}
	}

	if err := recipeRepo.Save(ctx, rec); err != nil {
		return false, fmt.Errorf("failed to save recipe: %w", err)
	}
	return true, nil
}
