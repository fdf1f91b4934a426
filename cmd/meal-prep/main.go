package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/goccy/go-json"

	"meal-prep-planner/internal/app"
	"meal-prep-planner/internal/config"
	"meal-prep-planner/internal/database"
	"meal-prep-planner/internal/ghost"
	"meal-prep-planner/internal/ingredient"
	"meal-prep-planner/internal/logging"
	"meal-prep-planner/internal/pantry"
	"meal-prep-planner/internal/planner"
	"meal-prep-planner/internal/storage"
)

func main() {
	if len(os.Args) < 2 || os.Args[1] == "help" || os.Args[1] == "-h" {
		printUsage(os.Stdout)
		if len(os.Args) < 2 {
			os.Exit(1)
		}
		return
	}

	if err := config.LoadDotEnv(); err != nil {
		logging.Fatal().Err(err).Msg("failed to load .env")
	}
	cfg, err := config.NewFromEnv()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to initialize database")
	}
	defer db.Close()

	var ghostClient ghost.Client
	if cfg.RequireGhost() == nil {
		ghostClient = ghost.NewClient(cfg)
	}
	application := app.NewApp(cfg, db, storage.NewCatalogStore(cfg.CatalogPath), ghostClient)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, application, cfg, os.Args[1], os.Args[2:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		db.Close()
		os.Exit(1)
	}
}

func run(ctx context.Context, a *app.App, cfg *config.Config, command string, args []string, out io.Writer) error {
	owner := pantry.DefaultOwner

	switch command {
	case "pantry":
		return runPantry(ctx, a, owner, args, out)

	case "recipes":
		fs := flag.NewFlagSet("recipes", flag.ExitOnError)
		category := fs.String("category", "", "Only list recipes in this category")
		search := fs.String("search", "", "Only list recipes whose name contains this text")
		fs.Parse(args)

		recipes, err := a.ListRecipes(ctx, *category, *search)
		if err != nil {
			return err
		}
		app.RenderRecipeList(out, "RECIPES", recipes)

	case "show":
		if len(args) != 1 {
			return fmt.Errorf("usage: meal-prep show <recipe id>")
		}
		detail, err := a.ShowRecipe(ctx, owner, args[0])
		if err != nil {
			return err
		}
		if detail == nil {
			return fmt.Errorf("recipe %s not found", args[0])
		}
		app.RenderRecipe(out, detail)

	case "match":
		fs := flag.NewFlagSet("match", flag.ExitOnError)
		maxMissing := fs.Int("max-missing", 3, "Maximum missing ingredients for almost matches (1-5)")
		fs.Parse(args)

		m, err := a.FindMatches(ctx, owner, *maxMissing)
		if err != nil {
			return err
		}
		app.RenderMatches(out, m)

	case "plan":
		return runPlan(ctx, a, owner, args, out)

	case "shopping":
		return runShopping(ctx, a, owner, args, out)

	case "plans":
		fs := flag.NewFlagSet("plans", flag.ExitOnError)
		limit := fs.Int("limit", 5, "Number of plans to list")
		fs.Parse(args)

		plans, err := a.RecentPlans(ctx, owner, *limit)
		if err != nil {
			return err
		}
		if len(plans) == 0 {
			fmt.Fprintln(out, "No meal plans yet.")
		}
		for _, sp := range plans {
			fmt.Fprintf(out, "%s  %s  %d days  (created %s)\n",
				sp.Plan.ID, sp.Plan.StartDate.Format(time.DateOnly), sp.Plan.Days, sp.CreatedAt.Format(time.DateTime))
		}

	case "import-catalog":
		if len(args) != 1 {
			return fmt.Errorf("usage: meal-prep import-catalog <file.json>")
		}
		n, err := a.ImportCatalog(ctx, storage.NewCatalogStore(args[0]))
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Imported %d recipes from %s.\n", n, args[0])

	case "export-catalog":
		n, err := a.ExportCatalog(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Exported %d recipes to %s.\n", n, cfg.CatalogPath)

	case "import-url":
		if len(args) != 1 {
			return fmt.Errorf("usage: meal-prep import-url <url>")
		}
		rec, err := a.ImportURL(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Saved %q as %s (%d ingredients).\n", rec.Name, rec.ID, len(rec.Ingredients))

	case "sync-ghost":
		if err := cfg.RequireGhost(); err != nil {
			return err
		}
		report, err := a.SyncGhost(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Fetched %d posts: %d imported, %d unchanged, %d failed.\n",
			report.Fetched, report.Imported, report.Skipped, report.Failed)

	case "publish":
		if len(args) > 1 {
			return fmt.Errorf("usage: meal-prep publish [plan id]")
		}
		planID := ""
		if len(args) == 1 {
			planID = args[0]
		}
		post, err := a.PublishPlan(ctx, owner, planID)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Created draft %q (%s).\n", post.Title, post.ID)

	case "usage":
		fs := flag.NewFlagSet("usage", flag.ExitOnError)
		days := fs.Int("days", 7, "Number of days to report")
		fs.Parse(args)

		usage, err := a.Usage(ctx, *days)
		if err != nil {
			return err
		}
		if len(usage) == 0 {
			fmt.Fprintln(out, "No activity recorded.")
		}
		for _, d := range usage {
			fmt.Fprintf(out, "%s  %4d execs  %5d items  %7.1f ms avg\n", d.Date, d.Executions, d.TotalItems, d.AvgLatencyMS)
		}
		h := a.Health()
		fmt.Fprintf(out, "\nRAM %dMB alloc / %dMB sys, %d goroutines, data %s\n", h.AllocMB, h.SysMB, h.Goroutines, h.DataDiskSize)

	case "metrics-cleanup":
		fs := flag.NewFlagSet("metrics-cleanup", flag.ExitOnError)
		days := fs.Int("days", 30, "Keep records for the last N days")
		fs.Parse(args)

		affected, err := a.CleanupMetrics(ctx, *days)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Successfully removed %d old metric records.\n", affected)

	default:
		printUsage(out)
		return fmt.Errorf("unknown command: %s", command)
	}
	return nil
}

func runPantry(ctx context.Context, a *app.App, owner string, args []string, out io.Writer) error {
	action := "list"
	if len(args) > 0 {
		action = args[0]
	}
	rest := strings.Join(args[min(1, len(args)):], " ")

	switch action {
	case "list":
		p, err := a.Pantry(ctx, owner)
		if err != nil {
			return err
		}
		app.RenderPantry(out, p)
	case "add":
		n, err := a.AddToPantry(ctx, owner, rest)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Added %d new item(s).\n", n)
	case "remove":
		if rest == "" {
			return fmt.Errorf("usage: meal-prep pantry remove <item>")
		}
		removed, err := a.RemoveFromPantry(ctx, owner, rest)
		if err != nil {
			return err
		}
		if !removed {
			fmt.Fprintf(out, "%s is not in your pantry.\n", rest)
			return nil
		}
		fmt.Fprintf(out, "Removed %s.\n", rest)
	case "clear":
		n, err := a.ClearPantry(ctx, owner)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Removed %d item(s).\n", n)
	default:
		return fmt.Errorf("unknown pantry action %q (list, add, remove, clear)", action)
	}
	return nil
}

func runPlan(ctx context.Context, a *app.App, owner string, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("plan", flag.ExitOnError)
	days := fs.Int("days", app.DefaultDays, "Number of days to plan (1-14)")
	breakfast := fs.Bool("breakfast", false, "Include breakfast (with no meal flag, all three main meals are planned)")
	lunch := fs.Bool("lunch", false, "Include lunch")
	dinner := fs.Bool("dinner", false, "Include dinner")
	snack := fs.Bool("snack", false, "Include a snack")
	variety := fs.Bool("variety", true, "Avoid repeating recipes until the pool is used up")
	mealPrep := fs.Bool("meal-prep", false, "Prefer meal-prep-friendly recipes")
	fromPantry := fs.Bool("from-pantry", false, "Only use recipes you can almost make from the pantry")
	maxMissing := fs.Int("max-missing", ingredient.DefaultMaxMissing, "Missing ingredient cap for -from-pantry (0-5)")
	seed := fs.Int64("seed", -1, "Random seed for a reproducible plan")
	asJSON := fs.Bool("json", false, "Print the plan as JSON")
	fs.Parse(args)

	if !*breakfast && !*lunch && !*dinner {
		*breakfast, *lunch, *dinner = true, true, true
	}

	req := app.PlanRequest{
		Options: planner.Options{
			Days:           *days,
			Breakfast:      *breakfast,
			Lunch:          *lunch,
			Dinner:         *dinner,
			Snack:          *snack,
			Variety:        *variety,
			PreferMealPrep: *mealPrep,
		},
		FromPantry: *fromPantry,
		MaxMissing: maxMissing,
	}
	if *seed >= 0 {
		s := uint64(*seed)
		req.Seed = &s
	}

	res, err := a.GeneratePlan(ctx, owner, req)
	if err != nil {
		return err
	}
	if *asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(res.Plan)
	}

	if req.FromPantry {
		fmt.Fprintf(out, "Planning from %d recipes you can almost make.\n", res.Candidates)
	}
	app.RenderPlan(out, res.Plan)
	app.RenderShoppingList(out, res.List)
	return nil
}

func runShopping(ctx context.Context, a *app.App, owner string, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("shopping", flag.ExitOnError)
	planID := fs.String("plan", "", "Plan ID (default: latest plan)")
	recipeIDs := fs.String("recipes", "", "Comma separated recipe IDs instead of a plan")
	skipPantry := fs.Bool("skip-pantry", true, "Leave out items already in the pantry (-skip-pantry=false lists everything)")
	simple := fs.Bool("simple", false, "Print item names only")
	fs.Parse(args)

	var (
		res *app.ShoppingResult
		err error
	)
	if *recipeIDs != "" {
		res, err = a.ShoppingForRecipes(ctx, owner, strings.Split(*recipeIDs, ","), *skipPantry)
	} else {
		res, err = a.ShoppingForPlan(ctx, owner, *planID, *skipPantry)
	}
	if err != nil {
		return err
	}

	for _, id := range res.Unknown {
		fmt.Fprintf(out, "Warning: unknown recipe %s\n", id)
	}
	if *simple {
		app.RenderSimpleList(out, res.List)
		return nil
	}
	app.RenderShoppingList(out, res.List)
	return nil
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: meal-prep <command> [arguments]")
	fmt.Fprintln(w, "\nCommands:")
	fmt.Fprintln(w, "  pantry [list|add|remove|clear] [items]   Manage pantry items")
	fmt.Fprintln(w, "  recipes [-category c] [-search text]     List recipes")
	fmt.Fprintln(w, "  show <id>                                Show a recipe and its pantry match")
	fmt.Fprintln(w, "  match [-max-missing n]                   Recipes you can make now or almost")
	fmt.Fprintln(w, "  plan [flags]                             Generate a meal plan; breakfast, lunch and dinner unless meal flags are given")
	fmt.Fprintln(w, "  shopping [-plan id | -recipes ids]       Build a shopping list; owned items are left out unless -skip-pantry=false")
	fmt.Fprintln(w, "  plans [-limit n]                         List recent plans")
	fmt.Fprintln(w, "  import-catalog <file>                    Load recipes from a JSON file")
	fmt.Fprintln(w, "  export-catalog                           Write recipes to the catalog file")
	fmt.Fprintln(w, "  import-url <url>                         Clip a recipe from a web page")
	fmt.Fprintln(w, "  sync-ghost                               Import recipe posts from Ghost")
	fmt.Fprintln(w, "  publish [plan id]                        Publish a plan to Ghost as a draft")
	fmt.Fprintln(w, "  usage [-days n]                          Show activity and health")
	fmt.Fprintln(w, "  metrics-cleanup [-days n]                Remove old metric records")
}
