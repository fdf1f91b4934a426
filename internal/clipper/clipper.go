package clipper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"meal-prep-planner/internal/ghost"
	"meal-prep-planner/internal/recipe"
)

// Clipper imports recipes from web pages and Ghost posts and publishes
// plans back to Ghost.
type Clipper struct {
	ghostClient ghost.Client
	httpClient  *http.Client
}

// NewClipper creates a new Clipper instance. ghostClient may be nil when
// publishing is not needed.
func NewClipper(ghostClient ghost.Client) *Clipper {
	return &Clipper{
		ghostClient: ghostClient,
		httpClient:  &http.Client{Timeout: 15 * time.Second},
	}
}

// ClipURL fetches the page at url and extracts its recipe.
func (c *Clipper) ClipURL(ctx context.Context, url string) (recipe.Recipe, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return recipe.Recipe{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "meal-prep-planner/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return recipe.Recipe{}, fmt.Errorf("failed to fetch content: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return recipe.Recipe{}, fmt.Errorf("failed to fetch URL: status %d", resp.StatusCode)
	}

	return ExtractRecipe(resp.Body, url)
}

// FromPost extracts the recipe embedded in a Ghost post. The post ID and
// title fill in what the markup does not carry.
func FromPost(post ghost.Post) (recipe.Recipe, error) {
	rec, err := extract(strings.NewReader(post.HTML), post.URL)
	if err != nil {
		return recipe.Recipe{}, fmt.Errorf("post %s: %w", post.ID, err)
	}
	if rec.Name == "" {
		rec.Name = post.Title
	}
	if rec.ID == "" {
		rec.ID = post.ID
	}
	rec.UpdatedAt = post.UpdatedAt
	rec = rec.WithDefaults()
	if err := rec.Validate(); err != nil {
		return recipe.Recipe{}, err
	}
	return rec, nil
}

// ExtractRecipe reads schema.org Recipe data from an HTML page. Pages
// without structured data fall back to the markup produced by
// FormatRecipeHTML.
func ExtractRecipe(r io.Reader, sourceURL string) (recipe.Recipe, error) {
	rec, err := extract(r, sourceURL)
	if err != nil {
		return recipe.Recipe{}, err
	}
	if rec.ID == "" {
		rec.ID = idFor(sourceURL, rec.Name)
	}
	rec = rec.WithDefaults()
	if err := rec.Validate(); err != nil {
		return recipe.Recipe{}, err
	}
	return rec, nil
}

func extract(r io.Reader, sourceURL string) (recipe.Recipe, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return recipe.Recipe{}, fmt.Errorf("failed to parse html: %w", err)
	}

	rec, ok := fromJSONLD(doc)
	if !ok {
		rec, ok = fromMarkup(doc)
	}
	if !ok {
		return recipe.Recipe{}, fmt.Errorf("no recipe data found")
	}

	rec.SourceURL = sourceURL
	if rec.Category == "" {
		rec.Category = recipe.CategoryDinner
	}
	return rec, nil
}

// idFor derives a stable recipe ID from the source URL, or from the name
// when there is no URL.
func idFor(sourceURL, name string) string {
	key := sourceURL
	if key == "" {
		key = strings.ToLower(strings.TrimSpace(name))
	}
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(key)).String()
}

func fromJSONLD(doc *goquery.Document) (recipe.Recipe, bool) {
	var found map[string]any
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		var data any
		if err := json.Unmarshal([]byte(s.Text()), &data); err != nil {
			return true
		}
		found = findRecipeNode(data)
		return found == nil
	})
	if found == nil {
		return recipe.Recipe{}, false
	}

	rec := recipe.Recipe{
		Name:       strings.TrimSpace(asString(found["name"])),
		PrepTime:   parseISODuration(asString(found["prepTime"])),
		CookTime:   parseISODuration(asString(found["cookTime"])),
		Servings:   parseServings(found["recipeYield"]),
		Difficulty: strings.ToLower(asString(found["difficulty"])),
		Tags:       splitKeywords(found["keywords"]),
	}
	if cats := asStrings(found["recipeCategory"]); len(cats) > 0 {
		rec.Category = normalizeCategory(cats[0])
	}
	if rec.PrepTime == 0 && rec.CookTime == 0 {
		rec.CookTime = parseISODuration(asString(found["totalTime"]))
	}
	for _, line := range asStrings(found["recipeIngredient"]) {
		amount, item := SplitIngredientLine(line)
		if item != "" {
			rec.Ingredients = append(rec.Ingredients, recipe.Ingredient{Amount: amount, Item: item})
		}
	}
	rec.Instructions = instructions(found["recipeInstructions"])
	return rec, rec.Name != ""
}

// findRecipeNode walks a JSON-LD document (object, array or @graph) for the
// first node typed Recipe.
func findRecipeNode(data any) map[string]any {
	switch v := data.(type) {
	case []any:
		for _, item := range v {
			if node := findRecipeNode(item); node != nil {
				return node
			}
		}
	case map[string]any:
		for _, t := range asStrings(v["@type"]) {
			if t == "Recipe" {
				return v
			}
		}
		if graph, ok := v["@graph"]; ok {
			return findRecipeNode(graph)
		}
	}
	return nil
}

func instructions(v any) []string {
	var out []string
	switch x := v.(type) {
	case string:
		for _, line := range strings.Split(x, "\n") {
			if line = strings.TrimSpace(line); line != "" {
				out = append(out, line)
			}
		}
	case []any:
		for _, item := range x {
			out = append(out, instructions(item)...)
		}
	case map[string]any:
		if list, ok := x["itemListElement"]; ok {
			return instructions(list)
		}
		if text := strings.TrimSpace(asString(x["text"])); text != "" {
			out = append(out, text)
		}
	}
	return out
}

// fromMarkup reads the structure written by FormatRecipeHTML.
func fromMarkup(doc *goquery.Document) (recipe.Recipe, bool) {
	ingredients := doc.Find("ul.ingredients li")
	if ingredients.Length() == 0 {
		return recipe.Recipe{}, false
	}

	var rec recipe.Recipe
	rec.Name = strings.TrimSpace(doc.Find("h1").First().Text())

	ingredients.Each(func(_ int, s *goquery.Selection) {
		amount := strings.TrimSpace(s.Find("strong").First().Text())
		item := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s.Text()), amount))
		if amount == "" {
			amount, item = SplitIngredientLine(item)
		}
		if item != "" {
			rec.Ingredients = append(rec.Ingredients, recipe.Ingredient{Amount: amount, Item: item})
		}
	})
	doc.Find("ol.instructions li").Each(func(_ int, s *goquery.Selection) {
		if step := strings.TrimSpace(s.Text()); step != "" {
			rec.Instructions = append(rec.Instructions, step)
		}
	})

	meta := doc.Find(".recipe-meta").First()
	rec.ID = strings.TrimSpace(meta.AttrOr("data-id", ""))
	rec.Category = normalizeCategory(meta.AttrOr("data-category", ""))
	rec.Difficulty = meta.AttrOr("data-difficulty", "")
	rec.PrepTime, _ = strconv.Atoi(meta.AttrOr("data-prep-time", "0"))
	rec.CookTime, _ = strconv.Atoi(meta.AttrOr("data-cook-time", "0"))
	rec.Servings, _ = strconv.Atoi(meta.AttrOr("data-servings", "0"))
	rec.Tags = splitKeywords(meta.AttrOr("data-tags", ""))
	return rec, true
}

func normalizeCategory(raw string) string {
	c := strings.ToLower(strings.TrimSpace(raw))
	for _, known := range []string{recipe.CategoryBreakfast, recipe.CategoryLunch, recipe.CategoryDinner, recipe.CategorySnack} {
		if strings.Contains(c, known) {
			return known
		}
	}
	switch {
	case strings.Contains(c, "brunch"):
		return recipe.CategoryBreakfast
	case strings.Contains(c, "main"), strings.Contains(c, "entree"):
		return recipe.CategoryDinner
	case strings.Contains(c, "appetizer"):
		return recipe.CategorySnack
	}
	return c
}

func asString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case []any:
		if len(x) > 0 {
			return asString(x[0])
		}
	case map[string]any:
		return asString(x["@value"])
	}
	return ""
}

func asStrings(v any) []string {
	switch x := v.(type) {
	case []any:
		out := make([]string, 0, len(x))
		for _, item := range x {
			if s := strings.TrimSpace(asString(item)); s != "" {
				out = append(out, s)
			}
		}
		return out
	case nil:
		return nil
	default:
		if s := strings.TrimSpace(asString(x)); s != "" {
			return []string{s}
		}
	}
	return nil
}

func splitKeywords(v any) []string {
	var raw []string
	if s, ok := v.(string); ok {
		raw = strings.Split(s, ",")
	} else {
		raw = asStrings(v)
	}

	seen := make(map[string]bool)
	var tags []string
	for _, t := range raw {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		tags = append(tags, t)
	}
	return tags
}

// parseServings takes the first integer found in a recipeYield value.
func parseServings(v any) int {
	for _, s := range asStrings(v) {
		for _, field := range strings.Fields(s) {
			if n, err := strconv.Atoi(strings.Trim(field, "()")); err == nil && n > 0 {
				return n
			}
		}
	}
	return 0
}
