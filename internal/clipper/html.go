package clipper

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"banquet-planner/internal/recipe"
)

// ParsedRecipe is a recipe read from a web page. Unparsed holds ingredient
// lines the rule-based parser could not read, in page order.
type ParsedRecipe struct {
	Recipe   recipe.Recipe
	Unparsed []string
}

// ParseRecipeHTML extracts a recipe from a post body.
func ParseRecipeHTML(title, html string) (ParsedRecipe, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ParsedRecipe{}, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return parseDocument(title, doc)
}

func parseDocument(title string, doc *goquery.Document) (ParsedRecipe, error) {
	// Remove noise before reading text.
	doc.Find("script, style, nav, footer, iframe, .ads, #ads").Remove()

	if title = strings.TrimSpace(title); title == "" {
		title = collapse(doc.Find("h1").First().Text())
	}
	if title == "" {
		title = collapse(doc.Find("title").First().Text())
	}
	if title == "" {
		return ParsedRecipe{}, fmt.Errorf("recipe has no title")
	}

	out := ParsedRecipe{Recipe: recipe.Recipe{Name: title}}

	doc.Find("p").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := collapse(s.Text())
		if text == "" || isAllergenLine(text) {
			return true
		}
		out.Recipe.Description = text
		return false
	})

	for _, line := range ingredientLines(doc) {
		ing, err := ParseIngredientLine(line)
		if err != nil {
			out.Unparsed = append(out.Unparsed, line)
			continue
		}
		out.Recipe.Ingredients = append(out.Recipe.Ingredients, ing)
	}
	if len(out.Recipe.Ingredients) == 0 && len(out.Unparsed) == 0 {
		return ParsedRecipe{}, fmt.Errorf("no ingredients found in %q", title)
	}

	doc.Find("p, li").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := collapse(s.Text())
		if !isAllergenLine(text) {
			return true
		}
		_, list, _ := strings.Cut(text, ":")
		out.Recipe.Allergens = parseAllergens(list)
		return false
	})

	return out, nil
}

// ingredientLines returns the list items under an "Ingredients" heading, or
// elements marked up as ingredients.
func ingredientLines(doc *goquery.Document) []string {
	var lines []string
	doc.Find("h1, h2, h3, h4").EachWithBreak(func(_ int, h *goquery.Selection) bool {
		if !strings.Contains(strings.ToLower(h.Text()), "ingredient") {
			return true
		}
		h.NextAllFiltered("ul, ol").First().Find("li").Each(func(_ int, li *goquery.Selection) {
			if text := collapse(li.Text()); text != "" {
				lines = append(lines, text)
			}
		})
		return len(lines) == 0
	})
	if len(lines) > 0 {
		return lines
	}

	doc.Find(`.ingredient, [itemprop="recipeIngredient"], .ingredients li`).Each(func(_ int, s *goquery.Selection) {
		if text := collapse(s.Text()); text != "" {
			lines = append(lines, text)
		}
	})
	return lines
}

func isAllergenLine(text string) bool {
	return strings.HasPrefix(strings.ToLower(text), "allergens:")
}

// parseAllergens splits a comma-separated list and uses the standard
// spelling for known allergens.
func parseAllergens(list string) []string {
	var out []string
	seen := map[string]bool{}
	for _, part := range strings.Split(list, ",") {
		a := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(part), "."))
		if a == "" || strings.EqualFold(a, "none") {
			continue
		}
		for _, std := range recipe.StandardAllergens {
			if strings.EqualFold(a, std) {
				a = std
				break
			}
		}
		if !seen[a] {
			seen[a] = true
			out = append(out, a)
		}
	}
	return out
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
