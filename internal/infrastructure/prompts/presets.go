package prompts

import (
	"sort"
	"strings"
)

// Preset is a canned agent task. Browser presets need the browser-bound tools.
type Preset struct {
	Name        string
	Description string
	Browser     bool
	Task        string
}

var presets = map[string]Preset{
	"job_scraper": {
		Name:        "job_scraper",
		Description: "Scrape the YC job board into job_postings.json",
		Task: "Scrape all job postings from the following page: https://www.ycombinator.com/jobs " +
			"Include columns for: Job Title | Company | Location | Job URL | Employment Type " +
			"(Full-time, Part-time, Contract, etc.) | Remote Eligibility (Yes/No) and write it " +
			"in a new JSON file called 'job_postings.json'.",
	},
	"price_deal_finder": {
		Name:        "price_deal_finder",
		Description: "Find a cheap, well rated iPad case on Amazon",
		Browser:     true,
		Task: "Head over to this URL link: https://www.amazon.com/s?k=ipad+11+inch+case+with+keyboard " +
			"and find an iPad 11-inch case under $25 with at least a 4.5 out of 5 star rating. " +
			"Click on the product and provide its details, including the product name, price, " +
			"link to buy the product, and a summary of the reviews of the product.",
	},
	"recipe_bot": {
		Name:        "recipe_bot",
		Description: "Collect an oatmeal cookie recipe into oatmeal_cookie_recipe.csv",
		Browser:     true,
		Task: "Search for an easy and quick recipe for baking oatmeal cookies starting at " +
			"https://html.duckduckgo.com/html/?q=easy+quick+oatmeal+cookie+recipe. From one of the " +
			"links, extract the ingredients needed and instructions and put them into a CSV file " +
			"'oatmeal_cookie_recipe.csv'.",
	},
}

func LookupPreset(name string) (Preset, bool) {
	p, ok := presets[strings.ToLower(strings.TrimSpace(name))]
	return p, ok
}

// Presets returns every preset ordered by name.
func Presets() []Preset {
	result := make([]Preset, 0, len(presets))
	for _, p := range presets {
		result = append(result, p)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result
}
