package scraper

import "strings"

// BaseURL is the root of the scraped site.
const BaseURL = "https://nof1.ai"

// modelProviders maps leaderboard display names to providers, including
// common variations of model names. Unknown names map to "Unknown".
var modelProviders = map[string]string{
	"DeepSeek V3.1":      "DeepSeek",
	"DeepSeek Chat V3.1": "DeepSeek",
	"Qwen3 Max":          "Alibaba",
	"Qwen 3 Max":         "Alibaba",
	"Claude Sonnet 4.5":  "Anthropic",
	"Claude 4.5 Sonnet":  "Anthropic",
	"Grok 4":             "xAI",
	"GPT-5":              "OpenAI",
	"Gemini 2.5 Pro":     "Google",
}

// modelSlugs maps display names to the URL slugs the site actually uses
// when they differ from the derived ones.
var modelSlugs = map[string]string{
	"DeepSeek V3.1":     "deepseek-chat-v3.1",
	"Qwen3 Max":         "qwen3-max",
	"Claude Sonnet 4.5": "claude-sonnet-4-5",
	"Grok 4":            "grok-4",
	"GPT-5":             "gpt-5",
	"Gemini 2.5 Pro":    "gemini-2-5-pro",
}

// ProviderFor returns the provider behind a model display name.
func ProviderFor(name string) string {
	if provider, ok := modelProviders[name]; ok {
		return provider
	}
	return "Unknown"
}

// Slugify derives a URL-safe identifier from a model display name.
func Slugify(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), " ", "-")
}

// ModelURL returns the detail page URL for a model display name, preferring
// the known slug table over the derived slug.
func ModelURL(name string) string {
	slug, ok := modelSlugs[name]
	if !ok {
		slug = Slugify(name)
	}
	return BaseURL + "/models/" + slug
}

// ResolveURL turns a harvested href into an absolute URL.
func ResolveURL(href string) string {
	if strings.HasPrefix(href, "/") {
		return BaseURL + href
	}
	return href
}
