// Package bots carries the fixed roster of well-known crawler and AI-agent
// user agents. The roster feeds the bot-permission matrix and the
// "is this URL reachable as bot X" probe.
package bots

import "strings"

// Category buckets roster entries by what kind of crawler they are.
type Category string

const (
	CategorySearch Category = "search"
	CategoryAI     Category = "ai"
)

// Agent is one roster entry: the short crawler name used in robots.txt
// groups and the literal wire-level User-Agent string it sends.
type Agent struct {
	Name      string   `json:"name"`
	UserAgent string   `json:"userAgent"`
	Category  Category `json:"category"`
}

// Roster is the fixed, ordered table of agents evaluated on every scan.
// Order is presentation order; do not sort.
var Roster = []Agent{
	{Name: "Googlebot", UserAgent: "Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)", Category: CategorySearch},
	{Name: "Bingbot", UserAgent: "Mozilla/5.0 (compatible; bingbot/2.0; +http://www.bing.com/bingbot.htm)", Category: CategorySearch},
	{Name: "DuckDuckBot", UserAgent: "DuckDuckBot/1.0; (+http://duckduckgo.com/duckduckbot.html)", Category: CategorySearch},
	{Name: "YandexBot", UserAgent: "Mozilla/5.0 (compatible; YandexBot/3.0; +http://yandex.com/bots)", Category: CategorySearch},
	{Name: "Baiduspider", UserAgent: "Mozilla/5.0 (compatible; Baiduspider/2.0; +http://www.baidu.com/search/spider.html)", Category: CategorySearch},
	{Name: "GPTBot", UserAgent: "Mozilla/5.0 AppleWebKit/537.36 (KHTML, like Gecko); compatible; GPTBot/1.2; +https://openai.com/gptbot", Category: CategoryAI},
	{Name: "ChatGPT-User", UserAgent: "Mozilla/5.0 AppleWebKit/537.36 (KHTML, like Gecko); compatible; ChatGPT-User/1.0; +https://openai.com/bot", Category: CategoryAI},
	{Name: "ClaudeBot", UserAgent: "Mozilla/5.0 AppleWebKit/537.36 (KHTML, like Gecko; compatible; ClaudeBot/1.0; +claudebot@anthropic.com)", Category: CategoryAI},
	{Name: "anthropic-ai", UserAgent: "anthropic-ai/1.0", Category: CategoryAI},
	{Name: "Google-Extended", UserAgent: "Mozilla/5.0 (compatible; Google-Extended/1.0; +https://developers.google.com/search/docs/crawling-indexing/overview-google-crawlers)", Category: CategoryAI},
	{Name: "CCBot", UserAgent: "CCBot/2.0 (https://commoncrawl.org/faq/)", Category: CategoryAI},
	{Name: "PerplexityBot", UserAgent: "Mozilla/5.0 AppleWebKit/537.36 (KHTML, like Gecko; compatible; PerplexityBot/1.0; +https://perplexity.ai/perplexitybot)", Category: CategoryAI},
	{Name: "Bytespider", UserAgent: "Mozilla/5.0 (compatible; Bytespider; spider-feedback@bytedance.com)", Category: CategoryAI},
	{Name: "Applebot-Extended", UserAgent: "Mozilla/5.0 (compatible; Applebot-Extended/0.1; +https://support.apple.com/kb/HT204683)", Category: CategoryAI},
}

// Lookup finds a roster entry by name, case-insensitively.
func Lookup(name string) (Agent, bool) {
	for _, a := range Roster {
		if strings.EqualFold(a.Name, name) {
			return a, true
		}
	}
	return Agent{}, false
}

// AINames returns the names of the AI-crawler subset of the roster.
func AINames() []string {
	var names []string
	for _, a := range Roster {
		if a.Category == CategoryAI {
			names = append(names, a.Name)
		}
	}
	return names
}
