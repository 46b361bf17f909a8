package config

// DefaultSources returns the built-in source lists. Each call returns fresh
// slices and maps.
func DefaultSources() Sources {
	return Sources{
		SerperQueries: map[string][]string{
			"breaking": {"AI news today", "artificial intelligence breaking news"},
			"tools":    {"new AI tools launched", "AI product launch 2026"},
			"startups": {"AI startup funding", "AI company raised Series"},
			"research": {"AI research paper breakthrough", "large language model new"},
		},
		Subreddits:          []string{"artificial", "MachineLearning", "LocalLLaMA", "ChatGPT"},
		HackerNewsQuery:     "AI OR LLM OR GPT OR Claude OR artificial intelligence",
		HackerNewsMinPoints: 50,
		ArXivCategories:     []string{"cs.AI", "cs.CL", "cs.LG"},
		ProductHuntFeed:     "https://www.producthunt.com/feed",
		ProductHuntKeywords: []string{
			"ai", "gpt", "llm", "agent", "chatbot", "copilot", "assistant",
			"machine learning", "generative", "claude", "openai",
		},
		Feeds: []Feed{
			{Name: "TechCrunch AI", URL: "https://techcrunch.com/category/artificial-intelligence/feed/"},
			{Name: "The Verge AI", URL: "https://www.theverge.com/rss/ai-artificial-intelligence/index.xml"},
			{Name: "VentureBeat AI", URL: "https://venturebeat.com/category/ai/feed/"},
			{Name: "MIT Technology Review", URL: "https://www.technologyreview.com/feed/",
				Keywords: []string{"ai", "artificial intelligence", "model", "openai", "robot"}},
		},
		TwitterAccounts: map[string][]string{
			"official": {
				"AnthropicAI", "OpenAI", "GoogleAI", "GoogleDeepMind", "Meta", "MetaAI",
				"nvidia", "xai", "MistralAI", "huggingface", "StabilityAI", "midjourney",
				"runwayml", "perplexity_ai", "cohere", "deepseek_ai", "Apple",
			},
			"creators": {
				"mattshumer_", "DrJimFan", "karpathy", "emollick", "swyx", "AiBreakfast",
				"mreflow", "rowancheung", "RichardSocher", "ylecun", "AlphaSignalAI", "_akhaliq",
			},
			"news": {
				"TheAIGRID", "ai_for_success", "TheRundownAI", "techreview", "verge",
			},
		},
	}
}
