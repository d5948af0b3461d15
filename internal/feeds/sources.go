package feeds

// DefaultSources lists the RSS feeds read for each global topic
var DefaultSources = map[string][]string{
	"sports": {
		"https://www.espn.com/espn/rss/news",
		"https://feeds.bbci.co.uk/sport/rss.xml",
		"https://www.theguardian.com/sport/rss",
	},
	"technology": {
		"https://www.theverge.com/rss/index.xml",
		"https://www.wired.com/feed/rss",
		"https://www.technologyreview.com/feed/",
		"https://www.engadget.com/rss.xml",
	},
	"business": {
		"https://www.cnbc.com/id/19746125/site/rss/",
		"https://feeds.feedburner.com/entrepreneur/latest",
		"https://hbr.org/resources/rss",
	},
	"entertainment": {
		"https://www.hollywoodreporter.com/feed",
		"https://variety.com/feed/",
		"https://deadline.com/feed/",
	},
	"science": {
		"https://www.sciencedaily.com/rss/top/science.xml",
		"https://www.nasa.gov/news-release/feed/",
		"https://www.newscientist.com/feed/home/",
	},
	"health": {
		"https://www.sciencedaily.com/rss/health_medicine.xml",
		"https://www.statnews.com/feed/",
	},
	"politics": {
		"https://rss.nytimes.com/services/xml/rss/nyt/Politics.xml",
		"https://www.politico.com/rss/politics.xml",
		"https://www.theguardian.com/politics/rss",
	},
	"gaming": {
		"https://www.polygon.com/rss/index.xml",
		"https://www.ign.com/feeds/news",
	},
}

// blockedKeywords mark headlines that are shopping, listicle or promotional content
var blockedKeywords = []string{
	"best ", "review", "tested", "ranked", "guide", "how to", "top ", " vs ",
	"deal", "sale", "discount", "coupon", "buy ", "shop", "save ",
	"subscription", "black friday", "cyber monday", "prime day",
	"$", "£", "€",
	"gifts", "accessories", "mattress", "sunglasses",
	"everything you need", "what you need", "must have", "should buy", "need to know",
	"today only", "limited time", "special offer", "promotion", "sponsored",
}
