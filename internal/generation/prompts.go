package generation

import (
	"fmt"
	"strings"

	"github.com/zfogg/dailybrief/internal/models"
)

func headlinePrompt(label, date string) string {
	return fmt.Sprintf(`You are an AI news analyst specializing in trend analysis and headline generation.

Topic: %s
Date: %s

Please provide:
1. A concise, engaging headline about the current trends in this topic (max 15 words)
2. A detailed analysis of the current trends, developments, and state of this topic (200-300 words)

Format your response as a JSON object with two fields:
- headline: The headline text
- analysis: The detailed analysis text

Make sure the content is informative, engaging, and reads like a professional news article.`, label, date)
}

func summaryPrompt(article *models.Article, comments []models.Comment) string {
	var b strings.Builder
	b.WriteString("Please analyze the following article and its comments to provide a concise summary of people's opinions on the topic.\n\n")
	fmt.Fprintf(&b, "Article Headline: %s\n", article.Headline)
	fmt.Fprintf(&b, "Article Content: %s\n\n", article.Text)
	b.WriteString("Comments:\n")
	for _, c := range comments {
		fmt.Fprintf(&b, "%s: %s\n", c.Username, c.Text)
	}
	b.WriteString("\nPlease provide a brief summary (2-3 sentences) of the overall sentiment and key points discussed in the comments.")
	return b.String()
}

func answerPrompt(article *models.Article, question string) string {
	return fmt.Sprintf(`You are an AI assistant helping users understand news articles.
Please answer the user's question based on the following article:

Headline: %s
Content: %s

User's question: %s

Please provide a clear, concise, and accurate answer based on the article content.
If the question cannot be answered from the article, say so politely.
Keep your response focused and relevant to the question asked.`, article.Headline, article.Text, question)
}
