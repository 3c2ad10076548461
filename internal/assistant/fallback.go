package assistant

import "strings"

const SystemPrompt = `You are Claude, an AI assistant integrated into ClaudeHub Dashboard. You help users analyze their business data, generate insights, create reports, and answer questions about their dashboard metrics.

Your capabilities include:
- Analyzing sales trends and patterns
- Providing business insights and recommendations
- Helping with data interpretation
- Generating summary reports
- Answering questions about metrics and KPIs
- Suggesting improvements based on data

Be helpful, concise, and actionable in your responses. When discussing numbers or trends, be specific and provide context. If you need more information to provide accurate analysis, ask clarifying questions.`

const (
	analysisReply = `**Demo Analysis Report**

Based on your dashboard data:
- Revenue is trending upward (+12.5% this month)
- User engagement is strong with 8,420 active users
- Project completion rate is at 89%

*This is a demo response. To enable real AI analysis, add your ANTHROPIC_API_KEY to the server environment.*`

	salesReply = `**Demo Sales Insights**

Your sales data shows:
- Total revenue: $124,500
- Online sales: 60% of total
- Top performing month: December

*This is a demo response. To enable real AI insights, add your ANTHROPIC_API_KEY to the server environment.*`

	helpReply = `**What I can help with:**

- Analyze your sales and revenue trends
- Generate reports and summaries
- Answer questions about your data
- Provide business recommendations
- Help with forecasting

*Currently in demo mode. Add your ANTHROPIC_API_KEY to the server environment to enable full AI capabilities.*`

	onboardingReply = `Thanks for your message! I'm currently running in demo mode.

To enable full Claude AI functionality:
1. Go to console.anthropic.com and get an API key
2. Set ANTHROPIC_API_KEY in the server environment or .env file
3. Restart the server

In the meantime, try asking me to "analyze sales" or "help" to see sample responses!`
)

// fallbackRoutes are checked in order; the first route with a matching
// keyword wins.
var fallbackRoutes = []struct {
	keywords []string
	reply    string
}{
	{[]string{"analyze", "analysis"}, analysisReply},
	{[]string{"sales", "revenue"}, salesReply},
	{[]string{"help", "what can"}, helpReply},
}

// FallbackResponse is the canned reply used when no credential is configured.
func FallbackResponse(message string) string {
	lower := strings.ToLower(message)
	for _, route := range fallbackRoutes {
		for _, kw := range route.keywords {
			if strings.Contains(lower, kw) {
				return route.reply
			}
		}
	}
	return onboardingReply
}
