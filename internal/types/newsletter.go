package types

// NewsletterTypes are the editions offered for automated research.
var NewsletterTypes = []string{
	"Market Pulse",
	"Narrative Watch",
	"On-Chain Insight",
	"Meme Psychology",
	"Risk Report",
	"Builder / Investor Journal",
}

// ExampleHooks are opening lines suggested to the editor.
var ExampleHooks = []string{
	"What most crypto traders missed this week",
	"The metric no influencer is talking about",
	"Why the consensus is likely wrong about [Topic]",
	"Connecting the dots between macro and on-chain",
}

// NewsletterDraft is an in-progress newsletter. Drafts are not persisted.
// InsightIDs is empty for drafts produced by automated research.
type NewsletterDraft struct {
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	Type       string     `json:"type,omitempty"`
	Content    string     `json:"content"`
	InsightIDs []string   `json:"insightIds"`
	Sources    []Citation `json:"sources"`
	Date       string     `json:"date"`
}

// GeneratedNewsletter is the parsed result of a newsletter research call.
type GeneratedNewsletter struct {
	Title   string     `json:"title"`
	Content string     `json:"content"`
	Sources []Citation `json:"sources"`
}
