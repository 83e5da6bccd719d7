// Package types provides type definitions for structured data used throughout the insight journal.
//
//nolint:revive // types is a standard Go package name pattern
package types

// PillarID identifies a topic pillar.
type PillarID string

// Pillar ids. PillarNewsletter is an output mode, not a content topic, and never owns insights.
const (
	PillarMarketStructure PillarID = "market_structure"
	PillarBitcoin         PillarID = "bitcoin"
	PillarEthereum        PillarID = "ethereum"
	PillarAltcoins        PillarID = "altcoins"
	PillarMemeCoins       PillarID = "meme_coins"
	PillarExchanges       PillarID = "exchanges"
	PillarRegulation      PillarID = "regulation"
	PillarSecurity        PillarID = "security"
	PillarNewsletter      PillarID = "newsletter"
)

// IsContent reports whether the id names a content pillar rather than the newsletter sentinel.
func (id PillarID) IsContent() bool {
	return id != "" && id != PillarNewsletter
}

// Pillar describes one topic pillar: the reflection questions asked for it and its reference lists.
// Questions are positional: reflection answers are aligned to them by index.
type Pillar struct {
	ID        PillarID `json:"id" yaml:"id" validate:"required"`
	Name      string   `json:"name" yaml:"name" validate:"required"`
	Icon      string   `json:"icon" yaml:"icon"`
	Questions []string `json:"questions" yaml:"questions" validate:"dive,required"`
	Sources   []string `json:"sources" yaml:"sources"`
	Metrics   []string `json:"metrics" yaml:"metrics"`
	Reminder  string   `json:"reminder" yaml:"reminder"`
}

// Clone returns a deep copy so callers cannot mutate catalog data.
func (p Pillar) Clone() Pillar {
	out := p
	out.Questions = append([]string(nil), p.Questions...)
	out.Sources = append([]string(nil), p.Sources...)
	out.Metrics = append([]string(nil), p.Metrics...)
	return out
}

// SuggestedSources is the provenance list offered when saving an insight.
var SuggestedSources = []string{
	"Glassnode",
	"DeFiLlama",
	"Twitter/X",
	"Manual Insight",
	"Farside",
	"Nansen",
	"Messari",
}
