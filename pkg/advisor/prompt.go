package advisor

import (
	"fmt"
	"strings"
	"time"
)

func (c *Client) buildAdvicePrompt(mc *MarketContext) string {
	var b strings.Builder

	b.WriteString("You are a crypto trading advisor for a token buyback bot. Analyze the following data and provide advice on whether to execute a buyback.\n\n")

	b.WriteString("## Current Status\n")
	fmt.Fprintf(&b, "- Token Mint: %s\n", mc.FeeStatus.TokenMint)
	fmt.Fprintf(&b, "- Lifetime Fees Collected: %v SOL ($%.2f)\n",
		mc.FeeStatus.LifetimeFeesCollected, mc.FeeStatus.LifetimeFeesCollectedUsd)
	fmt.Fprintf(&b, "- Currently Claimable: %.4f SOL ($%.2f)\n",
		mc.FeeStatus.TotalClaimable, mc.FeeStatus.TotalClaimableUsd)
	fmt.Fprintf(&b, "- Wallet Balance: %.4f SOL\n", mc.WalletBalance)
	fmt.Fprintf(&b, "- Last Buyback: %s\n", formatLastBuyback(mc.LastBuybackTime))
	fmt.Fprintf(&b, "- Configured Threshold: %v SOL\n", c.threshold)
	fmt.Fprintf(&b, "- Configured Buyback Percentage: %d%%\n", c.percentage)

	b.WriteString("\n## Fee Sharers\n")
	for _, s := range mc.FeeStatus.FeeSharers {
		fmt.Fprintf(&b, "- %s: %v%% (claimed: %s)\n", s.Username, float64(s.RoyaltyBps)/100, s.TotalClaimed)
	}

	b.WriteString("\n## Buyback Quote (if available)\n")
	if mc.BuybackQuote != nil {
		fmt.Fprintf(&b, "- Input: %v SOL\n", mc.BuybackQuote.InputAmountSol)
		fmt.Fprintf(&b, "- Output: %v tokens\n", mc.BuybackQuote.OutputAmountTokens)
		fmt.Fprintf(&b, "- Price Impact: %s%%\n", mc.BuybackQuote.PriceImpact)
		fmt.Fprintf(&b, "- Effective Price: %.8f SOL/token\n", mc.BuybackQuote.EffectivePrice)
	} else {
		b.WriteString("No quote available\n")
	}

	b.WriteString("\n## Recent Buybacks\n")
	if len(mc.RecentBuybacks) > 0 {
		for _, r := range mc.RecentBuybacks {
			fmt.Fprintf(&b, "- %v SOL at %s (%s%% impact)\n",
				r.Amount, r.Timestamp.UTC().Format(time.RFC3339), r.PriceImpact)
		}
	} else {
		b.WriteString("No recent buybacks\n")
	}

	b.WriteString(`
Based on this data, provide a JSON response with:
1. shouldBuyback: boolean - whether to execute the buyback now
2. confidence: number 0-100 - how confident you are in this decision
3. suggestedAmount: number - suggested SOL amount for buyback (0 if not recommending)
4. reasoning: string - brief explanation of your decision
5. warnings: string[] - any concerns or risks to be aware of

Consider:
- Fee accumulation rate
- Price impact of the buyback
- Wallet balance and sustainability
- Timing relative to last buyback
- Market conditions implied by fee generation

Respond ONLY with valid JSON, no markdown or explanation.`)

	return b.String()
}

func (c *Client) buildStrategyPrompt(mc *MarketContext) string {
	var b strings.Builder

	b.WriteString("Analyze this token's fee collection and buyback strategy:\n\n")
	fmt.Fprintf(&b, "- Lifetime Fees: %v SOL\n", mc.FeeStatus.LifetimeFeesCollected)
	fmt.Fprintf(&b, "- Current Claimable: %v SOL\n", mc.FeeStatus.TotalClaimable)
	fmt.Fprintf(&b, "- Buyback Threshold: %v SOL\n", c.threshold)
	fmt.Fprintf(&b, "- Buyback Percentage: %d%%\n", c.percentage)
	fmt.Fprintf(&b, "- Min Interval: %v hours\n", c.minInterval.Hours())
	fmt.Fprintf(&b, "\nRecent buybacks: %d\n", len(mc.RecentBuybacks))
	fmt.Fprintf(&b, "Fee sharers: %d\n", len(mc.FeeStatus.FeeSharers))

	b.WriteString("\nProvide a brief (2-3 paragraphs) strategy analysis and recommendations for optimizing the buyback approach. Consider fee accumulation rate, timing, and market impact.")

	return b.String()
}

func formatLastBuyback(t time.Time) string {
	if t.IsZero() {
		return "Never"
	}
	return t.UTC().Format(time.RFC3339)
}
