package notifications

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"
)

// TelegramClient announces bot activity to a Telegram chat. Announcement
// failures are logged and swallowed; they never affect the cycle.
type TelegramClient struct {
	BotToken string
	ChatID   string
	Enabled  bool
}

// NewTelegramClient creates a new Telegram client
func NewTelegramClient(botToken, chatID string, enabled bool) *TelegramClient {
	return &TelegramClient{
		BotToken: botToken,
		ChatID:   chatID,
		Enabled:  enabled,
	}
}

// SendMessage sends an HTML-formatted message to the configured chat
func (t *TelegramClient) SendMessage(message string) error {
	if !t.Enabled || t.BotToken == "" || t.ChatID == "" {
		return nil // Silently ignore if Telegram is not configured
	}

	url := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", t.BotToken)

	payload := map[string]interface{}{
		"chat_id":                  t.ChatID,
		"text":                     message,
		"parse_mode":               "HTML",
		"disable_web_page_preview": true,
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal telegram payload: %w", err)
	}

	resp, err := http.Post(url, "application/json", bytes.NewBuffer(payloadBytes))
	if err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram API returned non-OK status: %d", resp.StatusCode)
	}

	return nil
}

// SendBuybackNotification announces an executed buyback
func (t *TelegramClient) SendBuybackNotification(inputSol, outputTokens float64, priceImpact, signature string) {
	message := fmt.Sprintf(
		"🔄 <b>Buyback Executed!</b> 🔄\n\n"+
			"💰 <b>Spent:</b> %.4f SOL\n"+
			"🪙 <b>Received:</b> %.0f tokens\n"+
			"📊 <b>Price Impact:</b> %s%%\n"+
			"🕒 <b>Time:</b> %s\n"+
			"🔗 <b>Transaction:</b> <a href=\"https://solscan.io/tx/%s\">View on Solscan</a>",
		inputSol, outputTokens, priceImpact,
		time.Now().Format("2006-01-02 15:04:05"),
		signature,
	)

	if err := t.SendMessage(message); err != nil {
		log.Printf("Failed to send buyback notification: %v", err)
	}
}

// SendFeesCollectedNotification announces a completed fee collection
func (t *TelegramClient) SendFeesCollectedNotification(totalSol, totalUsd float64, txCount int) {
	message := fmt.Sprintf(
		"💸 <b>Fees Collected!</b> 💸\n\n"+
			"💰 <b>Amount:</b> %.4f SOL\n"+
			"💵 <b>USD Value:</b> $%.2f\n"+
			"📦 <b>Claims:</b> %d transaction(s)\n"+
			"🕒 <b>Time:</b> %s",
		totalSol, totalUsd, txCount,
		time.Now().Format("2006-01-02 15:04:05"),
	)

	if err := t.SendMessage(message); err != nil {
		log.Printf("Failed to send fees collected notification: %v", err)
	}
}

// SendWelcomeMessage sends an initial message with the bot's configuration
func (t *TelegramClient) SendWelcomeMessage(walletAddress, tokenMint string, thresholdSol float64, percentage int, minInterval, checkInterval time.Duration) {
	message := fmt.Sprintf(
		"👋 <b>Welcome to the Bags.fm Buyback Bot!</b> 👋\n\n"+
			"🤖 <b>About this bot:</b>\n"+
			"This bot collects accrued creator fees from Bags.fm, "+
			"and uses the proceeds to buy back the configured token when conditions are right.\n\n"+
			"⚙️ <b>Current Settings:</b>\n"+
			"🔍 <b>Wallet:</b> %s\n"+
			"🪙 <b>Token:</b> %s\n"+
			"💵 <b>Buyback threshold:</b> %v SOL\n"+
			"📈 <b>Buyback percentage:</b> %d%%\n"+
			"⏱️ <b>Min interval:</b> %s\n"+
			"🔄 <b>Check interval:</b> %s\n\n"+
			"🚀 <b>Bot is now running!</b> You'll receive notifications automatically.",
		walletAddress,
		tokenMint,
		thresholdSol,
		percentage,
		formatDuration(minInterval),
		checkInterval.String(),
	)

	if err := t.SendMessage(message); err != nil {
		log.Printf("Failed to send welcome message: %v", err)
	}
}

// formatDuration formats a duration in a human-readable way
func formatDuration(d time.Duration) string {
	days := int(d.Hours() / 24)
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60

	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm", days, hours, minutes)
	} else if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}
