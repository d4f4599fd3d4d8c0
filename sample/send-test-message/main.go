package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/leadgram/leadgram/internal/infra/integration/telegram"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  .env file not found, using system environment variables")
	}

	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	chatID := os.Getenv("TELEGRAM_CHAT_ID")
	if token == "" || chatID == "" {
		log.Fatal("❌ TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID must be set in .env")
	}

	client := telegram.NewClient()

	fmt.Println("🔄 Sending test message...")
	fmt.Printf("📋 Chat: %s\n\n", chatID)

	msg, err := client.SendMessage(context.Background(), token, chatID,
		"<b>Leadgram test</b>\nIf you can read this, the bot token and chat ID are working.",
		telegram.SendMessageOptions{},
	)
	if err != nil {
		log.Fatalf("Failed to send test message: %v", err)
	}

	fmt.Printf("Message delivered! \n")
	fmt.Printf(" Telegram message ID: #%d\n", msg.MessageID)

	count, err := client.GetChatMemberCount(context.Background(), token, chatID)
	if err != nil {
		log.Printf("⚠️ Could not fetch member count: %v", err)
		return
	}
	fmt.Printf(" Chat member count: %d\n", count)
}
