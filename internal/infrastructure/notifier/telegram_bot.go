package notifier

import (
	"context"
	"fmt"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"

	"promo-engine/internal/domain/entity"
)

// TelegramBot pushes operational alerts to a staff chat.
type TelegramBot struct {
	bot    *telego.Bot
	chatID int64
}

func NewTelegramBot(token string, chatID int64) (*TelegramBot, error) {
	bot, err := telego.NewBot(token)
	if err != nil {
		return nil, fmt.Errorf("create bot: %w", err)
	}

	return &TelegramBot{
		bot:    bot,
		chatID: chatID,
	}, nil
}

// DealCapReached announces that a deal's total usage cap is fully consumed.
func (b *TelegramBot) DealCapReached(ctx context.Context, deal entity.Deal) error {
	maxUsage := 0
	if deal.MaxTotalUsage != nil {
		maxUsage = *deal.MaxTotalUsage
	}

	text := fmt.Sprintf(
		"🚫 <b>Deal cap reached</b>\n\n"+
			"🏷 <b>Name:</b> %s\n"+
			"🧾 <b>Type:</b> %s\n"+
			"📊 <b>Usage:</b> %d / %d\n\n"+
			"The deal will no longer apply at checkout.",
		deal.Name,
		deal.Type,
		maxUsage,
		maxUsage,
	)

	msg := tu.Message(
		tu.ID(b.chatID),
		text,
	).WithParseMode(telego.ModeHTML)

	if _, err := b.bot.SendMessage(ctx, msg); err != nil {
		return fmt.Errorf("send message: %w", err)
	}

	return nil
}

// SendText sends a plain text message.
func (b *TelegramBot) SendText(ctx context.Context, text string) error {
	msg := tu.Message(tu.ID(b.chatID), text)

	_, err := b.bot.SendMessage(ctx, msg)
	return err
}
