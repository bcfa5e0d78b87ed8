package telegram

import (
	"context"
	"fmt"

	"onboardbot/internal/transport"
)

type inlineButton struct {
	Text         string `json:"text"`
	CallbackData string `json:"callback_data"`
}

type inlineKeyboard struct {
	InlineKeyboard [][]inlineButton `json:"inline_keyboard"`
}

type replyButton struct {
	Text string `json:"text"`
}

type replyKeyboard struct {
	Keyboard        [][]replyButton `json:"keyboard"`
	ResizeKeyboard  bool            `json:"resize_keyboard"`
	OneTimeKeyboard bool            `json:"one_time_keyboard"`
}

type removeKeyboard struct {
	RemoveKeyboard bool `json:"remove_keyboard"`
}

// Send delivers an outbound response through the Bot API.
func (c *Client) Send(ctx context.Context, out transport.Outbound) error {
	switch msg := out.(type) {
	case transport.TextMessage:
		params := map[string]any{
			"chat_id": msg.ChatID,
			"text":    msg.Text,
		}
		switch {
		case len(msg.ReplyKeyboard) > 0:
			keyboard := replyKeyboard{ResizeKeyboard: true, OneTimeKeyboard: true}
			for _, row := range msg.ReplyKeyboard {
				buttons := make([]replyButton, len(row))
				for i, text := range row {
					buttons[i] = replyButton{Text: text}
				}
				keyboard.Keyboard = append(keyboard.Keyboard, buttons)
			}
			params["reply_markup"] = keyboard
		case msg.RemoveKeyboard:
			params["reply_markup"] = removeKeyboard{RemoveKeyboard: true}
		}
		return c.call(ctx, "sendMessage", params, nil)

	case transport.PhotoPrompt:
		return c.call(ctx, "sendPhoto", map[string]any{
			"chat_id":      msg.ChatID,
			"photo":        msg.FileID,
			"caption":      msg.Caption,
			"reply_markup": buildInlineKeyboard(msg.Buttons),
		}, nil)

	case transport.DocumentPrompt:
		return c.call(ctx, "sendDocument", map[string]any{
			"chat_id":      msg.ChatID,
			"document":     msg.FileID,
			"caption":      msg.Caption,
			"reply_markup": buildInlineKeyboard(msg.Buttons),
		}, nil)

	case transport.DeleteMessage:
		return c.call(ctx, "deleteMessage", map[string]any{
			"chat_id":    msg.ChatID,
			"message_id": msg.MessageID,
		}, nil)

	default:
		return fmt.Errorf("unsupported outbound type %T", out)
	}
}

// AckCallback stops the client-side progress indicator on an answered
// inline keyboard.
func (c *Client) AckCallback(ctx context.Context, queryID string) error {
	return c.call(ctx, "answerCallbackQuery", map[string]any{
		"callback_query_id": queryID,
	}, nil)
}

func buildInlineKeyboard(buttons []transport.Button) inlineKeyboard {
	// One button per row keeps long labels readable on phones.
	keyboard := inlineKeyboard{InlineKeyboard: make([][]inlineButton, 0, len(buttons))}
	for _, b := range buttons {
		keyboard.InlineKeyboard = append(keyboard.InlineKeyboard, []inlineButton{
			{Text: b.Label, CallbackData: b.Data},
		})
	}
	return keyboard
}

var _ transport.Responder = (*Client)(nil)

var _ transport.FileFetcher = (*Client)(nil)
