// Package telegram adapts the Telegram Bot API to the engine: inbound
// messages, location shares, and commands on one side; text delivery,
// location prompts, and message cleanup on the other.
package telegram

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/jinbless/moelclaw/internal/authstore"
	"github.com/jinbless/moelclaw/internal/calendar"
	"github.com/jinbless/moelclaw/internal/engine"
	"github.com/jinbless/moelclaw/internal/logging"
)

const (
	msgNeedAuth = "먼저 /start 로 인증을 완료해주세요."

	msgUsage = "이미 인증되었습니다!\n" +
		"자연어로 일정을 관리하세요.\n\n" +
		"💡 사용 예시:\n" +
		"• \"내일 오후 3시에 팀 회의\"\n" +
		"• \"오늘 일정 뭐야?\"\n" +
		"• \"이번 주 일정 알려줘\"\n" +
		"• \"내일 팀 회의 삭제해줘\"\n" +
		"• \"팀 회의 시간 4시로 변경해줘\"\n" +
		"• \"강남역까지 가는 길 알려줘\""
)

// Bot connects the Telegram API to the dispatch engine
type Bot struct {
	api    *tgbotapi.BotAPI
	engine *engine.Engine
	auth   *authstore.Store
	oauth  *calendar.OAuth

	stopChan chan struct{}
}

// Config holds bot settings
type Config struct {
	Token  string
	Engine *engine.Engine
	Auth   *authstore.Store
	OAuth  *calendar.OAuth
	Debug  bool
}

// New creates a bot
func New(cfg Config) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	api.Debug = cfg.Debug

	return &Bot{
		api:      api,
		engine:   cfg.Engine,
		auth:     cfg.Auth,
		oauth:    cfg.OAuth,
		stopChan: make(chan struct{}),
	}, nil
}

// Start begins consuming updates. Each update is handled on its own
// goroutine so a slow calendar or model call only stalls that one flow.
func (b *Bot) Start() {
	logging.Info("telegram", "connected as @%s", b.api.Self.UserName)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := b.api.GetUpdatesChan(u)

	go func() {
		for {
			select {
			case <-b.stopChan:
				return
			case update, ok := <-updates:
				if !ok {
					return
				}
				go b.handleUpdate(update)
			}
		}
	}()
}

// Stop halts update consumption
func (b *Bot) Stop() {
	b.api.StopReceivingUpdates()
	close(b.stopChan)
}

func (b *Bot) handleUpdate(update tgbotapi.Update) {
	msg := update.Message
	if msg == nil {
		return
	}
	chatID := msg.Chat.ID
	ctx := context.Background()

	switch {
	case msg.Location != nil:
		err := b.engine.HandleLocation(ctx, chatID, msg.Location.Latitude, msg.Location.Longitude, msg.MessageID)
		if err != nil {
			logging.Error("telegram", "location for chat %d: %v", chatID, err)
		}

	case msg.IsCommand():
		b.handleCommand(ctx, msg)

	case msg.Text != "":
		if !b.auth.Authorized(chatID) {
			b.reply(chatID, msgNeedAuth)
			return
		}
		logging.Debug("telegram", "chat %d: %s", chatID, logging.Truncate(msg.Text, 50))
		if err := b.engine.HandleMessage(ctx, chatID, msg.Text); err != nil {
			logging.Error("telegram", "message for chat %d: %v", chatID, err)
		}
	}
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	switch msg.Command() {
	case "start":
		if b.auth.Authorized(chatID) {
			b.reply(chatID, msgUsage)
			return
		}
		b.reply(chatID, fmt.Sprintf(
			"안녕하세요! 📅 캘린더 봇입니다.\n\n"+
				"Google 계정을 연동하려면 아래 링크를 열어 인증해주세요:\n\n%s\n\n"+
				"인증 후 브라우저 주소창에서 code= 뒤의 값을 복사하여\n"+
				"/auth <코드> 형식으로 보내주세요.", b.oauth.AuthURL()))

	case "auth":
		b.handleAuth(ctx, chatID, strings.TrimSpace(msg.CommandArguments()))

	case "today":
		b.handleListing(ctx, chatID, b.engine.TodayListing)

	case "week":
		b.handleListing(ctx, chatID, b.engine.WeekListing)

	default:
		b.reply(chatID, "알 수 없는 명령입니다. /start 를 참고하세요.")
	}
}

// handleAuth exchanges the pasted authorization code and stores the
// resulting credentials for this chat
func (b *Bot) handleAuth(ctx context.Context, chatID int64, code string) {
	if code == "" {
		b.reply(chatID, "사용법: /auth <인증코드>\n인증코드는 Google 인증 후 주소창에서 code= 뒤의 값입니다.")
		return
	}

	b.reply(chatID, "🔄 인증 처리 중...")

	token, err := b.oauth.Exchange(ctx, code)
	if err != nil {
		logging.Error("telegram", "auth exchange for chat %d: %v", chatID, err)
		b.reply(chatID, "❌ 인증 실패. 코드를 다시 확인해주세요.")
		return
	}
	if err := b.auth.Save(chatID, token); err != nil {
		logging.Error("telegram", "save token for chat %d: %v", chatID, err)
		b.reply(chatID, "❌ 인증 정보 저장에 실패했습니다. 잠시 후 다시 시도해주세요.")
		return
	}

	b.reply(chatID, "✅ 인증 성공!\n이제 자연어로 일정을 관리할 수 있습니다.\n예: \"내일 오후 3시에 팀 회의\"")
}

func (b *Bot) handleListing(ctx context.Context, chatID int64, list func(context.Context) (string, error)) {
	if !b.auth.Authorized(chatID) {
		b.reply(chatID, msgNeedAuth)
		return
	}
	text, err := list(ctx)
	if err != nil {
		logging.Error("telegram", "listing for chat %d: %v", chatID, err)
		b.reply(chatID, "일정을 불러오는 중 오류가 발생했습니다.")
		return
	}
	b.reply(chatID, text)
}

func (b *Bot) reply(chatID int64, text string) {
	if err := b.SendText(chatID, text); err != nil {
		logging.Error("telegram", "send to chat %d: %v", chatID, err)
	}
}

// SendText implements engine.Transport
func (b *Bot) SendText(chatID int64, text string) error {
	_, err := b.api.Send(tgbotapi.NewMessage(chatID, text))
	return err
}

// SendLocationPrompt implements engine.Transport: the prompt carries a
// one-time reply keyboard with a location-share button
func (b *Bot) SendLocationPrompt(chatID int64, text string) (int, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	keyboard := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButtonLocation("📍 현재 위치 공유"),
		),
	)
	keyboard.OneTimeKeyboard = true
	msg.ReplyMarkup = keyboard

	sent, err := b.api.Send(msg)
	if err != nil {
		return 0, err
	}
	return sent.MessageID, nil
}

// DeleteMessage implements engine.Transport
func (b *Bot) DeleteMessage(chatID int64, messageID int) error {
	_, err := b.api.Request(tgbotapi.NewDeleteMessage(chatID, messageID))
	return err
}
