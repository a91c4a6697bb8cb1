package telegram

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/gotd/td/session"
	"github.com/gotd/td/telegram"
	"github.com/gotd/td/telegram/auth"
	"github.com/gotd/td/telegram/downloader"
	"github.com/gotd/td/tg"
	"go.uber.org/zap"
)

// Client encapsulates the Telegram MTProto client used for channel scraping.
type Client struct {
	*telegram.Client
	AuthCompleted chan struct{} // closed once authentication finishes
	logger        *zap.Logger
}

// NewClient creates and initializes a new Telegram client with file-based
// session storage, so the auth code is only requested on the first run.
func NewClient(apiID int, apiHash, sessionFile string, logger *zap.Logger) *Client {
	client := telegram.NewClient(apiID, apiHash, telegram.Options{
		Logger:         logger.Named("gotd"),
		SessionStorage: &session.FileStorage{Path: sessionFile},
	})

	return &Client{
		Client:        client,
		AuthCompleted: make(chan struct{}),
		logger:        logger,
	}
}

// Run starts the Telegram client, authenticates, and blocks until ctx is
// cancelled.
func (c *Client) Run(ctx context.Context, phone string) error {
	return c.Client.Run(ctx, func(ctx context.Context) error {
		if err := c.auth(ctx, phone); err != nil {
			return fmt.Errorf("authentication failed: %w", err)
		}
		c.logger.Info("Telegram client started and authenticated")
		close(c.AuthCompleted)

		<-ctx.Done()
		return ctx.Err()
	})
}

func (c *Client) auth(ctx context.Context, phone string) error {
	flow := auth.NewFlow(
		auth.Constant(phone, "", auth.CodeAuthenticatorFunc(func(ctx context.Context, sentCode *tg.AuthSentCode) (string, error) {
			fmt.Print("Enter Telegram code: ")
			code, err := bufio.NewReader(os.Stdin).ReadString('\n')
			if err != nil {
				return "", err
			}
			return strings.TrimSpace(code), nil
		})),
		auth.SendCodeOptions{},
	)

	return flow.Run(ctx, c.Client.Auth())
}

// ResolveChannel resolves a public channel by username.
func (c *Client) ResolveChannel(ctx context.Context, username string) (*tg.Channel, error) {
	peer, err := c.API().ContactsResolveUsername(ctx, &tg.ContactsResolveUsernameRequest{
		Username: username,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", username, err)
	}

	for _, chat := range peer.Chats {
		if ch, ok := chat.(*tg.Channel); ok {
			return ch, nil
		}
	}
	return nil, fmt.Errorf("%s is not a channel", username)
}

// FetchHistory returns up to limit messages from the channel, newest first.
func (c *Client) FetchHistory(ctx context.Context, channel *tg.Channel, limit int) ([]*tg.Message, error) {
	peer := &tg.InputPeerChannel{ChannelID: channel.ID, AccessHash: channel.AccessHash}

	var (
		messages []*tg.Message
		offsetID int
	)
	for len(messages) < limit {
		batch := limit - len(messages)
		if batch > 100 {
			batch = 100
		}

		history, err := c.API().MessagesGetHistory(ctx, &tg.MessagesGetHistoryRequest{
			Peer:     peer,
			OffsetID: offsetID,
			Limit:    batch,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to get history for %s: %w", channel.Username, err)
		}

		var raw []tg.MessageClass
		switch h := history.(type) {
		case *tg.MessagesChannelMessages:
			raw = h.Messages
		case *tg.MessagesMessagesSlice:
			raw = h.Messages
		case *tg.MessagesMessages:
			raw = h.Messages
		default:
			c.logger.Warn("Unknown history type", zap.String("type", fmt.Sprintf("%T", history)))
		}
		if len(raw) == 0 {
			break
		}

		before := len(messages)
		for _, m := range raw {
			msg, ok := m.(*tg.Message)
			if !ok {
				continue // service messages
			}
			messages = append(messages, msg)
			offsetID = msg.ID
		}
		if len(messages) == before {
			break
		}
	}

	return messages, nil
}

// DownloadPhoto saves the message's photo into dir and returns the saved path.
// It returns an empty path when the message carries no downloadable photo.
func (c *Client) DownloadPhoto(ctx context.Context, msg *tg.Message, dir string) (string, error) {
	media, ok := msg.Media.(*tg.MessageMediaPhoto)
	if !ok {
		return "", nil
	}
	photoClass, ok := media.GetPhoto()
	if !ok {
		return "", nil
	}
	photo, ok := photoClass.AsNotEmpty()
	if !ok {
		return "", nil
	}

	var thumb string
	for _, s := range photo.Sizes {
		switch size := s.(type) {
		case *tg.PhotoSize:
			thumb = size.Type
		case *tg.PhotoSizeProgressive:
			thumb = size.Type
		}
	}
	if thumb == "" {
		return "", nil
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create media dir: %w", err)
	}
	path := fmt.Sprintf("%s/photo_%d.jpg", dir, msg.ID)

	loc := &tg.InputPhotoFileLocation{
		ID:            photo.ID,
		AccessHash:    photo.AccessHash,
		FileReference: photo.FileReference,
		ThumbSize:     thumb,
	}
	if _, err := downloader.NewDownloader().Download(c.API(), loc).ToPath(ctx, path); err != nil {
		return "", fmt.Errorf("failed to download photo for message %d: %w", msg.ID, err)
	}

	return path, nil
}
