package clients

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/bwmarrin/discordgo"

	"NinesolChat/app/chat"
)

var _ Interface = &DiscordClient{}

// DiscordClient answers support questions in Discord. Each channel maps to
// its own chat session, so conversations in different channels never share
// memory. `!reset` wipes the channel's session.
type DiscordClient struct {
	Client
	session   *discordgo.Session
	channelID string
}

func NewDiscordClientFromConfig(cfg map[string]string) (*DiscordClient, error) {
	token := cfg["token"]
	if token == "" {
		token = os.Getenv("DISCORD_TOKEN")
	}
	if token == "" {
		return nil, fmt.Errorf("discord client requires a token")
	}

	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}

	dc := &DiscordClient{
		session:   session,
		channelID: cfg["channel_id"],
	}

	session.AddHandler(dc.onMessageCreate)
	session.Identify.Intents = discordgo.IntentsGuildMessages | discordgo.IntentsDirectMessages

	return dc, nil
}

func (c *DiscordClient) Subscribe(sessions *chat.Manager) error {
	c.sessions = sessions
	if err := c.session.Open(); err != nil {
		return fmt.Errorf("open discord session: %w", err)
	}
	log.Println("💬 Discord client started. Listening for support questions...")
	return nil
}

func (c *DiscordClient) Close() error {
	return c.session.Close()
}

func (c *DiscordClient) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author.ID == s.State.User.ID {
		return
	}
	if c.channelID != "" && m.ChannelID != c.channelID {
		return
	}

	question := strings.TrimSpace(m.Content)
	if question == "" {
		return
	}

	ctx := context.Background()
	session := c.sessions.GetOrCreate(ctx, "discord-"+m.ChannelID)

	if question == "!reset" {
		if err := session.Reset(ctx); err != nil {
			log.Printf("⚠️ Error resetting session for channel %s: %v", m.ChannelID, err)
			c.reply(s, m.ChannelID, "Error: could not reset this conversation.")
			return
		}
		c.reply(s, m.ChannelID, "Conversation cleared. Ask me about Ninesol Technologies!")
		return
	}

	s.ChannelTyping(m.ChannelID)
	c.reply(s, m.ChannelID, session.Ask(ctx, question))
}

func (c *DiscordClient) reply(s *discordgo.Session, channelID, content string) {
	if _, err := s.ChannelMessageSend(channelID, content); err != nil {
		log.Printf("⚠️ Failed to send message to channel %s: %v", channelID, err)
	}
}
