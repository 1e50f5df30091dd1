package services

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"fincast/models"
)

type DiscordBotService struct {
	session   *discordgo.Session
	channelID string
	botID     string
	enabled   bool
}

func NewDiscordBotService(token string, channelID string) (*DiscordBotService, error) {
	if token == "" {
		log.Println("Discord bot token not provided, Discord notifications disabled")
		return &DiscordBotService{enabled: false}, nil
	}

	if channelID == "" {
		log.Println("Discord channel ID not provided, Discord notifications disabled")
		return &DiscordBotService{enabled: false}, nil
	}

	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord session: %w", err)
	}

	user, err := session.User("@me")
	if err != nil {
		return nil, fmt.Errorf("failed to get bot user: %w", err)
	}

	botService := &DiscordBotService{
		session:   session,
		channelID: channelID,
		botID:     user.ID,
		enabled:   true,
	}

	session.AddHandler(botService.messageHandler)

	err = session.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open Discord connection: %w", err)
	}

	log.Printf("Discord bot connected successfully! Bot ID: %s, Channel: %s", user.ID, channelID)

	return botService, nil
}

func (d *DiscordBotService) Close() {
	if d.enabled && d.session != nil {
		log.Println("Closing Discord bot connection...")
		d.session.Close()
	}
}

// messageHandler handles incoming Discord messages
func (d *DiscordBotService) messageHandler(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author.ID == d.botID {
		return
	}

	if m.ChannelID != d.channelID {
		return
	}

	if strings.HasPrefix(m.Content, "!fincast") {
		args := strings.Fields(m.Content)
		if len(args) < 2 {
			return
		}

		cmd := args[1]
		switch cmd {
		case "ping":
			s.ChannelMessageSend(m.ChannelID, "Pong! Fincast bot is online!")
		case "help":
			helpMsg := "**Fincast Bot Commands:**\n" +
				"`!fincast ping` - Check if bot is online\n" +
				"`!fincast help` - Show this help message"
			s.ChannelMessageSend(m.ChannelID, helpMsg)
		default:
			s.ChannelMessageSend(m.ChannelID, fmt.Sprintf("Unknown command: `%s`. Try `!fincast help`", cmd))
		}
	}
}

// SendAlert sends a fired alert to the configured channel
func (d *DiscordBotService) SendAlert(profile *models.AlertProfile, matched []string, sample *models.ConditionSample) error {
	if !d.enabled {
		return fmt.Errorf("Discord bot not enabled")
	}

	embed := d.createAlertEmbed(profile, matched, sample, false)

	_, err := d.session.ChannelMessageSendEmbed(d.channelID, embed)
	if err != nil {
		return fmt.Errorf("failed to send Discord message: %w", err)
	}

	log.Printf("Alert sent to Discord: %s", profile.Name)
	return nil
}

// SendTestAlert sends a test alert
func (d *DiscordBotService) SendTestAlert(profile *models.AlertProfile, matched []string, sample *models.ConditionSample) error {
	if !d.enabled {
		return fmt.Errorf("Discord bot not enabled")
	}

	embed := d.createAlertEmbed(profile, matched, sample, true)

	_, err := d.session.ChannelMessageSendEmbed(d.channelID, embed)
	if err != nil {
		return fmt.Errorf("failed to send Discord test message: %w", err)
	}

	log.Printf("Test alert sent to Discord: %s", profile.Name)
	return nil
}

func (d *DiscordBotService) createAlertEmbed(profile *models.AlertProfile, matched []string, sample *models.ConditionSample, test bool) *discordgo.MessageEmbed {
	title := "Conditions alert: " + profile.Name
	color := d.colorForScore(sample)
	footer := fmt.Sprintf("Alert ID: %s", profile.ID)

	if test {
		title = "Test alert: " + profile.Name
		color = 3447003 // Blue for test
		footer = "Test Alert"
	}

	location := profile.LocationName
	if location == "" {
		location = fmt.Sprintf("%.3f, %.3f", profile.Lat, profile.Lng)
	}

	embed := &discordgo.MessageEmbed{
		Title:       title,
		Description: fmt.Sprintf("Matched: %s", strings.Join(matched, ", ")),
		Color:       color,
		Fields:      d.buildFields(location, sample),
		Footer: &discordgo.MessageEmbedFooter{
			Text: footer,
		},
		Timestamp: time.Now().Format(time.RFC3339),
	}

	return embed
}

func (d *DiscordBotService) colorForScore(sample *models.ConditionSample) int {
	if sample == nil {
		return 3447003 // Blue
	}
	switch {
	case sample.Score >= 75:
		return 3066993 // Green
	case sample.Score >= 50:
		return 15844367 // Gold
	default:
		return 15105570 // Orange
	}
}

func (d *DiscordBotService) buildFields(location string, sample *models.ConditionSample) []*discordgo.MessageEmbedField {
	fields := []*discordgo.MessageEmbedField{
		{
			Name:   "Location",
			Value:  location,
			Inline: true,
		},
		{
			Name:   "Triggered At",
			Value:  time.Now().Format("2006-01-02 15:04:05 MST"),
			Inline: true,
		},
	}

	if sample == nil {
		return fields
	}

	fields = append(fields,
		&discordgo.MessageEmbedField{
			Name:   "Wind",
			Value:  fmt.Sprintf("%.1f km/h @ %.0f°", sample.WindSpeed, sample.WindDirection),
			Inline: true,
		},
		&discordgo.MessageEmbedField{
			Name:   "Pressure",
			Value:  fmt.Sprintf("%.1f hPa (%s)", sample.Pressure, sample.PressureTrend),
			Inline: true,
		},
	)

	if sample.TidePhase != "" {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:   "Tide",
			Value:  fmt.Sprintf("%s (%.2f m exchange)", sample.TidePhase, sample.TideExchange),
			Inline: true,
		})
	}
	if sample.WaterTemp != 0 {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:   "Water Temp",
			Value:  fmt.Sprintf("%.1f °C", sample.WaterTemp),
			Inline: true,
		})
	}

	fields = append(fields, &discordgo.MessageEmbedField{
		Name:   "Fishing Score",
		Value:  fmt.Sprintf("%.0f / 100", sample.Score),
		Inline: true,
	})

	return fields
}
