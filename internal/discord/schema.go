// File: internal/discord/schema.go
package discord

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/bwmarrin/discordgo"

	"github.com/psyche-voyage/launchpad/internal/models"
)

// parseSnowflake converts a Discord snowflake string to int64. Invalid
// input yields zero.
func parseSnowflake(s string) int64 {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return id
}

func convertUser(u *discordgo.User) models.DiscordUser {
	if u == nil {
		return models.DiscordUser{}
	}
	return models.DiscordUser{
		ID:            parseSnowflake(u.ID),
		Username:      u.Username,
		Discriminator: u.Discriminator,
		Avatar:        u.Avatar,
		Bot:           u.Bot,
		System:        u.System,
	}
}

func convertAttachments(attachments []*discordgo.MessageAttachment) []models.DiscordAttachment {
	if len(attachments) == 0 {
		return nil
	}
	out := make([]models.DiscordAttachment, 0, len(attachments))
	for _, a := range attachments {
		out = append(out, models.DiscordAttachment{
			ID:          parseSnowflake(a.ID),
			Filename:    a.Filename,
			ContentType: a.ContentType,
			Size:        a.Size,
			URL:         a.URL,
			ProxyURL:    a.ProxyURL,
			Width:       a.Width,
			Height:      a.Height,
		})
	}
	return out
}

func convertEmbeds(embeds []*discordgo.MessageEmbed) []models.DiscordEmbed {
	if len(embeds) == 0 {
		return nil
	}
	out := make([]models.DiscordEmbed, 0, len(embeds))
	for _, e := range embeds {
		embed := models.DiscordEmbed{
			Title:       e.Title,
			Type:        string(e.Type),
			Description: e.Description,
			URL:         e.URL,
			Timestamp:   e.Timestamp,
			Color:       e.Color,
		}
		if e.Footer != nil {
			embed.Footer = &models.DiscordEmbedFooter{
				Text:    e.Footer.Text,
				IconURL: e.Footer.IconURL,
			}
		}
		if e.Author != nil {
			embed.Author = &models.DiscordEmbedAuthor{
				Name:    e.Author.Name,
				URL:     e.Author.URL,
				IconURL: e.Author.IconURL,
			}
		}
		for _, f := range e.Fields {
			embed.Fields = append(embed.Fields, models.DiscordEmbedField{
				Name:   f.Name,
				Value:  f.Value,
				Inline: f.Inline,
			})
		}
		out = append(out, embed)
	}
	return out
}

func convertReactions(reactions []*discordgo.MessageReactions) []models.DiscordReaction {
	if len(reactions) == 0 {
		return nil
	}
	out := make([]models.DiscordReaction, 0, len(reactions))
	for _, r := range reactions {
		reaction := models.DiscordReaction{
			Count: r.Count,
			Me:    r.Me,
		}
		if r.Emoji != nil {
			reaction.EmojiName = r.Emoji.Name
			reaction.EmojiID = parseSnowflake(r.Emoji.ID)
		}
		out = append(out, reaction)
	}
	return out
}

func convertStickers(stickers []*discordgo.StickerItem) []models.DiscordSticker {
	if len(stickers) == 0 {
		return nil
	}
	out := make([]models.DiscordSticker, 0, len(stickers))
	for _, s := range stickers {
		out = append(out, models.DiscordSticker{
			ID:         parseSnowflake(s.ID),
			Name:       s.Name,
			FormatType: int(s.FormatType),
		})
	}
	return out
}

func convertMentions(mentions []*discordgo.User) []models.DiscordUser {
	if len(mentions) == 0 {
		return nil
	}
	out := make([]models.DiscordUser, 0, len(mentions))
	for _, u := range mentions {
		out = append(out, convertUser(u))
	}
	return out
}

// ConvertMessage maps a gateway message to the stored event payload schema
func ConvertMessage(m *discordgo.Message) models.DiscordMessage {
	msg := models.DiscordMessage{
		ID:              parseSnowflake(m.ID),
		ChannelID:       parseSnowflake(m.ChannelID),
		GuildID:         parseSnowflake(m.GuildID),
		Author:          convertUser(m.Author),
		Content:         m.Content,
		Timestamp:       m.Timestamp,
		EditedTimestamp: m.EditedTimestamp,
		TTS:             m.TTS,
		MentionEveryone: m.MentionEveryone,
		Mentions:        convertMentions(m.Mentions),
		Attachments:     convertAttachments(m.Attachments),
		Embeds:          convertEmbeds(m.Embeds),
		Reactions:       convertReactions(m.Reactions),
		Stickers:        convertStickers(m.StickerItems),
		Pinned:          m.Pinned,
		Type:            int(m.Type),
	}

	if ref := m.ReferencedMessage; ref != nil {
		msg.ReferencedMessageID = parseSnowflake(ref.ID)
		msg.ReferencedMessageContent = ref.Content
		if ref.Author != nil {
			msg.ReferencedMessageAuthor = ref.Author.Username
		}
	}

	return msg
}

// MessageToPayload flattens a converted message into the generic event
// payload map
func MessageToPayload(msg models.DiscordMessage) (map[string]interface{}, error) {
	raw, err := json.Marshal(msg)
	if err != nil {
		return nil, err
	}
	// UseNumber keeps snowflake IDs intact; they overflow float64
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var payload map[string]interface{}
	if err := dec.Decode(&payload); err != nil {
		return nil, err
	}
	return payload, nil
}
