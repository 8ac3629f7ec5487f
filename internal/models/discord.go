// File: internal/models/discord.go
package models

import "time"

// DiscordUser describes the author of a message
type DiscordUser struct {
	ID            int64  `json:"id"`
	Username      string `json:"username"`
	Discriminator string `json:"discriminator"`
	Avatar        string `json:"avatar,omitempty"`
	Bot           bool   `json:"bot"`
	System        bool   `json:"system"`
}

// DiscordAttachment describes a file attached to a message
type DiscordAttachment struct {
	ID          int64  `json:"id"`
	Filename    string `json:"filename"`
	ContentType string `json:"content_type,omitempty"`
	Size        int    `json:"size"`
	URL         string `json:"url"`
	ProxyURL    string `json:"proxy_url,omitempty"`
	Width       int    `json:"width,omitempty"`
	Height      int    `json:"height,omitempty"`
}

// DiscordEmbedFooter is the footer section of an embed
type DiscordEmbedFooter struct {
	Text    string `json:"text"`
	IconURL string `json:"icon_url,omitempty"`
}

// DiscordEmbedAuthor is the author section of an embed
type DiscordEmbedAuthor struct {
	Name    string `json:"name"`
	URL     string `json:"url,omitempty"`
	IconURL string `json:"icon_url,omitempty"`
}

// DiscordEmbedField is a single field of an embed
type DiscordEmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

// DiscordEmbed describes a rich embed on a message
type DiscordEmbed struct {
	Title       string              `json:"title,omitempty"`
	Type        string              `json:"type,omitempty"`
	Description string              `json:"description,omitempty"`
	URL         string              `json:"url,omitempty"`
	Timestamp   string              `json:"timestamp,omitempty"`
	Color       int                 `json:"color,omitempty"`
	Footer      *DiscordEmbedFooter `json:"footer,omitempty"`
	Author      *DiscordEmbedAuthor `json:"author,omitempty"`
	Fields      []DiscordEmbedField `json:"fields,omitempty"`
}

// DiscordReaction describes an aggregated reaction on a message
type DiscordReaction struct {
	EmojiName string `json:"emoji_name"`
	EmojiID   int64  `json:"emoji_id,omitempty"`
	Count     int    `json:"count"`
	Me        bool   `json:"me"`
}

// DiscordSticker describes a sticker sent with a message
type DiscordSticker struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	FormatType int    `json:"format_type"`
}

// DiscordMessage is the event payload mirrored from a Discord channel.
// Field names follow the wire format stored in the events table.
type DiscordMessage struct {
	ID              int64               `json:"id"`
	ChannelID       int64               `json:"channel_id"`
	GuildID         int64               `json:"guild_id,omitempty"`
	Author          DiscordUser         `json:"author"`
	Content         string              `json:"content"`
	Timestamp       time.Time           `json:"timestamp"`
	EditedTimestamp *time.Time          `json:"edited_timestamp,omitempty"`
	TTS             bool                `json:"tts"`
	MentionEveryone bool                `json:"mention_everyone"`
	Mentions        []DiscordUser       `json:"mentions,omitempty"`
	Attachments     []DiscordAttachment `json:"attachments,omitempty"`
	Embeds          []DiscordEmbed      `json:"embeds,omitempty"`
	Reactions       []DiscordReaction   `json:"reactions,omitempty"`
	Stickers        []DiscordSticker    `json:"stickers,omitempty"`
	Pinned          bool                `json:"pinned"`
	Type            int                 `json:"type"`

	// Reply context, flattened onto the root payload
	ReferencedMessageID      int64  `json:"referenced_message_id,omitempty"`
	ReferencedMessageContent string `json:"referenced_message_content,omitempty"`
	ReferencedMessageAuthor  string `json:"referenced_message_author,omitempty"`
}
