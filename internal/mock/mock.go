// Package mock holds the fixed data the client simulates against: servers,
// channels, friends, seed messages and the synthetic reply pool.
package mock

import (
	"time"

	"github.com/saravenpi/chorus/internal/models"
)

// Avatars is the fixed set offered at registration. The first entry is the default.
var Avatars = []string{"👨‍🚀", "🎮", "🎯", "⚔️", "🦇", "🚀", "⚡", "🔥", "💎", "🌟"}

// ReactionEmojis is the quick-reaction palette.
var ReactionEmojis = []string{"👍", "❤️", "😂", "🔥", "😮", "🎉"}

func Servers() []models.Server {
	return []models.Server{
		{ID: "1", Name: "Игровое Братство", Icon: "🎮"},
		{ID: "2", Name: "Космические Путники", Icon: "🚀"},
		{ID: "3", Name: "Киберспорт", Icon: "⚡"},
	}
}

// Channels returns the channel list for a server. Every server shares the same layout.
func Channels(serverID string) []models.Channel {
	return []models.Channel{
		{ID: "general", Name: "общий", Kind: models.ChannelText},
		{ID: "random", Name: "random", Kind: models.ChannelText},
		{ID: "voice-1", Name: "Голосовой 1", Kind: models.ChannelVoice, Active: true},
		{ID: "voice-2", Name: "Голосовой 2", Kind: models.ChannelVoice},
	}
}

func Friends() []models.Friend {
	return []models.Friend{
		{ID: "1", Name: "Космонавт_228", Discriminator: "0228", Avatar: "👨‍🚀", Status: models.StatusOnline, Activity: "Играет в Star Citizen"},
		{ID: "2", Name: "GamerPro", Discriminator: "4521", Avatar: "🎯", Status: models.StatusOnline, Activity: "Играет в CS2"},
		{ID: "3", Name: "NeonKnight", Discriminator: "7777", Avatar: "⚔️", Status: models.StatusAway, Activity: "Отошёл"},
		{ID: "4", Name: "ShadowHunter", Discriminator: "0013", Avatar: "🦇", Status: models.StatusOffline},
	}
}

// Participants are the mock authors of synthetic replies.
func Participants() []models.Participant {
	return []models.Participant{
		{ID: "1", Name: "Космонавт_228", Avatar: "👨‍🚀"},
		{ID: "2", Name: "GamerPro", Avatar: "🎯"},
		{ID: "3", Name: "NeonKnight", Avatar: "⚔️"},
	}
}

// Replies is the synthetic reply pool.
func Replies() []string {
	return []string{
		"Согласен! 👍",
		"Интересная мысль 🤔",
		"Ха-ха, точно 😂",
		"Давай попробуем!",
		"Я в деле! Запускайте лобби",
		"Дайте 5 минут, подключаюсь",
		"Кто ещё с нами?",
		"Отличная идея 🔥",
	}
}

// ChannelSeed returns the messages a channel starts with.
func ChannelSeed(serverID, channelID string, now time.Time) []models.Message {
	if channelID != "general" {
		return nil
	}
	return []models.Message{
		{ID: "seed-1", Author: "Космонавт_228", AuthorID: "1", Avatar: "👨‍🚀", Content: "Всем привет! Кто в деле на катку?", Timestamp: now.Add(-6 * time.Minute)},
		{ID: "seed-2", Author: "GamerPro", AuthorID: "2", Avatar: "🎯", Content: "Я в деле! Запускайте лобби", Timestamp: now.Add(-5 * time.Minute)},
		{ID: "seed-3", Author: "NeonKnight", AuthorID: "3", Avatar: "⚔️", Content: "Дайте 5 минут, подключаюсь", Timestamp: now.Add(-3 * time.Minute)},
	}
}

// UnreadSeed returns direct messages that are waiting for the local user
// when the client starts, keyed by friend id.
func UnreadSeed(now time.Time) map[string][]models.Message {
	return map[string][]models.Message{
		"2": {
			{ID: "dm-seed-1", Author: "GamerPro", AuthorID: "2", Avatar: "🎯", Content: "Го катку вечером?", Timestamp: now.Add(-20 * time.Minute)},
			{ID: "dm-seed-2", Author: "GamerPro", AuthorID: "2", Avatar: "🎯", Content: "Напиши, как освободишься", Timestamp: now.Add(-18 * time.Minute)},
		},
	}
}

// Pool supplies synthetic replies and the participants that author them.
type Pool interface {
	Replies() []string
	Participants() []models.Participant
}

type defaultPool struct{}

func (defaultPool) Replies() []string                   { return Replies() }
func (defaultPool) Participants() []models.Participant { return Participants() }

// DefaultPool returns the built-in reply pool.
func DefaultPool() Pool {
	return defaultPool{}
}

// Directory serves the fixed server and channel lists.
type Directory struct{}

func (Directory) Servers() []models.Server                 { return Servers() }
func (Directory) Channels(serverID string) []models.Channel { return Channels(serverID) }
