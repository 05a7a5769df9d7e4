package analyzer

import (
	"github.com/todmy/botcheck/pkg/models"
)

func int64p(v int64) *int64 {
	return &v
}

func float64p(v float64) *float64 {
	return &v
}

// timedMessages builds one message per timestamp, all from the same author
// in the same channel.
func timedMessages(timestamps []int64) []models.Message {
	messages := make([]models.Message, len(timestamps))
	for i, ts := range timestamps {
		messages[i] = models.Message{
			Content:   "hello",
			CreatedAt: int64p(ts),
			AuthorID:  "u1",
			ChannelID: "c1",
		}
	}
	return messages
}

// contentMessages builds one message per content string.
func contentMessages(contents []string) []models.Message {
	messages := make([]models.Message, len(contents))
	for i, content := range contents {
		messages[i] = models.Message{
			Content:   content,
			AuthorID:  "u1",
			ChannelID: "c1",
		}
	}
	return messages
}

// casualContents is a batch of distinct informal messages with varied
// emoji usage.
func casualContents() []string {
	return []string{
		"lol that was wild 😂",
		"nah im good, maybe later tbh",
		"did u see the game last night??",
		"brooo no way 🔥🔥",
		"ok heading out now",
		"what time r we meeting tomorrow",
		"haha yeah fair enough 😅",
		"cant believe that actually happened",
		"send me the link when u get a chance",
		"gonna grab food, anyone want anything 🍕",
	}
}
