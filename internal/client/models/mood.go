package models

import "strings"

// Mood is the tag a user attaches to an entry.
type Mood string

const (
	MoodHappy    Mood = "happy"
	MoodSad      Mood = "sad"
	MoodCalm     Mood = "calm"
	MoodAnxious  Mood = "anxious"
	MoodAngry    Mood = "angry"
	MoodGrateful Mood = "grateful"
	MoodExcited  Mood = "excited"
	MoodNeutral  Mood = "neutral"
)

// Presentation is how a mood is rendered by every view.
type Presentation struct {
	Emoji string
	Color string
	Label string
}

// MoodPresentation is the single mood lookup table used by all views.
var MoodPresentation = map[Mood]Presentation{
	MoodHappy:    {Emoji: "😊", Color: "#FACC15", Label: "Happy"},
	MoodSad:      {Emoji: "😢", Color: "#60A5FA", Label: "Sad"},
	MoodCalm:     {Emoji: "😌", Color: "#34D399", Label: "Calm"},
	MoodAnxious:  {Emoji: "😰", Color: "#A78BFA", Label: "Anxious"},
	MoodAngry:    {Emoji: "😠", Color: "#F87171", Label: "Angry"},
	MoodGrateful: {Emoji: "🙏", Color: "#F472B6", Label: "Grateful"},
	MoodExcited:  {Emoji: "🤩", Color: "#FB923C", Label: "Excited"},
	MoodNeutral:  {Emoji: "😐", Color: "#9CA3AF", Label: "Neutral"},
}

// Moods lists the known moods in menu order.
var Moods = []Mood{MoodHappy, MoodSad, MoodCalm, MoodAnxious, MoodAngry, MoodGrateful, MoodExcited, MoodNeutral}

// ParseMood normalizes user input; empty input means no mood.
func ParseMood(s string) (Mood, bool) {
	m := Mood(strings.ToLower(strings.TrimSpace(s)))
	if m == "" {
		return "", true
	}
	return m, m.Known()
}

func (m Mood) Known() bool {
	_, ok := MoodPresentation[m]
	return ok
}

// Present returns the presentation for m, falling back to neutral.
func (m Mood) Present() Presentation {
	if p, ok := MoodPresentation[m]; ok {
		return p
	}
	return MoodPresentation[MoodNeutral]
}
