package model

import "strings"

// Sentence is the structured payload returned by the content generator.
type Sentence struct {
	Kanji     string `json:"kanji"`
	Hiragana  string `json:"hiragana"`
	Romaji    string `json:"romaji"`
	Breakdown string `json:"breakdown"`
	Grammar   string `json:"grammar"`
	Meaning   string `json:"meaning"`
}

// Text renders the sentence as a single labeled plain-text block.
func (s *Sentence) Text() string {
	var lines []string
	if s.Kanji != "" {
		lines = append(lines, "漢字: "+s.Kanji)
	}
	if s.Hiragana != "" {
		lines = append(lines, "ひらがな: "+s.Hiragana)
	}
	if s.Romaji != "" {
		lines = append(lines, "Romaji: "+s.Romaji)
	}
	if s.Breakdown != "" {
		lines = append(lines, "Breakdown:\n"+s.Breakdown)
	}
	if s.Grammar != "" {
		lines = append(lines, "Grammar:\n"+s.Grammar)
	}
	if s.Meaning != "" {
		lines = append(lines, "Meaning: "+s.Meaning)
	}
	return strings.Join(lines, "\n")
}

// TemplateData flattens the sentence into email template variables.
func (s *Sentence) TemplateData() map[string]string {
	return map[string]string{
		"kanji":     s.Kanji,
		"hiragana":  s.Hiragana,
		"romaji":    s.Romaji,
		"breakdown": s.Breakdown,
		"grammar":   s.Grammar,
		"meaning":   s.Meaning,
	}
}

// FallbackSentence is served when the generator is unreachable or returns an
// unparseable response.
func FallbackSentence() *Sentence {
	return &Sentence{
		Kanji:     "今日は雨が降っています",
		Hiragana:  "きょうは あめが ふっています",
		Romaji:    "Kyō wa ame ga futte imasu",
		Breakdown: "今日 (today) + は (topic) + 雨 (rain) + が (subject) + 降っています (is falling)",
		Grammar:   "〜ています = ongoing action",
		Meaning:   "It is raining today",
	}
}
