package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lingua-daily/internal/config"
)

const sampleJapaneseReply = "漢字: 会議は予定より早く終わった。\n" +
	"ひらがな: かいぎは よていより はやく おわった。\n" +
	"Romaji: Kaigi wa yotei yori hayaku owatta.\n" +
	"Breakdown: 会議 (meeting) + は (topic) + 予定より (than planned) + 早く (early) + 終わった (ended)\n" +
	"Grammar: ～より = comparison baseline\n" +
	"Meaning: The meeting ended earlier than planned"

func TestParseSentenceJapanese(t *testing.T) {
	sentence, err := parseSentence(sampleJapaneseReply, "japanese", "japanese")
	require.NoError(t, err)

	assert.Equal(t, "会議は予定より早く終わった。", sentence.Kanji)
	assert.Equal(t, "かいぎは よていより はやく おわった。", sentence.Hiragana)
	assert.Equal(t, "Kaigi wa yotei yori hayaku owatta.", sentence.Romaji)
	assert.Contains(t, sentence.Breakdown, "会議 (meeting)")
	assert.Contains(t, sentence.Breakdown, "\n", "plus-joined breakdown split onto lines")
	assert.Equal(t, "The meeting ended earlier than planned", sentence.Meaning)
}

func TestParseSentenceStripsMarkdownBold(t *testing.T) {
	bolded := "**漢字**: 猫が寝ている。\nひらがな: ねこが ねている。\nRomaji: Neko ga nete iru.\nBreakdown: 猫 (cat)\nGrammar: ている = progressive\nMeaning: The cat is sleeping"
	sentence, err := parseSentence(bolded, "japanese", "japanese")
	require.NoError(t, err)
	assert.Equal(t, "猫が寝ている。", sentence.Kanji)
}

func TestParseSentenceEnglishTarget(t *testing.T) {
	reply := "English: Practice makes perfect.\n読み方: プラクティス メイクス パーフェクト\nWord Breakdown: practice (練習) + makes (作る) + perfect (完璧)\nGrammar: habitual present\nMeaning: 継続は力なり"
	sentence, err := parseSentence(reply, "japanese", "english")
	require.NoError(t, err)

	assert.Equal(t, "Practice makes perfect.", sentence.Kanji)
	assert.Equal(t, "プラクティス メイクス パーフェクト", sentence.Hiragana)
	assert.Contains(t, sentence.Breakdown, "practice (練習)")
}

func TestParseSentenceRejectsUnstructuredReply(t *testing.T) {
	_, err := parseSentence("Sure! Here is a sentence for you.", "japanese", "japanese")
	assert.Error(t, err)
}

func TestGenerateSentenceEndToEnd(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		body := map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": sampleJapaneseReply}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(body))
	}))
	defer srv.Close()

	c := NewDeepSeekClient(&config.DeepSeek{APIKey: "test-key", BaseApiURL: srv.URL})
	sentence, err := c.GenerateSentence(context.Background(), "japanese", "japanese")
	require.NoError(t, err)
	assert.Equal(t, "会議は予定より早く終わった。", sentence.Kanji)
}

func TestGenerateSentenceWithoutAPIKey(t *testing.T) {
	c := NewDeepSeekClient(&config.DeepSeek{BaseApiURL: "http://localhost"})
	_, err := c.GenerateSentence(context.Background(), "japanese", "japanese")
	assert.Error(t, err)
}

func TestGenerateSentenceUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewDeepSeekClient(&config.DeepSeek{APIKey: "test-key", BaseApiURL: srv.URL})
	_, err := c.GenerateSentence(context.Background(), "japanese", "japanese")
	assert.Error(t, err)
}
