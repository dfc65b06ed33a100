package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"lingua-daily/internal/config"
	"lingua-daily/internal/model"
)

const defaultPrompt = "Generate a new intermediate-level Japanese sentence, use grammatical concepts from N1-N3, with this exact structure:\n\n" +
	"漢字: [sentence]\n" +
	"ひらがな: [reading]\n" +
	"Romaji: [romaji]\n" +
	"Breakdown: [word-by-word]\n" +
	"Grammar: [explanation]\n" +
	"Meaning: [english]\n\n" +
	"Example:\n" +
	"漢字: 先生が説明を簡潔にまとめた。\n" +
	"ひらがな: せんせいが せつめいを かんけつに まとめた。\n" +
	"Romaji: Sensei ga setsumei o kanketsu ni matometa.\n" +
	"Breakdown: 先生（せんせい）（teacher） + が（が）（subject） + 説明（せつめい）（explanation） + を（を）（object） + 簡潔に（かんけつに）（concisely） + まとめた（まとめた）（summarized）\n" +
	"Grammar: ～にまとめた = 'summarized into...'\n" +
	"Meaning: The teacher summarized the explanation concisely\n" +
	"new line for each word\n" +
	"new line for each grammar\n" +
	"Breakdown and Grammar formatting should be the same. Each grammar doesn't need a new 'Grammar:' in front. 'Grammar:' is only allowed one time!\n" +
	"Also please don't add any questions or unnecessary commentary\n" +
	"Remember, use grammatical structures that an adult would need, not too simple"

var (
	boldPattern = regexp.MustCompile(`\*\*(.*?)\*\*`)
	jpPattern   = regexp.MustCompile(`(?s)漢字:\s*(.*?)\nひらがな:\s*(.*?)\nRomaji:\s*(.*?)\nBreakdown:\s*(.*?)\nGrammar:\s*(.*?)\nMeaning:\s*(.*)`)
	enPattern   = regexp.MustCompile(`(?s)^English:\s*(.*?)\n読み方:\s*(.*?)\nWord Breakdown:\s*(.*?)\nGrammar:\s*(.*?)\nMeaning:\s*(.*)`)
	plusSplit   = regexp.MustCompile(`\s*\+\s*`)
)

type DeepSeekClient interface {
	GenerateSentence(ctx context.Context, source, target string) (*model.Sentence, error)
}

type deepSeekClientImpl struct {
	httpClient *http.Client
	baseApiURL string
	apiKey     string
	promptDir  string
}

func NewDeepSeekClient(cfg *config.DeepSeek) DeepSeekClient {
	return &deepSeekClientImpl{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseApiURL: cfg.BaseApiURL,
		apiKey:     cfg.APIKey,
		promptDir:  cfg.PromptDir,
	}
}

func (c *deepSeekClientImpl) GenerateSentence(ctx context.Context, source, target string) (*model.Sentence, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("deepseek api key not set")
	}

	payload := map[string]interface{}{
		"model": "deepseek-chat",
		"messages": []map[string]string{
			{"role": "user", "content": c.prompt(source, target)},
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal req payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseApiURL+"/v1/chat/completions", bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http client do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("deepseek error %d: %s", resp.StatusCode, string(b))
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode deepseek response: %w", err)
	}
	if len(result.Choices) == 0 {
		return nil, fmt.Errorf("deepseek returned no choices")
	}

	sentence, err := parseSentence(result.Choices[0].Message.Content, source, target)
	if err != nil {
		return nil, fmt.Errorf("parse deepseek content: %w", err)
	}
	return sentence, nil
}

// prompt loads the per-language-pair prompt file when one exists, falling
// back to the built-in default.
func (c *deepSeekClientImpl) prompt(source, target string) string {
	path := filepath.Join(c.promptDir, fmt.Sprintf("%s_%s.txt", source, target))
	if data, err := os.ReadFile(path); err == nil {
		return string(data)
	}
	return defaultPrompt
}

func parseSentence(content, source, target string) (*model.Sentence, error) {
	cleaned := boldPattern.ReplaceAllString(content, "$1")
	pair := strings.ToLower(source) + "_" + strings.ToLower(target)

	if pair == "japanese_english" {
		if m := enPattern.FindStringSubmatch(cleaned); m != nil {
			return &model.Sentence{
				Kanji:     strings.TrimSpace(m[1]),
				Hiragana:  strings.TrimSpace(m[2]),
				Breakdown: normalizeMultiline(strings.TrimSpace(m[3])),
				Grammar:   normalizeMultiline(strings.TrimSpace(m[4])),
				Meaning:   strings.TrimSpace(m[5]),
			}, nil
		}
	}

	if m := jpPattern.FindStringSubmatch(cleaned); m != nil {
		return &model.Sentence{
			Kanji:     strings.TrimSpace(m[1]),
			Hiragana:  strings.TrimSpace(m[2]),
			Romaji:    strings.TrimSpace(m[3]),
			Breakdown: normalizeMultiline(strings.TrimSpace(m[4])),
			Grammar:   normalizeMultiline(strings.TrimSpace(m[5])),
			Meaning:   strings.TrimSpace(m[6]),
		}, nil
	}

	return nil, fmt.Errorf("response did not match expected structure")
}

// normalizeMultiline splits "a + b + c" breakdowns onto their own lines when
// the generator collapsed them.
func normalizeMultiline(text string) string {
	if text == "" || strings.Contains(text, "\n") {
		return text
	}
	parts := plusSplit.Split(text, -1)
	if len(parts) <= 1 {
		return text
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return strings.Join(parts, "\n")
}
