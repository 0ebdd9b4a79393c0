package extraction

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultAPIURL = "https://api.openai.com/v1/chat/completions"

// OpenAIExtractor reads transcripts and timetables with OpenAI chat
// completions, using the vision model for images and the chat model
// for extracted PDF text.
type OpenAIExtractor struct {
	apiKey      string
	visionModel string
	chatModel   string
	apiURL      string
	httpClient  *http.Client
}

func NewOpenAIExtractor(apiKey, visionModel, chatModel string) (*OpenAIExtractor, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required")
	}
	if strings.TrimSpace(visionModel) == "" {
		return nil, fmt.Errorf("vision model is required")
	}
	if strings.TrimSpace(chatModel) == "" {
		return nil, fmt.Errorf("chat model is required")
	}
	return &OpenAIExtractor{
		apiKey:      apiKey,
		visionModel: visionModel,
		chatModel:   chatModel,
		apiURL:      defaultAPIURL,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}, nil
}

// WithBaseURL points the extractor at a different completions endpoint.
func (e *OpenAIExtractor) WithBaseURL(url string) *OpenAIExtractor {
	e.apiURL = url
	return e
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type visionMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type visionRequest struct {
	Model          string          `json:"model"`
	Messages       []visionMessage `json:"messages"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type visionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

func (e *OpenAIExtractor) ExtractTranscript(ctx context.Context, image []byte, mimeType string) ([]Course, error) {
	content, err := e.completeWithImage(ctx, transcriptPrompt, image, mimeType)
	if err != nil {
		return nil, err
	}
	return parseCourses(content)
}

func (e *OpenAIExtractor) ExtractTranscriptText(ctx context.Context, text string) ([]Course, error) {
	content, err := e.completeWithText(ctx, transcriptTextPrompt+text)
	if err != nil {
		return nil, err
	}
	return parseCourses(content)
}

func (e *OpenAIExtractor) ExtractTimetable(ctx context.Context, image []byte, mimeType string) ([]Lecture, error) {
	content, err := e.completeWithImage(ctx, timetablePrompt, image, mimeType)
	if err != nil {
		return nil, err
	}
	return parseLectures(content)
}

func (e *OpenAIExtractor) completeWithImage(ctx context.Context, prompt string, image []byte, mimeType string) (string, error) {
	dataURL := fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(image))
	req := visionRequest{
		Model: e.visionModel,
		Messages: []visionMessage{{
			Role: "user",
			Content: []contentPart{
				{Type: "text", Text: prompt},
				{Type: "image_url", ImageURL: &imageURL{URL: dataURL}},
			},
		}},
		MaxTokens:      4096,
		ResponseFormat: &responseFormat{Type: "json_object"},
	}
	return e.complete(ctx, req)
}

func (e *OpenAIExtractor) completeWithText(ctx context.Context, prompt string) (string, error) {
	req := visionRequest{
		Model: e.chatModel,
		Messages: []visionMessage{{
			Role:    "user",
			Content: prompt,
		}},
		MaxTokens:      4096,
		ResponseFormat: &responseFormat{Type: "json_object"},
	}
	return e.complete(ctx, req)
}

func (e *OpenAIExtractor) complete(ctx context.Context, reqBody visionRequest) (string, error) {
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.apiURL, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+e.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	var parsed visionResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("openai response parse: %w", err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("openai error: %s (%s)", parsed.Error.Message, parsed.Error.Type)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("openai response missing choices")
	}
	content := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if content == "" {
		return "", fmt.Errorf("openai response empty content")
	}
	return content, nil
}

type rawCourse struct {
	Title      string `json:"title"`
	CourseCode string `json:"courseCode"`
	Grade      string `json:"grade"`
	Category   string `json:"category"`
}

func parseCourses(content string) ([]Course, error) {
	var parsed struct {
		Courses []rawCourse `json:"courses"`
	}
	if err := json.Unmarshal([]byte(stripCodeFences(content)), &parsed); err != nil {
		return nil, fmt.Errorf("transcript parse: %w", err)
	}
	var out []Course
	for _, c := range parsed.Courses {
		if strings.TrimSpace(c.Title) == "" || strings.TrimSpace(c.CourseCode) == "" {
			continue
		}
		out = append(out, Course{
			Title:      strings.TrimSpace(c.Title),
			CourseCode: strings.TrimSpace(c.CourseCode),
			Grade:      strings.TrimSpace(c.Grade),
			Category:   strings.TrimSpace(c.Category),
		})
	}
	if len(out) == 0 {
		return nil, ErrNoContent
	}
	return out, nil
}

type rawLecture struct {
	Name      string  `json:"name"`
	Room      string  `json:"room"`
	DayOfWeek dayList `json:"dayOfWeek"`
	StartTime string  `json:"startTime"`
	EndTime   string  `json:"endTime"`
}

// dayList accepts both "월" and ["월", "수"]; the model uses either
// form depending on the timetable layout.
type dayList []string

func (d *dayList) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*d = dayList{single}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*d = dayList(many)
	return nil
}

func parseLectures(content string) ([]Lecture, error) {
	var parsed struct {
		Lectures []rawLecture `json:"lectures"`
	}
	if err := json.Unmarshal([]byte(stripCodeFences(content)), &parsed); err != nil {
		return nil, fmt.Errorf("timetable parse: %w", err)
	}
	var out []Lecture
	for _, l := range parsed.Lectures {
		if strings.TrimSpace(l.Name) == "" {
			continue
		}
		out = append(out, Lecture{
			Name:      strings.TrimSpace(l.Name),
			Room:      strings.TrimSpace(l.Room),
			Days:      []string(l.DayOfWeek),
			StartTime: strings.TrimSpace(l.StartTime),
			EndTime:   strings.TrimSpace(l.EndTime),
		})
	}
	if len(out) == 0 {
		return nil, ErrNoContent
	}
	return out, nil
}

func stripCodeFences(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}

var _ Extractor = (*OpenAIExtractor)(nil)
