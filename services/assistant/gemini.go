// Package assistsvc implements the generative-AI collaborator on top of the
// Gemini REST API.
package assistsvc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"

	"github.com/pkg/errors"

	"github.com/mrdaoud/tadrees/core"
)

const baseURL = "https://generativelanguage.googleapis.com/v1beta/models"

var ErrNotConfigured = errors.New("assistant: API key not set")

type geminiService struct {
	client    *http.Client
	apiKey    string
	model     string
	tutorName string
}

var _ core.AssistantService = (*geminiService)(nil)

func NewGeminiService(conf *core.Config) core.AssistantService {
	return &geminiService{
		client:    &http.Client{Timeout: conf.Gemini.Timeout},
		apiKey:    conf.Gemini.APIKey,
		model:     conf.Gemini.Model,
		tutorName: conf.TutorName,
	}
}

type (
	generateRequest struct {
		Contents []content `json:"contents"`
	}
	content struct {
		Parts []part `json:"parts"`
	}
	part struct {
		Text string `json:"text"`
	}

	generateResponse struct {
		Candidates []struct {
			Content content `json:"content"`
		} `json:"candidates"`
		Error *struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
)

func (svc *geminiService) Analyze(ctx context.Context, snapshotJSON, question string) (string, error) {
	if svc.apiKey == "" {
		return "", ErrNotConfigured
	}
	return svc.generate(ctx, svc.buildPrompt(snapshotJSON, question))
}

// buildPrompt frames the tutor persona and inlines the full record snapshot so
// the model can answer data questions without tool calls.
func (svc *geminiService) buildPrompt(snapshotJSON, question string) string {
	return fmt.Sprintf(`أنت مساعد ذكي "%s" (معلم لغة عربية وقرآن خبير). لديك وصول كامل لبيانات الطلاب بصيغة JSON:
%s

سؤال المعلم الحالي: %s

مهمتك:
1. قدم إجابات دقيقة بناءً على البيانات (درجات التسميع، الغياب، الاشتراكات).
2. إذا لاحظت تراجعاً في درجات التسميع لطالب معين، نبه المعلم بلطف.
3. كن تربوياً، محفزاً، ومختصراً جداً.
4. استخدم اللغة العربية (باللهجة المصرية المهذبة أو الفصحى البسيطة).`,
		svc.tutorName, snapshotJSON, question)
}

func (svc *geminiService) generate(ctx context.Context, prompt string) (string, error) {
	reqBody := generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", errors.Wrap(err, "marshaling request")
	}

	url := fmt.Sprintf("%s/%s:generateContent?key=%s", baseURL, svc.model, svc.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", errors.Wrap(err, "creating request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := svc.client.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "calling Gemini API")
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Wrap(err, "reading response")
	}

	var genResp generateResponse
	if err = json.Unmarshal(body, &genResp); err != nil {
		return "", errors.Wrap(err, "unmarshaling response")
	}
	if genResp.Error != nil {
		return "", errors.Errorf("Gemini API error %d: %s", genResp.Error.Code, genResp.Error.Message)
	}
	if len(genResp.Candidates) == 0 || len(genResp.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("empty Gemini response")
	}
	return genResp.Candidates[0].Content.Parts[0].Text, nil
}
