package assistsvc

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mrdaoud/tadrees/core"
)

func testConf(key string) *core.Config {
	conf := &core.Config{TutorName: "مستر داود"}
	conf.Gemini.APIKey = key
	conf.Gemini.Model = "gemini-3-flash-preview"
	conf.Gemini.Timeout = time.Second
	return conf
}

func TestAnalyzeNotConfigured(t *testing.T) {
	svc := NewGeminiService(testConf(""))

	_, err := svc.Analyze(context.Background(), "{}", "من الأول على الفصل؟")
	assert.Equal(t, ErrNotConfigured, err)
}

func TestBuildPrompt(t *testing.T) {
	svc := NewGeminiService(testConf("k")).(*geminiService)

	prompt := svc.buildPrompt(`{"students":[]}`, "من الأول على الفصل؟")
	assert.Contains(t, prompt, "مستر داود")
	assert.Contains(t, prompt, `{"students":[]}`)
	assert.Contains(t, prompt, "سؤال المعلم الحالي: من الأول على الفصل؟")
}
