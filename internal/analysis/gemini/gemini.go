// Package gemini analyses face photos with Google Gemini.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"lumina-face-analysis/internal/analysis"
	"lumina-face-analysis/pkg/models"
)

const DefaultModel = "gemini-2.5-flash"

type Engine struct {
	client *genai.Client
	model  string
}

// New connects to the Gemini API. Extra client options are appended after the
// API key.
func New(ctx context.Context, apiKey, model string, opts ...option.ClientOption) (*Engine, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("GEMINI_API_KEY is empty")
	}
	model = strings.TrimSpace(model)
	if model == "" {
		model = DefaultModel
	}

	cl, err := genai.NewClient(ctx, append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return &Engine{client: cl, model: model}, nil
}

func (e *Engine) Name() string { return "gemini" }

func (e *Engine) Close() error { return e.client.Close() }

func (e *Engine) Analyze(ctx context.Context, payload string) (*models.AnalysisResult, error) {
	imgBytes, mime, err := analysis.DecodePayload(payload)
	if err != nil {
		return nil, err
	}

	m := e.client.GenerativeModel(e.model)
	configure(m)

	resp, err := m.GenerateContent(ctx,
		genai.Text(analysis.UserPrompt()),
		genai.Blob{MIMEType: mime, Data: imgBytes},
	)
	if err != nil {
		return nil, analysis.Failed(e.Name(), err)
	}

	txt := firstText(resp)
	if txt == "" {
		return nil, analysis.Failed(e.Name(), errors.New("empty response"))
	}
	result, err := models.ParseAnalysisResult([]byte(txt))
	if err != nil {
		return nil, analysis.Failed(e.Name(), err)
	}
	return result, nil
}

func configure(m *genai.GenerativeModel) {
	m.GenerationConfig = genai.GenerationConfig{
		Temperature:      ptrFloat32(0.4),
		ResponseMIMEType: "application/json",
		ResponseSchema:   ResponseSchema(),
	}
	m.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(analysis.SystemPrompt)},
	}
}

// ResponseSchema describes the report so the model answers in that shape
func ResponseSchema() *genai.Schema {
	score := func(desc string) *genai.Schema {
		return &genai.Schema{Type: genai.TypeNumber, Description: desc}
	}
	str := func(desc string) *genai.Schema {
		return &genai.Schema{Type: genai.TypeString, Description: desc}
	}
	feature := func(name string) *genai.Schema {
		return &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"score": score(name + "评分 0-100"),
				"pros":  str(name + "优点"),
				"cons":  str(name + "不足"),
			},
			Required: []string{"score", "pros", "cons"},
		}
	}

	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"overallScore": score("整体评分 0-100"),
			"features": {
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"eyes":      feature("眼睛"),
					"nose":      feature("鼻子"),
					"mouth":     feature("嘴巴"),
					"faceShape": feature("脸型"),
				},
				Required: []string{"eyes", "nose", "mouth", "faceShape"},
			},
			"faceType": {
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"category": {
						Type:   genai.TypeString,
						Format: "enum",
						Enum:   models.FaceCategories,
					},
					"description": str("风格描述"),
					"tags":        {Type: genai.TypeArray, Items: str("标签")},
				},
				Required: []string{"category", "description", "tags"},
			},
			"skinAnalysis": {
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"textureScore": score("肤质评分 0-100"),
					"lusterScore":  score("光泽评分 0-100"),
					"advice":       str("护肤建议"),
				},
				Required: []string{"textureScore", "lusterScore", "advice"},
			},
			"makeupAdvice": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"area":   str("部位"),
						"advice": str("建议"),
					},
					Required: []string{"area", "advice"},
				},
			},
		},
		Required: []string{"overallScore", "features", "faceType", "skinAnalysis", "makeupAdvice"},
	}
}

func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	for _, c := range resp.Candidates {
		if c.Content == nil {
			continue
		}
		for _, p := range c.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				return string(t)
			}
		}
	}
	return ""
}

func ptrFloat32(v float32) *float32 { return &v }
