package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Wire shapes mirror AnalysisResult but use pointers where a zero value is
// legal, so that a missing field can be told apart from a zero score.
type wireResult struct {
	OverallScore *float64      `json:"overallScore" validate:"required,gte=0,lte=100"`
	Features     *wireFeatures `json:"features" validate:"required"`
	FaceType     *wireFaceType `json:"faceType" validate:"required"`
	SkinAnalysis *wireSkin     `json:"skinAnalysis" validate:"required"`
	MakeupAdvice []wireTip     `json:"makeupAdvice" validate:"required,min=1,dive"`
}

type wireFeature struct {
	Score *float64 `json:"score" validate:"required,gte=0,lte=100"`
	Pros  *string  `json:"pros" validate:"required"`
	Cons  *string  `json:"cons" validate:"required"`
}

type wireFeatures struct {
	Eyes      *wireFeature `json:"eyes" validate:"required"`
	Nose      *wireFeature `json:"nose" validate:"required"`
	Mouth     *wireFeature `json:"mouth" validate:"required"`
	FaceShape *wireFeature `json:"faceShape" validate:"required"`
}

type wireFaceType struct {
	Category    string   `json:"category" validate:"required"`
	Description *string  `json:"description" validate:"required"`
	Tags        []string `json:"tags" validate:"required,dive,required"`
}

type wireSkin struct {
	TextureScore *float64 `json:"textureScore" validate:"required,gte=0,lte=100"`
	LusterScore  *float64 `json:"lusterScore" validate:"required,gte=0,lte=100"`
	Advice       string   `json:"advice" validate:"required"`
}

type wireTip struct {
	Area   string `json:"area" validate:"required"`
	Advice string `json:"advice" validate:"required"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// ParseAnalysisResult decodes model output into an AnalysisResult. The text
// may be wrapped in a markdown code fence. Any missing, mistyped or out of
// range field fails the whole parse.
func ParseAnalysisResult(raw []byte) (*AnalysisResult, error) {
	body := StripCodeFence(raw)
	if len(body) == 0 {
		return nil, fmt.Errorf("empty analysis response")
	}

	var w wireResult
	dec := json.NewDecoder(bytes.NewReader(body))
	if err := dec.Decode(&w); err != nil {
		return nil, fmt.Errorf("decode analysis response: %w", err)
	}
	if err := validate.Struct(&w); err != nil {
		return nil, fmt.Errorf("invalid analysis response: %w", err)
	}
	return w.toResult(), nil
}

// StripCodeFence removes surrounding whitespace and a ```json fence if present
func StripCodeFence(raw []byte) []byte {
	s := strings.TrimSpace(string(raw))
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		if nl := strings.IndexByte(s, '\n'); nl >= 0 {
			s = s[nl+1:]
		} else {
			s = strings.TrimPrefix(s, "json")
		}
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return []byte(strings.TrimSpace(s))
}

func (w *wireResult) toResult() *AnalysisResult {
	tips := make([]MakeupTip, 0, len(w.MakeupAdvice))
	for _, t := range w.MakeupAdvice {
		tips = append(tips, MakeupTip{Area: strings.TrimSpace(t.Area), Advice: strings.TrimSpace(t.Advice)})
	}
	tags := make([]string, 0, len(w.FaceType.Tags))
	for _, tag := range w.FaceType.Tags {
		tags = append(tags, strings.TrimSpace(tag))
	}

	return &AnalysisResult{
		OverallScore: *w.OverallScore,
		Features: DetailedAnalysis{
			Eyes:      w.Features.Eyes.toFeature(),
			Nose:      w.Features.Nose.toFeature(),
			Mouth:     w.Features.Mouth.toFeature(),
			FaceShape: w.Features.FaceShape.toFeature(),
		},
		FaceType: FaceType{
			Category:    NormalizeFaceCategory(w.FaceType.Category),
			Description: *w.FaceType.Description,
			Tags:        tags,
		},
		SkinAnalysis: SkinAnalysis{
			TextureScore: *w.SkinAnalysis.TextureScore,
			LusterScore:  *w.SkinAnalysis.LusterScore,
			Advice:       w.SkinAnalysis.Advice,
		},
		MakeupAdvice: tips,
	}
}

func (f *wireFeature) toFeature() FeatureAnalysis {
	return FeatureAnalysis{Score: *f.Score, Pros: *f.Pros, Cons: *f.Cons}
}
