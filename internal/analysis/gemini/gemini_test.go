package gemini

import (
	"context"
	"testing"

	"github.com/google/generative-ai-go/genai"
)

func TestNew_RequiresKey(t *testing.T) {
	if _, err := New(context.Background(), "  ", ""); err == nil {
		t.Error("Expected empty API key to be rejected")
	}
}

func TestResponseSchema_RequiresEveryField(t *testing.T) {
	s := ResponseSchema()
	if s.Type != genai.TypeObject {
		t.Fatalf("Expected object schema, got %v", s.Type)
	}
	for _, key := range s.Required {
		if _, ok := s.Properties[key]; !ok {
			t.Errorf("Required key %q has no property", key)
		}
	}
	if len(s.Required) != 5 {
		t.Errorf("Expected 5 required top level fields, got %d", len(s.Required))
	}

	features := s.Properties["features"]
	for _, name := range []string{"eyes", "nose", "mouth", "faceShape"} {
		f, ok := features.Properties[name]
		if !ok {
			t.Fatalf("Missing feature %s", name)
		}
		if len(f.Required) != 3 {
			t.Errorf("Feature %s should require score, pros and cons", name)
		}
	}

	if got := s.Properties["faceType"].Properties["category"].Enum; len(got) != 8 {
		t.Errorf("Expected 8 category values, got %d", len(got))
	}
	if s.Properties["makeupAdvice"].Items == nil {
		t.Error("Expected makeupAdvice items schema")
	}
}

func TestConfigure(t *testing.T) {
	var m genai.GenerativeModel
	configure(&m)

	if m.GenerationConfig.ResponseMIMEType != "application/json" {
		t.Errorf("Unexpected MIME type %q", m.GenerationConfig.ResponseMIMEType)
	}
	if m.GenerationConfig.ResponseSchema == nil {
		t.Error("Expected response schema")
	}
	if m.SystemInstruction == nil || len(m.SystemInstruction.Parts) != 1 {
		t.Error("Expected a system instruction")
	}
}

func TestFirstText(t *testing.T) {
	tests := []struct {
		name string
		resp *genai.GenerateContentResponse
		want string
	}{
		{"nil response", nil, ""},
		{"no candidates", &genai.GenerateContentResponse{}, ""},
		{
			"skips empty content and blobs",
			&genai.GenerateContentResponse{Candidates: []*genai.Candidate{
				{Content: nil},
				{Content: &genai.Content{Parts: []genai.Part{
					genai.Blob{MIMEType: "image/png"},
					genai.Text(`{"overallScore":80}`),
				}}},
			}},
			`{"overallScore":80}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := firstText(tt.resp); got != tt.want {
				t.Errorf("firstText() = %q, want %q", got, tt.want)
			}
		})
	}
}
