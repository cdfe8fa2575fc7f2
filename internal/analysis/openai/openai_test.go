package openai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	apperrors "lumina-face-analysis/internal/errors"
)

const report = `{
  "overallScore": 86,
  "features": {
    "eyes": {"score": 90, "pros": "双眼皮明显", "cons": "眼距略宽"},
    "nose": {"score": 82, "pros": "鼻梁挺直", "cons": "鼻翼稍宽"},
    "mouth": {"score": 85, "pros": "唇形饱满", "cons": "嘴角略下垂"},
    "faceShape": {"score": 88, "pros": "下颌线流畅", "cons": "颧骨略高"}
  },
  "faceType": {"category": "甜美", "description": "五官柔和", "tags": ["减龄", "亲和"]},
  "skinAnalysis": {"textureScore": 78, "lusterScore": 80, "advice": "注意保湿"},
  "makeupAdvice": [{"area": "眼妆", "advice": "使用大地色眼影"}]
}`

var jpegPayload = base64.StdEncoding.EncodeToString([]byte{0xFF, 0xD8, 0xFF, 0xE0, 0, 0x10, 'J', 'F', 'I', 'F'})

func completion(content string) string {
	body, _ := json.Marshal(map[string]interface{}{
		"id":     "chatcmpl-1",
		"object": "chat.completion",
		"model":  DefaultModel,
		"choices": []map[string]interface{}{{
			"index":         0,
			"finish_reason": "stop",
			"message":       map[string]string{"role": "assistant", "content": content},
		}},
	})
	return string(body)
}

func newServer(t *testing.T, status int, body string, seen *map[string]interface{}) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		if seen != nil {
			raw, _ := io.ReadAll(r.Body)
			json.Unmarshal(raw, seen)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		io.WriteString(w, body)
	}))
}

func TestAnalyze_Success(t *testing.T) {
	var req map[string]interface{}
	server := newServer(t, http.StatusOK, completion(report), &req)
	defer server.Close()

	p, err := New("test-key", "", server.URL+"/v1")
	if err != nil {
		t.Fatal(err)
	}

	result, err := p.Analyze(context.Background(), jpegPayload)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if result.OverallScore != 86 || result.Features.Eyes.Score != 90 {
		t.Errorf("Unexpected scores: %+v", result)
	}
	if result.FaceType.Category != "甜美型" {
		t.Errorf("Expected category to be normalised, got %q", result.FaceType.Category)
	}
	if len(result.MakeupAdvice) != 1 || result.MakeupAdvice[0].Area != "眼妆" {
		t.Errorf("Unexpected makeup advice: %+v", result.MakeupAdvice)
	}

	if req["model"] != DefaultModel {
		t.Errorf("Expected default model, got %v", req["model"])
	}
	raw, _ := json.Marshal(req["messages"])
	if !strings.Contains(string(raw), "data:image/jpeg;base64,"+jpegPayload) {
		t.Error("Expected the image to be sent as a jpeg data URL")
	}
}

func TestAnalyze_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusInternalServerError, `{"error":{"message":"boom","type":"server_error"}}`},
		{"rate limited", http.StatusTooManyRequests, `{"error":{"message":"slow down","type":"rate_limit"}}`},
		{"missing field", http.StatusOK, completion(`{"overallScore": 86}`)},
		{"not json", http.StatusOK, completion("抱歉，我无法分析这张图片")},
		{"no choices", http.StatusOK, `{"id":"x","object":"chat.completion","choices":[]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newServer(t, tt.status, tt.body, nil)
			defer server.Close()

			p, _ := New("test-key", "gpt-4o", server.URL+"/v1")
			result, err := p.Analyze(context.Background(), jpegPayload)
			if result != nil {
				t.Error("Expected no partial result")
			}
			if !apperrors.IsType(err, apperrors.ErrorTypeRemoteAnalysis) {
				t.Errorf("Expected remote analysis error, got %v", err)
			}
		})
	}
}

func TestNew_RequiresKey(t *testing.T) {
	if _, err := New("", "", ""); err == nil {
		t.Error("Expected missing key to be rejected")
	}
}
