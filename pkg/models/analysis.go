package models

// AnalysisResult is the cosmetic report returned by the remote vision service.
// Values are immutable once received; callers must not modify them.
type AnalysisResult struct {
	OverallScore float64          `json:"overallScore"`
	Features     DetailedAnalysis `json:"features"`
	FaceType     FaceType         `json:"faceType"`
	SkinAnalysis SkinAnalysis     `json:"skinAnalysis"`
	MakeupAdvice []MakeupTip      `json:"makeupAdvice"`
}

// FeatureAnalysis scores one facial feature
type FeatureAnalysis struct {
	Score float64 `json:"score"`
	Pros  string  `json:"pros"`
	Cons  string  `json:"cons"`
}

// DetailedAnalysis groups the four analysed features
type DetailedAnalysis struct {
	Eyes      FeatureAnalysis `json:"eyes"`
	Nose      FeatureAnalysis `json:"nose"`
	Mouth     FeatureAnalysis `json:"mouth"`
	FaceShape FeatureAnalysis `json:"faceShape"`
}

// FaceType is the overall style category (e.g. 甜美型)
type FaceType struct {
	Category    string   `json:"category"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}

// SkinAnalysis holds skin texture and luster scores
type SkinAnalysis struct {
	TextureScore float64 `json:"textureScore"`
	LusterScore  float64 `json:"lusterScore"`
	Advice       string  `json:"advice"`
}

// MakeupTip is one {area, advice} pair; order is significant
type MakeupTip struct {
	Area   string `json:"area"`
	Advice string `json:"advice"`
}

// SelectedImage is the encoded photo chosen by the user
type SelectedImage struct {
	// DataURL is "data:<media-type>;base64,<payload>", suitable for display
	DataURL string `json:"dataUrl"`
	// Payload is the base64 body without the header, as sent for analysis
	Payload string `json:"-"`
}
