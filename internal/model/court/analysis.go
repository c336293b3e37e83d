package court

// Tone classifies the emotional register the analysis capability assigns to
// one party's side of the conversation.
type Tone string

const (
	ToneAggressive    Tone = "aggressive"
	ToneDefensive     Tone = "defensive"
	ToneHurt          Tone = "hurt"
	ToneCalm          Tone = "calm"
	ToneUnderstanding Tone = "understanding"
	ToneConfused      Tone = "confused"
)

// Valid reports whether the tone is one of the known labels.
func (t Tone) Valid() bool {
	switch t {
	case ToneAggressive, ToneDefensive, ToneHurt, ToneCalm, ToneUnderstanding, ToneConfused:
		return true
	}
	return false
}

// ToneAnalysis is the per-party tone assessment: a tone label, the primary
// emotion expressed, and an intensity on a 1-10 scale.
type ToneAnalysis struct {
	Tone      Tone   `json:"tone"`
	Emotion   string `json:"emotion"`
	Intensity int    `json:"intensity"`
}

// Reasonableness scores each party 1-10 (10 = most reasonable) with a short
// written comparison.
type Reasonableness struct {
	UserA    int    `json:"userA"`
	UserB    int    `json:"userB"`
	Analysis string `json:"analysis"`
}

// Analysis is the full structured verdict returned by the analysis
// capability for one transcript.
type Analysis struct {
	Verdict        string         `json:"verdict"`
	Explanation    string         `json:"explanation"`
	Compromise     string         `json:"compromise"`
	UserATone      ToneAnalysis   `json:"userATone"`
	UserBTone      ToneAnalysis   `json:"userBTone"`
	Reasonableness Reasonableness `json:"reasonableness"`
}
