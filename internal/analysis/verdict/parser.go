package verdict

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/whimsylab/couplescourt/internal/model/court"
)

// Parse extracts the first balanced JSON object from the raw model output
// and validates it into an Analysis. Models routinely wrap the payload in
// prose or code fences, so everything around the object is ignored.
func Parse(raw string) (court.Analysis, error) {
	payload, ok := extractJSON(raw)
	if !ok {
		return court.Analysis{}, fmt.Errorf("%w: no JSON object in response", court.ErrMalformedAnalysis)
	}

	var a court.Analysis
	if err := json.Unmarshal([]byte(payload), &a); err != nil {
		return court.Analysis{}, fmt.Errorf("%w: %v", court.ErrMalformedAnalysis, err)
	}

	if err := validate(a); err != nil {
		return court.Analysis{}, fmt.Errorf("%w: %v", court.ErrMalformedAnalysis, err)
	}
	return normalize(a), nil
}

// extractJSON scans for the first '{' and returns the substring up to its
// balancing '}', skipping braces inside JSON strings.
func extractJSON(raw string) (string, bool) {
	start := strings.IndexByte(raw, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(raw); i++ {
		c := raw[i]
		switch {
		case escaped:
			escaped = false
		case inString:
			if c == '\\' {
				escaped = true
			} else if c == '"' {
				inString = false
			}
		case c == '"':
			inString = true
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return raw[start : i+1], true
			}
		}
	}
	return "", false
}

func validate(a court.Analysis) error {
	if strings.TrimSpace(a.Verdict) == "" {
		return fmt.Errorf("missing verdict")
	}
	if strings.TrimSpace(a.Compromise) == "" {
		return fmt.Errorf("missing compromise")
	}
	if err := validateTone("userATone", a.UserATone); err != nil {
		return err
	}
	if err := validateTone("userBTone", a.UserBTone); err != nil {
		return err
	}
	if err := validateScale("reasonableness.userA", a.Reasonableness.UserA); err != nil {
		return err
	}
	if err := validateScale("reasonableness.userB", a.Reasonableness.UserB); err != nil {
		return err
	}
	return nil
}

func validateTone(field string, t court.ToneAnalysis) error {
	if !court.Tone(strings.ToLower(string(t.Tone))).Valid() {
		return fmt.Errorf("%s: unknown tone %q", field, t.Tone)
	}
	return validateScale(field+".intensity", t.Intensity)
}

func validateScale(field string, v int) error {
	if v < 1 || v > 10 {
		return fmt.Errorf("%s: %d outside 1-10", field, v)
	}
	return nil
}

func normalize(a court.Analysis) court.Analysis {
	a.UserATone.Tone = court.Tone(strings.ToLower(string(a.UserATone.Tone)))
	a.UserBTone.Tone = court.Tone(strings.ToLower(string(a.UserBTone.Tone)))
	return a
}
