// Package tone attaches a lightweight tone hint to individual messages for
// display purposes. It is a keyword heuristic, deliberately shallow; the
// authoritative tone assessment comes from the resolution analysis.
package tone

import "strings"

// Label mirrors the tone vocabulary used by the resolution analysis.
type Label string

const (
	Aggressive    Label = "aggressive"
	Defensive     Label = "defensive"
	Hurt          Label = "hurt"
	Calm          Label = "calm"
	Understanding Label = "understanding"
	Confused      Label = "confused"
)

var keywordBuckets = map[Label][]string{
	Aggressive: {
		"always", "never listen", "your fault", "ridiculous", "sick of", "fed up",
		"hate", "stupid", "whatever", "shut up", "don't care", "typical",
	},
	Defensive: {
		"not my fault", "i didn't", "that's not true", "you started", "i never said",
		"why me", "i was only", "excuse", "blame me", "not fair",
	},
	Hurt: {
		"hurt", "sad", "cry", "alone", "ignored", "invisible", "heartbroken",
		"disappointed", "let down", "abandoned", "lonely", "painful",
	},
	Calm: {
		"let's talk", "take a breath", "i hear you", "okay", "makes sense",
		"let's figure", "no rush", "calmly", "step back",
	},
	Understanding: {
		"i understand", "i see", "you're right", "i'm sorry", "my bad",
		"i appreciate", "thank you", "fair point", "i get it", "apologize",
	},
	Confused: {
		"confused", "don't understand", "what do you mean", "i don't get",
		"makes no sense", "why would", "lost me", "mixed signals",
	},
}

// Hint returns the best-matching label for the content, or empty when
// nothing stands out.
func Hint(content string) Label {
	lowered := strings.ToLower(content)

	var best Label
	bestScore := 0
	for _, label := range []Label{Aggressive, Defensive, Hurt, Calm, Understanding, Confused} {
		score := 0
		for _, kw := range keywordBuckets[label] {
			if strings.Contains(lowered, kw) {
				score++
			}
		}
		if label == Aggressive {
			// Stacked punctuation reads as shouting.
			score += strings.Count(lowered, "!!") + strings.Count(lowered, "??")
		}
		if score > bestScore {
			best = label
			bestScore = score
		}
	}
	return best
}
