// Package verdict owns the analysis prompt template and the parsing of the
// capability's structured response.
package verdict

import (
	"fmt"
	"strings"

	"github.com/whimsylab/couplescourt/internal/model/court"
)

// SystemPrompt is the fixed role instruction for the analysis model.
const SystemPrompt = "You are an expert relationship therapist. You analyze conversations between two partners fairly and empathetically, and you always answer in the exact JSON format you are asked for."

// Transcript renders the message log as an ordered "Name: content" sequence
// using each party's resolved display name.
func Transcript(s court.Session, msgs []court.Message) string {
	var b strings.Builder
	for i, m := range msgs {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(s.DisplayName(m.Sender))
		b.WriteString(": ")
		b.WriteString(m.Content)
	}
	return b.String()
}

// BuildPrompt renders the full analysis instruction for one transcript.
func BuildPrompt(userAName, userBName, transcript string) string {
	return fmt.Sprintf(`You are analyzing a conversation between two partners: %s (User A) and %s (User B).

CONVERSATION:
%s

Please analyze this conversation and provide:

1. TONE ANALYSIS for each person:
   - Determine their emotional tone (aggressive, defensive, hurt, calm, understanding, confused)
   - Identify the primary emotion they're expressing
   - Rate the intensity of their emotion (1-10 scale)

2. REASONABLENESS ASSESSMENT:
   - Rate each person's reasonableness (1-10 scale, where 10 = most reasonable)
   - Provide analysis of who is being more reasonable and why

3. THERAPEUTIC VERDICT:
   - A fair, balanced assessment of the situation
   - Who (if anyone) needs to take more responsibility
   - What the core issues are

4. COMPROMISE SUGGESTION:
   - A practical, fair solution that addresses both parties' concerns
   - Specific actionable steps both can take
   - Focus on healthy communication and understanding

Respond in this exact JSON format:
{
  "verdict": "Your therapeutic assessment...",
  "explanation": "Detailed explanation of the dynamics...",
  "compromise": "Specific compromise suggestion...",
  "userATone": {
    "tone": "calm|hurt|defensive|aggressive|understanding|confused",
    "emotion": "primary emotion",
    "intensity": 1-10
  },
  "userBTone": {
    "tone": "calm|hurt|defensive|aggressive|understanding|confused",
    "emotion": "primary emotion",
    "intensity": 1-10
  },
  "reasonableness": {
    "userA": 1-10,
    "userB": 1-10,
    "analysis": "Who is being more reasonable and why"
  }
}

Be empathetic, fair, and focus on healthy relationship dynamics. Don't take sides unfairly, but do call out unreasonable behavior when necessary. Use a warm but professional tone.`,
		userAName, userBName, transcript)
}
