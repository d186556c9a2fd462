package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/RigvedaVangipurapu/Perf-Partner/internal/ai"
)

const participantPrompt = `You are given a sample of an exported chat history. Identify the real participant names (the people actually sending messages, not system notices).

Respond with ONLY a strict JSON array of name strings, for example ["Alice","Bob"]. If no names can be determined, respond with []. Do not include any explanation or surrounding prose.

Chat sample:
%s`

// resolveParticipants asks the generation service for the participant
// names in a chat export. Only the first ResolverSampleLimit characters
// are sent. The second return value distinguishes "no usable answer"
// (provider failure, malformed or non-array JSON) from a genuinely
// empty name list; callers fall back to an empty participant set on the
// former.
func (s *Service) resolveParticipants(ctx context.Context, text string) ([]string, bool) {
	sample := text
	if runes := []rune(sample); len(runes) > s.opts.ResolverSampleLimit {
		sample = string(runes[:s.opts.ResolverSampleLimit])
	}

	reply, err := s.provider.Chat(ctx, []ai.Message{
		{Role: "user", Content: fmt.Sprintf(participantPrompt, sample)},
	})
	if err != nil {
		return nil, false
	}
	return parseNameArray(reply)
}

// parseNameArray accepts the reply only if it decodes to a JSON array
// whose every element is a string, tolerating a wrapping code fence.
func parseNameArray(reply string) ([]string, bool) {
	reply = stripCodeFence(strings.TrimSpace(reply))

	var raw []any
	if err := json.Unmarshal([]byte(reply), &raw); err != nil {
		return nil, false
	}
	if raw == nil { // JSON null decodes without error but is not a list
		return nil, false
	}
	names := make([]string, 0, len(raw))
	for _, v := range raw {
		s, ok := v.(string)
		if !ok {
			return nil, false
		}
		names = append(names, s)
	}
	return names, true
}

func stripCodeFence(s string) string {
	if strings.HasPrefix(s, "```") {
		if i := strings.Index(s, "\n"); i >= 0 {
			s = s[i+1:]
		} else {
			s = strings.TrimPrefix(s, "```json")
			s = strings.TrimPrefix(s, "```")
		}
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
