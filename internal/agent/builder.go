package agent

import (
	"fmt"
	"strings"
	"text/template"
	"unicode"
)

// maxCallerRunes bounds how much caller-supplied text reaches the script.
const maxCallerRunes = 64

// SessionConfig is the request body for the provider's session-creation call.
type SessionConfig struct {
	Model            string  `json:"model"`
	Voice            string  `json:"voice"`
	Temperature      float64 `json:"temperature"`
	FirstSpeaker     string  `json:"firstSpeaker"`
	Medium           Medium  `json:"medium"`
	SystemPrompt     string  `json:"systemPrompt"`
	MaxDuration      string  `json:"maxDuration,omitempty"`
	RecordingEnabled bool    `json:"recordingEnabled,omitempty"`
}

// Medium names the telephony transport the session is reached through.
type Medium struct {
	Twilio *TwilioMedium `json:"twilio,omitempty"`
}

type TwilioMedium struct{}

var callerContext = template.Must(template.New("caller_context").Parse(`{{.Base}}

IMPORTANT CONTEXT:
- The caller's phone number is: {{.Caller}}
- You already have this number. If they request a callback or follow-up, you can say, "I have your number as {{.Caller}}, is this the best number to reach you for a follow-up?" Get confirmation before using it. Do not just assume it's their number for follow-up.

Remember you already have their contact number, so do not ask for it again. Focus on getting other information if they show interest.`))

// BuildSessionConfig merges the caller-specific script into the profile's
// fixed parameters. The result depends only on its arguments.
func BuildSessionConfig(p Profile, caller string) (SessionConfig, error) {
	script, err := ComposeScript(p.SystemPrompt, caller)
	if err != nil {
		return SessionConfig{}, err
	}
	return SessionConfig{
		Model:            p.Model,
		Voice:            p.Voice,
		Temperature:      p.Temperature,
		FirstSpeaker:     p.FirstSpeaker,
		Medium:           Medium{Twilio: &TwilioMedium{}},
		SystemPrompt:     script,
		MaxDuration:      p.MaxDuration,
		RecordingEnabled: p.RecordingEnabled,
	}, nil
}

// ComposeScript appends the caller context block to the base script.
func ComposeScript(base, caller string) (string, error) {
	var b strings.Builder
	err := callerContext.Execute(&b, struct {
		Base   string
		Caller string
	}{
		Base:   base,
		Caller: NeutralizeCaller(caller),
	})
	if err != nil {
		return "", fmt.Errorf("render caller context: %w", err)
	}
	return b.String(), nil
}

// NeutralizeCaller keeps caller text on a single bounded line: control
// characters and line/paragraph separators are dropped and the result is
// capped at maxCallerRunes.
func NeutralizeCaller(s string) string {
	s = strings.TrimSpace(s)
	var b strings.Builder
	n := 0
	for _, r := range s {
		if unicode.IsControl(r) || r == '\u2028' || r == '\u2029' {
			continue
		}
		if n == maxCallerRunes {
			break
		}
		b.WriteRune(r)
		n++
	}
	return b.String()
}
