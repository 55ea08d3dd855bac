package agent

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	FirstSpeakerAgent = "FIRST_SPEAKER_AGENT"
	FirstSpeakerUser  = "FIRST_SPEAKER_USER"
)

// DefaultSystemPrompt is the base behavioral script every call starts from.
const DefaultSystemPrompt = `YOUR NAME IS LISA and you are answering calls on behalf of Omegga AI Agency, a Canada-based company specializing in AI Automation and web development services.

Greet the caller warmly and introduce yourself as a representative of Omegga AI Agency. Ask how you can assist them today.

If they inquire about services, explain that Omegga specializes in:
- AI Automation solutions (including Voice AI)
- Web development services
- Multimodal use cases
- Customized Business Automation solutions

If asked about Pricing, explain that Omegga AI Agency operates both as a Pure AI Automation Agency and a Web Development Agency. After understanding their requirements, you will pass that information to the relevant team, and a team member will contact them within 24 hours.

Focus on:
- Understanding their Business needs
- Gathering specific requirements
- Being Professional and helpful
- Explaining Omegga AI Agency's expertise in delivering effective Business Solutions

Remember to collect their contact details for follow-up if they show interest.`

// Profile holds the fixed provider parameters and the base script shared by
// every call. It is built once at startup and never mutated afterwards.
type Profile struct {
	Model        string  `yaml:"model"`
	Voice        string  `yaml:"voice"`
	Temperature  float64 `yaml:"temperature"`
	FirstSpeaker string  `yaml:"first_speaker"`
	SystemPrompt string  `yaml:"system_prompt"`

	// Optional provider settings, omitted from the request when unset.
	MaxDuration      string `yaml:"max_duration"`
	RecordingEnabled bool   `yaml:"recording_enabled"`
}

func DefaultProfile() Profile {
	return Profile{
		Model:        "fixie-ai/ultravox",
		Voice:        "Mark",
		Temperature:  0.3,
		FirstSpeaker: FirstSpeakerAgent,
		SystemPrompt: DefaultSystemPrompt,
	}
}

// LoadProfile reads a YAML profile from path on top of DefaultProfile, so a
// file only needs the keys it changes.
func LoadProfile(path string) (Profile, error) {
	p := DefaultProfile()
	raw, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, fmt.Errorf("read agent profile: %w", err)
	}
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return Profile{}, fmt.Errorf("parse agent profile %s: %w", path, err)
	}
	if err := p.Validate(); err != nil {
		return Profile{}, fmt.Errorf("agent profile %s: %w", path, err)
	}
	return p, nil
}

func (p Profile) Validate() error {
	var errs []error
	if strings.TrimSpace(p.Model) == "" {
		errs = append(errs, errors.New("model is required"))
	}
	if strings.TrimSpace(p.Voice) == "" {
		errs = append(errs, errors.New("voice is required"))
	}
	if math.IsNaN(p.Temperature) || math.IsInf(p.Temperature, 0) || p.Temperature < 0 || p.Temperature > 1 {
		errs = append(errs, fmt.Errorf("temperature %v out of range [0,1]", p.Temperature))
	}
	switch p.FirstSpeaker {
	case FirstSpeakerAgent, FirstSpeakerUser:
	default:
		errs = append(errs, fmt.Errorf("first_speaker %q must be %s or %s", p.FirstSpeaker, FirstSpeakerAgent, FirstSpeakerUser))
	}
	if strings.TrimSpace(p.SystemPrompt) == "" {
		errs = append(errs, errors.New("system_prompt is required"))
	}
	return errors.Join(errs...)
}
