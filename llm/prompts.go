package llm

import (
	"errors"
	"fmt"
	"strings"

	"github.com/camden-git/personagen/models"
)

// ErrUnparsableResponse is returned when the model's reply does not contain
// both prompt sections. The record stays pending so the batch can be re-run.
var ErrUnparsableResponse = errors.New("response does not contain both positive and negative prompts")

const systemPrompt = `You are an expert prompt engineer for photorealistic, professional-looking portrait images of human administrators.

Your task is to create detailed Stable Diffusion prompts that will generate high-quality, realistic images of professional administrators in business or academic settings.

Focus on:
- Professional attire and demeanor
- Appropriate business or academic backgrounds
- High-quality photographic elements
- Realistic lighting and composition
- Professional settings (office, university campus, modern workspace)

Output your response in exactly this format:
Positive Prompt: [Your detailed positive prompt here]
Negative Prompt: [Your detailed negative prompt here]`

const (
	positivePrefix = "Positive Prompt:"
	negativePrefix = "Negative Prompt:"
)

// fixed quality cues appended after a successful parse
const (
	positiveSuffix = ", studio lighting, crisp, 8k, ultra-detailed, Canon EOS R5, award-winning photography"
	negativeSuffix = ", low quality, bad anatomy, deformed, ugly, disfigured, blurry, worst quality, low resolution, bad hands, missing fingers, extra fingers, bad eyes, bad facial features, unprofessional, casual clothes, messy background"
)

// PromptPair holds the two generated prompt strings for one profile.
type PromptPair struct {
	Positive string
	Negative string
}

// BuildUserMessage summarizes a profile into the request sent alongside the
// system instruction.
func BuildUserMessage(profile *models.AdminProfile) string {
	return fmt.Sprintf(`Create a Stable Diffusion prompt for a professional administrator portrait.

Administrator Details:
- Name: %s %s
- Organization: %s
- Location: %s
- Languages: %s

Generate a positive prompt that describes a professional-looking person in appropriate business attire, in a suitable professional environment, with high-quality photographic elements.

Also generate a negative prompt that excludes common quality issues and inappropriate elements.`,
		profile.FirstName, profile.LastName,
		profile.OrganizationName, profile.OrganizationTown, profile.Languages)
}

// ParsePromptPair extracts the positive/negative sections from the model reply
// and appends the fixed quality suffixes. Both sections must be present and
// non-empty.
func ParsePromptPair(content string) (PromptPair, error) {
	var pair PromptPair

	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, positivePrefix) {
			pair.Positive = strings.TrimSpace(strings.TrimPrefix(trimmed, positivePrefix))
		} else if strings.HasPrefix(trimmed, negativePrefix) {
			pair.Negative = strings.TrimSpace(strings.TrimPrefix(trimmed, negativePrefix))
		}
	}

	if pair.Positive == "" || pair.Negative == "" {
		return PromptPair{}, ErrUnparsableResponse
	}

	pair.Positive += positiveSuffix
	pair.Negative += negativeSuffix
	return pair, nil
}
