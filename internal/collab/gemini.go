package collab

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"google.golang.org/genai"

	"syngen/internal/logging"
)

// Default Gemini models for the three collaborator roles. The description and
// judge roles share a vision model; synthesis needs the image-output preview.
const (
	DefaultDescribeModel  = "gemini-2.5-flash"
	DefaultSynthesisModel = "gemini-2.5-flash-image-preview"
	DefaultJudgeModel     = "gemini-2.5-flash"
)

// GeminiConfig configures a Gemini-backed Collaborator.
type GeminiConfig struct {
	APIKey         string
	DescribeModel  string
	SynthesisModel string
	JudgeModel     string
}

// Gemini implements Collaborator on the Gemini API.
type Gemini struct {
	client         *genai.Client
	describeModel  string
	synthesisModel string
	judgeModel     string
	log            *slog.Logger
}

// NewGemini creates a Gemini collaborator. The API key is required; model
// names default to the constants above.
func NewGemini(ctx context.Context, cfg GeminiConfig) (*Gemini, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("collab: Gemini API key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("collab: create Gemini client: %w", err)
	}
	g := &Gemini{
		client:         client,
		describeModel:  cfg.DescribeModel,
		synthesisModel: cfg.SynthesisModel,
		judgeModel:     cfg.JudgeModel,
		log:            logging.New("gemini"),
	}
	if g.describeModel == "" {
		g.describeModel = DefaultDescribeModel
	}
	if g.synthesisModel == "" {
		g.synthesisModel = DefaultSynthesisModel
	}
	if g.judgeModel == "" {
		g.judgeModel = DefaultJudgeModel
	}
	return g, nil
}

func imageContents(prompt string, mime string, data []byte) []*genai.Content {
	parts := []*genai.Part{
		genai.NewPartFromText(prompt),
		genai.NewPartFromBytes(data, mime),
	}
	return []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
}

// GenerateContexts asks the vision model for up to limit placement scenarios.
func (g *Gemini) GenerateContexts(ctx context.Context, img Image, entity string, limit int) ([]string, error) {
	prompt := fmt.Sprintf(
		"Analyze this image and return possible scenarios where the entity '%s' could be placed. "+
			"The output must be ONLY a valid JSON object with keys as integers and values as short English descriptions. "+
			"Example: {\"1\": \"%s standing in the roadside\", \"2\": \"%s standing in the middle of the road\"}. "+
			"Limit yourself to a maximum of %d values. Only valid JSON.",
		entity, entity, entity, limit)

	resp, err := g.client.Models.GenerateContent(ctx, g.describeModel, imageContents(prompt, img.MIME, img.Data), nil)
	if err != nil {
		return nil, &ContextGenerationError{Image: img.Name, Err: err}
	}
	contexts, err := decodeContexts(resp.Text(), limit)
	if err != nil {
		return nil, &ContextGenerationError{Image: img.Name, Err: err}
	}
	g.log.Debug("contexts generated", "image", img.Name, "count", len(contexts))
	return contexts, nil
}

// SynthesizeEntity asks the image model to insert entity into img at the
// described placement and returns the first inline image part.
func (g *Gemini) SynthesizeEntity(ctx context.Context, img Image, entity, placement string) (*Artifact, error) {
	prompt := fmt.Sprintf(
		"Add %s in this context: %s. "+
			"Ensure that the entity's size is proportional to the scene and other objects around it. "+
			"DO NOT make adjustments to other original objects to accommodate the new entity.",
		entity, placement)

	resp, err := g.client.Models.GenerateContent(ctx, g.synthesisModel, imageContents(prompt, img.MIME, img.Data), nil)
	if err != nil {
		return nil, classifySynthesis(err)
	}
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				return &Artifact{MIME: part.InlineData.MIMEType, Data: part.InlineData.Data}, nil
			}
		}
	}
	// A response with no image part is not worth retrying with the same inputs.
	return nil, &SynthesisError{Transient: false, Err: fmt.Errorf("response contains no image data")}
}

// JudgeAuthenticity asks the vision model for a strict accept/reject verdict
// on the inserted entity.
func (g *Gemini) JudgeAuthenticity(ctx context.Context, candidate *Artifact, entity, placement string) (bool, error) {
	prompt := fmt.Sprintf(
		"You are a strict evaluator of AI-generated content. "+
			"Look ONLY at the entity '%s' in the image, expected placement: %s. "+
			"If the entity looks artificial, fake, poorly blended, distorted, its size is not proportional "+
			"compared to other objects or it is clearly AI-generated, respond with this exact JSON: {\"status\": false}. "+
			"If the entity looks natural enough in the context of the scene (even if not perfect), "+
			"respond with this exact JSON: {\"status\": true}. "+
			"Do not include explanations, only the JSON.",
		entity, placement)

	mime := candidate.MIME
	if mime == "" {
		mime = "image/png"
	}
	resp, err := g.client.Models.GenerateContent(ctx, g.judgeModel, imageContents(prompt, mime, candidate.Data), nil)
	if err != nil {
		return false, &JudgeCallError{Err: err}
	}
	verdict, err := decodeVerdict(resp.Text())
	if err != nil {
		return false, &JudgeCallError{Err: err}
	}
	return verdict, nil
}
