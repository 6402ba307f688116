// Package gemini asks a Gemini model for equipment substitutions when a
// requested item is already taken.
package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"studioBooker/internal/lib/timeslot"
	"studioBooker/internal/models"
	"studioBooker/internal/scheduling/reservation"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

type Advisor struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

func New(ctx context.Context, apiKey, model string) (*Advisor, error) {
	if apiKey == "" {
		return nil, errors.New("gemini api key is empty")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("unable to create Gemini client: %w", err)
	}

	m := client.GenerativeModel(model)
	m.ResponseMIMEType = "application/json"

	return &Advisor{client: client, model: m}, nil
}

func (a *Advisor) Close() error {
	return a.client.Close()
}

// Suggest implements reservation.Advisor.
func (a *Advisor) Suggest(ctx context.Context, req reservation.AdviceRequest) (*reservation.Advice, error) {
	resp, err := a.model.GenerateContent(ctx, genai.Text(buildPrompt(req)))
	if err != nil {
		return nil, fmt.Errorf("gemini generate: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, nil
	}

	text, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return nil, errors.New("gemini returned a non-text part")
	}

	return parseAdvice(string(text))
}

type adviceJSON struct {
	Text               string  `json:"text"`
	AlternativeItemIDs []int64 `json:"alternative_item_ids"`
}

type itemJSON struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
}

type promptJSON struct {
	Date         string     `json:"date"`
	Start        string     `json:"start"`
	End          string     `json:"end"`
	Kind         string     `json:"kind"`
	RequestedIDs []int64    `json:"requested_ids"`
	Unavailable  []itemJSON `json:"unavailable"`
	Candidates   []itemJSON `json:"candidates"`
}

func buildPrompt(req reservation.AdviceRequest) string {
	p := promptJSON{
		Date:         timeslot.FormatDate(req.Date),
		Start:        req.Window.Start.String(),
		End:          req.Window.End.String(),
		Kind:         string(req.Kind),
		RequestedIDs: make([]int64, 0, len(req.Requested)),
		Unavailable:  toItems(req.Unavailable),
		Candidates:   toItems(req.Candidates),
	}
	for _, item := range req.Requested {
		p.RequestedIDs = append(p.RequestedIDs, item.ID)
	}

	payload, _ := json.Marshal(p)

	return "You help a photo studio manager pick substitute equipment. " +
		"Some requested items are already reserved for the booking window below. " +
		"Suggest replacements only from the candidates list, preferring the same category. " +
		"Reply with JSON only, shaped as {\"text\": \"one short sentence\", \"alternative_item_ids\": [ids]}. " +
		"If nothing fits, reply with {\"text\": \"\", \"alternative_item_ids\": []}.\n" +
		string(payload)
}

func toItems(items []models.EquipmentItem) []itemJSON {
	out := make([]itemJSON, 0, len(items))
	for _, item := range items {
		out = append(out, itemJSON{ID: item.ID, Name: item.Name, Category: item.Category})
	}
	return out
}

func parseAdvice(raw string) (*reservation.Advice, error) {
	clean := strings.TrimSpace(raw)
	clean = strings.TrimPrefix(clean, "```json")
	clean = strings.TrimPrefix(clean, "```")
	clean = strings.TrimSuffix(clean, "```")
	clean = strings.TrimSpace(clean)

	if clean == "" {
		return nil, nil
	}

	var out adviceJSON
	if err := json.Unmarshal([]byte(clean), &out); err != nil {
		return nil, fmt.Errorf("decode gemini advice: %w", err)
	}

	if out.Text == "" && len(out.AlternativeItemIDs) == 0 {
		return nil, nil
	}

	return &reservation.Advice{Text: out.Text, AlternativeItemIDs: out.AlternativeItemIDs}, nil
}
