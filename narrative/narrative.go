package narrative

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/Dosada05/bug-arena/models"
)

// Input описывает разрешённый бой для генератора текста.
type Input struct {
	Combatant1 *models.Combatant
	Combatant2 *models.Combatant
	// WinnerID nil - ничья.
	WinnerID *int
	Power1   float64
	Power2   float64
}

// Generator отдаёт описание боя. Ошибка генератора никогда не должна
// отменять уже разрешённый исход: вызывающий подставляет Fallback.
type Generator interface {
	Generate(ctx context.Context, input Input) (string, error)
}

type httpGenerator struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewHTTPGenerator строит клиента внешнего сервиса описаний.
func NewHTTPGenerator(baseURL, apiKey string) Generator {
	return &httpGenerator{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type narrativeRequest struct {
	Combatant1 narrativeCombatant `json:"combatant1"`
	Combatant2 narrativeCombatant `json:"combatant2"`
	WinnerID   *int               `json:"winner_id"`
}

type narrativeCombatant struct {
	ID         int    `json:"id"`
	Nickname   string `json:"nickname"`
	CommonName string `json:"common_name"`
	AttackType string `json:"attack_type"`
	SizeClass  string `json:"size_class"`
}

type narrativeResponse struct {
	Narrative string `json:"narrative"`
}

func (g *httpGenerator) Generate(ctx context.Context, input Input) (string, error) {
	payload := narrativeRequest{
		Combatant1: toNarrativeCombatant(input.Combatant1),
		Combatant2: toNarrativeCombatant(input.Combatant2),
		WinnerID:   input.WinnerID,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal narrative request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/narratives", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build narrative request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if g.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+g.apiKey)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("narrative service request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("narrative service returned status %d", resp.StatusCode)
	}

	var parsed narrativeResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("failed to decode narrative response: %w", err)
	}
	if parsed.Narrative == "" {
		return "", fmt.Errorf("narrative service returned an empty narrative")
	}
	return parsed.Narrative, nil
}

func toNarrativeCombatant(c *models.Combatant) narrativeCombatant {
	common := ""
	if c.CommonName != nil {
		common = *c.CommonName
	}
	return narrativeCombatant{
		ID:         c.ID,
		Nickname:   c.Nickname,
		CommonName: common,
		AttackType: string(c.AttackType),
		SizeClass:  string(c.SizeClass),
	}
}

// Fallback строит детерминированное описание, когда внешний сервис
// недоступен.
func Fallback(input Input) string {
	name1 := displayName(input.Combatant1)
	name2 := displayName(input.Combatant2)

	if input.WinnerID == nil {
		return fmt.Sprintf("%s and %s fought to a standstill, neither able to land a decisive blow.", name1, name2)
	}
	winner, loser := input.Combatant1, input.Combatant2
	if *input.WinnerID == input.Combatant2.ID {
		winner, loser = input.Combatant2, input.Combatant1
	}
	return fmt.Sprintf("%s overpowered %s with a relentless %s assault.",
		displayName(winner), displayName(loser), winner.AttackType)
}

func displayName(c *models.Combatant) string {
	if c.Nickname != "" {
		return c.Nickname
	}
	if c.CommonName != nil && *c.CommonName != "" {
		return *c.CommonName
	}
	return fmt.Sprintf("combatant %d", c.ID)
}
