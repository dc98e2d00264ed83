package narrative

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Dosada05/bug-arena/models"
)

func testInput(winnerID *int) Input {
	return Input{
		Combatant1: &models.Combatant{ID: 1, Nickname: "mandible", AttackType: models.AttackCrushing, SizeClass: models.SizeMedium},
		Combatant2: &models.Combatant{ID: 2, Nickname: "gnat", AttackType: models.AttackPiercing, SizeClass: models.SizeTiny},
		WinnerID:   winnerID,
		Power1:     300,
		Power2:     120,
	}
}

func TestFallbackWinner(t *testing.T) {
	winner := 1
	text := Fallback(testInput(&winner))
	if !strings.Contains(text, "mandible") || !strings.Contains(text, "gnat") {
		t.Fatalf("fallback does not name both combatants: %q", text)
	}
	if !strings.Contains(text, "crushing") {
		t.Fatalf("fallback does not mention the winner's attack type: %q", text)
	}
}

func TestFallbackWinnerSecondSlot(t *testing.T) {
	winner := 2
	text := Fallback(testInput(&winner))
	if !strings.HasPrefix(text, "gnat") {
		t.Fatalf("expected second combatant to lead the narrative, got %q", text)
	}
}

func TestFallbackDraw(t *testing.T) {
	text := Fallback(testInput(nil))
	if !strings.Contains(text, "standstill") {
		t.Fatalf("draw fallback unexpected: %q", text)
	}
}

func TestFallbackUnnamedCombatant(t *testing.T) {
	input := testInput(nil)
	input.Combatant1.Nickname = ""
	text := Fallback(input)
	if !strings.Contains(text, "combatant 1") {
		t.Fatalf("expected id-based name for unnamed combatant, got %q", text)
	}
}

func TestHTTPGeneratorSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/narratives" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sekret" {
			t.Errorf("unexpected auth header %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"narrative":"a savage clash unfolds"}`))
	}))
	defer server.Close()

	gen := NewHTTPGenerator(server.URL, "sekret")
	winner := 1
	text, err := gen.Generate(context.Background(), testInput(&winner))
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if text != "a savage clash unfolds" {
		t.Fatalf("unexpected narrative %q", text)
	}
}

func TestHTTPGeneratorErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "non-200 status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
			},
		},
		{
			name: "empty narrative",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"narrative":""}`))
			},
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`not json`))
			},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(tc.handler)
			defer server.Close()

			gen := NewHTTPGenerator(server.URL, "")
			winner := 1
			if _, err := gen.Generate(context.Background(), testInput(&winner)); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}
