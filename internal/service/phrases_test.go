package service

import (
	"reflect"
	"testing"
)

func TestPhraseMiner_Mine(t *testing.T) {
	tests := []struct {
		name   string
		prompt string
		want   []string
	}{
		{
			name:   "specific phrases first",
			prompt: "beautiful sunset over the ocean with waves crashing",
			want: []string{
				"beautiful sunset", "waves crashing", "sunset over ocean",
				"ocean wave", "sunset", "ocean", "wave",
			},
		},
		{
			name:   "bigrams pad sparse prompts",
			prompt: "glorious thing happening yonder",
			want:   []string{"glorious thing", "thing happening", "happening yonder"},
		},
		{
			name:   "long stopwords pair up",
			prompt: "would could",
			want:   []string{"would could"},
		},
		{
			name:   "trimmed prompt as last resort",
			prompt: "  zzz qq ",
			want:   []string{"zzz qq"},
		},
		{
			name:   "empty prompt",
			prompt: "",
			want:   nil,
		},
	}

	for kind, tok := range tokenizers() {
		m := NewPhraseMiner(tok)
		for _, tt := range tests {
			t.Run(kind+"/"+tt.name, func(t *testing.T) {
				got := m.Mine(tt.prompt)
				if len(got) == 0 && len(tt.want) == 0 {
					return
				}
				if !reflect.DeepEqual(got, tt.want) {
					t.Errorf("Mine(%q) = %q, want %q", tt.prompt, got, tt.want)
				}
			})
		}
	}
}

func TestPhraseMiner_MineBounded(t *testing.T) {
	m := NewPhraseMiner(NewNaiveTokenizer())
	got := m.Mine("stunning misty forest, calm lake, flowing river, snowy mountain peak, busy city street at night with birds flying over the bridge")
	if len(got) != maxMinedPhrases {
		t.Fatalf("expected %d phrases, got %d: %q", maxMinedPhrases, len(got), got)
	}
	seen := make(map[string]bool)
	for _, p := range got {
		if seen[p] {
			t.Errorf("duplicate phrase %q", p)
		}
		seen[p] = true
	}
}

func TestPhraseMiner_PrimarySubject(t *testing.T) {
	tests := []struct {
		prompt string
		want   string
	}{
		{"stunning northern lights over the mountain", "northern lights"},
		{"City skyline at night", "city skyline"},
		{"a red kayak on water", "water"},
		{"surfers riding ocean waves", "ocean"},
		{"glorious kayaking adventure", "glorious"},
		{" a b ", "a b"},
	}

	m := NewPhraseMiner(nil)
	for _, tt := range tests {
		t.Run(tt.prompt, func(t *testing.T) {
			if got := m.PrimarySubject(tt.prompt); got != tt.want {
				t.Errorf("PrimarySubject(%q) = %q, want %q", tt.prompt, got, tt.want)
			}
		})
	}
}
