package collab

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDecodeContexts_CleanJSON(t *testing.T) {
	got, err := decodeContexts(`{"1": "dog on the roadside", "2": "dog crossing the road"}`, 3)
	if err != nil {
		t.Fatalf("decodeContexts: %v", err)
	}
	want := []string{"dog on the roadside", "dog crossing the road"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("contexts mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeContexts_SalvagesFencedOutput(t *testing.T) {
	text := "Here are the scenarios:\n```json\n{\"2\": \"cat on the fence\", \"1\": \"cat under the bench\"}\n```\nLet me know!"
	got, err := decodeContexts(text, 3)
	if err != nil {
		t.Fatalf("decodeContexts: %v", err)
	}
	// Keys order the output, not the textual position.
	want := []string{"cat under the bench", "cat on the fence"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("contexts mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeContexts_TruncatesToLimit(t *testing.T) {
	text := `{"1": "a", "2": "b", "3": "c", "4": "d"}`
	got, err := decodeContexts(text, 2)
	if err != nil {
		t.Fatalf("decodeContexts: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2 (limit)", len(got))
	}
	if got[0] != "a" || got[1] != "b" {
		t.Errorf("truncation kept %v, want lowest keys first", got)
	}
}

func TestDecodeContexts_DropsDuplicatesAndBlanks(t *testing.T) {
	text := `{"1": "dog by the curb", "2": "  ", "3": "dog by the curb", "4": "dog in the grass"}`
	got, err := decodeContexts(text, 5)
	if err != nil {
		t.Fatalf("decodeContexts: %v", err)
	}
	want := []string{"dog by the curb", "dog in the grass"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("contexts mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeContexts_Errors(t *testing.T) {
	cases := []struct {
		name string
		text string
	}{
		{"prose only", "I could not find any placements."},
		{"empty object", "{}"},
		{"non-numeric keys", `{"first": "dog"}`},
		{"all blank", `{"1": ""}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := decodeContexts(tc.text, 3); err == nil {
				t.Errorf("decodeContexts(%q) should fail", tc.text)
			}
		})
	}
}

func TestDecodeVerdict(t *testing.T) {
	cases := []struct {
		name    string
		text    string
		want    bool
		wantErr bool
	}{
		{"accept", `{"status": true}`, true, false},
		{"reject", `{"status": false}`, false, false},
		{"wrapped", "Sure: {\"status\": true} done", true, false},
		{"missing status", `{"verdict": "ok"}`, false, true},
		{"prose", "looks fine to me", false, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := decodeVerdict(tc.text)
			if (err != nil) != tc.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tc.wantErr)
			}
			if got != tc.want {
				t.Errorf("verdict = %v, want %v", got, tc.want)
			}
		})
	}
}
