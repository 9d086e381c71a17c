package collab

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Models are asked for bare JSON but routinely wrap it in prose or fences.
var jsonObjectRe = regexp.MustCompile(`(?s)\{.*\}`)

// salvageJSON unmarshals text into v, falling back to the first JSON object
// embedded in the text when the whole payload does not parse.
func salvageJSON(text string, v any) error {
	trimmed := strings.TrimSpace(text)
	if err := json.Unmarshal([]byte(trimmed), v); err == nil {
		return nil
	}
	if m := jsonObjectRe.FindString(trimmed); m != "" {
		if err := json.Unmarshal([]byte(m), v); err == nil {
			return nil
		}
	}
	return fmt.Errorf("no JSON object in model output")
}

// decodeContexts parses the description model's numbered-object output
// ({"1": "...", "2": "..."}) into an ordered, deduplicated slice truncated
// to limit.
func decodeContexts(text string, limit int) ([]string, error) {
	var raw map[string]string
	if err := salvageJSON(text, &raw); err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("model returned an empty context object")
	}

	keys := make([]int, 0, len(raw))
	for k := range raw {
		n, err := strconv.Atoi(strings.TrimSpace(k))
		if err != nil {
			return nil, fmt.Errorf("non-numeric context key %q", k)
		}
		keys = append(keys, n)
	}
	sort.Ints(keys)

	seen := make(map[string]bool, len(keys))
	var contexts []string
	for _, n := range keys {
		desc := strings.TrimSpace(raw[strconv.Itoa(n)])
		if desc == "" || seen[desc] {
			continue
		}
		seen[desc] = true
		contexts = append(contexts, desc)
		if len(contexts) == limit {
			break
		}
	}
	if len(contexts) == 0 {
		return nil, fmt.Errorf("model returned no usable context descriptions")
	}
	return contexts, nil
}

// decodeVerdict parses the judge model's {"status": bool} output.
func decodeVerdict(text string) (bool, error) {
	var v struct {
		Status *bool `json:"status"`
	}
	if err := salvageJSON(text, &v); err != nil {
		return false, err
	}
	if v.Status == nil {
		return false, fmt.Errorf("judge output missing status field")
	}
	return *v.Status, nil
}
