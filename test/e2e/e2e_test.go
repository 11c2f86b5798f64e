package e2e_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcncl/jsonfixer/pkg/jsonfixer"
)

// generateLargeJSON generates a JSON array document with the specified number of items
func generateLargeJSON(t testing.TB, itemCount int) []byte {
	// Seed random for reproducible results
	rng := rand.New(rand.NewSource(42))
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	items := make([]map[string]interface{}, itemCount)
	for i := 0; i < itemCount; i++ {
		items[i] = map[string]interface{}{
			"id":          i + 1,
			"guid":        fmt.Sprintf("%x-%x-%x", rng.Uint32(), rng.Uint32()&0xffff, rng.Uint32()),
			"name":        fmt.Sprintf("Item %d", i+1),
			"description": fmt.Sprintf("This is item \"number\" %d\nin the test dataset", i+1),
			"created_at":  base.Add(-time.Duration(rng.Intn(10000)) * time.Hour).Format(time.RFC3339),
			"price":       float64(rng.Intn(100000)) / 100,
			"quantity":    rng.Intn(100),
			"active":      rng.Intn(2) == 1,
			"deleted":     nil,
			"tags":        []string{"tag1", "tag2", "tag3"}[0 : rng.Intn(3)+1],
			"metadata": map[string]interface{}{
				"source":   "test",
				"priority": rng.Intn(5) + 1,
				"score":    rng.Float64(),
			},
		}
	}

	jsonData, err := json.MarshalIndent(items, "", "  ")
	require.NoError(t, err)
	return jsonData
}

// runCLI runs the CLI through go run with the given stdin and args
func runCLI(t *testing.T, stdin string, args ...string) (string, string) {
	t.Helper()

	cmd := exec.Command("go", append([]string{"run", "../../main.go"}, args...)...)
	cmd.Stdin = strings.NewReader(stdin)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	require.NoError(t, err, "CLI command failed: %s", stderr.String())
	return stdout.String(), stderr.String()
}

// TestEndToEnd_EveryPrefixIsRepaired cuts a realistic document at every byte
// and checks that each prefix repairs to valid JSON
func TestEndToEnd_EveryPrefixIsRepaired(t *testing.T) {
	doc := string(generateLargeJSON(t, 3))

	for i := 0; i <= len(doc); i++ {
		prefix := doc[:i]
		out := jsonfixer.Correct(prefix)
		require.True(t, json.Valid([]byte(out)), "prefix of length %d produced invalid %q", i, out)
	}
}

// TestEndToEnd_CompleteDocumentRoundTrips checks that valid input keeps its meaning
func TestEndToEnd_CompleteDocumentRoundTrips(t *testing.T) {
	doc := generateLargeJSON(t, 25)

	var want, got interface{}
	require.NoError(t, json.Unmarshal(doc, &want))
	require.NoError(t, json.Unmarshal([]byte(jsonfixer.Correct(string(doc))), &got))
	assert.Equal(t, want, got)
}

// TestEndToEnd_TruncatedFile repairs a large file cut in half through the CLI
func TestEndToEnd_TruncatedFile(t *testing.T) {
	tempDir := t.TempDir()

	doc := generateLargeJSON(t, 200)
	jsonFile := filepath.Join(tempDir, "truncated.json")
	require.NoError(t, os.WriteFile(jsonFile, doc[:len(doc)/2], 0o644))
	outputFile := filepath.Join(tempDir, "fixed.json")

	runCLI(t, "", "-i", jsonFile, "-o", outputFile)

	fixed, err := os.ReadFile(outputFile)
	require.NoError(t, err)
	require.True(t, json.Valid(fixed))

	var original, repaired []map[string]interface{}
	require.NoError(t, json.Unmarshal(doc, &original))
	require.NoError(t, json.Unmarshal(fixed, &repaired))

	// every item before the cut survives intact
	require.NotEmpty(t, repaired)
	assert.Less(t, len(repaired), len(original))
	for i := 0; i < len(repaired)-1; i++ {
		assert.Equal(t, original[i], repaired[i], "item %d", i)
	}
}

// TestEndToEnd_PrettyIsStable checks that pretty output corrects to itself
func TestEndToEnd_PrettyIsStable(t *testing.T) {
	doc := string(generateLargeJSON(t, 5))
	input := doc[:len(doc)*3/4]

	pretty, _ := runCLI(t, input, "--pretty")
	again, _ := runCLI(t, pretty, "--pretty")

	assert.Equal(t, pretty, again)
	assert.True(t, strings.HasPrefix(pretty, "[\n  {\n"))
}

// TestEndToEnd_EdgeCases tests various edge cases through the CLI
func TestEndToEnd_EdgeCases(t *testing.T) {
	testCases := []struct {
		name     string
		json     string
		expected string
	}{
		{"EmptyObject", `{}`, `{}`},
		{"EmptyArray", `[]`, `[]`},
		{"SingleValue", `"just a string"`, `"just a string"`},
		{"SingleNumber", `42`, `42`},
		{"SingleBoolean", `true`, `true`},
		{"SingleNull", `null`, `null`},
		{"TrailingComma", `{"name": "Invalid JSON",}`, `{"name":"Invalid JSON"}`},
		{"MismatchedClosers", `[{"a":1]`, `[{"a":1}]`},
		{"StrayClosers", `]]{"a":1}}}`, `{"a":1}`},
		{"UnquotedKey", `{name: "x"}`, `{"name":"x"}`},
		{"Garbage", `@@@`, `{}`},
		{"DeeplyNestedObject", `{"level1":{"level2":{"level3":{"level4":{"level5":{"value":42`, `{"level1":{"level2":{"level3":{"level4":{"level5":{"value":42}}}}}}`},
		{"DeeplyNestedArray", `[[[[[[42`, `[[[[[[42]]]]]]`},
		{"Unicode", `{"greeting":"héllo 世界 é`, `{"greeting":"héllo 世界 é"}`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			stdout, _ := runCLI(t, tc.json)
			assert.Equal(t, tc.expected+"\n", stdout)
		})
	}
}

// TestEndToEnd_BatchInPlace corrects a set of truncated files in place
func TestEndToEnd_BatchInPlace(t *testing.T) {
	tempDir := t.TempDir()
	doc := generateLargeJSON(t, 10)

	var paths []string
	for i, cut := range []int{len(doc) / 5, len(doc) / 3, len(doc) / 2, len(doc) - 1} {
		path := filepath.Join(tempDir, fmt.Sprintf("part_%d.json", i))
		require.NoError(t, os.WriteFile(path, doc[:cut], 0o644))
		paths = append(paths, path)
	}

	_, stderr := runCLI(t, "", append(paths, "--in-place", "-w", "3")...)
	assert.Equal(t, len(paths), strings.Count(stderr, "ok   "))

	for _, path := range paths {
		fixed, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.True(t, json.Valid(fixed), "%s is not valid JSON", path)
	}
}
