package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"surveyeditor/internal/survey"
)

const partyJSON = `[
	{"prompt": "Will you attend?", "kind": "single_choice", "options": ["Yes", "No"]},
	{"prompt": "Why not?", "kind": "text", "branchRule": {"triggerIndex": 0, "triggerValue": "No"}},
	{"prompt": "Food", "type": "checkbox", "options": ["Fish", "Meat"]}
]`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := rootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestValidate(t *testing.T) {
	out, err := execute(t, "", "validate", writeFile(t, "party.json", partyJSON))
	require.NoError(t, err)
	assert.Equal(t, "ok: 3 questions, 1 branch rules\n", out)

	out, err = execute(t, `["Name?", "Age?"]`, "validate", "-")
	require.NoError(t, err)
	assert.Equal(t, "ok: 2 questions, 0 branch rules\n", out)

	_, err = execute(t, `{"prompt": "x"}`, "validate", "-")
	assert.ErrorIs(t, err, survey.ErrFormat)
}

func TestValidate_ReportsBrokenRules(t *testing.T) {
	broken := `[
		{"prompt": "Name?", "kind": "text"},
		{"prompt": "Why?", "kind": "text", "branchRule": {"triggerIndex": 0, "triggerValue": "x"}},
		{"prompt": "When?", "kind": "text", "branchRule": {"triggerIndex": 5, "triggerValue": "x"}}
	]`

	out, err := execute(t, broken, "validate", "-")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 branch rules")
	assert.Equal(t, "invalid: 3 questions, 0 branch rules, 2 broken branch rules\n", out)

	out, err = execute(t, broken, "migrate", "-")
	require.NoError(t, err)
	assert.Contains(t, out, "dropped 2 broken branch rules")
	assert.NotContains(t, out, "branchRule")
}

func TestMigrate(t *testing.T) {
	target := filepath.Join(t.TempDir(), "out.json")
	_, err := execute(t, `["Name?"]`, "migrate", "-", "-o", target)
	require.NoError(t, err)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"prompt":"Name?","kind":"text","options":[],"allowOther":false}]`, string(data))

	out, err := execute(t, "", "migrate", writeFile(t, "party.json", partyJSON))
	require.NoError(t, err)
	doc, err := survey.Parse([]byte(out))
	require.NoError(t, err)
	q, err := doc.Question(2)
	require.NoError(t, err)
	assert.Equal(t, survey.KindMultiChoice, q.Kind)
}

func TestTriggers(t *testing.T) {
	path := writeFile(t, "party.json", partyJSON)

	out, err := execute(t, "", "triggers", path, "2")
	require.NoError(t, err)
	assert.Equal(t, "Q1: Will you attend? [Yes, No]\n", out)

	out, err = execute(t, "", "triggers", path, "0")
	require.NoError(t, err)
	assert.Equal(t, "no eligible triggers\n", out)

	_, err = execute(t, "", "triggers", path, "9")
	assert.ErrorIs(t, err, survey.ErrIndex)
	_, err = execute(t, "", "triggers", path, "two")
	assert.Error(t, err)
}

func TestPreview(t *testing.T) {
	path := writeFile(t, "party.json", partyJSON)

	out, err := execute(t, "", "preview", path)
	require.NoError(t, err)
	assert.Equal(t, "Q1 shown  Will you attend?\nQ2 hidden Why not?\nQ3 shown  Food\n", out)

	answers := writeFile(t, "answers.yaml", "0: \"No\"\n2: Fish\n")
	out, err = execute(t, "", "preview", path, "--answers", answers)
	require.NoError(t, err)
	assert.Equal(t, "Q1 shown  Will you attend?\nQ2 shown  Why not?\nQ3 shown  Food\n", out)

	_, err = execute(t, "", "preview", path, "--answers", writeFile(t, "bad.yaml", "- a\n- b\n"))
	assert.Error(t, err)
}
