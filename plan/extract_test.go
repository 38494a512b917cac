package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract_Precedence(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		wantTitle string
		wantSteps int
	}{
		{
			name:      "json fence",
			text:      "Here you go:\n```json\n{\"title\":\"A\",\"steps\":[{\"id\":1,\"description\":\"one\"}]}\n```",
			wantTitle: "A",
			wantSteps: 1,
		},
		{
			name: "json fence wins over earlier plain fence",
			text: "```\n{\"title\":\"plain\",\"steps\":[{\"id\":1,\"description\":\"x\"}]}\n```\n" +
				"```json\n{\"title\":\"tagged\",\"steps\":[{\"id\":1,\"description\":\"x\"},{\"id\":2,\"description\":\"y\"}]}\n```",
			wantTitle: "tagged",
			wantSteps: 2,
		},
		{
			name:      "untagged fence",
			text:      "```\n{\"title\":\"B\",\"steps\":[{\"id\":1,\"description\":\"one\"},{\"id\":2,\"description\":\"two\"}]}\n```",
			wantTitle: "B",
			wantSteps: 2,
		},
		{
			name:      "other language fence",
			text:      "```javascript\n{\"title\":\"C\",\"steps\":[{\"id\":1,\"description\":\"one\"}]}\n```",
			wantTitle: "C",
			wantSteps: 1,
		},
		{
			name:      "bare braces with nesting",
			text:      `Sure. {"title":"D","steps":[{"id":1,"description":"use {curly} text"},{"id":2,"description":"two"}]} trailing {"x":1}`,
			wantTitle: "D",
			wantSteps: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := Extract(tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.wantTitle, d.Title)
			assert.Len(t, d.Steps, tt.wantSteps)
		})
	}
}

func TestExtract_ParsesOnlyFirstMatch(t *testing.T) {
	text := "```json\n{not valid}\n```\n{\"title\":\"later\",\"steps\":[{\"id\":1,\"description\":\"x\"}]}"
	_, err := Extract(text)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoStructuredBlock)
}

func TestExtract_Failures(t *testing.T) {
	_, err := Extract("I will just do it.")
	assert.ErrorIs(t, err, ErrNoStructuredBlock)

	_, err = Extract(`{"title":"unterminated"`)
	assert.ErrorIs(t, err, ErrNoStructuredBlock)

	_, err = Extract(`{"title":"empty","steps":[]}`)
	assert.ErrorIs(t, err, ErrNoSteps)

	_, err = Extract(`{"title":"missing"}`)
	assert.ErrorIs(t, err, ErrNoSteps)

	_, err = Extract(`{"title":"blank","steps":[{"id":1,"description":"  "}]}`)
	assert.ErrorIs(t, err, ErrNoSteps)
}

func TestExtract_StepIDs(t *testing.T) {
	d, err := Extract(`{"steps":[{"id":"7","description":"a"},{"id":2.5,"description":"b"},{"description":"c"}]}`)
	require.NoError(t, err)
	require.Len(t, d.Steps, 3)
	assert.Equal(t, 7, d.Steps[0].ID)
	assert.Equal(t, 0, d.Steps[1].ID)
	assert.Equal(t, 0, d.Steps[2].ID)
}
