package answer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt("What is this about?", []string{"chunk one", "chunk two"})

	assert.Contains(t, prompt, "say you don't know")
	assert.Contains(t, prompt, "Context: chunk one\n\nchunk two")
	assert.Contains(t, prompt, "Question: What is this about?")
	assert.Contains(t, prompt, "Answer:")
}

func TestBuildPromptNoContext(t *testing.T) {
	prompt := BuildPrompt("q", nil)
	assert.Contains(t, prompt, "Context: \n")
	assert.Contains(t, prompt, "Question: q")
}
