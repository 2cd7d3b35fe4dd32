package file

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

func TestNewPromptStore_WithCustomDir(t *testing.T) {
	dir := t.TempDir()

	store, err := NewPromptStore(dir)

	require.NoError(t, err)
	assert.Equal(t, dir, store.Dir())
}

func TestNewPromptStore_DefaultDir(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("cannot determine home directory")
	}

	store, err := NewPromptStore("")

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".docqa", "prompts"), store.Dir())
}

func TestPromptStore_Load_CreatesDefaultFiles(t *testing.T) {
	dir := t.TempDir()
	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	_, err = store.Load(driven.PromptRefine)
	require.NoError(t, err)

	for _, f := range []string{
		"question_answer.txt",
		"refine.txt",
		"condense_question.txt",
		"conversation_answer.txt",
		"README.md",
	} {
		_, err := os.Stat(filepath.Join(dir, f))
		assert.NoError(t, err, "expected file %s to exist", f)
	}
}

func TestDefaultPrompts_Placeholders(t *testing.T) {
	tests := map[string][]string{
		driven.PromptQuestionAnswer:     {driven.PlaceholderContext, driven.PlaceholderQuestion},
		driven.PromptRefine:             {driven.PlaceholderAnswer},
		driven.PromptCondenseQuestion:   {driven.PlaceholderChatHistory, driven.PlaceholderQuestion},
		driven.PromptConversationAnswer: {driven.PlaceholderContext},
	}
	for name, want := range tests {
		prompt, ok := DefaultPrompt(name)
		require.True(t, ok, name)
		for _, placeholder := range want {
			assert.Equal(t, 1, strings.Count(prompt, placeholder), "%s %s", name, placeholder)
		}
		assert.NotContains(t, prompt, "%s", name)
	}
}

func TestPromptStore_RefineDefault(t *testing.T) {
	store, err := NewPromptStore(t.TempDir())
	require.NoError(t, err)

	prompt, err := store.Load(driven.PromptRefine)
	require.NoError(t, err)

	assert.Equal(t,
		"You are a helpful AI assistant. Please improve and simplify this answer:\n\nThe term is 2 years.",
		strings.Replace(prompt, driven.PlaceholderAnswer, "The term is 2 years.", 1))
}

func TestPromptStore_Load_ReturnsCustomContent(t *testing.T) {
	dir := t.TempDir()
	customContent := "Context:\n{context}\n\nQ: {question}"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "question_answer.txt"), []byte(customContent), 0600))

	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	prompt, err := store.Load(driven.PromptQuestionAnswer)

	require.NoError(t, err)
	assert.Equal(t, customContent, prompt)
}

func TestPromptStore_Load_FallsBackToDefault(t *testing.T) {
	dir := t.TempDir()
	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	_, _ = store.Load(driven.PromptCondenseQuestion)
	require.NoError(t, os.Remove(filepath.Join(dir, "condense_question.txt")))
	store.Reload()

	prompt, err := store.Load(driven.PromptCondenseQuestion)

	require.NoError(t, err)
	assert.Contains(t, prompt, "standalone question")
}

func TestPromptStore_Load_EmptyFileFallsBack(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "refine.txt"), []byte("  \n"), 0600))

	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	prompt, err := store.Load(driven.PromptRefine)
	require.NoError(t, err)
	assert.Contains(t, prompt, "improve and simplify")
}

func TestPromptStore_Load_UnknownPrompt(t *testing.T) {
	store, err := NewPromptStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Load("nonexistent_prompt")

	assert.ErrorContains(t, err, "nonexistent_prompt")
}

func TestPromptStore_CacheAndReload(t *testing.T) {
	dir := t.TempDir()
	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	first, err := store.Load(driven.PromptRefine)
	require.NoError(t, err)

	modified := "Simplify: {answer}"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "refine.txt"), []byte(modified), 0600))

	cached, err := store.Load(driven.PromptRefine)
	require.NoError(t, err)
	assert.Equal(t, first, cached)

	store.Reload()
	fresh, err := store.Load(driven.PromptRefine)
	require.NoError(t, err)
	assert.Equal(t, modified, fresh)
}

func TestPromptStore_Watch_ReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, store.Watch(ctx))

	_, err = store.Load(driven.PromptRefine)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "refine.txt"), []byte("Shorter: {answer}"), 0600))

	assert.Eventually(t, func() bool {
		prompt, err := store.Load(driven.PromptRefine)
		return err == nil && prompt == "Shorter: {answer}"
	}, 2*time.Second, 20*time.Millisecond)
}

func TestPromptStore_Load_ConcurrentAccess(t *testing.T) {
	store, err := NewPromptStore(t.TempDir())
	require.NoError(t, err)

	const goroutines = 50
	var wg sync.WaitGroup
	results := make(chan string, goroutines)

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			prompt, err := store.Load(driven.PromptQuestionAnswer)
			assert.NoError(t, err)
			results <- prompt
		}()
	}
	wg.Wait()
	close(results)

	var first string
	for prompt := range results {
		if first == "" {
			first = prompt
			continue
		}
		assert.Equal(t, first, prompt)
	}
}

func TestPromptStore_DoesNotOverwriteExistingFiles(t *testing.T) {
	dir := t.TempDir()
	customContent := "pre-existing custom prompt {answer}"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "refine.txt"), []byte(customContent), 0600))

	store, err := NewPromptStore(dir)
	require.NoError(t, err)
	_, _ = store.Load(driven.PromptQuestionAnswer)

	data, err := os.ReadFile(filepath.Join(dir, "refine.txt"))
	require.NoError(t, err)
	assert.Equal(t, customContent, string(data))
}

func TestPromptStore_TrimsWhitespace(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "refine.txt"), []byte("\n\n  Refine: {answer}  \n\n"), 0600))

	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	prompt, err := store.Load(driven.PromptRefine)
	require.NoError(t, err)
	assert.Equal(t, "Refine: {answer}", prompt)
}
