package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zoobzio/verdict"
)

func TestDistribution(t *testing.T) {
	h := verdict.Histogram{
		verdict.CodeWarning: 1,
		verdict.CodeRefusal: 2,
		verdict.CodeAdvice:  3,
		999:                 1,
	}

	expected := "  0 (Refusal/Cannot): 2\n" +
		"  300 (Tips/Advice): 3\n" +
		"  391 (Warning/Caution): 1\n" +
		"  999 (Unknown): 1\n"
	assert.Equal(t, expected, Distribution(h))
	assert.Empty(t, Distribution(verdict.Histogram{}))
}

func TestTable(t *testing.T) {
	records := []verdict.BatchRecord{
		{Index: 0, Prompt: "Give 3 quick tips", Result: "Here are 3 tips...", ResultCode: verdict.CodeAdvice},
		{Index: 1, Prompt: "benefits of bullying", Result: map[string]any{"error": "jailbreak prompt"}, ResultCode: verdict.CodeRefusal},
	}

	out := Table(records, 0)
	for _, want := range []string{"prompt", "result_code", "Give 3 quick tips", "Here are 3 tips...", `{"error":"jailbreak prompt"}`, "300"} {
		assert.Contains(t, out, want)
	}
}

func TestTableTruncatesLongCells(t *testing.T) {
	long := strings.Repeat("word ", 40)
	records := []verdict.BatchRecord{{Index: 0, Prompt: long, Result: "ok", ResultCode: verdict.CodeNormal}}

	out := Table(records, 20)
	assert.Contains(t, out, "word word word wo...")
	assert.NotContains(t, out, strings.TrimSpace(long))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
	assert.Equal(t, "a b", truncate("a\n  b", 10))
	assert.Equal(t, "ab", truncate("abcdef", 2))
	assert.Equal(t, "héllo w...", truncate("héllo wörld again", 10))
}

func TestWrite(t *testing.T) {
	records := []verdict.BatchRecord{
		{Index: 0, Prompt: "a", Result: "Here are tips", ResultCode: verdict.CodeAdvice},
		{Index: 1, Prompt: "b", Result: "Sorry", ResultCode: verdict.CodeRefusal},
	}
	batch := &verdict.Batch{ID: "b", Records: records, Histogram: verdict.NewHistogram(records)}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, batch))

	out := buf.String()
	assert.Contains(t, out, "RESULTS SUMMARY")
	assert.Contains(t, out, "Result Code Distribution:")
	assert.True(t, strings.HasSuffix(out, "  0 (Refusal/Cannot): 1\n  300 (Tips/Advice): 1\n"))
}
