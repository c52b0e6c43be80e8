package llmutils_test

import (
	"bytes"
	"testing"

	"github.com/saahil/toolcalling/pkg/llms"
	"github.com/saahil/toolcalling/pkg/llmutils"
	"github.com/stretchr/testify/assert"
)

func Test_CleanJSON(t *testing.T) {
	tcases := []struct {
		name string
		in   string
		exp  string
	}{
		{"plain", `{"a": 1}`, `{"a": 1}`},
		{"prefix", `Sure, here you go: {"a": 1}`, `{"a": 1}`},
		{"postfix", `{"a": 1} Hope that helps!`, `{"a": 1}`},
		{"both", `Here: {"a": 1}. Done.`, `{"a": 1}`},
		{"array", `result: [1, 2, 3] end`, `[1, 2, 3]`},
		{"no json", `no braces here`, `no braces here`},
	}
	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.exp, string(llmutils.CleanJSON([]byte(tc.in))))
		})
	}
}

func Test_TrimBackticks(t *testing.T) {
	in := "```json\n{\"a\": 1}\n```"
	assert.Equal(t, `{"a": 1}`, llmutils.TrimBackticks(in))

	in = "```\n{\"a\": 1}\n```"
	assert.Equal(t, `{"a": 1}`, llmutils.TrimBackticks(in))

	// no fences to trim
	assert.Equal(t, `{"a": 1}`, llmutils.TrimBackticks(`{"a": 1}`))
}

func Test_BackticksJSON(t *testing.T) {
	assert.Equal(t, "```json\n{}\n```", llmutils.BackticksJSON("{}"))
}

func Test_CountMessagesContentSize(t *testing.T) {
	msgs := []llms.Message{
		llms.MessageFromTextParts(llms.RoleSystem, "abc"),
		llms.MessageFromTextParts(llms.RoleHuman, "defgh"),
	}
	assert.Equal(t, uint64(8), llmutils.CountMessagesContentSize(msgs))
}

func Test_PrintMessages(t *testing.T) {
	var buf bytes.Buffer
	llmutils.PrintMessages(&buf, []llms.Message{
		llms.MessageFromTextParts(llms.RoleHuman, "hello"),
	})
	assert.Equal(t, "[human]: hello\n", buf.String())
}
