package llmutils

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/saahil/toolcalling/pkg/llms"
)

// CleanJSON returns JSON by trimming prefixes and postfixes,
// as an LLM can reply like `Here you go: {json}`.
func CleanJSON(bs []byte) []byte {
	trimmedPrefix := trimPrefixBeforeJSON(bs)
	trimmedJSON := trimPostfixAfterJSON(trimmedPrefix)
	return trimmedJSON
}

// Removes any prefixes before the JSON (like "Sure, here you go:")
func trimPrefixBeforeJSON(bs []byte) []byte {
	startObject := bytes.IndexByte(bs, '{')
	startArray := bytes.IndexByte(bs, '[')

	var start int
	if startObject == -1 && startArray == -1 {
		return bs // No opening brace or bracket found, return the original string
	} else if startObject == -1 {
		start = startArray
	} else if startArray == -1 {
		start = startObject
	} else {
		start = min(startObject, startArray)
	}

	return bs[start:]
}

// Removes any postfixes after the JSON
func trimPostfixAfterJSON(bs []byte) []byte {
	endObject := bytes.LastIndexByte(bs, '}')
	endArray := bytes.LastIndexByte(bs, ']')

	var end int
	if endObject == -1 && endArray == -1 {
		return bs // No closing brace or bracket found, return the original string
	} else if endObject == -1 {
		end = endArray
	} else if endArray == -1 {
		end = endObject
	} else {
		end = max(endObject, endArray)
	}

	return bs[:end+1]
}

// TrimBackticks removes ```json or ```
func TrimBackticks(text string) string {
	return string(BytesTrimBackticks([]byte(text)))
}

var backtick = []byte("```")

// BytesTrimBackticks removes ```json or ```
func BytesTrimBackticks(bs []byte) []byte {
	size := len(bs)
	startIndex := bytes.Index(bs, backtick)
	if startIndex == -1 {
		return bs
	}
	startIndex += len(backtick)

	for i := startIndex; i < size && bs[i] != '{' && bs[i] != '['; i++ {
		if bs[i] == '\n' {
			startIndex = i + 1
			break
		}
	}

	contentAfterStart := bs[startIndex:]

	endIndex := bytes.LastIndex(contentAfterStart, backtick)
	if endIndex == -1 {
		return contentAfterStart
	}

	return bytes.TrimSpace(contentAfterStart[:endIndex])
}

// ToJSON returns the JSON encoding of v, ignoring errors.
func ToJSON(v any) string {
	bs, _ := json.Marshal(v)
	return string(bs)
}

// ToJSONIndent returns the indented JSON encoding of v, ignoring errors.
func ToJSONIndent(v any) string {
	bs, _ := json.MarshalIndent(v, "", "  ")
	return string(bs)
}

// BackticksJSON wraps the provided JSON in a fenced code block.
func BackticksJSON(js string) string {
	return "```json\n" + js + "\n```"
}

// CountMessagesContentSize returns the total byte size of the text content
// of the provided messages.
func CountMessagesContentSize(messages []llms.Message) uint64 {
	var total uint64
	for _, msg := range messages {
		total += uint64(len(msg.GetContent()))
	}
	return total
}

// PrintMessages writes a readable transcript of the messages to w.
func PrintMessages(w io.Writer, messages []llms.Message) {
	for _, msg := range messages {
		fmt.Fprintf(w, "[%s]: %s\n", msg.Role, msg.GetContent())
	}
}
