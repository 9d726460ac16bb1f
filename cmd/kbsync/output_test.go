package main

import (
	"bytes"
	"encoding/json"
	"runtime"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/kbsync/internal/cloud"
)

func TestMaskKey(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"", "(none)"},
		{"abc", "***"},
		{"sk-123456", "*****3456"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, maskKey(tt.key), "key %q", tt.key)
	}
}

func TestReportResult(t *testing.T) {
	assert.NoError(t, reportResult(&cloud.Result{Success: true}, "ok", cloud.ErrSync))

	err := reportResult(&cloud.Result{Success: false, Message: "quota exceeded"}, "ok", cloud.ErrUpload)
	assert.EqualError(t, err, "quota exceeded")

	err = reportResult(&cloud.Result{}, "ok", cloud.ErrDelete)
	assert.ErrorIs(t, err, cloud.ErrDelete)
}

func TestFormatSummaries(t *testing.T) {
	var raw []cloud.Summary
	require.NoError(t, json.Unmarshal([]byte(`[{"id":"a","name":"Alpha","extra":1}]`), &raw))

	var buf bytes.Buffer
	require.NoError(t, formatSummaries(&buf, raw, false))
	assert.Contains(t, buf.String(), "Alpha")
	assert.Contains(t, buf.String(), "1 knowledge bases")

	buf.Reset()
	require.NoError(t, formatSummaries(&buf, raw, true))
	assert.JSONEq(t, `[{"id":"a","name":"Alpha","extra":1}]`, buf.String())

	buf.Reset()
	require.NoError(t, formatSummaries(&buf, nil, false))
	assert.Equal(t, "No knowledge bases found.\n", buf.String())
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		n    int
		want string
	}{
		{"fits", "short", 10, "short"},
		{"ascii", "abcdefghijklmnop", 10, "abcdefg..."},
		{"multibyte fits", "知识库同步", 5, "知识库同步"},
		{"multibyte cut", "向量数据库知识库同步工具", 8, "向量数据库..."},
		{"tiny width", "abcdef", 2, "ab"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncate(tt.in, tt.n)
			assert.Equal(t, tt.want, got)
			assert.True(t, utf8.ValidString(got))
		})
	}
}

func TestFormatSettings(t *testing.T) {
	var buf bytes.Buffer
	formatSettings(&buf, map[string]string{
		"zeaber_api_url": "https://kb.example.com",
		"zeaber_api_key": "sk-123456",
	})
	assert.Equal(t, "  zeaber_api_key = *****3456\n  zeaber_api_url = https://kb.example.com\n", buf.String())

	buf.Reset()
	formatSettings(&buf, map[string]string{})
	assert.Equal(t, "  (none)\n", buf.String())
}

func TestWriteVersion(t *testing.T) {
	tests := []struct {
		name  string
		v     string
		short bool
		want  []string
	}{
		{"short", "v1.2.0", true, []string{"v1.2.0\n"}},
		{"unstamped short", "", true, []string{"dev\n"}},
		{"full", "v1.2.0", false, []string{"kbsync v1.2.0\n", runtime.Version(), "https://api.zeaber.com (default)"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			writeVersion(&buf, tt.v, tt.short)
			for _, want := range tt.want {
				assert.Contains(t, buf.String(), want)
			}
			if tt.short {
				assert.Equal(t, tt.want[0], buf.String())
			}
		})
	}
}
