// internal/common/display/console_test.go
package display

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConsole_PlainOutput(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf, false)

	c.Banner()
	c.Busy()
	c.Message(LevelAlert, "The customer is likely to churn!")
	c.Message(LevelSuccess, "The customer is unlikely to churn!")
	c.Error("INFERENCE_ERROR", "Prediction failed", "boom")
	c.Section("Customer Data Visualization", "chart")
	c.Saved("out/customer_churn_prediction.csv", "text/csv")

	out := buf.String()
	assert.Contains(t, out, Title)
	for _, line := range About {
		assert.Contains(t, out, line)
	}
	assert.Contains(t, out, "🔄 Analyzing customer data...")
	assert.Contains(t, out, "🚨 The customer is likely to churn!")
	assert.Contains(t, out, "🎉 The customer is unlikely to churn!")
	assert.Contains(t, out, "Prediction failed (INFERENCE_ERROR): boom")
	assert.Contains(t, out, "chart\n")
	assert.Contains(t, out, "out/customer_churn_prediction.csv (text/csv)")
	assert.NotContains(t, out, "\x1b[")
}

func TestConsole_ColorOutput(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf, true)

	c.Message(LevelAlert, "likely")
	c.Message(LevelSuccess, "unlikely")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "\x1b["), lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "\x1b["), lines[1])
	assert.NotEqual(t, strings.SplitN(lines[0], "m", 2)[0], strings.SplitN(lines[1], "m", 2)[0])
}
