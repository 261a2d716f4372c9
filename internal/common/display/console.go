// internal/common/display/console.go
package display

import (
	"fmt"
	"io"
	"strings"

	"github.com/mgutz/ansi"
)

const (
	Title       = "📊 Customer Churn Prediction"
	BusyMessage = "Analyzing customer data..."
)

// About is printed under the title at startup.
var About = []string{
	"🔹 This tool predicts whether a customer is likely to churn based on various call and account details.",
	"📌 The prediction is based on historical customer data and a trained machine learning model.",
	"📊 The visualization helps understand the input data and compare feature values.",
}

// Message levels understood by the console.
const (
	LevelAlert   = "alert"
	LevelSuccess = "success"
	LevelError   = "error"
)

// Console renders session output on a terminal. Color is optional so the
// same output can go to files and tests.
type Console struct {
	out   io.Writer
	color bool

	alert   func(string) string
	success func(string) string
	failure func(string) string
	heading func(string) string
	faint   func(string) string
}

func NewConsole(out io.Writer, color bool) *Console {
	c := &Console{out: out, color: color}
	if color {
		c.alert = ansi.ColorFunc("red+b")
		c.success = ansi.ColorFunc("green+b")
		c.failure = ansi.ColorFunc("yellow+b")
		c.heading = ansi.ColorFunc("cyan+b")
		c.faint = ansi.ColorFunc("white+h")
	} else {
		plain := func(s string) string { return s }
		c.alert, c.success, c.failure, c.heading, c.faint = plain, plain, plain, plain, plain
	}
	return c
}

func (c *Console) Banner() {
	fmt.Fprintln(c.out, c.heading(Title))
	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, c.heading("ℹ️ About This Tool"))
	for _, line := range About {
		fmt.Fprintln(c.out, line)
	}
	fmt.Fprintln(c.out, strings.Repeat("-", 60))
}

// Busy shows the indicator while a prediction is in flight.
func (c *Console) Busy() {
	fmt.Fprintln(c.out, c.faint("🔄 "+BusyMessage))
}

// Message prints the verdict styled by level.
func (c *Console) Message(level, text string) {
	switch level {
	case LevelAlert:
		fmt.Fprintln(c.out, c.alert("🚨 "+text))
	case LevelSuccess:
		fmt.Fprintln(c.out, c.success("🎉 "+text))
	default:
		fmt.Fprintln(c.out, c.failure("⚠️ "+text))
	}
}

// Section prints a subheading followed by a preformatted block.
func (c *Console) Section(title, body string) {
	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, c.heading(title))
	fmt.Fprint(c.out, body)
	if body != "" && !strings.HasSuffix(body, "\n") {
		fmt.Fprintln(c.out)
	}
}

func (c *Console) Error(code, message, details string) {
	text := fmt.Sprintf("%s (%s)", message, code)
	if details != "" {
		text += ": " + details
	}
	c.Message(LevelError, text)
}

func (c *Console) Saved(path, mimeType string) {
	fmt.Fprintln(c.out, c.faint(fmt.Sprintf("📥 Prediction data saved to %s (%s)", path, mimeType)))
}
