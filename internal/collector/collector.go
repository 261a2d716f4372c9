// internal/collector/collector.go
package collector

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"churn-predictor/internal/common/logger"
	"churn-predictor/internal/models"
)

// Collector produces one value per schema field for a single request.
type Collector interface {
	Collect(ctx context.Context) (map[string]float64, error)
}

// Section is one titled block of prompts.
type Section struct {
	Title  string
	Fields []string
}

// Layout is the prompt order operators are used to. It only affects
// collection; the vector is always built in schema order.
var Layout = []Section{
	{
		Title: "Customer & Account Details",
		Fields: []string{
			"account_length", "voice_mail_plan", "voice_mail_messages",
			"international_plan", "customer_service_calls", "international_mins",
			"international_calls", "international_charge",
		},
	},
	{
		Title: "Call & Charge Details",
		Fields: []string{
			"day_mins", "day_calls", "day_charge",
			"evening_mins", "evening_calls", "evening_charge",
			"night_mins", "night_calls", "night_charge",
			"total_charge",
		},
	},
}

var binaryOptions = []string{"0 (No)", "1 (Yes)"}

// Interactive collects values through a PromptDriver. Every prompt is
// prefilled, first with the schema defaults and afterwards with the values
// of the previous request, so an operator can tweak one field and rerun.
type Interactive struct {
	schema *models.FeatureSchema
	driver PromptDriver
	logger logger.Logger

	mu      sync.Mutex
	prefill map[string]float64
}

func NewInteractive(schema *models.FeatureSchema, driver PromptDriver, log logger.Logger) *Interactive {
	return &Interactive{
		schema:  schema,
		driver:  driver,
		logger:  log.WithFields(map[string]interface{}{"stage": "collect-inputs"}),
		prefill: schema.Defaults(),
	}
}

// Prefill overrides the starting values, e.g. from a profile file. Unknown
// names are ignored.
func (c *Interactive) Prefill(values map[string]float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for name, v := range values {
		if _, _, ok := c.schema.Lookup(name); ok {
			c.prefill[name] = v
		}
	}
}

func (c *Interactive) Collect(ctx context.Context) (map[string]float64, error) {
	c.mu.Lock()
	prefill := make(map[string]float64, len(c.prefill))
	for k, v := range c.prefill {
		prefill[k] = v
	}
	c.mu.Unlock()

	values := make(map[string]float64, c.schema.Len())
	for _, section := range Layout {
		if err := c.driver.Info(ctx, section.Title); err != nil {
			return nil, err
		}
		for _, name := range section.Fields {
			desc, _, ok := c.schema.Lookup(name)
			if !ok {
				return nil, fmt.Errorf("collector: layout field %q not in schema", name)
			}
			v, err := c.ask(ctx, desc, prefill[name])
			if err != nil {
				return nil, err
			}
			values[name] = v
		}
	}

	run, err := c.driver.Confirm(ctx, ConfirmConfig{Message: "Predict Churn?", Default: true})
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	for k, v := range values {
		c.prefill[k] = v
	}
	c.mu.Unlock()

	if !run {
		return nil, ErrNotTriggered
	}
	c.logger.Debug("inputs collected", map[string]interface{}{"values": values})
	return values, nil
}

func (c *Interactive) ask(ctx context.Context, desc models.FeatureDescriptor, current float64) (float64, error) {
	if desc.Type == models.FeatureTypeBinary {
		def := 0
		if current == 1 {
			def = 1
		}
		idx, err := c.driver.Select(ctx, SelectConfig{
			Message:      desc.Label,
			Options:      binaryOptions,
			DefaultIndex: def,
		})
		if err != nil {
			return 0, err
		}
		if idx < 0 || idx >= len(desc.Allowed) {
			return 0, fmt.Errorf("collector: %s: option %d out of range", desc.Name, idx)
		}
		return desc.Allowed[idx], nil
	}

	validate := RangeValidator(desc)
	raw, err := c.driver.Input(ctx, InputConfig{
		Message:   desc.Label,
		Default:   FormatValue(current),
		Help:      fmt.Sprintf("%s between %s and %s", desc.Type, FormatValue(desc.Min), FormatValue(desc.Max)),
		Validator: validate,
	})
	if err != nil {
		return 0, err
	}
	// Drivers are not required to run the validator themselves.
	if err := validate(raw); err != nil {
		return 0, fmt.Errorf("collector: %s: %w", desc.Name, err)
	}
	return strconv.ParseFloat(strings.TrimSpace(raw), 64)
}

// RangeValidator accepts text that parses to a value inside the field's
// domain.
func RangeValidator(desc models.FeatureDescriptor) func(string) error {
	return func(raw string) error {
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return fmt.Errorf("%q is not a number", raw)
		}
		if !desc.Contains(v) {
			if desc.Type == models.FeatureTypeInteger {
				return fmt.Errorf("must be a whole number between %s and %s", FormatValue(desc.Min), FormatValue(desc.Max))
			}
			return fmt.Errorf("must be between %s and %s", FormatValue(desc.Min), FormatValue(desc.Max))
		}
		return nil
	}
}

// FormatValue renders v with the fewest digits that parse back exactly.
func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
