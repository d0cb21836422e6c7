package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed questions.yaml
var defaultQuestions []byte

// Load reads the questionnaire from a YAML file. An empty filename selects
// the built-in question set.
func Load(filename string) (*Config, error) {
	if filename == "" {
		return Parse(defaultQuestions)
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("read questions file %s: %w", filename, err)
	}
	return Parse(data)
}

// Parse decodes and validates a questionnaire document.
func Parse(data []byte) (*Config, error) {
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parse questions YAML: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid questionnaire: %w", err)
	}

	return &config, nil
}

// validateConfig checks that the question set lines up with the profile
// fields the backend expects.
func validateConfig(config *Config) error {
	if config.QuestionnaireConfig.TotalQuestions <= 0 {
		return fmt.Errorf("total_questions must be greater than 0")
	}

	if len(config.Questions) != config.QuestionnaireConfig.TotalQuestions {
		return fmt.Errorf("question count (%d) does not match total_questions (%d)",
			len(config.Questions), config.QuestionnaireConfig.TotalQuestions)
	}

	if len(config.ProfileFields) != len(config.Questions) {
		return fmt.Errorf("profile_fields has %d entries, expected %d",
			len(config.ProfileFields), len(config.Questions))
	}

	seen := make(map[string]bool, len(config.Questions))
	for i, q := range config.Questions {
		if q.ID == "" {
			return fmt.Errorf("question %d must have an id", i+1)
		}
		if seen[q.ID] {
			return fmt.Errorf("duplicate question id %q", q.ID)
		}
		seen[q.ID] = true

		// Questions are asked in profile field order.
		if config.ProfileFields[i] != q.ID {
			return fmt.Errorf("question %d has id %q, expected profile field %q",
				i+1, q.ID, config.ProfileFields[i])
		}

		if q.Prompt == "" {
			return fmt.Errorf("question %q must have a prompt", q.ID)
		}

		if len(q.Options) == 0 {
			return fmt.Errorf("question %q must have options", q.ID)
		}

		options := make(map[string]bool, len(q.Options))
		for _, o := range q.Options {
			if o == "" {
				return fmt.Errorf("question %q has an empty option", q.ID)
			}
			if options[o] {
				return fmt.Errorf("question %q repeats option %q", q.ID, o)
			}
			options[o] = true
		}
	}

	return nil
}
