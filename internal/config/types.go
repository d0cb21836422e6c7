package config

// Config describes the questionnaire: the question set and the copy around it.
type Config struct {
	QuestionnaireConfig QuestionnaireConfig `yaml:"questionnaire_config"`
	Landing             Landing             `yaml:"landing"`
	ProfileFields       []string            `yaml:"profile_fields"`
	Questions           []Question          `yaml:"questions"`
	LoadingSteps        LoadingSteps        `yaml:"loading_steps"`
}

// QuestionnaireConfig holds the general questionnaire settings.
type QuestionnaireConfig struct {
	Title          string `yaml:"title"`
	Tagline        string `yaml:"tagline"`
	TotalQuestions int    `yaml:"total_questions"`
}

// Landing is the text shown on the landing screen.
type Landing struct {
	Headline   string   `yaml:"headline"`
	Pitch      string   `yaml:"pitch"`
	PainPoints []string `yaml:"pain_points"`
}

// Question is one multiple-choice question. The ID doubles as the profile
// field the answer is submitted under.
type Question struct {
	ID          string   `yaml:"id"`
	Prompt      string   `yaml:"prompt"`
	Options     []string `yaml:"options"`
	MultiSelect bool     `yaml:"multi_select"`
}

// LoadingSteps are the captions of the two loading presenters.
type LoadingSteps struct {
	Startup    []string `yaml:"startup"`
	Processing []string `yaml:"processing"`
}

func (c *Config) GetTotalQuestions() int {
	return c.QuestionnaireConfig.TotalQuestions
}

// Question returns the question with the given ID.
func (c *Config) Question(id string) (Question, bool) {
	for _, q := range c.Questions {
		if q.ID == id {
			return q, true
		}
	}
	return Question{}, false
}

// HasOption reports whether option is one of the question's choices.
func (q Question) HasOption(option string) bool {
	for _, o := range q.Options {
		if o == option {
			return true
		}
	}
	return false
}
