package runner

import (
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/plaidlibs/pkg/engine"
	"github.com/jwebster45206/plaidlibs/pkg/state"
)

// Step actions. An empty action posts Value as an answer.
const (
	ActionAnswer   = "answer"
	ActionRestart  = "restart"
	ActionGenerate = "generate"
	ActionRemix    = "remix"
	ActionNarrator = "narrator"
	ActionWorkflow = "workflow"
	ActionChat     = "chat"
	ActionDownload = "download"
)

// TestSuite is one scripted session run. A suite with Cases only sequences other case files.
type TestSuite struct {
	Name     string     `yaml:"name"`
	Workflow string     `yaml:"workflow,omitempty"`
	Narrator string     `yaml:"narrator,omitempty"`
	Steps    []TestStep `yaml:"steps,omitempty"`
	Cases    []string   `yaml:"cases,omitempty"`
}

// IsSequence returns true if this suite only references other cases.
func (ts *TestSuite) IsSequence() bool {
	return len(ts.Cases) > 0
}

// TestStep is one API call against the suite's session and what to check afterwards.
type TestStep struct {
	Name    string       `yaml:"name,omitempty"`
	Action  string       `yaml:"action,omitempty"`
	Value   string       `yaml:"value,omitempty"`
	Answers []string     `yaml:"answers,omitempty"` // shorthand for several answer steps
	Expect  Expectations `yaml:"expect"`
}

// Expectations are checked against the view returned by the step's last call.
type Expectations struct {
	Status   *int         `yaml:"status,omitempty"`
	Phase    *state.Phase `yaml:"phase,omitempty"`
	Step     *int         `yaml:"step,omitempty"`
	Terminal *bool        `yaml:"terminal,omitempty"`
	Workflow *string      `yaml:"workflow,omitempty"`
	Narrator *string      `yaml:"narrator,omitempty"`

	TitleContains   []string `yaml:"title_contains,omitempty"`
	TextContains    []string `yaml:"text_contains,omitempty"`
	TextNotContains []string `yaml:"text_not_contains,omitempty"`
	TextRegex       string   `yaml:"text_regex,omitempty"`
	ErrorContains   []string `yaml:"error_contains,omitempty"`
	NoError         bool     `yaml:"no_error,omitempty"`
	MinLength       *int     `yaml:"min_length,omitempty"`
}

// TestResult is the outcome of one step.
type TestResult struct {
	StepName string
	Success  bool
	Error    error
	Duration time.Duration
	View     engine.View
	Status   int
}

// TestJob is a loaded suite and the file it came from.
type TestJob struct {
	Name     string
	Suite    TestSuite
	CaseFile string
}

// TestRunResult holds the results of one suite run.
type TestRunResult struct {
	Job      TestJob
	Results  []TestResult
	Error    error
	Duration time.Duration
	Session  uuid.UUID
}
