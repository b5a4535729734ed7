package runner

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/jwebster45206/plaidlibs/pkg/engine"
)

type ErrorHandlingMode string

const ErrorHandlingExit ErrorHandlingMode = "exit"
const ErrorHandlingContinue ErrorHandlingMode = "continue"

// Runner executes scripted suites against a running plaidlibs API.
type Runner struct {
	BaseURL           string
	Client            *http.Client
	Timeout           time.Duration
	Logger            func(format string, args ...any)
	ErrorHandlingMode ErrorHandlingMode
	WorkflowOverride  string // if set, every suite starts in this workflow
}

// NewRunner creates a new test runner
func NewRunner(baseURL string) *Runner {
	return &Runner{
		BaseURL:           strings.TrimSuffix(baseURL, "/"),
		Client:            &http.Client{Timeout: 150 * time.Second},
		Timeout:           120 * time.Second,
		Logger:            func(string, ...any) {},
		ErrorHandlingMode: ErrorHandlingContinue,
	}
}

// LoadTestSuite loads a test suite from a YAML file
func LoadTestSuite(filename string) (TestSuite, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return TestSuite{}, fmt.Errorf("failed to read test file %s: %w", filename, err)
	}

	var suite TestSuite
	if err := yaml.Unmarshal(content, &suite); err != nil {
		return TestSuite{}, fmt.Errorf("failed to parse YAML in %s: %w", filename, err)
	}
	return suite, nil
}

// LoadTestSuiteWithExpansion loads a suite and, if it is a sequence, every case it references.
func LoadTestSuiteWithExpansion(filename string, casesDir string) ([]TestJob, error) {
	suite, err := LoadTestSuite(filename)
	if err != nil {
		return nil, err
	}
	if !suite.IsSequence() {
		return []TestJob{{Name: suite.Name, Suite: suite, CaseFile: filename}}, nil
	}

	var jobs []TestJob
	for _, caseFile := range suite.Cases {
		subJobs, err := LoadTestSuiteWithExpansion(filepath.Join(casesDir, caseFile), casesDir)
		if err != nil {
			return nil, fmt.Errorf("failed to load case '%s' referenced by sequence '%s': %w", caseFile, suite.Name, err)
		}
		jobs = append(jobs, subJobs...)
	}
	return jobs, nil
}

// RunSuite creates a session for the suite and runs its steps in order.
func (r *Runner) RunSuite(ctx context.Context, suite TestSuite) (TestRunResult, error) {
	start := time.Now()
	result := TestRunResult{
		Job:     TestJob{Name: suite.Name, Suite: suite},
		Results: make([]TestResult, 0, len(suite.Steps)),
	}

	wf := suite.Workflow
	if r.WorkflowOverride != "" {
		wf = r.WorkflowOverride
	}
	created, status, err := call(ctx, r.Client, http.MethodPost, r.BaseURL+"/v1/sessions",
		map[string]string{"workflow": wf, "narrator": suite.Narrator})
	if err == nil && status != http.StatusCreated {
		err = fmt.Errorf("create session returned %d: %s", status, created.Error)
	}
	if err != nil {
		result.Error = fmt.Errorf("failed to create session: %w", err)
		result.Duration = time.Since(start)
		return result, result.Error
	}
	result.Session = created.ID
	defer r.cleanup(created.ID)

	for i, step := range suite.Steps {
		r.Logger("    [%d/%d] Running step: %s", i+1, len(suite.Steps), step.Name)
		stepResult := r.runStep(ctx, created.ID, step)
		result.Results = append(result.Results, stepResult)

		if stepResult.Error != nil {
			r.Logger("    [%d/%d] ✗ %s: %v", i+1, len(suite.Steps), step.Name, stepResult.Error)
			if result.Error == nil {
				result.Error = fmt.Errorf("step %d (%s) failed: %w", i, step.Name, stepResult.Error)
			}
			if r.ErrorHandlingMode == ErrorHandlingExit {
				break
			}
			continue
		}
		r.Logger("    [%d/%d] ✓ %s (%v)", i+1, len(suite.Steps), step.Name, stepResult.Duration)
	}

	result.Duration = time.Since(start)
	return result, result.Error
}

func (r *Runner) cleanup(id uuid.UUID) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, _, _ = call(ctx, r.Client, http.MethodDelete, r.sessionURL(id, ""), nil)
}

func (r *Runner) sessionURL(id uuid.UUID, action string) string {
	u := r.BaseURL + "/v1/sessions/" + id.String()
	if action != "" {
		u += "/" + action
	}
	return u
}

// runStep executes a step, retrying once when generation timed out upstream.
func (r *Runner) runStep(ctx context.Context, id uuid.UUID, step TestStep) TestResult {
	result := r.executeStep(ctx, id, step)
	if result.Status == http.StatusGatewayTimeout && (step.Expect.Status == nil || *step.Expect.Status != result.Status) {
		r.Logger("    Timeout detected, retrying generation: %s", step.Name)
		return r.executeStep(ctx, id, TestStep{Name: step.Name, Action: ActionGenerate, Expect: step.Expect})
	}
	return result
}

func (r *Runner) executeStep(ctx context.Context, id uuid.UUID, step TestStep) TestResult {
	start := time.Now()
	result := TestResult{StepName: step.Name}
	ctx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()

	var (
		resp sessionResponse
		err  error
	)
	switch step.Action {
	case "", ActionAnswer:
		answers := step.Answers
		if len(answers) == 0 {
			answers = []string{step.Value}
		}
		for _, a := range answers {
			resp, result.Status, err = call(ctx, r.Client, http.MethodPost, r.sessionURL(id, "answer"), map[string]string{"answer": a})
			if err != nil || result.Status >= 400 {
				break
			}
		}
	case ActionRestart, ActionGenerate:
		resp, result.Status, err = call(ctx, r.Client, http.MethodPost, r.sessionURL(id, step.Action), nil)
	case ActionRemix:
		resp, result.Status, err = call(ctx, r.Client, http.MethodPost, r.sessionURL(id, "remix"), map[string]string{"option": step.Value})
	case ActionNarrator:
		resp, result.Status, err = call(ctx, r.Client, http.MethodPost, r.sessionURL(id, "narrator"), map[string]string{"narrator": step.Value})
	case ActionWorkflow:
		resp, result.Status, err = call(ctx, r.Client, http.MethodPost, r.sessionURL(id, "workflow"), map[string]string{"workflow": step.Value})
	case ActionChat:
		resp, result.Status, err = call(ctx, r.Client, http.MethodPost, r.sessionURL(id, "chat"), map[string]string{"message": step.Value})
	case ActionDownload:
		format := step.Value
		if format == "" {
			format = "txt"
		}
		var size int
		result.Status, size, err = download(ctx, r.Client, r.sessionURL(id, "download")+"?format="+format)
		if err == nil {
			err = checkDownload(step.Expect, result.Status, size)
		}
		result.Success = err == nil
		result.Error = err
		result.Duration = time.Since(start)
		return result
	default:
		err = fmt.Errorf("unknown action %q", step.Action)
	}

	result.View = resp.View
	if err == nil {
		err = CheckExpectations(step.Expect, result.Status, resp.View)
	}
	if err != nil {
		result.Error = fmt.Errorf("expectation failed: %w", err)
	}
	result.Success = err == nil
	result.Duration = time.Since(start)
	return result
}

func checkDownload(exp Expectations, status, size int) error {
	want := http.StatusOK
	if exp.Status != nil {
		want = *exp.Status
	}
	if status != want {
		return fmt.Errorf("expected download status %d, got %d", want, status)
	}
	if exp.MinLength != nil && size < *exp.MinLength {
		return fmt.Errorf("expected download of at least %d bytes, got %d", *exp.MinLength, size)
	}
	return nil
}

// CheckExpectations validates a step's expectations against the returned view.
// Without an explicit status, any 4xx or 5xx response fails the step.
func CheckExpectations(exp Expectations, status int, v engine.View) error {
	var errs []error
	if exp.Status != nil {
		if status != *exp.Status {
			errs = append(errs, fmt.Errorf("expected status %d, got %d", *exp.Status, status))
		}
	} else if status >= 400 {
		errs = append(errs, fmt.Errorf("unexpected status %d: %s", status, v.Error))
	}

	if exp.Phase != nil && v.Phase != *exp.Phase {
		errs = append(errs, fmt.Errorf("expected phase %s, got %s", *exp.Phase, v.Phase))
	}
	if exp.Step != nil && v.Step != *exp.Step {
		errs = append(errs, fmt.Errorf("expected step %d, got %d", *exp.Step, v.Step))
	}
	if exp.Terminal != nil && v.Terminal != *exp.Terminal {
		errs = append(errs, fmt.Errorf("expected terminal %t, got %t", *exp.Terminal, v.Terminal))
	}
	if exp.Workflow != nil && v.Workflow != *exp.Workflow {
		errs = append(errs, fmt.Errorf("expected workflow %s, got %s", *exp.Workflow, v.Workflow))
	}
	if exp.Narrator != nil && !strings.EqualFold(v.Narrator, *exp.Narrator) {
		errs = append(errs, fmt.Errorf("expected narrator %s, got %s", *exp.Narrator, v.Narrator))
	}

	errs = append(errs, containsAll("title", v.Title, exp.TitleContains)...)
	errs = append(errs, containsAll("text", v.Text, exp.TextContains)...)
	errs = append(errs, containsAll("error", v.Error, exp.ErrorContains)...)

	lowerText := strings.ToLower(v.Text)
	for _, unexpected := range exp.TextNotContains {
		if strings.Contains(lowerText, strings.ToLower(unexpected)) {
			errs = append(errs, fmt.Errorf("expected text to NOT contain '%s', but it did", unexpected))
		}
	}
	if exp.TextRegex != "" {
		matched, err := regexp.MatchString(exp.TextRegex, v.Text)
		switch {
		case err != nil:
			errs = append(errs, fmt.Errorf("invalid regex pattern: %w", err))
		case !matched:
			errs = append(errs, fmt.Errorf("text didn't match regex pattern: %s", exp.TextRegex))
		}
	}
	if exp.NoError && v.Error != "" {
		errs = append(errs, fmt.Errorf("expected no error, got %q", v.Error))
	}
	if exp.MinLength != nil && len(v.Text) < *exp.MinLength {
		errs = append(errs, fmt.Errorf("expected text length >= %d, got %d", *exp.MinLength, len(v.Text)))
	}
	return errors.Join(errs...)
}

func containsAll(field, got string, want []string) []error {
	var errs []error
	lower := strings.ToLower(got)
	for _, w := range want {
		if !strings.Contains(lower, strings.ToLower(w)) {
			errs = append(errs, fmt.Errorf("expected %s to contain '%s', got %q", field, w, got))
		}
	}
	return errs
}
