//go:build integration

package integration

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/jwebster45206/plaidlibs/integration/runner"
)

var caseFlag = flag.String("case", "", "Name of test case to run (from integration/cases/)")
var errFlag = flag.String("err", "continue", "Error handling mode: 'continue' (run all steps) or 'exit' (stop on first failure)")
var runsFlag = flag.Int("runs", 1, "Number of times to run each test suite (useful for testing non-deterministic behavior)")
var workflowFlag = flag.String("workflow", "", "Override the starting workflow for all test cases")

func TestMain(m *testing.M) {
	fmt.Printf("Running PlaidLibs Integration Tests\n")
	fmt.Printf("   API Base URL: %s\n", apiBaseURL())
	os.Exit(m.Run())
}

func apiBaseURL() string {
	if u := os.Getenv("API_BASE_URL"); u != "" {
		return u
	}
	return "http://localhost:8080"
}

func newRunner(mode runner.ErrorHandlingMode) *runner.Runner {
	r := runner.NewRunner(apiBaseURL())
	r.Timeout = time.Duration(getIntEnv("TEST_TIMEOUT_SECONDS", 120)) * time.Second
	r.ErrorHandlingMode = mode
	r.WorkflowOverride = *workflowFlag
	r.Logger = func(format string, args ...any) {
		fmt.Printf(format+"\n", args...)
	}
	return r
}

func TestIntegrationSuites(t *testing.T) {
	files, err := filepath.Glob(filepath.Join("cases", "*.yaml"))
	if err != nil {
		t.Fatalf("Failed to discover test files: %v", err)
	}
	var jobs []runner.TestJob
	for _, file := range files {
		suite, err := runner.LoadTestSuite(file)
		if err != nil {
			t.Errorf("Failed to load test suite %s: %v", file, err)
			continue
		}
		// sequences only regroup other files
		if suite.IsSequence() {
			continue
		}
		jobs = append(jobs, runner.TestJob{Name: suite.Name, Suite: suite, CaseFile: file})
	}
	if len(jobs) == 0 {
		t.Fatal("No valid test suites loaded")
	}
	runJobs(t, newRunner(runner.ErrorHandlingContinue), jobs, 1)
}

// TestSingleSuite runs the suites named by -case, comma separated.
func TestSingleSuite(t *testing.T) {
	flag.Parse()
	if *caseFlag == "" {
		t.Skip("Skipping single suite test (use -case flag to run)")
	}
	if *errFlag != "exit" && *errFlag != "continue" {
		t.Fatalf("Invalid -err flag value: %s (must be 'exit' or 'continue')", *errFlag)
	}
	if *runsFlag < 1 {
		t.Fatalf("Number of runs must be >= 1, got: %d", *runsFlag)
	}

	var jobs []runner.TestJob
	for name := range strings.SplitSeq(*caseFlag, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if !strings.HasSuffix(name, ".yaml") {
			name += ".yaml"
		}
		expanded, err := runner.LoadTestSuiteWithExpansion(filepath.Join("cases", name), "cases")
		if err != nil {
			t.Fatalf("Failed to load test suite %s: %v", name, err)
		}
		jobs = append(jobs, expanded...)
	}
	runJobs(t, newRunner(runner.ErrorHandlingMode(*errFlag)), jobs, *runsFlag)
}

func runJobs(t *testing.T, r *runner.Runner, jobs []runner.TestJob, runs int) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Minute)
	defer cancel()

	var failed []string
	passed := 0
	for run := 1; run <= runs; run++ {
		for i, job := range jobs {
			t.Logf("[run %d, %d/%d] Starting test suite: %s (%d steps)", run, i+1, len(jobs), job.Name, len(job.Suite.Steps))
			result, err := r.RunSuite(ctx, job.Suite)
			t.Logf("Session ID: %s", result.Session)
			if err != nil {
				failed = append(failed, fmt.Sprintf("%s: %v", job.Name, err))
				t.Errorf("FAILED: Test suite '%s': %v", job.Name, err)
				continue
			}
			passed++
			for _, step := range result.Results {
				t.Logf("   ✓ %s (%v)", step.StepName, step.Duration)
			}
		}
	}

	t.Logf("Integration Test Summary: passed %d, failed %d", passed, len(failed))
	if len(failed) > 0 {
		for _, f := range failed {
			t.Logf("   - %s", f)
		}
		t.Fatalf("Integration tests failed")
	}
}

func getIntEnv(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
