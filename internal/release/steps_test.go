package release

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestRun_AllSucceed(t *testing.T) {
	var order []string
	steps := []Step{
		{Name: "first", Run: func() error { order = append(order, "first"); return nil }},
		{Name: "second", Run: func() error { order = append(order, "second"); return nil }},
		{Name: "third", Run: func() error { order = append(order, "third"); return nil }},
	}

	var log bytes.Buffer
	if err := Run(steps, &log); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Join(order, ",") != "first,second,third" {
		t.Errorf("execution order = %v", order)
	}
	for _, name := range []string{"first", "second", "third"} {
		if !strings.Contains(log.String(), "[pypub] "+name) {
			t.Errorf("log missing step %q:\n%s", name, log.String())
		}
	}
}

func TestRun_StopsAtFirstFailure(t *testing.T) {
	boom := errors.New("boom")
	var ran []string
	steps := []Step{
		{Name: "build", Run: func() error { ran = append(ran, "build"); return nil }},
		{Name: "upload", Run: func() error { ran = append(ran, "upload"); return boom }},
		{Name: "receipt", Run: func() error { ran = append(ran, "receipt"); return nil }},
	}

	err := Run(steps, &bytes.Buffer{})
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped step error, got %v", err)
	}
	if !strings.Contains(err.Error(), "upload") {
		t.Errorf("error should name the failing step: %v", err)
	}
	if strings.Join(ran, ",") != "build,upload" {
		t.Errorf("steps run = %v, later steps must not run after a failure", ran)
	}
}

func TestRun_NoSteps(t *testing.T) {
	if err := Run(nil, &bytes.Buffer{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
