package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeLedger(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "ledger.csv")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write ledger: %v", err)
	}
	return path
}

func healthyLedger() string {
	var b strings.Builder
	b.WriteString("date,type,amount\n")
	for i := 1; i <= 10; i++ {
		fmt.Fprintf(&b, "2024-03-%02d,CREDIT,1000\n", i)
	}
	b.WriteString("2024-03-11,DEBIT,500\n2024-03-12,DEBIT,500\n")
	return b.String()
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Fatalf("expected short unchanged, got %q", got)
	}

	if got := truncate("longerstring", 6); got != "lon..." {
		t.Fatalf("expected lon..., got %q", got)
	}
}

func TestPrintJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := printJSON(&buf, struct {
		A int `json:"a"`
	}{A: 1}); err != nil {
		t.Fatalf("printJSON failed: %v", err)
	}

	expected := "{\n  \"a\": 1\n}\n"
	if buf.String() != expected {
		t.Fatalf("unexpected json output:\n%s", buf.String())
	}
}

func TestScoreCmdReport(t *testing.T) {
	out, err := execute(t, "score", "--file", writeLedger(t, healthyLedger()))
	if err != nil {
		t.Fatalf("command failed: %v", err)
	}

	for _, want := range []string{"Score", "800", "Low Risk", "Rs 3000"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected report to contain %q, got:\n%s", want, out)
		}
	}
}

func TestScoreCmdJSON(t *testing.T) {
	out, err := execute(t, "score", "--file", writeLedger(t, healthyLedger()), "--json", "--policy", "strict")
	if err != nil {
		t.Fatalf("command failed: %v", err)
	}

	var result struct {
		Score  int    `json:"score"`
		Risk   string `json:"risk"`
		Policy string `json:"policy"`
	}
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("expected json output, got %q: %v", out, err)
	}

	// 12 transactions do not meet the strict frequency minimum for Low.
	if result.Score != 800 || result.Policy != "strict" || result.Risk != "Moderate Risk" {
		t.Fatalf("unexpected strict result: %+v", result)
	}
}

func TestScoreCmdMissingColumn(t *testing.T) {
	_, err := execute(t, "score", "--file", writeLedger(t, "date,amount\n2024-03-01,100\n"))
	if err == nil || !strings.Contains(err.Error(), "type") {
		t.Fatalf("expected missing column error, got %v", err)
	}
}

func TestScoreCmdUnknownPolicy(t *testing.T) {
	_, err := execute(t, "score", "--file", writeLedger(t, healthyLedger()), "--policy", "lenient")
	if err == nil {
		t.Fatalf("expected error for unknown policy")
	}
}

func TestAssessCmdPostsCSV(t *testing.T) {
	var gotContentType, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"score":800,"risk":"Low Risk"}`))
	}))
	defer srv.Close()

	out, err := execute(t, "assess", "--file", writeLedger(t, healthyLedger()), "--url", srv.URL)
	if err != nil {
		t.Fatalf("command failed: %v", err)
	}

	if gotContentType != "text/csv" || gotPath != "/api/v1/assessments" {
		t.Fatalf("unexpected request: content-type=%s path=%s", gotContentType, gotPath)
	}
	if !strings.Contains(out, `"score": 800`) {
		t.Fatalf("expected pretty-printed response, got %q", out)
	}
}

func TestAssessCmdReportsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"invalid ledger"}`))
	}))
	defer srv.Close()

	_, err := execute(t, "assess", "--file", writeLedger(t, healthyLedger()), "--url", srv.URL)
	if err == nil || !strings.Contains(err.Error(), "400") {
		t.Fatalf("expected failure with status, got %v", err)
	}
}

func TestHealthCmd(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ready" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(`{"status":"ready"}`))
	}))
	defer srv.Close()

	out, err := execute(t, "health", "--url", srv.URL)
	if err != nil {
		t.Fatalf("command failed: %v", err)
	}
	if !strings.Contains(out, "PASSED") {
		t.Fatalf("expected success message, got %q", out)
	}
}
