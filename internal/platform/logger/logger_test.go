package logger

import (
	"strings"
	"testing"
)

func TestRedactorHidesSecrets(t *testing.T) {
	r := redactor{enabled: true}
	cases := map[string]interface{}{
		"api_key":        "abc",
		"qdrant_api_key": "abc",
		"authorization":  "Bearer xyz",
		"refresh_token":  "t",
	}
	for key, val := range cases {
		if got := r.value(key, val); got != "[REDACTED]" {
			t.Fatalf("%s: want=[REDACTED] got=%v", key, got)
		}
	}
}

func TestRedactorHashesCallerIdentifiers(t *testing.T) {
	r := redactor{enabled: true, salt: "pepper"}
	got, ok := r.value("caller_phone", "+15551234567").(string)
	if !ok {
		t.Fatalf("expected string")
	}
	if !strings.HasPrefix(got, "hash:") || len(got) != len("hash:")+12 {
		t.Fatalf("unexpected hash: %q", got)
	}
	if again := r.value("caller_phone", "+15551234567"); again != got {
		t.Fatalf("hash not stable: %v vs %v", again, got)
	}
	if unsalted := (redactor{enabled: true}).value("caller_phone", "+15551234567"); unsalted == got {
		t.Fatalf("salt should change the hash")
	}
}

func TestRedactorLeavesPlainFieldsAndTruncates(t *testing.T) {
	r := redactor{enabled: true}
	if got := r.value("document_id", "guide_1"); got != "guide_1" {
		t.Fatalf("want=guide_1 got=%v", got)
	}
	if got := r.value("header", "Bearer abc.def"); got != "[REDACTED]" {
		t.Fatalf("bearer value not redacted: %v", got)
	}
	long := strings.Repeat("x", maxLoggedValueLen+10)
	got, _ := r.value("transcript", long).(string)
	if !strings.HasSuffix(got, "...(truncated)") || len(got) != maxLoggedValueLen+len("...(truncated)") {
		t.Fatalf("long value not truncated: len=%d", len(got))
	}
}

func TestApplyKeepsDanglingKey(t *testing.T) {
	out := redactor{enabled: true}.apply([]interface{}{"password", "p", "orphan"})
	if len(out) != 3 || out[1] != "[REDACTED]" || out[2] != "orphan" {
		t.Fatalf("apply: got=%v", out)
	}
}

func TestNewTestModeIsNop(t *testing.T) {
	log, err := New("test")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	log.Info("discarded", "k", "v")
	log.With("service", "x").Warn("discarded")
}
