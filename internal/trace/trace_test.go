package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	for _, name := range []string{"off", "error", "phase", "detail", "debug"} {
		l, err := ParseLevel(strings.ToUpper(name))
		if err != nil {
			t.Fatalf("ParseLevel(%q): %v", name, err)
		}
		if l.String() != name {
			t.Fatalf("ParseLevel(%q) = %v", name, l)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestShouldEmit(t *testing.T) {
	cases := []struct {
		level Level
		scope Scope
		want  bool
	}{
		{LevelOff, ScopeDriver, false},
		{LevelPhase, ScopeDriver, true},
		{LevelPhase, ScopeFile, false},
		{LevelError, ScopeFile, true},
		{LevelDetail, ScopeFile, true},
		{LevelDetail, ScopePass, false},
		{LevelDebug, ScopePass, true},
	}
	for _, tc := range cases {
		if got := tc.level.ShouldEmit(tc.scope); got != tc.want {
			t.Errorf("%v.ShouldEmit(%v) = %v, want %v", tc.level, tc.scope, got, tc.want)
		}
	}
}

func TestSpanNesting(t *testing.T) {
	ring := NewRingTracer(8, LevelDebug)
	parent := Begin(ring, ScopeDriver, "run", 0)
	child := Begin(ring, ScopeFile, "file:a.json", parent.ID())
	child.WithExtra("bytes", "12").End("")
	Point(ring, ScopePass, "cache-miss", "a.json", child.ID())
	parent.End("done")

	events := ring.Snapshot()
	if len(events) != 5 {
		t.Fatalf("expected 5 events, got %d", len(events))
	}
	if events[1].ParentID != parent.ID() {
		t.Fatalf("child parent = %d, want %d", events[1].ParentID, parent.ID())
	}
	if events[2].Extra["bytes"] != "12" {
		t.Fatalf("extra lost: %+v", events[2].Extra)
	}
	if events[3].Kind != KindPoint || events[4].Detail != "done" {
		t.Fatalf("unexpected tail %+v %+v", events[3], events[4])
	}
	for i := 1; i < len(events); i++ {
		if events[i].Seq <= events[i-1].Seq {
			t.Fatalf("sequence not increasing at %d", i)
		}
	}
}

func TestUnrecordedSpanPassesParentThrough(t *testing.T) {
	ring := NewRingTracer(8, LevelPhase)
	span := Begin(ring, ScopePass, "print", 42)
	if span.ID() != 0 {
		t.Fatalf("filtered span got id %d", span.ID())
	}
	if sc := span.Context(); sc.SpanID != 42 {
		t.Fatalf("context span = %d, want the parent", sc.SpanID)
	}
	span.End("")
	if n := len(ring.Snapshot()); n != 0 {
		t.Fatalf("filtered span emitted %d events", n)
	}
}

func TestRingWrapsAround(t *testing.T) {
	ring := NewRingTracer(3, LevelDebug)
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		Point(ring, ScopeDriver, name, "", 0)
	}
	var names []string
	for _, ev := range ring.Snapshot() {
		names = append(names, ev.Name)
	}
	if got := strings.Join(names, ","); got != "c,d,e" {
		t.Fatalf("snapshot = %s", got)
	}

	var buf bytes.Buffer
	if err := ring.Dump(&buf, FormatText); err != nil {
		t.Fatalf("Dump: %v", err)
	}
	if ring.Dropped() != 2 {
		t.Fatalf("Dropped = %d, want 2", ring.Dropped())
	}
	if !strings.HasPrefix(buf.String(), "# 2 earlier trace events dropped\n") {
		t.Fatalf("dump should start with the dropped note:\n%s", buf.String())
	}
	if strings.Count(buf.String(), "\n") != 4 || !strings.Contains(buf.String(), "• e") {
		t.Fatalf("unexpected dump:\n%s", buf.String())
	}
}

func TestRingBelowCapacity(t *testing.T) {
	ring := NewRingTracer(0, LevelDebug)
	Point(ring, ScopeDriver, "only", "", 0)
	if got := ring.Snapshot(); len(got) != 1 || got[0].Name != "only" {
		t.Fatalf("snapshot = %+v", got)
	}
	if ring.Dropped() != 0 {
		t.Fatalf("Dropped = %d, want 0", ring.Dropped())
	}
	var buf bytes.Buffer
	if err := ring.Dump(&buf, FormatText); err != nil {
		t.Fatalf("Dump: %v", err)
	}
	if strings.HasPrefix(buf.String(), "#") {
		t.Fatalf("no note expected without drops:\n%s", buf.String())
	}
}

func TestStreamFormats(t *testing.T) {
	var ndjson bytes.Buffer
	stream := NewStreamTracer(&ndjson, LevelDebug, FormatNDJSON)
	Begin(stream, ScopeDriver, "run", 0).End("")
	lines := strings.Split(strings.TrimSpace(ndjson.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 ndjson lines, got %d", len(lines))
	}
	var first map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("ndjson line: %v", err)
	}
	if first["kind"] != "begin" || first["name"] != "run" {
		t.Fatalf("unexpected event %v", first)
	}

	var chrome bytes.Buffer
	stream = NewStreamTracer(&chrome, LevelDebug, FormatChrome)
	Begin(stream, ScopeDriver, "run", 0).End("failed")
	if err := stream.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	var doc struct {
		TraceEvents []map[string]any `json:"traceEvents"`
	}
	if err := json.Unmarshal(chrome.Bytes(), &doc); err != nil {
		t.Fatalf("chrome output is not JSON: %v\n%s", err, chrome.String())
	}
	if len(doc.TraceEvents) != 2 || doc.TraceEvents[1]["ph"] != "E" {
		t.Fatalf("unexpected chrome events %v", doc.TraceEvents)
	}
}

func TestNewModes(t *testing.T) {
	tr, err := New(Config{Level: LevelOff})
	if err != nil || tr != Nop {
		t.Fatalf("off level: %v, %v", tr, err)
	}

	tr, err = New(Config{Level: LevelError, Mode: ModeRing})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, ok := RingOf(tr); !ok {
		t.Fatal("ring mode must expose its ring")
	}

	var buf bytes.Buffer
	tr, err = New(Config{Level: LevelDebug, Mode: ModeBoth, Output: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ring, ok := RingOf(tr)
	if !ok {
		t.Fatal("both mode must expose its ring")
	}
	Point(tr, ScopeDriver, "tick", "", 0)
	if len(ring.Snapshot()) != 1 || !strings.Contains(buf.String(), "tick") {
		t.Fatal("both mode must stream and keep events")
	}

	if _, err := New(Config{Level: LevelDebug, Mode: ModeStream, OutputPath: filepath.Join(t.TempDir(), "missing", "t.json")}); err == nil {
		t.Fatal("expected error for an unwritable output path")
	}
}

func TestResolveFormat(t *testing.T) {
	cases := map[string]Format{
		"":             FormatText,
		"-":            FormatText,
		"trace.ndjson": FormatNDJSON,
		"trace.json":   FormatChrome,
		"trace.log":    FormatText,
	}
	for path, want := range cases {
		if got := resolveFormat(FormatAuto, path); got != want {
			t.Errorf("resolveFormat(%q) = %v, want %v", path, got, want)
		}
	}
	if got := resolveFormat(FormatNDJSON, "trace.json"); got != FormatNDJSON {
		t.Fatalf("explicit format must win, got %v", got)
	}
}

func TestContext(t *testing.T) {
	if FromContext(context.Background()) != Nop {
		t.Fatal("missing tracer must fall back to Nop")
	}
	ring := NewRingTracer(4, LevelDebug)
	ctx := WithTracer(context.Background(), ring)
	if FromContext(ctx) != Tracer(ring) {
		t.Fatal("tracer lost")
	}
	ctx = WithSpanContext(ctx, SpanContext{SpanID: 7})
	if CurrentSpan(ctx).SpanID != 7 {
		t.Fatal("span context lost")
	}
}

func TestStartNestsUnderContextSpan(t *testing.T) {
	ring := NewRingTracer(8, LevelDebug)
	ctx := WithTracer(context.Background(), ring)

	ctx, run := Start(ctx, ScopeDriver, "run")
	fileCtx, file := Start(ctx, ScopeFile, "file:a.json")
	Mark(fileCtx, ScopeFile, "cache-hit", "abc")
	file.End("")
	run.End("")

	events := ring.Snapshot()
	if len(events) != 5 {
		t.Fatalf("expected 5 events, got %d", len(events))
	}
	if events[1].ParentID != run.ID() {
		t.Fatalf("file span parent = %d, want %d", events[1].ParentID, run.ID())
	}
	if events[2].Kind != KindPoint || events[2].ParentID != file.ID() {
		t.Fatalf("mark not under file span: %+v", events[2])
	}
	if CurrentSpan(ctx).SpanID != run.ID() {
		t.Fatal("returned context does not carry the new span")
	}
}
