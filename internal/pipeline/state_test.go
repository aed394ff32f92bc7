package pipeline

import (
	"testing"

	"github.com/ragcat-dev/ragcat/internal/document"
)

func TestStage_String(t *testing.T) {
	t.Parallel()
	tests := []struct {
		stage Stage
		want  string
	}{
		{Retrieve, "RETRIEVE"},
		{GradeDocs, "GRADE_DOCS"},
		{Rewrite, "REWRITE"},
		{Generate, "GENERATE"},
		{GradeAnswer, "GRADE_ANSWER"},
		{Done, "DONE"},
		{GiveUp, "GIVE_UP"},
		{Stage(99), "UNKNOWN"},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.want, func(t *testing.T) {
			t.Parallel()
			if got := tc.stage.String(); got != tc.want {
				t.Errorf("Stage(%d).String() = %q, want %q", tc.stage, got, tc.want)
			}
		})
	}
}

func TestDedupeByKey(t *testing.T) {
	t.Parallel()
	docs := []document.Document{
		document.New("first", map[string]any{"source": "logs", "id": "1"}),
		document.New("duplicate of first", map[string]any{"source": "logs", "id": "1"}),
		document.New("second", map[string]any{"source": "logs", "id": "2"}),
		document.New("docstore record", map[string]any{"source": "docstore", "id": "1"}),
	}
	out := dedupeByKey(docs)
	if len(out) != 3 {
		t.Fatalf("dedupeByKey returned %d documents, want 3", len(out))
	}
	if out[0].Content != "first" {
		t.Errorf("dedupeByKey kept %q for the first occurrence, want the original", out[0].Content)
	}
	if out[1].Content != "second" || out[2].MetaString("source") != "docstore" {
		t.Error("dedupeByKey should preserve order of the remaining documents")
	}
}

func TestDedupeByKey_EmptyInput(t *testing.T) {
	t.Parallel()
	out := dedupeByKey(nil)
	if len(out) != 0 {
		t.Errorf("dedupeByKey(nil) = %v, want empty slice", out)
	}
}
