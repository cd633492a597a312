package chunking

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/yungbote/voicewatch-backend/internal/domain/knowledge"
)

// sentences builds n sentences of exactly 100 runes each, ending in a period.
func sentences(n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		b.WriteString(strings.Repeat("a", 99))
		b.WriteByte('.')
	}
	return b.String()
}

func TestChunkTextSentenceBoundaries(t *testing.T) {
	text := sentences(25)
	chunks, err := ChunkText(text, DefaultChunkSize, DefaultChunkOverlap)
	if err != nil {
		t.Fatalf("ChunkText: %v", err)
	}
	if len(chunks) != 3 {
		t.Fatalf("chunks: want=3 got=%d", len(chunks))
	}
	for i, c := range chunks[:2] {
		if !strings.HasSuffix(c, ".") {
			t.Fatalf("chunk %d should end at a period", i)
		}
		if utf8.RuneCountInString(c) > DefaultChunkSize {
			t.Fatalf("chunk %d exceeds size: %d", i, utf8.RuneCountInString(c))
		}
	}
	if got := strings.Join(chunks, ""); got != text {
		t.Fatalf("sentence cuts should not overlap or lose text")
	}
}

func TestChunkTextHardCutOverlaps(t *testing.T) {
	text := strings.Repeat("x", 2500)
	chunks, err := ChunkText(text, 1000, 200)
	if err != nil {
		t.Fatalf("ChunkText: %v", err)
	}
	wantLens := []int{1000, 1000, 900}
	if len(chunks) != len(wantLens) {
		t.Fatalf("chunks: want=%d got=%d", len(wantLens), len(chunks))
	}
	for i, want := range wantLens {
		if len(chunks[i]) != want {
			t.Fatalf("chunk %d length: want=%d got=%d", i, want, len(chunks[i]))
		}
	}
}

func TestChunkTextShortDocument(t *testing.T) {
	text := "  Refunds are processed within five business days.   "
	chunks, err := ChunkText(text, DefaultChunkSize, DefaultChunkOverlap)
	if err != nil {
		t.Fatalf("ChunkText: %v", err)
	}
	if len(chunks) != 1 || chunks[0] != strings.TrimSpace(text) {
		t.Fatalf("chunks: got=%q", chunks)
	}
}

func TestChunkTextEarlyBreakPointIgnored(t *testing.T) {
	// The only period sits at 10% of the window, so the cut is a hard one.
	text := strings.Repeat("b", 99) + "." + strings.Repeat("c", 1400)
	chunks, err := ChunkText(text, 1000, 200)
	if err != nil {
		t.Fatalf("ChunkText: %v", err)
	}
	if len(chunks[0]) != 1000 {
		t.Fatalf("first chunk should be a full window, got len=%d", len(chunks[0]))
	}
	if !strings.HasPrefix(text[800:], chunks[1]) {
		t.Fatalf("second chunk should start overlap runes before the cut")
	}
}

func TestChunkTextNewlineBreak(t *testing.T) {
	text := strings.Repeat("d", 700) + "\n" + strings.Repeat("e", 700)
	chunks, err := ChunkText(text, 1000, 200)
	if err != nil {
		t.Fatalf("ChunkText: %v", err)
	}
	if len(chunks) != 2 || chunks[0] != strings.Repeat("d", 700) || chunks[1] != strings.Repeat("e", 700) {
		t.Fatalf("newline cut: got lens=%d", len(chunks))
	}
}

func TestChunkTextDropsWhitespaceChunks(t *testing.T) {
	chunks, err := ChunkText("   \n\n\t  ", 4, 1)
	if err != nil {
		t.Fatalf("ChunkText: %v", err)
	}
	if len(chunks) != 0 {
		t.Fatalf("want no chunks, got=%q", chunks)
	}
	chunks, err = ChunkText("", 10, 2)
	if err != nil || len(chunks) != 0 {
		t.Fatalf("empty input: chunks=%q err=%v", chunks, err)
	}
}

func TestChunkTextRejectsInvalidOptions(t *testing.T) {
	cases := []struct {
		name          string
		size, overlap int
	}{
		{name: "overlap equals size", size: 100, overlap: 100},
		{name: "overlap exceeds size", size: 100, overlap: 150},
		{name: "zero size", size: 0, overlap: 0},
		{name: "negative overlap", size: 100, overlap: -1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ChunkText("some text. more text.", tc.size, tc.overlap)
			if !errors.Is(err, ErrInvalidOptions) {
				t.Fatalf("want ErrInvalidOptions, got=%v", err)
			}
		})
	}
}

func TestChunkTextMultibyteRunesStayIntact(t *testing.T) {
	text := strings.Repeat("é", 2300)
	chunks, err := ChunkText(text, 1000, 200)
	if err != nil {
		t.Fatalf("ChunkText: %v", err)
	}
	for i, c := range chunks {
		if !utf8.ValidString(c) {
			t.Fatalf("chunk %d is not valid utf-8", i)
		}
		if utf8.RuneCountInString(c) > 1000 {
			t.Fatalf("chunk %d exceeds 1000 runes", i)
		}
	}
}

func TestChunkTextCoversEveryToken(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 600; i++ {
		fmt.Fprintf(&b, "tok%04d ", i)
		if i%37 == 36 {
			b.WriteString(". ")
		}
	}
	text := b.String()
	chunks, err := ChunkText(text, 300, 60)
	if err != nil {
		t.Fatalf("ChunkText: %v", err)
	}
	for i := 0; i < 600; i++ {
		tok := fmt.Sprintf("tok%04d", i)
		found := false
		for _, c := range chunks {
			if strings.Contains(c, tok) {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("token %s lost", tok)
		}
	}
	for i, c := range chunks {
		if strings.TrimSpace(c) == "" {
			t.Fatalf("chunk %d is empty", i)
		}
	}
}

func TestProcessDocumentMetadata(t *testing.T) {
	page := 4
	doc := knowledge.Document{
		Content:    sentences(25),
		DocumentID: "guide_1",
		Source:     "refunds.pdf",
		Title:      "Refund Guide",
		PageNumber: &page,
	}
	chunks, err := ProcessDocument(doc, DefaultOptions())
	if err != nil {
		t.Fatalf("ProcessDocument: %v", err)
	}
	if len(chunks) != 3 {
		t.Fatalf("chunks: want=3 got=%d", len(chunks))
	}
	seen := map[string]bool{}
	for i, c := range chunks {
		m := c.Metadata
		if m.ChunkIndex != i || m.TotalChunks != 3 {
			t.Fatalf("chunk %d: index=%d total=%d", i, m.ChunkIndex, m.TotalChunks)
		}
		if m.DocumentID != "guide_1" || m.Source != "refunds.pdf" || m.Title != "Refund Guide" || m.PageNumber == nil || *m.PageNumber != 4 {
			t.Fatalf("chunk %d metadata: %+v", i, m)
		}
		if seen[c.ID] {
			t.Fatalf("duplicate id %s", c.ID)
		}
		seen[c.ID] = true
	}
}

func TestChunkIDIsDeterministic(t *testing.T) {
	if ChunkID("guide_1", 0) != ChunkID("guide_1", 0) {
		t.Fatalf("same input should give same id")
	}
	if ChunkID("guide_1", 0) == ChunkID("guide_1", 1) {
		t.Fatalf("different index should give different id")
	}
	if ChunkID("guide_1", 1) == ChunkID("guide_11", 0) {
		t.Fatalf("separator should prevent collisions")
	}
}

func TestProcessDocumentsPreservesOrder(t *testing.T) {
	docs := []knowledge.Document{
		{Content: "Short first document.", DocumentID: "a", Source: "a.txt"},
		{Content: strings.Repeat("z", 1500), DocumentID: "b", Source: "b.txt"},
	}
	chunks, err := ProcessDocuments(docs, DefaultOptions())
	if err != nil {
		t.Fatalf("ProcessDocuments: %v", err)
	}
	if len(chunks) != 3 {
		t.Fatalf("chunks: want=3 got=%d", len(chunks))
	}
	if chunks[0].Metadata.DocumentID != "a" || chunks[1].Metadata.DocumentID != "b" || chunks[2].Metadata.ChunkIndex != 1 {
		t.Fatalf("order: %+v", chunks)
	}
	if chunks[1].Metadata.TotalChunks != 2 {
		t.Fatalf("doc b total chunks: want=2 got=%d", chunks[1].Metadata.TotalChunks)
	}
}

func TestProcessDocumentsPropagatesOptionErrors(t *testing.T) {
	_, err := ProcessDocuments([]knowledge.Document{{Content: "x", DocumentID: "a", Source: "s"}}, Options{ChunkSize: 10, ChunkOverlap: 10})
	if !errors.Is(err, ErrInvalidOptions) {
		t.Fatalf("want ErrInvalidOptions, got=%v", err)
	}
}
