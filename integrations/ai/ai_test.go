package ai

import (
	"context"
	"testing"
)

func TestParseActionItemsStripsBullets(t *testing.T) {
	raw := "- Follow up with the sponsor\n* Publish the show notes\n\n  Book next guest  \n"

	items := parseActionItems(raw)

	want := []string{"Follow up with the sponsor", "Publish the show notes", "Book next guest"}
	if len(items) != len(want) {
		t.Fatalf("parseActionItems() returned %d items, want %d: %v", len(items), len(want), items)
	}
	for i := range want {
		if items[i] != want[i] {
			t.Errorf("item %d = %q, want %q", i, items[i], want[i])
		}
	}
}

func TestParseActionItemsEmptyInput(t *testing.T) {
	if items := parseActionItems("  \n\n  "); len(items) != 0 {
		t.Errorf("expected no items, got %v", items)
	}
}

func TestSplitPostsOnDelimiter(t *testing.T) {
	raw := "First post about the episode.\n---\nSecond take, different angle.\n---\nThird one."

	posts := splitPosts(raw, 3)

	if len(posts) != 3 {
		t.Fatalf("splitPosts() returned %d posts, want 3: %v", len(posts), posts)
	}
	if posts[0] != "First post about the episode." {
		t.Errorf("first post = %q", posts[0])
	}
	if posts[2] != "Third one." {
		t.Errorf("third post = %q", posts[2])
	}
}

func TestSplitPostsCapsAtRequestedCount(t *testing.T) {
	raw := "one\n---\ntwo\n---\nthree\n---\nfour"

	posts := splitPosts(raw, 2)

	if len(posts) != 2 {
		t.Errorf("splitPosts() returned %d posts, want 2", len(posts))
	}
}

func TestMaxPostLengthPerPlatform(t *testing.T) {
	if got := MaxPostLength("threads"); got != 500 {
		t.Errorf("MaxPostLength(threads) = %d, want 500", got)
	}
	if got := MaxPostLength("Threads"); got != 500 {
		t.Errorf("MaxPostLength(Threads) = %d, want 500", got)
	}
	if got := MaxPostLength("linkedin"); got != 3000 {
		t.Errorf("MaxPostLength(linkedin) = %d, want 3000", got)
	}
}

func TestOpenAIProviderRequiresKey(t *testing.T) {
	p := NewOpenAIProvider("", "", "")

	if _, err := p.Summarize(context.Background(), "text"); err != ErrNotConfigured {
		t.Errorf("Summarize() without key error = %v, want ErrNotConfigured", err)
	}
	if err := p.Ping(context.Background()); err != ErrNotConfigured {
		t.Errorf("Ping() without key error = %v, want ErrNotConfigured", err)
	}
}
