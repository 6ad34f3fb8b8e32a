package prefs

import (
	"reflect"
	"testing"
	"time"

	"github.com/widdle/reader"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(":memory:", Options{BusyTimeout: time.Second})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})

	return store
}

func TestPrefsRoundTrip(t *testing.T) {
	store := newTestStore(t)

	if err := store.Set("theme", []byte("honey")); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	value, err := store.Get("theme")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(value) != "honey" {
		t.Errorf("value: got %q; want %q", value, "honey")
	}

	// Overwrite wins.
	if err := store.Set("theme", []byte("forest")); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	value, err = store.Get("theme")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(value) != "forest" {
		t.Errorf("value after overwrite: got %q; want %q", value, "forest")
	}

	if err := store.Delete("theme"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	value, err = store.Get("theme")
	if err != nil {
		t.Fatalf("Get() after delete error = %v", err)
	}
	if value != nil {
		t.Errorf("expected nil value after delete, got %q", value)
	}
}

func TestMissingKeyIsNotAnError(t *testing.T) {
	store := newTestStore(t)

	value, err := store.Get("never_written")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if value != nil {
		t.Errorf("expected nil for missing key, got %q", value)
	}

	if err := store.Delete("never_written"); err != nil {
		t.Errorf("Delete() of missing key error = %v", err)
	}
}

func TestMailbox(t *testing.T) {
	store := newTestStore(t)
	mailbox := NewMailbox(store)

	t.Run("empty mailbox", func(t *testing.T) {
		cmd, err := mailbox.TakeCommand()
		if err != nil {
			t.Fatalf("TakeCommand() error = %v", err)
		}
		if cmd != nil {
			t.Errorf("expected no pending command, got %+v", cmd)
		}
	})

	t.Run("round trip", func(t *testing.T) {
		posted := reader.SeekTo(123456)
		if err := mailbox.PostCommand(posted); err != nil {
			t.Fatalf("PostCommand() error = %v", err)
		}

		cmd, err := mailbox.TakeCommand()
		if err != nil {
			t.Fatalf("TakeCommand() error = %v", err)
		}
		if cmd == nil {
			t.Fatal("expected a pending command")
		}
		if cmd.Action != posted.Action {
			t.Errorf("action: got %q; want %q", cmd.Action, posted.Action)
		}
		if !reflect.DeepEqual(cmd.Params, posted.Params) {
			t.Errorf("params: got %v; want %v", cmd.Params, posted.Params)
		}

		// Consumed at most once.
		cmd, err = mailbox.TakeCommand()
		if err != nil {
			t.Fatalf("second TakeCommand() error = %v", err)
		}
		if cmd != nil {
			t.Errorf("expected empty mailbox after take, got %+v", cmd)
		}
	})

	t.Run("last write wins", func(t *testing.T) {
		if err := mailbox.PostCommand(reader.NewCommand(reader.ActionPlay)); err != nil {
			t.Fatal(err)
		}
		if err := mailbox.PostCommand(reader.NewCommand(reader.ActionPause)); err != nil {
			t.Fatal(err)
		}

		cmd, err := mailbox.Peek()
		if err != nil {
			t.Fatalf("Peek() error = %v", err)
		}
		if cmd == nil || cmd.Action != reader.ActionPause {
			t.Errorf("expected pause to win, got %+v", cmd)
		}

		// Peek does not consume.
		cmd, err = mailbox.TakeCommand()
		if err != nil || cmd == nil {
			t.Fatalf("TakeCommand() after Peek: cmd=%v err=%v", cmd, err)
		}
	})
}

func TestBooks(t *testing.T) {
	store := newTestStore(t)

	books := []Audiobook{
		{
			ID:             "book-1",
			Title:          "The Wind in the Willows",
			Author:         "Kenneth Grahame",
			Folder:         "/audiobooks/willows",
			DurationMillis: 21600000,
			Speed:          1.0,
		},
		{
			ID:     "book-2",
			Title:  "Winnie-the-Pooh",
			Folder: "/audiobooks/pooh",
			Speed:  1.25,
		},
	}

	if err := store.SaveBooks(books); err != nil {
		t.Fatalf("SaveBooks() error = %v", err)
	}

	got, err := store.Books()
	if err != nil {
		t.Fatalf("Books() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("book count: got %d; want 2", len(got))
	}
	if got[0].Title != "The Wind in the Willows" {
		t.Errorf("order: got %q first", got[0].Title)
	}

	t.Run("position update", func(t *testing.T) {
		if err := store.SavePosition("book-1", 90000, 1.5); err != nil {
			t.Fatalf("SavePosition() error = %v", err)
		}

		book, err := store.Book("book-1")
		if err != nil {
			t.Fatalf("Book() error = %v", err)
		}
		if book.PositionMillis != 90000 || book.Speed != 1.5 {
			t.Errorf("position/speed: got %d/%v; want 90000/1.5", book.PositionMillis, book.Speed)
		}
	})

	t.Run("missing book", func(t *testing.T) {
		book, err := store.Book("nope")
		if err != nil {
			t.Fatalf("Book() error = %v", err)
		}
		if book != nil {
			t.Errorf("expected nil for missing book, got %+v", book)
		}
	})

	t.Run("upsert", func(t *testing.T) {
		books[1].Title = "Winnie-the-Pooh (Unabridged)"
		if err := store.SaveBooks(books[1:]); err != nil {
			t.Fatalf("SaveBooks() error = %v", err)
		}

		book, err := store.Book("book-2")
		if err != nil {
			t.Fatal(err)
		}
		if book.Title != "Winnie-the-Pooh (Unabridged)" {
			t.Errorf("title after upsert: got %q", book.Title)
		}
	})

	t.Run("delete", func(t *testing.T) {
		if err := store.DeleteBook("book-2"); err != nil {
			t.Fatalf("DeleteBook() error = %v", err)
		}

		got, err := store.Books()
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 1 {
			t.Errorf("book count after delete: got %d; want 1", len(got))
		}
	})
}

func TestTags(t *testing.T) {
	store := newTestStore(t)

	if err := store.SaveBooks([]Audiobook{
		{ID: "book-1", Title: "A", Folder: "/a", Speed: 1},
		{ID: "book-2", Title: "B", Folder: "/b", Speed: 1},
	}); err != nil {
		t.Fatal(err)
	}

	if err := store.TagBook("book-1", "bedtime"); err != nil {
		t.Fatalf("TagBook() error = %v", err)
	}
	if err := store.TagBook("book-1", "classics"); err != nil {
		t.Fatal(err)
	}
	if err := store.TagBook("book-2", "bedtime"); err != nil {
		t.Fatal(err)
	}
	// Tagging twice is a no-op.
	if err := store.TagBook("book-1", "bedtime"); err != nil {
		t.Fatal(err)
	}

	tags, err := store.BookTags("book-1")
	if err != nil {
		t.Fatalf("BookTags() error = %v", err)
	}
	if !reflect.DeepEqual(tags, []string{"bedtime", "classics"}) {
		t.Errorf("tags: got %v", tags)
	}

	books, err := store.BooksWithTag("bedtime")
	if err != nil {
		t.Fatalf("BooksWithTag() error = %v", err)
	}
	if len(books) != 2 {
		t.Errorf("tagged books: got %d; want 2", len(books))
	}

	if err := store.UntagBook("book-1", "bedtime"); err != nil {
		t.Fatalf("UntagBook() error = %v", err)
	}
	tags, err = store.BookTags("book-1")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(tags, []string{"classics"}) {
		t.Errorf("tags after untag: got %v", tags)
	}

	// Deleting a book cascades its tag links.
	if err := store.DeleteBook("book-2"); err != nil {
		t.Fatal(err)
	}
	books, err = store.BooksWithTag("bedtime")
	if err != nil {
		t.Fatal(err)
	}
	if len(books) != 0 {
		t.Errorf("tagged books after delete: got %d; want 0", len(books))
	}
}
