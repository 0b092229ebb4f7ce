package dcache

import (
	"os"
	"path/filepath"
	"testing"

	"sysvabi/internal/report"
)

func TestPutGet(t *testing.T) {
	c, err := Open(t.TempDir(), "sysvabi")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	key := Key([]byte("struct s { int x; };"), nil, nil, "test")
	want := &report.Report{
		Header:  "s.h",
		Records: []report.Record{{Name: "struct s", Class: report.Class{Type: "struct { int }", Size: 4, Align: 4, Low: "INTEGER", High: "NO_CLASS", Canonical: "i32"}}},
	}

	if _, ok, err := c.Get(key, "test"); ok || err != nil {
		t.Fatalf("empty cache: ok=%v err=%v", ok, err)
	}
	if err := c.Put(key, "test", want); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, ok, err := c.Get(key, "test")
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if got.Header != want.Header || got.Records[0].Canonical != "i32" {
		t.Fatalf("unexpected payload %+v", got)
	}

	if _, ok, _ := c.Get(key, "other-version"); ok {
		t.Fatalf("entry from another tool version must miss")
	}

	tmps, _ := filepath.Glob(filepath.Join(c.Dir(), "reports", "*", "tmp-*"))
	if len(tmps) != 0 {
		t.Fatalf("temp files left behind: %v", tmps)
	}

	if err := c.DropAll(); err != nil {
		t.Fatalf("DropAll: %v", err)
	}
	if _, ok, _ := c.Get(key, "test"); ok {
		t.Fatalf("entry survived DropAll")
	}
}

func TestKeyCoversOptions(t *testing.T) {
	header := []byte("int f(void);")
	base := Key(header, []string{"inc"}, map[string]string{"A": "1"}, "v1")
	variants := []Digest{
		Key([]byte("int g(void);"), []string{"inc"}, map[string]string{"A": "1"}, "v1"),
		Key(header, []string{"other"}, map[string]string{"A": "1"}, "v1"),
		Key(header, []string{"inc"}, map[string]string{"A": "2"}, "v1"),
		Key(header, []string{"inc"}, map[string]string{"A": "1"}, "v2"),
	}
	for i, v := range variants {
		if v == base {
			t.Fatalf("variant %d has the same key", i)
		}
	}
	same := Key(header, []string{"inc"}, map[string]string{"A": "1"}, "v1")
	if same != base {
		t.Fatalf("key is not deterministic")
	}
}

func TestCorruptEntryIsAnError(t *testing.T) {
	c, err := Open(t.TempDir(), "sysvabi")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	key := Key([]byte("x"), nil, nil, "test")
	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(p, []byte{0xc1}, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, _, err := c.Get(key, "test"); err == nil {
		t.Fatalf("expected decode error")
	}
}
