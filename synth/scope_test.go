package synth

import "testing"

func TestScopePublishAndSnapshot(t *testing.T) {
	s := NewScope(4)
	s.Publish([]float32{1, 2, 3})
	got := s.Snapshot(make([]float32, 0, 8))
	if len(got) != 3 || got[0] != 1 || got[2] != 3 {
		t.Fatalf("snapshot=%v", got)
	}

	s.Publish([]float32{9, 8, 7, 6, 5, 4})
	got = s.Snapshot(got)
	if len(got) != 4 || got[3] != 6 {
		t.Fatalf("snapshot not truncated to capacity: %v", got)
	}
	if s.Blocks() != 2 || s.Len() != 4 || s.Cap() != 4 {
		t.Fatalf("blocks=%d len=%d cap=%d", s.Blocks(), s.Len(), s.Cap())
	}
}

func TestScopeEmpty(t *testing.T) {
	s := NewScope(0)
	s.Publish([]float32{1})
	if got := s.Snapshot(nil); len(got) != 0 {
		t.Fatalf("zero-capacity scope returned %v", got)
	}
}
