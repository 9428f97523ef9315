package openingshard

import "testing"

func TestShard_SameOpeningSameShard(t *testing.T) {
	s := New()
	a := s.Shard(0, "e4", 16)
	b := s.Shard(99, "e4", 16)
	if a != b {
		t.Errorf("same opening landed in shards %d and %d", a, b)
	}
}

func TestShard_InRange(t *testing.T) {
	s := New()
	for _, san := range []string{"e4", "d4", "Nf3", "c4", "g3", "b3"} {
		got := s.Shard(0, san, 8)
		if got < 0 || got >= 8 {
			t.Errorf("Shard(%q) = %d, out of range", san, got)
		}
	}
}

func TestShard_EmptyGame(t *testing.T) {
	s := New()
	if got := s.Shard(5, "", 8); got != 0 {
		t.Errorf("Shard of empty game = %d, want 0", got)
	}
}
