package roundrobin

import "testing"

func TestShard_Cycles(t *testing.T) {
	s := New()
	for i := 0; i < 12; i++ {
		if got := s.Shard(i, "e4", 4); got != i%4 {
			t.Errorf("Shard(%d) = %d, want %d", i, got, i%4)
		}
	}
}
