package network

import "testing"

func TestTrace_LeafReturnsItself(t *testing.T) {
	net := quickNet([3]int64{1, 10, 20}, [3]int64{2, 20, 30})
	up, err := net.Trace(1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(up) != 1 || !hasID(up, 1) {
		t.Errorf("upstream of headwater reach = %v, want {1}", SortedIDs(up))
	}
}

func TestTrace_ChainScenario(t *testing.T) {
	// 1: 10->20, 2: 20->30, 3: 25->30
	net := quickNet(
		[3]int64{1, 10, 20},
		[3]int64{2, 20, 30},
		[3]int64{3, 25, 30},
	)

	up2, err := net.Trace(2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(up2) != 2 || !hasID(up2, 1) || !hasID(up2, 2) {
		t.Errorf("upstream of reach 2 = %v, want {1, 2}", SortedIDs(up2))
	}

	up3, err := net.Trace(3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(up3) != 1 || !hasID(up3, 3) {
		t.Errorf("upstream of reach 3 = %v, want {3}", SortedIDs(up3))
	}
}

func TestTrace_OverrideDisconnects(t *testing.T) {
	net := quickNet(
		[3]int64{1, 10, 20},
		[3]int64{2, 20, 30},
		[3]int64{3, 25, 30},
	)
	fixed, _, err := net.Apply([]Override{
		{ReachID: 1, Field: FieldToNode, NewNode: 30},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	up2, err := fixed.Trace(2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(up2) != 1 || !hasID(up2, 2) {
		t.Errorf("after override, upstream of reach 2 = %v, want {2}", SortedIDs(up2))
	}
}

func TestTrace_ConfluenceIncludesBothBranches(t *testing.T) {
	// reaches 1 and 2 both end at node 30; reach 3 flows 30->40; reach 4 below it
	net := quickNet(
		[3]int64{1, 10, 30},
		[3]int64{2, 20, 30},
		[3]int64{3, 30, 40},
		[3]int64{4, 40, 50},
	)
	up, err := net.Trace(4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []int64{1, 2, 3, 4} {
		if !hasID(up, want) {
			t.Errorf("upstream of reach 4 missing %d: %v", want, SortedIDs(up))
		}
	}
}

func TestTrace_MonotonicContainment(t *testing.T) {
	// chain 1 -> 2 -> 3 -> 4 with a side branch 5 into node 30
	net := quickNet(
		[3]int64{1, 10, 20},
		[3]int64{2, 20, 30},
		[3]int64{5, 25, 30},
		[3]int64{3, 30, 40},
		[3]int64{4, 40, 50},
	)
	down, err := net.Trace(4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// tracing from any reach already in the set yields a subset
	for id := range down {
		sub, err := net.Trace(id)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for upID := range sub {
			if !hasID(down, upID) {
				t.Errorf("trace(%d) contains %d which trace(4) lacks", id, upID)
			}
		}
	}
}

func TestTrace_SelfLoopTerminates(t *testing.T) {
	net := quickNet([3]int64{1, 7, 7})
	up, err := net.Trace(1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(up) != 1 || !hasID(up, 1) {
		t.Errorf("self-loop trace = %v, want {1}", SortedIDs(up))
	}
}

func TestTrace_CycleTerminates(t *testing.T) {
	// 1: 10->20, 2: 20->10 form a cycle; 3 hangs below node 20
	net := quickNet(
		[3]int64{1, 10, 20},
		[3]int64{2, 20, 10},
		[3]int64{3, 20, 30},
	)
	up, err := net.Trace(3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []int64{1, 2, 3} {
		if !hasID(up, want) {
			t.Errorf("cycle trace missing %d: %v", want, SortedIDs(up))
		}
	}
	if len(up) != 3 {
		t.Errorf("cycle trace = %v, want exactly {1, 2, 3}", SortedIDs(up))
	}
}

func TestTraceAll_GroupsByStart(t *testing.T) {
	net := quickNet(
		[3]int64{1, 10, 20},
		[3]int64{2, 20, 30},
		[3]int64{3, 25, 30},
	)
	sets, err := net.TraceAll([]int64{2, 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sets) != 2 {
		t.Fatalf("expected 2 sets, got %d", len(sets))
	}
	if len(sets[2]) != 2 {
		t.Errorf("set for reach 2 = %v, want 2 reaches", SortedIDs(sets[2]))
	}
	if len(sets[3]) != 1 {
		t.Errorf("set for reach 3 = %v, want 1 reach", SortedIDs(sets[3]))
	}
}
