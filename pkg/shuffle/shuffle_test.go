package shuffle

import "testing"

func TestShuffleIsPermutation(t *testing.T) {
	seed := sha256Seed("permutation")
	list := make([]int, 500)
	for i := range list {
		list[i] = i
	}
	out, err := Shuffle(seed, list)
	if err != nil {
		t.Fatalf("Shuffle: %v", err)
	}
	if len(out) != len(list) {
		t.Fatalf("output length = %d, want %d", len(out), len(list))
	}
	seen := make(map[int]bool, len(list))
	for _, v := range out {
		if seen[v] {
			t.Fatalf("value %d appears more than once in shuffled output", v)
		}
		seen[v] = true
	}
	for _, v := range list {
		if !seen[v] {
			t.Fatalf("value %d missing from shuffled output", v)
		}
	}
}

func TestShuffleIsDeterministic(t *testing.T) {
	seed := sha256Seed("determinism")
	list := make([]int, 200)
	for i := range list {
		list[i] = i
	}
	first, err := Shuffle(seed, list)
	if err != nil {
		t.Fatalf("Shuffle: %v", err)
	}
	second, err := Shuffle(seed, list)
	if err != nil {
		t.Fatalf("Shuffle: %v", err)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("non-deterministic output at index %d: %d != %d", i, first[i], second[i])
		}
	}
}

func TestShuffleDoesNotMutateInput(t *testing.T) {
	seed := sha256Seed("no-mutate")
	list := []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
	original := append([]int(nil), list...)
	if _, err := Shuffle(seed, list); err != nil {
		t.Fatalf("Shuffle: %v", err)
	}
	for i := range list {
		if list[i] != original[i] {
			t.Fatalf("input mutated at index %d: got %d, want %d", i, list[i], original[i])
		}
	}
}

func TestShuffleDiffersFromIdentityForNonTrivialInput(t *testing.T) {
	seed := sha256Seed("moved")
	list := make([]int, 64)
	for i := range list {
		list[i] = i
	}
	out, err := Shuffle(seed, list)
	if err != nil {
		t.Fatalf("Shuffle: %v", err)
	}
	moved := false
	for i := range list {
		if out[i] != list[i] {
			moved = true
			break
		}
	}
	if !moved {
		t.Fatalf("shuffled output identical to input; expected at least one moved element")
	}
}

func TestShuffleSmallLists(t *testing.T) {
	seed := sha256Seed("small")
	for _, n := range []int{0, 1, 2} {
		list := make([]int, n)
		for i := range list {
			list[i] = i
		}
		out, err := Shuffle(seed, list)
		if err != nil {
			t.Fatalf("Shuffle(n=%d): %v", n, err)
		}
		if len(out) != n {
			t.Fatalf("Shuffle(n=%d): output length = %d", n, len(out))
		}
	}
}

func TestShuffleRejectsOversizedList(t *testing.T) {
	list := make([]struct{}, maxListLength)
	if _, err := Shuffle([32]byte{}, list); err != ErrListTooLong {
		t.Fatalf("Shuffle(2^24 elements) = %v, want %v", err, ErrListTooLong)
	}
}

func sha256Seed(label string) [32]byte {
	var seed [32]byte
	copy(seed[:], label)
	return seed
}
