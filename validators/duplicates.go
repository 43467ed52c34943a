package validators

import "github.com/blocknative/opkeys/structs"

// FindSnapshotDuplicates looks for duplicated keys in src.
func FindSnapshotDuplicates(src KeySource) []structs.DuplicatePair {
	return FindDuplicatedKeys(src.Keys())
}

// FindDuplicatedKeys groups keys by their public key bytes. A group of n
// keys yields every one of its n*(n-1)/2 pairs. Groups and pairs follow
// the order of first appearance in keys.
func FindDuplicatedKeys(keys []structs.SigningKey) []structs.DuplicatePair {
	groups := make(map[string][]int, len(keys))
	var order []string
	for i, k := range keys {
		id := string(k.Key)
		if _, ok := groups[id]; !ok {
			order = append(order, id)
		}
		groups[id] = append(groups[id], i)
	}

	pairs := []structs.DuplicatePair{}
	for _, id := range order {
		g := groups[id]
		for a := 0; a < len(g); a++ {
			for b := a + 1; b < len(g); b++ {
				pairs = append(pairs, structs.DuplicatePair{keys[g[a]], keys[g[b]]})
			}
		}
	}
	return pairs
}
