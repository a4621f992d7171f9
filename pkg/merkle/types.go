package merkle

// MerkleTree is a binary keccak256 tree committing to a set of transcripts.
type MerkleTree struct {
	// Leaves contains the leaf hashes in id order
	Leaves [][32]byte

	// Ids holds the transcript id of each leaf
	Ids []string

	Root [32]byte

	// levels[0] = leaves, levels[len-1] = root
	levels [][][32]byte
}

// MerkleProof shows that a leaf is included in the tree.
type MerkleProof struct {
	// LeafIndex is the index of the leaf in the sorted leaves array
	LeafIndex int

	// Leaf is the hash of the leaf being proven
	Leaf [32]byte

	// Proof contains the sibling hashes from leaf to root
	Proof [][32]byte
}
