package merkle

import (
	"fmt"
	"sort"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/Layr-Labs/eigenx-txsign-go/pkg/types"
	"github.com/Layr-Labs/eigenx-txsign-go/pkg/util"
)

// BuildMerkleTree commits transcripts into a binary merkle tree.
// Transcripts are sorted by id first so every holder of the same set computes the same root.
// If there's an odd number of nodes at any level, the last node is duplicated.
func BuildMerkleTree(transcripts []*types.Transcript) (*MerkleTree, error) {
	if len(transcripts) == 0 {
		return nil, fmt.Errorf("cannot build merkle tree from empty transcript list")
	}

	sorted := SortTranscriptsById(transcripts)

	leaves := make([][32]byte, len(sorted))
	ids := make([]string, len(sorted))
	for i, t := range sorted {
		if i > 0 && sorted[i-1].Id == t.Id {
			return nil, fmt.Errorf("duplicate transcript id %s", t.Id)
		}
		leaf, err := HashTranscript(t)
		if err != nil {
			return nil, fmt.Errorf("failed to hash transcript %s: %w", t.Id, err)
		}
		leaves[i] = leaf
		ids[i] = t.Id
	}

	levels := [][][32]byte{leaves}
	currentLevel := leaves
	for len(currentLevel) > 1 {
		nextLevel := make([][32]byte, 0, (len(currentLevel)+1)/2)
		for i := 0; i < len(currentLevel); i += 2 {
			left := currentLevel[i]
			right := left
			if i+1 < len(currentLevel) {
				right = currentLevel[i+1]
			}
			nextLevel = append(nextLevel, hashPair(left, right))
		}
		levels = append(levels, nextLevel)
		currentLevel = nextLevel
	}

	return &MerkleTree{
		Leaves: leaves,
		Ids:    ids,
		Root:   currentLevel[0],
		levels: levels,
	}, nil
}

// GenerateProof creates a merkle proof for the leaf at the given index.
func (mt *MerkleTree) GenerateProof(leafIndex int) (*MerkleProof, error) {
	if leafIndex < 0 || leafIndex >= len(mt.Leaves) {
		return nil, fmt.Errorf("leaf index %d out of bounds (tree has %d leaves)", leafIndex, len(mt.Leaves))
	}

	proof := make([][32]byte, 0, len(mt.levels)-1)
	index := leafIndex

	for level := 0; level < len(mt.levels)-1; level++ {
		currentLevel := mt.levels[level]

		siblingIndex := index ^ 1
		if siblingIndex >= len(currentLevel) {
			siblingIndex = index
		}
		proof = append(proof, currentLevel[siblingIndex])
		index /= 2
	}

	return &MerkleProof{
		LeafIndex: leafIndex,
		Leaf:      mt.Leaves[leafIndex],
		Proof:     proof,
	}, nil
}

// GenerateProofForId creates a merkle proof for the transcript with the given id.
func (mt *MerkleTree) GenerateProofForId(id string) (*MerkleProof, error) {
	i := sort.SearchStrings(mt.Ids, id)
	if i == len(mt.Ids) || mt.Ids[i] != id {
		return nil, fmt.Errorf("transcript %s is not in the tree", id)
	}
	return mt.GenerateProof(i)
}

// VerifyProof recomputes the root from proof and compares it with root.
func VerifyProof(proof *MerkleProof, root [32]byte) bool {
	if proof == nil {
		return false
	}

	currentHash := proof.Leaf
	index := proof.LeafIndex
	for _, siblingHash := range proof.Proof {
		if index%2 == 0 {
			currentHash = hashPair(currentHash, siblingHash)
		} else {
			currentHash = hashPair(siblingHash, currentHash)
		}
		index /= 2
	}

	return currentHash == root
}

// HashTranscript computes the leaf for a transcript:
// keccak256(keccak256(fingerprintText) || keccak256(signature) || keccak256(publicKey)).
// Each field is hashed separately so variable-length fields cannot run into each other.
func HashTranscript(t *types.Transcript) ([32]byte, error) {
	sig, err := util.DecodeHex(t.SignatureHex)
	if err != nil {
		return [32]byte{}, fmt.Errorf("signature: %w", err)
	}
	pub, err := util.DecodeHex(t.PublicKeyHex)
	if err != nil {
		return [32]byte{}, fmt.Errorf("public key: %w", err)
	}

	data := make([]byte, 0, 3*32)
	data = append(data, crypto.Keccak256([]byte(t.FingerprintHex))...)
	data = append(data, crypto.Keccak256(sig)...)
	data = append(data, crypto.Keccak256(pub)...)

	return [32]byte(crypto.Keccak256Hash(data)), nil
}

// SortTranscriptsById returns a copy of transcripts sorted by id.
func SortTranscriptsById(transcripts []*types.Transcript) []*types.Transcript {
	sorted := make([]*types.Transcript, len(transcripts))
	copy(sorted, transcripts)

	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Id < sorted[j].Id
	})
	return sorted
}

// hashPair computes keccak256(left || right).
func hashPair(left, right [32]byte) [32]byte {
	data := make([]byte, 64)
	copy(data[0:32], left[:])
	copy(data[32:64], right[:])

	return [32]byte(crypto.Keccak256Hash(data))
}
