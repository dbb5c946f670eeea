package transfer

import (
	"bytes"
	"encoding/hex"
	"errors"

	"golang.org/x/crypto/blake2b"
)

var (
	ErrNoChunks     = errors.New("transfer: no chunk hashes to build a tree from")
	ErrChunkIndex   = errors.New("transfer: chunk index out of range")
	ErrProofInvalid = errors.New("transfer: merkle proof does not match root")
)

// Tree is a Merkle tree over chunk hashes. The root can be exchanged
// ahead of a transfer; the receiving side then verifies each chunk
// independently with a Proof, detecting corruption without comparing
// whole payloads.
//
// Odd nodes at any level are paired with themselves, so the tree works
// for any chunk count without padding.
type Tree struct {
	levels [][][]byte // levels[0] are the leaves, last level is the root
}

// NewTree builds a tree from leaf chunk hashes (see HashChunk).
func NewTree(leaves [][]byte) (*Tree, error) {
	if len(leaves) == 0 {
		return nil, ErrNoChunks
	}
	level := make([][]byte, len(leaves))
	copy(level, leaves)

	t := &Tree{levels: [][][]byte{level}}
	for len(level) > 1 {
		next := make([][]byte, 0, (len(level)+1)/2)
		for i := 0; i < len(level); i += 2 {
			if i+1 < len(level) {
				next = append(next, hashPair(level[i], level[i+1]))
			} else {
				next = append(next, hashPair(level[i], level[i]))
			}
		}
		t.levels = append(t.levels, next)
		level = next
	}
	return t, nil
}

// Root returns the root hash.
func (t *Tree) Root() []byte {
	return t.levels[len(t.levels)-1][0]
}

// RootHex returns the root hash as a hex string.
func (t *Tree) RootHex() string {
	return hex.EncodeToString(t.Root())
}

// Leaves returns the number of leaf hashes.
func (t *Tree) Leaves() int {
	return len(t.levels[0])
}

// Proof carries the sibling path needed to verify a single chunk
// against the root.
type Proof struct {
	Index    int
	Leaf     []byte
	Siblings [][]byte // from leaf level upward
	Right    []bool   // whether the sibling sits to the right
}

// Proof generates the verification path for the chunk at index.
func (t *Tree) Proof(index int) (Proof, error) {
	if index < 0 || index >= t.Leaves() {
		return Proof{}, ErrChunkIndex
	}

	p := Proof{Index: index, Leaf: t.levels[0][index]}
	idx := index
	for _, level := range t.levels[:len(t.levels)-1] {
		var sibling []byte
		right := idx%2 == 0
		if right {
			if idx+1 < len(level) {
				sibling = level[idx+1]
			} else {
				sibling = level[idx] // odd node pairs with itself
			}
		} else {
			sibling = level[idx-1]
		}
		p.Siblings = append(p.Siblings, sibling)
		p.Right = append(p.Right, right)
		idx /= 2
	}
	return p, nil
}

// VerifyProof checks a proof against the expected root hash.
func VerifyProof(p Proof, root []byte) error {
	current := p.Leaf
	for i, sibling := range p.Siblings {
		if p.Right[i] {
			current = hashPair(current, sibling)
		} else {
			current = hashPair(sibling, current)
		}
	}
	if !bytes.Equal(current, root) {
		return ErrProofInvalid
	}
	return nil
}

func hashPair(left, right []byte) []byte {
	h, _ := blake2b.New256(nil)
	h.Write(left)
	h.Write(right)
	return h.Sum(nil)
}
