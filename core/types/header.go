package types

import (
	"github.com/ethereum/go-ethereum/rlp"
	"lukechampine.com/blake3"
)

// BlockHeader carries the metadata a fork-choice tip is selected on. Hash is
// a deterministic function of the RLP-encoded header.
type BlockHeader struct {
	Height                uint64
	PrevHash              [32]byte
	TxRoot                [32]byte
	StateRoot             [32]byte
	Timestamp             uint64
	Proposer              ParticipantID
	VRFOutput             [32]byte
	VRFProof              []byte
	Work                  uint64
	AggregationCommitment [32]byte
}

// Hash returns the canonical blake3 digest of the RLP encoding of the
// header. Two headers that encode identically hash identically.
func (h *BlockHeader) Hash() ([32]byte, error) {
	encoded, err := rlp.EncodeToBytes(h)
	if err != nil {
		return [32]byte{}, err
	}
	return blake3.Sum256(encoded), nil
}

// Block is a full block: header, opaque transactions, battle proofs, state
// proofs, the proposer's signature, and the finality votes known to the
// proposer at construction time.
type Block struct {
	Header         *BlockHeader
	Transactions   [][]byte
	BattleProofs   [][]byte
	StateProofs    [][]byte
	Signature      []byte
	FinalityVotes  []FinalityVote
	FinalityStatus FinalityStatus
}

// NewBlock constructs a block from a header and opaque transaction bytes.
func NewBlock(header *BlockHeader, txs [][]byte) *Block {
	return &Block{Header: header, Transactions: txs}
}
