package rpc

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"tourneychain/core/types"
)

type commitmentParams struct {
	Participant string `json:"participant"`
	Digest      string `json:"digest"`
	RingSig     string `json:"ringSig"`
	LinkTag     string `json:"linkTag"`
}

func (s *Server) submitCommitment(raw json.RawMessage) (interface{}, error) {
	var p commitmentParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, err
	}
	participant, err := decodeParticipant(p.Participant)
	if err != nil {
		return nil, err
	}
	digest, err := decodeHash(p.Digest)
	if err != nil {
		return nil, err
	}
	ringSig, err := hex.DecodeString(p.RingSig)
	if err != nil {
		return nil, fmt.Errorf("invalid ringSig: %w", err)
	}
	linkTag, err := decodeHash(p.LinkTag)
	if err != nil {
		return nil, err
	}

	o := s.driver.Current()
	if o == nil {
		return nil, fmt.Errorf("no active round")
	}
	commitment := types.Commitment{Digest: digest, RingSig: ringSig, LinkTag: linkTag}
	if err := o.SubmitCommitment(participant, commitment); err != nil {
		return nil, err
	}
	return map[string]bool{"accepted": true}, nil
}

type revealParams struct {
	Participant string `json:"participant"`
	Pattern     uint8  `json:"pattern"`
	Row         int    `json:"row"`
	Col         int    `json:"col"`
	Nonce       string `json:"nonce"`
}

func (s *Server) submitReveal(raw json.RawMessage) (interface{}, error) {
	var p revealParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, err
	}
	participant, err := decodeParticipant(p.Participant)
	if err != nil {
		return nil, err
	}
	nonceBytes, err := hex.DecodeString(p.Nonce)
	if err != nil || len(nonceBytes) != 16 {
		return nil, fmt.Errorf("invalid nonce")
	}
	var nonce [16]byte
	copy(nonce[:], nonceBytes)

	o := s.driver.Current()
	if o == nil {
		return nil, fmt.Errorf("no active round")
	}
	glider := types.NewGlider(types.GliderPattern(p.Pattern), types.Position{Row: p.Row, Col: p.Col})
	if err := o.SubmitReveal(types.Reveal{Glider: glider, Nonce: nonce, Participant: participant}); err != nil {
		return nil, err
	}
	return map[string]bool{"accepted": true}, nil
}

type voteParams struct {
	BlockHash string `json:"blockHash"`
	Height    uint64 `json:"height"`
	VoteType  uint8  `json:"voteType"`
	Round     int    `json:"round"`
	Validator string `json:"validator"`
	Signature string `json:"signature"`
}

func (s *Server) submitVote(raw json.RawMessage) (interface{}, error) {
	var p voteParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, err
	}
	blockHash, err := decodeHash(p.BlockHash)
	if err != nil {
		return nil, err
	}
	validatorBytes, err := hex.DecodeString(p.Validator)
	if err != nil || len(validatorBytes) != 20 {
		return nil, fmt.Errorf("invalid validator id")
	}
	var validator types.ValidatorID
	copy(validator[:], validatorBytes)
	sig, err := hex.DecodeString(p.Signature)
	if err != nil {
		return nil, fmt.Errorf("invalid signature: %w", err)
	}

	vote := types.FinalityVote{
		BlockHash: blockHash,
		Height:    p.Height,
		VoteType:  types.VoteType(p.VoteType),
		Round:     p.Round,
		Validator: validator,
		Signature: sig,
	}
	s.driver.SubmitVote(vote)
	return map[string]bool{"queued": true}, nil
}

type headerParams struct {
	Height   uint64 `json:"height"`
	PrevHash string `json:"prevHash"`
	Work     uint64 `json:"work"`
	Proposer string `json:"proposer"`
}

func (s *Server) insertHeader(raw json.RawMessage) (interface{}, error) {
	var p headerParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, err
	}
	prevHash, err := decodeHash(p.PrevHash)
	if err != nil {
		return nil, err
	}
	proposer, err := decodeParticipant(p.Proposer)
	if err != nil {
		return nil, err
	}
	header := &types.BlockHeader{Height: p.Height, PrevHash: prevHash, Work: p.Work, Proposer: proposer}
	hash, err := s.driver.InsertHeader(header)
	if err != nil {
		return nil, err
	}
	return map[string]string{"hash": hex.EncodeToString(hash[:])}, nil
}

func (s *Server) currentTip(json.RawMessage) (interface{}, error) {
	tip, err := s.driver.CurrentTip()
	if err != nil {
		return nil, err
	}
	return map[string]string{"hash": hex.EncodeToString(tip[:])}, nil
}

type hashParams struct {
	BlockHash string `json:"blockHash"`
}

func (s *Server) finalityStatus(raw json.RawMessage) (interface{}, error) {
	var p hashParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, err
	}
	hash, err := decodeHash(p.BlockHash)
	if err != nil {
		return nil, err
	}
	return map[string]string{"status": s.driver.Gadget().Status(hash).String()}, nil
}

type participantParams struct {
	Participant string `json:"participant"`
}

func (s *Server) getTrust(raw json.RawMessage) (interface{}, error) {
	var p participantParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, err
	}
	participant, err := decodeParticipant(p.Participant)
	if err != nil {
		return nil, err
	}
	trust, err := s.trust.Trust(participant)
	if err != nil {
		return nil, err
	}
	return map[string]float64{"trust": trust}, nil
}

func (s *Server) isEligible(raw json.RawMessage) (interface{}, error) {
	var p participantParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, err
	}
	participant, err := decodeParticipant(p.Participant)
	if err != nil {
		return nil, err
	}
	eligible, err := s.trust.IsEligible(participant)
	if err != nil {
		return nil, err
	}
	return map[string]bool{"eligible": eligible}, nil
}

type runTournamentParams struct {
	Height   uint64   `json:"height"`
	Eligible []string `json:"eligible"`
	Seed     string   `json:"seed"`
}

func (s *Server) governanceReinstate(raw json.RawMessage, operator string) (interface{}, error) {
	var p participantParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, err
	}
	participant, err := decodeParticipant(p.Participant)
	if err != nil {
		return nil, err
	}
	if err := s.trust.Reinstate(participant, operator); err != nil {
		return nil, err
	}
	return map[string]bool{"reinstated": true}, nil
}

func (s *Server) runTournament(raw json.RawMessage) (interface{}, error) {
	var p runTournamentParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, err
	}
	seed, err := decodeHash(p.Seed)
	if err != nil {
		return nil, err
	}
	eligible := make([]types.ParticipantID, len(p.Eligible))
	for i, e := range p.Eligible {
		pid, err := decodeParticipant(e)
		if err != nil {
			return nil, err
		}
		eligible[i] = pid
	}
	if err := s.driver.StartRound(p.Height, eligible, seed); err != nil {
		return nil, err
	}
	go s.driver.RunPhaseScheduler(s.schedulerCtx)
	return map[string]bool{"started": true}, nil
}
