package metrics

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegistryIsASingleton(t *testing.T) {
	a := Registry()
	b := Registry()
	require.Same(t, a, b)
}

func TestObserversToleratesNilReceiver(t *testing.T) {
	var m *Consensus
	require.NotPanics(t, func() {
		m.ObserveTournamentStarted(1)
		m.IncMissedCommitment()
		m.ObserveBattle(10, "A", true)
		m.SetTrust("p", 0.5)
		m.IncBlockFinalized(1)
	})
}

func TestObserversRecordWithoutPanicking(t *testing.T) {
	m := Registry()
	require.NotPanics(t, func() {
		m.ObserveTournamentStarted(1)
		m.ObserveTournamentCompleted(1)
		m.ObservePhaseDuration("commit", 0.5)
		m.IncMissedCommitment()
		m.IncMissedReveal()
		m.ObserveBattle(42, "B", false)
		m.SetTrust("participant-1", 0.81)
		m.SetEligibleSetSize(4)
		m.IncParticipantKilled()
		m.IncSlashApplied("Equivocation")
		m.IncBlockFinalized(7)
		m.IncBlockRejected()
		m.IncEquivocation()
	})
}
