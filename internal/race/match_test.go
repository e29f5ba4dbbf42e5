package race

import (
	"testing"
	"time"
)

// waitEvent pulls the next event off a session, failing the test
// instead of hanging if nothing arrives.
func waitEvent(t *testing.T, s *ChannelSession) SessionEvent {
	t.Helper()
	select {
	case evt := <-s.Events():
		return evt
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for session event")
		return nil
	}
}

func waitResult(t *testing.T, ch <-chan RaceResult) RaceResult {
	t.Helper()
	select {
	case res := <-ch:
		return res
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for race result")
		return RaceResult{}
	}
}

func newTestRace(timeLimit time.Duration) (*Race, *ChannelSession, *ChannelSession) {
	s1 := NewChannelSession("alice", 16)
	s2 := NewChannelSession("bob", 16)
	r := NewRace("race-1", "ABCDEF", 42, s1, s2, timeLimit)
	return r, s1, s2
}

func runRace(r *Race) <-chan RaceResult {
	resultChan := make(chan RaceResult, 1)
	go r.Run(func(res RaceResult) {
		resultChan <- res
	})
	return resultChan
}

func TestRaceRelaysProgress(t *testing.T) {
	r, s1, s2 := newTestRace(0)
	runRace(r)
	defer r.Stop()

	report := ProgressReport{Stage: "entry-hall", StagesCleared: 1, Score: 25, HP: 80}
	r.SubmitReport(Racer1, report)

	evt := waitEvent(t, s2)
	prog, ok := evt.(OpponentProgressEvent)
	if !ok {
		t.Fatalf("Expected OpponentProgressEvent, got %T", evt)
	}
	if prog.MatchID != "race-1" {
		t.Errorf("MatchID = %q, want race-1", prog.MatchID)
	}
	if prog.Report != report {
		t.Errorf("Relayed report = %+v, want %+v", prog.Report, report)
	}

	// Reports flow the other way too
	r.SubmitReport(Racer2, ProgressReport{Stage: "guard-room", Score: 40})
	evt = waitEvent(t, s1)
	prog, ok = evt.(OpponentProgressEvent)
	if !ok {
		t.Fatalf("Expected OpponentProgressEvent, got %T", evt)
	}
	if prog.Report.Stage != "guard-room" {
		t.Errorf("Relayed stage = %q, want guard-room", prog.Report.Stage)
	}
}

func TestRaceFirstEscapeWins(t *testing.T) {
	r, s1, _ := newTestRace(0)
	resultChan := runRace(r)

	r.SubmitReport(Racer1, ProgressReport{Stage: "crypt", Score: 60})
	r.SubmitReport(Racer2, ProgressReport{Stage: "throne-room", Score: 45, Escaped: true})

	res := waitResult(t, resultChan)
	if res.Reason != RaceEndReasonEscape {
		t.Errorf("Reason = %v, want %v", res.Reason, RaceEndReasonEscape)
	}
	// The escapee wins even with the lower score
	if res.Winner != Racer2 {
		t.Errorf("Winner = %v, want Racer2", res.Winner)
	}
	if !res.Report2.Escaped {
		t.Error("Report2 should record the escape")
	}
	if res.Report1.Score != 60 {
		t.Errorf("Report1.Score = %d, want 60", res.Report1.Score)
	}

	// The loser still saw the winning report relayed
	evt := waitEvent(t, s1)
	if _, ok := evt.(OpponentProgressEvent); !ok {
		t.Errorf("Expected OpponentProgressEvent, got %T", evt)
	}
}

func TestRaceOneDeathDoesNotEndIt(t *testing.T) {
	r, _, s2 := newTestRace(0)
	resultChan := runRace(r)
	defer r.Stop()

	r.SubmitReport(Racer1, ProgressReport{Stage: "guard-room", Score: 35, Dead: true})

	// Once the relay arrives the report has been fully processed, so
	// an empty result channel means the race is still live.
	waitEvent(t, s2)
	select {
	case res := <-resultChan:
		t.Fatalf("Race ended early with %+v; survivor should race on", res)
	default:
	}
}

func TestRaceBothDeadScoreDecides(t *testing.T) {
	r, s1, s2 := newTestRace(0)
	resultChan := runRace(r)

	r.SubmitReport(Racer1, ProgressReport{Stage: "guard-room", Score: 35, Dead: true})
	waitEvent(t, s2)
	r.SubmitReport(Racer2, ProgressReport{Stage: "entry-hall", Score: 20, Dead: true})
	waitEvent(t, s1)

	res := waitResult(t, resultChan)
	if res.Reason != RaceEndReasonBothFell {
		t.Errorf("Reason = %v, want %v", res.Reason, RaceEndReasonBothFell)
	}
	if res.Winner != Racer1 {
		t.Errorf("Winner = %v, want Racer1 (higher score)", res.Winner)
	}
}

func TestRaceBothDeadEqualScoreDraws(t *testing.T) {
	r, _, s2 := newTestRace(0)
	resultChan := runRace(r)

	r.SubmitReport(Racer1, ProgressReport{Score: 30, Dead: true})
	waitEvent(t, s2)
	r.SubmitReport(Racer2, ProgressReport{Score: 30, Dead: true})

	res := waitResult(t, resultChan)
	if res.Reason != RaceEndReasonBothFell {
		t.Errorf("Reason = %v, want %v", res.Reason, RaceEndReasonBothFell)
	}
	if res.Winner != 0 {
		t.Errorf("Winner = %v, want 0 (draw)", res.Winner)
	}
}

func TestRaceDisconnectForfeits(t *testing.T) {
	r, s1, _ := newTestRace(0)
	resultChan := runRace(r)

	r.RacerDisconnected(s1.ID())

	res := waitResult(t, resultChan)
	if res.Reason != RaceEndReasonForfeit {
		t.Errorf("Reason = %v, want %v", res.Reason, RaceEndReasonForfeit)
	}
	if res.Winner != Racer2 {
		t.Errorf("Winner = %v, want Racer2", res.Winner)
	}
}

func TestRaceSessionCloseForfeits(t *testing.T) {
	r, _, s2 := newTestRace(0)
	resultChan := runRace(r)

	s2.Close()

	res := waitResult(t, resultChan)
	if res.Reason != RaceEndReasonForfeit {
		t.Errorf("Reason = %v, want %v", res.Reason, RaceEndReasonForfeit)
	}
	if res.Winner != Racer1 {
		t.Errorf("Winner = %v, want Racer1", res.Winner)
	}
}

func TestRaceTimeLimitScoresOut(t *testing.T) {
	r, _, s2 := newTestRace(200 * time.Millisecond)
	resultChan := runRace(r)

	r.SubmitReport(Racer1, ProgressReport{Stage: "crypt", Score: 75})
	waitEvent(t, s2)

	res := waitResult(t, resultChan)
	if res.Reason != RaceEndReasonTimeLimit {
		t.Errorf("Reason = %v, want %v", res.Reason, RaceEndReasonTimeLimit)
	}
	if res.Winner != Racer1 {
		t.Errorf("Winner = %v, want Racer1 (only scorer)", res.Winner)
	}
}

func TestRaceAccessors(t *testing.T) {
	r, _, _ := newTestRace(0)
	if r.ID() != "race-1" {
		t.Errorf("ID() = %q, want race-1", r.ID())
	}
	if r.Code() != "ABCDEF" {
		t.Errorf("Code() = %q, want ABCDEF", r.Code())
	}
	if r.Seed() != 42 {
		t.Errorf("Seed() = %d, want 42", r.Seed())
	}
}

func TestProgressReportFinished(t *testing.T) {
	if (ProgressReport{}).Finished() {
		t.Error("Zero report should not be finished")
	}
	if !(ProgressReport{Escaped: true}).Finished() {
		t.Error("Escaped report should be finished")
	}
	if !(ProgressReport{Dead: true}).Finished() {
		t.Error("Dead report should be finished")
	}
}
