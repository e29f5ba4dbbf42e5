package race

import (
	"sync"
	"time"
)

// RaceResult contains the outcome of a completed race.
type RaceResult struct {
	MatchID  MatchID
	Reason   RaceEndReason
	Winner   RacerID // 0 if draw
	Report1  ProgressReport
	Report2  ProgressReport
	Duration time.Duration
}

// Race represents an active head-to-head run. There is no shared
// simulation here: each racer steps the dungeon locally from the shared
// seed, and the race loop only relays reports and decides the outcome.
//
// The rules: the first racer to escape wins outright. If both die
// without escaping, the higher score takes it. A disconnect forfeits,
// and the time limit falls back to score as well.
type Race struct {
	id   MatchID
	code string
	seed int64

	racer1Session SessionHandle
	racer2Session SessionHandle

	// Latest report per side. Owned by the Run goroutine; reports
	// arrive through reportChan.
	report1 ProgressReport
	report2 ProgressReport

	reportChan chan racerReport

	started   time.Time
	timeLimit time.Duration

	done     chan struct{}
	doneOnce sync.Once

	// Disconnect handling
	disconnectChan chan SessionID
}

type racerReport struct {
	racer  RacerID
	report ProgressReport
}

// NewRace creates a new race between the two sessions. A timeLimit of
// zero means the race runs until somebody finishes or disconnects.
func NewRace(
	id MatchID,
	code string,
	seed int64,
	r1Session, r2Session SessionHandle,
	timeLimit time.Duration,
) *Race {
	return &Race{
		id:             id,
		code:           code,
		seed:           seed,
		racer1Session:  r1Session,
		racer2Session:  r2Session,
		reportChan:     make(chan racerReport, 64),
		timeLimit:      timeLimit,
		done:           make(chan struct{}),
		disconnectChan: make(chan SessionID, 2),
	}
}

// ID returns the race identifier.
func (r *Race) ID() MatchID {
	return r.id
}

// Code returns the join code used to create this race.
func (r *Race) Code() string {
	return r.code
}

// Seed returns the shared seed both racers run from.
func (r *Race) Seed() int64 {
	return r.seed
}

// SubmitReport sends a racer's latest standing to the race loop.
// Non-blocking, uses a buffered channel.
func (r *Race) SubmitReport(racer RacerID, report ProgressReport) {
	select {
	case r.reportChan <- racerReport{racer: racer, report: report}:
	default:
		// Channel full, drop the report (the next one supersedes it)
	}
}

// RacerDisconnected signals that a racer has disconnected.
func (r *Race) RacerDisconnected(sessionID SessionID) {
	select {
	case r.disconnectChan <- sessionID:
	default:
	}
}

// Run processes reports until the race is decided.
// The callback is called when the race ends.
func (r *Race) Run(onComplete func(RaceResult)) {
	defer func() {
		r.doneOnce.Do(func() {
			close(r.done)
		})
	}()

	r.started = time.Now()

	var limit <-chan time.Time
	if r.timeLimit > 0 {
		timer := time.NewTimer(r.timeLimit)
		defer timer.Stop()
		limit = timer.C
	}

	// Monitor session disconnects
	go r.monitorSessions()

	for {
		select {
		case rr := <-r.reportChan:
			result, over := r.applyReport(rr)
			if over {
				if onComplete != nil {
					onComplete(result)
				}
				return
			}

		case sessionID := <-r.disconnectChan:
			result := r.handleDisconnect(sessionID)
			if onComplete != nil {
				onComplete(result)
			}
			return

		case <-limit:
			result := r.scoreOut(RaceEndReasonTimeLimit)
			if onComplete != nil {
				onComplete(result)
			}
			return

		case <-r.done:
			return
		}
	}
}

// applyReport records one report, relays it to the opponent, and
// checks whether the race is decided.
func (r *Race) applyReport(rr racerReport) (RaceResult, bool) {
	if rr.racer == Racer1 {
		r.report1 = rr.report
		r.racer2Session.Send(OpponentProgressEvent{MatchID: r.id, Report: rr.report})
	} else {
		r.report2 = rr.report
		r.racer1Session.Send(OpponentProgressEvent{MatchID: r.id, Report: rr.report})
	}

	// First escape wins outright.
	if rr.report.Escaped {
		return r.result(RaceEndReasonEscape, rr.racer), true
	}

	// Both runs over without an escape: score decides.
	if r.report1.Dead && r.report2.Dead {
		return r.scoreOut(RaceEndReasonBothFell), true
	}

	return RaceResult{}, false
}

// scoreOut settles the race on score alone. Equal scores are a draw.
func (r *Race) scoreOut(reason RaceEndReason) RaceResult {
	var winner RacerID
	switch {
	case r.report1.Score > r.report2.Score:
		winner = Racer1
	case r.report2.Score > r.report1.Score:
		winner = Racer2
	}
	return r.result(reason, winner)
}

func (r *Race) handleDisconnect(sessionID SessionID) RaceResult {
	winner := Racer1
	if sessionID == r.racer1Session.ID() {
		winner = Racer2
	}
	return r.result(RaceEndReasonForfeit, winner)
}

func (r *Race) result(reason RaceEndReason, winner RacerID) RaceResult {
	return RaceResult{
		MatchID:  r.id,
		Reason:   reason,
		Winner:   winner,
		Report1:  r.report1,
		Report2:  r.report2,
		Duration: time.Since(r.started),
	}
}

func (r *Race) monitorSessions() {
	select {
	case <-r.racer1Session.Done():
		select {
		case r.disconnectChan <- r.racer1Session.ID():
		default:
		}
	case <-r.racer2Session.Done():
		select {
		case r.disconnectChan <- r.racer2Session.ID():
		default:
		}
	case <-r.done:
	}
}

// Stop gracefully stops the race.
func (r *Race) Stop() {
	r.doneOnce.Do(func() {
		close(r.done)
	})
}
