package nudge

import "time"

// pushChannel reports whether ch is a push-style delivery surface. Pull
// surfaces (app, web) are never deferred: the user is already looking.
func pushChannel(ch string) bool {
	return ch == "sms" || ch == "whatsapp"
}

// EvaluateQuietHours decides whether the chosen action must be queued and,
// if so, until when. Quiet hours apply only when the request was not
// initiated by the user, a window is configured, and the channel is
// push-style. The unused candidate parameter keeps the scheduler's contract
// aligned with the selection pipeline; journeys do not currently override
// quiet hours.
func EvaluateQuietHours(req *Request, _ Candidate, now time.Time) (shouldQueue bool, resumeAt *time.Time) {
	if req.InitiatedByUser || req.QuietHours == nil || !pushChannel(req.Channel) {
		return false, nil
	}

	loc, err := time.LoadLocation(req.Timezone)
	if err != nil {
		loc = time.UTC
	}
	local := now.In(loc)
	minutes := local.Hour()*60 + local.Minute()

	start := req.QuietHours.StartMinutes
	end := req.QuietHours.EndMinutes

	var within bool
	if start <= end {
		within = minutes >= start && minutes < end
	} else {
		// Window wraps midnight.
		within = minutes >= start || minutes < end
	}
	if !within {
		return false, nil
	}

	// Resume at the next occurrence of the window's end time-of-day.
	resume := time.Date(local.Year(), local.Month(), local.Day(), end/60, end%60, 0, 0, loc)
	if !resume.After(local) {
		resume = resume.AddDate(0, 0, 1)
	}
	return true, &resume
}
