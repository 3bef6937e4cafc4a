// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package schedule

import (
	"errors"
	"fmt"
	"time"

	"github.com/moov-io/achfile/pkg/config"
	"github.com/moov-io/base"

	"github.com/robfig/cron/v3"
)

// CutoffTimes is a time.Ticker which fires on banking days at each configured
// window, signalling outbound files should be uploaded.
type CutoffTimes struct {
	C chan time.Time

	location *time.Location
	sched    *cron.Cron
	done     chan struct{}
}

// ForCutoffTimes starts a ticker for each "15:04" timestamp in the tz location.
// An empty tz is UTC.
func ForCutoffTimes(tz string, timestamps []string) (*CutoffTimes, error) {
	location := time.UTC
	if tz != "" {
		l, err := time.LoadLocation(tz)
		if err != nil {
			return nil, fmt.Errorf("unknown timezone %s: %v", tz, err)
		}
		location = l
	}
	ct := &CutoffTimes{
		C:        make(chan time.Time),
		location: location,
		sched:    cron.New(cron.WithLocation(location)),
		done:     make(chan struct{}),
	}
	if err := ct.registerCutoffs(timestamps); err != nil {
		return nil, err
	}
	ct.sched.Start()
	return ct, nil
}

// FromConfig starts a ticker from the ODFI's cutoff windows.
func FromConfig(cfg config.Cutoffs) (*CutoffTimes, error) {
	return ForCutoffTimes(cfg.Timezone, cfg.Windows)
}

func (ct *CutoffTimes) Stop() {
	if ct == nil {
		return
	}
	select {
	case <-ct.done:
		return
	default:
		close(ct.done)
	}
	if ct.sched != nil {
		ct.sched.Stop()
	}
}

func (ct *CutoffTimes) maybeTick() {
	now := base.Now(ct.location)
	if !now.IsBankingDay() {
		return
	}
	select {
	case ct.C <- now.Time:
	case <-ct.done:
	}
}

func (ct *CutoffTimes) registerCutoffs(timestamps []string) error {
	if len(timestamps) == 0 {
		return errors.New("missing cutoff times")
	}
	for i := range timestamps {
		if err := ct.register(timestamps[i]); err != nil {
			return fmt.Errorf("timestamp=%s error=%v", timestamps[i], err)
		}
	}
	return nil
}

func (ct *CutoffTimes) register(timestamp string) error {
	when, err := time.Parse("15:04", timestamp)
	if err != nil {
		return fmt.Errorf("failed to parse '%s' error=%v", timestamp, err)
	}
	schedule := fmt.Sprintf(`%d %d * * *`, when.Minute(), when.Hour())
	if _, err := ct.sched.AddFunc(schedule, ct.maybeTick); err != nil {
		return err
	}
	return nil
}

// NextBankingDay returns the first banking day after when, in the location.
// Generated batches default their effective entry date to this day.
func NextBankingDay(location *time.Location, when time.Time) time.Time {
	if location == nil {
		location = time.UTC
	}
	return base.NewTime(when.In(location)).AddBankingDay(1).Time
}
