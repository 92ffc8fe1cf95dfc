package batch

import "time"

func (j *CVSnapshotJob) SetClock(now func() time.Time) {
	j.now = now
}
