package http

import (
	"fmt"
	"strconv"
	"time"

	"github.com/fwojciec/serp"
)

type jobStatus string

const (
	jobRunning jobStatus = "running"
	jobDone    jobStatus = "done"
	jobFailed  jobStatus = "failed"
)

// job is the state of one analysis started from the web form.
// Fields are guarded by Server.mu.
type job struct {
	ID        string
	Params    serp.Params
	StartedAt time.Time
	Status    jobStatus

	Found     []string
	Progress  []serp.Progress
	Run       *serp.Run
	Artifacts []serp.Artifact
	Err       string
}

type jobView struct {
	ID      string
	Query   string
	Count   int
	Delay   string
	Running bool
	Failed  bool
	Error   string
	Refresh int

	Found    []string
	Done     int
	Total    int
	Percent  int
	Failures []failureView

	Summary   *summaryView
	Levels    []serp.HeadingLevel
	Records   []*serp.PageRecord
	Artifacts []serp.Artifact
}

type failureView struct {
	URL string
	Err string
}

type summaryView struct {
	Analyzed int
	Failed   int
	Averages []averageView
}

type averageView struct {
	Level serp.HeadingLevel
	Value string
}

// view returns a snapshot of j for rendering. The caller must hold the lock.
func (j *job) view() jobView {
	v := jobView{
		ID:      j.ID,
		Query:   j.Params.Query,
		Count:   j.Params.Count,
		Delay:   strconv.FormatFloat(j.Params.Delay.Seconds(), 'f', 1, 64),
		Running: j.Status == jobRunning,
		Failed:  j.Status == jobFailed,
		Error:   j.Err,
		Found:   append([]string(nil), j.Found...),
		Done:    len(j.Progress),
		Total:   len(j.Found),
		Levels:  serp.HeadingLevels,
	}
	if v.Running {
		v.Refresh = RefreshInterval
	}
	if v.Total > 0 {
		v.Percent = v.Done * 100 / v.Total
	}

	for _, p := range j.Progress {
		if p.Err != nil {
			v.Failures = append(v.Failures, failureView{URL: p.URL, Err: p.Err.Error()})
		}
	}

	if j.Run != nil && !j.Run.Empty() {
		sum := j.Run.Summary()
		sv := &summaryView{Analyzed: sum.Analyzed, Failed: sum.Failed}
		for _, l := range serp.HeadingLevels {
			sv.Averages = append(sv.Averages, averageView{
				Level: l,
				Value: fmt.Sprintf("%.1f", sum.Average(l)),
			})
		}
		v.Summary = sv
		v.Records = j.Run.Records
		v.Artifacts = append([]serp.Artifact(nil), j.Artifacts...)
	}
	return v
}
