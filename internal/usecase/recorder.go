package usecase

import (
	"time"

	"NewsDesk/internal/domain"
	"NewsDesk/internal/ports"
)

type nopRecorder struct{}

var _ ports.Recorder = nopRecorder{}

func (nopRecorder) FetchRun(domain.JobType, domain.RunStatus, time.Duration) {}
func (nopRecorder) SourceResult(domain.SourceStatus)                         {}
func (nopRecorder) ArticlesSaved(int)                                        {}
func (nopRecorder) DuplicatesSkipped(int)                                    {}
func (nopRecorder) CategorizationResults(domain.ResultStatus, int)           {}
func (nopRecorder) TokenUsage(domain.OpenAIUsage)                            {}

func recorderOrNop(r ports.Recorder) ports.Recorder {
	if r == nil {
		return nopRecorder{}
	}
	return r
}
