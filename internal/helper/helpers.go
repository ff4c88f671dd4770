package helper

import (
	"fmt"
	"net/http"
	"sync"
)

// ServerErrorReporter is the slice of the error handler background tasks
// need. Declared here to keep helper free of an import cycle with errHandler.
type ServerErrorReporter interface {
	ReportServerError(r *http.Request, err error)
}

type HelperRepository struct {
	baseUrl    *string
	WG         *sync.WaitGroup
	errHandler ServerErrorReporter
}

func New(baseUrl *string, wg *sync.WaitGroup, errHandler ServerErrorReporter) *HelperRepository {
	return &HelperRepository{
		baseUrl:    baseUrl,
		WG:         wg,
		errHandler: errHandler,
	}
}

func (h *HelperRepository) NewEmailData() map[string]any {
	data := map[string]any{
		"BaseURL": h.baseUrl,
	}

	return data
}

// BackgroundTask runs fn in a goroutine, recovering panics and reporting
// errors instead of letting them take down the request.
func (h *HelperRepository) BackgroundTask(r *http.Request, fn func() error) {
	h.WG.Add(1)

	go func() {
		defer h.WG.Done()

		defer func() {
			err := recover()
			if err != nil && h.errHandler != nil {
				h.errHandler.ReportServerError(nil, fmt.Errorf("%s", err))
			}
		}()

		err := fn()
		if err != nil && h.errHandler != nil {
			h.errHandler.ReportServerError(nil, err)
		}
	}()
}
