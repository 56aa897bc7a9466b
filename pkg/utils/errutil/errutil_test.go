package errutil_test

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/tyche/pkg/utils/errutil"
	"github.com/secmon-lab/tyche/pkg/utils/logging"
)

func TestHandle(t *testing.T) {
	var buf bytes.Buffer
	ctx := logging.With(context.Background(), slog.New(slog.NewJSONHandler(&buf, nil)))

	gt.NoError(t, errutil.Handle(ctx, nil, "ignored"))
	gt.Number(t, buf.Len()).Equal(0)

	err := goerr.New("stage failed", goerr.V("stage", "correlation"))
	gt.Value(t, errutil.Handle(ctx, err, "cycle stage failed")).Equal(error(err))
	gt.String(t, buf.String()).Contains("cycle stage failed")
	gt.String(t, buf.String()).Contains("correlation")
}

func TestHandleHTTP(t *testing.T) {
	w := httptest.NewRecorder()
	errutil.HandleHTTP(context.Background(), w, goerr.New("boom"), http.StatusConflict)
	gt.Number(t, w.Code).Equal(http.StatusConflict)
	gt.String(t, w.Body.String()).Contains("boom")
}
