package httpapi

import (
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/nguyentantai21042004/voice-insights/internal/apperror"
	"github.com/nguyentantai21042004/voice-insights/internal/watcher"
)

type transcriptionResponse struct {
	Transcription string `json:"transcription"`
}

type transcriptView struct {
	Name string `json:"name"`
	Date string `json:"date"`
	Text string `json:"text"`
}

type listResponse struct {
	Transcriptions []transcriptView `json:"transcriptions"`
}

type insightsResponse struct {
	Insights string `json:"insights"`
}

// upload accepts multipart audioFile, name and date, runs the pipeline
// synchronously and returns the transcription.
func (h *handler) upload(c echo.Context) error {
	ctx := c.Request().Context()

	u := watcher.Upload{
		Name: c.FormValue("name"),
		Date: c.FormValue("date"),
	}
	fh, err := c.FormFile("audioFile")
	switch {
	case errors.Is(err, http.ErrMissingFile):
		// Reported with the other missing fields below.
	case err != nil:
		var he *echo.HTTPError
		if errors.As(err, &he) {
			return he
		}
		return echo.NewHTTPError(http.StatusBadRequest, "malformed upload: "+err.Error())
	default:
		f, err := fh.Open()
		if err != nil {
			return apperror.Wrap(apperror.KindDecode, err, "open uploaded file")
		}
		defer f.Close()

		if u.Data, err = io.ReadAll(f); err != nil {
			return apperror.Wrap(apperror.KindDecode, err, "read uploaded file")
		}
		u.Filename = fh.Filename
	}

	in, err := watcher.AcceptUpload(u)
	if err != nil {
		return err
	}
	h.logger.Info(ctx, "Received file: %s, name: %s, date: %s", u.Filename, in.Name, in.Date)

	res, err := h.proc.Process(ctx, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, transcriptionResponse{Transcription: res.Text})
}

func (h *handler) listTranscriptions(c echo.Context) error {
	recs, err := h.store.ListAll(c.Request().Context())
	if err != nil {
		return apperror.Wrap(apperror.KindPersistence, err, "list transcripts")
	}

	views := make([]transcriptView, len(recs))
	for i, r := range recs {
		views[i] = transcriptView{Name: r.Name, Date: r.Date, Text: r.Text}
	}
	return c.JSON(http.StatusOK, listResponse{Transcriptions: views})
}

func (h *handler) generateInsights(c echo.Context) error {
	report, err := h.insights.Generate(c.Request().Context())
	if err != nil {
		h.countInsights("error")
		return err
	}
	h.countInsights("ok")
	return c.JSON(http.StatusOK, insightsResponse{Insights: report.HTML})
}

func (h *handler) countInsights(outcome string) {
	if h.metrics != nil {
		h.metrics.Insights(outcome)
	}
}
